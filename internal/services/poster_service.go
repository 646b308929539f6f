package services

import (
	"bytes"
	"fmt"

	"github.com/Amuam1er/limbe-food-share/internal/config"
	"github.com/Amuam1er/limbe-food-share/internal/models"
	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

type PosterService struct {
	cfg *config.Config
}

func NewPosterService(cfg *config.Config) *PosterService { return &PosterService{cfg: cfg} }

// GenerateDonationPosterPDF builds a printable A4 poster for a donation:
// title, quantity, pickup address and a QR code linking to the donation
// page. Donors pin it up at the pickup address so volunteers find the right
// door.
func (s *PosterService) GenerateDonationPosterPDF(donation *models.Donation) ([]byte, error) {
	donationURL := fmt.Sprintf("%s/donations/%s", s.cfg.FrontendURL, donation.ID)

	// Create QR PNG in memory
	var qrBuf bytes.Buffer
	png, err := qrcode.Encode(donationURL, qrcode.Medium, 512)
	if err != nil {
		return nil, err
	}
	qrBuf.Write(png)

	// Create PDF
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "Limbe Food Share - Free Food Donation")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 6, fmt.Sprintf("%s\nQuantity: %s\nPickup: %s\n\nScan the code to view and claim this donation:\n%s",
		donation.Title, donation.Quantity, donation.PickupAddress, donationURL), "", "L", false)

	// Register image from reader
	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("qr", opt, bytes.NewReader(qrBuf.Bytes()))

	// Center QR on the page
	x := (210.0 - 100.0) / 2.0 // A4 width 210mm, QR size 100mm
	y := pdf.GetY() + 10
	pdf.ImageOptions("qr", x, y, 100, 100, false, opt, 0, "")

	// Output to buffer
	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
