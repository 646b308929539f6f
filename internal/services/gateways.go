package services

import (
	"context"
	"io"

	"github.com/Amuam1er/limbe-food-share/internal/models"
)

// NotificationGateway is the outbound notification contract the donation and
// claim flows depend on. Delivery failures surface to the caller; nothing is
// retried or swallowed.
type NotificationGateway interface {
	// SendDonationVerificationPin delivers the verification PIN to the donor.
	SendDonationVerificationPin(donation *models.Donation, pin string) error

	// SendClaimNotification tells the donor a volunteer wants the donation.
	// The volunteer's phone is masked while the claim is inside its hold.
	SendClaimNotification(donation *models.Donation, claim *models.Claim) error
}

// MediaUploader stores a donation photo and returns a durable public URL.
type MediaUploader interface {
	UploadDonationPhoto(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}
