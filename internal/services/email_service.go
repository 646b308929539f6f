package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/Amuam1er/limbe-food-share/internal/config"
	"github.com/Amuam1er/limbe-food-share/internal/models"
)

type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendDonationVerificationPin sends the 4-digit PIN the donor needs to
// activate their listing
func (s *EmailService) SendDonationVerificationPin(donation *models.Donation, pin string) error {
	subject := "Verify Your Food Donation - Limbe Food Share"

	body := fmt.Sprintf(`Hello %s,

Thank you for donating food!

Your verification PIN is: %s

This PIN will expire in 10 minutes.

Visit this link to verify: %s/donations/%s/verify

Donation Details:
- %s
- Quantity: %s
- Pickup: %s

Thank you for helping reduce food waste in Limbe!

- Limbe Food Share Team`,
		donation.DonorName, pin, s.cfg.FrontendURL, donation.ID,
		donation.Title, donation.Quantity, donation.PickupAddress)

	return s.sendTextEmail(donation.DonorEmail, subject, body)
}

// SendClaimNotification tells the donor a volunteer wants their donation.
// The volunteer's phone stays masked until the 5-minute hold lapses.
func (s *EmailService) SendClaimNotification(donation *models.Donation, claim *models.Claim) error {
	subject := "Someone wants your food donation! - Limbe Food Share"

	body := fmt.Sprintf(`Hello %s,

Great news! A volunteer wants to pick up your donation:

Donation: %s
Quantity: %s

Volunteer: %s
Phone: %s

The volunteer has a 5-minute hold. After that, their full contact info will be revealed automatically.

View details: %s/donations/%s

Thank you for reducing food waste!

- Limbe Food Share Team`,
		donation.DonorName, donation.Title, donation.Quantity,
		claim.VolunteerName, claim.MaskedPhone(), s.cfg.FrontendURL, donation.ID)

	return s.sendTextEmail(donation.DonorEmail, subject, body)
}

// sendTextEmail sends a plain text email with the given subject and body
func (s *EmailService) sendTextEmail(to, subject, body string) error {
	from := fmt.Sprintf("%s <%s>", s.cfg.SMTPFromName, s.cfg.SMTPFrom)
	message := fmt.Sprintf("From: %s\r\n", from)
	message += fmt.Sprintf("To: %s\r\n", to)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "Content-Type: text/plain; charset=\"UTF-8\"\r\n"
	message += "\r\n"
	message += body
	return s.sendSMTP(to, []byte(message))
}

// sendSMTP sends an email via SMTP
func (s *EmailService) sendSMTP(to string, message []byte) error {
	// Setup authentication
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)

	// Connect to SMTP server
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	// For TLS connection (port 465)
	if s.cfg.SMTPPort == 465 {
		// Create TLS config
		tlsConfig := &tls.Config{
			ServerName: s.cfg.SMTPHost,
		}

		// Connect with TLS
		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		defer conn.Close()

		// Create SMTP client
		client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
		defer client.Close()

		// Authenticate
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}

		// Set sender and recipient
		if err := client.Mail(s.cfg.SMTPFrom); err != nil {
			return err
		}
		if err := client.Rcpt(to); err != nil {
			return err
		}

		// Send message
		w, err := client.Data()
		if err != nil {
			return err
		}
		_, err = w.Write(message)
		if err != nil {
			return err
		}
		err = w.Close()
		if err != nil {
			return err
		}

		return client.Quit()
	}

	// For STARTTLS connection (port 587)
	return smtp.SendMail(addr, auth, s.cfg.SMTPFrom, []string{to}, message)
}
