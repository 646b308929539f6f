package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Amuam1er/limbe-food-share/internal/config"
	"github.com/Amuam1er/limbe-food-share/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDonationNotFound = errors.New("donation not found")
	// ErrInvalidPin covers both a wrong PIN and an expired one; the two are
	// not distinguished to the caller.
	ErrInvalidPin = errors.New("invalid or expired PIN")
)

type DonationService struct {
	db       *gorm.DB
	cfg      *config.Config
	uploader MediaUploader
	notifier NotificationGateway
	nowFunc  func() time.Time
}

func NewDonationService(db *gorm.DB, cfg *config.Config, uploader MediaUploader, notifier NotificationGateway) *DonationService {
	return &DonationService{
		db:       db,
		cfg:      cfg,
		uploader: uploader,
		notifier: notifier,
		nowFunc:  func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the service clock. Used by tests to pin time.
func (s *DonationService) SetNowFunc(now func() time.Time) {
	s.nowFunc = now
}

// CreateDonationInput carries the donor-submitted listing fields. Photo is
// optional; when set it is uploaded before the donation is persisted.
type CreateDonationInput struct {
	DonorName  string
	DonorType  string
	DonorPhone string
	DonorEmail string

	Title       string
	Description string
	Quantity    string

	PickupAddress   string
	Latitude        *float64
	Longitude       *float64
	ExpiryTime      time.Time
	PickupWindowEnd time.Time

	Photo            io.Reader
	PhotoFilename    string
	PhotoContentType string
}

// CreateDonation persists a new unverified donation, issues its verification
// PIN and emails it to the donor. The pickup window opens at creation time.
// A failed PIN delivery surfaces as an error; the donation stays persisted so
// the donor can be re-notified.
func (s *DonationService) CreateDonation(ctx context.Context, input CreateDonationInput) (*models.Donation, error) {
	now := s.nowFunc()

	donation := &models.Donation{
		DonorName:         input.DonorName,
		DonorType:         input.DonorType,
		DonorPhone:        input.DonorPhone,
		DonorEmail:        input.DonorEmail,
		Title:             input.Title,
		Description:       input.Description,
		Quantity:          input.Quantity,
		PickupAddress:     input.PickupAddress,
		Latitude:          input.Latitude,
		Longitude:         input.Longitude,
		ExpiryTime:        input.ExpiryTime,
		PickupWindowStart: now,
		PickupWindowEnd:   input.PickupWindowEnd,
		Status:            models.DonationStatusPosted,
	}

	if input.Photo != nil {
		photoURL, err := s.uploader.UploadDonationPhoto(ctx, input.PhotoFilename, input.PhotoContentType, input.Photo)
		if err != nil {
			return nil, err
		}
		donation.PhotoURL = photoURL
	}

	if err := s.db.Create(donation).Error; err != nil {
		return nil, err
	}

	pin := donation.GeneratePin(now)
	if err := s.db.Save(donation).Error; err != nil {
		return nil, err
	}

	if err := s.notifier.SendDonationVerificationPin(donation, pin); err != nil {
		return nil, fmt.Errorf("failed to send verification email: %w", err)
	}

	return donation, nil
}

// VerifyDonation checks the donor-supplied PIN and activates the donation.
// Verifying an already-verified donation is a no-op success.
func (s *DonationService) VerifyDonation(donationID uuid.UUID, pin string) (*models.Donation, error) {
	donation, err := s.GetDonationByID(donationID)
	if err != nil {
		return nil, err
	}

	if donation.IsVerified {
		return donation, nil
	}

	if !donation.CheckPin(pin, s.nowFunc()) {
		return nil, ErrInvalidPin
	}

	if err := s.db.Save(donation).Error; err != nil {
		return nil, err
	}
	return donation, nil
}

// GetDonationByID retrieves a donation by ID
func (s *DonationService) GetDonationByID(donationID uuid.UUID) (*models.Donation, error) {
	var donation models.Donation
	if err := s.db.First(&donation, "id = ?", donationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}
	return &donation, nil
}

// ListAvailable returns donations volunteers can claim right now: posted,
// verified, not yet expired and still inside their pickup window. Newest
// first.
func (s *DonationService) ListAvailable() ([]*models.Donation, error) {
	now := s.nowFunc()
	var donations []*models.Donation
	err := s.db.
		Where("status = ? AND is_verified = ? AND expiry_time > ? AND pickup_window_end > ?",
			models.DonationStatusPosted, true, now, now).
		Order("created_at DESC").
		Find(&donations).Error
	if err != nil {
		return nil, err
	}
	return donations, nil
}
