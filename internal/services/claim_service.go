package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/Amuam1er/limbe-food-share/internal/config"
	"github.com/Amuam1er/limbe-food-share/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrClaimNotFound = errors.New("claim not found")
	// ErrDonationUnavailable means the donation cannot be claimed: not
	// verified yet, already handed over, expired, or past its pickup window.
	ErrDonationUnavailable = errors.New("donation is no longer available")
)

// VolunteerInfo is the contact data a volunteer submits with a claim.
type VolunteerInfo struct {
	Name  string
	Phone string
	Email string
}

// ClaimService coordinates the claim lifecycle: hold admission, waitlisting,
// lazy hold-expiry promotion and pickup confirmation. Every transition that
// touches both a claim and its donation runs in a single transaction.
type ClaimService struct {
	db       *gorm.DB
	cfg      *config.Config
	notifier NotificationGateway
	nowFunc  func() time.Time
}

func NewClaimService(db *gorm.DB, cfg *config.Config, notifier NotificationGateway) *ClaimService {
	return &ClaimService{
		db:       db,
		cfg:      cfg,
		notifier: notifier,
		nowFunc:  func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the service clock. Used by tests to pin time.
func (s *ClaimService) SetNowFunc(now func() time.Time) {
	s.nowFunc = now
}

// SubmitClaim creates a claim on a donation. The first claimant gets a
// pending claim with a 5-minute exclusive hold and the donor is notified
// with the volunteer's masked phone. While a pending or confirmed claim
// exists, later claimants are waitlisted silently.
//
// The availability check, the active-claim lookup and the insert run inside
// one transaction holding a row lock on the donation, so two concurrent
// volunteers cannot both pass the no-active-claim check.
func (s *ClaimService) SubmitClaim(donationID uuid.UUID, volunteer VolunteerInfo) (*models.Claim, error) {
	now := s.nowFunc()

	var claim *models.Claim
	var donation models.Donation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&donation, "id = ?", donationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDonationNotFound
			}
			return err
		}

		if !donation.IsAvailable(now) {
			return ErrDonationUnavailable
		}

		var active int64
		if err := tx.Model(&models.Claim{}).
			Where("donation_id = ? AND status IN ?", donationID,
				[]string{models.ClaimStatusPending, models.ClaimStatusConfirmed}).
			Count(&active).Error; err != nil {
			return err
		}

		status := models.ClaimStatusPending
		if active > 0 {
			status = models.ClaimStatusWaitlisted
		}

		claim = &models.Claim{
			DonationID:     donationID,
			VolunteerName:  volunteer.Name,
			VolunteerPhone: volunteer.Phone,
			VolunteerEmail: volunteer.Email,
			Status:         status,
			ClaimedAt:      now,
		}
		return tx.Create(claim).Error
	})
	if err != nil {
		return nil, err
	}

	claim.Donation = &donation

	// Only the claimant holding the donation triggers a donor notification;
	// waitlisted claims stay silent.
	if claim.Status == models.ClaimStatusPending {
		if err := s.notifier.SendClaimNotification(&donation, claim); err != nil {
			return nil, fmt.Errorf("failed to send claim notification: %w", err)
		}
	}

	return claim, nil
}

// ListClaims returns a donation's claims in FIFO order (claimed_at
// ascending). Before returning it sweeps every pending claim through the
// hold-expiry check and promotes the ones whose hold has lapsed. Promotion
// is driven only by reads, so a claim can sit past its nominal deadline
// until the next read; there is no background sweeper.
func (s *ClaimService) ListClaims(donationID uuid.UUID) ([]*models.Claim, error) {
	now := s.nowFunc()

	var claims []*models.Claim
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var donation models.Donation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&donation, "id = ?", donationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDonationNotFound
			}
			return err
		}

		if err := tx.Where("donation_id = ?", donationID).
			Order("claimed_at ASC").
			Find(&claims).Error; err != nil {
			return err
		}

		for _, claim := range claims {
			if _, err := s.autoConfirm(tx, claim, &donation, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// AutoConfirm promotes a single pending claim whose hold has lapsed and
// reports whether a promotion happened. Calling it on an already-confirmed
// claim is a no-op.
func (s *ClaimService) AutoConfirm(claimID uuid.UUID) (bool, error) {
	now := s.nowFunc()

	promoted := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var claim models.Claim
		if err := tx.First(&claim, "id = ?", claimID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClaimNotFound
			}
			return err
		}

		var donation models.Donation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&donation, "id = ?", claim.DonationID).Error; err != nil {
			return err
		}

		var err error
		promoted, err = s.autoConfirm(tx, &claim, &donation, now)
		return err
	})
	return promoted, err
}

// autoConfirm applies the promotion transition inside tx: claim becomes
// confirmed with its phone revealed, and the parent donation becomes
// claimed. Both writes commit or roll back together.
func (s *ClaimService) autoConfirm(tx *gorm.DB, claim *models.Claim, donation *models.Donation, now time.Time) (bool, error) {
	if !claim.IsHoldExpired(now) {
		return false, nil
	}

	claim.Status = models.ClaimStatusConfirmed
	claim.ConfirmedAt = &now
	claim.PhoneRevealed = true
	if err := tx.Save(claim).Error; err != nil {
		return false, err
	}

	donation.Status = models.DonationStatusClaimed
	if err := tx.Save(donation).Error; err != nil {
		return false, err
	}
	return true, nil
}

// ConfirmPickup marks a claim as picked up and cascades the donation to
// picked_up, both in one transaction. There is deliberately no guard
// requiring the claim to be confirmed first: a volunteer who shows up inside
// their hold can complete the pickup directly.
func (s *ClaimService) ConfirmPickup(claimID uuid.UUID) (*models.Claim, error) {
	now := s.nowFunc()

	var claim models.Claim
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&claim, "id = ?", claimID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClaimNotFound
			}
			return err
		}

		claim.Status = models.ClaimStatusPickedUp
		claim.PickedUpAt = &now
		if err := tx.Save(&claim).Error; err != nil {
			return err
		}

		return tx.Model(&models.Donation{}).
			Where("id = ?", claim.DonationID).
			Update("status", models.DonationStatusPickedUp).Error
	})
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

// GetClaimByID retrieves a claim with its donation preloaded
func (s *ClaimService) GetClaimByID(claimID uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	if err := s.db.Preload("Donation").First(&claim, "id = ?", claimID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return &claim, nil
}
