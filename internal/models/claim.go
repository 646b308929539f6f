package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ClaimStatusPending    = "pending"
	ClaimStatusConfirmed  = "confirmed"
	ClaimStatusPickedUp   = "picked_up"
	ClaimStatusCancelled  = "cancelled"
	ClaimStatusWaitlisted = "waitlisted"
)

// HoldDuration is the exclusive window a pending claim gets before it is
// auto-confirmed and the volunteer's contact details are revealed.
const HoldDuration = 5 * time.Minute

type Claim struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DonationID uuid.UUID `gorm:"type:uuid;not null;index" json:"donation_id"`

	VolunteerName  string `gorm:"size:200;not null" json:"volunteer_name"`
	VolunteerPhone string `gorm:"size:20;not null" json:"-"`
	VolunteerEmail string `json:"volunteer_email,omitempty"`

	Status string `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	ClaimedAt   time.Time  `gorm:"not null;index" json:"claimed_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	PickedUpAt  *time.Time `json:"picked_up_at,omitempty"`

	PhoneRevealed bool `gorm:"default:false" json:"phone_revealed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Donation *Donation `gorm:"foreignKey:DonationID" json:"donation,omitempty"`
}

func (c *Claim) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsHoldExpired reports whether the 5-minute hold has lapsed. A claim held
// exactly HoldDuration is still inside its hold.
func (c *Claim) IsHoldExpired(now time.Time) bool {
	if c.Status != ClaimStatusPending {
		return false
	}
	return now.Sub(c.ClaimedAt) > HoldDuration
}

// IsActive reports whether this claim blocks new claimants from getting a
// hold on the donation.
func (c *Claim) IsActive() bool {
	return c.Status == ClaimStatusPending || c.Status == ClaimStatusConfirmed
}

// MaskedPhone returns the volunteer's phone number, masked while the claim
// is still inside its hold. Once revealed (or confirmed/picked up) the full
// number is returned.
func (c *Claim) MaskedPhone() string {
	if c.PhoneRevealed || c.Status == ClaimStatusConfirmed || c.Status == ClaimStatusPickedUp {
		return c.VolunteerPhone
	}
	if len(c.VolunteerPhone) > 6 {
		return c.VolunteerPhone[:3] + "***" + c.VolunteerPhone[len(c.VolunteerPhone)-3:]
	}
	return "***"
}
