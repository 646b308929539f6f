package models

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DonorTypeHousehold  = "household"
	DonorTypeRestaurant = "restaurant"
)

const (
	DonationStatusPosted   = "posted"
	DonationStatusClaimed  = "claimed"
	DonationStatusPickedUp = "picked_up"
	DonationStatusExpired  = "expired"
)

// PinValidity is how long a verification PIN stays usable after it was
// generated.
const PinValidity = 10 * time.Minute

type Donation struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	DonorName  string `gorm:"size:200;not null" json:"donor_name"`
	DonorType  string `gorm:"type:varchar(20);not null" json:"donor_type"` // household, restaurant
	DonorPhone string `gorm:"size:20;not null" json:"donor_phone"`
	DonorEmail string `gorm:"not null" json:"donor_email"`

	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Quantity    string `gorm:"size:100;not null" json:"quantity"`
	PhotoURL    string `json:"photo_url,omitempty"`

	PickupAddress     string    `gorm:"type:text;not null" json:"pickup_address"`
	Latitude          *float64  `json:"latitude,omitempty"`
	Longitude         *float64  `json:"longitude,omitempty"`
	ExpiryTime        time.Time `gorm:"not null" json:"expiry_time"`
	PickupWindowStart time.Time `gorm:"not null" json:"pickup_window_start"`
	PickupWindowEnd   time.Time `gorm:"not null" json:"pickup_window_end"`

	Status string `gorm:"type:varchar(20);not null;default:'posted'" json:"status"`

	IsVerified      bool       `gorm:"default:false" json:"is_verified"`
	VerificationPin string     `gorm:"size:4" json:"-"`
	PinCreatedAt    *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Claims []Claim `gorm:"foreignKey:DonationID;constraint:OnDelete:CASCADE" json:"claims,omitempty"`
}

func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// IsAvailable checks if the donation can still be claimed at the given time.
// The status never flips to expired on its own; availability is re-evaluated
// on every read instead.
func (d *Donation) IsAvailable(now time.Time) bool {
	return d.Status == DonationStatusPosted &&
		d.IsVerified &&
		d.ExpiryTime.After(now) &&
		d.PickupWindowEnd.After(now)
}

// GeneratePin assigns a fresh 4-digit verification PIN and returns it.
// The caller persists the donation.
func (d *Donation) GeneratePin(now time.Time) string {
	d.VerificationPin = strconv.Itoa(rand.Intn(9000) + 1000)
	d.PinCreatedAt = &now
	return d.VerificationPin
}

// CheckPin reports whether pin matches and is still inside its validity
// window. A PIN that is exactly PinValidity old is rejected. On success the
// donation is marked verified; the PIN itself is kept for audit. The caller
// persists the donation.
func (d *Donation) CheckPin(pin string, now time.Time) bool {
	if d.VerificationPin == "" || d.PinCreatedAt == nil {
		return false
	}
	if d.VerificationPin != pin {
		return false
	}
	if now.Sub(*d.PinCreatedAt) >= PinValidity {
		return false
	}
	d.IsVerified = true
	return true
}
