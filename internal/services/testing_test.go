package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/Amuam1er/limbe-food-share/internal/config"
	"github.com/Amuam1er/limbe-food-share/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// in-memory sqlite: every connection is its own database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.Migrate(db))
	return db
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.FrontendURL = "http://localhost:3000"
	return cfg
}

// testClock is a settable time source, handed to services via SetNowFunc.
type testClock struct {
	now time.Time
}

func newTestClock(now time.Time) *testClock { return &testClock{now: now} }

func (c *testClock) Now() time.Time              { return c.now }
func (c *testClock) Advance(d time.Duration)     { c.now = c.now.Add(d) }
func (c *testClock) Set(now time.Time)           { c.now = now }

// notice records one donor notification about a claim.
type notice struct {
	DonorEmail  string
	MaskedPhone string
}

// stubNotifier records outbound notifications instead of sending mail.
type stubNotifier struct {
	pins     []string
	claims   []notice
	failSend bool
}

func (n *stubNotifier) SendDonationVerificationPin(donation *models.Donation, pin string) error {
	if n.failSend {
		return errors.New("smtp unreachable")
	}
	n.pins = append(n.pins, pin)
	return nil
}

func (n *stubNotifier) SendClaimNotification(donation *models.Donation, claim *models.Claim) error {
	if n.failSend {
		return errors.New("smtp unreachable")
	}
	n.claims = append(n.claims, notice{
		DonorEmail:  donation.DonorEmail,
		MaskedPhone: claim.MaskedPhone(),
	})
	return nil
}

// stubUploader returns a deterministic URL without touching S3.
type stubUploader struct {
	uploads int
}

func (u *stubUploader) UploadDonationPhoto(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	u.uploads++
	return fmt.Sprintf("https://media.test/donations/%s", filename), nil
}

// seedDonation inserts a claimable donation: posted, verified, expiring well
// in the future.
func seedDonation(t *testing.T, db *gorm.DB, now time.Time) *models.Donation {
	t.Helper()

	donation := &models.Donation{
		DonorName:         "Mary Ndive",
		DonorType:         models.DonorTypeHousehold,
		DonorPhone:        "237670000001",
		DonorEmail:        "mary@example.com",
		Title:             "5 plates of jollof rice",
		Quantity:          "5 plates",
		PickupAddress:     "12 Church Street, Limbe",
		ExpiryTime:        now.Add(6 * time.Hour),
		PickupWindowStart: now,
		PickupWindowEnd:   now.Add(4 * time.Hour),
		Status:            models.DonationStatusPosted,
		IsVerified:        true,
	}
	require.NoError(t, db.Create(donation).Error)
	return donation
}

var testVolunteer = VolunteerInfo{
	Name:  "Eposi Lyonga",
	Phone: "237123456789",
	Email: "eposi@example.com",
}
