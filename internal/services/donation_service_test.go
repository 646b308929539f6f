package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Amuam1er/limbe-food-share/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDonationService(t *testing.T, clock *testClock) (*DonationService, *stubNotifier, *stubUploader) {
	t.Helper()

	db := setupTestDB(t)
	notifier := &stubNotifier{}
	uploader := &stubUploader{}
	svc := NewDonationService(db, testConfig(), uploader, notifier)
	svc.SetNowFunc(clock.Now)
	return svc, notifier, uploader
}

func donationInput(now time.Time) CreateDonationInput {
	return CreateDonationInput{
		DonorName:       "Mary Ndive",
		DonorType:       models.DonorTypeHousehold,
		DonorPhone:      "237670000001",
		DonorEmail:      "mary@example.com",
		Title:           "5 plates of jollof rice",
		Quantity:        "5 plates",
		PickupAddress:   "12 Church Street, Limbe",
		ExpiryTime:      now.Add(6 * time.Hour),
		PickupWindowEnd: now.Add(4 * time.Hour),
	}
}

func TestCreateDonationSendsVerificationPin(t *testing.T) {
	clock := newTestClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	svc, notifier, uploader := newDonationService(t, clock)

	donation, err := svc.CreateDonation(context.Background(), donationInput(clock.Now()))
	require.NoError(t, err)

	assert.False(t, donation.IsVerified)
	assert.Equal(t, models.DonationStatusPosted, donation.Status)
	assert.Equal(t, clock.Now(), donation.PickupWindowStart)
	assert.Zero(t, uploader.uploads)

	require.Len(t, notifier.pins, 1)
	assert.Equal(t, donation.VerificationPin, notifier.pins[0])
	assert.Len(t, notifier.pins[0], 4)
}

func TestCreateDonationUploadsPhoto(t *testing.T) {
	clock := newTestClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	svc, _, uploader := newDonationService(t, clock)

	input := donationInput(clock.Now())
	input.Photo = strings.NewReader("not really a jpeg")
	input.PhotoFilename = "rice.jpg"
	input.PhotoContentType = "image/jpeg"

	donation, err := svc.CreateDonation(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 1, uploader.uploads)
	assert.Equal(t, "https://media.test/donations/rice.jpg", donation.PhotoURL)
}

func TestCreateDonationPinDeliveryFailure(t *testing.T) {
	clock := newTestClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	svc, notifier, _ := newDonationService(t, clock)
	notifier.failSend = true

	_, err := svc.CreateDonation(context.Background(), donationInput(clock.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send verification email")

	// The listing survives the failed delivery so the donor can be
	// re-notified.
	donations, err := svc.ListAvailable()
	require.NoError(t, err)
	assert.Empty(t, donations) // still unverified, so not listed
}

func TestVerifyDonationPinWindow(t *testing.T) {
	clock := newTestClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	svc, notifier, _ := newDonationService(t, clock)

	donation, err := svc.CreateDonation(context.Background(), donationInput(clock.Now()))
	require.NoError(t, err)
	pin := notifier.pins[0]

	wrong := "0000"
	if pin == wrong {
		wrong = "0001"
	}
	_, err = svc.VerifyDonation(donation.ID, wrong)
	assert.ErrorIs(t, err, ErrInvalidPin)

	clock.Advance(9 * time.Minute)
	verified, err := svc.VerifyDonation(donation.ID, pin)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
}

func TestVerifyDonationExpiredPin(t *testing.T) {
	clock := newTestClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	svc, notifier, _ := newDonationService(t, clock)

	donation, err := svc.CreateDonation(context.Background(), donationInput(clock.Now()))
	require.NoError(t, err)

	clock.Advance(models.PinValidity)
	_, err = svc.VerifyDonation(donation.ID, notifier.pins[0])
	assert.ErrorIs(t, err, ErrInvalidPin)
}

func TestVerifyDonationAlreadyVerified(t *testing.T) {
	clock := newTestClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	svc, notifier, _ := newDonationService(t, clock)

	donation, err := svc.CreateDonation(context.Background(), donationInput(clock.Now()))
	require.NoError(t, err)
	_, err = svc.VerifyDonation(donation.ID, notifier.pins[0])
	require.NoError(t, err)

	// Re-verifying succeeds regardless of the PIN supplied.
	again, err := svc.VerifyDonation(donation.ID, "whatever")
	require.NoError(t, err)
	assert.True(t, again.IsVerified)
}

func TestListAvailableFiltering(t *testing.T) {
	clock := newTestClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	db := setupTestDB(t)
	svc := NewDonationService(db, testConfig(), &stubUploader{}, &stubNotifier{})
	svc.SetNowFunc(clock.Now)

	now := clock.Now()
	listed := seedDonation(t, db, now)

	unverified := seedDonation(t, db, now)
	unverified.IsVerified = false
	require.NoError(t, db.Save(unverified).Error)

	expired := seedDonation(t, db, now)
	expired.ExpiryTime = now.Add(-time.Minute)
	require.NoError(t, db.Save(expired).Error)

	windowClosed := seedDonation(t, db, now)
	windowClosed.PickupWindowEnd = now.Add(-time.Minute)
	require.NoError(t, db.Save(windowClosed).Error)

	claimed := seedDonation(t, db, now)
	claimed.Status = models.DonationStatusClaimed
	require.NoError(t, db.Save(claimed).Error)

	donations, err := svc.ListAvailable()
	require.NoError(t, err)
	require.Len(t, donations, 1)
	assert.Equal(t, listed.ID, donations[0].ID)
}

// Full lifecycle: post, verify near the end of the PIN window, claim, then
// let the hold lapse so the sweep promotes it to a confirmed claim.
func TestDonationLifecycle(t *testing.T) {
	clock := newTestClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	db := setupTestDB(t)
	notifier := &stubNotifier{}
	donations := NewDonationService(db, testConfig(), &stubUploader{}, notifier)
	donations.SetNowFunc(clock.Now)
	claims := NewClaimService(db, testConfig(), notifier)
	claims.SetNowFunc(clock.Now)

	donation, err := donations.CreateDonation(context.Background(), donationInput(clock.Now()))
	require.NoError(t, err)

	available, err := donations.ListAvailable()
	require.NoError(t, err)
	assert.Empty(t, available)

	clock.Advance(9 * time.Minute)
	_, err = donations.VerifyDonation(donation.ID, notifier.pins[0])
	require.NoError(t, err)

	available, err = donations.ListAvailable()
	require.NoError(t, err)
	require.Len(t, available, 1)

	claim, err := claims.SubmitClaim(donation.ID, testVolunteer)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusPending, claim.Status)

	clock.Advance(4 * time.Minute)
	swept, err := claims.ListClaims(donation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusPending, swept[0].Status)

	clock.Advance(models.HoldDuration - 4*time.Minute + time.Second)
	swept, err = claims.ListClaims(donation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusConfirmed, swept[0].Status)
	assert.True(t, swept[0].PhoneRevealed)

	reloaded, err := donations.GetDonationByID(donation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DonationStatusClaimed, reloaded.Status)
	assert.False(t, reloaded.IsAvailable(clock.Now()))
}
