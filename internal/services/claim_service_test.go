package services

import (
	"testing"
	"time"

	"github.com/Amuam1er/limbe-food-share/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClaimService(t *testing.T, clock *testClock) (*ClaimService, *stubNotifier) {
	t.Helper()
	db := setupTestDB(t)
	notifier := &stubNotifier{}
	svc := NewClaimService(db, testConfig(), notifier)
	svc.SetNowFunc(clock.Now)
	return svc, notifier
}

func TestSubmitClaimFirstClaimantGetsHold(t *testing.T) {
	clock := newTestClock(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))
	svc, notifier := newClaimService(t, clock)
	donation := seedDonation(t, svc.db, clock.Now())

	claim, err := svc.SubmitClaim(donation.ID, testVolunteer)
	require.NoError(t, err)

	assert.Equal(t, models.ClaimStatusPending, claim.Status)
	assert.Equal(t, clock.Now(), claim.ClaimedAt)
	assert.False(t, claim.PhoneRevealed)
	assert.Nil(t, claim.ConfirmedAt)

	// donor was notified with the masked phone
	require.Len(t, notifier.claims, 1)
	assert.Equal(t, "mary@example.com", notifier.claims[0].DonorEmail)
	assert.Equal(t, "237***789", notifier.claims[0].MaskedPhone)
}

func TestSubmitClaimSecondClaimantIsWaitlisted(t *testing.T) {
	clock := newTestClock(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))
	svc, notifier := newClaimService(t, clock)
	donation := seedDonation(t, svc.db, clock.Now())

	first, err := svc.SubmitClaim(donation.ID, testVolunteer)
	require.NoError(t, err)

	clock.Advance(time.Minute)
	second, err := svc.SubmitClaim(donation.ID, VolunteerInfo{Name: "Bate Ashu", Phone: "237698765432"})
	require.NoError(t, err)

	assert.Equal(t, models.ClaimStatusWaitlisted, second.Status)

	// the first claim is untouched
	var reloaded models.Claim
	require.NoError(t, svc.db.First(&reloaded, "id = ?", first.ID).Error)
	assert.Equal(t, models.ClaimStatusPending, reloaded.Status)

	// waitlisting sends no notification
	assert.Len(t, notifier.claims, 1)
}

func TestSubmitClaimUnavailableDonation(t *testing.T) {
	clock := newTestClock(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))
	svc, _ := newClaimService(t, clock)

	t.Run("unverified donation", func(t *testing.T) {
		donation := seedDonation(t, svc.db, clock.Now())
		require.NoError(t, svc.db.Model(donation).Update("is_verified", false).Error)

		_, err := svc.SubmitClaim(donation.ID, testVolunteer)
		assert.ErrorIs(t, err, ErrDonationUnavailable)
	})

	t.Run("pickup window closed", func(t *testing.T) {
		donation := seedDonation(t, svc.db, clock.Now())
		require.NoError(t, svc.db.Model(donation).Update("pickup_window_end", clock.Now().Add(-time.Minute)).Error)

		_, err := svc.SubmitClaim(donation.ID, testVolunteer)
		assert.ErrorIs(t, err, ErrDonationUnavailable)
	})

	t.Run("unknown donation", func(t *testing.T) {
		_, err := svc.SubmitClaim(seedDonation(t, svc.db, clock.Now()).ID, testVolunteer)
		require.NoError(t, err)
		_, err = svc.SubmitClaim(uuid.New(), testVolunteer)
		assert.ErrorIs(t, err, ErrDonationNotFound)
	})
}

func TestListClaimsSweepPromotesExpiredHold(t *testing.T) {
	clock := newTestClock(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))
	svc, _ := newClaimService(t, clock)
	donation := seedDonation(t, svc.db, clock.Now())

	claim, err := svc.SubmitClaim(donation.ID, testVolunteer)
	require.NoError(t, err)

	// inside the hold nothing moves
	clock.Advance(4 * time.Minute)
	claims, err := svc.ListClaims(donation.ID)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, models.ClaimStatusPending, claims[0].Status)

	// exactly at the deadline the hold is still honoured
	clock.Advance(time.Minute)
	claims, err = svc.ListClaims(donation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusPending, claims[0].Status)

	// one second past the deadline the read promotes it
	clock.Advance(time.Second)
	claims, err = svc.ListClaims(donation.ID)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, models.ClaimStatusConfirmed, claims[0].Status)
	assert.True(t, claims[0].PhoneRevealed)
	require.NotNil(t, claims[0].ConfirmedAt)
	assert.Equal(t, clock.Now(), *claims[0].ConfirmedAt)
	assert.Equal(t, claim.ID, claims[0].ID)

	// promotion cascades to the donation
	var reloaded models.Donation
	require.NoError(t, svc.db.First(&reloaded, "id = ?", donation.ID).Error)
	assert.Equal(t, models.DonationStatusClaimed, reloaded.Status)
}

func TestAutoConfirmIsIdempotent(t *testing.T) {
	clock := newTestClock(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))
	svc, _ := newClaimService(t, clock)
	donation := seedDonation(t, svc.db, clock.Now())

	claim, err := svc.SubmitClaim(donation.ID, testVolunteer)
	require.NoError(t, err)

	clock.Advance(models.HoldDuration + time.Second)

	promoted, err := svc.AutoConfirm(claim.ID)
	require.NoError(t, err)
	assert.True(t, promoted)

	promoted, err = svc.AutoConfirm(claim.ID)
	require.NoError(t, err)
	assert.False(t, promoted)

	var reloaded models.Claim
	require.NoError(t, svc.db.First(&reloaded, "id = ?", claim.ID).Error)
	assert.Equal(t, models.ClaimStatusConfirmed, reloaded.Status)
}

func TestListClaimsNeverPromotesWaitlisted(t *testing.T) {
	clock := newTestClock(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))
	svc, _ := newClaimService(t, clock)
	donation := seedDonation(t, svc.db, clock.Now())

	_, err := svc.SubmitClaim(donation.ID, testVolunteer)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	waitlisted, err := svc.SubmitClaim(donation.ID, VolunteerInfo{Name: "Bate Ashu", Phone: "237698765432"})
	require.NoError(t, err)

	// long past every deadline
	clock.Advance(time.Hour)
	claims, err := svc.ListClaims(donation.ID)
	require.NoError(t, err)
	require.Len(t, claims, 2)

	// FIFO order: earliest claim first
	assert.Equal(t, models.ClaimStatusConfirmed, claims[0].Status)
	assert.Equal(t, waitlisted.ID, claims[1].ID)
	assert.Equal(t, models.ClaimStatusWaitlisted, claims[1].Status)
	assert.False(t, claims[1].PhoneRevealed)
}

func TestConfirmPickup(t *testing.T) {
	clock := newTestClock(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))
	svc, _ := newClaimService(t, clock)
	donation := seedDonation(t, svc.db, clock.Now())

	claim, err := svc.SubmitClaim(donation.ID, testVolunteer)
	require.NoError(t, err)

	// pickup confirmation is not gated on a prior confirmed status; a
	// volunteer arriving inside their hold completes directly from pending
	clock.Advance(2 * time.Minute)
	picked, err := svc.ConfirmPickup(claim.ID)
	require.NoError(t, err)

	assert.Equal(t, models.ClaimStatusPickedUp, picked.Status)
	require.NotNil(t, picked.PickedUpAt)
	assert.Equal(t, clock.Now(), *picked.PickedUpAt)

	var reloaded models.Donation
	require.NoError(t, svc.db.First(&reloaded, "id = ?", donation.ID).Error)
	assert.Equal(t, models.DonationStatusPickedUp, reloaded.Status)

	_, err = svc.ConfirmPickup(uuid.New())
	assert.ErrorIs(t, err, ErrClaimNotFound)
}

func TestPickedUpDonationNotClaimable(t *testing.T) {
	clock := newTestClock(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))
	svc, _ := newClaimService(t, clock)
	donation := seedDonation(t, svc.db, clock.Now())

	claim, err := svc.SubmitClaim(donation.ID, testVolunteer)
	require.NoError(t, err)
	_, err = svc.ConfirmPickup(claim.ID)
	require.NoError(t, err)

	_, err = svc.SubmitClaim(donation.ID, VolunteerInfo{Name: "Bate Ashu", Phone: "237698765432"})
	assert.ErrorIs(t, err, ErrDonationUnavailable)
}
