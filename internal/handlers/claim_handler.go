package handlers

import (
	"errors"
	"net/http"

	"github.com/Amuam1er/limbe-food-share/internal/models"
	"github.com/Amuam1er/limbe-food-share/internal/services"
	"github.com/Amuam1er/limbe-food-share/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ClaimHandler struct {
	claimService *services.ClaimService
}

func NewClaimHandler(claimService *services.ClaimService) *ClaimHandler {
	return &ClaimHandler{claimService: claimService}
}

// SubmitClaim handles a volunteer claiming a donation. The first claimant
// gets a 5-minute hold; later claimants are waitlisted.
func (h *ClaimHandler) SubmitClaim(c *gin.Context) {
	donationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid donation ID"})
		return
	}

	var req struct {
		VolunteerName  string `json:"volunteer_name" binding:"required"`
		VolunteerPhone string `json:"volunteer_phone" binding:"required"`
		VolunteerEmail string `json:"volunteer_email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !validation.ValidatePhone(req.VolunteerPhone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
		return
	}
	if req.VolunteerEmail != "" && !validation.ValidateEmail(req.VolunteerEmail) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}

	claim, err := h.claimService.SubmitClaim(donationID, services.VolunteerInfo{
		Name:  validation.SanitizeString(req.VolunteerName),
		Phone: validation.SanitizeString(req.VolunteerPhone),
		Email: validation.SanitizeString(req.VolunteerEmail),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDonationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrDonationUnavailable):
			c.JSON(http.StatusConflict, gin.H{"error": "This donation is no longer available."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	message := "Claim submitted! Donor notified. You have a 5-minute hold."
	if claim.Status == models.ClaimStatusWaitlisted {
		message = "This donation is being claimed. You've been added to the waitlist."
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": message,
		"claim":   claimJSON(claim),
	})
}

// ConfirmPickup handles the final handover confirmation
func (h *ClaimHandler) ConfirmPickup(c *gin.Context) {
	claimID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid claim ID"})
		return
	}

	claim, err := h.claimService.ConfirmPickup(claimID)
	if err != nil {
		if errors.Is(err, services.ErrClaimNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Pickup confirmed! Thank you for reducing food waste.",
		"claim":   claimJSON(claim),
	})
}

// claimJSON serializes a claim for API responses. The volunteer's phone is
// masked while the claim is inside its hold.
func claimJSON(claim *models.Claim) gin.H {
	return gin.H{
		"id":              claim.ID,
		"donation_id":     claim.DonationID,
		"volunteer_name":  claim.VolunteerName,
		"volunteer_phone": claim.MaskedPhone(),
		"volunteer_email": claim.VolunteerEmail,
		"status":          claim.Status,
		"claimed_at":      claim.ClaimedAt,
		"confirmed_at":    claim.ConfirmedAt,
		"picked_up_at":    claim.PickedUpAt,
		"phone_revealed":  claim.PhoneRevealed,
	}
}
