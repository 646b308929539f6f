package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Amuam1er/limbe-food-share/internal/models"
	"github.com/Amuam1er/limbe-food-share/internal/services"
	"github.com/Amuam1er/limbe-food-share/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DonationHandler struct {
	donationService *services.DonationService
	claimService    *services.ClaimService
	posterService   *services.PosterService
}

func NewDonationHandler(donationService *services.DonationService, claimService *services.ClaimService, posterService *services.PosterService) *DonationHandler {
	return &DonationHandler{
		donationService: donationService,
		claimService:    claimService,
		posterService:   posterService,
	}
}

// CreateDonation handles a donor posting a new donation (multipart form,
// optional photo). The donation starts unverified; the PIN email goes out
// before the response.
func (h *DonationHandler) CreateDonation(c *gin.Context) {
	input := services.CreateDonationInput{
		DonorName:     validation.SanitizeString(c.PostForm("donor_name")),
		DonorType:     c.PostForm("donor_type"),
		DonorPhone:    validation.SanitizeString(c.PostForm("donor_phone")),
		DonorEmail:    validation.SanitizeString(c.PostForm("donor_email")),
		Title:         validation.SanitizeString(c.PostForm("title")),
		Description:   validation.SanitizeString(c.PostForm("description")),
		Quantity:      validation.SanitizeString(c.PostForm("quantity")),
		PickupAddress: validation.SanitizeString(c.PostForm("pickup_address")),
	}

	if input.DonorName == "" || input.Title == "" || input.Quantity == "" || input.PickupAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "donor_name, title, quantity and pickup_address are required"})
		return
	}
	if input.DonorType != models.DonorTypeHousehold && input.DonorType != models.DonorTypeRestaurant {
		c.JSON(http.StatusBadRequest, gin.H{"error": "donor_type must be 'household' or 'restaurant'"})
		return
	}
	if !validation.ValidatePhone(input.DonorPhone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
		return
	}
	if !validation.ValidateEmail(input.DonorEmail) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}

	expiryTime, err := time.Parse(time.RFC3339, c.PostForm("expiry_time"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expiry_time must be RFC3339"})
		return
	}
	pickupWindowEnd, err := time.Parse(time.RFC3339, c.PostForm("pickup_window_end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pickup_window_end must be RFC3339"})
		return
	}
	input.ExpiryTime = expiryTime.UTC()
	input.PickupWindowEnd = pickupWindowEnd.UTC()

	if lat := c.PostForm("latitude"); lat != "" {
		v, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "latitude must be a number"})
			return
		}
		input.Latitude = &v
	}
	if lng := c.PostForm("longitude"); lng != "" {
		v, err := strconv.ParseFloat(lng, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "longitude must be a number"})
			return
		}
		input.Longitude = &v
	}

	if file, err := c.FormFile("photo"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read photo"})
			return
		}
		defer f.Close()
		input.Photo = f
		input.PhotoFilename = file.Filename
		input.PhotoContentType = file.Header.Get("Content-Type")
	}

	donation, err := h.donationService.CreateDonation(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  fmt.Sprintf("Donation posted! Check your email (%s) for the verification PIN.", donation.DonorEmail),
		"donation": donationJSON(donation),
	})
}

// VerifyDonation handles the donor entering their 4-digit PIN
func (h *DonationHandler) VerifyDonation(c *gin.Context) {
	donationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid donation ID"})
		return
	}

	var req struct {
		Pin string `json:"pin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validation.ValidatePin(req.Pin) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "PIN must be 4 digits"})
		return
	}

	donation, err := h.donationService.VerifyDonation(donationID, req.Pin)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDonationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrInvalidPin):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired PIN. Please check your email."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Donation verified! It's now visible to volunteers.",
		"donation": donationJSON(donation),
	})
}

// GetDonation returns a donation with its claims. Reading the claim list
// promotes any pending claim whose hold has lapsed.
func (h *DonationHandler) GetDonation(c *gin.Context) {
	donationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid donation ID"})
		return
	}

	claims, err := h.claimService.ListClaims(donationID)
	if err != nil {
		if errors.Is(err, services.ErrDonationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Re-read after the sweep so the donation status reflects any promotion
	donation, err := h.donationService.GetDonationByID(donationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	claimList := make([]gin.H, 0, len(claims))
	for _, claim := range claims {
		claimList = append(claimList, claimJSON(claim))
	}

	c.JSON(http.StatusOK, gin.H{
		"donation": donationJSON(donation),
		"claims":   claimList,
	})
}

// GetPoster streams a printable PDF poster for a donation
func (h *DonationHandler) GetPoster(c *gin.Context) {
	donationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid donation ID"})
		return
	}

	donation, err := h.donationService.GetDonationByID(donationID)
	if err != nil {
		if errors.Is(err, services.ErrDonationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	pdf, err := h.posterService.GenerateDonationPosterPDF(donation)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate poster"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=donation-%s.pdf", donation.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// donationJSON serializes a donation for API responses
func donationJSON(d *models.Donation) gin.H {
	return gin.H{
		"id":                  d.ID,
		"donor_name":          d.DonorName,
		"donor_type":          d.DonorType,
		"donor_phone":         d.DonorPhone,
		"donor_email":         d.DonorEmail,
		"title":               d.Title,
		"description":         d.Description,
		"quantity":            d.Quantity,
		"photo_url":           d.PhotoURL,
		"pickup_address":      d.PickupAddress,
		"latitude":            d.Latitude,
		"longitude":           d.Longitude,
		"expiry_time":         d.ExpiryTime,
		"pickup_window_start": d.PickupWindowStart,
		"pickup_window_end":   d.PickupWindowEnd,
		"status":              d.Status,
		"is_verified":         d.IsVerified,
		"created_at":          d.CreatedAt,
	}
}
