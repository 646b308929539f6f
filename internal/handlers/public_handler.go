package handlers

import (
	"net/http"

	"github.com/Amuam1er/limbe-food-share/internal/services"
	"github.com/gin-gonic/gin"
)

type PublicHandler struct {
	donationService *services.DonationService
}

func NewPublicHandler(donationService *services.DonationService) *PublicHandler {
	return &PublicHandler{donationService: donationService}
}

// GetAvailableDonations returns donations volunteers can claim right now
func (h *PublicHandler) GetAvailableDonations(c *gin.Context) {
	donations, err := h.donationService.ListAvailable()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load donations"})
		return
	}

	list := make([]gin.H, 0, len(donations))
	for _, donation := range donations {
		list = append(list, donationJSON(donation))
	}

	c.JSON(http.StatusOK, gin.H{"donations": list})
}
