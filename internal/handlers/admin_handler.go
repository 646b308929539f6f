package handlers

import (
	"net/http"
	"strconv"

	"github.com/Amuam1er/limbe-food-share/internal/services"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// Login handles admin login
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := h.adminService.Login(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"name":     user.Name,
			"is_admin": user.IsAdmin,
		},
	})
}

// GetAllDonations lists donations for moderation with filters and pagination
func (h *AdminHandler) GetAllDonations(c *gin.Context) {
	offset, limit := pagination(c)

	var verified *bool
	if v := c.Query("is_verified"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "is_verified must be a boolean"})
			return
		}
		verified = &parsed
	}

	donations, total, err := h.adminService.GetAllDonations(offset, limit,
		c.Query("status"), c.Query("donor_type"), verified, c.Query("search"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list := make([]gin.H, 0, len(donations))
	for _, donation := range donations {
		item := donationJSON(donation)
		// moderation view includes the PIN audit trail
		item["verification_pin"] = donation.VerificationPin
		item["pin_created_at"] = donation.PinCreatedAt
		list = append(list, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"donations": list,
		"total":     total,
		"offset":    offset,
		"limit":     limit,
	})
}

// GetAllClaims lists claims for moderation with a status filter
func (h *AdminHandler) GetAllClaims(c *gin.Context) {
	offset, limit := pagination(c)

	claims, total, err := h.adminService.GetAllClaims(offset, limit, c.Query("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list := make([]gin.H, 0, len(claims))
	for _, claim := range claims {
		item := claimJSON(claim)
		// admins always see the real phone
		item["volunteer_phone"] = claim.VolunteerPhone
		if claim.Donation != nil {
			item["donation_title"] = claim.Donation.Title
		}
		list = append(list, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"claims": list,
		"total":  total,
		"offset": offset,
		"limit":  limit,
	})
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return offset, limit
}
