package services

import (
	"errors"

	"github.com/Amuam1er/limbe-food-share/internal/config"
	"github.com/Amuam1er/limbe-food-share/internal/models"
	"github.com/Amuam1er/limbe-food-share/pkg/crypto"
	jwtpkg "github.com/Amuam1er/limbe-food-share/pkg/jwt"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAdminService(db *gorm.DB, cfg *config.Config) *AdminService {
	return &AdminService{db: db, cfg: cfg}
}

func (s *AdminService) GetConfig() *config.Config { return s.cfg }

// CreateDefaultAdmin creates the default admin user if it doesn't exist
func (s *AdminService) CreateDefaultAdmin() error {
	// Check if admin already exists
	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", s.cfg.AdminUsername).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil // Admin already exists
	}

	// Hash password
	hashedPassword, err := crypto.HashPassword(s.cfg.AdminPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}

	// Create admin user
	admin := &models.User{
		Username: s.cfg.AdminUsername,
		Email:    s.cfg.AdminEmail,
		Password: hashedPassword,
		Name:     "Administrator",
		IsAdmin:  true,
		IsActive: true,
	}

	return s.db.Create(admin).Error
}

// Login authenticates an admin and returns an access token
func (s *AdminService) Login(username, password string) (string, *models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, errors.New("invalid credentials")
		}
		return "", nil, err
	}

	if !user.IsActive {
		return "", nil, errors.New("account is deactivated")
	}

	if !crypto.CheckPassword(password, user.Password) {
		return "", nil, errors.New("invalid credentials")
	}

	token, err := jwtpkg.GenerateToken(user.ID.String(), jwtpkg.AccessToken, s.cfg.JWTSecret, s.cfg.JWTAccessTokenDuration)
	if err != nil {
		return "", nil, err
	}

	return token, &user, nil
}

// GetUserByID retrieves an admin account by ID (used by the auth middleware)
func (s *AdminService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// GetAllDonations retrieves donations with pagination and the filters the
// moderation view needs: status, donor type, verification flag, and a free
// text search over title, donor name and donor phone.
func (s *AdminService) GetAllDonations(offset, limit int, status, donorType string, verified *bool, search string) ([]*models.Donation, int64, error) {
	var donations []*models.Donation
	var total int64

	query := s.db.Model(&models.Donation{})
	if status != "" {
		switch status {
		case models.DonationStatusPosted, models.DonationStatusClaimed, models.DonationStatusPickedUp, models.DonationStatusExpired:
			query = query.Where("status = ?", status)
		default:
			return nil, 0, errors.New("invalid status; must be posted|claimed|picked_up|expired")
		}
	}
	if donorType != "" {
		if donorType != models.DonorTypeHousehold && donorType != models.DonorTypeRestaurant {
			return nil, 0, errors.New("invalid donor type; must be 'household' or 'restaurant'")
		}
		query = query.Where("donor_type = ?", donorType)
	}
	if verified != nil {
		query = query.Where("is_verified = ?", *verified)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("title ILIKE ? OR donor_name ILIKE ? OR donor_phone ILIKE ?", like, like, like)
	}

	// Count total
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Get paginated results
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&donations).Error; err != nil {
		return nil, 0, err
	}

	return donations, total, nil
}

// GetAllClaims retrieves claims with pagination, optionally filtered by
// status, with the donation preloaded. Newest first.
func (s *AdminService) GetAllClaims(offset, limit int, status string) ([]*models.Claim, int64, error) {
	var claims []*models.Claim
	var total int64

	query := s.db.Model(&models.Claim{})
	if status != "" {
		switch status {
		case models.ClaimStatusPending, models.ClaimStatusConfirmed, models.ClaimStatusPickedUp, models.ClaimStatusCancelled, models.ClaimStatusWaitlisted:
			query = query.Where("status = ?", status)
		default:
			return nil, 0, errors.New("invalid status; must be pending|confirmed|picked_up|cancelled|waitlisted")
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Donation").Offset(offset).Limit(limit).Order("claimed_at DESC").Find(&claims).Error; err != nil {
		return nil, 0, err
	}

	return claims, total, nil
}
