package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Amuam1er/limbe-food-share/internal/config"
	"github.com/Amuam1er/limbe-food-share/internal/handlers"
	"github.com/Amuam1er/limbe-food-share/internal/middleware"
	"github.com/Amuam1er/limbe-food-share/internal/models"
	"github.com/Amuam1er/limbe-food-share/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.New()

	// Initialize database
	db, err := models.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Redis
	redisClient := models.InitRedis(cfg)
	defer redisClient.Close()

	// Initialize services
	emailService := services.NewEmailService(cfg)
	s3Service, err := services.NewS3Service(cfg)
	if err != nil {
		log.Fatalf("Failed to init S3 service: %v", err)
	}
	donationService := services.NewDonationService(db, cfg, s3Service, emailService)
	claimService := services.NewClaimService(db, cfg, emailService)
	posterService := services.NewPosterService(cfg)
	adminService := services.NewAdminService(db, cfg)

	// Create admin user if not exists
	if err := adminService.CreateDefaultAdmin(); err != nil {
		log.Printf("Failed to create default admin: %v", err)
	}

	// Setup Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimiter(redisClient, cfg))

	// Initialize handlers
	donationHandler := handlers.NewDonationHandler(donationService, claimService, posterService)
	claimHandler := handlers.NewClaimHandler(claimService)
	publicHandler := handlers.NewPublicHandler(donationService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Health check outside API group (no /api/v1 prefix)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Setup routes
	api := router.Group("/api/v1")
	{
		// Health check also available under /api/v1/health for compatibility
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		// Catch-all OPTIONS handler for CORS preflight requests
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		// Public routes
		public := api.Group("/public")
		{
			public.GET("/donations", publicHandler.GetAvailableDonations)
		}

		// Donation routes
		donations := api.Group("/donations")
		{
			donations.POST("", middleware.DonationPostRateLimit(redisClient, cfg), donationHandler.CreateDonation)
			donations.GET("/:id", donationHandler.GetDonation)
			donations.POST("/:id/verify", donationHandler.VerifyDonation)
			donations.GET("/:id/poster", donationHandler.GetPoster)
			donations.POST("/:id/claims", claimHandler.SubmitClaim)
		}

		// Claim routes
		claims := api.Group("/claims")
		{
			claims.POST("/:id/pickup", claimHandler.ConfirmPickup)
		}

		// Admin routes
		api.POST("/admin/login", middleware.LoginRateLimit(redisClient, cfg), adminHandler.Login)

		admin := api.Group("/admin")
		admin.Use(middleware.Auth(adminService))
		admin.Use(middleware.AdminOnly())
		{
			admin.GET("/donations", adminHandler.GetAllDonations)
			admin.GET("/claims", adminHandler.GetAllClaims)
		}
	}

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  60 * time.Second, // photo uploads
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
