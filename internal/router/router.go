// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/flypig-ai/flypig-backend/internal/config"
	"github.com/flypig-ai/flypig-backend/internal/gamma"
	"github.com/flypig-ai/flypig-backend/internal/gemini"
	"github.com/flypig-ai/flypig-backend/internal/handlers"
	"github.com/flypig-ai/flypig-backend/internal/middleware"
	"github.com/flypig-ai/flypig-backend/internal/services"
	"github.com/flypig-ai/flypig-backend/internal/utils"
)

// Initialize wires stores, services and routes. The returned cleanup stops
// background workers and is called from the shutdown path.
func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, func()) {
	// Stores
	userStore := services.NewUserStore(db)
	orderStore := services.NewOrderStore(db)

	// Upstream clients
	geminiClient := gemini.NewClient(gemini.Options{
		APIKey:  cfg.Gemini.APIKey,
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.Model,
	})

	// Services
	authService := services.NewAuthService(userStore, cfg)
	analysisService := services.NewAnalysisService(geminiClient, userStore, cfg)
	adminService := services.NewAdminService(userStore, cfg)

	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Warn("Storage disabled: S3 client could not be created")
		storageService = services.NewDisabledStorageService(cfg)
	}

	var generationService *services.GenerationService
	if cfg.GammaEnabled() {
		gammaClient := gamma.NewClient(gamma.Options{
			APIKey:  cfg.Gamma.APIKey,
			BaseURL: cfg.Gamma.BaseURL,
		})
		generationService = services.NewGenerationService(gammaClient, cfg)
	} else {
		logrus.Warn("Document generation disabled: GAMMA_API_KEY not set")
	}

	var paymentService *services.PaymentService
	if cfg.ECPayEnabled() {
		paymentService, err = services.NewPaymentService(userStore, orderStore, cfg)
		if err != nil {
			logrus.WithError(err).Warn("Payments disabled: gateway credentials rejected")
		}
	} else {
		logrus.Warn("Payments disabled: ECPay credentials not set")
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	apiHandler := handlers.NewAPIHandler(analysisService, generationService, paymentService, adminService, storageService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS([]string{cfg.Frontend.BaseURL}))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Single-endpoint action protocol
	r.POST("/api", middleware.ActionRateLimit(), middleware.BearerAuth(), apiHandler.Dispatch)

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Payment gateway callback. Server-to-server, no auth header.
		if paymentService != nil {
			paymentHandler := handlers.NewPaymentHandler(paymentService)
			v1.POST("/payments/ecpay/callback", paymentHandler.ECPayCallback)
		}
	}

	cleanup := func() {
		if generationService != nil {
			generationService.Close()
		}
	}
	return r, cleanup
}
