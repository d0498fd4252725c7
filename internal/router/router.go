// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tiermart/tiermart-backend/internal/config"
	"github.com/tiermart/tiermart-backend/internal/handlers"
	"github.com/tiermart/tiermart-backend/internal/middleware"
	"github.com/tiermart/tiermart-backend/internal/models"
	"github.com/tiermart/tiermart-backend/internal/services"
	"github.com/tiermart/tiermart-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(db, cfg)
	hierarchyService := services.NewHierarchyService(db)
	commissionService := services.NewCommissionService(db)
	productService := services.NewProductService(db)
	orderService := services.NewOrderService(db, cfg, hierarchyService, commissionService)
	walletService := services.NewWalletService(db, cfg)
	topUpService := services.NewTopUpService(db, cfg)
	webhookService := services.NewWebhookService(db, cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService, authService)
	walletHandler := handlers.NewWalletHandler(walletService, topUpService, authService)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	commissionHandler := handlers.NewCommissionHandler(commissionService)
	uploadHandler := handlers.NewUploadHandler(storageService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Payment gateway callback. Authenticated by HMAC signature, not JWT.
		webhooks := v1.Group("/webhooks")
		webhooks.Use(middleware.WebhookRateLimit())
		{
			webhooks.POST("/payment", webhookHandler.PaymentWebhook)
		}

		// Product catalog
		products := v1.Group("/products")
		{
			products.GET("", middleware.OptionalAuth(), productHandler.List)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.Get)
		}

		// Orders
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("", orderHandler.CreatePurchase)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
			orders.PATCH("/:id/status",
				middleware.RoleRequired(models.UserRoleDistributor), orderHandler.UpdateStatus)
		}

		// Wallet
		wallet := v1.Group("/wallet")
		wallet.Use(middleware.AuthRequired())
		{
			wallet.GET("", walletHandler.GetWallet)
			wallet.POST("/topup", walletHandler.CreateTopUp)
			wallet.POST("/withdrawals", walletHandler.RequestWithdrawal)
			wallet.GET("/withdrawals", walletHandler.ListWithdrawals)
			wallet.POST("/deposits", walletHandler.RequestDeposit)
			wallet.POST("/deposits/proof", uploadHandler.UploadDepositProof)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			// Commission policy management
			configs := admin.Group("/commission-configs")
			{
				configs.GET("", commissionHandler.List)
				configs.GET("/active", commissionHandler.GetActive)
				configs.POST("", commissionHandler.Create)
				configs.POST("/:id/activate", commissionHandler.Activate)
				configs.DELETE("/:id", commissionHandler.Delete)
			}

			// Catalog management
			adminProducts := admin.Group("/products")
			{
				adminProducts.POST("", productHandler.Create)
				adminProducts.PATCH("/:id", productHandler.Update)
				adminProducts.DELETE("/:id", productHandler.Deactivate)
				adminProducts.POST("/images", uploadHandler.UploadProductImage)
			}

			// Approval workflows
			withdrawals := admin.Group("/withdrawals")
			{
				withdrawals.POST("/:id/approve", walletHandler.ApproveWithdrawal)
				withdrawals.POST("/:id/reject", walletHandler.RejectWithdrawal)
			}
			deposits := admin.Group("/deposits")
			{
				deposits.GET("", walletHandler.ListPendingDeposits)
				deposits.GET("/proof-url", uploadHandler.GetDepositProofURL)
				deposits.POST("/:id/approve", walletHandler.ApproveDeposit)
				deposits.POST("/:id/reject", walletHandler.RejectDeposit)
			}
		}
	}

	return r
}
