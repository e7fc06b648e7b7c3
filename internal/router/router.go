// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/cache"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/config"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/handlers"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/middleware"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/models"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/services"
	"github.com/AmrMohamed001/Bardawil-Lake-Licensing-Portal-sub000/internal/utils"
)

func Initialize(db *gorm.DB, cacheClient *cache.Client, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)
	pricingService := services.NewPricingService(db, cacheClient)
	lookupService := services.NewLookupService(db, cacheClient)
	newsService := services.NewNewsService(db, cacheClient)

	authService := services.NewAuthService(db, cfg)
	applicationService := services.NewApplicationService(db, cfg, pricingService, notificationService)
	paymentService := services.NewPaymentService(db, cfg, notificationService)
	adminService := services.NewAdminService(db, cfg, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	applicationHandler := handlers.NewApplicationHandler(applicationService, storageService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	adminHandler := handlers.NewAdminHandler(adminService, applicationService, pricingService, newsService)
	publicHandler := handlers.NewPublicHandler(lookupService, pricingService, newsService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Frontend.BaseURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language"},
		ExposeHeaders:    []string{"X-Total-Count", "X-Page", "X-Per-Page", "X-Total-Pages"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
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

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.POST("/change-password", middleware.AuthRequired(), authHandler.ChangePassword)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
			auth.PUT("/me", middleware.AuthRequired(), authHandler.UpdateProfile)
		}

		// Public reference data; a presented token still resolves the caller
		// for the audit log.
		lookups := v1.Group("/lookups")
		lookups.Use(middleware.OptionalAuth())
		{
			lookups.GET("/statuses", publicHandler.Statuses)
			lookups.GET("/categories", publicHandler.Categories)
			lookups.GET("/required-documents", publicHandler.RequiredDocuments)
		}
		v1.GET("/prices", middleware.OptionalAuth(), publicHandler.Prices)
		v1.GET("/news", middleware.OptionalAuth(), publicHandler.News)
		v1.GET("/news/:id", middleware.OptionalAuth(), publicHandler.NewsItem)

		// Citizen application workflow
		applications := v1.Group("/applications")
		applications.Use(middleware.AuthRequired())
		{
			applications.POST("", middleware.UploadRateLimit(), applicationHandler.Submit)
			applications.GET("", applicationHandler.List)
			applications.GET("/:id", applicationHandler.Get)
			applications.GET("/:id/history", applicationHandler.History)
			applications.POST("/:id/documents", middleware.UploadRateLimit(), applicationHandler.AddDocument)
			applications.GET("/:id/documents/:docId", applicationHandler.DownloadDocument)
			applications.DELETE("/:id/documents/:docId", applicationHandler.DeleteDocument)
			applications.POST("/:id/cancel", applicationHandler.Cancel)
			applications.POST("/:id/receipt", middleware.UploadRateLimit(), applicationHandler.SubmitReceipt)
			applications.POST("/:id/checkout", paymentHandler.CreateCheckout)
		}

		// Payments
		payments := v1.Group("/payments")
		{
			payments.POST("/webhook", paymentHandler.Webhook)
			payments.GET("/confirm", paymentHandler.Confirm)
		}

		// Notifications
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired())
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.PUT("/read-all", notificationHandler.MarkAllAsRead)
			notifications.PUT("/:id/read", notificationHandler.MarkAsRead)
			notifications.DELETE("/:id", notificationHandler.Delete)
		}

		// Back office
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.StaffRequired())
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/audit-logs", middleware.RoleRequired(models.RoleSuperAdmin), adminHandler.ListAuditLogs)

			adminApps := admin.Group("/applications")
			{
				adminApps.GET("", adminHandler.ListApplications)

				review := adminApps.Group("")
				review.Use(middleware.RoleRequired(models.RoleAdmin, models.RoleSuperAdmin))
				{
					review.POST("/:id/start-review", adminHandler.StartReview)
					review.POST("/:id/approve", adminHandler.Approve)
					review.POST("/:id/reject", adminHandler.Reject)
					review.POST("/:id/mark-ready", adminHandler.MarkReady)
					review.POST("/:id/complete", adminHandler.Complete)
				}

				finance := adminApps.Group("")
				finance.Use(middleware.RoleRequired(models.RoleFinancialOfficer, models.RoleSuperAdmin))
				{
					finance.POST("/:id/verify-payment", adminHandler.VerifyPayment)
					finance.POST("/:id/reject-payment", adminHandler.RejectPayment)
				}
			}

			adminUsers := admin.Group("/users")
			adminUsers.Use(middleware.RoleRequired(models.RoleSuperAdmin))
			{
				adminUsers.GET("", adminHandler.ListUsers)
				adminUsers.GET("/:id", adminHandler.GetUser)
				adminUsers.PUT("/:id/role", adminHandler.UpdateUserRole)
				adminUsers.PUT("/:id/status", adminHandler.UpdateUserStatus)
			}

			adminPrices := admin.Group("/prices")
			adminPrices.Use(middleware.RoleRequired(models.RoleFinancialOfficer, models.RoleSuperAdmin))
			{
				adminPrices.GET("", adminHandler.ListPrices)
				adminPrices.POST("", adminHandler.CreatePrice)
				adminPrices.POST("/:id/close", adminHandler.ClosePrice)
			}

			adminNews := admin.Group("/news")
			adminNews.Use(middleware.RoleRequired(models.RoleAdmin, models.RoleSuperAdmin))
			{
				adminNews.GET("", adminHandler.ListNews)
				adminNews.POST("", adminHandler.CreateNews)
				adminNews.PUT("/:id", adminHandler.UpdateNews)
				adminNews.DELETE("/:id", adminHandler.DeleteNews)
			}
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" && !cfg.Upload.UseS3 {
		r.Static("/uploads", cfg.Upload.LocalPath)
	}

	return r
}
