// internal/api/api.go
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/api/handlers"
	"github.com/andresuchdata/pharmacare/backend-go/internal/api/middleware"
	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/andresuchdata/pharmacare/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const healthCheckTimeout = 2 * time.Second

type Services struct {
	Auth          *service.AuthService
	Analytics     *service.AnalyticsService
	Inventory     *service.InventoryService
	Orders        *service.OrderService
	Prescriptions *service.PrescriptionService
	Notifications *service.NotificationService
	Tokens        middleware.TokenValidator
}

// HealthCheck pings one backing store
type HealthCheck func(ctx context.Context) error

type Options struct {
	AllowedOrigins []string
	// UploadDir is served under /uploads when prescription images live on local disk
	UploadDir      string
	MaxUploadBytes int64
	HealthChecks   map[string]HealthCheck
}

func NewRouter(services *Services, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDKey},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDKey},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(opts.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))
	if opts.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = opts.MaxUploadBytes + 1<<20
	}

	router.GET("/health", healthHandler(opts.HealthChecks))
	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}

	apiGroup := router.Group("/api/v1")
	if services == nil {
		return router
	}

	requireAuth := middleware.Auth(services.Tokens)
	pharmacistOnly := middleware.RequireRole(domain.RolePharmacist)
	customerOnly := middleware.RequireRole(domain.RoleCustomer)

	if services.Auth != nil {
		authHandler := handlers.NewAuthHandler(services.Auth)
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/otp/request", authHandler.RequestOTP)
			authGroup.POST("/otp/verify", authHandler.VerifyOTP)
			authGroup.POST("/password/forgot", authHandler.RequestOTP)
			authGroup.POST("/password/reset", authHandler.ResetPassword)
			authGroup.GET("/me", requireAuth, authHandler.Me)
			authGroup.PUT("/profile", requireAuth, authHandler.UpdateProfile)
		}

		adminHandler := handlers.NewAdminHandler(services.Auth)
		adminGroup := apiGroup.Group("/admin", requireAuth, middleware.RequireRole(domain.RoleAdmin))
		{
			adminGroup.PATCH("/pharmacists/:id/verify", adminHandler.VerifyPharmacist)
		}
	}

	if services.Analytics != nil {
		analyticsHandler := handlers.NewAnalyticsHandler(services.Analytics)
		apiGroup.GET("/analytics/pharmacist", requireAuth, pharmacistOnly, analyticsHandler.GetPharmacistReport)
	}

	if services.Inventory != nil {
		inventoryHandler := handlers.NewInventoryHandler(services.Inventory)
		inventoryGroup := apiGroup.Group("/inventory", requireAuth)
		{
			inventoryGroup.GET("/search", inventoryHandler.Search)

			owned := inventoryGroup.Group("", pharmacistOnly)
			owned.GET("", inventoryHandler.List)
			owned.POST("", inventoryHandler.Create)
			owned.GET("/alerts", inventoryHandler.Alerts)
			owned.GET("/alerts/history", inventoryHandler.AlertHistory)
			owned.GET("/low-stock", inventoryHandler.LowStock)
			owned.GET("/expiring-soon", inventoryHandler.ExpiringSoon)
			owned.GET("/:id", inventoryHandler.Get)
			owned.PUT("/:id", inventoryHandler.Update)
			owned.DELETE("/:id", inventoryHandler.Delete)
		}
	}

	if services.Orders != nil {
		orderHandler := handlers.NewOrderHandler(services.Orders)
		orderGroup := apiGroup.Group("/orders", requireAuth)
		{
			orderGroup.POST("", customerOnly, orderHandler.Checkout)
			orderGroup.GET("/my", customerOnly, orderHandler.ListMine)
			orderGroup.GET("/pharmacy", pharmacistOnly, orderHandler.ListPharmacy)
			orderGroup.GET("/:id", orderHandler.Get)
			orderGroup.PATCH("/:id/status", orderHandler.UpdateStatus)
		}
	}

	if services.Prescriptions != nil {
		prescriptionHandler := handlers.NewPrescriptionHandler(services.Prescriptions, opts.MaxUploadBytes)
		prescriptionGroup := apiGroup.Group("/prescriptions", requireAuth)
		{
			prescriptionGroup.POST("", customerOnly, prescriptionHandler.Upload)
			prescriptionGroup.GET("/my", customerOnly, prescriptionHandler.ListMine)
			prescriptionGroup.GET("/pending", pharmacistOnly, prescriptionHandler.ListPending)
			prescriptionGroup.GET("/:id", prescriptionHandler.Get)
			prescriptionGroup.PUT("/:id/quote", pharmacistOnly, prescriptionHandler.Quote)
			prescriptionGroup.POST("/:id/approve", pharmacistOnly, prescriptionHandler.Approve)
			prescriptionGroup.POST("/:id/reject", pharmacistOnly, prescriptionHandler.Reject)
		}
	}

	if services.Notifications != nil {
		notificationHandler := handlers.NewNotificationHandler(services.Notifications)
		notificationGroup := apiGroup.Group("/notifications", requireAuth)
		{
			notificationGroup.GET("", notificationHandler.List)
			notificationGroup.GET("/unread-count", notificationHandler.UnreadCount)
			notificationGroup.PATCH("/read-all", notificationHandler.MarkAllRead)
			notificationGroup.PATCH("/:id/read", notificationHandler.MarkRead)
			notificationGroup.DELETE("/:id", notificationHandler.Delete)
		}
	}

	return router
}

func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
			err := check(ctx)
			cancel()
			if err != nil {
				log.Warn().Err(err).Str("check", name).Msg("health check failed")
				results[name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "up"
		}

		body := gin.H{"status": "ok", "checks": results}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		c.JSON(status, body)
	}
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
