package handlers

import (
	"notesaas/internal/common"
	"notesaas/internal/logger"
	"notesaas/internal/middleware"
	"notesaas/internal/models"
	"notesaas/internal/services"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "notesaas/docs"
)

// Server bundles everything the HTTP layer needs.
type Server struct {
	AuthService    services.AuthService
	TenantService  services.TenantService
	NoteService    services.NoteService
	BillingService services.BillingService
	Health         *HealthHandlers
	Log            *zap.Logger
	Version        string
	CORSOrigins    []string
}

// NewEcho builds the Echo instance with middleware and all routes mounted.
func NewEcho(s Server) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = common.NewHTTPErrorHandler(s.Log)

	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.RequestID())
	e.Use(logger.RequestLogger(s.Log))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: s.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoMiddleware.BodyLimit("1M"))
	e.Use(middleware.VersionHeader(s.Version))

	RegisterRoutes(e, s)
	return e
}

func RegisterRoutes(e *echo.Echo, s Server) {
	authHandlers := NewAuthHandlers(s.AuthService)
	tenantHandlers := NewTenantHandlers(s.TenantService)
	noteHandlers := NewNoteHandlers(s.NoteService)
	billingHandlers := NewBillingHandlers(s.BillingService)

	e.GET("/health", s.Health.Health)
	e.GET("/health/ready", s.Health.Ready)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	api.GET("/ping", s.Health.Ping)

	// Public routes
	api.POST("/auth/login", authHandlers.Login)
	api.POST("/auth/signup", authHandlers.Signup)
	api.GET("/stripe/config", billingHandlers.StripeConfig)
	api.POST("/billing/checkout", billingHandlers.Checkout)

	// Protected routes
	jwt := middleware.JWTMiddleware(s.AuthService)
	anyRole := middleware.RequireRole(models.RoleMember)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	tenants := api.Group("/tenants", jwt)
	tenants.GET("/me", tenantHandlers.GetMine, anyRole)
	tenants.POST("/:slug/invite", authHandlers.Invite, adminOnly)
	tenants.POST("/:slug/upgrade", tenantHandlers.Upgrade, adminOnly)

	notes := api.Group("/notes", jwt, anyRole)
	notes.POST("", noteHandlers.Create)
	notes.GET("", noteHandlers.List)
	notes.GET("/:id", noteHandlers.Get)
	notes.PUT("/:id", noteHandlers.Update)
	notes.DELETE("/:id", noteHandlers.Delete)
}
