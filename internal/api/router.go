package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/ticketing/user-service/internal/api/handler"
	"github.com/ticketing/user-service/internal/api/middleware"
	"github.com/ticketing/user-service/internal/core/domain"
	"github.com/ticketing/user-service/internal/core/ports"
	"github.com/ticketing/user-service/internal/infrastructure/http/handlers"

	_ "github.com/ticketing/user-service/docs"
)

// RouterDeps carries everything NewRouter wires into routes.
type RouterDeps struct {
	Users     ports.UserService
	JWTSecret string
	Readiness map[string]handlers.Check
	Logger    zerolog.Logger
	// Registerer receives the HTTP metrics and, when it is also a Gatherer,
	// backs /metrics. Nil means the default registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
//
//	@title						User Service API
//	@version					1.0
//	@description				User lifecycle management with governed deletion and identity provider sync.
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func NewRouter(deps RouterDeps) *echo.Echo {
	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer, ok := registerer.(prometheus.Gatherer)
	if !ok {
		gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "users",
		Registerer: registerer,
	}))

	// --- Operational endpoints (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- User routes ---
	userHandler := handler.NewUserHandler(deps.Users)

	users := e.Group("/api/v1/users", middleware.Auth(deps.JWTSecret))
	admin := middleware.RBAC(domain.RoleAdmin)

	users.GET("", userHandler.List, admin)
	users.POST("", userHandler.Create, admin)
	users.PUT("", userHandler.Update, admin)
	users.GET("/roles/:role", userHandler.ListByRole, middleware.RBAC(domain.RoleAdmin, domain.RoleManager))
	users.GET("/:username", userHandler.Get, admin)
	users.DELETE("/:username", userHandler.Delete, admin)
	users.DELETE("/:username/purge", userHandler.Purge, admin)

	return e
}
