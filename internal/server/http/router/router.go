package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/metrics"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

const maxRequestBody = 1 << 20

// Params lists router dependencies.
type Params struct {
	fx.In

	Facade   handlers.StorefrontFacade
	Admin    middleware.AdminAuthorizer
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.DecompressRequest(maxRequestBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	authHandler := handlers.NewAuthHandler(p.Facade, p.Logger)
	addressHandler := handlers.NewAddressHandler(p.Facade, p.Logger)
	orderHandler := handlers.NewOrderHandler(p.Facade, p.Logger)
	adminHandler := handlers.NewAdminHandler(p.Facade, p.Logger)
	healthHandler := handlers.NewHealthHandler(p.Facade, p.Logger)

	engine.GET("/healthz", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(metrics.Handler(p.Registry)))

	api := engine.Group("/api")
	customers := api.Group("/customers")
	customers.POST("/register", authHandler.Register)
	customers.POST("/login", authHandler.Login)

	customerAuth := api.Group("")
	customerAuth.Use(middleware.AuthRequired(p.Facade))
	customerAuth.GET("/addresses", addressHandler.List)
	customerAuth.POST("/addresses", addressHandler.Create)
	customerAuth.POST("/orders", orderHandler.Place)
	customerAuth.GET("/orders", orderHandler.List)
	customerAuth.GET("/orders/:id", orderHandler.Get)
	customerAuth.POST("/orders/:id/cancel", orderHandler.Cancel)

	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired(p.Admin))
	admin.PATCH("/orders/:id/status", adminHandler.UpdateStatus)

	return engine
}
