// Package http - Router configuration for REST API.
//
// Router собирает все handlers и middleware в единую точку входа.
//
// Pattern: Composition Root
// - Все зависимости собираются здесь
// - Handlers получают только нужные им use cases
// - Middleware применяется к соответствующим группам routes
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/wallethub/walletcore/internal/adapters/http/common"
	"github.com/wallethub/walletcore/internal/adapters/http/handlers"
	"github.com/wallethub/walletcore/internal/adapters/http/middleware"
	"github.com/wallethub/walletcore/internal/config"
)

// RouterDeps are the fully-wired handlers and config the router composes
// into routes. The container builds these; the router doesn't know how
// any of them were constructed.
type RouterDeps struct {
	Config             *config.Config
	WalletHandler      *handlers.WalletHandler
	TransactionHandler *handlers.TransactionHandler
	HealthHandler      *handlers.HealthHandler
	Logger             *slog.Logger
}

// Router wraps the gin engine assembled from RouterDeps.
type Router struct {
	engine *gin.Engine
}

// Engine returns the underlying gin.Engine for the HTTP server to serve.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// NewRouter builds the full route tree: global middleware, health/metrics
// endpoints, the public wallet/transaction API, and an admin group gated
// by auth + role for the wallet lifecycle transitions.
func NewRouter(deps RouterDeps) *Router {
	if !deps.Config.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(
		middleware.Recovery(nil),
		otelgin.Middleware(deps.Config.App.Name),
		middleware.RequestID(),
		middleware.CORS(corsConfigFrom(deps.Config)),
		middleware.Logging(&middleware.LoggingConfig{
			Logger:    deps.Logger,
			SkipPaths: []string{"/health", "/health/detailed", "/ready", "/live", "/metrics"},
		}),
		middleware.Metrics(),
	)

	if deps.Config.RateLimit.Enabled {
		engine.Use(middleware.RateLimit(&middleware.RateLimitConfig{
			Limit:  deps.Config.RateLimit.RequestsPerMinute,
			Window: time.Minute,
		}))
	}

	deps.HealthHandler.RegisterRoutes(engine)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")

	financialOpsRateLimit := gin.HandlerFunc(func(c *gin.Context) { c.Next() })
	if deps.Config.RateLimit.Enabled {
		financialOpsRateLimit = middleware.TransactionRateLimit()
	}

	wallets := api.Group("/wallets")
	deps.WalletHandler.RegisterRoutes(wallets, financialOpsRateLimit)
	deps.TransactionHandler.RegisterWalletTransactionsRoute(wallets)

	deps.TransactionHandler.RegisterRoutes(api)

	authCfg := &middleware.AuthConfig{
		TokenValidator: authValidatorFrom(deps.Config),
	}
	admin := api.Group("/admin")
	admin.Use(middleware.Auth(authCfg), middleware.RequireRole("admin"))
	adminWallets := admin.Group("/wallets")
	deps.WalletHandler.RegisterAdminRoutes(adminWallets)

	engine.NoRoute(func(c *gin.Context) {
		common.Error(c, http.StatusNotFound, &common.APIError{
			Code:    common.ErrCodeNotFound,
			Message: "resource not found",
		})
	})

	return &Router{engine: engine}
}

func corsConfigFrom(cfg *config.Config) *middleware.CORSConfig {
	return &middleware.CORSConfig{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           int(cfg.CORS.MaxAge.Seconds()),
	}
}

func authValidatorFrom(cfg *config.Config) func(string) (*middleware.AuthClaims, error) {
	if cfg.Auth.EnableMockAuth {
		return middleware.AdminMockTokenValidator
	}
	return middleware.NewJWTTokenValidator(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
}
