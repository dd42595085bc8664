// Package http wires the handlers and middleware into the service's REST
// surface and manages the server lifecycle.
package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Haleralex/ledgerhub/internal/adapters/http/common"
	"github.com/Haleralex/ledgerhub/internal/adapters/http/handlers"
	"github.com/Haleralex/ledgerhub/internal/adapters/http/middleware"
	domainerrors "github.com/Haleralex/ledgerhub/internal/domain/errors"
)

// RouterConfig carries everything the router needs besides the use cases.
type RouterConfig struct {
	Logger         *slog.Logger
	Pool           *pgxpool.Pool
	Redis          *redis.Client
	NATS           *nats.Conn
	Version        string
	Environment    string
	AllowedOrigins []string
	JWTSecret      string
	JWTIssuer      string
	TracingEnabled bool
}

// UseCases groups the application entry points the router exposes.
type UseCases struct {
	CreateWallet handlers.CreateWalletUseCase
	GetBalance   handlers.GetBalanceUseCase
	Deposit      handlers.DepositUseCase
	Withdraw     handlers.WithdrawUseCase
	Transfer     handlers.TransferUseCase
	History      handlers.HistoryUseCase
}

// NewRouter builds the configured gin engine.
func NewRouter(config *RouterConfig, useCases *UseCases) *gin.Engine {
	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupValidator()

	// Recovery first, then ids so everything downstream logs with them.
	router.Use(middleware.Recovery(&middleware.RecoveryConfig{
		Logger:           config.Logger,
		EnableStackTrace: config.Environment != "production",
	}))
	router.Use(middleware.RequestID())

	if config.Environment == "production" {
		router.Use(middleware.CORS(middleware.ProductionCORSConfig(config.AllowedOrigins)))
	} else {
		router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	}

	router.Use(middleware.Logging(&middleware.LoggingConfig{
		Logger:    config.Logger,
		SkipPaths: []string{"/health", "/live", "/ready", "/metrics"},
	}))
	router.Use(middleware.Metrics())

	if config.TracingEnabled {
		router.Use(otelgin.Middleware("ledgerhub"))
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	healthHandler := handlers.NewHealthHandler(config.Pool, config.Redis, config.NATS, config.Version)
	healthHandler.RegisterRoutes(router)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(&middleware.AuthConfig{
		Secret: config.JWTSecret,
		Issuer: config.JWTIssuer,
	}))

	walletHandler := handlers.NewWalletHandler(useCases.CreateWallet, useCases.GetBalance)
	fundsHandler := handlers.NewFundsHandler(useCases.Deposit, useCases.Withdraw, useCases.Transfer, useCases.History)

	wallets := v1.Group("/wallets")
	{
		wallets.POST("", walletHandler.CreateWallet)
		wallets.GET("/:id/balance", walletHandler.GetBalance)
		wallets.GET("/:id/history", fundsHandler.History)
		wallets.POST("/:id/deposit", fundsHandler.Deposit)
		wallets.POST("/:id/withdraw", fundsHandler.Withdraw)
	}
	v1.POST("/transfers", fundsHandler.Transfer)

	router.NoRoute(func(c *gin.Context) {
		common.Error(c, 404, &common.APIError{
			Code:    string(domainerrors.KindNotFound),
			Message: "endpoint not found",
			Details: map[string]any{
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			},
		})
	})

	return router
}
