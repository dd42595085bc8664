package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	adapterhttp "github.com/Haleralex/ledgerhub/internal/adapters/http"
	"github.com/Haleralex/ledgerhub/internal/application/ports"
	"github.com/Haleralex/ledgerhub/internal/application/usecases/funds"
	"github.com/Haleralex/ledgerhub/internal/application/usecases/wallet"
	"github.com/Haleralex/ledgerhub/internal/config"
	"github.com/Haleralex/ledgerhub/internal/domain/valueobjects"
	"github.com/Haleralex/ledgerhub/internal/infrastructure/eventlog"
	"github.com/Haleralex/ledgerhub/internal/infrastructure/persistence/postgres"
	"github.com/Haleralex/ledgerhub/internal/infrastructure/ratelimit"
	"github.com/Haleralex/ledgerhub/internal/outbox"
	"github.com/Haleralex/ledgerhub/internal/pkg/logger"
	"github.com/Haleralex/ledgerhub/internal/pkg/tracing"
)

func main() {
	// .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load("configs", "config")
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Setup(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log := slog.Default()
	log.Info("starting ledgerhub",
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Endpoint:       cfg.Tracing.Endpoint,
			Insecure:       !cfg.App.IsProduction(),
		})
		if err != nil {
			log.Error("failed to set up tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.Warn("tracing shutdown error", slog.String("error", err.Error()))
			}
		}()
	}

	pool, err := postgres.NewConnectionPool(ctx, postgres.PoolConfig{
		URL:             cfg.Database.DSN(),
		MaxConns:        cfg.Database.MaxConnections,
		MinConns:        cfg.Database.MinConnections,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	log.Info("database connected")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Degraded, not fatal: the limiter fails open.
		log.Warn("redis unreachable, rate limiting degraded", slog.String("error", err.Error()))
	}

	eventLog, err := eventlog.Connect(ctx, eventlog.Config{
		URL:     cfg.Events.URL,
		Stream:  cfg.Events.Stream,
		Subject: cfg.Events.Subject,
	})
	if err != nil {
		log.Error("failed to connect to event log", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer eventLog.Close()
	log.Info("event log connected", slog.String("stream", cfg.Events.Stream))

	walletRepo := postgres.NewWalletRepository(pool)
	journalRepo := postgres.NewJournalRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	uow := postgres.NewUnitOfWork(pool)

	var limiter ports.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewSlidingWindowLimiter(redisClient, ratelimit.Limits{
			Wallet: cfg.RateLimit.WalletPerMinute,
			User:   cfg.RateLimit.UserPerMinute,
			Global: cfg.RateLimit.GlobalPerMinute,
		}, log)
	}

	limits, err := parseLimits(cfg.Limits)
	if err != nil {
		log.Error("invalid limits configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	createWalletUC := wallet.NewCreateWalletUseCase(walletRepo, outboxRepo, uow)
	getBalanceUC := wallet.NewGetBalanceUseCase(walletRepo)
	depositUC := funds.NewDepositUseCase(walletRepo, journalRepo, outboxRepo, uow, limiter, limits)
	withdrawUC := funds.NewWithdrawUseCase(walletRepo, journalRepo, outboxRepo, uow, limiter, limits)
	transferUC := funds.NewTransferUseCase(walletRepo, journalRepo, outboxRepo, uow, limiter, limits)
	historyUC := funds.NewHistoryUseCase(walletRepo, journalRepo)

	relay := outbox.NewRelay(outboxRepo, eventLog, log, cfg.Outbox.PollInterval, cfg.Outbox.BatchSize)
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("relay stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()
	log.Info("outbox relay started",
		slog.Duration("poll_interval", cfg.Outbox.PollInterval),
		slog.Int("batch_size", cfg.Outbox.BatchSize),
	)

	router := adapterhttp.NewRouter(&adapterhttp.RouterConfig{
		Logger:         log,
		Pool:           pool,
		Redis:          redisClient,
		NATS:           eventLog.Conn(),
		Version:        cfg.App.Version,
		Environment:    cfg.App.Environment,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		JWTSecret:      cfg.Auth.JWTSecret,
		JWTIssuer:      cfg.Auth.JWTIssuer,
		TracingEnabled: cfg.Tracing.Enabled,
	}, &adapterhttp.UseCases{
		CreateWallet: createWalletUC,
		GetBalance:   getBalanceUC,
		Deposit:      depositUC,
		Withdraw:     withdrawUC,
		Transfer:     transferUC,
		History:      historyUC,
	})

	server := adapterhttp.NewServer(&adapterhttp.ServerConfig{
		Address:         cfg.Server.Address(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Logger:          log,
	}, router)

	if err := server.RunWithContext(ctx); err != nil {
		log.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// The signal context is already cancelled; wait for the relay to finish
	// its batch before the deferred connection teardown runs.
	<-relayDone
	log.Info("ledgerhub stopped")
}

// parseLimits converts the configured decimal strings into amounts.
func parseLimits(cfg config.LimitsConfig) (funds.Limits, error) {
	limits := funds.Limits{
		MaxTransaction: make(map[string]valueobjects.Amount, len(cfg.MaxTransaction)),
		MaxBalance:     make(map[string]valueobjects.Amount, len(cfg.MaxBalance)),
	}
	for code, raw := range cfg.MaxTransaction {
		amount, err := valueobjects.ParseAmount(raw)
		if err != nil {
			return funds.Limits{}, err
		}
		limits.MaxTransaction[code] = amount
	}
	for code, raw := range cfg.MaxBalance {
		amount, err := valueobjects.ParseAmount(raw)
		if err != nil {
			return funds.Limits{}, err
		}
		limits.MaxBalance[code] = amount
	}
	return limits, nil
}
