// Package container - Dependency Injection container for the application.
//
// Container управляет жизненным циклом всех зависимостей:
// - Создание (eager, в Initialize)
// - Доступ (getters)
// - Закрытие (cleanup)
//
// Pattern: Composition Root
// - Все зависимости собираются в одном месте
// - Легко тестировать
// - Легко заменять реализации
package container

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	nethttp "github.com/wallethub/walletcore/internal/adapters/http"
	"github.com/wallethub/walletcore/internal/adapters/http/handlers"
	"github.com/wallethub/walletcore/internal/application/dtos"
	"github.com/wallethub/walletcore/internal/application/ports"
	"github.com/wallethub/walletcore/internal/application/resilience"
	"github.com/wallethub/walletcore/internal/application/usecases/transaction"
	"github.com/wallethub/walletcore/internal/application/usecases/wallet"
	"github.com/wallethub/walletcore/internal/config"
	"github.com/wallethub/walletcore/internal/infrastructure/cache"
	"github.com/wallethub/walletcore/internal/infrastructure/messaging"
	"github.com/wallethub/walletcore/internal/infrastructure/persistence/postgres"
	"github.com/wallethub/walletcore/internal/infrastructure/persistence/postgresread"
	"github.com/wallethub/walletcore/internal/infrastructure/projector"
	"github.com/wallethub/walletcore/internal/pkg/logger"
)

// ============================================
// Container
// ============================================

// Container is the application's composition root. Initialize wires every
// dependency in order (logger -> tracing -> pools -> cache -> broker ->
// resilience -> repositories -> projector -> event pipeline -> use cases ->
// HTTP); Shutdown tears them down
// in reverse.
type Container struct {
	config *config.Config
	logger *slog.Logger

	tracerProvider *sdktrace.TracerProvider

	// Infrastructure
	writePool *pgxpool.Pool
	readPool  *pgxpool.Pool
	redis     *redis.Client
	nats      *nats.Conn

	walletCache *cache.WalletCache

	// Repositories (write store)
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	outboxRepo ports.OutboxRepository
	uow        ports.UnitOfWork

	// Repositories (read store)
	walletReadRepo ports.WalletReader
	historyRepo    ports.TransactionHistoryRepository
	processedStore ports.ProcessedEventStore

	// Resilience (C7)
	retrier *resilience.Retrier

	// Projection (C9) and the outbox pump (C8)
	projector *projector.Projector
	eventPub  ports.EventPublisher
	pump      *messaging.Pump
	natsSub   *nats.Subscription

	// Use cases
	createWalletUC      *wallet.CreateWalletUseCase
	depositUC           *resilientUseCase[dtos.DepositCommand, *dtos.TransactionDTO]
	withdrawUC          *resilientUseCase[dtos.WithdrawCommand, *dtos.TransactionDTO]
	transferUC          *resilientUseCase[dtos.TransferCommand, *dtos.TransactionDTO]
	getWalletUC         *wallet.GetWalletUseCase
	listWalletsUC       *wallet.ListWalletsUseCase
	historicalBalanceUC *wallet.GetHistoricalBalanceUseCase
	freezeUC            *resilientUseCase[dtos.FreezeWalletCommand, *dtos.WalletDTO]
	unfreezeUC          *resilientUseCase[dtos.UnfreezeWalletCommand, *dtos.WalletDTO]
	closeUC             *resilientUseCase[dtos.CloseWalletCommand, *dtos.WalletDTO]
	getTransactionUC    *transaction.GetTransactionUseCase
	listTransactionsUC  *transaction.ListTransactionsUseCase

	// HTTP
	router     *nethttp.Router
	httpServer *nethttp.Server
}

// New creates a Container with config only — nothing is connected yet.
// Call Initialize to wire dependencies.
func New(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the structured logger, nil before Initialize.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Pool returns the write-primary connection pool, nil before Initialize.
func (c *Container) Pool() *pgxpool.Pool {
	return c.writePool
}

// HTTPServer returns the HTTP server, nil before Initialize.
func (c *Container) HTTPServer() *nethttp.Server {
	return c.httpServer
}

// ============================================
// Initialization
// ============================================

// Initialize wires every dependency. Call once before Run/HTTPServer.
func (c *Container) Initialize(ctx context.Context) error {
	c.initLogger()

	if err := c.initTracing(ctx); err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	if err := c.initDatabase(ctx); err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	c.initCache()

	if err := c.initBroker(); err != nil {
		return fmt.Errorf("init broker: %w", err)
	}

	c.initResilience()
	c.initRepositories()
	c.initProjector()

	if err := c.initEventPipeline(); err != nil {
		return fmt.Errorf("init event pipeline: %w", err)
	}

	c.initUseCases()
	c.initHTTPServer()

	c.logger.Info("container initialized",
		slog.String("environment", c.config.App.Environment),
		slog.String("projector_mode", c.config.Projector.Mode),
	)

	return nil
}

func (c *Container) initLogger() {
	l := logger.New(&logger.Config{
		Level:     c.config.Log.Level,
		Format:    c.config.Log.Format,
		Output:    os.Stdout,
		AddSource: c.config.App.Environment == "development",
	})

	c.logger = l.With(
		slog.String("service", c.config.App.Name),
		slog.String("version", c.config.App.Version),
	)
	slog.SetDefault(c.logger)
}

// initTracing wires a global OTLP tracer provider when tracing is enabled.
// With tracing disabled, otel keeps its default no-op provider and the
// otelgin middleware wired into the router costs nothing.
func (c *Container) initTracing(ctx context.Context) error {
	if !c.config.Tracing.Enabled {
		return nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(c.config.Tracing.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return fmt.Errorf("create otlp exporter: %w", err)
	}

	res := resource.NewWithAttributes("",
		attribute.String("service.name", c.config.App.Name),
		attribute.String("service.version", c.config.App.Version),
		attribute.String("deployment.environment", c.config.App.Environment),
	)

	c.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(c.config.Tracing.SampleRatio)),
	)
	otel.SetTracerProvider(c.tracerProvider)
	return nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	writeCfg := postgres.Config{
		Host:            c.config.Database.Host,
		Port:            c.config.Database.Port,
		Database:        c.config.Database.Database,
		User:            c.config.Database.User,
		Password:        c.config.Database.Password,
		SSLMode:         c.config.Database.SSLMode,
		MaxConns:        c.config.Database.MaxConnections,
		MinConns:        c.config.Database.MinConnections,
		MaxConnLifetime: c.config.Database.MaxConnLifetime,
		MaxConnIdleTime: c.config.Database.MaxConnIdleTime,
		ConnectTimeout:  5 * time.Second,
	}

	pool, err := postgres.NewConnectionPool(ctx, writeCfg)
	if err != nil {
		return fmt.Errorf("connect to write primary: %w", err)
	}
	c.writePool = pool

	readHost := c.config.Database.ReadHost
	if readHost == "" {
		// No replica configured — the read store is the write pool.
		c.readPool = pool
		return nil
	}

	readPort := c.config.Database.ReadPort
	if readPort == 0 {
		readPort = c.config.Database.Port
	}
	readDatabase := c.config.Database.ReadDatabase
	if readDatabase == "" {
		readDatabase = c.config.Database.Database
	}

	readCfg := writeCfg
	readCfg.Host = readHost
	readCfg.Port = readPort
	readCfg.Database = readDatabase

	readPool, err := postgres.NewConnectionPool(ctx, readCfg)
	if err != nil {
		return fmt.Errorf("connect to read replica: %w", err)
	}
	c.readPool = readPool

	return nil
}

func (c *Container) initCache() {
	c.redis = redis.NewClient(&redis.Options{
		Addr:     c.config.Cache.Addr,
		Password: c.config.Cache.Password,
		DB:       c.config.Cache.DB,
	})
	c.walletCache = cache.NewWalletCache(c.redis, c.config.Cache.TTL, c.logger)
}

func (c *Container) initBroker() error {
	conn, err := nats.Connect(c.config.Broker.URL,
		nats.Timeout(c.config.Broker.ConnectTimeout),
		nats.Name(c.config.App.Name),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return err
	}
	c.nats = conn
	return nil
}

func (c *Container) initResilience() {
	resCfg := resilience.Config{
		Optimistic: resilience.Policy{
			MaxAttempts: c.config.Resilience.OptimisticRetryMax,
			BaseDelay:   c.config.Resilience.OptimisticRetryBase,
			MaxDelay:    c.config.Resilience.OptimisticRetryCap,
		},
		Transient: resilience.Policy{
			MaxAttempts: c.config.Resilience.TransientRetryMax,
			BaseDelay:   c.config.Resilience.TransientRetryBase,
			MaxDelay:    c.config.Resilience.TransientRetryCap,
		},
	}

	metrics := resilience.NewMetrics(prometheus.DefaultRegisterer)
	degradation := resilience.NewDegradationTable(
		1000,
		c.config.Resilience.DegradationWindow,
		c.config.Resilience.DegradationThreshold,
	)

	c.retrier = resilience.NewRetrier(resCfg, metrics, degradation)
}

func (c *Container) initRepositories() {
	c.walletRepo = postgres.NewWalletRepository(c.writePool)
	c.txRepo = postgres.NewTransactionRepository(c.writePool)
	c.outboxRepo = postgres.NewOutboxRepository(c.writePool)
	c.uow = postgres.NewUnitOfWork(c.writePool)

	c.walletReadRepo = postgresread.NewWalletReadRepository(c.readPool)
	c.historyRepo = postgresread.NewTransactionHistoryRepository(c.readPool)
	c.processedStore = postgresread.NewProcessedEventStore(c.readPool)
}

func (c *Container) initProjector() {
	readModel := postgresread.NewWalletReadRepository(c.readPool)
	c.projector = projector.New(readModel, c.historyRepo, c.processedStore, c.walletCache, c.logger).
		WithMetrics(projector.NewMetrics(prometheus.DefaultRegisterer))
}

func (c *Container) initEventPipeline() error {
	switch c.config.Projector.Mode {
	case "inline":
		c.eventPub = projector.NewInlinePublisher(c.projector)
	case "nats":
		c.eventPub = messaging.NewNATSEventPublisher(c.nats)
		sub, err := c.projector.Subscribe(c.nats)
		if err != nil {
			return fmt.Errorf("subscribe projector: %w", err)
		}
		c.natsSub = sub
	default:
		return fmt.Errorf("unknown projector mode %q", c.config.Projector.Mode)
	}

	c.pump = messaging.NewPump(c.outboxRepo, c.eventPub, c.config.Outbox.Interval, c.config.Outbox.BatchSize, c.logger).
		WithMetrics(messaging.NewPumpMetrics(prometheus.DefaultRegisterer))
	c.pump.Start()

	return nil
}

func (c *Container) initUseCases() {
	c.createWalletUC = wallet.NewCreateWalletUseCase(c.walletRepo, c.outboxRepo, c.uow)

	deposit := wallet.NewDepositUseCase(c.walletRepo, c.txRepo, c.outboxRepo, c.uow)
	c.depositUC = withRetry[dtos.DepositCommand, *dtos.TransactionDTO](deposit, c.retrier, "deposit",
		func(cmd dtos.DepositCommand) string { return cmd.WalletID })

	withdraw := wallet.NewWithdrawUseCase(c.walletRepo, c.txRepo, c.outboxRepo, c.uow)
	c.withdrawUC = withRetry[dtos.WithdrawCommand, *dtos.TransactionDTO](withdraw, c.retrier, "withdraw",
		func(cmd dtos.WithdrawCommand) string { return cmd.WalletID })

	xfer := wallet.NewTransferUseCase(c.walletRepo, c.txRepo, c.outboxRepo, c.uow)
	c.transferUC = withRetry[dtos.TransferCommand, *dtos.TransactionDTO](xfer, c.retrier, "transfer",
		func(cmd dtos.TransferCommand) string { return cmd.SourceWalletID })

	c.getWalletUC = wallet.NewGetWalletUseCase(c.walletCache, c.walletReadRepo, c.walletRepo)
	c.listWalletsUC = wallet.NewListWalletsUseCase(c.walletReadRepo)
	c.historicalBalanceUC = wallet.NewGetHistoricalBalanceUseCase(c.historyRepo)

	freeze := wallet.NewFreezeWalletUseCase(c.walletRepo, c.uow)
	c.freezeUC = withRetry[dtos.FreezeWalletCommand, *dtos.WalletDTO](freeze, c.retrier, "freeze",
		func(cmd dtos.FreezeWalletCommand) string { return cmd.WalletID })

	unfreeze := wallet.NewUnfreezeWalletUseCase(c.walletRepo, c.uow)
	c.unfreezeUC = withRetry[dtos.UnfreezeWalletCommand, *dtos.WalletDTO](unfreeze, c.retrier, "unfreeze",
		func(cmd dtos.UnfreezeWalletCommand) string { return cmd.WalletID })

	closeUC := wallet.NewCloseWalletUseCase(c.walletRepo, c.uow)
	c.closeUC = withRetry[dtos.CloseWalletCommand, *dtos.WalletDTO](closeUC, c.retrier, "close",
		func(cmd dtos.CloseWalletCommand) string { return cmd.WalletID })

	c.getTransactionUC = transaction.NewGetTransactionUseCase(c.txRepo)
	c.listTransactionsUC = transaction.NewListTransactionsUseCase(c.txRepo)
}

func (c *Container) initHTTPServer() {
	walletHandler := handlers.NewWalletHandler(
		c.createWalletUC,
		c.depositUC,
		c.withdrawUC,
		c.transferUC,
		c.getWalletUC,
		c.listWalletsUC,
		c.historicalBalanceUC,
		c.freezeUC,
		c.unfreezeUC,
		c.closeUC,
		c.retrier,
	)
	transactionHandler := handlers.NewTransactionHandler(c.getTransactionUC, c.listTransactionsUC)
	healthHandler := handlers.NewHealthHandler(c.writePool, c.config.App.Version, c.config.App.BuildTime)

	c.router = nethttp.NewRouter(nethttp.RouterDeps{
		Config:             c.config,
		WalletHandler:      walletHandler,
		TransactionHandler: transactionHandler,
		HealthHandler:      healthHandler,
		Logger:             c.logger,
	})

	serverCfg := &nethttp.ServerConfig{
		Host:            c.config.Server.Host,
		Port:            fmt.Sprintf("%d", c.config.Server.Port),
		ReadTimeout:     c.config.Server.ReadTimeout,
		WriteTimeout:    c.config.Server.WriteTimeout,
		IdleTimeout:     c.config.Server.IdleTimeout,
		ShutdownTimeout: c.config.Server.ShutdownTimeout,
		Logger:          c.logger,
	}

	c.httpServer = nethttp.NewServer(serverCfg, c.router.Engine())
}

// ============================================
// Shutdown
// ============================================

// Shutdown tears down every dependency, stopping the HTTP server first so
// no new work starts, then the background pump/subscription, then the
// connection pools.
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if c.pump != nil {
		c.pump.Stop()
	}

	if c.natsSub != nil {
		_ = c.natsSub.Drain()
	}

	if c.nats != nil {
		c.nats.Close()
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	done := make(chan struct{})
	go func() {
		if c.readPool != nil && c.readPool != c.writePool {
			c.readPool.Close()
		}
		if c.writePool != nil {
			c.writePool.Close()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if firstErr == nil {
			firstErr = ctx.Err()
		}
	}

	if c.tracerProvider != nil {
		if err := c.tracerProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Run initializes and serves until a shutdown signal, then shuts down
// gracefully.
func (c *Container) Run(ctx context.Context) error {
	if err := c.Initialize(ctx); err != nil {
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- c.httpServer.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			c.logger.Error("server error", slog.String("error", err.Error()))
		}
	case <-ctx.Done():
		c.logger.Info("context cancelled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.config.Server.ShutdownTimeout)
	defer cancel()

	return c.Shutdown(shutdownCtx)
}
