package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/senyabanana/lawyer-service/internal/db"
	"github.com/senyabanana/lawyer-service/internal/events"
	"github.com/senyabanana/lawyer-service/internal/handlers"
	"github.com/senyabanana/lawyer-service/internal/models"
	"github.com/senyabanana/lawyer-service/internal/repository"
	"github.com/senyabanana/lawyer-service/internal/router"
	"github.com/senyabanana/lawyer-service/internal/router/config"
	"github.com/senyabanana/lawyer-service/internal/services"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("cannot build logger:", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	publisher, closePublisher := openPublisher(ctx, cfg, logger)
	defer closePublisher()

	policy, _ := models.ParseEndJobPolicy(cfg.EndJobPolicy)

	providerService := services.NewProviderService(store, publisher, logger)
	jobService := services.NewJobService(store, policy, publisher, logger)
	offerService := services.NewOfferService(store, jobService, publisher, logger)
	ratingService := services.NewRatingService(store, publisher, logger)

	routes := router.InitRoutes(router.Handlers{
		Providers: handlers.NewProviderHandler(providerService, logger, cfg.RequestTimeout),
		Jobs:      handlers.NewJobHandler(jobService, logger, cfg.RequestTimeout),
		Offers:    handlers.NewOfferHandler(offerService, logger, cfg.RequestTimeout),
		Ratings:   handlers.NewRatingHandler(ratingService, logger, cfg.RequestTimeout),
	})

	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           routes,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout + 5*time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       time.Minute,
	}
	go func() {
		logger.Info("server is listening", zap.String("addr", cfg.ServerAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stopHealth := startHealthServer(cfg.GRPCHealthAddr, logger)

	<-ctx.Done()
	logger.Info("shutting down")

	stopHealth()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = atomicLevel
	return zapConfig.Build()
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository.Store, func()) {
	if cfg.StorageDriver == config.MemoryDriver {
		logger.Warn("using in-memory storage, data is lost on restart")
		return repository.NewMemoryStore(), func() {}
	}

	if err := db.RunMigrations(cfg.MigrationURL, cfg.PostgresConn); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("db migrated successfully")

	dbPool, err := db.InitDb(ctx, cfg)
	if err != nil {
		logger.Fatal("error initializing database", zap.Error(err))
	}
	store := repository.NewPostgresStore(dbPool, repository.TxConfig{
		Timeout:     cfg.TxTimeout,
		MaxAttempts: cfg.TxMaxAttempts,
		Backoff:     cfg.TxRetryBackoff,
	})
	return store, dbPool.Close
}

func openPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (events.Publisher, func()) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL is empty, domain events are disabled")
		return events.NopPublisher{}, func() {}
	}

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("error connecting to redis", zap.Error(err))
	}
	logger.Info("publishing domain events", zap.String("channel", cfg.EventsChannel))
	return events.NewRedisPublisher(rdb, cfg.EventsChannel), func() { _ = rdb.Close() }
}

func startHealthServer(addr string, logger *zap.Logger) func() {
	if addr == "" {
		return func() {}
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal("grpc health listen failed", zap.Error(err))
	}
	grpcServer, healthServer := router.NewHealthServer()
	go func() {
		logger.Info("grpc health is listening", zap.String("addr", addr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc health serve failed", zap.Error(err))
		}
	}()

	return func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
	}
}

