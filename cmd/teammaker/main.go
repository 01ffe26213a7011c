package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/teammaker/internal/config"
	"github.com/kailas-cloud/teammaker/internal/db"
	"github.com/kailas-cloud/teammaker/internal/db/memory"
	dbRedis "github.com/kailas-cloud/teammaker/internal/db/redis"
	logpkg "github.com/kailas-cloud/teammaker/internal/logger"
	"github.com/kailas-cloud/teammaker/internal/metrics"
	tablerepo "github.com/kailas-cloud/teammaker/internal/repository/table"
	chiTransport "github.com/kailas-cloud/teammaker/internal/transport/chi"
	generateuc "github.com/kailas-cloud/teammaker/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/teammaker/internal/usecase/health"
	searchuc "github.com/kailas-cloud/teammaker/internal/usecase/search"
	tableuc "github.com/kailas-cloud/teammaker/internal/usecase/table"
	"github.com/kailas-cloud/teammaker/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting teammaker API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	store, err := openStore(cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to create table store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Storage.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Table store not ready", zap.Error(err))
	}
	logger.Info("Table store ready", zap.Strings("addrs", cfg.Storage.Addrs))

	// Register engine metrics explicitly (no init())
	metrics.RegisterEngineMetrics()

	tables := tablerepo.New(store, tablerepo.Config{
		KeyPrefix: cfg.Storage.KeyPrefix,
		TTL:       time.Duration(cfg.Storage.TableTTLSec) * time.Second,
		Compress:  cfg.Storage.Compress,
	})

	gen := generateuc.NewGenerator(cfg.Engine.SwapEvery)
	opt := searchuc.NewOptimizer(gen, searchuc.Score, cfg.Engine.SearchWorkers, cfg.Engine.MaxTrialBudget)

	tableSvc := tableuc.New(tables, cfg.Engine.MaxRows, logger)
	generateSvc := generateuc.New(tables, gen, cfg.Engine.Seed, logger)
	searchSvc := searchuc.New(tables, opt, cfg.Engine.Seed, logger)
	healthSvc := healthuc.New(store)

	server := chiTransport.NewServer(tableSvc, generateSvc, searchSvc, healthSvc, cfg.HTTP.MaxUploadBytes, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(cors.Handler(corsOptions(cfg.CORS)))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openStore creates the table store for the configured driver.
func openStore(cfg config.StorageConfig) (db.Store, error) {
	switch cfg.Driver {
	case db.DriverMemory:
		return memory.NewStore(0), nil
	case db.DriverRedis, db.DriverValkey:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Addrs,
			Password:   cfg.Password,
			Standalone: cfg.Standalone,
		})
		if err != nil {
			return nil, fmt.Errorf("%s store: %w", cfg.Driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func corsOptions(cfg config.CORSConfig) cors.Options {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}
}
