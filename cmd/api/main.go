package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tirasundara/bpo-reconciliation/internal/api"
	"github.com/tirasundara/bpo-reconciliation/internal/archive"
	"github.com/tirasundara/bpo-reconciliation/internal/config"
	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/internal/ingest"
	"github.com/tirasundara/bpo-reconciliation/internal/logger"
	"github.com/tirasundara/bpo-reconciliation/internal/matcher"
	"github.com/tirasundara/bpo-reconciliation/internal/repository"
	"github.com/tirasundara/bpo-reconciliation/internal/repository/memory"
	"github.com/tirasundara/bpo-reconciliation/internal/service"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	configured, err := logger.Configure(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid log configuration")
	}
	log = configured
	if log.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to open store")
	}

	opts := ingest.Options{
		Workers:   cfg.IngestWorkers,
		BatchSize: cfg.IngestBatchSize,
	}
	if cfg.ArchiveBucket != "" {
		archiver, err := archive.NewGCSArchiver(ctx, cfg.ArchiveBucket, cfg.ArchivePrefix)
		if err != nil {
			log.Fatal().Err(err).Str("bucket", cfg.ArchiveBucket).Msg("Failed to create archiver")
		}
		defer archiver.Close()
		opts.Archiver = archiver
	} else {
		log.Warn().Msg("No archive bucket configured - statement files will not be archived")
	}

	sessions, err := api.ParseTokens(cfg.AuthTokens)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid AUTH_TOKENS")
	}
	if len(sessions) == 0 {
		log.Warn().Msg("No AUTH_TOKENS configured - every /api/v1 request will be rejected")
	}

	importer := ingest.NewService(store, opts, log)
	reconciler := service.NewReconciliationService(store, matcher.NewScoringMatcher(), cfg.AutoConfirmThreshold, log)

	router := api.NewRouter(api.NewHandler(importer, reconciler), api.RouterConfig{
		Sessions:    sessions,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("store", cfg.StoreDriver).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (domain.Store, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn().Msg("Using in-memory store - data is lost on restart")
		return memory.NewStore(), nil
	}

	db, err := repository.Open(ctx, cfg.MySQLDSN(), log)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(db); err != nil {
		return nil, err
	}
	return repository.NewStore(db), nil
}
