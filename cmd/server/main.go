package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpadapter "certforge/internal/adapters/http"
	"certforge/internal/adapters/pdf"
	pg "certforge/internal/adapters/postgres"
	"certforge/internal/adapters/storage"
	"certforge/internal/assets"
	"certforge/internal/compose"
	"certforge/internal/config"
	"certforge/internal/domain"
	"certforge/internal/layout"
	"certforge/internal/logger"
	"certforge/internal/metrics"
	"certforge/internal/ports"
	"certforge/internal/services/branding"
	"certforge/internal/services/certificates"
	"certforge/internal/services/reports"
	"certforge/internal/workers/composerunner"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load(config.Path())
	log := logger.Must(cfg.Logging)
	defer func() { _ = log.Sync() }()
	if err != nil {
		log.Warn("Config load incomplete", logger.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", logger.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := pg.Connect(ctx, cfg.DatabaseURL, 0)
	if err != nil {
		log.Fatal("Database connect failed", logger.Error(err))
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := pg.Migrate(ctx, db); err != nil {
			log.Fatal("Migration failed", logger.Error(err))
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var urls ports.URLResolver
	if pu, err := storage.NewPublicURLs(cfg.Storage); err == nil {
		urls = pu
	} else {
		log.Warn("Storage paths will not resolve; only absolute asset URLs are fetched", logger.Error(err))
	}
	resolver := assets.NewResolver(db, urls, assets.NewFetcher(cfg.Storage), log.With(logger.String("component", "assets")), m)

	composer := compose.New(
		func(f domain.PageFormat) layout.Document { return pdf.New(f) },
		compose.WithAssets(func() compose.PhotoSource { return resolver.Scoped() }),
		compose.WithLogger(log.With(logger.String("component", "compose"))),
		compose.WithMetrics(m),
		compose.WithThreshold(cfg.Quality.Threshold),
	)

	certs := certificates.New(db)
	processor := composerunner.ComposeProcessor{
		Certificates: db,
		Artifacts:    db,
		Branding:     branding.New(db),
		Jobs:         db,
		Composer:     composer,
		Log:          log.With(logger.String("component", "worker")),
	}

	var workers sync.WaitGroup
	if cfg.ComposeWorkers > 0 {
		workers.Add(1)
		go func() {
			defer workers.Done()
			composerunner.Run(ctx, db, processor, composerunner.Config{
				Concurrency:  cfg.ComposeWorkers,
				PollInterval: cfg.PollInterval,
				Log:          log.With(logger.String("component", "runner")),
				Metrics:      m,
			})
		}()
		log.Info("Composition workers started", logger.Int("workers", cfg.ComposeWorkers))
	}

	api := httpadapter.New(certs, reports.New(db), db, processor, reg, log.With(logger.String("component", "http")))
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("Listening", logger.String("addr", cfg.ListenAddr), logger.String("env", cfg.Env))

	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server stopped", logger.Error(err))
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", logger.Error(err))
	}
	workers.Wait()
}
