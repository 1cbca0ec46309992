package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	temporalclient "go.temporal.io/sdk/client"

	"github.com/edvin/autosetup/internal/api"
	"github.com/edvin/autosetup/internal/config"
	"github.com/edvin/autosetup/internal/db"
	"github.com/edvin/autosetup/internal/logging"
	"github.com/edvin/autosetup/internal/metrics"
	"github.com/edvin/autosetup/migrations"
)

func main() {
	migrate := flag.Bool("migrate", false, "Apply trigger store migrations before serving")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(config.RoleCoreAPI); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)
	if err := run(cfg, logger, *migrate); err != nil {
		logger.Fatal().Err(err).Msg("auto-setup API exited")
	}
}

func run(cfg *config.Config, logger zerolog.Logger, migrate bool) error {
	if migrate {
		logger.Info().Msg("applying trigger store migrations")
		if err := db.RunMigrations(cfg.DatabaseURL, migrations.FS); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect trigger store: %w", err)
	}
	defer pool.Close()
	if err := metrics.RegisterDBPool(prometheus.DefaultRegisterer, "core-api", pool); err != nil {
		return fmt.Errorf("register pool metrics: %w", err)
	}

	dialOpts, err := cfg.TemporalOptions()
	if err != nil {
		return err
	}
	if dialOpts.ConnectionOptions.TLS != nil {
		logger.Info().Msg("temporal mTLS enabled")
	}
	tc, err := temporalclient.Dial(dialOpts)
	if err != nil {
		return fmt.Errorf("dial temporal: %w", err)
	}
	defer tc.Close()

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      api.NewServer(logger, pool, tc, cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting auto-setup API server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down auto-setup API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
