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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	temporalclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/interceptor"
	"go.temporal.io/sdk/worker"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/autosetup/internal/activity"
	"github.com/edvin/autosetup/internal/config"
	"github.com/edvin/autosetup/internal/db"
	"github.com/edvin/autosetup/internal/edc"
	"github.com/edvin/autosetup/internal/helm"
	"github.com/edvin/autosetup/internal/logging"
	"github.com/edvin/autosetup/internal/metrics"
	"github.com/edvin/autosetup/internal/objectstore"
	"github.com/edvin/autosetup/internal/portal"
	"github.com/edvin/autosetup/internal/workflow"
)

const taskQueue = "autosetup-tasks"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(config.RoleWorker); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	if err := metrics.RegisterDBPool(prometheus.DefaultRegisterer, "worker", pool); err != nil {
		logger.Fatal().Err(err).Msg("failed to register pool metrics")
	}

	dialOpts, err := cfg.TemporalOptions()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure temporal client")
	}
	if dialOpts.ConnectionOptions.TLS != nil {
		logger.Info().Msg("temporal mTLS enabled")
	}
	tc, err := temporalclient.Dial(dialOpts)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to temporal")
	}
	defer tc.Close()

	w := worker.New(tc, taskQueue, worker.Options{
		Interceptors: []interceptor.WorkerInterceptor{&workflow.ErrorTypingInterceptor{}},
	})

	if err := registerActivities(w, cfg, pool, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to build activities")
	}
	w.RegisterWorkflow(workflow.AutoSetupWorkflow)

	if err := w.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start temporal worker")
	}
	logger.Info().Str("taskQueue", taskQueue).Msg("temporal worker started")

	g, gctx := errgroup.WithContext(ctx)
	if cfg.MetricsAddr != "" {
		metricsSrv := metrics.NewServer(cfg.MetricsAddr, pool.Ping)
		g.Go(func() error {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("starting metrics server")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down worker")
		w.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("worker exited with error")
	}
}

// registerActivities builds one activity struct per external system. The
// storage and portal collaborators are only built when their feature is
// enabled; the workflow never schedules their activities otherwise.
func registerActivities(w worker.Worker, cfg *config.Config, pool activity.DB, logger zerolog.Logger) error {
	var admin objectstore.Admin
	if cfg.StorageMediaEnabled {
		client, err := objectstore.NewClient(objectstore.Config{
			Endpoint:  cfg.MinIOEndpoint,
			Region:    cfg.MinIORegion,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			UseSSL:    cfg.MinIOUseSSL,
		}, logger)
		if err != nil {
			return fmt.Errorf("object storage client: %w", err)
		}
		admin = client
	}
	w.RegisterActivity(activity.NewStorage(admin, cfg.StorageEndpoint, logger))

	var kubeconfig []byte
	if cfg.Kubeconfig != "" {
		b, err := os.ReadFile(cfg.Kubeconfig)
		if err != nil {
			return fmt.Errorf("read kubeconfig: %w", err)
		}
		kubeconfig = b
	}
	charts := map[helm.Category]helm.Chart{
		helm.CategoryEDCConnector: {RepoURL: cfg.EDCChartRepo, Name: cfg.EDCChartName, Version: cfg.EDCChartVersion},
		helm.CategoryDTRegistry:   {RepoURL: cfg.DTChartRepo, Name: cfg.DTChartName, Version: cfg.DTChartVersion},
	}
	w.RegisterActivity(activity.NewPackages(helm.NewClient(kubeconfig, charts, logger), logger))

	w.RegisterActivity(activity.NewEDC(edc.NewClient(), logger))

	var portalAPI activity.PortalAPI
	if cfg.PortalEnabled {
		portalAPI = portal.NewClient(portal.Config{
			BaseURL:      cfg.PortalURL,
			TokenURL:     cfg.PortalTokenURL,
			ClientID:     cfg.PortalClientID,
			ClientSecret: cfg.PortalClientSecret,
		})
	}
	w.RegisterActivity(activity.NewPortal(portalAPI, logger))

	w.RegisterActivity(activity.NewTracker(pool))
	w.RegisterActivity(activity.NewCallback())
	return nil
}
