// Command server runs one batch load cycle and then serves the read-only
// reporting API over it.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"ecomcli/internal/canonical"
	"ecomcli/internal/config"
	"ecomcli/internal/infrastructure"
	"ecomcli/internal/ingest"
	"ecomcli/internal/pipeline"
	transporthttp "ecomcli/internal/transport/http"
	"ecomcli/pkg/contracts"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return err
	}

	asOf, err := cfg.Analytics.AsOfTime()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.InfoContext(ctx, "starting", slog.String("build", contracts.GetVersionInfo().String()))

	promRegistry := prometheus.NewRegistry()
	registry := canonical.NewRegistry()
	metrics := pipeline.NewMetrics(promRegistry)
	source := ingest.New(logger, cfg.Paths.DataDir)

	runner := pipeline.NewRunner(logger, source, registry, metrics, pipeline.Options{
		AsOf:          asOf,
		RollingWindow: cfg.Analytics.RollingWindow,
		Thresholds:    cfg.Analytics.Thresholds,
	})

	if _, err := runner.Run(ctx); err != nil {
		return err
	}

	router := transporthttp.NewRouter(transporthttp.RouterConfig{
		Logger:    logger,
		Registry:  registry,
		Results:   runner,
		Gatherer:  promRegistry,
		RateRPS:   cfg.Server.RateLimitRPS,
		RateBurst: cfg.Server.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "reporting API listening", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	logger.InfoContext(shutdownCtx, "shutting down reporting API")
	return srv.Shutdown(shutdownCtx)
}
