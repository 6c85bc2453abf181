// Command processor runs one batch load cycle: ingest raw transaction
// files, build the canonical snapshot, derive analytics and export the
// results.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"ecomcli/internal/canonical"
	"ecomcli/internal/config"
	"ecomcli/internal/exporter"
	"ecomcli/internal/infrastructure"
	"ecomcli/internal/ingest"
	"ecomcli/internal/pipeline"
	"ecomcli/pkg/contracts"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "processor: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	dataDir := flag.String("data", "", "override raw data directory")
	reportsDir := flag.String("reports", "", "override reports output directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *dataDir != "" {
		cfg.Paths.DataDir = *dataDir
	}
	if *reportsDir != "" {
		cfg.Paths.ReportsDir = *reportsDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return err
	}

	asOf, err := cfg.Analytics.AsOfTime()
	if err != nil {
		return err
	}

	ctx := context.Background()
	logger.InfoContext(ctx, "starting", slog.String("build", contracts.GetVersionInfo().String()))

	registry := canonical.NewRegistry()
	metrics := pipeline.NewMetrics(prometheus.NewRegistry())
	source := ingest.New(logger, cfg.Paths.DataDir)

	runner := pipeline.NewRunner(logger, source, registry, metrics, pipeline.Options{
		AsOf:          asOf,
		RollingWindow: cfg.Analytics.RollingWindow,
		Thresholds:    cfg.Analytics.Thresholds,
	})

	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if err := exporter.New(logger, cfg.Paths.ReportsDir).Export(ctx, result); err != nil {
		return err
	}

	logger.InfoContext(ctx, "processing completed",
		slog.String("run_id", result.RunID),
		slog.String("snapshot_version", result.SnapshotVersion),
		slog.Int("alerts", len(result.Alerts)),
	)
	return nil
}
