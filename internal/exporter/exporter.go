// Package exporter writes analytical outputs to CSV and JSON files for
// external reporting tools. Field names match the schema contract exactly;
// other tools query against them.
package exporter

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"ecomcli/internal/errors"
	"ecomcli/internal/pipeline"
	"ecomcli/pkg/contracts/domain"
)

// Exporter writes run results into an output directory.
type Exporter struct {
	logger *slog.Logger
	outDir string
}

// New creates an Exporter targeting outDir.
func New(logger *slog.Logger, outDir string) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger, outDir: outDir}
}

// Export writes every analytical output of the run: per-dimension metric
// CSVs, trend CSVs, RFM and alert CSVs, and one JSON result document.
func (e *Exporter) Export(ctx context.Context, result *pipeline.Result) error {
	if err := os.MkdirAll(e.outDir, 0755); err != nil {
		return errors.NewStorageError("create reports directory", err)
	}

	for dim, snaps := range result.Snapshots {
		path := filepath.Join(e.outDir, fmt.Sprintf("metrics_%s.csv", dim))
		if err := e.writeSnapshotsCSV(path, snaps); err != nil {
			return err
		}
	}
	for dim, trends := range result.RevenueTrends {
		path := filepath.Join(e.outDir, fmt.Sprintf("revenue_trends_%s.csv", dim))
		if err := e.writeTrendsCSV(path, trends); err != nil {
			return err
		}
	}
	if err := e.writeTrendsCSV(filepath.Join(e.outDir, "shipping_trends_seller.csv"), result.ShippingTrends); err != nil {
		return err
	}
	if err := e.writeRFMCSV(filepath.Join(e.outDir, "customer_rfm.csv"), result.RFM); err != nil {
		return err
	}
	if err := e.writeAlertsCSV(filepath.Join(e.outDir, "alerts.csv"), result.Alerts); err != nil {
		return err
	}
	if err := e.writeResultJSON(filepath.Join(e.outDir, "run_result.json"), result); err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "run results exported",
		slog.String("run_id", result.RunID),
		slog.String("dir", e.outDir),
	)
	return nil
}

func (e *Exporter) writeSnapshotsCSV(path string, snaps []domain.MetricSnapshot) error {
	return e.writeCSV(path,
		[]string{"dimension", "key", "year", "month", "total_orders", "total_revenue", "avg_review_score", "avg_shipping_days"},
		len(snaps),
		func(i int) []string {
			ms := snaps[i]
			return []string{
				string(ms.Dimension),
				ms.Key,
				strconv.Itoa(ms.Period.Year),
				strconv.Itoa(ms.Period.Month),
				strconv.Itoa(ms.TotalOrders),
				fmt.Sprintf("%.2f", ms.TotalRevenue),
				formatOptional(ms.AvgReview),
				formatOptional(ms.AvgShipDays),
			}
		})
}

func (e *Exporter) writeTrendsCSV(path string, trends []domain.TrendRecord) error {
	return e.writeCSV(path,
		[]string{"dimension", "key", "year", "month", "value", "prev_period_value", "delta", "growth_pct", "rolling_avg"},
		len(trends),
		func(i int) []string {
			tr := trends[i]
			return []string{
				string(tr.Dimension),
				tr.Key,
				strconv.Itoa(tr.Period.Year),
				strconv.Itoa(tr.Period.Month),
				fmt.Sprintf("%.2f", tr.Value),
				formatOptional(tr.Prev),
				formatOptional(tr.Delta),
				formatOptional(tr.GrowthPct),
				fmt.Sprintf("%.2f", tr.RollingAvg),
			}
		})
}

func (e *Exporter) writeRFMCSV(path string, rfm []domain.CustomerRFM) error {
	return e.writeCSV(path,
		[]string{"customer_id", "recency_days", "frequency", "monetary", "customer_lifetime_days", "monetary_tier", "frequency_tier", "recency_tier"},
		len(rfm),
		func(i int) []string {
			r := rfm[i]
			return []string{
				r.CustomerID,
				formatOptionalInt(r.RecencyDays),
				strconv.Itoa(r.Frequency),
				fmt.Sprintf("%.2f", r.Monetary),
				formatOptionalInt(r.LifetimeDays),
				string(r.MonetaryTier),
				string(r.FrequencyTier),
				string(r.RecencyTier),
			}
		})
}

func (e *Exporter) writeAlertsCSV(path string, alerts []domain.Alert) error {
	return e.writeCSV(path,
		[]string{"kind", "dimension", "key", "year", "month", "value", "message"},
		len(alerts),
		func(i int) []string {
			a := alerts[i]
			return []string{
				string(a.Kind),
				string(a.Dimension),
				a.Key,
				strconv.Itoa(a.Period.Year),
				strconv.Itoa(a.Period.Month),
				fmt.Sprintf("%.2f", a.Value),
				a.Message,
			}
		})
}

// writeCSV is the shared writer: header row plus n data rows.
func (e *Exporter) writeCSV(path string, header []string, n int, row func(int) []string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("create %s", filepath.Base(path)), err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return errors.NewStorageError("write CSV header row", err)
	}
	for i := 0; i < n; i++ {
		if err := writer.Write(row(i)); err != nil {
			return errors.NewStorageError("write CSV data row", err)
		}
	}
	return nil
}

func (e *Exporter) writeResultJSON(path string, result *pipeline.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("create run result JSON", err)
	}
	defer file.Close()

	doc := map[string]interface{}{
		"result":       result,
		"generated_at": time.Now().UTC().Format(time.RFC3339),
		"format":       "run_result_v1",
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return errors.NewStorageError("encode run result JSON", err)
	}
	return nil
}

// formatOptional renders a nullable metric; absence stays an empty cell,
// never a zero.
func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
