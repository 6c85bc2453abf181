package analytics

import (
	"context"
	"fmt"
	"log/slog"

	"ecomcli/pkg/contracts/domain"
)

// AlertGenerator filters trend output into alerts. It performs no
// computation of its own; a period that triggers no condition emits
// nothing.
type AlertGenerator struct {
	logger     *slog.Logger
	thresholds Thresholds
}

// NewAlertGenerator creates an AlertGenerator.
func NewAlertGenerator(logger *slog.Logger, thresholds Thresholds) *AlertGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	thresholds.Normalize()
	return &AlertGenerator{logger: logger, thresholds: thresholds}
}

// RevenueDrops emits a RevenueDrop alert for every period whose revenue
// delta is negative. First periods carry no delta and cannot alert.
func (g *AlertGenerator) RevenueDrops(ctx context.Context, trends []domain.TrendRecord) []domain.Alert {
	var alerts []domain.Alert
	for _, tr := range trends {
		if tr.Delta == nil || *tr.Delta >= 0 {
			continue
		}
		alerts = append(alerts, domain.Alert{
			Kind:      domain.AlertRevenueDrop,
			Dimension: tr.Dimension,
			Key:       tr.Key,
			Period:    tr.Period,
			Value:     *tr.Delta,
			Message:   fmt.Sprintf("revenue for %q dropped by %.2f in %s", tr.Key, -*tr.Delta, tr.Period),
		})
	}
	g.logger.InfoContext(ctx, "revenue drop scan completed",
		slog.Int("trend_records", len(trends)),
		slog.Int("alerts", len(alerts)),
	)
	return alerts
}

// SlowShipping emits a SlowShippingAlert for every period whose rolling
// shipping average strictly exceeds the threshold (exactly at the boundary
// does not alert).
func (g *AlertGenerator) SlowShipping(ctx context.Context, trends []domain.TrendRecord) []domain.Alert {
	var alerts []domain.Alert
	for _, tr := range trends {
		if tr.RollingAvg <= g.thresholds.SlowShippingDays {
			continue
		}
		alerts = append(alerts, domain.Alert{
			Kind:      domain.AlertSlowShipping,
			Dimension: tr.Dimension,
			Key:       tr.Key,
			Period:    tr.Period,
			Value:     tr.RollingAvg,
			Message:   fmt.Sprintf("rolling shipping average for %q reached %.1f days in %s", tr.Key, tr.RollingAvg, tr.Period),
		})
	}
	g.logger.InfoContext(ctx, "slow shipping scan completed",
		slog.Int("trend_records", len(trends)),
		slog.Int("alerts", len(alerts)),
	)
	return alerts
}
