package analytics

import (
	"context"
	"log/slog"
	"sort"

	"ecomcli/pkg/contracts/domain"
)

// DefaultRollingWindow is the trailing window width for rolling averages.
const DefaultRollingWindow = 3

// MetricSelector extracts the metric a trend series is computed over. The
// second return value reports whether the snapshot carries the metric at
// all; snapshots without it are excluded from the series, not treated as
// zero.
type MetricSelector func(domain.MetricSnapshot) (float64, bool)

// SelectRevenue follows total revenue.
func SelectRevenue(ms domain.MetricSnapshot) (float64, bool) {
	return ms.TotalRevenue, true
}

// SelectShippingDays follows the average shipping duration; periods where
// no order was delivered carry no value.
func SelectShippingDays(ms domain.MetricSnapshot) (float64, bool) {
	if ms.AvgShipDays == nil {
		return 0, false
	}
	return *ms.AvgShipDays, true
}

// SelectOrders follows the distinct order count.
func SelectOrders(ms domain.MetricSnapshot) (float64, bool) {
	return float64(ms.TotalOrders), true
}

// TrendAnalyzer computes period-over-period deltas, growth percentages and
// trailing rolling averages per dimension key.
type TrendAnalyzer struct {
	logger *slog.Logger
	window int
}

// NewTrendAnalyzer creates a TrendAnalyzer with the given rolling window
// width. Widths below 1 fall back to the default.
func NewTrendAnalyzer(logger *slog.Logger, window int) *TrendAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if window < 1 {
		window = DefaultRollingWindow
	}
	return &TrendAnalyzer{logger: logger, window: window}
}

// Analyze folds each key's time series into trend records. Input snapshots
// are re-sorted by (key, year, month) before the fold: correctness depends
// on global period order per key, never on delivery order.
//
// The first period of a key has nil prev/delta/growth. Growth is also nil
// when the previous value is exactly zero; a zero denominator is never
// silently coerced to zero or infinity.
func (t *TrendAnalyzer) Analyze(ctx context.Context, snapshots []domain.MetricSnapshot, selector MetricSelector) []domain.TrendRecord {
	ordered := make([]domain.MetricSnapshot, len(snapshots))
	copy(ordered, snapshots)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Key != ordered[j].Key {
			return ordered[i].Key < ordered[j].Key
		}
		return ordered[i].Period.Before(ordered[j].Period)
	})

	out := make([]domain.TrendRecord, 0, len(ordered))

	var (
		currentKey string
		prev       *float64
		buffer     []float64
	)

	for _, ms := range ordered {
		if ms.Key != currentKey {
			currentKey = ms.Key
			prev = nil
			buffer = buffer[:0]
		}

		value, ok := selector(ms)
		if !ok {
			continue
		}

		rec := domain.TrendRecord{MetricSnapshot: ms, Value: value}
		if prev != nil {
			p := *prev
			delta := value - p
			rec.Prev = &p
			rec.Delta = &delta
			if p != 0 {
				growth := delta / p * 100
				rec.GrowthPct = &growth
			}
		}

		buffer = append(buffer, value)
		if len(buffer) > t.window {
			buffer = buffer[1:]
		}
		rec.RollingAvg = mean(buffer)

		out = append(out, rec)
		v := value
		prev = &v
	}

	t.logger.DebugContext(ctx, "trend analysis completed",
		slog.Int("input_snapshots", len(snapshots)),
		slog.Int("trend_records", len(out)),
		slog.Int("window", t.window),
	)

	return out
}

// mean averages however many values are present; a partial window does not
// wait for the full width.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
