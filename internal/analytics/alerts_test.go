package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomcli/pkg/contracts/domain"
)

func TestRevenueDrops(t *testing.T) {
	analyzer := NewTrendAnalyzer(nil, 3)
	trends := analyzer.Analyze(context.Background(), []domain.MetricSnapshot{
		revSnapshot("toys", 2018, 1, 1000),
		revSnapshot("toys", 2018, 2, 800),
		revSnapshot("toys", 2018, 3, 900),
	}, SelectRevenue)

	alerts := NewAlertGenerator(nil, DefaultThresholds()).RevenueDrops(context.Background(), trends)
	require.Len(t, alerts, 1)

	alert := alerts[0]
	assert.Equal(t, domain.AlertRevenueDrop, alert.Kind)
	assert.Equal(t, "toys", alert.Key)
	assert.Equal(t, domain.Period{Year: 2018, Month: 2}, alert.Period)
	assert.Equal(t, -200.0, alert.Value)
	assert.Contains(t, alert.Message, "toys")
	assert.Contains(t, alert.Message, "200.00")
}

func TestRevenueDropsFirstPeriodCannotAlert(t *testing.T) {
	analyzer := NewTrendAnalyzer(nil, 3)
	trends := analyzer.Analyze(context.Background(), []domain.MetricSnapshot{
		revSnapshot("toys", 2018, 1, 1000),
	}, SelectRevenue)

	alerts := NewAlertGenerator(nil, DefaultThresholds()).RevenueDrops(context.Background(), trends)
	assert.Empty(t, alerts)
}

func TestRevenueDropsFlatPeriodDoesNotAlert(t *testing.T) {
	analyzer := NewTrendAnalyzer(nil, 3)
	trends := analyzer.Analyze(context.Background(), []domain.MetricSnapshot{
		revSnapshot("toys", 2018, 1, 1000),
		revSnapshot("toys", 2018, 2, 1000),
	}, SelectRevenue)

	alerts := NewAlertGenerator(nil, DefaultThresholds()).RevenueDrops(context.Background(), trends)
	assert.Empty(t, alerts)
}

func TestSlowShipping(t *testing.T) {
	gen := NewAlertGenerator(nil, DefaultThresholds())

	trends := []domain.TrendRecord{
		{
			MetricSnapshot: domain.MetricSnapshot{Dimension: domain.DimensionSeller, Key: "s1", Period: domain.Period{Year: 2018, Month: 1}},
			RollingAvg:     12,
		},
		{
			MetricSnapshot: domain.MetricSnapshot{Dimension: domain.DimensionSeller, Key: "s2", Period: domain.Period{Year: 2018, Month: 1}},
			RollingAvg:     10,
		},
		{
			MetricSnapshot: domain.MetricSnapshot{Dimension: domain.DimensionSeller, Key: "s3", Period: domain.Period{Year: 2018, Month: 1}},
			RollingAvg:     4,
		},
	}

	alerts := gen.SlowShipping(context.Background(), trends)
	// Strictly above the boundary alerts; exactly at it does not.
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertSlowShipping, alerts[0].Kind)
	assert.Equal(t, "s1", alerts[0].Key)
	assert.Equal(t, 12.0, alerts[0].Value)
}

func TestSlowShippingCustomThreshold(t *testing.T) {
	th := DefaultThresholds()
	th.SlowShippingDays = 7

	trends := []domain.TrendRecord{
		{
			MetricSnapshot: domain.MetricSnapshot{Dimension: domain.DimensionSeller, Key: "s1", Period: domain.Period{Year: 2018, Month: 1}},
			RollingAvg:     8,
		},
	}

	alerts := NewAlertGenerator(nil, th).SlowShipping(context.Background(), trends)
	require.Len(t, alerts, 1)
}
