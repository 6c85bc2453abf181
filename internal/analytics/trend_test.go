package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomcli/pkg/contracts/domain"
)

func revSnapshot(key string, year, month int, revenue float64) domain.MetricSnapshot {
	return domain.MetricSnapshot{
		Dimension:    domain.DimensionCategory,
		Key:          key,
		Period:       domain.Period{Year: year, Month: month},
		TotalRevenue: revenue,
	}
}

func TestTrendFirstPeriodHasNoDelta(t *testing.T) {
	analyzer := NewTrendAnalyzer(nil, 3)
	trends := analyzer.Analyze(context.Background(), []domain.MetricSnapshot{
		revSnapshot("toys", 2018, 1, 1000),
	}, SelectRevenue)

	require.Len(t, trends, 1)
	assert.Nil(t, trends[0].Prev)
	assert.Nil(t, trends[0].Delta)
	assert.Nil(t, trends[0].GrowthPct)
	assert.Equal(t, 1000.0, trends[0].RollingAvg)
}

func TestTrendDeltaAndGrowth(t *testing.T) {
	analyzer := NewTrendAnalyzer(nil, 3)
	trends := analyzer.Analyze(context.Background(), []domain.MetricSnapshot{
		revSnapshot("toys", 2018, 1, 1000),
		revSnapshot("toys", 2018, 2, 800),
	}, SelectRevenue)

	require.Len(t, trends, 2)
	feb := trends[1]
	require.NotNil(t, feb.Prev)
	assert.Equal(t, 1000.0, *feb.Prev)
	require.NotNil(t, feb.Delta)
	assert.Equal(t, -200.0, *feb.Delta)
	require.NotNil(t, feb.GrowthPct)
	assert.InDelta(t, -20.0, *feb.GrowthPct, 1e-9)
}

func TestTrendGrowthNilOnZeroPrevious(t *testing.T) {
	analyzer := NewTrendAnalyzer(nil, 3)
	trends := analyzer.Analyze(context.Background(), []domain.MetricSnapshot{
		revSnapshot("toys", 2018, 1, 0),
		revSnapshot("toys", 2018, 2, 500),
	}, SelectRevenue)

	require.Len(t, trends, 2)
	feb := trends[1]
	require.NotNil(t, feb.Delta)
	assert.Equal(t, 500.0, *feb.Delta)
	assert.Nil(t, feb.GrowthPct)
}

func TestTrendRollingWindow(t *testing.T) {
	analyzer := NewTrendAnalyzer(nil, 2)
	trends := analyzer.Analyze(context.Background(), []domain.MetricSnapshot{
		revSnapshot("toys", 2018, 1, 100),
		revSnapshot("toys", 2018, 2, 200),
		revSnapshot("toys", 2018, 3, 600),
	}, SelectRevenue)

	require.Len(t, trends, 3)
	assert.Equal(t, 100.0, trends[0].RollingAvg)
	assert.Equal(t, 150.0, trends[1].RollingAvg)
	// Window of two drops January.
	assert.Equal(t, 400.0, trends[2].RollingAvg)
}

func TestTrendResetsPerKey(t *testing.T) {
	analyzer := NewTrendAnalyzer(nil, 3)
	trends := analyzer.Analyze(context.Background(), []domain.MetricSnapshot{
		revSnapshot("art", 2018, 1, 50),
		revSnapshot("art", 2018, 2, 60),
		revSnapshot("toys", 2018, 1, 1000),
	}, SelectRevenue)

	require.Len(t, trends, 3)
	// The first toys period carries no delta from art's series.
	toys := trends[2]
	assert.Equal(t, "toys", toys.Key)
	assert.Nil(t, toys.Prev)
	assert.Equal(t, 1000.0, toys.RollingAvg)
}

func TestTrendSortsShuffledInput(t *testing.T) {
	analyzer := NewTrendAnalyzer(nil, 3)
	trends := analyzer.Analyze(context.Background(), []domain.MetricSnapshot{
		revSnapshot("toys", 2018, 3, 300),
		revSnapshot("toys", 2018, 1, 100),
		revSnapshot("toys", 2018, 2, 200),
	}, SelectRevenue)

	require.Len(t, trends, 3)
	assert.Equal(t, 100.0, trends[0].Value)
	assert.Equal(t, 200.0, trends[1].Value)
	assert.Equal(t, 300.0, trends[2].Value)
	require.NotNil(t, trends[2].Delta)
	assert.Equal(t, 100.0, *trends[2].Delta)
}

func TestTrendShippingSelectorExcludesMissingValues(t *testing.T) {
	ship := 6.0
	snapshots := []domain.MetricSnapshot{
		{Dimension: domain.DimensionSeller, Key: "s1", Period: domain.Period{Year: 2018, Month: 1}, AvgShipDays: &ship},
		{Dimension: domain.DimensionSeller, Key: "s1", Period: domain.Period{Year: 2018, Month: 2}},
	}

	trends := NewTrendAnalyzer(nil, 3).Analyze(context.Background(), snapshots, SelectShippingDays)
	// February carried no delivered orders and produces no trend record.
	require.Len(t, trends, 1)
	assert.Equal(t, 6.0, trends[0].Value)
}

func TestTrendWindowFallsBackToDefault(t *testing.T) {
	analyzer := NewTrendAnalyzer(nil, 0)
	assert.Equal(t, DefaultRollingWindow, analyzer.window)
}
