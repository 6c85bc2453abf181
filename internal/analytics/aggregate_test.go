package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomcli/internal/canonical"
	"ecomcli/pkg/contracts/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datep(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

// buildSnapshot assembles a small canonical snapshot shared by the
// aggregation tests: two categories, two sellers, orders spread over two
// months.
func buildSnapshot(t *testing.T) *canonical.Snapshot {
	t.Helper()
	b := canonical.NewBuilder(nil)

	b.AddCustomers([]domain.Customer{
		{CustomerID: "c1", City: "SAO PAULO", State: "SP"},
		{CustomerID: "c2", City: "RIO DE JANEIRO", State: "RJ"},
	})
	b.AddProducts([]domain.Product{
		{ProductID: "p1", Category: "brinquedos"},
		{ProductID: "p2", Category: "esporte_lazer"},
	})
	b.AddCategoryTranslations([]domain.CategoryTranslation{
		{Category: "brinquedos", English: "toys"},
	})
	b.AddOrders([]domain.Order{
		{OrderID: "o1", CustomerID: "c1", PurchasedAt: date(2018, 1, 10), DeliveredCustomerAt: datep(2018, 1, 14)},
		{OrderID: "o2", CustomerID: "c2", PurchasedAt: date(2018, 1, 20), DeliveredCustomerAt: datep(2018, 2, 1)},
		{OrderID: "o3", CustomerID: "c1", PurchasedAt: date(2018, 2, 5)},
	})
	b.AddOrderItems([]domain.OrderItem{
		{OrderID: "o1", ItemID: 1, ProductID: "p1", SellerID: "s1", Price: 100, FreightValue: 10},
		{OrderID: "o1", ItemID: 2, ProductID: "p1", SellerID: "s1", Price: 50, FreightValue: 5},
		{OrderID: "o2", ItemID: 1, ProductID: "p1", SellerID: "s2", Price: 200, FreightValue: 20},
		{OrderID: "o3", ItemID: 1, ProductID: "p2", SellerID: "s1", Price: 80, FreightValue: 8},
	})
	b.AddReviews([]domain.Review{
		{ReviewID: "r1", OrderID: "o1", Score: 5},
		{ReviewID: "r2", OrderID: "o2", Score: 3},
		{ReviewID: "r3", OrderID: "o3", Score: domain.SentinelInt},
	})

	return b.Build(context.Background())
}

func findSnapshot(t *testing.T, snaps []domain.MetricSnapshot, key string, period domain.Period) domain.MetricSnapshot {
	t.Helper()
	for _, ms := range snaps {
		if ms.Key == key && ms.Period == period {
			return ms
		}
	}
	t.Fatalf("no snapshot for key=%s period=%s", key, period)
	return domain.MetricSnapshot{}
}

func TestAggregateCategory(t *testing.T) {
	snap := buildSnapshot(t)
	agg := NewAggregator(nil)

	snaps, err := agg.Aggregate(context.Background(), snap, domain.DimensionCategory)
	require.NoError(t, err)

	jan := domain.Period{Year: 2018, Month: 1}
	feb := domain.Period{Year: 2018, Month: 2}

	toys := findSnapshot(t, snaps, "toys", jan)
	// Two orders with toy items in January; o1 contributes two items.
	assert.Equal(t, 2, toys.TotalOrders)
	assert.InDelta(t, 385.0, toys.TotalRevenue, 1e-9)
	require.NotNil(t, toys.AvgReview)
	assert.InDelta(t, 4.0, *toys.AvgReview, 1e-9)
	require.NotNil(t, toys.AvgShipDays)
	// o1 delivered in 4 days, o2 in 12.
	assert.InDelta(t, 8.0, *toys.AvgShipDays, 1e-9)

	// Untranslated category keeps its source name.
	sport := findSnapshot(t, snaps, "esporte_lazer", feb)
	assert.Equal(t, 1, sport.TotalOrders)
	// o3's review has no score and o3 is undelivered: both averages stay nil
	// instead of being pulled down by sentinels.
	assert.Nil(t, sport.AvgReview)
	assert.Nil(t, sport.AvgShipDays)
}

func TestAggregateCountsOrdersDistinct(t *testing.T) {
	snap := buildSnapshot(t)
	agg := NewAggregator(nil)

	snaps, err := agg.Aggregate(context.Background(), snap, domain.DimensionSeller)
	require.NoError(t, err)

	jan := domain.Period{Year: 2018, Month: 1}
	s1 := findSnapshot(t, snaps, "s1", jan)
	// o1 has two items from s1 but counts as one order.
	assert.Equal(t, 1, s1.TotalOrders)
	assert.InDelta(t, 165.0, s1.TotalRevenue, 1e-9)
	require.NotNil(t, s1.AvgReview)
	assert.InDelta(t, 5.0, *s1.AvgReview, 1e-9)
}

func TestAggregateCityDimension(t *testing.T) {
	snap := buildSnapshot(t)
	agg := NewAggregator(nil)

	snaps, err := agg.Aggregate(context.Background(), snap, domain.DimensionCity)
	require.NoError(t, err)

	jan := domain.Period{Year: 2018, Month: 1}
	sp := findSnapshot(t, snaps, "SAO PAULO, SP", jan)
	assert.Equal(t, 1, sp.TotalOrders)
	rj := findSnapshot(t, snaps, "RIO DE JANEIRO, RJ", jan)
	assert.InDelta(t, 220.0, rj.TotalRevenue, 1e-9)
}

func TestAggregateExcludesSentinelPurchaseDates(t *testing.T) {
	b := canonical.NewBuilder(nil)
	b.AddOrders([]domain.Order{
		{OrderID: "o1", CustomerID: "c1", PurchasedAt: domain.SentinelDate},
	})
	b.AddOrderItems([]domain.OrderItem{
		{OrderID: "o1", ItemID: 1, ProductID: "p1", SellerID: "s1", Price: 100, FreightValue: 10},
	})
	snap := b.Build(context.Background())

	snaps, err := NewAggregator(nil).Aggregate(context.Background(), snap, domain.DimensionSeller)
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestAggregateSentinelRevenueContributesNothing(t *testing.T) {
	b := canonical.NewBuilder(nil)
	b.AddOrders([]domain.Order{
		{OrderID: "o1", CustomerID: "c1", PurchasedAt: date(2018, 3, 1)},
	})
	b.AddOrderItems([]domain.OrderItem{
		{OrderID: "o1", ItemID: 1, ProductID: "p1", SellerID: "s1", Price: domain.SentinelDecimal, FreightValue: 7.5},
	})
	snap := b.Build(context.Background())

	snaps, err := NewAggregator(nil).Aggregate(context.Background(), snap, domain.DimensionSeller)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	// The sentinel price adds zero, not -1.
	assert.InDelta(t, 7.5, snaps[0].TotalRevenue, 1e-9)
}

func TestAggregateUnknownDimension(t *testing.T) {
	snap := buildSnapshot(t)
	_, err := NewAggregator(nil).Aggregate(context.Background(), snap, domain.Dimension("galaxy"))
	assert.Error(t, err)
}

func TestAggregateAll(t *testing.T) {
	snap := buildSnapshot(t)
	all, err := NewAggregator(nil).AggregateAll(context.Background(), snap)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.NotEmpty(t, all[domain.DimensionCategory])
	assert.NotEmpty(t, all[domain.DimensionCustomer])
}

func TestAggregateOrderedByKeyThenPeriod(t *testing.T) {
	snap := buildSnapshot(t)
	snaps, err := NewAggregator(nil).Aggregate(context.Background(), snap, domain.DimensionSeller)
	require.NoError(t, err)

	for i := 1; i < len(snaps); i++ {
		prev, cur := snaps[i-1], snaps[i]
		ordered := prev.Key < cur.Key || (prev.Key == cur.Key && prev.Period.Before(cur.Period))
		assert.True(t, ordered, "snapshots out of order at %d", i)
	}
}
