// Package analytics derives business metrics from a canonical snapshot:
// per-period aggregates, period-over-period trends, tier classification,
// RFM segmentation and alerts. All computation is read-only against one
// published snapshot.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"ecomcli/internal/canonical"
	"ecomcli/pkg/contracts/domain"
)

// Aggregator groups canonical facts by an analytical dimension and a
// (year, month) bucket.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates an Aggregator. A nil logger falls back to
// slog.Default.
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

// orderFacts is the per-order pre-join used by every dimension: the period
// bucket, the order's review scores and its shipping duration.
type orderFacts struct {
	period   domain.Period
	bucketed bool
	scores   []int64
	shipDays *int
}

// groupAcc accumulates one (dimension key, period) cell. Orders are counted
// distinct; review and shipping contributions are added once per order.
type groupAcc struct {
	orders    map[string]struct{}
	revenue   float64
	reviewSum float64
	reviewN   int
	shipSum   float64
	shipN     int
}

type groupKey struct {
	key    string
	period domain.Period
}

// Aggregate computes metric snapshots for one dimension, ordered by
// (key, year, month). Orders whose purchase timestamp fell back to the
// sentinel date have no meaningful bucket and are excluded.
func (a *Aggregator) Aggregate(ctx context.Context, snap *canonical.Snapshot, dim domain.Dimension) ([]domain.MetricSnapshot, error) {
	facts := a.prepareOrders(snap)
	groups := make(map[groupKey]*groupAcc)

	add := func(key, orderID string, revenue float64) {
		fact, ok := facts[orderID]
		if !ok || !fact.bucketed {
			return
		}
		gk := groupKey{key: key, period: fact.period}
		acc, ok := groups[gk]
		if !ok {
			acc = &groupAcc{orders: make(map[string]struct{})}
			groups[gk] = acc
		}
		acc.revenue += revenue
		if _, seen := acc.orders[orderID]; !seen {
			acc.orders[orderID] = struct{}{}
			for _, score := range fact.scores {
				acc.reviewSum += float64(score)
				acc.reviewN++
			}
			if fact.shipDays != nil {
				acc.shipSum += float64(*fact.shipDays)
				acc.shipN++
			}
		}
	}

	switch dim {
	case domain.DimensionCategory:
		for _, item := range snap.OrderItems {
			add(a.categoryOf(snap, item.ProductID), item.OrderID, itemRevenue(item))
		}
	case domain.DimensionSeller:
		for _, item := range snap.OrderItems {
			add(item.SellerID, item.OrderID, itemRevenue(item))
		}
	case domain.DimensionCity:
		for _, item := range snap.OrderItems {
			order, ok := snap.Orders[item.OrderID]
			if !ok {
				continue
			}
			add(a.cityOf(snap, order.CustomerID), item.OrderID, itemRevenue(item))
		}
	case domain.DimensionCustomer:
		for _, item := range snap.OrderItems {
			order, ok := snap.Orders[item.OrderID]
			if !ok {
				continue
			}
			add(order.CustomerID, item.OrderID, itemRevenue(item))
		}
	default:
		return nil, fmt.Errorf("unknown aggregation dimension: %s", dim)
	}

	out := make([]domain.MetricSnapshot, 0, len(groups))
	for gk, acc := range groups {
		ms := domain.MetricSnapshot{
			Dimension:    dim,
			Key:          gk.key,
			Period:       gk.period,
			TotalOrders:  len(acc.orders),
			TotalRevenue: acc.revenue,
		}
		if acc.reviewN > 0 {
			avg := acc.reviewSum / float64(acc.reviewN)
			ms.AvgReview = &avg
		}
		if acc.shipN > 0 {
			avg := acc.shipSum / float64(acc.shipN)
			ms.AvgShipDays = &avg
		}
		out = append(out, ms)
	}

	// Trend analysis depends on global (key, year, month) ordering, not on
	// map iteration or insertion order.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].Period.Before(out[j].Period)
	})

	a.logger.InfoContext(ctx, "aggregation completed",
		slog.String("dimension", string(dim)),
		slog.Int("snapshots", len(out)),
	)

	return out, nil
}

// AggregateAll computes snapshots for every dimension.
func (a *Aggregator) AggregateAll(ctx context.Context, snap *canonical.Snapshot) (map[domain.Dimension][]domain.MetricSnapshot, error) {
	dims := []domain.Dimension{
		domain.DimensionCategory,
		domain.DimensionSeller,
		domain.DimensionCity,
		domain.DimensionCustomer,
	}
	out := make(map[domain.Dimension][]domain.MetricSnapshot, len(dims))
	for _, dim := range dims {
		snaps, err := a.Aggregate(ctx, snap, dim)
		if err != nil {
			return nil, err
		}
		out[dim] = snaps
	}
	return out, nil
}

// prepareOrders builds the per-order fact map shared by all dimensions.
func (a *Aggregator) prepareOrders(snap *canonical.Snapshot) map[string]orderFacts {
	facts := make(map[string]orderFacts, len(snap.Orders))
	for id, order := range snap.Orders {
		f := orderFacts{shipDays: order.ShippingDays()}
		if !order.PurchasedAt.Equal(domain.SentinelDate) {
			f.period = domain.PeriodOf(order.PurchasedAt)
			f.bucketed = true
		}
		facts[id] = f
	}
	for _, review := range snap.Reviews {
		if !review.HasScore() {
			continue
		}
		if f, ok := facts[review.OrderID]; ok {
			f.scores = append(f.scores, review.Score)
			facts[review.OrderID] = f
		}
	}
	return facts
}

// itemRevenue is the revenue contribution of one order item: price plus
// freight, with sentinel values contributing nothing rather than -1.
func itemRevenue(item domain.OrderItem) float64 {
	revenue := 0.0
	if item.Price > 0 {
		revenue += item.Price
	}
	if item.FreightValue > 0 {
		revenue += item.FreightValue
	}
	return revenue
}

// categoryOf resolves an item's product to its translated category. A
// missing product is an unknown dimension match, surfaced as the text
// sentinel rather than silently folded into a real category.
func (a *Aggregator) categoryOf(snap *canonical.Snapshot, productID string) string {
	product, ok := snap.Products[productID]
	if !ok {
		return domain.SentinelText
	}
	return snap.CategoryEnglish(product.Category)
}

// cityOf resolves an order's customer to a "CITY, ST" grouping key.
func (a *Aggregator) cityOf(snap *canonical.Snapshot, customerID string) string {
	customer, ok := snap.Customers[customerID]
	if !ok {
		return domain.SentinelText
	}
	return customer.City + ", " + customer.State
}
