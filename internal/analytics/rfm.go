package analytics

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"ecomcli/internal/canonical"
	"ecomcli/pkg/contracts/domain"
)

// RFMCalculator computes recency/frequency/monetary segmentation per
// customer against a fixed as-of instant. Recency is a distance to that
// instant, so it is recomputed fully on every run and is not stable across
// runs by design.
type RFMCalculator struct {
	logger     *slog.Logger
	asOf       time.Time
	thresholds Thresholds
}

// NewRFMCalculator creates an RFMCalculator. A zero asOf falls back to the
// current time.
func NewRFMCalculator(logger *slog.Logger, asOf time.Time, thresholds Thresholds) *RFMCalculator {
	if logger == nil {
		logger = slog.Default()
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	thresholds.Normalize()
	return &RFMCalculator{logger: logger, asOf: asOf, thresholds: thresholds}
}

// Compute segments every customer in the snapshot, ordered by customer id.
// Customers without orders keep nil recency/lifetime, zero frequency and
// monetary, and the lowest tiers; nil aggregates never reach a comparison.
func (r *RFMCalculator) Compute(ctx context.Context, snap *canonical.Snapshot) []domain.CustomerRFM {
	type custAcc struct {
		orders    map[string]struct{}
		first     *time.Time
		last      *time.Time
		monetary  float64
	}

	accs := make(map[string]*custAcc, len(snap.Customers))
	for id := range snap.Customers {
		accs[id] = &custAcc{orders: make(map[string]struct{})}
	}

	orderCustomer := make(map[string]string, len(snap.Orders))
	for id, order := range snap.Orders {
		acc, ok := accs[order.CustomerID]
		if !ok {
			// Order referencing an unknown customer still produces a
			// segment; outer-join semantics keep the fact visible.
			acc = &custAcc{orders: make(map[string]struct{})}
			accs[order.CustomerID] = acc
		}
		orderCustomer[id] = order.CustomerID
		acc.orders[id] = struct{}{}
		if order.PurchasedAt.Equal(domain.SentinelDate) {
			continue
		}
		t := order.PurchasedAt
		if acc.first == nil || t.Before(*acc.first) {
			acc.first = &t
		}
		if acc.last == nil || t.After(*acc.last) {
			acc.last = &t
		}
	}

	for _, payment := range snap.Payments {
		customerID, ok := orderCustomer[payment.OrderID]
		if !ok {
			continue
		}
		if payment.Value > 0 {
			accs[customerID].monetary += payment.Value
		}
	}

	out := make([]domain.CustomerRFM, 0, len(accs))
	for customerID, acc := range accs {
		rfm := domain.CustomerRFM{
			CustomerID: customerID,
			Frequency:  len(acc.orders),
			Monetary:   acc.monetary,
		}
		if acc.last != nil {
			recency := wholeDays(r.asOf.Sub(*acc.last))
			rfm.RecencyDays = &recency
		}
		if acc.first != nil && acc.last != nil {
			lifetime := wholeDays(acc.last.Sub(*acc.first))
			rfm.LifetimeDays = &lifetime
		}
		rfm.MonetaryTier = r.monetaryTier(rfm.Monetary)
		rfm.FrequencyTier = r.frequencyTier(rfm.Frequency)
		rfm.RecencyTier = r.recencyTier(rfm.RecencyDays)
		out = append(out, rfm)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CustomerID < out[j].CustomerID
	})

	r.logger.InfoContext(ctx, "rfm segmentation completed",
		slog.Int("customers", len(out)),
		slog.Time("as_of", r.asOf),
	)

	return out
}

func wholeDays(d time.Duration) int {
	return int(d.Hours() / 24)
}

func (r *RFMCalculator) monetaryTier(monetary float64) domain.TierLabel {
	switch {
	case monetary >= r.thresholds.MonetaryHighMin:
		return domain.TierHigh
	case monetary >= r.thresholds.MonetaryMediumMin:
		return domain.TierMedium
	default:
		return domain.TierLow
	}
}

func (r *RFMCalculator) frequencyTier(frequency int) domain.TierLabel {
	switch {
	case frequency >= r.thresholds.FrequencyHighMin:
		return domain.TierHigh
	case frequency >= r.thresholds.FrequencyMediumMin:
		return domain.TierMedium
	default:
		return domain.TierLow
	}
}

// recencyTier falls through to the lowest tier when the customer has no
// dated orders; a nil recency is never compared against a boundary.
func (r *RFMCalculator) recencyTier(recencyDays *int) domain.TierLabel {
	if recencyDays == nil {
		return domain.TierLow
	}
	switch {
	case *recencyDays <= r.thresholds.RecencyHighMaxDays:
		return domain.TierHigh
	case *recencyDays <= r.thresholds.RecencyMediumMaxDays:
		return domain.TierMedium
	default:
		return domain.TierLow
	}
}
