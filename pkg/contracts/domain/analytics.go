package domain

import (
	"fmt"
	"time"
)

// Period is a calendar year+month bucket.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// PeriodOf buckets a timestamp into its calendar period.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// Before reports whether p is strictly earlier than other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Dimension is a grouping axis for aggregation and trend analysis.
type Dimension string

const (
	DimensionCategory Dimension = "category"
	DimensionSeller   Dimension = "seller"
	DimensionCity     Dimension = "city"
	DimensionCustomer Dimension = "customer"
)

// MetricSnapshot is the per (dimension key, period) aggregate. Averages are
// nil when no contributing fact carried a usable value; they are never
// coerced to zero.
type MetricSnapshot struct {
	Dimension    Dimension `json:"dimension"`
	Key          string    `json:"key"`
	Period       Period    `json:"period"`
	TotalOrders  int       `json:"total_orders"`
	TotalRevenue float64   `json:"total_revenue"`
	AvgReview    *float64  `json:"avg_review_score,omitempty"`
	AvgShipDays  *float64  `json:"avg_shipping_days,omitempty"`
}

// TrendRecord augments a MetricSnapshot with period-over-period movement of
// one chosen metric. Prev, Delta and GrowthPct are nil for a key's first
// period; GrowthPct is additionally nil when the previous value is zero.
type TrendRecord struct {
	MetricSnapshot
	Value      float64  `json:"value"`
	Prev       *float64 `json:"prev_period_value,omitempty"`
	Delta      *float64 `json:"delta,omitempty"`
	GrowthPct  *float64 `json:"growth_pct,omitempty"`
	RollingAvg float64  `json:"rolling_avg"`
}

// TierLabel is a categorical classification of a numeric metric.
type TierLabel string

const (
	TierHigh     TierLabel = "High"
	TierModerate TierLabel = "Moderate"
	TierMedium   TierLabel = "Medium"
	TierLow      TierLabel = "Low"

	TierExcellent TierLabel = "Excellent"
	TierGood      TierLabel = "Good"
	TierPoor      TierLabel = "Poor"

	TierFast TierLabel = "Fast"
	TierSlow TierLabel = "Slow"
)

// CustomerRFM is the recency/frequency/monetary segmentation of one
// customer. Recency is measured against the run's as-of instant, so it is
// not stable across runs. Customers without orders carry nil aggregates and
// the lowest tiers.
type CustomerRFM struct {
	CustomerID    string    `json:"customer_id"`
	RecencyDays   *int      `json:"recency_days,omitempty"`
	Frequency     int       `json:"frequency"`
	Monetary      float64   `json:"monetary"`
	LifetimeDays  *int      `json:"customer_lifetime_days,omitempty"`
	MonetaryTier  TierLabel `json:"monetary_tier"`
	FrequencyTier TierLabel `json:"frequency_tier"`
	RecencyTier   TierLabel `json:"recency_tier"`
}

// AlertKind identifies the condition an alert reports.
type AlertKind string

const (
	AlertRevenueDrop  AlertKind = "RevenueDrop"
	AlertSlowShipping AlertKind = "SlowShippingAlert"
)

// Alert is a filtered projection of trend output flagging a period that
// needs attention.
type Alert struct {
	Kind      AlertKind `json:"kind"`
	Dimension Dimension `json:"dimension"`
	Key       string    `json:"key"`
	Period    Period    `json:"period"`
	Value     float64   `json:"value"`
	Message   string    `json:"message"`
}
