package pipeline

import (
	"ecomcli/internal/canonical"
	"ecomcli/internal/normalize"
	"ecomcli/pkg/contracts/domain"
)

// State is the shared working set of one batch run. Steps execute
// sequentially, so access needs no locking; the published snapshot and the
// final Result are the only artifacts that outlive the run.
type State struct {
	RunID string

	// Load phase
	Raw                  map[domain.EntityType][]domain.RawRecord
	Customers            []domain.Customer
	Orders               []domain.Order
	Products             []domain.Product
	Sellers              []domain.Seller
	CategoryTranslations []domain.CategoryTranslation
	Geolocations         []domain.Geolocation
	OrderItems           []domain.OrderItem
	Payments             []domain.Payment
	Reviews              []domain.Review
	Stats                []normalize.Stats

	// Barrier artifact
	Snapshot *canonical.Snapshot

	// Analytics phase
	Result *Result
}

// Result is the analytical output of one run, the contract consumed by the
// exporter and the reporting API.
type Result struct {
	RunID           string                                      `json:"run_id"`
	SnapshotVersion string                                      `json:"snapshot_version"`
	Stats           []normalize.Stats                           `json:"load_stats"`
	Counts          canonical.Counts                            `json:"canonical_counts"`
	Snapshots       map[domain.Dimension][]domain.MetricSnapshot `json:"snapshots"`
	RevenueTrends   map[domain.Dimension][]domain.TrendRecord    `json:"revenue_trends"`
	ShippingTrends  []domain.TrendRecord                        `json:"shipping_trends"`
	Tiers           []TierAssignment                            `json:"tiers"`
	RFM             []domain.CustomerRFM                        `json:"rfm"`
	Alerts          []domain.Alert                              `json:"alerts"`
}

// TierAssignment attaches a tier label to one dimension key's metric.
type TierAssignment struct {
	Dimension domain.Dimension `json:"dimension"`
	Key       string           `json:"key"`
	Metric    string           `json:"metric"`
	Value     float64          `json:"value"`
	Tier      domain.TierLabel `json:"tier"`
}
