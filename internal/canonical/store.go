// Package canonical holds the cleaned record collections produced by one
// load cycle. Each cycle builds a new immutable Snapshot bound to a version
// id; readers bind to a published snapshot and never observe a partially
// built one.
package canonical

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"ecomcli/pkg/contracts/domain"
)

// Snapshot is one immutable canonical record set. Maps must not be mutated
// after Publish.
type Snapshot struct {
	Version  string    `json:"version"`
	LoadedAt time.Time `json:"loaded_at"`

	Customers            map[string]domain.Customer              `json:"-"`
	Orders               map[string]domain.Order                 `json:"-"`
	Products             map[string]domain.Product               `json:"-"`
	Sellers              map[string]domain.Seller                `json:"-"`
	CategoryTranslations map[string]domain.CategoryTranslation   `json:"-"`
	Geolocations         map[domain.GeolocationKey]domain.Geolocation `json:"-"`
	OrderItems           map[domain.OrderItemKey]domain.OrderItem     `json:"-"`
	Payments             map[domain.PaymentKey]domain.Payment         `json:"-"`
	Reviews              map[string]domain.Review                `json:"-"`
}

// Counts summarizes table sizes for the load report.
type Counts struct {
	Customers            int `json:"customers"`
	Orders               int `json:"orders"`
	Products             int `json:"products"`
	Sellers              int `json:"sellers"`
	CategoryTranslations int `json:"category_translations"`
	Geolocations         int `json:"geolocations"`
	OrderItems           int `json:"order_items"`
	Payments             int `json:"payments"`
	Reviews              int `json:"reviews"`
}

// Counts returns the table sizes of the snapshot.
func (s *Snapshot) Counts() Counts {
	return Counts{
		Customers:            len(s.Customers),
		Orders:               len(s.Orders),
		Products:             len(s.Products),
		Sellers:              len(s.Sellers),
		CategoryTranslations: len(s.CategoryTranslations),
		Geolocations:         len(s.Geolocations),
		OrderItems:           len(s.OrderItems),
		Payments:             len(s.Payments),
		Reviews:              len(s.Reviews),
	}
}

// CategoryEnglish resolves a source-language category name through the
// translation table, falling back to the source name when no translation
// exists (missing dimension matches stay visible, they are not zeroed out).
func (s *Snapshot) CategoryEnglish(category string) string {
	if t, ok := s.CategoryTranslations[category]; ok {
		return t.English
	}
	return category
}

// Builder accumulates normalized records into a snapshot. Duplicate primary
// keys keep the first occurrence; duplicates are counted and logged.
type Builder struct {
	logger     *slog.Logger
	snapshot   *Snapshot
	duplicates int
}

// NewBuilder starts a fresh snapshot with a new version id.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		logger: logger,
		snapshot: &Snapshot{
			Version:              uuid.NewString(),
			LoadedAt:             time.Now().UTC(),
			Customers:            make(map[string]domain.Customer),
			Orders:               make(map[string]domain.Order),
			Products:             make(map[string]domain.Product),
			Sellers:              make(map[string]domain.Seller),
			CategoryTranslations: make(map[string]domain.CategoryTranslation),
			Geolocations:         make(map[domain.GeolocationKey]domain.Geolocation),
			OrderItems:           make(map[domain.OrderItemKey]domain.OrderItem),
			Payments:             make(map[domain.PaymentKey]domain.Payment),
			Reviews:              make(map[string]domain.Review),
		},
	}
}

func addAll[K comparable, V any](b *Builder, m map[K]V, items []V, key func(V) K) {
	for _, item := range items {
		k := key(item)
		if _, exists := m[k]; exists {
			b.duplicates++
			continue
		}
		m[k] = item
	}
}

// AddCustomers adds normalized customers keyed by customer id.
func (b *Builder) AddCustomers(items []domain.Customer) {
	addAll(b, b.snapshot.Customers, items, func(c domain.Customer) string { return c.CustomerID })
}

// AddOrders adds normalized orders keyed by order id.
func (b *Builder) AddOrders(items []domain.Order) {
	addAll(b, b.snapshot.Orders, items, func(o domain.Order) string { return o.OrderID })
}

// AddProducts adds normalized products keyed by product id.
func (b *Builder) AddProducts(items []domain.Product) {
	addAll(b, b.snapshot.Products, items, func(p domain.Product) string { return p.ProductID })
}

// AddSellers adds normalized sellers keyed by seller id.
func (b *Builder) AddSellers(items []domain.Seller) {
	addAll(b, b.snapshot.Sellers, items, func(s domain.Seller) string { return s.SellerID })
}

// AddCategoryTranslations adds translations keyed by source category name.
func (b *Builder) AddCategoryTranslations(items []domain.CategoryTranslation) {
	addAll(b, b.snapshot.CategoryTranslations, items, func(t domain.CategoryTranslation) string { return t.Category })
}

// AddGeolocations adds deduplicated geolocation rows keyed by
// (zip prefix, latitude, longitude).
func (b *Builder) AddGeolocations(items []domain.Geolocation) {
	addAll(b, b.snapshot.Geolocations, items, domain.Geolocation.Key)
}

// AddOrderItems adds order items keyed by (order id, item id).
func (b *Builder) AddOrderItems(items []domain.OrderItem) {
	addAll(b, b.snapshot.OrderItems, items, domain.OrderItem.Key)
}

// AddPayments adds payments keyed by (order id, payment sequential).
func (b *Builder) AddPayments(items []domain.Payment) {
	addAll(b, b.snapshot.Payments, items, domain.Payment.Key)
}

// AddReviews adds deduplicated reviews keyed by review id.
func (b *Builder) AddReviews(items []domain.Review) {
	addAll(b, b.snapshot.Reviews, items, func(r domain.Review) string { return r.ReviewID })
}

// Build finalizes and returns the snapshot. The builder must not be used
// afterwards.
func (b *Builder) Build(ctx context.Context) *Snapshot {
	if b.duplicates > 0 {
		b.logger.WarnContext(ctx, "duplicate primary keys dropped during snapshot build",
			slog.Int("duplicates", b.duplicates),
			slog.String("version", b.snapshot.Version),
		)
	}
	counts := b.snapshot.Counts()
	b.logger.InfoContext(ctx, "canonical snapshot built",
		slog.String("version", b.snapshot.Version),
		slog.Int("customers", counts.Customers),
		slog.Int("orders", counts.Orders),
		slog.Int("order_items", counts.OrderItems),
		slog.Int("payments", counts.Payments),
		slog.Int("reviews", counts.Reviews),
	)
	return b.snapshot
}

// Duplicates returns the number of dropped duplicate-key rows so far.
func (b *Builder) Duplicates() int {
	return b.duplicates
}

// Registry publishes completed snapshots. Readers always see either the
// previous fully built snapshot or the new one, never an intermediate
// state; this replaces truncate-and-reload of shared tables.
type Registry struct {
	current atomic.Pointer[Snapshot]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Publish makes the snapshot the latest visible version.
func (r *Registry) Publish(s *Snapshot) {
	r.current.Store(s)
}

// Latest returns the latest published snapshot, or nil before the first
// successful load cycle.
func (r *Registry) Latest() *Snapshot {
	return r.current.Load()
}
