package pipeline

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"ecomcli/internal/analytics"
	"ecomcli/internal/canonical"
	"ecomcli/internal/dedup"
	"ecomcli/internal/ingest"
	"ecomcli/internal/normalize"
	"ecomcli/pkg/contracts/domain"
)

// RawSource delivers raw records per entity type. internal/ingest provides
// the file-based implementation; tests substitute their own.
type RawSource interface {
	Load(ctx context.Context) (map[domain.EntityType][]domain.RawRecord, error)
}

var _ RawSource = (*ingest.Source)(nil)

// LoadStep pulls raw records from the source into the run state.
type LoadStep struct {
	source RawSource
}

// NewLoadStep creates the ingest step.
func NewLoadStep(source RawSource) *LoadStep {
	return &LoadStep{source: source}
}

func (s *LoadStep) ID() string   { return "load" }
func (s *LoadStep) Name() string { return "Load raw records" }

func (s *LoadStep) Run(ctx context.Context, state *State) error {
	raw, err := s.source.Load(ctx)
	if err != nil {
		return err
	}
	state.Raw = raw
	return nil
}

// NormalizeStep coerces every raw stream into canonical records. Entity
// normalization is mutually independent, so the streams run in parallel
// with fail-fast semantics.
type NormalizeStep struct {
	normalizer *normalize.Normalizer
	metrics    *Metrics
}

// NewNormalizeStep creates the normalization step.
func NewNormalizeStep(normalizer *normalize.Normalizer, metrics *Metrics) *NormalizeStep {
	return &NormalizeStep{normalizer: normalizer, metrics: metrics}
}

func (s *NormalizeStep) ID() string   { return "normalize" }
func (s *NormalizeStep) Name() string { return "Normalize raw records" }

func (s *NormalizeStep) Run(ctx context.Context, state *State) error {
	g, gctx := errgroup.WithContext(ctx)
	stats := make([]normalize.Stats, 0, len(domain.AllEntityTypes))
	statCh := make(chan normalize.Stats, len(domain.AllEntityTypes))

	g.Go(func() error {
		var st normalize.Stats
		state.Customers, st = s.normalizer.Customers(gctx, state.Raw[domain.EntityCustomer])
		statCh <- st
		return nil
	})
	g.Go(func() error {
		var st normalize.Stats
		state.Orders, st = s.normalizer.Orders(gctx, state.Raw[domain.EntityOrder])
		statCh <- st
		return nil
	})
	g.Go(func() error {
		var st normalize.Stats
		state.Products, st = s.normalizer.Products(gctx, state.Raw[domain.EntityProduct])
		statCh <- st
		return nil
	})
	g.Go(func() error {
		var st normalize.Stats
		state.Sellers, st = s.normalizer.Sellers(gctx, state.Raw[domain.EntitySeller])
		statCh <- st
		return nil
	})
	g.Go(func() error {
		var st normalize.Stats
		state.CategoryTranslations, st = s.normalizer.CategoryTranslations(gctx, state.Raw[domain.EntityCategoryTranslation])
		statCh <- st
		return nil
	})
	g.Go(func() error {
		var st normalize.Stats
		state.Geolocations, st = s.normalizer.Geolocations(gctx, state.Raw[domain.EntityGeolocation])
		statCh <- st
		return nil
	})
	g.Go(func() error {
		var st normalize.Stats
		state.OrderItems, st = s.normalizer.OrderItems(gctx, state.Raw[domain.EntityOrderItem])
		statCh <- st
		return nil
	})
	g.Go(func() error {
		var st normalize.Stats
		state.Payments, st = s.normalizer.Payments(gctx, state.Raw[domain.EntityPayment])
		statCh <- st
		return nil
	})
	g.Go(func() error {
		var st normalize.Stats
		state.Reviews, st = s.normalizer.Reviews(gctx, state.Raw[domain.EntityReview])
		statCh <- st
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	close(statCh)
	for st := range statCh {
		stats = append(stats, st)
		if s.metrics != nil {
			s.metrics.ObserveNormalization(st)
		}
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Entity < stats[j].Entity
	})
	state.Stats = stats
	return nil
}

// DedupStep collapses duplicate geolocation and review rows.
type DedupStep struct {
	logger *slog.Logger
}

// NewDedupStep creates the deduplication step.
func NewDedupStep(logger *slog.Logger) *DedupStep {
	return &DedupStep{logger: logger}
}

func (s *DedupStep) ID() string   { return "dedup" }
func (s *DedupStep) Name() string { return "Deduplicate records" }

func (s *DedupStep) Run(ctx context.Context, state *State) error {
	state.Geolocations = dedup.Geolocations(ctx, s.logger, state.Geolocations)
	state.Reviews = dedup.Reviews(ctx, s.logger, state.Reviews)
	return nil
}

// PublishStep builds the immutable canonical snapshot and publishes it.
// This is the barrier between the load and analytics phases: nothing
// downstream ever reads load-phase state directly.
type PublishStep struct {
	logger   *slog.Logger
	registry *canonical.Registry
}

// NewPublishStep creates the snapshot publish step.
func NewPublishStep(logger *slog.Logger, registry *canonical.Registry) *PublishStep {
	return &PublishStep{logger: logger, registry: registry}
}

func (s *PublishStep) ID() string   { return "publish" }
func (s *PublishStep) Name() string { return "Publish canonical snapshot" }

func (s *PublishStep) Run(ctx context.Context, state *State) error {
	builder := canonical.NewBuilder(s.logger)
	builder.AddCustomers(state.Customers)
	builder.AddOrders(state.Orders)
	builder.AddProducts(state.Products)
	builder.AddSellers(state.Sellers)
	builder.AddCategoryTranslations(state.CategoryTranslations)
	builder.AddGeolocations(state.Geolocations)
	builder.AddOrderItems(state.OrderItems)
	builder.AddPayments(state.Payments)
	builder.AddReviews(state.Reviews)

	state.Snapshot = builder.Build(ctx)
	s.registry.Publish(state.Snapshot)
	return nil
}

// AggregateStep computes per-dimension metric snapshots.
type AggregateStep struct {
	aggregator *analytics.Aggregator
}

// NewAggregateStep creates the aggregation step.
func NewAggregateStep(aggregator *analytics.Aggregator) *AggregateStep {
	return &AggregateStep{aggregator: aggregator}
}

func (s *AggregateStep) ID() string   { return "aggregate" }
func (s *AggregateStep) Name() string { return "Aggregate metrics" }

func (s *AggregateStep) Run(ctx context.Context, state *State) error {
	snaps, err := s.aggregator.AggregateAll(ctx, state.Snapshot)
	if err != nil {
		return err
	}
	state.Result.Snapshots = snaps
	return nil
}

// TrendStep folds each dimension's snapshots into revenue trend series and
// the seller shipping series.
type TrendStep struct {
	analyzer *analytics.TrendAnalyzer
}

// NewTrendStep creates the trend analysis step.
func NewTrendStep(analyzer *analytics.TrendAnalyzer) *TrendStep {
	return &TrendStep{analyzer: analyzer}
}

func (s *TrendStep) ID() string   { return "trend" }
func (s *TrendStep) Name() string { return "Analyze trends" }

func (s *TrendStep) Run(ctx context.Context, state *State) error {
	trends := make(map[domain.Dimension][]domain.TrendRecord, len(state.Result.Snapshots))
	for dim, snaps := range state.Result.Snapshots {
		trends[dim] = s.analyzer.Analyze(ctx, snaps, analytics.SelectRevenue)
	}
	state.Result.RevenueTrends = trends
	state.Result.ShippingTrends = s.analyzer.Analyze(ctx,
		state.Result.Snapshots[domain.DimensionSeller], analytics.SelectShippingDays)
	return nil
}

// TierStep classifies per-key metric rollups: fixed shipping and review
// tiers for sellers and categories, and batch-relative revenue tiers
// within each dimension.
type TierStep struct {
	thresholds analytics.Thresholds
}

// NewTierStep creates the tier classification step.
func NewTierStep(thresholds analytics.Thresholds) *TierStep {
	thresholds.Normalize()
	return &TierStep{thresholds: thresholds}
}

func (s *TierStep) ID() string   { return "tier" }
func (s *TierStep) Name() string { return "Classify tiers" }

// keyRollup is a per-key reduction across all of the key's periods.
type keyRollup struct {
	key       string
	revenue   float64
	reviewSum float64
	reviewN   int
	shipSum   float64
	shipN     int
}

func (s *TierStep) Run(ctx context.Context, state *State) error {
	var tiers []TierAssignment
	for _, dim := range []domain.Dimension{domain.DimensionCategory, domain.DimensionSeller} {
		rollups := rollupByKey(state.Result.Snapshots[dim])

		// Relative revenue boundaries derive from the whole batch, so the
		// classifier is built before any row is labelled.
		revenues := make([]float64, len(rollups))
		for i, r := range rollups {
			revenues[i] = r.revenue
		}
		relative := analytics.NewRelativeClassifier(revenues, s.thresholds.RelativeHighMultiplier)

		for _, r := range rollups {
			tiers = append(tiers, TierAssignment{
				Dimension: dim,
				Key:       r.key,
				Metric:    "total_revenue",
				Value:     r.revenue,
				Tier:      relative.Classify(r.revenue),
			})
			if r.reviewN > 0 {
				avg := r.reviewSum / float64(r.reviewN)
				tiers = append(tiers, TierAssignment{
					Dimension: dim,
					Key:       r.key,
					Metric:    "avg_review_score",
					Value:     avg,
					Tier:      s.thresholds.ClassifyReview(avg),
				})
			}
			if dim == domain.DimensionSeller && r.shipN > 0 {
				avg := r.shipSum / float64(r.shipN)
				tiers = append(tiers, TierAssignment{
					Dimension: dim,
					Key:       r.key,
					Metric:    "avg_shipping_days",
					Value:     avg,
					Tier:      s.thresholds.ClassifyShipping(avg),
				})
			}
		}
	}
	state.Result.Tiers = tiers
	return nil
}

// rollupByKey reduces a dimension's metric snapshots to one rollup per
// key, ordered by key.
func rollupByKey(snaps []domain.MetricSnapshot) []keyRollup {
	byKey := make(map[string]*keyRollup)
	for _, ms := range snaps {
		r, ok := byKey[ms.Key]
		if !ok {
			r = &keyRollup{key: ms.Key}
			byKey[ms.Key] = r
		}
		r.revenue += ms.TotalRevenue
		if ms.AvgReview != nil {
			r.reviewSum += *ms.AvgReview
			r.reviewN++
		}
		if ms.AvgShipDays != nil {
			r.shipSum += *ms.AvgShipDays
			r.shipN++
		}
	}
	out := make([]keyRollup, 0, len(byKey))
	for _, r := range byKey {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// RFMStep segments customers.
type RFMStep struct {
	calculator *analytics.RFMCalculator
}

// NewRFMStep creates the RFM segmentation step.
func NewRFMStep(calculator *analytics.RFMCalculator) *RFMStep {
	return &RFMStep{calculator: calculator}
}

func (s *RFMStep) ID() string   { return "rfm" }
func (s *RFMStep) Name() string { return "Segment customers (RFM)" }

func (s *RFMStep) Run(ctx context.Context, state *State) error {
	state.Result.RFM = s.calculator.Compute(ctx, state.Snapshot)
	return nil
}

// AlertStep filters trend output into alerts.
type AlertStep struct {
	generator *analytics.AlertGenerator
}

// NewAlertStep creates the alert generation step.
func NewAlertStep(generator *analytics.AlertGenerator) *AlertStep {
	return &AlertStep{generator: generator}
}

func (s *AlertStep) ID() string   { return "alert" }
func (s *AlertStep) Name() string { return "Generate alerts" }

func (s *AlertStep) Run(ctx context.Context, state *State) error {
	var alerts []domain.Alert
	for _, dim := range []domain.Dimension{domain.DimensionCategory, domain.DimensionSeller, domain.DimensionCity} {
		alerts = append(alerts, s.generator.RevenueDrops(ctx, state.Result.RevenueTrends[dim])...)
	}
	alerts = append(alerts, s.generator.SlowShipping(ctx, state.Result.ShippingTrends)...)
	state.Result.Alerts = alerts
	return nil
}
