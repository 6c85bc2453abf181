// Package normalize turns loosely typed raw records into canonical typed
// records. Each entity type has its own transformer. A row is rejected only
// when a required key field is missing; every other anomaly resolves to the
// documented sentinel through the coerce policy.
package normalize

import (
	"context"
	"log/slog"

	"ecomcli/internal/coerce"
	"ecomcli/pkg/contracts/domain"
)

// RejectError reports a raw row dropped for a missing required key field.
// Rejections are absorbed at row level: they are counted and logged, never
// abort the batch.
type RejectError struct {
	Entity domain.EntityType
	Seq    int
	Field  string
}

func (e *RejectError) Error() string {
	return string(e.Entity) + " row rejected: missing required field " + e.Field
}

// Stats summarizes one entity's normalization pass for the load report.
type Stats struct {
	Entity    domain.EntityType `json:"entity"`
	Total     int               `json:"total"`
	Rejected  int               `json:"rejected"`
	Defaulted int               `json:"defaulted_fields"`
}

// Normalizer applies per-entity coercion rules. It is stateless apart from
// its logger; transformers are pure per record.
type Normalizer struct {
	logger *slog.Logger
}

// New creates a Normalizer. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// count adds up defaulted-field flags.
func count(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

// Customer normalizes one raw customer row.
func (n *Normalizer) Customer(raw domain.RawRecord) (domain.Customer, int, error) {
	if !raw.HasField("customer_id") {
		return domain.Customer{}, 0, &RejectError{Entity: domain.EntityCustomer, Seq: raw.Seq, Field: "customer_id"}
	}
	id, _ := coerce.ToText(raw.Field("customer_id"), "", false)
	unique, d1 := coerce.ToText(raw.Field("customer_unique_id"), coerce.Defaults.Text, false)
	zip, d2 := coerce.ToInt(raw.Field("customer_zip_code_prefix"), coerce.Defaults.Int)
	city, d3 := coerce.ToText(raw.Field("customer_city"), coerce.Defaults.Text, true)
	state, d4 := coerce.ToText(raw.Field("customer_state"), coerce.Defaults.Text, true)
	return domain.Customer{
		CustomerID: id,
		UniqueID:   unique,
		ZipPrefix:  zip,
		City:       city,
		State:      state,
	}, count(d1, d2, d3, d4), nil
}

// Order normalizes one raw order row. The purchase timestamp is NOT NULL
// and falls back to the sentinel date; the event timestamps stay nil until
// the event happens.
func (n *Normalizer) Order(raw domain.RawRecord) (domain.Order, int, error) {
	if !raw.HasField("order_id") {
		return domain.Order{}, 0, &RejectError{Entity: domain.EntityOrder, Seq: raw.Seq, Field: "order_id"}
	}
	id, _ := coerce.ToText(raw.Field("order_id"), "", false)
	customerID, d1 := coerce.ToText(raw.Field("customer_id"), coerce.Defaults.Text, false)
	status, d2 := coerce.ToText(raw.Field("order_status"), coerce.Defaults.Text, false)
	purchased, d3 := coerce.ToTime(raw.Field("order_purchase_timestamp"), coerce.Defaults.Date)
	return domain.Order{
		OrderID:             id,
		CustomerID:          customerID,
		Status:              status,
		PurchasedAt:         purchased,
		ApprovedAt:          coerce.ToTimeOptional(raw.Field("order_approved_at")),
		DeliveredCarrierAt:  coerce.ToTimeOptional(raw.Field("order_delivered_carrier_date")),
		DeliveredCustomerAt: coerce.ToTimeOptional(raw.Field("order_delivered_customer_date")),
		EstimatedDeliveryAt: coerce.ToTimeOptional(raw.Field("order_estimated_delivery_date")),
	}, count(d1, d2, d3), nil
}

// Product normalizes one raw product row. Physical measurements reject
// non-positive values so a negative weight and a missing one collapse to
// the same sentinel.
func (n *Normalizer) Product(raw domain.RawRecord) (domain.Product, int, error) {
	if !raw.HasField("product_id") {
		return domain.Product{}, 0, &RejectError{Entity: domain.EntityProduct, Seq: raw.Seq, Field: "product_id"}
	}
	id, _ := coerce.ToText(raw.Field("product_id"), "", false)
	category, d1 := coerce.ToText(raw.Field("product_category_name"), coerce.Defaults.Text, false)
	nameLen, d2 := coerce.ToInt(raw.Field("product_name_length"), coerce.Defaults.Int)
	descLen, d3 := coerce.ToInt(raw.Field("product_description_length"), coerce.Defaults.Int)
	photos, d4 := coerce.ToInt(raw.Field("product_photos_qty"), coerce.Defaults.Int)
	weight, d5 := coerce.ToDecimal(raw.Field("product_weight_g"), coerce.Defaults.Decimal, true)
	length, d6 := coerce.ToDecimal(raw.Field("product_length_cm"), coerce.Defaults.Decimal, true)
	height, d7 := coerce.ToDecimal(raw.Field("product_height_cm"), coerce.Defaults.Decimal, true)
	width, d8 := coerce.ToDecimal(raw.Field("product_width_cm"), coerce.Defaults.Decimal, true)
	return domain.Product{
		ProductID:         id,
		Category:          category,
		NameLength:        nameLen,
		DescriptionLength: descLen,
		PhotosQty:         photos,
		WeightG:           weight,
		LengthCM:          length,
		HeightCM:          height,
		WidthCM:           width,
	}, count(d1, d2, d3, d4, d5, d6, d7, d8), nil
}

// Seller normalizes one raw seller row.
func (n *Normalizer) Seller(raw domain.RawRecord) (domain.Seller, int, error) {
	if !raw.HasField("seller_id") {
		return domain.Seller{}, 0, &RejectError{Entity: domain.EntitySeller, Seq: raw.Seq, Field: "seller_id"}
	}
	id, _ := coerce.ToText(raw.Field("seller_id"), "", false)
	zip, d1 := coerce.ToInt(raw.Field("seller_zip_code_prefix"), coerce.Defaults.Int)
	city, d2 := coerce.ToText(raw.Field("seller_city"), coerce.Defaults.Text, true)
	state, d3 := coerce.ToText(raw.Field("seller_state"), coerce.Defaults.Text, true)
	return domain.Seller{
		SellerID:  id,
		ZipPrefix: zip,
		City:      city,
		State:     state,
	}, count(d1, d2, d3), nil
}

// CategoryTranslation normalizes one category translation row. The source
// category name is the primary key of the translation table.
func (n *Normalizer) CategoryTranslation(raw domain.RawRecord) (domain.CategoryTranslation, int, error) {
	if !raw.HasField("product_category_name") {
		return domain.CategoryTranslation{}, 0, &RejectError{Entity: domain.EntityCategoryTranslation, Seq: raw.Seq, Field: "product_category_name"}
	}
	category, _ := coerce.ToText(raw.Field("product_category_name"), "", false)
	english, d1 := coerce.ToText(raw.Field("product_category_name_english"), coerce.Defaults.Text, false)
	return domain.CategoryTranslation{Category: category, English: english}, count(d1), nil
}

// Geolocation normalizes one raw geolocation row into a semi-canonical row;
// averaging and deduplication happen downstream in the dedup package.
func (n *Normalizer) Geolocation(raw domain.RawRecord) (domain.Geolocation, int, error) {
	if !raw.HasField("geolocation_zip_code_prefix") {
		return domain.Geolocation{}, 0, &RejectError{Entity: domain.EntityGeolocation, Seq: raw.Seq, Field: "geolocation_zip_code_prefix"}
	}
	zip, _ := coerce.ToInt(raw.Field("geolocation_zip_code_prefix"), coerce.Defaults.Int)
	lat, d1 := coerce.ToDecimal(raw.Field("geolocation_lat"), 0, false)
	lng, d2 := coerce.ToDecimal(raw.Field("geolocation_lng"), 0, false)
	city, d3 := coerce.ToText(raw.Field("geolocation_city"), coerce.Defaults.Text, true)
	state, d4 := coerce.ToText(raw.Field("geolocation_state"), coerce.Defaults.Text, true)
	return domain.Geolocation{
		ZipPrefix: zip,
		Latitude:  lat,
		Longitude: lng,
		City:      city,
		State:     state,
	}, count(d1, d2, d3, d4), nil
}

// OrderItem normalizes one raw order item row. Both parts of the composite
// key are hard existence checks.
func (n *Normalizer) OrderItem(raw domain.RawRecord) (domain.OrderItem, int, error) {
	if !raw.HasField("order_id") {
		return domain.OrderItem{}, 0, &RejectError{Entity: domain.EntityOrderItem, Seq: raw.Seq, Field: "order_id"}
	}
	if !raw.HasField("order_item_id") {
		return domain.OrderItem{}, 0, &RejectError{Entity: domain.EntityOrderItem, Seq: raw.Seq, Field: "order_item_id"}
	}
	orderID, _ := coerce.ToText(raw.Field("order_id"), "", false)
	itemID, _ := coerce.ToInt(raw.Field("order_item_id"), coerce.Defaults.Int)
	productID, d1 := coerce.ToText(raw.Field("product_id"), coerce.Defaults.Text, false)
	sellerID, d2 := coerce.ToText(raw.Field("seller_id"), coerce.Defaults.Text, false)
	price, d3 := coerce.ToDecimal(raw.Field("price"), coerce.Defaults.Decimal, true)
	freight, d4 := coerce.ToDecimal(raw.Field("freight_value"), coerce.Defaults.Decimal, false)
	return domain.OrderItem{
		OrderID:         orderID,
		ItemID:          itemID,
		ProductID:       productID,
		SellerID:        sellerID,
		ShippingLimitAt: coerce.ToTimeOptional(raw.Field("shipping_limit_date")),
		Price:           price,
		FreightValue:    freight,
	}, count(d1, d2, d3, d4), nil
}

// Payment normalizes one raw payment row. Both parts of the composite key
// are hard existence checks.
func (n *Normalizer) Payment(raw domain.RawRecord) (domain.Payment, int, error) {
	if !raw.HasField("order_id") {
		return domain.Payment{}, 0, &RejectError{Entity: domain.EntityPayment, Seq: raw.Seq, Field: "order_id"}
	}
	if !raw.HasField("payment_sequential") {
		return domain.Payment{}, 0, &RejectError{Entity: domain.EntityPayment, Seq: raw.Seq, Field: "payment_sequential"}
	}
	orderID, _ := coerce.ToText(raw.Field("order_id"), "", false)
	sequential, _ := coerce.ToInt(raw.Field("payment_sequential"), coerce.Defaults.Int)
	payType, d1 := coerce.ToText(raw.Field("payment_type"), coerce.Defaults.Text, false)
	installments, d2 := coerce.ToInt(raw.Field("payment_installments"), coerce.Defaults.Int)
	value, d3 := coerce.ToDecimal(raw.Field("payment_value"), coerce.Defaults.Decimal, false)
	return domain.Payment{
		OrderID:      orderID,
		Sequential:   sequential,
		Type:         payType,
		Installments: installments,
		Value:        value,
	}, count(d1, d2, d3), nil
}

// Review normalizes one raw review row. The review id is required so
// downstream deduplication has a grouping key.
func (n *Normalizer) Review(raw domain.RawRecord) (domain.Review, int, error) {
	if !raw.HasField("review_id") {
		return domain.Review{}, 0, &RejectError{Entity: domain.EntityReview, Seq: raw.Seq, Field: "review_id"}
	}
	id, _ := coerce.ToText(raw.Field("review_id"), "", false)
	orderID, d1 := coerce.ToText(raw.Field("order_id"), coerce.Defaults.Text, false)
	score, d2 := coerce.ToInt(raw.Field("review_score"), coerce.Defaults.Int)
	title, d3 := coerce.ToText(raw.Field("review_comment_title"), coerce.Defaults.Text, false)
	message, d4 := coerce.ToText(raw.Field("review_comment_message"), coerce.Defaults.Text, false)
	created, d5 := coerce.ToTime(raw.Field("review_creation_date"), coerce.Defaults.Date)
	return domain.Review{
		ReviewID:   id,
		OrderID:    orderID,
		Score:      score,
		Title:      title,
		Message:    message,
		CreatedAt:  created,
		AnsweredAt: coerce.ToTimeOptional(raw.Field("review_answer_timestamp")),
		Seq:        raw.Seq,
	}, count(d1, d2, d3, d4, d5), nil
}

// run is the shared batch loop: it applies fn to every row, counts
// rejections and defaulted fields, and logs rejects at debug level.
func run[T any](ctx context.Context, n *Normalizer, entity domain.EntityType, rows []domain.RawRecord,
	fn func(domain.RawRecord) (T, int, error)) ([]T, Stats) {

	stats := Stats{Entity: entity, Total: len(rows)}
	out := make([]T, 0, len(rows))
	for _, raw := range rows {
		rec, defaulted, err := fn(raw)
		if err != nil {
			stats.Rejected++
			n.logger.DebugContext(ctx, "raw row rejected",
				slog.String("entity", string(entity)),
				slog.Int("seq", raw.Seq),
				slog.String("error", err.Error()),
			)
			continue
		}
		stats.Defaulted += defaulted
		out = append(out, rec)
	}
	if stats.Rejected > 0 {
		n.logger.WarnContext(ctx, "rows rejected during normalization",
			slog.String("entity", string(entity)),
			slog.Int("rejected", stats.Rejected),
			slog.Int("total", stats.Total),
		)
	}
	return out, stats
}

// Customers normalizes a batch of raw customer rows.
func (n *Normalizer) Customers(ctx context.Context, rows []domain.RawRecord) ([]domain.Customer, Stats) {
	return run(ctx, n, domain.EntityCustomer, rows, n.Customer)
}

// Orders normalizes a batch of raw order rows.
func (n *Normalizer) Orders(ctx context.Context, rows []domain.RawRecord) ([]domain.Order, Stats) {
	return run(ctx, n, domain.EntityOrder, rows, n.Order)
}

// Products normalizes a batch of raw product rows.
func (n *Normalizer) Products(ctx context.Context, rows []domain.RawRecord) ([]domain.Product, Stats) {
	return run(ctx, n, domain.EntityProduct, rows, n.Product)
}

// Sellers normalizes a batch of raw seller rows.
func (n *Normalizer) Sellers(ctx context.Context, rows []domain.RawRecord) ([]domain.Seller, Stats) {
	return run(ctx, n, domain.EntitySeller, rows, n.Seller)
}

// CategoryTranslations normalizes a batch of raw category translation rows.
func (n *Normalizer) CategoryTranslations(ctx context.Context, rows []domain.RawRecord) ([]domain.CategoryTranslation, Stats) {
	return run(ctx, n, domain.EntityCategoryTranslation, rows, n.CategoryTranslation)
}

// Geolocations normalizes a batch of raw geolocation rows.
func (n *Normalizer) Geolocations(ctx context.Context, rows []domain.RawRecord) ([]domain.Geolocation, Stats) {
	return run(ctx, n, domain.EntityGeolocation, rows, n.Geolocation)
}

// OrderItems normalizes a batch of raw order item rows.
func (n *Normalizer) OrderItems(ctx context.Context, rows []domain.RawRecord) ([]domain.OrderItem, Stats) {
	return run(ctx, n, domain.EntityOrderItem, rows, n.OrderItem)
}

// Payments normalizes a batch of raw payment rows.
func (n *Normalizer) Payments(ctx context.Context, rows []domain.RawRecord) ([]domain.Payment, Stats) {
	return run(ctx, n, domain.EntityPayment, rows, n.Payment)
}

// Reviews normalizes a batch of raw review rows.
func (n *Normalizer) Reviews(ctx context.Context, rows []domain.RawRecord) ([]domain.Review, Stats) {
	return run(ctx, n, domain.EntityReview, rows, n.Review)
}
