package domain

import (
	"fmt"
	"time"
)

// Sentinel values used to populate NOT-NULL canonical fields when the raw
// value is missing or fails coercion. These are part of the schema contract
// exposed to external reporting tools and must not change.
const (
	SentinelInt     int64   = -1
	SentinelDecimal float64 = -1
	SentinelText            = "N/A"
)

// SentinelDate is the fallback for required timestamps that are missing or
// unparseable. Optional timestamps stay nil instead.
var SentinelDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Customer is the canonical customer dimension record.
type Customer struct {
	CustomerID string `json:"customer_id" csv:"customer_id" validate:"required"`
	UniqueID   string `json:"customer_unique_id" csv:"customer_unique_id"`
	ZipPrefix  int64  `json:"customer_zip_code_prefix" csv:"customer_zip_code_prefix"`
	City       string `json:"customer_city" csv:"customer_city"`
	State      string `json:"customer_state" csv:"customer_state"`
}

// Order is the canonical order record. PurchasedAt is NOT NULL (sentinel
// fallback); the remaining timestamps are optional and stay nil until the
// corresponding event happens.
type Order struct {
	OrderID             string     `json:"order_id" csv:"order_id" validate:"required"`
	CustomerID          string     `json:"customer_id" csv:"customer_id"`
	Status              string     `json:"order_status" csv:"order_status"`
	PurchasedAt         time.Time  `json:"order_purchase_timestamp" csv:"order_purchase_timestamp"`
	ApprovedAt          *time.Time `json:"order_approved_at,omitempty" csv:"order_approved_at"`
	DeliveredCarrierAt  *time.Time `json:"order_delivered_carrier_date,omitempty" csv:"order_delivered_carrier_date"`
	DeliveredCustomerAt *time.Time `json:"order_delivered_customer_date,omitempty" csv:"order_delivered_customer_date"`
	EstimatedDeliveryAt *time.Time `json:"order_estimated_delivery_date,omitempty" csv:"order_estimated_delivery_date"`
}

// ShippingDays returns the whole-day difference between purchase and
// delivery to the customer, or nil when the order has not been delivered or
// the purchase timestamp fell back to the sentinel.
func (o Order) ShippingDays() *int {
	if o.DeliveredCustomerAt == nil || o.PurchasedAt.Equal(SentinelDate) {
		return nil
	}
	days := int(o.DeliveredCustomerAt.Sub(o.PurchasedAt).Hours() / 24)
	return &days
}

// Product is the canonical product dimension record. Physical measurements
// that are missing or non-positive collapse to the -1 sentinel.
type Product struct {
	ProductID         string  `json:"product_id" csv:"product_id" validate:"required"`
	Category          string  `json:"product_category_name" csv:"product_category_name"`
	NameLength        int64   `json:"product_name_length" csv:"product_name_length"`
	DescriptionLength int64   `json:"product_description_length" csv:"product_description_length"`
	PhotosQty         int64   `json:"product_photos_qty" csv:"product_photos_qty"`
	WeightG           float64 `json:"product_weight_g" csv:"product_weight_g"`
	LengthCM          float64 `json:"product_length_cm" csv:"product_length_cm"`
	HeightCM          float64 `json:"product_height_cm" csv:"product_height_cm"`
	WidthCM           float64 `json:"product_width_cm" csv:"product_width_cm"`
}

// Seller is the canonical seller dimension record.
type Seller struct {
	SellerID  string `json:"seller_id" csv:"seller_id" validate:"required"`
	ZipPrefix int64  `json:"seller_zip_code_prefix" csv:"seller_zip_code_prefix"`
	City      string `json:"seller_city" csv:"seller_city"`
	State     string `json:"seller_state" csv:"seller_state"`
}

// CategoryTranslation maps a source-language category name to English.
type CategoryTranslation struct {
	Category string `json:"product_category_name" csv:"product_category_name" validate:"required"`
	English  string `json:"product_category_name_english" csv:"product_category_name_english"`
}

// Geolocation is one deduplicated geolocation row: per zip prefix the
// latitude/longitude are the mean across all raw rows, rounded to six
// decimal places.
type Geolocation struct {
	ZipPrefix int64   `json:"geolocation_zip_code_prefix" csv:"geolocation_zip_code_prefix"`
	Latitude  float64 `json:"geolocation_lat" csv:"geolocation_lat"`
	Longitude float64 `json:"geolocation_lng" csv:"geolocation_lng"`
	City      string  `json:"geolocation_city" csv:"geolocation_city"`
	State     string  `json:"geolocation_state" csv:"geolocation_state"`
}

// GeolocationKey identifies a deduplicated geolocation row.
type GeolocationKey struct {
	ZipPrefix int64
	Latitude  float64
	Longitude float64
}

// Key returns the composite identity of the geolocation row.
func (g Geolocation) Key() GeolocationKey {
	return GeolocationKey{ZipPrefix: g.ZipPrefix, Latitude: g.Latitude, Longitude: g.Longitude}
}

// OrderItem is one line of an order. Price and freight that are missing or
// non-positive collapse to the -1 sentinel.
type OrderItem struct {
	OrderID         string     `json:"order_id" csv:"order_id" validate:"required"`
	ItemID          int64      `json:"order_item_id" csv:"order_item_id" validate:"required,min=1"`
	ProductID       string     `json:"product_id" csv:"product_id"`
	SellerID        string     `json:"seller_id" csv:"seller_id"`
	ShippingLimitAt *time.Time `json:"shipping_limit_date,omitempty" csv:"shipping_limit_date"`
	Price           float64    `json:"price" csv:"price"`
	FreightValue    float64    `json:"freight_value" csv:"freight_value"`
}

// OrderItemKey is the composite primary key of an order item.
type OrderItemKey struct {
	OrderID string
	ItemID  int64
}

// Key returns the composite identity of the order item.
func (oi OrderItem) Key() OrderItemKey {
	return OrderItemKey{OrderID: oi.OrderID, ItemID: oi.ItemID}
}

func (k OrderItemKey) String() string {
	return fmt.Sprintf("%s/%d", k.OrderID, k.ItemID)
}

// Payment is one payment leg of an order.
type Payment struct {
	OrderID      string  `json:"order_id" csv:"order_id" validate:"required"`
	Sequential   int64   `json:"payment_sequential" csv:"payment_sequential" validate:"required,min=1"`
	Type         string  `json:"payment_type" csv:"payment_type"`
	Installments int64   `json:"payment_installments" csv:"payment_installments"`
	Value        float64 `json:"payment_value" csv:"payment_value"`
}

// PaymentKey is the composite primary key of a payment.
type PaymentKey struct {
	OrderID    string
	Sequential int64
}

// Key returns the composite identity of the payment.
func (p Payment) Key() PaymentKey {
	return PaymentKey{OrderID: p.OrderID, Sequential: p.Sequential}
}

func (k PaymentKey) String() string {
	return fmt.Sprintf("%s/%d", k.OrderID, k.Sequential)
}

// Review is a canonical customer review. Duplicate submissions for the same
// review id are collapsed by deduplication, keeping the latest answer.
type Review struct {
	ReviewID   string     `json:"review_id" csv:"review_id" validate:"required"`
	OrderID    string     `json:"order_id" csv:"order_id"`
	Score      int64      `json:"review_score" csv:"review_score"`
	Title      string     `json:"review_comment_title" csv:"review_comment_title"`
	Message    string     `json:"review_comment_message" csv:"review_comment_message"`
	CreatedAt  time.Time  `json:"review_creation_date" csv:"review_creation_date"`
	AnsweredAt *time.Time `json:"review_answer_timestamp,omitempty" csv:"review_answer_timestamp"`

	// Seq preserves the raw row position for diagnostics. Deduplication
	// never consults it; the survivor must not depend on input order.
	Seq int `json:"-" csv:"-"`
}

// HasScore reports whether the review carries a usable score (sentinel
// scores are excluded from averages, not treated as zero).
func (r Review) HasScore() bool {
	return r.Score >= 0
}
