package domain

// EntityType discriminates the kind of business entity a raw record carries.
type EntityType string

const (
	EntityCustomer            EntityType = "customer"
	EntityOrder               EntityType = "order"
	EntityProduct             EntityType = "product"
	EntitySeller              EntityType = "seller"
	EntityCategoryTranslation EntityType = "category_translation"
	EntityGeolocation         EntityType = "geolocation"
	EntityOrderItem           EntityType = "order_item"
	EntityPayment             EntityType = "payment"
	EntityReview              EntityType = "review"
)

// AllEntityTypes lists every entity type in load order. Dimension entities
// come first purely for readability; normalization has no cross-entity
// dependency and may run in any order.
var AllEntityTypes = []EntityType{
	EntityCustomer,
	EntityOrder,
	EntityProduct,
	EntitySeller,
	EntityCategoryTranslation,
	EntityGeolocation,
	EntityOrderItem,
	EntityPayment,
	EntityReview,
}

// RawRecord is one loosely typed row delivered by the raw record source.
// Field values are untyped strings; a missing field and an empty string are
// equivalent. Seq is the position of the row within its source stream,
// carried through for diagnostics.
type RawRecord struct {
	Entity EntityType        `json:"entity"`
	Seq    int               `json:"seq"`
	Fields map[string]string `json:"fields"`
}

// Field returns the named field value, or "" when absent.
func (r RawRecord) Field(name string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[name]
}

// HasField reports whether the named field is present and non-empty.
func (r RawRecord) HasField(name string) bool {
	return r.Field(name) != ""
}
