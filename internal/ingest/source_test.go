package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomcli/pkg/contracts/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDetectEntity(t *testing.T) {
	tests := []struct {
		name   string
		entity domain.EntityType
		ok     bool
	}{
		{name: "olist_customers_dataset.csv", entity: domain.EntityCustomer, ok: true},
		{name: "olist_orders_dataset.csv", entity: domain.EntityOrder, ok: true},
		{name: "olist_order_items_dataset.csv", entity: domain.EntityOrderItem, ok: true},
		{name: "olist_order_payments_dataset.csv", entity: domain.EntityPayment, ok: true},
		{name: "olist_order_reviews_dataset.csv", entity: domain.EntityReview, ok: true},
		{name: "olist_products_dataset.csv", entity: domain.EntityProduct, ok: true},
		{name: "olist_sellers_dataset.csv", entity: domain.EntitySeller, ok: true},
		{name: "olist_geolocation_dataset.csv", entity: domain.EntityGeolocation, ok: true},
		{name: "product_category_name_translation.csv", entity: domain.EntityCategoryTranslation, ok: true},
		{name: "SOMETHING_ELSE.csv", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entity, ok := DetectEntity(tt.name)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.entity, entity)
			}
		})
	}
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "olist_customers_dataset.csv",
		"customer_id,customer_unique_id,customer_zip_code_prefix,customer_city,customer_state\n"+
			"c1,u1,01310,sao paulo,SP\n"+
			"c2,u2,20040,rio de janeiro,RJ\n")
	writeFile(t, dir, "olist_sellers_dataset.csv",
		"seller_id,seller_zip_code_prefix,seller_city,seller_state\n"+
			"s1,13023,campinas,SP\n")

	out, err := New(nil, dir).Load(context.Background())
	require.NoError(t, err)

	customers := out[domain.EntityCustomer]
	require.Len(t, customers, 2)
	assert.Equal(t, "c1", customers[0].Field("customer_id"))
	assert.Equal(t, "sao paulo", customers[0].Field("customer_city"))
	assert.Equal(t, 0, customers[0].Seq)
	assert.Equal(t, 1, customers[1].Seq)

	require.Len(t, out[domain.EntitySeller], 1)
}

func TestLoadRaggedRowKeepsFieldsAbsent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "olist_customers_dataset.csv",
		"customer_id,customer_unique_id,customer_city\n"+
			"c1,u1\n")

	out, err := New(nil, dir).Load(context.Background())
	require.NoError(t, err)

	rows := out[domain.EntityCustomer]
	require.Len(t, rows, 1)
	assert.True(t, rows[0].HasField("customer_unique_id"))
	// The short row has no city cell; the field is treated as missing.
	assert.False(t, rows[0].HasField("customer_city"))
}

func TestLoadSkipsUnrecognizedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "olist_customers_dataset.csv",
		"customer_id\nc1\n")
	writeFile(t, dir, "README_notes.csv",
		"whatever\nvalue\n")

	out, err := New(nil, dir).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Len(t, out[domain.EntityCustomer], 1)
}

func TestLoadAppendsAcrossFilesOfSameEntity(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "olist_customers_dataset_part1.csv",
		"customer_id\nc1\n")
	writeFile(t, dir, "olist_customers_dataset_part2.csv",
		"customer_id\nc2\nc3\n")

	out, err := New(nil, dir).Load(context.Background())
	require.NoError(t, err)

	rows := out[domain.EntityCustomer]
	require.Len(t, rows, 3)
	// Sequence numbers continue across files.
	assert.Equal(t, 0, rows[0].Seq)
	assert.Equal(t, 2, rows[2].Seq)
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := New(nil, filepath.Join(t.TempDir(), "nope")).Load(context.Background())
	assert.Error(t, err)
}

func TestLoadEmptyDirectory(t *testing.T) {
	_, err := New(nil, t.TempDir()).Load(context.Background())
	assert.Error(t, err)
}

func TestLoadEmptyFileAborts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "olist_customers_dataset.csv", "")

	_, err := New(nil, dir).Load(context.Background())
	assert.Error(t, err)
}

func TestLoadCancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "olist_customers_dataset.csv", "customer_id\nc1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil, dir).Load(ctx)
	assert.Error(t, err)
}
