package shopify

import (
	"testing"

	"github.com/maltedev/shopify-product-importer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct() *models.Product {
	return &models.Product{
		Title:       "Classic Tee",
		Description: "Soft cotton.",
		ImageURL:    "https://shop.example.com/media/tee.jpg",
		Handle:      "classic-tee",
		Variants: []models.Variant{
			{Label: "S", Price: "19.95"},
			{Label: "M", Price: "21.50"},
			{Label: "L", Price: "23.00"},
		},
		SourceURL: "https://shop.example.com/products/classic-tee",
	}
}

func TestBuildRows(t *testing.T) {
	product := testProduct()

	rows := BuildRows(product)
	require.Len(t, rows, 3)

	assert.Equal(t, product.ImageURL, rows[0].ImageSrc)
	assert.Empty(t, rows[1].ImageSrc)
	assert.Empty(t, rows[2].ImageSrc)

	for i, row := range rows {
		assert.Equal(t, "classic-tee", row.Handle)
		assert.Equal(t, "Classic Tee", row.Title)
		assert.Equal(t, "Soft cotton.", row.Body)
		assert.Equal(t, product.SourceURL, row.URL)
		assert.Equal(t, "Classic Tee", row.ImageAltText)
		assert.Equal(t, product.Variants[i].Label, row.Option1Value)
		assert.Equal(t, product.Variants[i].Price, row.VariantPrice)

		assert.Equal(t, "imported", row.Tags)
		assert.Equal(t, "TRUE", row.Published)
		assert.Equal(t, "Size", row.Option1Name)
		assert.Equal(t, 100, row.VariantInventoryQty)
		assert.Equal(t, "deny", row.VariantInventoryPolicy)
		assert.Equal(t, "manual", row.VariantFulfillmentService)
		assert.Equal(t, "TRUE", row.VariantRequiresShipping)
	}
}

func TestBuildRowsWithoutImage(t *testing.T) {
	product := testProduct()
	product.ImageURL = ""

	rows := BuildRows(product)
	for _, row := range rows {
		assert.Empty(t, row.ImageSrc)
	}
}

func TestRecordFollowsColumns(t *testing.T) {
	rows := BuildRows(testProduct())
	record := Record(rows[0])

	require.Len(t, record, len(Columns))
	assert.Equal(t, "classic-tee", record[0])
	assert.Equal(t, "S", record[8])
	assert.Equal(t, "19.95", record[9])
	assert.Equal(t, "100", record[10])
	assert.Equal(t, "https://shop.example.com/media/tee.jpg", record[14])
	assert.Equal(t, "https://shop.example.com/products/classic-tee", record[16])
}

func TestColumns(t *testing.T) {
	assert.Equal(t, []string{
		"Handle", "Title", "Body (HTML)", "Vendor", "Type", "Tags", "Published",
		"Option1 Name", "Option1 Value", "Variant Price", "Variant Inventory Qty",
		"Variant Inventory Policy", "Variant Fulfillment Service",
		"Variant Requires Shipping", "Image Src", "Image Alt Text", "URL",
	}, Columns)
}
