package shopify

import (
	"strconv"

	"github.com/maltedev/shopify-product-importer/internal/models"
)

const (
	DefaultVendor             = ""
	DefaultType               = ""
	DefaultTags               = "imported"
	DefaultPublished          = "TRUE"
	DefaultOptionName         = "Size"
	DefaultInventoryQty       = 100
	DefaultInventoryPolicy    = "deny"
	DefaultFulfillmentService = "manual"
	DefaultRequiresShipping   = "TRUE"
)

// Columns is the header of every generated import file, in output order.
var Columns = []string{
	"Handle",
	"Title",
	"Body (HTML)",
	"Vendor",
	"Type",
	"Tags",
	"Published",
	"Option1 Name",
	"Option1 Value",
	"Variant Price",
	"Variant Inventory Qty",
	"Variant Inventory Policy",
	"Variant Fulfillment Service",
	"Variant Requires Shipping",
	"Image Src",
	"Image Alt Text",
	"URL",
}

// BuildRows emits one import row per variant. Product level fields that
// Shopify reads from the first row only (the image) are left empty on the rest.
func BuildRows(product *models.Product) []models.ImportRow {
	rows := make([]models.ImportRow, 0, len(product.Variants))

	for i, variant := range product.Variants {
		row := models.ImportRow{
			Handle:                    product.Handle,
			Title:                     product.Title,
			Body:                      product.Description,
			Vendor:                    DefaultVendor,
			Type:                      DefaultType,
			Tags:                      DefaultTags,
			Published:                 DefaultPublished,
			Option1Name:               DefaultOptionName,
			Option1Value:              variant.Label,
			VariantPrice:              variant.Price,
			VariantInventoryQty:       DefaultInventoryQty,
			VariantInventoryPolicy:    DefaultInventoryPolicy,
			VariantFulfillmentService: DefaultFulfillmentService,
			VariantRequiresShipping:   DefaultRequiresShipping,
			ImageAltText:              product.Title,
			URL:                       product.SourceURL,
		}
		if i == 0 {
			row.ImageSrc = product.ImageURL
		}
		rows = append(rows, row)
	}

	return rows
}

// Record flattens a row in Columns order.
func Record(row models.ImportRow) []string {
	return []string{
		row.Handle,
		row.Title,
		row.Body,
		row.Vendor,
		row.Type,
		row.Tags,
		row.Published,
		row.Option1Name,
		row.Option1Value,
		row.VariantPrice,
		strconv.Itoa(row.VariantInventoryQty),
		row.VariantInventoryPolicy,
		row.VariantFulfillmentService,
		row.VariantRequiresShipping,
		row.ImageSrc,
		row.ImageAltText,
		row.URL,
	}
}

func fromRecord(record []string) (models.ImportRow, error) {
	qty, err := strconv.Atoi(record[10])
	if err != nil {
		return models.ImportRow{}, err
	}

	return models.ImportRow{
		Handle:                    record[0],
		Title:                     record[1],
		Body:                      record[2],
		Vendor:                    record[3],
		Type:                      record[4],
		Tags:                      record[5],
		Published:                 record[6],
		Option1Name:               record[7],
		Option1Value:              record[8],
		VariantPrice:              record[9],
		VariantInventoryQty:       qty,
		VariantInventoryPolicy:    record[11],
		VariantFulfillmentService: record[12],
		VariantRequiresShipping:   record[13],
		ImageSrc:                  record[14],
		ImageAltText:              record[15],
		URL:                       record[16],
	}, nil
}
