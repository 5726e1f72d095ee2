package parser

import (
	"github.com/maltedev/shopify-product-importer/internal/models"
)

// Extractor turns the markup of one product page into a Product.
// Implementations are site specific; missing elements fall back to defaults
// instead of failing.
type Extractor interface {
	Name() string
	Extract(html string, sourceURL string) (*models.Product, error)
}
