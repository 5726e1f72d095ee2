package parser

import (
	"regexp"
	"strings"

	"github.com/maltedev/shopify-product-importer/internal/models"
)

var euroPricePattern = regexp.MustCompile(`€\s*(\d[\d.,]*)`)

// ParseVariants turns option texts such as "M €19,95" into size/price variants.
// Commas are always read as decimal separators, so "1.234,56" is not handled.
// Only the first price in a fragment is used. The result is never empty.
func ParseVariants(optionTexts []string) []models.Variant {
	if len(optionTexts) == 0 {
		return []models.Variant{models.DefaultVariant()}
	}

	variants := make([]models.Variant, 0, len(optionTexts))
	for _, text := range optionTexts {
		variants = append(variants, parseVariant(text))
	}

	return variants
}

func parseVariant(text string) models.Variant {
	loc := euroPricePattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return models.Variant{Label: NormalizeText(text), Price: models.DefaultVariantPrice}
	}

	price := strings.ReplaceAll(text[loc[2]:loc[3]], ",", ".")

	// A fragment holding only a price yields an empty label.
	label := NormalizeText(text[:loc[0]] + " " + text[loc[1]:])

	return models.Variant{Label: label, Price: price}
}
