package parser

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeText collapses every whitespace run into a single space and trims the result.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Handle derives the Shopify handle for a product title. Different titles may
// produce the same handle; callers do not deduplicate.
func Handle(title string) string {
	handle := nonAlphanumeric.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(handle, "-")
}
