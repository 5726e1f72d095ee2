package parser

import (
	"testing"

	"github.com/maltedev/shopify-product-importer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `<!DOCTYPE html>
<html>
<body>
	<h1>  Classic
		Tee </h1>
	<h1>Related products</h1>
	<div class="product-tab-content">
		<p>Soft cotton.</p>
		<p>Machine   washable.</p>
	</div>
	<img id="main-product-image" src="/media/tee.jpg" alt="">
	<form>
		<select name="size">
			<option>S €19,95</option>
			<option>M €21,50</option>
		</select>
		<select name="extra">
			<option>Gift wrap</option>
		</select>
	</form>
</body>
</html>`

func TestShopParserExtract(t *testing.T) {
	parser := NewShopParser(DefaultProfile("https://shop.example.com"))

	product, err := parser.Extract(productPage, "https://shop.example.com/products/classic-tee")
	require.NoError(t, err)

	assert.Equal(t, "Classic Tee", product.Title)
	assert.Equal(t, "classic-tee", product.Handle)
	assert.Equal(t, "Soft cotton. Machine washable.", product.Description)
	assert.Equal(t, "https://shop.example.com/media/tee.jpg", product.ImageURL)
	assert.Equal(t, "https://shop.example.com/products/classic-tee", product.SourceURL)
	assert.Equal(t, []models.Variant{
		{Label: "S", Price: "19.95"},
		{Label: "M", Price: "21.50"},
		{Label: "Gift wrap", Price: "0.00"},
	}, product.Variants)
}

func TestShopParserFallbacks(t *testing.T) {
	parser := NewShopParser(DefaultProfile(""))

	product, err := parser.Extract(`<html><body><p>nothing to see</p></body></html>`, "https://shop.example.com/p/1")
	require.NoError(t, err)

	assert.Equal(t, "Unknown Product", product.Title)
	assert.Equal(t, "unknown-product", product.Handle)
	assert.Empty(t, product.Description)
	assert.Empty(t, product.ImageURL)
	assert.Equal(t, []models.Variant{{Label: "Default", Price: "0.00"}}, product.Variants)
}

func TestShopParserEmptyHeadingUsesFallbackTitle(t *testing.T) {
	parser := NewShopParser(DefaultProfile(""))

	product, err := parser.Extract(`<h1>   </h1>`, "https://shop.example.com/p/1")
	require.NoError(t, err)
	assert.Equal(t, "Unknown Product", product.Title)
}

func TestShopParserImageURL(t *testing.T) {
	tests := []struct {
		name      string
		baseURL   string
		html      string
		sourceURL string
		expected  string
	}{
		{
			name:      "absolute src kept",
			baseURL:   "https://shop.example.com",
			html:      `<img id="main-product-image" src="https://cdn.example.net/a.jpg">`,
			sourceURL: "https://shop.example.com/p/1",
			expected:  "https://cdn.example.net/a.jpg",
		},
		{
			name:      "root relative src gets base url",
			baseURL:   "https://shop.example.com",
			html:      `<img id="main-product-image" src="/img/a.jpg">`,
			sourceURL: "https://shop.example.com/p/1",
			expected:  "https://shop.example.com/img/a.jpg",
		},
		{
			name:      "protocol relative src",
			baseURL:   "https://shop.example.com",
			html:      `<img id="main-product-image" src="//cdn.example.net/a.jpg">`,
			sourceURL: "https://shop.example.com/p/1",
			expected:  "https://cdn.example.net/a.jpg",
		},
		{
			name:      "no base url resolves against page",
			baseURL:   "",
			html:      `<img id="main-product-image" src="img/a.jpg">`,
			sourceURL: "https://other.example.org/products/tee",
			expected:  "https://other.example.org/products/img/a.jpg",
		},
		{
			name:      "missing src attribute",
			baseURL:   "https://shop.example.com",
			html:      `<img id="main-product-image">`,
			sourceURL: "https://shop.example.com/p/1",
			expected:  "",
		},
		{
			name:      "other image ignored",
			baseURL:   "https://shop.example.com",
			html:      `<img id="logo" src="/logo.png">`,
			sourceURL: "https://shop.example.com/p/1",
			expected:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewShopParser(DefaultProfile(tt.baseURL))
			product, err := parser.Extract(tt.html, tt.sourceURL)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, product.ImageURL)
		})
	}
}

func TestShopParserCustomProfile(t *testing.T) {
	profile := DefaultProfile("https://boutique.example")
	profile.Name = "boutique"
	profile.TitleSelector = ".product-title"
	profile.OptionSelector = "ul.sizes li"

	html := `<h1>Shop name</h1>
<div class="product-title">Linen Shirt</div>
<ul class="sizes"><li>38 €49,00</li><li>40 €49,00</li></ul>`

	product, err := NewShopParser(profile).Extract(html, "https://boutique.example/linen")
	require.NoError(t, err)

	assert.Equal(t, "Linen Shirt", product.Title)
	assert.Equal(t, "linen-shirt", product.Handle)
	require.Len(t, product.Variants, 2)
	assert.Equal(t, models.Variant{Label: "38", Price: "49.00"}, product.Variants[0])
}
