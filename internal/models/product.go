package models

const (
	DefaultVariantLabel = "Default"
	DefaultVariantPrice = "0.00"
)

type Product struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Handle      string    `json:"handle"`
	Variants    []Variant `json:"variants"`
	SourceURL   string    `json:"source_url"`
}

type Variant struct {
	Label string `json:"label"`
	Price string `json:"price"`
}

// DefaultVariant is used when a page has no selectable options.
func DefaultVariant() Variant {
	return Variant{Label: DefaultVariantLabel, Price: DefaultVariantPrice}
}

// ImportRow is one line of a Shopify product import file.
type ImportRow struct {
	Handle                    string `json:"handle"`
	Title                     string `json:"title"`
	Body                      string `json:"body"`
	Vendor                    string `json:"vendor"`
	Type                      string `json:"type"`
	Tags                      string `json:"tags"`
	Published                 string `json:"published"`
	Option1Name               string `json:"option1_name"`
	Option1Value              string `json:"option1_value"`
	VariantPrice              string `json:"variant_price"`
	VariantInventoryQty       int    `json:"variant_inventory_qty"`
	VariantInventoryPolicy    string `json:"variant_inventory_policy"`
	VariantFulfillmentService string `json:"variant_fulfillment_service"`
	VariantRequiresShipping   string `json:"variant_requires_shipping"`
	ImageSrc                  string `json:"image_src"`
	ImageAltText              string `json:"image_alt_text"`
	URL                       string `json:"url"`
}

type Failure struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

type RunResult struct {
	Rows     []ImportRow `json:"rows"`
	Failures []Failure   `json:"failures"`
	Products int         `json:"products"`
	Total    int         `json:"total"`
}

// Batch is a contiguous slice of import rows serialized as one CSV file.
// Start and End are 1-based and inclusive.
type Batch struct {
	Index    int    `json:"index"`
	Label    string `json:"label"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Rows     int    `json:"rows"`
	Filename string `json:"filename"`
	Location string `json:"location,omitempty"`
	Data     []byte `json:"-"`
}
