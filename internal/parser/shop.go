package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/shopify-product-importer/internal/models"
)

// ShopParser reads product pages laid out as described by a SiteProfile.
type ShopParser struct {
	profile SiteProfile
}

func NewShopParser(profile SiteProfile) *ShopParser {
	return &ShopParser{profile: profile}
}

func (p *ShopParser) Name() string {
	return p.profile.Name
}

func (p *ShopParser) Profile() SiteProfile {
	return p.profile
}

func (p *ShopParser) Extract(html string, sourceURL string) (*models.Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := p.extractTitle(doc)

	product := &models.Product{
		Title:       title,
		Description: p.extractDescription(doc),
		ImageURL:    p.extractImage(doc, sourceURL),
		Handle:      Handle(title),
		Variants:    ParseVariants(p.extractOptionTexts(doc)),
		SourceURL:   sourceURL,
	}

	return product, nil
}

func (p *ShopParser) extractTitle(doc *goquery.Document) string {
	title := NormalizeText(doc.Find(p.profile.TitleSelector).First().Text())
	if title == "" {
		return p.profile.FallbackTitle
	}
	return title
}

func (p *ShopParser) extractDescription(doc *goquery.Document) string {
	return NormalizeText(doc.Find(p.profile.DescriptionSelector).First().Text())
}

func (p *ShopParser) extractImage(doc *goquery.Document, sourceURL string) string {
	src, exists := doc.Find(p.profile.ImageSelector).First().Attr("src")
	if !exists {
		return ""
	}

	base := p.profile.BaseURL
	if base == "" {
		base = sourceURL
	}

	return resolveURL(base, src)
}

func (p *ShopParser) extractOptionTexts(doc *goquery.Document) []string {
	var texts []string
	doc.Find(p.profile.OptionSelector).Each(func(i int, s *goquery.Selection) {
		texts = append(texts, s.Text())
	})
	return texts
}

// resolveURL prefixes relative image paths with the site base URL.
func resolveURL(base, src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}

	ref, err := url.Parse(src)
	if err != nil || ref.IsAbs() {
		return src
	}

	baseURL, err := url.Parse(base)
	if err != nil || base == "" {
		return src
	}

	return baseURL.ResolveReference(ref).String()
}
