package fetcher

import (
	"context"
	"fmt"

	"github.com/maltedev/shopify-product-importer/internal/browser"
)

// Renderer is satisfied by *browser.Browser.
type Renderer interface {
	Render(ctx context.Context, url string) (*browser.Snapshot, error)
}

// BrowserFetcher loads pages through a headless browser for storefronts that
// build their product markup client side. ctx is handed to the renderer, so
// cancelling a run also aborts a page load that is still in flight.
type BrowserFetcher struct {
	renderer Renderer
}

func NewBrowserFetcher(renderer Renderer) *BrowserFetcher {
	return &BrowserFetcher{renderer: renderer}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	snap, err := f.renderer.Render(ctx, url)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	if snap.StatusCode != 0 && (snap.StatusCode < 200 || snap.StatusCode > 299) {
		return nil, &FetchError{
			URL:        url,
			StatusCode: snap.StatusCode,
			Err:        fmt.Errorf("%w: %d", ErrUnexpectedStatus, snap.StatusCode),
		}
	}

	return &Page{
		URL:        url,
		StatusCode: snap.StatusCode,
		Body:       snap.HTML,
	}, nil
}
