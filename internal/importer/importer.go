package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maltedev/shopify-product-importer/internal/fetcher"
	"github.com/maltedev/shopify-product-importer/internal/models"
	"github.com/maltedev/shopify-product-importer/internal/parser"
	"github.com/maltedev/shopify-product-importer/internal/shopify"
)

// ProgressFunc is called after every URL with the number processed so far.
type ProgressFunc func(done, total int)

// ExtractorSource picks the extractor for a page URL. *parser.Registry implements it.
type ExtractorSource interface {
	For(url string) parser.Extractor
}

type Importer struct {
	fetcher    fetcher.Fetcher
	extractors ExtractorSource
	logger     *slog.Logger
}

func New(f fetcher.Fetcher, extractors ExtractorSource, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		fetcher:    f,
		extractors: extractors,
		logger:     logger.With("component", "importer"),
	}
}

// Run processes urls one at a time in input order. A failing URL is recorded
// in the result and never stops the run. When ctx is cancelled the rows and
// failures gathered so far are returned together with ctx.Err().
func (i *Importer) Run(ctx context.Context, urls []string, progress ProgressFunc) (*models.RunResult, error) {
	result := &models.RunResult{
		Rows:     []models.ImportRow{},
		Failures: []models.Failure{},
		Total:    len(urls),
	}

	for n, url := range urls {
		if err := ctx.Err(); err != nil {
			i.logger.Warn("import cancelled", "processed", n, "total", len(urls))
			return result, err
		}

		rows, err := i.processURL(ctx, url)
		if err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return result, ctx.Err()
			}
			i.logger.Warn("failed to import url", "url", url, "error", err)
			result.Failures = append(result.Failures, models.Failure{
				URL:     url,
				Message: err.Error(),
			})
		} else {
			result.Rows = append(result.Rows, rows...)
			result.Products++
		}

		if progress != nil {
			progress(n+1, len(urls))
		}
	}

	i.logger.Info("import finished",
		"total", result.Total,
		"products", result.Products,
		"rows", len(result.Rows),
		"failures", len(result.Failures))

	return result, nil
}

func (i *Importer) processURL(ctx context.Context, url string) (rows []models.ImportRow, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = fmt.Errorf("unexpected error while processing page: %v", r)
		}
	}()

	page, err := i.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	extractor := i.extractors.For(url)
	product, err := extractor.Extract(page.Body, url)
	if err != nil {
		return nil, fmt.Errorf("failed to extract product with %s: %w", extractor.Name(), err)
	}

	i.logger.Debug("extracted product",
		"url", url,
		"handle", product.Handle,
		"variants", len(product.Variants))

	return shopify.BuildRows(product), nil
}
