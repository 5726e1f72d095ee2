package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maltedev/shopify-product-importer/internal/models"
)

var ErrEmptyBatch = errors.New("batch has no data")

// Sink persists serialized batches and returns where each one was stored.
type Sink interface {
	Put(ctx context.Context, prefix string, batch models.Batch) (string, error)
}

// DirSink writes batches below a local directory.
type DirSink struct {
	dir string
}

func NewDirSink(dir string) *DirSink {
	return &DirSink{dir: dir}
}

func (s *DirSink) Put(ctx context.Context, prefix string, batch models.Batch) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(batch.Data) == 0 {
		return "", fmt.Errorf("%w: %s", ErrEmptyBatch, batch.Filename)
	}

	dir := filepath.Join(s.dir, cleanPrefix(prefix))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, batch.Filename)
	if err := os.WriteFile(path, batch.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write batch %s: %w", batch.Label, err)
	}

	return path, nil
}

// NopSink keeps batches only in the job store.
type NopSink struct{}

func (NopSink) Put(ctx context.Context, prefix string, batch models.Batch) (string, error) {
	return "", nil
}

func cleanPrefix(prefix string) string {
	prefix = strings.Trim(strings.ReplaceAll(prefix, "\\", "/"), "/")
	parts := strings.Split(prefix, "/")
	kept := parts[:0]
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "/")
}
