package fetcher

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrBodyTooLarge     = errors.New("response body too large")
)

type Page struct {
	URL        string
	StatusCode int
	Body       string
}

// Fetcher downloads the markup of a product page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// FetchError is returned for network failures, timeouts and non-2xx responses.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
