package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultMaxBodyBytes = 10 << 20
)

type HTTPOptions struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

type HTTPFetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		userAgent:    opts.UserAgent,
		maxBodyBytes: opts.MaxBodyBytes,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	res, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &FetchError{
			URL:        url,
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrUnexpectedStatus, res.Status),
		}
	}

	// one byte past the limit tells a truncated page from one that fits exactly
	body, err := io.ReadAll(io.LimitReader(res.Body, f.maxBodyBytes+1))
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, &FetchError{
			URL: url,
			Err: fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, f.maxBodyBytes),
		}
	}

	return &Page{
		URL:        url,
		StatusCode: res.StatusCode,
		Body:       string(body),
	}, nil
}
