package web_fetch

import (
	"context"
	"errors"
	"time"

	chromedp_fetch "github.com/lumina-ai/lumina/tools/web_fetch/chromedp"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Fetcher retrieves the raw markup of a page. Implementations report an
// error only after every strategy they carry has failed.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type FetcherType string

const (
	ChromedpFetcherType FetcherType = "chromedp"
)

// NewFetcher builds a fetcher of the requested type.
func NewFetcher(fetcherType FetcherType, timeout time.Duration, userAgent string) (Fetcher, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	switch fetcherType {
	case ChromedpFetcherType:
		return &chromedp_fetch.Fetch{Timeout: timeout, UserAgent: userAgent}, nil
	default:
		return nil, errors.New("unsupported fetcher type")
	}
}
