package chromedp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// maxBodyBytes caps what the fallback GET will read from a misbehaving server.
const maxBodyBytes = 10 << 20

// Fetch retrieves page markup with a headless browser first so dynamically
// rendered content is captured, then falls back to a plain HTTP GET when the
// browser path fails for any reason.
type Fetch struct {
	Timeout   time.Duration
	UserAgent string
	Logger    *log.Logger
}

func (f *Fetch) logger() *log.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return log.New(log.Writer(), "[FETCH] ", log.LstdFlags)
}

// Fetch returns the raw HTML for url, or an error when both the rendered and
// the static strategy have failed.
func (f *Fetch) Fetch(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", errors.New("invalid url")
	}

	// Hard deadline independent of chromedp's internal timeouts.
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	html, err := f.fetchRendered(ctx, url)
	if err == nil {
		return html, nil
	}
	f.logger().Printf("rendered fetch failed for %s: %v; falling back to GET", url, err)

	html, getErr := f.fetchStatic(ctx, url)
	if getErr != nil {
		return "", fmt.Errorf("fetch %s: rendered: %v; static: %w", url, err, getErr)
	}
	return html, nil
}

func (f *Fetch) fetchRendered(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent(f.UserAgent),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(bctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(html) == "" {
		return "", errors.New("empty document")
	}
	return html, nil
}

func (f *Fetch) fetchStatic(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", errors.New("empty document")
	}
	return string(body), nil
}
