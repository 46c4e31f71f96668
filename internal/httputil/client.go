// Package httputil provides the outbound HTTP client, a polite page fetcher
// and input sanitization utilities.
package httputil

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"wfmu/internal/errutil"
)

// maxBodySize caps any single response body read into memory.
const maxBodySize = 10 * 1024 * 1024

// NewClient creates a hardened HTTP client with secure defaults.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			DisableCompression:  false,
			MaxIdleConnsPerHost: 5,
		},
	}
}

// Fetcher issues GET requests with browser-like headers. Consecutive requests
// are spaced by the configured interval.
type Fetcher struct {
	client    *http.Client
	userAgent string
	referer   string
	limiter   *rate.Limiter
}

// NewFetcher wraps client. An interval of zero disables request spacing.
func NewFetcher(client *http.Client, userAgent, referer string, interval time.Duration) *Fetcher {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Fetcher{
		client:    client,
		userAgent: userAgent,
		referer:   referer,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// Get performs a GET request and returns the response when the status is 200.
// The caller closes the body.
func (f *Fetcher) Get(ctx context.Context, url string) (*http.Response, error) {
	if err := ValidateURL(url); err != nil {
		return nil, errors.Wrap(errutil.ErrInvalidURL, err.Error())
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(errutil.ErrHTTPRequest, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errutil.ErrInternal, err.Error())
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if f.referer != "" {
		req.Header.Set("Referer", f.referer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errutil.ErrHTTPRequest, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Wrapf(errutil.ErrHTTPStatus, "status %d for %s", resp.StatusCode, url)
	}

	return resp, nil
}

// Document fetches a URL and parses it into a goquery Document.
func (f *Fetcher) Document(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := f.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(errutil.ErrHTMLParse, err.Error())
	}

	return doc, nil
}

// Text fetches a URL and returns its body as a string.
func (f *Fetcher) Text(ctx context.Context, url string) (string, error) {
	resp, err := f.Get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", errors.Wrap(errutil.ErrHTTPRequest, err.Error())
	}

	return string(body), nil
}
