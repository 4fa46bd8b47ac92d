// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/market-digest/pkg/types"
)

// ErrStatus is wrapped by Fetcher.Get when a page answers with a status
// other than 200.
var ErrStatus = errors.New("unexpected HTTP status")

// maxBodyBytes caps how much of a page is read.
const maxBodyBytes = 8 << 20

// browserHeaders are sent with every page request. Accept-Encoding is left
// to the transport so gzip bodies are decoded transparently.
var browserHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Referer":                   "https://www.google.com/",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "cross-site",
	"Sec-Fetch-User":            "?1",
}

// Fetcher retrieves pages the way a desktop browser would, spacing requests
// with a randomized delay and a per-host rate budget. A Fetcher is safe for
// concurrent use.
type Fetcher struct {
	client   *http.Client
	cfg      types.HTTPConfig
	limiters sync.Map // host → *rate.Limiter

	// jitter returns the pause before a request; replaced in tests.
	jitter func() time.Duration
}

// NewFetcher returns a Fetcher for cfg. Zero fields fall back to
// types.DefaultConfig values.
func NewFetcher(cfg types.HTTPConfig) *Fetcher {
	def := types.DefaultConfig().HTTP
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}

	f := &Fetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
	f.jitter = f.randomDelay
	return f
}

// WithClient replaces the underlying HTTP client (e.g. an httptest client).
func (f *Fetcher) WithClient(c *http.Client) *Fetcher {
	f.client = c
	return f
}

// Get fetches rawURL and returns the response body. Statuses other than 200
// yield an error wrapping ErrStatus.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}

	if err := f.wait(ctx, u.Host); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := DoWithRetry(ctx, f.client, req, f.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("GET %s: %w %d", rawURL, ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	return body, nil
}

// wait sleeps for the jitter delay and then for the host's rate budget,
// returning early if ctx is cancelled.
func (f *Fetcher) wait(ctx context.Context, host string) error {
	if d := f.jitter(); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return f.limiter(host).Wait(ctx)
}

func (f *Fetcher) limiter(host string) *rate.Limiter {
	if l, ok := f.limiters.Load(host); ok {
		return l.(*rate.Limiter)
	}
	limit := rate.Inf
	if f.cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(f.cfg.RequestsPerSecond)
	}
	l, _ := f.limiters.LoadOrStore(host, rate.NewLimiter(limit, 1))
	return l.(*rate.Limiter)
}

func (f *Fetcher) randomDelay() time.Duration {
	lo, hi := f.cfg.MinDelay, f.cfg.MaxDelay
	if hi <= 0 {
		return 0
	}
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo)
}
