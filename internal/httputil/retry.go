// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the outbound HTTP plumbing shared by source
// providers: retry with backoff, per-host rate limiting, and browser-like
// page fetching.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// retryable responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 1 * time.Second

const defaultMaxRetries = 3

// retryable reports whether a response status is worth another attempt:
// 429 (Too Many Requests) and the transient gateway errors news CDNs return
// under load.
func retryable(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// DoWithRetry executes an HTTP request and retries retryable responses with
// exponential backoff. The delay starts at RetryBaseDelay and doubles each
// attempt.
//
// When maxRetries is 0 the default (3) is used. Before each retry the
// response body is drained and closed. If the context is cancelled during a
// backoff wait the function returns ctx.Err(). After exhausting retries the
// last response is returned so the caller can inspect its status.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
