// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP fetch helpers shared by the crawl and
// scoring stages.
package httputil

import (
	"context"
	"io"
	"net/http"
	"time"
)

// RetryBaseDelay is the first backoff after an HTTP 429. Tests shrink it.
var RetryBaseDelay = 10 * time.Second

// maxBackoffShift caps the doubling so the delay cannot overflow.
const maxBackoffShift = 6

// backoff returns the wait before retry number attempt (0-based).
func backoff(attempt int) time.Duration {
	if attempt > maxBackoffShift {
		attempt = maxBackoffShift
	}
	return RetryBaseDelay << attempt
}

// DoWithRetry sends req and resends it after each HTTP 429 until
// maxRetries resends have been made, doubling the wait each time.
//
// With maxRetries 0 the request goes out once and a 429 is handed back;
// the crawler does no backoff unless configured to. The final response is
// always returned, 429 or not, so callers map status codes in one place.
// Cancellation during a wait returns ctx.Err().
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		timer := time.NewTimer(backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
