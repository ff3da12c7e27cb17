// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP request helper used by the fetch stage.
package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryBaseDelay is the first backoff interval when a throttled response
// carries no usable Retry-After header. Tests override this to avoid real
// sleeps.
var RetryBaseDelay = 2 * time.Second

// maxBackoff caps any single wait, including server-requested ones.
const maxBackoff = 60 * time.Second

// Do executes req once, then retries up to maxRetries more times while the
// server answers 429 (Too Many Requests) or 503 (Service Unavailable).
// With maxRetries <= 0 it makes exactly one attempt.
//
// Each wait honors a Retry-After header given in seconds and otherwise
// doubles from RetryBaseDelay. The throttled body is drained and closed
// before waiting. A cancelled context during a wait returns ctx.Err().
// After the last attempt the final response is returned as-is so the
// caller can inspect its status.
func Do(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait := backoff(resp.Header.Get("Retry-After"), attempt)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// Retryable reports whether status signals a transient throttle.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

func backoff(retryAfter string, attempt int) time.Duration {
	wait := RetryBaseDelay << attempt
	if secs, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && secs >= 0 {
		wait = time.Duration(secs) * time.Second
	}
	return min(wait, maxBackoff)
}
