// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the client and batch
// runner.
package httputil

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay is the first backoff delay after an HTTP 429. Tests shrink
// it to avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

// MaxRetryDelay caps a single backoff, including one requested through
// Retry-After.
var MaxRetryDelay = 30 * time.Second

const defaultMaxRetries = 5

// DoWithRetry sends req and retries while the server answers 429 Too Many
// Requests. The delay doubles from RetryBaseDelay on each attempt unless the
// response carries a Retry-After in seconds, which takes precedence. Both are
// capped at MaxRetryDelay.
//
// maxRetries <= 0 means the default (5). The request body, if any, must be
// replayable through req.GetBody. A cancelled context during a wait returns
// ctx.Err(). When retries run out the last 429 response is returned for the
// caller to inspect.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			attemptReq.Body = body
		}

		resp, err := client.Do(attemptReq)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		wait := backoff(attempt, resp.Header.Get("Retry-After"))
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		slog.Debug("rate limited, retrying",
			"url", req.URL.String(), "wait", wait, "attempt", attempt+1, "max_retries", maxRetries)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func backoff(attempt int, retryAfter string) time.Duration {
	wait := RetryBaseDelay << attempt
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		wait = time.Duration(secs) * time.Second
	}
	if wait <= 0 || wait > MaxRetryDelay {
		wait = MaxRetryDelay
	}
	return wait
}
