// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package client talks to a running quadrature-engine service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/quadrature-engine/internal/httputil"
	"github.com/pdiddy/quadrature-engine/pkg/types"
)

// ErrRemote is wrapped by every error the service reports in its body.
var ErrRemote = errors.New("remote analysis failed")

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Detail)
}

func (e *APIError) Unwrap() error { return ErrRemote }

// Client calls the analysis endpoints.
type Client struct {
	cfg  types.ClientConfig
	http *http.Client
}

// New returns a Client for cfg.ServerURL. A nil httpClient gets one with
// cfg.Timeout.
func New(cfg types.ClientConfig, httpClient *http.Client) *Client {
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:8000"
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	if cfg.UserAgent == "" {
		cfg.UserAgent = "quadrature-engine"
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{cfg: cfg, http: httpClient}
}

// Analyze posts req to /analyze.
func (c *Client) Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	var resp types.AnalysisResponse
	if err := c.do(ctx, http.MethodPost, "/analyze", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Methods fetches the rule catalogue from /methods.
func (c *Client) Methods(ctx context.Context) ([]types.MethodInfo, error) {
	var out []types.MethodInfo
	if err := c.do(ctx, http.MethodGet, "/methods", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.ServerURL+path, r)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing %s response: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Detail string `json:"detail"`
	}
	detail := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &payload) == nil && payload.Detail != "" {
		detail = payload.Detail
	}
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Detail: detail}
}
