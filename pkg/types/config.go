// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP client settings.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "quadrature-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ServerConfig holds settings for the HTTP analysis service.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `json:"addr" yaml:"addr"`

	// AllowedOrigins is the CORS origin allow-list.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`

	// RequestTimeout bounds a single analysis request (default 30s).
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`

	// RateLimit is the sustained number of analyses per second. Zero disables
	// rate limiting.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`

	// RateBurst is the token bucket size for RateLimit.
	RateBurst int `json:"rate_burst" yaml:"rate_burst"`

	// TraceStdout exports OpenTelemetry spans to stdout when set.
	TraceStdout bool `json:"trace_stdout" yaml:"trace_stdout"`
}

// AnalysisConfig holds the numeric settings of the analysis pipeline.
type AnalysisConfig struct {
	// PlotPoints is the number of samples in the function and derivative
	// plots (default 200).
	PlotPoints int `json:"plot_points" yaml:"plot_points"`

	// MaxSubdivisions caps the requested subdivision count (default 1000000).
	MaxSubdivisions int `json:"max_subdivisions" yaml:"max_subdivisions"`

	// FallbackDepth is the refinement depth of the adaptive Romberg
	// reference value (default 20).
	FallbackDepth int `json:"fallback_depth" yaml:"fallback_depth"`
}

// HistoryConfig holds settings for the analysis journal.
type HistoryConfig struct {
	// Dir is the directory that holds history.db and exports.
	Dir string `json:"dir" yaml:"dir"`

	// Enabled records every completed analysis.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// MaxResults is the default number of entries returned by a query
	// (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ClientConfig holds settings for talking to a remote analysis service.
type ClientConfig struct {
	HTTPConfig `yaml:",inline"`

	// ServerURL is the base URL of the service (e.g. "http://localhost:8000").
	ServerURL string `json:"server_url" yaml:"server_url"`

	// MaxRetries is the number of retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// Config groups all configuration sections.
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis"`
	History  HistoryConfig  `json:"history" yaml:"history"`
	Client   ClientConfig   `json:"client" yaml:"client"`
}

// DefaultAnalysisConfig returns the analysis defaults.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		PlotPoints:      200,
		MaxSubdivisions: 1_000_000,
		FallbackDepth:   20,
	}
}

// WithDefaults fills zero fields with their defaults.
func (c AnalysisConfig) WithDefaults() AnalysisConfig {
	d := DefaultAnalysisConfig()
	if c.PlotPoints <= 1 {
		c.PlotPoints = d.PlotPoints
	}
	if c.MaxSubdivisions <= 0 {
		c.MaxSubdivisions = d.MaxSubdivisions
	}
	if c.FallbackDepth <= 0 {
		c.FallbackDepth = d.FallbackDepth
	}
	return c
}
