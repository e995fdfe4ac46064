// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK          = "ok"
	outcomeInvalid     = "invalid"
	outcomeTimeout     = "timeout"
	outcomeCanceled    = "canceled"
	outcomeError       = "error"
	outcomeRateLimited = "rate_limited"
)

var (
	// analysesTotal counts /analyze requests by outcome.
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quadrature_analyses_total",
		Help: "Total analysis requests by outcome",
	}, []string{"outcome"})

	// analysisDuration tracks successful analysis latency.
	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quadrature_analysis_duration_seconds",
		Help:    "Analysis duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
	})

	// bestMethodTotal counts how often each rule wins.
	bestMethodTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quadrature_best_method_total",
		Help: "Number of analyses won by each method",
	}, []string{"method"})
)

func outcomeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return outcomeInvalid
	case http.StatusGatewayTimeout:
		return outcomeTimeout
	case statusClientClosed:
		return outcomeCanceled
	default:
		return outcomeError
	}
}
