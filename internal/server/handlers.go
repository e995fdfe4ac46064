// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pdiddy/quadrature-engine/internal/analysis"
	"github.com/pdiddy/quadrature-engine/internal/expr"
	"github.com/pdiddy/quadrature-engine/internal/quadrature"
	"github.com/pdiddy/quadrature-engine/pkg/types"
)

var tracer = otel.Tracer("github.com/pdiddy/quadrature-engine/internal/server")

// maxRequestBytes caps the /analyze body; a valid request is far smaller.
const maxRequestBytes = 64 << 10

// statusClientClosed is the non-standard status logged when the caller
// goes away before the analysis finishes.
const statusClientClosed = 499

type errorBody struct {
	Detail string `json:"detail"`
}

type analyzeResult struct {
	resp *types.AnalysisResponse
	err  error
}

func (s *Server) handleAnalyze(c *gin.Context) {
	start := time.Now()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBytes)
	var req types.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		analysesTotal.WithLabelValues(outcomeInvalid).Inc()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorBody{Detail: "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, errorBody{Detail: "invalid request: " + err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "analyze", trace.WithAttributes(
		attribute.String("quadrature.function", req.Function),
		attribute.Float64("quadrature.a", req.A),
		attribute.Float64("quadrature.b", req.B),
		attribute.Int("quadrature.n", req.N),
	))
	defer span.End()

	// The pipeline only checks ctx between stages, so wait on it here to
	// answer a timeout promptly.
	done := make(chan analyzeResult, 1)
	go func() {
		resp, err := s.analyzer.Analyze(ctx, req)
		done <- analyzeResult{resp: resp, err: err}
	}()

	var res analyzeResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	elapsed := time.Since(start)

	if res.err != nil {
		status, detail := classify(res.err)
		span.RecordError(res.err)
		span.SetStatus(codes.Error, detail)
		analysesTotal.WithLabelValues(outcomeFor(status)).Inc()
		slog.Warn("analysis failed",
			"function", req.Function, "a", req.A, "b", req.B, "n", req.N,
			"status", status, "error", res.err, "duration", elapsed)
		c.JSON(status, errorBody{Detail: detail})
		return
	}

	resp := res.resp
	span.SetAttributes(attribute.String("quadrature.best_method", resp.BestMethod))
	analysesTotal.WithLabelValues(outcomeOK).Inc()
	analysisDuration.Observe(elapsed.Seconds())
	if resp.BestMethod != "" {
		bestMethodTotal.WithLabelValues(resp.BestMethod).Inc()
	}
	slog.Info("analysis complete",
		"function", req.Function, "a", req.A, "b", req.B, "n", req.N,
		"best_method", resp.BestMethod, "reference", resp.ReferenceSource, "duration", elapsed)

	if s.recorder != nil {
		if id, err := s.recorder.Record(c.Request.Context(), req, resp); err != nil {
			slog.Warn("recording analysis", "error", err)
		} else {
			c.Header("X-Analysis-ID", id)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleMethods(c *gin.Context) {
	c.JSON(http.StatusOK, quadrature.Describe())
}

// classify maps a pipeline error to an HTTP status and client message.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, expr.ErrExpression):
		return http.StatusBadRequest, "invalid function: " + err.Error()
	case errors.Is(err, analysis.ErrInvalidBounds),
		errors.Is(err, analysis.ErrInvalidSubdivisionCount):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "analysis timed out"
	case errors.Is(err, context.Canceled):
		return statusClientClosed, "request canceled"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
