// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"context"
	"fmt"

	"github.com/pdiddy/quadrature-engine/internal/expr"
	"github.com/pdiddy/quadrature-engine/internal/quadrature"
	"github.com/pdiddy/quadrature-engine/internal/reference"
	"github.com/pdiddy/quadrature-engine/pkg/types"
)

// Analyzer turns an AnalysisRequest into an AnalysisResponse: plot data for
// the function and its derivative, the reference value, and the rule
// comparison. It holds only immutable configuration and is safe for
// concurrent use.
type Analyzer struct {
	cfg      types.AnalysisConfig
	resolver reference.Resolver
}

// New returns an Analyzer. A nil resolver uses the closed-form attempt with
// the adaptive Romberg fallback at cfg.FallbackDepth.
func New(cfg types.AnalysisConfig, resolver reference.Resolver) *Analyzer {
	cfg = cfg.WithDefaults()
	if resolver == nil {
		resolver = reference.Default(cfg.FallbackDepth)
	}
	return &Analyzer{cfg: cfg, resolver: resolver}
}

// Validate checks the request bounds and subdivision cap.
func (an *Analyzer) Validate(req types.AnalysisRequest) error {
	if !isFinite(req.A) || !isFinite(req.B) || req.A >= req.B {
		return fmt.Errorf("%w: need finite a < b, got a=%g b=%g", ErrInvalidBounds, req.A, req.B)
	}
	if req.N > an.cfg.MaxSubdivisions {
		return fmt.Errorf("%w: n=%d exceeds the maximum of %d", ErrInvalidSubdivisionCount, req.N, an.cfg.MaxSubdivisions)
	}
	return nil
}

// Analyze runs the full analysis. The context is checked between stages; the
// stages themselves are bounded and do not block.
func (an *Analyzer) Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResponse, error) {
	if err := an.Validate(req); err != nil {
		return nil, err
	}

	e, err := expr.Parse(req.Function)
	if err != nil {
		return nil, err
	}
	f := e.Sampled()

	points := quadrature.Linspace(req.A, req.B, an.cfg.PlotPoints-1)
	deriv := e.Derivative()
	resp := &types.AnalysisResponse{
		FunctionPlotData: types.FunctionPlotData{
			Points: points,
			Values: f.Samples(points),
		},
		DerivativeInfo: types.DerivativeInfo{
			Expression: deriv.String(),
			Points:     points,
			Values:     deriv.Sampled().Samples(points),
		},
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ref, ok, err := reference.Resolve(an.resolver, e, req.A, req.B)
	if err != nil {
		return nil, fmt.Errorf("resolving reference value: %w", err)
	}
	refSample := types.Undefined()
	if ok {
		refSample = types.SampleOf(ref.Value)
	}
	resp.TrueIntegralValue = refSample
	resp.ReferenceSource = ref.Source

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report, err := Compare(f, req.A, req.B, req.N, refSample)
	if err != nil {
		return nil, err
	}
	resp.Results = Results(report)
	resp.BestMethod = report.BestMethod()
	resp.AnalysisSummary = report.Summary
	return resp, nil
}

// Results converts a report to its wire form, sanitizing non-finite numbers.
func Results(r Report) []types.IntegrationResult {
	out := make([]types.IntegrationResult, len(r.Results))
	for i, res := range r.Results {
		out[i] = types.IntegrationResult{
			MethodName:    res.Method.String(),
			IntegralValue: types.SampleOf(res.Estimate),
			AbsoluteError: types.SampleOf(res.AbsoluteError),
			Points:        res.Abscissas,
			Values:        res.Ordinates,
		}
	}
	return out
}
