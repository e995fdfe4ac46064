// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reference resolves the trusted integral value that each
// quadrature rule's error is measured against.
package reference

import (
	"errors"
	"fmt"
	"math"

	"github.com/pdiddy/quadrature-engine/internal/expr"
	"github.com/pdiddy/quadrature-engine/internal/quadrature"
)

// DefaultFallbackDepth is the refinement depth of the adaptive Romberg
// fallback.
const DefaultFallbackDepth = 20

// Resolver produces a reference value for the integral of e over [a, b].
// Implementations are strategies: a closed-form attempt, an adaptive numeric
// fallback, their chain, or a fixed value for tests.
type Resolver interface {
	Name() string
	Resolve(e *expr.Expression, a, b float64) (float64, error)
}

// Value is a resolved reference and the strategy that produced it.
type Value struct {
	Value  float64
	Source string
}

// ClosedForm evaluates the exact integral from a symbolic antiderivative.
// It fails with expr.ErrNoClosedForm when none exists on [a, b].
type ClosedForm struct{}

func (ClosedForm) Name() string { return "closed-form" }

func (ClosedForm) Resolve(e *expr.Expression, a, b float64) (float64, error) {
	return e.DefiniteIntegral(a, b)
}

// AdaptiveRomberg integrates numerically with a Romberg tableau of fixed
// maximum depth and the default tolerances. It places no constraint on the
// subdivision count.
type AdaptiveRomberg struct {
	// Depth is the maximum number of interval doublings. Zero uses
	// DefaultFallbackDepth.
	Depth int
}

func (AdaptiveRomberg) Name() string { return "adaptive-romberg" }

func (r AdaptiveRomberg) Resolve(e *expr.Expression, a, b float64) (float64, error) {
	depth := r.Depth
	if depth <= 0 {
		depth = DefaultFallbackDepth
	}
	res := quadrature.Romberg(e.Sampled(), a, b, quadrature.RombergOptions{DivMax: depth})
	return res.Value, nil
}

// Fallback tries Primary and, when it reports expr.ErrNoClosedForm, uses
// Secondary. Any other error from Primary is returned as is.
type Fallback struct {
	Primary   Resolver
	Secondary Resolver
}

func (f Fallback) Name() string {
	return f.Primary.Name() + "|" + f.Secondary.Name()
}

func (f Fallback) Resolve(e *expr.Expression, a, b float64) (float64, error) {
	v, _, err := f.resolve(e, a, b)
	return v, err
}

func (f Fallback) resolve(e *expr.Expression, a, b float64) (float64, string, error) {
	v, err := f.Primary.Resolve(e, a, b)
	if err == nil {
		return v, f.Primary.Name(), nil
	}
	if !errors.Is(err, expr.ErrNoClosedForm) {
		return 0, "", fmt.Errorf("%s: %w", f.Primary.Name(), err)
	}
	v, err = f.Secondary.Resolve(e, a, b)
	if err != nil {
		return 0, "", fmt.Errorf("%s: %w", f.Secondary.Name(), err)
	}
	return v, f.Secondary.Name(), nil
}

// Fixed returns a constant reference. It lets callers compare rules against
// a known value without any symbolic work.
type Fixed float64

func (Fixed) Name() string { return "fixed" }

func (f Fixed) Resolve(*expr.Expression, float64, float64) (float64, error) {
	return float64(f), nil
}

// Default is the closed-form attempt with an adaptive Romberg fallback of
// the given depth.
func Default(depth int) Resolver {
	return Fallback{Primary: ClosedForm{}, Secondary: AdaptiveRomberg{Depth: depth}}
}

// Resolve runs r and reports the value with the name of the strategy that
// produced it. A non-finite value is returned as ok=false: the reference is
// unavailable.
func Resolve(r Resolver, e *expr.Expression, a, b float64) (Value, bool, error) {
	var (
		v      float64
		source string
		err    error
	)
	if f, ok := r.(Fallback); ok {
		v, source, err = f.resolve(e, a, b)
	} else {
		source = r.Name()
		v, err = r.Resolve(e, a, b)
	}
	if err != nil {
		return Value{}, false, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{Source: source}, false, nil
	}
	return Value{Value: v, Source: source}, true, nil
}
