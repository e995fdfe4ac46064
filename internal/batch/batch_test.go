// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/quadrature-engine/internal/analysis"
	"github.com/pdiddy/quadrature-engine/pkg/types"
)

type analyzerFunc func(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResponse, error)

func (f analyzerFunc) Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResponse, error) {
	return f(ctx, req)
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFile(t *testing.T) {
	path := writeFile(t, `
analyses:
  - function: sin(x)
    a: 0
    b: 3.14159
    n: 12
  - function: x**2
    a: -1
    b: 1
    n: 8
`)
	f, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, f.Analyses, 2)
	assert.Equal(t, types.AnalysisRequest{Function: "sin(x)", A: 0, B: 3.14159, N: 12}, f.Analyses[0])
	assert.Equal(t, -1.0, f.Analyses[1].A)
}

func TestReadFileErrors(t *testing.T) {
	_, err := ReadFile(writeFile(t, "analyses: []\n"))
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = ReadFile(writeFile(t, "analyses: [\n"))
	assert.ErrorContains(t, err, "parsing batch file")

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading batch file")
}

func TestValidateRequest(t *testing.T) {
	cases := []struct {
		name string
		req  types.AnalysisRequest
		ok   bool
	}{
		{"valid", types.AnalysisRequest{Function: "x", A: 0, B: 1, N: 1}, true},
		{"missing function", types.AnalysisRequest{A: 0, B: 1, N: 1}, false},
		{"reversed bounds", types.AnalysisRequest{Function: "x", A: 1, B: 0, N: 1}, false},
		{"equal bounds", types.AnalysisRequest{Function: "x", A: 1, B: 1, N: 1}, false},
		{"zero n", types.AnalysisRequest{Function: "x", A: 0, B: 1, N: 0}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRequest(tc.req)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, "invalid request")
			}
		})
	}
}

func TestRunKeepsInputOrderAndIsolatesFailures(t *testing.T) {
	var progress bytes.Buffer
	r := &Runner{
		Analyzer: analysis.New(types.DefaultAnalysisConfig(), nil),
		Workers:  3,
		Progress: &progress,
	}
	reqs := []types.AnalysisRequest{
		{Function: "x**2", A: 0, B: 3, N: 12},
		{Function: "gamma(x)", A: 0, B: 1, N: 4},
		{Function: "sin(x)", A: 0, B: 1, N: 0},
		{Function: "exp(x)", A: 0, B: 1, N: 8},
	}

	out, err := r.Run(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, out, 4)

	for i, o := range out {
		assert.Equal(t, reqs[i], o.Request)
	}
	require.NotNil(t, out[0].Response)
	assert.Empty(t, out[0].Error)
	assert.Nil(t, out[1].Response)
	assert.Contains(t, out[1].Error, "invalid expression")
	assert.Contains(t, out[2].Error, "invalid request")
	require.NotNil(t, out[3].Response)

	assert.Equal(t, 4, strings.Count(progress.String(), "\n"))
	assert.Contains(t, progress.String(), "failed  gamma(x)")

	s := Summarize(out)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Succeeded)
	assert.Equal(t, 2, s.Failed)
}

func TestRunBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	slow := analyzerFunc(func(context.Context, types.AnalysisRequest) (*types.AnalysisResponse, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		defer inFlight.Add(-1)
		return &types.AnalysisResponse{BestMethod: "Trapezoid"}, nil
	})

	reqs := make([]types.AnalysisRequest, 20)
	for i := range reqs {
		reqs[i] = types.AnalysisRequest{Function: "x", A: 0, B: 1, N: i + 1}
	}

	out, err := (&Runner{Analyzer: slow, Workers: 2}).Run(context.Background(), reqs)
	require.NoError(t, err)
	assert.Len(t, out, 20)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	never := analyzerFunc(func(context.Context, types.AnalysisRequest) (*types.AnalysisResponse, error) {
		return nil, errors.New("should not run")
	})
	_, err := (&Runner{Analyzer: never, Workers: 1}).Run(ctx, []types.AnalysisRequest{{Function: "x", A: 0, B: 1, N: 1}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteAndReadResults(t *testing.T) {
	an := analysis.New(types.DefaultAnalysisConfig(), nil)
	out, err := (&Runner{Analyzer: an}).Run(context.Background(), []types.AnalysisRequest{
		{Function: "1/x", A: 0, B: 1, N: 2},
		{Function: "x", A: 1, B: 0, N: 2},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "results.yaml")
	require.NoError(t, WriteResults(path, out))

	rf, err := ReadResults(path)
	require.NoError(t, err)
	require.Len(t, rf.Results, 2)
	assert.Equal(t, 2, rf.Summary.Total)
	assert.Equal(t, 1, rf.Summary.Failed)

	require.NotNil(t, rf.Results[0].Response)
	assert.False(t, rf.Results[0].Response.TrueIntegralValue.Defined())
	assert.NotEmpty(t, rf.Results[1].Error)
}
