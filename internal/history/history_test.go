// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/quadrature-engine/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.HistoryConfig{Dir: filepath.Join(t.TempDir(), "history"), MaxResults: 20})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var tick int
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return s
}

func response(best string, ref types.Sample, results ...types.IntegrationResult) *types.AnalysisResponse {
	return &types.AnalysisResponse{
		TrueIntegralValue: ref,
		ReferenceSource:   "closed-form",
		Results:           results,
		BestMethod:        best,
		AnalysisSummary:   "summary for " + best,
	}
}

func result(name string, estimate, abs float64) types.IntegrationResult {
	return types.IntegrationResult{
		MethodName:    name,
		IntegralValue: types.SampleOf(estimate),
		AbsoluteError: types.SampleOf(abs),
	}
}

func record(t *testing.T, s *Store, fn string, n int, resp *types.AnalysisResponse) string {
	t.Helper()
	id, err := s.Record(context.Background(), types.AnalysisRequest{Function: fn, A: 0, B: 1, N: n}, resp)
	require.NoError(t, err)
	return id
}

// --- tests ---

func TestRecordAndGet(t *testing.T) {
	s := testStore(t)
	id := record(t, s, "x**2", 4, response("Simpson 1/3", types.SampleOf(1.0/3),
		result("Trapezoid", 0.34375, 0.0104),
		result("Simpson 1/3", 1.0/3, 0),
		types.IntegrationResult{MethodName: "Boole", IntegralValue: types.Undefined(), AbsoluteError: types.Undefined()},
	))

	_, err := uuid.Parse(id)
	require.NoError(t, err)

	e, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "x**2", e.Function)
	assert.Equal(t, 4, e.N)
	assert.Equal(t, "Simpson 1/3", e.BestMethod)
	assert.Equal(t, "closed-form", e.ReferenceSource)
	assert.True(t, e.CreatedAt.Equal(time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC)), e.CreatedAt)

	ref, ok := e.Reference.Float64()
	require.True(t, ok)
	assert.InDelta(t, 1.0/3, ref, 1e-15)

	require.Len(t, e.Results, 3)
	assert.Equal(t, "Trapezoid", e.Results[0].MethodName)
	assert.Equal(t, "Simpson 1/3", e.Results[1].MethodName)
	assert.Equal(t, "Boole", e.Results[2].MethodName)
	assert.False(t, e.Results[2].IntegralValue.Defined())
	assert.False(t, e.Results[2].AbsoluteError.Defined())
}

func TestGetUnknown(t *testing.T) {
	s := testStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordUndefinedReference(t *testing.T) {
	s := testStore(t)
	id := record(t, s, "1/x", 4, response("", types.Undefined()))

	e, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, e.Reference.Defined())
	assert.Empty(t, e.BestMethod)
	assert.Empty(t, e.Results)
}

func TestListFiltersAndOrder(t *testing.T) {
	s := testStore(t)
	first := record(t, s, "sin(x)", 4, response("Boole", types.SampleOf(0.46)))
	second := record(t, s, "x**2", 3, response("Simpson 3/8", types.SampleOf(1.0/3)))
	third := record(t, s, "sin(x)**2", 8, response("Romberg", types.SampleOf(0.27)))

	ctx := context.Background()

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{third, second, first}, []string{all[0].ID, all[1].ID, all[2].ID})

	sines, err := s.List(ctx, Filter{Function: "sin"})
	require.NoError(t, err)
	require.Len(t, sines, 2)
	assert.Equal(t, third, sines[0].ID)

	boole, err := s.List(ctx, Filter{BestMethod: "Boole"})
	require.NoError(t, err)
	require.Len(t, boole, 1)
	assert.Equal(t, first, boole[0].ID)

	limited, err := s.List(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, third, limited[0].ID)

	recent, err := s.List(ctx, Filter{Since: time.Date(2026, 3, 1, 12, 2, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestReopenKeepsEntries(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "history")
	s, err := NewStore(types.HistoryConfig{Dir: dir})
	require.NoError(t, err)
	id, err := s.Record(context.Background(), types.AnalysisRequest{Function: "x", A: 0, B: 1, N: 1}, response("Trapezoid", types.SampleOf(0.5)))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewStore(types.HistoryConfig{Dir: dir})
	require.NoError(t, err)
	defer s.Close()

	e, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "x", e.Function)
}

func TestExportYAML(t *testing.T) {
	s := testStore(t)
	record(t, s, "x**2", 4, response("Simpson 1/3", types.SampleOf(1.0/3), result("Trapezoid", 0.34375, 0.0104)))
	record(t, s, "exp(x)", 2, response("Romberg", types.Undefined()))

	path, err := s.ExportYAML(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), "export.yaml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []types.HistoryEntry
	require.NoError(t, yaml.Unmarshal(data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "exp(x)", entries[0].Function)
	assert.False(t, entries[0].Reference.Defined())
	assert.Equal(t, "x**2", entries[1].Function)
	require.Len(t, entries[1].Results, 1)
	assert.Equal(t, "Trapezoid", entries[1].Results[0].MethodName)
}

func TestExportJSON(t *testing.T) {
	s := testStore(t)
	record(t, s, "x**2", 4, response("Simpson 1/3", types.SampleOf(1.0/3)))
	record(t, s, "cos(x)", 4, response("Boole", types.SampleOf(0.84)))

	path, err := s.ExportJSON(context.Background(), Filter{BestMethod: "Boole"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []types.HistoryEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "cos(x)", entries[0].Function)
}

func TestExportEmpty(t *testing.T) {
	s := testStore(t)
	path, err := s.ExportJSON(context.Background(), Filter{})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}
