// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch runs many analyses from a YAML file concurrently and writes
// their results in input order.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/quadrature-engine/pkg/types"
)

// ErrEmptyBatch is returned when a batch file lists no analyses.
var ErrEmptyBatch = errors.New("batch file has no analyses")

// Analyzer runs one analysis. Both *analysis.Analyzer and *client.Client
// satisfy it.
type Analyzer interface {
	Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResponse, error)
}

// File is the on-disk batch definition:
//
//	analyses:
//	  - function: sin(x)
//	    a: 0
//	    b: 3.14159
//	    n: 12
type File struct {
	Analyses []types.AnalysisRequest `yaml:"analyses"`
}

// Outcome is one entry's result. Exactly one of Response and Error is set.
type Outcome struct {
	Request  types.AnalysisRequest   `json:"request" yaml:"request"`
	Response *types.AnalysisResponse `json:"response,omitempty" yaml:"response,omitempty"`
	Error    string                  `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary counts a run's outcomes.
type Summary struct {
	Total     int       `yaml:"total"`
	Succeeded int       `yaml:"succeeded"`
	Failed    int       `yaml:"failed"`
	Timestamp time.Time `yaml:"timestamp"`
}

// ResultFile is the on-disk representation of a finished run.
type ResultFile struct {
	Results []Outcome `yaml:"results"`
	Summary Summary   `yaml:"summary"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ReadFile loads a batch definition from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}
	if len(f.Analyses) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyBatch)
	}
	return &f, nil
}

// ValidateRequest checks the field constraints of a single request.
func ValidateRequest(req types.AnalysisRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// Runner fans a batch out over a bounded number of workers.
type Runner struct {
	Analyzer Analyzer

	// Workers bounds concurrent analyses. Zero uses GOMAXPROCS.
	Workers int

	// Progress receives one line per finished entry. Nil discards.
	Progress io.Writer
}

// Run analyzes every request. A failed entry records its error and does not
// stop the others. The returned slice matches reqs by index. Run returns an
// error only when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, reqs []types.AnalysisRequest) ([]Outcome, error) {
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	w := r.Progress
	if w == nil {
		w = io.Discard
	}

	outcomes := make([]Outcome, len(reqs))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, req := range reqs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = r.runOne(gctx, req)
			n := done.Add(1)
			if outcomes[i].Error != "" {
				fmt.Fprintf(w, "[%d/%d] failed  %s: %s\n", n, len(reqs), req.Function, outcomes[i].Error)
			} else {
				fmt.Fprintf(w, "[%d/%d] ok      %s -> %s\n", n, len(reqs), req.Function, outcomes[i].Response.BestMethod)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

func (r *Runner) runOne(ctx context.Context, req types.AnalysisRequest) Outcome {
	out := Outcome{Request: req}
	if err := ValidateRequest(req); err != nil {
		out.Error = err.Error()
		return out
	}
	resp, err := r.Analyzer.Analyze(ctx, req)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Response = resp
	return out
}

// Summarize counts outcomes.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes), Timestamp: time.Now().UTC()}
	for _, o := range outcomes {
		if o.Error != "" {
			s.Failed++
		} else {
			s.Succeeded++
		}
	}
	return s
}

// WriteResults saves outcomes and their summary as YAML.
func WriteResults(path string, outcomes []Outcome) error {
	rf := ResultFile{Results: outcomes, Summary: Summarize(outcomes)}
	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResults loads a results file written by WriteResults.
func ReadResults(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results file: %w", err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing results file: %w", err)
	}
	return &rf, nil
}
