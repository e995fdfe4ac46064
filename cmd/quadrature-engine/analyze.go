// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/quadrature-engine/internal/analysis"
	"github.com/pdiddy/quadrature-engine/internal/batch"
	"github.com/pdiddy/quadrature-engine/internal/client"
	"github.com/pdiddy/quadrature-engine/internal/history"
	"github.com/pdiddy/quadrature-engine/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Integrate a function with every applicable rule and compare them",
	Long: `Analyze integrates --function over [--a, --b] with --n subdivisions,
compares every applicable rule against the reference value, and prints the
results as a table (or JSON with --json).

With --remote the analysis runs on a quadrature-engine service instead of
locally. With --batch FILE every entry of a YAML batch file is analyzed
concurrently and the results are written to --out (or stdout).`,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx := context.Background()

	an, err := analyzerFor(cmd, cfg)
	if err != nil {
		return err
	}

	if batchFile, _ := cmd.Flags().GetString("batch"); batchFile != "" {
		return runBatch(ctx, cmd, an, batchFile)
	}

	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}
	if err := batch.ValidateRequest(req); err != nil {
		return err
	}

	resp, err := an.Analyze(ctx, req)
	if err != nil {
		return err
	}

	if record, _ := cmd.Flags().GetBool("record"); record {
		store, err := history.NewStore(cfg.History)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.Record(ctx, req, resp)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Recorded %s\n", id)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	printAnalysis(cmd.OutOrStdout(), req, resp)
	return nil
}

// analyzerFor returns the remote client when --remote is set and the local
// pipeline otherwise.
func analyzerFor(cmd *cobra.Command, cfg types.Config) (batch.Analyzer, error) {
	c, err := remoteClient(cmd, cfg)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return analysis.New(cfg.Analysis, nil), nil
	}
	return c, nil
}

// remoteClient returns a client for the service named by --remote, or nil
// when the flag is unset.
func remoteClient(cmd *cobra.Command, cfg types.Config) (*client.Client, error) {
	remote, _ := cmd.Flags().GetString("remote")
	if remote == "" {
		return nil, nil
	}
	if !strings.HasPrefix(remote, "http://") && !strings.HasPrefix(remote, "https://") {
		return nil, fmt.Errorf("--remote must be an http(s) URL, got %q", remote)
	}
	cfg.Client.ServerURL = strings.TrimSuffix(remote, "/")
	return client.New(cfg.Client, nil), nil
}

func requestFromFlags(cmd *cobra.Command) (types.AnalysisRequest, error) {
	fn, _ := cmd.Flags().GetString("function")
	if strings.TrimSpace(fn) == "" {
		return types.AnalysisRequest{}, fmt.Errorf("--function is required (or use --batch)")
	}
	a, _ := cmd.Flags().GetFloat64("a")
	b, _ := cmd.Flags().GetFloat64("b")
	n, _ := cmd.Flags().GetInt("n")
	return types.AnalysisRequest{Function: fn, A: a, B: b, N: n}, nil
}

func runBatch(ctx context.Context, cmd *cobra.Command, an batch.Analyzer, path string) error {
	f, err := batch.ReadFile(path)
	if err != nil {
		return err
	}
	workers, _ := cmd.Flags().GetInt("workers")

	r := &batch.Runner{Analyzer: an, Workers: workers, Progress: cmd.ErrOrStderr()}
	outcomes, err := r.Run(ctx, f.Analyses)
	if err != nil {
		return err
	}

	summary := batch.Summarize(outcomes)
	fmt.Fprintf(cmd.ErrOrStderr(), "\nBatch complete: %d succeeded, %d failed, %d total\n",
		summary.Succeeded, summary.Failed, summary.Total)

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := batch.WriteResults(out, outcomes); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Results written to %s\n", out)
	} else {
		data, err := yaml.Marshal(&batch.ResultFile{Results: outcomes, Summary: summary})
		if err != nil {
			return fmt.Errorf("marshaling results: %w", err)
		}
		cmd.OutOrStdout().Write(data)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d analysis(es) failed", summary.Failed)
	}
	return nil
}

func printAnalysis(w io.Writer, req types.AnalysisRequest, resp *types.AnalysisResponse) {
	fmt.Fprintf(w, "Function:   %s on [%g, %g], n=%d\n", req.Function, req.A, req.B, req.N)
	fmt.Fprintf(w, "Derivative: %s\n", resp.DerivativeInfo.Expression)
	if resp.ReferenceSource != "" {
		fmt.Fprintf(w, "Reference:  %s (%s)\n\n", resp.TrueIntegralValue, resp.ReferenceSource)
	} else {
		fmt.Fprintf(w, "Reference:  %s\n\n", resp.TrueIntegralValue)
	}

	fmt.Fprintf(w, "%-4s  %-12s  %-22s  %s\n", "", "Method", "Estimate", "Abs. error")
	fmt.Fprintln(w, strings.Repeat("-", 56))
	for _, r := range resp.Results {
		marker := ""
		if r.MethodName == resp.BestMethod {
			marker = "*"
		}
		fmt.Fprintf(w, "%-4s  %-12s  %-22s  %s\n", marker, r.MethodName, r.IntegralValue, formatError(r.AbsoluteError))
	}

	fmt.Fprintf(w, "\n%s\n", resp.AnalysisSummary)
}

func formatError(s types.Sample) string {
	v, ok := s.Float64()
	if !ok {
		return "undefined"
	}
	return fmt.Sprintf("%.2e", v)
}

func init() {
	analyzeCmd.Flags().StringP("function", "f", "", "expression in x, e.g. \"sin(x)\" or \"x**2 + 1\"")
	analyzeCmd.Flags().Float64("a", 0, "lower bound of integration")
	analyzeCmd.Flags().Float64("b", 1, "upper bound of integration")
	analyzeCmd.Flags().Int("n", 12, "number of subdivisions")
	analyzeCmd.Flags().Bool("json", false, "output the full response as JSON")
	analyzeCmd.Flags().String("remote", "", "base URL of a quadrature-engine service to run the analysis on")
	analyzeCmd.Flags().Bool("record", false, "journal the analysis in the history database")
	analyzeCmd.Flags().String("batch", "", "YAML batch file of analyses to run")
	analyzeCmd.Flags().String("out", "", "write batch results to this YAML file instead of stdout")
	analyzeCmd.Flags().Int("workers", 0, "concurrent batch analyses (0 = number of CPUs)")

	rootCmd.AddCommand(analyzeCmd)
}
