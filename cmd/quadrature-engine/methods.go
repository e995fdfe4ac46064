// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/quadrature-engine/internal/quadrature"
	"github.com/pdiddy/quadrature-engine/pkg/types"
)

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List the integration rules and their subdivision requirements",
	Long: `List the integration rules and their subdivision requirements.

With --remote the catalogue is fetched from a quadrature-engine service.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		methods, err := methodsFor(cmd)
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(methods)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-12s  %s\n", "Method", "Requires")
		fmt.Fprintln(w, strings.Repeat("-", 40))
		for _, m := range methods {
			fmt.Fprintf(w, "%-12s  %s\n", m.Name, m.Precondition)
		}
		return nil
	},
}

func methodsFor(cmd *cobra.Command) ([]types.MethodInfo, error) {
	c, err := remoteClient(cmd, loadConfig())
	if err != nil {
		return nil, err
	}
	if c == nil {
		return quadrature.Describe(), nil
	}
	return c.Methods(context.Background())
}

func init() {
	methodsCmd.Flags().Bool("json", false, "output as JSON")
	methodsCmd.Flags().String("remote", "", "base URL of a quadrature-engine service to query")
	rootCmd.AddCommand(methodsCmd)
}
