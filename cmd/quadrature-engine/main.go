// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the quadrature-engine CLI and service.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the quadrature-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "quadrature-engine",
	Short: "Compare numerical integration rules against a reference value",
	Long: `quadrature-engine integrates a function of x over [a, b] with the
Trapezoid, Simpson 1/3, Simpson 3/8, Boole, and Romberg rules, measures each
against a closed-form or high-precision reference value, and reports the most
accurate rule.

Run "serve" for the HTTP service, "analyze" for one-off or batch analyses,
and "history" to inspect journaled results.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := parseLevel(viper.GetString("log_level"))
		if err != nil {
			return err
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./quadrature-engine.yaml or ~/.config/quadrature-engine/quadrature-engine.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("history-dir", "history", "directory holding the analysis journal")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("history.dir", rootCmd.PersistentFlags().Lookup("history-dir"))
	setDefaults()
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("quadrature-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "quadrature-engine"))
		}
	}

	viper.SetEnvPrefix("QUADRATURE_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: use debug, info, warn, or error", s)
	}
	return level, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
