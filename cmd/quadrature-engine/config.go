// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/viper"

	"github.com/pdiddy/quadrature-engine/internal/server"
	"github.com/pdiddy/quadrature-engine/pkg/types"
)

func setDefaults() {
	srv := server.DefaultConfig()
	viper.SetDefault("server.addr", srv.Addr)
	viper.SetDefault("server.allowed_origins", srv.AllowedOrigins)
	viper.SetDefault("server.request_timeout", srv.RequestTimeout)
	viper.SetDefault("server.rate_limit", srv.RateLimit)
	viper.SetDefault("server.rate_burst", srv.RateBurst)
	viper.SetDefault("server.trace_stdout", false)

	an := types.DefaultAnalysisConfig()
	viper.SetDefault("analysis.plot_points", an.PlotPoints)
	viper.SetDefault("analysis.max_subdivisions", an.MaxSubdivisions)
	viper.SetDefault("analysis.fallback_depth", an.FallbackDepth)

	viper.SetDefault("history.dir", "history")
	viper.SetDefault("history.enabled", false)
	viper.SetDefault("history.max_results", 20)

	viper.SetDefault("client.server_url", "http://localhost:8000")
	viper.SetDefault("client.max_retries", 5)
	viper.SetDefault("client.timeout", "60s")
	viper.SetDefault("client.user_agent", "quadrature-engine/"+version)
}

// loadConfig snapshots the merged flag, env, file, and default settings.
func loadConfig() types.Config {
	return types.Config{
		Server: types.ServerConfig{
			Addr:           viper.GetString("server.addr"),
			AllowedOrigins: viper.GetStringSlice("server.allowed_origins"),
			RequestTimeout: viper.GetDuration("server.request_timeout"),
			RateLimit:      viper.GetFloat64("server.rate_limit"),
			RateBurst:      viper.GetInt("server.rate_burst"),
			TraceStdout:    viper.GetBool("server.trace_stdout"),
		},
		Analysis: types.AnalysisConfig{
			PlotPoints:      viper.GetInt("analysis.plot_points"),
			MaxSubdivisions: viper.GetInt("analysis.max_subdivisions"),
			FallbackDepth:   viper.GetInt("analysis.fallback_depth"),
		},
		History: types.HistoryConfig{
			Dir:        viper.GetString("history.dir"),
			Enabled:    viper.GetBool("history.enabled"),
			MaxResults: viper.GetInt("history.max_results"),
		},
		Client: types.ClientConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("client.timeout"),
				UserAgent: viper.GetString("client.user_agent"),
			},
			ServerURL:  viper.GetString("client.server_url"),
			MaxRetries: viper.GetInt("client.max_retries"),
		},
	}
}
