// DataLake - Song Play Analytics Star Schema Pipeline
// Copyright 2026 HvyD
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/HvyD/DataLake

// Package main is the entry point for the DataLake pipeline.
//
// DataLake transforms a raw song catalog and user-activity event logs into a
// star-schema analytics dataset: songs, artists, users, and time dimension
// tables plus a songplays fact table, written as partitioned Parquet datasets
// under the configured output root.
//
// # Run Lifecycle
//
// A run executes the following steps:
//
//  1. Configuration: load settings from defaults, config file, and environment
//     variables (Koanf v2), then validate them
//  2. Credentials: export the storage credentials to the process environment
//  3. Extract: read both raw JSON datasets concurrently, validating every
//     record against its schema
//  4. Transform: project the dimension tables and resolve play events against
//     the catalog
//  5. Load: write all five tables, replacing any previous output
//  6. Metrics: optionally push run metrics to a Prometheus Pushgateway
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority
// wins):
//   - Environment variables (INPUT_PATH, OUTPUT_PATH, AWS_ACCESS_KEY_ID, ...)
//   - Config file (datalake.yaml, or -config / CONFIG_PATH)
//   - Built-in defaults
//
// Required settings:
//   - INPUT_PATH: root containing song_data/ and log_data/
//   - OUTPUT_PATH: root the analytics/ tables are written under
//   - AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY: storage credentials
//
// # Example Usage
//
//	export INPUT_PATH=/data/raw
//	export OUTPUT_PATH=/data/lake
//	export AWS_ACCESS_KEY_ID=...
//	export AWS_SECRET_ACCESS_KEY=...
//	./datalake
//
// Validate configuration without running:
//
//	./datalake -config datalake.yaml -validate
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/HvyD/DataLake/internal/config"
	"github.com/HvyD/DataLake/internal/logging"
	"github.com/HvyD/DataLake/internal/metrics"
	"github.com/HvyD/DataLake/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to config file (overrides default search)")
	validateOnly := flag.Bool("validate", false, "validate configuration and exit")
	flag.Parse()

	// Load configuration first to get logging settings
	cfg, err := config.Load(*configPath)
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if *validateOnly {
		logging.Info().Msg("Configuration is valid")
		return
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	// Every log line of a run carries the same run_id.
	runID := uuid.NewString()
	logging.SetLogger(logging.With().Str("run_id", runID).Logger())

	logging.Info().
		Str("input", cfg.Input.Path).
		Str("output", cfg.Output.Path).
		Str("schema_policy", cfg.Schema.Policy).
		Msg("Starting DataLake pipeline")

	if err := cfg.ExportCredentials(); err != nil {
		logging.Fatal().Err(err).Msg("Failed to export storage credentials")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build pipeline")
	}

	stats, err := p.Run(ctx)
	if err != nil {
		logging.Fatal().Err(err).Msg("Pipeline run failed")
	}

	logging.Info().
		Int("song_files", stats.SongFiles).
		Int("log_files", stats.LogFiles).
		Int("songs", stats.Songs).
		Int("artists", stats.Artists).
		Int("users", stats.Users).
		Int("time_rows", stats.Times).
		Int("songplays", stats.SongPlays).
		Int("events_filtered", stats.Filtered).
		Int("plays_unmatched", stats.Unmatched).
		Dur("duration", stats.Duration).
		Msg("Pipeline run complete")

	if cfg.Metrics.Enabled {
		if err := metrics.PushToGateway(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, runID); err != nil {
			// A metrics push failure never fails a completed run.
			logging.Warn().Err(err).Msg("Failed to push metrics")
		} else {
			logging.Info().Str("pushgateway", cfg.Metrics.PushgatewayURL).Msg("Metrics pushed")
		}
	}
}
