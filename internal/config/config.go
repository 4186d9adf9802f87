// DataLake - Song Play Analytics Star Schema Pipeline
// Copyright 2026 HvyD
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/HvyD/DataLake

// Package config provides layered configuration for the pipeline.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (datalake.yaml) for persistent settings
//  3. Environment Variables: Override any setting
//
// The storage credentials (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY) are treated
// as opaque strings: they are loaded, validated for presence, and exported to the
// process environment for the storage backend. The pipeline core never inspects
// them.
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import (
	"fmt"

	"github.com/HvyD/DataLake/internal/validation"
)

// Coercion policies for records that fail schema validation.
const (
	// PolicyNullify coerces untypeable or missing required fields to null and
	// keeps the record. This is the default.
	PolicyNullify = "nullify"

	// PolicyDrop rejects any record with a schema violation.
	PolicyDrop = "drop"

	// PolicyFail aborts the whole run on the first schema violation.
	PolicyFail = "fail"
)

// Config holds all pipeline configuration.
type Config struct {
	Input    InputConfig    `koanf:"input"`
	Output   OutputConfig   `koanf:"output"`
	Storage  StorageConfig  `koanf:"storage"`
	Schema   SchemaConfig   `koanf:"schema"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Resolver ResolverConfig `koanf:"resolver"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// InputConfig locates the raw JSON event sources. The song and log datasets are
// discovered under this root by fixed date-partitioned globs.
type InputConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// OutputConfig locates the analytics output root. Each table is written under
// <path>/analytics/<table>.
type OutputConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// StorageConfig carries the storage backend credentials. Both values are
// opaque to the pipeline; a missing credential is a fatal startup error.
type StorageConfig struct {
	AccessKeyID     string `koanf:"access_key_id" validate:"required"`
	SecretAccessKey string `koanf:"secret_access_key" validate:"required"`
}

// SchemaConfig selects the coercion policy applied to records that fail
// schema validation.
type SchemaConfig struct {
	Policy string `koanf:"policy" validate:"oneof=nullify drop fail"`
}

// CatalogConfig tunes the song catalog projections.
type CatalogConfig struct {
	// DistinctArtists enables dedup of the artists table by artist_id.
	// Off by default: the catalog projection emits one artist row per song.
	DistinctArtists bool `koanf:"distinct_artists"`
}

// ResolverConfig tunes the song play join.
type ResolverConfig struct {
	// DurationTolerance is the maximum absolute difference (seconds) allowed
	// between event length and catalog duration. 0 means exact equality.
	DurationTolerance float64 `koanf:"duration_tolerance" validate:"gte=0"`
}

// PipelineConfig tunes execution of a run.
type PipelineConfig struct {
	// ReadConcurrency bounds the number of input files read in parallel.
	// 0 = use runtime.NumCPU()
	ReadConcurrency int `koanf:"read_concurrency" validate:"gte=0"`

	// PreviewRows is the number of resolved song plays logged at debug level
	// after the fact join.
	PreviewRows int `koanf:"preview_rows" validate:"gte=0"`
}

// MetricsConfig controls Prometheus metrics export. Batch runs push to a
// Pushgateway on completion instead of exposing a scrape endpoint.
type MetricsConfig struct {
	Enabled        bool   `koanf:"enabled"`
	PushgatewayURL string `koanf:"pushgateway_url" validate:"omitempty,url"`
	Job            string `koanf:"job"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Validate checks that required configuration is present and valid.
// Missing storage credentials or path roots are fatal: the run must not
// start without them.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if c.Metrics.Enabled && c.Metrics.PushgatewayURL == "" {
		return fmt.Errorf("METRICS_PUSHGATEWAY_URL is required when METRICS_ENABLED=true")
	}

	return nil
}
