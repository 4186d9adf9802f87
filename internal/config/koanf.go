// DataLake - Song Play Analytics Star Schema Pipeline
// Copyright 2026 HvyD
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/HvyD/DataLake

package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"datalake.yaml",
	"datalake.yml",
	"/etc/datalake/datalake.yaml",
	"/etc/datalake/datalake.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// Defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Path: "",
		},
		Output: OutputConfig{
			Path: "",
		},
		Storage: StorageConfig{
			AccessKeyID:     "",
			SecretAccessKey: "",
		},
		Schema: SchemaConfig{
			Policy: PolicyNullify, // coerce to null, keep the record
		},
		Catalog: CatalogConfig{
			DistinctArtists: false, // one artist row per source song
		},
		Resolver: ResolverConfig{
			DurationTolerance: 0, // exact float equality on duration
		},
		Pipeline: PipelineConfig{
			ReadConcurrency: runtime.NumCPU(),
			PreviewRows:     5,
		},
		Metrics: MetricsConfig{
			Enabled:        false,
			PushgatewayURL: "",
			Job:            "datalake_etl",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in defaults
//  2. Config File: optional YAML config file (if exists)
//  3. Environment Variables: override any setting
//
// path overrides the config file search when non-empty (the -config flag).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional unless explicitly requested)
	configPath := path
	if configPath == "" {
		configPath = findConfigFile()
	} else if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - INPUT_PATH -> input.path
//   - AWS_ACCESS_KEY_ID -> storage.access_key_id
//   - SCHEMA_POLICY -> schema.policy
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Path roots
		"input_path":  "input.path",
		"output_path": "output.path",

		// Storage credentials (standard AWS variable names)
		"aws_access_key_id":     "storage.access_key_id",
		"aws_secret_access_key": "storage.secret_access_key",

		// Schema registry
		"schema_policy": "schema.policy",

		// Catalog builder
		"catalog_distinct_artists": "catalog.distinct_artists",

		// Song play resolver
		"resolver_duration_tolerance": "resolver.duration_tolerance",

		// Pipeline execution
		"pipeline_read_concurrency": "pipeline.read_concurrency",
		"pipeline_preview_rows":     "pipeline.preview_rows",

		// Metrics
		"metrics_enabled":         "metrics.enabled",
		"metrics_pushgateway_url": "metrics.pushgateway_url",
		"metrics_job":             "metrics.job",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped so random environment variables do not
	// pollute the config.
	return ""
}

// ExportCredentials publishes the storage credentials to the process
// environment for the storage backend. The values are never inspected.
func (c *Config) ExportCredentials() error {
	if err := os.Setenv("AWS_ACCESS_KEY_ID", c.Storage.AccessKeyID); err != nil {
		return fmt.Errorf("export access key: %w", err)
	}
	if err := os.Setenv("AWS_SECRET_ACCESS_KEY", c.Storage.SecretAccessKey); err != nil {
		return fmt.Errorf("export secret key: %w", err)
	}
	return nil
}
