// DataLake - Song Play Analytics Star Schema Pipeline
// Copyright 2026 HvyD
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/HvyD/DataLake

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// validEnv sets the minimum environment for a loadable config and returns
// after registering cleanup.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("INPUT_PATH", "/data/in")
	t.Setenv("OUTPUT_PATH", "/data/out")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIATEST")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
}

func TestLoadDefaults(t *testing.T) {
	validEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Schema.Policy != PolicyNullify {
		t.Errorf("default schema policy = %q, want %q", cfg.Schema.Policy, PolicyNullify)
	}
	if cfg.Catalog.DistinctArtists {
		t.Error("artists dedup should be off by default")
	}
	if cfg.Resolver.DurationTolerance != 0 {
		t.Errorf("default duration tolerance = %v, want 0", cfg.Resolver.DurationTolerance)
	}
	if cfg.Pipeline.ReadConcurrency <= 0 {
		t.Errorf("default read concurrency = %d, want > 0", cfg.Pipeline.ReadConcurrency)
	}
	if cfg.Pipeline.PreviewRows != 5 {
		t.Errorf("default preview rows = %d, want 5", cfg.Pipeline.PreviewRows)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadMissingCredentialsIsFatal(t *testing.T) {
	t.Setenv("INPUT_PATH", "/data/in")
	t.Setenv("OUTPUT_PATH", "/data/out")
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")

	_, err := Load("")
	if err == nil {
		t.Fatal("Load() should fail without storage credentials")
	}
	if !strings.Contains(err.Error(), "required") {
		t.Errorf("error should name the missing requirement, got %v", err)
	}
}

func TestLoadMissingPathsIsFatal(t *testing.T) {
	t.Setenv("INPUT_PATH", "")
	t.Setenv("OUTPUT_PATH", "")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIATEST")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")

	if _, err := Load(""); err == nil {
		t.Fatal("Load() should fail without input/output paths")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	validEnv(t)
	t.Setenv("SCHEMA_POLICY", "drop")
	t.Setenv("CATALOG_DISTINCT_ARTISTS", "true")
	t.Setenv("RESOLVER_DURATION_TOLERANCE", "0.5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Schema.Policy != PolicyDrop {
		t.Errorf("schema policy = %q, want drop", cfg.Schema.Policy)
	}
	if !cfg.Catalog.DistinctArtists {
		t.Error("CATALOG_DISTINCT_ARTISTS=true not applied")
	}
	if cfg.Resolver.DurationTolerance != 0.5 {
		t.Errorf("duration tolerance = %v, want 0.5", cfg.Resolver.DurationTolerance)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadInvalidPolicyRejected(t *testing.T) {
	validEnv(t)
	t.Setenv("SCHEMA_POLICY", "ignore")

	if _, err := Load(""); err == nil {
		t.Fatal("Load() should reject an unknown schema policy")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	validEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "datalake.yaml")
	content := strings.Join([]string{
		"schema:",
		"  policy: fail",
		"resolver:",
		"  duration_tolerance: 0.25",
		"metrics:",
		"  enabled: true",
		"  pushgateway_url: http://localhost:9091",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%s) error: %v", path, err)
	}

	if cfg.Schema.Policy != PolicyFail {
		t.Errorf("schema policy = %q, want fail", cfg.Schema.Policy)
	}
	if cfg.Resolver.DurationTolerance != 0.25 {
		t.Errorf("duration tolerance = %v, want 0.25", cfg.Resolver.DurationTolerance)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.PushgatewayURL != "http://localhost:9091" {
		t.Errorf("metrics config not applied: %+v", cfg.Metrics)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	validEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load() should fail when the explicit config file does not exist")
	}
}

func TestMetricsEnabledRequiresPushgateway(t *testing.T) {
	validEnv(t)
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("METRICS_PUSHGATEWAY_URL", "")

	if _, err := Load(""); err == nil {
		t.Fatal("Load() should fail when metrics are enabled without a Pushgateway URL")
	}
}

func TestExportCredentials(t *testing.T) {
	validEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	if err := cfg.ExportCredentials(); err != nil {
		t.Fatalf("ExportCredentials() error: %v", err)
	}

	if got := os.Getenv("AWS_ACCESS_KEY_ID"); got != "AKIATEST" {
		t.Errorf("AWS_ACCESS_KEY_ID = %q, want AKIATEST", got)
	}
	if got := os.Getenv("AWS_SECRET_ACCESS_KEY"); got != "secret" {
		t.Errorf("AWS_SECRET_ACCESS_KEY = %q, want secret", got)
	}
}
