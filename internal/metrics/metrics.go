// DataLake - Song Play Analytics Star Schema Pipeline
// Copyright 2026 HvyD
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/HvyD/DataLake

// Package metrics provides Prometheus instrumentation for pipeline runs.
//
// The pipeline is a batch job, so metrics are pushed to a Pushgateway at the
// end of a run (grouped by job and run_id) instead of being exposed on a
// scrape endpoint.
//
// Available metrics:
//   - etl_files_read_total{dataset}: input files read per dataset
//   - etl_records_read_total{dataset}: raw records decoded per dataset
//   - etl_records_invalid_total{dataset}: records with schema violations
//   - etl_records_dropped_total{dataset}: records rejected by the drop policy
//   - etl_events_filtered_total: log events discarded by the NextSong filter
//   - etl_plays_matched_total: play events resolved to a cataloged song
//   - etl_plays_unmatched_total: play events silently absent from the fact
//     table for lack of an exact catalog match
//   - etl_rows_written_total{table}: rows persisted per output table
//   - etl_stage_duration_seconds{stage}: wall time per pipeline stage
//
// Label cardinality is bounded: dataset ∈ {song_data, log_data}, table is one
// of the five output tables, stage is one of the fixed pipeline stages.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FilesRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_files_read_total",
			Help: "Total number of input files read",
		},
		[]string{"dataset"},
	)

	RecordsRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_records_read_total",
			Help: "Total number of raw records decoded",
		},
		[]string{"dataset"},
	)

	RecordsInvalid = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_records_invalid_total",
			Help: "Total number of records with at least one schema violation",
		},
		[]string{"dataset"},
	)

	RecordsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_records_dropped_total",
			Help: "Total number of records rejected by the schema policy",
		},
		[]string{"dataset"},
	)

	EventsFiltered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "etl_events_filtered_total",
			Help: "Total number of log events discarded by the NextSong page filter",
		},
	)

	PlaysMatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "etl_plays_matched_total",
			Help: "Total number of play events resolved to a cataloged song",
		},
	)

	// PlaysUnmatched surfaces the silent data loss of the inner join: play
	// events with no exact (title, artist, duration) catalog match.
	PlaysUnmatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "etl_plays_unmatched_total",
			Help: "Total number of play events dropped from the fact table for lack of a catalog match",
		},
	)

	RowsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_rows_written_total",
			Help: "Total number of rows persisted per output table",
		},
		[]string{"table"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "etl_stage_duration_seconds",
			Help:    "Wall time per pipeline stage in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)

	LastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "etl_last_run_timestamp_seconds",
			Help: "Unix timestamp of the last completed run",
		},
	)
)

// ObserveStage records the duration of a pipeline stage.
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// MarkRunComplete records the completion time of a run.
func MarkRunComplete() {
	LastRunTimestamp.SetToCurrentTime()
}
