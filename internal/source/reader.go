// DataLake - Song Play Analytics Star Schema Pipeline
// Copyright 2026 HvyD
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/HvyD/DataLake

// Package source reads the raw JSON event datasets.
//
// Each dataset is a set of files located by a glob over date-partitioned
// directories, one JSON object per line. Files are read with bounded
// concurrency; every record is validated against its schema before it is
// handed to the rest of the pipeline. Record order across files is not
// preserved, which is fine: no downstream operation depends on row order.
package source

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/HvyD/DataLake/internal/logging"
	"github.com/HvyD/DataLake/internal/metrics"
	"github.com/HvyD/DataLake/internal/models"
	"github.com/HvyD/DataLake/internal/schema"
)

// Input dataset globs, relative to the input root. Song metadata is
// partitioned three directory levels deep (by the first letters of the track
// ID), activity logs two levels deep (by year and month).
const (
	SongGlob = "song_data/*/*/*/*.json"
	LogGlob  = "log_data/*/*/*.json"
)

// maxLineBytes bounds a single JSON record line. User agent strings and song
// titles are small; 1MiB leaves ample headroom.
const maxLineBytes = 1 << 20

// Stats summarizes one dataset read.
type Stats struct {
	Files   int
	Records int
	Invalid int
	Dropped int
}

// ReadSongRecords reads and validates the song metadata catalog under root.
func ReadSongRecords(ctx context.Context, root string, policy schema.Policy, concurrency int) ([]models.SongRecord, Stats, error) {
	return readDataset(ctx, root, SongGlob, schema.SongSchema, policy, concurrency, schema.BindSongRecord)
}

// ReadLogEvents reads and validates the user-activity logs under root.
func ReadLogEvents(ctx context.Context, root string, policy schema.Policy, concurrency int) ([]models.LogEvent, Stats, error) {
	return readDataset(ctx, root, LogGlob, schema.LogSchema, policy, concurrency, schema.BindLogEvent)
}

// readDataset globs the dataset files and reads them in parallel, validating
// and binding every record. The bind function runs only on rows the policy
// kept.
func readDataset[T any](
	ctx context.Context,
	root, glob string,
	sch schema.Schema,
	policy schema.Policy,
	concurrency int,
	bind func(schema.Row) T,
) ([]T, Stats, error) {
	paths, err := doublestar.FilepathGlob(filepath.Join(root, glob))
	if err != nil {
		return nil, Stats{}, fmt.Errorf("glob %s: %w", glob, err)
	}
	if len(paths) == 0 {
		return nil, Stats{}, fmt.Errorf("no %s files under %s match %s", sch.Name, root, glob)
	}

	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu      sync.Mutex
		records []T
		stats   = Stats{Files: len(paths)}
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			fileRecords, fileStats, err := readFile(path, sch, policy, bind)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			mu.Lock()
			records = append(records, fileRecords...)
			stats.Records += fileStats.Records
			stats.Invalid += fileStats.Invalid
			stats.Dropped += fileStats.Dropped
			mu.Unlock()

			metrics.FilesRead.WithLabelValues(sch.Name).Inc()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	metrics.RecordsRead.WithLabelValues(sch.Name).Add(float64(stats.Records))
	metrics.RecordsInvalid.WithLabelValues(sch.Name).Add(float64(stats.Invalid))
	metrics.RecordsDropped.WithLabelValues(sch.Name).Add(float64(stats.Dropped))

	logging.Debug().
		Str("dataset", sch.Name).
		Int("files", stats.Files).
		Int("records", stats.Records).
		Int("invalid", stats.Invalid).
		Int("dropped", stats.Dropped).
		Msg("dataset read")

	return records, stats, nil
}

// readFile decodes one JSON-lines file.
func readFile[T any](
	path string,
	sch schema.Schema,
	policy schema.Policy,
	bind func(schema.Row) T,
) ([]T, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, err
	}
	defer f.Close()

	var (
		records []T
		stats   Stats
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			if policy == schema.PolicyFail {
				return nil, Stats{}, fmt.Errorf("line %d: %w", line, err)
			}
			// A line that is not a JSON object cannot be null-filled;
			// it is skipped under both remaining policies.
			stats.Records++
			stats.Invalid++
			stats.Dropped++
			logging.Warn().Str("file", path).Int("line", line).Err(err).Msg("malformed record skipped")
			continue
		}
		stats.Records++

		res, err := sch.Validate(obj, policy)
		if err != nil {
			return nil, Stats{}, fmt.Errorf("line %d: %w", line, err)
		}
		if len(res.Violations) > 0 {
			stats.Invalid++
			logging.Debug().
				Str("file", path).
				Int("line", line).
				Str("dataset", sch.Name).
				Stringers("violations", stringers(res.Violations)).
				Msg("schema violations")
		}
		if res.Dropped {
			stats.Dropped++
			continue
		}

		records = append(records, bind(res.Row))
	}
	if err := scanner.Err(); err != nil {
		return nil, Stats{}, err
	}

	return records, stats, nil
}

func stringers(vs []schema.Violation) []fmt.Stringer {
	out := make([]fmt.Stringer, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}
