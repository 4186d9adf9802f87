// DataLake - Song Play Analytics Star Schema Pipeline
// Copyright 2026 HvyD
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/HvyD/DataLake

// Package pipeline orchestrates a full run: read both raw datasets, derive the
// four dimension tables and the songplays fact table, and persist them under
// the output root.
//
// The song catalog branch and the activity log branch have no data dependency
// on each other until the fact join, so they run concurrently. Each branch
// reads, transforms, and writes its own tables; the fact join waits for both.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/HvyD/DataLake/internal/activity"
	"github.com/HvyD/DataLake/internal/catalog"
	"github.com/HvyD/DataLake/internal/config"
	"github.com/HvyD/DataLake/internal/logging"
	"github.com/HvyD/DataLake/internal/metrics"
	"github.com/HvyD/DataLake/internal/models"
	"github.com/HvyD/DataLake/internal/resolver"
	"github.com/HvyD/DataLake/internal/schema"
	"github.com/HvyD/DataLake/internal/source"
	"github.com/HvyD/DataLake/internal/warehouse"
)

// Output table names.
const (
	TableSongs     = "songs"
	TableArtists   = "artists"
	TableUsers     = "users"
	TableTime      = "time"
	TableSongPlays = "songplays"
)

// Stats summarizes a completed run.
type Stats struct {
	SongFiles int
	LogFiles  int
	Songs     int
	Artists   int
	Users     int
	Times     int
	SongPlays int
	Filtered  int
	Unmatched int
	Duration  time.Duration
}

// Pipeline runs the full extract-transform-load cycle.
type Pipeline struct {
	cfg    *config.Config
	policy schema.Policy
	writer *warehouse.Writer
}

// New builds a pipeline from validated configuration.
func New(cfg *config.Config) (*Pipeline, error) {
	policy, err := schema.ParsePolicy(cfg.Schema.Policy)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:    cfg,
		policy: policy,
		writer: warehouse.NewWriter(cfg.Output.Path),
	}, nil
}

// Run executes one full pipeline run.
func (p *Pipeline) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	concurrency := p.cfg.Pipeline.ReadConcurrency
	if concurrency < 1 {
		concurrency = runtime.NumCPU()
	}

	var (
		songs   []models.Song
		artists []models.Artist
		plays   []models.PlayEvent
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		songs, artists, err = p.runCatalogBranch(gctx, stats, concurrency)
		return err
	})

	g.Go(func() error {
		var err error
		plays, err = p.runActivityBranch(gctx, stats, concurrency)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := p.runFactJoin(songs, artists, plays, stats); err != nil {
		return nil, err
	}

	metrics.MarkRunComplete()
	stats.Duration = time.Since(start)
	return stats, nil
}

// runCatalogBranch reads the song metadata and writes the songs and artists
// dimensions. The projected tables are returned for the fact join.
func (p *Pipeline) runCatalogBranch(ctx context.Context, stats *Stats, concurrency int) ([]models.Song, []models.Artist, error) {
	readStart := time.Now()
	records, readStats, err := source.ReadSongRecords(ctx, p.cfg.Input.Path, p.policy, concurrency)
	if err != nil {
		return nil, nil, fmt.Errorf("reading song catalog: %w", err)
	}
	metrics.ObserveStage("read_songs", readStart)
	stats.SongFiles = readStats.Files

	b := catalog.Builder{DistinctArtists: p.cfg.Catalog.DistinctArtists}
	songs := b.Songs(records)
	artists := b.Artists(records)

	writeStart := time.Now()
	if stats.Songs, err = warehouse.WriteTable(p.writer, TableSongs, songs, "year", "artist_id"); err != nil {
		return nil, nil, err
	}
	if stats.Artists, err = warehouse.WriteTable(p.writer, TableArtists, artists); err != nil {
		return nil, nil, err
	}
	metrics.ObserveStage("write_catalog", writeStart)

	return songs, artists, nil
}

// runActivityBranch reads the activity logs and writes the users and time
// dimensions. The filtered play events are returned for the fact join.
func (p *Pipeline) runActivityBranch(ctx context.Context, stats *Stats, concurrency int) ([]models.PlayEvent, error) {
	readStart := time.Now()
	events, readStats, err := source.ReadLogEvents(ctx, p.cfg.Input.Path, p.policy, concurrency)
	if err != nil {
		return nil, fmt.Errorf("reading activity logs: %w", err)
	}
	metrics.ObserveStage("read_logs", readStart)
	stats.LogFiles = readStats.Files

	out := activity.Process(events)
	stats.Filtered = out.Filtered

	writeStart := time.Now()
	if stats.Users, err = warehouse.WriteTable(p.writer, TableUsers, out.Users); err != nil {
		return nil, err
	}
	if stats.Times, err = warehouse.WriteTable(p.writer, TableTime, out.Times, "year", "month"); err != nil {
		return nil, err
	}
	metrics.ObserveStage("write_activity", writeStart)

	return out.Plays, nil
}

// runFactJoin resolves play events against the catalog and writes the
// songplays fact table.
func (p *Pipeline) runFactJoin(songs []models.Song, artists []models.Artist, plays []models.PlayEvent, stats *Stats) error {
	resolveStart := time.Now()
	view := resolver.BuildView(songs, artists)
	r := resolver.New(view, resolver.WithinTolerance(p.cfg.Resolver.DurationTolerance))
	rows, unmatched := r.Resolve(plays)
	metrics.ObserveStage("resolve_plays", resolveStart)
	stats.Unmatched = unmatched

	p.preview(rows)

	writeStart := time.Now()
	n, err := warehouse.WriteTable(p.writer, TableSongPlays, rows, "year", "month")
	if err != nil {
		return err
	}
	metrics.ObserveStage("write_songplays", writeStart)
	stats.SongPlays = n

	return nil
}

// preview logs the first configured number of resolved song plays at debug
// level.
func (p *Pipeline) preview(rows []models.SongPlay) {
	n := p.cfg.Pipeline.PreviewRows
	if n > len(rows) {
		n = len(rows)
	}
	for i := 0; i < n; i++ {
		ev := logging.Debug().
			Time("start_time", rows[i].StartTime).
			Str("user_id", rows[i].UserID).
			Str("level", rows[i].Level).
			Str("song_id", rows[i].SongID).
			Str("artist_id", rows[i].ArtistID)
		if rows[i].SessionID != nil {
			ev = ev.Int32("session_id", *rows[i].SessionID)
		}
		ev.Msg("songplay preview")
	}
}
