// DataLake - Song Play Analytics Star Schema Pipeline
// Copyright 2026 HvyD
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/HvyD/DataLake

// Package resolver joins filtered play events against the song catalog to
// produce the songplays fact table.
//
// The join is an inner join on the triple (event.song == title,
// event.artist == artist name, event.length == duration): play events with no
// match are dropped from the fact table. Because that loss is silent in the
// data, the resolver counts every unmatched event and reports the count to
// the caller and to the metrics registry.
//
// Duration comparison is a pluggable predicate. The default is exact
// floating-point equality, which is strict in the face of catalog/log
// re-encoding differences; a tolerance-based predicate can be swapped in
// through configuration without touching the join itself.
package resolver

import (
	"math"

	"github.com/HvyD/DataLake/internal/metrics"
	"github.com/HvyD/DataLake/internal/models"
)

// CatalogEntry is one row of the song-artist join view: songs joined to
// artists on artist_id, keeping the columns the play join needs.
type CatalogEntry struct {
	SongID     string
	Title      string
	ArtistID   string
	ArtistName string
	Duration   float64
}

// BuildView inner-joins the songs and artists dimensions on artist_id.
// Artists are not necessarily unique by artist_id; an artist with N rows
// yields N view entries per song, and consequently N fact rows per matching
// play. Enable catalog.distinct_artists to collapse it.
func BuildView(songs []models.Song, artists []models.Artist) []CatalogEntry {
	byID := make(map[string][]models.Artist, len(artists))
	for _, a := range artists {
		byID[a.ArtistID] = append(byID[a.ArtistID], a)
	}

	view := make([]CatalogEntry, 0, len(songs))
	for _, s := range songs {
		for _, a := range byID[s.ArtistID] {
			view = append(view, CatalogEntry{
				SongID:     s.SongID,
				Title:      s.Title,
				ArtistID:   a.ArtistID,
				ArtistName: a.Name,
				Duration:   s.Duration,
			})
		}
	}
	return view
}

// DurationPredicate decides whether an event length matches a catalog
// duration.
type DurationPredicate func(eventLength, catalogDuration float64) bool

// ExactDuration is the default predicate: exact float64 equality.
func ExactDuration(eventLength, catalogDuration float64) bool {
	return eventLength == catalogDuration
}

// WithinTolerance returns a predicate accepting an absolute difference of up
// to tol seconds. WithinTolerance(0) behaves like ExactDuration.
func WithinTolerance(tol float64) DurationPredicate {
	if tol == 0 {
		return ExactDuration
	}
	return func(eventLength, catalogDuration float64) bool {
		return math.Abs(eventLength-catalogDuration) <= tol
	}
}

// viewKey is the hash-join key. Duration is excluded so the predicate can be
// tolerance-based; candidates sharing (title, artist) are filtered by the
// predicate afterwards.
type viewKey struct {
	title  string
	artist string
}

// Resolver resolves play events to concrete song/artist identities.
type Resolver struct {
	index map[viewKey][]CatalogEntry
	match DurationPredicate
}

// New builds a resolver over the song-artist join view.
// A nil predicate means ExactDuration.
func New(view []CatalogEntry, match DurationPredicate) *Resolver {
	if match == nil {
		match = ExactDuration
	}
	index := make(map[viewKey][]CatalogEntry, len(view))
	for _, e := range view {
		k := viewKey{title: e.Title, artist: e.ArtistName}
		index[k] = append(index[k], e)
	}
	return &Resolver{index: index, match: match}
}

// Resolve joins the play events against the catalog view and returns the
// fact rows plus the count of unmatched events. The year and month partition
// columns are derived from the play timestamp here, before any write.
func (r *Resolver) Resolve(plays []models.PlayEvent) ([]models.SongPlay, int) {
	var (
		rows      []models.SongPlay
		unmatched int
	)

	for _, p := range plays {
		matched := false
		if p.Song != nil && p.Artist != nil && p.Length != nil {
			for _, e := range r.index[viewKey{title: *p.Song, artist: *p.Artist}] {
				if !r.match(*p.Length, e.Duration) {
					continue
				}
				matched = true
				rows = append(rows, models.SongPlay{
					StartTime: p.Timestamp,
					UserID:    deref(p.UserID),
					Level:     deref(p.Level),
					SongID:    e.SongID,
					ArtistID:  e.ArtistID,
					SessionID: p.SessionID,
					Location:  p.Location,
					UserAgent: p.UserAgent,
					Year:      int32(p.Timestamp.Year()),
					Month:     int32(p.Timestamp.Month()),
				})
			}
		}
		if matched {
			metrics.PlaysMatched.Inc()
		} else {
			unmatched++
		}
	}

	metrics.PlaysUnmatched.Add(float64(unmatched))
	return rows, unmatched
}

// deref unwraps a nullable string column; null becomes the empty string.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
