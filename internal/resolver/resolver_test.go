// DataLake - Song Play Analytics Star Schema Pipeline
// Copyright 2026 HvyD
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/HvyD/DataLake

package resolver

import (
	"testing"
	"time"

	"github.com/HvyD/DataLake/internal/models"
)

func str(s string) *string   { return &s }
func f64(f float64) *float64 { return &f }
func i32(i int32) *int32     { return &i }

var playTime = time.Date(2018, 11, 1, 21, 5, 34, 796_000_000, time.UTC)

// play builds a play event for the given song triple.
func play(song, artist string, length float64) models.PlayEvent {
	return models.PlayEvent{
		LogEvent: models.LogEvent{
			Song:      str(song),
			Artist:    str(artist),
			Length:    f64(length),
			UserID:    str("10"),
			Level:     str("free"),
			SessionID: i32(345),
			Location:  str("San Francisco"),
			UserAgent: str("Mozilla/5.0"),
		},
		Timestamp: playTime,
	}
}

// catalogView returns a view with one entry for Marry Me by Train.
func catalogView() []CatalogEntry {
	songs := []models.Song{{SongID: "SO1", Title: "Marry Me", ArtistID: "AR1", Duration: 246.9}}
	artists := []models.Artist{{ArtistID: "AR1", Name: "Train"}}
	return BuildView(songs, artists)
}

func TestBuildView_JoinOnArtistID(t *testing.T) {
	songs := []models.Song{
		{SongID: "SO1", Title: "Marry Me", ArtistID: "AR1", Duration: 246.9},
		{SongID: "SO2", Title: "Orphan Song", ArtistID: "AR9", Duration: 100},
	}
	artists := []models.Artist{{ArtistID: "AR1", Name: "Train"}}

	view := BuildView(songs, artists)
	if len(view) != 1 {
		t.Fatalf("view = %d entries, want 1 (inner join drops orphan song)", len(view))
	}
	e := view[0]
	if e.SongID != "SO1" || e.ArtistName != "Train" || e.Duration != 246.9 {
		t.Errorf("unexpected view entry %+v", e)
	}
}

func TestBuildView_DuplicateArtistsFanOut(t *testing.T) {
	// Without distinct artists the view carries one entry per artist row.
	songs := []models.Song{{SongID: "SO1", Title: "Marry Me", ArtistID: "AR1", Duration: 246.9}}
	artists := []models.Artist{
		{ArtistID: "AR1", Name: "Train"},
		{ArtistID: "AR1", Name: "Train"},
	}

	view := BuildView(songs, artists)
	if len(view) != 2 {
		t.Errorf("view = %d entries, want 2 for duplicate artist rows", len(view))
	}
}

func TestResolve_ExactTripleMatch(t *testing.T) {
	r := New(catalogView(), nil)

	rows, unmatched := r.Resolve([]models.PlayEvent{play("Marry Me", "Train", 246.9)})
	if unmatched != 0 {
		t.Errorf("unmatched = %d, want 0", unmatched)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}

	got := rows[0]
	if got.SongID != "SO1" || got.ArtistID != "AR1" {
		t.Errorf("resolved identity = %s/%s, want SO1/AR1", got.SongID, got.ArtistID)
	}
	if got.UserID != "10" || got.Level != "free" {
		t.Errorf("unexpected event columns %+v", got)
	}
	if !got.StartTime.Equal(playTime) {
		t.Errorf("StartTime = %v, want %v", got.StartTime, playTime)
	}
	if got.SessionID == nil || *got.SessionID != 345 {
		t.Errorf("SessionID = %v, want 345", got.SessionID)
	}
}

func TestResolve_PartitionColumnsDerived(t *testing.T) {
	r := New(catalogView(), nil)

	rows, _ := r.Resolve([]models.PlayEvent{play("Marry Me", "Train", 246.9)})
	if len(rows) != 1 {
		t.Fatal("expected one fact row")
	}
	if rows[0].Year != 2018 || rows[0].Month != 11 {
		t.Errorf("partition columns = %d/%d, want 2018/11", rows[0].Year, rows[0].Month)
	}
}

func TestResolve_AnyFieldMismatchDropsEvent(t *testing.T) {
	tests := []struct {
		name  string
		event models.PlayEvent
	}{
		{"wrong title", play("Marry You", "Train", 246.9)},
		{"wrong artist", play("Marry Me", "Bruno Mars", 246.9)},
		{"duration off by epsilon", play("Marry Me", "Train", 246.90001)},
		{"duration rounded", play("Marry Me", "Train", 247)},
	}

	r := New(catalogView(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, unmatched := r.Resolve([]models.PlayEvent{tt.event})
			if len(rows) != 0 {
				t.Errorf("rows = %d, want 0", len(rows))
			}
			if unmatched != 1 {
				t.Errorf("unmatched = %d, want 1", unmatched)
			}
		})
	}
}

func TestResolve_NullJoinFieldsUnmatched(t *testing.T) {
	ev := play("Marry Me", "Train", 246.9)
	ev.Length = nil

	r := New(catalogView(), nil)
	rows, unmatched := r.Resolve([]models.PlayEvent{ev})
	if len(rows) != 0 || unmatched != 1 {
		t.Errorf("rows/unmatched = %d/%d, want 0/1 for null join field", len(rows), unmatched)
	}
}

func TestResolve_ToleranceVariant(t *testing.T) {
	r := New(catalogView(), WithinTolerance(0.5))

	rows, unmatched := r.Resolve([]models.PlayEvent{play("Marry Me", "Train", 247.0)})
	if len(rows) != 1 || unmatched != 0 {
		t.Errorf("rows/unmatched = %d/%d, want 1/0 within tolerance", len(rows), unmatched)
	}

	rows, unmatched = r.Resolve([]models.PlayEvent{play("Marry Me", "Train", 250.0)})
	if len(rows) != 0 || unmatched != 1 {
		t.Errorf("rows/unmatched = %d/%d, want 0/1 beyond tolerance", len(rows), unmatched)
	}
}

func TestResolve_DuplicateArtistsDuplicateFacts(t *testing.T) {
	songs := []models.Song{{SongID: "SO1", Title: "Marry Me", ArtistID: "AR1", Duration: 246.9}}
	artists := []models.Artist{
		{ArtistID: "AR1", Name: "Train"},
		{ArtistID: "AR1", Name: "Train"},
	}
	r := New(BuildView(songs, artists), nil)

	rows, unmatched := r.Resolve([]models.PlayEvent{play("Marry Me", "Train", 246.9)})
	if unmatched != 0 {
		t.Errorf("unmatched = %d, want 0", unmatched)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %d, want 2 (join fan-out over duplicate artist rows)", len(rows))
	}
}
