// DataLake - Song Play Analytics Star Schema Pipeline
// Copyright 2026 HvyD
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/HvyD/DataLake

package warehouse

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/HvyD/DataLake/internal/models"
)

func i32(i int32) *int32 { return &i }

func TestWriteTable_Unpartitioned(t *testing.T) {
	w := NewWriter(t.TempDir())
	users := []models.User{
		{UserID: "10", FirstName: "Sylvie", LastName: "Cruz", Gender: "F", Level: "free"},
		{UserID: "26", FirstName: "Ryan", LastName: "Smith", Gender: "M", Level: "free"},
	}

	n, err := WriteTable(w, "users", users)
	if err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if n != 2 {
		t.Errorf("rows written = %d, want 2", n)
	}

	path := filepath.Join(w.TableDir("users"), "part-00000.parquet")
	got, err := parquet.ReadFile[models.User](path)
	if err != nil {
		t.Fatalf("reading back %s: %v", path, err)
	}
	if len(got) != 2 || got[0] != users[0] || got[1] != users[1] {
		t.Errorf("read back %+v, want %+v", got, users)
	}
}

func TestWriteTable_HivePartitionLayout(t *testing.T) {
	w := NewWriter(t.TempDir())
	songs := []models.Song{
		{SongID: "SO1", Title: "Marry Me", ArtistID: "AR1", Year: i32(2010), Duration: 246.9},
		{SongID: "SO2", Title: "Yellow", ArtistID: "AR2", Year: i32(2000), Duration: 266.7},
	}

	if _, err := WriteTable(w, "songs", songs, "year", "artist_id"); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	for _, rel := range []string{
		"year=2010/artist_id=AR1/part-00000.parquet",
		"year=2000/artist_id=AR2/part-00000.parquet",
	} {
		path := filepath.Join(w.TableDir("songs"), rel)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected partition file %s: %v", rel, err)
		}
	}
}

func TestWriteTable_NullPartitionValue(t *testing.T) {
	w := NewWriter(t.TempDir())
	songs := []models.Song{
		{SongID: "SO1", Title: "Marry Me", ArtistID: "AR1", Duration: 246.9}, // year null
	}

	if _, err := WriteTable(w, "songs", songs, "year", "artist_id"); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	path := filepath.Join(w.TableDir("songs"), "year=__HIVE_DEFAULT_PARTITION__", "artist_id=AR1", "part-00000.parquet")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected null-year partition file: %v", err)
	}
}

func TestWriteTable_OverwriteReplacesTable(t *testing.T) {
	w := NewWriter(t.TempDir())
	first := []models.Song{{SongID: "SO1", Title: "Marry Me", ArtistID: "AR1", Year: i32(2010), Duration: 246.9}}
	second := []models.Song{{SongID: "SO2", Title: "Yellow", ArtistID: "AR2", Year: i32(2000), Duration: 266.7}}

	if _, err := WriteTable(w, "songs", first, "year", "artist_id"); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := WriteTable(w, "songs", second, "year", "artist_id"); err != nil {
		t.Fatalf("second write: %v", err)
	}

	stale := filepath.Join(w.TableDir("songs"), "year=2010")
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale partition %s survived the overwrite", stale)
	}
	fresh := filepath.Join(w.TableDir("songs"), "year=2000", "artist_id=AR2", "part-00000.parquet")
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("expected fresh partition file: %v", err)
	}
}

func TestWriteTable_UnknownPartitionKey(t *testing.T) {
	w := NewWriter(t.TempDir())
	users := []models.User{{UserID: "10"}}

	_, err := WriteTable(w, "users", users, "year")
	if !errors.Is(err, ErrUnknownPartitionColumn) {
		t.Fatalf("err = %v, want ErrUnknownPartitionColumn", err)
	}

	// Nothing may be written when the key check fails.
	if _, statErr := os.Stat(w.TableDir("users")); !os.IsNotExist(statErr) {
		t.Errorf("table directory created despite failed key check")
	}
}

func TestWriteTable_PartitionColumnsRetainedInFile(t *testing.T) {
	w := NewWriter(t.TempDir())
	start := time.Date(2018, 11, 1, 21, 5, 34, 796_000_000, time.UTC)
	plays := []models.SongPlay{{
		StartTime: start,
		UserID:    "10",
		Level:     "free",
		SongID:    "SO1",
		ArtistID:  "AR1",
		Year:      2018,
		Month:     11,
	}}

	if _, err := WriteTable(w, "songplays", plays, "year", "month"); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	path := filepath.Join(w.TableDir("songplays"), "year=2018", "month=11", "part-00000.parquet")
	got, err := parquet.ReadFile[models.SongPlay](path)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("rows = %d, want 1", len(got))
	}
	if got[0].Year != 2018 || got[0].Month != 11 {
		t.Errorf("partition columns in file = %d/%d, want 2018/11", got[0].Year, got[0].Month)
	}
	if !got[0].StartTime.Equal(start) {
		t.Errorf("StartTime = %v, want %v", got[0].StartTime, start)
	}
}

func TestWriteTable_EscapesStringPartitionValues(t *testing.T) {
	w := NewWriter(t.TempDir())
	songs := []models.Song{{SongID: "SO1", Title: "x", ArtistID: "AR 1/2", Year: i32(2010), Duration: 1}}

	if _, err := WriteTable(w, "songs", songs, "artist_id"); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	path := filepath.Join(w.TableDir("songs"), "artist_id=AR%201%2F2", "part-00000.parquet")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected escaped partition directory: %v", err)
	}
}
