// DataLake - Song Play Analytics Star Schema Pipeline
// Copyright 2026 HvyD
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/HvyD/DataLake

package models

import "time"

// Song is one row of the songs dimension table.
// Rows are unique by SongID (catalog source data is assumed unique).
type Song struct {
	SongID   string  `parquet:"song_id" json:"song_id"`
	Title    string  `parquet:"title" json:"title"`
	ArtistID string  `parquet:"artist_id" json:"artist_id"`
	Year     *int32  `parquet:"year,optional" json:"year"`
	Duration float64 `parquet:"duration" json:"duration"`
}

// Artist is one row of the artists dimension table.
// The table may contain duplicate ArtistID values: the catalog projection
// emits one artist row per catalog song unless dedup is enabled.
type Artist struct {
	ArtistID  string   `parquet:"artist_id" json:"artist_id"`
	Name      string   `parquet:"name" json:"name"`
	Location  *string  `parquet:"location,optional" json:"location"`
	Latitude  *float64 `parquet:"latitude,optional" json:"latitude"`
	Longitude *float64 `parquet:"longitude,optional" json:"longitude"`
}

// User is one row of the users dimension table. Fully value-typed so rows are
// comparable: deduplication is by full-row equality, which means a user whose
// level changes across events yields one row per observed level.
type User struct {
	UserID    string `parquet:"user_id" json:"user_id"`
	FirstName string `parquet:"first_name" json:"first_name"`
	LastName  string `parquet:"last_name" json:"last_name"`
	Gender    string `parquet:"gender" json:"gender"`
	Level     string `parquet:"level" json:"level"`
}

// TimeEntry is one row of the time dimension table, the decomposition of a
// distinct play timestamp. Weekday is 1=Sunday through 7=Saturday; Week is
// the ISO week of year.
type TimeEntry struct {
	StartTime time.Time `parquet:"start_time,timestamp" json:"start_time"`
	Hour      int32     `parquet:"hour" json:"hour"`
	Day       int32     `parquet:"day" json:"day"`
	Week      int32     `parquet:"week" json:"week"`
	Month     int32     `parquet:"month" json:"month"`
	Year      int32     `parquet:"year" json:"year"`
	Weekday   int32     `parquet:"weekday" json:"weekday"`
}

// NewTimeEntry decomposes a play timestamp into the time dimension row.
func NewTimeEntry(t time.Time) TimeEntry {
	t = t.UTC()
	_, week := t.ISOWeek()
	return TimeEntry{
		StartTime: t,
		Hour:      int32(t.Hour()),
		Day:       int32(t.Day()),
		Week:      int32(week),
		Month:     int32(t.Month()),
		Year:      int32(t.Year()),
		// time.Weekday numbers Sunday=0; the warehouse convention is 1-7.
		Weekday: int32(t.Weekday()) + 1,
	}
}

// SongPlay is one row of the songplays fact table. A row exists only for play
// events that matched a cataloged song on the (title, artist name, duration)
// triple. Year and Month are derived from StartTime before the partitioned
// write; they must be present as columns for the partition keys to resolve.
type SongPlay struct {
	StartTime time.Time `parquet:"start_time,timestamp" json:"start_time"`
	UserID    string    `parquet:"user_id" json:"user_id"`
	Level     string    `parquet:"level" json:"level"`
	SongID    string    `parquet:"song_id" json:"song_id"`
	ArtistID  string    `parquet:"artist_id" json:"artist_id"`
	SessionID *int32    `parquet:"session_id,optional" json:"session_id"`
	Location  *string   `parquet:"location,optional" json:"location"`
	UserAgent *string   `parquet:"user_agent,optional" json:"user_agent"`
	Year      int32     `parquet:"year" json:"year"`
	Month     int32     `parquet:"month" json:"month"`
}
