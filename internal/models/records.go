// DataLake - Song Play Analytics Star Schema Pipeline
// Copyright 2026 HvyD
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/HvyD/DataLake

// Package models defines the typed input records and the star-schema output
// rows of the pipeline.
//
// Input records use pointer fields throughout: every field of a raw JSON
// record is nullable after schema coercion, because the permissive coercion
// policy turns type mismatches into nulls instead of rejecting the record.
//
// Output rows use value fields for the mandatory columns and pointer fields
// for columns that are nullable in the source schema. Dimension rows that are
// deduplicated by full-row equality (User, TimeEntry) are fully value-typed so
// they are comparable.
package models

import "time"

// SongRecord is one validated record of the song metadata catalog.
type SongRecord struct {
	NumSongs        *int32   `json:"num_songs"`
	ArtistID        *string  `json:"artist_id"`
	ArtistLatitude  *float64 `json:"artist_latitude"`
	ArtistLongitude *float64 `json:"artist_longitude"`
	ArtistLocation  *string  `json:"artist_location"`
	ArtistName      *string  `json:"artist_name"`
	SongID          *string  `json:"song_id"`
	Title           *string  `json:"title"`
	Duration        *float64 `json:"duration"`
	Year            *int32   `json:"year"`
}

// LogEvent is one validated user-activity event. The field set is the full
// event payload emitted by the app, not just the columns the star schema
// projects.
type LogEvent struct {
	Artist        *string  `json:"artist"`
	Auth          *string  `json:"auth"`
	FirstName     *string  `json:"firstName"`
	Gender        *string  `json:"gender"`
	ItemInSession *int32   `json:"itemInSession"`
	LastName      *string  `json:"lastName"`
	Length        *float64 `json:"length"`
	Level         *string  `json:"level"`
	Location      *string  `json:"location"`
	Method        *string  `json:"method"`
	Page          *string  `json:"page"`
	Registration  *float64 `json:"registration"`
	SessionID     *int32   `json:"sessionId"`
	Song          *string  `json:"song"`
	Status        *int32   `json:"status"`
	TS            *int64   `json:"ts"`
	UserAgent     *string  `json:"userAgent"`
	UserID        *string  `json:"userId"`
}

// PlayEvent is a filtered NextSong event with its derived absolute timestamp.
// It is the unit of work flowing from the activity log processor into the
// song play resolver.
type PlayEvent struct {
	LogEvent

	// Timestamp is ts converted from epoch milliseconds, UTC. No timezone
	// conversion is applied.
	Timestamp time.Time
}
