// DataLake - Song Play Analytics Star Schema Pipeline
// Copyright 2026 HvyD
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/HvyD/DataLake

package schema

import "github.com/HvyD/DataLake/internal/models"

// BindSongRecord converts a coerced song_data row to its typed record.
func BindSongRecord(row Row) models.SongRecord {
	return models.SongRecord{
		NumSongs:        intField(row, "num_songs"),
		ArtistID:        strField(row, "artist_id"),
		ArtistLatitude:  doubleField(row, "artist_latitude"),
		ArtistLongitude: doubleField(row, "artist_longitude"),
		ArtistLocation:  strField(row, "artist_location"),
		ArtistName:      strField(row, "artist_name"),
		SongID:          strField(row, "song_id"),
		Title:           strField(row, "title"),
		Duration:        doubleField(row, "duration"),
		Year:            intField(row, "year"),
	}
}

// BindLogEvent converts a coerced log_data row to its typed record.
func BindLogEvent(row Row) models.LogEvent {
	return models.LogEvent{
		Artist:        strField(row, "artist"),
		Auth:          strField(row, "auth"),
		FirstName:     strField(row, "firstName"),
		Gender:        strField(row, "gender"),
		ItemInSession: intField(row, "itemInSession"),
		LastName:      strField(row, "lastName"),
		Length:        doubleField(row, "length"),
		Level:         strField(row, "level"),
		Location:      strField(row, "location"),
		Method:        strField(row, "method"),
		Page:          strField(row, "page"),
		Registration:  doubleField(row, "registration"),
		SessionID:     intField(row, "sessionId"),
		Song:          strField(row, "song"),
		Status:        intField(row, "status"),
		TS:            longField(row, "ts"),
		UserAgent:     strField(row, "userAgent"),
		UserID:        strField(row, "userId"),
	}
}

// Field accessors rely on the coercion invariant: a coerced row value is
// exactly the field's declared Go type, or nil.

func strField(r Row, name string) *string {
	if v, ok := r[name].(string); ok {
		return &v
	}
	return nil
}

func intField(r Row, name string) *int32 {
	if v, ok := r[name].(int32); ok {
		return &v
	}
	return nil
}

func longField(r Row, name string) *int64 {
	if v, ok := r[name].(int64); ok {
		return &v
	}
	return nil
}

func doubleField(r Row, name string) *float64 {
	if v, ok := r[name].(float64); ok {
		return &v
	}
	return nil
}
