// DataLake - Song Play Analytics Star Schema Pipeline
// Copyright 2026 HvyD
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/HvyD/DataLake

package schema

// SongSchema declares the shape of one song metadata record.
// song_id, title, artist_id, artist_name and duration are mandatory.
var SongSchema = Schema{
	Name: "song_data",
	Fields: []Field{
		{Name: "num_songs", Type: TypeInt},
		{Name: "artist_id", Type: TypeString, Required: true},
		{Name: "artist_latitude", Type: TypeDouble},
		{Name: "artist_longitude", Type: TypeDouble},
		{Name: "artist_location", Type: TypeString},
		{Name: "artist_name", Type: TypeString, Required: true},
		{Name: "song_id", Type: TypeString, Required: true},
		{Name: "title", Type: TypeString, Required: true},
		{Name: "duration", Type: TypeDouble, Required: true},
		{Name: "year", Type: TypeInt},
	},
}

// LogSchema declares the shape of one user-activity log event.
// ts is epoch milliseconds.
var LogSchema = Schema{
	Name: "log_data",
	Fields: []Field{
		{Name: "artist", Type: TypeString, Required: true},
		{Name: "auth", Type: TypeString},
		{Name: "firstName", Type: TypeString, Required: true},
		{Name: "gender", Type: TypeString, Required: true},
		{Name: "itemInSession", Type: TypeInt},
		{Name: "lastName", Type: TypeString, Required: true},
		{Name: "length", Type: TypeDouble, Required: true},
		{Name: "level", Type: TypeString},
		{Name: "location", Type: TypeString},
		{Name: "method", Type: TypeString},
		{Name: "page", Type: TypeString},
		{Name: "registration", Type: TypeDouble},
		{Name: "sessionId", Type: TypeInt},
		{Name: "song", Type: TypeString, Required: true},
		{Name: "status", Type: TypeInt},
		{Name: "ts", Type: TypeLong, Required: true},
		{Name: "userAgent", Type: TypeString},
		{Name: "userId", Type: TypeString, Required: true},
	},
}
