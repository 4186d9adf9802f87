// DataLake - Song Play Analytics Star Schema Pipeline
// Copyright 2026 HvyD
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/HvyD/DataLake

// Package catalog derives the songs and artists dimension tables from the
// song metadata records.
package catalog

import "github.com/HvyD/DataLake/internal/models"

// Builder projects song metadata records into the two catalog dimensions.
type Builder struct {
	// DistinctArtists dedups the artists table by artist_id, keeping the
	// first row observed per artist. Off by default: an artist with N
	// cataloged songs yields N identical-keyed rows.
	DistinctArtists bool
}

// Songs projects the songs dimension: one row per catalog record.
// Rows are unique by song_id as long as the source data is; the builder does
// not enforce it.
func (b Builder) Songs(records []models.SongRecord) []models.Song {
	songs := make([]models.Song, 0, len(records))
	for _, r := range records {
		songs = append(songs, models.Song{
			SongID:   deref(r.SongID),
			Title:    deref(r.Title),
			ArtistID: deref(r.ArtistID),
			Year:     r.Year,
			Duration: derefFloat(r.Duration),
		})
	}
	return songs
}

// Artists projects the artists dimension, renaming the artist_* source
// columns to their dimension names.
func (b Builder) Artists(records []models.SongRecord) []models.Artist {
	artists := make([]models.Artist, 0, len(records))
	var seen map[string]bool
	if b.DistinctArtists {
		seen = make(map[string]bool, len(records))
	}

	for _, r := range records {
		id := deref(r.ArtistID)
		if seen != nil {
			if seen[id] {
				continue
			}
			seen[id] = true
		}
		artists = append(artists, models.Artist{
			ArtistID:  id,
			Name:      deref(r.ArtistName),
			Location:  r.ArtistLocation,
			Latitude:  r.ArtistLatitude,
			Longitude: r.ArtistLongitude,
		})
	}
	return artists
}

// deref unwraps a nullable string column; null becomes the empty string.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
