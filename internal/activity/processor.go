// DataLake - Song Play Analytics Star Schema Pipeline
// Copyright 2026 HvyD
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/HvyD/DataLake

// Package activity processes the user-activity log events: it keeps only
// song play events, derives the users and time dimension tables, and attaches
// the absolute play timestamp each event's epoch-ms ts decodes to.
package activity

import (
	"time"

	"github.com/HvyD/DataLake/internal/logging"
	"github.com/HvyD/DataLake/internal/metrics"
	"github.com/HvyD/DataLake/internal/models"
)

// PageNextSong is the page value identifying a song play event. Every other
// page (Home, Login, Logout, ...) is discarded.
const PageNextSong = "NextSong"

// Output is the result of processing one activity log dataset.
type Output struct {
	// Plays holds the filtered play events with derived timestamps,
	// consumed by the song play resolver.
	Plays []models.PlayEvent

	// Users is the users dimension, deduplicated by full-row equality.
	// A user whose level changed across events keeps one row per level.
	Users []models.User

	// Times is the time dimension: one row per distinct play timestamp.
	Times []models.TimeEntry

	// Filtered counts events discarded by the page filter.
	Filtered int
}

// Process filters the events and derives the log-side dimension tables.
// Events whose ts survived coercion as null are kept for the users dimension
// but cannot produce a play or a time row.
func Process(events []models.LogEvent) Output {
	out := Output{}
	seenUsers := make(map[models.User]struct{})
	seenTimes := make(map[int64]struct{})

	for _, ev := range events {
		if ev.Page == nil || *ev.Page != PageNextSong {
			out.Filtered++
			continue
		}

		user := models.User{
			UserID:    deref(ev.UserID),
			FirstName: deref(ev.FirstName),
			LastName:  deref(ev.LastName),
			Gender:    deref(ev.Gender),
			Level:     deref(ev.Level),
		}
		if _, ok := seenUsers[user]; !ok {
			seenUsers[user] = struct{}{}
			out.Users = append(out.Users, user)
		}

		if ev.TS == nil {
			logging.Debug().Str("user_id", user.UserID).Msg("play event without timestamp")
			continue
		}

		// ts is UTC epoch milliseconds; no timezone conversion is applied.
		ts := time.UnixMilli(*ev.TS).UTC()
		out.Plays = append(out.Plays, models.PlayEvent{LogEvent: ev, Timestamp: ts})

		if _, ok := seenTimes[*ev.TS]; !ok {
			seenTimes[*ev.TS] = struct{}{}
			out.Times = append(out.Times, models.NewTimeEntry(ts))
		}
	}

	metrics.EventsFiltered.Add(float64(out.Filtered))
	return out
}

// deref unwraps a nullable string column; null becomes the empty string.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
