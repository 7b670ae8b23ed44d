// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package vitality

import "time"

// JSTOffsetMinutes is the fixed calendar offset (+09:00) used for all
// "completed today" decisions. Habit day boundaries follow this frame
// regardless of the process-local timezone.
const JSTOffsetMinutes = 9 * 60

// SameCalendarDay reports whether a and b fall on the same calendar day
// once both are shifted into the fixed-offset frame.
//
// The comparison is date-only and never consults the local zone, so two
// clients in different timezones always agree on a habit's day boundary.
func SameCalendarDay(a, b time.Time, offsetMinutes int) bool {
	zone := time.FixedZone("fixed", offsetMinutes*60)
	ay, am, ad := a.In(zone).Date()
	by, bm, bd := b.In(zone).Date()
	return ay == by && am == bm && ad == bd
}

// IsPreviousCalendarDay reports whether ts falls on the calendar day
// immediately before now in the fixed-offset frame. The backend uses this
// for streak continuation: completed yesterday means the streak continues,
// anything older resets it.
func IsPreviousCalendarDay(ts, now time.Time, offsetMinutes int) bool {
	return SameCalendarDay(ts, now.AddDate(0, 0, -1), offsetMinutes)
}

// CompletedToday reports whether a habit's last completion timestamp falls
// on today's JST calendar day. A nil timestamp means never completed.
func CompletedToday(lastCompletedAt *time.Time, now time.Time) bool {
	if lastCompletedAt == nil {
		return false
	}
	return SameCalendarDay(*lastCompletedAt, now, JSTOffsetMinutes)
}
