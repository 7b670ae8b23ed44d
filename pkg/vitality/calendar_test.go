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

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSameCalendarDay_Reflexive(t *testing.T) {
	stamps := []time.Time{
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 15, 23, 59, 59, 0, time.UTC),
		time.Now(),
	}
	for _, ts := range stamps {
		assert.True(t, SameCalendarDay(ts, ts, JSTOffsetMinutes))
	}
}

// TestSameCalendarDay_StraddlesUTCDay covers the interesting case: two
// timestamps 23 hours apart, on different UTC dates, but inside the same
// JST calendar day.
func TestSameCalendarDay_StraddlesUTCDay(t *testing.T) {
	// 15:30 UTC Jan 14 is 00:30 JST Jan 15; 14:30 UTC Jan 15 is 23:30 JST Jan 15.
	a := time.Date(2026, 1, 14, 15, 30, 0, 0, time.UTC)
	b := time.Date(2026, 1, 15, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, 23*time.Hour, b.Sub(a))
	assert.True(t, SameCalendarDay(a, b, JSTOffsetMinutes))
	// Under plain UTC they are different days.
	assert.False(t, SameCalendarDay(a, b, 0))
}

func TestSameCalendarDay_MidnightBoundary(t *testing.T) {
	// 14:59:59 UTC is 23:59:59 JST; 15:00:00 UTC is 00:00:00 JST next day.
	before := time.Date(2026, 1, 15, 14, 59, 59, 0, time.UTC)
	after := time.Date(2026, 1, 15, 15, 0, 0, 0, time.UTC)
	assert.False(t, SameCalendarDay(before, after, JSTOffsetMinutes))
}

// TestSameCalendarDay_LocalZoneIndependent pins the fixed-offset contract:
// the caller's wall-clock zone never changes the verdict.
func TestSameCalendarDay_LocalZoneIndependent(t *testing.T) {
	a := time.Date(2026, 1, 14, 15, 30, 0, 0, time.UTC)
	b := time.Date(2026, 1, 15, 14, 30, 0, 0, time.UTC)

	ny := time.FixedZone("UTC-5", -5*3600)
	assert.True(t, SameCalendarDay(a.In(ny), b.In(ny), JSTOffsetMinutes))
}

func TestIsPreviousCalendarDay(t *testing.T) {
	now := time.Date(2026, 1, 15, 3, 0, 0, 0, time.UTC) // Jan 15 12:00 JST

	yesterday := time.Date(2026, 1, 14, 3, 0, 0, 0, time.UTC)
	assert.True(t, IsPreviousCalendarDay(yesterday, now, JSTOffsetMinutes))

	sameDay := time.Date(2026, 1, 15, 1, 0, 0, 0, time.UTC)
	assert.False(t, IsPreviousCalendarDay(sameDay, now, JSTOffsetMinutes))

	twoDaysAgo := time.Date(2026, 1, 13, 3, 0, 0, 0, time.UTC)
	assert.False(t, IsPreviousCalendarDay(twoDaysAgo, now, JSTOffsetMinutes))
}

func TestCompletedToday(t *testing.T) {
	now := time.Date(2026, 1, 15, 3, 0, 0, 0, time.UTC)

	assert.False(t, CompletedToday(nil, now))

	today := time.Date(2026, 1, 14, 16, 0, 0, 0, time.UTC) // Jan 15 01:00 JST
	assert.True(t, CompletedToday(&today, now))

	priorDay := time.Date(2026, 1, 14, 10, 0, 0, 0, time.UTC) // Jan 14 19:00 JST
	assert.False(t, CompletedToday(&priorDay, now))
}
