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
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

var fixtureNow = time.Date(2026, 2, 10, 6, 0, 0, 0, time.UTC) // Feb 10 15:00 JST

func fixtureState() State {
	return State{
		Subject: Subject{
			ID:     "pet-1",
			UserID: "user-1",
			Name:   "SUBJECT_07",
			HP:     50,
			MaxHP:  100,
			Status: StatusAlive,
		},
		Tasks: []Task{
			{ID: "t-2", UserID: "user-1", Title: "ship release", Priority: PriorityHigh, CreatedAt: fixtureNow.Add(-1 * time.Hour)},
			{ID: "t-1", UserID: "user-1", Title: "write report", Priority: PriorityLow, CreatedAt: fixtureNow.Add(-2 * time.Hour)},
		},
		Habits: []Habit{
			{ID: "h-1", UserID: "user-1", Title: "morning run", Streak: 3, CreatedAt: fixtureNow.Add(-72 * time.Hour)},
		},
	}
}

// =============================================================================
// UNIT TESTS: Apply
// =============================================================================

func TestApply_DoesNotMutateInput(t *testing.T) {
	original := fixtureState()
	snapshot := original.Clone()

	_, _, _, err := Apply(original, CompleteTask("t-2"))
	require.NoError(t, err)

	assert.Equal(t, snapshot, original, "input state must be untouched")
}

func TestApply_CompleteTask_HealByPriority(t *testing.T) {
	tests := []struct {
		priority Priority
		heal     float64
	}{
		{PriorityLow, 3},
		{PriorityMedium, 5},
		{PriorityHigh, 8},
		{PriorityCritical, 12},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			st := fixtureState()
			st.Tasks[0].Priority = tt.priority

			next, _, effect, err := Apply(st, CompleteTask("t-2"))
			require.NoError(t, err)

			assert.Equal(t, tt.heal, effect.HPDelta)
			assert.Equal(t, 50+tt.heal, next.Subject.HP)
			_, found := next.FindTask("t-2")
			assert.False(t, found, "completed task leaves the active set")
			assert.Len(t, next.Tasks, 1)
		})
	}
}

func TestApply_CompleteTask_RoundTrip(t *testing.T) {
	st := fixtureState()

	next, inverse, _, err := Apply(st, CompleteTask("t-2"))
	require.NoError(t, err)

	restored, _, _, err := Apply(next, inverse)
	require.NoError(t, err)

	assert.Equal(t, st, restored, "inverse must reproduce the original state exactly")
}

func TestApply_DeleteTask_RoundTrip(t *testing.T) {
	st := fixtureState()

	next, inverse, effect, err := Apply(st, DeleteTask("t-1"))
	require.NoError(t, err)
	assert.Zero(t, effect.HPDelta, "deletion has no HP effect")
	assert.Len(t, next.Tasks, 1)

	restored, _, _, err := Apply(next, inverse)
	require.NoError(t, err)
	assert.Equal(t, st, restored)
}

func TestApply_DeleteHabit_RoundTrip(t *testing.T) {
	st := fixtureState()

	next, inverse, _, err := Apply(st, DeleteHabit("h-1"))
	require.NoError(t, err)
	assert.Empty(t, next.Habits)

	restored, _, _, err := Apply(next, inverse)
	require.NoError(t, err)
	assert.Equal(t, st, restored)
}

func TestApply_ToggleHabit_CheckThenUncheck(t *testing.T) {
	st := fixtureState()

	// First toggle: not completed today -> check.
	checked, _, effect, err := Apply(st, ToggleHabit("h-1", fixtureNow))
	require.NoError(t, err)

	h, _ := checked.FindHabit("h-1")
	assert.Equal(t, 4, h.Streak)
	require.NotNil(t, h.LastCompletedAt)
	assert.Equal(t, fixtureNow, *h.LastCompletedAt)
	assert.Equal(t, HabitHealAmount, effect.HPDelta)
	assert.True(t, effect.Checked)
	assert.Equal(t, 60.0, checked.Subject.HP)

	// Second toggle: completed today -> uncheck.
	unchecked, _, effect2, err := Apply(checked, ToggleHabit("h-1", fixtureNow.Add(time.Minute)))
	require.NoError(t, err)

	h2, _ := unchecked.FindHabit("h-1")
	assert.Equal(t, 3, h2.Streak)
	assert.Nil(t, h2.LastCompletedAt)
	assert.Equal(t, -HabitHealAmount, effect2.HPDelta)
	assert.False(t, effect2.Checked)
	assert.Equal(t, 50.0, unchecked.Subject.HP)
}

func TestApply_ToggleHabit_RoundTrip(t *testing.T) {
	st := fixtureState()

	next, inverse, _, err := Apply(st, ToggleHabit("h-1", fixtureNow))
	require.NoError(t, err)

	restored, _, _, err := Apply(next, inverse)
	require.NoError(t, err)
	assert.Equal(t, st, restored)
}

func TestApply_ToggleHabit_InverseRestoresPriorTimestamp(t *testing.T) {
	// A habit checked yesterday, toggled today: the inverse must restore
	// yesterday's timestamp, not clear it.
	yesterday := fixtureNow.Add(-24 * time.Hour)
	st := fixtureState()
	st.Habits[0].LastCompletedAt = &yesterday

	next, inverse, _, err := Apply(st, ToggleHabit("h-1", fixtureNow))
	require.NoError(t, err)

	restored, _, _, err := Apply(next, inverse)
	require.NoError(t, err)

	h, _ := restored.FindHabit("h-1")
	require.NotNil(t, h.LastCompletedAt)
	assert.Equal(t, yesterday, *h.LastCompletedAt)
	assert.Equal(t, st, restored)
}

func TestApply_ToggleHabit_UncheckFloorsStreakAtZero(t *testing.T) {
	st := fixtureState()
	st.Habits[0].Streak = 0
	completedToday := fixtureNow.Add(-time.Hour)
	st.Habits[0].LastCompletedAt = &completedToday

	next, _, _, err := Apply(st, ToggleHabit("h-1", fixtureNow))
	require.NoError(t, err)

	h, _ := next.FindHabit("h-1")
	assert.Equal(t, 0, h.Streak)
}

func TestApply_AdjustHP_ClampsAndInverts(t *testing.T) {
	st := fixtureState()

	next, inverse, effect, err := Apply(st, AdjustHP(-80))
	require.NoError(t, err)
	assert.Equal(t, 0.0, next.Subject.HP, "delta clamps at zero")
	assert.Equal(t, StatusDead, next.Subject.Status)
	assert.Equal(t, -50.0, effect.HPDelta, "effect reports the clamped amount")

	over, _, _, err := Apply(st, AdjustHP(80))
	require.NoError(t, err)
	assert.Equal(t, 100.0, over.Subject.HP, "delta clamps at max")

	// The inverse carries the clamped amount, so applying it lands back
	// at the starting HP instead of overshooting.
	assert.Equal(t, 50.0, inverse.Delta)
	restored, _, _, err := Apply(next, inverse)
	require.NoError(t, err)
	assert.Equal(t, 50.0, restored.Subject.HP)
}

func TestApply_CompleteTask_RollbackFromClampedHeal(t *testing.T) {
	// Completing a high task at HP 98 clamps the +8 heal to +2. A later
	// rollback must restore exactly 98, not 98 - 8 + 2.
	st := fixtureState()
	st.Subject.HP = 98

	next, inverse, effect, err := Apply(st, CompleteTask("t-2"))
	require.NoError(t, err)
	assert.Equal(t, 100.0, next.Subject.HP)
	assert.Equal(t, 2.0, effect.HPDelta)
	assert.Equal(t, "+8 HP", effect.Toast, "toast celebrates the nominal heal")

	restored, _, _, err := Apply(next, inverse)
	require.NoError(t, err)
	assert.Equal(t, st, restored)
}

func TestApply_ToggleHabit_RollbackFromClampedDamage(t *testing.T) {
	// Unchecking at HP 4 clamps the -10 swing to -4; the inverse restores
	// exactly 4.
	st := fixtureState()
	st.Subject.HP = 4
	st.Subject.Status = StatusCritical
	completedToday := fixtureNow.Add(-time.Hour)
	st.Habits[0].LastCompletedAt = &completedToday

	next, inverse, effect, err := Apply(st, ToggleHabit("h-1", fixtureNow))
	require.NoError(t, err)
	assert.Equal(t, 0.0, next.Subject.HP)
	assert.Equal(t, -4.0, effect.HPDelta)

	restored, _, _, err := Apply(next, inverse)
	require.NoError(t, err)
	assert.Equal(t, st, restored)
}

func TestApply_UnknownEntity(t *testing.T) {
	st := fixtureState()

	_, _, _, err := Apply(st, CompleteTask("nope"))
	assert.True(t, IsType(err, ErrorNotFound))

	_, _, _, err = Apply(st, ToggleHabit("nope", fixtureNow))
	assert.True(t, IsType(err, ErrorNotFound))
}

func TestApply_HPAndEntityMoveTogether(t *testing.T) {
	// The HP delta lands in the same Apply call as the entity mutation;
	// there is no intermediate state with one but not the other.
	st := fixtureState()

	next, _, _, err := Apply(st, CompleteTask("t-2"))
	require.NoError(t, err)

	_, taskGone := next.FindTask("t-2")
	assert.False(t, taskGone)
	assert.Equal(t, 58.0, next.Subject.HP)
}

func TestSubject_AdjustHP_StatusInvariant(t *testing.T) {
	s := Subject{HP: 20, MaxHP: 100, Status: StatusCritical}

	s.AdjustHP(-25)
	assert.Equal(t, 0.0, s.HP)
	assert.Equal(t, StatusDead, s.Status)

	s.AdjustHP(50)
	assert.Equal(t, 50.0, s.HP)
	assert.Equal(t, StatusAlive, s.Status)
}
