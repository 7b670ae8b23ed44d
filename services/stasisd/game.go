// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// This file contains the game rules the backend owns: time decay,
// overdue damage, streak continuation. The client NEVER computes these;
// it only displays what the server reports.

package stasisd

import (
	"fmt"
	"time"

	"github.com/AleutianAI/StasisPet/pkg/vitality"
)

const (
	// decayFactor scales quadratic neglect damage: hours² × 0.5.
	// Short absences are nearly free; a weekend away hurts.
	decayFactor = 0.5

	// habitHeal is the HP swing for a habit check/uncheck.
	habitHeal = 10.0

	// syncDamagePerTask is the flat damage each overdue task deals
	// during an external sync.
	syncDamagePerTask = 5.0

	// purgeAfterDays is how many days overdue a task survives before
	// the damage cron deletes it outright.
	purgeAfterDays = 7
)

// decayDamage returns the HP lost to neglect since the pet was last
// checked: hours² × 0.5.
func decayDamage(lastCheckedAt *time.Time, now time.Time) float64 {
	if lastCheckedAt == nil {
		return 0
	}
	hours := now.Sub(*lastCheckedAt).Hours()
	if hours <= 0 {
		return 0
	}
	return hours * hours * decayFactor
}

// priorityMultiplier scales overdue damage by how urgent the task was.
func priorityMultiplier(p vitality.Priority) float64 {
	switch p {
	case vitality.PriorityLow:
		return 1.0
	case vitality.PriorityMedium:
		return 1.5
	case vitality.PriorityHigh:
		return 2.0
	case vitality.PriorityCritical:
		return 3.0
	default:
		return 1.5
	}
}

// overdueDailyDamage returns the damage one task deals per cron run.
// The base escalates with age (>=1d: 5, >=3d: 10, >=7d: 20 per day) and
// is scaled by the priority multiplier.
func overdueDailyDamage(task vitality.Task, now time.Time) float64 {
	days := task.DaysOverdue(now)
	var base float64
	switch {
	case days >= 7:
		base = 20
	case days >= 3:
		base = 10
	case days >= 1:
		base = 5
	default:
		return 0
	}
	return base * priorityMultiplier(task.Priority)
}

// applyHabitToggle runs the server-side toggle rule and returns the
// updated habit, the action taken, and the heal to apply.
//
// Check: completed yesterday (JST) continues the streak (+1); anything
// older, or a first-ever check, resets it to 1. Uncheck: streak steps
// back (floor 0) and the completion timestamp clears.
func applyHabitToggle(habit vitality.Habit, now time.Time) (vitality.Habit, string, float64) {
	if habit.CompletedToday(now) {
		habit.LastCompletedAt = nil
		if habit.Streak > 0 {
			habit.Streak--
		}
		return habit, "unchecked", -habitHeal
	}

	if habit.LastCompletedAt != nil &&
		vitality.IsPreviousCalendarDay(*habit.LastCompletedAt, now, vitality.JSTOffsetMinutes) {
		habit.Streak++
	} else {
		habit.Streak = 1
	}
	ts := now
	habit.LastCompletedAt = &ts
	return habit, "checked", habitHeal
}

// healMessage is the celebration line for a task completion.
func healMessage(petName string, healed float64) string {
	return fmt.Sprintf("Task complete! %s healed %g HP", petName, healed)
}

// streakMessage is the celebration line for a habit check.
func streakMessage(streak int) string {
	if streak == 1 {
		return "Streak started!"
	}
	return fmt.Sprintf("%d day streak!", streak)
}
