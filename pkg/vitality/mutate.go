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
	"fmt"
	"time"
)

// HabitHealAmount is the speculative HP swing for a habit toggle: +10 on
// check, -10 on uncheck.
const HabitHealAmount = 10.0

// -----------------------------------------------------------------------------
// Transitions
// -----------------------------------------------------------------------------

// TransitionKind identifies a speculative state transition.
type TransitionKind int

const (
	// TransitionCompleteTask removes a task from the active set and heals
	// the subject by the task's priority-indexed amount.
	TransitionCompleteTask TransitionKind = iota

	// TransitionToggleHabit checks or unchecks a habit for today.
	TransitionToggleHabit

	// TransitionDeleteTask removes a task with no HP effect.
	TransitionDeleteTask

	// TransitionDeleteHabit removes a habit with no HP effect.
	TransitionDeleteHabit

	// TransitionAdjustHP applies a bare HP delta (external sync results).
	TransitionAdjustHP

	// transitionReinsertTask is the inverse of complete/delete task. It
	// re-inserts the identical captured task value and applies the
	// negated heal. Only ever produced by Apply, never by callers.
	transitionReinsertTask

	// transitionReinsertHabit is the inverse of delete habit.
	transitionReinsertHabit

	// transitionRevertHabitToggle is the exact opposite of a habit
	// toggle: it restores the captured previous completion timestamp and
	// reverses the streak step. It is deliberately NOT a recomputation of
	// "toggle again", so fast toggles interleaved with in-flight calls
	// cannot drift.
	transitionRevertHabitToggle
)

// String returns the kind name for logging.
func (k TransitionKind) String() string {
	switch k {
	case TransitionCompleteTask:
		return "complete_task"
	case TransitionToggleHabit:
		return "toggle_habit"
	case TransitionDeleteTask:
		return "delete_task"
	case TransitionDeleteHabit:
		return "delete_habit"
	case TransitionAdjustHP:
		return "adjust_hp"
	case transitionReinsertTask:
		return "reinsert_task"
	case transitionReinsertHabit:
		return "reinsert_habit"
	case transitionRevertHabitToggle:
		return "revert_habit_toggle"
	default:
		return "unknown"
	}
}

// Transition describes a single speculative mutation. Construct the public
// kinds with the helpers below; the unexported kinds are inverses produced
// by Apply.
type Transition struct {
	Kind     TransitionKind
	EntityID string

	// Now anchors "completed today" decisions for habit toggles.
	Now time.Time

	// Delta is the HP delta for TransitionAdjustHP.
	Delta float64

	// Inverse payloads. Captured entity values travel with the inverse so
	// a late rollback restores exactly what its own call displaced,
	// never a by-then-stale entity from a subsequent action.
	task        *Task
	habit       *Habit
	prevChecked *time.Time
	streakStep  int
	hpDelta     float64
}

// CompleteTask builds the task-completion transition.
func CompleteTask(id string) Transition {
	return Transition{Kind: TransitionCompleteTask, EntityID: id}
}

// ToggleHabit builds the habit check/uncheck transition anchored at now.
func ToggleHabit(id string, now time.Time) Transition {
	return Transition{Kind: TransitionToggleHabit, EntityID: id, Now: now}
}

// DeleteTask builds the task-deletion transition.
func DeleteTask(id string) Transition {
	return Transition{Kind: TransitionDeleteTask, EntityID: id}
}

// DeleteHabit builds the habit-deletion transition.
func DeleteHabit(id string) Transition {
	return Transition{Kind: TransitionDeleteHabit, EntityID: id}
}

// AdjustHP builds a bare HP-delta transition.
func AdjustHP(delta float64) Transition {
	return Transition{Kind: TransitionAdjustHP, Delta: delta}
}

// Effect is the client-visible result of an optimistic apply.
type Effect struct {
	// HPDelta is the speculative HP change applied to the subject in the
	// same logical step as the entity mutation. It is the post-clamp
	// amount, which can be smaller than the nominal heal when the subject
	// sits near an HP bound.
	HPDelta float64

	// Toast is the transient success message ("+8 HP"), empty when the
	// transition has no celebratory effect.
	Toast string

	// Checked is set for habit toggles: true when the toggle checked the
	// habit, false when it cancelled today's check.
	Checked bool
}

// -----------------------------------------------------------------------------
// Apply
// -----------------------------------------------------------------------------

// Apply executes a speculative transition against a copy of state.
//
// It returns the new state, the minimal inverse transition that undoes the
// mutation, and the client-visible effect. The input state is never
// mutated; callers keep their snapshot. The subject's HP delta is applied
// inside the same call as the entity mutation, so no other mutation can
// interleave between the two.
//
// A failed lookup returns the input state unchanged and an ErrorNotFound;
// nothing speculative happens.
func Apply(st State, tr Transition) (State, Transition, Effect, error) {
	next := st.Clone()

	switch tr.Kind {
	case TransitionCompleteTask:
		task, ok := st.FindTask(tr.EntityID)
		if !ok {
			return st, Transition{}, Effect{}, NewNotFoundError("task", tr.EntityID)
		}
		next.Tasks = removeTask(next.Tasks, tr.EntityID)
		heal := task.Priority.HealAmount()
		next.Subject.AdjustHP(heal)
		// The inverse undoes the clamped amount that actually landed, not
		// the nominal heal, so a rollback near an HP bound restores the
		// exact starting value.
		applied := next.Subject.HP - st.Subject.HP
		captured := task
		inverse := Transition{
			Kind:     transitionReinsertTask,
			EntityID: tr.EntityID,
			task:     &captured,
			hpDelta:  -applied,
		}
		return next, inverse, Effect{HPDelta: applied, Toast: fmt.Sprintf("+%g HP", heal)}, nil

	case TransitionDeleteTask:
		task, ok := st.FindTask(tr.EntityID)
		if !ok {
			return st, Transition{}, Effect{}, NewNotFoundError("task", tr.EntityID)
		}
		next.Tasks = removeTask(next.Tasks, tr.EntityID)
		captured := task
		inverse := Transition{
			Kind:     transitionReinsertTask,
			EntityID: tr.EntityID,
			task:     &captured,
		}
		return next, inverse, Effect{}, nil

	case TransitionDeleteHabit:
		habit, ok := st.FindHabit(tr.EntityID)
		if !ok {
			return st, Transition{}, Effect{}, NewNotFoundError("habit", tr.EntityID)
		}
		next.Habits = removeHabit(next.Habits, tr.EntityID)
		captured := habit
		inverse := Transition{
			Kind:     transitionReinsertHabit,
			EntityID: tr.EntityID,
			habit:    &captured,
		}
		return next, inverse, Effect{}, nil

	case TransitionToggleHabit:
		habit, ok := st.FindHabit(tr.EntityID)
		if !ok {
			return st, Transition{}, Effect{}, NewNotFoundError("habit", tr.EntityID)
		}
		prev := habit.LastCompletedAt
		if habit.CompletedToday(tr.Now) {
			// Cancel today's check.
			updated := habit
			updated.LastCompletedAt = nil
			if updated.Streak > 0 {
				updated.Streak--
			}
			next.Habits = replaceHabit(next.Habits, updated)
			next.Subject.AdjustHP(-HabitHealAmount)
			applied := next.Subject.HP - st.Subject.HP
			inverse := Transition{
				Kind:        transitionRevertHabitToggle,
				EntityID:    tr.EntityID,
				prevChecked: prev,
				streakStep:  +1,
				hpDelta:     -applied,
			}
			return next, inverse, Effect{HPDelta: applied, Checked: false}, nil
		}
		// Check for today.
		now := tr.Now
		updated := habit
		updated.LastCompletedAt = &now
		updated.Streak++
		next.Habits = replaceHabit(next.Habits, updated)
		next.Subject.AdjustHP(HabitHealAmount)
		applied := next.Subject.HP - st.Subject.HP
		inverse := Transition{
			Kind:        transitionRevertHabitToggle,
			EntityID:    tr.EntityID,
			prevChecked: prev,
			streakStep:  -1,
			hpDelta:     -applied,
		}
		return next, inverse, Effect{
			HPDelta: applied,
			Toast:   fmt.Sprintf("+%g HP", HabitHealAmount),
			Checked: true,
		}, nil

	case TransitionAdjustHP:
		next.Subject.AdjustHP(tr.Delta)
		applied := next.Subject.HP - st.Subject.HP
		inverse := Transition{Kind: TransitionAdjustHP, Delta: -applied}
		return next, inverse, Effect{HPDelta: applied}, nil

	case transitionReinsertTask:
		next.Tasks = append(next.Tasks, *tr.task)
		sortTasksByCreation(next.Tasks)
		next.Subject.AdjustHP(tr.hpDelta)
		captured := *tr.task
		inverse := Transition{
			Kind:     TransitionDeleteTask,
			EntityID: captured.ID,
		}
		return next, inverse, Effect{HPDelta: next.Subject.HP - st.Subject.HP}, nil

	case transitionReinsertHabit:
		next.Habits = append(next.Habits, *tr.habit)
		inverse := Transition{Kind: TransitionDeleteHabit, EntityID: tr.habit.ID}
		return next, inverse, Effect{}, nil

	case transitionRevertHabitToggle:
		habit, ok := st.FindHabit(tr.EntityID)
		if !ok {
			return st, Transition{}, Effect{}, NewNotFoundError("habit", tr.EntityID)
		}
		updated := habit
		updated.LastCompletedAt = tr.prevChecked
		updated.Streak += tr.streakStep
		if updated.Streak < 0 {
			updated.Streak = 0
		}
		next.Habits = replaceHabit(next.Habits, updated)
		next.Subject.AdjustHP(tr.hpDelta)
		applied := next.Subject.HP - st.Subject.HP
		inverse := Transition{
			Kind:        transitionRevertHabitToggle,
			EntityID:    tr.EntityID,
			prevChecked: habit.LastCompletedAt,
			streakStep:  -tr.streakStep,
			hpDelta:     -applied,
		}
		return next, inverse, Effect{HPDelta: applied}, nil

	default:
		return st, Transition{}, Effect{}, NewValidationError(fmt.Sprintf("unknown transition kind %d", tr.Kind))
	}
}

// -----------------------------------------------------------------------------
// Slice helpers
// -----------------------------------------------------------------------------

func removeTask(tasks []Task, id string) []Task {
	out := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func removeHabit(habits []Habit, id string) []Habit {
	out := habits[:0]
	for _, h := range habits {
		if h.ID != id {
			out = append(out, h)
		}
	}
	return out
}

func replaceHabit(habits []Habit, updated Habit) []Habit {
	for i, h := range habits {
		if h.ID == updated.ID {
			habits[i] = updated
			break
		}
	}
	return habits
}

// sortTasksByCreation keeps the active list in newest-first order, so a
// rolled-back task reappears at its original position.
func sortTasksByCreation(tasks []Task) {
	for i := 1; i < len(tasks); i++ {
		for j := i; j > 0 && tasks[j].CreatedAt.After(tasks[j-1].CreatedAt); j-- {
			tasks[j], tasks[j-1] = tasks[j-1], tasks[j]
		}
	}
}
