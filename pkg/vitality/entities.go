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

// =============================================================================
// Subject
// =============================================================================

// Subject is the client's cached, possibly speculative, copy of the pet.
//
// The backend owns the authoritative record. Every speculative change made
// here must either be confirmed by a round trip or undone by its inverse;
// speculative values are never persisted.
type Subject struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Name           string     `json:"name"`
	HP             float64    `json:"hp"`
	MaxHP          float64    `json:"max_hp"`
	InfectionLevel int        `json:"infection_level"`
	Status         Status     `json:"status"`
	CharacterType  string     `json:"character_type,omitempty"`
	LastCheckedAt  *time.Time `json:"last_checked_at,omitempty"`
	BornAt         *time.Time `json:"born_at,omitempty"`
}

// AdjustHP applies an additive delta clamped to [0, MaxHP] and recomputes
// the status from the HP invariant (DEAD iff hp <= 0).
//
// All HP writes, from any mutator, go through this single operation. An
// absolute overwrite would let one optimistic guess clobber another
// in-flight mutator's delta; additive deltas compose.
func (s *Subject) AdjustHP(delta float64) {
	hp := s.HP + delta
	if hp < 0 {
		hp = 0
	}
	if hp > s.MaxHP {
		hp = s.MaxHP
	}
	s.HP = hp
	s.Status = ClassifyStatus(hp)
}

// =============================================================================
// Task
// =============================================================================

// Priority is a task's urgency class. It indexes both the heal amount on
// completion and the backend's overdue damage multiplier.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// HealAmount returns the HP restored when a task of this priority is
// completed. Unknown priorities fall back to the medium amount, matching
// the backend.
func (p Priority) HealAmount() float64 {
	switch p {
	case PriorityLow:
		return 3
	case PriorityMedium:
		return 5
	case PriorityHigh:
		return 8
	case PriorityCritical:
		return 12
	default:
		return 5
	}
}

// Valid reports whether p is one of the four known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Task is a one-shot todo. Completing it heals the subject; letting it go
// overdue lets the backend's damage cron bleed the subject daily. The
// client only displays the overdue flag; it never computes that damage.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	Source      string     `json:"source,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Overdue reports whether the task has a due date in the past and is not
// completed.
func (t Task) Overdue(now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	return t.DueDate.Before(now)
}

// DaysOverdue returns whole days elapsed past the due date, or 0 when the
// task is not overdue.
func (t Task) DaysOverdue(now time.Time) int {
	if !t.Overdue(now) {
		return 0
	}
	return int(now.Sub(*t.DueDate) / (24 * time.Hour))
}

// =============================================================================
// Habit
// =============================================================================

// Habit is a daily recurring commitment with a consecutive-day streak.
//
// The streak only moves on toggles: +1 when a day's first check lands,
// -1 (floored at zero) when that check is cancelled. Any elapsed-time
// penalty is backend-authoritative and arrives via merge.
type Habit struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Title           string     `json:"title"`
	Streak          int        `json:"streak"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// CompletedToday reports whether the habit was checked during today's
// JST calendar day.
func (h Habit) CompletedToday(now time.Time) bool {
	return CompletedToday(h.LastCompletedAt, now)
}

// =============================================================================
// State
// =============================================================================

// State is the in-memory entity collection the engine mutates. It is a
// value type: mutators copy it rather than editing in place, so a caller's
// snapshot is never changed underneath it.
type State struct {
	Subject Subject
	Tasks   []Task
	Habits  []Habit
}

// Clone returns a deep copy of the state. Slices are reallocated so the
// copy shares no backing arrays with the original.
func (st State) Clone() State {
	out := st
	out.Tasks = make([]Task, len(st.Tasks))
	copy(out.Tasks, st.Tasks)
	out.Habits = make([]Habit, len(st.Habits))
	copy(out.Habits, st.Habits)
	return out
}

// FindTask returns the task with the given id, if present.
func (st State) FindTask(id string) (Task, bool) {
	for _, t := range st.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// FindHabit returns the habit with the given id, if present.
func (st State) FindHabit(id string) (Habit, bool) {
	for _, h := range st.Habits {
		if h.ID == id {
			return h, true
		}
	}
	return Habit{}, false
}
