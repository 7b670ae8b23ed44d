// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package stasisd

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/StasisPet/pkg/vitality"
)

// Store is the in-memory entity store backing the reference service.
// One pet per user; tasks and habits keyed by their own IDs.
//
// Deliberately not durable: the service exists to exercise the client
// engine end to end, not to keep data.
type Store struct {
	mu        sync.RWMutex
	pets      map[string]*vitality.Subject // by pet ID
	petByUser map[string]string            // user ID -> pet ID
	tasks     map[string]*vitality.Task
	habits    map[string]*vitality.Habit
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		pets:      make(map[string]*vitality.Subject),
		petByUser: make(map[string]string),
		tasks:     make(map[string]*vitality.Task),
		habits:    make(map[string]*vitality.Habit),
	}
}

// -----------------------------------------------------------------------------
// Pets
// -----------------------------------------------------------------------------

// CreatePet creates a pet at full HP for the user, replacing any
// existing one.
func (s *Store) CreatePet(userID, name, characterType string, now time.Time) vitality.Subject {
	s.mu.Lock()
	defer s.mu.Unlock()

	if oldID, ok := s.petByUser[userID]; ok {
		delete(s.pets, oldID)
	}

	born := now
	checked := now
	pet := &vitality.Subject{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          name,
		HP:            100,
		MaxHP:         100,
		Status:        vitality.StatusAlive,
		CharacterType: characterType,
		LastCheckedAt: &checked,
		BornAt:        &born,
	}
	s.pets[pet.ID] = pet
	s.petByUser[userID] = pet.ID
	return *pet
}

// PetByUser returns a copy of the user's pet.
func (s *Store) PetByUser(userID string) (vitality.Subject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.petByUser[userID]
	if !ok {
		return vitality.Subject{}, false
	}
	return *s.pets[id], true
}

// Pet returns a copy of the pet with the given ID.
func (s *Store) Pet(petID string) (vitality.Subject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pet, ok := s.pets[petID]
	if !ok {
		return vitality.Subject{}, false
	}
	return *pet, true
}

// UpdatePet stores the updated pet value. No-op when the pet is gone.
func (s *Store) UpdatePet(pet vitality.Subject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pets[pet.ID]; ok {
		s.pets[pet.ID] = &pet
	}
}

// DeletePet removes the pet and its user mapping.
func (s *Store) DeletePet(petID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pet, ok := s.pets[petID]
	if !ok {
		return false
	}
	delete(s.pets, petID)
	delete(s.petByUser, pet.UserID)
	return true
}

// LivingPets returns copies of all pets with HP above zero.
func (s *Store) LivingPets() []vitality.Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]vitality.Subject, 0, len(s.pets))
	for _, pet := range s.pets {
		if pet.HP > 0 {
			out = append(out, *pet)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// -----------------------------------------------------------------------------
// Tasks
// -----------------------------------------------------------------------------

// CreateTask stores a new task and returns the stored copy.
func (s *Store) CreateTask(task vitality.Task, now time.Time) vitality.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	task.ID = uuid.NewString()
	task.CreatedAt = now
	s.tasks[task.ID] = &task
	return task
}

// Task returns a copy of the task with the given ID.
func (s *Store) Task(taskID string) (vitality.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return vitality.Task{}, false
	}
	return *task, true
}

// UpdateTask stores the updated task value.
func (s *Store) UpdateTask(task vitality.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; ok {
		s.tasks[task.ID] = &task
	}
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[taskID]; !ok {
		return false
	}
	delete(s.tasks, taskID)
	return true
}

// ActiveTasks returns the user's incomplete tasks, newest first.
func (s *Store) ActiveTasks(userID string) []vitality.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]vitality.Task, 0)
	for _, task := range s.tasks {
		if task.UserID == userID && !task.Completed {
			out = append(out, *task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// OverdueTasks returns the user's overdue incomplete tasks.
func (s *Store) OverdueTasks(userID string, now time.Time) []vitality.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]vitality.Task, 0)
	for _, task := range s.tasks {
		if task.UserID == userID && task.Overdue(now) {
			out = append(out, *task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// AllOverdueTasks returns every overdue incomplete task across users.
func (s *Store) AllOverdueTasks(now time.Time) []vitality.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]vitality.Task, 0)
	for _, task := range s.tasks {
		if task.Overdue(now) {
			out = append(out, *task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// -----------------------------------------------------------------------------
// Habits
// -----------------------------------------------------------------------------

// CreateHabit stores a new habit and returns the stored copy.
func (s *Store) CreateHabit(habit vitality.Habit, now time.Time) vitality.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()
	habit.ID = uuid.NewString()
	habit.CreatedAt = now
	s.habits[habit.ID] = &habit
	return habit
}

// Habit returns a copy of the habit with the given ID.
func (s *Store) Habit(habitID string) (vitality.Habit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	habit, ok := s.habits[habitID]
	if !ok {
		return vitality.Habit{}, false
	}
	return *habit, true
}

// UpdateHabit stores the updated habit value.
func (s *Store) UpdateHabit(habit vitality.Habit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.habits[habit.ID]; ok {
		s.habits[habit.ID] = &habit
	}
}

// DeleteHabit removes a habit.
func (s *Store) DeleteHabit(habitID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.habits[habitID]; !ok {
		return false
	}
	delete(s.habits, habitID)
	return true
}

// Habits returns the user's habits, oldest first.
func (s *Store) Habits(userID string) []vitality.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]vitality.Habit, 0)
	for _, habit := range s.habits {
		if habit.UserID == userID {
			out = append(out, *habit)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
