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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/StasisPet/pkg/vitality"
)

// =============================================================================
// Request payloads (validated by gin's binding layer)
// =============================================================================

type createPetRequest struct {
	UserID        string `json:"user_id" binding:"required"`
	Name          string `json:"name" binding:"required,min=1,max=50"`
	CharacterType string `json:"character_type" binding:"omitempty,max=50"`
}

type createTaskRequest struct {
	UserID      string            `json:"user_id" binding:"required"`
	Title       string            `json:"title" binding:"required,min=1,max=200"`
	Description string            `json:"description" binding:"omitempty,max=2000"`
	Priority    vitality.Priority `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	DueDate     *time.Time        `json:"due_date"`
}

type completeTaskRequest struct {
	TaskID string `json:"task_id" binding:"required"`
}

type createHabitRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Title  string `json:"title" binding:"required,min=1,max=100"`
}

// =============================================================================
// Pet handlers
// =============================================================================

// handleCreatePet creates a pet at full HP, replacing the user's
// existing pet if any.
func (s *Server) handleCreatePet(c *gin.Context) {
	var req createPetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	pet := s.store.CreatePet(req.UserID, req.Name, req.CharacterType, s.now())
	s.log.Info("pet created", "pet_id", pet.ID, "user_id", pet.UserID)
	c.JSON(http.StatusCreated, pet)
}

// handleGetPet returns the user's pet with pending time decay applied.
// The decay is quadratic in the hours since the pet was last checked;
// fetching is what "checks" the pet.
func (s *Server) handleGetPet(c *gin.Context) {
	pet, ok := s.store.PetByUser(c.Param("userId"))
	if !ok {
		detail(c, http.StatusNotFound, "Pet not found")
		return
	}

	now := s.now()
	if damage := decayDamage(pet.LastCheckedAt, now); damage > 0 && pet.HP > 0 {
		pet.AdjustHP(-damage)
		metricDamageTotal.WithLabelValues("decay").Add(damage)
		if pet.HP <= 0 {
			metricPetsTerminated.Inc()
			s.log.Warn("pet terminated by decay", "pet_id", pet.ID, "damage", damage)
		}
	}
	checked := now
	pet.LastCheckedAt = &checked
	s.store.UpdatePet(pet)

	c.JSON(http.StatusOK, pet)
}

// handleRevivePet resets the pet to full HP.
func (s *Server) handleRevivePet(c *gin.Context) {
	pet, ok := s.store.Pet(c.Param("petId"))
	if !ok {
		detail(c, http.StatusNotFound, "Pet not found")
		return
	}
	pet.AdjustHP(pet.MaxHP - pet.HP)
	checked := s.now()
	pet.LastCheckedAt = &checked
	s.store.UpdatePet(pet)
	s.log.Info("pet revived", "pet_id", pet.ID)
	c.JSON(http.StatusOK, pet)
}

// handlePurgePet permanently deletes the pet.
func (s *Server) handlePurgePet(c *gin.Context) {
	if !s.store.DeletePet(c.Param("petId")) {
		detail(c, http.StatusNotFound, "Pet not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// =============================================================================
// Task handlers
// =============================================================================

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	priority := req.Priority
	if priority == "" {
		priority = vitality.PriorityMedium
	}
	task := s.store.CreateTask(vitality.Task{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		DueDate:     req.DueDate,
	}, s.now())
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.ActiveTasks(c.Param("userId")))
}

// handleCompleteTask marks a task done and heals the pet by the task's
// priority-indexed amount. Completing twice is a 400.
func (s *Server) handleCompleteTask(c *gin.Context) {
	var req completeTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	task, ok := s.store.Task(req.TaskID)
	if !ok {
		detail(c, http.StatusNotFound, "Task not found")
		return
	}
	if task.Completed {
		detail(c, http.StatusBadRequest, "Task already completed")
		return
	}

	now := s.now()
	task.Completed = true
	completedAt := now
	task.CompletedAt = &completedAt
	s.store.UpdateTask(task)
	metricTasksCompleted.Inc()

	healed := 0.0
	resp := gin.H{"status": "ok", "task": task}
	if pet, ok := s.store.PetByUser(task.UserID); ok {
		healed = task.Priority.HealAmount()
		pet.AdjustHP(healed)
		s.store.UpdatePet(pet)
		metricHealsTotal.WithLabelValues("task").Add(healed)
		resp["pet"] = pet
		resp["message"] = healMessage(pet.Name, healed)
	}
	resp["healed"] = healed

	s.log.Info("task completed", "task_id", task.ID, "healed", healed)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if !s.store.DeleteTask(c.Param("taskId")) {
		detail(c, http.StatusNotFound, "Task not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// handleOverdueTasks previews the damage the next cron run would deal.
func (s *Server) handleOverdueTasks(c *gin.Context) {
	now := s.now()
	overdue := s.store.OverdueTasks(c.Param("userId"), now)

	entries := make([]gin.H, 0, len(overdue))
	total := 0.0
	for _, task := range overdue {
		damage := overdueDailyDamage(task, now)
		total += damage
		entries = append(entries, gin.H{
			"task":             task,
			"days_overdue":     task.DaysOverdue(now),
			"potential_damage": damage,
		})
	}
	c.JSON(http.StatusOK, gin.H{"tasks": entries, "total_damage": total})
}

// =============================================================================
// Habit handlers
// =============================================================================

func (s *Server) handleCreateHabit(c *gin.Context) {
	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	habit := s.store.CreateHabit(vitality.Habit{
		UserID: req.UserID,
		Title:  req.Title,
	}, s.now())
	c.JSON(http.StatusCreated, habit)
}

func (s *Server) handleListHabits(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Habits(c.Param("userId")))
}

// handleToggleHabit checks or unchecks the habit for today against the
// JST calendar and swings the pet's HP by the habit amount. The server
// decides the streak; the client merges whatever comes back.
func (s *Server) handleToggleHabit(c *gin.Context) {
	habit, ok := s.store.Habit(c.Param("habitId"))
	if !ok {
		detail(c, http.StatusNotFound, "Habit not found")
		return
	}

	now := s.now()
	updated, action, healed := applyHabitToggle(habit, now)
	s.store.UpdateHabit(updated)
	metricHabitToggles.WithLabelValues(action).Inc()

	if pet, ok := s.store.PetByUser(updated.UserID); ok {
		pet.AdjustHP(healed)
		s.store.UpdatePet(pet)
		if healed > 0 {
			metricHealsTotal.WithLabelValues("habit").Add(healed)
		}
	}

	message := "Check cancelled"
	if action == "checked" {
		message = streakMessage(updated.Streak)
	}

	c.JSON(http.StatusOK, gin.H{
		"habit":      updated,
		"action":     action,
		"new_streak": updated.Streak,
		"healed":     healed,
		"message":    message,
	})
}

func (s *Server) handleDeleteHabit(c *gin.Context) {
	if !s.store.DeleteHabit(c.Param("habitId")) {
		detail(c, http.StatusNotFound, "Habit not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// =============================================================================
// Cron handlers
// =============================================================================

// handleCronDamage applies daily overdue damage to all living pets and
// purges tasks that have been overdue for a week or more.
func (s *Server) handleCronDamage(c *gin.Context) {
	now := s.now()
	damageByUser := make(map[string]float64)
	deleted := 0

	for _, task := range s.store.AllOverdueTasks(now) {
		damageByUser[task.UserID] += overdueDailyDamage(task, now)
		if task.DaysOverdue(now) >= purgeAfterDays {
			if s.store.DeleteTask(task.ID) {
				deleted++
			}
		}
	}

	damaged := 0
	total := 0.0
	for userID, damage := range damageByUser {
		pet, ok := s.store.PetByUser(userID)
		if !ok || pet.HP <= 0 {
			continue
		}
		pet.AdjustHP(-damage)
		s.store.UpdatePet(pet)
		metricDamageTotal.WithLabelValues("overdue").Add(damage)
		if pet.HP <= 0 {
			metricPetsTerminated.Inc()
		}
		damaged++
		total += damage
	}

	s.log.Info("cron damage applied",
		"pets_damaged", damaged,
		"tasks_deleted", deleted,
		"total_damage", total,
	)
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"pets_damaged":  damaged,
		"tasks_deleted": deleted,
		"total_damage":  total,
	})
}

// handleSync simulates an external task-source sync: every currently
// overdue task deals a flat damage to the user's pet.
func (s *Server) handleSync(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		detail(c, http.StatusBadRequest, "user_id is required")
		return
	}

	now := s.now()
	overdue := s.store.OverdueTasks(userID, now)
	damage := float64(len(overdue)) * syncDamagePerTask

	if pet, ok := s.store.PetByUser(userID); ok && damage > 0 && pet.HP > 0 {
		pet.AdjustHP(-damage)
		s.store.UpdatePet(pet)
		metricDamageTotal.WithLabelValues("sync").Add(damage)
		if pet.HP <= 0 {
			metricPetsTerminated.Inc()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"overdue_count": len(overdue),
		"damage_dealt":  damage,
	})
}
