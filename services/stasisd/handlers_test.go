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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/StasisPet/pkg/logging"
	"github.com/AleutianAI/StasisPet/pkg/vitality"
)

const testCronKey = "cron-secret"

// testClock is a settable clock shared between the test and the server.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestServer(t *testing.T) (*Server, *gin.Engine, *testClock) {
	t.Helper()
	clock := &testClock{now: gameNow}
	srv := NewServer(Config{
		CronAPIKey:        testCronKey,
		SyncRatePerMinute: 2,
		Logger:            logging.New(logging.Config{Quiet: true}),
		Now:               clock.Now,
	})
	return srv, srv.Router(), clock
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// -----------------------------------------------------------------------------
// Pets
// -----------------------------------------------------------------------------

func TestHandleCreatePet(t *testing.T) {
	_, router, _ := newTestServer(t)

	w := doRequest(t, router, http.MethodPost, "/pets/", gin.H{
		"user_id": "user-1", "name": "Mochi", "character_type": "cat",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	var pet vitality.Subject
	decodeJSON(t, w, &pet)
	assert.NotEmpty(t, pet.ID)
	assert.Equal(t, 100.0, pet.HP)
	assert.Equal(t, vitality.StatusAlive, pet.Status)
}

func TestHandleCreatePet_MissingName(t *testing.T) {
	_, router, _ := newTestServer(t)

	w := doRequest(t, router, http.MethodPost, "/pets/", gin.H{"user_id": "user-1"}, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	decodeJSON(t, w, &body)
	assert.Contains(t, body, "detail")
}

func TestHandleGetPet_AppliesDecay(t *testing.T) {
	_, router, clock := newTestServer(t)
	doRequest(t, router, http.MethodPost, "/pets/", gin.H{"user_id": "user-1", "name": "Mochi"}, nil)

	// 10 hours of neglect: 10² × 0.5 = 50 HP.
	clock.now = clock.now.Add(10 * time.Hour)
	w := doRequest(t, router, http.MethodGet, "/pets/user-1", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var pet vitality.Subject
	decodeJSON(t, w, &pet)
	assert.InDelta(t, 50.0, pet.HP, 1e-9)
	assert.Equal(t, clock.now, pet.LastCheckedAt.UTC())

	// Fetching again immediately deals no further damage.
	w = doRequest(t, router, http.MethodGet, "/pets/user-1", nil, nil)
	decodeJSON(t, w, &pet)
	assert.InDelta(t, 50.0, pet.HP, 1e-9)
}

func TestHandleGetPet_DecayCanTerminate(t *testing.T) {
	_, router, clock := newTestServer(t)
	doRequest(t, router, http.MethodPost, "/pets/", gin.H{"user_id": "user-1", "name": "Mochi"}, nil)

	clock.now = clock.now.Add(48 * time.Hour)
	w := doRequest(t, router, http.MethodGet, "/pets/user-1", nil, nil)

	var pet vitality.Subject
	decodeJSON(t, w, &pet)
	assert.Equal(t, 0.0, pet.HP)
	assert.Equal(t, vitality.StatusDead, pet.Status)
}

func TestHandleGetPet_NotFound(t *testing.T) {
	_, router, _ := newTestServer(t)
	w := doRequest(t, router, http.MethodGet, "/pets/nobody", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleRevivePet(t *testing.T) {
	srv, router, _ := newTestServer(t)
	created := srv.Store().CreatePet("user-1", "Mochi", "", gameNow)
	hurt := created
	hurt.AdjustHP(-hurt.MaxHP)
	srv.Store().UpdatePet(hurt)

	w := doRequest(t, router, http.MethodPost, "/pets/"+created.ID+"/revive", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var pet vitality.Subject
	decodeJSON(t, w, &pet)
	assert.Equal(t, 100.0, pet.HP)
	assert.Equal(t, vitality.StatusAlive, pet.Status)
}

func TestHandlePurgePet(t *testing.T) {
	srv, router, _ := newTestServer(t)
	pet := srv.Store().CreatePet("user-1", "Mochi", "", gameNow)

	w := doRequest(t, router, http.MethodDelete, "/pets/"+pet.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodDelete, "/pets/"+pet.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// -----------------------------------------------------------------------------
// Tasks
// -----------------------------------------------------------------------------

func TestHandleCreateTask_DefaultsPriority(t *testing.T) {
	_, router, _ := newTestServer(t)

	w := doRequest(t, router, http.MethodPost, "/tasks/", gin.H{
		"user_id": "user-1", "title": "write report",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	var task vitality.Task
	decodeJSON(t, w, &task)
	assert.Equal(t, vitality.PriorityMedium, task.Priority)
	assert.Equal(t, gameNow, task.CreatedAt.UTC())
}

func TestHandleCreateTask_RejectsUnknownPriority(t *testing.T) {
	_, router, _ := newTestServer(t)

	w := doRequest(t, router, http.MethodPost, "/tasks/", gin.H{
		"user_id": "user-1", "title": "x", "priority": "urgent",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCompleteTask(t *testing.T) {
	srv, router, _ := newTestServer(t)
	pet := srv.Store().CreatePet("user-1", "Mochi", "", gameNow)
	hurt := pet
	hurt.AdjustHP(-50)
	srv.Store().UpdatePet(hurt)
	task := srv.Store().CreateTask(vitality.Task{
		UserID: "user-1", Title: "ship release", Priority: vitality.PriorityHigh,
	}, gameNow)

	w := doRequest(t, router, http.MethodPost, "/tasks/complete", gin.H{"task_id": task.ID}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Status  string           `json:"status"`
		Task    vitality.Task    `json:"task"`
		Pet     vitality.Subject `json:"pet"`
		Healed  float64          `json:"healed"`
		Message string           `json:"message"`
	}
	decodeJSON(t, w, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Task.Completed)
	require.NotNil(t, resp.Task.CompletedAt)
	assert.Equal(t, 8.0, resp.Healed)
	assert.InDelta(t, 58.0, resp.Pet.HP, 1e-9)
	assert.Equal(t, "Task complete! Mochi healed 8 HP", resp.Message)
}

func TestHandleCompleteTask_AlreadyCompleted(t *testing.T) {
	srv, router, _ := newTestServer(t)
	srv.Store().CreatePet("user-1", "Mochi", "", gameNow)
	task := srv.Store().CreateTask(vitality.Task{UserID: "user-1", Title: "t"}, gameNow)

	doRequest(t, router, http.MethodPost, "/tasks/complete", gin.H{"task_id": task.ID}, nil)
	w := doRequest(t, router, http.MethodPost, "/tasks/complete", gin.H{"task_id": task.ID}, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	decodeJSON(t, w, &body)
	assert.Equal(t, "Task already completed", body["detail"])
}

func TestHandleCompleteTask_NotFound(t *testing.T) {
	_, router, _ := newTestServer(t)
	w := doRequest(t, router, http.MethodPost, "/tasks/complete", gin.H{"task_id": "missing"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleOverdueTasks(t *testing.T) {
	srv, router, _ := newTestServer(t)
	due := gameNow.Add(-25 * time.Hour)
	srv.Store().CreateTask(vitality.Task{
		UserID: "user-1", Title: "late", Priority: vitality.PriorityHigh, DueDate: &due,
	}, gameNow.Add(-48*time.Hour))

	w := doRequest(t, router, http.MethodGet, "/tasks/user-1/overdue", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Tasks []struct {
			DaysOverdue     int     `json:"days_overdue"`
			PotentialDamage float64 `json:"potential_damage"`
		} `json:"tasks"`
		TotalDamage float64 `json:"total_damage"`
	}
	decodeJSON(t, w, &resp)
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, 1, resp.Tasks[0].DaysOverdue)
	assert.InDelta(t, 10.0, resp.Tasks[0].PotentialDamage, 1e-9)
	assert.InDelta(t, 10.0, resp.TotalDamage, 1e-9)
}

func TestHandleDeleteTask(t *testing.T) {
	srv, router, _ := newTestServer(t)
	task := srv.Store().CreateTask(vitality.Task{UserID: "user-1", Title: "t"}, gameNow)

	w := doRequest(t, router, http.MethodDelete, "/tasks/"+task.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodDelete, "/tasks/"+task.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// -----------------------------------------------------------------------------
// Habits
// -----------------------------------------------------------------------------

func TestHandleToggleHabit_CheckAndUncheck(t *testing.T) {
	srv, router, _ := newTestServer(t)
	pet := srv.Store().CreatePet("user-1", "Mochi", "", gameNow)
	hurt := pet
	hurt.AdjustHP(-50)
	srv.Store().UpdatePet(hurt)
	habit := srv.Store().CreateHabit(vitality.Habit{UserID: "user-1", Title: "morning run"}, gameNow)

	w := doRequest(t, router, http.MethodPut, "/daily-habits/"+habit.ID+"/check", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Action    string  `json:"action"`
		NewStreak int     `json:"new_streak"`
		Healed    float64 `json:"healed"`
		Message   string  `json:"message"`
	}
	decodeJSON(t, w, &resp)
	assert.Equal(t, "checked", resp.Action)
	assert.Equal(t, 1, resp.NewStreak)
	assert.Equal(t, 10.0, resp.Healed)
	assert.Equal(t, "Streak started!", resp.Message)

	got, _ := srv.Store().PetByUser("user-1")
	assert.InDelta(t, 60.0, got.HP, 1e-9)

	// Toggling again the same day cancels the check.
	w = doRequest(t, router, http.MethodPut, "/daily-habits/"+habit.ID+"/check", nil, nil)
	decodeJSON(t, w, &resp)
	assert.Equal(t, "unchecked", resp.Action)
	assert.Equal(t, 0, resp.NewStreak)
	assert.Equal(t, -10.0, resp.Healed)
	assert.Equal(t, "Check cancelled", resp.Message)

	got, _ = srv.Store().PetByUser("user-1")
	assert.InDelta(t, 50.0, got.HP, 1e-9)
}

func TestHandleToggleHabit_NotFound(t *testing.T) {
	_, router, _ := newTestServer(t)
	w := doRequest(t, router, http.MethodPut, "/daily-habits/missing/check", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleDeleteHabit(t *testing.T) {
	srv, router, _ := newTestServer(t)
	habit := srv.Store().CreateHabit(vitality.Habit{UserID: "user-1", Title: "h"}, gameNow)

	w := doRequest(t, router, http.MethodDelete, "/daily-habits/"+habit.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodDelete, "/daily-habits/"+habit.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// -----------------------------------------------------------------------------
// Cron
// -----------------------------------------------------------------------------

func TestHandleCronDamage_RequiresAPIKey(t *testing.T) {
	_, router, _ := newTestServer(t)

	w := doRequest(t, router, http.MethodGet, "/cron/damage", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, router, http.MethodGet, "/cron/damage", nil, map[string]string{"X-API-KEY": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleCronDamage_DamagesPetsAndPurgesOldTasks(t *testing.T) {
	srv, router, _ := newTestServer(t)
	srv.Store().CreatePet("user-1", "Mochi", "", gameNow)

	dueRecent := gameNow.Add(-25 * time.Hour)
	dueAncient := gameNow.Add(-8 * 24 * time.Hour)
	srv.Store().CreateTask(vitality.Task{
		UserID: "user-1", Title: "recent", Priority: vitality.PriorityLow, DueDate: &dueRecent,
	}, gameNow.Add(-48*time.Hour))
	ancient := srv.Store().CreateTask(vitality.Task{
		UserID: "user-1", Title: "ancient", Priority: vitality.PriorityLow, DueDate: &dueAncient,
	}, gameNow.Add(-9*24*time.Hour))

	w := doRequest(t, router, http.MethodGet, "/cron/damage", nil, map[string]string{"X-API-KEY": testCronKey})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		PetsDamaged  int     `json:"pets_damaged"`
		TasksDeleted int     `json:"tasks_deleted"`
		TotalDamage  float64 `json:"total_damage"`
	}
	decodeJSON(t, w, &resp)
	assert.Equal(t, 1, resp.PetsDamaged)
	assert.Equal(t, 1, resp.TasksDeleted)
	// recent: 1 day low = 5; ancient: >=7 days low = 20.
	assert.InDelta(t, 25.0, resp.TotalDamage, 1e-9)

	pet, _ := srv.Store().PetByUser("user-1")
	assert.InDelta(t, 75.0, pet.HP, 1e-9)

	_, ok := srv.Store().Task(ancient.ID)
	assert.False(t, ok, "week-old task should be purged")
}

func TestHandleSync(t *testing.T) {
	srv, router, _ := newTestServer(t)
	srv.Store().CreatePet("user-1", "Mochi", "", gameNow)
	due := gameNow.Add(-2 * time.Hour)
	srv.Store().CreateTask(vitality.Task{UserID: "user-1", Title: "a", DueDate: &due}, gameNow)
	srv.Store().CreateTask(vitality.Task{UserID: "user-1", Title: "b", DueDate: &due}, gameNow)

	w := doRequest(t, router, http.MethodPost, "/cron/sync?user_id=user-1", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		OverdueCount int     `json:"overdue_count"`
		DamageDealt  float64 `json:"damage_dealt"`
	}
	decodeJSON(t, w, &resp)
	assert.Equal(t, 2, resp.OverdueCount)
	assert.InDelta(t, 10.0, resp.DamageDealt, 1e-9)

	pet, _ := srv.Store().PetByUser("user-1")
	assert.InDelta(t, 90.0, pet.HP, 1e-9)
}

func TestHandleSync_RequiresUserID(t *testing.T) {
	_, router, _ := newTestServer(t)
	w := doRequest(t, router, http.MethodPost, "/cron/sync", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSync_RateLimited(t *testing.T) {
	_, router, _ := newTestServer(t)

	// Burst of 2 allowed, third call trips the limiter.
	doRequest(t, router, http.MethodPost, "/cron/sync?user_id=user-1", nil, nil)
	doRequest(t, router, http.MethodPost, "/cron/sync?user_id=user-1", nil, nil)
	w := doRequest(t, router, http.MethodPost, "/cron/sync?user_id=user-1", nil, nil)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestHealthz(t *testing.T) {
	_, router, _ := newTestServer(t)
	w := doRequest(t, router, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	_, router, _ := newTestServer(t)
	w := doRequest(t, router, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stasisd_")
}

func TestInitTelemetry(t *testing.T) {
	ctx := t.Context()

	shutdown, err := InitTelemetry(ctx, TelemetryConfig{TraceExporter: "none"})
	require.NoError(t, err)
	require.NoError(t, shutdown(ctx))

	var buf bytes.Buffer
	shutdown, err = InitTelemetry(ctx, TelemetryConfig{
		ServiceName:   "stasisd-test",
		TraceExporter: "stdout",
		TraceWriter:   &buf,
	})
	require.NoError(t, err)
	require.NoError(t, shutdown(ctx))

	_, err = InitTelemetry(ctx, TelemetryConfig{TraceExporter: "jaeger"})
	assert.Error(t, err)
}
