// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Integration test for the client/server contract.
//
// This test runs the real pkg/api client against the real stasisd
// router over HTTP, so a drift between the two JSON shapes fails here
// even when each side's own tests still pass.

package integration

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/StasisPet/pkg/api"
	"github.com/AleutianAI/StasisPet/pkg/logging"
	"github.com/AleutianAI/StasisPet/pkg/vitality"
	"github.com/AleutianAI/StasisPet/services/stasisd"
)

func newStack(t *testing.T) (*api.Client, *stasisd.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	server := stasisd.NewServer(stasisd.Config{
		CronAPIKey: "integration-key",
		Logger:     logging.New(logging.Config{Quiet: true}),
	})
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	return api.NewClient(ts.URL), server
}

func TestClientServer_PetLifecycle(t *testing.T) {
	client, _ := newStack(t)
	ctx := context.Background()

	pet, err := client.CreatePet(ctx, api.CreatePetRequest{
		UserID:        "user-1",
		Name:          "Mochi",
		CharacterType: "axolotl",
	})
	require.NoError(t, err)
	assert.Equal(t, "Mochi", pet.Name)
	assert.Equal(t, 100.0, pet.HP)
	assert.Equal(t, vitality.StatusAlive, pet.Status)

	fetched, err := client.GetPet(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, pet.ID, fetched.ID)

	revived, err := client.RevivePet(ctx, pet.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, revived.HP)

	require.NoError(t, client.PurgePet(ctx, pet.ID))

	_, err = client.GetPet(ctx, "user-1")
	engErr := vitality.AsEngineError(err)
	require.NotNil(t, engErr)
	assert.Equal(t, vitality.ErrorNotFound, engErr.Type)
}

func TestClientServer_TaskCompletionHeals(t *testing.T) {
	client, server := newStack(t)
	ctx := context.Background()

	pet, err := client.CreatePet(ctx, api.CreatePetRequest{UserID: "user-1", Name: "Mochi"})
	require.NoError(t, err)

	// Hurt the pet so the heal is observable.
	pet.AdjustHP(-50)
	server.Store().UpdatePet(pet)

	task, err := client.CreateTask(ctx, api.CreateTaskRequest{
		UserID:   "user-1",
		Title:    "write report",
		Priority: vitality.PriorityHigh,
	})
	require.NoError(t, err)

	outcome, err := client.CompleteTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 8.0, outcome.Healed)
	require.NotNil(t, outcome.Subject)
	assert.Equal(t, 58.0, outcome.Subject.HP)
	assert.Contains(t, outcome.Message, "Mochi")

	tasks, err := client.ListTasks(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	// Completing again is a contract error, not a transport error.
	_, err = client.CompleteTask(ctx, task.ID)
	engErr := vitality.AsEngineError(err)
	require.NotNil(t, engErr)
	assert.Equal(t, "Task already completed", engErr.Message)
}

func TestClientServer_HabitStreakRoundTrip(t *testing.T) {
	client, _ := newStack(t)
	ctx := context.Background()

	_, err := client.CreatePet(ctx, api.CreatePetRequest{UserID: "user-1", Name: "Mochi"})
	require.NoError(t, err)

	habit, err := client.CreateHabit(ctx, api.CreateHabitRequest{
		UserID: "user-1",
		Title:  "morning run",
	})
	require.NoError(t, err)

	checked, err := client.ToggleHabit(ctx, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, "checked", checked.Action)
	assert.Equal(t, vitality.HabitHealAmount, checked.Healed)
	require.NotNil(t, checked.Habit)
	assert.Equal(t, 1, checked.Habit.Streak)

	unchecked, err := client.ToggleHabit(ctx, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, "unchecked", unchecked.Action)
	require.NotNil(t, unchecked.Habit)
	assert.Equal(t, 0, unchecked.Habit.Streak)
}

func TestClientServer_ControllerReconcilesOverHTTP(t *testing.T) {
	client, server := newStack(t)
	ctx := context.Background()

	pet, err := client.CreatePet(ctx, api.CreatePetRequest{UserID: "user-1", Name: "Mochi"})
	require.NoError(t, err)
	pet.AdjustHP(-50)
	server.Store().UpdatePet(pet)

	task, err := client.CreateTask(ctx, api.CreateTaskRequest{
		UserID:   "user-1",
		Title:    "write report",
		Priority: vitality.PriorityHigh,
	})
	require.NoError(t, err)

	ctrl := vitality.NewController(vitality.State{
		Subject: pet,
		Tasks:   []vitality.Task{task},
	}, client, nil)
	defer ctrl.Close()

	require.NoError(t, ctrl.Do(ctx, vitality.CompleteTask(task.ID)))

	// The confirmed merge matches what the server now believes. The
	// fetch itself applies a sub-second sliver of decay, hence InDelta.
	assert.Equal(t, 58.0, ctrl.Subject().HP)
	authoritative, err := client.GetPet(ctx, "user-1")
	require.NoError(t, err)
	assert.InDelta(t, ctrl.Subject().HP, authoritative.HP, 0.01)

	// Re-completing a task the server already closed rolls the optimistic
	// state back instead of leaving a phantom heal behind. The server's
	// 400 verdict arrives mid-reconciliation, so it surfaces as a server
	// error, not a client-side validation error.
	stale := vitality.Task{ID: task.ID, UserID: "user-1", Title: "stale copy", Priority: vitality.PriorityLow}
	ctrl.RefreshEntities([]vitality.Task{stale}, nil)
	err = ctrl.Do(ctx, vitality.CompleteTask(stale.ID))
	require.Error(t, err)
	assert.True(t, vitality.IsType(err, vitality.ErrorServer), "got %v", err)
	assert.Equal(t, "Task already completed", vitality.AsEngineError(err).Message)
	assert.Equal(t, 58.0, ctrl.Subject().HP)
}

func TestClientServer_OverdueReport(t *testing.T) {
	client, _ := newStack(t)
	ctx := context.Background()

	_, err := client.CreatePet(ctx, api.CreatePetRequest{UserID: "user-1", Name: "Mochi"})
	require.NoError(t, err)

	due := time.Now().Add(-25 * time.Hour)
	_, err = client.CreateTask(ctx, api.CreateTaskRequest{
		UserID:   "user-1",
		Title:    "late already",
		Priority: vitality.PriorityHigh,
		DueDate:  &due,
	})
	require.NoError(t, err)

	report, err := client.ListOverdue(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, report.Tasks, 1)
	assert.Equal(t, 1, report.Tasks[0].DaysOverdue)
	assert.Equal(t, 10.0, report.Tasks[0].PotentialDamage)
	assert.Equal(t, 10.0, report.TotalDamage)
}
