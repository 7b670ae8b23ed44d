//go:build ignore

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// seed_demo populates a running stasisd with a demo pet, a handful of
// tasks at each priority, and two habits, so the CLI and dashboard have
// something to show during development.
//
// Usage:
//
//	go run scripts/seed_demo.go
//	STASIS_BASE_URL=http://localhost:8420 STASIS_USER_ID=demo go run scripts/seed_demo.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/AleutianAI/StasisPet/pkg/api"
	"github.com/AleutianAI/StasisPet/pkg/vitality"
)

func main() {
	baseURL := os.Getenv("STASIS_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8420"
	}
	userID := os.Getenv("STASIS_USER_ID")
	if userID == "" {
		userID = "demo"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client := api.NewClient(baseURL)

	pet, err := client.CreatePet(ctx, api.CreatePetRequest{
		UserID:        userID,
		Name:          "Mochi",
		CharacterType: "axolotl",
	})
	if err != nil {
		log.Fatalf("create pet: %v", err)
	}
	fmt.Printf("pet %s (%s) at %.0f HP\n", pet.Name, pet.ID, pet.HP)

	overdue := time.Now().Add(-26 * time.Hour)
	tasks := []api.CreateTaskRequest{
		{UserID: userID, Title: "write weekly report", Priority: vitality.PriorityHigh},
		{UserID: userID, Title: "reply to the thread", Priority: vitality.PriorityLow},
		{UserID: userID, Title: "fix the flaky pipeline", Priority: vitality.PriorityCritical},
		{UserID: userID, Title: "book dentist", Priority: vitality.PriorityMedium, DueDate: &overdue},
	}
	for _, req := range tasks {
		task, err := client.CreateTask(ctx, req)
		if err != nil {
			log.Fatalf("create task %q: %v", req.Title, err)
		}
		fmt.Printf("task %s [%s]\n", task.Title, task.Priority)
	}

	for _, title := range []string{"morning run", "read 20 pages"} {
		habit, err := client.CreateHabit(ctx, api.CreateHabitRequest{UserID: userID, Title: title})
		if err != nil {
			log.Fatalf("create habit %q: %v", title, err)
		}
		fmt.Printf("habit %s\n", habit.Title)
	}

	fmt.Println("done; try `stasis dashboard`")
}
