// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/StasisPet/pkg/api"
	"github.com/AleutianAI/StasisPet/pkg/ux"
	"github.com/AleutianAI/StasisPet/pkg/vitality"
)

func runTaskAdd(cmd *cobra.Command, args []string) {
	userID := mustUserID()
	title := strings.Join(args, " ")

	priority := vitality.Priority(taskPriority)
	if !priority.Valid() {
		fail(vitality.NewValidationError(
			fmt.Sprintf("unknown priority %q (low, medium, high, critical)", taskPriority)))
	}

	var due *time.Time
	if taskDueIn != "" {
		offset, err := time.ParseDuration(taskDueIn)
		if err != nil {
			fail(vitality.NewValidationError(fmt.Sprintf("bad --due offset %q: %v", taskDueIn, err)))
		}
		t := time.Now().Add(offset)
		due = &t
	}

	ctx, cancel := cmdContext()
	defer cancel()

	task, err := client.CreateTask(ctx, api.CreateTaskRequest{
		UserID:      userID,
		Title:       title,
		Description: taskDescription,
		Priority:    priority,
		DueDate:     due,
	})
	if err != nil {
		fail(err)
	}

	log.Info("task created", "task_id", task.ID, "priority", string(task.Priority))
	ux.Success(fmt.Sprintf("added [%s] %s (+%g HP on completion)",
		shortID(task.ID), task.Title, task.Priority.HealAmount()))
}

func runTaskList(cmd *cobra.Command, args []string) {
	userID := mustUserID()

	ctx, cancel := cmdContext()
	defer cancel()

	tasks, err := client.ListTasks(ctx, userID)
	if err != nil {
		fail(err)
	}

	if len(tasks) == 0 {
		ux.Muted("no open tasks; the pet rests easy")
		return
	}

	ux.Title("Open tasks")
	now := time.Now()
	for _, task := range tasks {
		icon := ux.IconPending
		note := string(task.Priority)
		if task.Overdue(now) {
			icon = ux.IconWarning
			note = fmt.Sprintf("%s, overdue %dd", task.Priority, task.DaysOverdue(now))
		}
		fmt.Printf("%s %s %s %s\n",
			icon.Render(),
			ux.Styles.Muted.Render(shortID(task.ID)),
			task.Title,
			ux.Styles.Muted.Render("("+note+")"),
		)
	}
}

func runTaskDone(cmd *cobra.Command, args []string) {
	userID := mustUserID()

	ctx, cancel := cmdContext()
	defer cancel()

	taskID := resolveTaskID(ctx, userID, args[0])
	outcome, err := client.CompleteTask(ctx, taskID)
	if err != nil {
		fail(err)
	}

	log.Info("task completed", "task_id", taskID, "healed", outcome.Healed)
	if outcome.Message != "" {
		ux.Toast(outcome.Message)
	}
	ux.Success(fmt.Sprintf("done (+%g HP)", outcome.Healed))
}

func runTaskRm(cmd *cobra.Command, args []string) {
	userID := mustUserID()

	ctx, cancel := cmdContext()
	defer cancel()

	taskID := resolveTaskID(ctx, userID, args[0])
	if _, err := client.DeleteTask(ctx, taskID); err != nil {
		fail(err)
	}
	ux.Success("task deleted")
}

func runTaskOverdue(cmd *cobra.Command, args []string) {
	userID := mustUserID()

	ctx, cancel := cmdContext()
	defer cancel()

	report, err := client.ListOverdue(ctx, userID)
	if err != nil {
		fail(err)
	}

	if len(report.Tasks) == 0 {
		ux.Success("nothing overdue")
		return
	}

	ux.Title("Overdue tasks")
	for _, entry := range report.Tasks {
		fmt.Printf("%s %s %s %s\n",
			ux.IconWarning.Render(),
			ux.Styles.Muted.Render(shortID(entry.Task.ID)),
			entry.Task.Title,
			ux.Styles.Error.Render(fmt.Sprintf("(-%g HP/day, %dd overdue)",
				entry.PotentialDamage, entry.DaysOverdue)),
		)
	}
	ux.Warning(fmt.Sprintf("next sweep will deal %g HP total", report.TotalDamage))
}
