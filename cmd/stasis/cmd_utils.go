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
	"context"
	"fmt"
	"os"
	"time"

	"github.com/AleutianAI/StasisPet/cmd/stasis/config"
	"github.com/AleutianAI/StasisPet/pkg/ux"
	"github.com/AleutianAI/StasisPet/pkg/validation"
	"github.com/AleutianAI/StasisPet/pkg/vitality"
)

// cmdContext bounds every one-shot CLI call with the configured timeout.
func cmdContext() (context.Context, context.CancelFunc) {
	timeout := time.Duration(config.Global.Backend.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// mustUserID returns the configured user or exits with guidance.
func mustUserID() string {
	id := config.Global.User.ID
	if id == "" {
		path, _ := config.Path()
		ux.Error("no user configured")
		ux.Muted(fmt.Sprintf("set user.id in %s", path))
		os.Exit(1)
	}
	return id
}

// fail prints an engine error with its remediation hint and exits.
func fail(err error) {
	if engErr := vitality.AsEngineError(err); engErr != nil {
		ux.ErrorBox(engErr.Type.String(), engErr.Message, engErr.Remediation)
	} else {
		ux.Error(err.Error())
	}
	if log != nil {
		log.Error("command failed", "error", err.Error())
		log.Close()
	}
	os.Exit(1)
}

// shortID trims a uuid for list display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveTaskID expands a full task id or a unique prefix of one.
// List output shows truncated ids, so mutation commands take them back.
func resolveTaskID(ctx context.Context, userID, arg string) string {
	tasks, err := client.ListTasks(ctx, userID)
	if err != nil {
		fail(err)
	}
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	id, err := validation.ExpandPrefix(ids, arg)
	if err != nil {
		fail(vitality.NewValidationError(err.Error()))
	}
	return id
}

// resolveHabitID expands a full habit id or a unique prefix of one.
func resolveHabitID(ctx context.Context, userID, arg string) string {
	habits, err := client.ListHabits(ctx, userID)
	if err != nil {
		fail(err)
	}
	ids := make([]string, len(habits))
	for i, habit := range habits {
		ids[i] = habit.ID
	}
	id, err := validation.ExpandPrefix(ids, arg)
	if err != nil {
		fail(vitality.NewValidationError(err.Error()))
	}
	return id
}
