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

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/StasisPet/pkg/api"
	"github.com/AleutianAI/StasisPet/pkg/ux"
	"github.com/AleutianAI/StasisPet/pkg/vitality"
)

func runHabitAdd(cmd *cobra.Command, args []string) {
	userID := mustUserID()
	title := strings.Join(args, " ")

	ctx, cancel := cmdContext()
	defer cancel()

	habit, err := client.CreateHabit(ctx, api.CreateHabitRequest{
		UserID: userID,
		Title:  title,
	})
	if err != nil {
		fail(err)
	}

	log.Info("habit created", "habit_id", habit.ID)
	ux.Success(fmt.Sprintf("added [%s] %s (±%g HP per toggle)",
		shortID(habit.ID), habit.Title, vitality.HabitHealAmount))
}

func runHabitList(cmd *cobra.Command, args []string) {
	userID := mustUserID()

	ctx, cancel := cmdContext()
	defer cancel()

	habits, err := client.ListHabits(ctx, userID)
	if err != nil {
		fail(err)
	}

	if len(habits) == 0 {
		ux.Muted("no habits yet; `stasis habit add` to start a streak")
		return
	}

	ux.Title("Daily habits")
	now := time.Now()
	for _, habit := range habits {
		icon := ux.IconPending
		if habit.CompletedToday(now) {
			icon = ux.IconSuccess
		}
		fmt.Printf("%s %s %s %s\n",
			icon.Render(),
			ux.Styles.Muted.Render(shortID(habit.ID)),
			habit.Title,
			ux.Styles.Highlight.Render(fmt.Sprintf("%s%d", ux.IconStreak, habit.Streak)),
		)
	}
}

func runHabitCheck(cmd *cobra.Command, args []string) {
	userID := mustUserID()

	ctx, cancel := cmdContext()
	defer cancel()

	habitID := ""
	if len(args) > 0 {
		habitID = resolveHabitID(ctx, userID, args[0])
	} else if ux.IsInteractive() {
		// No ID given: pick from the list
		habits, err := client.ListHabits(ctx, userID)
		if err != nil {
			fail(err)
		}
		if len(habits) == 0 {
			fail(vitality.NewValidationError("no habits to check"))
		}
		options := make([]huh.Option[string], 0, len(habits))
		for _, habit := range habits {
			options = append(options, huh.NewOption(habit.Title, habit.ID))
		}
		form := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which habit?").
				Options(options...).
				Value(&habitID),
		))
		if err := form.Run(); err != nil {
			fail(err)
		}
	} else {
		fail(vitality.NewValidationError("habit id required"))
	}

	outcome, err := client.ToggleHabit(ctx, habitID)
	if err != nil {
		fail(err)
	}

	log.Info("habit toggled", "habit_id", habitID, "action", outcome.Action)
	if outcome.Action == "checked" {
		ux.Toast(outcome.Message)
		ux.Success(fmt.Sprintf("checked (+%g HP)", outcome.Healed))
	} else {
		ux.Warning(fmt.Sprintf("check cancelled (%g HP)", outcome.Healed))
	}
}

func runHabitRm(cmd *cobra.Command, args []string) {
	userID := mustUserID()

	ctx, cancel := cmdContext()
	defer cancel()

	habitID := resolveHabitID(ctx, userID, args[0])
	if _, err := client.DeleteHabit(ctx, habitID); err != nil {
		fail(err)
	}
	ux.Success("habit deleted")
}
