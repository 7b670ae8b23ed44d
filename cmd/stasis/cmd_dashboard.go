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
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/StasisPet/cmd/stasis/config"
	"github.com/AleutianAI/StasisPet/cmd/stasis/ui"
	"github.com/AleutianAI/StasisPet/pkg/ux"
	"github.com/AleutianAI/StasisPet/pkg/vitality"
)

func runDashboard(cmd *cobra.Command, args []string) {
	userID := mustUserID()

	// Piped output can't host an interactive view; fall back to the
	// one-shot status render.
	if !ux.IsInteractive() {
		runPetStatus(cmd, args)
		return
	}

	ctx, cancel := cmdContext()
	defer cancel()

	pet, err := client.GetPet(ctx, userID)
	if err != nil {
		fail(err)
	}
	tasks, err := client.ListTasks(ctx, userID)
	if err != nil {
		fail(err)
	}
	habits, err := client.ListHabits(ctx, userID)
	if err != nil {
		fail(err)
	}

	ctrl := vitality.NewController(vitality.State{
		Subject: pet,
		Tasks:   tasks,
		Habits:  habits,
	}, client, log.Slog())
	defer ctrl.Close()

	model := ui.NewModel(ui.Config{
		UserID:           userID,
		DecayRatePerHour: config.Global.Game.DecayRatePerHour,
	}, client, ctrl)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fail(err)
	}
}
