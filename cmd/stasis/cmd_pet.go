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
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/StasisPet/cmd/stasis/config"
	"github.com/AleutianAI/StasisPet/pkg/api"
	"github.com/AleutianAI/StasisPet/pkg/ux"
	"github.com/AleutianAI/StasisPet/pkg/validation"
	"github.com/AleutianAI/StasisPet/pkg/vitality"
)

func runPetCreate(cmd *cobra.Command, args []string) {
	userID := mustUserID()

	if petName == "" && ux.IsInteractive() {
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Name your pet").
				CharLimit(50).
				Value(&petName),
			huh.NewSelect[string]().
				Title("Character type").
				Options(huh.NewOptions("cat", "dog", "axolotl", "slime", "fern")...).
				Value(&petType),
		))
		if err := form.Run(); err != nil {
			fail(err)
		}
	}
	if petName == "" {
		fail(vitality.NewValidationError("a pet needs a name (use --name)"))
	}
	if err := validation.ValidatePetName(petName); err != nil {
		fail(vitality.NewValidationError(err.Error()))
	}

	ctx, cancel := cmdContext()
	defer cancel()

	pet, err := client.CreatePet(ctx, api.CreatePetRequest{
		UserID:        userID,
		Name:          petName,
		CharacterType: petType,
	})
	if err != nil {
		fail(err)
	}

	log.Info("pet created", "pet_id", pet.ID, "name", pet.Name)
	ux.Success(fmt.Sprintf("%s is in stasis. Keep them alive.", pet.Name))
}

func runPetStatus(cmd *cobra.Command, args []string) {
	userID := mustUserID()

	ctx, cancel := cmdContext()
	defer cancel()

	pet, err := client.GetPet(ctx, userID)
	if err != nil {
		fail(err)
	}

	now := time.Now()
	deadline := vitality.Project(pet.HP, config.Global.Game.DecayRatePerHour, now)
	view := vitality.Snapshot(pet, deadline, now)

	stage := ux.StageStyle(view.Stage)
	content := fmt.Sprintf("%s\n%s  %s\nsurvival: %s",
		ux.HPBar(pet.HP, pet.MaxHP, 30),
		stage.Render(view.StatusText),
		ux.Styles.Muted.Render(fmt.Sprintf("(%s)", view.Stage)),
		stage.Render(view.Countdown),
	)
	ux.Box(pet.Name, content)

	if view.IsCritical {
		ux.Warning("HP critical: complete a task or check a habit now")
	}
	if view.Status == vitality.StatusDead {
		ux.Error("subject terminated; `stasis pet revive` to try again")
	}
}

func runPetRevive(cmd *cobra.Command, args []string) {
	userID := mustUserID()

	ctx, cancel := cmdContext()
	defer cancel()

	pet, err := client.GetPet(ctx, userID)
	if err != nil {
		fail(err)
	}
	revived, err := client.RevivePet(ctx, pet.ID)
	if err != nil {
		fail(err)
	}

	log.Info("pet revived", "pet_id", revived.ID)
	ux.Success(fmt.Sprintf("%s is back at %.0f HP", revived.Name, revived.HP))
}

func runPetPurge(cmd *cobra.Command, args []string) {
	userID := mustUserID()

	if !forceDelete {
		if !ux.IsInteractive() {
			fail(vitality.NewValidationError("refusing to purge without --force"))
		}
		var confirmed bool
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Permanently delete your pet and its record?").
				Affirmative("Delete").
				Negative("Keep").
				Value(&confirmed),
		))
		if err := form.Run(); err != nil {
			fail(err)
		}
		if !confirmed {
			ux.Muted("purge cancelled")
			return
		}
	}

	ctx, cancel := cmdContext()
	defer cancel()

	pet, err := client.GetPet(ctx, userID)
	if err != nil {
		fail(err)
	}
	if err := client.PurgePet(ctx, pet.ID); err != nil {
		fail(err)
	}

	log.Info("pet purged", "pet_id", pet.ID)
	ux.Success("record purged")
}
