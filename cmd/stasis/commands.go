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
	"github.com/spf13/cobra"

	"github.com/AleutianAI/StasisPet/cmd/stasis/config"
	"github.com/AleutianAI/StasisPet/pkg/api"
	"github.com/AleutianAI/StasisPet/pkg/logging"
	"github.com/AleutianAI/StasisPet/pkg/ux"
)

// --- Global Command Variables ---
var (
	petName          string
	petType          string
	taskPriority     string
	taskDescription  string
	taskDueIn        string
	forceDelete      bool
	personalityLevel string // UX personality level (full/standard/minimal/machine)

	rootCmd = &cobra.Command{
		Use:   "stasis",
		Short: "A cli for the stasis productivity pet",
		Long: `Stasis keeps a virtual pet alive on the other side of your todo
				list. Completing tasks and daily habits heals it; neglect and
				overdue work drain it. The pet's true state lives on the
				stasisd server; this client mirrors it optimistically.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := config.Load(); err != nil {
				ux.Error("failed to load config: " + err.Error())
				return
			}
			initPersonality()
			log = logging.New(logging.Config{
				Level:   logging.ParseLevel(config.Global.Log.Level),
				LogDir:  config.Global.Log.Dir,
				Service: "stasis",
				Quiet:   true,
			})
			client = api.NewClient(config.Global.Backend.BaseURL)
		},
	}

	// --- Pet ---
	petCmd = &cobra.Command{
		Use:   "pet",
		Short: "Manage your stasis pet",
	}
	petCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a new pet (replaces your current one)",
		Run:   runPetCreate, // Defined in cmd_pet.go
	}
	petStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the pet's HP, stage, and projected survival time",
		Run:   runPetStatus, // Defined in cmd_pet.go
	}
	petReviveCmd = &cobra.Command{
		Use:   "revive",
		Short: "Restore a terminated pet to full HP",
		Run:   runPetRevive, // Defined in cmd_pet.go
	}
	petPurgeCmd = &cobra.Command{
		Use:   "purge",
		Short: "DANGER: Permanently delete the pet and its record",
		Run:   runPetPurge, // Defined in cmd_pet.go
	}

	// --- Tasks ---
	taskCmd = &cobra.Command{
		Use:   "task",
		Short: "Manage one-shot tasks",
	}
	taskAddCmd = &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task; completing it will heal the pet",
		Args:  cobra.MinimumNArgs(1),
		Run:   runTaskAdd, // Defined in cmd_task.go
	}
	taskListCmd = &cobra.Command{
		Use:   "list",
		Short: "List open tasks, newest first",
		Run:   runTaskList, // Defined in cmd_task.go
	}
	taskDoneCmd = &cobra.Command{
		Use:   "done [task_id]",
		Short: "Complete a task and heal the pet",
		Args:  cobra.ExactArgs(1),
		Run:   runTaskDone, // Defined in cmd_task.go
	}
	taskRmCmd = &cobra.Command{
		Use:   "rm [task_id]",
		Short: "Delete a task without completing it",
		Args:  cobra.ExactArgs(1),
		Run:   runTaskRm, // Defined in cmd_task.go
	}
	taskOverdueCmd = &cobra.Command{
		Use:   "overdue",
		Short: "Preview the damage the next overdue sweep would deal",
		Run:   runTaskOverdue, // Defined in cmd_task.go
	}

	// --- Habits ---
	habitCmd = &cobra.Command{
		Use:   "habit",
		Short: "Manage daily habits and streaks",
	}
	habitAddCmd = &cobra.Command{
		Use:   "add [title]",
		Short: "Add a daily habit",
		Args:  cobra.MinimumNArgs(1),
		Run:   runHabitAdd, // Defined in cmd_habit.go
	}
	habitListCmd = &cobra.Command{
		Use:   "list",
		Short: "List habits with their streaks",
		Run:   runHabitList, // Defined in cmd_habit.go
	}
	habitCheckCmd = &cobra.Command{
		Use:   "check [habit_id]",
		Short: "Toggle today's check for a habit",
		Run:   runHabitCheck, // Defined in cmd_habit.go
	}
	habitRmCmd = &cobra.Command{
		Use:   "rm [habit_id]",
		Short: "Delete a habit and its streak",
		Args:  cobra.ExactArgs(1),
		Run:   runHabitRm, // Defined in cmd_habit.go
	}

	// --- Sync ---
	syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Trigger an external task-source sync on the server",
		Run:   runSync, // Defined in cmd_sync.go
	}

	// --- Dashboard ---
	dashboardCmd = &cobra.Command{
		Use:     "dashboard",
		Short:   "Open the live terminal dashboard",
		Aliases: []string{"ui", "watch"},
		Run:     runDashboard, // Defined in cmd_dashboard.go
	}
)

// init runs when the Go program starts
func init() {
	// Global UX personality flag
	rootCmd.PersistentFlags().StringVar(&personalityLevel, "personality", "",
		"Output style: full (default), standard, minimal, or machine (scripting)")

	rootCmd.AddCommand(petCmd)
	petCmd.AddCommand(petCreateCmd)
	petCreateCmd.Flags().StringVar(&petName, "name", "", "Name for the new pet")
	petCreateCmd.Flags().StringVar(&petType, "type", "", "Character type (e.g. cat, axolotl)")
	petCmd.AddCommand(petStatusCmd)
	petCmd.AddCommand(petReviveCmd)
	petCmd.AddCommand(petPurgeCmd)
	petPurgeCmd.Flags().BoolVar(&forceDelete, "force", false, "Required to confirm the permanent deletion")

	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskAddCmd)
	taskAddCmd.Flags().StringVarP(&taskPriority, "priority", "p", "medium",
		"Task priority (low, medium, high, critical); higher heals more and bleeds harder when overdue")
	taskAddCmd.Flags().StringVar(&taskDescription, "desc", "", "Optional longer description")
	taskAddCmd.Flags().StringVar(&taskDueIn, "due", "", "Due offset from now (e.g. 24h, 72h)")
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskDoneCmd)
	taskCmd.AddCommand(taskRmCmd)
	taskCmd.AddCommand(taskOverdueCmd)

	rootCmd.AddCommand(habitCmd)
	habitCmd.AddCommand(habitAddCmd)
	habitCmd.AddCommand(habitListCmd)
	habitCmd.AddCommand(habitCheckCmd)
	habitCmd.AddCommand(habitRmCmd)

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(dashboardCmd)
}

// initPersonality resolves the output style: flag beats config beats
// environment/terminal detection.
func initPersonality() {
	switch {
	case personalityLevel != "":
		ux.SetPersonalityLevel(ux.ParsePersonalityLevel(personalityLevel))
	case config.Global.UX.Personality != "":
		ux.SetPersonalityLevel(ux.ParsePersonalityLevel(config.Global.UX.Personality))
	default:
		ux.InitPersonality()
	}
	p := ux.GetPersonality()
	p.ShowToasts = config.Global.UX.ShowToasts
	ux.SetPersonality(p)
}
