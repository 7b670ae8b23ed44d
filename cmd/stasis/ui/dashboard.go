// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ui implements the live terminal dashboard using bubbletea.
//
// # Description
//
// The dashboard renders the pet's HP bar, survival countdown, open tasks,
// and habit streaks, and lets the user mutate them without leaving the
// view. Every mutation goes through the vitality controller: the view
// repaints from the speculative state immediately and the server's
// verdict merges in when the round trip lands.
//
// # Thread Safety
//
// The model itself is single-threaded inside the bubbletea event loop.
// Backend calls run in tea commands on other goroutines; they only touch
// the controller, which is safe for concurrent use.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/StasisPet/pkg/api"
	"github.com/AleutianAI/StasisPet/pkg/ux"
	"github.com/AleutianAI/StasisPet/pkg/vitality"
)

// countdownInterval is the repaint cadence for the survival countdown.
// Fast enough that the centisecond digits visibly move.
const countdownInterval = 30 * time.Millisecond

// toastDuration is how long a celebration line stays on screen.
const toastDuration = 2 * time.Second

// =============================================================================
// Messages
// =============================================================================

// TickMsg advances the countdown clock.
type TickMsg time.Time

// StateLoadedMsg carries a full refresh from the backend.
type StateLoadedMsg struct {
	Subject vitality.Subject
	Tasks   []vitality.Task
	Habits  []vitality.Habit
	Err     error
}

// MutationMsg reports a completed reconciled mutation.
type MutationMsg struct {
	Err error
}

// TaskCreatedMsg reports the result of submitting a new task.
type TaskCreatedMsg struct {
	Task vitality.Task
	Err  error
}

// ToastExpiredMsg dismisses the celebration line.
type ToastExpiredMsg struct{}

// =============================================================================
// Data source
// =============================================================================

// DataSource is the slice of the API client the dashboard needs: the
// reconciled mutation surface plus the read and create calls.
type DataSource interface {
	vitality.Backend
	GetPet(ctx context.Context, userID string) (vitality.Subject, error)
	ListTasks(ctx context.Context, userID string) ([]vitality.Task, error)
	ListHabits(ctx context.Context, userID string) ([]vitality.Habit, error)
	CreateTask(ctx context.Context, req api.CreateTaskRequest) (vitality.Task, error)
}

// Focus identifies which pane receives key input.
type Focus int

const (
	FocusTasks Focus = iota
	FocusHabits
	FocusInput
)

// Config configures the dashboard model.
type Config struct {
	UserID string

	// DecayRatePerHour drives the survival projection.
	DecayRatePerHour float64
}

// =============================================================================
// Model
// =============================================================================

// Model is the bubbletea model for the dashboard.
type Model struct {
	cfg    Config
	source DataSource
	ctrl   *vitality.Controller

	hpBar progress.Model
	input textinput.Model

	focus  Focus
	cursor int

	// Projection anchor: recomputed whenever HP changes.
	lastHP   float64
	deadline time.Time

	now      time.Time
	width    int
	loaded   bool
	quitting bool
}

// NewModel creates a dashboard over an already-constructed controller.
// The controller's backend and source should be the same client.
func NewModel(cfg Config, source DataSource, ctrl *vitality.Controller) Model {
	bar := progress.New(progress.WithGradient(string(ux.ColorError), string(ux.ColorPhosphor)))
	bar.Width = 40

	ti := textinput.New()
	ti.Placeholder = "new task title"
	ti.CharLimit = 200

	now := time.Now()
	sub := ctrl.Subject()
	return Model{
		cfg:      cfg,
		source:   source,
		ctrl:     ctrl,
		hpBar:    bar,
		input:    ti,
		focus:    FocusTasks,
		lastHP:   sub.HP,
		deadline: vitality.Project(sub.HP, cfg.DecayRatePerHour, now),
		now:      now,
		loaded:   sub.ID != "",
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(countdownInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// refresh pulls the authoritative state and merges it in.
func (m Model) refresh() tea.Cmd {
	source, userID := m.source, m.cfg.UserID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pet, err := source.GetPet(ctx, userID)
		if err != nil {
			return StateLoadedMsg{Err: err}
		}
		tasks, err := source.ListTasks(ctx, userID)
		if err != nil {
			return StateLoadedMsg{Err: err}
		}
		habits, err := source.ListHabits(ctx, userID)
		if err != nil {
			return StateLoadedMsg{Err: err}
		}
		return StateLoadedMsg{Subject: pet, Tasks: tasks, Habits: habits}
	}
}

func (m Model) mutate(tr vitality.Transition) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return MutationMsg{Err: ctrl.Do(ctx, tr)}
	}
}

func (m Model) submitTask(title string) tea.Cmd {
	source, userID := m.source, m.cfg.UserID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		task, err := source.CreateTask(ctx, api.CreateTaskRequest{
			UserID:   userID,
			Title:    title,
			Priority: vitality.PriorityMedium,
		})
		return TaskCreatedMsg{Task: task, Err: err}
	}
}

func expireToast() tea.Cmd {
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{}
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 20; w > 10 && w < 60 {
			m.hpBar.Width = w
		}
		return m, nil

	case TickMsg:
		m.now = time.Time(msg)
		m.syncProjection()
		return m, tick()

	case StateLoadedMsg:
		if msg.Err == nil {
			m.ctrl.RefreshSubject(msg.Subject)
			m.ctrl.RefreshEntities(msg.Tasks, msg.Habits)
			m.loaded = true
			m.clampCursor()
		}
		m.syncProjection()
		return m, nil

	case MutationMsg:
		m.clampCursor()
		m.syncProjection()
		if msg.Err == nil && m.ctrl.Toast() != "" {
			return m, expireToast()
		}
		return m, nil

	case TaskCreatedMsg:
		if msg.Err == nil {
			// The new task becomes part of the local collection at once.
			st := m.ctrl.State()
			m.ctrl.RefreshEntities(append([]vitality.Task{msg.Task}, st.Tasks...), st.Habits)
		}
		return m, nil

	case ToastExpiredMsg:
		m.ctrl.ClearToast()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focus == FocusInput {
		switch msg.String() {
		case "enter":
			title := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			m.input.Blur()
			m.focus = FocusTasks
			if title == "" {
				return m, nil
			}
			return m, m.submitTask(title)
		case "esc":
			m.input.Reset()
			m.input.Blur()
			m.focus = FocusTasks
			return m, nil
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.ctrl.Close()
		return m, tea.Quit

	case "tab":
		if m.focus == FocusTasks {
			m.focus = FocusHabits
		} else {
			m.focus = FocusTasks
		}
		m.cursor = 0
		return m, nil

	case "j", "down":
		m.cursor++
		m.clampCursor()
		return m, nil

	case "k", "up":
		m.cursor--
		m.clampCursor()
		return m, nil

	case "n":
		m.focus = FocusInput
		return m, m.input.Focus()

	case "r":
		return m, m.refresh()

	case "e":
		m.ctrl.ClearErr()
		return m, nil

	case "enter", " ":
		st := m.ctrl.State()
		if m.focus == FocusTasks {
			if task, ok := selected(st.Tasks, m.cursor); ok {
				return m, m.mutate(vitality.CompleteTask(task.ID))
			}
		} else {
			if habit, ok := selected(st.Habits, m.cursor); ok {
				return m, m.mutate(vitality.ToggleHabit(habit.ID, m.now))
			}
		}
		return m, nil

	case "x":
		st := m.ctrl.State()
		if m.focus == FocusTasks {
			if task, ok := selected(st.Tasks, m.cursor); ok {
				return m, m.mutate(vitality.DeleteTask(task.ID))
			}
		} else {
			if habit, ok := selected(st.Habits, m.cursor); ok {
				return m, m.mutate(vitality.DeleteHabit(habit.ID))
			}
		}
		return m, nil
	}

	return m, nil
}

func selected[T any](items []T, cursor int) (T, bool) {
	var zero T
	if cursor < 0 || cursor >= len(items) {
		return zero, false
	}
	return items[cursor], true
}

func (m *Model) clampCursor() {
	st := m.ctrl.State()
	limit := len(st.Tasks)
	if m.focus == FocusHabits {
		limit = len(st.Habits)
	}
	if m.cursor >= limit {
		m.cursor = limit - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// syncProjection re-anchors the survival deadline when HP moves.
func (m *Model) syncProjection() {
	hp := m.ctrl.Subject().HP
	if hp != m.lastHP {
		m.lastHP = hp
		m.deadline = vitality.Project(hp, m.cfg.DecayRatePerHour, m.now)
	}
}

// =============================================================================
// View
// =============================================================================

var (
	paneTitle  = lipgloss.NewStyle().Bold(true).Foreground(ux.ColorBioGreen)
	cursorMark = lipgloss.NewStyle().Foreground(ux.ColorPhosphor).Render("▸ ")
	dimText    = lipgloss.NewStyle().Foreground(ux.ColorMuted)
	errBanner  = lipgloss.NewStyle().
			Foreground(ux.ColorError).
			Border(lipgloss.NormalBorder()).
			BorderForeground(ux.ColorError).
			Padding(0, 1)
	toastLine = lipgloss.NewStyle().Bold(true).Foreground(ux.ColorPhosphor)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.loaded {
		return dimText.Render("connecting to stasisd...") + "\n"
	}

	st := m.ctrl.State()
	view := vitality.Snapshot(st.Subject, m.deadline, m.now)

	var b strings.Builder

	// Header: name, HP bar, status, countdown
	stage := ux.StageStyle(view.Stage)
	b.WriteString(paneTitle.Render(st.Subject.Name))
	b.WriteString("  ")
	b.WriteString(stage.Render(view.StatusText))
	b.WriteString("\n")
	b.WriteString(m.hpBar.ViewAs(view.HPPercent / 100))
	b.WriteString(dimText.Render(fmt.Sprintf(" %.0f/%.0f", st.Subject.HP, st.Subject.MaxHP)))
	b.WriteString("\n")
	b.WriteString(dimText.Render("survival "))
	b.WriteString(stage.Render(view.Countdown))
	b.WriteString("\n\n")

	// Error banner persists until cleared; toast auto-expires.
	if engErr := m.ctrl.Err(); engErr != nil {
		b.WriteString(errBanner.Render(engErr.Message))
		b.WriteString("\n")
	}
	if toast := m.ctrl.Toast(); toast != "" {
		b.WriteString(toastLine.Render(toast))
		b.WriteString("\n")
	}

	b.WriteString(m.renderTasks(st))
	b.WriteString("\n")
	b.WriteString(m.renderHabits(st))
	b.WriteString("\n")

	if m.focus == FocusInput {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString(dimText.Render("enter complete/toggle · n new task · x delete · tab pane · r refresh · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderTasks(st vitality.State) string {
	var b strings.Builder
	b.WriteString(paneTitle.Render("TASKS"))
	b.WriteString("\n")
	if len(st.Tasks) == 0 {
		b.WriteString(dimText.Render("  nothing pending"))
		b.WriteString("\n")
		return b.String()
	}
	for i, task := range st.Tasks {
		mark := "  "
		if m.focus == FocusTasks && i == m.cursor {
			mark = cursorMark
		}
		line := fmt.Sprintf("%s%s %s", mark, task.Title,
			dimText.Render("("+string(task.Priority)+")"))
		if task.Overdue(m.now) {
			line += " " + ux.Styles.Error.Render("overdue")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHabits(st vitality.State) string {
	var b strings.Builder
	b.WriteString(paneTitle.Render("HABITS"))
	b.WriteString("\n")
	if len(st.Habits) == 0 {
		b.WriteString(dimText.Render("  no streaks yet"))
		b.WriteString("\n")
		return b.String()
	}
	for i, habit := range st.Habits {
		mark := "  "
		if m.focus == FocusHabits && i == m.cursor {
			mark = cursorMark
		}
		check := "○"
		if habit.CompletedToday(m.now) {
			check = ux.Styles.Success.Render("✓")
		}
		b.WriteString(fmt.Sprintf("%s%s %s %s", mark, check, habit.Title,
			toastLine.Render(fmt.Sprintf("⚡%d", habit.Streak))))
		b.WriteString("\n")
	}
	return b.String()
}
