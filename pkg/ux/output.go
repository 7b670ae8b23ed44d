// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux provides rich terminal output styling for the stasis CLI.
package ux

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/StasisPet/pkg/vitality"
)

// Stasis color palette - containment-lab phosphor greens and alarm reds
var (
	// Primary palette (brightest to darkest)
	ColorPhosphor   = lipgloss.Color("#39FF88") // Bright phosphor - healthy, success
	ColorBioGreen   = lipgloss.Color("#2ECC71") // Primary green - main brand color
	ColorSeafoam    = lipgloss.Color("#58D6A3") // Seafoam - interactive elements
	ColorMoss       = lipgloss.Color("#1E8F5A") // Moss - secondary elements
	ColorDeepGreen  = lipgloss.Color("#14663F") // Deep green - borders, accents
	ColorTerminalBG = lipgloss.Color("#0B1F16") // Terminal background green-black

	// Dark palette (for backgrounds, muted elements)
	ColorSlate   = lipgloss.Color("#3A4A44") // Slate - muted text, borders
	ColorDarkest = lipgloss.Color("#0A130E") // Darkest - near black

	// Semantic colors (keeping standard conventions for clarity)
	ColorSuccess  = lipgloss.Color("#39FF88") // Phosphor for success
	ColorWarning  = lipgloss.Color("#F4D03F") // Gold/amber for warnings
	ColorDanger   = lipgloss.Color("#E67E22") // Orange for danger band
	ColorError    = lipgloss.Color("#E74C3C") // Red for errors and critical HP
	ColorTerminal = lipgloss.Color("#7F1D1D") // Dark red for terminated subjects
	ColorMuted    = lipgloss.Color("#3A4A44") // Slate for muted text
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	// Text styles
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style

	// Box styles
	Box        lipgloss.Style
	WarningBox lipgloss.Style
	ErrorBox   lipgloss.Style

	// Status indicators
	StatusOK      lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
	StatusPending lipgloss.Style
}{
	// Text styles
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorPhosphor),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorBioGreen),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorPhosphor).Bold(true),

	// Box styles
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDeepGreen).
		Padding(0, 1),
	WarningBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorWarning).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),

	// Status indicators
	StatusOK:      lipgloss.NewStyle().SetString("✓").Foreground(ColorSuccess),
	StatusWarning: lipgloss.NewStyle().SetString("⚠").Foreground(ColorWarning),
	StatusError:   lipgloss.NewStyle().SetString("✗").Foreground(ColorError),
	StatusPending: lipgloss.NewStyle().SetString("○").Foreground(ColorSlate),
}

// StageColor maps a vitality stage to its display color. The five bands
// match the HP thresholds the engine classifies with.
func StageColor(stage vitality.Stage) lipgloss.Color {
	switch stage {
	case vitality.StagePristine:
		return ColorPhosphor
	case vitality.StageHealthy:
		return ColorBioGreen
	case vitality.StageCaution:
		return ColorWarning
	case vitality.StageDanger:
		return ColorDanger
	default:
		return ColorError
	}
}

// StageStyle returns a bold style in the stage's color.
func StageStyle(stage vitality.Stage) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(StageColor(stage))
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconPending Icon = "○"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
	IconHeart   Icon = "♥"
	IconSkull   Icon = "☠"
	IconStreak  Icon = "⚡"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess, IconHeart:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError, IconSkull:
		return Styles.Error.Render(string(i))
	case IconPending:
		return Styles.Muted.Render(string(i))
	default:
		return string(i)
	}
}

// Print helpers that respect personality level

// Title prints a styled title
func Title(text string) {
	if GetPersonality().Level == PersonalityMachine {
		return
	}
	fmt.Println(Styles.Title.Render(text))
}

// Success prints a success message with checkmark
func Success(text string) {
	p := GetPersonality()
	switch p.Level {
	case PersonalityMachine:
		fmt.Fprintf(os.Stdout, "OK: %s\n", text)
	case PersonalityMinimal:
		fmt.Printf("%s %s\n", IconSuccess.Render(), text)
	default:
		fmt.Printf("%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
	}
}

// Warning prints a warning message
func Warning(text string) {
	p := GetPersonality()
	switch p.Level {
	case PersonalityMachine:
		fmt.Fprintf(os.Stderr, "WARN: %s\n", text)
	case PersonalityMinimal:
		fmt.Printf("%s %s\n", IconWarning.Render(), text)
	default:
		fmt.Printf("%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
	}
}

// Error prints an error message
func Error(text string) {
	p := GetPersonality()
	switch p.Level {
	case PersonalityMachine:
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", text)
	case PersonalityMinimal:
		fmt.Printf("%s %s\n", IconError.Render(), text)
	default:
		fmt.Printf("%s %s\n", IconError.Render(), Styles.Error.Render(text))
	}
}

// Info prints an informational message
func Info(text string) {
	p := GetPersonality()
	switch p.Level {
	case PersonalityMachine:
		fmt.Println(text)
	default:
		fmt.Printf("%s %s\n", Styles.Muted.Render("│"), text)
	}
}

// Muted prints muted/secondary text
func Muted(text string) {
	if GetPersonality().Level == PersonalityMachine {
		return
	}
	fmt.Println(Styles.Muted.Render(text))
}

// Toast prints a transient celebration line (habit streaks, task heals).
// Suppressed when toasts are disabled or output is machine-parsed.
func Toast(text string) {
	p := GetPersonality()
	if !p.ShowToasts || p.Level == PersonalityMachine {
		return
	}
	fmt.Printf("%s %s\n", IconHeart.Render(), Styles.Highlight.Render(text))
}

// Box prints text in a rounded box
func Box(title, content string) {
	if GetPersonality().Level == PersonalityMachine {
		fmt.Printf("%s: %s\n", title, content)
		return
	}
	boxStyle := Styles.Box.Width(60)
	titleLine := Styles.Title.Render(title)
	fmt.Println(boxStyle.Render(titleLine + "\n" + content))
}

// ErrorBox prints a structured error with remediation guidance.
func ErrorBox(title, content, remediation string) {
	if GetPersonality().Level == PersonalityMachine {
		fmt.Fprintf(os.Stderr, "ERROR %s: %s\n", title, content)
		return
	}
	body := content
	if remediation != "" {
		body += "\n" + Styles.Muted.Render(remediation)
	}
	boxStyle := Styles.ErrorBox.Width(60)
	titleLine := Styles.Error.Bold(true).Render(title)
	fmt.Println(boxStyle.Render(titleLine + "\n" + body))
}

// HPBar renders the subject's health as a stage-colored bar.
func HPBar(hp, maxHP float64, width int) string {
	percent := vitality.HPPercent(hp, maxHP)
	if GetPersonality().Level == PersonalityMachine {
		return fmt.Sprintf("%.0f/%.0f", hp, maxHP)
	}
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	empty := width - filled

	stage := vitality.ClassifyStage(hp, maxHP)
	bar := lipgloss.NewStyle().Foreground(StageColor(stage)).Render(repeatChar('█', filled)) +
		Styles.Muted.Render(repeatChar('░', empty))

	return fmt.Sprintf("%s %3.0f%%", bar, percent)
}

func repeatChar(c rune, n int) string {
	if n <= 0 {
		return ""
	}
	result := make([]rune, n)
	for i := range result {
		result[i] = c
	}
	return string(result)
}
