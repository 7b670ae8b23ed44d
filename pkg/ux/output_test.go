// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/StasisPet/pkg/vitality"
)

// Helper to capture stdout
func captureStdout(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// Helper to capture stderr
func captureStderr(f func()) string {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	f()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// =============================================================================
// Icon.Render Tests
// =============================================================================

func TestIcon_Render_Styled(t *testing.T) {
	for _, icon := range []Icon{IconSuccess, IconWarning, IconError, IconPending, IconHeart, IconSkull} {
		if icon.Render() == "" {
			t.Errorf("expected non-empty result for %q", icon)
		}
	}
}

func TestIcon_Render_Default(t *testing.T) {
	// Icons without specific styling pass through unchanged
	for _, icon := range []Icon{IconArrow, IconBullet, IconStreak} {
		result := icon.Render()
		if result != string(icon) {
			t.Errorf("expected %q for %q, got %q", string(icon), icon, result)
		}
	}
}

// =============================================================================
// Stage Styling Tests
// =============================================================================

func TestStageColor_EveryStageHasItsBandColor(t *testing.T) {
	tests := []struct {
		stage vitality.Stage
		want  lipgloss.Color
	}{
		{vitality.StagePristine, ColorPhosphor},
		{vitality.StageHealthy, ColorBioGreen},
		{vitality.StageCaution, ColorWarning},
		{vitality.StageDanger, ColorDanger},
		{vitality.StageCritical, ColorError},
	}
	for _, tt := range tests {
		if got := StageColor(tt.stage); got != tt.want {
			t.Errorf("StageColor(%v) = %v, want %v", tt.stage, got, tt.want)
		}
	}
}

func TestStageStyle_UsesStageColor(t *testing.T) {
	style := StageStyle(vitality.StageCritical)
	if style.GetForeground() != ColorError {
		t.Errorf("critical stage style should carry the error color")
	}
	if !style.GetBold() {
		t.Error("stage style should be bold")
	}
}

// =============================================================================
// Print Helper Tests
// =============================================================================

func TestTitle_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStdout(func() {
		Title("Containment Status")
	})

	// In machine mode, Title should output nothing
	if output != "" {
		t.Errorf("expected no output in machine mode, got %q", output)
	}
}

func TestTitle_FullMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityFull)

	output := captureStdout(func() {
		Title("Containment Status")
	})

	if output == "" {
		t.Error("expected styled output in full mode")
	}
}

func TestSuccess_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStdout(func() {
		Success("Task completed")
	})

	if output != "OK: Task completed\n" {
		t.Errorf("expected 'OK: Task completed', got %q", output)
	}
}

func TestError_MachineModeGoesToStderr(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStderr(func() {
		Error("backend unreachable")
	})

	if output != "ERROR: backend unreachable\n" {
		t.Errorf("expected stderr error line, got %q", output)
	}
}

func TestToast_SuppressedInMachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonality(Personality{Level: PersonalityMachine, ShowToasts: true})

	output := captureStdout(func() {
		Toast("+8 HP")
	})
	if output != "" {
		t.Errorf("expected no toast in machine mode, got %q", output)
	}
}

func TestToast_SuppressedWhenDisabled(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonality(Personality{Level: PersonalityFull, ShowToasts: false})

	output := captureStdout(func() {
		Toast("+8 HP")
	})
	if output != "" {
		t.Errorf("expected no toast when disabled, got %q", output)
	}
}

func TestToast_ShownInFullMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonality(Personality{Level: PersonalityFull, ShowToasts: true})

	output := captureStdout(func() {
		Toast("+8 HP")
	})
	if !strings.Contains(output, "+8 HP") {
		t.Errorf("expected toast text, got %q", output)
	}
}

func TestBox_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStdout(func() {
		Box("Subject", "HP 50/100")
	})

	if output != "Subject: HP 50/100\n" {
		t.Errorf("expected plain box line, got %q", output)
	}
}

func TestErrorBox_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStderr(func() {
		ErrorBox("NETWORK", "connection refused", "check backend_url")
	})

	if output != "ERROR NETWORK: connection refused\n" {
		t.Errorf("expected plain error line, got %q", output)
	}
}

// =============================================================================
// HPBar Tests
// =============================================================================

func TestHPBar_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)

	bar := HPBar(50, 100, 20)
	if bar != "50/100" {
		t.Errorf("expected plain fraction, got %q", bar)
	}
}

func TestHPBar_FullMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityFull)

	bar := HPBar(50, 100, 20)
	if !strings.Contains(bar, "50%") {
		t.Errorf("expected percentage in bar, got %q", bar)
	}
	if !strings.Contains(bar, "█") || !strings.Contains(bar, "░") {
		t.Errorf("expected both filled and empty segments at half HP, got %q", bar)
	}
}

func TestHPBar_ZeroMaxHP(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityFull)

	bar := HPBar(50, 0, 20)
	if !strings.Contains(bar, "0%") {
		t.Errorf("expected 0%% for zero max HP, got %q", bar)
	}
}

func TestRepeatChar(t *testing.T) {
	if got := repeatChar('x', 3); got != "xxx" {
		t.Errorf("expected xxx, got %q", got)
	}
	if got := repeatChar('x', 0); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	if got := repeatChar('x', -1); got != "" {
		t.Errorf("expected empty string for negative count, got %q", got)
	}
}
