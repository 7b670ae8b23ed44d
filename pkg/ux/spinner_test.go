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
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSpinner_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStdout(func() {
		s := NewSpinner("syncing")
		s.Start()
		s.Stop()
	})

	if output != "PROGRESS: syncing\n" {
		t.Errorf("expected single progress line, got %q", output)
	}
}

func TestSpinner_StartStop(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityFull)

	captureStdout(func() {
		s := NewSpinner("working").WithType(SpinnerHeartbeat)
		s.Start()
		time.Sleep(120 * time.Millisecond)
		s.Stop()
	})
	// No assertion on frames; the test passes if Stop returns without
	// deadlocking and the goroutine exits.
}

func TestSpinner_DoubleStartIsNoOp(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStdout(func() {
		s := NewSpinner("once")
		s.Start()
		s.Start()
		s.Stop()
	})

	if strings.Count(output, "PROGRESS") != 1 {
		t.Errorf("expected one progress line, got %q", output)
	}
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	s := NewSpinner("idle")
	// Must not panic or block.
	s.Stop()
}

func TestSpinner_UpdateMessage(t *testing.T) {
	s := NewSpinner("first")
	s.UpdateMessage("second")
	s.mu.Lock()
	got := s.message
	s.mu.Unlock()
	if got != "second" {
		t.Errorf("expected updated message, got %q", got)
	}
}

func TestWithSpinner_Success(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)

	var ran bool
	err := WithSpinner("step", func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !ran {
		t.Error("expected wrapped function to run")
	}
}

func TestWithSpinner_Error(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)

	want := errors.New("boom")
	err := WithSpinner("step", func() error { return want })
	if !errors.Is(err, want) {
		t.Errorf("expected wrapped error returned, got %v", err)
	}
}
