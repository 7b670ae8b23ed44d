// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package vitality

import (
	"fmt"
	"sync"
	"time"
)

// DefaultDecayRatePerHour is the fixed linear decay rate used for the
// survival projection. This is a client-side prediction only; the backend
// applies its own (quadratic) decay and its values always win on merge.
const DefaultDecayRatePerHour = 0.5

// TerminatedCountdown is rendered instead of a numeric timer once the
// subject is dead.
const TerminatedCountdown = "00d 00:00:00.00"

// tickInterval is the countdown refresh period. Sub-second so the
// centisecond field visibly counts down.
const tickInterval = 30 * time.Millisecond

// Project computes the predicted time of termination for a subject with
// the given HP under a fixed linear decay rate.
//
// The deadline is now + hp/ratePerHour hours. If hp <= 0 (or the rate is
// not positive) the subject is already expired and the deadline is now.
// The projection is recomputed from the then-current HP on every HP
// change, never ticked down from a stale baseline.
func Project(hp, ratePerHour float64, now time.Time) time.Time {
	if hp <= 0 || ratePerHour <= 0 {
		return now
	}
	ms := hp / ratePerHour * 3600 * 1000
	return now.Add(time.Duration(ms) * time.Millisecond)
}

// Countdown returns the remaining time until deadline, clamped at zero.
// It never returns a negative duration.
func Countdown(deadline, now time.Time) time.Duration {
	d := deadline.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// FormatCountdown renders a duration as "DDd HH:MM:SS.CC".
func FormatCountdown(d time.Duration) string {
	if d <= 0 {
		return TerminatedCountdown
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second
	centis := d / (10 * time.Millisecond)
	return fmt.Sprintf("%02dd %02d:%02d:%02d.%02d", days, hours, minutes, seconds, centis)
}

// CountdownTicker drives a sub-second survival countdown for a single
// projection. It re-derives the remaining time on each tick by diffing
// deadline minus now, clamps at zero, and stops itself permanently once
// the floor is reached. It never fires after reaching zero.
//
// A ticker's lifetime is bounded by its projection: the owner tears it
// down (Stop) and starts a fresh one whenever HP changes, and on
// teardown of the owning view. Stop is idempotent and safe to call from
// any goroutine.
type CountdownTicker struct {
	deadline time.Time
	onTick   func(remaining time.Duration)

	mu        sync.Mutex
	isRunning bool
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewCountdownTicker creates a ticker for the given deadline. onTick is
// invoked from the ticker goroutine with the clamped remaining duration,
// including exactly one final call with zero when the countdown expires.
func NewCountdownTicker(deadline time.Time, onTick func(remaining time.Duration)) *CountdownTicker {
	return &CountdownTicker{
		deadline: deadline,
		onTick:   onTick,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins ticking. It returns immediately; ticks are delivered on a
// background goroutine until the countdown reaches zero or Stop is called.
func (t *CountdownTicker) Start() {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return
	}
	t.isRunning = true
	t.mu.Unlock()

	go func() {
		defer close(t.done)
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-t.stop:
				return
			case now := <-ticker.C:
				remaining := Countdown(t.deadline, now)
				t.onTick(remaining)
				if remaining == 0 {
					// Floor reached: the ticker is responsible for
					// stopping itself and must never fire again.
					return
				}
			}
		}
	}()
}

// Stop tears the ticker down and waits for the tick goroutine to exit, so
// no callback can run after Stop returns.
func (t *CountdownTicker) Stop() {
	t.mu.Lock()
	running := t.isRunning
	t.mu.Unlock()

	t.stopOnce.Do(func() { close(t.stop) })
	if running {
		<-t.done
	}
}
