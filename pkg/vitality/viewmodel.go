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

import "time"

// TerminatedText replaces the numeric countdown once the subject is dead.
const TerminatedText = "TERMINATED"

// View is the presentation-ready snapshot of the subject's vitality. It
// carries no state of its own and is recomputed whenever the subject or
// the tick clock changes.
type View struct {
	Stage      Stage
	Status     Status
	StatusText string

	// HPPercent is hp/maxHp*100, clamped to [0, 100].
	HPPercent float64

	// Countdown is the rendered remaining-survival string, or
	// TerminatedText when the subject is dead.
	Countdown string

	IsCritical bool
	IsWarning  bool
}

// HPPercent returns hp/maxHp*100 clamped to [0, 100]. A non-positive
// maxHp yields 0.
func HPPercent(hp, maxHP float64) float64 {
	if maxHP <= 0 {
		return 0
	}
	percent := hp / maxHP * 100
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// Snapshot composes the classifier and projector outputs for a subject.
//
// deadline is the projection anchored at the last HP change (see Project);
// now is the tick clock. Snapshot reads neither the network nor timers.
func Snapshot(sub Subject, deadline, now time.Time) View {
	percent := HPPercent(sub.HP, sub.MaxHP)

	status := ClassifyStatus(sub.HP)
	countdown := FormatCountdown(Countdown(deadline, now))
	if status == StatusDead {
		countdown = TerminatedText
	}

	return View{
		Stage:      ClassifyStage(sub.HP, sub.MaxHP),
		Status:     status,
		StatusText: StatusText(sub.HP),
		HPPercent:  percent,
		Countdown:  countdown,
		IsCritical: status == StatusCritical,
		IsWarning:  sub.HP >= 30 && sub.HP < 80,
	}
}
