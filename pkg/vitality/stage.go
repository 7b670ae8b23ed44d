// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package vitality implements the client-side vitality reconciliation engine
// for StasisPet: the subject's survival projection, the discrete health
// staging, the optimistic mutation machinery, and the controller that
// reconciles speculative local state against the authoritative backend.
//
// The package is deliberately free of UI and transport concerns. The
// dashboard, the CLI verbs, and the HTTP client all sit on top of it:
//
//	user action
//	   │
//	   ▼
//	OptimisticMutator ──► instant local state + toast
//	   │
//	   ▼
//	ReconciliationController ──► Backend (pkg/api)
//	   │                            │
//	   │  success: merge server truth
//	   │  failure: apply precomputed inverse
//	   ▼
//	ThresholdClassifier / SurvivalProjector (pure views, recomputed per change)
package vitality

// CriticalThresholdHP is the absolute HP value at or below which a living
// subject is considered critical. Matches the backend's display contract.
const CriticalThresholdHP = 29

// Stage is the 5-way visual/decay tier derived from the HP ratio.
//
// Stages are ordered from best to worst so they can be compared directly:
// a lower Stage value always means a healthier subject.
type Stage int

const (
	// StagePristine covers ratio >= 90: full glow, no decay artifacts.
	StagePristine Stage = iota

	// StageHealthy covers ratio >= 70.
	StageHealthy

	// StageCaution covers ratio >= 40: minor glitching, worried subject.
	StageCaution

	// StageDanger covers ratio >= 10: heavy corruption, red noise.
	StageDanger

	// StageCritical covers ratio < 10, including a dead subject.
	StageCritical
)

// String returns the stage name used in logs and asset selection.
func (s Stage) String() string {
	switch s {
	case StagePristine:
		return "pristine"
	case StageHealthy:
		return "healthy"
	case StageCaution:
		return "caution"
	case StageDanger:
		return "danger"
	case StageCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Status is the coarse 3-way subject status.
type Status string

const (
	StatusAlive    Status = "ALIVE"
	StatusCritical Status = "CRITICAL"
	StatusDead     Status = "DEAD"
)

// ClassifyStage maps an HP value onto the 5-way Stage partition.
//
// The partition is total over [0, maxHp] and each band is closed on its
// lower bound: ratio >= 90 pristine, >= 70 healthy, >= 40 caution,
// >= 10 danger, else critical. A non-positive maxHp is treated as a dead
// subject rather than a division by zero.
func ClassifyStage(hp, maxHp float64) Stage {
	if maxHp <= 0 || hp <= 0 {
		return StageCritical
	}
	ratio := hp / maxHp * 100
	switch {
	case ratio >= 90:
		return StagePristine
	case ratio >= 70:
		return StageHealthy
	case ratio >= 40:
		return StageCaution
	case ratio >= 10:
		return StageDanger
	default:
		return StageCritical
	}
}

// ClassifyStatus maps an absolute HP value onto the ALIVE/CRITICAL/DEAD
// partition. DEAD iff hp <= 0; CRITICAL iff 0 < hp <= CriticalThresholdHP.
func ClassifyStatus(hp float64) Status {
	switch {
	case hp <= 0:
		return StatusDead
	case hp <= CriticalThresholdHP:
		return StatusCritical
	default:
		return StatusAlive
	}
}

// StatusText returns the terminal status line for the subject panel.
//
// The warning band ("UNSTABLE") is wider than the critical band on purpose:
// it starts nagging the user at 80 HP, well before real danger.
func StatusText(hp float64) string {
	switch {
	case hp <= 0:
		return "SYSTEM_FAILURE"
	case hp <= CriticalThresholdHP:
		return "CRITICAL_ERROR"
	case hp < 80:
		return "UNSTABLE"
	default:
		return "OPERATIONAL"
	}
}
