// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package stasisd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors for the /metrics endpoint. Registered once with
// the default registry at package init.
var (
	metricHealsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stasisd_heals_total",
		Help: "HP restored to pets, by source (task, habit).",
	}, []string{"source"})

	metricDamageTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stasisd_damage_total",
		Help: "HP dealt to pets, by source (decay, overdue, sync).",
	}, []string{"source"})

	metricTasksCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stasisd_tasks_completed_total",
		Help: "Tasks marked complete.",
	})

	metricHabitToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stasisd_habit_toggles_total",
		Help: "Habit toggle operations, by action (checked, unchecked).",
	}, []string{"action"})

	metricPetsTerminated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stasisd_pets_terminated_total",
		Help: "Pets whose HP reached zero.",
	})
)
