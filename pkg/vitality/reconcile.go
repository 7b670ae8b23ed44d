// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// This file contains the ReconciliationController: the one place where the
// optimistic/rollback discipline lives. UI layers never hand-roll their own
// optimistic updates; they describe a transition and let the controller
// drive the state machine:
//
//	idle ──Begin──► optimistic ──Confirm──► confirmed
//	                    │
//	                    └────Rollback────► rolled_back
//
// Each Pending mutation carries its own snapshot/inverse pair, so an
// out-of-order server response rolls back precisely the state its own call
// displaced. Mutations on distinct entities may be in flight concurrently;
// same-entity actions are last-writer-wins locally (deliberately not
// serialized, see DESIGN.md).
package vitality

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// -----------------------------------------------------------------------------
// Backend contract
// -----------------------------------------------------------------------------

// Outcome is the authoritative result of a reconciled backend call,
// validated and typed at the network boundary before it enters the engine.
type Outcome struct {
	// Task is the server's task payload, when the call returns one.
	Task *Task

	// Habit is the server's habit payload, when the call returns one.
	Habit *Habit

	// Subject is the server's pet snapshot, when the call returns one.
	Subject *Subject

	// Healed is the server-reported HP change: positive heal, negative
	// damage, zero when the call did not touch the subject.
	Healed float64

	// HasHealed distinguishes "server reported 0" from "server reported
	// nothing"; only a reported amount replaces the speculative delta.
	HasHealed bool

	// Action is the server's toggle verdict ("checked"/"unchecked").
	Action string

	// Message is the server's celebration line, shown as a toast.
	Message string
}

// Backend executes reconciled mutations against the authoritative store.
// pkg/api implements it over HTTP; tests implement it in-memory.
type Backend interface {
	CompleteTask(ctx context.Context, taskID string) (Outcome, error)
	DeleteTask(ctx context.Context, taskID string) (Outcome, error)
	ToggleHabit(ctx context.Context, habitID string) (Outcome, error)
	DeleteHabit(ctx context.Context, habitID string) (Outcome, error)
}

// -----------------------------------------------------------------------------
// Pending mutations
// -----------------------------------------------------------------------------

// MutationState tracks a single mutation through the reconciliation state
// machine.
type MutationState int

const (
	// MutationOptimistic means the local apply happened and the network
	// call has not resolved.
	MutationOptimistic MutationState = iota

	// MutationConfirmed means the server accepted the call and its
	// payload has been merged.
	MutationConfirmed

	// MutationRolledBack means the call failed and the inverse has been
	// reapplied.
	MutationRolledBack
)

// Pending is the in-flight record of one optimistic mutation. It owns the
// inverse transition captured at Begin time; nothing else can roll the
// mutation back.
type Pending struct {
	Transition Transition
	Effect     Effect

	inverse Transition
	state   MutationState
}

// State returns the mutation's current reconciliation state.
func (p *Pending) State() MutationState { return p.state }

// -----------------------------------------------------------------------------
// Controller
// -----------------------------------------------------------------------------

// Controller owns the client's speculative entity collection and enforces
// the optimistic/rollback discipline for every mutation.
//
// All methods are safe for concurrent use; the interesting interleavings
// come from network completions racing user actions, and every entry point
// takes the same lock. A closed controller ignores late completions
// instead of crashing on updates to discarded state.
type Controller struct {
	mu      sync.Mutex
	state   State
	backend Backend
	log     *slog.Logger
	closed  bool

	toast   string
	lastErr *EngineError
}

// NewController creates a controller over an initial state snapshot.
// logger may be nil, in which case slog.Default() is used.
func NewController(initial State, backend Backend, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{state: initial, backend: backend, log: logger}
}

// State returns a deep copy of the current (possibly speculative) state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Subject returns the current (possibly speculative) subject.
func (c *Controller) Subject() Subject {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Subject
}

// Toast returns the transient success message, if any.
func (c *Controller) Toast() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.toast
}

// ClearToast dismisses the transient success message. The UI calls this
// from its auto-dismiss timer.
func (c *Controller) ClearToast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toast = ""
}

// Err returns the surfaced error banner, if any. It persists until the
// next successful action or ClearErr.
func (c *Controller) Err() *EngineError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ClearErr dismisses the error banner.
func (c *Controller) ClearErr() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = nil
}

// Close discards the controller. Late Confirm/Rollback completions after
// Close are silent no-ops, so a view can be torn down with calls still in
// flight.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Begin applies tr optimistically and returns the Pending handle the
// eventual completion must present back. The UI is expected to re-render
// immediately after Begin returns.
func (c *Controller) Begin(tr Transition) (*Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, NewValidationError("controller is closed")
	}

	next, inverse, effect, err := Apply(c.state, tr)
	if err != nil {
		return nil, err
	}
	c.state = next
	if effect.Toast != "" {
		c.toast = effect.Toast
	}
	c.log.Debug("optimistic apply",
		"transition", tr.Kind.String(),
		"entity_id", tr.EntityID,
		"hp_delta", effect.HPDelta,
		"hp", c.state.Subject.HP,
	)
	return &Pending{Transition: tr, Effect: effect, inverse: inverse}, nil
}

// Confirm resolves a pending mutation with the server's outcome. Server
// values always win: entity payloads replace the speculative fields, and a
// reported heal/damage amount replaces the speculative HP delta. The HP
// correction is additive (reported minus speculative), so a concurrent
// mutation's optimistic delta is never clobbered by an absolute write.
func (c *Controller) Confirm(p *Pending, outcome Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || p == nil || p.state != MutationOptimistic {
		return
	}
	p.state = MutationConfirmed

	if outcome.Task != nil {
		c.mergeTask(*outcome.Task)
	}
	if outcome.Habit != nil {
		c.state.Habits = replaceHabit(c.state.Habits, *outcome.Habit)
	}
	if outcome.HasHealed {
		c.state.Subject.AdjustHP(outcome.Healed - p.Effect.HPDelta)
	}
	if outcome.Subject != nil {
		c.mergeSubject(*outcome.Subject)
	}
	if outcome.Message != "" {
		c.toast = outcome.Message
	}
	c.lastErr = nil
	c.log.Debug("mutation confirmed",
		"transition", p.Transition.Kind.String(),
		"entity_id", p.Transition.EntityID,
		"healed", outcome.Healed,
		"hp", c.state.Subject.HP,
	)
}

// Rollback resolves a pending mutation that failed. The inverse captured
// at Begin time is reapplied to both the entity collection and the subject
// HP, the transient toast is cleared, and the typed error is surfaced. The
// UI must never see the speculative-but-unconfirmed state after this.
func (c *Controller) Rollback(p *Pending, err *EngineError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || p == nil || p.state != MutationOptimistic {
		return
	}
	p.state = MutationRolledBack

	next, _, _, applyErr := Apply(c.state, p.inverse)
	if applyErr != nil {
		// The entity vanished from local state (deleted by a later
		// action). The HP component still must be undone.
		next = c.state.Clone()
		next.Subject.AdjustHP(p.inverse.hpDelta)
	}
	c.state = next
	c.toast = ""
	c.lastErr = err
	c.log.Warn("mutation rolled back",
		"transition", p.Transition.Kind.String(),
		"entity_id", p.Transition.EntityID,
		"error_type", err.Type.String(),
		"error", err.Message,
	)
}

// Do runs the full cycle for a transition: optimistic Begin, backend call,
// then Confirm or Rollback. It returns the surfaced error on failure.
//
// No retry happens here or anywhere below; a rolled-back mutation needs a
// fresh user action.
func (c *Controller) Do(ctx context.Context, tr Transition) error {
	p, err := c.Begin(tr)
	if err != nil {
		return err
	}

	outcome, callErr := c.dispatch(ctx, tr)
	if callErr != nil {
		ee := AsEngineError(callErr)
		c.Rollback(p, ee)
		return ee
	}
	c.Confirm(p, outcome)
	return nil
}

// RefreshSubject replaces the cached subject with an authoritative
// snapshot, e.g. after an explicit re-fetch. This is a merge of confirmed
// server truth, not an optimistic write.
func (c *Controller) RefreshSubject(sub Subject) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state.Subject = sub
	c.state.Subject.Status = ClassifyStatus(sub.HP)
}

// RefreshEntities replaces the cached task and habit collections with
// authoritative listings.
func (c *Controller) RefreshEntities(tasks []Task, habits []Habit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state.Tasks = make([]Task, len(tasks))
	copy(c.state.Tasks, tasks)
	c.state.Habits = make([]Habit, len(habits))
	copy(c.state.Habits, habits)
}

func (c *Controller) dispatch(ctx context.Context, tr Transition) (Outcome, error) {
	switch tr.Kind {
	case TransitionCompleteTask:
		return c.backend.CompleteTask(ctx, tr.EntityID)
	case TransitionToggleHabit:
		return c.backend.ToggleHabit(ctx, tr.EntityID)
	case TransitionDeleteTask:
		return c.backend.DeleteTask(ctx, tr.EntityID)
	case TransitionDeleteHabit:
		return c.backend.DeleteHabit(ctx, tr.EntityID)
	default:
		return Outcome{}, NewValidationError("transition has no backend call: " + tr.Kind.String())
	}
}

func (c *Controller) mergeTask(task Task) {
	if task.Completed {
		// Completed tasks leave the active list; nothing to merge.
		c.state.Tasks = removeTask(c.state.Tasks, task.ID)
		return
	}
	for i, t := range c.state.Tasks {
		if t.ID == task.ID {
			c.state.Tasks[i] = task
			return
		}
	}
}

func (c *Controller) mergeSubject(sub Subject) {
	// Identity and static fields come from the server; HP stays under the
	// additive-delta discipline (the HasHealed correction above already
	// accounted for this call's speculative delta).
	hp := c.state.Subject.HP
	c.state.Subject = sub
	c.state.Subject.HP = hp
	c.state.Subject.Status = ClassifyStatus(hp)
}

// AsEngineError coerces an arbitrary error into an EngineError, wrapping
// unknown errors as network failures.
func AsEngineError(err error) *EngineError {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee
	}
	return NewNetworkError(err)
}
