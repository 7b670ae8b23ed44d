// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

/*
Package api provides the typed HTTP client for the stasis backend.

# Problem Statement

The vitality engine reconciles speculative local state against an
authoritative backend. It must never see raw HTTP: status codes, wire
payloads, and transport failures all have to arrive as typed engine
values so the reconciliation controller can decide between Confirm and
Rollback without inspecting the network layer.

# Solution

Client wraps one base URL and translates every endpoint of the backend
contract into engine types:

	┌────────────────────────────────────────────────────────────┐
	│                      pkg/api.Client                        │
	├────────────────────────────────────────────────────────────┤
	│  GET  /pets/{userId}              → vitality.Subject       │
	│  POST /pets/                      → vitality.Subject       │
	│  POST /pets/{id}/revive           → vitality.Subject       │
	│  DELETE /pets/{id}                → (no payload)           │
	│  GET  /tasks/{userId}             → []vitality.Task        │
	│  POST /tasks/                     → vitality.Task          │
	│  POST /tasks/complete             → vitality.Outcome       │
	│  DELETE /tasks/{id}               → vitality.Outcome       │
	│  GET  /tasks/{userId}/overdue     → OverdueReport          │
	│  GET  /daily-habits/{userId}      → []vitality.Habit       │
	│  POST /daily-habits/              → vitality.Habit         │
	│  PUT  /daily-habits/{id}/check    → vitality.Outcome       │
	│  DELETE /daily-habits/{id}        → vitality.Outcome       │
	│  POST /cron/sync?user_id=         → SyncResult             │
	└────────────────────────────────────────────────────────────┘

Client implements vitality.Backend, so the reconciliation controller is
wired to it directly.

# Error Mapping

  - transport failure (no HTTP response)  → ErrorNetwork
  - 404 response                          → ErrorNotFound
  - any other non-2xx (400 included)      → ErrorServer

ErrorValidation is reserved for client-side rejections raised before a
request is sent; a server 400 is the server's verdict on a mutation
already applied optimistically, so it must trigger a rollback like any
other server failure.

Non-2xx bodies carry {"detail": "..."}; the detail string becomes the
error message shown in the banner.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AleutianAI/StasisPet/pkg/vitality"
)

// defaultTimeout bounds every backend call. Mutations are tiny JSON
// round trips; anything slower than this is effectively down.
const defaultTimeout = 10 * time.Second

// HTTPClient is the minimal HTTP surface the client needs. *http.Client
// satisfies it; tests substitute a func-field mock.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the typed backend client. Safe for concurrent use.
type Client struct {
	// baseURL is the backend root, without trailing slash.
	baseURL string

	// httpClient executes requests.
	httpClient HTTPClient
}

// NewClient creates a backend client for the given base URL.
//
// # Inputs
//
//   - baseURL: backend root (e.g., "http://localhost:8420")
//
// # Outputs
//
//   - *Client: configured client with a 10-second request timeout
//
// # Examples
//
//	client := api.NewClient("http://localhost:8420")
//	subject, err := client.GetPet(ctx, cfg.UserID)
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// NewClientWithHTTP creates a client with a caller-supplied HTTP layer.
// Used by tests and by callers that need custom transports.
func NewClientWithHTTP(baseURL string, hc HTTPClient) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: hc,
	}
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// -----------------------------------------------------------------------------
// Wire payloads
// -----------------------------------------------------------------------------

// CreatePetRequest is the payload for POST /pets/.
type CreatePetRequest struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	CharacterType string `json:"character_type,omitempty"`
}

// CreateTaskRequest is the payload for POST /tasks/.
type CreateTaskRequest struct {
	UserID      string            `json:"user_id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Priority    vitality.Priority `json:"priority"`
	DueDate     *time.Time        `json:"due_date,omitempty"`
}

// CreateHabitRequest is the payload for POST /daily-habits/.
type CreateHabitRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
}

// OverdueTask pairs an overdue task with the damage the backend will
// deal for it on the next cron run.
type OverdueTask struct {
	Task            vitality.Task `json:"task"`
	DaysOverdue     int           `json:"days_overdue"`
	PotentialDamage float64       `json:"potential_damage"`
}

// OverdueReport is the payload of GET /tasks/{userId}/overdue.
type OverdueReport struct {
	Tasks       []OverdueTask `json:"tasks"`
	TotalDamage float64       `json:"total_damage"`
}

// SyncResult is the payload of POST /cron/sync.
type SyncResult struct {
	Status       string  `json:"status"`
	OverdueCount int     `json:"overdue_count"`
	DamageDealt  float64 `json:"damage_dealt"`
}

// mutationResponse is the union wire shape of the four reconciled
// mutation endpoints. Healed is a pointer so "server reported 0" and
// "server reported nothing" stay distinguishable.
type mutationResponse struct {
	Status  string            `json:"status,omitempty"`
	Task    *vitality.Task    `json:"task,omitempty"`
	Habit   *vitality.Habit   `json:"habit,omitempty"`
	Pet     *vitality.Subject `json:"pet,omitempty"`
	Healed  *float64          `json:"healed,omitempty"`
	Action  string            `json:"action,omitempty"`
	Message string            `json:"message,omitempty"`
}

func (r mutationResponse) outcome() vitality.Outcome {
	out := vitality.Outcome{
		Task:    r.Task,
		Habit:   r.Habit,
		Subject: r.Pet,
		Action:  r.Action,
		Message: r.Message,
	}
	if r.Healed != nil {
		out.Healed = *r.Healed
		out.HasHealed = true
	}
	return out
}

// errorBody is the backend's non-2xx payload.
type errorBody struct {
	Detail string `json:"detail"`
}

// -----------------------------------------------------------------------------
// Pet endpoints
// -----------------------------------------------------------------------------

// GetPet fetches the authoritative subject snapshot. The backend applies
// any pending time decay before answering, so the returned HP already
// reflects elapsed neglect.
func (c *Client) GetPet(ctx context.Context, userID string) (vitality.Subject, error) {
	var sub vitality.Subject
	err := c.do(ctx, http.MethodGet, "/pets/"+url.PathEscape(userID), nil, &sub)
	return sub, err
}

// CreatePet creates a new subject at full HP.
func (c *Client) CreatePet(ctx context.Context, req CreatePetRequest) (vitality.Subject, error) {
	var sub vitality.Subject
	err := c.do(ctx, http.MethodPost, "/pets/", req, &sub)
	return sub, err
}

// RevivePet resets a dead subject to full HP.
func (c *Client) RevivePet(ctx context.Context, petID string) (vitality.Subject, error) {
	var sub vitality.Subject
	err := c.do(ctx, http.MethodPost, "/pets/"+url.PathEscape(petID)+"/revive", nil, &sub)
	return sub, err
}

// PurgePet permanently deletes a subject.
func (c *Client) PurgePet(ctx context.Context, petID string) error {
	return c.do(ctx, http.MethodDelete, "/pets/"+url.PathEscape(petID), nil, nil)
}

// -----------------------------------------------------------------------------
// Task endpoints
// -----------------------------------------------------------------------------

// ListTasks fetches the user's active (incomplete) tasks.
func (c *Client) ListTasks(ctx context.Context, userID string) ([]vitality.Task, error) {
	var tasks []vitality.Task
	err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(userID), nil, &tasks)
	return tasks, err
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (vitality.Task, error) {
	var task vitality.Task
	err := c.do(ctx, http.MethodPost, "/tasks/", req, &task)
	return task, err
}

// CompleteTask marks a task done. Part of vitality.Backend.
func (c *Client) CompleteTask(ctx context.Context, taskID string) (vitality.Outcome, error) {
	var resp mutationResponse
	body := map[string]string{"task_id": taskID}
	if err := c.do(ctx, http.MethodPost, "/tasks/complete", body, &resp); err != nil {
		return vitality.Outcome{}, err
	}
	return resp.outcome(), nil
}

// DeleteTask removes a task. Part of vitality.Backend.
func (c *Client) DeleteTask(ctx context.Context, taskID string) (vitality.Outcome, error) {
	var resp mutationResponse
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(taskID), nil, &resp); err != nil {
		return vitality.Outcome{}, err
	}
	return resp.outcome(), nil
}

// ListOverdue fetches the user's overdue tasks with the damage preview.
func (c *Client) ListOverdue(ctx context.Context, userID string) (OverdueReport, error) {
	var report OverdueReport
	err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(userID)+"/overdue", nil, &report)
	return report, err
}

// -----------------------------------------------------------------------------
// Habit endpoints
// -----------------------------------------------------------------------------

// ListHabits fetches the user's daily habits.
func (c *Client) ListHabits(ctx context.Context, userID string) ([]vitality.Habit, error) {
	var habits []vitality.Habit
	err := c.do(ctx, http.MethodGet, "/daily-habits/"+url.PathEscape(userID), nil, &habits)
	return habits, err
}

// CreateHabit creates a daily habit.
func (c *Client) CreateHabit(ctx context.Context, req CreateHabitRequest) (vitality.Habit, error) {
	var habit vitality.Habit
	err := c.do(ctx, http.MethodPost, "/daily-habits/", req, &habit)
	return habit, err
}

// ToggleHabit checks or unchecks a habit for today. The server decides
// which; the Action field of the outcome says what happened. Part of
// vitality.Backend.
func (c *Client) ToggleHabit(ctx context.Context, habitID string) (vitality.Outcome, error) {
	var resp mutationResponse
	if err := c.do(ctx, http.MethodPut, "/daily-habits/"+url.PathEscape(habitID)+"/check", nil, &resp); err != nil {
		return vitality.Outcome{}, err
	}
	return resp.outcome(), nil
}

// DeleteHabit removes a habit. Part of vitality.Backend.
func (c *Client) DeleteHabit(ctx context.Context, habitID string) (vitality.Outcome, error) {
	var resp mutationResponse
	if err := c.do(ctx, http.MethodDelete, "/daily-habits/"+url.PathEscape(habitID), nil, &resp); err != nil {
		return vitality.Outcome{}, err
	}
	return resp.outcome(), nil
}

// -----------------------------------------------------------------------------
// Sync
// -----------------------------------------------------------------------------

// SyncNotion triggers the backend's external-task sync for the user and
// returns the damage report.
func (c *Client) SyncNotion(ctx context.Context, userID string) (SyncResult, error) {
	var result SyncResult
	path := "/cron/sync?user_id=" + url.QueryEscape(userID)
	err := c.do(ctx, http.MethodPost, path, nil, &result)
	return result, err
}

// -----------------------------------------------------------------------------
// Request plumbing
// -----------------------------------------------------------------------------

// do executes one JSON round trip. body and out may be nil. Non-2xx
// responses and transport failures come back as *vitality.EngineError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return vitality.NewValidationError(fmt.Sprintf("encode request: %v", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return vitality.NewValidationError(fmt.Sprintf("build request: %v", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return vitality.NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return vitality.NewServerError(resp.StatusCode, fmt.Sprintf("malformed response body: %v", err))
	}
	return nil
}

// errorFromResponse maps a non-2xx response to a typed engine error.
// Validation errors are strictly client-side (raised before any optimistic
// apply); a server rejection, 400 included, is the server's verdict and
// surfaces as ErrorServer so the controller rolls back.
func errorFromResponse(resp *http.Response) *vitality.EngineError {
	var eb errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &eb)
	detail := eb.Detail
	if detail == "" {
		detail = strings.TrimSpace(string(raw))
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		if detail == "" {
			detail = "resource not found"
		}
		return &vitality.EngineError{
			Type:    vitality.ErrorNotFound,
			Message: detail,
			Detail:  fmt.Sprintf("status=%d", resp.StatusCode),
		}
	default:
		return vitality.NewServerError(resp.StatusCode, detail)
	}
}

// Backend contract check.
var _ vitality.Backend = (*Client)(nil)
