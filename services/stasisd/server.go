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
Package stasisd is the reference backend for the stasis client.

# Problem Statement

The client-side vitality engine is an optimistic cache over an
authoritative server. To exercise it end to end (speculative apply,
confirmation merge, rollback, server-authoritative decay) there must be
a real collaborator that owns the game rules the client is forbidden to
compute:

  - quadratic time decay applied on every pet fetch
  - overdue-task damage bands applied by a cron call
  - streak continuation decided against the JST calendar

# Solution

A gin service over an in-memory store:

	┌──────────────────────────────────────────────────────────┐
	│                        stasisd                           │
	├──────────────────────────────────────────────────────────┤
	│  gin router                                              │
	│   ├─ otelgin tracing middleware                          │
	│   ├─ slog request logging                                │
	│   ├─ /pets, /tasks, /daily-habits  (client contract)     │
	│   ├─ /cron/damage   (X-API-KEY)                          │
	│   ├─ /cron/sync     (rate limited)                       │
	│   └─ /metrics       (prometheus)                         │
	│  Store (in-memory, uuid keys)                            │
	│  game.go (decay, damage bands, streaks)                  │
	└──────────────────────────────────────────────────────────┘

The cron damage route lives under /cron/damage rather than under
/tasks/ so it cannot collide with the /tasks/:userId wildcard.

Responses reuse the pkg/vitality entity JSON shapes, so the pkg/api
client decodes them without translation. Non-2xx responses carry
{"detail": "..."}.
*/
package stasisd

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/StasisPet/pkg/logging"
)

// Config configures the daemon.
type Config struct {
	// Addr is the listen address (e.g., ":8420").
	Addr string

	// CronAPIKey authenticates the /cron/damage caller.
	CronAPIKey string

	// SyncRatePerMinute caps /cron/sync calls. Default 6.
	SyncRatePerMinute int

	// Logger receives request and game-event logs. Defaults to the
	// package default logger.
	Logger *logging.Logger

	// Now overrides the clock. Tests pin it; production leaves it nil.
	Now func() time.Time
}

// Server owns the store, the clock, and the route handlers.
type Server struct {
	store       *Store
	log         *logging.Logger
	cronKey     string
	syncLimiter *rate.Limiter
	now         func() time.Time
}

// NewServer creates a server with an empty store.
func NewServer(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = logging.Default()
	}
	perMinute := cfg.SyncRatePerMinute
	if perMinute <= 0 {
		perMinute = 6
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		store:       NewStore(),
		log:         log,
		cronKey:     cfg.CronAPIKey,
		syncLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		now:         now,
	}
}

// Store exposes the underlying store. Tests seed entities through it.
func (s *Server) Store() *Store { return s.store }

// Router builds the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("stasisd"))
	r.Use(s.requestLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	pets := r.Group("/pets")
	{
		pets.POST("/", s.handleCreatePet)
		pets.GET("/:userId", s.handleGetPet)
		pets.POST("/:petId/revive", s.handleRevivePet)
		pets.DELETE("/:petId", s.handlePurgePet)
	}

	tasks := r.Group("/tasks")
	{
		tasks.POST("/", s.handleCreateTask)
		tasks.POST("/complete", s.handleCompleteTask)
		tasks.GET("/:userId", s.handleListTasks)
		tasks.GET("/:userId/overdue", s.handleOverdueTasks)
		tasks.DELETE("/:taskId", s.handleDeleteTask)
	}

	habits := r.Group("/daily-habits")
	{
		habits.POST("/", s.handleCreateHabit)
		habits.GET("/:userId", s.handleListHabits)
		habits.PUT("/:habitId/check", s.handleToggleHabit)
		habits.DELETE("/:habitId", s.handleDeleteHabit)
	}

	cron := r.Group("/cron")
	{
		cron.GET("/damage", s.requireAPIKey(), s.handleCronDamage)
		cron.POST("/sync", s.rateLimited(), s.handleSync)
	}

	return r
}

// requestLog logs one line per request with latency and status.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

// requireAPIKey gates cron endpoints behind the shared key.
func (s *Server) requireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cronKey == "" || c.GetHeader("X-API-KEY") != s.cronKey {
			detail(c, http.StatusUnauthorized, "Invalid API key")
			c.Abort()
			return
		}
		c.Next()
	}
}

// rateLimited rejects bursts beyond the configured sync rate.
func (s *Server) rateLimited() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.syncLimiter.Allow() {
			detail(c, http.StatusTooManyRequests, "Rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}

// detail writes the backend's uniform error payload.
func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}
