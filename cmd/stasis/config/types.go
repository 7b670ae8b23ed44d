// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

// StasisConfig is the client configuration persisted at
// ~/.stasis/stasis.yaml.
type StasisConfig struct {
	// Backend: where the authoritative game server lives
	Backend BackendConfig `yaml:"backend"`

	// User: which account this client acts for
	User UserConfig `yaml:"user"`

	// Game: display-side projection parameters. These mirror the
	// server's rules; changing them shifts what the countdown shows,
	// not what the server decides.
	Game GameConfig `yaml:"game"`

	// Log: structured log destination and level
	Log LogConfig `yaml:"log"`

	// UX: terminal output behavior
	UX UXConfig `yaml:"ux"`
}

type BackendConfig struct {
	// BaseURL of the stasisd HTTP API, e.g. http://localhost:8420
	BaseURL string `yaml:"base_url"`

	// TimeoutSeconds for a single round trip
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type UserConfig struct {
	ID string `yaml:"id"`
}

type GameConfig struct {
	// TimezoneOffsetMinutes fixes the habit day boundary (+540 = JST)
	TimezoneOffsetMinutes int `yaml:"timezone_offset_minutes"`

	// DecayRatePerHour drives the client's survival projection
	DecayRatePerHour float64 `yaml:"decay_rate_per_hour"`
}

type LogConfig struct {
	// Level can be "debug", "info", "warn", or "error"
	Level string `yaml:"level"`

	// Dir receives dated JSON log files. Empty disables file logging.
	Dir string `yaml:"dir"`
}

type UXConfig struct {
	// Personality can be "full", "standard", "minimal", or "machine"
	Personality string `yaml:"personality,omitempty"`

	// ShowToasts enables celebration lines after mutations
	ShowToasts bool `yaml:"show_toasts"`
}

func DefaultConfig() StasisConfig {
	return StasisConfig{
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8420",
			TimeoutSeconds: 10,
		},
		User: UserConfig{ID: ""},
		Game: GameConfig{
			TimezoneOffsetMinutes: 540,
			DecayRatePerHour:      0.5,
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "~/.stasis/logs",
		},
		UX: UXConfig{ShowToasts: true},
	}
}
