// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation for user-supplied values.
//
// This package contains validators for inputs that end up in request
// URLs or in the backend store. Validating here rejects malformed input
// before it costs a network round trip, and keeps arbitrary strings out
// of path segments.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// idPattern matches uuid-shaped entity identifiers and their prefixes.
// Allows: hex digits and hyphens, 1-36 characters, starting with a hex digit.
var idPattern = regexp.MustCompile(`^[0-9a-fA-F][0-9a-fA-F-]{0,35}$`)

// ValidateEntityID validates an entity identifier or identifier prefix.
//
// Valid identifiers:
//   - 1-36 characters
//   - hex digits 0-9, a-f, A-F
//   - hyphens (-) as uuid group separators
//
// Returns an error if the identifier is invalid.
//
// Example:
//
//	if err := validation.ValidateEntityID(id); err != nil {
//	    return fmt.Errorf("invalid task id: %w", err)
//	}
//	// Safe to use as a URL path segment
func ValidateEntityID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}

	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid id format: %q (must be 1-36 hex chars or hyphens)", id)
	}

	return nil
}

// ValidatePetName validates a pet name before it is sent to the backend.
// The backend enforces the same bounds; this check just fails fast.
func ValidatePetName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(trimmed) > 50 {
		return fmt.Errorf("name too long: %d characters (max 50)", len(trimmed))
	}
	for _, r := range trimmed {
		if r < ' ' {
			return fmt.Errorf("name contains control characters")
		}
	}
	return nil
}

// ExpandPrefix resolves a full identifier or a unique prefix against a
// candidate list. List commands display truncated ids, so mutation
// commands accept the truncation back.
//
// Returns the matching full identifier, or an error when the prefix
// matches nothing or matches more than one candidate.
func ExpandPrefix(candidates []string, prefix string) (string, error) {
	if err := ValidateEntityID(prefix); err != nil {
		return "", err
	}

	// Exact match wins even when it is also a prefix of another id.
	for _, id := range candidates {
		if id == prefix {
			return id, nil
		}
	}

	var matches []string
	for _, id := range candidates {
		if strings.HasPrefix(id, prefix) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no id matches %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous prefix %q matches %d ids", prefix, len(matches))
	}
}
