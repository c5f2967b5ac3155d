// Package staticpaths builds the path generation contract consumed at build time.
//
// Only the root path is generated ahead of time. Every other page is rendered on
// its first request and cached, as selected by the fallback mode.
package staticpaths

import (
	"encoding/json"
	"fmt"
)

// Fallback selects how paths missing from the generated list are served
type Fallback string

const (
	// FallbackBlocking renders an ungenerated page on first request and caches it
	FallbackBlocking Fallback = "blocking"

	// FallbackTrue serves a fallback page while the requested page is generated
	FallbackTrue Fallback = "true"

	// FallbackFalse responds with not found for ungenerated pages
	FallbackFalse Fallback = "false"
)

// RootPath is the only path generated by default
const RootPath = "/"

// ParseFallback converts a textual fallback mode
func ParseFallback(s string) (Fallback, error) {
	switch f := Fallback(s); f {
	case FallbackBlocking, FallbackTrue, FallbackFalse:
		return f, nil
	default:
		return "", fmt.Errorf("invalid fallback %q: must be blocking, true or false", s)
	}
}

// MarshalJSON encodes blocking as a string and the other modes as booleans
func (f Fallback) MarshalJSON() ([]byte, error) {
	switch f {
	case FallbackBlocking:
		return json.Marshal(string(f))
	case FallbackTrue:
		return []byte("true"), nil
	case FallbackFalse:
		return []byte("false"), nil
	default:
		return nil, fmt.Errorf("invalid fallback %q", string(f))
	}
}

// UnmarshalJSON accepts "blocking" or a boolean
func (f *Fallback) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			*f = FallbackTrue
		} else {
			*f = FallbackFalse
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding fallback: %w", err)
	}
	if Fallback(s) != FallbackBlocking {
		return fmt.Errorf("invalid fallback %q", s)
	}
	*f = FallbackBlocking
	return nil
}

// Result is the static paths contract
type Result struct {
	Paths    []string `json:"paths"`
	Fallback Fallback `json:"fallback"`
}

// Override replaces the defaults key by key. Nil fields keep the default.
type Override struct {
	Paths    []string
	Fallback *Fallback
}

// Initialize returns the default static paths with any override applied
func Initialize(override *Override) Result {
	result := Result{
		Paths:    []string{RootPath},
		Fallback: FallbackBlocking,
	}

	if override == nil {
		return result
	}
	if override.Paths != nil {
		result.Paths = override.Paths
	}
	if override.Fallback != nil {
		result.Fallback = *override.Fallback
	}

	return result
}
