package constants

import "time"

// Centralized default values for timeouts, intervals, and related settings.
// These are not configuration knobs; use pkg/config for env-driven settings.

const (
	// Health
	HealthTimeoutDefault = 5 * time.Second

	// Sessions
	SessionJanitorInterval = time.Minute

	// HTTP server
	ReadHeaderTimeoutDefault = 5 * time.Second
	IdleTimeoutDefault       = 60 * time.Second

	// App shutdown
	GracefulShutdownTimeoutDefault = 10 * time.Second

	// Request bodies on the JSON API
	MaxJSONBodyBytes = 64 << 10
)
