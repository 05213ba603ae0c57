package ai

import "sync/atomic"

// debugLoggingEnabled controls whether per-tick debug logging is enabled for agents.
// Agents log on every shot and transition, so the level check is hoisted into
// a package-level flag instead of going through slog on each call.
// Set via EnableDebugLogging() from main after parsing config.LogLevel.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables debug logging for agent AI.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if debug logging is enabled.
// Use this to guard debug log calls on hot paths:
//
//	if ai.IsDebugEnabled() {
//	    slog.Debug("agent fired", "agentID", id, "ammo", ammo)
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
