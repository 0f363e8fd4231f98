// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import (
	"errors"
	"time"
)

// ErrUnsupportedPlatform is returned by shell and store adapters on non-Windows hosts.
var ErrUnsupportedPlatform = errors.New("traymon requires Windows")

// MonitorState is the state of the monitor loop.
type MonitorState string

const (
	StateIdle        MonitorState = "idle"
	StateWaiting     MonitorState = "waiting"
	StateChecking    MonitorState = "checking"
	StateHealthy     MonitorState = "healthy"
	StateRemediating MonitorState = "remediating"
	StateCooldown    MonitorState = "cooldown"
	StateStopped     MonitorState = "stopped"
)

// CycleOutcome classifies what a single monitor cycle observed and did.
type CycleOutcome string

const (
	OutcomeNotRunning  CycleOutcome = "not_running"
	OutcomeHealthy     CycleOutcome = "healthy"
	OutcomeFixed       CycleOutcome = "fixed"
	OutcomeFixFailed   CycleOutcome = "fix_failed"
	OutcomeMonitorOnly CycleOutcome = "monitor_only"
	OutcomeError       CycleOutcome = "error"
)

// Window is a top-level OS window.
type Window struct {
	Handle uintptr
	Title  string
	Class  string
}

// TrayEntry is one record of the shell's per-user notification icon settings.
// Created by the shell when an application first registers a tray icon.
type TrayEntry struct {
	Key            string // Subkey name under NotifyIconSettings
	ExecutablePath string
	Promoted       bool
}

// CycleResult captures what happened during a single monitor cycle.
type CycleResult struct {
	Outcome             CycleOutcome
	Status              string
	ConsecutiveFailures int
	Sleep               time.Duration
	Err                 error
	ExecutedAt          time.Time
	DurationMs          int64
}

// MonitorSnapshot is a read-only view of the monitor for status displays.
type MonitorSnapshot struct {
	State               MonitorState
	Cycles              int
	ConsecutiveFailures int
	LastResult          *CycleResult
	LastCheck           time.Time
	StartedAt           time.Time
}

// RemediationReport describes one PromoteAndRefresh attempt.
type RemediationReport struct {
	Strategy  string   // Name of the strategy that succeeded, empty if none
	Attempted []string // Strategies tried, in order
	Refreshed bool     // Tray containers were redrawn
	Success   bool
}
