// Package tray implements the notification area icon, its menu and dialogs.
package tray

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
)

// AppName is shown in the tooltip, menu header and dialog captions.
const AppName = "Discord Tray Manager"

// MonitorState provides read-only access to the monitor plus a stop request.
type MonitorState interface {
	Snapshot() domain.MonitorSnapshot
	Stop()
}

// StatusInfo is everything the status dialog shows.
type StatusInfo struct {
	TargetRunning bool
	CheckInterval time.Duration
	AutoFix       bool
	Snapshot      domain.MonitorSnapshot
}

// CollectStatus gathers status from the monitor and a fresh process check.
func CollectStatus(ctx context.Context, monitor MonitorState, inspector domain.ProcessInspector, interval time.Duration, autoFix bool) StatusInfo {
	return StatusInfo{
		TargetRunning: inspector.IsTargetRunning(ctx),
		CheckInterval: interval,
		AutoFix:       autoFix,
		Snapshot:      monitor.Snapshot(),
	}
}

// FormatStatus renders the status dialog body.
func FormatStatus(s StatusInfo) string {
	var b strings.Builder

	if s.TargetRunning {
		b.WriteString("Status: Discord is running\n")
	} else {
		b.WriteString("Status: Discord not detected\n")
	}
	fmt.Fprintf(&b, "Check interval: %s\n", s.CheckInterval)
	fmt.Fprintf(&b, "Auto-fix: %s\n", enabled(s.AutoFix))
	fmt.Fprintf(&b, "Monitor: %s (%d checks)", s.Snapshot.State, s.Snapshot.Cycles)

	if r := s.Snapshot.LastResult; r != nil {
		fmt.Fprintf(&b, "\nLast check: %s at %s", r.Status, r.ExecutedAt.Format("15:04:05"))
	}
	if s.Snapshot.ConsecutiveFailures > 0 {
		fmt.Fprintf(&b, "\nConsecutive failures: %d", s.Snapshot.ConsecutiveFailures)
	}
	return b.String()
}

// FormatTooltip renders the tray tooltip.
func FormatTooltip(snap domain.MonitorSnapshot) string {
	switch snap.State {
	case domain.StateCooldown:
		return AppName + " - backing off"
	case domain.StateRemediating:
		return AppName + " - icon hidden"
	case domain.StateStopped:
		return AppName + " - stopped"
	default:
		return AppName + " - monitoring"
	}
}

// AboutText renders the about dialog body.
func AboutText(version string) string {
	return fmt.Sprintf("%s %s\n\nKeeps the Discord icon visible in the system tray.\n"+
		"Running silently in background.\n\nRight-click the tray icon for options.", AppName, version)
}

func enabled(b bool) string {
	if b {
		return "Enabled"
	}
	return "Disabled"
}
