// Package policy describes the monitored application.
// The target's process names, window keyword and tray entry markers live here
// so the inspectors stay application-agnostic.
package policy

import (
	"strings"

	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
)

// AppPolicy defines how to recognize the target application.
type AppPolicy interface {
	// ID returns unique identifier (e.g., "discord").
	ID() string

	// Name returns human-readable name for display.
	Name() string

	// ProcessPatterns returns executable names to look for.
	// Patterns are matched case-insensitively by substring.
	ProcessPatterns() []string

	// MatchesWindow reports whether a top-level window belongs to the target.
	MatchesWindow(w domain.Window) bool

	// MatchesTrayEntry reports whether a notification icon record belongs to the target.
	MatchesTrayEntry(e domain.TrayEntry) bool
}

// containsFold reports whether substr is within s, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// MatchProcessNames returns the names in running that contain any pattern.
// Each running name is reported at most once.
func MatchProcessNames(running []string, patterns []string) []string {
	var matched []string
	for _, name := range running {
		for _, pattern := range patterns {
			if pattern != "" && containsFold(name, pattern) {
				matched = append(matched, name)
				break
			}
		}
	}
	return matched
}
