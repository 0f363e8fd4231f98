package policy

import (
	"strings"

	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
)

// DiscordKeyword identifies Discord windows and tray entries.
const DiscordKeyword = "discord"

// trayEntryMarkers mark a record as an application icon rather than a
// leftover key that only mentions the name.
var trayEntryMarkers = []string{".exe", "app"}

// DiscordPolicy implements AppPolicy for the Discord client and its
// PTB/Canary release channels.
type DiscordPolicy struct {
	processes []string
}

// NewDiscordPolicy creates a policy that matches the given executable names.
func NewDiscordPolicy(processes []string) *DiscordPolicy {
	return &DiscordPolicy{processes: append([]string(nil), processes...)}
}

func (p *DiscordPolicy) ID() string {
	return "discord"
}

func (p *DiscordPolicy) Name() string {
	return "Discord"
}

// ProcessPatterns returns the configured executable names.
func (p *DiscordPolicy) ProcessPatterns() []string {
	return append([]string(nil), p.processes...)
}

// MatchesWindow checks title and class for the keyword.
func (p *DiscordPolicy) MatchesWindow(w domain.Window) bool {
	return containsFold(w.Title, DiscordKeyword) || containsFold(w.Class, DiscordKeyword)
}

// MatchesTrayEntry requires the keyword plus an executable/app marker in the
// record identity (subkey name and executable path).
func (p *DiscordPolicy) MatchesTrayEntry(e domain.TrayEntry) bool {
	identity := strings.ToLower(e.Key + " " + e.ExecutablePath)
	if !strings.Contains(identity, DiscordKeyword) {
		return false
	}
	for _, marker := range trayEntryMarkers {
		if strings.Contains(identity, marker) {
			return true
		}
	}
	return false
}

// Ensure DiscordPolicy implements AppPolicy.
var _ AppPolicy = (*DiscordPolicy)(nil)
