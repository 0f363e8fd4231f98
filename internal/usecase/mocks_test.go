package usecase

import (
	"errors"
	"strings"

	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
	"github.com/eliteGoblin/focusd/tray_mon/internal/infra"
	"github.com/eliteGoblin/focusd/tray_mon/internal/policy"
)

// mockShell implements domain.Shell for testing
type mockShell struct {
	windows      []domain.Window
	enumErr      error
	accepting    map[uintptr]bool // handles that accept TaskbarCreated
	sendErr      error
	broadcastErr error
	settingErr   error
	redrawErr    error

	sent           []uintptr
	broadcasts     int
	settingAreas   []string
	redrawnClasses [][]string
}

func newMockShell(windows ...domain.Window) *mockShell {
	return &mockShell{windows: windows, accepting: make(map[uintptr]bool)}
}

func (m *mockShell) EnumerateWindows() ([]domain.Window, error) {
	if m.enumErr != nil {
		return nil, m.enumErr
	}
	return m.windows, nil
}

func (m *mockShell) FindWindowsByClass(classes ...string) ([]domain.Window, error) {
	if m.enumErr != nil {
		return nil, m.enumErr
	}
	var found []domain.Window
	for _, w := range m.windows {
		for _, c := range classes {
			if strings.EqualFold(w.Class, c) {
				found = append(found, w)
			}
		}
	}
	return found, nil
}

func (m *mockShell) SendTaskbarCreated(windows []domain.Window) (int, error) {
	if m.sendErr != nil {
		return 0, m.sendErr
	}
	delivered := 0
	for _, w := range windows {
		m.sent = append(m.sent, w.Handle)
		if m.accepting[w.Handle] {
			delivered++
		}
	}
	return delivered, nil
}

func (m *mockShell) BroadcastTaskbarCreated() error {
	m.broadcasts++
	return m.broadcastErr
}

func (m *mockShell) BroadcastSettingChange(area string) error {
	m.settingAreas = append(m.settingAreas, area)
	return m.settingErr
}

func (m *mockShell) RedrawTray(replacementClasses []string) (int, error) {
	if m.redrawErr != nil {
		return 0, m.redrawErr
	}
	m.redrawnClasses = append(m.redrawnClasses, replacementClasses)
	return 1, nil
}

// mockStrategy implements domain.RemediationStrategy for testing
type mockStrategy struct {
	name      string
	available bool
	applied   bool
	err       error
	calls     int
}

func (m *mockStrategy) Name() string      { return m.name }
func (m *mockStrategy) IsAvailable() bool { return m.available }

func (m *mockStrategy) Apply() (bool, error) {
	m.calls++
	return m.applied, m.err
}

// readOnlyStore rejects every write
type readOnlyStore struct {
	*infra.MemoryPromotionStore
}

func (s *readOnlyStore) SetPromoted(key string, promoted bool) error {
	return errors.New("access denied")
}

var errBoom = errors.New("boom")

func testPolicy() policy.AppPolicy {
	return policy.NewDiscordPolicy([]string{"Discord.exe"})
}

var (
	discordWindow  = domain.Window{Handle: 10, Title: "#general - Discord", Class: "Chrome_WidgetWin_1"}
	explorerWindow = domain.Window{Handle: 20, Title: "", Class: "Shell_TrayWnd"}
	startAllBack   = domain.Window{Handle: 30, Title: "", Class: "StartAllBack_TrayWnd"}

	discordEntry = domain.TrayEntry{Key: "1001", ExecutablePath: `C:\Users\u\AppData\Local\Discord\app-1.0.9\Discord.exe`}
	otherEntry   = domain.TrayEntry{Key: "1002", ExecutablePath: `C:\Program Files\Slack\slack.exe`}
)

// Ensure mocks implement interfaces
var _ domain.Shell = (*mockShell)(nil)
var _ domain.RemediationStrategy = (*mockStrategy)(nil)
var _ domain.PromotionStore = (*readOnlyStore)(nil)
