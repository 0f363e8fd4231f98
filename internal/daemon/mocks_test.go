package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
)

// mockInspector implements domain.ProcessInspector for testing
type mockInspector struct {
	mu      sync.Mutex
	running bool
	calls   int
}

func (m *mockInspector) IsTargetRunning(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.running
}

func (m *mockInspector) ListTargetProcesses(ctx context.Context) []string {
	if m.IsTargetRunning(ctx) {
		return []string{"Discord.exe"}
	}
	return nil
}

// mockTray implements domain.TrayIconManager for testing
type mockTray struct {
	mu            sync.Mutex
	promoted      bool
	fixWorks      bool
	simulateWorks bool
	panicOnCheck  bool
	checkCalls    int
	promoteCalls  int
	simulateCalls int
}

func (m *mockTray) EnumerateTargetWindows() ([]domain.Window, error) {
	return nil, nil
}

func (m *mockTray) IsIconPromoted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkCalls++
	if m.panicOnCheck {
		panic("shell went away")
	}
	return m.promoted
}

func (m *mockTray) PromoteAndRefresh() domain.RemediationReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promoteCalls++
	if !m.fixWorks {
		return domain.RemediationReport{Attempted: []string{"taskbar-created", "registry-promote"}}
	}
	m.promoted = true
	return domain.RemediationReport{
		Strategy:  "registry-promote",
		Attempted: []string{"taskbar-created", "registry-promote"},
		Success:   true,
	}
}

func (m *mockTray) SimulateWindowCycle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.simulateCalls++
	return m.simulateWorks
}

// mockNotifier implements domain.Notifier for testing
type mockNotifier struct {
	titles []string
}

func (m *mockNotifier) Notify(title, message string) error {
	m.titles = append(m.titles, title)
	return nil
}

// fakeClock records requested sleeps, fires them immediately and stops the
// monitor after a fixed number of sleeps.
type fakeClock struct {
	mu        sync.Mutex
	sleeps    []time.Duration
	stopAfter int
	stop      func()
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	n := len(c.sleeps)
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if c.stopAfter > 0 && n >= c.stopAfter {
		c.stop()
		return ch // never fires; the stop channel wins
	}
	ch <- time.Now()
	return ch
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

var (
	_ domain.ProcessInspector = (*mockInspector)(nil)
	_ domain.TrayIconManager  = (*mockTray)(nil)
	_ domain.Notifier         = (*mockNotifier)(nil)
)
