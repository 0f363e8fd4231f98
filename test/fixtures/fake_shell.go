// Package fixtures provides test helpers for integration tests.
package fixtures

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
)

// FakeShell is an in-memory desktop: a set of top-level windows, some of
// which answer TaskbarCreated.
type FakeShell struct {
	mu         sync.Mutex
	windows    []domain.Window
	responsive map[uintptr]bool

	Delivered    int
	Broadcasts   int
	SettingAreas []string
	Redraws      int
}

// NewFakeShell creates a desktop with the given windows, all unresponsive.
func NewFakeShell(windows ...domain.Window) *FakeShell {
	return &FakeShell{windows: windows, responsive: make(map[uintptr]bool)}
}

// SetResponsive marks a window as accepting TaskbarCreated.
func (s *FakeShell) SetResponsive(handle uintptr, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responsive[handle] = ok
}

func (s *FakeShell) EnumerateWindows() ([]domain.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Window(nil), s.windows...), nil
}

func (s *FakeShell) FindWindowsByClass(classes ...string) ([]domain.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found []domain.Window
	for _, w := range s.windows {
		for _, c := range classes {
			if strings.EqualFold(w.Class, c) {
				found = append(found, w)
				break
			}
		}
	}
	return found, nil
}

func (s *FakeShell) SendTaskbarCreated(windows []domain.Window) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, w := range windows {
		if s.responsive[w.Handle] {
			n++
		}
	}
	s.Delivered += n
	return n, nil
}

func (s *FakeShell) BroadcastTaskbarCreated() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Broadcasts++
	return nil
}

func (s *FakeShell) BroadcastSettingChange(area string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SettingAreas = append(s.SettingAreas, area)
	return nil
}

func (s *FakeShell) RedrawTray(replacementClasses []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Redraws++
	return 1, nil
}

// StaticProcesses returns a process lister yielding names.
func StaticProcesses(names ...string) func(ctx context.Context) ([]string, error) {
	return func(ctx context.Context) ([]string, error) {
		return names, nil
	}
}

// WriteConfig writes values as config.json in dir and returns its path.
func WriteConfig(dir string, values map[string]any) (string, error) {
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "config.json")
	return path, os.WriteFile(path, data, 0644)
}

// Ensure FakeShell implements domain.Shell.
var _ domain.Shell = (*FakeShell)(nil)
