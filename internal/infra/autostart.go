package infra

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
)

// ErrValueNotFound is returned by a RunKey when the named value is absent.
var ErrValueNotFound = errors.New("autostart value not found")

// RunKey is the per-user "run at login" value store.
// Implementation: HKCU\Software\Microsoft\Windows\CurrentVersion\Run on Windows.
type RunKey interface {
	Get(name string) (string, error)
	Set(name, command string) error
	Delete(name string) error
}

// AutostartManagerImpl implements domain.AutostartManager on a RunKey.
type AutostartManagerImpl struct {
	key  RunKey
	name string
	args []string
}

// NewAutostartManager creates a manager for the current user's Run key.
// The registered command launches the tray front end.
func NewAutostartManager() *AutostartManagerImpl {
	return NewAutostartManagerWithKey(NewRunKey(), AutostartValueName, "tray")
}

// NewAutostartManagerWithKey creates a manager on a custom key (for testing).
func NewAutostartManagerWithKey(key RunKey, name string, args ...string) *AutostartManagerImpl {
	return &AutostartManagerImpl{key: key, name: name, args: args}
}

// commandFor renders the Run value for execPath; the path is always quoted.
func (m *AutostartManagerImpl) commandFor(execPath string) string {
	parts := []string{`"` + execPath + `"`}
	parts = append(parts, m.args...)
	return strings.Join(parts, " ")
}

// Install writes the Run value pointing at execPath.
func (m *AutostartManagerImpl) Install(execPath string) error {
	if execPath == "" {
		return errors.New("executable path is empty")
	}
	if err := m.key.Set(m.name, m.commandFor(execPath)); err != nil {
		return fmt.Errorf("failed to write autostart entry: %w", err)
	}
	return nil
}

// Uninstall removes the Run value. Removing a missing value is not an error.
func (m *AutostartManagerImpl) Uninstall() error {
	err := m.key.Delete(m.name)
	if err != nil && !errors.Is(err, ErrValueNotFound) {
		return fmt.Errorf("failed to remove autostart entry: %w", err)
	}
	return nil
}

// IsInstalled checks if the Run value exists.
func (m *AutostartManagerImpl) IsInstalled() bool {
	return m.Command() != ""
}

// NeedsUpdate checks if the Run value exists but differs from what Install would write.
func (m *AutostartManagerImpl) NeedsUpdate(execPath string) bool {
	current := m.Command()
	if current == "" {
		return false // Doesn't exist, needs install not update
	}
	return !strings.EqualFold(current, m.commandFor(execPath))
}

// Command returns the registered command line, empty when not installed.
func (m *AutostartManagerImpl) Command() string {
	cmd, err := m.key.Get(m.name)
	if err != nil {
		return ""
	}
	return cmd
}

// Ensure AutostartManagerImpl implements domain.AutostartManager.
var _ domain.AutostartManager = (*AutostartManagerImpl)(nil)
