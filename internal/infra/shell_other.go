//go:build !windows

package infra

import "github.com/eliteGoblin/focusd/tray_mon/internal/domain"

type unsupportedShell struct{}

// NewShell returns a shell whose calls fail with ErrUnsupportedPlatform.
func NewShell() domain.Shell {
	return unsupportedShell{}
}

func (unsupportedShell) EnumerateWindows() ([]domain.Window, error) {
	return nil, domain.ErrUnsupportedPlatform
}

func (unsupportedShell) FindWindowsByClass(classes ...string) ([]domain.Window, error) {
	return nil, domain.ErrUnsupportedPlatform
}

func (unsupportedShell) SendTaskbarCreated(windows []domain.Window) (int, error) {
	return 0, domain.ErrUnsupportedPlatform
}

func (unsupportedShell) BroadcastTaskbarCreated() error {
	return domain.ErrUnsupportedPlatform
}

func (unsupportedShell) BroadcastSettingChange(area string) error {
	return domain.ErrUnsupportedPlatform
}

func (unsupportedShell) RedrawTray(replacementClasses []string) (int, error) {
	return 0, domain.ErrUnsupportedPlatform
}
