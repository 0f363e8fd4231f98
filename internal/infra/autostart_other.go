//go:build !windows

package infra

import "github.com/eliteGoblin/focusd/tray_mon/internal/domain"

type unsupportedRunKey struct{}

// NewRunKey returns a key whose calls fail with ErrUnsupportedPlatform.
func NewRunKey() RunKey {
	return unsupportedRunKey{}
}

func (unsupportedRunKey) Get(name string) (string, error) {
	return "", domain.ErrUnsupportedPlatform
}

func (unsupportedRunKey) Set(name, command string) error {
	return domain.ErrUnsupportedPlatform
}

func (unsupportedRunKey) Delete(name string) error {
	return domain.ErrUnsupportedPlatform
}
