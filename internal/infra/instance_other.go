//go:build !windows

package infra

import "github.com/eliteGoblin/focusd/tray_mon/internal/domain"

// AcquireSingleInstance is unavailable off Windows.
func AcquireSingleInstance(name string) (release func(), err error) {
	return nil, domain.ErrUnsupportedPlatform
}
