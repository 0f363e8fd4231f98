//go:build windows

package infra

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

// AcquireSingleInstance takes the named mutex. It returns ErrAlreadyRunning
// when another process holds it. Call release on exit.
func AcquireSingleInstance(name string) (release func(), err error) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}

	handle, err := windows.CreateMutex(nil, false, p)
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		if handle != 0 {
			windows.CloseHandle(handle)
		}
		return nil, ErrAlreadyRunning
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create mutex %s: %w", name, err)
	}

	return func() { windows.CloseHandle(handle) }, nil
}
