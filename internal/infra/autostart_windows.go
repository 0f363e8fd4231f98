//go:build windows

package infra

import (
	"errors"

	"golang.org/x/sys/windows/registry"
)

const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

type registryRunKey struct {
	root registry.Key
	path string
}

// NewRunKey opens HKCU\...\CurrentVersion\Run.
func NewRunKey() RunKey {
	return &registryRunKey{root: registry.CURRENT_USER, path: runKeyPath}
}

func (r *registryRunKey) Get(name string) (string, error) {
	k, err := registry.OpenKey(r.root, r.path, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer k.Close()

	v, _, err := k.GetStringValue(name)
	if errors.Is(err, registry.ErrNotExist) {
		return "", ErrValueNotFound
	}
	return v, err
}

func (r *registryRunKey) Set(name, command string) error {
	k, _, err := registry.CreateKey(r.root, r.path, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer k.Close()
	return k.SetStringValue(name, command)
}

func (r *registryRunKey) Delete(name string) error {
	k, err := registry.OpenKey(r.root, r.path, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer k.Close()

	if err := k.DeleteValue(name); err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return ErrValueNotFound
		}
		return err
	}
	return nil
}
