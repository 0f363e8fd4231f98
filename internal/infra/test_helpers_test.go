package infra

import (
	"context"
	"errors"

	"github.com/eliteGoblin/focusd/tray_mon/internal/policy"
)

// mockRunKey is a test double for RunKey
type mockRunKey struct {
	values   map[string]string
	setErr   error
	setCalls int
}

func newMockRunKey() *mockRunKey {
	return &mockRunKey{values: make(map[string]string)}
}

func (m *mockRunKey) Get(name string) (string, error) {
	v, ok := m.values[name]
	if !ok {
		return "", ErrValueNotFound
	}
	return v, nil
}

func (m *mockRunKey) Set(name, command string) error {
	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	m.values[name] = command
	return nil
}

func (m *mockRunKey) Delete(name string) error {
	if _, ok := m.values[name]; !ok {
		return ErrValueNotFound
	}
	delete(m.values, name)
	return nil
}

// Ensure mockRunKey implements RunKey
var _ RunKey = (*mockRunKey)(nil)

// staticLister returns a ProcessLister that always yields names.
func staticLister(names ...string) ProcessLister {
	return func(ctx context.Context) ([]string, error) {
		return names, nil
	}
}

// failingLister returns a ProcessLister that always fails.
func failingLister() ProcessLister {
	return func(ctx context.Context) ([]string, error) {
		return nil, errors.New("snapshot failed")
	}
}

func newTestPolicy() policy.AppPolicy {
	return policy.NewDiscordPolicy([]string{"Discord.exe", "DiscordPTB.exe", "DiscordCanary.exe"})
}
