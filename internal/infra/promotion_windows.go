//go:build windows

package infra

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"

	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
)

const (
	notifyIconSettingsPath = `Control Panel\NotifyIconSettings`
	valueExecutablePath    = "ExecutablePath"
	valueIsPromoted        = "IsPromoted"
)

// RegistryPromotionStore implements domain.PromotionStore on
// HKCU\Control Panel\NotifyIconSettings. The shell owns the store; this
// type only reads records and flips IsPromoted.
type RegistryPromotionStore struct {
	root registry.Key
	path string
}

// NewPromotionStore opens the current user's notification icon settings.
func NewPromotionStore() domain.PromotionStore {
	return &RegistryPromotionStore{root: registry.CURRENT_USER, path: notifyIconSettingsPath}
}

// Entries enumerates every icon subkey.
// Subkeys that cannot be opened are skipped.
func (s *RegistryPromotionStore) Entries() ([]domain.TrayEntry, error) {
	k, err := registry.OpenKey(s.root, s.path, registry.ENUMERATE_SUB_KEYS|registry.QUERY_VALUE)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer k.Close()

	names, err := k.ReadSubKeyNames(-1)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.path, err)
	}

	entries := make([]domain.TrayEntry, 0, len(names))
	for _, name := range names {
		entry, err := s.readEntry(name)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *RegistryPromotionStore) readEntry(name string) (domain.TrayEntry, error) {
	sub, err := registry.OpenKey(s.root, s.path+`\`+name, registry.QUERY_VALUE)
	if err != nil {
		return domain.TrayEntry{}, err
	}
	defer sub.Close()

	entry := domain.TrayEntry{Key: name}

	if exe, _, err := sub.GetStringValue(valueExecutablePath); err == nil {
		entry.ExecutablePath = exe
	}

	promoted, _, err := sub.GetIntegerValue(valueIsPromoted)
	switch {
	case err == nil:
		entry.Promoted = promoted != 0
	case errors.Is(err, registry.ErrNotExist):
		// The shell omits IsPromoted until the user has chosen a setting.
		entry.Promoted = false
	default:
		return domain.TrayEntry{}, err
	}
	return entry, nil
}

// SetPromoted writes IsPromoted as a DWORD.
func (s *RegistryPromotionStore) SetPromoted(key string, promoted bool) error {
	sub, err := registry.OpenKey(s.root, s.path+`\`+key, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open tray entry %s: %w", key, err)
	}
	defer sub.Close()

	var v uint32
	if promoted {
		v = 1
	}
	if err := sub.SetDWordValue(valueIsPromoted, v); err != nil {
		return fmt.Errorf("failed to write %s for %s: %w", valueIsPromoted, key, err)
	}
	return nil
}

// Ensure RegistryPromotionStore implements domain.PromotionStore.
var _ domain.PromotionStore = (*RegistryPromotionStore)(nil)
