//go:build !windows

package infra

import "github.com/eliteGoblin/focusd/tray_mon/internal/domain"

// unsupportedPromotionStore stands in for the registry on non-Windows hosts.
type unsupportedPromotionStore struct{}

// NewPromotionStore returns a store that always fails with ErrUnsupportedPlatform.
func NewPromotionStore() domain.PromotionStore {
	return unsupportedPromotionStore{}
}

func (unsupportedPromotionStore) Entries() ([]domain.TrayEntry, error) {
	return nil, domain.ErrUnsupportedPlatform
}

func (unsupportedPromotionStore) SetPromoted(key string, promoted bool) error {
	return domain.ErrUnsupportedPlatform
}
