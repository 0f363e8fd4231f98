package infra

import (
	"github.com/gen2brain/beeep"

	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
)

// NotifierAppName is shown as the toast source.
const NotifierAppName = "Discord Tray Manager"

// ToastNotifier implements domain.Notifier with desktop toasts.
type ToastNotifier struct{}

// NewToastNotifier sets the toast app name and returns a notifier.
func NewToastNotifier() *ToastNotifier {
	beeep.AppName = NotifierAppName
	return &ToastNotifier{}
}

// Notify shows a toast. Failures are returned, never retried.
func (n *ToastNotifier) Notify(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Ensure ToastNotifier implements domain.Notifier.
var _ domain.Notifier = (*ToastNotifier)(nil)
