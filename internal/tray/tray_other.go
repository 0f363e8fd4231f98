//go:build !windows

package tray

import (
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
)

// Options wires the tray to the running monitor.
type Options struct {
	Monitor       MonitorState
	Inspector     domain.ProcessInspector
	CheckInterval time.Duration
	AutoFix       bool
	LogPath       string
	ConfigPath    string
	Version       string
	Logger        *zap.Logger

	OnReady func()
	OnExit  func()
}

// Run is unavailable off Windows.
func Run(o Options) error {
	return domain.ErrUnsupportedPlatform
}
