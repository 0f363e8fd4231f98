//go:build windows

package tray

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/getlantern/systray"
	"github.com/pkg/browser"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
)

const tooltipRefresh = 5 * time.Second

// Options wires the tray to the running monitor.
type Options struct {
	Monitor       MonitorState
	Inspector     domain.ProcessInspector
	CheckInterval time.Duration
	AutoFix       bool
	LogPath       string
	ConfigPath    string // Empty when running on defaults
	Version       string
	Logger        *zap.Logger

	OnReady func() // Start the monitor here
	OnExit  func() // Cleanup here
}

var (
	opts       Options
	aboutItem  *systray.MenuItem
	statusItem *systray.MenuItem
	logsItem   *systray.MenuItem
	configItem *systray.MenuItem
	exitItem   *systray.MenuItem
	done       = make(chan struct{})
)

// Run shows the tray icon and blocks until Exit is chosen.
// Must be called from the main goroutine.
func Run(o Options) error {
	opts = o
	systray.Run(onReady, onQuit)
	return nil
}

func onReady() {
	icon, err := Icon()
	if err != nil {
		opts.Logger.Warn("failed to build tray icon", zap.Error(err))
	} else {
		systray.SetIcon(icon)
	}
	systray.SetTitle(AppName)
	systray.SetTooltip(AppName)

	aboutItem = systray.AddMenuItem(AppName, "About "+AppName)
	statusItem = systray.AddMenuItem("Status: Monitoring...", "Show current status")
	systray.AddSeparator()
	logsItem = systray.AddMenuItem("Open Logs", "Open the log file")
	configItem = systray.AddMenuItem("Open Config", "Open the configuration file")
	systray.AddSeparator()
	exitItem = systray.AddMenuItem("Exit", "Stop monitoring and exit")

	if opts.OnReady != nil {
		opts.OnReady()
	}

	go handleClicks()
	go refreshTooltip()
}

func onQuit() {
	close(done)
	if opts.OnExit != nil {
		opts.OnExit()
	}
}

func handleClicks() {
	for {
		select {
		case <-done:
			return
		case <-aboutItem.ClickedCh:
			go ShowInfo("About "+AppName, AboutText(opts.Version))
		case <-statusItem.ClickedCh:
			go showStatus()
		case <-logsItem.ClickedCh:
			go openLogs()
		case <-configItem.ClickedCh:
			go openConfig()
		case <-exitItem.ClickedCh:
			opts.Logger.Info("exit requested from tray menu")
			opts.Monitor.Stop()
			systray.Quit()
			return
		}
	}
}

func refreshTooltip() {
	ticker := time.NewTicker(tooltipRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			snap := opts.Monitor.Snapshot()
			systray.SetTooltip(FormatTooltip(snap))
			if r := snap.LastResult; r != nil {
				statusItem.SetTitle("Status: " + r.Status)
			}
		}
	}
}

func showStatus() {
	info := CollectStatus(context.Background(), opts.Monitor, opts.Inspector, opts.CheckInterval, opts.AutoFix)
	ShowInfo(AppName+" Status", FormatStatus(info))
}

func openLogs() {
	if err := browser.OpenFile(opts.LogPath); err != nil {
		opts.Logger.Warn("failed to open log file", zap.Error(err))
		ShowError("Error", fmt.Sprintf("Could not open log file:\n%v", err))
	}
}

func openConfig() {
	if opts.ConfigPath == "" {
		ShowInfo("Information", "Config file not found. Using default settings.")
		return
	}
	if _, err := os.Stat(opts.ConfigPath); err != nil {
		ShowInfo("Information", "Config file not found. Using default settings.")
		return
	}
	if err := browser.OpenFile(opts.ConfigPath); err != nil {
		opts.Logger.Warn("failed to open config file", zap.Error(err))
		ShowError("Error", fmt.Sprintf("Could not open config file:\n%v", err))
	}
}
