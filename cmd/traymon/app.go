package main

import (
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/tray_mon/internal/config"
	"github.com/eliteGoblin/focusd/tray_mon/internal/daemon"
	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
	"github.com/eliteGoblin/focusd/tray_mon/internal/infra"
	"github.com/eliteGoblin/focusd/tray_mon/internal/logging"
	"github.com/eliteGoblin/focusd/tray_mon/internal/policy"
	"github.com/eliteGoblin/focusd/tray_mon/internal/tray"
	"github.com/eliteGoblin/focusd/tray_mon/internal/usecase"
)

// app holds the components shared by the commands.
type app struct {
	paths     *infra.AppPaths
	cfg       *config.Config
	cfgPath   string // Resolved config file, may not exist
	logger    *zap.Logger
	target    policy.AppPolicy
	inspector *infra.ProcessInspectorImpl
	store     domain.PromotionStore
	trayMgr   *usecase.TrayIconManagerImpl
	monitor   *daemon.Monitor
}

// requireWindows shows the platform error the way the user will see it.
func requireWindows() error {
	if runtime.GOOS == "windows" {
		return nil
	}
	tray.ShowError("Error", "This application is designed for Windows only.")
	return domain.ErrUnsupportedPlatform
}

// loadConfig resolves and loads the config file without logging.
// On a load error cfg holds the defaults and is still usable.
func loadConfig(paths *infra.AppPaths) (cfg *config.Config, path string, warnings []string, err error) {
	path = config.Resolve(configPath, paths.ConfigSearchDirs()...)
	cfg, err = config.Load(path)
	warnings = cfg.Validate()
	return cfg, path, warnings, err
}

// newApp loads configuration, sets up logging and wires every component.
// console mirrors the log to stdout.
func newApp(console bool) (*app, error) {
	paths := infra.DetectAppPaths()
	if err := paths.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg, cfgPath, warnings, loadErr := loadConfig(paths)

	logger, err := logging.New(logging.Options{
		Level:    cfg.LogLevel,
		FilePath: paths.LogPath,
		Console:  console,
	})
	if err != nil {
		// Logger is still usable (stderr fallback)
		logger.Warn("log file unavailable", zap.Error(err))
	}

	if loadErr != nil {
		logger.Warn("using default configuration", zap.Error(loadErr))
	} else {
		logger.Info("loaded configuration", zap.String("path", cfg.Path))
	}
	for _, w := range warnings {
		logger.Warn("invalid configuration value", zap.String("detail", w))
	}

	target := policy.NewDiscordPolicy(cfg.DiscordProcesses)
	store := infra.NewPromotionStore()
	trayMgr := usecase.NewTrayIconManager(infra.NewShell(), store, target, usecase.TrayOptions{
		EnableTrayRefresh:  cfg.EnableTrayRefresh,
		ReplacementClasses: cfg.ShellReplacementClasses,
	}, logger)
	inspector := infra.NewProcessInspector(target, logger)

	var notifier domain.Notifier
	if cfg.NotifyOnCooldown {
		notifier = infra.NewToastNotifier()
	}
	monitor := daemon.NewMonitor(daemon.MonitorConfigFrom(cfg), inspector, trayMgr, notifier, logger)

	return &app{
		paths:     paths,
		cfg:       cfg,
		cfgPath:   cfgPath,
		logger:    logger,
		target:    target,
		inspector: inspector,
		store:     store,
		trayMgr:   trayMgr,
		monitor:   monitor,
	}, nil
}

// close flushes the logger.
func (a *app) close() {
	_ = a.logger.Sync()
}

// ensureAutostartCurrent rewrites the autostart entry when it points at an
// older binary location.
func (a *app) ensureAutostartCurrent(execPath string) {
	am := infra.NewAutostartManager()
	if !am.NeedsUpdate(execPath) {
		return
	}
	if err := am.Install(execPath); err != nil {
		a.logger.Warn("failed to update autostart entry", zap.Error(err))
		return
	}
	a.logger.Info("autostart entry updated", zap.String("command", am.Command()))
}

// isTrayRunning probes the single-instance mutex.
func isTrayRunning() bool {
	release, err := infra.AcquireSingleInstance(infra.SingleInstanceName)
	if errors.Is(err, infra.ErrAlreadyRunning) {
		return true
	}
	if err == nil {
		release()
	}
	return false
}
