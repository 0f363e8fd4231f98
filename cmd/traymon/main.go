// Package main is the CLI entry point for traymon.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eliteGoblin/focusd/tray_mon/internal/config"
	"github.com/eliteGoblin/focusd/tray_mon/internal/daemon"
	"github.com/eliteGoblin/focusd/tray_mon/internal/infra"
	"github.com/eliteGoblin/focusd/tray_mon/internal/tray"
)

var (
	// Version info (set via ldflags)
	Version   = "1.0.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "traymon",
	Short: "Keeps the Discord tray icon visible",
	Long: `traymon watches the Discord tray icon and, whenever Windows hides it
in the overflow area, promotes it back to the visible notification area.

Without a subcommand it runs the monitor in the console (same as "run").`,
	Version:      Version,
	SilenceUsage: true,
	RunE:         runConsole,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the monitor in the console until interrupted",
	RunE:  runConsole,
}

var trayCmd = &cobra.Command{
	Use:   "tray",
	Short: "Run the monitor with a notification area icon",
	Long: `Runs the monitor in the background with a tray icon offering status,
log and config shortcuts, and exit. Only one tray instance runs per session.`,
	RunE: runTray,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one check cycle without fixing anything",
	RunE:  runCheck,
}

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Run the remediation chain once, even if the icon looks visible",
	RunE:  runFix,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Discord, tray icon and autostart status",
	RunE:  runStatus,
}

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "List Discord top-level windows",
	RunE:  runWindows,
}

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List notification icon settings entries",
	RunE:  runEntries,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE:  runConfigInit,
}

var autostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Manage starting the tray at login",
}

var autostartEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Start the tray at login",
	RunE:  runAutostartEnable,
}

var autostartDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Stop starting the tray at login",
	RunE:  runAutostartDisable,
}

var autostartStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the login autostart entry",
	RunE:  runAutostartStatus,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

var (
	configPath string
	jsonOutput bool
	showAll    bool
	forceWrite bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.json")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")
	entriesCmd.Flags().BoolVarP(&showAll, "all", "a", false, "Include entries of other applications")
	configInitCmd.Flags().BoolVarP(&forceWrite, "force", "f", false, "Overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	autostartCmd.AddCommand(autostartEnableCmd)
	autostartCmd.AddCommand(autostartDisableCmd)
	autostartCmd.AddCommand(autostartStatusCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(trayCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(windowsCmd)
	rootCmd.AddCommand(entriesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(autostartCmd)
	rootCmd.AddCommand(versionCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	if err := requireWindows(); err != nil {
		return err
	}

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop()
		return a.monitor.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutdown requested")
		a.monitor.Stop()
		return nil
	})
	return g.Wait()
}

func runTray(cmd *cobra.Command, args []string) error {
	if err := requireWindows(); err != nil {
		return err
	}

	release, err := infra.AcquireSingleInstance(infra.SingleInstanceName)
	if errors.Is(err, infra.ErrAlreadyRunning) {
		tray.ShowInfo(tray.AppName, tray.AppName+" is already running.")
		return nil
	}
	if err != nil {
		return err
	}
	defer release()

	a, err := newApp(false)
	if err != nil {
		tray.ShowError("Fatal Error", fmt.Sprintf("An error occurred: %v", err))
		return err
	}
	defer a.close()

	if exe, err := os.Executable(); err == nil {
		a.ensureAutostartCurrent(exe)
	}

	var g errgroup.Group
	err = tray.Run(tray.Options{
		Monitor:       a.monitor,
		Inspector:     a.inspector,
		CheckInterval: a.cfg.CheckIntervalDuration(),
		AutoFix:       a.cfg.EnableAutoFix,
		LogPath:       a.paths.LogPath,
		ConfigPath:    a.cfgPath,
		Version:       Version,
		Logger:        a.logger,
		OnReady: func() {
			g.Go(func() error { return a.monitor.Run(cmd.Context()) })
		},
		OnExit: func() {
			a.monitor.Stop()
			if err := g.Wait(); err != nil {
				a.logger.Error("monitor exited with error", zap.Error(err))
			}
		},
	})
	if err != nil {
		tray.ShowError("Fatal Error", fmt.Sprintf("An error occurred: %v", err))
	}
	return err
}

func runCheck(cmd *cobra.Command, args []string) error {
	if err := requireWindows(); err != nil {
		return err
	}
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	mc := daemon.MonitorConfigFrom(a.cfg)
	mc.EnableAutoFix = false
	m := daemon.NewMonitor(mc, a.inspector, a.trayMgr, nil, a.logger)

	result := m.RunCycle(cmd.Context())
	fmt.Printf("Outcome: %s\n", result.Outcome)
	fmt.Printf("Status:  %s\n", result.Status)
	if procs := a.inspector.ListTargetProcesses(cmd.Context()); len(procs) > 0 {
		fmt.Println("\nRunning Discord processes:")
		for _, p := range procs {
			fmt.Printf("  - %s\n", p)
		}
	}
	return nil
}

func runFix(cmd *cobra.Command, args []string) error {
	if err := requireWindows(); err != nil {
		return err
	}
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	report := a.trayMgr.PromoteAndRefresh()
	if !report.Success {
		fmt.Printf("No strategy had an effect (tried: %v)\n", report.Attempted)
		return errors.New("remediation failed")
	}
	fmt.Printf("Applied: %s\n", report.Strategy)
	fmt.Printf("Tried:   %v\n", report.Attempted)
	fmt.Printf("Tray refreshed: %t\n", report.Refreshed)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := requireWindows(); err != nil {
		return err
	}
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Println("\n=== traymon Status ===")

	procs := a.inspector.ListTargetProcesses(cmd.Context())
	if len(procs) > 0 {
		fmt.Printf("Discord: running (%s)\n", procs[0])
		if a.trayMgr.IsIconPromoted() {
			fmt.Println("Tray icon: visible")
		} else {
			fmt.Println("Tray icon: HIDDEN (run 'traymon fix')")
		}
	} else {
		fmt.Println("Discord: not detected")
	}

	if isTrayRunning() {
		fmt.Println("Tray monitor: running")
	} else {
		fmt.Println("Tray monitor: not running")
	}

	am := infra.NewAutostartManager()
	if am.IsInstalled() {
		fmt.Println("Auto-start: enabled")
	} else {
		fmt.Println("Auto-start: disabled")
	}

	fmt.Printf("\nConfig: %s", a.cfgPath)
	if a.cfg.Path == "" {
		fmt.Print(" (not found, using defaults)")
	}
	fmt.Printf("\nLog:    %s\n", a.paths.LogPath)
	fmt.Printf("Check interval: %s, auto-fix: %t\n", a.cfg.CheckIntervalDuration(), a.cfg.EnableAutoFix)
	return nil
}

func runWindows(cmd *cobra.Command, args []string) error {
	if err := requireWindows(); err != nil {
		return err
	}
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	windows, err := a.trayMgr.EnumerateTargetWindows()
	if err != nil {
		return fmt.Errorf("failed to enumerate windows: %w", err)
	}
	if len(windows) == 0 {
		fmt.Println("No Discord windows found")
		return nil
	}
	for _, w := range windows {
		fmt.Printf("0x%08X  %-28s  %s\n", w.Handle, w.Class, w.Title)
	}
	return nil
}

func runEntries(cmd *cobra.Command, args []string) error {
	if err := requireWindows(); err != nil {
		return err
	}
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	entries, err := a.store.Entries()
	if err != nil {
		return fmt.Errorf("failed to read notification icon settings: %w", err)
	}

	shown := 0
	for _, e := range entries {
		match := a.target.MatchesTrayEntry(e)
		if !match && !showAll {
			continue
		}
		marker := " "
		if match {
			marker = "*"
		}
		fmt.Printf("%s %-22s promoted=%-5t %s\n", marker, e.Key, e.Promoted, e.ExecutablePath)
		shown++
	}
	if shown == 0 {
		fmt.Println("No Discord entries (the shell creates one the first time Discord shows its icon)")
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	paths := infra.DetectAppPaths()
	cfg, path, warnings, err := loadConfig(paths)
	if err != nil {
		fmt.Printf("# %v\n", err)
	} else {
		fmt.Printf("# %s\n", path)
	}
	for _, w := range warnings {
		fmt.Printf("# warning: %s\n", w)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	paths := infra.DetectAppPaths()
	path := configPath
	if path == "" {
		path = config.Resolve("", paths.DataDir)
	}

	if _, err := os.Stat(path); err == nil && !forceWrite {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Write(path, config.Default()); err != nil {
		return err
	}
	fmt.Printf("Wrote default configuration to %s\n", path)
	return nil
}

func runAutostartEnable(cmd *cobra.Command, args []string) error {
	if err := requireWindows(); err != nil {
		return err
	}
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	am := infra.NewAutostartManager()
	if err := am.Install(exe); err != nil {
		return err
	}
	fmt.Printf("Auto-start enabled: %s\n", am.Command())
	return nil
}

func runAutostartDisable(cmd *cobra.Command, args []string) error {
	if err := requireWindows(); err != nil {
		return err
	}
	if err := infra.NewAutostartManager().Uninstall(); err != nil {
		return err
	}
	fmt.Println("Auto-start disabled")
	return nil
}

func runAutostartStatus(cmd *cobra.Command, args []string) error {
	if err := requireWindows(); err != nil {
		return err
	}
	am := infra.NewAutostartManager()
	if !am.IsInstalled() {
		fmt.Println("Auto-start: disabled")
		return nil
	}
	fmt.Printf("Auto-start: enabled\nCommand: %s\n", am.Command())
	if exe, err := os.Executable(); err == nil && am.NeedsUpdate(exe) {
		fmt.Println("Entry points at a different binary; run 'traymon autostart enable' to update it.")
	}
	return nil
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("traymon %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}
