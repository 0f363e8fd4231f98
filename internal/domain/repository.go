package domain

import "context"

// ProcessInspector answers whether the target application is running.
// Implementation: uses gopsutil for the process snapshot.
type ProcessInspector interface {
	// IsTargetRunning reports whether any configured target name is running.
	IsTargetRunning(ctx context.Context) bool

	// ListTargetProcesses returns the running process names that match a target name.
	ListTargetProcesses(ctx context.Context) []string
}

// Shell wraps the Win32 window and messaging calls this tool needs.
type Shell interface {
	// EnumerateWindows returns all top-level windows.
	EnumerateWindows() ([]Window, error)

	// FindWindowsByClass returns top-level windows whose class is one of classes.
	FindWindowsByClass(classes ...string) ([]Window, error)

	// SendTaskbarCreated delivers the "TaskbarCreated" message to each window.
	// Returns how many windows accepted it.
	SendTaskbarCreated(windows []Window) (int, error)

	// BroadcastTaskbarCreated sends "TaskbarCreated" to all top-level windows.
	BroadcastTaskbarCreated() error

	// BroadcastSettingChange sends WM_SETTINGCHANGE with the given area name.
	BroadcastSettingChange(area string) error

	// RedrawTray forces a repaint of the tray container windows.
	// When replacementClasses is non-empty those windows are redrawn instead.
	RedrawTray(replacementClasses []string) (int, error)
}

// PromotionStore is the shell's per-user notification icon settings store.
// Implementation: HKCU\Control Panel\NotifyIconSettings on Windows.
type PromotionStore interface {
	// Entries returns every icon record in the store.
	Entries() ([]TrayEntry, error)

	// SetPromoted overwrites the promoted flag of one record.
	SetPromoted(key string, promoted bool) error
}

// TrayIconManager inspects and mutates the target's tray icon state.
type TrayIconManager interface {
	// EnumerateTargetWindows returns top-level windows belonging to the target.
	EnumerateTargetWindows() ([]Window, error)

	// IsIconPromoted reports whether the target icon is promoted.
	// Fails open: missing or unreadable records count as promoted.
	IsIconPromoted() bool

	// PromoteAndRefresh runs the remediation chain.
	PromoteAndRefresh() RemediationReport

	// SimulateWindowCycle is the disabled minimize/restore path. Always false.
	SimulateWindowCycle() bool
}

// RemediationStrategy is one step of the PromoteAndRefresh fallback chain.
type RemediationStrategy interface {
	// Name returns the strategy name (e.g., "taskbar-created").
	Name() string

	// IsAvailable returns true if this strategy can run right now.
	IsAvailable() bool

	// Apply runs the strategy. applied is true when it had an effect.
	Apply() (applied bool, err error)
}

// Notifier raises a desktop notification.
type Notifier interface {
	Notify(title, message string) error
}

// AutostartManager handles the per-user login autostart entry.
type AutostartManager interface {
	// Install writes the autostart entry pointing at execPath.
	Install(execPath string) error

	// Uninstall removes the autostart entry.
	Uninstall() error

	// IsInstalled checks if the autostart entry exists.
	IsInstalled() bool

	// NeedsUpdate checks if the entry exists but points elsewhere.
	NeedsUpdate(execPath string) bool

	// Command returns the current command line, empty when not installed.
	Command() string
}
