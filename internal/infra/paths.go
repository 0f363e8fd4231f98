// Package infra implements infrastructure concerns (process, shell, registry, paths).
package infra

import (
	"os"
	"path/filepath"
)

const (
	// AppDirName is the folder under %LOCALAPPDATA% holding the log and config.
	AppDirName = "Discord Tray Manager"
	// LogFileName is the plain-text log file name.
	LogFileName = "discord_tray_manager.log"
	// AutostartValueName is the value name under the HKCU Run key.
	AutostartValueName = "DiscordTrayManager"
)

// AppPaths holds the per-user file locations.
type AppPaths struct {
	DataDir string // %LOCALAPPDATA%\Discord Tray Manager
	LogPath string
	ExeDir  string // Directory of the running binary, empty if unknown
	WorkDir string // Current working directory, empty if unknown
}

// DetectAppPaths resolves paths for the current user.
// On Windows os.UserCacheDir is %LOCALAPPDATA%.
func DetectAppPaths() *AppPaths {
	base, err := os.UserCacheDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = home
	}
	paths := NewAppPathsWithBase(base)

	if exe, err := os.Executable(); err == nil {
		paths.ExeDir = filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		paths.WorkDir = wd
	}
	return paths
}

// NewAppPathsWithBase roots the data directory at base (for testing).
func NewAppPathsWithBase(base string) *AppPaths {
	dataDir := filepath.Join(base, AppDirName)
	return &AppPaths{
		DataDir: dataDir,
		LogPath: filepath.Join(dataDir, LogFileName),
	}
}

// ConfigSearchDirs returns the directories searched for config.json, in order.
// The data directory is always last so it becomes the default write target.
func (p *AppPaths) ConfigSearchDirs() []string {
	var dirs []string
	if p.WorkDir != "" {
		dirs = append(dirs, p.WorkDir)
	}
	if p.ExeDir != "" && p.ExeDir != p.WorkDir {
		dirs = append(dirs, p.ExeDir)
	}
	return append(dirs, p.DataDir)
}

// EnsureDataDir creates the data directory.
func (p *AppPaths) EnsureDataDir() error {
	return os.MkdirAll(p.DataDir, 0755)
}
