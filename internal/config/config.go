// Package config loads the flat JSON settings file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileName is the settings file name looked up in each search directory.
const FileName = "config.json"

// Default values used when the file or a key is missing.
const (
	DefaultCheckInterval = 30
	DefaultStartupDelay  = 5
	DefaultLogLevel      = "INFO"
)

// DefaultProcesses are the three known Discord release channels.
var DefaultProcesses = []string{"Discord.exe", "DiscordPTB.exe", "DiscordCanary.exe"}

// DefaultShellReplacementClasses are tray window classes of known taskbar replacements.
var DefaultShellReplacementClasses = []string{"StartAllBack_TrayWnd", "StartIsBack_TrayWnd"}

// Config holds all user settings. Immutable after Load.
type Config struct {
	CheckInterval           float64  `json:"check_interval"` // Seconds, fractions allowed
	DiscordProcesses        []string `json:"discord_processes"`
	EnableAutoFix           bool     `json:"enable_auto_fix"`
	EnableTrayRefresh       bool     `json:"enable_tray_refresh"`
	EnableWindowSimulation  bool     `json:"enable_window_simulation"`
	StartupDelay            float64  `json:"startup_delay"` // Seconds
	LogLevel                string   `json:"log_level"`
	ShellReplacementClasses []string `json:"shell_replacement_classes"`
	NotifyOnCooldown        bool     `json:"notify_on_cooldown"`

	// Path is the file the config was read from, empty when defaults are used.
	Path string `json:"-"`
}

// Default returns config with default values.
func Default() *Config {
	return &Config{
		CheckInterval:           DefaultCheckInterval,
		DiscordProcesses:        append([]string(nil), DefaultProcesses...),
		EnableAutoFix:           true,
		EnableTrayRefresh:       true,
		EnableWindowSimulation:  false,
		StartupDelay:            DefaultStartupDelay,
		LogLevel:                DefaultLogLevel,
		ShellReplacementClasses: append([]string(nil), DefaultShellReplacementClasses...),
	}
}

// CheckIntervalDuration returns the poll interval.
func (c *Config) CheckIntervalDuration() time.Duration {
	return seconds(c.CheckInterval)
}

// StartupDelayDuration returns the delay before the first check.
func (c *Config) StartupDelayDuration() time.Duration {
	return seconds(c.StartupDelay)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// Validate replaces out-of-range values with defaults.
// Returns one warning per corrected field.
func (c *Config) Validate() []string {
	var warnings []string

	if c.CheckInterval <= 0 {
		warnings = append(warnings, fmt.Sprintf("check_interval must be positive, got %g; using %d", c.CheckInterval, DefaultCheckInterval))
		c.CheckInterval = DefaultCheckInterval
	}
	if c.StartupDelay < 0 {
		warnings = append(warnings, fmt.Sprintf("startup_delay must not be negative, got %g; using 0", c.StartupDelay))
		c.StartupDelay = 0
	}

	names := make([]string, 0, len(c.DiscordProcesses))
	for _, n := range c.DiscordProcesses {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		warnings = append(warnings, "discord_processes is empty; using defaults")
		names = append([]string(nil), DefaultProcesses...)
	}
	c.DiscordProcesses = names

	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.ShellReplacementClasses == nil {
		c.ShellReplacementClasses = append([]string(nil), DefaultShellReplacementClasses...)
	}

	return warnings
}

// Load reads the config at path. Missing keys keep their defaults.
// On a missing or malformed file it returns the defaults together with the
// error, which callers log as a warning once logging is set up.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config file %s not found, using defaults: %w", path, err)
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	parsed := Default()
	if err := json.Unmarshal(data, parsed); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	parsed.Path = path
	return parsed, nil
}

// Resolve picks the config file to use. An explicit path always wins;
// otherwise the first existing file among dirs is returned. When none exists
// the path in the last dir is returned so "config init" has a target.
func Resolve(explicit string, dirs ...string) string {
	if explicit != "" {
		return explicit
	}
	for _, dir := range dirs {
		p := filepath.Join(dir, FileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if len(dirs) == 0 {
		return FileName
	}
	return filepath.Join(dirs[len(dirs)-1], FileName)
}

// Write stores cfg as indented JSON at path, creating the directory.
func Write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
