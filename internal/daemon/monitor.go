// Package daemon implements the tray icon monitor loop.
package daemon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/tray_mon/internal/config"
	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
)

const (
	// DefaultFailureThreshold is the consecutive failed fixes that trip the cooldown.
	DefaultFailureThreshold = 5
	// DefaultCooldownMultiplier scales the check interval during cooldown.
	DefaultCooldownMultiplier = 3
	// DefaultErrorRetry is the sleep after a cycle that failed unexpectedly.
	DefaultErrorRetry = 5 * time.Second
)

// MonitorConfig holds monitor loop configuration.
type MonitorConfig struct {
	CheckInterval          time.Duration // Sleep between cycles (default 30s)
	StartupDelay           time.Duration // Wait before the first cycle (default 5s)
	ErrorRetry             time.Duration // Sleep after an unexpected cycle error
	FailureThreshold       int
	CooldownMultiplier     int
	EnableAutoFix          bool
	EnableWindowSimulation bool
	NotifyOnCooldown       bool
}

// DefaultMonitorConfig returns default monitor configuration.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		CheckInterval:      config.DefaultCheckInterval * time.Second,
		StartupDelay:       config.DefaultStartupDelay * time.Second,
		ErrorRetry:         DefaultErrorRetry,
		FailureThreshold:   DefaultFailureThreshold,
		CooldownMultiplier: DefaultCooldownMultiplier,
		EnableAutoFix:      true,
	}
}

// MonitorConfigFrom builds monitor configuration from the loaded config file.
func MonitorConfigFrom(cfg *config.Config) MonitorConfig {
	mc := DefaultMonitorConfig()
	mc.CheckInterval = cfg.CheckIntervalDuration()
	mc.StartupDelay = cfg.StartupDelayDuration()
	mc.EnableAutoFix = cfg.EnableAutoFix
	mc.EnableWindowSimulation = cfg.EnableWindowSimulation
	mc.NotifyOnCooldown = cfg.NotifyOnCooldown
	return mc
}

// CooldownDuration is the sleep taken once the failure threshold is reached.
func (c MonitorConfig) CooldownDuration() time.Duration {
	return c.CheckInterval * time.Duration(c.CooldownMultiplier)
}

// AfterFunc returns a channel that fires after d. time.After by default.
type AfterFunc func(d time.Duration) <-chan time.Time

// Monitor periodically checks that the target's tray icon is promoted and
// remediates when it is not. Run blocks in one goroutine; Stop and Snapshot
// are safe to call from others.
type Monitor struct {
	config    MonitorConfig
	inspector domain.ProcessInspector
	tray      domain.TrayIconManager
	notifier  domain.Notifier
	logger    *zap.Logger
	after     AfterFunc

	mu         sync.Mutex
	state      domain.MonitorState
	cycles     int
	failures   int
	lastResult *domain.CycleResult
	lastCheck  time.Time
	startedAt  time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMonitor creates a new monitor. notifier may be nil.
func NewMonitor(
	cfg MonitorConfig,
	inspector domain.ProcessInspector,
	tray domain.TrayIconManager,
	notifier domain.Notifier,
	logger *zap.Logger,
) *Monitor {
	return NewMonitorWithAfter(cfg, inspector, tray, notifier, time.After, logger)
}

// NewMonitorWithAfter creates a monitor with a custom timer source (for testing).
func NewMonitorWithAfter(
	cfg MonitorConfig,
	inspector domain.ProcessInspector,
	tray domain.TrayIconManager,
	notifier domain.Notifier,
	after AfterFunc,
	logger *zap.Logger,
) *Monitor {
	return &Monitor{
		config:    cfg,
		inspector: inspector,
		tray:      tray,
		notifier:  notifier,
		logger:    logger,
		after:     after,
		state:     domain.StateIdle,
		stopCh:    make(chan struct{}),
	}
}

// Run starts the monitor loop.
// This blocks until Stop is called or ctx is canceled. A monitor stopped
// before Run performs no cycles.
func (m *Monitor) Run(ctx context.Context) error {
	if m.isStopped(ctx) {
		m.setState(domain.StateStopped)
		return nil
	}

	m.mu.Lock()
	m.startedAt = time.Now()
	m.mu.Unlock()

	m.logger = m.logger.With(zap.String("run_id", uuid.NewString()))
	m.logger.Info("tray monitor started",
		zap.Duration("interval", m.config.CheckInterval),
		zap.Duration("startup_delay", m.config.StartupDelay),
		zap.Bool("auto_fix", m.config.EnableAutoFix))

	defer func() {
		m.setState(domain.StateStopped)
		m.logger.Info("tray monitor stopped")
	}()

	if m.config.StartupDelay > 0 {
		m.setState(domain.StateWaiting)
		m.logger.Info("waiting before first check", zap.Duration("delay", m.config.StartupDelay))
		if !m.sleep(ctx, m.config.StartupDelay) {
			return nil
		}
	}

	for !m.isStopped(ctx) {
		result := m.RunCycle(ctx)
		if !m.sleep(ctx, result.Sleep) {
			return nil
		}
	}
	return nil
}

// Stop ends the loop at the next loop top or during a sleep. Idempotent.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Snapshot returns a copy of the monitor's current state.
func (m *Monitor) Snapshot() domain.MonitorSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := domain.MonitorSnapshot{
		State:               m.state,
		Cycles:              m.cycles,
		ConsecutiveFailures: m.failures,
		LastCheck:           m.lastCheck,
		StartedAt:           m.startedAt,
	}
	if m.lastResult != nil {
		r := *m.lastResult
		snap.LastResult = &r
	}
	return snap
}

// RunCycle performs one check-and-remediate cycle and returns what happened,
// including how long the loop should sleep afterwards. Panics are recovered
// into an error outcome.
func (m *Monitor) RunCycle(ctx context.Context) (result domain.CycleResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = m.errorResult(fmt.Errorf("panic in monitor cycle: %v", r))
		}
		result.ExecutedAt = start
		result.DurationMs = time.Since(start).Milliseconds()
		m.record(result)
	}()

	m.setState(domain.StateChecking)
	if err := ctx.Err(); err != nil {
		return m.errorResult(err)
	}
	return m.check(ctx)
}

func (m *Monitor) check(ctx context.Context) domain.CycleResult {
	interval := m.config.CheckInterval

	if !m.inspector.IsTargetRunning(ctx) {
		m.logger.Debug("target not running")
		m.setState(domain.StateHealthy)
		return domain.CycleResult{
			Outcome:             domain.OutcomeNotRunning,
			Status:              "Discord not running",
			ConsecutiveFailures: m.currentFailures(),
			Sleep:               interval,
		}
	}

	if m.tray.IsIconPromoted() {
		m.logger.Debug("icon visible")
		m.setFailures(0)
		m.setState(domain.StateHealthy)
		return domain.CycleResult{
			Outcome: domain.OutcomeHealthy,
			Status:  "Discord icon visible",
			Sleep:   interval,
		}
	}

	m.logger.Warn("Discord icon not visible in system tray")
	m.setState(domain.StateRemediating)

	if !m.config.EnableAutoFix {
		return domain.CycleResult{
			Outcome:             domain.OutcomeMonitorOnly,
			Status:              "Discord icon hidden, auto-fix disabled",
			ConsecutiveFailures: m.currentFailures(),
			Sleep:               interval,
		}
	}

	report := m.tray.PromoteAndRefresh()
	success := report.Success
	if !success && m.config.EnableWindowSimulation {
		success = m.tray.SimulateWindowCycle()
	}

	if success {
		m.logger.Info("successfully applied fix",
			zap.String("strategy", report.Strategy),
			zap.Bool("refreshed", report.Refreshed))
		m.setFailures(0)
		m.setState(domain.StateHealthy)
		return domain.CycleResult{
			Outcome: domain.OutcomeFixed,
			Status:  fmt.Sprintf("Discord icon restored via %s", report.Strategy),
			Sleep:   interval,
		}
	}

	failures := m.incrementFailures()
	m.logger.Warn("fix attempt failed",
		zap.Int("failures", failures),
		zap.Int("threshold", m.config.FailureThreshold),
		zap.Strings("attempted", report.Attempted))

	result := domain.CycleResult{
		Outcome:             domain.OutcomeFixFailed,
		Status:              fmt.Sprintf("fix failed (%d/%d)", failures, m.config.FailureThreshold),
		ConsecutiveFailures: failures,
		Sleep:               interval,
	}

	if m.config.FailureThreshold > 0 && failures >= m.config.FailureThreshold {
		result.Sleep = m.config.CooldownDuration()
		m.logger.Error("too many consecutive failures, taking a break",
			zap.Duration("cooldown", result.Sleep))
		m.setFailures(0)
		m.setState(domain.StateCooldown)
		m.notifyCooldown(result.Sleep)
	}
	return result
}

func (m *Monitor) errorResult(err error) domain.CycleResult {
	m.logger.Error("unexpected error in monitoring loop", zap.Error(err))
	m.setState(domain.StateChecking)
	return domain.CycleResult{
		Outcome:             domain.OutcomeError,
		Status:              err.Error(),
		ConsecutiveFailures: m.currentFailures(),
		Sleep:               m.config.ErrorRetry,
		Err:                 err,
	}
}

func (m *Monitor) notifyCooldown(d time.Duration) {
	if !m.config.NotifyOnCooldown || m.notifier == nil {
		return
	}
	msg := fmt.Sprintf("Could not restore the Discord tray icon. Retrying in %s.", d)
	if err := m.notifier.Notify("Discord Tray Manager", msg); err != nil {
		m.logger.Warn("failed to show notification", zap.Error(err))
	}
}

// sleep waits for d. Returns false when stopped or canceled first.
func (m *Monitor) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return !m.isStopped(ctx)
	}
	select {
	case <-ctx.Done():
		return false
	case <-m.stopCh:
		return false
	case <-m.after(d):
		return true
	}
}

func (m *Monitor) isStopped(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	select {
	case <-m.stopCh:
		return true
	default:
		return false
	}
}

func (m *Monitor) record(result domain.CycleResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles++
	m.lastCheck = result.ExecutedAt
	m.lastResult = &result
}

func (m *Monitor) setState(s domain.MonitorState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *Monitor) currentFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures
}

func (m *Monitor) setFailures(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = n
}

func (m *Monitor) incrementFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
	return m.failures
}
