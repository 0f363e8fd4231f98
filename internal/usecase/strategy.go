package usecase

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
	"github.com/eliteGoblin/focusd/tray_mon/internal/policy"
)

// Strategy names, in chain order.
const (
	StrategyShellReplacement = "shell-replacement"
	StrategyTaskbarCreated   = "taskbar-created"
	StrategyRegistryPromote  = "registry-promote"
)

// TraySettingsArea is the WM_SETTINGCHANGE area naming the tray settings.
const TraySettingsArea = "TraySettings"

// WindowSource returns the target's top-level windows.
type WindowSource func() ([]domain.Window, error)

// ShellReplacementStrategy re-announces the taskbar when a replacement shell
// (StartAllBack and similar) owns the tray.
type ShellReplacementStrategy struct {
	shell   domain.Shell
	windows WindowSource
	classes []string
}

// NewShellReplacementStrategy creates the strategy for the given replacement window classes.
func NewShellReplacementStrategy(shell domain.Shell, windows WindowSource, classes []string) *ShellReplacementStrategy {
	return &ShellReplacementStrategy{shell: shell, windows: windows, classes: classes}
}

func (s *ShellReplacementStrategy) Name() string {
	return StrategyShellReplacement
}

// IsAvailable is true only while a replacement tray window exists.
func (s *ShellReplacementStrategy) IsAvailable() bool {
	if len(s.classes) == 0 {
		return false
	}
	found, err := s.shell.FindWindowsByClass(s.classes...)
	return err == nil && len(found) > 0
}

// Apply sends TaskbarCreated to the target windows, then broadcasts it.
func (s *ShellReplacementStrategy) Apply() (bool, error) {
	var errs []error

	delivered := 0
	if targets, err := s.windows(); err != nil {
		errs = append(errs, err)
	} else if len(targets) > 0 {
		n, err := s.shell.SendTaskbarCreated(targets)
		if err != nil {
			errs = append(errs, err)
		}
		delivered = n
	}

	broadcastErr := s.shell.BroadcastTaskbarCreated()
	if broadcastErr != nil {
		errs = append(errs, broadcastErr)
	}

	if delivered > 0 || broadcastErr == nil {
		return true, nil
	}
	return false, errors.Join(errs...)
}

// TaskbarCreatedStrategy asks the target's own windows to re-add their icons.
type TaskbarCreatedStrategy struct {
	shell   domain.Shell
	windows WindowSource
}

// NewTaskbarCreatedStrategy creates the direct TaskbarCreated strategy.
func NewTaskbarCreatedStrategy(shell domain.Shell, windows WindowSource) *TaskbarCreatedStrategy {
	return &TaskbarCreatedStrategy{shell: shell, windows: windows}
}

func (s *TaskbarCreatedStrategy) Name() string {
	return StrategyTaskbarCreated
}

func (s *TaskbarCreatedStrategy) IsAvailable() bool {
	return true
}

// Apply succeeds when at least one target window accepted the message.
func (s *TaskbarCreatedStrategy) Apply() (bool, error) {
	targets, err := s.windows()
	if err != nil {
		return false, err
	}
	if len(targets) == 0 {
		return false, nil
	}

	delivered, err := s.shell.SendTaskbarCreated(targets)
	if err != nil {
		return false, err
	}
	return delivered > 0, nil
}

// RegistryPromoteStrategy sets IsPromoted on every matching tray entry and
// tells the shell its tray settings changed.
type RegistryPromoteStrategy struct {
	shell  domain.Shell
	store  domain.PromotionStore
	target policy.AppPolicy
	logger *zap.Logger
}

// NewRegistryPromoteStrategy creates the store-writing strategy.
func NewRegistryPromoteStrategy(shell domain.Shell, store domain.PromotionStore, target policy.AppPolicy, logger *zap.Logger) *RegistryPromoteStrategy {
	return &RegistryPromoteStrategy{shell: shell, store: store, target: target, logger: logger}
}

func (s *RegistryPromoteStrategy) Name() string {
	return StrategyRegistryPromote
}

func (s *RegistryPromoteStrategy) IsAvailable() bool {
	return true
}

// Apply succeeds when at least one entry was written.
// Entries already promoted are rewritten; the write is idempotent.
func (s *RegistryPromoteStrategy) Apply() (bool, error) {
	entries, err := s.store.Entries()
	if err != nil {
		return false, fmt.Errorf("failed to read tray entries: %w", err)
	}

	var errs []error
	written := 0
	for _, e := range entries {
		if !s.target.MatchesTrayEntry(e) {
			continue
		}
		if err := s.store.SetPromoted(e.Key, true); err != nil {
			errs = append(errs, err)
			continue
		}
		written++
		s.logger.Debug("promoted tray entry",
			zap.String("key", e.Key),
			zap.String("path", e.ExecutablePath))
	}

	if written == 0 {
		return false, errors.Join(errs...)
	}

	if err := s.shell.BroadcastSettingChange(TraySettingsArea); err != nil {
		s.logger.Warn("setting change broadcast failed", zap.Error(err))
	}
	return true, nil
}

// StrategyChain runs remediation strategies in order until one applies.
type StrategyChain struct {
	strategies []domain.RemediationStrategy
	verify     func() bool
	logger     *zap.Logger
}

// NewStrategyChain creates a chain over strategies, tried in the given order.
func NewStrategyChain(logger *zap.Logger, strategies ...domain.RemediationStrategy) *StrategyChain {
	return &StrategyChain{strategies: strategies, logger: logger}
}

// WithVerifier makes Run accept a strategy only when verify reports the
// problem gone afterwards. A delivered message is not proof of an effect.
func (c *StrategyChain) WithVerifier(verify func() bool) *StrategyChain {
	c.verify = verify
	return c
}

// Strategies returns the chain in order.
func (c *StrategyChain) Strategies() []domain.RemediationStrategy {
	return c.strategies
}

// Run tries each available strategy in order.
// With a verifier set, an applied strategy that left the icon hidden counts as no effect.
// Returns the name of the first that applied (empty if none) and the names attempted.
func (c *StrategyChain) Run() (string, []string) {
	attempted := make([]string, 0, len(c.strategies))

	for _, strategy := range c.strategies {
		if !strategy.IsAvailable() {
			c.logger.Debug("strategy not available", zap.String("strategy", strategy.Name()))
			continue
		}
		attempted = append(attempted, strategy.Name())

		applied, err := strategy.Apply()
		if err != nil {
			c.logger.Warn("strategy failed",
				zap.String("strategy", strategy.Name()),
				zap.Error(err))
			continue // Try next strategy
		}
		if !applied {
			c.logger.Debug("strategy had no effect", zap.String("strategy", strategy.Name()))
			continue
		}
		if c.verify != nil && !c.verify() {
			c.logger.Info("strategy applied but icon is still hidden", zap.String("strategy", strategy.Name()))
			continue
		}
		return strategy.Name(), attempted
	}
	return "", attempted
}

// Ensure implementations satisfy interfaces
var _ domain.RemediationStrategy = (*ShellReplacementStrategy)(nil)
var _ domain.RemediationStrategy = (*TaskbarCreatedStrategy)(nil)
var _ domain.RemediationStrategy = (*RegistryPromoteStrategy)(nil)
