// Package usecase contains application business logic.
package usecase

import (
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
	"github.com/eliteGoblin/focusd/tray_mon/internal/policy"
)

// TrayOptions are the configuration knobs of TrayIconManagerImpl.
type TrayOptions struct {
	EnableTrayRefresh  bool
	ReplacementClasses []string
}

// TrayIconManagerImpl implements domain.TrayIconManager.
type TrayIconManagerImpl struct {
	shell  domain.Shell
	store  domain.PromotionStore
	target policy.AppPolicy
	chain  *StrategyChain
	opts   TrayOptions
	logger *zap.Logger
}

// NewTrayIconManager creates a manager with the default remediation chain:
// shell-replacement, taskbar-created, registry-promote. A step only counts
// once IsIconPromoted agrees, so the chain falls through to the registry
// write while a matching entry is still hidden.
func NewTrayIconManager(
	shell domain.Shell,
	store domain.PromotionStore,
	target policy.AppPolicy,
	opts TrayOptions,
	logger *zap.Logger,
) *TrayIconManagerImpl {
	m := &TrayIconManagerImpl{
		shell:  shell,
		store:  store,
		target: target,
		opts:   opts,
		logger: logger,
	}
	m.chain = NewStrategyChain(logger,
		NewShellReplacementStrategy(shell, m.EnumerateTargetWindows, opts.ReplacementClasses),
		NewTaskbarCreatedStrategy(shell, m.EnumerateTargetWindows),
		NewRegistryPromoteStrategy(shell, store, target, logger),
	).WithVerifier(m.IsIconPromoted)
	return m
}

// Chain returns the remediation chain.
func (m *TrayIconManagerImpl) Chain() *StrategyChain {
	return m.chain
}

// EnumerateTargetWindows returns top-level windows whose title or class names the target.
func (m *TrayIconManagerImpl) EnumerateTargetWindows() ([]domain.Window, error) {
	all, err := m.shell.EnumerateWindows()
	if err != nil {
		return nil, err
	}

	var matched []domain.Window
	for _, w := range all {
		if m.target.MatchesWindow(w) {
			matched = append(matched, w)
		}
	}
	return matched, nil
}

// MatchingEntries returns the tray entries that belong to the target.
func (m *TrayIconManagerImpl) MatchingEntries() ([]domain.TrayEntry, error) {
	entries, err := m.store.Entries()
	if err != nil {
		return nil, err
	}

	var matched []domain.TrayEntry
	for _, e := range entries {
		if m.target.MatchesTrayEntry(e) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// IsIconPromoted fails open: no matching entry, or an unreadable store,
// counts as promoted.
func (m *TrayIconManagerImpl) IsIconPromoted() bool {
	matched, err := m.MatchingEntries()
	if err != nil {
		m.logger.Error("error checking tray icon visibility", zap.Error(err))
		return true
	}
	if len(matched) == 0 {
		m.logger.Debug("no tray entry for target", zap.String("target", m.target.Name()))
		return true
	}

	for _, e := range matched {
		if e.Promoted {
			return true
		}
	}
	return false
}

// PromoteAndRefresh runs the remediation chain and, on success, redraws the tray.
func (m *TrayIconManagerImpl) PromoteAndRefresh() domain.RemediationReport {
	name, attempted := m.chain.Run()
	report := domain.RemediationReport{
		Strategy:  name,
		Attempted: attempted,
		Success:   name != "",
	}

	if !report.Success {
		m.logger.Warn("all remediation strategies failed", zap.Strings("attempted", attempted))
		return report
	}

	m.logger.Info("tray icon remediated", zap.String("strategy", name))
	if m.opts.EnableTrayRefresh {
		report.Refreshed = m.refreshTray()
	}
	return report
}

// refreshTray redraws the replacement's tray windows when one is running,
// otherwise the standard notification area.
func (m *TrayIconManagerImpl) refreshTray() bool {
	var classes []string
	if len(m.opts.ReplacementClasses) > 0 {
		found, err := m.shell.FindWindowsByClass(m.opts.ReplacementClasses...)
		if err == nil && len(found) > 0 {
			classes = m.opts.ReplacementClasses
		}
	}

	n, err := m.shell.RedrawTray(classes)
	if err != nil {
		m.logger.Warn("tray refresh failed", zap.Error(err))
		return false
	}
	m.logger.Debug("tray refreshed", zap.Int("windows", n))
	return n > 0
}

// SimulateWindowCycle is disabled: minimizing the target's window steals
// focus from the user. Always returns false.
func (m *TrayIconManagerImpl) SimulateWindowCycle() bool {
	m.logger.Info("window simulation is disabled")
	return false
}

// Ensure TrayIconManagerImpl implements domain.TrayIconManager.
var _ domain.TrayIconManager = (*TrayIconManagerImpl)(nil)
