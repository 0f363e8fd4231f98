package infra

import (
	"context"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
	"github.com/eliteGoblin/focusd/tray_mon/internal/policy"
)

// ProcessLister returns the names of all running processes.
type ProcessLister func(ctx context.Context) ([]string, error)

// ProcessInspectorImpl implements domain.ProcessInspector using gopsutil.
type ProcessInspectorImpl struct {
	target policy.AppPolicy
	list   ProcessLister
	logger *zap.Logger
}

// NewProcessInspector creates a process inspector backed by the OS process table.
func NewProcessInspector(target policy.AppPolicy, logger *zap.Logger) *ProcessInspectorImpl {
	return NewProcessInspectorWithLister(target, ListProcessNames, logger)
}

// NewProcessInspectorWithLister creates an inspector with a custom lister (for testing).
func NewProcessInspectorWithLister(target policy.AppPolicy, list ProcessLister, logger *zap.Logger) *ProcessInspectorImpl {
	return &ProcessInspectorImpl{
		target: target,
		list:   list,
		logger: logger,
	}
}

// ListProcessNames snapshots the name of every running process.
func ListProcessNames(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue // Process may have exited
		}
		names = append(names, name)
	}
	return names, nil
}

// ListTargetProcesses returns running process names matching the target.
// A listing failure is logged and treated as "not running".
func (pi *ProcessInspectorImpl) ListTargetProcesses(ctx context.Context) []string {
	names, err := pi.list(ctx)
	if err != nil {
		pi.logger.Error("error checking running processes", zap.Error(err))
		return nil
	}
	return policy.MatchProcessNames(names, pi.target.ProcessPatterns())
}

// IsTargetRunning checks if any target process is running.
func (pi *ProcessInspectorImpl) IsTargetRunning(ctx context.Context) bool {
	matched := pi.ListTargetProcesses(ctx)
	if len(matched) == 0 {
		return false
	}
	pi.logger.Debug("found running target process",
		zap.String("target", pi.target.Name()),
		zap.String("process", matched[0]))
	return true
}

// Ensure ProcessInspectorImpl implements domain.ProcessInspector.
var _ domain.ProcessInspector = (*ProcessInspectorImpl)(nil)
