package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
)

func testConfig() MonitorConfig {
	cfg := DefaultMonitorConfig()
	cfg.CheckInterval = time.Second
	cfg.StartupDelay = 0
	return cfg
}

func newTestMonitor(cfg MonitorConfig, inspector *mockInspector, tray *mockTray, clock *fakeClock) *Monitor {
	m := NewMonitorWithAfter(cfg, inspector, tray, nil, clock.After, zap.NewNop())
	clock.stop = m.Stop
	return m
}

func TestMonitor_IconVisible(t *testing.T) {
	inspector := &mockInspector{running: true}
	tray := &mockTray{promoted: true}
	m := newTestMonitor(testConfig(), inspector, tray, &fakeClock{})

	result := m.RunCycle(context.Background())

	assert.Equal(t, domain.OutcomeHealthy, result.Outcome)
	assert.Equal(t, 0, result.ConsecutiveFailures)
	assert.Equal(t, time.Second, result.Sleep)
	assert.Equal(t, 0, tray.promoteCalls)
	assert.Equal(t, domain.StateHealthy, m.Snapshot().State)
}

func TestMonitor_HiddenIconFixed(t *testing.T) {
	inspector := &mockInspector{running: true}
	tray := &mockTray{promoted: false, fixWorks: true}
	m := newTestMonitor(testConfig(), inspector, tray, &fakeClock{})

	result := m.RunCycle(context.Background())

	assert.Equal(t, domain.OutcomeFixed, result.Outcome)
	assert.Equal(t, 0, result.ConsecutiveFailures)
	assert.Equal(t, 1, tray.promoteCalls)
	assert.True(t, tray.promoted)

	// Next cycle sees the icon promoted
	result = m.RunCycle(context.Background())
	assert.Equal(t, domain.OutcomeHealthy, result.Outcome)
	assert.Equal(t, 1, tray.promoteCalls)
}

func TestMonitor_FailureThresholdTriggersCooldown(t *testing.T) {
	inspector := &mockInspector{running: true}
	tray := &mockTray{promoted: false, fixWorks: false}
	m := newTestMonitor(testConfig(), inspector, tray, &fakeClock{})
	ctx := context.Background()

	for i := 1; i < DefaultFailureThreshold; i++ {
		result := m.RunCycle(ctx)
		assert.Equal(t, domain.OutcomeFixFailed, result.Outcome)
		assert.Equal(t, i, result.ConsecutiveFailures)
		assert.Equal(t, time.Second, result.Sleep)
	}

	result := m.RunCycle(ctx)
	assert.Equal(t, domain.OutcomeFixFailed, result.Outcome)
	assert.Equal(t, DefaultFailureThreshold, result.ConsecutiveFailures)
	assert.Equal(t, 3*time.Second, result.Sleep)

	snap := m.Snapshot()
	assert.Equal(t, domain.StateCooldown, snap.State)
	assert.Equal(t, 0, snap.ConsecutiveFailures)

	// Counter restarts from zero after the cooldown
	result = m.RunCycle(ctx)
	assert.Equal(t, 1, result.ConsecutiveFailures)
	assert.Equal(t, time.Second, result.Sleep)
}

func TestMonitor_TargetNotRunning(t *testing.T) {
	inspector := &mockInspector{running: false}
	tray := &mockTray{promoted: false}
	m := newTestMonitor(testConfig(), inspector, tray, &fakeClock{})

	result := m.RunCycle(context.Background())

	assert.Equal(t, domain.OutcomeNotRunning, result.Outcome)
	assert.Equal(t, 0, tray.checkCalls, "promotion must not be checked")
	assert.Equal(t, 0, tray.promoteCalls)
}

func TestMonitor_NotRunningLeavesCounterUntouched(t *testing.T) {
	inspector := &mockInspector{running: true}
	tray := &mockTray{promoted: false, fixWorks: false}
	m := newTestMonitor(testConfig(), inspector, tray, &fakeClock{})
	ctx := context.Background()

	m.RunCycle(ctx)
	m.RunCycle(ctx)
	inspector.running = false
	result := m.RunCycle(ctx)

	assert.Equal(t, 2, result.ConsecutiveFailures)
	assert.Equal(t, 2, m.Snapshot().ConsecutiveFailures)
}

func TestMonitor_HealthyCycleResetsCounter(t *testing.T) {
	inspector := &mockInspector{running: true}
	tray := &mockTray{promoted: false, fixWorks: false}
	m := newTestMonitor(testConfig(), inspector, tray, &fakeClock{})
	ctx := context.Background()

	m.RunCycle(ctx)
	m.RunCycle(ctx)
	tray.promoted = true
	result := m.RunCycle(ctx)

	assert.Equal(t, domain.OutcomeHealthy, result.Outcome)
	assert.Equal(t, 0, m.Snapshot().ConsecutiveFailures)
}

func TestMonitor_AutoFixDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.EnableAutoFix = false
	inspector := &mockInspector{running: true}
	tray := &mockTray{promoted: false, fixWorks: true}
	m := newTestMonitor(cfg, inspector, tray, &fakeClock{})

	result := m.RunCycle(context.Background())

	assert.Equal(t, domain.OutcomeMonitorOnly, result.Outcome)
	assert.Equal(t, 0, result.ConsecutiveFailures)
	assert.Equal(t, 0, tray.promoteCalls)
	assert.False(t, tray.promoted)
}

func TestMonitor_WindowSimulationFallback(t *testing.T) {
	inspector := &mockInspector{running: true}

	t.Run("disabled by default", func(t *testing.T) {
		tray := &mockTray{promoted: false, simulateWorks: true}
		m := newTestMonitor(testConfig(), inspector, tray, &fakeClock{})

		result := m.RunCycle(context.Background())

		assert.Equal(t, domain.OutcomeFixFailed, result.Outcome)
		assert.Equal(t, 0, tray.simulateCalls)
	})

	t.Run("tried after remediation fails", func(t *testing.T) {
		cfg := testConfig()
		cfg.EnableWindowSimulation = true
		tray := &mockTray{promoted: false, simulateWorks: true}
		m := newTestMonitor(cfg, inspector, tray, &fakeClock{})

		result := m.RunCycle(context.Background())

		assert.Equal(t, domain.OutcomeFixed, result.Outcome)
		assert.Equal(t, 1, tray.simulateCalls)
	})
}

func TestMonitor_PanicIsRecovered(t *testing.T) {
	inspector := &mockInspector{running: true}
	tray := &mockTray{panicOnCheck: true}
	m := newTestMonitor(testConfig(), inspector, tray, &fakeClock{})

	result := m.RunCycle(context.Background())

	assert.Equal(t, domain.OutcomeError, result.Outcome)
	assert.Error(t, result.Err)
	assert.Equal(t, DefaultErrorRetry, result.Sleep)

	tray.panicOnCheck = false
	tray.promoted = true
	result = m.RunCycle(context.Background())
	assert.Equal(t, domain.OutcomeHealthy, result.Outcome)
	assert.Equal(t, 2, m.Snapshot().Cycles)
}

func TestMonitor_StoppedBeforeRunPerformsNoCycles(t *testing.T) {
	inspector := &mockInspector{running: true}
	tray := &mockTray{promoted: true}
	clock := &fakeClock{}
	m := newTestMonitor(testConfig(), inspector, tray, clock)

	m.Stop()
	require.NoError(t, m.Run(context.Background()))

	assert.Equal(t, 0, inspector.calls)
	assert.Equal(t, 0, m.Snapshot().Cycles)
	assert.Empty(t, clock.Sleeps())
	assert.Equal(t, domain.StateStopped, m.Snapshot().State)
}

func TestMonitor_CanceledContextPerformsNoCycles(t *testing.T) {
	inspector := &mockInspector{running: true}
	m := newTestMonitor(testConfig(), inspector, &mockTray{}, &fakeClock{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, m.Run(ctx))

	assert.Equal(t, 0, inspector.calls)
}

func TestMonitor_RunSleepsBetweenCycles(t *testing.T) {
	cfg := testConfig()
	cfg.StartupDelay = 2 * time.Second
	inspector := &mockInspector{running: true}
	tray := &mockTray{promoted: true}
	clock := &fakeClock{stopAfter: 4}
	m := newTestMonitor(cfg, inspector, tray, clock)

	require.NoError(t, m.Run(context.Background()))

	assert.Equal(t, []time.Duration{2 * time.Second, time.Second, time.Second, time.Second}, clock.Sleeps())
	snap := m.Snapshot()
	assert.Equal(t, 3, snap.Cycles)
	assert.Equal(t, domain.StateStopped, snap.State)
	require.NotNil(t, snap.LastResult)
	assert.Equal(t, domain.OutcomeHealthy, snap.LastResult.Outcome)
	assert.False(t, snap.StartedAt.IsZero())
}

func TestMonitor_RunCooldownSchedule(t *testing.T) {
	inspector := &mockInspector{running: true}
	tray := &mockTray{promoted: false, fixWorks: false}
	clock := &fakeClock{stopAfter: 6}
	m := newTestMonitor(testConfig(), inspector, tray, clock)

	require.NoError(t, m.Run(context.Background()))

	s := time.Second
	assert.Equal(t, []time.Duration{s, s, s, s, 3 * s, s}, clock.Sleeps())
	assert.Equal(t, 1, m.Snapshot().ConsecutiveFailures)
}

func TestMonitor_CooldownNotification(t *testing.T) {
	cfg := testConfig()
	cfg.NotifyOnCooldown = true
	notifier := &mockNotifier{}
	m := NewMonitorWithAfter(cfg, &mockInspector{running: true}, &mockTray{}, notifier, time.After, zap.NewNop())

	for i := 0; i < DefaultFailureThreshold; i++ {
		m.RunCycle(context.Background())
	}

	assert.Len(t, notifier.titles, 1)
}

func TestMonitor_StopInterruptsSleep(t *testing.T) {
	cfg := testConfig()
	cfg.CheckInterval = time.Hour
	m := NewMonitor(cfg, &mockInspector{running: false}, &mockTray{}, nil, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()

	require.Eventually(t, func() bool { return m.Snapshot().Cycles == 1 }, 2*time.Second, 10*time.Millisecond)
	m.Stop()
	m.Stop() // idempotent

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop")
	}
}
