//go:build integration

package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/tray_mon/internal/config"
	"github.com/eliteGoblin/focusd/tray_mon/internal/daemon"
	"github.com/eliteGoblin/focusd/tray_mon/internal/domain"
	"github.com/eliteGoblin/focusd/tray_mon/internal/infra"
	"github.com/eliteGoblin/focusd/tray_mon/internal/logging"
	"github.com/eliteGoblin/focusd/tray_mon/internal/policy"
	"github.com/eliteGoblin/focusd/tray_mon/internal/usecase"
	"github.com/eliteGoblin/focusd/tray_mon/test/fixtures"
)

// countingStore counts reads and can refuse writes.
type countingStore struct {
	*infra.MemoryPromotionStore
	mu         sync.Mutex
	reads      int
	refuseSets bool
}

func (s *countingStore) Entries() ([]domain.TrayEntry, error) {
	s.mu.Lock()
	s.reads++
	s.mu.Unlock()
	return s.MemoryPromotionStore.Entries()
}

func (s *countingStore) SetPromoted(key string, promoted bool) error {
	if s.refuseSets {
		return errors.New("access denied")
	}
	return s.MemoryPromotionStore.SetPromoted(key, promoted)
}

func (s *countingStore) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// stepClock fires every sleep immediately and stops the monitor after stopAfter sleeps.
type stepClock struct {
	mu        sync.Mutex
	sleeps    []time.Duration
	stopAfter int
	stop      func()
}

func (c *stepClock) after(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	n := len(c.sleeps)
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if n >= c.stopAfter {
		c.stop()
		return ch
	}
	ch <- time.Now()
	return ch
}

func (c *stepClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

var discordWindow = domain.Window{Handle: 0x1001, Title: "Friends - Discord", Class: "Chrome_WidgetWin_1"}

func hiddenDiscordEntry() domain.TrayEntry {
	return domain.TrayEntry{
		Key:            "4021987723",
		ExecutablePath: `C:\Users\me\AppData\Local\Discord\app-1.0.9170\Discord.exe`,
		Promoted:       false,
	}
}

var _ = Describe("Tray Monitor", func() {
	var (
		tmpDir  string
		logPath string
		shell   *fixtures.FakeShell
		store   *countingStore
		clock   *stepClock
		monitor *daemon.Monitor
	)

	scenarioConfig := map[string]any{
		"check_interval":    1,
		"discord_processes": []string{"Discord.exe"},
		"enable_auto_fix":   true,
		"startup_delay":     0,
		"log_level":         "DEBUG",
	}

	build := func(values map[string]any, processes []string, stopAfter int) {
		path, err := fixtures.WriteConfig(tmpDir, values)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Validate()).To(BeEmpty())

		logger, err := logging.New(logging.Options{Level: cfg.LogLevel, FilePath: logPath})
		Expect(err).NotTo(HaveOccurred())

		target := policy.NewDiscordPolicy(cfg.DiscordProcesses)
		inspector := infra.NewProcessInspectorWithLister(target, fixtures.StaticProcesses(processes...), logger)
		trayMgr := usecase.NewTrayIconManager(shell, store, target, usecase.TrayOptions{
			EnableTrayRefresh:  cfg.EnableTrayRefresh,
			ReplacementClasses: cfg.ShellReplacementClasses,
		}, logger)

		clock = &stepClock{stopAfter: stopAfter}
		monitor = daemon.NewMonitorWithAfter(daemon.MonitorConfigFrom(cfg), inspector, trayMgr, nil, clock.after, logger)
		clock.stop = monitor.Stop
	}

	logContents := func() string {
		data, err := os.ReadFile(logPath)
		Expect(err).NotTo(HaveOccurred())
		return string(data)
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "traymon-integration-*")
		Expect(err).NotTo(HaveOccurred())
		logPath = filepath.Join(tmpDir, infra.LogFileName)

		shell = fixtures.NewFakeShell(discordWindow)
		store = &countingStore{MemoryPromotionStore: infra.NewMemoryPromotionStore()}
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("Run", func() {
		Context("when Discord runs and has no tray entry yet", func() {
			It("reports the icon visible without touching the store", func() {
				build(scenarioConfig, []string{"explorer.exe", "Discord.exe"}, 3)

				Expect(monitor.Run(context.Background())).To(Succeed())

				Expect(clock.Sleeps()).To(Equal([]time.Duration{time.Second, time.Second, time.Second}))
				Expect(store.Writes()).To(Equal(0))
				snap := monitor.Snapshot()
				Expect(snap.Cycles).To(Equal(3))
				Expect(snap.ConsecutiveFailures).To(Equal(0))
				Expect(snap.LastResult.Outcome).To(Equal(domain.OutcomeHealthy))
				Expect(logContents()).To(ContainSubstring("icon visible"))
			})
		})

		Context("when the Discord entry is not promoted", func() {
			It("promotes it and the next cycle is healthy", func() {
				store.Put(hiddenDiscordEntry())
				build(scenarioConfig, []string{"Discord.exe"}, 2)

				Expect(monitor.Run(context.Background())).To(Succeed())

				entry, ok := store.Get(hiddenDiscordEntry().Key)
				Expect(ok).To(BeTrue())
				Expect(entry.Promoted).To(BeTrue())
				Expect(store.Writes()).To(Equal(1))
				Expect(shell.SettingAreas).To(ConsistOf(usecase.TraySettingsArea))
				Expect(shell.Redraws).To(Equal(1))
				Expect(monitor.Snapshot().ConsecutiveFailures).To(Equal(0))
				Expect(monitor.Snapshot().LastResult.Outcome).To(Equal(domain.OutcomeHealthy))
				Expect(logContents()).To(ContainSubstring("successfully applied fix"))
			})
		})

		Context("when Discord's window answers TaskbarCreated but the entry stays hidden", func() {
			BeforeEach(func() {
				shell.SetResponsive(discordWindow.Handle, true)
				store.Put(hiddenDiscordEntry())
			})

			It("still writes the promotion flag and converges", func() {
				build(scenarioConfig, []string{"Discord.exe"}, 10)

				Expect(monitor.Run(context.Background())).To(Succeed())

				entry, ok := store.Get(hiddenDiscordEntry().Key)
				Expect(ok).To(BeTrue())
				Expect(entry.Promoted).To(BeTrue())
				Expect(store.Writes()).To(Equal(1))
				Expect(shell.Delivered).To(Equal(1))
				Expect(monitor.Snapshot().Cycles).To(Equal(10))
				Expect(monitor.Snapshot().LastResult.Outcome).To(Equal(domain.OutcomeHealthy))
				Expect(logContents()).To(ContainSubstring("registry-promote"))
			})

			It("counts failures towards the cooldown when the write is refused", func() {
				store.refuseSets = true
				build(scenarioConfig, []string{"Discord.exe"}, 6)

				Expect(monitor.Run(context.Background())).To(Succeed())

				s := time.Second
				Expect(clock.Sleeps()).To(Equal([]time.Duration{s, s, s, s, 3 * s, s}))
				Expect(store.Writes()).To(Equal(0))
				Expect(monitor.Snapshot().LastResult.Outcome).To(Equal(domain.OutcomeFixFailed))
			})
		})

		Context("when every remediation fails", func() {
			It("backs off for three intervals after the fifth failure", func() {
				store.Put(hiddenDiscordEntry())
				store.refuseSets = true
				build(scenarioConfig, []string{"Discord.exe"}, 7)

				Expect(monitor.Run(context.Background())).To(Succeed())

				s := time.Second
				Expect(clock.Sleeps()).To(Equal([]time.Duration{s, s, s, s, 3 * s, s, s}))
				Expect(monitor.Snapshot().ConsecutiveFailures).To(Equal(2))
				Expect(logContents()).To(ContainSubstring("too many consecutive failures"))
			})
		})

		Context("when Discord is not running", func() {
			It("takes no action and never reads the store", func() {
				store.Put(hiddenDiscordEntry())
				build(scenarioConfig, []string{"explorer.exe", "Slack.exe"}, 2)

				Expect(monitor.Run(context.Background())).To(Succeed())

				Expect(store.Reads()).To(Equal(0))
				Expect(store.Writes()).To(Equal(0))
				Expect(shell.Delivered).To(Equal(0))
				Expect(monitor.Snapshot().LastResult.Outcome).To(Equal(domain.OutcomeNotRunning))
			})
		})

		Context("when auto-fix is disabled", func() {
			It("only reports the hidden icon", func() {
				store.Put(hiddenDiscordEntry())
				values := map[string]any{}
				for k, v := range scenarioConfig {
					values[k] = v
				}
				values["enable_auto_fix"] = false
				build(values, []string{"Discord.exe"}, 2)

				Expect(monitor.Run(context.Background())).To(Succeed())

				Expect(store.Writes()).To(Equal(0))
				Expect(monitor.Snapshot().LastResult.Outcome).To(Equal(domain.OutcomeMonitorOnly))
			})
		})

		Context("when stopped before starting", func() {
			It("performs no cycles", func() {
				build(scenarioConfig, []string{"Discord.exe"}, 100)
				monitor.Stop()

				Expect(monitor.Run(context.Background())).To(Succeed())

				Expect(monitor.Snapshot().Cycles).To(Equal(0))
				Expect(clock.Sleeps()).To(BeEmpty())
			})
		})
	})

	Describe("PromoteAndRefresh", func() {
		It("is idempotent", func() {
			store.Put(hiddenDiscordEntry())
			target := policy.NewDiscordPolicy(config.DefaultProcesses)
			mgr := usecase.NewTrayIconManager(shell, store, target, usecase.TrayOptions{}, zap.NewNop())

			Expect(mgr.IsIconPromoted()).To(BeFalse())
			for i := 0; i < 2; i++ {
				report := mgr.PromoteAndRefresh()
				Expect(report.Success).To(BeTrue())
				Expect(report.Strategy).To(Equal(usecase.StrategyRegistryPromote))
			}
			Expect(mgr.IsIconPromoted()).To(BeTrue())
		})
	})
})
