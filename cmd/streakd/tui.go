package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sandeepkv93/streakd/internal/scheduler"
	"github.com/sandeepkv93/streakd/internal/tracker"
	"github.com/sandeepkv93/streakd/internal/update"
)

func runTUI(ctx context.Context) error {
	engine := scheduler.NewEngine(cfg.SchedulerBuffer)
	engine.Start()
	defer engine.Stop()

	feed := update.NewFeed()
	rt, err := openRuntime(ctx,
		tracker.WithNotifier(scheduler.NewNotifier(engine, logger.Named("scheduler"))),
		tracker.WithHaptics(update.BellHaptics{W: os.Stderr}),
		tracker.WithNoticeHandler(feed.Notice),
		tracker.WithChangeHandler(feed.Changed),
	)
	if err != nil {
		return err
	}
	defer rt.Close()

	if cfg.MetricsAddr != "" {
		ms, err := startMetricsServer(cfg.MetricsAddr, prometheus.DefaultGatherer, logger.Named("metrics"))
		if err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		defer ms.Close()
	}

	var notifier update.DesktopNotifier = update.NoopDesktopNotifier{}
	if cfg.DesktopNotifications {
		notifier = update.ExecDesktopNotifier{}
	}
	model := update.NewModel(ctx, rt.app, update.Options{
		Tick:           cfg.TickInterval,
		DesktopEnabled: cfg.DesktopNotifications,
		Notifier:       notifier,
		Scheduler:      engine,
		Feed:           feed,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	logger.Debug("tui stopped",
		zap.Int("pending_reminders", engine.Pending()),
		zap.Uint64("dropped_reminders", engine.Dropped()),
	)
	return err
}
