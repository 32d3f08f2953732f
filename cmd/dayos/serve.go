package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dayos/internal/ics"
	appLog "dayos/internal/log"
	"dayos/internal/reminder"
	"dayos/internal/web"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with reminder and calendar refresh jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			appLog.Info("dayos starting", "listen", a.cfg.Listen, "timezone", a.cal.Loc.String(), "ics_count", len(a.cfg.ICS))

			// Root context with cancellation on SIGINT/SIGTERM.
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				sig := <-sigCh
				appLog.Info("signal received, shutting down", "signal", sig.String())
				cancel()
			}()

			runner, err := a.scheduleJobs(ctx)
			if err != nil {
				return err
			}
			runner.Start(ctx)
			defer runner.Stop()

			srv := web.NewServer(a.cfg, web.Deps{
				Calendar: a.cal,
				Store:    a.store,
				Tracker:  a.tracker,
				Center:   a.center,
				Clock:    a.now,
			})
			err = srv.ListenAndServe(ctx)
			appLog.Info("dayos exiting")
			return err
		},
	}
}

// scheduleJobs registers the reminder scan and, when feeds are configured,
// the ICS refresh. Both run once immediately so a fresh start is not blank
// until the first tick.
func (a *app) scheduleJobs(ctx context.Context) (*reminder.Runner, error) {
	runner := reminder.NewRunner(a.cal.Loc, a.now)

	scanner := &reminder.Scanner{
		Calendar:  a.cal,
		Meetings:  a.store,
		FollowUps: a.tracker,
		Center:    a.center,
		Lead:      time.Duration(a.cfg.MeetingLeadMinutes) * time.Minute,
	}
	scan := func(ctx context.Context, now time.Time) error {
		n, err := scanner.Scan(ctx, now)
		if n > 0 {
			appLog.Info("reminders pushed", "count", n)
		}
		return err
	}
	if err := runner.Add("reminders", a.cfg.ReminderCron, scan); err != nil {
		return nil, err
	}

	if refresher := a.refresher(); refresher != nil {
		if err := runner.Add("ics-refresh", a.cfg.RefreshCron, refresher.Refresh); err != nil {
			return nil, err
		}
		if err := refresher.Refresh(ctx, a.now()); err != nil {
			appLog.Error("initial ics refresh incomplete", err)
		}
	}

	if err := scan(ctx, a.now()); err != nil {
		appLog.Error("initial reminder scan failed", err)
	}
	return runner, nil
}

// refresher returns nil when no ICS feeds are configured.
func (a *app) refresher() *reminder.Refresher {
	sources := make([]ics.Source, 0, len(a.cfg.ICS))
	for _, csrc := range a.cfg.ICS {
		if csrc.URL == "" {
			continue
		}
		id := csrc.ID
		if id == "" {
			if csrc.Name != "" {
				id = csrc.Name
			} else {
				id = csrc.URL
			}
		}
		sources = append(sources, ics.Source{ID: id, URL: csrc.URL})
	}
	if len(sources) == 0 {
		return nil
	}
	return &reminder.Refresher{
		Calendar:    a.cal,
		Fetcher:     ics.NewFetcher(a.cfg.ICSCacheDir, nil),
		Sources:     sources,
		Store:       a.store,
		HorizonDays: a.cfg.HorizonDays,
	}
}
