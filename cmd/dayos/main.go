package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"dayos/internal/calendar"
	"dayos/internal/config"
	"dayos/internal/followup"
	appLog "dayos/internal/log"
	"dayos/internal/notify"
	"dayos/internal/store"
)

// Root flags shared by every subcommand.
var (
	configPath string
	dbPath     string
	listenAddr string
	logLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "dayos",
		Short:         "Calendar, inbox and follow-up planner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./dayos.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&listenAddr, "listen", "", "HTTP listen address (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(weekCmd())
	rootCmd.AddCommand(monthCmd())
	rootCmd.AddCommand(dayCmd())
	rootCmd.AddCommand(inboxCmd())
	rootCmd.AddCommand(followupsCmd())
	rootCmd.AddCommand(notificationsCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(snapshotCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app bundles the services every command works against.
type app struct {
	cfg     *config.Config
	store   *store.Store
	cal     calendar.Calendar
	tracker *followup.Tracker
	center  *notify.Center
}

// openApp loads config, applies flag overrides and opens the database.
func openApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		if cfg == nil {
			return nil, fmt.Errorf("load config %s: %w", configPath, err)
		}
		appLog.Warn("config not saved; continuing with defaults", "config_path", configPath, "err", err.Error())
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	loc, err := cfg.Location()
	if err != nil {
		appLog.Error("unknown timezone; using UTC", err, "timezone", cfg.Timezone)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	appLog.Debug("effective config",
		"listen", cfg.Listen,
		"timezone", loc.String(),
		"week_start", cfg.WeekStart,
		"db_path", cfg.DBPath,
		"ics_count", len(cfg.ICS),
	)

	return &app{
		cfg:     cfg,
		store:   st,
		cal:     calendar.New(loc, cfg.FirstWeekday()),
		tracker: followup.NewTracker(st),
		center:  notify.NewCenter(st),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) now() time.Time {
	return time.Now().In(a.cal.Loc)
}

// parseDateFlag reads YYYY-MM-DD in the app zone; empty means now.
func (a *app) parseDateFlag(v string) (time.Time, error) {
	if v == "" {
		return a.now(), nil
	}
	d, err := time.ParseInLocation("2006-01-02", v, a.cal.Loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return d, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
