package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WeekStart != "sunday" {
		t.Fatalf("expected default week start sunday, got %q", cfg.WeekStart)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected config file to be written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 permissions, got %o", perm)
	}
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "timezone: Europe/Paris\nweek_start: friday\nmeeting_lead_minutes: -3\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Timezone != "Europe/Paris" {
		t.Fatalf("expected timezone to be kept, got %q", cfg.Timezone)
	}
	if cfg.WeekStart != "sunday" {
		t.Fatalf("expected unknown week start to fall back to sunday, got %q", cfg.WeekStart)
	}
	if cfg.MeetingLeadMinutes != defaultLeadMinutes {
		t.Fatalf("expected lead minutes default, got %d", cfg.MeetingLeadMinutes)
	}
	if cfg.ReminderCron != defaultReminderCron {
		t.Fatalf("expected reminder cron default, got %q", cfg.ReminderCron)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.WeekStart = "monday"
	cfg.ICS = []ICSConfig{{ID: "work", Name: "Work", URL: "https://example.com/work.ics"}}
	cfg.BasicAuth = &BasicAuthConfig{Username: "me", Password: "secret"}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.FirstWeekday() != time.Monday {
		t.Fatalf("expected monday, got %s", got.FirstWeekday())
	}
	if len(got.ICS) != 1 || got.ICS[0].ID != "work" {
		t.Fatalf("unexpected ICS sources: %+v", got.ICS)
	}
	if got.BasicAuth == nil || got.BasicAuth.Username != "me" {
		t.Fatalf("expected basic auth to survive, got %+v", got.BasicAuth)
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = "Not/AZone"
	loc, err := cfg.Location()
	if err == nil {
		t.Fatal("expected error for unknown zone")
	}
	if loc != time.UTC {
		t.Fatalf("expected UTC fallback, got %s", loc)
	}
}
