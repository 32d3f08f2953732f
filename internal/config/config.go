package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ICSConfig describes a single ICS subscription whose events are imported
// as meetings.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label shown in the UI.
	Name string `yaml:"name" json:"name"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone every calendar-day comparison is made in.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart is the first column of week and month views:
	//   - "sunday" (default)
	//   - "monday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path" json:"db_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// ReminderCron schedules the follow-up/meeting reminder scan.
	ReminderCron string `yaml:"reminder_cron" json:"reminder_cron"`

	// RefreshCron schedules the ICS meeting import. Ignored without ICS sources.
	RefreshCron string `yaml:"refresh_cron" json:"refresh_cron"`

	// MeetingLeadMinutes is how far ahead a "starting soon" reminder fires.
	MeetingLeadMinutes int `yaml:"meeting_lead_minutes" json:"meeting_lead_minutes"`

	// HorizonDays bounds ICS recurrence expansion into the future.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// ICS is the list of subscribed calendars.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// ICSCacheDir stores ETag/Last-Modified metadata and bodies per feed.
	ICSCacheDir string `yaml:"ics_cache_dir" json:"ics_cache_dir"`

	// SnapshotPath is where `dayos snapshot` writes the agenda PNG.
	SnapshotPath string `yaml:"snapshot_path" json:"snapshot_path"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen       = "127.0.0.1:8080"
	defaultTimezone     = "UTC"
	defaultWeekStart    = "sunday"
	defaultDBPath       = "./var/dayos.db"
	defaultReminderCron = "*/5 * * * *"
	defaultRefreshCron  = "*/15 * * * *"
	defaultLeadMinutes  = 10
	defaultHorizonDays  = 35
	defaultICSCacheDir  = "./var/ics-cache"
	defaultSnapshotPath = "./var/agenda.png"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:             defaultListen,
		Timezone:           defaultTimezone,
		WeekStart:          defaultWeekStart,
		DBPath:             defaultDBPath,
		LogLevel:           "info",
		ReminderCron:       defaultReminderCron,
		RefreshCron:        defaultRefreshCron,
		MeetingLeadMinutes: defaultLeadMinutes,
		HorizonDays:        defaultHorizonDays,
		ICS:                []ICSConfig{},
		ICSCacheDir:        defaultICSCacheDir,
		SnapshotPath:       defaultSnapshotPath,
		BasicAuth:          nil,
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	switch c.WeekStart {
	case "monday", "sunday":
	default:
		c.WeekStart = defaultWeekStart
	}
	if c.DBPath == "" {
		c.DBPath = defaultDBPath
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ReminderCron == "" {
		c.ReminderCron = defaultReminderCron
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefreshCron
	}
	if c.MeetingLeadMinutes <= 0 {
		c.MeetingLeadMinutes = defaultLeadMinutes
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = defaultHorizonDays
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	if c.ICSCacheDir == "" {
		c.ICSCacheDir = defaultICSCacheDir
	}
	if c.SnapshotPath == "" {
		c.SnapshotPath = defaultSnapshotPath
	}
}

// Location resolves Timezone, falling back to UTC when the zone database
// does not know the name.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC, err
	}
	return loc, nil
}

// FirstWeekday maps WeekStart onto time.Weekday.
func (c *Config) FirstWeekday() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename) with 0600
// permissions, creating the parent directory (0700) when missing.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".dayos-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
