package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the daemon and the CLI client.
type Config struct {
	// ServerAddress is the gRPC address the daemon listens on and clients dial.
	ServerAddress string `yaml:"server_addr"`
	// StoreDriver selects the alarm store backend: "json" or "sqlite".
	StoreDriver string `yaml:"store_driver"`
	// StateFile is the path to the alarm store (JSON file or SQLite database).
	StateFile string `yaml:"state_file"`
	// PollInterval is the delay between due-alarm checks.
	PollInterval time.Duration `yaml:"poll_interval"`
	// ToneDir is the directory tone names are resolved against.
	ToneDir string `yaml:"tone_dir"`
	// DefaultTone is used when an alarm is added without a tone.
	DefaultTone string `yaml:"default_tone"`
	// SnoozeMinutes is the default snooze offset.
	SnoozeMinutes int `yaml:"snooze_minutes"`
	// PlayerCommand overrides the OS audio player; the tone path is appended.
	PlayerCommand []string `yaml:"player_command,omitempty"`
	// Timeout is the duration for RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum zap level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "alarm-clock-settings.yaml"

	// DefaultStateFilename is the default JSON store filename.
	DefaultStateFilename = "alarms.json"

	// DefaultDatabaseFilename is the default SQLite store filename.
	DefaultDatabaseFilename = "alarms.db"

	// DefaultServerAddress is the loopback address used when none is configured.
	DefaultServerAddress = "127.0.0.1:50071"

	// DefaultPollInterval checks twice per minute so a minute boundary is never skipped.
	DefaultPollInterval = 30 * time.Second

	// DefaultTone matches the tone shipped next to the binary.
	DefaultTone = "tone1.mp3"

	// DefaultSnoozeMinutes is the snooze offset offered by the alarm popup.
	DefaultSnoozeMinutes = 5

	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default permission for settings and store files.
	DefaultFilePermissions = 0o600
)

// Store drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// ErrConfigExists is returned by Init when the settings file is already there.
var ErrConfigExists = errors.New("settings file already exists")

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownDriver is returned for an unsupported store driver.
	errUnknownDriver = errors.New("unknown store driver")
	// errInvalidInterval is returned for a poll interval of a minute or more.
	errInvalidInterval = errors.New("poll interval must be shorter than one minute")
	// errInvalidSnooze is returned for a negative snooze default.
	errInvalidSnooze = errors.New("snooze minutes must not be negative")
)

// Default returns a configuration with every field at its default.
func Default() *Config {
	cfg := new(Config)

	// Defaults always validate.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
// A missing file at the default path yields the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Init writes a settings file with every field at its default and returns
// its path. An existing file is kept unless overwrite is set.
func Init(path string, overwrite bool) (string, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	path = filepath.Clean(path)

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("check settings: %w", err)
		}
	}

	if err := Save(path, Default()); err != nil {
		return "", err
	}

	return path, nil
}

// Validate checks the provided settings and fills in defaults.
//
//nolint:cyclop // Each branch is a single default or check.
func Validate(settings *Config) error {
	if settings.ServerAddress == "" {
		settings.ServerAddress = DefaultServerAddress
	}

	if _, _, err := net.SplitHostPort(settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server address: %w", err)
	}

	switch settings.StoreDriver {
	case "":
		settings.StoreDriver = DriverJSON
	case DriverJSON, DriverSQLite:
	default:
		return fmt.Errorf("%w: %q", errUnknownDriver, settings.StoreDriver)
	}

	// Set default state file if not specified
	if settings.StateFile == "" {
		settings.StateFile = DefaultStateFilename
		if settings.StoreDriver == DriverSQLite {
			settings.StateFile = DefaultDatabaseFilename
		}
	}

	if settings.PollInterval <= 0 {
		settings.PollInterval = DefaultPollInterval
	}

	if settings.PollInterval >= time.Minute {
		return fmt.Errorf("%w: %s", errInvalidInterval, settings.PollInterval)
	}

	if settings.ToneDir == "" {
		settings.ToneDir = "."
	}

	if settings.DefaultTone == "" {
		settings.DefaultTone = DefaultTone
	}

	if settings.SnoozeMinutes < 0 {
		return fmt.Errorf("%w: %d", errInvalidSnooze, settings.SnoozeMinutes)
	}

	if settings.SnoozeMinutes == 0 {
		settings.SnoozeMinutes = DefaultSnoozeMinutes
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.LogLevel == "" {
		settings.LogLevel = "info"
	}

	return nil
}
