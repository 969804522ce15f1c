package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/zgpcy/ledclock/internal/display"
	"github.com/zgpcy/ledclock/internal/logger"
)

// Configuration validation constants
const (
	MinPort = 1     // Minimum valid port number
	MaxPort = 65535 // Maximum valid port number

	// Default values
	DefaultOnColor  = "#ff4500"
	DefaultOffColor = "#1f1f1f"
	DefaultLocation = "Local"
	DefaultDisplay  = DisplayTerminal
	DefaultHTTPPort = 8080
	DefaultLogLevel = "info"
)

// Display modes
const (
	DisplayTerminal = "terminal"
	DisplayNone     = "none"
)

// Config represents the application configuration
type Config struct {
	OnColor     string `yaml:"on_color"`
	OffColor    string `yaml:"off_color"`
	Location    string `yaml:"location"` // IANA zone name or "Local"
	Display     string `yaml:"display"`
	HTTPEnabled *bool  `yaml:"http_enabled"` // Pointer to distinguish between false and unset
	HTTPPort    int    `yaml:"http_port"`
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`
}

// Load loads configuration from a YAML file and applies environment variable
// overrides. An empty path skips the file and starts from defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		// #nosec G304 -- Config file path is provided by the operator via CLI flag
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(&cfg)

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("environment variable error: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// applyDefaults sets default values for configuration
func applyDefaults(cfg *Config) {
	if cfg.OnColor == "" {
		cfg.OnColor = DefaultOnColor
	}
	if cfg.OffColor == "" {
		cfg.OffColor = DefaultOffColor
	}
	if cfg.Location == "" {
		cfg.Location = DefaultLocation
	}
	if cfg.Display == "" {
		cfg.Display = DefaultDisplay
	}
	if cfg.HTTPEnabled == nil {
		enabled := true
		cfg.HTTPEnabled = &enabled
	}
	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = DefaultHTTPPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
}

// applyEnvOverrides applies environment variable overrides to configuration
func applyEnvOverrides(cfg *Config) error {
	if val := os.Getenv("LEDCLOCK_ON_COLOR"); val != "" {
		cfg.OnColor = val
	}

	if val := os.Getenv("LEDCLOCK_OFF_COLOR"); val != "" {
		cfg.OffColor = val
	}

	if val := os.Getenv("LEDCLOCK_LOCATION"); val != "" {
		cfg.Location = val
	}

	if val := os.Getenv("LEDCLOCK_DISPLAY"); val != "" {
		cfg.Display = strings.ToLower(val)
	}

	if val := os.Getenv("LEDCLOCK_HTTP_ENABLED"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid LEDCLOCK_HTTP_ENABLED: must be a boolean, got %q", val)
		}
		cfg.HTTPEnabled = &b
	}

	if val := os.Getenv("LEDCLOCK_HTTP_PORT"); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid LEDCLOCK_HTTP_PORT: must be an integer, got %q", val)
		}
		cfg.HTTPPort = i
	}

	if val := os.Getenv("LEDCLOCK_LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}

	if val := os.Getenv("LEDCLOCK_LOG_FILE"); val != "" {
		cfg.LogFile = val
	}

	return nil
}

// validate validates the configuration
func validate(cfg *Config) error {
	if _, err := display.ParseColor(cfg.OnColor); err != nil {
		return fmt.Errorf("on_color: %w", err)
	}
	if _, err := display.ParseColor(cfg.OffColor); err != nil {
		return fmt.Errorf("off_color: %w", err)
	}

	if _, err := loadLocation(cfg.Location); err != nil {
		return fmt.Errorf("location: %w", err)
	}

	switch cfg.Display {
	case DisplayTerminal, DisplayNone:
	default:
		return fmt.Errorf("display must be %q or %q, got %q", DisplayTerminal, DisplayNone, cfg.Display)
	}

	if cfg.HTTPPort < MinPort || cfg.HTTPPort > MaxPort {
		return fmt.Errorf("http_port must be between %d and %d", MinPort, MaxPort)
	}

	if _, ok := logger.ParseLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", cfg.LogLevel)
	}

	// Nothing would show the time
	if cfg.Display == DisplayNone && !cfg.HTTPOn() {
		return fmt.Errorf("display is %q and http is disabled", DisplayNone)
	}

	return nil
}

// Palette returns the parsed on/off colors
func (c *Config) Palette() (display.Palette, error) {
	on, err := display.ParseColor(c.OnColor)
	if err != nil {
		return display.Palette{}, err
	}
	off, err := display.ParseColor(c.OffColor)
	if err != nil {
		return display.Palette{}, err
	}
	return display.Palette{On: on, Off: off}, nil
}

// TimeLocation returns the zone the clock displays
func (c *Config) TimeLocation() (*time.Location, error) {
	return loadLocation(c.Location)
}

// HTTPOn reports whether the HTTP server should run
func (c *Config) HTTPOn() bool {
	return c.HTTPEnabled == nil || *c.HTTPEnabled
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}
