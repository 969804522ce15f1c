// Package config provides configuration management for the LED clock.
//
// This package handles loading configuration from YAML files, applying
// environment variable overrides, setting defaults, and validating the
// configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (highest priority), optionally seeded from a .env file
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// Supported environment variables:
//   - LEDCLOCK_ON_COLOR: Color of lit segments (#rrggbb)
//   - LEDCLOCK_OFF_COLOR: Color of unlit segments (#rrggbb)
//   - LEDCLOCK_LOCATION: IANA time zone, or "Local"
//   - LEDCLOCK_DISPLAY: Terminal display mode (terminal, none)
//   - LEDCLOCK_HTTP_ENABLED: Serve the web clock and metrics (true/false)
//   - LEDCLOCK_HTTP_PORT: HTTP server port (1-65535)
//   - LEDCLOCK_LOG_LEVEL: Log level (debug, info, warn, error)
//   - LEDCLOCK_LOG_FILE: Write logs to this file instead of stderr
//
// Example configuration file (config.yaml):
//
//	on_color: "#ff4500"
//	off_color: "#1f1f1f"
//	location: "Europe/Zurich"
//	display: terminal
//	http_enabled: true
//	http_port: 8080
//	log_level: info
//	log_file: /tmp/ledclock.log
//
// Example usage:
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//		log.Fatalf("Failed to load config: %v", err)
//	}
//
//	palette, _ := cfg.Palette()
//	fmt.Printf("LEDs on=%s off=%s\n", palette.On, palette.Off)
package config
