package main

import (
	"fmt"
	"os"
	"time"

	// zone database for minimal images without /usr/share/zoneinfo
	_ "time/tzdata"

	"github.com/urfave/cli/v2"

	"github.com/zgpcy/ledclock/internal/config"
	"github.com/zgpcy/ledclock/internal/version"
)

const (
	// DefaultShutdownTimeout is the maximum time to wait for graceful shutdown
	DefaultShutdownTimeout = 30 * time.Second
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "ledclock: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "ledclock",
		Usage:   "seven-segment LED clock for the terminal and the browser",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to YAML configuration file (defaults only when empty)",
				EnvVars: []string{"LEDCLOCK_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file with LEDCLOCK_* overrides; ignored when missing",
				Value: ".env",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "draw the clock in the terminal, serving the web page alongside when enabled",
				Action: runClock,
			},
			{
				Name:   "serve",
				Usage:  "headless mode: web page, websocket stream and metrics only",
				Action: serveClock,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "port",
						Usage: "HTTP port (overrides http_port)",
					},
				},
			},
		},
		DefaultCommand: "run",
	}
}

// loadConfig reads the env file and the config file named by the global flags
func loadConfig(cctx *cli.Context) (*config.Config, error) {
	if err := config.LoadEnvFile(cctx.String("env-file")); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func runClock(cctx *cli.Context) error {
	cfg, err := loadConfig(cctx)
	if err != nil {
		return err
	}
	return run(cctx, cfg)
}

func serveClock(cctx *cli.Context) error {
	cfg, err := loadConfig(cctx)
	if err != nil {
		return err
	}
	enabled := true
	cfg.HTTPEnabled = &enabled
	cfg.Display = config.DisplayNone
	if port := cctx.Int("port"); port != 0 {
		if port < config.MinPort || port > config.MaxPort {
			return fmt.Errorf("port must be between %d and %d, got %d", config.MinPort, config.MaxPort, port)
		}
		cfg.HTTPPort = port
	}
	return run(cctx, cfg)
}
