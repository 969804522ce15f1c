package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/urfave/cli/v2"

	"github.com/zgpcy/ledclock/internal/clockface"
	"github.com/zgpcy/ledclock/internal/collector"
	"github.com/zgpcy/ledclock/internal/config"
	"github.com/zgpcy/ledclock/internal/display"
	"github.com/zgpcy/ledclock/internal/display/web"
	"github.com/zgpcy/ledclock/internal/logger"
	"github.com/zgpcy/ledclock/internal/scheduler"
	"github.com/zgpcy/ledclock/internal/server"
)

func TestNewApp_Commands(t *testing.T) {
	app := newApp()

	for _, name := range []string{"run", "serve"} {
		if app.Command(name) == nil {
			t.Errorf("missing %q command", name)
		}
	}
	if app.DefaultCommand != "run" {
		t.Errorf("DefaultCommand: got %q, want run", app.DefaultCommand)
	}
}

// loadWith runs the app with an action that only loads configuration
func loadWith(t *testing.T, args ...string) *config.Config {
	t.Helper()

	var cfg *config.Config
	app := newApp()
	app.Commands = nil
	app.DefaultCommand = ""
	app.Action = func(cctx *cli.Context) error {
		var err error
		cfg, err = loadConfig(cctx)
		return err
	}

	if err := app.Run(append([]string{"ledclock"}, args...)); err != nil {
		t.Fatalf("app.Run failed: %v", err)
	}
	return cfg
}

func TestLoadConfig_FileAndEnvFile(t *testing.T) {
	dir := t.TempDir()

	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("on_color: \"#00ff00\"\nlocation: UTC\nhttp_port: 9191\n"), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	envPath := filepath.Join(dir, "test.env")
	if err := os.WriteFile(envPath, []byte("LEDCLOCK_OFF_COLOR=#101010\n"), 0o600); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	_ = os.Unsetenv("LEDCLOCK_OFF_COLOR")
	t.Cleanup(func() { _ = os.Unsetenv("LEDCLOCK_OFF_COLOR") })

	cfg := loadWith(t, "--config", configPath, "--env-file", envPath)

	if cfg.OnColor != "#00ff00" {
		t.Errorf("OnColor: got %q, want #00ff00", cfg.OnColor)
	}
	if cfg.OffColor != "#101010" {
		t.Errorf("OffColor: got %q, want #101010 from env file", cfg.OffColor)
	}
	if cfg.HTTPPort != 9191 {
		t.Errorf("HTTPPort: got %d, want 9191", cfg.HTTPPort)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := loadWith(t, "--env-file", filepath.Join(t.TempDir(), "missing.env"))

	if cfg.Display != config.DefaultDisplay {
		t.Errorf("Display: got %q, want %q", cfg.Display, config.DefaultDisplay)
	}
	if cfg.HTTPPort != config.DefaultHTTPPort {
		t.Errorf("HTTPPort: got %d, want %d", cfg.HTTPPort, config.DefaultHTTPPort)
	}
}

func TestOpenLogOutput(t *testing.T) {
	out, closeFn, err := openLogOutput(&config.Config{})
	if err != nil {
		t.Fatalf("openLogOutput failed: %v", err)
	}
	if out != os.Stderr {
		t.Error("logs should default to stderr")
	}
	if err := closeFn(); err != nil {
		t.Errorf("close failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "ledclock.log")
	out, closeFn, err = openLogOutput(&config.Config{LogFile: path})
	if err != nil {
		t.Fatalf("openLogOutput failed: %v", err)
	}
	logger.New("info", out).Info("hello")
	if err := closeFn(); err != nil {
		t.Errorf("close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file should not be empty")
	}
}

func TestOpenLogOutput_BadPath(t *testing.T) {
	_, _, err := openLogOutput(&config.Config{LogFile: filepath.Join(t.TempDir(), "missing", "x.log")})
	if err == nil {
		t.Error("expected error for a log file in a missing directory")
	}
}

func TestNewRegistry(t *testing.T) {
	c := collector.NewTickCollector(logger.Discard())
	reg, err := newRegistry(c, logger.Discard())
	if err != nil {
		t.Fatalf("newRegistry failed: %v", err)
	}

	if n, err := testutil.GatherAndCount(reg, "ledclock_up", "ledclock_build_info"); err != nil || n != 2 {
		t.Errorf("GatherAndCount: got %d, %v; want 2, nil", n, err)
	}
	if _, err := newRegistry(c, logger.Discard()); err != nil {
		t.Errorf("a fresh registry should accept the collector again: %v", err)
	}
}

// TestShutdown_AfterFailedStart tests that a clock that fails to start still
// releases the HTTP server and the web hub
func TestShutdown_AfterFailedStart(t *testing.T) {
	log := logger.Discard()
	c := collector.NewTickCollector(log)
	hub := web.NewHub(log)
	face := clockface.NewFace(display.MustParseColor("#ff4500"), display.MustParseColor("#1f1f1f"), hub)

	sched, err := scheduler.New(clockwork.NewFakeClock(), face, scheduler.WithObserver(c))
	if err != nil {
		t.Fatalf("scheduler.New failed: %v", err)
	}
	sched.Stop()
	startErr := sched.Start(context.Background())
	if !errors.Is(startErr, scheduler.ErrStopped) {
		t.Fatalf("Start: got %v, want ErrStopped", startErr)
	}

	cfg := &config.Config{Location: "UTC", HTTPPort: 18097}
	srv, err := server.NewServer(cfg, c, face, hub, prometheus.NewRegistry(), log)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()
	// Give the listener a moment
	time.Sleep(100 * time.Millisecond)

	st := &stack{log: log, cancel: cancel, sched: sched, srv: srv, hub: hub}
	err = st.shutdown(fmt.Errorf("failed to start clock: %w", startErr))
	if !errors.Is(err, scheduler.ErrStopped) {
		t.Errorf("shutdown: got %v, want the start error", err)
	}

	select {
	case err := <-serverErrors:
		if err != nil {
			t.Errorf("server returned error after shutdown: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("HTTP server still running after shutdown")
	}

	select {
	case <-hub.Done():
	case <-time.After(5 * time.Second):
		t.Error("web hub still running after shutdown")
	}
}
