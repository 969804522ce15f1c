package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"

	"github.com/zgpcy/ledclock/internal/clock"
	"github.com/zgpcy/ledclock/internal/clockface"
	"github.com/zgpcy/ledclock/internal/collector"
	"github.com/zgpcy/ledclock/internal/config"
	"github.com/zgpcy/ledclock/internal/display"
	"github.com/zgpcy/ledclock/internal/display/terminal"
	"github.com/zgpcy/ledclock/internal/display/web"
	"github.com/zgpcy/ledclock/internal/logger"
	"github.com/zgpcy/ledclock/internal/scheduler"
	"github.com/zgpcy/ledclock/internal/server"
	"github.com/zgpcy/ledclock/internal/version"
)

// openLogOutput returns where logs go. The terminal display owns stdout, so
// logs default to stderr.
func openLogOutput(cfg *config.Config) (io.Writer, func() error, error) {
	if cfg.LogFile == "" {
		return os.Stderr, func() error { return nil }, nil
	}
	// #nosec G302 G304 -- log file path is provided by the operator
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, f.Close, nil
}

// newRegistry registers the tick collector plus Go runtime and process metrics
func newRegistry(c prometheus.Collector, log *logger.Logger) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return nil, fmt.Errorf("failed to register collector: %w", err)
	}

	// Register Go runtime metrics (memory, goroutines, GC stats)
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		log.Warn("Failed to register Go collector", "error", err)
	}

	// Register process metrics (CPU, memory, file descriptors)
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		log.Warn("Failed to register process collector", "error", err)
	}
	return reg, nil
}

func run(cctx *cli.Context, cfg *config.Config) error {
	out, closeLog, err := openLogOutput(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	log := logger.New(cfg.LogLevel, out)
	log.Info("LED clock starting",
		"version", version.Version,
		"config_path", cctx.String("config"))

	palette, err := cfg.Palette()
	if err != nil {
		return err
	}
	loc, err := cfg.TimeLocation()
	if err != nil {
		return err
	}

	log.Info("Configuration loaded successfully",
		"display", cfg.Display,
		"location", loc.String(),
		"on_color", palette.On.String(),
		"off_color", palette.Off.String(),
		"http_enabled", cfg.HTTPOn(),
		"http_port", cfg.HTTPPort)

	tickCollector := collector.NewTickCollector(log)
	reg, err := newRegistry(tickCollector, log)
	if err != nil {
		return err
	}

	// Displays the face fans out to
	var sinks display.Multi
	var term *terminal.Sink
	if cfg.Display == config.DisplayTerminal {
		term = terminal.New(palette, tea.WithAltScreen())
		sinks = append(sinks, term)
	}
	var hub *web.Hub
	if cfg.HTTPOn() {
		hub = web.NewHub(log)
		sinks = append(sinks, hub)
	}
	face := clockface.NewFace(palette.On, palette.Off, sinks)

	sched, err := scheduler.New(clock.Real(), face,
		scheduler.WithLocation(loc),
		scheduler.WithLogger(log),
		scheduler.WithObserver(tickCollector))
	if err != nil {
		return err
	}

	var srv *server.Server
	if cfg.HTTPOn() {
		log.Info("Creating HTTP server", "port", cfg.HTTPPort)
		srv, err = server.NewServer(cfg, tickCollector, face, hub, reg, log)
		if err != nil {
			return err
		}
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(cctx.Context)
	defer cancel()

	st := &stack{log: log, cancel: cancel, sched: sched, srv: srv, hub: hub}

	if hub != nil {
		go hub.Run(ctx)
	}

	serverErrors := make(chan error, 1)
	if srv != nil {
		go func() {
			serverErrors <- srv.Start()
		}()
	}

	if err := sched.Start(ctx); err != nil {
		log.Error("Failed to start clock", "error", err)
		return st.shutdown(fmt.Errorf("failed to start clock: %w", err))
	}

	if term != nil {
		st.term = term
		st.uiDone = make(chan error, 1)
		go func() {
			st.uiDone <- term.Run()
		}()
	}

	// Wait for interrupt signal, user quit or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var runErr error
	select {
	case err := <-serverErrors:
		log.Error("Server error", "error", err)
		runErr = err
		if err == nil {
			runErr = errors.New("HTTP server exited")
		}

	case err := <-st.uiDone:
		st.uiDone = nil
		if err != nil {
			log.Error("Terminal display error", "error", err)
			runErr = err
		} else {
			log.Info("Terminal display closed")
		}

	case sig := <-shutdown:
		log.Info("Received shutdown signal, starting graceful shutdown", "signal", sig.String())
	}

	return st.shutdown(runErr)
}

// stack is everything run started, torn down in reverse order
type stack struct {
	log    *logger.Logger
	cancel context.CancelFunc
	sched  *scheduler.Scheduler
	term   *terminal.Sink
	uiDone chan error // nil once the terminal program has exited
	srv    *server.Server
	hub    *web.Hub
}

// shutdown stops the clock first, then the displays and the HTTP server.
// It returns runErr, or the server shutdown error when runErr is nil.
func (st *stack) shutdown(runErr error) error {
	st.cancel()
	st.sched.Stop()
	<-st.sched.Done()

	if st.uiDone != nil {
		st.term.Quit()
		<-st.uiDone
	}

	if st.srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer shutdownCancel()

		if err := st.srv.Shutdown(shutdownCtx); err != nil {
			st.log.Error("Error during server shutdown", "error", err)
			if runErr == nil {
				runErr = err
			}
		}
	}

	if st.hub != nil {
		<-st.hub.Done()
	}

	st.log.Info("LED clock stopped")
	return runErr
}
