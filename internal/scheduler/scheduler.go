package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/zgpcy/ledclock/internal/clock"
	"github.com/zgpcy/ledclock/internal/clockface"
	"github.com/zgpcy/ledclock/internal/display"
	"github.com/zgpcy/ledclock/internal/logger"
)

// Period is the interval between ticks once aligned
const Period = time.Second

var (
	// ErrSchedulingFailure means the timers could not be set up
	ErrSchedulingFailure = errors.New("timer scheduling failure")
	// ErrAlreadyStarted is returned by a second call to Start
	ErrAlreadyStarted = errors.New("scheduler already started")
	// ErrStopped is returned by Start after Stop
	ErrStopped = errors.New("scheduler stopped")
)

// State is the scheduler lifecycle position
type State int32

const (
	Unstarted State = iota
	Aligning
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Aligning:
		return "aligning"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// States lists every state in lifecycle order
var States = []State{Unstarted, Aligning, Running, Stopped}

// Observer is notified of scheduler activity. Calls may come from timer
// goroutines and must not block or call back into the scheduler.
type Observer interface {
	StateChanged(s State)
	Aligned(delay time.Duration)
	Ticked(at time.Time, digits clockface.Digits)
	Skipped(at time.Time, err error)
}

type nopObserver struct{}

func (nopObserver) StateChanged(State)                 {}
func (nopObserver) Aligned(time.Duration)              {}
func (nopObserver) Ticked(time.Time, clockface.Digits) {}
func (nopObserver) Skipped(time.Time, error)           {}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithLocation sets the zone readings are taken in (default time.Local)
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver attaches an observer for metrics
func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		if o != nil {
			s.observer = o
		}
	}
}

// Scheduler refreshes a display sink once per wall-clock second. It first
// waits for the next second boundary, then ticks every Period.
//
// The alignment callback runs on the clock's timer goroutine. Ticks are
// consumed by a single goroutine owned by the scheduler, so refreshes never
// overlap. A tick that arrives while the previous refresh is still running
// is dropped, not queued.
type Scheduler struct {
	clock    clock.Clock
	sink     display.Sink
	loc      *time.Location
	logger   *logger.Logger
	observer Observer

	mu      sync.Mutex
	state   State
	align   clockwork.Timer
	looping bool
	quit    chan struct{}
	done    chan struct{}

	// refreshMu is held for the duration of a push so Stop can wait for an
	// in-flight refresh to finish.
	refreshMu sync.Mutex
	stopped   atomic.Bool
	stopOnce  sync.Once
}

// New creates a scheduler that reads c and pushes digits to sink
func New(c clock.Clock, sink display.Sink, opts ...Option) (*Scheduler, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: no clock", ErrSchedulingFailure)
	}
	if sink == nil {
		return nil, fmt.Errorf("%w: no display sink", ErrSchedulingFailure)
	}

	s := &Scheduler{
		clock:    c,
		sink:     sink,
		loc:      time.Local,
		logger:   logger.Discard(),
		observer: nopObserver{},
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithFields("component", "scheduler")
	return s, nil
}

// Start shows the current time immediately and begins aligned ticking.
// Cancelling ctx has the same effect as Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case Unstarted:
	case Stopped:
		s.mu.Unlock()
		return ErrStopped
	default:
		s.mu.Unlock()
		s.logger.Warn("Scheduler already started, skipping")
		return ErrAlreadyStarted
	}
	s.setState(Aligning)
	s.mu.Unlock()

	s.refresh()

	if err := s.schedule(Aligning); err != nil {
		s.logger.Error("Failed to schedule alignment", "error", err)
		s.Stop()
		return err
	}

	go s.watch(ctx)
	return nil
}

// schedule arms the timer for the given phase. Aligning sets a one-shot
// timer for the next second boundary; Running refreshes on that boundary and
// starts the periodic ticker.
func (s *Scheduler) schedule(phase State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Stopped {
		return nil
	}

	switch phase {
	case Aligning:
		delay := clock.UntilNextSecond(clock.EpochMillis(s.clock))
		t := s.clock.AfterFunc(delay, func() {
			if err := s.schedule(Running); err != nil {
				s.logger.Error("Failed to start ticker", "error", err)
			}
		})
		if t == nil {
			return fmt.Errorf("%w: alignment timer not created", ErrSchedulingFailure)
		}
		s.align = t
		s.observer.Aligned(delay)
		s.logger.Debug("Aligning to next second", "delay_ms", delay.Milliseconds())

	case Running:
		s.align = nil
		ticker := s.clock.NewTicker(Period)
		if ticker == nil {
			return fmt.Errorf("%w: ticker not created", ErrSchedulingFailure)
		}
		s.looping = true
		go s.loop(ticker)
		s.logger.Debug("Ticking", "period_ms", Period.Milliseconds())

	default:
		return fmt.Errorf("%w: cannot schedule phase %s", ErrSchedulingFailure, phase)
	}

	s.setState(phase)
	return nil
}

func (s *Scheduler) loop(ticker clockwork.Ticker) {
	defer close(s.done)
	defer ticker.Stop()

	// the alignment timer fired on a second boundary; show it now rather
	// than a full period later
	s.refresh()

	for {
		select {
		case <-s.quit:
			return
		case <-ticker.Chan():
			s.refresh()
		}
	}
}

func (s *Scheduler) watch(ctx context.Context) {
	select {
	case <-ctx.Done():
		s.logger.Info("Context cancelled, stopping clock refresh")
		s.Stop()
	case <-s.quit:
	}
}

// refresh reads the wall clock and pushes all six digits to the sink
func (s *Scheduler) refresh() {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	if s.stopped.Load() {
		return
	}

	now := s.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("display sink panic: %v", r)
			s.logger.Error("Refresh failed", "error", err)
			s.observer.Skipped(now, err)
		}
	}()

	reading, err := clockface.Read(now, s.loc)
	if err == nil {
		err = reading.Validate()
	}
	if err != nil {
		s.logger.Warn("Skipping tick", "error", err)
		s.observer.Skipped(now, err)
		return
	}

	digits := reading.Digits()
	for position, value := range digits {
		s.sink.SetDigit(position, value)
	}
	display.Flush(s.sink)

	s.observer.Ticked(now, digits)
}

// Stop cancels any pending timer and ends ticking. It is safe to call more
// than once and from any goroutine except from inside a sink call. Once Stop
// returns, the sink receives no further digits.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)

		s.mu.Lock()
		if s.align != nil {
			s.align.Stop()
			s.align = nil
		}
		prev := s.state
		s.setState(Stopped)
		close(s.quit)
		if !s.looping {
			close(s.done)
		}
		s.mu.Unlock()

		// wait out a refresh that passed the stopped check before we set it
		s.refreshMu.Lock()
		s.refreshMu.Unlock()

		s.logger.Info("Clock refresh stopped", "previous_state", prev.String())
	})
}

// Done is closed once the scheduler has stopped and its tick goroutine exited
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// State returns the current lifecycle state
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// setState must be called with s.mu held
func (s *Scheduler) setState(st State) {
	if s.state == st {
		return
	}
	s.state = st
	s.observer.StateChanged(st)
}
