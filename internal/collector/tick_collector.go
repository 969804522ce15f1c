package collector

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zgpcy/ledclock/internal/clockface"
	"github.com/zgpcy/ledclock/internal/logger"
	"github.com/zgpcy/ledclock/internal/scheduler"
	"github.com/zgpcy/ledclock/internal/version"
)

// Skip reasons reported on ledclock_skipped_ticks_total
const (
	ReasonClockSource = "clock_source"
	ReasonDisplay     = "display"
)

// TickCollector implements prometheus.Collector for the clock refresh loop.
// It also implements scheduler.Observer so the scheduler can report into it.
type TickCollector struct {
	logger *logger.Logger

	// Metrics
	upMetric             *prometheus.Desc
	stateMetric          *prometheus.Desc
	alignmentDelayMetric *prometheus.Desc
	lastTickTimeMetric   *prometheus.Desc
	ticksTotal           prometheus.Counter
	skippedTicksTotal    *prometheus.CounterVec
	buildInfo            *prometheus.GaugeVec

	// State
	mu             sync.RWMutex
	state          scheduler.State
	alignmentDelay time.Duration
	lastTick       time.Time
	lastDigits     clockface.Digits
	lastError      error
	ticks          uint64
	isReady        bool
}

// NewTickCollector creates a new TickCollector
func NewTickCollector(log *logger.Logger) *TickCollector {
	if log == nil {
		log = logger.Discard()
	}

	ticksTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledclock_ticks_total",
		Help: "Total number of display refreshes pushed since startup",
	})

	skippedTicksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledclock_skipped_ticks_total",
			Help: "Total number of refreshes skipped because the clock or display failed",
		},
		[]string{"reason"},
	)

	buildInfo := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ledclock_build_info",
			Help: "Build version information",
		},
		[]string{"version", "git_commit", "build_date", "go_version"},
	)

	versionInfo := version.Info()
	buildInfo.With(prometheus.Labels{
		"version":    versionInfo["version"],
		"git_commit": versionInfo["git_commit"],
		"build_date": versionInfo["build_date"],
		"go_version": versionInfo["go_version"],
	}).Set(1)

	return &TickCollector{
		logger: log.WithFields("component", "collector"),
		upMetric: prometheus.NewDesc(
			"ledclock_up",
			"Was the last display refresh successful (1 = success, 0 = failure)",
			nil,
			nil,
		),
		stateMetric: prometheus.NewDesc(
			"ledclock_scheduler_state",
			"Current refresh scheduler state (1 for the active state)",
			[]string{"state"},
			nil,
		),
		alignmentDelayMetric: prometheus.NewDesc(
			"ledclock_alignment_delay_seconds",
			"Delay used to align ticking to the next wall-clock second",
			nil,
			nil,
		),
		lastTickTimeMetric: prometheus.NewDesc(
			"ledclock_last_tick_timestamp_seconds",
			"Unix timestamp of the last successful display refresh",
			nil,
			nil,
		),
		ticksTotal:        ticksTotal,
		skippedTicksTotal: skippedTicksTotal,
		buildInfo:         buildInfo,
	}
}

// Describe implements prometheus.Collector
func (c *TickCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.upMetric
	ch <- c.stateMetric
	ch <- c.alignmentDelayMetric
	ch <- c.lastTickTimeMetric
	c.ticksTotal.Describe(ch)
	c.skippedTicksTotal.Describe(ch)
	c.buildInfo.Describe(ch)
}

// Collect implements prometheus.Collector
func (c *TickCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	upValue := 0.0
	if c.isReady && c.lastError == nil {
		upValue = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.upMetric, prometheus.GaugeValue, upValue)

	for _, st := range scheduler.States {
		v := 0.0
		if st == c.state {
			v = 1.0
		}
		ch <- prometheus.MustNewConstMetric(c.stateMetric, prometheus.GaugeValue, v, st.String())
	}

	ch <- prometheus.MustNewConstMetric(
		c.alignmentDelayMetric,
		prometheus.GaugeValue,
		c.alignmentDelay.Seconds(),
	)

	if !c.lastTick.IsZero() {
		ch <- prometheus.MustNewConstMetric(
			c.lastTickTimeMetric,
			prometheus.GaugeValue,
			float64(c.lastTick.Unix()),
		)
	}

	c.ticksTotal.Collect(ch)
	// skipped ticks counter won't export series until a reason is seen
	c.skippedTicksTotal.Collect(ch)
	c.buildInfo.Collect(ch)
}

// StateChanged implements scheduler.Observer
func (c *TickCollector) StateChanged(s scheduler.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	c.logger.Debug("Scheduler state changed", "state", s.String())
}

// Aligned implements scheduler.Observer
func (c *TickCollector) Aligned(delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alignmentDelay = delay
}

// Ticked implements scheduler.Observer
func (c *TickCollector) Ticked(at time.Time, digits clockface.Digits) {
	c.ticksTotal.Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastTick = at
	c.lastDigits = digits
	c.lastError = nil
	c.ticks++
	c.isReady = true
}

// Skipped implements scheduler.Observer
func (c *TickCollector) Skipped(at time.Time, err error) {
	reason := ReasonDisplay
	if errors.Is(err, clockface.ErrClockSourceUnavailable) {
		reason = ReasonClockSource
	}
	c.skippedTicksTotal.With(prometheus.Labels{"reason": reason}).Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastError = err
}

// IsReady returns true once at least one refresh reached the display
func (c *TickCollector) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isReady
}

// LastError returns the error of the most recent skipped tick, cleared by the
// next successful one
func (c *TickCollector) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// LastTickTime returns the wall-clock time of the last successful refresh
func (c *TickCollector) LastTickTime() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastTick
}

// LastDigits returns the digits pushed by the last successful refresh
func (c *TickCollector) LastDigits() clockface.Digits {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastDigits
}

// TickCount returns the number of successful refreshes
func (c *TickCollector) TickCount() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ticks
}

// State returns the last scheduler state reported
func (c *TickCollector) State() scheduler.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}
