// Package collector implements a Prometheus collector for the clock refresh
// loop.
//
// The collector exposes the following metrics:
//   - ledclock_up: 1 when the last refresh reached the display, 0 otherwise
//   - ledclock_scheduler_state: 1 for the active scheduler state, by state label
//   - ledclock_alignment_delay_seconds: delay used to reach the first second boundary
//   - ledclock_last_tick_timestamp_seconds: Unix timestamp of the last refresh
//   - ledclock_ticks_total: total refreshes pushed to the display
//   - ledclock_skipped_ticks_total: refreshes skipped, by reason (clock_source, display)
//   - ledclock_build_info: build version information
//
// The main type is TickCollector, which:
//   - Implements scheduler.Observer so the scheduler reports state, alignment and ticks
//   - Keeps the last digits and readiness for the HTTP server
//   - Provides thread-safe access via RWMutex
//
// Example usage:
//
//	tickCollector := collector.NewTickCollector(log)
//	prometheus.MustRegister(tickCollector)
//
//	s, _ := scheduler.New(clock.Real(), face, scheduler.WithObserver(tickCollector))
//	s.Start(ctx)
//
//	if tickCollector.IsReady() {
//		fmt.Println("Clock is ticking")
//	}
package collector
