// Package scheduler drives the clock display from the wall clock.
//
// A Scheduler moves through four states:
//
//	Unstarted -> Aligning -> Running -> Stopped
//
// Start pushes the current time at once and arms a one-shot timer for the
// remainder of the current second (1000 - epochMillis%1000 ms). When that
// timer fires the display is refreshed and a ticker with a one second period
// takes over, so ticks land on wall-clock second boundaries instead of
// drifting with the start time.
// Every tick reads the wall clock afresh; a dropped or failed tick is simply
// corrected by the next one.
//
// Stop (or cancelling the context passed to Start) may be called from any
// state and any number of times.
//
// Example usage:
//
//	face := clockface.NewFace(on, off, renderer)
//	s, err := scheduler.New(clock.Real(), face, scheduler.WithLogger(log))
//	if err != nil {
//		log.Error("Failed to create scheduler", "error", err)
//		os.Exit(1)
//	}
//	if err := s.Start(ctx); err != nil {
//		...
//	}
//	defer s.Stop()
package scheduler
