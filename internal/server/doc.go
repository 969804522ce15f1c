// Package server serves the LED clock page, its live frame stream and the
// operational endpoints.
//
// Available endpoints:
//   - /        : LED clock page drawn with the configured on/off colors
//   - /digits  : JSON snapshot of the digits currently shown
//   - /ws      : websocket stream of frames, one per tick
//   - /metrics : Prometheus metrics endpoint
//   - /health  : Liveness probe (always returns 200)
//   - /ready   : Readiness probe (200 once the display has been refreshed)
//
// The server is configured with these timeouts:
//   - Read timeout: 15 seconds
//   - Write timeout: 15 seconds
//   - Idle timeout: 60 seconds
//
// Example usage:
//
//	srv, err := server.NewServer(cfg, tickCollector, face, hub, registry, log)
//	if err != nil {
//		return err
//	}
//
//	serverErrors := make(chan error, 1)
//	go func() {
//		serverErrors <- srv.Start()
//	}()
//
//	// on shutdown
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	_ = srv.Shutdown(ctx)
package server
