// Package httpserver runs an http.Handler with configured timeouts and a
// graceful shutdown triggered by context cancellation, SIGINT or SIGTERM.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
//
// LivenessHandler and ReadinessHandler serve the /health/live and
// /health/ready probes. Readiness runs every named Check and reports the
// result of each one as JSON.
package httpserver
