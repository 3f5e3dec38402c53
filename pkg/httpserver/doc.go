// Package httpserver wraps net/http.Server with env-driven configuration,
// graceful shutdown on context cancellation or SIGINT/SIGTERM, and a
// health endpoint that runs dependency probes.
package httpserver
