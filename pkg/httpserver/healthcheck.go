package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// HealthCheckHandler returns a handler that reports {"status":"ok"} when
// every dependency probe succeeds, and a 500 with {"status":"unavailable"}
// otherwise. With no probes it acts as a plain liveness endpoint.
func HealthCheckHandler(log *slog.Logger, probes ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		for _, probe := range probes {
			if err := probe(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "health check failed", slog.Any("error", err))
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
