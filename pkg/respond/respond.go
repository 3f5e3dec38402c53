// Package respond renders JSON responses and maps service failures to the
// wire format: known failures become {"error": message} with a specific
// status, everything else is logged and returned as an opaque 500.
package respond

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/accesskit/pkg/logger"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Error writes a {"error": message} body with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// BadRequest renders a binding or validation failure. The error text is
// safe to expose: it describes the request shape, not internals.
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, err.Error())
}

// Unauthorized renders the uniform 401 body.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// InternalError logs the cause server-side and returns a generic message,
// never leaking internal detail to the caller.
func InternalError(ctx context.Context, log *slog.Logger, w http.ResponseWriter, err error) {
	log.ErrorContext(ctx, "internal server error", logger.Error(err))
	Error(w, http.StatusInternalServerError, "Internal server error")
}
