package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// WithServiceUserID stores the authenticated service-user id in ctx.
func WithServiceUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// ServiceUserIDFromContext returns the authenticated service-user id, if
// the request passed the Authenticate middleware.
func ServiceUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(contextKey{}).(uuid.UUID)
	return id, ok
}
