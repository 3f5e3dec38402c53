package auth

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accesskit/pkg/logger"
	"github.com/dmitrymomot/accesskit/pkg/respond"
)

// Authenticate guards ownership-scoped routes. It reads the session cookie,
// resolves it to a service-user id, and stores the id in the request
// context. Missing, malformed, or expired sessions are rejected with 401
// before any registry operation runs.
func (s *Service) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.cfg.CookieName)
		if err != nil {
			respond.Unauthorized(w)
			return
		}

		sessionID, err := uuid.Parse(cookie.Value)
		if err != nil {
			respond.Unauthorized(w)
			return
		}

		userID, err := s.AuthenticateSession(r.Context(), sessionID)
		if err != nil {
			if errors.Is(err, ErrNotLoggedIn) {
				respond.Unauthorized(w)
				return
			}
			s.log.ErrorContext(r.Context(), "session lookup failed",
				logger.Error(err), logger.Component("auth"))
			respond.Error(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithServiceUserID(r.Context(), userID)))
	})
}
