package auth

import "time"

type Config struct {
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"72h"`             // SessionTTL is the server-assigned session lifetime.
	CookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"sessionId"` // CookieName carries the opaque session identifier.
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"true"`  // CookieSecure marks the cookie Secure; disable for local HTTP only.
}
