package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the originating component under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// ServiceUserID records the acting service-user identifier.
func ServiceUserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("service_user_id", id)
}

// ApplicationID records the tenant application identifier.
func ApplicationID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("application_id", id)
}

// SessionID records the session identifier.
func SessionID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("session_id", id)
}

// RequestID records the request correlation identifier.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}
