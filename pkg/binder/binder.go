// Package binder decodes HTTP request payloads into typed values with
// strict JSON semantics: unknown fields, trailing data, and non-JSON
// content types are rejected before the request reaches service logic.
package binder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

var (
	// ErrMissingContentType is returned when the request has no Content-Type.
	ErrMissingContentType = errors.New("binder: missing content type")
	// ErrUnsupportedMediaType is returned for non-JSON request bodies.
	ErrUnsupportedMediaType = errors.New("binder: unsupported media type")
	// ErrInvalidJSON is returned for malformed or mismatched JSON.
	ErrInvalidJSON = errors.New("binder: invalid json")
)

// JSON decodes the request body into v. Unknown fields and data after the
// first JSON value are errors, so malformed clients fail loudly instead of
// silently losing fields.
func JSON(r *http.Request, v any) error {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return fmt.Errorf("%w: expected application/json", ErrMissingContentType)
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("%w: got %q, expected application/json", ErrUnsupportedMediaType, contentType)
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrInvalidJSON)
		}
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON value", ErrInvalidJSON)
	}

	return nil
}
