package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/nettap/internal/domain"
)

const internalMessage = "An unexpected error occurred"

// Meta describes a paginated listing.
type Meta struct {
	Page  int `json:"page,omitempty" doc:"Current page (1-based)"`
	Limit int `json:"limit,omitempty" doc:"Page size"`
	Total int `json:"total" doc:"Total number of items"`
}

// Envelope wraps every successful response.
type Envelope[T any] struct {
	Success bool  `json:"success"`
	Data    T     `json:"data"`
	Meta    *Meta `json:"meta,omitempty"`
}

// Response is a huma output carrying an enveloped body.
type Response[T any] struct {
	Body Envelope[T]
}

func respond[T any](data T) *Response[T] {
	return &Response[T]{Body: Envelope[T]{Success: true, Data: data}}
}

func respondPage[T any](data T, meta Meta) *Response[T] {
	return &Response[T]{Body: Envelope[T]{Success: true, Data: data, Meta: &meta}}
}

// ErrorBody is the error half of the envelope.
type ErrorBody struct {
	Message    string         `json:"message"`
	Code       string         `json:"code"`
	StatusCode int            `json:"statusCode"`
	Details    map[string]any `json:"details,omitempty"`
}

// ErrorEnvelope is the body of every failed response.
type ErrorEnvelope struct {
	Success bool      `json:"success"`
	Err     ErrorBody `json:"error"`
}

func (e *ErrorEnvelope) Error() string  { return e.Err.Message }
func (e *ErrorEnvelope) GetStatus() int { return e.Err.StatusCode }

var installOnce sync.Once

// installErrorModel routes huma's own errors (bad JSON, schema violations,
// unknown routes) through the envelope. huma.NewError is package global.
func installErrorModel() {
	installOnce.Do(func() {
		huma.NewError = newEnvelopeError
	})
}

func newEnvelopeError(status int, msg string, errs ...error) huma.StatusError {
	if status >= http.StatusInternalServerError {
		return envelopeError(status, internalMessage, nil)
	}
	fields := make(map[string]string)
	for _, err := range errs {
		if err == nil {
			continue
		}
		location, message := "request", err.Error()
		var detailer huma.ErrorDetailer
		if errors.As(err, &detailer) {
			d := detailer.ErrorDetail()
			message = d.Message
			if d.Location != "" {
				location = d.Location
			}
		}
		if prev, ok := fields[location]; ok {
			message = prev + "; " + message
		}
		fields[location] = message
	}
	if len(fields) == 0 {
		return envelopeError(status, msg, nil)
	}
	// Same shape as service validation failures: details.fields maps a
	// location to its message.
	return envelopeError(status, msg, map[string]any{"fields": fields})
}

func envelopeError(status int, msg string, details map[string]any) *ErrorEnvelope {
	return &ErrorEnvelope{Err: ErrorBody{Message: msg, Code: errorCode(status), StatusCode: status, Details: details}}
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "VALIDATION_ERROR"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusTooManyRequests:
		return "RATE_LIMIT_EXCEEDED"
	}
	if status >= http.StatusInternalServerError {
		return "INTERNAL_SERVER_ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

var sentinels = []struct {
	err    error
	status int
}{
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrConflict, http.StatusConflict},
}

// toAPIError translates domain errors to enveloped HTTP errors. Anything
// unclassified is logged and reported as a generic 500.
func toAPIError(ctx context.Context, err error) error {
	for _, s := range sentinels {
		if !errors.Is(err, s.err) {
			continue
		}
		var details map[string]any
		var detailer interface{ ErrorDetails() map[string]any }
		if errors.As(err, &detailer) {
			if d := detailer.ErrorDetails(); len(d) > 0 {
				details = d
			}
		}
		return envelopeError(s.status, publicMessage(err), details)
	}

	slog.ErrorContext(ctx, "request failed", "error", err)
	return envelopeError(http.StatusInternalServerError, internalMessage, nil)
}

// publicMessage strips adapter context, returning the message of the typed
// error that wraps the category sentinel.
func publicMessage(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		next := errors.Unwrap(e)
		for _, s := range sentinels {
			if next == s.err || e == s.err {
				return e.Error()
			}
		}
	}
	return err.Error()
}
