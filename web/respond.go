// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"go.astrophena.name/gcd/logger"
)

// StatusErr is a sentinel error type used to represent HTTP status code errors.
type StatusErr int

// Error implements the error interface.
// It returns a lowercase representation of the HTTP status text for the wrapped code.
func (se StatusErr) Error() string { return strings.ToLower(http.StatusText(int(se))) }

const (
	// ErrBadRequest represents a bad request error (HTTP 400).
	ErrBadRequest StatusErr = http.StatusBadRequest
	// ErrForbidden represents a forbidden access error (HTTP 403).
	ErrForbidden StatusErr = http.StatusForbidden
	// ErrNotFound represents a not found error (HTTP 404).
	ErrNotFound StatusErr = http.StatusNotFound
	// ErrMethodNotAllowed represents a method not allowed error (HTTP 405).
	ErrMethodNotAllowed StatusErr = http.StatusMethodNotAllowed
	// ErrUnsupportedMediaType represents an unsupported media type error (HTTP 415).
	ErrUnsupportedMediaType StatusErr = http.StatusUnsupportedMediaType
	// ErrInternalServerError represents an internal server error (HTTP 500).
	ErrInternalServerError StatusErr = http.StatusInternalServerError
	// ErrServiceUnavailable represents a service unavailable error (HTTP 503).
	ErrServiceUnavailable StatusErr = http.StatusServiceUnavailable
)

const htmlContentType = "text/html; charset=utf-8"

type publicError struct {
	status StatusErr
	msg    string
	cause  error
}

func (e *publicError) Error() string { return e.msg }

func (e *publicError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.status}
	}
	return []error{e.status, e.cause}
}

// PublicError returns an error that [RespondError] renders by writing msg
// as the whole response body with the given status. msg is written as is, so
// it must be safe HTML.
//
// The returned error wraps both status and cause, if cause is not nil.
func PublicError(status StatusErr, msg string, cause error) error {
	return &publicError{status: status, msg: msg, cause: cause}
}

// RespondJSON marshals the provided response object as JSON and writes it to
// the [http.ResponseWriter] with the given status code.
func RespondJSON(w http.ResponseWriter, status int, response any) {
	b, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("JSON marshal error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
	w.Write([]byte("\n"))
}

// RespondError writes an error response in HTML format to w.
//
// If the error is a [StatusErr] or wraps it, it extracts the HTTP status code and
// sets the response status code accordingly. Otherwise, it sets the response
// status code to [http.StatusInternalServerError] and logs the error.
//
// Errors created by [PublicError] have their message written as the body.
// All other errors get a generic page naming only the status, so internal
// details never reach the client.
//
// You can wrap any error with [fmt.Errorf] to set a specific HTTP status code:
//
//	// This will set the status code to 404 (Not Found).
//	web.RespondError(w, r, fmt.Errorf("resource %w", web.ErrNotFound))
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	var se StatusErr
	if !errors.As(err, &se) {
		se = ErrInternalServerError
	}
	if se >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed",
			slog.String("method", r.Method),
			slog.String("url", r.URL.Path),
			slog.Any("err", err),
		)
	} else {
		logger.Debug(ctx, "request rejected",
			slog.String("method", r.Method),
			slog.String("url", r.URL.Path),
			slog.Any("err", err),
		)
	}

	var body templ.Component = errorPage(int(se))
	var pe *publicError
	if errors.As(err, &pe) {
		body = templ.Raw(pe.msg)
	}

	var buf bytes.Buffer
	if err := body.Render(ctx, &buf); err != nil {
		logger.Error(ctx, "rendering error page failed", slog.Any("err", err))
		buf.Reset()
		fmt.Fprintf(&buf, "%d: %s", int(se), http.StatusText(int(se)))
	}
	w.Header().Set("Content-Type", htmlContentType)
	w.WriteHeader(int(se))
	buf.WriteTo(w)
}
