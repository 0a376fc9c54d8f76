// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"time"

	"go.astrophena.name/gcd/logger"
	"go.astrophena.name/gcd/syncx"
)

// Server is used to configure the HTTP server started by
// [Server.ListenAndServe].
//
// All fields of Server can't be modified after [Server.ListenAndServe]
// or [Server.ServeHTTP] is called for a first time.
type Server struct {
	// Mux is a http.ServeMux to serve. GET /health is added to it unless
	// Mux already has a handler for that path.
	Mux *http.ServeMux
	// Middleware specifies an optional slice of HTTP middleware that's applied to
	// each request, after the default middleware.
	Middleware []Middleware
	// Addr is a network address to listen on (in the form of "host:port").
	// It is ignored if Listener is set.
	Addr string
	// Listener is an optional listener to serve on, for example one obtained
	// through systemd socket activation. The server closes it on shutdown.
	Listener net.Listener
	// Ready specifies an optional function to be called when the server is ready
	// to serve requests.
	Ready func()
	// CSP overrides the default Content-Security-Policy if set.
	CSP *CSP

	handler syncx.Lazy[http.Handler]
}

// ServeHTTP implements the [http.Handler] interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.Get(s.initHandler).ServeHTTP(w, r)
}

var (
	errNoAddr = errors.New("server.Addr is empty")
	errListen = errors.New("failed to listen")
)

// Middleware wraps an [http.Handler].
type Middleware func(http.Handler) http.Handler

func (s *Server) initHandler() http.Handler {
	if s.Mux == nil {
		panic("Server.Mux is nil")
	}

	Health(s.Mux)

	csrf := http.NewCrossOriginProtection()
	csrf.SetDenyHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondError(w, r, fmt.Errorf("%w: cross-origin request rejected", ErrForbidden))
	}))

	csp := defaultCSP
	if s.CSP != nil {
		csp = *s.CSP
	}

	var h http.Handler = csrf.Handler(s.Mux)
	mws := append([]Middleware{logRequests, setHeaders(csp.String())}, s.Middleware...)
	for _, mw := range slices.Backward(mws) {
		h = mw(h)
	}
	return h
}

func setHeaders(csp string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Referrer-Policy", "same-origin")
			w.Header().Set("Content-Security-Policy", csp)
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rec *statusRecorder) WriteHeader(code int) {
	if !rec.wroteHeader {
		rec.status = code
		rec.wroteHeader = true
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	rec.wroteHeader = true
	return rec.ResponseWriter.Write(b)
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter { return rec.ResponseWriter }

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info(r.Context(), "handled request",
			slog.String("method", r.Method),
			slog.String("url", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// ListenAndServe starts the HTTP server that can be stopped by canceling ctx.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l := s.Listener
	if l == nil {
		if s.Addr == "" {
			return errNoAddr
		}
		var err error
		l, err = net.Listen("tcp", s.Addr)
		if err != nil {
			return fmt.Errorf("%w: %v", errListen, err)
		}
	}

	logger.Info(ctx, "listening for HTTP requests", slog.String("addr", "http://"+l.Addr().String()))

	httpSrv := &http.Server{
		ErrorLog:          log.New(logger.Printf(ctx, slog.LevelWarn), "", 0),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			// Keep the logger and environment, but not the cancellation.
			return context.WithoutCancel(ctx)
		},
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if s.Ready != nil {
		s.Ready()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info(ctx, "HTTP server gracefully shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()

		return httpSrv.Shutdown(shutdownCtx)
	}
}
