// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go4org/hashtriemap"
)

// HealthFunc reports the state of a single health check.
type HealthFunc func() (status string, ok bool)

// HealthHandler serves a JSON health report. All registered checks run on
// every request.
type HealthHandler struct {
	checks hashtriemap.HashTrieMap[string, HealthFunc]
}

var healthHandlers hashtriemap.HashTrieMap[*http.ServeMux, *HealthHandler]

// Health returns the [HealthHandler] serving GET /health on mux, registering
// it on first use. If mux already routes GET /health elsewhere, that route
// is left in place and the returned handler is not served.
func Health(mux *http.ServeMux) *HealthHandler {
	h, loaded := healthHandlers.LoadOrStore(mux, new(HealthHandler))
	if !loaded && !routesHealth(mux) {
		mux.Handle("GET /health", h)
	}
	return h
}

func routesHealth(mux *http.ServeMux) bool {
	_, pattern := mux.Handler(&http.Request{Method: http.MethodGet, URL: &url.URL{Path: "/health"}})
	if _, path, ok := strings.Cut(pattern, " "); ok {
		pattern = path
	}
	return pattern == "/health"
}

// RegisterFunc registers a named check, replacing any previous check with
// the same name.
func (h *HealthHandler) RegisterFunc(name string, f HealthFunc) {
	h.checks.Store(name, f)
}

type checkResult struct {
	Status string `json:"status"`
	OK     bool   `json:"ok"`
}

type healthResponse struct {
	OK     bool                   `json:"ok"`
	Checks map[string]checkResult `json:"checks,omitempty"`
}

// ServeHTTP implements the [http.Handler] interface. It responds with 503
// Service Unavailable if any check fails.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{OK: true}
	h.checks.Range(func(name string, f HealthFunc) bool {
		status, ok := f()
		if resp.Checks == nil {
			resp.Checks = make(map[string]checkResult)
		}
		resp.Checks[name] = checkResult{Status: status, OK: ok}
		resp.OK = resp.OK && ok
		return true
	})

	code := http.StatusOK
	if !resp.OK {
		code = http.StatusServiceUnavailable
	}
	RespondJSON(w, code, resp)
}
