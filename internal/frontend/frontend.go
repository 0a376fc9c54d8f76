// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package frontend serves the HTML pages of the GCD calculator.
package frontend

//go:generate go tool templ generate

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"go.astrophena.name/gcd/gcd"
	"go.astrophena.name/gcd/logger"
	"go.astrophena.name/gcd/web"
)

// ZeroInputMessage is the body of the response to a request with a zero operand.
const ZeroInputMessage = "Computing the GCD with zero is boring."

// Register registers the calculator pages on mux:
//
//   - GET / serves the form.
//   - POST /gcd computes the GCD of the submitted "n" and "m" fields.
//
// It also adds a "gcd" check to the health endpoint of mux.
func Register(mux *http.ServeMux) {
	mux.Handle("GET /{$}", templ.Handler(indexPage()))
	mux.Handle("POST /gcd", web.HandleForm(gcd.ParseRequest, compute))
	web.Health(mux).RegisterFunc("gcd", checkEngine)
}

// checkEngine runs a known computation through the engine.
func checkEngine() (status string, ok bool) {
	if d := gcd.Compute(48, 18); d != 6 {
		return fmt.Sprintf("gcd(48, 18) = %d, want 6", d), false
	}
	return "ok", true
}

func compute(r *http.Request, req gcd.Request) (templ.Component, error) {
	if err := req.Validate(); err != nil {
		if errors.Is(err, gcd.ErrZeroInput) {
			return nil, web.PublicError(web.ErrBadRequest, ZeroInputMessage, err)
		}
		return nil, err
	}

	d := gcd.Compute(req.N, req.M)
	logger.Debug(r.Context(), "computed GCD",
		slog.Uint64("n", req.N),
		slog.Uint64("m", req.M),
		slog.Uint64("gcd", d),
	)
	return resultFragment(req.N, req.M, d), nil
}
