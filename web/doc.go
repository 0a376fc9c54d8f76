// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package web provides the HTTP plumbing of the GCD service.

# Key types and functions

  - [web.Server]: an HTTP server with default security headers, request
    logging, a health endpoint and graceful shutdown.
  - [web.HandleForm]: a generic handler that parses an urlencoded form,
    runs business logic and renders the resulting [templ.Component].
  - [web.RespondError] and [web.PublicError]: HTML error responses.
  - [web.Health]: a health check handler.

# Usage

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", templ.Handler(page))

	s := &web.Server{
		Mux:  mux,
		Addr: "localhost:3000",
	}

	if err := s.ListenAndServe(ctx); err != nil {
		return err
	}
*/
package web

//go:generate go tool templ generate
