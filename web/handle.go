// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
)

// maxFormSize limits the size of request bodies accepted by [HandleForm].
const maxFormSize = 64 << 10

// HandleForm provides a wrapper for creating HTTP handlers that accept
// urlencoded forms and respond with HTML.
//
// The handler performs the following steps:
//
//   - The request body is parsed as an urlencoded form. If that fails, a
//     400 Bad Request response is sent.
//   - parse is called with the body's form values. It must not depend on the
//     query string. If it fails, a 400 Bad Request response is sent.
//   - logic is called with the request and the parsed value.
//   - If logic returns an error, [RespondError] is used to send an
//     appropriate error response. The error can wrap a [StatusErr] to control
//     the HTTP status code, or be a [PublicError] to control the body.
//   - Otherwise the returned component is rendered with a 200 OK status.
func HandleForm[Req any](parse func(url.Values) (Req, error), logic func(r *http.Request, req Req) (templ.Component, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
		}
		if err := r.ParseForm(); err != nil {
			RespondError(w, r, fmt.Errorf("%w: failed to parse form: %v", ErrBadRequest, err))
			return
		}

		req, err := parse(r.PostForm)
		if err != nil {
			RespondError(w, r, fmt.Errorf("%w: %w", ErrBadRequest, err))
			return
		}

		c, err := logic(r, req)
		if err != nil {
			RespondError(w, r, err)
			return
		}

		var buf bytes.Buffer
		if err := c.Render(r.Context(), &buf); err != nil {
			RespondError(w, r, fmt.Errorf("rendering response: %w", err))
			return
		}
		w.Header().Set("Content-Type", htmlContentType)
		buf.WriteTo(w)
	}
}
