// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.astrophena.name/gcd/logger"
	"go.astrophena.name/gcd/testutil"
)

func TestServerConfig(t *testing.T) {
	cases := map[string]struct {
		s       *Server
		wantErr error
	}{
		"no Addr": {
			s: &Server{
				Addr: "",
				Mux:  http.NewServeMux(),
			},
			wantErr: errNoAddr,
		},
		"invalid port": {
			s: &Server{
				Addr: ":100000",
				Mux:  http.NewServeMux(),
			},
			wantErr: errListen,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.s.ListenAndServe(context.Background())
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func newTestLogger(buf *bytes.Buffer) *logger.Logger {
	l := logger.New(nil)
	l.Attach(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: l.Level}))
	return l
}

func TestServerListenAndServe(t *testing.T) {
	// Find a free port for us.
	port, err := getFreePort()
	if err != nil {
		t.Fatalf("Failed to find a free port: %v", err)
	}
	addr := fmt.Sprintf("localhost:%d", port)

	var logBuf bytes.Buffer
	ctx, cancel := context.WithCancel(logger.Put(context.Background(), newTestLogger(&logBuf)))
	defer cancel()

	ready := make(chan struct{})
	s := &Server{
		Addr:  addr,
		Mux:   http.NewServeMux(),
		Ready: func() { close(ready) },
	}
	s.Mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "index")
	})

	var wg sync.WaitGroup
	errCh := make(chan error, 1)
	wg.Go(func() {
		if err := s.ListenAndServe(ctx); err != nil {
			errCh <- err
		}
	})

	// Wait until the server is ready.
	select {
	case err := <-errCh:
		t.Fatalf("Test server crashed during startup or runtime: %v", err)
	case <-ready:
	}

	urls := []struct {
		url        string
		wantStatus int
	}{
		{url: "/", wantStatus: http.StatusOK},
		{url: "/health", wantStatus: http.StatusOK},
		{url: "/nonexistent", wantStatus: http.StatusNotFound},
	}

	for _, u := range urls {
		res, err := http.Get("http://" + addr + u.url)
		if err != nil {
			t.Fatal(err)
		}
		res.Body.Close()
		if res.StatusCode != u.wantStatus {
			t.Fatalf("GET %s: want status code %d, got %d", u.url, u.wantStatus, res.StatusCode)
		}
		testutil.AssertEqual(t, res.Header.Get("X-Content-Type-Options"), "nosniff")
		testutil.AssertEqual(t, res.Header.Get("Referrer-Policy"), "same-origin")
		testutil.AssertEqual(t, res.Header.Get("Content-Security-Policy"), defaultCSP.String())
	}

	// Try to gracefully shutdown the server.
	cancel()
	wg.Wait()
	select {
	case err := <-errCh:
		t.Fatalf("Test server crashed during shutdown: %v", err)
	default:
	}

	logOutput := logBuf.String()
	for _, want := range []string{
		`"msg":"listening for HTTP requests"`,
		`"msg":"handled request"`,
		`"url":"/health"`,
		`"status":200`,
		`"status":404`,
		`"msg":"HTTP server gracefully shutting down"`,
	} {
		if !strings.Contains(logOutput, want) {
			t.Errorf("want %s in logs, got:\n%s", want, logOutput)
		}
	}
}

func TestServerListener(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	s := &Server{
		Mux:      http.NewServeMux(),
		Listener: l,
		Ready:    func() { close(ready) },
	}

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	<-ready

	res, err := http.Get("http://" + l.Addr().String() + "/health")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, res.StatusCode, http.StatusOK)
	testutil.AssertEqual(t, testutil.ReadBody(t, res), "{\n  \"ok\": true\n}\n")

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("ListenAndServe: %v", err)
	}
}

func TestServerCSP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "page")
	})

	custom := CSP{DefaultSrc: []string{CSPNone}}
	s := &Server{Mux: mux, CSP: &custom}

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/page", nil))
	testutil.AssertEqual(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
}

func TestServerMiddleware(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	s := &Server{
		Mux:        http.NewServeMux(),
		Middleware: []Middleware{mw("first"), mw("second")},
	}
	s.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	testutil.AssertEqual(t, order, []string{"first", "second"})
}

func TestServerCrossOriginProtection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /submit", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "accepted")
	})
	s := &Server{Mux: mux}

	cases := map[string]struct {
		secFetchSite string
		wantStatus   int
	}{
		"same origin":  {secFetchSite: "same-origin", wantStatus: http.StatusOK},
		"no header":    {wantStatus: http.StatusOK},
		"cross origin": {secFetchSite: "cross-site", wantStatus: http.StatusForbidden},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader("x=1"))
			if tc.secFetchSite != "" {
				r.Header.Set("Sec-Fetch-Site", tc.secFetchSite)
			}
			w := httptest.NewRecorder()
			s.ServeHTTP(w, r)
			testutil.AssertEqual(t, w.Code, tc.wantStatus)
		})
	}
}

// getFreePort asks the kernel for a free open port that is ready to use.
// Copied from
// https://github.com/phayes/freeport/blob/74d24b5ae9f58fbe4057614465b11352f71cdbea/freeport.go.
func getFreePort() (port int, err error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
