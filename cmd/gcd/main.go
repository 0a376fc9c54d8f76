// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"

	"go.astrophena.name/gcd/cli"
	"go.astrophena.name/gcd/internal/frontend"
	"go.astrophena.name/gcd/systemd"
	"go.astrophena.name/gcd/web"
)

const defaultAddr = "localhost:3000"

func main() { cli.Main(new(app)) }

type app struct {
	addr   string
	socket string

	// ready is called once the server accepts requests; used in tests.
	ready func(*web.Server)
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.addr, "addr", "", "Listen on `host:port` (default $GCD_ADDR or "+defaultAddr+").")
	fs.StringVar(&a.socket, "systemd-socket", "", "Serve on the systemd socket-activated listener with this `name`.")
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	if len(env.Args) > 0 {
		return fmt.Errorf("%w: unexpected arguments %q", cli.ErrInvalidArgs, env.Args)
	}

	mux := http.NewServeMux()
	frontend.Register(mux)

	s := &web.Server{
		Mux:  mux,
		Addr: a.listenAddr(env),
	}
	if a.socket != "" {
		l, err := systemd.Socket(ctx, a.socket)
		if err != nil {
			return err
		}
		s.Listener = l
	}
	s.Ready = func() {
		systemd.Notify(ctx, systemd.Ready)
		systemd.Watchdog(ctx)
		if a.ready != nil {
			a.ready(s)
		}
	}

	defer systemd.Notify(ctx, systemd.Stopping)
	return s.ListenAndServe(ctx)
}

func (a *app) listenAddr(env *cli.Env) string {
	if a.addr != "" {
		return a.addr
	}
	if addr := env.Getenv("GCD_ADDR"); addr != "" {
		return addr
	}
	return defaultAddr
}
