// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

//go:build linux

package systemd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"

	"go.astrophena.name/gcd/cli"
)

// listenFdsStart is SD_LISTEN_FDS_START.
const listenFdsStart = 3

func socket(ctx context.Context, name string) (net.Listener, error) {
	env := cli.GetEnv(ctx)

	pid, err := envInt(env, "LISTEN_PID")
	if err != nil {
		return nil, err
	}
	if pid != os.Getpid() {
		return nil, fmt.Errorf("systemd: LISTEN_PID (%d) does not match current PID (%d)", pid, os.Getpid())
	}
	n, err := envInt(env, "LISTEN_FDS")
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, errors.New("systemd: no file descriptors received")
	}

	names := strings.Split(env.Getenv("LISTEN_FDNAMES"), ":")
	if len(names) != n {
		return nil, fmt.Errorf("systemd: LISTEN_FDNAMES has %d names, but LISTEN_FDS is %d", len(names), n)
	}
	i := slices.Index(names, name)
	if i < 0 {
		return nil, fmt.Errorf("systemd: socket name %q not found in LISTEN_FDNAMES", name)
	}

	fd := listenFdsStart + i
	f := os.NewFile(uintptr(fd), name)
	if f == nil {
		return nil, fmt.Errorf("systemd: invalid file descriptor %d", fd)
	}
	defer f.Close() // net.FileListener dups the descriptor
	return net.FileListener(f)
}

func envInt(env *cli.Env, key string) (int, error) {
	s := env.Getenv(key)
	if s == "" {
		return 0, fmt.Errorf("systemd: %s not set, not running under systemd socket activation?", key)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("systemd: invalid %s: %w", key, err)
	}
	return n, nil
}
