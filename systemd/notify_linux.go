// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

//go:build linux

package systemd

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"

	"go.astrophena.name/gcd/cli"
	"go.astrophena.name/gcd/logger"
)

// Notify sends state to the service manager. It does nothing when
// NOTIFY_SOCKET is not set. Failures are logged, not returned.
func Notify(ctx context.Context, state State) {
	name := cli.GetEnv(ctx).Getenv("NOTIFY_SOCKET")
	if name == "" {
		return
	}
	conn, err := net.DialUnix("unixgram", nil, &net.UnixAddr{Net: "unixgram", Name: name})
	if err != nil {
		logger.Error(ctx, "sd_notify failed", slog.String("state", string(state)), slog.Any("err", err))
		return
	}
	defer conn.Close()
	if _, err := conn.Write([]byte(state)); err != nil {
		logger.Error(ctx, "sd_notify failed", slog.String("state", string(state)), slog.Any("err", err))
	}
}

// Watchdog pings the service manager at half the interval from WATCHDOG_USEC
// until ctx is canceled. It returns immediately and does nothing if the
// watchdog is not enabled for the service.
func Watchdog(ctx context.Context) {
	usec, err := strconv.Atoi(cli.GetEnv(ctx).Getenv("WATCHDOG_USEC"))
	if err != nil || usec <= 0 {
		return
	}
	interval := time.Duration(usec) * time.Microsecond / 2
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				Notify(ctx, watchdog)
			case <-ctx.Done():
				return
			}
		}
	}()
}
