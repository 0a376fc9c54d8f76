// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package systemd implements the parts of systemd's service protocol the GCD
// server uses: sd_notify readiness and watchdog messages, and socket activation.
//
// Everything is a no-op (or an error, for [Socket]) outside systemd or on
// platforms other than Linux.
package systemd

import (
	"context"
	"net"
)

// State is an sd_notify assignment.
// See https://www.freedesktop.org/software/systemd/man/latest/sd_notify.html#Well-known%20assignments.
type State string

const (
	// Ready tells the service manager that service startup is finished.
	Ready State = "READY=1"
	// Stopping tells the service manager that the service is stopping.
	Stopping State = "STOPPING=1"

	watchdog State = "WATCHDOG=1"
)

// Status returns a State carrying a free-form status line.
func Status(status string) State { return State("STATUS=" + status) }

// Socket returns the socket-activated listener named name (see
// FileDescriptorName= in systemd.socket(5)).
func Socket(ctx context.Context, name string) (net.Listener, error) {
	return socket(ctx, name)
}
