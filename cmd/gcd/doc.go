// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Gcd serves a web page that computes the greatest common divisor of two
positive integers.

# Usage

	$ gcd [flags]

GET / returns a form with the fields n and m. Submitting it POSTs to /gcd,
which responds with the result, or with 400 Bad Request when either number is
zero or not a valid unsigned 64-bit integer. GET /health reports whether the
server is up.

# Configuration

The listen address is taken from the -addr flag, then from the GCD_ADDR
environment variable, and defaults to localhost:3000.

When started by systemd with socket activation, pass -systemd-socket with the
socket's FileDescriptorName= to serve on it instead. The server reports
readiness through sd_notify and pings the watchdog if WatchdogSec= is set.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/gcd/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
