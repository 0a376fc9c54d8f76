// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package clitest provides a table-driven harness for testing [cli.App]
// implementations.
package clitest

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"go.astrophena.name/gcd/cli"
)

// Case describes a single invocation of an application and its expected outcome.
type Case[A cli.App] struct {
	// Args are the command-line arguments.
	Args []string
	// Env holds environment variables visible through cli.Env.Getenv.
	Env map[string]string
	// Stdin is the standard input. An empty reader is used if nil.
	Stdin io.Reader

	// WantErr is matched against the returned error with errors.Is.
	WantErr error
	// WantErrType is matched against the returned error with errors.As; it
	// must be a non-nil value of the wanted error type.
	WantErrType error
	// WantNothingPrinted requires both stdout and stderr to be empty.
	WantNothingPrinted bool
	// WantInStdout and WantInStderr must be substrings of the respective output.
	WantInStdout string
	WantInStderr string
	// CheckFunc, if set, is called with the application after it ran.
	CheckFunc func(*testing.T, A)
}

// Run runs each case as a subtest against a fresh application returned by setup.
func Run[A cli.App](t *testing.T, setup func(*testing.T) A, cases map[string]Case[A]) {
	t.Helper()
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app := setup(t)

			var stdout, stderr bytes.Buffer
			stdin := tc.Stdin
			if stdin == nil {
				stdin = strings.NewReader("")
			}
			env := &cli.Env{
				Args:   tc.Args,
				Getenv: func(key string) string { return tc.Env[key] },
				Stdin:  stdin,
				Stdout: &stdout,
				Stderr: &stderr,
			}

			err := cli.Run(cli.WithEnv(t.Context(), env), app)
			checkErr(t, err, tc.WantErr, tc.WantErrType)

			if tc.WantNothingPrinted && (stdout.Len() > 0 || stderr.Len() > 0) {
				t.Errorf("want nothing printed, got stdout %q and stderr %q", stdout.String(), stderr.String())
			}
			if tc.WantInStdout != "" && !strings.Contains(stdout.String(), tc.WantInStdout) {
				t.Errorf("stdout %q does not contain %q", stdout.String(), tc.WantInStdout)
			}
			if tc.WantInStderr != "" && !strings.Contains(stderr.String(), tc.WantInStderr) {
				t.Errorf("stderr %q does not contain %q", stderr.String(), tc.WantInStderr)
			}
			if tc.CheckFunc != nil {
				tc.CheckFunc(t, app)
			}
		})
	}
}

func checkErr(t *testing.T, err, wantErr, wantErrType error) {
	t.Helper()
	switch {
	case wantErr != nil:
		if !errors.Is(err, wantErr) {
			t.Fatalf("want error %v, got %v", wantErr, err)
		}
	case wantErrType != nil:
		target := reflect.New(reflect.TypeOf(wantErrType))
		if !errors.As(err, target.Interface()) {
			t.Fatalf("want error of type %T, got %v", wantErrType, err)
		}
	case err != nil:
		t.Fatalf("unexpected error: %v", err)
	}
}
