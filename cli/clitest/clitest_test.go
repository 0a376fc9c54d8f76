// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package clitest_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"go.astrophena.name/gcd/cli"
	"go.astrophena.name/gcd/cli/clitest"
)

var errTest = errors.New("test error")

type customError struct{ msg string }

func (e *customError) Error() string { return e.msg }

// echoApp acts on its first argument and counts its runs.
type echoApp struct{ runs int }

func (a *echoApp) Run(ctx context.Context) error {
	a.runs++
	env := cli.GetEnv(ctx)
	if len(env.Args) == 0 {
		return nil
	}
	switch env.Args[0] {
	case "wrapped":
		return fmt.Errorf("wrapped: %w", errTest)
	case "custom":
		return &customError{msg: "custom error"}
	case "stdout":
		fmt.Fprint(env.Stdout, "to stdout")
	case "stderr":
		fmt.Fprint(env.Stderr, "to stderr")
	case "stdin":
		b, _ := io.ReadAll(env.Stdin)
		fmt.Fprint(env.Stdout, string(b))
	case "env":
		fmt.Fprint(env.Stdout, env.Getenv("GCD_ADDR"))
	}
	return nil
}

func TestRun(t *testing.T) {
	clitest.Run(t, func(t *testing.T) *echoApp { return new(echoApp) }, map[string]clitest.Case[*echoApp]{
		"nothing printed": {
			WantNothingPrinted: true,
		},
		"stdout":    {Args: []string{"stdout"}, WantInStdout: "to stdout"},
		"stderr":    {Args: []string{"stderr"}, WantInStderr: "to stderr"},
		"stdin":     {Args: []string{"stdin"}, Stdin: strings.NewReader("piped"), WantInStdout: "piped"},
		"env":       {Args: []string{"env"}, Env: map[string]string{"GCD_ADDR": ":8080"}, WantInStdout: ":8080"},
		"errors.Is": {Args: []string{"wrapped"}, WantErr: errTest},
		"errors.As": {Args: []string{"custom"}, WantErrType: &customError{}},
		"CheckFunc": {
			CheckFunc: func(t *testing.T, a *echoApp) {
				if a.runs != 1 {
					t.Errorf("want app to run once, ran %d times", a.runs)
				}
			},
		},
	})
}
