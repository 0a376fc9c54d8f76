// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package cli provides helpers for creating simple, single-command
// command-line applications.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.astrophena.name/gcd/logger"
	"go.astrophena.name/gcd/version"
)

// Main runs app until SIGINT or SIGTERM and exits with status 1 on error.
// Call it from main.
func Main(app App) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := Run(ctx, app)
	if err == nil {
		return
	}
	if isPrintableError(err) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}

type unprintableError struct{ err error }

func (e *unprintableError) Error() string { return e.err.Error() }
func (e *unprintableError) Unwrap() error { return e.err }

func isPrintableError(err error) bool {
	if errors.Is(err, flag.ErrHelp) {
		return false
	}
	var ue *unprintableError
	return !errors.As(err, &ue)
}

// ErrExitVersion is returned by [Run] after -version printed the build info.
var ErrExitVersion = &unprintableError{errors.New("version flag exit")}

// ErrInvalidArgs is wrapped by apps that reject their positional arguments.
var ErrInvalidArgs = errors.New("invalid arguments")

// App is a command run by [Run].
type App interface {
	Run(context.Context) error
}

// HasFlags is implemented by apps that take flags.
type HasFlags interface {
	App
	Flags(*flag.FlagSet)
}

type ctxKey struct{}

// GetEnv returns the [Env] carried by ctx, or [OSEnv] if there is none.
func GetEnv(ctx context.Context) *Env {
	e, ok := ctx.Value(ctxKey{}).(*Env)
	if !ok {
		return OSEnv()
	}
	return e
}

// WithEnv returns a copy of ctx carrying e.
func WithEnv(ctx context.Context, e *Env) context.Context {
	return context.WithValue(ctx, ctxKey{}, e)
}

// Env encapsulates the application's environment, including arguments,
// standard I/O streams, and environment variables.
type Env struct {
	Args   []string
	Getenv func(string) string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// OSEnv creates an Env based on the current operating system environment.
func OSEnv() *Env {
	return &Env{
		Args:   os.Args[1:],
		Getenv: os.Getenv,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes an application. It parses flags, handles the standard -version
// and -v flags, sets up logging to the environment's stderr unless ctx
// already carries a [logger.Logger], and then runs the app.
func Run(ctx context.Context, app App) error {
	env := GetEnv(ctx)

	flags := flag.NewFlagSet(version.CmdName(), flag.ContinueOnError)
	if fa, ok := app.(HasFlags); ok {
		fa.Flags(flags)
	}

	var showVersion, verbose bool
	if flags.Lookup("version") == nil {
		flags.BoolVar(&showVersion, "version", false, "Show version.")
	}
	if flags.Lookup("v") == nil {
		flags.BoolVar(&verbose, "v", false, "Enable debug logging.")
	}

	flags.Usage = usage(flags, env.Stderr)
	flags.SetOutput(env.Stderr)
	if err := flags.Parse(env.Args); err != nil {
		// Already printed to stderr by flag package, so mark as an unprintable error.
		return &unprintableError{err}
	}

	if showVersion {
		fmt.Fprint(env.Stderr, version.Version())
		return ErrExitVersion
	}

	if logger.IsDefault(logger.Get(ctx)) {
		l := logger.New(nil)
		l.Attach(logger.NewConsoleHandler(env.Stderr, l.Level))
		ctx = logger.Put(ctx, l)
	}
	if verbose {
		logger.Get(ctx).Level.Set(slog.LevelDebug)
	}

	// Copy the environment, so Args of the caller's Env are left intact.
	runEnv := *env
	runEnv.Args = flags.Args()

	return app.Run(WithEnv(ctx, &runEnv))
}

func usage(flags *flag.FlagSet, stderr io.Writer) func() {
	return func() {
		if docSrc != nil {
			fmt.Fprintf(stderr, "%s\n", parseDocComment(docSrc))
		}
		fmt.Fprint(stderr, "Available flags:\n\n")
		flags.PrintDefaults()
	}
}

var docSrc []byte

// SetDocComment sets the main documentation for the application, which is
// displayed when a user passes the -help flag. It is intended to be used with
// Go's //go:embed directive.
//
// Example:
//
//	//go:embed doc.go
//	var doc []byte
//
//	func init() { cli.SetDocComment(doc) }
func SetDocComment(src []byte) { docSrc = src }

// parseDocComment returns the contents of the first /* */ block comment in src.
func parseDocComment(src []byte) string {
	s := bufio.NewScanner(bytes.NewReader(src))
	var (
		doc       string
		inComment bool
	)
	for s.Scan() {
		line := s.Text()
		if line == "/*" {
			inComment = true
			continue
		}
		if line == "*/" {
			break
		}
		if inComment {
			doc += line + "\n"
		}
	}
	return doc
}
