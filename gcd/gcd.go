// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package gcd computes the greatest common divisor of two positive integers.
//
// The package has no knowledge of HTTP: callers parse their input with
// [ParseRequest] (or construct a [Request] directly), check it with
// [Validate] and only then call [Compute].
package gcd

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// ErrZeroInput is returned by [Validate] when either operand is zero.
var ErrZeroInput = errors.New("gcd: zero input")

// ErrMissingField is wrapped by [FieldError] when a form field is absent or empty.
var ErrMissingField = errors.New("missing")

// Validate reports whether n and m are acceptable operands for [Compute].
func Validate(n, m uint64) error {
	if n == 0 || m == 0 {
		return ErrZeroInput
	}
	return nil
}

// Compute returns the greatest common divisor of n and m using the Euclidean
// algorithm. The result does not depend on the order of the arguments.
//
// Both n and m must be non-zero. Compute panics otherwise; use [Validate]
// first.
func Compute(n, m uint64) uint64 {
	if n == 0 || m == 0 {
		panic(fmt.Sprintf("gcd.Compute called with zero operand (n=%d, m=%d)", n, m))
	}
	for m != 0 {
		if m < n {
			n, m = m, n
		}
		m %= n
	}
	return n
}

// Request holds the two operands of a single computation.
type Request struct {
	N uint64
	M uint64
}

// Validate calls [Validate] with the request operands.
func (r Request) Validate() error { return Validate(r.N, r.M) }

// FieldError describes a form field that could not be parsed.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("malformed field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ParseRequest extracts the "n" and "m" fields from form and parses them as
// base-10 unsigned 64-bit integers. It does not reject zero values.
func ParseRequest(form url.Values) (Request, error) {
	n, err := parseField(form, "n")
	if err != nil {
		return Request{}, err
	}
	m, err := parseField(form, "m")
	if err != nil {
		return Request{}, err
	}
	return Request{N: n, M: m}, nil
}

func parseField(form url.Values, name string) (uint64, error) {
	v := form.Get(name)
	if v == "" {
		return 0, &FieldError{Field: name, Err: ErrMissingField}
	}
	x, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		// Drop the *strconv.NumError wrapper, it repeats the input.
		var ne *strconv.NumError
		if errors.As(err, &ne) {
			err = ne.Err
		}
		return 0, &FieldError{Field: name, Err: err}
	}
	return x, nil
}
