// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides connection and HTTP helpers shared by the
// transport and service-locator packages.
//
// Connection termination helpers (IsPeerClosed, IsPeerAborted) classify
// the errors a reader sees when the application goes away, so the user
// can be told whether it most likely exited cleanly or crashed.
//
// ErrorBody bounds the read of an HTTP error response so a misbehaving
// discovery service cannot make a diagnostic message unbounded.
package netutil

import "io"

// MaxErrorBodySize bounds ErrorBody reads. Service locator responses are
// a few hundred bytes; anything past this is noise.
const MaxErrorBodySize int64 = 64 << 10

// ErrorBody reads an HTTP error response body and returns it as a string
// for diagnostic messages. Read errors are ignored; a partial body is
// still useful in an error message.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxErrorBodySize))
	return string(data)
}
