// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import "errors"

var (
	// ErrWouldBlock means no complete message is available yet. It is
	// not a failure: call Receive again later.
	ErrWouldBlock = errors.New("no complete message available yet")

	// ErrConnectTimeout means the application did not connect before
	// the accept timeout elapsed.
	ErrConnectTimeout = errors.New("timed out waiting for the application to connect")

	// ErrPeerClosed means the application closed the connection in the
	// middle of the stream.
	ErrPeerClosed = errors.New("unexpected EOF, the application has probably closed the connection")

	// ErrPeerAborted means the connection was reset or aborted, which
	// is what a crashed application looks like from this side.
	ErrPeerAborted = errors.New("connection aborted, the application has probably crashed or failed to close the connection properly")

	// ErrRead wraps any other I/O failure while reading messages.
	ErrRead = errors.New("I/O error reading messages from the application")

	// ErrWrite wraps any I/O failure while sending messages.
	ErrWrite = errors.New("I/O error writing messages to the application")

	// ErrAccept wraps I/O failures while waiting for the application to
	// connect.
	ErrAccept = errors.New("I/O error while listening for the application to connect")
)
