// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"io"
	"net"
)

// IsPeerClosed reports whether err means the peer closed its end of the
// connection in an orderly way: EOF mid-read, or a read on a connection
// this side already closed.
func IsPeerClosed(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed)
}

// IsPeerAborted reports whether err means the connection was torn down
// abruptly: reset, aborted, or a broken pipe. This is what a reader sees
// when the peer process crashes instead of closing its socket.
func IsPeerAborted(err error) bool {
	if err == nil {
		return false
	}
	return isAbortErrno(err)
}
