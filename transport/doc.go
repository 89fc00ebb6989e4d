// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport carries framed messages between g-cli and the
// application it launched over a single loopback TCP connection.
//
// [Bind] opens a [Listener] on an ephemeral port of 127.0.0.1. The port
// number is handed to the application on its command line, and
// [Listener.Accept] waits up to a caller-supplied timeout for the
// application to dial back. The accepted [Connection] sends outbound
// messages (ARGS, CCWD) and receives inbound ones (OUTP, SERR, EXIT)
// using the wire format in the protocol package.
//
// Reads never block for longer than a short probe. When a complete frame
// has not arrived yet, [Connection.Receive] returns [ErrWouldBlock] and
// keeps whatever partial bytes it has already read, so the next call
// resumes where the last one stopped. This lets the reader loop check its
// stop flag between attempts without losing stream alignment.
//
// Failures are classified into sentinel errors the caller can match with
// errors.Is: [ErrConnectTimeout], [ErrPeerClosed], [ErrPeerAborted],
// [ErrRead], [ErrWrite], and [ErrAccept]. Malformed frames surface the
// protocol package's typed errors unchanged.
package transport
