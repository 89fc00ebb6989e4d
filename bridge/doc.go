// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge runs one g-cli session against an application that has
// already connected.
//
// A session is three loops joined by one channel. The [ReaderLoop] owns
// the connection and forwards every inbound message. The [SignalLoop]
// turns OS interrupts into [InterruptSignal] messages. The [ActionLoop]
// runs on the caller's goroutine, consumes both streams, writes OUTP and
// SERR text to the terminal, and settles on an [ExitDecision].
//
// Shutdown is cooperative. The action loop sets a [StopFlag] when it sees
// a terminal message; the background loops poll the flag once per
// iteration and return, closing their [Sender]. The action loop's channel
// closes only after every sender, including the sentinel the loop holds
// until Run starts, has been closed. Everything queued before that point
// is still delivered, so trailing output written just before EXIT reaches
// the terminal in order.
//
// An interrupt always wins: once [InterruptSignal] is seen the decision is
// a forced exit no matter what arrives afterwards.
//
// [Session] composes the pieces: it sends ARGS and CCWD, starts the reader
// and signal loops, and returns the action loop's decision.
// [InstallInterruptHandler] hooks SIGINT and SIGTERM once per process and
// returns the channel a session listens on.
package bridge
