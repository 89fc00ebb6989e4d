// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"errors"
	"log/slog"
	"time"

	"github.com/bureau-foundation/gcli/lib/clock"
	"github.com/bureau-foundation/gcli/protocol"
	"github.com/bureau-foundation/gcli/transport"
)

// DefaultReadPause is how long the reader sleeps when no complete message
// is available.
const DefaultReadPause = 10 * time.Millisecond

// Receiver is the read half of a connection.
type Receiver interface {
	Receive() (protocol.InboundMessage, error)
}

// ReaderLoop forwards messages from the connection to the action loop.
type ReaderLoop struct {
	Connection Receiver
	Sender     *Sender
	Stop       *StopFlag

	// Clock drives the pause after an empty read. Nil means clock.Real().
	Clock clock.Clock

	// Pause is the sleep after an empty read. Zero means DefaultReadPause.
	Pause time.Duration

	// Logger receives debug output. Nil means slog.Default().
	Logger *slog.Logger
}

// Run reads until the application sends EXIT or the stop flag is raised,
// then closes the Sender.
func (r *ReaderLoop) Run() {
	defer r.Sender.Close()

	clk := r.Clock
	if clk == nil {
		clk = clock.Real()
	}
	pause := r.Pause
	if pause <= 0 {
		pause = DefaultReadPause
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for {
		message, err := r.Connection.Receive()
		switch {
		case err == nil:
			r.Sender.Send(FromApplication{Message: message})
			if _, ok := message.(protocol.Exit); ok {
				logger.Debug("reader stopping after exit message")
				return
			}
		case errors.Is(err, transport.ErrWouldBlock):
			clk.Sleep(pause)
		default:
			r.Sender.Send(TransportError{Err: err})
			// A failed connection fails again immediately.
			clk.Sleep(pause)
		}

		if r.Stop.IsSet() {
			logger.Debug("reader stopping on stop flag")
			return
		}
	}
}
