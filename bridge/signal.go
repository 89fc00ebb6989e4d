// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/bureau-foundation/gcli/lib/clock"
)

// DefaultSignalWait bounds each wait for an interrupt before the signal
// loop checks the stop flag.
const DefaultSignalWait = 100 * time.Millisecond

// ErrInterruptHandlerInstalled is returned by a second call to
// InstallInterruptHandler.
var ErrInterruptHandlerInstalled = errors.New("interrupt handler is already installed for this process")

var interruptHandlerInstalled atomic.Bool

// InstallInterruptHandler routes SIGINT and SIGTERM (Ctrl+C and
// Ctrl+Break on Windows) to the returned channel. It may be called once
// per process.
func InstallInterruptHandler() (<-chan os.Signal, error) {
	if !interruptHandlerInstalled.CompareAndSwap(false, true) {
		return nil, ErrInterruptHandlerInstalled
	}
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	return interrupts, nil
}

// SignalLoop forwards interrupts to the action loop.
type SignalLoop struct {
	Interrupts <-chan os.Signal
	Sender     *Sender
	Stop       *StopFlag

	// Clock drives the bounded wait. Nil means clock.Real().
	Clock clock.Clock

	// Wait bounds each receive. Zero means DefaultSignalWait.
	Wait time.Duration

	// Logger receives debug output. Nil means slog.Default().
	Logger *slog.Logger
}

// Run waits for interrupts until the stop flag is raised, then closes the
// Sender. A closed Interrupts channel also ends the loop.
func (s *SignalLoop) Run() {
	defer s.Sender.Close()

	clk := s.Clock
	if clk == nil {
		clk = clock.Real()
	}
	wait := s.Wait
	if wait <= 0 {
		wait = DefaultSignalWait
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for {
		select {
		case received, ok := <-s.Interrupts:
			if !ok {
				logger.Debug("interrupt channel closed, signal loop stopping")
				return
			}
			logger.Debug("signal received", "signal", received.String())
			s.Sender.Send(InterruptSignal{})
		case <-clk.After(wait):
			if s.Stop.IsSet() {
				logger.Debug("signal loop stopping on stop flag")
				return
			}
		}
	}
}
