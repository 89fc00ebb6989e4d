// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/gcli/lib/clock"
	"github.com/bureau-foundation/gcli/protocol"
)

// Conn is the connection a session drives. *transport.Connection
// satisfies it.
type Conn interface {
	Receiver
	Send(message protocol.OutboundMessage) error
}

// Session relays one application run to the terminal.
type Session struct {
	// Connection is the accepted connection. The session takes it over:
	// after the startup messages are sent, only the reader loop touches it.
	Connection Conn

	// Stdout and Stderr receive OUTP and SERR text. Nil means os.Stdout
	// and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer

	// Interrupts delivers OS interrupts, normally the channel returned by
	// InstallInterruptHandler. Nil runs the session without a signal loop.
	Interrupts <-chan os.Signal

	// Clock drives the reader and signal loop waits. Nil means
	// clock.Real().
	Clock clock.Clock

	// ReadPause and SignalWait override the loop intervals.
	ReadPause  time.Duration
	SignalWait time.Duration

	// Logger receives structured output. Nil means slog.Default(). Each
	// run adds a session_id attribute.
	Logger *slog.Logger
}

// Run sends the program arguments and working directory, relays output
// until the session ends, and returns the decision. An error means the
// startup messages could not be sent and no loop was started.
func (s *Session) Run(arguments []string, workingDirectory string) (ExitDecision, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session_id", uuid.NewString())

	if err := s.Connection.Send(protocol.Arguments(arguments)); err != nil {
		return ExitDecision{}, fmt.Errorf("sending arguments to the application: %w", err)
	}
	if err := s.Connection.Send(protocol.WorkingDirectory(workingDirectory)); err != nil {
		return ExitDecision{}, fmt.Errorf("sending working directory to the application: %w", err)
	}
	logger.Debug("startup messages sent",
		"argument_count", len(arguments),
		"working_directory", workingDirectory)

	stdout := s.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := s.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	loop := NewActionLoop(stdout, stderr, logger)

	reader := &ReaderLoop{
		Connection: s.Connection,
		Sender:     loop.Sender(),
		Stop:       loop.StopFlag(),
		Clock:      s.Clock,
		Pause:      s.ReadPause,
		Logger:     logger,
	}
	go reader.Run()

	if s.Interrupts != nil {
		signals := &SignalLoop{
			Interrupts: s.Interrupts,
			Sender:     loop.Sender(),
			Stop:       loop.StopFlag(),
			Clock:      s.Clock,
			Wait:       s.SignalWait,
			Logger:     logger,
		}
		go signals.Run()
	}

	decision := loop.Run()
	logger.Debug("session finished", "decision", decision.String(), "exit_code", decision.Code)
	return decision, nil
}
