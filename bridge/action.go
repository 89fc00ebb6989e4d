// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/bureau-foundation/gcli/protocol"
)

// ForcedExitCode is the exit code reported when a session ends because
// g-cli itself was interrupted. It follows the shell convention of 128
// plus SIGINT.
const ForcedExitCode = 130

// TransportFailureCode is the exit code reported when the connection or
// the protocol failed before the application sent EXIT.
const TransportFailureCode = -1

// messageBuffer is the capacity of the action loop's channel. Producers
// block once it fills, which only happens if the terminal is slower than
// the application.
const messageBuffer = 256

// Message is one event delivered to the action loop. The concrete types
// are [FromApplication], [TransportError], and [InterruptSignal].
type Message interface {
	actionMessage()
}

// FromApplication carries a message decoded from the connection.
type FromApplication struct {
	Message protocol.InboundMessage
}

// TransportError carries a failure reading from the connection.
type TransportError struct {
	Err error
}

// InterruptSignal reports that g-cli received SIGINT or SIGTERM.
type InterruptSignal struct{}

func (FromApplication) actionMessage() {}
func (TransportError) actionMessage()  {}
func (InterruptSignal) actionMessage() {}

// ExitDecision is the outcome of a session.
type ExitDecision struct {
	// Forced is true when the session was ended by an interrupt rather
	// than by the application.
	Forced bool

	// Code is the exit code g-cli should terminate with.
	Code int
}

// CleanExit is the decision for a session the application (or a
// transport failure) ended.
func CleanExit(code int) ExitDecision {
	return ExitDecision{Code: code}
}

// ForcedExit is the decision for an interrupted session.
func ForcedExit() ExitDecision {
	return ExitDecision{Forced: true, Code: ForcedExitCode}
}

func (d ExitDecision) String() string {
	if d.Forced {
		return "forced exit"
	}
	return fmt.Sprintf("clean exit (%d)", d.Code)
}

// Sender is one producer's handle on the action loop. Each Sender must be
// used from a single goroutine and closed exactly once when the producer
// is done; the loop does not finish until every Sender is closed.
type Sender struct {
	messages chan<- Message
	closed   atomic.Bool
	once     sync.Once
	release  func()
}

// Send delivers a message to the action loop, blocking while the loop's
// buffer is full. Sending on a closed Sender is dropped.
func (s *Sender) Send(message Message) {
	if s.closed.Load() {
		return
	}
	s.messages <- message
}

// Close releases the producer. Calling it more than once is harmless.
func (s *Sender) Close() {
	s.once.Do(func() {
		s.closed.Store(true)
		s.release()
	})
}

// ActionLoop is the single consumer of a session's messages.
type ActionLoop struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger

	messages  chan Message
	producers sync.WaitGroup
	stop      StopFlag
	sentinel  *Sender
}

// NewActionLoop creates a loop that writes application output to stdout
// and stderr. A nil logger means slog.Default().
func NewActionLoop(stdout, stderr io.Writer, logger *slog.Logger) *ActionLoop {
	if logger == nil {
		logger = slog.Default()
	}
	loop := &ActionLoop{
		stdout:   stdout,
		stderr:   stderr,
		logger:   logger,
		messages: make(chan Message, messageBuffer),
	}
	// The sentinel keeps the channel open until Run starts, so producers
	// created before Run cannot close it early.
	loop.sentinel = loop.Sender()
	return loop
}

// Sender registers a new producer. All producers must be registered
// before Run is called.
func (l *ActionLoop) Sender() *Sender {
	l.producers.Add(1)
	return &Sender{
		messages: l.messages,
		release:  l.producers.Done,
	}
}

// StopFlag returns the flag the loop raises when the session is over.
func (l *ActionLoop) StopFlag() *StopFlag {
	return &l.stop
}

// Run consumes messages until every producer has closed its Sender and
// returns the final decision. It starts from CleanExit(0).
func (l *ActionLoop) Run() ExitDecision {
	l.sentinel.Close()
	go func() {
		l.producers.Wait()
		close(l.messages)
	}()

	decision := CleanExit(0)
	transportErrors := 0
	for message := range l.messages {
		switch message := message.(type) {
		case FromApplication:
			decision = l.handleApplication(decision, message.Message)
		case TransportError:
			transportErrors++
			// A dead connection fails every read until the reader
			// notices the stop flag. Only the first one is news.
			if transportErrors == 1 {
				l.logger.Error("communication with the application failed", "error", message.Err)
			} else {
				l.logger.Debug("further transport error", "error", message.Err)
			}
			if !decision.Forced {
				decision = CleanExit(TransportFailureCode)
			}
			l.stop.Set()
		case InterruptSignal:
			l.logger.Debug("interrupt received, ending the session")
			decision = ForcedExit()
			l.stop.Set()
		}
	}
	return decision
}

func (l *ActionLoop) handleApplication(decision ExitDecision, message protocol.InboundMessage) ExitDecision {
	switch message := message.(type) {
	case protocol.StandardOutput:
		l.write(l.stdout, "stdout", message.Text)
	case protocol.StandardError:
		l.write(l.stderr, "stderr", message.Text)
	case protocol.Exit:
		l.logger.Debug("application reported exit", "exit_code", message.Code)
		if !decision.Forced {
			decision = CleanExit(message.Code)
		}
		l.stop.Set()
	}
	return decision
}

func (l *ActionLoop) write(writer io.Writer, stream, text string) {
	if _, err := io.WriteString(writer, text); err != nil {
		l.logger.Warn("writing application output failed", "stream", stream, "error", err)
	}
}
