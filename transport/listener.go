// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/bureau-foundation/gcli/lib/clock"
)

// LoopbackAddress binds the loopback interface on a port chosen by the
// operating system.
const LoopbackAddress = "127.0.0.1:0"

// DefaultPollInterval is how long Accept sleeps between attempts.
const DefaultPollInterval = 10 * time.Millisecond

// probeWindow bounds each individual accept or read attempt. A deadline
// already in the past makes the runtime fail the call without looking at
// the socket, so probes use a short deadline in the future instead.
const probeWindow = time.Millisecond

// Listener accepts the single connection the launched application makes
// back to g-cli.
type Listener struct {
	// Clock drives the accept timeout and the sleeps between attempts.
	// Nil means clock.Real().
	Clock clock.Clock

	// PollInterval is the sleep between accept attempts. Zero means
	// DefaultPollInterval.
	PollInterval time.Duration

	// Logger receives debug output. Nil means slog.Default().
	Logger *slog.Logger

	listener *net.TCPListener
}

// Bind opens a listener on an ephemeral loopback port.
func Bind() (*Listener, error) {
	return BindAddress(LoopbackAddress)
}

// BindAddress opens a listener on the given TCP address. Use port 0 to let
// the operating system choose.
func BindAddress(address string) (*Listener, error) {
	resolved, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("resolving listen address %q: %w", address, err)
	}
	listener, err := net.ListenTCP("tcp", resolved)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", address, err)
	}
	return &Listener{listener: listener}, nil
}

// Port returns the port the listener is bound to.
func (l *Listener) Port() int {
	return l.listener.Addr().(*net.TCPAddr).Port
}

// Addr returns the bound address in host:port form.
func (l *Listener) Addr() string {
	return l.listener.Addr().String()
}

// Accept waits up to timeout for a client to connect. A zero or negative
// timeout still makes one attempt before giving up. Returns
// ErrConnectTimeout when nobody connected in time.
func (l *Listener) Accept(timeout time.Duration) (*Connection, error) {
	clk := l.clock()
	deadline := clk.Now().Add(timeout)
	interval := l.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	for {
		// Socket deadlines are compared against the kernel's wall clock,
		// so the probe uses time.Now even when clk is fake. Only the
		// overall timeout follows clk.
		if err := l.listener.SetDeadline(time.Now().Add(probeWindow)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAccept, err)
		}
		conn, err := l.listener.AcceptTCP()
		if err == nil {
			l.logger().Debug("application connected",
				"local", conn.LocalAddr().String(),
				"remote", conn.RemoteAddr().String())
			return newConnection(conn)
		}
		if !errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrAccept, err)
		}

		if !clk.Now().Before(deadline) {
			return nil, ErrConnectTimeout
		}
		clk.Sleep(interval)
	}
}

// Close stops listening. An already accepted Connection is unaffected.
func (l *Listener) Close() error {
	return l.listener.Close()
}

func (l *Listener) clock() clock.Clock {
	if l.Clock != nil {
		return l.Clock
	}
	return clock.Real()
}

func (l *Listener) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
