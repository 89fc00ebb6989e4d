// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/bureau-foundation/gcli/lib/netutil"
	"github.com/bureau-foundation/gcli/protocol"
)

// Connection is an accepted stream to the application. Send and Receive
// may be called from different goroutines, but each must only be called
// from one goroutine at a time.
type Connection struct {
	conn net.Conn

	// buffer holds the frame being assembled. filled counts the bytes
	// read so far and frameSize is the full frame length once the
	// prefix has been parsed, zero before that.
	buffer    [protocol.MaxFrameSize]byte
	filled    int
	frameSize int

	// desynced is the error that left the stream without a usable frame
	// boundary. Once set, Receive returns it without reading.
	desynced error
}

func newConnection(conn *net.TCPConn) (*Connection, error) {
	// Each frame is one small write; don't let Nagle hold the EXIT frame.
	if err := conn.SetNoDelay(true); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %w", ErrAccept, err)
	}
	return &Connection{conn: conn}, nil
}

// Send writes one outbound message as a single frame.
func (c *Connection) Send(message protocol.OutboundMessage) error {
	frame, err := protocol.Encode(message)
	if err != nil {
		return err
	}
	if _, err := c.conn.Write(frame); err != nil {
		return classifyWrite(err)
	}
	return nil
}

// Receive returns the next inbound message. It returns ErrWouldBlock if a
// complete frame has not arrived yet; any bytes read so far are kept for
// the next call. After a length prefix is rejected the rest of that frame
// is still in the socket, so every later call returns the same error.
func (c *Connection) Receive() (protocol.InboundMessage, error) {
	if c.desynced != nil {
		return nil, c.desynced
	}
	if c.frameSize == 0 {
		if err := c.fill(protocol.LengthPrefixSize); err != nil {
			return nil, err
		}
		length, err := protocol.FrameLength(c.buffer[:protocol.LengthPrefixSize])
		if err != nil {
			c.reset()
			c.desynced = err
			return nil, err
		}
		c.frameSize = protocol.LengthPrefixSize + length
	}

	if err := c.fill(c.frameSize); err != nil {
		return nil, err
	}
	message, err := protocol.Decode(c.buffer[:c.frameSize])
	c.reset()
	return message, err
}

// Close closes the underlying socket.
func (c *Connection) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the application's end of the connection.
func (c *Connection) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// fill reads until the buffer holds n bytes. It keeps reading as long as
// data is flowing and returns ErrWouldBlock only when a probe times out
// without making progress.
func (c *Connection) fill(n int) error {
	for c.filled < n {
		if err := c.conn.SetReadDeadline(time.Now().Add(probeWindow)); err != nil {
			return fmt.Errorf("%w: %w", ErrRead, err)
		}
		read, err := c.conn.Read(c.buffer[c.filled:n])
		c.filled += read
		if err == nil {
			continue
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			if read > 0 {
				continue
			}
			return ErrWouldBlock
		}
		return classifyRead(err)
	}
	return nil
}

func (c *Connection) reset() {
	c.filled = 0
	c.frameSize = 0
}

func classifyRead(err error) error {
	switch {
	case netutil.IsPeerClosed(err):
		return fmt.Errorf("%w: %w", ErrPeerClosed, err)
	case netutil.IsPeerAborted(err):
		return fmt.Errorf("%w: %w", ErrPeerAborted, err)
	default:
		return fmt.Errorf("%w: %w", ErrRead, err)
	}
}

func classifyWrite(err error) error {
	if netutil.IsPeerAborted(err) {
		return fmt.Errorf("%w: %w", ErrPeerAborted, err)
	}
	return fmt.Errorf("%w: %w", ErrWrite, err)
}
