// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for the polling loops
// in g-cli.
//
// Every loop that waits (listener accept polling, reader back-off, the
// signal loop's bounded wait, the supervisor's table scans and kill
// timeout) takes a [Clock] instead of calling the time package directly.
// Production code passes [Real]; tests pass [Fake] and drive time with
// Advance.
//
// # FakeClock Synchronization
//
// A goroutine that calls Sleep or After on a [FakeClock] registers a
// pending waiter. Tests call WaitForTimers to block until the goroutine
// has registered, then Advance to fire it:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go listener.Accept(100 * time.Millisecond)
//	c.WaitForTimers(1)
//	c.Advance(100 * time.Millisecond)
package clock
