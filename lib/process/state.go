// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import "time"

// State is the supervisor's view of the launched application.
type State int32

const (
	// StateRunning means the last scan found the application.
	StateRunning State = iota

	// StateLost means a scan found no process running the executable.
	// The supervisor stops scanning and waits for Stop.
	StateLost

	// StateAwaitingNaturalExit means Stop was called with a kill timeout
	// and the supervisor is waiting for the application to leave.
	StateAwaitingNaturalExit

	// StateExited means the application left before the kill timeout.
	StateExited

	// StateKilled means the kill timeout elapsed and the application
	// was killed.
	StateKilled

	// StateStopped means supervision ended and the application was left
	// running.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateLost:
		return "lost"
	case StateAwaitingNaturalExit:
		return "awaiting natural exit"
	case StateExited:
		return "exited"
	case StateKilled:
		return "killed"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// KillPolicy tells Stop what to do with an application that is still
// running.
type KillPolicy struct {
	// Kill enables killing. When false the application is left alone.
	Kill bool

	// After is how long to wait for a natural exit before killing.
	After time.Duration
}

// LeaveRunning stops supervision without touching the application.
func LeaveRunning() KillPolicy {
	return KillPolicy{}
}

// KillAfter waits up to d for the application to exit, then kills it.
func KillAfter(d time.Duration) KillPolicy {
	return KillPolicy{Kill: true, After: d}
}
