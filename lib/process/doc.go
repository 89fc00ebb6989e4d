// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process launches the application g-cli talks to and supervises
// it until the session ends.
//
// [Start] launches the executable detached from g-cli's terminal: its
// standard streams go to the null device, it gets its own process group
// (so Ctrl+C in the terminal reaches g-cli only), and on Windows it
// inherits no handles. A monitor goroutine then rescans the OS process
// table every poll interval for processes running the launched
// executable. The application may replace itself (LabVIEW relaunching
// into a different version, for example), so the identifier being
// tracked is re-resolved on every scan by [CheckProcess] rather than
// trusted once.
//
// The monitor is a small state machine, reported by [Supervisor.State]:
//
//	Running -> Lost                  the executable vanished from the table
//	Running -> AwaitingNaturalExit   Stop with a kill timeout
//	AwaitingNaturalExit -> Exited    the process left on its own
//	AwaitingNaturalExit -> Killed    the timeout elapsed
//	Running -> Stopped               Stop without a kill timeout
//
// Supervision anomalies (a lost process, a kill target that is already
// gone, a failed table scan) are logged and never turned into errors; the
// session outcome alone decides g-cli's exit code.
//
// [Supervisor.SetConnected] hands off the discovery registration made at
// launch time. Once the application has connected it no longer needs to
// find g-cli, so the registration is withdrawn exactly once.
//
// [Fatal] is the binary entrypoint error handler: it is the one place
// outside the CLI that writes raw text to stderr, for errors that happen
// before or after the structured logger exists.
package process
