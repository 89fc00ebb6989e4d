// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// g-cli connects a LabVIEW VI or a built LabVIEW application to the
// command line.
//
// It listens on an ephemeral loopback port, launches the target with the
// port on its command line, and waits for the application to connect.
// The program arguments (everything after "--") and the working
// directory are sent to the application, which then streams standard
// output, standard error, and finally an exit code back. g-cli exits with
// that code, so a VI can take part in a CI pipeline like any other tool.
//
// VI targets are opened in an installed LabVIEW. The port is also
// published through the NI Service Locator so the G CLI toolkit inside
// LabVIEW can find it, and withdrawn once the connection is made.
//
// Usage:
//
//	g-cli [flags] <vi or exe> [-- program arguments...]
//
// Ctrl-C ends the session, kills the application, and exits with 130.
package main
