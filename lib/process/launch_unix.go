// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// detach puts the application in its own process group so a terminal
// Ctrl+C is delivered to g-cli alone.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
