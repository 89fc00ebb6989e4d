// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package process

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// detach puts the application in a new process group, so console
// Ctrl+C and Ctrl+Break events reach g-cli alone, and stops it from
// inheriting g-cli's handles.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags:    windows.CREATE_NEW_PROCESS_GROUP,
		NoInheritHandles: true,
	}
}
