// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package labview

import "fmt"

// LaunchArgs are the arguments that follow the launch target. Without
// allowDialogs LabVIEW is started with -unattended so it never blocks on
// a modal dialog nobody will see.
func LaunchArgs(port int, allowDialogs bool) []string {
	var args []string
	if !allowDialogs {
		args = append(args, "-unattended")
	}
	return append(args, "--", fmt.Sprintf("-p:%d", port))
}
