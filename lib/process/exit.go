// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"os"
)

// Fatal terminates g-cli after run() failed. An error carrying its own
// exit code (an ExitCode() int method anywhere in its chain) exits with
// that code silently, because the session already reported everything
// worth saying. Any other error is printed as "error: err" and exits 1.
func Fatal(err error) {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		os.Exit(coder.ExitCode())
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
