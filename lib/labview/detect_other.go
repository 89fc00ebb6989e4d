// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package labview

const executableName = "labview"

// DetectInstallations returns an empty set: without a registry there is
// nothing to scan. Declare installs in the configuration file instead.
func DetectInstallations() (*Installs, error) {
	return NewInstalls(), nil
}
