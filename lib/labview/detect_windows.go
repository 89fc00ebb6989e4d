// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package labview

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const executableName = "LabVIEW.exe"

// Registry roots for each bitness. This layout only holds on 64-bit
// Windows.
var registryRoots = []struct {
	path    string
	bitness Bitness
}{
	{path: `SOFTWARE\WOW6432Node\National Instruments\LabVIEW`, bitness: X86},
	{path: `SOFTWARE\National Instruments\LabVIEW`, bitness: X64},
}

// DetectInstallations reads the LabVIEW installs registered under
// HKEY_LOCAL_MACHINE. A missing root means no installs of that bitness.
func DetectInstallations() (*Installs, error) {
	installs := NewInstalls()
	for _, root := range registryRoots {
		names, err := subKeyNames(root.path)
		if errors.Is(err, registry.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading HKLM\\%s: %w", root.path, err)
		}
		for _, name := range names {
			if name == "AddOns" || name == "CurrentVersion" {
				continue
			}
			if install, ok := readInstall(root.path+`\`+name, root.bitness); ok {
				installs.Add(install)
			}
		}
	}
	return installs, nil
}

func subKeyNames(path string) ([]string, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, err
	}
	defer key.Close()
	return key.ReadSubKeyNames(-1)
}

// readInstall reads one version key. Keys left behind by uninstalled
// versions have no VersionString or Path and are skipped.
func readInstall(path string, bitness Bitness) (Install, bool) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.QUERY_VALUE)
	if err != nil {
		return Install{}, false
	}
	defer key.Close()

	version, _, err := key.GetStringValue("VersionString")
	if err != nil {
		return Install{}, false
	}
	installPath, _, err := key.GetStringValue("Path")
	if err != nil {
		return Install{}, false
	}
	return Install{Path: installPath, Version: version, Bitness: bitness}, true
}
