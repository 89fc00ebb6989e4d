// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	ps "github.com/shirou/gopsutil/v4/process"
)

// ProcessTable finds running processes by executable path.
type ProcessTable interface {
	// MatchingPath returns the identifiers of every process whose
	// executable is path, in ascending order. path is canonical (see
	// CanonicalPath).
	MatchingPath(path string) ([]int32, error)
}

// SystemTable reads the operating system's process table. The calling
// process never matches, so a test binary re-executing itself only sees
// its child.
type SystemTable struct{}

// MatchingPath implements ProcessTable.
func (SystemTable) MatchingPath(path string) ([]int32, error) {
	processes, err := ps.Processes()
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}

	self := int32(os.Getpid())
	var matches []int32
	for _, candidate := range processes {
		if candidate.Pid == self {
			continue
		}
		// Processes owned by other users, zombies, and kernel threads
		// have no readable executable. None of them can be ours.
		executable, err := candidate.Exe()
		if err != nil || executable == "" {
			continue
		}
		if samePath(filepath.Clean(executable), path) {
			matches = append(matches, candidate.Pid)
		}
	}
	slices.Sort(matches)
	return matches, nil
}

// CheckProcess picks the process to keep supervising from the processes
// currently running the launched executable. The current identifier wins
// if it is still among them. Otherwise the lowest identifier is adopted:
// when several processes share the executable there is no way to tell
// which one replaced ours. ok is false when nothing matches.
func CheckProcess(current int32, matches []int32) (pid int32, ok bool) {
	if len(matches) == 0 {
		return 0, false
	}
	if slices.Contains(matches, current) {
		return current, true
	}
	return slices.Min(matches), true
}

// CanonicalPath returns the absolute, symlink-free form of path, the form
// process tables report executables in.
func CanonicalPath(path string) (string, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(absolute)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return resolved, nil
}

func samePath(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// killProcess sends an unconditional kill to pid.
func killProcess(pid int32) error {
	target, err := ps.NewProcess(pid)
	if err != nil {
		return err
	}
	return target.Kill()
}
