// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package labview

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Location is a VI path together with the file that actually holds it.
type Location struct {
	vi        string
	container string
}

// NewLocation finds the container of vi: the nearest ancestor that is an
// .llb or .lvlibp library, or vi itself.
func NewLocation(vi string) Location {
	return Location{vi: vi, container: containerOf(vi)}
}

func containerOf(vi string) string {
	for current := vi; ; {
		switch strings.ToLower(filepath.Ext(current)) {
		case ".llb", ".lvlibp":
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return vi
		}
		current = parent
	}
}

// Container returns the file holding the VI.
func (l Location) Container() string {
	return l.container
}

// Exists reports whether the container is present on disk.
func (l Location) Exists() bool {
	_, err := os.Stat(l.container)
	return err == nil
}

// CanonicalPath resolves the container to an absolute, symlink-free path
// and appends the VI's path inside it.
func (l Location) CanonicalPath() (string, error) {
	absolute, err := filepath.Abs(l.container)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", l.container, err)
	}
	canonical, err := filepath.EvalSymlinks(absolute)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", l.container, err)
	}
	inner, err := filepath.Rel(l.container, l.vi)
	if err != nil {
		return "", fmt.Errorf("locating %s inside %s: %w", l.vi, l.container, err)
	}
	if inner == "." {
		return canonical, nil
	}
	return filepath.Join(canonical, inner), nil
}

// String returns the VI path as given.
func (l Location) String() string {
	return l.vi
}
