// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package labview

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Bitness is the architecture a LabVIEW install was built for.
type Bitness int

const (
	X86 Bitness = iota
	X64
)

func (b Bitness) String() string {
	if b == X64 {
		return "64bit"
	}
	return "32bit"
}

// ParseBitness accepts "32bit", "64bit", "x86", "x64", "32" and "64".
func ParseBitness(s string) (Bitness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "32bit", "x86", "32":
		return X86, nil
	case "64bit", "x64", "64":
		return X64, nil
	default:
		return X86, fmt.Errorf("unknown bitness %q (want 32bit or 64bit)", s)
	}
}

// Install is one LabVIEW installation.
type Install struct {
	// Path is the install directory or the LabVIEW executable itself.
	Path string

	// Version is the full version text, such as "2011 SP1".
	Version string

	Bitness Bitness
}

// MajorVersion is the version text before the first space: "2011" for
// "2011 SP1".
func (i Install) MajorVersion() string {
	major, _, _ := strings.Cut(strings.TrimSpace(i.Version), " ")
	return major
}

// ApplicationPath is the LabVIEW executable to launch.
func (i Install) ApplicationPath() string {
	if info, err := os.Stat(i.Path); err == nil && !info.IsDir() {
		return i.Path
	}
	if strings.EqualFold(filepath.Ext(i.Path), ".exe") {
		return i.Path
	}
	return filepath.Join(i.Path, executableName)
}

// Directory is the install root.
func (i Install) Directory() string {
	if i.ApplicationPath() == i.Path {
		return filepath.Dir(i.Path)
	}
	return i.Path
}

// RelativePath resolves vi against the G CLI Tools folder of vi.lib,
// where the toolkit installs its own VIs.
func (i Install) RelativePath(vi string) string {
	return filepath.Join(i.Directory(), "vi.lib", "G CLI Tools", vi)
}

type installKey struct {
	major   string
	bitness Bitness
}

// Installs is a set of installs keyed by major version and bitness. A
// later Add for the same key replaces the earlier install.
type Installs struct {
	installs map[installKey]Install
}

// NewInstalls returns an empty set.
func NewInstalls() *Installs {
	return &Installs{installs: make(map[installKey]Install)}
}

// Add records an install.
func (s *Installs) Add(install Install) {
	s.installs[installKey{install.MajorVersion(), install.Bitness}] = install
}

// Merge adds every install in other.
func (s *Installs) Merge(other *Installs) {
	for _, install := range other.All() {
		s.Add(install)
	}
}

// Len returns the number of installs.
func (s *Installs) Len() int {
	return len(s.installs)
}

// Get finds the install for a version and bitness. Only the major
// version is compared, so "2011" finds "2011 SP1".
func (s *Installs) Get(version string, bitness Bitness) (Install, bool) {
	install, ok := s.installs[installKey{Install{Version: version}.MajorVersion(), bitness}]
	return install, ok
}

// Default picks the newest major version, preferring 64-bit when both
// are installed.
func (s *Installs) Default() (Install, bool) {
	all := s.All()
	if len(all) == 0 {
		return Install{}, false
	}
	best := all[0]
	for _, install := range all[1:] {
		order := compareVersions(install.MajorVersion(), best.MajorVersion())
		if order > 0 || (order == 0 && install.Bitness > best.Bitness) {
			best = install
		}
	}
	return best, true
}

// All returns the installs ordered by major version text, then 32-bit
// before 64-bit.
func (s *Installs) All() []Install {
	keys := make([]installKey, 0, len(s.installs))
	for key := range s.installs {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b installKey) int {
		if order := strings.Compare(a.major, b.major); order != 0 {
			return order
		}
		return int(a.bitness) - int(b.bitness)
	})

	all := make([]Install, 0, len(keys))
	for _, key := range keys {
		all = append(all, s.installs[key])
	}
	return all
}

// Details lists the installs for the verbose log.
func (s *Installs) Details() string {
	var builder strings.Builder
	builder.WriteString("Detected LabVIEW versions:\n")
	for _, install := range s.All() {
		fmt.Fprintf(&builder, "%s, %s (%s)\n", install.Version, install.Bitness, install.Path)
	}
	return builder.String()
}

// compareVersions orders dotted numeric versions numerically ("2011"
// after "8.6") and falls back to text order for anything else.
func compareVersions(a, b string) int {
	partsA := strings.Split(a, ".")
	partsB := strings.Split(b, ".")
	for index := 0; index < max(len(partsA), len(partsB)); index++ {
		var textA, textB string
		if index < len(partsA) {
			textA = partsA[index]
		}
		if index < len(partsB) {
			textB = partsB[index]
		}
		numberA, errA := strconv.Atoi(textA)
		numberB, errB := strconv.Atoi(textB)
		if textA == "" {
			numberA, errA = 0, nil
		}
		if textB == "" {
			numberB, errB = 0, nil
		}
		if errA != nil || errB != nil {
			if order := strings.Compare(textA, textB); order != 0 {
				return order
			}
			continue
		}
		if numberA != numberB {
			if numberA < numberB {
				return -1
			}
			return 1
		}
	}
	return 0
}
