// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package labview knows where LabVIEW is installed and how to hand a VI
// to it.
//
// [DetectInstallations] reads the installs registered on the host. On
// Windows that is the National Instruments registry tree, 64-bit installs
// under SOFTWARE and 32-bit installs under WOW6432Node. Other platforms
// have no registry, so detection finds nothing and installs come from the
// configuration file instead. Either way the result is an [Installs] set
// keyed by major version and [Bitness].
//
// A [Location] is a VI path that may live inside a container (an .llb
// library or a packed .lvlibp library); existence and canonicalization
// operate on the container, since the VI inside it is not a file of its
// own.
//
// [LaunchArgs] builds the arguments after the VI path on LabVIEW's
// command line. Everything after "--" is passed through to the G CLI
// toolkit running inside LabVIEW, which reads the port from "-p:".
package labview
