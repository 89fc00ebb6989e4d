// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads g-cli's optional YAML configuration file.
//
// The file is selected by the GCLI_CONFIG environment variable or by the
// --config flag. There is no discovery: when neither is given, g-cli runs
// on built-in defaults, and command-line flags override whatever the file
// says. This keeps a CI job's behavior visible in its own command line.
//
// The file holds the defaults a build machine wants for every run (the
// connect and kill timeouts, whether to kill LabVIEW on exit), the Service
// Locator address, and LabVIEW installs declared by hand. Declared
// installs are the only install source on platforms without the Windows
// registry, and on Windows they are merged over the detected ones.
//
// Install paths may use ${VAR} and ${VAR:-default} references, expanded
// from the environment when the file is loaded.
//
//	connect_timeout: 2m
//	kill: true
//	kill_timeout: 30s
//	service_locator:
//	  url: http://localhost:3580
//	labview:
//	  installs:
//	    - path: ${HOME}/natinst/LabVIEW-2024-64
//	      version: 2024 Q3
//	      bitness: 64bit
package config
