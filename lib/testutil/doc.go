// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for g-cli packages.
//
// [RequireReceive], [RequireSend], and [RequireClosed] encapsulate the
// timeout safety valve pattern (select with time.After fallback) so
// that individual tests do not need direct time.After calls.
// [RequireEventually] polls a condition with the same safety valve, for
// tests that drive real sockets or real processes where no channel
// signals completion.
//
// [WriteFile] creates a file (and its parent directories) under a test's
// temporary directory and returns its path.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation, such as service names registered against a shared
// fake service locator.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no g-cli-internal dependencies.
package testutil
