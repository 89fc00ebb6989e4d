// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import "sync/atomic"

// StopFlag is a write-once cancellation signal shared by the loops of a
// session. It starts false and only ever becomes true.
type StopFlag struct {
	stopped atomic.Bool
}

// Set raises the flag. It reports whether this call was the one that
// changed it.
func (f *StopFlag) Set() bool {
	return f.stopped.CompareAndSwap(false, true)
}

// IsSet reports whether the flag has been raised.
func (f *StopFlag) IsSet() bool {
	return f.stopped.Load()
}
