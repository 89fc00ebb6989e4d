// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import "fmt"

// UnknownTagError reports a frame whose tag is not one of the inbound
// message kinds.
type UnknownTagError struct {
	Tag string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("message tag is invalid %q", e.Tag)
}

// ExitCodeError reports an EXIT frame whose payload is not a decimal
// integer. Value is the payload exactly as received.
type ExitCodeError struct {
	Value string
	Err   error
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code string can't be parsed as an integer: %q", e.Value)
}

func (e *ExitCodeError) Unwrap() error { return e.Err }

// EncodingError reports a tag or payload that is not valid UTF-8, or an
// outbound tag of the wrong length.
type EncodingError struct {
	// Field is "tag" or "payload".
	Field string
	Value string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("message %s is not valid: %q", e.Field, e.Value)
}

// FrameSizeError reports a length prefix outside [TagLength, MaxFrameSize-4],
// or a frame shorter than its own length prefix claims.
type FrameSizeError struct {
	// Length is the declared length (tag plus payload).
	Length uint32
	// Available is the number of bytes actually present after the prefix
	// when the frame was truncated, zero otherwise.
	Available int
}

func (e *FrameSizeError) Error() string {
	if e.Available > 0 || (e.Length >= TagLength && uint64(e.Length)+LengthPrefixSize <= MaxFrameSize) {
		return fmt.Sprintf("frame declares %d bytes but only %d are present", e.Length, e.Available)
	}
	return fmt.Sprintf("frame length %d is outside the valid range [%d, %d]",
		e.Length, TagLength, MaxFrameSize-LengthPrefixSize)
}
