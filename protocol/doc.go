// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package protocol implements the framed wire format spoken between g-cli
// and the application it launches.
//
// Every frame is a 4-byte big-endian length, a 4-byte ASCII tag, and a
// UTF-8 payload. The length counts the tag plus the payload, so it is
// never less than 4:
//
//	[length uint32 BE] [tag, 4 bytes] [payload, length-4 bytes]
//
// Two message kinds flow from the host to the application, once each and
// in this order at the start of a session:
//
//   - ARGS: the user's arguments joined with tabs ([Arguments])
//   - CCWD: the host's working directory ([WorkingDirectory])
//
// Three message kinds flow back, in any order and quantity:
//
//   - OUTP: text for standard output ([StandardOutput])
//   - SERR: text for standard error ([StandardError])
//   - EXIT: a decimal exit code, the last message of a session ([Exit])
//
// [Encode] builds outbound frames; [Decode] parses an inbound frame that
// has already been read in full. Both enforce [MaxFrameSize]. Decoding
// failures are typed ([UnknownTagError], [ExitCodeError],
// [EncodingError], [FrameSizeError]) and carry the offending value so the
// caller can report exactly what the application sent.
package protocol
