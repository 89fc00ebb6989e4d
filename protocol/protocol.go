// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"encoding/binary"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Frame tags. Each is exactly TagLength ASCII bytes.
const (
	TagArguments        = "ARGS"
	TagWorkingDirectory = "CCWD"
	TagOutput           = "OUTP"
	TagError            = "SERR"
	TagExit             = "EXIT"
)

const (
	// LengthPrefixSize is the size of the big-endian length field that
	// starts every frame.
	LengthPrefixSize = 4

	// TagLength is the size of the ASCII tag that follows the length.
	TagLength = 4

	// HeaderSize is the number of bytes before the payload.
	HeaderSize = LengthPrefixSize + TagLength

	// MaxFrameSize bounds a whole frame, length prefix included. The
	// application side allocates a fixed buffer of this size, so anything
	// larger is rejected rather than truncated.
	MaxFrameSize = 9000
)

// OutboundMessage is a message sent from g-cli to the application.
// The concrete types are [Arguments] and [WorkingDirectory].
type OutboundMessage interface {
	// Tag returns the 4-byte frame tag.
	Tag() string
	// Payload returns the frame payload.
	Payload() []byte
}

// Arguments carries the user's arguments, tab-joined on the wire.
type Arguments []string

func (Arguments) Tag() string { return TagArguments }

func (a Arguments) Payload() []byte { return []byte(strings.Join(a, "\t")) }

// WorkingDirectory carries the directory g-cli was invoked from.
type WorkingDirectory string

func (WorkingDirectory) Tag() string { return TagWorkingDirectory }

func (w WorkingDirectory) Payload() []byte { return []byte(w) }

// InboundMessage is a message received from the application. The
// concrete types are [StandardOutput], [StandardError], and [Exit].
type InboundMessage interface {
	inbound()
}

// StandardOutput is text to copy verbatim to standard output.
type StandardOutput struct {
	Text string
}

// StandardError is text to copy verbatim to standard error.
type StandardError struct {
	Text string
}

// Exit ends the session with the application's exit code.
type Exit struct {
	Code int
}

func (StandardOutput) inbound() {}
func (StandardError) inbound()  {}
func (Exit) inbound()           {}

// Encode builds the complete frame for message. The whole frame is
// synthesized before anything is written; there is no streaming.
func Encode(message OutboundMessage) ([]byte, error) {
	tag := message.Tag()
	if len(tag) != TagLength {
		return nil, &EncodingError{Field: "tag", Value: tag}
	}
	payload := message.Payload()
	if !utf8.Valid(payload) {
		return nil, &EncodingError{Field: "payload", Value: string(payload)}
	}

	frameSize := HeaderSize + len(payload)
	if frameSize > MaxFrameSize {
		return nil, &FrameSizeError{Length: uint32(TagLength + len(payload))}
	}

	frame := make([]byte, frameSize)
	binary.BigEndian.PutUint32(frame[0:LengthPrefixSize], uint32(TagLength+len(payload)))
	copy(frame[LengthPrefixSize:HeaderSize], tag)
	copy(frame[HeaderSize:], payload)
	return frame, nil
}

// FrameLength validates a length prefix and returns the number of bytes
// that follow it. Readers call this after the first 4 bytes arrive so an
// oversized or undersized frame is rejected before its body is read.
func FrameLength(prefix []byte) (int, error) {
	if len(prefix) < LengthPrefixSize {
		return 0, &FrameSizeError{Length: 0}
	}
	length := binary.BigEndian.Uint32(prefix[:LengthPrefixSize])
	if length < TagLength || uint64(length)+LengthPrefixSize > MaxFrameSize {
		return 0, &FrameSizeError{Length: length}
	}
	return int(length), nil
}

// Decode parses a complete frame (length prefix included) into an
// inbound message.
func Decode(frame []byte) (InboundMessage, error) {
	length, err := FrameLength(frame)
	if err != nil {
		return nil, err
	}
	if len(frame) < LengthPrefixSize+length {
		return nil, &FrameSizeError{Length: uint32(length), Available: len(frame) - LengthPrefixSize}
	}

	tagBytes := frame[LengthPrefixSize:HeaderSize]
	if !utf8.Valid(tagBytes) {
		return nil, &EncodingError{Field: "tag", Value: string(tagBytes)}
	}
	payloadBytes := frame[HeaderSize : LengthPrefixSize+length]
	if !utf8.Valid(payloadBytes) {
		return nil, &EncodingError{Field: "payload", Value: string(payloadBytes)}
	}

	tag := string(tagBytes)
	payload := string(payloadBytes)

	switch tag {
	case TagExit:
		code, parseError := strconv.ParseInt(payload, 10, 32)
		if parseError != nil {
			return nil, &ExitCodeError{Value: payload, Err: parseError}
		}
		return Exit{Code: int(code)}, nil
	case TagOutput:
		return StandardOutput{Text: payload}, nil
	case TagError:
		return StandardError{Text: payload}, nil
	default:
		return nil, &UnknownTagError{Tag: tag}
	}
}
