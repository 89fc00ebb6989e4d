// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestEncode_SingleArgument(t *testing.T) {
	frame, err := Encode(Arguments{"Test1"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	expected := []byte("\x00\x00\x00\x09ARGSTest1")
	if !bytes.Equal(frame, expected) {
		t.Fatalf("frame = %q, want %q", frame, expected)
	}
}

func TestEncode_MultipleArguments(t *testing.T) {
	frame, err := Encode(Arguments{"Test1", "Test2"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	expected := []byte("\x00\x00\x00\x0FARGSTest1\tTest2")
	if !bytes.Equal(frame, expected) {
		t.Fatalf("frame = %q, want %q", frame, expected)
	}
}

func TestEncode_NoArguments(t *testing.T) {
	frame, err := Encode(Arguments{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	expected := []byte("\x00\x00\x00\x04ARGS")
	if !bytes.Equal(frame, expected) {
		t.Fatalf("frame = %q, want %q", frame, expected)
	}
}

func TestEncode_WorkingDirectory(t *testing.T) {
	frame, err := Encode(WorkingDirectory(`C:\test`))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	expected := []byte("\x00\x00\x00\x0BCCWDC:\\test")
	if !bytes.Equal(frame, expected) {
		t.Fatalf("frame = %q, want %q", frame, expected)
	}
}

func TestEncode_Unicode(t *testing.T) {
	frame, err := Encode(Arguments{"HÜll°"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	payload := []byte("HÜll°")
	if got := int(frame[3]); got != TagLength+len(payload) {
		t.Fatalf("length = %d, want %d", got, TagLength+len(payload))
	}
	if !bytes.Equal(frame[HeaderSize:], payload) {
		t.Fatalf("payload = %q, want %q", frame[HeaderSize:], payload)
	}
}

func TestEncode_TooLarge(t *testing.T) {
	_, err := Encode(Arguments{strings.Repeat("x", MaxFrameSize)})
	var sizeError *FrameSizeError
	if !errors.As(err, &sizeError) {
		t.Fatalf("expected FrameSizeError, got %v", err)
	}
}

func TestEncode_LargestFrameFits(t *testing.T) {
	frame, err := Encode(WorkingDirectory(strings.Repeat("x", MaxFrameSize-HeaderSize)))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(frame) != MaxFrameSize {
		t.Fatalf("len(frame) = %d, want %d", len(frame), MaxFrameSize)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		frame    string
		expected InboundMessage
	}{
		{"exit", "\x00\x00\x00\x07EXIT123", Exit{Code: 123}},
		{"negative exit", "\x00\x00\x00\x0AEXIT-10000", Exit{Code: -10000}},
		{"output", "\x00\x00\x00\x11OUTPHello, World\n", StandardOutput{Text: "Hello, World\n"}},
		{"error output", "\x00\x00\x00\x11SERRHello, World\n", StandardError{Text: "Hello, World\n"}},
		{"empty output", "\x00\x00\x00\x04OUTP", StandardOutput{Text: ""}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			message, err := Decode([]byte(test.frame))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if message != test.expected {
				t.Fatalf("message = %#v, want %#v", message, test.expected)
			}
		})
	}
}

func TestDecode_IgnoresTrailingBytes(t *testing.T) {
	message, err := Decode([]byte("\x00\x00\x00\x07EXIT123garbage"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if message != (Exit{Code: 123}) {
		t.Fatalf("message = %#v", message)
	}
}

func TestDecode_ExitCodeNotInteger(t *testing.T) {
	_, err := Decode([]byte("\x00\x00\x00\x07EXIT1.3"))
	var exitError *ExitCodeError
	if !errors.As(err, &exitError) {
		t.Fatalf("expected ExitCodeError, got %v", err)
	}
	if exitError.Value != "1.3" {
		t.Fatalf("Value = %q, want %q", exitError.Value, "1.3")
	}
}

func TestDecode_ExitCodeOutOfRange(t *testing.T) {
	_, err := Decode([]byte("\x00\x00\x00\x0EEXIT9999999999"))
	var exitError *ExitCodeError
	if !errors.As(err, &exitError) {
		t.Fatalf("expected ExitCodeError, got %v", err)
	}
	if exitError.Value != "9999999999" {
		t.Fatalf("Value = %q", exitError.Value)
	}
}

func TestDecode_UnknownTag(t *testing.T) {
	_, err := Decode([]byte("\x00\x00\x00\x07EXTT123"))
	var tagError *UnknownTagError
	if !errors.As(err, &tagError) {
		t.Fatalf("expected UnknownTagError, got %v", err)
	}
	if tagError.Tag != "EXTT" {
		t.Fatalf("Tag = %q, want %q", tagError.Tag, "EXTT")
	}
}

func TestDecode_OutboundTagIsUnknown(t *testing.T) {
	_, err := Decode([]byte("\x00\x00\x00\x09ARGSTest1"))
	var tagError *UnknownTagError
	if !errors.As(err, &tagError) || tagError.Tag != "ARGS" {
		t.Fatalf("expected UnknownTagError for ARGS, got %v", err)
	}
}

func TestDecode_InvalidUTF8(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		field string
	}{
		{"tag", "\x00\x00\x00\x05\xff\xfeXYa", "tag"},
		{"payload", "\x00\x00\x00\x06OUTP\xff\xfe", "payload"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Decode([]byte(test.frame))
			var encodingError *EncodingError
			if !errors.As(err, &encodingError) {
				t.Fatalf("expected EncodingError, got %v", err)
			}
			if encodingError.Field != test.field {
				t.Fatalf("Field = %q, want %q", encodingError.Field, test.field)
			}
		})
	}
}

func TestDecode_BadLengths(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
	}{
		{"short prefix", []byte{0x00, 0x00}},
		{"length below tag size", []byte("\x00\x00\x00\x03EXI")},
		{"length above maximum", []byte("\x00\x00\x23\x29OUTP")},
		{"truncated body", []byte("\x00\x00\x00\x10OUTPabc")},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Decode(test.frame)
			var sizeError *FrameSizeError
			if !errors.As(err, &sizeError) {
				t.Fatalf("expected FrameSizeError, got %v", err)
			}
		})
	}
}

func TestFrameLength(t *testing.T) {
	length, err := FrameLength([]byte{0x00, 0x00, 0x00, 0x09})
	if err != nil {
		t.Fatalf("FrameLength: %v", err)
	}
	if length != 9 {
		t.Fatalf("length = %d, want 9", length)
	}

	// 8996 + 4 = 9000 is the largest accepted frame.
	if _, err := FrameLength([]byte{0x00, 0x00, 0x23, 0x24}); err != nil {
		t.Fatalf("FrameLength(8996): %v", err)
	}
	if _, err := FrameLength([]byte{0x00, 0x00, 0x23, 0x25}); err == nil {
		t.Fatal("FrameLength(8997) should fail")
	}
}
