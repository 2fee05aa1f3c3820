// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dicom

import (
	"errors"
	"fmt"
)

// ErrorKind classifies fatal decoding errors.
type ErrorKind int

const (
	// MalformedMagic means the 4 bytes after the preamble are not "DICM".
	MalformedMagic ErrorKind = iota + 1
	// UnknownType means a VR could not be resolved from the stream or the dictionary.
	UnknownType
	// NestingMismatch means a delimiter or a length bound contradicts the open groups.
	NestingMismatch
	// PrematureEnd means input ended with pending reads or open groups.
	PrematureEnd
	// UpstreamError means the byte source itself failed.
	UpstreamError
	// UnsupportedSyntax means the transfer syntax cannot be framed by this decoder.
	UnsupportedSyntax
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedMagic:
		return "MalformedMagic"
	case UnknownType:
		return "UnknownType"
	case NestingMismatch:
		return "NestingMismatch"
	case PrematureEnd:
		return "PrematureEnd"
	case UpstreamError:
		return "UpstreamError"
	case UnsupportedSyntax:
		return "UnsupportedSyntax"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// DecodeError is the fatal error that terminates a decode session. After it is reported, the
// decoder ignores all further input.
type DecodeError struct {
	Kind ErrorKind
	// Offset is the stream position at which the error was detected.
	Offset int64
	Msg    string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v at offset %d: %s: %v", e.Kind, e.Offset, e.Msg, e.Err)
	}
	return fmt.Sprintf("%v at offset %d: %s", e.Kind, e.Offset, e.Msg)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err wraps a *DecodeError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr.Kind == kind
	}
	return false
}

func newDecodeError(kind ErrorKind, offset int64, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Kind: kind, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}
