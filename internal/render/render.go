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

// Package render writes decoder events and parsed data sets for dicomdump.
//
// Format selection rules:
//   - --format always wins
//   - otherwise table on a terminal and json elsewhere
//
// --no-color only affects the table format.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format represents an output format.
type Format string

// Supported formats.
const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
	FormatTable   Format = "table"
)

// ParseFormat parses a format string. The empty string is returned as is so that the caller can
// pick a default.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml":
		return FormatYAML, nil
	case "msgpack":
		return FormatMsgpack, nil
	case "table":
		return FormatTable, nil
	case "":
		return "", nil
	default:
		return "", fmt.Errorf("invalid format: %q (must be json, yaml, msgpack or table)", s)
	}
}

// DefaultFormat is table when f is a terminal and json otherwise.
func DefaultFormat(f *os.File) Format {
	if isTTY(f) {
		return FormatTable
	}
	return FormatJSON
}

// encoder writes a stream of values in one of the structured formats.
type encoder interface {
	Encode(v any) error
}

func newEncoder(format Format, w io.Writer) (encoder, error) {
	switch format {
	case FormatJSON:
		return json.NewEncoder(w), nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return enc, nil
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		return enc, nil
	}
	return nil, fmt.Errorf("format %s is not a structured format", format)
}

// isTTY returns true if the file is a terminal.
func isTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
