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

package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/GoogleCloudPlatform/go-dicom-stream/dicom"
)

const maxPreview = 64

// EventRecord is the serialized form of a dicom.Event.
type EventRecord struct {
	Kind   string `json:"kind" yaml:"kind"`
	Offset int64  `json:"offset" yaml:"offset"`
	Depth  int    `json:"depth" yaml:"depth"`
	Tag    string `json:"tag,omitempty" yaml:"tag,omitempty"`
	VR     string `json:"vr,omitempty" yaml:"vr,omitempty"`
	// Length is the declared value length, "undefined" for the sentinel.
	Length string `json:"length,omitempty" yaml:"length,omitempty"`
	Group  string `json:"group,omitempty" yaml:"group,omitempty"`
	// Size is the number of payload bytes of a payload-chunk.
	Size  int    `json:"size,omitempty" yaml:"size,omitempty"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	Data  []byte `json:"data,omitempty" yaml:"data,omitempty"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewEventRecord converts ev observed at nesting depth.
func NewEventRecord(ev dicom.Event, depth int) EventRecord {
	r := EventRecord{Kind: ev.Kind.String(), Offset: ev.Offset, Depth: depth}
	if ev.Group != 0 {
		r.Group = ev.Group.String()
	}
	e := ev.Element
	if e == nil {
		return r
	}
	r.Tag = e.Tag.String()
	switch ev.Kind {
	case dicom.ElementStart:
		r.VR = e.VR.String()
		r.Length = strconv.FormatUint(uint64(e.ValueLength), 10)
		if e.UndefinedLength() {
			r.Length = "undefined"
		}
	case dicom.PayloadChunk:
		r.Size = len(ev.Data)
		// a value read in one piece can be interpreted
		if e.Value != nil && e.Tag != dicom.ItemTag {
			r.Value = Preview(e.VR, e.Value, e.Syntax.ByteOrder)
		}
	}
	return r
}

// Preview renders the beginning of a value field for humans.
func Preview(vr dicom.VR, raw []byte, order binary.ByteOrder) string {
	if order == nil {
		order = binary.LittleEndian
	}
	v, err := dicom.DecodeValue(vr, raw, order)
	if err != nil {
		return fmt.Sprintf("<%d bytes>", len(raw))
	}

	var s string
	switch v := v.(type) {
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(v))
	case []string:
		s = strings.Join(v, "\\")
	default:
		s = strings.Trim(fmt.Sprint(v), "[]")
	}
	if utf8.RuneCountInString(s) > maxPreview {
		s = string([]rune(s)[:maxPreview]) + "..."
	}
	return s
}

// EventWriterOption configures an EventWriter.
type EventWriterOption func(*EventWriter)

// WithoutColor disables the styling of the table format.
func WithoutColor() EventWriterOption {
	return func(ew *EventWriter) {
		ew.noColor = true
	}
}

// WithPayloadData includes the payload bytes in structured formats.
func WithPayloadData() EventWriterOption {
	return func(ew *EventWriter) {
		ew.includeData = true
	}
}

// EventWriter is a dicom.Handler writing every event as it arrives.
type EventWriter struct {
	format      Format
	w           io.Writer
	enc         encoder
	styles      tableStyles
	noColor     bool
	includeData bool

	depth   int
	header  bool
	records int
	err     error
}

// NewEventWriter returns an EventWriter writing to w in format.
func NewEventWriter(w io.Writer, format Format, opts ...EventWriterOption) (*EventWriter, error) {
	ew := &EventWriter{format: format, w: w}
	for _, opt := range opts {
		opt(ew)
	}
	if format == FormatTable {
		ew.styles = newTableStyles(ew.noColor)
		return ew, nil
	}
	enc, err := newEncoder(format, w)
	if err != nil {
		return nil, err
	}
	ew.enc = enc
	return ew, nil
}

// HandleEvent writes ev.
func (ew *EventWriter) HandleEvent(ev dicom.Event) {
	depth := ew.depth
	switch {
	case ev.Kind == dicom.ElementStart && ev.Group != 0:
		ew.depth++
	case ev.Kind == dicom.GroupEnd && ev.Group != dicom.MetaGroup:
		ew.depth--
		depth = ew.depth
	}

	r := NewEventRecord(ev, depth)
	if ew.includeData && ev.Kind == dicom.PayloadChunk {
		r.Data = ev.Data
	}
	ew.write(r)
}

// HandleError writes the decoding error as a final record.
func (ew *EventWriter) HandleError(err error) {
	r := EventRecord{Kind: "error", Depth: ew.depth, Error: err.Error()}
	var de *dicom.DecodeError
	if errors.As(err, &de) {
		r.Offset = de.Offset
	}
	ew.write(r)
}

// Records returns the number of records written.
func (ew *EventWriter) Records() int {
	return ew.records
}

// Close flushes the output and returns the first write error.
func (ew *EventWriter) Close() error {
	if c, ok := ew.enc.(io.Closer); ok && ew.err == nil {
		ew.err = c.Close()
	}
	return ew.err
}

func (ew *EventWriter) write(r EventRecord) {
	if ew.err != nil {
		return
	}
	ew.records++
	if ew.format != FormatTable {
		ew.err = ew.enc.Encode(r)
		return
	}
	if !ew.header {
		ew.header = true
		if _, ew.err = fmt.Fprintln(ew.w, ew.styles.header.Render(tableHeader())); ew.err != nil {
			return
		}
	}
	_, ew.err = fmt.Fprintln(ew.w, ew.tableRow(r))
}

func tableHeader() string {
	return fmt.Sprintf("%-*s%-*s%-*s%-*s%-*s%s",
		offsetWidth, "OFFSET", kindWidth, "KIND", tagWidth, "TAG", vrWidth, "VR", lengthWidth, "LENGTH", "VALUE")
}

func (ew *EventWriter) tableRow(r EventRecord) string {
	s := ew.styles
	if r.Kind == "error" {
		return s.offset.Render(strconv.FormatInt(r.Offset, 10)) + s.failure.Render("error: "+r.Error)
	}

	indent := strings.Repeat("  ", r.Depth)
	tag := s.tag.Width(tagWidth + len(indent)).Render(indent + r.Tag)
	value := r.Value
	switch {
	case r.Kind == "payload-chunk" && value == "":
		value = fmt.Sprintf("<%d bytes>", r.Size)
	case r.Group != "":
		value = r.Group
	}
	return s.offset.Render(strconv.FormatInt(r.Offset, 10)) +
		s.kindStyle(r.Kind).Render(r.Kind) +
		tag +
		s.vr.Render(r.VR) +
		s.length.Render(r.Length) +
		s.value.Render(value)
}
