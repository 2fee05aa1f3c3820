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
	"bytes"
	"fmt"
	"strings"
	"testing"
)

const (
	patientNameTag           DataElementTag = 0x00100010
	patientIDTag             DataElementTag = 0x00100020
	referencedStudySequence  DataElementTag = 0x00081110
	referencedSOPInstanceUID DataElementTag = 0x00081155
	rowsTag                  DataElementTag = 0x00280010
	privateUnknownTag        DataElementTag = 0x00091010
)

// streamBuilder assembles test streams element by element.
type streamBuilder struct {
	buf bytes.Buffer
	dw  *dcmWriter
}

func newStreamBuilder(syntax TransferSyntax) *streamBuilder {
	b := &streamBuilder{}
	b.dw = &dcmWriter{&b.buf, syntax}
	return b
}

// element writes a header with the length of value followed by value.
func (b *streamBuilder) element(tag DataElementTag, vr VR, value []byte) *streamBuilder {
	return b.header(tag, vr, uint32(len(value))).raw(value)
}

func (b *streamBuilder) header(tag DataElementTag, vr VR, length uint32) *streamBuilder {
	if err := b.dw.Header(tag, vr, length); err != nil {
		panic(err)
	}
	return b
}

func (b *streamBuilder) delimiter(tag DataElementTag) *streamBuilder {
	if err := b.dw.Delimiter(tag); err != nil {
		panic(err)
	}
	return b
}

func (b *streamBuilder) raw(p []byte) *streamBuilder {
	b.buf.Write(p)
	return b
}

func (b *streamBuilder) bytes() []byte {
	return append([]byte(nil), b.buf.Bytes()...)
}

// fileHeader returns a preamble, the prefix and a meta group holding the given transfer syntax
// UID, or no transfer syntax element when uid is empty.
func fileHeader(uid string) []byte {
	meta := newStreamBuilder(ExplicitVRLittleEndian)
	if uid != "" {
		meta.element(TransferSyntaxUIDTag, UIVR, padValue(UIVR, []byte(uid)))
	}
	group := meta.bytes()

	b := newStreamBuilder(ExplicitVRLittleEndian)
	b.raw(make([]byte, preambleLength)).raw([]byte(dicmPrefix))
	b.header(FileMetaInformationGroupLengthTag, ULVR, 4)
	if err := b.dw.UInt32(uint32(len(group))); err != nil {
		panic(err)
	}
	return b.raw(group).bytes()
}

// decodeChunks decodes data split into chunks of size n (all at once when n <= 0).
func decodeChunks(data []byte, n int, opts ...DecodeOption) *Recorder {
	rec := &Recorder{}
	d := NewDecoder(rec, opts...)
	if n <= 0 {
		n = len(data)
	}
	for len(data) > 0 {
		size := n
		if size > len(data) {
			size = len(data)
		}
		if _, err := d.Write(data[:size]); err != nil {
			break
		}
		data = data[size:]
	}
	d.Close()
	return rec
}

// summarize renders events in a compact form independent of how payloads were chunked: the
// payload chunks of one element are coalesced.
func summarize(events []Event) []string {
	var out []string
	var payload []byte
	var payloadTag DataElementTag
	flush := func() {
		if payload != nil {
			out = append(out, fmt.Sprintf("payload %v %q", payloadTag, payload))
			payload = nil
		}
	}
	for _, ev := range events {
		if ev.Kind == PayloadChunk {
			if payload != nil && payloadTag != ev.Element.Tag {
				flush()
			}
			payloadTag = ev.Element.Tag
			payload = append(payload, ev.Data...)
			if payload == nil {
				payload = []byte{}
			}
			continue
		}
		flush()
		switch ev.Kind {
		case ElementStart:
			s := fmt.Sprintf("start %v %v", ev.Element.Tag, ev.Element.VR)
			if ev.Group != 0 {
				s += " " + ev.Group.String()
			}
			out = append(out, s)
		case GroupEnd:
			out = append(out, fmt.Sprintf("end %v %v", ev.Group, ev.Element.Tag))
		case StreamEnd:
			out = append(out, "stream-end")
		}
	}
	flush()
	return out
}

func diffSummaries(got, want []string) string {
	if strings.Join(got, "\n") == strings.Join(want, "\n") {
		return ""
	}
	return fmt.Sprintf("got:\n  %s\nwant:\n  %s", strings.Join(got, "\n  "), strings.Join(want, "\n  "))
}

func assertKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	if !IsKind(err, kind) {
		t.Fatalf("got error %v, want kind %v", err, kind)
	}
}
