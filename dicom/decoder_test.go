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
	"encoding/binary"
	"errors"
	"reflect"
	"testing"
)

var (
	sopInstanceItem = newStreamBuilder(ExplicitVRLittleEndian).
			element(referencedSOPInstanceUID, UIVR, padValue(UIVR, []byte("1.2.3.4"))).
			bytes()

	definedSequence = newStreamBuilder(ExplicitVRLittleEndian).
			header(referencedStudySequence, SQVR, uint32(8+len(sopInstanceItem))).
			header(ItemTag, NoVR, uint32(len(sopInstanceItem))).raw(sopInstanceItem).
			bytes()

	undefinedSequence = newStreamBuilder(ExplicitVRLittleEndian).
				header(referencedStudySequence, SQVR, UndefinedLength).
				header(ItemTag, NoVR, UndefinedLength).raw(sopInstanceItem).
				delimiter(ItemDelimitationItemTag).
				delimiter(SequenceDelimitationItemTag).
				bytes()

	encapsulatedPixelData = newStreamBuilder(ExplicitVRLittleEndian).
				header(PixelDataTag, OBVR, UndefinedLength).
				header(ItemTag, NoVR, 0).
				header(ItemTag, NoVR, 4).raw([]byte{1, 2, 3, 4}).
				delimiter(SequenceDelimitationItemTag).
				bytes()

	patientName = newStreamBuilder(ExplicitVRLittleEndian).
			element(patientNameTag, PNVR, []byte("Doe^John")).
			bytes()
)

func explicitLittleFile(parts ...[]byte) []byte {
	return append(fileHeader(ExplicitVRLittleEndianUID), bytes.Join(parts, nil)...)
}

func TestDecodeEndToEnd(t *testing.T) {
	rec := decodeChunks(explicitLittleFile(patientName), 0)
	if rec.Err != nil {
		t.Fatalf("unexpected error: %v", rec.Err)
	}

	want := []string{
		"start (0002,0000) UL",
		`payload (0002,0000) "\x1c\x00\x00\x00"`,
		"start (0002,0010) UI",
		`payload (0002,0010) "1.2.840.10008.1.2.1\x00"`,
		"end meta (0002,0000)",
		"start (0010,0010) PN",
		`payload (0010,0010) "Doe^John"`,
		"stream-end",
	}
	if diff := diffSummaries(summarize(rec.Events), want); diff != "" {
		t.Fatalf("unexpected events:\n%s", diff)
	}

	name := rec.Events[5].Element
	if name.Offset != 132+12+28 || name.ValueOffset != name.Offset+8 {
		t.Fatalf("offsets of %v => (%d, %d), want (172, 180)", name, name.Offset, name.ValueOffset)
	}
	if !bytes.Equal(name.Value, []byte("Doe^John")) {
		t.Fatalf("Value => %q, want %q", name.Value, "Doe^John")
	}
}

func TestDecodeChunkIndependence(t *testing.T) {
	overrideDict := syntaxOverride{StandardDictionary, "1.2.3.999", ImplicitVRBigEndian}
	implicitBig := newStreamBuilder(ImplicitVRBigEndian).
		element(patientNameTag, PNVR, []byte("Doe^John")).
		header(referencedStudySequence, SQVR, UndefinedLength).
		header(ItemTag, NoVR, 16).
		raw(newStreamBuilder(ImplicitVRBigEndian).element(referencedSOPInstanceUID, UIVR, []byte("1.2.3.4\x00")).bytes()).
		delimiter(SequenceDelimitationItemTag).
		bytes()

	testCases := []struct {
		name string
		data []byte
		opts []DecodeOption
	}{
		{"defined length sequence", explicitLittleFile(definedSequence, patientName), nil},
		{"undefined length sequence", explicitLittleFile(undefinedSequence, patientName), nil},
		{"encapsulated pixel data", explicitLittleFile(patientName, encapsulatedPixelData), nil},
		{"streamed value", explicitLittleFile(patientName, definedSequence),
			[]DecodeOption{WithStreamThreshold(4)}},
		{"implicit little endian", append(fileHeader(ImplicitVRLittleEndianUID),
			newStreamBuilder(ImplicitVRLittleEndian).
				element(patientNameTag, PNVR, []byte("Doe^John")).
				header(referencedStudySequence, SQVR, UndefinedLength).
				header(ItemTag, NoVR, 16).
				raw(newStreamBuilder(ImplicitVRLittleEndian).element(referencedSOPInstanceUID, UIVR, []byte("1.2.3.4\x00")).bytes()).
				delimiter(SequenceDelimitationItemTag).
				bytes()...), nil},
		{"implicit big endian", append(fileHeader("1.2.3.999"), implicitBig...),
			[]DecodeOption{WithDictionary(overrideDict)}},
		{"bare data set", append(append([]byte(nil), definedSequence...), patientName...),
			[]DecodeOption{WithoutFileHeader()}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			whole := decodeChunks(tc.data, 0, tc.opts...)
			if whole.Err != nil {
				t.Fatalf("unexpected error: %v", whole.Err)
			}
			want := summarize(whole.Events)
			if want[len(want)-1] != "stream-end" {
				t.Fatalf("last event %q, want stream-end", want[len(want)-1])
			}
			for _, size := range []int{1, 2, 7} {
				rec := decodeChunks(tc.data, size, tc.opts...)
				if rec.Err != nil {
					t.Fatalf("chunk size %d: unexpected error: %v", size, rec.Err)
				}
				if diff := diffSummaries(summarize(rec.Events), want); diff != "" {
					t.Fatalf("chunk size %d: unexpected events:\n%s", size, diff)
				}
			}
		})
	}
}

func TestDecodeHeaders(t *testing.T) {
	// see http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.2 for byte
	// structure
	testCases := []struct {
		name        string
		bytes       []byte
		syntax      TransferSyntax
		tag         DataElementTag
		vr          VR
		length      uint32
		valueOffset int64
	}{
		{
			"16 bit length explicit little endian",
			[]byte{0x10, 0x00, 0x10, 0x00, 'P', 'N', 0x08, 0x00, 'D', 'o', 'e', '^', 'J', 'o', 'h', 'n'},
			ExplicitVRLittleEndian, patientNameTag, PNVR, 8, 8,
		},
		{
			"32 bit length explicit little endian",
			[]byte{0x09, 0x00, 0x10, 0x10, 'O', 'B', 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0xAA, 0xBB},
			ExplicitVRLittleEndian, privateUnknownTag, OBVR, 2, 12,
		},
		{
			"16 bit length explicit big endian",
			[]byte{0x00, 0x28, 0x00, 0x10, 'U', 'S', 0x00, 0x02, 0x01, 0x00},
			ExplicitVRBigEndian, rowsTag, USVR, 2, 8,
		},
		{
			"32 bit length explicit big endian",
			[]byte{0x7F, 0xE0, 0x00, 0x10, 'O', 'W', 0x00, 0x00, 0x00, 0x00, 0x00, 0x02, 0x01, 0x02},
			ExplicitVRBigEndian, PixelDataTag, OWVR, 2, 12,
		},
		{
			"implicit little endian",
			[]byte{0x10, 0x00, 0x20, 0x00, 0x04, 0x00, 0x00, 0x00, '1', '2', '3', '4'},
			ImplicitVRLittleEndian, patientIDTag, LOVR, 4, 8,
		},
		{
			"implicit big endian",
			[]byte{0x00, 0x10, 0x00, 0x20, 0x00, 0x00, 0x00, 0x04, '1', '2', '3', '4'},
			ImplicitVRBigEndian, patientIDTag, LOVR, 4, 8,
		},
		{
			"undefined length sequence",
			[]byte{0x08, 0x00, 0x10, 0x11, 'S', 'Q', 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF,
				0xFE, 0xFF, 0xDD, 0xE0, 0x00, 0x00, 0x00, 0x00},
			ExplicitVRLittleEndian, referencedStudySequence, SQVR, UndefinedLength, 12,
		},
		{
			"16 bit length field is never undefined",
			append([]byte{0x10, 0x00, 0x10, 0x00, 'P', 'N', 0xFF, 0xFF}, bytes.Repeat([]byte{' '}, 0xFFFF)...),
			ExplicitVRLittleEndian, patientNameTag, PNVR, 0xFFFF, 8,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := decodeChunks(tc.bytes, 3, WithoutFileHeader(), WithDefaultSyntax(tc.syntax))
			if rec.Err != nil {
				t.Fatalf("unexpected error: %v", rec.Err)
			}
			got := rec.Events[0].Element
			want := &DataElement{
				Tag:         tc.tag,
				VR:          tc.vr,
				ValueLength: tc.length,
				ValueOffset: tc.valueOffset,
				Syntax:      tc.syntax,
				Value:       got.Value,
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("decoding %v => %+v, want %+v", tc.bytes[:8], got, want)
			}
			if last := rec.Events[len(rec.Events)-1]; last.Kind != StreamEnd {
				t.Fatalf("last event %v, want stream-end", last)
			}
		})
	}
}

// syntaxOverride maps one extra UID to a transfer syntax.
type syntaxOverride struct {
	Dictionary
	uid    string
	syntax TransferSyntax
}

func (d syntaxOverride) TransferSyntax(uid string) (TransferSyntax, bool) {
	if uid == d.uid {
		return d.syntax, true
	}
	return d.Dictionary.TransferSyntax(uid)
}

func TestDecodeSyntaxSwitch(t *testing.T) {
	rows := []byte{0x02, 0x00}
	testCases := []struct {
		name   string
		uid    string
		syntax TransferSyntax
		rows   []uint16
	}{
		{"implicit little endian", ImplicitVRLittleEndianUID, ImplicitVRLittleEndian, []uint16{2}},
		{"explicit big endian", ExplicitVRBigEndianUID, ExplicitVRBigEndian, []uint16{512}},
		{"implicit big endian", "1.2.3.999", ImplicitVRBigEndian, []uint16{512}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := append(fileHeader(tc.uid), newStreamBuilder(tc.syntax).element(rowsTag, USVR, rows).bytes()...)
			rec := &Recorder{}
			d := NewDecoder(rec, WithDictionary(syntaxOverride{StandardDictionary, "1.2.3.999", ImplicitVRBigEndian}))

			var metaEnd int
			for i, b := range data {
				d.Write([]byte{b})
				if metaEnd == 0 && len(rec.Events) > 0 && rec.Events[len(rec.Events)-1].Kind == GroupEnd {
					metaEnd = i
					if d.Syntax() != tc.syntax {
						t.Fatalf("syntax at meta group end => %v, want %v", d.Syntax(), tc.syntax)
					}
				}
			}
			if err := d.Close(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if metaEnd != len(fileHeader(tc.uid))-1 {
				t.Fatalf("meta group ended at byte %d, want %d", metaEnd, len(fileHeader(tc.uid))-1)
			}

			for _, ev := range rec.Events {
				if ev.Kind != ElementStart {
					continue
				}
				want := tc.syntax
				if ev.Element.Tag.IsMetadataElement() {
					want = ExplicitVRLittleEndian
				}
				if ev.Element.Syntax != want {
					t.Fatalf("%v decoded with %v, want %v", ev.Element.Tag, ev.Element.Syntax, want)
				}
			}

			last := rec.Events[len(rec.Events)-3].Element
			if last.Tag != rowsTag || last.VR != USVR {
				t.Fatalf("last element %v, want %v US", last, rowsTag)
			}
			got, err := DecodeValue(last.VR, last.Value, last.Syntax.ByteOrder)
			if err != nil {
				t.Fatalf("DecodeValue => %v", err)
			}
			if !reflect.DeepEqual(got, tc.rows) {
				t.Fatalf("rows => %v, want %v", got, tc.rows)
			}
		})
	}
}

func TestDecodeMissingTransferSyntax(t *testing.T) {
	data := append(fileHeader(""), newStreamBuilder(ImplicitVRLittleEndian).
		element(patientNameTag, PNVR, []byte("Doe^John")).bytes()...)

	rec := decodeChunks(data, 0, WithDefaultSyntax(ImplicitVRLittleEndian))
	if rec.Err != nil {
		t.Fatalf("unexpected error: %v", rec.Err)
	}
	want := []string{
		"start (0002,0000) UL",
		`payload (0002,0000) "\x00\x00\x00\x00"`,
		"end meta (0002,0000)",
		"start (0010,0010) PN",
		`payload (0010,0010) "Doe^John"`,
		"stream-end",
	}
	if diff := diffSummaries(summarize(rec.Events), want); diff != "" {
		t.Fatalf("unexpected events:\n%s", diff)
	}
}

func TestDecodeUndefinedSequenceClosesOnDelimiter(t *testing.T) {
	rec := decodeChunks(explicitLittleFile(undefinedSequence, patientName), 0)
	if rec.Err != nil {
		t.Fatalf("unexpected error: %v", rec.Err)
	}
	want := []string{
		"start (0008,1110) SQ sequence",
		"start (FFFE,E000) NoVR item",
		"start (0008,1155) UI",
		`payload (0008,1155) "1.2.3.4\x00"`,
		"end item (FFFE,E000)",
		"end sequence (0008,1110)",
		"start (0010,0010) PN",
		`payload (0010,0010) "Doe^John"`,
		"stream-end",
	}
	got := summarize(rec.Events)[5:]
	if diff := diffSummaries(got, want); diff != "" {
		t.Fatalf("unexpected events:\n%s", diff)
	}

	seqEnd := rec.Events[len(rec.Events)-4]
	delimiterEnd := int64(len(fileHeader(ExplicitVRLittleEndianUID)) + len(undefinedSequence))
	if seqEnd.Kind != GroupEnd || seqEnd.Offset != delimiterEnd {
		t.Fatalf("sequence end %v at offset %d, want group-end at %d", seqEnd, seqEnd.Offset, delimiterEnd)
	}
}

func TestDecodeDefinedSequence(t *testing.T) {
	rec := decodeChunks(explicitLittleFile(definedSequence, patientName), 0)
	if rec.Err != nil {
		t.Fatalf("unexpected error: %v", rec.Err)
	}
	want := []string{
		"start (0008,1110) SQ sequence",
		"start (FFFE,E000) NoVR item",
		"start (0008,1155) UI",
		`payload (0008,1155) "1.2.3.4\x00"`,
		"end item (FFFE,E000)",
		"end sequence (0008,1110)",
		"start (0010,0010) PN",
		`payload (0010,0010) "Doe^John"`,
		"stream-end",
	}
	if diff := diffSummaries(summarize(rec.Events)[5:], want); diff != "" {
		t.Fatalf("unexpected events:\n%s", diff)
	}
}

func TestDecodeEncapsulated(t *testing.T) {
	t.Run("fragments", func(t *testing.T) {
		rec := decodeChunks(explicitLittleFile(encapsulatedPixelData), 0)
		if rec.Err != nil {
			t.Fatalf("unexpected error: %v", rec.Err)
		}
		want := []string{
			"start (7FE0,0010) OB encapsulated",
			"start (FFFE,E000) NoVR",
			"start (FFFE,E000) NoVR",
			`payload (FFFE,E000) "\x01\x02\x03\x04"`,
			"end encapsulated (7FE0,0010)",
			"stream-end",
		}
		if diff := diffSummaries(summarize(rec.Events)[5:], want); diff != "" {
			t.Fatalf("unexpected events:\n%s", diff)
		}
	})

	t.Run("nested", func(t *testing.T) {
		rec := decodeChunks(explicitLittleFile(encapsulatedPixelData), 0, WithEncapsulation(EncapsulateNested))
		if rec.Err == nil {
			t.Fatalf("got no error for fragment bytes decoded as elements")
		}
		nested := explicitLittleFile(newStreamBuilder(ExplicitVRLittleEndian).
			header(PixelDataTag, OBVR, UndefinedLength).
			header(ItemTag, NoVR, uint32(len(patientName))).raw(patientName).
			delimiter(SequenceDelimitationItemTag).
			bytes())
		rec = decodeChunks(nested, 0, WithEncapsulation(EncapsulateNested))
		if rec.Err != nil {
			t.Fatalf("unexpected error: %v", rec.Err)
		}
		want := []string{
			"start (7FE0,0010) OB encapsulated",
			"start (FFFE,E000) NoVR item",
			"start (0010,0010) PN",
			`payload (0010,0010) "Doe^John"`,
			"end item (FFFE,E000)",
			"end encapsulated (7FE0,0010)",
			"stream-end",
		}
		if diff := diffSummaries(summarize(rec.Events)[5:], want); diff != "" {
			t.Fatalf("unexpected events:\n%s", diff)
		}
	})
}

func TestDecodeStreamedValue(t *testing.T) {
	value := bytes.Repeat([]byte("ab"), 10)
	data := explicitLittleFile(newStreamBuilder(ExplicitVRLittleEndian).element(patientNameTag, PNVR, value).bytes())

	rec := decodeChunks(data, 6, WithStreamThreshold(8))
	if rec.Err != nil {
		t.Fatalf("unexpected error: %v", rec.Err)
	}
	var chunks int
	var got []byte
	for _, ev := range rec.Events {
		if ev.Kind == PayloadChunk && ev.Element.Tag == patientNameTag {
			chunks++
			got = append(got, ev.Data...)
			if int64(len(got)) != ev.Offset+int64(len(ev.Data))-ev.Element.ValueOffset {
				t.Fatalf("chunk offset %d does not follow %d bytes of value", ev.Offset, len(got)-len(ev.Data))
			}
		}
	}
	if chunks < 2 {
		t.Fatalf("value delivered in %d chunks, want several", chunks)
	}
	if !bytes.Equal(got, value) {
		t.Fatalf("streamed value => %q, want %q", got, value)
	}
}

func TestDecodeTruncated(t *testing.T) {
	data := explicitLittleFile(undefinedSequence, patientName)
	seqStart := len(fileHeader(ExplicitVRLittleEndianUID))
	seqEnd := seqStart + len(undefinedSequence)

	for cut := 1; cut < len(data); cut++ {
		rec := decodeChunks(data[:cut], 5)
		insideSequence := cut > seqStart && cut < seqEnd
		atBoundary := cut == seqStart || cut == seqEnd
		switch {
		case atBoundary:
			if rec.Err != nil {
				t.Fatalf("cut at element boundary %d: unexpected error %v", cut, rec.Err)
			}
		case insideSequence || cut < seqStart:
			assertKind(t, rec.Err, PrematureEnd)
			for _, ev := range rec.Events {
				if ev.Kind == StreamEnd {
					t.Fatalf("cut at %d: stream-end after truncation", cut)
				}
			}
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	badPrefix := fileHeader(ExplicitVRLittleEndianUID)
	copy(badPrefix[preambleLength:], "DICN")

	testCases := []struct {
		name string
		data []byte
		opts []DecodeOption
		kind ErrorKind
	}{
		{"bad prefix", badPrefix, nil, MalformedMagic},
		{"meta without group length", append(append(make([]byte, preambleLength), dicmPrefix...), patientName...),
			nil, MalformedMagic},
		{"unknown explicit vr", explicitLittleFile([]byte{0x10, 0x00, 0x10, 0x00, 'Z', 'Z', 0x00, 0x00}), nil, UnknownType},
		{"unknown implicit vr", newStreamBuilder(ImplicitVRLittleEndian).element(0x00291010, UNVR, []byte{1, 2}).bytes(),
			[]DecodeOption{WithoutFileHeader(), WithDefaultSyntax(ImplicitVRLittleEndian)}, UnknownType},
		{"item delimiter at top level", explicitLittleFile(newStreamBuilder(ExplicitVRLittleEndian).
			delimiter(ItemDelimitationItemTag).bytes()), nil, NestingMismatch},
		{"item outside sequence", explicitLittleFile(newStreamBuilder(ExplicitVRLittleEndian).
			header(ItemTag, NoVR, 0).bytes()), nil, NestingMismatch},
		{"element inside sequence", explicitLittleFile(newStreamBuilder(ExplicitVRLittleEndian).
			header(referencedStudySequence, SQVR, UndefinedLength).raw(patientName).bytes()), nil, NestingMismatch},
		{"sequence delimiter closing item", explicitLittleFile(newStreamBuilder(ExplicitVRLittleEndian).
			header(referencedStudySequence, SQVR, UndefinedLength).
			header(ItemTag, NoVR, UndefinedLength).
			delimiter(SequenceDelimitationItemTag).bytes()), nil, NestingMismatch},
		{"delimiter closing bounded item", explicitLittleFile(newStreamBuilder(ExplicitVRLittleEndian).
			header(referencedStudySequence, SQVR, UndefinedLength).
			header(ItemTag, NoVR, 8).
			delimiter(ItemDelimitationItemTag).bytes()), nil, NestingMismatch},
		{"element overruns item", explicitLittleFile(newStreamBuilder(ExplicitVRLittleEndian).
			header(referencedStudySequence, SQVR, UndefinedLength).
			header(ItemTag, NoVR, 10).raw(patientName).bytes()), nil, NestingMismatch},
		{"delimiter with length", explicitLittleFile(newStreamBuilder(ExplicitVRLittleEndian).
			header(referencedStudySequence, SQVR, UndefinedLength).
			header(SequenceDelimitationItemTag, NoVR, 4).raw([]byte{0, 0, 0, 0}).bytes()), nil, NestingMismatch},
		{"deflated syntax", fileHeader(DeflatedExplicitVRLittleEndianUID), nil, UnsupportedSyntax},
		{"open sequence at end", explicitLittleFile(newStreamBuilder(ExplicitVRLittleEndian).
			header(referencedStudySequence, SQVR, UndefinedLength).bytes()), nil, PrematureEnd},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := decodeChunks(tc.data, 0, tc.opts...)
			assertKind(t, rec.Err, tc.kind)
			for _, ev := range rec.Events {
				if ev.Kind == StreamEnd {
					t.Fatalf("stream-end emitted after error")
				}
			}
		})
	}
}

func TestDecodeUnknownVRAsUN(t *testing.T) {
	data := newStreamBuilder(ImplicitVRLittleEndian).element(0x00291010, UNVR, []byte{1, 2}).bytes()
	rec := decodeChunks(data, 0, WithoutFileHeader(), WithDefaultSyntax(ImplicitVRLittleEndian), WithUnknownVRAsUN())
	if rec.Err != nil {
		t.Fatalf("unexpected error: %v", rec.Err)
	}
	if vr := rec.Events[0].Element.VR; vr != UNVR {
		t.Fatalf("VR => %v, want UN", vr)
	}
}

func TestDecoderAbort(t *testing.T) {
	rec := &Recorder{}
	d := NewDecoder(rec)
	data := explicitLittleFile(patientName)
	if _, err := d.Write(data[:150]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events := len(rec.Events)

	upstream := errors.New("connection reset")
	d.Abort(upstream)
	assertKind(t, rec.Err, UpstreamError)
	if !errors.Is(rec.Err, upstream) {
		t.Fatalf("error %v does not wrap %v", rec.Err, upstream)
	}

	if _, err := d.Write(data[150:]); err != rec.Err {
		t.Fatalf("Write after abort => %v, want %v", err, rec.Err)
	}
	if err := d.Close(); err != rec.Err {
		t.Fatalf("Close after abort => %v, want %v", err, rec.Err)
	}
	if len(rec.Events) != events {
		t.Fatalf("events emitted after abort: %v", rec.Events[events:])
	}
	if !d.Finished() {
		t.Fatalf("decoder not finished after abort")
	}
}

func TestDecoderHandlerFuncs(t *testing.T) {
	var kinds []EventKind
	h := HandlerFuncs{OnEvent: func(ev Event) { kinds = append(kinds, ev.Kind) }}
	d := NewDecoder(h, WithoutFileHeader())
	d.Write(patientName)
	if err := d.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []EventKind{ElementStart, PayloadChunk, StreamEnd}; !reflect.DeepEqual(kinds, want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	if _, err := d.Write([]byte{0}); err != ErrClosed {
		t.Fatalf("Write after Close => %v, want %v", err, ErrClosed)
	}
}

func TestDecodeValueByteOrder(t *testing.T) {
	testCases := []struct {
		order binary.ByteOrder
		want  []uint32
	}{
		{binary.LittleEndian, []uint32{0x04030201}},
		{binary.BigEndian, []uint32{0x01020304}},
	}
	for _, tc := range testCases {
		got, err := DecodeValue(ULVR, []byte{1, 2, 3, 4}, tc.order)
		if err != nil {
			t.Fatalf("DecodeValue => %v", err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("DecodeValue(UL, [1 2 3 4], %v) => %#x, want %#x", tc.order, got, tc.want)
		}
	}
}
