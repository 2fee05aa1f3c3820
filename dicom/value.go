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
	"fmt"
	"strings"
	"unicode"
)

// DecodeValue converts a raw value field to Go values according to vr. The concrete type of the
// result is
//
//	AT: []DataElementTag
//	FD, OD: []float64
//	FL, OF: []float32
//	OL, UL: []uint32
//	OV, UV: []uint64
//	OW, US: []uint16
//	SL: []int32
//	SS: []int16
//	SV: []int64
//	OB, UN: []byte
//	text VRs: []string
//
// SQ and the structural elements have no value field and return an error.
func DecodeValue(vr VR, raw []byte, order binary.ByteOrder) (interface{}, error) {
	info := vr.info()
	switch info.kind {
	case rawPayload:
		return raw, nil
	case delimitedString:
		return decodeText(raw, info), nil
	case fixedWidthNumeric:
		return decodeNumbers(vr, raw, order, info.width)
	}
	return nil, fmt.Errorf("vr %v has no value field", vr)
}

func decodeNumbers(vr VR, raw []byte, order binary.ByteOrder, width int) (interface{}, error) {
	if vr == ATVR {
		// a tag is a pair of 16 bit numbers in the element's byte order
		width = 4
	}
	if len(raw)%width != 0 {
		return nil, fmt.Errorf("value length %d of %v is not a multiple of %d", len(raw), vr, width)
	}
	n := len(raw) / width

	var data interface{}
	switch vr {
	case ATVR:
		data = make([]uint16, n*2)
	case FDVR, ODVR:
		data = make([]float64, n)
	case FLVR, OFVR:
		data = make([]float32, n)
	case OLVR, ULVR:
		data = make([]uint32, n)
	case OVVR, UVVR:
		data = make([]uint64, n)
	case OWVR, USVR:
		data = make([]uint16, n)
	case SLVR:
		data = make([]int32, n)
	case SSVR:
		data = make([]int16, n)
	case SVVR:
		data = make([]int64, n)
	default:
		return nil, fmt.Errorf("unexpected numeric vr %v", vr)
	}
	if err := binary.Read(bytes.NewReader(raw), order, data); err != nil {
		return nil, fmt.Errorf("reading %v values: %v", vr, err)
	}

	if vr == ATVR {
		pairs := data.([]uint16)
		tags := make([]DataElementTag, n)
		for i := range tags {
			tags[i] = NewTag(pairs[2*i], pairs[2*i+1])
		}
		return tags, nil
	}
	return data, nil
}

func decodeText(raw []byte, info vrInfo) []string {
	if len(raw) == 0 {
		return []string{}
	}
	s := rawString(raw)

	var values []string
	if info.separator != 0 {
		values = strings.Split(s, string(info.separator))
	} else {
		values = []string{s}
	}
	for i, v := range values {
		values[i] = trimText(v, info.trim)
	}
	return values
}

func trimText(s string, rule trimRule) string {
	switch rule {
	case trimTrailing:
		return strings.TrimRightFunc(s, unicode.IsSpace)
	case trimTrailingNull:
		return strings.TrimRight(s, "\x00 ")
	}
	return strings.TrimFunc(s, unicode.IsSpace)
}

// swapByteOrder returns the value field of a fixed width numeric VR with the byte order of every
// number reversed. Other VRs are byte order independent and returned as is.
func swapByteOrder(vr VR, raw []byte) []byte {
	info := vr.info()
	if info.kind != fixedWidthNumeric || info.width < 2 {
		return raw
	}
	swapped := make([]byte, len(raw))
	copy(swapped, raw)
	for i := 0; i+info.width <= len(swapped); i += info.width {
		word := swapped[i : i+info.width]
		for l, r := 0, len(word)-1; l < r; l, r = l+1, r-1 {
			word[l], word[r] = word[r], word[l]
		}
	}
	return swapped
}

// padValue pads an odd length value field to even length, with a space for text and a NUL for UI
// and binary values.
func padValue(vr VR, raw []byte) []byte {
	if len(raw)%2 == 0 {
		return raw
	}
	pad := byte(0)
	if info := vr.info(); info.kind == delimitedString && info.trim != trimTrailingNull {
		pad = ' '
	}
	padded := make([]byte, len(raw)+1)
	copy(padded, raw)
	padded[len(raw)] = pad
	return padded
}
