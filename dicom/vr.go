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
	"fmt"
)

// payloadKind groups VRs that share the same interpretation of their value field.
type payloadKind int

const (
	// rawPayload is for value fields handed out as uninterpreted bytes (OB, UN)
	rawPayload payloadKind = iota

	// fixedWidthNumeric is for value fields made of binary numbers of a single width
	fixedWidthNumeric

	// delimitedString is for value fields holding text, optionally split on a separator
	delimitedString

	// noPayload is for SQ and the structural item/delimiter elements
	noPayload
)

// trimRule describes which padding is insignificant for a text VR.
type trimRule int

const (
	trimBoth trimRule = iota
	trimTrailing
	trimTrailingNull
)

// UndefinedLength as specified
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.1
const UndefinedLength = 0xffffffff

// VR models the DICOM Value representations (VR)
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2
//
// VR is a closed set; per-VR behaviour is looked up in vrTable rather than dispatched on types.
type VR uint8

// VR list obtained from
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2
const (
	invalidVR VR = iota
	AEVR
	ASVR
	ATVR
	CSVR
	DAVR
	DSVR
	DTVR
	FDVR
	FLVR
	ISVR
	LOVR
	LTVR
	OBVR
	ODVR
	OFVR
	OLVR
	OVVR
	OWVR
	PNVR
	SHVR
	SLVR
	SQVR
	SSVR
	STVR
	SVVR
	TMVR
	UCVR
	UIVR
	ULVR
	UNVR
	URVR
	USVR
	UTVR
	UVVR

	// NoVR is carried by the item and delimiter elements, which never have a VR in the stream.
	NoVR
)

type vrInfo struct {
	name string

	// longLength is true when the explicit VR encoding uses 2 reserved bytes followed by a 32 bit
	// length. See http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.2
	longLength bool

	kind payloadKind

	// width is the size in bytes of a single number for fixedWidthNumeric VRs
	width int

	// separator splits multiple values of a delimitedString VR. 0 means single valued.
	separator byte

	trim trimRule
}

var vrTable = [...]vrInfo{
	invalidVR: {name: "??"},
	AEVR:      {name: "AE", kind: delimitedString, separator: '\\'},
	ASVR:      {name: "AS", kind: delimitedString, separator: '\\'},
	ATVR:      {name: "AT", kind: fixedWidthNumeric, width: 2},
	CSVR:      {name: "CS", kind: delimitedString, separator: '\\'},
	DAVR:      {name: "DA", kind: delimitedString, separator: '\\'},
	DSVR:      {name: "DS", kind: delimitedString, separator: '\\'},
	DTVR:      {name: "DT", kind: delimitedString, separator: '\\'},
	FDVR:      {name: "FD", kind: fixedWidthNumeric, width: 8},
	FLVR:      {name: "FL", kind: fixedWidthNumeric, width: 4},
	ISVR:      {name: "IS", kind: delimitedString, separator: '\\'},
	LOVR:      {name: "LO", kind: delimitedString, separator: '\\'},
	LTVR:      {name: "LT", kind: delimitedString, trim: trimTrailing},
	OBVR:      {name: "OB", longLength: true, kind: rawPayload},
	ODVR:      {name: "OD", longLength: true, kind: fixedWidthNumeric, width: 8},
	OFVR:      {name: "OF", longLength: true, kind: fixedWidthNumeric, width: 4},
	OLVR:      {name: "OL", longLength: true, kind: fixedWidthNumeric, width: 4},
	OVVR:      {name: "OV", longLength: true, kind: fixedWidthNumeric, width: 8},
	OWVR:      {name: "OW", longLength: true, kind: fixedWidthNumeric, width: 2},
	PNVR:      {name: "PN", kind: delimitedString, separator: '\\'},
	SHVR:      {name: "SH", kind: delimitedString, separator: '\\'},
	SLVR:      {name: "SL", kind: fixedWidthNumeric, width: 4},
	SQVR:      {name: "SQ", longLength: true, kind: noPayload},
	SSVR:      {name: "SS", kind: fixedWidthNumeric, width: 2},
	STVR:      {name: "ST", kind: delimitedString, trim: trimTrailing},
	SVVR:      {name: "SV", longLength: true, kind: fixedWidthNumeric, width: 8},
	TMVR:      {name: "TM", kind: delimitedString, separator: '\\'},
	UCVR:      {name: "UC", longLength: true, kind: delimitedString, separator: '\\', trim: trimTrailing},
	UIVR:      {name: "UI", kind: delimitedString, separator: '\\', trim: trimTrailingNull},
	ULVR:      {name: "UL", kind: fixedWidthNumeric, width: 4},
	UNVR:      {name: "UN", longLength: true, kind: rawPayload},
	URVR:      {name: "UR", longLength: true, kind: delimitedString, trim: trimTrailing},
	USVR:      {name: "US", kind: fixedWidthNumeric, width: 2},
	UTVR:      {name: "UT", longLength: true, kind: delimitedString, trim: trimTrailing},
	UVVR:      {name: "UV", longLength: true, kind: fixedWidthNumeric, width: 8},
	NoVR:      {name: "NoVR", kind: noPayload},
}

var vrLookupMap = func() map[string]VR {
	m := make(map[string]VR, len(vrTable))
	for vr := AEVR; vr < NoVR; vr++ {
		m[vrTable[vr].name] = vr
	}
	return m
}()

func (vr VR) info() vrInfo {
	if int(vr) >= len(vrTable) {
		return vrTable[invalidVR]
	}
	return vrTable[vr]
}

// Name returns the 2-character VR code
func (vr VR) Name() string {
	return vr.info().name
}

func (vr VR) String() string {
	return vr.Name()
}

// Valid is false for the zero VR and values outside the table.
func (vr VR) Valid() bool {
	return vr != invalidVR && int(vr) < len(vrTable)
}

// LookupVR returns the VR with the 2-character code name.
func LookupVR(name string) (VR, error) {
	return lookupVRByName(name)
}

func lookupVRByName(name string) (VR, error) {
	r, ok := vrLookupMap[name]
	if !ok {
		return invalidVR, fmt.Errorf("unknown vr name: %q", name)
	}
	return r, nil
}

// MarshalText encodes the VR as its 2-character code.
func (vr VR) MarshalText() ([]byte, error) {
	return []byte(vr.Name()), nil
}

// UnmarshalText decodes a 2-character VR code.
func (vr *VR) UnmarshalText(text []byte) error {
	v, err := lookupVRByName(string(text))
	if err != nil {
		return err
	}
	*vr = v
	return nil
}
