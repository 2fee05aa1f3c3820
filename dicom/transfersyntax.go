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
	"encoding/binary"
	"fmt"
	"strings"
)

// list of transfer syntaxes obtained from
// http://dicom.nema.org/medical/dicom/current/output/html/part06.html#chapter_A
const (
	// ImplicitVRLittleEndianUID is the Implicit VR Little Endian UID
	ImplicitVRLittleEndianUID = "1.2.840.10008.1.2"
	// ExplicitVRLittleEndianUID is the Explicit VR Little Endian UID
	ExplicitVRLittleEndianUID = "1.2.840.10008.1.2.1"
	// ExplicitVRBigEndianUID is the Explicit VR Big Endian UID
	ExplicitVRBigEndianUID = "1.2.840.10008.1.2.2"
	// DeflatedExplicitVRLittleEndianUID is the Deflated Explicit VR Little Endian UID
	DeflatedExplicitVRLittleEndianUID = "1.2.840.10008.1.2.1.99"
	// JPEGBaselineUID is the JPEG Baseline (Process 1) transfer syntax UID
	JPEGBaselineUID = "1.2.840.10008.1.2.4.50"
)

const (
	vrSize  = 2
	tagSize = 4
)

// TransferSyntax is the pair of properties that govern how data elements are framed: whether VRs
// are written explicitly in the stream and the byte order of numbers.
type TransferSyntax struct {
	Explicit  bool
	ByteOrder binary.ByteOrder
}

var (
	ExplicitVRLittleEndian = TransferSyntax{true, binary.LittleEndian}
	ImplicitVRLittleEndian = TransferSyntax{false, binary.LittleEndian}
	ExplicitVRBigEndian    = TransferSyntax{true, binary.BigEndian}

	// ImplicitVRBigEndian has no UID in the standard. It is only reachable through a custom
	// Dictionary or WithDefaultSyntax.
	ImplicitVRBigEndian = TransferSyntax{false, binary.BigEndian}
)

func (s TransferSyntax) String() string {
	typing := "Implicit"
	if s.Explicit {
		typing = "Explicit"
	}
	order := "LittleEndian"
	if s.ByteOrder == binary.BigEndian {
		order = "BigEndian"
	}
	return typing + "VR" + order
}

// ParseTransferSyntax accepts the names used in configuration files, e.g. "explicit-little" or
// "ImplicitVRLittleEndian", as well as the standard UIDs.
func ParseTransferSyntax(name string) (TransferSyntax, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "")) {
	case "explicitlittle", "explicitvrlittleendian", ExplicitVRLittleEndianUID:
		return ExplicitVRLittleEndian, nil
	case "implicitlittle", "implicitvrlittleendian", ImplicitVRLittleEndianUID:
		return ImplicitVRLittleEndian, nil
	case "explicitbig", "explicitvrbigendian", ExplicitVRBigEndianUID:
		return ExplicitVRBigEndian, nil
	case "implicitbig", "implicitvrbigendian":
		return ImplicitVRBigEndian, nil
	}
	return TransferSyntax{}, fmt.Errorf("unknown transfer syntax name: %q", name)
}

// lookupTransferSyntax maps a transfer syntax UID to its framing. ok is false for syntaxes whose
// framing is not a plain byte stream (deflated).
func lookupTransferSyntax(uid string) (syntax TransferSyntax, ok bool) {
	switch uid {
	case ExplicitVRLittleEndianUID:
		return ExplicitVRLittleEndian, true
	case ImplicitVRLittleEndianUID:
		return ImplicitVRLittleEndian, true
	case ExplicitVRBigEndianUID:
		return ExplicitVRBigEndian, true
	case DeflatedExplicitVRLittleEndianUID:
		return TransferSyntax{}, false
	}

	// any other syntax should be explicit VR little endian according to PS3.5 A.4
	// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_A.4
	return ExplicitVRLittleEndian, true
}

// lengthFieldSize returns how many bytes follow the tag (and VR, if explicit) to encode the value
// length: 2, 4 or 6 (2 reserved bytes + 32 bit length).
func (s TransferSyntax) lengthFieldSize(tag DataElementTag, vr VR) int {
	if !s.Explicit || tag.isStructural() {
		return 4
	}
	if vr.info().longLength {
		return 6
	}
	return 2
}

// headerSize is the number of bytes preceding the value field.
func (s TransferSyntax) headerSize(tag DataElementTag, vr VR) int {
	size := tagSize + s.lengthFieldSize(tag, vr)
	if s.Explicit && !tag.isStructural() {
		size += vrSize
	}
	return size
}
