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

import "fmt"

// DataElementTag is a unique identifier for a Data Element composed of an ordered pair
// of numbers called the group number and the element number as specified in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10.
//
// The least significant 16 bits is the element number. The most significant 16 bits is the group
// number.
type DataElementTag uint32

// NewTag builds a DataElementTag from its group and element numbers.
func NewTag(group, element uint16) DataElementTag {
	return DataElementTag(uint32(group)<<16 | uint32(element))
}

// GroupNumber returns the group number component of the DataElementTag
func (t DataElementTag) GroupNumber() uint16 {
	return uint16(t >> 16)
}

// ElementNumber returns the element number component of the DataElementTag
func (t DataElementTag) ElementNumber() uint16 {
	return uint16(t & 0xFFFF)
}

// IsMetadataElement is true if and only if the Data Element is a meta data element
func (t DataElementTag) IsMetadataElement() bool {
	return t.GroupNumber() == uint16(0x0002)
}

// IsPrivate is true when the group number is odd.
func (t DataElementTag) IsPrivate() bool {
	return t.GroupNumber()%2 == 1
}

// isStructural reports whether t is one of the item / delimiter tags that never carry an explicit
// VR in the byte stream.
func (t DataElementTag) isStructural() bool {
	return t == ItemTag || t == ItemDelimitationItemTag || t == SequenceDelimitationItemTag
}

func (t DataElementTag) String() string {
	return fmt.Sprintf("(%04X,%04X)", t.GroupNumber(), t.ElementNumber())
}

// Tags the decoder itself depends on.
const (
	FileMetaInformationGroupLengthTag DataElementTag = 0x00020000
	FileMetaInformationVersionTag     DataElementTag = 0x00020001
	MediaStorageSOPClassUIDTag        DataElementTag = 0x00020002
	MediaStorageSOPInstanceUIDTag     DataElementTag = 0x00020003
	TransferSyntaxUIDTag              DataElementTag = 0x00020010
	ImplementationClassUIDTag         DataElementTag = 0x00020012
	ImplementationVersionNameTag      DataElementTag = 0x00020013

	PixelDataTag DataElementTag = 0x7FE00010

	// Structural tags, see
	// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.5
	ItemTag                     DataElementTag = 0xFFFEE000
	ItemDelimitationItemTag     DataElementTag = 0xFFFEE00D
	SequenceDelimitationItemTag DataElementTag = 0xFFFEE0DD
)

// DataElement models the header of a DICOM Data Element as defined in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10
// as it is seen by the streaming decoder.
type DataElement struct {
	Tag DataElementTag

	// Value Representation
	VR VR

	// ValueLength is the declared length of the value field in bytes.
	// Can be equal to 0xFFFFFFFF to represent an undefined length:
	// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.1
	ValueLength uint32

	// Offset is the number of bytes in the stream preceding the first byte of the tag.
	Offset int64

	// ValueOffset is the number of bytes in the stream preceding the value field.
	ValueOffset int64

	// Syntax is the transfer syntax the element is encoded with.
	Syntax TransferSyntax

	// Value holds the raw value field once it has been read atomically. It stays nil for
	// sequences, items, encapsulated payloads and values delivered as a stream of chunks.
	Value []byte
}

// UndefinedLength reports whether the element was encoded with the undefined length sentinel.
func (e *DataElement) UndefinedLength() bool {
	return e.ValueLength == UndefinedLength
}

func (e *DataElement) String() string {
	length := fmt.Sprintf("#%d", e.ValueLength)
	if e.UndefinedLength() {
		length = "#UNDEF"
	}
	return fmt.Sprintf("%v %v %s", e.Tag, e.VR, length)
}
