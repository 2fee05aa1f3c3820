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

// Dictionary resolves the static knowledge the decoder needs but the byte stream does not carry:
// the VR of a tag when VRs are implicit, and the framing selected by a transfer syntax UID.
type Dictionary interface {
	// VR returns the dictionary VR of tag. ok is false when the tag is unknown.
	VR(tag DataElementTag) (vr VR, ok bool)

	// TransferSyntax returns the framing for uid. ok is false when the syntax cannot be decoded.
	TransferSyntax(uid string) (syntax TransferSyntax, ok bool)
}

// StandardDictionary is the built-in Dictionary. It only knows the tags listed in standardVRs
// plus the wildcard rules of PS3.5 (group lengths, private creators); a full data dictionary can
// be layered on top with MapDictionary.
var StandardDictionary Dictionary = standardDictionary{}

type standardDictionary struct{}

// standardVRs holds the meta group and a handful of frequently used attributes.
// http://dicom.nema.org/medical/dicom/current/output/html/part06.html#chapter_6
var standardVRs = map[DataElementTag]VR{
	FileMetaInformationGroupLengthTag: ULVR,
	FileMetaInformationVersionTag:     OBVR,
	MediaStorageSOPClassUIDTag:        UIVR,
	MediaStorageSOPInstanceUIDTag:     UIVR,
	TransferSyntaxUIDTag:              UIVR,
	ImplementationClassUIDTag:         UIVR,
	ImplementationVersionNameTag:      SHVR,
	0x00020016:                        AEVR, // Source Application Entity Title
	0x00080005:                        CSVR, // Specific Character Set
	0x00080008:                        CSVR, // Image Type
	0x00080016:                        UIVR, // SOP Class UID
	0x00080018:                        UIVR, // SOP Instance UID
	0x00080020:                        DAVR, // Study Date
	0x00080030:                        TMVR, // Study Time
	0x00080050:                        SHVR, // Accession Number
	0x00080060:                        CSVR, // Modality
	0x00080090:                        PNVR, // Referring Physician's Name
	0x00081110:                        SQVR, // Referenced Study Sequence
	0x00081140:                        SQVR, // Referenced Image Sequence
	0x00081150:                        UIVR, // Referenced SOP Class UID
	0x00081155:                        UIVR, // Referenced SOP Instance UID
	0x00100010:                        PNVR, // Patient's Name
	0x00100020:                        LOVR, // Patient ID
	0x00100030:                        DAVR, // Patient's Birth Date
	0x00100040:                        CSVR, // Patient's Sex
	0x00101010:                        ASVR, // Patient's Age
	0x00181030:                        LOVR, // Protocol Name
	0x0020000D:                        UIVR, // Study Instance UID
	0x0020000E:                        UIVR, // Series Instance UID
	0x00200011:                        ISVR, // Series Number
	0x00200013:                        ISVR, // Instance Number
	0x00280002:                        USVR, // Samples per Pixel
	0x00280004:                        CSVR, // Photometric Interpretation
	0x00280008:                        ISVR, // Number of Frames
	0x00280010:                        USVR, // Rows
	0x00280011:                        USVR, // Columns
	0x00280030:                        DSVR, // Pixel Spacing
	0x00280100:                        USVR, // Bits Allocated
	0x00280101:                        USVR, // Bits Stored
	0x00280102:                        USVR, // High Bit
	0x00280103:                        USVR, // Pixel Representation
	0x00281050:                        DSVR, // Window Center
	0x00281051:                        DSVR, // Window Width
	0x00400275:                        SQVR, // Request Attributes Sequence
	0x0040A730:                        SQVR, // Content Sequence
	PixelDataTag:                      OWVR,
}

func (standardDictionary) VR(tag DataElementTag) (VR, bool) {
	if vr, ok := standardVRs[tag]; ok {
		return vr, true
	}
	if tag.isStructural() {
		return NoVR, true
	}
	// group length elements (gggg,0000)
	if tag.ElementNumber() == 0 {
		return ULVR, true
	}
	// private creator elements (gggg,0010-00FF) with gggg odd
	if tag.IsPrivate() && tag.ElementNumber() >= 0x0010 && tag.ElementNumber() <= 0x00FF {
		return LOVR, true
	}
	return invalidVR, false
}

func (standardDictionary) TransferSyntax(uid string) (TransferSyntax, bool) {
	return lookupTransferSyntax(uid)
}

// MapDictionary overlays explicit tag to VR entries on top of a base Dictionary.
type MapDictionary struct {
	Base Dictionary
	VRs  map[DataElementTag]VR
}

// VR returns the overlay entry for tag if present and falls back to Base otherwise.
func (d MapDictionary) VR(tag DataElementTag) (VR, bool) {
	if vr, ok := d.VRs[tag]; ok {
		return vr, true
	}
	if d.Base == nil {
		return invalidVR, false
	}
	return d.Base.VR(tag)
}

// TransferSyntax defers to Base, or to the standard table when Base is nil.
func (d MapDictionary) TransferSyntax(uid string) (TransferSyntax, bool) {
	if d.Base == nil {
		return lookupTransferSyntax(uid)
	}
	return d.Base.TransferSyntax(uid)
}
