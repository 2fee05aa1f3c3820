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

// BulkDataReference describes the location of a contiguous sequence of bytes in a file
type BulkDataReference struct {
	Reference ByteRegion
}

// ByteRegion is a contiguous sequence of bytes in a file described by an Offset and a length
type ByteRegion struct {
	Offset int64
	Length int64
}

// Tags of attributes that may hold large non-metadata values. Some are repeating groups, e.g.
// Curve Data is (50xx,3000) and stored with the x's set to 0.
const (
	PixelDataProviderURLTag DataElementTag = 0x00287FE0
	EncapsulatedDocumentTag DataElementTag = 0x00420011
	AudioSampleDataTag      DataElementTag = 0x5000200C
	CurveDataTag            DataElementTag = 0x50003000
	WaveformDataTag         DataElementTag = 0x54001010
	SpectroscopyDataTag     DataElementTag = 0x56000020
	OverlayDataTag          DataElementTag = 0x60003000
	FloatPixelDataTag       DataElementTag = 0x7FE00008
	DoubleFloatPixelDataTag DataElementTag = 0x7FE00009
)

// DefaultBulkDataDefinition returns true if and only if the tag corresponds to a data element
// that contains large non-metadata fields
func DefaultBulkDataDefinition(elem *DataElement) bool {
	// The following list of masks handles all wildcards in the DICOM data dictionary
	// (e.g. tags like (gggg,eexx), (ggxx,eeee)). The value 0xFFFFFFFF is included in the list of
	// masks for convenience since (tag & 0xFFFFFFFF) == tag
	for _, m := range []uint32{0xFFFFFF00, 0xFFFFFF0F, 0xFFFF000F, 0xFFFF0000, 0xFF00FFFF, 0xFFFFFFFF} {
		switch DataElementTag(uint32(elem.Tag) & m) {
		case PixelDataProviderURLTag, AudioSampleDataTag, CurveDataTag, SpectroscopyDataTag,
			OverlayDataTag, EncapsulatedDocumentTag, FloatPixelDataTag, DoubleFloatPixelDataTag,
			PixelDataTag, WaveformDataTag:
			return true
		}
	}
	return false
}

// referenceCollector replaces the value of an attribute with the regions of the stream holding
// it. Adjacent chunks of the same value are merged into one region.
type referenceCollector struct {
	refs []BulkDataReference
}

func (c *referenceCollector) add(offset int64, length int) {
	if n := len(c.refs); n > 0 {
		last := &c.refs[n-1].Reference
		if last.Offset+last.Length == offset {
			last.Length += int64(length)
			return
		}
	}
	c.refs = append(c.refs, BulkDataReference{ByteRegion{offset, int64(length)}})
}

// startFragment opens a new region for a fragment, even an empty one, so that the references of
// an encapsulated value correspond one to one with its fragments.
func (c *referenceCollector) startFragment(offset int64) {
	c.refs = append(c.refs, BulkDataReference{ByteRegion{Offset: offset}})
}

func (c *referenceCollector) extendFragment(length int) {
	c.refs[len(c.refs)-1].Reference.Length += int64(length)
}
