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
	"io"
)

// dcmWriter writes the primitives of the DICOM encoding in a given transfer syntax.
type dcmWriter struct {
	io.Writer
	syntax TransferSyntax
}

func (dw *dcmWriter) order() binary.ByteOrder {
	return dw.syntax.ByteOrder
}

func (dw *dcmWriter) Tag(tag DataElementTag) error {
	if err := dw.UInt16(tag.GroupNumber()); err != nil {
		return err
	}
	return dw.UInt16(tag.ElementNumber())
}

// Header writes the tag, VR and value length of an element. The VR is omitted in implicit VR
// syntaxes and for the structural elements.
func (dw *dcmWriter) Header(tag DataElementTag, vr VR, length uint32) error {
	if err := dw.Tag(tag); err != nil {
		return fmt.Errorf("writing tag %v: %v", tag, err)
	}
	switch dw.syntax.lengthFieldSize(tag, vr) {
	case 2:
		if length > 0xFFFF {
			return fmt.Errorf("value of %v with length %d does not fit a 16 bit length field", tag, length)
		}
		if err := dw.String(vr.Name()); err != nil {
			return fmt.Errorf("writing vr of %v: %v", tag, err)
		}
		return dw.UInt16(uint16(length))
	case 6:
		if err := dw.String(vr.Name()); err != nil {
			return fmt.Errorf("writing vr of %v: %v", tag, err)
		}
		if err := dw.UInt16(0); err != nil {
			return fmt.Errorf("writing reserved bytes of %v: %v", tag, err)
		}
	}
	return dw.UInt32(length)
}

func (dw *dcmWriter) Delimiter(tag DataElementTag) error {
	if err := dw.Tag(tag); err != nil {
		return fmt.Errorf("writing delimiter tag: %v", err)
	}
	if err := dw.UInt32(0); err != nil {
		return fmt.Errorf("writing item length of delimiter: %v", err)
	}
	return nil
}

func (dw *dcmWriter) UInt16(v uint16) error {
	buf := make([]byte, 2)
	dw.order().PutUint16(buf, v)
	return dw.Bytes(buf)
}

func (dw *dcmWriter) UInt32(v uint32) error {
	buf := make([]byte, 4)
	dw.order().PutUint32(buf, v)
	return dw.Bytes(buf)
}

func (dw *dcmWriter) String(s string) error {
	_, err := io.WriteString(dw.Writer, s)
	return err
}

func (dw *dcmWriter) Bytes(b []byte) error {
	_, err := dw.Write(b)
	return err
}
