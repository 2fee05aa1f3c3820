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
	"errors"
	"fmt"
	"io"
)

var errReferencedBulkData = errors.New("referenced bulk data cannot be written, parse without ReferenceBulkData")

// Encoder writes DataSets in the DICOM encoding. Sequences, items and encapsulated values are
// written with undefined length.
type Encoder struct {
	w      io.Writer
	syntax TransferSyntax
}

// NewEncoder returns an Encoder writing data sets to w in syntax.
func NewEncoder(w io.Writer, syntax TransferSyntax) *Encoder {
	return &Encoder{w, syntax}
}

// SyntaxUID returns the UID naming syntax in the file meta information.
func SyntaxUID(syntax TransferSyntax) (string, error) {
	switch syntax {
	case ExplicitVRLittleEndian:
		return ExplicitVRLittleEndianUID, nil
	case ImplicitVRLittleEndian:
		return ImplicitVRLittleEndianUID, nil
	case ExplicitVRBigEndian:
		return ExplicitVRBigEndianUID, nil
	}
	return "", fmt.Errorf("%v has no transfer syntax UID", syntax)
}

// WriteFile writes the preamble, the prefix and the file meta information of ds followed by the
// rest of ds. The meta information names the syntax of the Encoder, and its group length is
// recomputed.
func (enc *Encoder) WriteFile(ds *DataSet) error {
	uid, err := SyntaxUID(enc.syntax)
	if err != nil {
		return err
	}

	// The FileMetaInformationGroupLength element is a critical component of the Meta Header. It
	// stores how long the meta header is. Thus, we need to re-calculate it properly.
	meta := &bytes.Buffer{}
	metaWriter := &dcmWriter{meta, ExplicitVRLittleEndian}
	metaSet := ds.MetaElements()
	metaSet.Delete(FileMetaInformationGroupLengthTag)
	metaSet.Set(NewAttribute(TransferSyntaxUIDTag, UIVR, []byte(uid)))
	if err := writeDataSet(metaWriter, metaSet); err != nil {
		return fmt.Errorf("writing file meta information: %v", err)
	}

	dw := &dcmWriter{enc.w, ExplicitVRLittleEndian}
	if err := dw.Bytes(make([]byte, preambleLength)); err != nil {
		return fmt.Errorf("writing preamble: %v", err)
	}
	if err := dw.String(dicmPrefix); err != nil {
		return fmt.Errorf("writing prefix: %v", err)
	}
	if err := dw.Header(FileMetaInformationGroupLengthTag, ULVR, 4); err != nil {
		return err
	}
	if err := dw.UInt32(uint32(meta.Len())); err != nil {
		return fmt.Errorf("writing meta group length: %v", err)
	}
	if err := dw.Bytes(meta.Bytes()); err != nil {
		return fmt.Errorf("writing file meta information: %v", err)
	}

	body := NewDataSet()
	for _, a := range ds.Attributes() {
		if !a.Tag.IsMetadataElement() {
			body.Set(a)
		}
	}
	return enc.WriteDataSet(body)
}

// WriteDataSet writes the attributes of ds in ascending tag order, without a file header.
func (enc *Encoder) WriteDataSet(ds *DataSet) error {
	return writeDataSet(&dcmWriter{enc.w, enc.syntax}, ds)
}

func writeDataSet(dw *dcmWriter, ds *DataSet) error {
	for _, tag := range ds.SortedTags() {
		a, _ := ds.Get(tag)
		if err := writeAttribute(dw, a); err != nil {
			return fmt.Errorf("writing %v: %v", tag, err)
		}
	}
	return nil
}

func writeAttribute(dw *dcmWriter, a *Attribute) error {
	switch {
	case a.References != nil:
		return errReferencedBulkData
	case a.VR == SQVR:
		if err := dw.Header(a.Tag, SQVR, UndefinedLength); err != nil {
			return err
		}
		if err := writeItems(dw, a.Items); err != nil {
			return err
		}
		return dw.Delimiter(SequenceDelimitationItemTag)
	case a.Encapsulated():
		return writeEncapsulated(dw, a)
	}

	value := a.Value
	if order := a.Syntax.ByteOrder; order != nil && order != dw.order() {
		value = swapByteOrder(a.VR, value)
	}
	value = padValue(a.VR, value)
	if err := dw.Header(a.Tag, a.VR, uint32(len(value))); err != nil {
		return err
	}
	return dw.Bytes(value)
}

func writeItems(dw *dcmWriter, items []*DataSet) error {
	for i, item := range items {
		if err := dw.Header(ItemTag, NoVR, UndefinedLength); err != nil {
			return fmt.Errorf("writing item %d: %v", i, err)
		}
		if err := writeDataSet(dw, item); err != nil {
			return fmt.Errorf("writing item %d: %v", i, err)
		}
		if err := dw.Delimiter(ItemDelimitationItemTag); err != nil {
			return fmt.Errorf("writing item %d: %v", i, err)
		}
	}
	return nil
}

// writeEncapsulated writes the fragments of a in the encapsulated format. The first fragment is
// assumed to be the basic offset table.
func writeEncapsulated(dw *dcmWriter, a *Attribute) error {
	if err := dw.Header(a.Tag, a.VR, UndefinedLength); err != nil {
		return err
	}
	for i, fragment := range a.Fragments {
		fragment = padValue(OBVR, fragment)
		if err := dw.Header(ItemTag, NoVR, uint32(len(fragment))); err != nil {
			return fmt.Errorf("writing fragment %d: %v", i, err)
		}
		if err := dw.Bytes(fragment); err != nil {
			return fmt.Errorf("writing fragment %d: %v", i, err)
		}
	}
	if err := writeItems(dw, a.Items); err != nil {
		return err
	}
	return dw.Delimiter(SequenceDelimitationItemTag)
}
