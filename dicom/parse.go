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
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/elliotchance/orderedmap/v3"
)

// Attribute is a data element collected into a DataSet together with its value.
type Attribute struct {
	Tag         DataElementTag
	VR          VR
	ValueLength uint32
	Offset      int64

	// Value is the value field of a plain element, the concatenation of its payload chunks.
	Value []byte

	// Items holds the items of a sequence, or of an encapsulated value decoded with
	// EncapsulateNested.
	Items []*DataSet

	// Fragments holds the fragments of an encapsulated value. The first one is the basic offset
	// table, possibly empty.
	Fragments [][]byte

	// References replaces Value or Fragments for attributes selected by ReferenceBulkData.
	References []BulkDataReference

	// Syntax is the transfer syntax the attribute was encoded with.
	Syntax TransferSyntax
}

// NewAttribute returns a plain attribute holding raw, in explicit VR little endian.
func NewAttribute(tag DataElementTag, vr VR, raw []byte) *Attribute {
	return &Attribute{Tag: tag, VR: vr, ValueLength: uint32(len(raw)), Value: raw, Syntax: ExplicitVRLittleEndian}
}

// NewSequence returns an SQ attribute holding items.
func NewSequence(tag DataElementTag, items ...*DataSet) *Attribute {
	return &Attribute{Tag: tag, VR: SQVR, ValueLength: UndefinedLength, Items: items, Syntax: ExplicitVRLittleEndian}
}

// NewEncapsulated returns an attribute holding fragments in the encapsulated format. The first
// fragment is the basic offset table.
func NewEncapsulated(tag DataElementTag, vr VR, fragments ...[]byte) *Attribute {
	return &Attribute{Tag: tag, VR: vr, ValueLength: UndefinedLength, Fragments: fragments, Syntax: ExplicitVRLittleEndian}
}

// TextValue joins values with the multi-value separator.
func TextValue(values ...string) []byte {
	var b []byte
	for i, v := range values {
		if i > 0 {
			b = append(b, '\\')
		}
		raw, err := rawBytes(v)
		if err != nil {
			raw = []byte(v)
		}
		b = append(b, raw...)
	}
	return b
}

// Encapsulated reports whether the value is in the encapsulated format.
func (a *Attribute) Encapsulated() bool {
	return a.VR != SQVR && a.ValueLength == UndefinedLength
}

// Values decodes Value according to the VR, see DecodeValue.
func (a *Attribute) Values() (interface{}, error) {
	order := a.Syntax.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}
	return DecodeValue(a.VR, a.Value, order)
}

// Strings returns the values of a text attribute.
func (a *Attribute) Strings() ([]string, error) {
	v, err := a.Values()
	if err != nil {
		return nil, err
	}
	s, ok := v.([]string)
	if !ok {
		return nil, fmt.Errorf("%v of %v is not a text value", a.VR, a.Tag)
	}
	return s, nil
}

func (a *Attribute) String() string {
	return fmt.Sprintf("%v %v", a.Tag, a.VR)
}

// DataSet is the collection of attributes at one nesting level, in stream order.
type DataSet struct {
	elements *orderedmap.OrderedMap[DataElementTag, *Attribute]
}

// NewDataSet returns a DataSet holding attrs.
func NewDataSet(attrs ...*Attribute) *DataSet {
	ds := &DataSet{orderedmap.NewOrderedMap[DataElementTag, *Attribute]()}
	for _, a := range attrs {
		ds.Set(a)
	}
	return ds
}

// Set adds a, replacing any attribute with the same tag.
func (ds *DataSet) Set(a *Attribute) {
	ds.elements.Set(a.Tag, a)
}

// Get returns the attribute with the given tag.
func (ds *DataSet) Get(tag DataElementTag) (*Attribute, bool) {
	return ds.elements.Get(tag)
}

// Delete removes the attribute with the given tag.
func (ds *DataSet) Delete(tag DataElementTag) bool {
	return ds.elements.Delete(tag)
}

// Len returns the number of attributes.
func (ds *DataSet) Len() int {
	return ds.elements.Len()
}

// Attributes returns the attributes in the order they were added.
func (ds *DataSet) Attributes() []*Attribute {
	attrs := make([]*Attribute, 0, ds.elements.Len())
	for el := ds.elements.Front(); el != nil; el = el.Next() {
		attrs = append(attrs, el.Value)
	}
	return attrs
}

// SortedTags returns the tags in ascending order.
func (ds *DataSet) SortedTags() []DataElementTag {
	tags := make([]DataElementTag, 0, ds.elements.Len())
	for el := ds.elements.Front(); el != nil; el = el.Next() {
		tags = append(tags, el.Key)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// MetaElements returns a new DataSet holding the file meta information attributes of ds.
func (ds *DataSet) MetaElements() *DataSet {
	meta := NewDataSet()
	for _, a := range ds.Attributes() {
		if a.Tag.IsMetadataElement() {
			meta.Set(a)
		}
	}
	return meta
}

// Transform describes a transformation applied to an Attribute
type Transform func(*Attribute) (*Attribute, error)

// ParseOption configures the behavior of the Parse function.
type ParseOption func(*TreeBuilder)

// WithTransform returns a ParseOption that applies the given transformation to each Attribute in
// the DICOM file in the order encountered. For attributes that contain a sequence, the transform
// is applied to nested attributes first (i.e. transform is called on attributes in post-order).
// If the transform returns an error, Parse will stop and return an error.
// If no error is returned and a non-nil Attribute is returned, this Attribute will be added to
// the returned DataSet of Parse. If a nil Attribute is returned, it will be excluded from the
// DataSet returned from Parse.
func WithTransform(t Transform) ParseOption {
	return func(b *TreeBuilder) {
		b.transforms = append(b.transforms, t)
	}
}

// WithDecodeOptions passes opts to the Decoder used by Parse.
func WithDecodeOptions(opts ...DecodeOption) ParseOption {
	return func(b *TreeBuilder) {
		b.decodeOpts = append(b.decodeOpts, opts...)
	}
}

// ReferenceBulkData collects the location of the values of attributes for which
// bulkDataDefinition returns true into References instead of buffering them.
func ReferenceBulkData(bulkDataDefinition func(*DataElement) bool) ParseOption {
	return func(b *TreeBuilder) {
		b.isBulkData = bulkDataDefinition
	}
}

// DropGroupLengths will exclude all group length elements (gggg,0000) from the returned DataSet
var DropGroupLengths = WithTransform(func(a *Attribute) (*Attribute, error) {
	if a.Tag.ElementNumber() == 0 {
		return nil, nil
	}
	return a, nil
})

// DropBasicOffsetTable will exclude the basic offset table fragment from pixel data encoded using
// the encapsulated (compressed) format. For more information on the offset table and encapsulated
// formats please see http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_A.4
var DropBasicOffsetTable = WithTransform(func(a *Attribute) (*Attribute, error) {
	if a.Tag != PixelDataTag || !a.Encapsulated() {
		return a, nil
	}
	switch {
	case len(a.Fragments) > 0:
		a.Fragments = a.Fragments[1:]
	case len(a.References) > 0:
		a.References = a.References[1:]
	}
	return a, nil
})

// Parse decodes the DICOM file read from r into a DataSet. The file meta information attributes
// are part of the returned DataSet.
func Parse(ctx context.Context, r io.Reader, opts ...ParseOption) (*DataSet, error) {
	b := NewTreeBuilder(opts...)
	if err := Decode(ctx, r, b, b.decodeOpts...); err != nil {
		return nil, err
	}
	return b.Result()
}

// treeFrame is an open group while building the tree.
type treeFrame struct {
	kind GroupKind
	// dataSet receives the attributes of the root and of items
	dataSet *DataSet
	// attr is the sequence or encapsulated attribute for the other kinds
	attr *Attribute
	// refs collects the fragment locations of a referenced encapsulated value
	refs *referenceCollector
}

// TreeBuilder is a Handler that assembles the events of a Decoder into a DataSet.
type TreeBuilder struct {
	transforms []Transform
	decodeOpts []DecodeOption
	isBulkData func(*DataElement) bool

	root   *DataSet
	frames []*treeFrame

	// current is the plain attribute or fragment owner receiving payload chunks
	current  *Attribute
	fragment bool
	// refs collects the locations of a referenced plain value
	refs *referenceCollector

	finished bool
	err      error
}

// NewTreeBuilder returns an empty TreeBuilder.
func NewTreeBuilder(opts ...ParseOption) *TreeBuilder {
	b := &TreeBuilder{root: NewDataSet()}
	b.frames = []*treeFrame{{dataSet: b.root}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Result returns the assembled DataSet once the stream ended.
func (b *TreeBuilder) Result() (*DataSet, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !b.finished {
		return nil, fmt.Errorf("stream has not ended")
	}
	return b.root, nil
}

// HandleError records the decoding error.
func (b *TreeBuilder) HandleError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// HandleEvent folds ev into the tree.
func (b *TreeBuilder) HandleEvent(ev Event) {
	if b.err != nil {
		return
	}
	if ev.Kind == PayloadChunk {
		b.payload(ev)
		return
	}
	if err := b.completeCurrent(); err != nil {
		b.err = err
		return
	}

	switch ev.Kind {
	case ElementStart:
		b.elementStart(ev)
	case GroupEnd:
		b.err = b.groupEnd(ev)
	case StreamEnd:
		b.finished = true
	}
}

func (b *TreeBuilder) top() *treeFrame {
	return b.frames[len(b.frames)-1]
}

func (b *TreeBuilder) elementStart(ev Event) {
	e := ev.Element
	top := b.top()

	if e.Tag == ItemTag {
		if ev.Group == ItemGroup {
			ds := NewDataSet()
			top.attr.Items = append(top.attr.Items, ds)
			b.frames = append(b.frames, &treeFrame{kind: ItemGroup, dataSet: ds})
			return
		}
		// a fragment of the enclosing encapsulated value
		b.current = top.attr
		b.fragment = true
		if top.refs != nil {
			top.refs.startFragment(e.ValueOffset)
		} else {
			top.attr.Fragments = append(top.attr.Fragments, []byte{})
		}
		return
	}

	a := &Attribute{Tag: e.Tag, VR: e.VR, ValueLength: e.ValueLength, Offset: e.Offset, Syntax: e.Syntax}
	top.dataSet.Set(a)

	bulk := b.isBulkData != nil && b.isBulkData(e)
	switch ev.Group {
	case SequenceGroup:
		b.frames = append(b.frames, &treeFrame{kind: SequenceGroup, attr: a})
	case EncapsulatedGroup:
		frame := &treeFrame{kind: EncapsulatedGroup, attr: a}
		if bulk {
			frame.refs = &referenceCollector{refs: []BulkDataReference{}}
		} else {
			a.Fragments = [][]byte{}
		}
		b.frames = append(b.frames, frame)
	default:
		b.current = a
		b.fragment = false
		b.refs = nil
		if bulk {
			b.refs = &referenceCollector{refs: []BulkDataReference{}}
		}
	}
}

func (b *TreeBuilder) payload(ev Event) {
	a := b.current
	if a == nil {
		b.err = fmt.Errorf("payload of %v outside of an element", ev.Element.Tag)
		return
	}
	switch {
	case b.fragment && b.top().refs != nil:
		b.top().refs.extendFragment(len(ev.Data))
	case b.fragment:
		last := len(a.Fragments) - 1
		a.Fragments[last] = append(a.Fragments[last], ev.Data...)
	case b.refs != nil:
		b.refs.add(ev.Offset, len(ev.Data))
	default:
		a.Value = append(a.Value, ev.Data...)
	}
}

// completeCurrent finishes the plain attribute receiving payload, if any.
func (b *TreeBuilder) completeCurrent() error {
	a := b.current
	if a == nil || b.fragment {
		return nil
	}
	b.current = nil
	if b.refs != nil {
		a.References = b.refs.refs
		b.refs = nil
	}
	if a.Value == nil && a.References == nil {
		a.Value = []byte{}
	}
	return b.apply(b.top().dataSet, a)
}

func (b *TreeBuilder) groupEnd(ev Event) error {
	switch ev.Group {
	case MetaGroup:
		return nil
	case ItemGroup:
		b.frames = b.frames[:len(b.frames)-1]
		return nil
	}

	frame := b.top()
	b.frames = b.frames[:len(b.frames)-1]
	b.current = nil
	b.fragment = false
	if frame.refs != nil {
		frame.attr.References = frame.refs.refs
	}
	return b.apply(b.top().dataSet, frame.attr)
}

// apply runs the transforms on a complete attribute and updates ds with the result.
func (b *TreeBuilder) apply(ds *DataSet, a *Attribute) error {
	tag := a.Tag
	for i, t := range b.transforms {
		var err error
		a, err = t(a)
		if err != nil {
			return fmt.Errorf("applying option %v to %v: %v", i, tag, err)
		}
		if a == nil {
			ds.Delete(tag)
			return nil
		}
	}
	ds.Set(a)
	return nil
}
