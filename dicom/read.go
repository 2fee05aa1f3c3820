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
	"go.uber.org/zap"
)

// readStep is the part of an element header the decoder is waiting for.
type readStep int

const (
	stepTag readStep = iota
	stepVR
	stepLength
	stepValue
)

func (s readStep) String() string {
	switch s {
	case stepTag:
		return "tag"
	case stepVR:
		return "vr"
	case stepLength:
		return "length"
	}
	return "value"
}

// elementReader holds the element being decoded. Each step queues the read for the next one on
// the cursor, so a header split across any number of chunks resumes where it stopped.
type elementReader struct {
	step    readStep
	element *DataElement
}

// readElement starts decoding the next element. At a point where the data set may legitimately
// end, input ending before the tag is not an error.
func (d *Decoder) readElement(atBoundary bool) {
	d.elem = elementReader{
		step:    stepTag,
		element: &DataElement{Offset: d.cursor.offset(), VR: invalidVR, Syntax: d.syntax},
	}
	if atBoundary {
		d.cursor.requestOrEOF(tagSize, d.onTag, d.onBoundaryEOF)
		return
	}
	d.cursor.request(tagSize, d.onTag)
}

func (d *Decoder) onTag(b []byte) {
	order := d.syntax.ByteOrder
	e := d.elem.element
	e.Tag = NewTag(order.Uint16(b), order.Uint16(b[2:]))

	switch {
	case e.Tag.isStructural():
		e.VR = NoVR
	case !d.syntax.Explicit:
		vr, ok := d.cfg.dictionary.VR(e.Tag)
		if !ok {
			if !d.cfg.unknownAsUN {
				d.fail(newDecodeError(UnknownType, e.Offset,
					"no dictionary VR for %v in implicit VR syntax", e.Tag))
				return
			}
			vr = UNVR
		}
		e.VR = vr
	default:
		d.elem.step = stepVR
		d.cursor.request(vrSize, d.onVR)
		return
	}
	d.readLength()
}

func (d *Decoder) onVR(b []byte) {
	e := d.elem.element
	vr, err := lookupVRByName(string(b))
	if err != nil {
		d.fail(&DecodeError{Kind: UnknownType, Offset: e.Offset,
			Msg: "reading explicit VR of " + e.Tag.String(), Err: err})
		return
	}
	e.VR = vr
	d.readLength()
}

func (d *Decoder) readLength() {
	e := d.elem.element
	d.elem.step = stepLength
	d.cursor.request(int64(d.syntax.lengthFieldSize(e.Tag, e.VR)), d.onLength)
}

func (d *Decoder) onLength(b []byte) {
	order := d.syntax.ByteOrder
	e := d.elem.element
	switch len(b) {
	case 2:
		e.ValueLength = uint32(order.Uint16(b))
	case 4:
		e.ValueLength = order.Uint32(b)
	case 6:
		// 2 reserved bytes precede the 32 bit length
		e.ValueLength = order.Uint32(b[2:])
	}
	e.ValueOffset = d.cursor.offset()
	d.elem.step = stepValue

	d.log.Debug("element header",
		zap.Stringer("tag", e.Tag),
		zap.Stringer("vr", e.VR),
		zap.Uint32("length", e.ValueLength),
		zap.Int64("offset", e.Offset))

	d.classify(e)
}

// classify decides what the header just read means given the open groups: a group boundary, a
// fragment or a plain value.
func (d *Decoder) classify(e *DataElement) {
	top := d.stack.current()
	inGroup := func(kind GroupKind) bool { return top != nil && top.kind == kind }

	switch {
	case inGroup(EncapsulatedGroup) && e.Tag == ItemTag && !e.UndefinedLength() &&
		d.cfg.encapsulation == EncapsulateFragments:
		d.emit(Event{Kind: ElementStart, Element: e, Offset: e.Offset})
		d.streamValue(e)
	case inGroup(EncapsulatedGroup) && e.Tag != ItemTag && e.Tag != SequenceDelimitationItemTag:
		d.fail(newDecodeError(NestingMismatch, e.Offset,
			"%v inside encapsulated value of %v, want item or sequence delimiter", e.Tag, top.element.Tag))
	case inGroup(SequenceGroup) && e.Tag != ItemTag && e.Tag != SequenceDelimitationItemTag:
		d.fail(newDecodeError(NestingMismatch, e.Offset,
			"%v inside sequence %v, want item or sequence delimiter", e.Tag, top.element.Tag))
	case e.Tag == ItemTag:
		if !inGroup(SequenceGroup) && !inGroup(EncapsulatedGroup) {
			d.fail(newDecodeError(NestingMismatch, e.Offset, "item outside of a sequence"))
			return
		}
		d.openGroup(e, ItemGroup)
	case e.Tag == ItemDelimitationItemTag || e.Tag == SequenceDelimitationItemTag:
		d.closeGroup(e)
	case e.VR == SQVR:
		d.openGroup(e, SequenceGroup)
	case e.UndefinedLength():
		d.openGroup(e, EncapsulatedGroup)
	default:
		d.readValue(e)
	}
}

func (d *Decoder) openGroup(e *DataElement, kind GroupKind) {
	d.emit(Event{Kind: ElementStart, Element: e, Group: kind, Offset: e.Offset})
	d.stack.enter(kind, e, e.ValueLength, d.cursor.offset(), d.onGroupEnter, d.onGroupExit)
	d.elementDone()
}

func (d *Decoder) closeGroup(e *DataElement) {
	top := d.stack.current()
	if top == nil {
		d.fail(newDecodeError(NestingMismatch, e.Offset, "%v with no open group", e.Tag))
		return
	}
	want := top.kind == ItemGroup
	if e.Tag == SequenceDelimitationItemTag {
		want = top.kind == SequenceGroup || top.kind == EncapsulatedGroup
	}
	if !want {
		d.fail(newDecodeError(NestingMismatch, e.Offset, "%v cannot close %v group of %v",
			e.Tag, top.kind, top.element.Tag))
		return
	}
	if e.ValueLength != 0 {
		d.fail(newDecodeError(NestingMismatch, e.Offset, "delimiter %v has length %d, want 0",
			e.Tag, e.ValueLength))
		return
	}
	if err := d.stack.exit(true); err != nil {
		d.fail(&DecodeError{Kind: NestingMismatch, Offset: e.Offset, Msg: "closing group", Err: err})
		return
	}
	d.elementDone()
}

func (d *Decoder) readValue(e *DataElement) {
	d.emit(Event{Kind: ElementStart, Element: e, Offset: e.Offset})
	if e.ValueLength == 0 {
		d.elementDone()
		return
	}
	// the meta group is always read atomically since its values drive the decoder
	if d.state == stateDataset && d.cfg.streamThreshold > 0 && int64(e.ValueLength) > d.cfg.streamThreshold {
		d.streamValue(e)
		return
	}
	d.cursor.request(int64(e.ValueLength), d.onValue)
}

func (d *Decoder) onValue(b []byte) {
	e := d.elem.element
	e.Value = b
	d.emit(Event{Kind: PayloadChunk, Element: e, Data: b, Offset: e.ValueOffset})
	d.elementDone()
}

func (d *Decoder) streamValue(e *DataElement) {
	d.cursor.requestStream(int64(e.ValueLength), func(b []byte) {
		d.emit(Event{Kind: PayloadChunk, Element: e, Data: b, Offset: d.cursor.offset() - int64(len(b))})
	}, d.elementDone)
}

// elementDone runs once an element and its value are fully consumed. It closes the bounded groups
// that end here and continues with the next element.
func (d *Decoder) elementDone() {
	if d.cursor.stopped() {
		return
	}
	if d.state == stateMetaInfo {
		d.onMetaElement(d.elem.element)
		if d.cursor.stopped() {
			return
		}
	}
	if err := d.stack.settle(d.cursor.offset()); err != nil {
		d.fail(&DecodeError{Kind: NestingMismatch, Offset: d.cursor.offset(), Msg: "closing groups", Err: err})
		return
	}
	d.next()
}

func (d *Decoder) onGroupEnter(g *group) {
	d.log.Debug("entering group",
		zap.Stringer("kind", g.kind),
		zap.Stringer("tag", g.element.Tag),
		zap.Bool("bounded", g.bounded()),
		zap.Int("depth", d.stack.depth()))
}

func (d *Decoder) onGroupExit(g *group) {
	d.emit(Event{Kind: GroupEnd, Element: g.element, Group: g.kind, Offset: d.cursor.offset()})
}

// onBoundaryEOF handles input ending where a tag was expected.
func (d *Decoder) onBoundaryEOF(buffered int64) {
	if buffered > 0 {
		d.fail(newDecodeError(PrematureEnd, d.cursor.offset(),
			"input ended inside the tag of an element, %d bytes left", buffered))
		return
	}
	if depth := d.stack.depth(); depth > 0 {
		d.fail(newDecodeError(PrematureEnd, d.cursor.offset(),
			"input ended with %d open groups, innermost %v of %v",
			depth, d.stack.current().kind, d.stack.current().element.Tag))
		return
	}
	d.finish()
}
