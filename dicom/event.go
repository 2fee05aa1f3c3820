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

// EventKind enumerates the notifications produced by a Decoder.
type EventKind int

const (
	// ElementStart announces a data element header. For sequences, items and encapsulated values
	// Event.Group tells which group the element opens.
	ElementStart EventKind = iota + 1
	// PayloadChunk carries a piece of the value field of the last started element. The chunks of an
	// element concatenate to its value field; a zero length value produces no chunk.
	PayloadChunk
	// GroupEnd is emitted when a group closes, after the last event inside it.
	GroupEnd
	// StreamEnd is emitted once, after the input ended cleanly at an element boundary.
	StreamEnd
)

func (k EventKind) String() string {
	switch k {
	case ElementStart:
		return "element-start"
	case PayloadChunk:
		return "payload-chunk"
	case GroupEnd:
		return "group-end"
	case StreamEnd:
		return "stream-end"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a single decoding notification.
type Event struct {
	Kind EventKind

	// Element is the started element for ElementStart and PayloadChunk, and the element that opened
	// the group for GroupEnd. It is nil for StreamEnd.
	Element *DataElement

	// Data is set for PayloadChunk. It must not be modified.
	Data []byte

	// Group is the kind of the closed group for GroupEnd, and of the opened group for an
	// ElementStart that opens one. It is zero otherwise.
	Group GroupKind

	// Offset is the stream position of the event: the first byte of the header for ElementStart,
	// the first byte of Data for PayloadChunk and the current position otherwise.
	Offset int64
}

func (ev Event) String() string {
	switch ev.Kind {
	case ElementStart:
		if ev.Group != 0 {
			return fmt.Sprintf("%v %v opens %v", ev.Kind, ev.Element, ev.Group)
		}
		return fmt.Sprintf("%v %v", ev.Kind, ev.Element)
	case PayloadChunk:
		return fmt.Sprintf("%v %v [%d bytes]", ev.Kind, ev.Element.Tag, len(ev.Data))
	case GroupEnd:
		return fmt.Sprintf("%v %v %v", ev.Kind, ev.Group, ev.Element.Tag)
	}
	return ev.Kind.String()
}

// Handler consumes the output of a Decoder. HandleError is called at most once, with the fatal
// error that stopped the session; no events follow it.
type Handler interface {
	HandleEvent(Event)
	HandleError(error)
}

// HandlerFuncs adapts a pair of functions to the Handler interface. Nil functions are ignored.
type HandlerFuncs struct {
	OnEvent func(Event)
	OnError func(error)
}

// HandleEvent calls OnEvent.
func (h HandlerFuncs) HandleEvent(ev Event) {
	if h.OnEvent != nil {
		h.OnEvent(ev)
	}
}

// HandleError calls OnError.
func (h HandlerFuncs) HandleError(err error) {
	if h.OnError != nil {
		h.OnError(err)
	}
}

// Recorder is a Handler that keeps every event and the error in memory.
type Recorder struct {
	Events []Event
	Err    error
}

// HandleEvent appends ev, copying its payload.
func (r *Recorder) HandleEvent(ev Event) {
	if ev.Data != nil {
		ev.Data = append([]byte(nil), ev.Data...)
	}
	r.Events = append(r.Events, ev)
}

// HandleError records err.
func (r *Recorder) HandleError(err error) {
	r.Err = err
}
