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

// GroupKind identifies the construct that opened a nesting group.
type GroupKind int

const (
	// MetaGroup is the file meta information, bounded by (0002,0000).
	MetaGroup GroupKind = iota + 1
	// SequenceGroup is the value of an SQ element.
	SequenceGroup
	// ItemGroup is a single item of a sequence.
	ItemGroup
	// EncapsulatedGroup is an undefined length value of a non-SQ element, e.g. compressed pixel
	// data, made of fragment items.
	EncapsulatedGroup
)

func (k GroupKind) String() string {
	switch k {
	case MetaGroup:
		return "meta"
	case SequenceGroup:
		return "sequence"
	case ItemGroup:
		return "item"
	case EncapsulatedGroup:
		return "encapsulated"
	}
	return ""
}

// group is an open nesting construct. A group is bounded when its length is known, in which case
// it ends exactly at end, and delimited otherwise, in which case only a delimiter element ends it.
type group struct {
	kind    GroupKind
	element *DataElement
	length  uint32
	end     int64

	// active is cleared when the stream position reaches end
	active bool

	onExit func(*group)
}

func (g *group) bounded() bool {
	return g.length != UndefinedLength
}

// nestingStack tracks the groups enclosing the current stream position, innermost last.
type nestingStack struct {
	groups []*group
}

// enter opens a group starting at offset. length is UndefinedLength for delimited groups.
// onEnter runs once the group is on the stack, onExit when it is closed.
func (s *nestingStack) enter(kind GroupKind, element *DataElement, length uint32, offset int64,
	onEnter, onExit func(*group)) *group {
	g := &group{kind: kind, element: element, length: length, active: true, onExit: onExit}
	if g.bounded() {
		g.end = offset + int64(length)
	}
	s.groups = append(s.groups, g)
	if onEnter != nil {
		onEnter(g)
	}
	return g
}

// current returns the innermost open group, nil when at top level.
func (s *nestingStack) current() *group {
	if len(s.groups) == 0 {
		return nil
	}
	return s.groups[len(s.groups)-1]
}

func (s *nestingStack) depth() int {
	return len(s.groups)
}

// exit closes the innermost group. An explicit exit comes from a delimiter and is only valid on a
// delimited group, an implicit one only on a bounded group whose end has been reached.
func (s *nestingStack) exit(explicit bool) error {
	g := s.current()
	if g == nil {
		return fmt.Errorf("no open group to exit")
	}
	if explicit && g.bounded() {
		return fmt.Errorf("delimiter inside %v group of length %d", g.kind, g.length)
	}
	if !explicit && g.active {
		return fmt.Errorf("%v group closed before its end at offset %d", g.kind, g.end)
	}
	s.groups[len(s.groups)-1] = nil
	s.groups = s.groups[:len(s.groups)-1]
	g.active = false
	if g.onExit != nil {
		g.onExit(g)
	}
	return nil
}

// settle closes every bounded group at the top of the stack whose end is offset. It is called
// after each element is complete, so that group ends are reported after the last payload of the
// group. A position past the end of an enclosing bounded group means an element overran it.
func (s *nestingStack) settle(offset int64) error {
	for g := s.current(); g != nil && g.bounded(); g = s.current() {
		if offset < g.end {
			break
		}
		if offset > g.end {
			return fmt.Errorf("%v overruns the %v group ending at offset %d", g.element, g.kind, g.end)
		}
		g.active = false
		if err := s.exit(false); err != nil {
			return err
		}
	}
	for _, g := range s.groups {
		if g.bounded() && offset > g.end {
			return fmt.Errorf("stream position %d is past the end of the enclosing %v group at offset %d",
				offset, g.kind, g.end)
		}
	}
	return nil
}
