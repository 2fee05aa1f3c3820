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

package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/GoogleCloudPlatform/go-dicom-stream/dicom"
)

// maxInlineBytes bounds the binary values copied into a Node.
const maxInlineBytes = 64

// Node is the serialized form of a dicom.Attribute.
type Node struct {
	Tag    string   `json:"tag" yaml:"tag"`
	VR     string   `json:"vr" yaml:"vr"`
	Length string   `json:"length" yaml:"length"`
	Offset int64    `json:"offset" yaml:"offset"`
	Value  any      `json:"value,omitempty" yaml:"value,omitempty"`
	Items  [][]Node `json:"items,omitempty" yaml:"items,omitempty"`
	// Fragments holds the size of each fragment of an encapsulated value.
	Fragments  []int        `json:"fragments,omitempty" yaml:"fragments,omitempty"`
	References []ByteRegion `json:"references,omitempty" yaml:"references,omitempty"`
}

// ByteRegion is the serialized form of a bulk data reference.
type ByteRegion struct {
	Offset int64 `json:"offset" yaml:"offset"`
	Length int64 `json:"length" yaml:"length"`
}

// Nodes converts the attributes of ds in ascending tag order.
func Nodes(ds *dicom.DataSet) []Node {
	nodes := make([]Node, 0, ds.Len())
	for _, tag := range ds.SortedTags() {
		a, _ := ds.Get(tag)
		nodes = append(nodes, newNode(a))
	}
	return nodes
}

func newNode(a *dicom.Attribute) Node {
	n := Node{Tag: a.Tag.String(), VR: a.VR.String(), Offset: a.Offset, Length: lengthString(a.ValueLength)}
	for _, item := range a.Items {
		n.Items = append(n.Items, Nodes(item))
	}
	for _, f := range a.Fragments {
		n.Fragments = append(n.Fragments, len(f))
	}
	for _, r := range a.References {
		n.References = append(n.References, ByteRegion{r.Reference.Offset, r.Reference.Length})
	}
	if a.VR == dicom.SQVR || a.Encapsulated() || a.References != nil {
		return n
	}

	v, err := a.Values()
	if err != nil {
		return n
	}
	switch v := v.(type) {
	case []byte:
		if len(v) <= maxInlineBytes {
			n.Value = v
		}
	case []dicom.DataElementTag:
		tags := make([]string, len(v))
		for i, t := range v {
			tags[i] = t.String()
		}
		n.Value = tags
	default:
		n.Value = v
	}
	return n
}

func lengthString(length uint32) string {
	if length == dicom.UndefinedLength {
		return "undefined"
	}
	return strconv.FormatUint(uint64(length), 10)
}

// RenderTree writes ds to w in format.
func RenderTree(w io.Writer, format Format, ds *dicom.DataSet) error {
	if format == FormatTable {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TAG\tVR\tLENGTH\tVALUE")
		for _, line := range DumpLines(ds) {
			fmt.Fprintln(tw, line)
		}
		return tw.Flush()
	}

	enc, err := newEncoder(format, w)
	if err != nil {
		return err
	}
	if err := enc.Encode(Nodes(ds)); err != nil {
		return err
	}
	if c, ok := enc.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// DumpLines renders ds as tab separated lines, one per attribute, item and fragment, indented by
// nesting depth.
func DumpLines(ds *dicom.DataSet) []string {
	var lines []string
	dumpNodes(&lines, Nodes(ds), 0)
	return lines
}

func dumpNodes(lines *[]string, nodes []Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		*lines = append(*lines, fmt.Sprintf("%s%s\t%s\t%s\t%s", indent, n.Tag, n.VR, n.Length, summary(n)))
		for i, item := range n.Items {
			*lines = append(*lines, fmt.Sprintf("%s  item %d\t\t\t%d attributes", indent, i, len(item)))
			dumpNodes(lines, item, depth+2)
		}
		for i, size := range n.Fragments {
			*lines = append(*lines, fmt.Sprintf("%s  fragment %d\t\t%d\t", indent, i, size))
		}
	}
}

func summary(n Node) string {
	switch {
	case n.References != nil:
		parts := make([]string, len(n.References))
		for i, r := range n.References {
			parts[i] = fmt.Sprintf("@%d+%d", r.Offset, r.Length)
		}
		return strings.Join(parts, " ")
	case n.Items != nil:
		return fmt.Sprintf("%d items", len(n.Items))
	case n.Fragments != nil:
		return fmt.Sprintf("%d fragments", len(n.Fragments))
	case n.Value == nil:
		return ""
	}

	var s string
	switch v := n.Value.(type) {
	case []byte:
		s = fmt.Sprintf("<%d bytes>", len(v))
	case []string:
		s = strings.Join(v, "\\")
	default:
		s = strings.Trim(fmt.Sprint(v), "[]")
	}
	if len([]rune(s)) > maxPreview {
		s = string([]rune(s)[:maxPreview]) + "..."
	}
	return s
}
