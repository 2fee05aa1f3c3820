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

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	groupColor   = lipgloss.Color("#7C3AED") // Purple
	payloadColor = lipgloss.Color("#10B981") // Green
	errorColor   = lipgloss.Color("#EF4444") // Red
	mutedColor   = lipgloss.Color("#6B7280") // Gray
	tagColor     = lipgloss.Color("#3B82F6") // Blue
)

// Column widths of the table format.
const (
	offsetWidth = 10
	kindWidth   = 15
	tagWidth    = 14
	vrWidth     = 5
	lengthWidth = 10
)

// tableStyles holds the styles of the table format, plain when color is disabled.
type tableStyles struct {
	header  lipgloss.Style
	offset  lipgloss.Style
	kind    map[string]lipgloss.Style
	tag     lipgloss.Style
	vr      lipgloss.Style
	length  lipgloss.Style
	value   lipgloss.Style
	failure lipgloss.Style
}

func newTableStyles(noColor bool) tableStyles {
	plain := lipgloss.NewStyle()
	s := tableStyles{
		header:  plain.Bold(!noColor),
		offset:  plain.Width(offsetWidth),
		tag:     plain,
		vr:      plain.Width(vrWidth),
		length:  plain.Width(lengthWidth),
		value:   plain,
		failure: plain,
	}
	kind := plain.Width(kindWidth)
	s.kind = map[string]lipgloss.Style{
		"element-start": kind,
		"payload-chunk": kind,
		"group-end":     kind,
		"stream-end":    kind,
	}
	if noColor {
		return s
	}

	s.offset = s.offset.Foreground(mutedColor)
	s.tag = s.tag.Foreground(tagColor)
	s.kind["element-start"] = kind.Foreground(tagColor)
	s.kind["payload-chunk"] = kind.Foreground(payloadColor)
	s.kind["group-end"] = kind.Foreground(groupColor)
	s.kind["stream-end"] = kind.Foreground(groupColor).Bold(true)
	s.failure = s.failure.Foreground(errorColor).Bold(true)
	return s
}

func (s tableStyles) kindStyle(kind string) lipgloss.Style {
	if style, ok := s.kind[kind]; ok {
		return style
	}
	return lipgloss.NewStyle().Width(kindWidth)
}
