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


package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type keyMap struct {
	Quit   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
}

// ViewerModel is a Bubble Tea model scrolling through a list of lines.
type ViewerModel struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
	quitting bool
}

// NewViewerModel creates a viewer of lines.
func NewViewerModel(title string, lines []string) ViewerModel {
	return ViewerModel{
		title:   title,
		content: strings.Join(lines, "\n"),
	}
}

// Init implements tea.Model.
func (m ViewerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := msg.Height - lipgloss.Height(m.header()) - lipgloss.Height(m.footer())
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Top):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, keys.Bottom):
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m ViewerModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return m.header() + "\n" + m.viewport.View() + "\n" + m.footer()
}

func (m ViewerModel) header() string {
	return TitleStyle.Render(m.title)
}

func (m ViewerModel) footer() string {
	position := PositionStyle.Render(fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100))
	var help []string
	for _, b := range []key.Binding{keys.Top, keys.Bottom, keys.Quit} {
		h := b.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	return position + "  " + HelpStyle.Render(strings.Join(help, " • "))
}

// Run shows lines in a full screen viewer until the user quits.
func Run(title string, lines []string) error {
	p := tea.NewProgram(NewViewerModel(title, lines), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running viewer: %w", err)
	}
	return nil
}
