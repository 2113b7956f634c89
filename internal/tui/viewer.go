// Package tui holds the transcript viewer and the shared lipgloss styles
// for command output.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// viewerKeys are the transcript viewer bindings.
type viewerKeys struct {
	Quit   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

func defaultViewerKeys() viewerKeys {
	return viewerKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
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
}

// ViewerModel is a scrollable view over transcript lines.
type ViewerModel struct {
	title    string
	lines    []string
	keys     viewerKeys
	viewport viewport.Model
	ready    bool
}

// NewViewer creates a transcript viewer over the given lines.
func NewViewer(title string, lines []string) ViewerModel {
	return ViewerModel{
		title: title,
		lines: lines,
		keys:  defaultViewerKeys(),
	}
}

// Init implements tea.Model.
func (m ViewerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Top):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		headerHeight := 2
		footerHeight := 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.viewport.SetContent(m.renderLines())
			m.viewport.GotoBottom()
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m ViewerModel) View() string {
	if !m.ready {
		return "loading transcript..."
	}

	header := TitleStyle.Render(m.title)
	footer := StatusBarStyle.Render(fmt.Sprintf("%3.0f%%  q quit · g/G top/bottom", m.viewport.ScrollPercent()*100))
	return header + "\n\n" + m.viewport.View() + "\n" + footer
}

// renderLines styles session headers and leaves output lines plain.
func (m ViewerModel) renderLines() string {
	if len(m.lines) == 0 {
		return MutedStyle.Render("transcript is empty")
	}

	rendered := make([]string, len(m.lines))
	for i, line := range m.lines {
		if strings.HasPrefix(line, "--- session ") {
			rendered[i] = SessionHeaderStyle.Render(line)
		} else {
			rendered[i] = line
		}
	}
	return strings.Join(rendered, "\n")
}

// RunViewer runs the transcript viewer until the user quits.
func RunViewer(title string, lines []string) error {
	p := tea.NewProgram(NewViewer(title, lines), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
