// Package tui provides terminal frontends for the assistant: a Bubble Tea
// program for interactive terminals and a plain REPL for everything else.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/toolbox/internal/assistant"
)

// Handler interprets one command line. *assistant.Dispatcher implements it.
type Handler interface {
	Handle(line string) assistant.Reply
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})
	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
)

// entry is one command and the reply it produced.
type entry struct {
	Command string
	Lines   []string
}

// Model is the Bubble Tea model for an interactive assistant session.
type Model struct {
	handler Handler
	input   textinput.Model
	help    help.Model
	keys    keyMap
	history []entry
	height  int
	done    bool
}

// ModelOption configures optional Model behavior.
type ModelOption func(*Model)

// WithPrompt sets the input prompt. Empty keeps the default.
func WithPrompt(prompt string) ModelOption {
	return func(m *Model) {
		if prompt != "" {
			m.input.Prompt = prompt
		}
	}
}

// NewModel creates a Model that sends submitted lines to h.
func NewModel(h Handler, opts ...ModelOption) Model {
	ti := textinput.New()
	ti.Prompt = assistant.MsgPrompt
	ti.Placeholder = "hello"
	ti.Focus()

	m := Model{
		handler: h,
		input:   ti,
		help:    help.New(),
		keys:    defaultKeyMap(),
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.done {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit dispatches the current input line and records the reply.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	m.input.Reset()
	if strings.TrimSpace(line) == "" {
		return m, nil
	}

	reply := m.handler.Handle(line)
	m.history = append(m.history, entry{Command: line, Lines: reply.Lines})
	if reply.Quit {
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// View renders the transcript, the input line and the help bar.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(assistant.MsgWelcome))
	b.WriteString("\n\n")

	for _, line := range m.transcript() {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.done {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// transcript flattens the history into display lines, keeping only the tail
// that fits the terminal once the window size is known.
func (m Model) transcript() []string {
	var lines []string
	for _, e := range m.history {
		lines = append(lines, commandStyle.Render("> "+e.Command))
		lines = append(lines, e.Lines...)
	}
	// Title, blank lines, input and help take six rows.
	if avail := m.height - 6; m.height > 0 && len(lines) > avail {
		if avail < 0 {
			avail = 0
		}
		lines = lines[len(lines)-avail:]
	}
	return lines
}
