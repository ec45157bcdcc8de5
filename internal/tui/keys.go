package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds key bindings for the assistant input line.
type keyMap struct {
	Submit key.Binding
	Quit   key.Binding
}

// ShortHelp returns the bindings for the help bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Quit}
}

// FullHelp returns the bindings grouped for expanded help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Quit}}
}

// defaultKeyMap returns the assistant key bindings. Typing "exit" or "close"
// also quits; those go through the dispatcher.
func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run command"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}
