package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the progress view key bindings.
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "cancel run"),
	),
}
