// Package keymap defines keybindings for the batch progress view.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the progress view keybindings.
type KeyMap struct {
	// Cancel stops after the current participant; pressed again it aborts.
	Cancel key.Binding

	// Quit closes the view once the batch has ended.
	Quit key.Binding

	// Up scrolls the event log up.
	Up key.Binding

	// Down scrolls the event log down.
	Down key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Cancel: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("ctrl+c", "cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "enter", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// RunningHelp returns the bindings shown while a batch runs.
func (k *KeyMap) RunningHelp() []key.Binding {
	return []key.Binding{k.Cancel, k.Up, k.Down}
}

// DoneHelp returns the bindings shown after a batch ends.
func (k *KeyMap) DoneHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Up, k.Down}
}
