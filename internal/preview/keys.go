package preview

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the pager key bindings
type KeyMap struct {
	Prev   key.Binding
	Next   key.Binding
	First  key.Binding
	Last   key.Binding
	Filter key.Binding
	Accept key.Binding
	Escape key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Prev: key.NewBinding(
			key.WithKeys("h", "left", "k", "up"),
			key.WithHelp("h/←", "prev"),
		),
		Next: key.NewBinding(
			key.WithKeys("l", "right", "j", "down", " "),
			key.WithHelp("l/→", "next"),
		),
		First: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first"),
		),
		Last: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Accept: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp lists the bindings shown in the footer
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Filter, k.Quit}
}
