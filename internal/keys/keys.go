package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Manual refresh
	Refresh key.Binding

	// Settings view
	Settings key.Binding

	// Workspace filter cycling
	FilterWorkspace key.Binding

	// Toggle archived projects
	ToggleArchived key.Binding

	// Refresh history overlay
	History key.Binding

	// Help toggle
	Help key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Settings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "settings"),
		),
		FilterWorkspace: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "cycle workspace filter"),
		),
		ToggleArchived: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "toggle archived"),
		),
		History: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "refresh history"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Refresh, k.FilterWorkspace, k.Settings, k.Help, k.Quit,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Back, k.Quit},
		{k.Refresh, k.FilterWorkspace, k.ToggleArchived},
		{k.Settings, k.History, k.Help},
	}
}
