package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the module list.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Open the selected item
	Select key.Binding

	// Expand or collapse the selected module
	Toggle key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Help toggle
	Help key.Binding

	// Pull to refresh
	Refresh key.Binding

	// Publishing
	TogglePublish   key.Binding
	PublishModule   key.Binding
	UnpublishModule key.Binding
	PublishAll      key.Binding
	UnpublishAll    key.Binding
	SkipContentTags key.Binding
	CancelBulk      key.Binding

	// Announce an external edit of the selected item
	AnnounceEdit key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open item"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "expand/collapse"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		TogglePublish: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "publish/unpublish item"),
		),
		PublishModule: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "publish module"),
		),
		UnpublishModule: key.NewBinding(
			key.WithKeys("U"),
			key.WithHelp("U", "unpublish module"),
		),
		PublishAll: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "publish all"),
		),
		UnpublishAll: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "unpublish all"),
		),
		SkipContentTags: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "modules only on/off"),
		),
		CancelBulk: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "cancel bulk update"),
		),
		AnnounceEdit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "announce edit"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Toggle,
		k.Refresh, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Toggle, k.Back, k.Quit},
		{k.Refresh, k.Help, k.AnnounceEdit},
		{k.TogglePublish, k.PublishModule, k.UnpublishModule},
		{k.PublishAll, k.UnpublishAll, k.SkipContentTags, k.CancelBulk},
	}
}
