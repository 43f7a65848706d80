package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the keyboard shortcuts of the shell. Screens that own a
// focused form only see ctrl+c from this map.
type keyMap struct {
	Quit          key.Binding
	ForceQuit     key.Binding
	Sidebar       key.Binding
	Dismiss       key.Binding
	BannerAction  key.Binding
	SignOut       key.Binding
	Reload        key.Binding
	Open          key.Binding
	New           key.Binding
	Delete        key.Binding
	NextPage      key.Binding
	PrevPage      key.Binding
	Confirm       key.Binding
	Cancel        key.Binding
	JumpToSection key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Sidebar: key.NewBinding(
		key.WithKeys("ctrl+b"),
		key.WithHelp("ctrl+b", "sidebar"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "dismiss"),
	),
	BannerAction: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "organization"),
	),
	SignOut: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("ctrl+x", "sign out"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("right", "]"),
		key.WithHelp("→", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("left", "["),
		key.WithHelp("←", "prev page"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n", "cancel"),
	),
	JumpToSection: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
		key.WithHelp("1-9", "go to"),
	),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.JumpToSection, k.Sidebar, k.Reload, k.SignOut, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.JumpToSection, k.Sidebar, k.BannerAction, k.Dismiss},
		{k.Open, k.New, k.Delete, k.Reload},
		{k.PrevPage, k.NextPage, k.SignOut, k.Quit},
	}
}
