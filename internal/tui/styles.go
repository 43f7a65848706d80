package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/amply-impact/amply/internal/prefs"
)

// Styles contains lipgloss styles for the TUI
type Styles struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Info        lipgloss.Style
	Muted       lipgloss.Style
	Border      lipgloss.Style
	Highlighted lipgloss.Style
	Sidebar     lipgloss.Style
	NavItem     lipgloss.Style
	NavActive   lipgloss.Style
	Banner      lipgloss.Style
	Notice      lipgloss.Style
	Help        lipgloss.Style
	Key         lipgloss.Style
	KeyDesc     lipgloss.Style
}

type palette struct {
	accent, text, muted, border, danger, ok, warn, info, inverse lipgloss.Color
}

var palettes = map[prefs.Theme]palette{
	prefs.ThemeDark: {
		accent:  lipgloss.Color("63"),  // Purple
		text:    lipgloss.Color("252"), // Light gray
		muted:   lipgloss.Color("241"), // Gray
		border:  lipgloss.Color("238"),
		danger:  lipgloss.Color("196"), // Red
		ok:      lipgloss.Color("46"),  // Green
		warn:    lipgloss.Color("226"), // Yellow
		info:    lipgloss.Color("86"),  // Cyan
		inverse: lipgloss.Color("230"),
	},
	prefs.ThemeLight: {
		accent:  lipgloss.Color("55"),
		text:    lipgloss.Color("235"),
		muted:   lipgloss.Color("244"),
		border:  lipgloss.Color("250"),
		danger:  lipgloss.Color("160"),
		ok:      lipgloss.Color("28"),
		warn:    lipgloss.Color("136"),
		info:    lipgloss.Color("31"),
		inverse: lipgloss.Color("255"),
	},
}

// DefaultStyles returns the dark theme.
func DefaultStyles() Styles {
	return StylesFor(prefs.ThemeDark)
}

// StylesFor returns the styles of a resolved theme. ThemeSystem must be
// resolved by the caller.
func StylesFor(theme prefs.Theme) Styles {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[prefs.ThemeDark]
	}
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.muted).
			MarginBottom(1),
		Status: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.info),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.danger),
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.ok),
		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.warn),
		Info: lipgloss.NewStyle().
			Foreground(p.info),
		Muted: lipgloss.NewStyle().
			Foreground(p.muted),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.accent).
			Padding(1, 2),
		Highlighted: lipgloss.NewStyle().
			Background(p.accent).
			Foreground(p.inverse).
			Bold(true).
			Padding(0, 1),
		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(p.border).
			PaddingRight(1).
			MarginRight(1),
		NavItem: lipgloss.NewStyle().
			Foreground(p.text),
		NavActive: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true),
		Banner: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			PaddingLeft(1).
			MarginBottom(1),
		Notice: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.danger).
			Padding(0, 1).
			MarginBottom(1),
		Help: lipgloss.NewStyle().
			Foreground(p.muted).
			MarginTop(1),
		Key: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent),
		KeyDesc: lipgloss.NewStyle().
			Foreground(p.muted),
	}
}
