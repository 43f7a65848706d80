// Package prefs manages UI preferences and the locale, persisted under the
// amply-ui and amply-language storage keys. Logging out never touches them.
package prefs

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
	"github.com/amply-impact/amply/internal/storage"
)

// Theme is the requested color scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// BackgroundMode selects the dashboard backdrop.
type BackgroundMode string

const (
	BackgroundGradient  BackgroundMode = "gradient"
	BackgroundWallpaper BackgroundMode = "wallpaper"
)

// UI is the persisted shape of the amply-ui key.
type UI struct {
	Theme            Theme          `yaml:"theme"`
	SidebarCollapsed bool           `yaml:"sidebar_collapsed"`
	BackgroundMode   BackgroundMode `yaml:"background_mode"`
}

// DefaultUI mirrors a first run.
func DefaultUI() UI {
	return UI{Theme: ThemeSystem, BackgroundMode: BackgroundWallpaper}
}

// Manager reads and writes preferences through a storage.Store.
type Manager struct {
	mu    sync.Mutex
	store storage.Store
	ui    UI
	lang  Language

	// DarkBackground reports the terminal background for ThemeSystem.
	DarkBackground func() bool
}

// Load reads both keys, falling back to defaults for anything missing or invalid.
func Load(store storage.Store) (*Manager, error) {
	m := &Manager{
		store:          store,
		ui:             DefaultUI(),
		lang:           DetectLanguage(),
		DarkBackground: lipgloss.HasDarkBackground,
	}

	var ui UI
	found, err := store.Get(storage.KeyUI, &ui)
	if err != nil {
		return nil, err
	}
	if found {
		if ParseTheme(string(ui.Theme)) != "" {
			m.ui.Theme = ui.Theme
		}
		if ui.BackgroundMode == BackgroundGradient || ui.BackgroundMode == BackgroundWallpaper {
			m.ui.BackgroundMode = ui.BackgroundMode
		}
		m.ui.SidebarCollapsed = ui.SidebarCollapsed
	}

	var lang string
	found, err = store.Get(storage.KeyLanguage, &lang)
	if err != nil {
		return nil, err
	}
	if found && Language(lang).Supported() {
		m.lang = Language(lang)
	}
	return m, nil
}

// UI returns the current preferences.
func (m *Manager) UI() UI {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ui
}

// ResolvedTheme maps ThemeSystem onto light or dark.
func (m *Manager) ResolvedTheme() Theme {
	m.mu.Lock()
	theme, dark := m.ui.Theme, m.DarkBackground
	m.mu.Unlock()
	return ResolveTheme(theme, dark)
}

// ResolveTheme maps ThemeSystem onto light or dark using isDark.
func ResolveTheme(theme Theme, isDark func() bool) Theme {
	if theme != ThemeSystem {
		return theme
	}
	if isDark != nil && isDark() {
		return ThemeDark
	}
	return ThemeLight
}

// SetTheme persists a new theme.
func (m *Manager) SetTheme(theme Theme) error {
	if ParseTheme(string(theme)) == "" {
		return amplyerrors.NewFieldInvalidError("theme", "must be light, dark or system")
	}
	return m.update(func(ui *UI) { ui.Theme = theme })
}

// SetSidebarCollapsed persists the sidebar state.
func (m *Manager) SetSidebarCollapsed(collapsed bool) error {
	return m.update(func(ui *UI) { ui.SidebarCollapsed = collapsed })
}

// ToggleSidebar flips and persists the sidebar state.
func (m *Manager) ToggleSidebar() error {
	return m.update(func(ui *UI) { ui.SidebarCollapsed = !ui.SidebarCollapsed })
}

// SetBackgroundMode persists the backdrop.
func (m *Manager) SetBackgroundMode(mode BackgroundMode) error {
	if mode != BackgroundGradient && mode != BackgroundWallpaper {
		return amplyerrors.NewFieldInvalidError("background_mode", "must be gradient or wallpaper")
	}
	return m.update(func(ui *UI) { ui.BackgroundMode = mode })
}

// ToggleBackgroundMode switches between gradient and wallpaper.
func (m *Manager) ToggleBackgroundMode() error {
	return m.update(func(ui *UI) {
		if ui.BackgroundMode == BackgroundGradient {
			ui.BackgroundMode = BackgroundWallpaper
		} else {
			ui.BackgroundMode = BackgroundGradient
		}
	})
}

func (m *Manager) update(fn func(*UI)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.ui
	fn(&next)
	if err := m.store.Set(storage.KeyUI, next); err != nil {
		return err
	}
	m.ui = next
	return nil
}

// Language returns the active locale.
func (m *Manager) Language() Language {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lang
}

// SetLanguage persists the locale.
func (m *Manager) SetLanguage(lang Language) error {
	if !lang.Supported() {
		return amplyerrors.NewFieldInvalidError("language", fmt.Sprintf("must be one of %s", strings.Join(LanguageCodes(), ", ")))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Set(storage.KeyLanguage, string(lang)); err != nil {
		return err
	}
	m.lang = lang
	return nil
}

// Get returns a preference by name for `amply prefs get`.
func (m *Manager) Get(name string) (string, error) {
	ui := m.UI()
	switch name {
	case "theme":
		return string(ui.Theme), nil
	case "sidebar_collapsed":
		return fmt.Sprintf("%t", ui.SidebarCollapsed), nil
	case "background_mode":
		return string(ui.BackgroundMode), nil
	case "language":
		return string(m.Language()), nil
	}
	return "", unknownPreference(name)
}

// Set updates a preference by name for `amply prefs set`.
func (m *Manager) Set(name, value string) error {
	switch name {
	case "theme":
		return m.SetTheme(Theme(strings.ToLower(value)))
	case "sidebar_collapsed":
		switch strings.ToLower(value) {
		case "true", "yes", "1", "on":
			return m.SetSidebarCollapsed(true)
		case "false", "no", "0", "off":
			return m.SetSidebarCollapsed(false)
		}
		return amplyerrors.NewFieldInvalidError(name, "must be true or false")
	case "background_mode":
		return m.SetBackgroundMode(BackgroundMode(strings.ToLower(value)))
	case "language":
		return m.SetLanguage(Language(strings.ToLower(value)))
	}
	return unknownPreference(name)
}

// Names lists the preference names accepted by Get and Set.
func Names() []string {
	return []string{"theme", "sidebar_collapsed", "background_mode", "language"}
}

func unknownPreference(name string) error {
	return amplyerrors.NewFieldInvalidError(name, "is not a known preference").
		WithSuggestion("Known preferences: " + strings.Join(Names(), ", "))
}

// ParseTheme returns the theme named s, or "" if s is not a theme.
func ParseTheme(s string) Theme {
	switch Theme(strings.ToLower(s)) {
	case ThemeLight:
		return ThemeLight
	case ThemeDark:
		return ThemeDark
	case ThemeSystem:
		return ThemeSystem
	}
	return ""
}

// DetectLanguage picks a supported locale from the environment, else English.
func DetectLanguage() Language {
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := strings.ToLower(os.Getenv(env))
		if v == "" {
			continue
		}
		code := Language(v[:min(2, len(v))])
		if code.Supported() {
			return code
		}
		return LanguageEnglish
	}
	return LanguageEnglish
}
