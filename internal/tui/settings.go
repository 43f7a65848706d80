package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/amply-impact/amply/internal/prefs"
	"github.com/amply-impact/amply/internal/query"
	"github.com/amply-impact/amply/internal/route"
	"github.com/amply-impact/amply/pkg/amply/types"
)

const keyRefreshProfile = "refresh-profile"

var refreshProfile = key.NewBinding(
	key.WithKeys("ctrl+r"),
	key.WithHelp("ctrl+r", "refresh profile"),
)

// settingsScreen edits local preferences, which apply as soon as the form
// is submitted. ctrl+r reloads the signed-in user from the API.
type settingsScreen struct {
	env *env

	theme      prefs.Theme
	collapsed  bool
	background prefs.BackgroundMode
	language   prefs.Language

	form       *huh.Form
	ticket     query.Ticket
	refreshing bool
	err        error
}

func newSettingsScreen(e *env) *settingsScreen {
	return &settingsScreen{env: e}
}

func (s *settingsScreen) Init(_ context.Context, t query.Ticket) tea.Cmd {
	s.ticket = t
	s.reset()
	return s.form.Init()
}

func (s *settingsScreen) reset() {
	ui := s.env.prefs.UI()
	s.theme = ui.Theme
	s.collapsed = ui.SidebarCollapsed
	s.background = ui.BackgroundMode
	s.language = s.env.prefs.Language()
	s.form = s.build()
}

func (s *settingsScreen) build() *huh.Form {
	langs := make([]huh.Option[prefs.Language], 0, len(prefs.Languages))
	for _, l := range prefs.Languages {
		langs = append(langs, huh.NewOption(l.Name, l.Code))
	}
	return huh.NewForm(huh.NewGroup(
		huh.NewSelect[prefs.Theme]().Title("Theme").
			Options(
				huh.NewOption("System", prefs.ThemeSystem),
				huh.NewOption("Light", prefs.ThemeLight),
				huh.NewOption("Dark", prefs.ThemeDark),
			).
			Value(&s.theme),
		huh.NewConfirm().Title("Collapse sidebar").Value(&s.collapsed),
		huh.NewSelect[prefs.BackgroundMode]().Title("Background").
			Options(
				huh.NewOption("Wallpaper", prefs.BackgroundWallpaper),
				huh.NewOption("Gradient", prefs.BackgroundGradient),
			).
			Value(&s.background),
		huh.NewSelect[prefs.Language]().Title("Language").Options(langs...).Value(&s.language),
	)).WithShowHelp(false)
}

func (s *settingsScreen) Capturing() bool { return true }

func (s *settingsScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case mutatedMsg:
		if msg.key != keyRefreshProfile {
			return nil
		}
		s.refreshing = false
		if msg.err != nil {
			return notify(errorText(msg.err), true)
		}
		return notify(s.env.T("settings.refreshed"), false)
	case tea.KeyMsg:
		if key.Matches(msg, keys.Dismiss) {
			return navigate(route.At(route.ScreenDashboard))
		}
		if key.Matches(msg, refreshProfile) {
			if s.refreshing {
				return nil
			}
			s.refreshing = true
			store := s.env.session
			return mutate(s.env.ctx, s.ticket, keyRefreshProfile, func(ctx context.Context) (*types.User, error) {
				return store.Refresh(ctx)
			})
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}
	switch s.form.State {
	case huh.StateCompleted:
		s.err = s.apply()
		s.reset()
		if s.err != nil {
			return tea.Batch(s.form.Init(), notify(errorText(s.err), true))
		}
		return tea.Batch(s.form.Init(), notify(s.env.T("settings.saved"), false))
	case huh.StateAborted:
		return navigate(route.At(route.ScreenDashboard))
	}
	return cmd
}

// apply persists every changed preference and restyles the shell.
func (s *settingsScreen) apply() error {
	p := s.env.prefs
	ui := p.UI()
	if s.theme != ui.Theme {
		if err := p.SetTheme(s.theme); err != nil {
			return err
		}
		*s.env.styles = StylesFor(p.ResolvedTheme())
	}
	if s.collapsed != ui.SidebarCollapsed {
		if err := p.SetSidebarCollapsed(s.collapsed); err != nil {
			return err
		}
	}
	if s.background != ui.BackgroundMode {
		if err := p.SetBackgroundMode(s.background); err != nil {
			return err
		}
	}
	if s.language != p.Language() {
		if err := p.SetLanguage(s.language); err != nil {
			return err
		}
	}
	return nil
}

func (s *settingsScreen) View(width int) string {
	st := s.env.styles
	out := st.Title.Render(s.env.T("nav.settings")) + "\n"
	out += s.form.WithWidth(min(width, 60)).View()
	out += "\n" + st.Key.Render("enter") + " " + st.KeyDesc.Render("next") + "  " +
		st.Key.Render("esc") + " " + st.KeyDesc.Render("back") + "  " +
		st.Key.Render("ctrl+r") + " " + st.KeyDesc.Render("refresh profile")
	return out
}
