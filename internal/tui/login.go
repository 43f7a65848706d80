package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/amply-impact/amply/internal/query"
	"github.com/amply-impact/amply/internal/route"
	"github.com/amply-impact/amply/pkg/amply/types"
)

const (
	keyLogin        = "login"
	keyRequestReset = "request-reset"
)

var (
	toRegister = key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "create account"),
	)
	toggleReset = key.NewBinding(
		key.WithKeys("ctrl+f"),
		key.WithHelp("ctrl+f", "forgot password"),
	)
)

// loginScreen signs in with email and password. Authentication errors are
// shown above the form and never leave the screen. ctrl+f switches to a
// form that requests a password reset email instead.
type loginScreen struct {
	env *env
	loc route.Location

	email    string
	password string

	form       *huh.Form
	ticket     query.Ticket
	submitting bool
	resetting  bool
	err        error
}

func newLoginScreen(e *env, loc route.Location) *loginScreen {
	s := &loginScreen{env: e, loc: loc}
	s.form = s.build()
	return s
}

func (s *loginScreen) build() *huh.Form {
	if s.resetting {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Key("email").
					Title("Email").
					Description("We send a link to reset your password").
					Value(&s.email).
					Validate(requiredText("email")),
			).Title(s.env.T("auth.forgot_password")),
		)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&s.email).
				Validate(requiredText("email")),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&s.password).
				Validate(requiredText("password")),
		).Title(s.env.T("nav.login")),
	)
}

func (s *loginScreen) Init(_ context.Context, t query.Ticket) tea.Cmd {
	s.ticket = t
	return s.form.Init()
}

func (s *loginScreen) Capturing() bool { return true }

func (s *loginScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case mutatedMsg:
		if msg.key == keyRequestReset {
			s.submitting = false
			if msg.err != nil {
				s.err = msg.err
				s.form = s.build()
				return s.form.Init()
			}
			s.resetting = false
			s.form = s.build()
			return tea.Batch(s.form.Init(), notify(s.env.T("auth.reset_sent"), false))
		}
		if msg.key != keyLogin {
			return nil
		}
		s.submitting = false
		if msg.err != nil {
			s.err = msg.err
			s.password = ""
			s.form = s.build()
			return s.form.Init()
		}
		return navigate(route.AfterLogin(s.loc))

	case tea.KeyMsg:
		if key.Matches(msg, toRegister) && !s.submitting {
			return navigate(route.At(route.ScreenRegister))
		}
		if key.Matches(msg, toggleReset) && !s.submitting {
			s.resetting = !s.resetting
			s.err = nil
			s.form = s.build()
			return s.form.Init()
		}
	}

	if s.submitting {
		return nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}
	switch s.form.State {
	case huh.StateCompleted:
		s.submitting = true
		s.err = nil
		if s.resetting {
			email, api := strings.TrimSpace(s.email), s.env.api
			return tea.Batch(cmd, mutate(s.env.ctx, s.ticket, keyRequestReset, func(ctx context.Context) (*types.MessageResponse, error) {
				return api.RequestPasswordReset(ctx, email)
			}))
		}
		email, password := strings.TrimSpace(s.email), s.password
		store := s.env.session
		return tea.Batch(cmd, mutate(s.env.ctx, s.ticket, keyLogin, func(ctx context.Context) (*types.User, error) {
			return store.Login(ctx, email, password)
		}))
	case huh.StateAborted:
		s.form = s.build()
		return s.form.Init()
	}
	return cmd
}

func (s *loginScreen) View(width int) string {
	st := s.env.styles
	var b strings.Builder
	if s.resetting {
		b.WriteString(st.Title.Render(s.env.T("auth.forgot_password")))
	} else {
		b.WriteString(st.Title.Render("Sign in to Amply"))
	}
	b.WriteString("\n")
	if s.err != nil {
		b.WriteString(st.Error.Render("✗ " + errorText(s.err)))
		b.WriteString("\n\n")
	}
	if s.submitting {
		b.WriteString(st.Muted.Render(s.env.T("common.loading")))
		return b.String()
	}
	b.WriteString(s.form.WithWidth(min(width, 60)).View())
	b.WriteString("\n")
	if s.resetting {
		b.WriteString(st.Key.Render("ctrl+f") + " " + st.KeyDesc.Render(s.env.T("nav.login")))
		return b.String()
	}
	b.WriteString(st.Key.Render("ctrl+r") + " " + st.KeyDesc.Render(s.env.T("nav.register")) + "  " +
		st.Key.Render("ctrl+f") + " " + st.KeyDesc.Render(s.env.T("auth.forgot_password")))
	return b.String()
}

// requiredText rejects blank input.
func requiredText(name string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return errRequired(name)
		}
		return nil
	}
}
