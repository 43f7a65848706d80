package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/amply-impact/amply/internal/prefs"
	"github.com/amply-impact/amply/internal/query"
	"github.com/amply-impact/amply/internal/route"
	"github.com/amply-impact/amply/internal/wizard"
	"github.com/amply-impact/amply/pkg/amply/types"
)

const keyRegister = "register"

var wizardBack = key.NewBinding(
	key.WithKeys("esc"),
	key.WithHelp("esc", "back"),
)

// registerScreen drives the registration wizard with one huh group per
// slide. Validation and submit errors stay on the slide they belong to.
type registerScreen struct {
	env *env
	wiz *wizard.Wizard

	contributorType types.ContributorType

	form   *huh.Form
	ticket query.Ticket
	err    error
}

func newRegisterScreen(e *env) *registerScreen {
	s := &registerScreen{
		env:             e,
		wiz:             wizard.New(e.metrics),
		contributorType: types.ContributorIndividual,
	}
	s.form = s.build()
	return s
}

func (s *registerScreen) build() *huh.Form {
	d := s.wiz.Draft()
	slide := s.wiz.Slide()

	var fields []huh.Field
	switch slide {
	case wizard.SlideType:
		opts := make([]huh.Option[types.ContributorType], 0, len(types.ContributorTypes))
		for _, t := range types.ContributorTypes {
			opts = append(opts, huh.NewOption(contributorLabel(t), t))
		}
		fields = append(fields, huh.NewSelect[types.ContributorType]().
			Title("How will you use Amply?").
			Options(opts...).
			Value(&s.contributorType))

	case wizard.SlideCredentials:
		fields = append(fields,
			huh.NewInput().Title("Email").Value(&d.Email),
			huh.NewInput().Title("Password").
				Description(fmt.Sprintf("At least %d characters", wizard.MinPasswordLength)).
				EchoMode(huh.EchoModePassword).
				Value(&d.Password),
			huh.NewInput().Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&d.ConfirmPassword),
		)

	case wizard.SlideName:
		fields = append(fields,
			huh.NewInput().Title("First name").Value(&d.FirstName),
			huh.NewInput().Title("Last name").Value(&d.LastName),
			huh.NewInput().Title("Display name").Description("Optional").Value(&d.DisplayName),
		)

	case wizard.SlideCompany:
		fields = append(fields,
			huh.NewInput().Title("Company name").Value(&d.CompanyName),
			huh.NewInput().Title("Your role").Description("Optional").Value(&d.CompanyRole),
		)

	case wizard.SlideAddress:
		fields = append(fields,
			huh.NewInput().Title("Address").Value(&d.AddressLine1),
			huh.NewInput().Title("Address line 2").Description("Optional").Value(&d.AddressLine2),
			huh.NewInput().Title("City").Value(&d.City),
			huh.NewInput().Title("State or region").Description("Optional").Value(&d.StateProvinceRegion),
			huh.NewInput().Title("Postal code").Value(&d.PostalCode),
			huh.NewInput().Title("Country").Description("Two-letter code, e.g. DE").CharLimit(2).Value(&d.CountryCode),
		)

	case wizard.SlideContact:
		langs := make([]huh.Option[string], 0, len(prefs.Languages))
		for _, l := range prefs.Languages {
			langs = append(langs, huh.NewOption(l.Name, string(l.Code)))
		}
		fields = append(fields,
			huh.NewInput().Title("Phone").Description("Optional").Value(&d.PhoneNumber),
			huh.NewSelect[string]().Title("Language").Options(langs...).Value(&d.LanguagePreference),
		)

	case wizard.SlidePreferences:
		vis := make([]huh.Option[types.DonorVisibility], 0, len(types.DonorVisibilities))
		for _, v := range types.DonorVisibilities {
			vis = append(vis, huh.NewOption(visibilityLabel(v), v))
		}
		fields = append(fields,
			huh.NewSelect[types.DonorVisibility]().
				Title("How should your donations appear?").
				Options(vis...).
				Value(&d.DefaultDonationVisibility),
			huh.NewConfirm().
				Title("Send me news about the causes I support").
				Affirmative("Yes").
				Negative("No").
				Value(&d.MarketingConsent),
		)

	default:
		return nil
	}

	index, total := s.wiz.Progress()
	return huh.NewForm(
		huh.NewGroup(fields...).
			Title(fmt.Sprintf("Create account · step %d of %d", index, total)).
			Description(slideDescription(slide)),
	)
}

func (s *registerScreen) Init(_ context.Context, t query.Ticket) tea.Cmd {
	s.ticket = t
	return s.form.Init()
}

func (s *registerScreen) Capturing() bool {
	return !s.wiz.Complete()
}

func (s *registerScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case mutatedMsg:
		if msg.key != keyRegister {
			return nil
		}
		s.err = msg.err
		s.form = s.build()
		if s.form == nil {
			return nil
		}
		return s.form.Init()

	case tea.KeyMsg:
		if s.wiz.Complete() {
			if key.Matches(msg, keys.Open) {
				return navigate(route.At(route.ScreenLogin))
			}
			return nil
		}
		if key.Matches(msg, wizardBack) && !s.wiz.Submitting() {
			if s.wiz.Slide() == wizard.SlideType {
				return navigate(route.At(route.ScreenLogin))
			}
			s.err = s.wiz.Back()
			s.form = s.build()
			return s.form.Init()
		}
	}

	if s.form == nil || s.wiz.Submitting() {
		return nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}
	switch s.form.State {
	case huh.StateCompleted:
		return tea.Batch(cmd, s.advance())
	case huh.StateAborted:
		return navigate(route.At(route.ScreenLogin))
	}
	return cmd
}

// advance moves past the current slide, or submits from Preferences.
func (s *registerScreen) advance() tea.Cmd {
	switch s.wiz.Slide() {
	case wizard.SlideType:
		if err := s.wiz.SetContributorType(s.contributorType); err != nil {
			s.err = err
			s.form = s.build()
			return s.form.Init()
		}
	case wizard.SlidePreferences:
		s.err = nil
		wiz, store := s.wiz, s.env.session
		return mutate(s.env.ctx, s.ticket, keyRegister, func(ctx context.Context) (*types.RegisterResponse, error) {
			return wiz.Submit(ctx, store)
		})
	}

	s.err = s.wiz.Next()
	s.form = s.build()
	return s.form.Init()
}

func (s *registerScreen) View(width int) string {
	st := s.env.styles
	var b strings.Builder

	if s.wiz.Complete() {
		resp := s.wiz.Result()
		b.WriteString(st.Success.Render("✓ Welcome to Amply"))
		b.WriteString("\n\n")
		if resp != nil && resp.Message != "" {
			b.WriteString(resp.Message)
		} else {
			b.WriteString("Your account was created. Check your inbox to verify your email address.")
		}
		b.WriteString("\n\n")
		b.WriteString(st.Key.Render("enter") + " " + st.KeyDesc.Render(s.env.T("nav.login")))
		return b.String()
	}

	if s.err != nil {
		b.WriteString(st.Error.Render("✗ " + errorText(s.err)))
		b.WriteString("\n\n")
	}
	if s.wiz.Submitting() {
		b.WriteString(st.Muted.Render("Creating your account…"))
		return b.String()
	}
	if s.form != nil {
		b.WriteString(s.form.WithWidth(min(width, 70)).View())
	}
	b.WriteString("\n")
	b.WriteString(st.Key.Render("esc") + " " + st.KeyDesc.Render("back"))
	return b.String()
}

func contributorLabel(t types.ContributorType) string {
	switch t {
	case types.ContributorIndividual:
		return "Individual donor"
	case types.ContributorBusiness:
		return "Business"
	case types.ContributorFundraiser:
		return "Fundraiser"
	}
	return string(t)
}

func visibilityLabel(v types.DonorVisibility) string {
	switch v {
	case types.VisibilityPublicFull:
		return "Show my name"
	case types.VisibilityPublicAnonymous:
		return "Anonymous on public ledgers"
	case types.VisibilityPrivate:
		return "Private"
	}
	return string(v)
}

func slideDescription(s wizard.Slide) string {
	switch s {
	case wizard.SlideType:
		return "Choose the kind of account you need."
	case wizard.SlideCredentials:
		return "You will sign in with these."
	case wizard.SlideName:
		return "How should we address you?"
	case wizard.SlideCompany:
		return "Tell us about your company."
	case wizard.SlideAddress:
		return "Used for donation receipts."
	case wizard.SlideContact:
		return "How can we reach you?"
	case wizard.SlidePreferences:
		return "You can change these later."
	}
	return ""
}
