package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/amply-impact/amply/internal/platform"
	"github.com/amply-impact/amply/internal/query"
	"github.com/amply-impact/amply/internal/route"
	"github.com/amply-impact/amply/internal/session"
	"github.com/amply-impact/amply/pkg/amply/types"
)

var editOrganization = key.NewBinding(
	key.WithKeys("e"),
	key.WithHelp("e", "edit"),
)

type organizationScreen struct {
	env *env

	org *types.OrganizationDetail
	err error
}

func newOrganizationScreen(e *env) *organizationScreen {
	return &organizationScreen{env: e}
}

func (s *organizationScreen) Init(ctx context.Context, t query.Ticket) tea.Cmd {
	api := s.env.api
	return load(ctx, t, "organization", api.Organization)
}

func (s *organizationScreen) Capturing() bool { return false }

func (s *organizationScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.key != "organization" {
			return nil
		}
		s.err = msg.err
		if msg.err == nil {
			s.org, _ = msg.value.(*types.OrganizationDetail)
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, editOrganization):
			return navigate(route.At(route.ScreenOrganizationSettings))
		case key.Matches(msg, keys.Reload):
			s.env.api.Cache().Invalidate(platform.KeyOrganization)
			t, ctx := s.env.reload()
			return s.Init(ctx, t)
		}
	}
	return nil
}

func (s *organizationScreen) View(width int) string {
	st := s.env.styles
	var b strings.Builder

	switch {
	case s.err != nil:
		b.WriteString(st.Error.Render("✗ " + errorText(s.err)))
		return b.String()
	case s.org == nil:
		b.WriteString(st.Muted.Render(s.env.T("common.loading")))
		return b.String()
	}

	o := s.org
	b.WriteString(st.Title.Render(orFallback(o.DisplayName, o.Name)))
	b.WriteString("\n")
	if o.MissionStatement != "" {
		b.WriteString(st.Subtitle.Render(o.MissionStatement))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	lines := []struct{ label, value string }{
		{"Slug", o.Slug},
		{"Type", humanize(o.OrganizationType)},
		{"Review status", reviewLabel(o.ReviewStatus)},
		{"Verification", humanize(o.VerificationStatus)},
		{"Public", yesNo(o.IsPublic)},
		{"Accepts donations", yesNo(o.CanReceiveDonations)},
		{"Stripe charges", yesNo(o.StripeChargesEnabled)},
		{"Stripe payouts", yesNo(o.StripePayoutsEnabled)},
		{"Currency", o.DefaultCurrency},
		{"Contact", orDash(o.ContactEmail)},
		{"Website", orDash(o.WebsiteURL)},
		{"Location", orDash(joinNonEmpty(", ", o.City, o.CountryCode))},
	}
	if len(o.SDGs) > 0 {
		sdgs := make([]string, 0, len(o.SDGs))
		for _, n := range o.SDGs {
			sdgs = append(sdgs, fmt.Sprintf("%d", n))
		}
		lines = append(lines, struct{ label, value string }{"SDGs", strings.Join(sdgs, ", ")})
	}
	for _, l := range lines {
		b.WriteString(field(st, l.label, l.value))
		b.WriteString("\n")
	}

	if o.Description != "" {
		b.WriteString("\n")
		b.WriteString(renderMarkdown(o.Description, s.env.prefs.ResolvedTheme(), width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(st.Key.Render("e") + " edit  " + st.Key.Render("r") + " reload")
	return b.String()
}

func reviewLabel(s types.ReviewStatus) string {
	switch s {
	case types.ReviewApproved:
		return "Approved"
	case types.ReviewPending:
		return "Pending review"
	case types.ReviewInfoRequested:
		return "Information requested"
	case types.ReviewRejected:
		return "Rejected"
	}
	return orDash(string(s))
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// organizationValues holds the editable profile fields.
type organizationValues struct {
	displayName  string
	description  string
	mission      string
	website      string
	contactEmail string
	contactPhone string
	city         string
	postalCode   string
}

func valuesOf(o *types.OrganizationDetail) organizationValues {
	return organizationValues{
		displayName:  o.DisplayName,
		description:  o.Description,
		mission:      o.MissionStatement,
		website:      o.WebsiteURL,
		contactEmail: o.ContactEmail,
		contactPhone: o.ContactPhone,
		city:         o.City,
		postalCode:   o.PostalCode,
	}
}

// diff returns an update carrying only the fields that changed.
func (v organizationValues) diff(was organizationValues) (types.OrganizationUpdate, bool) {
	var u types.OrganizationUpdate
	changed := false
	set := func(dst **string, now, before string) {
		now = strings.TrimSpace(now)
		if now != strings.TrimSpace(before) {
			*dst = &now
			changed = true
		}
	}
	set(&u.DisplayName, v.displayName, was.displayName)
	set(&u.Description, v.description, was.description)
	set(&u.MissionStatement, v.mission, was.mission)
	set(&u.WebsiteURL, v.website, was.website)
	set(&u.ContactEmail, v.contactEmail, was.contactEmail)
	set(&u.ContactPhone, v.contactPhone, was.contactPhone)
	set(&u.City, v.city, was.city)
	set(&u.PostalCode, v.postalCode, was.postalCode)
	return u, changed
}

// organizationSettingsScreen loads the organization, then hands over to
// an edit form prefilled with its values.
type organizationSettingsScreen struct {
	env *env

	org    *types.OrganizationDetail
	form   *formScreen
	err    error
	ticket query.Ticket
}

func newOrganizationSettingsScreen(e *env) *organizationSettingsScreen {
	return &organizationSettingsScreen{env: e}
}

func (s *organizationSettingsScreen) Init(ctx context.Context, t query.Ticket) tea.Cmd {
	s.ticket = t
	return load(ctx, t, "organization", s.env.api.Organization)
}

func (s *organizationSettingsScreen) Capturing() bool { return s.form != nil }

func (s *organizationSettingsScreen) Update(msg tea.Msg) tea.Cmd {
	if lm, ok := msg.(loadedMsg); ok && lm.key == "organization" {
		s.err = lm.err
		if lm.err != nil {
			return nil
		}
		s.org, _ = lm.value.(*types.OrganizationDetail)
		if s.org == nil {
			return nil
		}
		s.form = s.editForm()
		return s.form.Init(s.env.ctx, s.ticket)
	}
	if s.form != nil {
		return s.form.Update(msg)
	}
	return nil
}

func (s *organizationSettingsScreen) editForm() *formScreen {
	was := valuesOf(s.org)
	v := was
	api, store := s.env.api, s.env.session
	return &formScreen{
		env:   s.env,
		key:   "organization.update",
		title: s.env.T("nav.org_settings"),
		build: func() *huh.Form {
			return huh.NewForm(
				huh.NewGroup(
					huh.NewInput().Title("Display name").Value(&v.displayName),
					huh.NewInput().Title("Mission statement").CharLimit(500).Value(&v.mission),
					huh.NewText().Title("Description").Description("Markdown").Value(&v.description),
				),
				huh.NewGroup(
					huh.NewInput().Title("Website").Value(&v.website).Validate(validURL),
					huh.NewInput().Title("Contact email").Value(&v.contactEmail).Validate(requiredText("contact email")),
					huh.NewInput().Title("Contact phone").Value(&v.contactPhone),
					huh.NewInput().Title("City").Value(&v.city),
					huh.NewInput().Title("Postal code").Value(&v.postalCode),
				),
			)
		},
		submit: func(ctx context.Context) (any, error) {
			update, changed := v.diff(was)
			if !changed {
				return nil, nil
			}
			return api.UpdateOrganization(ctx, update)
		},
		after: func(value any) tea.Cmd {
			detail, _ := value.(*types.OrganizationDetail)
			if detail == nil {
				return tea.Batch(notify("Nothing to save", false), navigate(route.At(route.ScreenOrganization)))
			}
			store.UpdateUser(session.UserPatch{Organization: detail.Summary()})
			return tea.Batch(notify("Organization saved", false), navigate(route.At(route.ScreenOrganization)))
		},
		cancel: func() tea.Cmd { return navigate(route.At(route.ScreenOrganization)) },
	}
}

func (s *organizationSettingsScreen) View(width int) string {
	st := s.env.styles
	switch {
	case s.err != nil:
		return st.Error.Render("✗ " + errorText(s.err))
	case s.form == nil:
		return st.Muted.Render(s.env.T("common.loading"))
	}
	return s.form.View(width)
}

func validURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://") {
		return nil
	}
	return fmt.Errorf("website must start with http:// or https://")
}
