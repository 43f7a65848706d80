package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/amply-impact/amply/internal/query"
	"github.com/amply-impact/amply/internal/route"
	"github.com/amply-impact/amply/pkg/amply/types"
)

// formClosedMsg is sent by an inline form when it is left.
type formClosedMsg struct {
	saved bool
}

// formScreen is a huh form that runs one mutation when completed. It is
// mounted as a screen of its own or embedded in a list. A failed
// mutation rebuilds the form with the entered values kept.
type formScreen struct {
	env   *env
	key   string
	title string

	build  func() *huh.Form
	submit func(ctx context.Context) (any, error)
	// after runs on success, cancel on esc or abort.
	after  func(value any) tea.Cmd
	cancel func() tea.Cmd

	form       *huh.Form
	ticket     query.Ticket
	submitting bool
	err        error
}

func (f *formScreen) Init(_ context.Context, t query.Ticket) tea.Cmd {
	f.ticket = t
	f.form = f.build()
	return f.form.Init()
}

func (f *formScreen) Capturing() bool { return true }

func (f *formScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case mutatedMsg:
		if msg.key != f.key {
			return nil
		}
		f.submitting = false
		if msg.err != nil {
			f.err = msg.err
			f.form = f.build()
			if isExpired(msg.err) {
				return f.form.Init()
			}
			return tea.Batch(f.form.Init(), notify(errorText(msg.err), true))
		}
		return f.after(msg.value)

	case tea.KeyMsg:
		if key.Matches(msg, keys.Dismiss) && !f.submitting {
			return f.cancel()
		}
	}

	if f.submitting || f.form == nil {
		return nil
	}

	form, cmd := f.form.Update(msg)
	if ff, ok := form.(*huh.Form); ok {
		f.form = ff
	}
	switch f.form.State {
	case huh.StateCompleted:
		f.submitting = true
		f.err = nil
		return tea.Batch(cmd, mutate(f.env.ctx, f.ticket, f.key, f.submit))
	case huh.StateAborted:
		return f.cancel()
	}
	return cmd
}

func (f *formScreen) View(width int) string {
	st := f.env.styles
	var b strings.Builder
	b.WriteString(st.Title.Render(f.title))
	b.WriteString("\n")
	if f.err != nil {
		b.WriteString(st.Error.Render("✗ " + errorText(f.err)))
		b.WriteString("\n\n")
	}
	switch {
	case f.submitting:
		b.WriteString(st.Muted.Render("Saving…"))
	case f.form != nil:
		b.WriteString(f.form.WithWidth(min(width, 72)).View())
		b.WriteString("\n")
		b.WriteString(st.Key.Render("esc") + " " + st.KeyDesc.Render("cancel"))
	}
	return b.String()
}

func errRequired(name string) error {
	return fmt.Errorf("%s is required", name)
}

func validAmount(optional bool) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			if optional {
				return nil
			}
			return errRequired("amount")
		}
		v, err := types.ParseAmount(s)
		if err != nil {
			return err
		}
		if v <= 0 {
			return fmt.Errorf("amount must be positive")
		}
		return nil
	}
}

func currencyOptions() []huh.Option[string] {
	return huh.NewOptions("EUR", "USD", "GBP", "CHF")
}

type fundValues struct {
	name        string
	description string
	fundType    types.FundType
	currency    string
	goal        string
}

// newFundForm is the inline create form of the funds list.
func newFundForm(e *env) *formScreen {
	v := &fundValues{fundType: types.FundGeneral, currency: "EUR"}
	api := e.api
	return &formScreen{
		env:   e,
		key:   "funds.create",
		title: "New fund",
		build: func() *huh.Form {
			return huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Name").Value(&v.name).Validate(requiredText("name")),
				huh.NewText().Title("Description").Value(&v.description),
				huh.NewSelect[types.FundType]().Title("Type").
					Options(
						huh.NewOption("General", types.FundGeneral),
						huh.NewOption("Project", types.FundProject),
						huh.NewOption("Restricted", types.FundRestricted),
						huh.NewOption("Emergency", types.FundEmergency),
					).
					Value(&v.fundType),
				huh.NewSelect[string]().Title("Currency").Options(currencyOptions()...).Value(&v.currency),
				huh.NewInput().Title("Goal").Description("Optional, e.g. 5000").Value(&v.goal).Validate(validAmount(true)),
			))
		},
		submit: func(ctx context.Context) (any, error) {
			req := types.FundCreate{
				Name:        strings.TrimSpace(v.name),
				Description: strings.TrimSpace(v.description),
				FundType:    v.fundType,
				Currency:    v.currency,
			}
			if strings.TrimSpace(v.goal) != "" {
				goal, err := types.ParseAmount(v.goal)
				if err != nil {
					return nil, err
				}
				req.GoalAmount = &goal
			}
			return api.CreateFund(ctx, req)
		},
		after: func(any) tea.Cmd {
			return tea.Batch(
				notify("Fund created", false),
				func() tea.Msg { return formClosedMsg{saved: true} },
			)
		},
		cancel: func() tea.Cmd {
			return func() tea.Msg { return formClosedMsg{} }
		},
	}
}

type campaignValues struct {
	title    string
	kind     types.CampaignType
	short    string
	story    string
	goal     string
	currency string
}

func newCampaignForm(e *env) *formScreen {
	v := &campaignValues{kind: types.CampaignFundraiser, currency: "EUR"}
	api := e.api
	return &formScreen{
		env:   e,
		key:   "campaigns.create",
		title: "New campaign",
		build: func() *huh.Form {
			return huh.NewForm(
				huh.NewGroup(
					huh.NewInput().Title("Title").Value(&v.title).Validate(requiredText("title")),
					huh.NewSelect[types.CampaignType]().Title("Type").
						Options(
							huh.NewOption("Fundraiser", types.CampaignFundraiser),
							huh.NewOption("Project", types.CampaignProject),
							huh.NewOption("Emergency", types.CampaignEmergency),
							huh.NewOption("Recurring", types.CampaignRecurring),
						).
						Value(&v.kind),
					huh.NewInput().Title("Short description").CharLimit(280).Value(&v.short),
				),
				huh.NewGroup(
					huh.NewText().Title("Story").Description("Markdown").Value(&v.story),
					huh.NewInput().Title("Goal").Value(&v.goal).Validate(validAmount(false)),
					huh.NewSelect[string]().Title("Currency").Options(currencyOptions()...).Value(&v.currency),
				),
			)
		},
		submit: func(ctx context.Context) (any, error) {
			goal, err := types.ParseAmount(v.goal)
			if err != nil {
				return nil, err
			}
			return api.CreateCampaign(ctx, types.CampaignCreate{
				Title:            strings.TrimSpace(v.title),
				Type:             v.kind,
				ShortDescription: strings.TrimSpace(v.short),
				Story:            v.story,
				GoalAmount:       goal,
				Currency:         v.currency,
			})
		},
		after: func(value any) tea.Cmd {
			c, ok := value.(*types.Campaign)
			if !ok || c == nil {
				return navigate(route.At(route.ScreenCampaigns))
			}
			return tea.Batch(
				notify(fmt.Sprintf("Campaign %q created", c.Title), false),
				navigate(route.Location{Screen: route.ScreenCampaignDetail, ID: c.ID}),
			)
		},
		cancel: func() tea.Cmd { return navigate(route.At(route.ScreenCampaigns)) },
	}
}

type widgetValues struct {
	name       string
	kind       types.WidgetType
	theme      types.WidgetTheme
	buttonText string
	showGoal   bool
}

func newWidgetForm(e *env) *formScreen {
	v := &widgetValues{kind: types.WidgetDonationButton, theme: types.WidgetThemeAuto, showGoal: true}
	api := e.api
	return &formScreen{
		env:   e,
		key:   "widgets.create",
		title: "New widget",
		build: func() *huh.Form {
			kinds := make([]huh.Option[types.WidgetType], 0, len(types.WidgetTypes))
			for _, t := range types.WidgetTypes {
				kinds = append(kinds, huh.NewOption(humanize(string(t)), t))
			}
			return huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Name").Value(&v.name).Validate(requiredText("name")),
				huh.NewSelect[types.WidgetType]().Title("Type").Options(kinds...).Value(&v.kind),
				huh.NewSelect[types.WidgetTheme]().Title("Theme").
					Options(
						huh.NewOption("Auto", types.WidgetThemeAuto),
						huh.NewOption("Light", types.WidgetThemeLight),
						huh.NewOption("Dark", types.WidgetThemeDark),
					).
					Value(&v.theme),
				huh.NewInput().Title("Button text").Description("Optional").Value(&v.buttonText),
				huh.NewConfirm().Title("Show goal progress").Value(&v.showGoal),
			))
		},
		submit: func(ctx context.Context) (any, error) {
			showGoal := v.showGoal
			return api.CreateWidget(ctx, types.WidgetCreate{
				Name:       strings.TrimSpace(v.name),
				Type:       v.kind,
				Theme:      v.theme,
				ButtonText: strings.TrimSpace(v.buttonText),
				ShowGoal:   &showGoal,
			})
		},
		after: func(value any) tea.Cmd {
			w, ok := value.(*types.Widget)
			if !ok || w == nil {
				return navigate(route.At(route.ScreenWidgets))
			}
			return tea.Batch(
				notify(fmt.Sprintf("Widget %q created", w.Name), false),
				navigate(route.Location{Screen: route.ScreenWidgetDetail, ID: w.ID}),
			)
		},
		cancel: func() tea.Cmd { return navigate(route.At(route.ScreenWidgets)) },
	}
}

// humanize turns snake_case API values into labels.
func humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
