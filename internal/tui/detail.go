package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/amply-impact/amply/internal/prefs"
	"github.com/amply-impact/amply/internal/query"
	"github.com/amply-impact/amply/internal/route"
	"github.com/amply-impact/amply/pkg/amply/types"
)

var (
	campaignActivate = key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "activate"),
	)
	campaignPause = key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause"),
	)
	widgetToggle = key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "toggle active"),
	)
	back = key.NewBinding(
		key.WithKeys("esc", "backspace"),
		key.WithHelp("esc", "back"),
	)
)

// renderMarkdown renders md for the resolved theme at width.
func renderMarkdown(md string, theme prefs.Theme, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(string(theme)),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

type campaignScreen struct {
	env *env
	id  string

	campaign *types.Campaign
	story    string
	storyW   int
	bar      progress.Model
	loading  bool
	saving   bool
	err      error
	ticket   query.Ticket
}

func newCampaignScreen(e *env, id string) *campaignScreen {
	return &campaignScreen{env: e, id: id, bar: progress.New(progress.WithDefaultGradient())}
}

func (s *campaignScreen) Init(ctx context.Context, t query.Ticket) tea.Cmd {
	s.ticket = t
	s.loading = true
	api, id := s.env.api, s.id
	return load(ctx, t, "campaign", func(ctx context.Context) (*types.Campaign, error) {
		return api.Campaign(ctx, id)
	})
}

func (s *campaignScreen) Capturing() bool { return false }

func (s *campaignScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.bar.Width = min(msg.Width-4, 60)
		if msg.Width != s.storyW {
			s.storyW = msg.Width
			s.renderStory()
		}

	case loadedMsg:
		if msg.key != "campaign" {
			return nil
		}
		s.loading = false
		s.err = msg.err
		if msg.err == nil {
			s.campaign, _ = msg.value.(*types.Campaign)
			s.renderStory()
		}

	case mutatedMsg:
		if msg.key != "campaign.status" {
			return nil
		}
		s.saving = false
		if msg.err != nil {
			if isExpired(msg.err) {
				return nil
			}
			return notify(errorText(msg.err), true)
		}
		if c, ok := msg.value.(*types.Campaign); ok && c != nil {
			s.campaign = c
			s.renderStory()
		}
		return notify("Campaign updated", false)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, back):
			return navigate(route.At(route.ScreenCampaigns))
		case key.Matches(msg, campaignActivate):
			return s.setStatus(types.CampaignActive)
		case key.Matches(msg, campaignPause):
			return s.setStatus(types.CampaignPaused)
		}
	}
	return nil
}

func (s *campaignScreen) setStatus(status types.CampaignStatus) tea.Cmd {
	if s.campaign == nil || s.saving || s.campaign.Status == status {
		return nil
	}
	s.saving = true
	api, id := s.env.api, s.id
	return mutate(s.env.ctx, s.ticket, "campaign.status", func(ctx context.Context) (*types.Campaign, error) {
		return api.UpdateCampaign(ctx, id, types.CampaignUpdate{Status: &status})
	})
}

func (s *campaignScreen) renderStory() {
	if s.campaign == nil || strings.TrimSpace(s.campaign.Story) == "" {
		s.story = ""
		return
	}
	s.story = renderMarkdown(s.campaign.Story, s.env.prefs.ResolvedTheme(), s.storyW)
}

func (s *campaignScreen) View(width int) string {
	st := s.env.styles
	var b strings.Builder

	switch {
	case s.err != nil:
		b.WriteString(st.Error.Render("✗ " + errorText(s.err)))
		return b.String()
	case s.campaign == nil:
		b.WriteString(st.Muted.Render(s.env.T("common.loading")))
		return b.String()
	}

	c := s.campaign
	b.WriteString(st.Title.Render(c.Title))
	b.WriteString("\n")
	if c.ShortDescription != "" {
		b.WriteString(st.Subtitle.Render(c.ShortDescription))
		b.WriteString("\n")
	}
	b.WriteString(field(st, "Status", string(c.Status)))
	b.WriteString("\n")
	b.WriteString(field(st, "Type", humanize(string(c.Type))))
	b.WriteString("\n")
	b.WriteString(field(st, "Raised", fmt.Sprintf("%s of %s", types.FormatAmount(c.CurrentAmount, c.Currency), types.FormatAmount(c.GoalAmount, c.Currency))))
	b.WriteString("\n")
	b.WriteString(field(st, "Donations", fmt.Sprintf("%d", c.DonationCount)))
	b.WriteString("\n")
	b.WriteString(field(st, "Public", yesNo(c.IsPublic)))
	b.WriteString("\n")
	if c.StartsAt != "" || c.EndsAt != "" {
		b.WriteString(field(st, "Runs", fmt.Sprintf("%s → %s", shortDate(c.StartsAt), shortDate(c.EndsAt))))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.bar.ViewAs(min(c.ProgressPercent, 100) / 100))
	b.WriteString("\n")

	if s.story != "" {
		b.WriteString("\n")
		b.WriteString(s.story)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if s.saving {
		b.WriteString(st.Muted.Render("Saving…"))
	} else {
		b.WriteString(st.Key.Render("a") + " activate  " + st.Key.Render("p") + " pause  " + st.Key.Render("esc") + " back")
	}
	return b.String()
}

type widgetScreen struct {
	env *env
	id  string

	widget     *types.Widget
	saving     bool
	confirming bool
	err        error
	ticket     query.Ticket
}

func newWidgetScreen(e *env, id string) *widgetScreen {
	return &widgetScreen{env: e, id: id}
}

func (s *widgetScreen) Init(ctx context.Context, t query.Ticket) tea.Cmd {
	s.ticket = t
	api, id := s.env.api, s.id
	return load(ctx, t, "widget", func(ctx context.Context) (*types.Widget, error) {
		return api.Widget(ctx, id)
	})
}

func (s *widgetScreen) Capturing() bool { return s.confirming }

func (s *widgetScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.key != "widget" {
			return nil
		}
		s.err = msg.err
		if msg.err == nil {
			s.widget, _ = msg.value.(*types.Widget)
		}

	case mutatedMsg:
		s.saving = false
		switch msg.key {
		case "widget.toggle":
			if msg.err != nil {
				break
			}
			if w, ok := msg.value.(*types.Widget); ok && w != nil {
				s.widget = w
			}
			return notify("Widget updated", false)
		case "widget.delete":
			if msg.err != nil {
				break
			}
			return tea.Batch(notify("Widget deleted", false), navigate(route.At(route.ScreenWidgets)))
		default:
			return nil
		}
		if isExpired(msg.err) {
			return nil
		}
		return notify(errorText(msg.err), true)

	case tea.KeyMsg:
		if s.confirming {
			switch {
			case key.Matches(msg, keys.Confirm):
				s.confirming = false
				s.saving = true
				api, id := s.env.api, s.id
				return mutate(s.env.ctx, s.ticket, "widget.delete", func(ctx context.Context) (struct{}, error) {
					return struct{}{}, api.DeleteWidget(ctx, id)
				})
			case key.Matches(msg, keys.Cancel):
				s.confirming = false
			}
			return nil
		}
		switch {
		case key.Matches(msg, back):
			return navigate(route.At(route.ScreenWidgets))
		case key.Matches(msg, keys.Delete) && s.widget != nil && !s.saving:
			s.confirming = true
		case key.Matches(msg, widgetToggle) && s.widget != nil && !s.saving:
			s.saving = true
			active := !s.widget.IsActive
			api, id := s.env.api, s.id
			return mutate(s.env.ctx, s.ticket, "widget.toggle", func(ctx context.Context) (*types.Widget, error) {
				return api.UpdateWidget(ctx, id, types.WidgetUpdate{IsActive: &active})
			})
		}
	}
	return nil
}

func (s *widgetScreen) View(width int) string {
	st := s.env.styles
	var b strings.Builder

	switch {
	case s.err != nil:
		b.WriteString(st.Error.Render("✗ " + errorText(s.err)))
		return b.String()
	case s.widget == nil:
		b.WriteString(st.Muted.Render(s.env.T("common.loading")))
		return b.String()
	}

	w := s.widget
	b.WriteString(st.Title.Render(w.Name))
	b.WriteString("\n")
	b.WriteString(field(st, "Type", humanize(string(w.Type))))
	b.WriteString("\n")
	b.WriteString(field(st, "Theme", string(w.Theme)))
	b.WriteString("\n")
	b.WriteString(field(st, "Button text", orDash(w.ButtonText)))
	b.WriteString("\n")
	b.WriteString(field(st, "Shows goal", yesNo(w.ShowGoal)))
	b.WriteString("\n")
	b.WriteString(field(st, "Embeds", fmt.Sprintf("%d", w.EmbedCount)))
	b.WriteString("\n")
	b.WriteString(field(st, "Active", yesNo(w.IsActive)))
	b.WriteString("\n\n")

	if w.EmbedCode != "" {
		b.WriteString(st.Muted.Render("Embed code"))
		b.WriteString("\n")
		b.WriteString(st.Border.Width(min(width-2, 80)).Render(w.EmbedCode))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case s.confirming:
		b.WriteString(st.Warning.Render(fmt.Sprintf("Delete widget %q? ", w.Name)))
		b.WriteString(st.Key.Render("y") + "/" + st.Key.Render("n"))
	case s.saving:
		b.WriteString(st.Muted.Render("Saving…"))
	default:
		b.WriteString(st.Key.Render("t") + " toggle active  " + st.Key.Render("d") + " delete  " + st.Key.Render("esc") + " back")
	}
	return b.String()
}
