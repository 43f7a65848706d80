package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/amply-impact/amply/internal/access"
	"github.com/amply-impact/amply/internal/platform"
	"github.com/amply-impact/amply/internal/query"
	"github.com/amply-impact/amply/pkg/amply/types"
)

// overview is everything the dashboard shows, fetched concurrently.
type overview struct {
	summary   *types.OrganizationSummary
	campaigns *types.Page[types.Campaign]
	giving    *types.GivingSummary
	history   *types.Page[types.GivingHistoryItem]
}

// loadOverview fetches the admin or the donor overview. Admins of an
// organization that is not approved yet only get their session data.
func loadOverview(ctx context.Context, api *platform.Client, flags access.Flags) (*overview, error) {
	var ov overview
	g, ctx := errgroup.WithContext(ctx)

	switch {
	case flags.OrgAdmin && flags.Approved():
		g.Go(func() error {
			s, err := api.OrganizationSummary(ctx)
			ov.summary = s
			return err
		})
		g.Go(func() error {
			c, err := api.Campaigns(ctx, platform.ListOptions{Status: string(types.CampaignActive), PageSize: 5})
			ov.campaigns = c
			return err
		})
	case !flags.OrgAdmin:
		g.Go(func() error {
			s, err := api.GivingSummary(ctx)
			ov.giving = s
			return err
		})
		g.Go(func() error {
			h, err := api.GivingHistory(ctx, platform.ListOptions{PageSize: 5})
			ov.history = h
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ov, nil
}

type dashboardScreen struct {
	env *env

	flags   access.Flags
	data    *overview
	loading bool
	err     error
}

func newDashboardScreen(e *env) *dashboardScreen {
	return &dashboardScreen{env: e}
}

func (s *dashboardScreen) Init(ctx context.Context, t query.Ticket) tea.Cmd {
	s.flags = access.FlagsOf(s.env.session.Snapshot())
	s.loading = true
	api, flags := s.env.api, s.flags
	return load(ctx, t, "overview", func(ctx context.Context) (*overview, error) {
		return loadOverview(ctx, api, flags)
	})
}

func (s *dashboardScreen) Capturing() bool { return false }

func (s *dashboardScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.key != "overview" {
			return nil
		}
		s.loading = false
		s.err = msg.err
		if msg.err == nil {
			s.data, _ = msg.value.(*overview)
		}
	case tea.KeyMsg:
		if msg.String() == "r" {
			s.env.api.Cache().Invalidate(platform.KeyOrganizationSummary, platform.KeyCampaigns, platform.KeyGiving)
			t, ctx := s.env.reload()
			return s.Init(ctx, t)
		}
	}
	return nil
}

func (s *dashboardScreen) View(width int) string {
	st := s.env.styles
	snap := s.env.session.Snapshot()

	var b strings.Builder
	greeting := "Welcome back"
	if snap.User != nil {
		greeting += ", " + snap.User.Name()
	}
	b.WriteString(st.Title.Render(greeting))
	b.WriteString("\n")

	switch {
	case s.err != nil:
		b.WriteString(st.Error.Render("✗ " + errorText(s.err)))
		b.WriteString("\n")
		b.WriteString(st.Muted.Render("press r to retry"))
		return b.String()
	case s.loading && s.data == nil:
		b.WriteString(st.Muted.Render(s.env.T("common.loading")))
		return b.String()
	case s.data == nil:
		return b.String()
	}

	switch {
	case s.data.summary != nil:
		b.WriteString(s.organizationView())
	case s.data.giving != nil:
		b.WriteString(s.givingView())
	case snap.Organization != nil:
		b.WriteString(field(st, "Organization", snap.Organization.Name))
		b.WriteString("\n")
		b.WriteString(field(st, "Review status", string(snap.Organization.ReviewStatus)))
		b.WriteString("\n\n")
		b.WriteString(st.Muted.Render("Donations, funds and campaigns open up once your organization is approved."))
	}
	return b.String()
}

func (s *dashboardScreen) organizationView() string {
	st := s.env.styles
	sum := s.data.summary
	var b strings.Builder

	b.WriteString(field(st, "Total raised", types.FormatAmount(sum.TotalAmount, sum.Currency)))
	b.WriteString(st.Muted.Render(fmt.Sprintf("  (%d donations)", sum.TotalDonations)))
	b.WriteString("\n")
	b.WriteString(field(st, "This month", types.FormatAmount(sum.ThisMonthAmount, sum.Currency)))
	b.WriteString(st.Muted.Render(fmt.Sprintf("  (%d donations)", sum.ThisMonthCount)))
	b.WriteString("\n")
	b.WriteString(field(st, "Pending", types.FormatAmount(sum.PendingAmount, sum.Currency)))
	b.WriteString("\n")

	if len(sum.Funds) > 0 {
		b.WriteString("\n")
		b.WriteString(st.Subtitle.Render("Funds"))
		b.WriteString("\n")
		for _, f := range sum.Funds {
			name := f.Name
			if f.IsDefault {
				name += " ★"
			}
			b.WriteString(field(st, name, types.FormatAmount(f.Balance, f.Currency)))
			b.WriteString("\n")
		}
	}

	if len(sum.RecentDonations) > 0 {
		b.WriteString("\n")
		b.WriteString(st.Subtitle.Render("Recent donations"))
		b.WriteString("\n")
		for _, d := range sum.RecentDonations {
			b.WriteString(fmt.Sprintf("%-12s %-24s %s\n", shortDate(d.CompletedAt), d.DonorName, types.FormatAmount(d.Amount, d.Currency)))
		}
	}

	if c := s.data.campaigns; c != nil && len(c.Items) > 0 {
		b.WriteString("\n")
		b.WriteString(st.Subtitle.Render("Active campaigns"))
		b.WriteString("\n")
		for _, item := range c.Items {
			b.WriteString(fmt.Sprintf("%-28s %5.0f%%  %s\n", item.Title, item.ProgressPercent, types.FormatAmount(item.CurrentAmount, item.Currency)))
		}
	}
	return b.String()
}

func (s *dashboardScreen) givingView() string {
	st := s.env.styles
	g := s.data.giving
	var b strings.Builder

	b.WriteString(field(st, "Total donated", types.FormatAmount(g.TotalDonated, g.Currency)))
	b.WriteString("\n")
	b.WriteString(field(st, "Donations", fmt.Sprintf("%d", g.TotalDonations)))
	b.WriteString("\n")
	b.WriteString(field(st, "Organizations", fmt.Sprintf("%d", g.TotalOrganizations)))
	b.WriteString("\n")

	if h := s.data.history; h != nil && len(h.Items) > 0 {
		b.WriteString("\n")
		b.WriteString(st.Subtitle.Render("Recent gifts"))
		b.WriteString("\n")
		for _, item := range h.Items {
			b.WriteString(fmt.Sprintf("%-12s %-26s %s\n", shortDate(orFallback(item.CompletedAt, item.CreatedAt)), item.OrganizationName, types.FormatAmount(item.Amount, item.Currency)))
		}
	}
	return b.String()
}
