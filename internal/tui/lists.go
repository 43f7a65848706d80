package tui

import (
	"context"
	"fmt"

	"github.com/amply-impact/amply/internal/platform"
	"github.com/amply-impact/amply/internal/route"
	"github.com/amply-impact/amply/pkg/amply/types"
)

// shortDate trims an RFC 3339 timestamp to its date.
func shortDate(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return orDash(ts)
}

func donationsList() listConfig[types.DonationListItem] {
	return listConfig[types.DonationListItem]{
		key:      "donations",
		title:    "nav.donations",
		empty:    "No donations yet. Share your donation page to get started.",
		cacheKey: platform.KeyDonations,
		paged:    true,
		columns: []column[types.DonationListItem]{
			{"Date", 12, func(d types.DonationListItem) string { return shortDate(orFallback(d.CompletedAt, d.CreatedAt)) }},
			{"Donor", 24, types.DonationListItem.DonorName},
			{"Amount", 14, func(d types.DonationListItem) string { return types.FormatAmount(d.Amount, d.Currency) }},
			{"Net", 14, func(d types.DonationListItem) string { return types.FormatAmount(d.NetAmount, d.Currency) }},
			{"Fund", 18, func(d types.DonationListItem) string { return orDash(d.FundName) }},
			{"Status", 12, func(d types.DonationListItem) string { return d.Status }},
		},
		fetch: func(ctx context.Context, api *platform.Client, page int) (*types.Page[types.DonationListItem], error) {
			return api.Donations(ctx, platform.ListOptions{Page: page})
		},
	}
}

func ledgerList() listConfig[types.LedgerEntry] {
	return listConfig[types.LedgerEntry]{
		key:      "ledger",
		title:    "nav.ledger",
		empty:    "The ledger is empty.",
		cacheKey: platform.KeyLedger,
		paged:    true,
		columns: []column[types.LedgerEntry]{
			{"#", 6, func(e types.LedgerEntry) string { return fmt.Sprintf("%d", e.SequenceNumber) }},
			{"Date", 12, func(e types.LedgerEntry) string { return shortDate(e.CreatedAt) }},
			{"Type", 18, func(e types.LedgerEntry) string { return humanize(string(e.EntryType)) }},
			{"Amount", 14, func(e types.LedgerEntry) string { return types.FormatAmount(e.Amount, e.Currency) }},
			{"Fund", 18, func(e types.LedgerEntry) string { return orDash(e.FundName) }},
			{"Description", 30, func(e types.LedgerEntry) string { return orDash(e.Description) }},
		},
		fetch: func(ctx context.Context, api *platform.Client, page int) (*types.Page[types.LedgerEntry], error) {
			return api.Ledger(ctx, platform.ListOptions{Page: page})
		},
	}
}

func fundsList() listConfig[types.Fund] {
	return listConfig[types.Fund]{
		key:      "funds",
		title:    "nav.funds",
		empty:    "No funds yet. Press n to create one.",
		cacheKey: platform.KeyFunds,
		columns: []column[types.Fund]{
			{"Name", 24, func(f types.Fund) string {
				if f.IsDefault {
					return f.Name + " ★"
				}
				return f.Name
			}},
			{"Type", 12, func(f types.Fund) string { return humanize(string(f.FundType)) }},
			{"Balance", 14, func(f types.Fund) string { return types.FormatAmount(f.CurrentAmount, f.Currency) }},
			{"Goal", 14, func(f types.Fund) string {
				if f.GoalAmount == nil {
					return "-"
				}
				return types.FormatAmount(*f.GoalAmount, f.Currency)
			}},
			{"Progress", 9, func(f types.Fund) string { return fmt.Sprintf("%.0f%%", f.Progress()) }},
			{"Active", 7, func(f types.Fund) string { return yesNo(f.IsActive) }},
		},
		fetch: func(ctx context.Context, api *platform.Client, _ int) (*types.Page[types.Fund], error) {
			return api.Funds(ctx)
		},
		create: newFundForm,
	}
}

func campaignsList() listConfig[types.Campaign] {
	newLoc := route.At(route.ScreenCampaignNew)
	return listConfig[types.Campaign]{
		key:      "campaigns",
		title:    "nav.campaigns",
		empty:    "No campaigns yet. Press n to start one.",
		cacheKey: platform.KeyCampaigns,
		paged:    true,
		columns: []column[types.Campaign]{
			{"Title", 28, func(c types.Campaign) string { return c.Title }},
			{"Status", 10, func(c types.Campaign) string { return string(c.Status) }},
			{"Raised", 14, func(c types.Campaign) string { return types.FormatAmount(c.CurrentAmount, c.Currency) }},
			{"Goal", 14, func(c types.Campaign) string { return types.FormatAmount(c.GoalAmount, c.Currency) }},
			{"Progress", 9, func(c types.Campaign) string { return fmt.Sprintf("%.0f%%", c.ProgressPercent) }},
			{"Donations", 9, func(c types.Campaign) string { return fmt.Sprintf("%d", c.DonationCount) }},
		},
		fetch: func(ctx context.Context, api *platform.Client, page int) (*types.Page[types.Campaign], error) {
			return api.Campaigns(ctx, platform.ListOptions{Page: page})
		},
		open: func(c types.Campaign) route.Location {
			return route.Location{Screen: route.ScreenCampaignDetail, ID: c.ID}
		},
		newLoc: &newLoc,
	}
}

func widgetsList() listConfig[types.Widget] {
	newLoc := route.At(route.ScreenWidgetNew)
	return listConfig[types.Widget]{
		key:      "widgets",
		title:    "nav.widgets",
		empty:    "No widgets yet. Press n to create one.",
		cacheKey: platform.KeyWidgets,
		columns: []column[types.Widget]{
			{"Name", 24, func(w types.Widget) string { return w.Name }},
			{"Type", 18, func(w types.Widget) string { return humanize(string(w.Type)) }},
			{"Theme", 8, func(w types.Widget) string { return string(w.Theme) }},
			{"Embeds", 7, func(w types.Widget) string { return fmt.Sprintf("%d", w.EmbedCount) }},
			{"Active", 7, func(w types.Widget) string { return yesNo(w.IsActive) }},
		},
		fetch: func(ctx context.Context, api *platform.Client, _ int) (*types.Page[types.Widget], error) {
			return api.Widgets(ctx)
		},
		open: func(w types.Widget) route.Location {
			return route.Location{Screen: route.ScreenWidgetDetail, ID: w.ID}
		},
		newLoc: &newLoc,
		remove: func(ctx context.Context, api *platform.Client, w types.Widget) error {
			return api.DeleteWidget(ctx, w.ID)
		},
		label: func(w types.Widget) string { return fmt.Sprintf("widget %q", w.Name) },
	}
}

func givingList() listConfig[types.GivingHistoryItem] {
	return listConfig[types.GivingHistoryItem]{
		key:      "giving",
		title:    "nav.giving",
		empty:    "You have not made any donations yet.",
		cacheKey: platform.KeyGiving,
		paged:    true,
		columns: []column[types.GivingHistoryItem]{
			{"Date", 12, func(g types.GivingHistoryItem) string { return shortDate(orFallback(g.CompletedAt, g.CreatedAt)) }},
			{"Organization", 26, func(g types.GivingHistoryItem) string { return g.OrganizationName }},
			{"For", 22, func(g types.GivingHistoryItem) string { return orDash(orFallback(g.CampaignTitle, g.FundName)) }},
			{"Amount", 14, func(g types.GivingHistoryItem) string { return types.FormatAmount(g.Amount, g.Currency) }},
			{"Status", 10, func(g types.GivingHistoryItem) string { return g.Status }},
			{"Receipt", 14, func(g types.GivingHistoryItem) string { return orDash(g.ReceiptNumber) }},
		},
		fetch: func(ctx context.Context, api *platform.Client, page int) (*types.Page[types.GivingHistoryItem], error) {
			return api.GivingHistory(ctx, platform.ListOptions{Page: page})
		},
	}
}

func orFallback(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
