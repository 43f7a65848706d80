package platform

import (
	"context"
	"net/url"

	"github.com/amply-impact/amply/internal/gateway"
	"github.com/amply-impact/amply/internal/query"
	"github.com/amply-impact/amply/pkg/amply/types"
)

// Organization returns the signed-in admin's organization.
func (c *Client) Organization(ctx context.Context) (*types.OrganizationDetail, error) {
	org, err := get[types.OrganizationDetail](ctx, c, keyWith(KeyOrganization, "detail"), "/organizations/mine")
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// UpdateOrganization patches the organization profile.
func (c *Client) UpdateOrganization(ctx context.Context, update types.OrganizationUpdate) (*types.OrganizationDetail, error) {
	var org types.OrganizationDetail
	if err := c.api.Patch(ctx, "/organizations/mine", update, &org); err != nil {
		return nil, err
	}
	c.cache.Invalidate(KeyOrganization)
	return &org, nil
}

// OrganizationSummary returns the dashboard totals.
func (c *Client) OrganizationSummary(ctx context.Context) (*types.OrganizationSummary, error) {
	summary, err := get[types.OrganizationSummary](ctx, c, KeyOrganizationSummary, "/organizations/mine/summary")
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Donations lists received donations, filterable by status and fund.
func (c *Client) Donations(ctx context.Context, opts ListOptions) (*types.Page[types.DonationListItem], error) {
	q := opts.values(DefaultPageSize)
	return listPage[types.DonationListItem](ctx, c, KeyDonations, "/organizations/mine/donations", q)
}

// Ledger lists ledger entries, filterable by entry type.
func (c *Client) Ledger(ctx context.Context, opts ListOptions) (*types.Page[types.LedgerEntry], error) {
	q := opts.values(DefaultLedgerPageSize)
	q.Del("status")
	q.Del("fund_id")
	return listPage[types.LedgerEntry](ctx, c, KeyLedger, "/organizations/mine/ledger", q)
}

// Funds lists every fund of the organization.
func (c *Client) Funds(ctx context.Context) (*types.Page[types.Fund], error) {
	page, err := get[types.Page[types.Fund]](ctx, c, KeyFunds, "/organizations/mine/funds")
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateFund adds a fund.
func (c *Client) CreateFund(ctx context.Context, fund types.FundCreate) (*types.Fund, error) {
	var out types.Fund
	if err := c.api.Post(ctx, "/organizations/mine/funds", fund, &out); err != nil {
		return nil, err
	}
	c.cache.Invalidate(KeyFunds, KeyOrganizationSummary)
	return &out, nil
}

// UpdateFund patches a fund.
func (c *Client) UpdateFund(ctx context.Context, id string, update types.FundUpdate) (*types.Fund, error) {
	var out types.Fund
	if err := c.api.Patch(ctx, "/organizations/mine/funds/"+url.PathEscape(id), update, &out); err != nil {
		return nil, err
	}
	c.cache.Invalidate(KeyFunds, KeyOrganizationSummary)
	return &out, nil
}

func listPage[T any](ctx context.Context, c *Client, base query.Key, path string, q url.Values) (*types.Page[T], error) {
	key := keyWith(base, q.Encode())
	page, err := get[types.Page[T]](ctx, c, key, path, gateway.WithQuery(q))
	if err != nil {
		return nil, err
	}
	return &page, nil
}
