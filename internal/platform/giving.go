package platform

import (
	"context"

	"github.com/amply-impact/amply/pkg/amply/types"
)

// GivingHistory lists the signed-in donor's donations.
func (c *Client) GivingHistory(ctx context.Context, opts ListOptions) (*types.Page[types.GivingHistoryItem], error) {
	q := opts.values(DefaultPageSize)
	q.Del("fund_id")
	q.Del("entry_type")
	return listPage[types.GivingHistoryItem](ctx, c, keyWith(KeyGiving, "history"), "/giving/history", q)
}

// GivingSummary returns the donor's giving totals.
func (c *Client) GivingSummary(ctx context.Context) (*types.GivingSummary, error) {
	summary, err := get[types.GivingSummary](ctx, c, keyWith(KeyGiving, "summary"), "/giving/summary")
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
