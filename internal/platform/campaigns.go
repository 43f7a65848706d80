package platform

import (
	"context"
	"net/url"

	"github.com/amply-impact/amply/pkg/amply/types"
)

// Campaigns lists the organization's campaigns, optionally by status.
func (c *Client) Campaigns(ctx context.Context, opts ListOptions) (*types.Page[types.Campaign], error) {
	q := opts.values(DefaultPageSize)
	q.Del("fund_id")
	q.Del("entry_type")
	return listPage[types.Campaign](ctx, c, KeyCampaigns, "/campaigns/mine", q)
}

// Campaign returns a single campaign.
func (c *Client) Campaign(ctx context.Context, id string) (*types.Campaign, error) {
	campaign, err := get[types.Campaign](ctx, c, keyWith(KeyCampaigns, "id", id), "/campaigns/mine/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// CreateCampaign creates a draft campaign.
func (c *Client) CreateCampaign(ctx context.Context, campaign types.CampaignCreate) (*types.Campaign, error) {
	var out types.Campaign
	if err := c.api.Post(ctx, "/campaigns/mine", campaign, &out); err != nil {
		return nil, err
	}
	c.cache.Invalidate(KeyCampaigns)
	return &out, nil
}

// UpdateCampaign patches a campaign.
func (c *Client) UpdateCampaign(ctx context.Context, id string, update types.CampaignUpdate) (*types.Campaign, error) {
	var out types.Campaign
	if err := c.api.Patch(ctx, "/campaigns/mine/"+url.PathEscape(id), update, &out); err != nil {
		return nil, err
	}
	c.cache.Invalidate(KeyCampaigns)
	return &out, nil
}
