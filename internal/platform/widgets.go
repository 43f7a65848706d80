package platform

import (
	"context"
	"net/url"

	"github.com/amply-impact/amply/pkg/amply/types"
)

// Widgets lists the organization's embeddable widgets.
func (c *Client) Widgets(ctx context.Context) (*types.Page[types.Widget], error) {
	page, err := get[types.Page[types.Widget]](ctx, c, keyWith(KeyWidgets, "list"), "/widgets/mine")
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Widget returns a single widget including its embed code.
func (c *Client) Widget(ctx context.Context, id string) (*types.Widget, error) {
	w, err := get[types.Widget](ctx, c, keyWith(KeyWidgets, "id", id), "/widgets/mine/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWidget creates a widget.
func (c *Client) CreateWidget(ctx context.Context, widget types.WidgetCreate) (*types.Widget, error) {
	var out types.Widget
	if err := c.api.Post(ctx, "/widgets/mine", widget, &out); err != nil {
		return nil, err
	}
	c.cache.Invalidate(KeyWidgets)
	return &out, nil
}

// UpdateWidget patches a widget.
func (c *Client) UpdateWidget(ctx context.Context, id string, update types.WidgetUpdate) (*types.Widget, error) {
	var out types.Widget
	if err := c.api.Patch(ctx, "/widgets/mine/"+url.PathEscape(id), update, &out); err != nil {
		return nil, err
	}
	c.cache.Invalidate(KeyWidgets)
	return &out, nil
}

// DeleteWidget removes a widget.
func (c *Client) DeleteWidget(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, "/widgets/mine/"+url.PathEscape(id), nil); err != nil {
		return err
	}
	c.cache.Invalidate(KeyWidgets)
	return nil
}
