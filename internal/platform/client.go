// Package platform exposes the Amply API endpoints the dashboard consumes.
package platform

import (
	"context"
	"net/url"
	"strconv"

	"github.com/amply-impact/amply/internal/gateway"
	"github.com/amply-impact/amply/internal/query"
)

// Default page sizes used by the dashboard lists.
const (
	DefaultPageSize       = 20
	DefaultLedgerPageSize = 50
)

// Requester is the subset of gateway.Client used by the resources.
type Requester interface {
	Get(ctx context.Context, path string, out any, opts ...gateway.RequestOption) error
	Post(ctx context.Context, path string, body, out any, opts ...gateway.RequestOption) error
	Patch(ctx context.Context, path string, body, out any, opts ...gateway.RequestOption) error
	Delete(ctx context.Context, path string, out any, opts ...gateway.RequestOption) error
}

// Client is the Amply platform API client. Reads go through the query
// cache when one is configured; mutations invalidate what they touch.
type Client struct {
	api   Requester
	cache *query.Cache
}

// NewClient creates a platform client. cache may be nil.
func NewClient(api Requester, cache *query.Cache) *Client {
	return &Client{api: api, cache: cache}
}

// Cache returns the query cache, possibly nil.
func (c *Client) Cache() *query.Cache {
	return c.cache
}

// Cache keys. Mutations invalidate by prefix.
var (
	KeyMe                  = query.Key{"auth", "me"}
	KeyOrganization        = query.Key{"organization"}
	KeyOrganizationSummary = query.Key{"organization", "summary"}
	KeyDonations           = query.Key{"organization", "donations"}
	KeyLedger              = query.Key{"organization", "ledger"}
	KeyFunds               = query.Key{"organization", "funds"}
	KeyCampaigns           = query.Key{"campaigns"}
	KeyGiving              = query.Key{"giving"}
	KeyWidgets             = query.Key{"widgets"}
)

// ListOptions filters and pages list endpoints. Zero values take the
// endpoint defaults.
type ListOptions struct {
	Page      int
	PageSize  int
	Status    string
	FundID    string
	EntryType string
}

func (o ListOptions) values(defaultSize int) url.Values {
	q := url.Values{}
	page := o.Page
	if page < 1 {
		page = 1
	}
	size := o.PageSize
	if size < 1 {
		size = defaultSize
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(size))
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	if o.FundID != "" {
		q.Set("fund_id", o.FundID)
	}
	if o.EntryType != "" {
		q.Set("entry_type", o.EntryType)
	}
	return q
}

func keyWith(base query.Key, parts ...string) query.Key {
	k := make(query.Key, 0, len(base)+len(parts))
	k = append(k, base...)
	return append(k, parts...)
}

func get[T any](ctx context.Context, c *Client, key query.Key, path string, opts ...gateway.RequestOption) (T, error) {
	return query.Fetch(ctx, c.cache, key, func(ctx context.Context) (T, error) {
		var out T
		err := c.api.Get(ctx, path, &out, opts...)
		return out, err
	})
}
