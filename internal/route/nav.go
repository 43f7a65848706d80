package route

import (
	"github.com/amply-impact/amply/internal/access"
	"github.com/amply-impact/amply/pkg/amply/types"
)

// NavItem is a sidebar entry.
type NavItem struct {
	Screen   Screen
	TitleKey string
	Path     string
}

var sidebar = []Screen{
	ScreenDashboard,
	ScreenDonations,
	ScreenCampaigns,
	ScreenFunds,
	ScreenLedger,
	ScreenWidgets,
	ScreenGiving,
	ScreenOrganization,
	ScreenSettings,
}

// NavItems returns the sidebar entries the session may open. Entries the
// guard would redirect away from are left out.
func NavItems(s types.Session) []NavItem {
	f := access.FlagsOf(s)
	var items []NavItem
	for _, sc := range sidebar {
		d := sc.Definition()
		req := d.Requires
		if req.Auth && !f.Authenticated || req.OrgAdmin && !f.OrgAdmin || req.Approved && !f.Approved() {
			continue
		}
		if sc == ScreenGiving && f.OrgAdmin {
			continue
		}
		items = append(items, NavItem{Screen: sc, TitleKey: d.TitleKey, Path: d.Pattern})
	}
	return items
}
