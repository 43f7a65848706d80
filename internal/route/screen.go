// Package route maps dashboard paths to screens and decides, for a session
// snapshot, whether a screen may render or where to redirect instead.
package route

import "fmt"

// DefaultBasePath is where the dashboard is mounted.
const DefaultBasePath = "/dashboard"

// Screen is the closed set of dashboard screens.
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenLogin
	ScreenRegister
	ScreenGiving
	ScreenSettings
	ScreenOrganization
	ScreenOrganizationSettings
	ScreenDonations
	ScreenFunds
	ScreenLedger
	ScreenCampaigns
	ScreenCampaignNew
	ScreenCampaignDetail
	ScreenWidgets
	ScreenWidgetNew
	ScreenWidgetDetail

	numScreens
)

// Requirements gate a screen.
type Requirements struct {
	Auth     bool
	OrgAdmin bool
	Approved bool
}

// Definition describes a screen.
type Definition struct {
	Name     string
	Pattern  string
	TitleKey string
	Requires Requirements
}

// Public reports whether the screen renders without a session.
func (d Definition) Public() bool {
	return !d.Requires.Auth
}

var (
	public    = Requirements{}
	signedIn  = Requirements{Auth: true}
	admin     = Requirements{Auth: true, OrgAdmin: true}
	operating = Requirements{Auth: true, OrgAdmin: true, Approved: true}
)

var definitions = [numScreens]Definition{
	ScreenDashboard:            {"dashboard", "/", "nav.dashboard", signedIn},
	ScreenLogin:                {"login", "/login", "nav.login", public},
	ScreenRegister:             {"register", "/register", "nav.register", public},
	ScreenGiving:               {"giving", "/giving", "nav.giving", signedIn},
	ScreenSettings:             {"settings", "/settings", "nav.settings", signedIn},
	ScreenOrganization:         {"organization", "/organization", "nav.organization", admin},
	ScreenOrganizationSettings: {"organization-settings", "/organization/settings", "nav.org_settings", admin},
	ScreenDonations:            {"donations", "/donations", "nav.donations", operating},
	ScreenFunds:                {"funds", "/funds", "nav.funds", operating},
	ScreenLedger:               {"ledger", "/ledger", "nav.ledger", operating},
	ScreenCampaigns:            {"campaigns", "/campaigns", "nav.campaigns", operating},
	ScreenCampaignNew:          {"campaign-new", "/campaigns/new", "nav.campaigns", operating},
	ScreenCampaignDetail:       {"campaign", "/campaigns/:id", "nav.campaigns", operating},
	ScreenWidgets:              {"widgets", "/widgets", "nav.widgets", operating},
	ScreenWidgetNew:            {"widget-new", "/widgets/new", "nav.widgets", operating},
	ScreenWidgetDetail:         {"widget", "/widgets/:id", "nav.widgets", operating},
}

// Definition returns the static description of s.
func (s Screen) Definition() Definition {
	if s < 0 || s >= numScreens {
		return Definition{}
	}
	return definitions[s]
}

// String returns the screen name.
func (s Screen) String() string {
	if d := s.Definition(); d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("Screen(%d)", int(s))
}

// Screens lists every screen in table order.
func Screens() []Screen {
	out := make([]Screen, 0, numScreens)
	for s := Screen(0); s < numScreens; s++ {
		out = append(out, s)
	}
	return out
}

// ParseScreen looks a screen up by name.
func ParseScreen(name string) (Screen, bool) {
	for s := Screen(0); s < numScreens; s++ {
		if definitions[s].Name == name {
			return s, true
		}
	}
	return 0, false
}
