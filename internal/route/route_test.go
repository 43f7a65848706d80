package route

import (
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amply-impact/amply/internal/metrics"
	"github.com/amply-impact/amply/pkg/amply/types"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		raw  string
		want Location
		ok   bool
	}{
		{"/dashboard", At(ScreenDashboard), true},
		{"/dashboard/", At(ScreenDashboard), true},
		{"/dashboard/login", At(ScreenLogin), true},
		{"/dashboard/organization/settings", At(ScreenOrganizationSettings), true},
		{"/dashboard/campaigns/new", At(ScreenCampaignNew), true},
		{"/dashboard/campaigns/c-42", Location{Screen: ScreenCampaignDetail, ID: "c-42"}, true},
		{"/dashboard/widgets/w%201", Location{Screen: ScreenWidgetDetail, ID: "w 1"}, true},
		{"/donations?status=completed", Location{Screen: ScreenDonations, Query: url.Values{"status": {"completed"}}}, true},
		{"/dashboard/payouts", At(ScreenDashboard), false},
		{"/dashboard/campaigns/c1/edit", At(ScreenDashboard), false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Resolve(DefaultBasePath, tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %+v", got)
		})
	}
}

func TestPathRoundTrip(t *testing.T) {
	for _, s := range Screens() {
		loc := At(s)
		if s == ScreenCampaignDetail || s == ScreenWidgetDetail {
			loc.ID = "abc"
		}
		got, ok := Resolve("", loc.Path())
		require.True(t, ok, s.String())
		assert.True(t, loc.Equal(got), s.String())

		parsed, ok := ParseScreen(s.String())
		assert.True(t, ok)
		assert.Equal(t, s, parsed)
	}
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, "/donations", Suggest(DefaultBasePath, "/dashboard/donatons"))
	assert.Equal(t, "/widgets", Suggest("", "/widget"))
	assert.Empty(t, Suggest("", "/completely/unrelated/thing"))
}

// allSessions covers loading, token, role and review status combinations.
func allSessions() []types.Session {
	users := []*types.User{nil, {AccountType: types.AccountContributor}, {AccountType: types.AccountOrganizationAdmin}}
	orgs := []*types.Organization{nil}
	for _, st := range []types.ReviewStatus{types.ReviewPending, types.ReviewApproved, types.ReviewRejected, types.ReviewInfoRequested} {
		orgs = append(orgs, &types.Organization{ReviewStatus: st})
	}
	var out []types.Session
	for _, loading := range []bool{false, true} {
		for _, token := range []string{"", "tok"} {
			for _, u := range users {
				for _, o := range orgs {
					out = append(out, types.Session{Token: token, User: u, Organization: o, Loading: loading})
				}
			}
		}
	}
	return out
}

func TestClassifyIsTotalAndOrdered(t *testing.T) {
	for _, s := range allSessions() {
		for _, sc := range Screens() {
			d := Classify(s, At(sc))
			req := sc.Definition().Requires

			require.GreaterOrEqual(t, int(d.State), int(StateLoading))
			require.LessOrEqual(t, int(d.State), int(StateGranted))

			switch {
			case s.Loading:
				assert.Equal(t, StateLoading, d.State, "loading wins over every denial")
				assert.False(t, d.Redirects())
			case req.Auth && (s.Token == "" || s.User == nil):
				assert.Equal(t, StateDeniedUnauthenticated, d.State)
			case req.OrgAdmin && (s.User == nil || s.User.AccountType != types.AccountOrganizationAdmin):
				assert.Equal(t, StateDeniedNotAdmin, d.State)
			case req.Approved && (s.Organization == nil || s.Organization.ReviewStatus != types.ReviewApproved):
				assert.Equal(t, StateDeniedNotApproved, d.State)
			default:
				assert.Equal(t, StateGranted, d.State)
			}
		}
	}
}

func TestClassifyRedirectTargets(t *testing.T) {
	admin := &types.User{AccountType: types.AccountOrganizationAdmin}
	donor := &types.User{AccountType: types.AccountContributor}
	pending := &types.Organization{ReviewStatus: types.ReviewPending}

	d := Classify(types.Session{}, Location{Screen: ScreenCampaignDetail, ID: "c1"})
	assert.Equal(t, StateDeniedUnauthenticated, d.State)
	assert.Equal(t, ScreenLogin, d.Redirect.Screen)
	assert.Equal(t, "/campaigns/c1", d.Redirect.Query.Get("from"))

	d = Classify(types.Session{Token: "t", User: donor}, At(ScreenWidgets))
	assert.Equal(t, StateDeniedNotAdmin, d.State)
	assert.Equal(t, ScreenDashboard, d.Redirect.Screen)

	d = Classify(types.Session{Token: "t", User: admin, Organization: pending}, At(ScreenDonations))
	assert.Equal(t, StateDeniedNotApproved, d.State)
	assert.Equal(t, ScreenOrganization, d.Redirect.Screen, "pending admins go to the status page, not to login")

	d = Classify(types.Session{Token: "t", User: admin, Organization: pending}, At(ScreenOrganization))
	assert.Equal(t, StateGranted, d.State)
}

func TestAfterLogin(t *testing.T) {
	login := LoginFrom(Location{Screen: ScreenCampaignDetail, ID: "c1"})
	assert.True(t, Location{Screen: ScreenCampaignDetail, ID: "c1"}.Equal(AfterLogin(login)))

	assert.Equal(t, ScreenDashboard, AfterLogin(At(ScreenLogin)).Screen)
	assert.Equal(t, ScreenDashboard, AfterLogin(LoginFrom(At(ScreenRegister))).Screen)
}

func TestNavigatorRedirectsOncePerClassification(t *testing.T) {
	_, m := metrics.NewRegistry()
	n := NewNavigator(At(ScreenDonations), m, nil)

	loading := types.Session{Token: "t", Loading: true}
	d, redirected := n.Evaluate(loading)
	assert.Equal(t, StateLoading, d.State)
	assert.False(t, redirected)

	d, redirected = n.Evaluate(loading)
	assert.False(t, redirected)

	d, redirected = n.Evaluate(types.Session{})
	assert.Equal(t, StateDeniedUnauthenticated, d.State)
	assert.True(t, redirected)
	assert.Equal(t, ScreenLogin, n.Current().Screen)

	d, redirected = n.Evaluate(types.Session{})
	assert.Equal(t, StateGranted, d.State)
	assert.False(t, redirected)
	d, redirected = n.Evaluate(types.Session{})
	assert.False(t, redirected)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Redirects.WithLabelValues("denied_unauthenticated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RouteDecisions.WithLabelValues("login", "granted")))
}

func TestSessionExpiryRedirectsToLogin(t *testing.T) {
	admin := types.Session{
		Token:        "t",
		User:         &types.User{AccountType: types.AccountOrganizationAdmin},
		Organization: &types.Organization{ReviewStatus: types.ReviewApproved},
	}
	for _, sc := range []Screen{ScreenDashboard, ScreenFunds, ScreenWidgetNew, ScreenSettings} {
		n := NewNavigator(At(sc), nil, nil)
		d, _ := n.Evaluate(admin)
		require.Equal(t, StateGranted, d.State)

		_, redirected := n.Evaluate(types.Session{})
		assert.True(t, redirected, sc.String())
		assert.Equal(t, ScreenLogin, n.Current().Screen)
	}
}

func TestNavItems(t *testing.T) {
	screens := func(items []NavItem) []Screen {
		var out []Screen
		for _, it := range items {
			out = append(out, it.Screen)
		}
		return out
	}

	assert.Empty(t, NavItems(types.Session{}))

	donor := types.Session{Token: "t", User: &types.User{AccountType: types.AccountContributor}}
	assert.Equal(t, []Screen{ScreenDashboard, ScreenGiving, ScreenSettings}, screens(NavItems(donor)))

	pending := types.Session{
		Token:        "t",
		User:         &types.User{AccountType: types.AccountOrganizationAdmin},
		Organization: &types.Organization{ReviewStatus: types.ReviewPending},
	}
	assert.Equal(t, []Screen{ScreenDashboard, ScreenOrganization, ScreenSettings}, screens(NavItems(pending)))

	pending.Organization.ReviewStatus = types.ReviewApproved
	assert.Equal(t, []Screen{
		ScreenDashboard, ScreenDonations, ScreenCampaigns, ScreenFunds, ScreenLedger,
		ScreenWidgets, ScreenOrganization, ScreenSettings,
	}, screens(NavItems(pending)))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "granted", StateGranted.String())
	assert.Equal(t, "unknown", State(42).String())
	assert.Equal(t, "Screen(99)", Screen(99).String())
}
