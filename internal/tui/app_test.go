package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
	"github.com/amply-impact/amply/internal/gateway"
	"github.com/amply-impact/amply/internal/metrics"
	"github.com/amply-impact/amply/internal/platform"
	"github.com/amply-impact/amply/internal/prefs"
	"github.com/amply-impact/amply/internal/route"
	"github.com/amply-impact/amply/internal/session"
	"github.com/amply-impact/amply/internal/storage"
	"github.com/amply-impact/amply/pkg/amply/types"
)

// fakeAPI answers platform requests from canned values keyed by
// "METHOD /path".
type fakeAPI struct {
	mu        sync.Mutex
	responses map[string]any
	errs      map[string]error
	calls     []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{responses: map[string]any{}, errs: map[string]error{}}
}

func (f *fakeAPI) on(method, path string, v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method+" "+path] = v
}

func (f *fakeAPI) do(method, path string, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := method + " " + path
	f.calls = append(f.calls, k)
	if err := f.errs[k]; err != nil {
		return err
	}
	v, ok := f.responses[k]
	if !ok || out == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (f *fakeAPI) Get(ctx context.Context, path string, out any, _ ...gateway.RequestOption) error {
	return f.do("GET", path, out)
}

func (f *fakeAPI) Post(ctx context.Context, path string, _, out any, _ ...gateway.RequestOption) error {
	return f.do("POST", path, out)
}

func (f *fakeAPI) Patch(ctx context.Context, path string, _, out any, _ ...gateway.RequestOption) error {
	return f.do("PATCH", path, out)
}

func (f *fakeAPI) Delete(ctx context.Context, path string, out any, _ ...gateway.RequestOption) error {
	return f.do("DELETE", path, out)
}

func (f *fakeAPI) called(k string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == k {
			return true
		}
	}
	return false
}

type harness struct {
	app     *App
	api     *fakeAPI
	store   *session.Store
	prefs   *prefs.Manager
	storage *storage.MemoryStore
	metrics *metrics.Metrics
}

func approvedAdmin() *types.User {
	return &types.User{
		ID:          "u1",
		Email:       "ada@example.org",
		FirstName:   "Ada",
		AccountType: types.AccountOrganizationAdmin,
		Organization: &types.Organization{
			ID:           "o1",
			Name:         "Clean Water",
			ReviewStatus: types.ReviewApproved,
			IsPublic:     true,
		},
	}
}

// newHarness builds a shell at start. A nil user leaves the session
// logged out.
func newHarness(t *testing.T, user *types.User, start route.Location) *harness {
	t.Helper()
	h := &harness{
		api:     newFakeAPI(),
		storage: storage.NewMemoryStore(),
		metrics: metrics.NewMetrics(prometheus.NewRegistry()),
	}
	client := platform.NewClient(h.api, nil)
	h.store = session.New(client, session.Options{Metrics: h.metrics})
	if user != nil {
		h.store.SetAuth("tok", user)
	}

	p, err := prefs.Load(h.storage)
	require.NoError(t, err)
	p.DarkBackground = func() bool { return true }
	require.NoError(t, p.SetLanguage(prefs.LanguageEnglish))
	h.prefs = p

	h.app = New(Options{
		Session:   h.store,
		API:       client,
		Prefs:     p,
		Navigator: route.NewNavigator(start, h.metrics, nil),
		Metrics:   h.metrics,
	})
	t.Cleanup(h.app.Close)
	h.app.sync()
	return h
}

// send delivers msg and returns the shell's command without running it.
func (h *harness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.app.Update(msg)
	return cmd
}

func (h *harness) key(s string) tea.Cmd {
	switch s {
	case "enter":
		return h.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return h.send(tea.KeyMsg{Type: tea.KeyEsc})
	case "right":
		return h.send(tea.KeyMsg{Type: tea.KeyRight})
	case "ctrl+b":
		return h.send(tea.KeyMsg{Type: tea.KeyCtrlB})
	case "ctrl+f":
		return h.send(tea.KeyMsg{Type: tea.KeyCtrlF})
	case "ctrl+r":
		return h.send(tea.KeyMsg{Type: tea.KeyCtrlR})
	}
	return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// run executes cmd and flattens batches into the messages they produce.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, run(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

// loaded delivers a successful load for the mounted screen.
func (h *harness) loaded(key string, value any) {
	h.send(loadedMsg{ticket: h.app.scope.Current(), key: key, value: value})
}

func TestGuardRedirectsToLoginWithReturnPath(t *testing.T) {
	h := newHarness(t, nil, route.At(route.ScreenDonations))

	loc := h.app.Location()
	assert.Equal(t, route.ScreenLogin, loc.Screen)
	assert.Equal(t, "/donations", loc.Query.Get("from"))
	assert.IsType(t, &loginScreen{}, h.app.screen)
	assert.Equal(t, route.StateGranted, h.app.Decision().State)
}

func TestNotApprovedAdminIsSentToOrganization(t *testing.T) {
	user := approvedAdmin()
	user.Organization.ReviewStatus = types.ReviewPending
	h := newHarness(t, user, route.At(route.ScreenCampaigns))

	assert.Equal(t, route.ScreenOrganization, h.app.Location().Screen)
	assert.IsType(t, &organizationScreen{}, h.app.screen)
	assert.Contains(t, h.app.View(), "pending review")
}

func TestLoadingSessionShowsSpinner(t *testing.T) {
	h := newHarness(t, nil, route.At(route.ScreenLogin))
	h.store.SetLoading(true)
	h.send(sessionMsg{session: h.store.Snapshot()})
	h.send(navigateMsg{loc: route.At(route.ScreenFunds)})

	assert.Equal(t, route.StateLoading, h.app.Decision().State)
	assert.Equal(t, route.ScreenFunds, h.app.Location().Screen, "no redirect while loading")
	assert.Contains(t, h.app.View(), "Loading")
}

func TestSignInReturnsToRequestedScreen(t *testing.T) {
	h := newHarness(t, nil, route.At(route.ScreenCampaigns))
	require.IsType(t, &loginScreen{}, h.app.screen)

	h.store.SetAuth("tok", approvedAdmin())
	cmd := h.send(mutatedMsg{ticket: h.app.scope.Current(), key: keyLogin, value: approvedAdmin()})
	require.NotNil(t, cmd)
	nav, ok := cmd().(navigateMsg)
	require.True(t, ok)
	assert.Equal(t, route.ScreenCampaigns, nav.loc.Screen)

	h.send(sessionMsg{session: h.store.Snapshot()})
	h.send(nav)
	assert.Equal(t, route.ScreenCampaigns, h.app.Location().Screen)
	assert.IsType(t, &listScreen[types.Campaign]{}, h.app.screen)
}

func TestLoginErrorStaysOnForm(t *testing.T) {
	h := newHarness(t, nil, route.At(route.ScreenLogin))
	s := h.app.screen.(*loginScreen)
	s.password = "wrong-password"

	h.send(mutatedMsg{
		ticket: h.app.scope.Current(),
		key:    keyLogin,
		err:    amplyerrors.NewInvalidCredentialsError(fmt.Errorf("401")),
	})

	assert.Equal(t, route.ScreenLogin, h.app.Location().Screen)
	assert.Empty(t, s.password)
	assert.Error(t, s.err)
	assert.Nil(t, h.app.notice)
}

func TestForgotPasswordRequestsReset(t *testing.T) {
	h := newHarness(t, nil, route.At(route.ScreenLogin))
	s := h.app.screen.(*loginScreen)
	assert.Contains(t, h.app.View(), "Forgot password")

	h.key("ctrl+f")
	require.True(t, s.resetting)
	assert.Contains(t, h.app.View(), "We send a link to reset your password")
	assert.Equal(t, route.ScreenLogin, h.app.Location().Screen)

	s.email = "  ada@example.org "
	s.form.State = huh.StateCompleted
	cmd := s.Update(nil)
	require.NotNil(t, cmd)
	require.True(t, s.submitting)

	var done *mutatedMsg
	for _, msg := range run(cmd) {
		if m, ok := msg.(mutatedMsg); ok {
			done = &m
		}
	}
	require.NotNil(t, done)
	assert.Equal(t, keyRequestReset, done.key)
	assert.True(t, h.api.called("POST /auth/request-password-reset"))
	assert.False(t, h.api.called("POST /auth/login"))

	notice := run(h.send(*done))
	assert.False(t, s.resetting)
	assert.False(t, s.submitting)
	assert.Contains(t, notice, noticeMsg{text: "If an account exists for that email, a reset link is on its way."})
}

func TestForgotPasswordFailureStaysOnForm(t *testing.T) {
	h := newHarness(t, nil, route.At(route.ScreenLogin))
	s := h.app.screen.(*loginScreen)
	h.key("ctrl+f")
	s.submitting = true

	h.send(mutatedMsg{
		ticket: h.app.scope.Current(),
		key:    keyRequestReset,
		err:    &gateway.APIError{Status: 429, Message: "Too many requests"},
	})
	assert.True(t, s.resetting)
	assert.False(t, s.submitting)
	assert.Contains(t, h.app.View(), "Too many requests")

	h.key("ctrl+f")
	assert.False(t, s.resetting)
	assert.Nil(t, s.err)
}

func TestStaleResultsAreDropped(t *testing.T) {
	h := newHarness(t, approvedAdmin(), route.At(route.ScreenDonations))
	old := h.app.scope.Current()

	h.send(navigateMsg{loc: route.At(route.ScreenLedger)})
	require.IsType(t, &listScreen[types.LedgerEntry]{}, h.app.screen)

	h.send(loadedMsg{
		ticket: old,
		key:    "ledger",
		value:  &types.Page[types.LedgerEntry]{Items: []types.LedgerEntry{{ID: "e1"}}, Total: 1},
	})

	ledger := h.app.screen.(*listScreen[types.LedgerEntry])
	assert.Nil(t, ledger.data)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.StaleResultsDropped))
}

func TestExpiredSessionNoticeAndRedirect(t *testing.T) {
	h := newHarness(t, approvedAdmin(), route.At(route.ScreenFunds))

	h.send(loadedMsg{
		ticket: h.app.scope.Current(),
		key:    "funds",
		err:    fmt.Errorf("list funds: %w", amplyerrors.ErrSessionExpired),
	})
	require.NotNil(t, h.app.notice)
	assert.Equal(t, "Your session expired. Please sign in again.", h.app.notice.text)

	h.store.Expire(context.Background())
	h.send(sessionMsg{session: h.store.Snapshot()})

	loc := h.app.Location()
	assert.Equal(t, route.ScreenLogin, loc.Screen)
	assert.Equal(t, "/funds", loc.Query.Get("from"))

	h.key("esc")
	assert.Nil(t, h.app.notice)
	assert.IsType(t, &loginScreen{}, h.app.screen)
}

func TestSidebarTogglePersists(t *testing.T) {
	h := newHarness(t, approvedAdmin(), route.At(route.ScreenDashboard))
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	wide := h.app.contentSize().Width

	h.key("ctrl+b")
	assert.True(t, h.prefs.UI().SidebarCollapsed)
	assert.Greater(t, h.app.contentSize().Width, wide)

	reloaded, err := prefs.Load(h.storage)
	require.NoError(t, err)
	assert.True(t, reloaded.UI().SidebarCollapsed)
}

func TestJumpToSection(t *testing.T) {
	h := newHarness(t, approvedAdmin(), route.At(route.ScreenDashboard))

	cmd := h.key("2")
	require.NotNil(t, cmd)
	h.send(cmd())
	assert.Equal(t, route.ScreenDonations, h.app.Location().Screen)

	assert.Nil(t, h.key("9"), "contributors and admins have fewer than nine entries")
}

func TestBannerActionOpensOrganization(t *testing.T) {
	user := approvedAdmin()
	user.Organization.ReviewStatus = types.ReviewInfoRequested
	h := newHarness(t, user, route.At(route.ScreenDashboard))

	cmd := h.key("o")
	require.NotNil(t, cmd)
	h.send(cmd())
	assert.Equal(t, route.ScreenOrganizationSettings, h.app.Location().Screen)
}

func TestListPaging(t *testing.T) {
	h := newHarness(t, approvedAdmin(), route.At(route.ScreenDonations))
	h.send(tea.WindowSizeMsg{Width: 140, Height: 40})
	first := h.app.scope.Current()

	h.loaded("donations", &types.Page[types.DonationListItem]{
		Items: []types.DonationListItem{
			{ID: "d1", Amount: 2500, Currency: "EUR", DonorFirstName: "Grace", Status: "completed"},
			{ID: "d2", Amount: 1000, Currency: "EUR", DonorDisplayPreference: "private", Status: "completed"},
		},
		Total:   41,
		HasMore: true,
	})
	view := h.app.View()
	assert.Contains(t, view, "Grace")
	assert.Contains(t, view, "Anonymous")
	assert.Contains(t, view, "page 1 · 41 total")

	cmd := h.key("right")
	require.NotNil(t, cmd)
	assert.False(t, first.Valid(), "a new page starts a new generation")

	list := h.app.screen.(*listScreen[types.DonationListItem])
	assert.Equal(t, 2, list.page)
	assert.Contains(t, h.app.View(), "page 2")
}

func TestWidgetDeleteNeedsConfirmation(t *testing.T) {
	h := newHarness(t, approvedAdmin(), route.At(route.ScreenWidgets))
	h.loaded("widgets", &types.Page[types.Widget]{
		Items: []types.Widget{{ID: "w1", Name: "Main button", Type: types.WidgetDonationButton, IsActive: true}},
		Total: 1,
	})

	h.key("d")
	list := h.app.screen.(*listScreen[types.Widget])
	require.True(t, list.Capturing())
	assert.Contains(t, h.app.View(), `Delete widget "Main button"?`)

	// q must not quit while the prompt is open.
	assert.Nil(t, h.key("q"))
	assert.False(t, h.app.quitting)

	cmd := h.key("y")
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, mutatedMsg{}, msg)
	assert.True(t, h.api.called("DELETE /widgets/mine/w1"))

	assert.NotNil(t, h.send(msg))
	assert.False(t, list.Capturing())
}

func TestWidgetDeleteCancelled(t *testing.T) {
	h := newHarness(t, approvedAdmin(), route.At(route.ScreenWidgets))
	h.loaded("widgets", &types.Page[types.Widget]{Items: []types.Widget{{ID: "w1", Name: "Main"}}, Total: 1})

	h.key("d")
	h.key("n")
	assert.False(t, h.app.screen.Capturing())
	assert.False(t, h.api.called("DELETE /widgets/mine/w1"))
}

func TestCampaignStatusChange(t *testing.T) {
	h := newHarness(t, approvedAdmin(), route.Location{Screen: route.ScreenCampaignDetail, ID: "c1"})
	h.api.on("PATCH", "/campaigns/mine/c1", types.Campaign{ID: "c1", Title: "Wells", Status: types.CampaignActive})
	h.loaded("campaign", &types.Campaign{ID: "c1", Title: "Wells", Status: types.CampaignDraft, Currency: "EUR", GoalAmount: 100000})

	assert.Contains(t, h.app.View(), "Wells")

	cmd := h.key("a")
	require.NotNil(t, cmd)
	h.send(cmd())

	c := h.app.screen.(*campaignScreen)
	assert.Equal(t, types.CampaignActive, c.campaign.Status)
	assert.Nil(t, h.key("a"), "already active")
}

func TestDashboardForContributor(t *testing.T) {
	user := &types.User{ID: "u2", Email: "grace@example.org", FirstName: "Grace", AccountType: types.AccountContributor}
	h := newHarness(t, user, route.At(route.ScreenDashboard))
	h.api.on("GET", "/giving/summary", types.GivingSummary{TotalDonated: 12000, TotalDonations: 3, TotalOrganizations: 2, Currency: "EUR"})
	h.api.on("GET", "/giving/history", types.Page[types.GivingHistoryItem]{
		Items: []types.GivingHistoryItem{{ID: "g1", OrganizationName: "Clean Water", Amount: 5000, Currency: "EUR", CreatedAt: "2026-09-01T10:00:00Z"}},
		Total: 1,
	})

	ov, err := loadOverview(context.Background(), h.app.env.api, h.app.screen.(*dashboardScreen).flags)
	require.NoError(t, err)
	require.NotNil(t, ov.giving)
	assert.Nil(t, ov.summary)

	h.loaded("overview", ov)
	view := h.app.View()
	assert.Contains(t, view, "Welcome back, Grace")
	assert.Contains(t, view, "Clean Water")
	assert.Contains(t, view, "2026-09-01")
}

func TestRegisterWizardAdvances(t *testing.T) {
	h := newHarness(t, nil, route.At(route.ScreenRegister))
	s := h.app.screen.(*registerScreen)

	s.contributorType = types.ContributorBusiness
	s.advance()
	assert.Equal(t, "credentials", s.wiz.Slide().String())
	assert.Equal(t, types.ContributorBusiness, s.wiz.Draft().ContributorType)

	s.advance()
	assert.Error(t, s.err, "empty credentials are rejected")
	assert.Equal(t, "credentials", s.wiz.Slide().String())

	d := s.wiz.Draft()
	d.Email = "grace@example.org"
	d.Password = "long-enough"
	d.ConfirmPassword = "long-enough"
	s.advance()
	assert.NoError(t, s.err)
	assert.Equal(t, "name", s.wiz.Slide().String())

	h.key("esc")
	assert.Equal(t, "credentials", s.wiz.Slide().String())
}

func TestSettingsChangeTheme(t *testing.T) {
	h := newHarness(t, approvedAdmin(), route.At(route.ScreenSettings))
	s := h.app.screen.(*settingsScreen)

	s.theme = prefs.ThemeLight
	s.language = prefs.LanguageGerman
	require.NoError(t, s.apply())

	assert.Equal(t, prefs.ThemeLight, h.prefs.UI().Theme)
	assert.Equal(t, StylesFor(prefs.ThemeLight).Title.GetForeground(), h.app.styles.Title.GetForeground())
	assert.Equal(t, prefs.LanguageGerman, h.prefs.Language())
	assert.True(t, strings.Contains(h.app.View(), "Einstellungen"))
}

func TestSettingsRefreshProfile(t *testing.T) {
	h := newHarness(t, approvedAdmin(), route.At(route.ScreenSettings))
	s := h.app.screen.(*settingsScreen)
	fresh := approvedAdmin()
	fresh.FirstName = "Augusta"
	h.api.on("GET", "/auth/me", fresh)

	cmd := h.key("ctrl+r")
	require.NotNil(t, cmd)
	assert.True(t, s.refreshing)
	assert.Nil(t, h.key("ctrl+r"), "a refresh in flight is not repeated")

	done, ok := cmd().(mutatedMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.Equal(t, "Augusta", h.store.Snapshot().User.FirstName)

	notice := run(h.send(done))
	assert.False(t, s.refreshing)
	assert.Equal(t, []tea.Msg{noticeMsg{text: "Profile refreshed"}}, notice)
}

func TestSettingsRefreshFailureIsNoticed(t *testing.T) {
	h := newHarness(t, approvedAdmin(), route.At(route.ScreenSettings))
	h.api.errs["GET /auth/me"] = &gateway.APIError{Status: 503, Message: "Service unavailable"}

	cmd := h.key("ctrl+r")
	require.NotNil(t, cmd)
	notice := run(h.send(cmd()))
	assert.Equal(t, []tea.Msg{noticeMsg{text: "Service unavailable", isErr: true}}, notice)
	assert.Equal(t, "Ada", h.store.Snapshot().User.FirstName)
}

func TestOrganizationUpdateRefreshesSession(t *testing.T) {
	user := approvedAdmin()
	user.Organization.IsPublic = false
	h := newHarness(t, user, route.At(route.ScreenOrganizationSettings))
	detail := &types.OrganizationDetail{ID: "o1", Name: "Clean Water", ContactEmail: "hi@cw.org", ReviewStatus: types.ReviewApproved}
	h.loaded("organization", detail)

	s := h.app.screen.(*organizationSettingsScreen)
	require.NotNil(t, s.form)
	assert.True(t, s.Capturing())

	saved := *detail
	saved.IsPublic = true
	cmd := s.form.after(&saved)
	require.NotNil(t, cmd)

	snap := h.store.Snapshot()
	require.NotNil(t, snap.Organization)
	assert.True(t, snap.Organization.IsPublic)
}

func TestOrganizationValuesDiff(t *testing.T) {
	was := organizationValues{displayName: "CW", website: "https://cw.org", city: "Berlin"}
	now := was
	now.city = " Hamburg "

	u, changed := now.diff(was)
	require.True(t, changed)
	require.NotNil(t, u.City)
	assert.Equal(t, "Hamburg", *u.City)
	assert.Nil(t, u.DisplayName)
	assert.Nil(t, u.WebsiteURL)

	_, changed = was.diff(was)
	assert.False(t, changed)
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"api error with param", &gateway.APIError{Status: 422, Message: "Invalid value", Param: "goal_amount"}, "Invalid value (goal_amount)"},
		{"amply error", amplyerrors.NewInvalidCredentialsError(nil), amplyerrors.NewInvalidCredentialsError(nil).Message},
		{"plain", fmt.Errorf("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorText(tt.err))
		})
	}
}
