// Package tui is the interactive dashboard. The App shell owns navigation:
// on every session change or navigation request it classifies the current
// location, shows a spinner while the session is loading, follows guard
// redirects and otherwise mounts the screen for the location.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amply-impact/amply/internal/access"
	"github.com/amply-impact/amply/internal/log"
	"github.com/amply-impact/amply/internal/metrics"
	"github.com/amply-impact/amply/internal/platform"
	"github.com/amply-impact/amply/internal/prefs"
	"github.com/amply-impact/amply/internal/query"
	"github.com/amply-impact/amply/internal/route"
	"github.com/amply-impact/amply/internal/session"
	"github.com/amply-impact/amply/pkg/amply/types"
)

// maxRedirects bounds how many guard redirects one evaluation follows.
const maxRedirects = 4

// Options configures the dashboard.
type Options struct {
	Session *session.Store
	API     *platform.Client
	Prefs   *prefs.Manager
	// Navigator starts at the requested location. Nil starts at the dashboard.
	Navigator *route.Navigator
	Metrics   *metrics.Metrics
	Logger    *log.Logger
	Context   context.Context
}

// App is the root model.
type App struct {
	env    *env
	nav    *route.Navigator
	styles Styles
	scope  query.Scope
	cancel context.CancelFunc

	updates     <-chan types.Session
	unsubscribe func()

	snap     types.Session
	decision route.Decision
	mounted  route.Location
	screen   screen

	spinner  spinner.Model
	help     help.Model
	notice   *noticeMsg
	width    int
	height   int
	quitting bool
}

// New creates the shell and subscribes it to the session store. The
// caller runs the first boot phase (Hydrate) before New; Init runs the
// second when the session is loading.
func New(opts Options) *App {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	logger := opts.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}
	nav := opts.Navigator
	if nav == nil {
		nav = route.NewNavigator(route.At(route.ScreenDashboard), opts.Metrics, logger)
	}

	a := &App{
		nav:    nav,
		cancel: cancel,
		styles: StylesFor(opts.Prefs.ResolvedTheme()),
		help:   help.New(),
	}
	a.env = &env{
		api:     opts.API,
		session: opts.Session,
		prefs:   opts.Prefs,
		styles:  &a.styles,
		metrics: opts.Metrics,
		logger:  logger.With("component", "tui"),
		ctx:     ctx,
		scope:   &a.scope,
	}
	a.updates, a.unsubscribe = opts.Session.Subscribe()
	a.snap = opts.Session.Snapshot()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = a.styles.Status
	a.spinner = sp
	return a
}

// Init initializes the shell (required by Bubble Tea)
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick, waitForSession(a.updates), a.sync()}
	if a.snap.Loading {
		cmds = append(cmds, a.verify())
	}
	return tea.Batch(cmds...)
}

// Close releases the session subscription and cancels in-flight work.
func (a *App) Close() {
	a.scope.End()
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	a.cancel()
}

// Location is the location the navigator currently points at.
func (a *App) Location() route.Location {
	return a.nav.Current()
}

// Decision is the latest guard decision.
func (a *App) Decision() route.Decision {
	return a.decision
}

func (a *App) verify() tea.Cmd {
	store, ctx := a.env.session, a.env.ctx
	return func() tea.Msg {
		return verifiedMsg{err: store.Verify(ctx)}
	}
}

// Update handles messages and updates the model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, a.forward(a.contentSize())

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case sessionMsg:
		a.snap = msg.session
		return a, tea.Batch(waitForSession(a.updates), a.sync())

	case verifiedMsg:
		if msg.err != nil {
			a.env.logger.WithError(msg.err).Info("stored session could not be verified")
			a.notice = &noticeMsg{text: a.env.T("auth.session_expired"), isErr: true}
		}
		return a, nil

	case navigateMsg:
		a.nav.Go(msg.loc)
		return a, a.sync()

	case noticeMsg:
		a.notice = &msg
		return a, nil

	case loadedMsg:
		if msg.err != nil && isExpired(msg.err) {
			a.notice = &noticeMsg{text: a.env.T("auth.session_expired"), isErr: true}
		}
		if !msg.ticket.Valid() {
			a.dropStale(msg.key)
			return a, nil
		}
		return a, a.forward(msg)

	case mutatedMsg:
		if msg.err != nil && isExpired(msg.err) {
			a.notice = &noticeMsg{text: a.env.T("auth.session_expired"), isErr: true}
		}
		if !msg.ticket.Valid() {
			a.dropStale(msg.key)
			return a, nil
		}
		return a, a.forward(msg)
	}

	return a, a.forward(msg)
}

func (a *App) dropStale(key string) {
	if a.env.metrics != nil {
		a.env.metrics.StaleResultsDropped.Inc()
	}
	a.env.logger.Debug("dropped stale result", "key", key)
}

func (a *App) forward(msg tea.Msg) tea.Cmd {
	if a.screen == nil {
		return nil
	}
	return a.screen.Update(msg)
}

// sync classifies the current location and mounts its screen when the
// guard grants it. Redirects are followed up to maxRedirects times.
func (a *App) sync() tea.Cmd {
	var d route.Decision
	for i := 0; i < maxRedirects; i++ {
		var redirected bool
		d, redirected = a.nav.Evaluate(a.snap)
		if !redirected {
			break
		}
	}
	a.decision = d
	if d.State != route.StateGranted {
		return nil
	}

	loc := a.nav.Current()
	if a.screen != nil && a.mounted.Equal(loc) {
		return nil
	}
	return a.mount(loc)
}

func (a *App) mount(loc route.Location) tea.Cmd {
	ticket, ctx := a.scope.Begin(a.env.ctx)
	a.mounted = loc
	a.screen = a.newScreen(loc)
	a.env.logger.Debug("mount", "path", loc.Path(), "generation", ticket.Generation())

	cmd := a.screen.Init(ctx, ticket)
	if a.width > 0 {
		cmd = tea.Batch(cmd, a.screen.Update(a.contentSize()))
	}
	return cmd
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.ForceQuit) {
		a.quitting = true
		return tea.Quit
	}
	if key.Matches(msg, keys.Dismiss) && a.notice != nil {
		a.notice = nil
		return nil
	}
	granted := a.screen != nil && a.decision.State == route.StateGranted
	if granted && a.screen.Capturing() {
		return a.screen.Update(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		a.quitting = true
		return tea.Quit

	case key.Matches(msg, keys.Sidebar):
		if err := a.env.prefs.ToggleSidebar(); err != nil {
			a.notice = &noticeMsg{text: errorText(err), isErr: true}
		}
		return a.forward(a.contentSize())

	case key.Matches(msg, keys.SignOut) && access.IsAuthenticated(a.snap):
		store, ctx := a.env.session, a.env.ctx
		return func() tea.Msg {
			store.SignOut(ctx)
			return nil
		}

	case key.Matches(msg, keys.BannerAction):
		if b, ok := access.BannerFor(a.snap); ok && b.ActionPath != "" {
			if loc, ok := route.Resolve("", b.ActionPath); ok {
				return navigate(loc)
			}
		}

	case key.Matches(msg, keys.JumpToSection):
		items := route.NavItems(a.snap)
		if i := int(msg.String()[0] - '1'); i >= 0 && i < len(items) {
			return navigate(route.At(items[i].Screen))
		}
		return nil
	}

	if granted {
		return a.screen.Update(msg)
	}
	return nil
}

func (a *App) sidebarVisible() bool {
	return access.IsAuthenticated(a.snap)
}

// contentSize is the area left for the screen.
func (a *App) contentSize() tea.WindowSizeMsg {
	w := a.width
	if a.sidebarVisible() {
		w -= lipgloss.Width(a.renderSidebar())
	}
	h := a.height - 6
	if _, ok := access.BannerFor(a.snap); ok {
		h -= 2
	}
	return tea.WindowSizeMsg{Width: max(w, 20), Height: max(h, 5)}
}

// View renders the UI
func (a *App) View() string {
	if a.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(a.renderHeader())
	b.WriteString("\n")
	if banner := a.renderBanner(); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}
	if a.notice != nil {
		style := a.styles.Notice
		text := a.notice.text
		if a.notice.isErr {
			text = a.styles.Error.Render("✗ ") + text
		}
		b.WriteString(style.Render(text + a.styles.Muted.Render("  (esc to dismiss)")))
		b.WriteString("\n")
	}

	content := a.renderContent()
	if a.sidebarVisible() {
		content = lipgloss.JoinHorizontal(lipgloss.Top, a.renderSidebar(), content)
	}
	b.WriteString(content)
	b.WriteString("\n")
	b.WriteString(a.styles.Help.Render(a.help.View(keys)))
	return b.String()
}

func (a *App) renderHeader() string {
	title := a.styles.Highlighted.Render("amply")
	path := a.styles.Muted.Render(a.nav.Current().Path())
	user := ""
	if access.IsAuthenticated(a.snap) && a.snap.User != nil {
		user = a.snap.User.Name()
		if a.snap.Organization != nil {
			user += a.styles.Muted.Render(" · " + a.snap.Organization.Name)
		}
	}
	return fmt.Sprintf("%s %s  %s", title, path, user)
}

func (a *App) renderBanner() string {
	b, ok := access.BannerFor(a.snap)
	if !ok {
		return ""
	}
	style := a.styles.Banner.BorderForeground(a.styles.Warning.GetForeground())
	text := a.styles.Warning.Render(a.env.T(b.MessageKey))
	if b.Kind == access.BannerInfo {
		style = a.styles.Banner.BorderForeground(a.styles.Info.GetForeground())
		text = a.styles.Info.Render(a.env.T(b.MessageKey))
	}
	if b.ActionKey != "" {
		text += "  " + a.styles.Key.Render("[o]") + " " + a.env.T(b.ActionKey)
	}
	return style.Render(text)
}

func (a *App) renderSidebar() string {
	collapsed := a.env.prefs.UI().SidebarCollapsed
	active := a.mounted.Screen.Definition().TitleKey

	var lines []string
	for i, item := range route.NavItems(a.snap) {
		label := a.env.T(item.TitleKey)
		if collapsed {
			label = string([]rune(label)[:1])
		}
		line := fmt.Sprintf("%d %s", i+1, label)
		if item.TitleKey == active {
			lines = append(lines, a.styles.NavActive.Render("▸ "+line))
		} else {
			lines = append(lines, a.styles.NavItem.Render("  "+line))
		}
	}
	return a.styles.Sidebar.Render(strings.Join(lines, "\n"))
}

func (a *App) renderContent() string {
	if a.decision.State != route.StateGranted || a.screen == nil {
		return a.spinner.View() + " " + a.env.T("common.loading")
	}
	return a.screen.View(a.contentSize().Width)
}

// Run starts the dashboard program and blocks until it exits.
func Run(app *App, opts ...tea.ProgramOption) error {
	defer app.Close()
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	p := tea.NewProgram(app, opts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
