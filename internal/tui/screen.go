package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
	"github.com/amply-impact/amply/internal/gateway"
	"github.com/amply-impact/amply/internal/log"
	"github.com/amply-impact/amply/internal/metrics"
	"github.com/amply-impact/amply/internal/platform"
	"github.com/amply-impact/amply/internal/prefs"
	"github.com/amply-impact/amply/internal/query"
	"github.com/amply-impact/amply/internal/route"
	"github.com/amply-impact/amply/internal/session"
)

// screen is one mounted route. Screens are pointers and mutate in place.
type screen interface {
	// Init starts the screen's first loads under ticket t.
	Init(ctx context.Context, t query.Ticket) tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width int) string
	// Capturing reports whether a focused input owns the keyboard.
	Capturing() bool
}

// env is what screens share with the shell.
type env struct {
	api     *platform.Client
	session *session.Store
	prefs   *prefs.Manager
	styles  *Styles
	metrics *metrics.Metrics
	logger  *log.Logger

	// ctx lives as long as the program; mutations run under it.
	ctx   context.Context
	scope *query.Scope
}

// T translates a catalog key into the active language.
func (e *env) T(key string) string {
	return prefs.T(e.prefs.Language(), key)
}

// reload starts a new generation for the mounted screen.
func (e *env) reload() (query.Ticket, context.Context) {
	return e.scope.Begin(e.ctx)
}

func (a *App) newScreen(loc route.Location) screen {
	e := a.env
	switch loc.Screen {
	case route.ScreenLogin:
		return newLoginScreen(e, loc)
	case route.ScreenRegister:
		return newRegisterScreen(e)
	case route.ScreenGiving:
		return newListScreen(e, givingList())
	case route.ScreenSettings:
		return newSettingsScreen(e)
	case route.ScreenOrganization:
		return newOrganizationScreen(e)
	case route.ScreenOrganizationSettings:
		return newOrganizationSettingsScreen(e)
	case route.ScreenDonations:
		return newListScreen(e, donationsList())
	case route.ScreenFunds:
		return newListScreen(e, fundsList())
	case route.ScreenLedger:
		return newListScreen(e, ledgerList())
	case route.ScreenCampaigns:
		return newListScreen(e, campaignsList())
	case route.ScreenCampaignNew:
		return newCampaignForm(e)
	case route.ScreenCampaignDetail:
		return newCampaignScreen(e, loc.ID)
	case route.ScreenWidgets:
		return newListScreen(e, widgetsList())
	case route.ScreenWidgetNew:
		return newWidgetForm(e)
	case route.ScreenWidgetDetail:
		return newWidgetScreen(e, loc.ID)
	default:
		return newDashboardScreen(e)
	}
}

// errorText is the user-facing line for err.
func errorText(err error) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Param != "" {
			return fmt.Sprintf("%s (%s)", apiErr.Message, apiErr.Param)
		}
		return apiErr.Message
	}
	if ae, ok := amplyerrors.As(err); ok {
		return ae.Message
	}
	return err.Error()
}

// isExpired reports whether err ended the session.
func isExpired(err error) bool {
	return errors.Is(err, amplyerrors.ErrSessionExpired)
}

// field renders a "label  value" line.
func field(s *Styles, label, value string) string {
	return s.Muted.Render(fmt.Sprintf("%-18s", label)) + value
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
