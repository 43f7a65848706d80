package cmd

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
	"github.com/amply-impact/amply/internal/metrics"
	"github.com/amply-impact/amply/internal/route"
	"github.com/amply-impact/amply/internal/storage"
	"github.com/amply-impact/amply/internal/tui"
)

var dashCmd = &cobra.Command{
	Use:   "dash [route]",
	Short: "Open the interactive dashboard",
	Long: `Open the terminal dashboard, optionally at a route.

Routes are the dashboard paths, with or without the base path:
  /, /giving, /settings, /organization, /organization/settings,
  /donations, /funds, /ledger, /campaigns, /campaigns/new, /campaigns/<id>,
  /widgets, /widgets/new, /widgets/<id>, /login, /register

Protected routes send you to the login screen first and come back after
signing in.

Examples:
  amply dash
  amply dash /campaigns
  amply dash /dashboard/widgets/w_123
  amply dash --metrics-addr 127.0.0.1:9464`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{tuiAnnotation: "true"},
	RunE: runE(func(cmd *cobra.Command, args []string, rt *runtime) error {
		loc := route.At(route.ScreenDashboard)
		if len(args) == 1 {
			var err error
			if loc, err = resolveRoute(rt.cfg.App.BasePath, args[0]); err != nil {
				return err
			}
		}
		return runDashboard(cmd, rt, loc)
	}),
}

var dashMetricsAddr string

func init() {
	dashCmd.Flags().StringVar(&dashMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the dashboard runs")

	rootCmd.AddCommand(dashCmd)
}

// resolveRoute maps a route argument to a location, suggesting the closest
// known route for typos.
func resolveRoute(basePath, raw string) (route.Location, error) {
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	if loc, ok := route.Resolve(basePath, raw); ok {
		return loc, nil
	}
	err := amplyerrors.New(amplyerrors.ErrCodeRouteNotFound, fmt.Sprintf("unknown route %q", raw)).WithField("route")
	if s := route.Suggest(basePath, raw); s != "" {
		err = err.WithSuggestion(fmt.Sprintf("Did you mean %q?", s))
	}
	return route.Location{}, err.WithSuggestion("Run 'amply dash --help' for the list of routes")
}

// runDashboard hydrates the session, follows session changes made by
// other processes and runs the dashboard at loc until it exits.
func runDashboard(cmd *cobra.Command, rt *runtime, loc route.Location) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if dashMetricsAddr != "" {
		addr, done, err := metrics.Serve(ctx, dashMetricsAddr, rt.registry)
		if err != nil {
			return amplyerrors.Wrap(amplyerrors.ErrCodeConfigInvalid, fmt.Sprintf("cannot serve metrics on %s", dashMetricsAddr), err)
		}
		rt.logger.Info("serving metrics", "addr", addr.String())
		defer func() { <-done }()
		defer cancel()
	}

	watcher, err := storage.NewWatcher(rt.files.Dir(), rt.logger)
	if err != nil {
		rt.logger.WithError(err).Warn("not following session changes from other processes")
	} else {
		if err := watcher.Start(ctx); err != nil {
			rt.logger.WithError(err).Warn("not following session changes from other processes")
		} else {
			go rt.session.Follow(ctx, watcher.Changes())
		}
		defer watcher.Stop()
	}

	rt.session.Hydrate()
	app := tui.New(tui.Options{
		Session:   rt.session,
		API:       rt.api,
		Prefs:     rt.prefs,
		Navigator: route.NewNavigator(loc, rt.metrics, rt.logger),
		Metrics:   rt.metrics,
		Logger:    rt.logger,
		Context:   ctx,
	})
	return tui.Run(app, tea.WithContext(ctx))
}
