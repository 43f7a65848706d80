package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/amply-impact/amply/internal/config"
	amplyerrors "github.com/amply-impact/amply/internal/errors"
	"github.com/amply-impact/amply/internal/gateway"
	"github.com/amply-impact/amply/internal/log"
	"github.com/amply-impact/amply/internal/metrics"
	"github.com/amply-impact/amply/internal/platform"
	"github.com/amply-impact/amply/internal/prefs"
	"github.com/amply-impact/amply/internal/query"
	"github.com/amply-impact/amply/internal/route"
	"github.com/amply-impact/amply/internal/session"
	"github.com/amply-impact/amply/internal/storage"
	"github.com/amply-impact/amply/internal/ux"
	"github.com/amply-impact/amply/internal/version"
)

// tuiAnnotation marks commands that take over the terminal. Their logs go
// to a file in the state directory.
const tuiAnnotation = "amply.tui"

// runtime is the wired client a command works with.
type runtime struct {
	cfg      config.Config
	logger   *log.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	files    *storage.FileStore
	gateway  *gateway.Client
	api      *platform.Client
	session  *session.Store
	prefs    *prefs.Manager

	closers []io.Closer
}

// newRuntime wires storage, the gateway, the platform client and the
// session store for cfg. The session is not booted yet.
func newRuntime(cfg config.Config, tui bool) (*runtime, error) {
	rt := &runtime{cfg: cfg}

	logger, closer, err := setupLogging(cfg, tui)
	if err != nil {
		return nil, err
	}
	rt.logger = logger
	if closer != nil {
		rt.closers = append(rt.closers, closer)
	}
	rt.registry, rt.metrics = metrics.NewRegistry()

	files, err := storage.NewFileStore(cfg.State.Dir)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.files = files
	sealer, err := storage.NewSealer(storage.LocalIdentity(cfg.State.Dir))
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.gateway = gateway.New(gateway.Options{
		BaseURL:      cfg.API.URL,
		Timeout:      cfg.API.Timeout,
		QueryRetries: cfg.API.QueryRetries,
		Tokens:       gateway.TokenFunc(func() string { return rt.session.Token() }),
		Metrics:      rt.metrics,
		Logger:       logger,
		UserAgent:    version.GetInfo().UserAgent(),
	})
	rt.api = platform.NewClient(rt.gateway, query.NewCache(cfg.Query.StaleTime, rt.metrics))
	rt.session = session.New(rt.api, session.Options{
		Storage: files,
		Sealer:  sealer,
		Logger:  logger,
		Metrics: rt.metrics,
	})
	rt.gateway.OnUnauthorized(rt.session.Expire)

	rt.prefs, err = prefs.Load(files)
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// Close flushes the logger and closes the log file.
func (rt *runtime) Close() {
	if rt.logger != nil {
		_ = rt.logger.Sync()
	}
	for _, c := range rt.closers {
		_ = c.Close()
	}
	rt.closers = nil
}

func setupLogging(cfg config.Config, tui bool) (*log.Logger, io.Closer, error) {
	output := log.OutputStderr()
	var closer io.Closer

	path := cfg.Log.File
	if path == "" && tui {
		path = filepath.Join(cfg.State.Dir, "amply.log")
	}
	if path != "" {
		out, c, err := log.OutputFile(path)
		if err != nil {
			return nil, nil, amplyerrors.Wrap(amplyerrors.ErrCodeConfigInvalid, fmt.Sprintf("cannot open log file %s", path), err)
		}
		output, closer = out, c
	}

	logger := log.New(log.Config{
		Level:          log.ParseLevel(cfg.Log.Level),
		Format:         log.ParseFormat(cfg.Log.Format),
		Output:         output,
		ServiceName:    "amply",
		ServiceVersion: version.GetInfo().Version,
	})
	log.SetDefaultLogger(logger)
	return logger, closer, nil
}

// runE adapts a runtime-aware handler to cobra. It wires the runtime,
// records command metrics and logs the failure, if any.
func runE(fn func(cmd *cobra.Command, args []string, rt *runtime) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		_, tui := cmd.Annotations[tuiAnnotation]
		rt, err := newRuntime(settings, tui)
		if err != nil {
			return err
		}
		defer rt.Close()

		start := time.Now()
		err = fn(cmd, args, rt)
		rt.observe(cmd.CommandPath(), time.Since(start), err)
		return ux.EnhanceError(err)
	}
}

func (rt *runtime) observe(command string, elapsed time.Duration, err error) {
	m := rt.metrics
	m.CommandExecutions.WithLabelValues(command, metrics.BoolLabel(err == nil)).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
	if err == nil {
		return
	}
	code := string(amplyerrors.CodeOf(err))
	if code == "" {
		code = "unknown"
	}
	m.CommandErrors.WithLabelValues(command, code).Inc()
	m.Errors.WithLabelValues(code, string(amplyerrors.CategoryOf(err))).Inc()
	rt.logger.With("command", command).LogError(err)
}

// authorize boots the session and applies the same guard the dashboard
// applies to screen. A denied decision becomes the matching coded error.
func (rt *runtime) authorize(ctx context.Context, screen route.Screen) error {
	rt.session.Boot(ctx)
	snap := rt.session.Snapshot()
	d := route.Classify(snap, route.At(screen))
	rt.metrics.RouteDecisions.WithLabelValues(screen.String(), d.State.String()).Inc()

	switch d.State {
	case route.StateGranted:
		return nil
	case route.StateDeniedUnauthenticated:
		return amplyerrors.NewNotLoggedInError()
	case route.StateDeniedNotAdmin:
		return amplyerrors.NewNotOrgAdminError()
	case route.StateDeniedNotApproved:
		review := ""
		if snap.Organization != nil {
			review = string(snap.Organization.ReviewStatus)
		}
		return amplyerrors.NewOrgNotApprovedError(review)
	}
	return amplyerrors.New(amplyerrors.ErrCodeSessionNotReady, "session is still loading")
}
