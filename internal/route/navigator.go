package route

import (
	"sync"

	"github.com/amply-impact/amply/internal/log"
	"github.com/amply-impact/amply/internal/metrics"
	"github.com/amply-impact/amply/pkg/amply/types"
)

// Navigator tracks the current location and performs guard redirects. A
// redirect fires once per change of classification; evaluating the same
// state for the same location again does nothing.
type Navigator struct {
	mu        sync.Mutex
	current   Location
	last      Decision
	lastLoc   Location
	evaluated bool

	metrics *metrics.Metrics
	logger  *log.Logger
}

// NewNavigator starts at start.
func NewNavigator(start Location, m *metrics.Metrics, logger *log.Logger) *Navigator {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Navigator{
		current: start,
		metrics: m,
		logger:  logger.With("component", "navigator"),
	}
}

// Current returns the location being shown or requested.
func (n *Navigator) Current() Location {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Go requests a new location. The next Evaluate classifies it.
func (n *Navigator) Go(loc Location) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = loc
}

// Evaluate classifies the current location for s. When the decision is a
// redirect not yet performed for this location and state, the navigator
// moves to the redirect target and reports redirected true.
func (n *Navigator) Evaluate(s types.Session) (d Decision, redirected bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	loc := n.current
	d = Classify(s, loc)

	same := n.evaluated && n.last.State == d.State && n.lastLoc.Equal(loc)
	n.last, n.lastLoc, n.evaluated = d, loc, true
	if same {
		return d, false
	}

	if n.metrics != nil {
		n.metrics.RouteDecisions.WithLabelValues(loc.Screen.String(), d.State.String()).Inc()
	}
	if !d.Redirects() {
		return d, false
	}

	if n.metrics != nil {
		n.metrics.Redirects.WithLabelValues(d.State.String()).Inc()
	}
	n.logger.Debug("redirect", "from", loc.Path(), "to", d.Redirect.Path(), "state", d.State.String())
	n.current = d.Redirect
	return d, true
}
