package route

import (
	"net/url"

	"github.com/amply-impact/amply/internal/access"
	"github.com/amply-impact/amply/pkg/amply/types"
)

// State is the outcome of classifying a location for a session.
type State int

const (
	StateLoading State = iota
	StateDeniedUnauthenticated
	StateDeniedNotAdmin
	StateDeniedNotApproved
	StateGranted
)

var stateNames = [...]string{
	StateLoading:               "loading",
	StateDeniedUnauthenticated: "denied_unauthenticated",
	StateDeniedNotAdmin:        "denied_not_admin",
	StateDeniedNotApproved:     "denied_not_approved",
	StateGranted:               "granted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Decision is a classification plus the redirect it calls for. Redirect is
// only meaningful for the denied states.
type Decision struct {
	State    State
	Redirect Location
}

// Redirects reports whether the decision sends the user elsewhere.
func (d Decision) Redirects() bool {
	switch d.State {
	case StateDeniedUnauthenticated, StateDeniedNotAdmin, StateDeniedNotApproved:
		return true
	}
	return false
}

// Classify decides what to do with a request for loc. Checks run in a fixed
// order and the first match wins: loading, authentication, admin role,
// organization approval.
func Classify(s types.Session, loc Location) Decision {
	req := loc.Screen.Definition().Requires

	switch {
	case s.Loading:
		return Decision{State: StateLoading}
	case req.Auth && !access.IsAuthenticated(s):
		return Decision{State: StateDeniedUnauthenticated, Redirect: LoginFrom(loc)}
	case req.OrgAdmin && !access.IsOrgAdmin(s):
		return Decision{State: StateDeniedNotAdmin, Redirect: At(ScreenDashboard)}
	case req.Approved && access.OrganizationReviewStatus(s) != types.ReviewApproved:
		return Decision{State: StateDeniedNotApproved, Redirect: At(ScreenOrganization)}
	default:
		return Decision{State: StateGranted}
	}
}

// LoginFrom is the login location that returns to loc after signing in.
func LoginFrom(loc Location) Location {
	return Location{Screen: ScreenLogin, Query: url.Values{"from": {loc.Path()}}}
}

// AfterLogin is where a login at loc continues to. Only protected screens
// are honoured as return targets.
func AfterLogin(loc Location) Location {
	if from, ok := loc.From(); ok && !from.Screen.Definition().Public() {
		return from
	}
	return At(ScreenDashboard)
}
