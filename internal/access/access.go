// Package access derives role and approval flags from a session snapshot.
// Nothing here is stored; every call recomputes from the snapshot it is given.
package access

import "github.com/amply-impact/amply/pkg/amply/types"

// IsAuthenticated reports whether the session has both a token and a user.
func IsAuthenticated(s types.Session) bool {
	return s.Token != "" && s.User != nil
}

// IsOrgAdmin reports whether the session belongs to an organization admin.
func IsOrgAdmin(s types.Session) bool {
	return IsAuthenticated(s) && s.User.AccountType == types.AccountOrganizationAdmin
}

// OrganizationReviewStatus returns the organization's review status, or ""
// when there is no organization or no token.
func OrganizationReviewStatus(s types.Session) types.ReviewStatus {
	if s.Token == "" || s.Organization == nil {
		return ""
	}
	return s.Organization.ReviewStatus
}

// IsApproved reports whether the session's organization passed review.
func IsApproved(s types.Session) bool {
	return OrganizationReviewStatus(s) == types.ReviewApproved
}

// Flags bundles the derived predicates of one snapshot.
type Flags struct {
	Authenticated bool
	OrgAdmin      bool
	ReviewStatus  types.ReviewStatus
}

// Approved reports whether the organization passed review.
func (f Flags) Approved() bool {
	return f.ReviewStatus == types.ReviewApproved
}

// FlagsOf computes Flags for s.
func FlagsOf(s types.Session) Flags {
	return Flags{
		Authenticated: IsAuthenticated(s),
		OrgAdmin:      IsOrgAdmin(s),
		ReviewStatus:  OrganizationReviewStatus(s),
	}
}
