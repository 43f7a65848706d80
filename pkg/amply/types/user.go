package types

// AccountType distinguishes donors from organization administrators.
type AccountType string

const (
	AccountContributor       AccountType = "contributor"
	AccountOrganizationAdmin AccountType = "organization_admin"
)

// ContributorType is the registration subtype of a contributor account.
type ContributorType string

const (
	ContributorIndividual ContributorType = "individual"
	ContributorBusiness   ContributorType = "business"
	ContributorFundraiser ContributorType = "fundraiser"
)

// ContributorTypes lists the selectable contributor types in display order.
var ContributorTypes = []ContributorType{ContributorIndividual, ContributorBusiness, ContributorFundraiser}

// Valid reports whether t is one of the known contributor types.
func (t ContributorType) Valid() bool {
	switch t {
	case ContributorIndividual, ContributorBusiness, ContributorFundraiser:
		return true
	}
	return false
}

// ReviewStatus is the platform review state of an organization.
type ReviewStatus string

const (
	ReviewPending       ReviewStatus = "pending"
	ReviewApproved      ReviewStatus = "approved"
	ReviewRejected      ReviewStatus = "rejected"
	ReviewInfoRequested ReviewStatus = "info_requested"
)

// DonorVisibility controls how a donor appears on public ledgers.
type DonorVisibility string

const (
	VisibilityPublicFull      DonorVisibility = "public_full"
	VisibilityPublicAnonymous DonorVisibility = "public_anonymous"
	VisibilityPrivate         DonorVisibility = "private"
)

// DonorVisibilities lists the accepted visibility values in display order.
var DonorVisibilities = []DonorVisibility{VisibilityPublicFull, VisibilityPublicAnonymous, VisibilityPrivate}

// Valid reports whether v is an accepted visibility.
func (v DonorVisibility) Valid() bool {
	switch v {
	case VisibilityPublicFull, VisibilityPublicAnonymous, VisibilityPrivate:
		return true
	}
	return false
}

// Organization is the summary embedded in a User.
type Organization struct {
	ID                   string       `json:"id" yaml:"id"`
	Name                 string       `json:"name" yaml:"name"`
	Slug                 string       `json:"slug" yaml:"slug"`
	ReviewStatus         ReviewStatus `json:"review_status" yaml:"review_status"`
	IsPublic             bool         `json:"is_public" yaml:"is_public"`
	StripeChargesEnabled bool         `json:"stripe_charges_enabled" yaml:"stripe_charges_enabled"`
}

// User is the authenticated account as returned by /auth/me.
type User struct {
	ID                  string          `json:"id" yaml:"id"`
	Email               string          `json:"email" yaml:"email"`
	FirstName           string          `json:"first_name" yaml:"first_name"`
	LastName            string          `json:"last_name" yaml:"last_name"`
	DisplayName         string          `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	IsEmailVerified     bool            `json:"is_email_verified" yaml:"is_email_verified"`
	AccountType         AccountType     `json:"account_type" yaml:"account_type"`
	ContributorType     ContributorType `json:"contributor_type,omitempty" yaml:"contributor_type,omitempty"`
	CompanyName         string          `json:"company_name,omitempty" yaml:"company_name,omitempty"`
	City                string          `json:"city,omitempty" yaml:"city,omitempty"`
	CountryCode         string          `json:"country_code,omitempty" yaml:"country_code,omitempty"`
	LanguagePreference  string          `json:"language_preference" yaml:"language_preference"`
	Timezone            string          `json:"timezone" yaml:"timezone"`
	OnboardingCompleted bool            `json:"onboarding_completed" yaml:"onboarding_completed"`
	Organization        *Organization   `json:"organization,omitempty" yaml:"organization,omitempty"`
}

// Name returns the display name, falling back to first and last name.
func (u *User) Name() string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Organization = u.Organization.Clone()
	return &c
}

// Clone returns a copy of o.
func (o *Organization) Clone() *Organization {
	if o == nil {
		return nil
	}
	c := *o
	return &c
}

// Session is an immutable snapshot of the client session.
// User and Organization are meaningful only while Token is non-empty.
type Session struct {
	Token        string
	User         *User
	Organization *Organization
	Loading      bool
}
