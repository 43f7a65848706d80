package types

// OrganizationDetail is the full record behind GET /organizations/mine.
type OrganizationDetail struct {
	ID                   string       `json:"id" yaml:"id"`
	Slug                 string       `json:"slug" yaml:"slug"`
	Name                 string       `json:"name" yaml:"name"`
	DisplayName          string       `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	OrganizationType     string       `json:"organization_type" yaml:"organization_type"`
	Description          string       `json:"description,omitempty" yaml:"description,omitempty"`
	MissionStatement     string       `json:"mission_statement,omitempty" yaml:"mission_statement,omitempty"`
	WebsiteURL           string       `json:"website_url,omitempty" yaml:"website_url,omitempty"`
	ContactEmail         string       `json:"contact_email" yaml:"contact_email"`
	ContactPhone         string       `json:"contact_phone,omitempty" yaml:"contact_phone,omitempty"`
	LogoURL              string       `json:"logo_url,omitempty" yaml:"logo_url,omitempty"`
	BannerURL            string       `json:"banner_url,omitempty" yaml:"banner_url,omitempty"`
	AddressLine1         string       `json:"address_line_1,omitempty" yaml:"address_line_1,omitempty"`
	AddressLine2         string       `json:"address_line_2,omitempty" yaml:"address_line_2,omitempty"`
	City                 string       `json:"city,omitempty" yaml:"city,omitempty"`
	StateProvinceRegion  string       `json:"state_province_region,omitempty" yaml:"state_province_region,omitempty"`
	PostalCode           string       `json:"postal_code,omitempty" yaml:"postal_code,omitempty"`
	CountryCode          string       `json:"country_code,omitempty" yaml:"country_code,omitempty"`
	Status               string       `json:"status" yaml:"status"`
	ReviewStatus         ReviewStatus `json:"review_status,omitempty" yaml:"review_status,omitempty"`
	VerificationStatus   string       `json:"verification_status" yaml:"verification_status"`
	VerificationLevel    string       `json:"verification_level,omitempty" yaml:"verification_level,omitempty"`
	CanReceiveDonations  bool         `json:"can_receive_donations" yaml:"can_receive_donations"`
	IsPublic             bool         `json:"is_public" yaml:"is_public"`
	StripeChargesEnabled bool         `json:"stripe_charges_enabled" yaml:"stripe_charges_enabled"`
	StripePayoutsEnabled bool         `json:"stripe_payouts_enabled" yaml:"stripe_payouts_enabled"`
	DefaultCurrency      string       `json:"default_currency" yaml:"default_currency"`
	SDGs                 []int        `json:"sdgs" yaml:"sdgs"`
	TaxID                string       `json:"tax_id,omitempty" yaml:"tax_id,omitempty"`
	LegalName            string       `json:"legal_name,omitempty" yaml:"legal_name,omitempty"`
	CreatedAt            string       `json:"created_at" yaml:"created_at"`
	UpdatedAt            string       `json:"updated_at" yaml:"updated_at"`
}

// OrganizationUpdate is the PATCH body for /organizations/mine.
// Nil fields are left untouched by the server.
type OrganizationUpdate struct {
	DisplayName         *string `json:"display_name,omitempty"`
	Description         *string `json:"description,omitempty"`
	MissionStatement    *string `json:"mission_statement,omitempty"`
	WebsiteURL          *string `json:"website_url,omitempty"`
	ContactEmail        *string `json:"contact_email,omitempty"`
	ContactPhone        *string `json:"contact_phone,omitempty"`
	LogoURL             *string `json:"logo_url,omitempty"`
	BannerURL           *string `json:"banner_url,omitempty"`
	AddressLine1        *string `json:"address_line_1,omitempty"`
	AddressLine2        *string `json:"address_line_2,omitempty"`
	City                *string `json:"city,omitempty"`
	StateProvinceRegion *string `json:"state_province_region,omitempty"`
	PostalCode          *string `json:"postal_code,omitempty"`
	PrimaryColor        *string `json:"primary_color,omitempty"`
	SDGs                []int   `json:"sdgs,omitempty"`
}

// FundSummary is a fund balance line in the organization summary.
type FundSummary struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Balance   int64  `json:"balance" yaml:"balance"`
	Currency  string `json:"currency" yaml:"currency"`
	IsDefault bool   `json:"is_default" yaml:"is_default"`
}

// DonationSummary is a recent donation line in the organization summary.
type DonationSummary struct {
	ID                     string `json:"id" yaml:"id"`
	Amount                 int64  `json:"amount" yaml:"amount"`
	Currency               string `json:"currency" yaml:"currency"`
	DonorName              string `json:"donor_name" yaml:"donor_name"`
	DonorDisplayPreference string `json:"donor_display_preference" yaml:"donor_display_preference"`
	CompletedAt            string `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// OrganizationSummary backs the admin overview screen.
type OrganizationSummary struct {
	TotalDonations  int               `json:"total_donations" yaml:"total_donations"`
	TotalAmount     int64             `json:"total_amount" yaml:"total_amount"`
	Currency        string            `json:"currency" yaml:"currency"`
	PendingAmount   int64             `json:"pending_amount" yaml:"pending_amount"`
	ThisMonthAmount int64             `json:"this_month_amount" yaml:"this_month_amount"`
	ThisMonthCount  int               `json:"this_month_count" yaml:"this_month_count"`
	Funds           []FundSummary     `json:"funds" yaml:"funds"`
	RecentDonations []DonationSummary `json:"recent_donations" yaml:"recent_donations"`
}

// FundType classifies how fund money may be spent.
type FundType string

const (
	FundGeneral    FundType = "general"
	FundProject    FundType = "project"
	FundRestricted FundType = "restricted"
	FundEmergency  FundType = "emergency"
)

// Fund is an earmarked pool of donations.
type Fund struct {
	ID             string   `json:"id" yaml:"id"`
	OrganizationID string   `json:"organization_id" yaml:"organization_id"`
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	FundType       FundType `json:"fund_type" yaml:"fund_type"`
	Currency       string   `json:"currency" yaml:"currency"`
	CurrentAmount  int64    `json:"current_amount" yaml:"current_amount"`
	GoalAmount     *int64   `json:"goal_amount,omitempty" yaml:"goal_amount,omitempty"`
	IsDefault      bool     `json:"is_default" yaml:"is_default"`
	IsActive       bool     `json:"is_active" yaml:"is_active"`
	CreatedAt      string   `json:"created_at" yaml:"created_at"`
	UpdatedAt      string   `json:"updated_at" yaml:"updated_at"`
}

// Progress returns the percentage of the goal reached, capped at 100.
// Funds without a goal report 0.
func (f Fund) Progress() float64 {
	if f.GoalAmount == nil || *f.GoalAmount <= 0 {
		return 0
	}
	p := float64(f.CurrentAmount) / float64(*f.GoalAmount) * 100
	if p > 100 {
		return 100
	}
	return p
}

// FundCreate is the POST body for /organizations/mine/funds.
type FundCreate struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	FundType    FundType `json:"fund_type,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	GoalAmount  *int64   `json:"goal_amount,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

// FundUpdate is the PATCH body for /organizations/mine/funds/{id}.
type FundUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	GoalAmount  *int64  `json:"goal_amount,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// DonationListItem is a row of /organizations/mine/donations.
type DonationListItem struct {
	ID                     string `json:"id" yaml:"id"`
	Amount                 int64  `json:"amount" yaml:"amount"`
	FeeAmount              int64  `json:"fee_amount" yaml:"fee_amount"`
	NetAmount              int64  `json:"net_amount" yaml:"net_amount"`
	Currency               string `json:"currency" yaml:"currency"`
	Status                 string `json:"status" yaml:"status"`
	DonorEmail             string `json:"donor_email" yaml:"donor_email"`
	DonorFirstName         string `json:"donor_first_name" yaml:"donor_first_name"`
	DonorLastName          string `json:"donor_last_name" yaml:"donor_last_name"`
	DonorDisplayPreference string `json:"donor_display_preference" yaml:"donor_display_preference"`
	FundID                 string `json:"fund_id,omitempty" yaml:"fund_id,omitempty"`
	FundName               string `json:"fund_name,omitempty" yaml:"fund_name,omitempty"`
	PaymentMethodType      string `json:"payment_method_type,omitempty" yaml:"payment_method_type,omitempty"`
	CompletedAt            string `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	CreatedAt              string `json:"created_at" yaml:"created_at"`
}

// DonorName renders the donor according to their display preference.
func (d DonationListItem) DonorName() string {
	if d.DonorDisplayPreference == string(VisibilityPublicAnonymous) || d.DonorDisplayPreference == string(VisibilityPrivate) {
		return "Anonymous"
	}
	name := d.DonorFirstName
	if d.DonorLastName != "" {
		if name != "" {
			name += " "
		}
		name += d.DonorLastName
	}
	if name == "" {
		return d.DonorEmail
	}
	return name
}

// LedgerEntryType is the kind of ledger movement.
type LedgerEntryType string

const (
	LedgerGenesis          LedgerEntryType = "genesis"
	LedgerDonationReceived LedgerEntryType = "donation_received"
	LedgerRefundIssued     LedgerEntryType = "refund_issued"
	LedgerAdjustment       LedgerEntryType = "adjustment"
)

// LedgerEntry is one row of the public organization ledger.
type LedgerEntry struct {
	ID             string          `json:"id" yaml:"id"`
	SequenceNumber int64           `json:"sequence_number" yaml:"sequence_number"`
	EntryType      LedgerEntryType `json:"entry_type" yaml:"entry_type"`
	Amount         int64           `json:"amount" yaml:"amount"`
	Currency       string          `json:"currency" yaml:"currency"`
	Description    string          `json:"description,omitempty" yaml:"description,omitempty"`
	ReferenceType  string          `json:"reference_type,omitempty" yaml:"reference_type,omitempty"`
	ReferenceID    string          `json:"reference_id,omitempty" yaml:"reference_id,omitempty"`
	FundID         string          `json:"fund_id" yaml:"fund_id"`
	FundName       string          `json:"fund_name" yaml:"fund_name"`
	Visibility     string          `json:"visibility" yaml:"visibility"`
	CreatedAt      string          `json:"created_at" yaml:"created_at"`
}

// Summary is the embedded Organization view of the detail record.
func (o *OrganizationDetail) Summary() *Organization {
	if o == nil {
		return nil
	}
	return &Organization{
		ID:                   o.ID,
		Name:                 o.Name,
		Slug:                 o.Slug,
		ReviewStatus:         o.ReviewStatus,
		IsPublic:             o.IsPublic,
		StripeChargesEnabled: o.StripeChargesEnabled,
	}
}
