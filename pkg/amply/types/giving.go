package types

// GivingHistoryItem is one of the signed-in donor's donations.
type GivingHistoryItem struct {
	ID               string `json:"id" yaml:"id"`
	OrganizationID   string `json:"organization_id" yaml:"organization_id"`
	OrganizationName string `json:"organization_name" yaml:"organization_name"`
	FundID           string `json:"fund_id,omitempty" yaml:"fund_id,omitempty"`
	FundName         string `json:"fund_name,omitempty" yaml:"fund_name,omitempty"`
	CampaignID       string `json:"campaign_id,omitempty" yaml:"campaign_id,omitempty"`
	CampaignTitle    string `json:"campaign_title,omitempty" yaml:"campaign_title,omitempty"`
	Amount           int64  `json:"amount" yaml:"amount"`
	NetAmount        int64  `json:"net_amount" yaml:"net_amount"`
	Currency         string `json:"currency" yaml:"currency"`
	Status           string `json:"status" yaml:"status"`
	Message          string `json:"message,omitempty" yaml:"message,omitempty"`
	CoversFee        bool   `json:"covers_fee" yaml:"covers_fee"`
	ReceiptNumber    string `json:"receipt_number,omitempty" yaml:"receipt_number,omitempty"`
	ReceiptIssuedAt  string `json:"receipt_issued_at,omitempty" yaml:"receipt_issued_at,omitempty"`
	CreatedAt        string `json:"created_at" yaml:"created_at"`
	CompletedAt      string `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// GivingSummary aggregates the donor's giving.
type GivingSummary struct {
	TotalDonated       int64  `json:"total_donated" yaml:"total_donated"`
	TotalDonations     int    `json:"total_donations" yaml:"total_donations"`
	TotalOrganizations int    `json:"total_organizations" yaml:"total_organizations"`
	Currency           string `json:"currency" yaml:"currency"`
}
