package types

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignPaused    CampaignStatus = "paused"
	CampaignCompleted CampaignStatus = "completed"
	CampaignCancelled CampaignStatus = "cancelled"
)

// CampaignType categorizes a campaign.
type CampaignType string

const (
	CampaignFundraiser CampaignType = "fundraiser"
	CampaignProject    CampaignType = "project"
	CampaignEmergency  CampaignType = "emergency"
	CampaignRecurring  CampaignType = "recurring"
)

// Campaign is a time-boxed fundraising effort.
type Campaign struct {
	ID               string         `json:"id" yaml:"id"`
	OrganizationID   string         `json:"organization_id" yaml:"organization_id"`
	FundID           string         `json:"fund_id,omitempty" yaml:"fund_id,omitempty"`
	Slug             string         `json:"slug" yaml:"slug"`
	Title            string         `json:"title" yaml:"title"`
	Type             CampaignType   `json:"type" yaml:"type"`
	Status           CampaignStatus `json:"status" yaml:"status"`
	ShortDescription string         `json:"short_description,omitempty" yaml:"short_description,omitempty"`
	Story            string         `json:"story,omitempty" yaml:"story,omitempty"`
	CoverImageURL    string         `json:"cover_image_url,omitempty" yaml:"cover_image_url,omitempty"`
	VideoURL         string         `json:"video_url,omitempty" yaml:"video_url,omitempty"`
	GoalAmount       int64          `json:"goal_amount" yaml:"goal_amount"`
	CurrentAmount    int64          `json:"current_amount" yaml:"current_amount"`
	Currency         string         `json:"currency" yaml:"currency"`
	DonationCount    int            `json:"donation_count" yaml:"donation_count"`
	StartsAt         string         `json:"starts_at,omitempty" yaml:"starts_at,omitempty"`
	EndsAt           string         `json:"ends_at,omitempty" yaml:"ends_at,omitempty"`
	IsPublic         bool           `json:"is_public" yaml:"is_public"`
	IsFeatured       bool           `json:"is_featured" yaml:"is_featured"`
	SDGs             []int          `json:"sdgs,omitempty" yaml:"sdgs,omitempty"`
	CreatedAt        string         `json:"created_at" yaml:"created_at"`
	UpdatedAt        string         `json:"updated_at" yaml:"updated_at"`
	ProgressPercent  float64        `json:"progress_percent" yaml:"progress_percent"`
}

// CampaignCreate is the POST body for /campaigns/mine.
type CampaignCreate struct {
	Title            string       `json:"title"`
	Type             CampaignType `json:"type,omitempty"`
	ShortDescription string       `json:"short_description,omitempty"`
	Story            string       `json:"story,omitempty"`
	CoverImageURL    string       `json:"cover_image_url,omitempty"`
	VideoURL         string       `json:"video_url,omitempty"`
	GoalAmount       int64        `json:"goal_amount"`
	Currency         string       `json:"currency,omitempty"`
	StartsAt         string       `json:"starts_at,omitempty"`
	EndsAt           string       `json:"ends_at,omitempty"`
	IsPublic         *bool        `json:"is_public,omitempty"`
	FundID           string       `json:"fund_id,omitempty"`
	SDGs             []int        `json:"sdgs,omitempty"`
}

// CampaignUpdate is the PATCH body for /campaigns/mine/{id}.
type CampaignUpdate struct {
	Title            *string         `json:"title,omitempty"`
	ShortDescription *string         `json:"short_description,omitempty"`
	Story            *string         `json:"story,omitempty"`
	CoverImageURL    *string         `json:"cover_image_url,omitempty"`
	VideoURL         *string         `json:"video_url,omitempty"`
	GoalAmount       *int64          `json:"goal_amount,omitempty"`
	StartsAt         *string         `json:"starts_at,omitempty"`
	EndsAt           *string         `json:"ends_at,omitempty"`
	IsPublic         *bool           `json:"is_public,omitempty"`
	Status           *CampaignStatus `json:"status,omitempty"`
	SDGs             []int           `json:"sdgs,omitempty"`
}
