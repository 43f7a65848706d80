package types

// WidgetType is the embeddable widget variant.
type WidgetType string

const (
	WidgetDonationButton  WidgetType = "donation_button"
	WidgetDonationForm    WidgetType = "donation_form"
	WidgetProgressBar     WidgetType = "progress_bar"
	WidgetLeaderboard     WidgetType = "leaderboard"
	WidgetRecentDonations WidgetType = "recent_donations"
)

// WidgetTypes lists every widget type in display order.
var WidgetTypes = []WidgetType{WidgetDonationButton, WidgetDonationForm, WidgetProgressBar, WidgetLeaderboard, WidgetRecentDonations}

// WidgetTheme is the color scheme of a widget.
type WidgetTheme string

const (
	WidgetThemeLight WidgetTheme = "light"
	WidgetThemeDark  WidgetTheme = "dark"
	WidgetThemeAuto  WidgetTheme = "auto"
)

// Widget is an embeddable donation widget.
type Widget struct {
	ID             string      `json:"id" yaml:"id"`
	OrganizationID string      `json:"organization_id" yaml:"organization_id"`
	FundID         string      `json:"fund_id,omitempty" yaml:"fund_id,omitempty"`
	CampaignID     string      `json:"campaign_id,omitempty" yaml:"campaign_id,omitempty"`
	Name           string      `json:"name" yaml:"name"`
	Type           WidgetType  `json:"type" yaml:"type"`
	Theme          WidgetTheme `json:"theme" yaml:"theme"`
	PrimaryColor   string      `json:"primary_color,omitempty" yaml:"primary_color,omitempty"`
	ButtonText     string      `json:"button_text,omitempty" yaml:"button_text,omitempty"`
	ShowGoal       bool        `json:"show_goal" yaml:"show_goal"`
	ShowDonors     bool        `json:"show_donors" yaml:"show_donors"`
	ShowRecent     bool        `json:"show_recent" yaml:"show_recent"`
	PresetAmounts  []int64     `json:"preset_amounts,omitempty" yaml:"preset_amounts,omitempty"`
	CustomCSS      string      `json:"custom_css,omitempty" yaml:"custom_css,omitempty"`
	IsActive       bool        `json:"is_active" yaml:"is_active"`
	EmbedCount     int         `json:"embed_count" yaml:"embed_count"`
	CreatedAt      string      `json:"created_at" yaml:"created_at"`
	UpdatedAt      string      `json:"updated_at" yaml:"updated_at"`
	EmbedCode      string      `json:"embed_code" yaml:"embed_code"`
}

// WidgetCreate is the POST body for /widgets/mine.
type WidgetCreate struct {
	Name          string      `json:"name"`
	Type          WidgetType  `json:"type,omitempty"`
	FundID        string      `json:"fund_id,omitempty"`
	CampaignID    string      `json:"campaign_id,omitempty"`
	Theme         WidgetTheme `json:"theme,omitempty"`
	PrimaryColor  string      `json:"primary_color,omitempty"`
	ButtonText    string      `json:"button_text,omitempty"`
	ShowGoal      *bool       `json:"show_goal,omitempty"`
	ShowDonors    *bool       `json:"show_donors,omitempty"`
	ShowRecent    *bool       `json:"show_recent,omitempty"`
	PresetAmounts []int64     `json:"preset_amounts,omitempty"`
	CustomCSS     string      `json:"custom_css,omitempty"`
}

// WidgetUpdate is the PATCH body for /widgets/mine/{id}.
type WidgetUpdate struct {
	Name          *string      `json:"name,omitempty"`
	Theme         *WidgetTheme `json:"theme,omitempty"`
	PrimaryColor  *string      `json:"primary_color,omitempty"`
	ButtonText    *string      `json:"button_text,omitempty"`
	ShowGoal      *bool        `json:"show_goal,omitempty"`
	ShowDonors    *bool        `json:"show_donors,omitempty"`
	ShowRecent    *bool        `json:"show_recent,omitempty"`
	PresetAmounts []int64      `json:"preset_amounts,omitempty"`
	CustomCSS     *string      `json:"custom_css,omitempty"`
	IsActive      *bool        `json:"is_active,omitempty"`
}
