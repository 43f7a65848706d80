package types

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	ContributorType           ContributorType `json:"contributor_type"`
	Email                     string          `json:"email"`
	Password                  string          `json:"password"`
	FirstName                 string          `json:"first_name"`
	LastName                  string          `json:"last_name"`
	DisplayName               string          `json:"display_name,omitempty"`
	CompanyName               string          `json:"company_name,omitempty"`
	CompanyRole               string          `json:"company_role,omitempty"`
	AddressLine1              string          `json:"address_line_1"`
	AddressLine2              string          `json:"address_line_2,omitempty"`
	City                      string          `json:"city"`
	StateProvinceRegion       string          `json:"state_province_region,omitempty"`
	PostalCode                string          `json:"postal_code"`
	CountryCode               string          `json:"country_code"`
	PhoneNumber               string          `json:"phone_number,omitempty"`
	LanguagePreference        string          `json:"language_preference"`
	DefaultDonationVisibility DonorVisibility `json:"default_donation_visibility"`
	MarketingConsent          bool            `json:"marketing_consent"`
}

// RegisterResponse is returned by POST /auth/register.
type RegisterResponse struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// EmailRequest carries a single email address (password reset requests).
type EmailRequest struct {
	Email string `json:"email"`
}

// TokenRequest carries a one-time token (email verification).
type TokenRequest struct {
	Token string `json:"token"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// MessageResponse is the generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}
