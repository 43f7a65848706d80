package wizard

import (
	"fmt"
	"strings"
	"unicode/utf8"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
	"github.com/amply-impact/amply/internal/prefs"
	"github.com/amply-impact/amply/pkg/amply/types"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// Draft accumulates the registration fields. It is never persisted.
type Draft struct {
	ContributorType           types.ContributorType
	Email                     string
	Password                  string
	ConfirmPassword           string
	FirstName                 string
	LastName                  string
	DisplayName               string
	CompanyName               string
	CompanyRole               string
	AddressLine1              string
	AddressLine2              string
	City                      string
	StateProvinceRegion       string
	PostalCode                string
	CountryCode               string
	PhoneNumber               string
	LanguagePreference        string
	DefaultDonationVisibility types.DonorVisibility
	MarketingConsent          bool
}

// NewDraft returns a draft with the form defaults.
func NewDraft() Draft {
	return Draft{
		LanguagePreference:        string(prefs.LanguageEnglish),
		DefaultDonationVisibility: types.VisibilityPublicFull,
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// NormalizeCountry upper-cases a country code and keeps two letters.
func NormalizeCountry(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) > 2 {
		code = code[:2]
	}
	return code
}

// CheckPassword enforces the minimum length, counted in characters.
func CheckPassword(p string) error {
	if utf8.RuneCountInString(p) < MinPasswordLength {
		return amplyerrors.NewFieldInvalidError("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	return nil
}

// Validate checks the fields owned by slide s. The first problem is
// returned as a field error.
func (d *Draft) Validate(s Slide) error {
	switch s {
	case SlideType:
		if !d.ContributorType.Valid() {
			return amplyerrors.NewFieldRequiredError("contributor_type")
		}
	case SlideCredentials:
		if blank(d.Email) {
			return amplyerrors.NewFieldRequiredError("email")
		}
		if err := CheckPassword(d.Password); err != nil {
			return err
		}
		if d.Password != d.ConfirmPassword {
			return amplyerrors.NewFieldInvalidError("confirm_password", "does not match the password")
		}
	case SlideName:
		if blank(d.FirstName) {
			return amplyerrors.NewFieldRequiredError("first_name")
		}
		if blank(d.LastName) {
			return amplyerrors.NewFieldRequiredError("last_name")
		}
	case SlideCompany:
		if blank(d.CompanyName) {
			return amplyerrors.NewFieldRequiredError("company_name")
		}
	case SlideAddress:
		d.CountryCode = NormalizeCountry(d.CountryCode)
		switch {
		case blank(d.AddressLine1):
			return amplyerrors.NewFieldRequiredError("address_line_1")
		case blank(d.City):
			return amplyerrors.NewFieldRequiredError("city")
		case blank(d.PostalCode):
			return amplyerrors.NewFieldRequiredError("postal_code")
		case d.CountryCode == "":
			return amplyerrors.NewFieldRequiredError("country_code")
		}
	case SlideContact:
		if !prefs.Language(d.LanguagePreference).Supported() {
			return amplyerrors.NewFieldInvalidError("language_preference",
				"must be one of "+strings.Join(prefs.LanguageCodes(), ", "))
		}
	case SlidePreferences:
		if !d.DefaultDonationVisibility.Valid() {
			return amplyerrors.NewFieldInvalidError("default_donation_visibility", "is not a known visibility")
		}
	}
	return nil
}

// Request builds the registration request. Blank optional fields are
// omitted, and company fields are only sent for business accounts.
func (d *Draft) Request() types.RegisterRequest {
	req := types.RegisterRequest{
		ContributorType:           d.ContributorType,
		Email:                     strings.TrimSpace(d.Email),
		Password:                  d.Password,
		FirstName:                 strings.TrimSpace(d.FirstName),
		LastName:                  strings.TrimSpace(d.LastName),
		DisplayName:               strings.TrimSpace(d.DisplayName),
		AddressLine1:              strings.TrimSpace(d.AddressLine1),
		AddressLine2:              strings.TrimSpace(d.AddressLine2),
		City:                      strings.TrimSpace(d.City),
		StateProvinceRegion:       strings.TrimSpace(d.StateProvinceRegion),
		PostalCode:                strings.TrimSpace(d.PostalCode),
		CountryCode:               NormalizeCountry(d.CountryCode),
		PhoneNumber:               strings.TrimSpace(d.PhoneNumber),
		LanguagePreference:        d.LanguagePreference,
		DefaultDonationVisibility: d.DefaultDonationVisibility,
		MarketingConsent:          d.MarketingConsent,
	}
	if d.ContributorType == types.ContributorBusiness {
		req.CompanyName = strings.TrimSpace(d.CompanyName)
		req.CompanyRole = strings.TrimSpace(d.CompanyRole)
	}
	return req
}
