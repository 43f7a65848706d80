package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		minor    int64
		currency string
		want     string
	}{
		{0, "EUR", "€0.00"},
		{1999, "eur", "€19.99"},
		{123456789, "USD", "$1,234,567.89"},
		{-500, "GBP", "-£5.00"},
		{100000, "SEK", "1,000.00 SEK"},
		{250, "", "€2.50"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.minor, tt.currency))
		})
	}
}

func TestUserName(t *testing.T) {
	var nilUser *User
	assert.Equal(t, "", nilUser.Name())
	assert.Equal(t, "Ada", (&User{DisplayName: "Ada", FirstName: "A", LastName: "L"}).Name())
	assert.Equal(t, "Ada Lovelace", (&User{FirstName: "Ada", LastName: "Lovelace"}).Name())
	assert.Equal(t, "ada@example.org", (&User{Email: "ada@example.org"}).Name())
}

func TestUserCloneIsDeep(t *testing.T) {
	u := &User{ID: "u1", Organization: &Organization{ID: "o1", ReviewStatus: ReviewPending}}
	c := u.Clone()

	c.Organization.ReviewStatus = ReviewApproved
	assert.Equal(t, ReviewPending, u.Organization.ReviewStatus)
	assert.Nil(t, (*User)(nil).Clone())
}

func TestUserDecodesNullableFields(t *testing.T) {
	raw := `{
		"id": "u1",
		"email": "org@example.org",
		"first_name": "Grace",
		"last_name": "Hopper",
		"display_name": null,
		"account_type": "organization_admin",
		"contributor_type": null,
		"language_preference": "de",
		"timezone": "Europe/Berlin",
		"organization": {"id": "o1", "name": "Water", "slug": "water", "review_status": "info_requested", "is_public": false, "stripe_charges_enabled": true}
	}`

	var u User
	require.NoError(t, json.Unmarshal([]byte(raw), &u))
	assert.Equal(t, AccountOrganizationAdmin, u.AccountType)
	assert.Empty(t, u.ContributorType)
	require.NotNil(t, u.Organization)
	assert.Equal(t, ReviewInfoRequested, u.Organization.ReviewStatus)
}

func TestRegisterRequestOmitsBlankOptionals(t *testing.T) {
	b, err := json.Marshal(RegisterRequest{
		ContributorType:           ContributorIndividual,
		Email:                     "a@b.c",
		Password:                  "password1",
		FirstName:                 "A",
		LastName:                  "B",
		AddressLine1:              "Main 1",
		City:                      "Berlin",
		PostalCode:                "10115",
		CountryCode:               "DE",
		LanguagePreference:        "en",
		DefaultDonationVisibility: VisibilityPrivate,
	})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, k := range []string{"company_name", "company_role", "display_name", "phone_number", "address_line_2", "state_province_region"} {
		assert.NotContains(t, m, k)
	}
	assert.Equal(t, false, m["marketing_consent"])
}

func TestFundProgress(t *testing.T) {
	goal := int64(1000)
	assert.Equal(t, 0.0, Fund{CurrentAmount: 500}.Progress())
	assert.Equal(t, 50.0, Fund{CurrentAmount: 500, GoalAmount: &goal}.Progress())
	assert.Equal(t, 100.0, Fund{CurrentAmount: 5000, GoalAmount: &goal}.Progress())
}

func TestDonorName(t *testing.T) {
	assert.Equal(t, "Anonymous", DonationListItem{DonorFirstName: "A", DonorDisplayPreference: "private"}.DonorName())
	assert.Equal(t, "Ada Lovelace", DonationListItem{DonorFirstName: "Ada", DonorLastName: "Lovelace", DonorDisplayPreference: "public_full"}.DonorName())
	assert.Equal(t, "x@y.z", DonationListItem{DonorEmail: "x@y.z"}.DonorName())
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, ContributorBusiness.Valid())
	assert.False(t, ContributorType("company").Valid())
	assert.True(t, VisibilityPublicAnonymous.Valid())
	assert.False(t, DonorVisibility("public").Valid())
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"20", 2000, false},
		{"1,250.50", 125050, false},
		{"0.5", 50, false},
		{".75", 75, false},
		{"-3.10", -310, false},
		{"", 0, true},
		{"12.345", 0, true},
		{"abc", 0, true},
		{"1e3", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, mustRoundTrip(t, got))
		})
	}
}

func mustRoundTrip(t *testing.T, minor int64) int64 {
	t.Helper()
	s := FormatAmount(minor, "XYZ")
	s = s[:len(s)-len(" XYZ")]
	back, err := ParseAmount(s)
	require.NoError(t, err)
	return back
}

func TestOrganizationDetailSummary(t *testing.T) {
	var nilDetail *OrganizationDetail
	assert.Nil(t, nilDetail.Summary())

	d := &OrganizationDetail{ID: "o1", Name: "Reforest", Slug: "reforest", ReviewStatus: ReviewApproved, IsPublic: true}
	assert.Equal(t, &Organization{ID: "o1", Name: "Reforest", Slug: "reforest", ReviewStatus: ReviewApproved, IsPublic: true}, d.Summary())
}
