package prefs

// Language is a supported UI locale.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageGerman  Language = "de"
)

// Languages lists the supported locales with their native names.
var Languages = []struct {
	Code Language
	Name string
}{
	{LanguageEnglish, "English"},
	{LanguageGerman, "Deutsch"},
}

// Supported reports whether l is a supported locale.
func (l Language) Supported() bool {
	for _, lang := range Languages {
		if lang.Code == l {
			return true
		}
	}
	return false
}

// LanguageCodes returns the supported codes in display order.
func LanguageCodes() []string {
	codes := make([]string, 0, len(Languages))
	for _, lang := range Languages {
		codes = append(codes, string(lang.Code))
	}
	return codes
}

var catalog = map[Language]map[string]string{
	LanguageEnglish: {
		"nav.dashboard":         "Dashboard",
		"nav.giving":            "My Giving",
		"nav.donations":         "Donations",
		"nav.funds":             "Funds",
		"nav.ledger":            "Ledger",
		"nav.campaigns":         "Campaigns",
		"nav.widgets":           "Widgets",
		"nav.organization":      "Organization",
		"nav.org_settings":      "Organization Settings",
		"nav.settings":          "Settings",
		"nav.login":             "Sign in",
		"nav.register":          "Create account",
		"banner.pending":        "Your organization is pending review. Some features are unavailable until it is approved.",
		"banner.info_requested": "Additional information was requested for your organization.",
		"banner.not_public":     "Your organization is approved but not yet public.",
		"banner.action.org":     "Update organization",
		"common.loading":        "Loading…",
		"common.empty":          "Nothing here yet.",
		"auth.session_expired":  "Your session expired. Please sign in again.",
		"settings.saved":        "Preferences saved",
		"settings.refreshed":    "Profile refreshed",
		"auth.forgot_password":  "Forgot password",
		"auth.reset_sent":       "If an account exists for that email, a reset link is on its way.",
	},
	LanguageGerman: {
		"nav.dashboard":         "Übersicht",
		"nav.giving":            "Meine Spenden",
		"nav.donations":         "Spenden",
		"nav.funds":             "Fonds",
		"nav.ledger":            "Kassenbuch",
		"nav.campaigns":         "Kampagnen",
		"nav.widgets":           "Widgets",
		"nav.organization":      "Organisation",
		"nav.org_settings":      "Organisationseinstellungen",
		"nav.settings":          "Einstellungen",
		"nav.login":             "Anmelden",
		"nav.register":          "Konto erstellen",
		"banner.pending":        "Ihre Organisation wird geprüft. Einige Funktionen sind bis zur Freigabe nicht verfügbar.",
		"banner.info_requested": "Für Ihre Organisation wurden weitere Informationen angefordert.",
		"banner.not_public":     "Ihre Organisation ist freigegeben, aber noch nicht öffentlich.",
		"banner.action.org":     "Organisation bearbeiten",
		"common.loading":        "Wird geladen…",
		"common.empty":          "Noch keine Einträge.",
		"auth.session_expired":  "Ihre Sitzung ist abgelaufen. Bitte melden Sie sich erneut an.",
		"settings.saved":        "Einstellungen gespeichert",
		"settings.refreshed":    "Profil aktualisiert",
		"auth.forgot_password":  "Passwort vergessen",
		"auth.reset_sent":       "Falls ein Konto mit dieser E-Mail existiert, ist ein Link zum Zurücksetzen unterwegs.",
	},
}

// T translates key into l, falling back to English and then to the key.
func T(l Language, key string) string {
	if s, ok := catalog[l][key]; ok {
		return s
	}
	if s, ok := catalog[LanguageEnglish][key]; ok {
		return s
	}
	return key
}
