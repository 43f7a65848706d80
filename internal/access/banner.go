package access

import "github.com/amply-impact/amply/pkg/amply/types"

// BannerKind is the severity of a banner.
type BannerKind string

const (
	BannerWarning BannerKind = "warning"
	BannerInfo    BannerKind = "info"
)

// Banner is a persistent notice about the organization's status. Keys are
// message catalog keys so the shell can localize them.
type Banner struct {
	Kind       BannerKind
	MessageKey string
	// ActionKey and ActionPath are empty when the banner has no action.
	ActionKey  string
	ActionPath string
}

// Message catalog keys used by banners.
const (
	MsgPending       = "banner.pending"
	MsgInfoRequested = "banner.info_requested"
	MsgNotPublic     = "banner.not_public"
	MsgActionOrg     = "banner.action.org"
)

// OrganizationSettingsPath is where banner actions lead.
const OrganizationSettingsPath = "/organization/settings"

// BannerFor returns the banner to show for s, if any. Only organization
// admins see banners.
func BannerFor(s types.Session) (Banner, bool) {
	if !IsOrgAdmin(s) || s.Organization == nil {
		return Banner{}, false
	}
	org := s.Organization
	switch org.ReviewStatus {
	case types.ReviewPending:
		return Banner{Kind: BannerWarning, MessageKey: MsgPending}, true
	case types.ReviewInfoRequested:
		return Banner{
			Kind:       BannerWarning,
			MessageKey: MsgInfoRequested,
			ActionKey:  MsgActionOrg,
			ActionPath: OrganizationSettingsPath,
		}, true
	case types.ReviewApproved:
		if !org.IsPublic {
			return Banner{
				Kind:       BannerInfo,
				MessageKey: MsgNotPublic,
				ActionKey:  MsgActionOrg,
				ActionPath: OrganizationSettingsPath,
			}, true
		}
	}
	return Banner{}, false
}
