package wizard

import "github.com/amply-impact/amply/pkg/amply/types"

// Slide is a step of the registration flow.
type Slide int

const (
	SlideType Slide = iota
	SlideCredentials
	SlideName
	SlideCompany
	SlideAddress
	SlideContact
	SlidePreferences
	SlideWelcome

	numSlides
)

var slideNames = [numSlides]string{
	SlideType:        "type",
	SlideCredentials: "credentials",
	SlideName:        "name",
	SlideCompany:     "company",
	SlideAddress:     "address",
	SlideContact:     "contact",
	SlidePreferences: "preferences",
	SlideWelcome:     "welcome",
}

func (s Slide) String() string {
	if s < 0 || s >= numSlides {
		return "unknown"
	}
	return slideNames[s]
}

// none marks a missing edge.
const none Slide = -1

// edge is a transition that may differ for business accounts.
type edge struct {
	to         Slide
	businessTo Slide
}

func (e edge) target(t types.ContributorType) Slide {
	if t == types.ContributorBusiness {
		return e.businessTo
	}
	return e.to
}

func same(s Slide) edge { return edge{to: s, businessTo: s} }

// Forward and backward transitions. The Company slide only appears on
// business edges, so other contributor types can never reach it. Leaving
// Preferences requires Submit, and Welcome has no way out.
var (
	forward = [numSlides]edge{
		SlideType:        same(SlideCredentials),
		SlideCredentials: same(SlideName),
		SlideName:        {to: SlideAddress, businessTo: SlideCompany},
		SlideCompany:     same(SlideAddress),
		SlideAddress:     same(SlideContact),
		SlideContact:     same(SlidePreferences),
		SlidePreferences: same(none),
		SlideWelcome:     same(none),
	}
	backward = [numSlides]edge{
		SlideType:        same(none),
		SlideCredentials: same(SlideType),
		SlideName:        same(SlideCredentials),
		SlideCompany:     same(SlideName),
		SlideAddress:     {to: SlideName, businessTo: SlideCompany},
		SlideContact:     same(SlideAddress),
		SlidePreferences: same(SlideContact),
		SlideWelcome:     same(none),
	}
)

// Path returns the input slides for contributor type t in order, without
// Welcome.
func Path(t types.ContributorType) []Slide {
	var out []Slide
	for s := SlideType; s != none && s != SlideWelcome; s = forward[s].target(t) {
		out = append(out, s)
	}
	return out
}
