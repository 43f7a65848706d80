package route

import (
	"net/url"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Location is a resolved dashboard address.
type Location struct {
	Screen Screen
	// ID is the :id segment of detail screens.
	ID    string
	Query url.Values
}

// At returns the location of a screen without parameters.
func At(s Screen) Location {
	return Location{Screen: s}
}

// Path renders the location relative to the base path.
func (l Location) Path() string {
	p := l.Screen.Definition().Pattern
	if l.ID != "" {
		p = strings.Replace(p, ":id", url.PathEscape(l.ID), 1)
	}
	if len(l.Query) > 0 {
		p += "?" + l.Query.Encode()
	}
	return p
}

// String is Path.
func (l Location) String() string {
	return l.Path()
}

// Equal compares screen, id and query.
func (l Location) Equal(o Location) bool {
	return l.Screen == o.Screen && l.ID == o.ID && l.Query.Encode() == o.Query.Encode()
}

// From returns the location a login redirect should return to.
func (l Location) From() (Location, bool) {
	from := l.Query.Get("from")
	if from == "" {
		return Location{}, false
	}
	loc, ok := Resolve("", from)
	return loc, ok
}

// Resolve maps a path to a location. basePath is stripped first when
// present. Unknown paths resolve to the dashboard root with ok false.
func Resolve(basePath, raw string) (Location, bool) {
	path, rawQuery, _ := strings.Cut(raw, "?")
	query, _ := url.ParseQuery(rawQuery)
	if len(query) == 0 {
		query = nil
	}

	path = strip(basePath, path)
	segs := segments(path)

	for s := Screen(0); s < numScreens; s++ {
		if id, ok := match(segments(definitions[s].Pattern), segs); ok {
			return Location{Screen: s, ID: id, Query: query}, true
		}
	}
	return At(ScreenDashboard), false
}

// Suggest returns the known path closest to raw, for "did you mean" hints.
func Suggest(basePath, raw string) string {
	path, _, _ := strings.Cut(raw, "?")
	path = "/" + strings.Join(segments(strip(basePath, path)), "/")

	best, bestDist := "", -1
	for s := Screen(0); s < numScreens; s++ {
		p := definitions[s].Pattern
		if strings.Contains(p, ":") {
			continue
		}
		d := levenshtein.ComputeDistance(path, p)
		if bestDist < 0 || d < bestDist {
			best, bestDist = p, d
		}
	}
	if bestDist > len(path)/2+1 {
		return ""
	}
	return best
}

func strip(basePath, path string) string {
	basePath = strings.TrimRight(basePath, "/")
	if basePath != "" && (path == basePath || strings.HasPrefix(path, basePath+"/")) {
		path = strings.TrimPrefix(path, basePath)
	}
	return path
}

func segments(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// match compares pattern segments against path segments. Literal segments
// win over :id because the table lists /x/new before /x/:id.
func match(pattern, path []string) (string, bool) {
	if len(pattern) != len(path) {
		return "", false
	}
	id := ""
	for i, p := range pattern {
		if p == ":id" {
			v, err := url.PathUnescape(path[i])
			if err != nil {
				return "", false
			}
			id = v
			continue
		}
		if p != path[i] {
			return "", false
		}
	}
	return id, true
}
