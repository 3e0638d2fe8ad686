// Package route maps admin paths to screens and resolves the record a
// screen needs before it is shown.
package route

import (
	"strings"
)

// NotFound is where navigation goes when a record cannot be resolved.
const NotFound = "404"

// Screen identifies what a route shows.
type Screen string

const (
	ScreenList   Screen = "list"
	ScreenDetail Screen = "detail"
	ScreenUpdate Screen = "update"
)

// Route is one entry of an entity's route table.
type Route struct {
	Path   string
	Screen Screen
	// Resolve is true when the route needs its record looked up first.
	Resolve     bool
	DefaultSort string
}

// Table returns the routes every entity exposes, relative to the entity
// root: the list, ":id/view", "new" and ":id/edit".
func Table() []Route {
	return []Route{
		{Path: "", Screen: ScreenList, DefaultSort: "id,asc"},
		{Path: ":id/view", Screen: ScreenDetail, Resolve: true},
		{Path: "new", Screen: ScreenUpdate, Resolve: true},
		{Path: ":id/edit", Screen: ScreenUpdate, Resolve: true},
	}
}

// Params are the values bound to ":name" segments.
type Params map[string]string

// Match finds the route for path, which is relative to the entity root.
func Match(routes []Route, path string) (Route, Params, bool) {
	segs := split(path)
	for _, r := range routes {
		pattern := split(r.Path)
		if len(pattern) != len(segs) {
			continue
		}
		params := Params{}
		ok := true
		for i, p := range pattern {
			switch {
			case strings.HasPrefix(p, ":"):
				params[p[1:]] = segs[i]
			case p != segs[i]:
				ok = false
			}
			if !ok {
				break
			}
		}
		if ok {
			return r, params, true
		}
	}
	return Route{}, nil, false
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
