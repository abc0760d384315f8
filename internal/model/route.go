package model

import (
	"strings"
)

// RouteType classifies a parsed location.
type RouteType string

const (
	// RouteDefault is the root location ("/"); the default screen applies.
	RouteDefault RouteType = "default"
	// RouteScreen is a client-routed screen/view location.
	RouteScreen RouteType = "screen"
	// RouteRouter is a location delegated to server-side routing.
	RouteRouter RouteType = "router"
)

// Route is the desired navigation state parsed from a location.
//
// BCPath encodes an ordered sequence of BC-name/cursor pairs reflecting
// hierarchical navigation; reconciliation must produce a cursor map
// consistent with BCPath parsing.
type Route struct {
	Type       RouteType
	Path       string
	Params     map[string]string
	ScreenName string
	ViewName   string
	BCPath     string
}

// BCCursor is one parsed BC-name/cursor pair of a route's BCPath.
type BCCursor struct {
	BCName string
	Cursor string
}

// ParseRoute parses a location path into a Route.
//
// Recognized shapes:
//
//	/                                  -> default
//	/router/<server path>              -> router (server-side routing)
//	/screen/name                       -> screen
//	/screen/name/view/name             -> screen + view
//	/screen/name/view/name/bc1/c1/...  -> screen + view + bc path
func ParseRoute(path string, params map[string]string) Route {
	route := Route{Type: RouteDefault, Path: path, Params: params}

	tokens := splitPath(path)
	if len(tokens) == 0 {
		return route
	}

	switch tokens[0] {
	case "router":
		route.Type = RouteRouter
		return route
	case "screen":
		route.Type = RouteScreen
		if len(tokens) > 1 {
			route.ScreenName = tokens[1]
		}
		if len(tokens) > 3 && tokens[2] == "view" {
			route.ViewName = tokens[3]
			if len(tokens) > 4 {
				route.BCPath = strings.Join(tokens[4:], "/")
			}
		}
		return route
	default:
		return route
	}
}

// ParseBCPath splits a route's BCPath into ordered BC-name/cursor pairs.
// A trailing BC name without a cursor yields a pair with an empty cursor.
func ParseBCPath(bcPath string) []BCCursor {
	tokens := splitPath(bcPath)
	if len(tokens) == 0 {
		return nil
	}
	pairs := make([]BCCursor, 0, (len(tokens)+1)/2)
	for i := 0; i < len(tokens); i += 2 {
		pair := BCCursor{BCName: tokens[i]}
		if i+1 < len(tokens) {
			pair.Cursor = tokens[i+1]
		}
		pairs = append(pairs, pair)
	}
	return pairs
}

// CursorsFromBCPath returns the cursor map implied by a BCPath. Pairs with
// empty cursors are skipped: an unselected BC must not clobber an existing
// cursor during reconciliation.
func CursorsFromBCPath(bcPath string) map[string]string {
	pairs := ParseBCPath(bcPath)
	if len(pairs) == 0 {
		return nil
	}
	cursors := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if p.Cursor != "" {
			cursors[p.BCName] = p.Cursor
		}
	}
	return cursors
}

// BuildScreenPath assembles a client route path from its parts.
func BuildScreenPath(screenName, viewName, bcPath string) string {
	var b strings.Builder
	b.WriteString("/screen/")
	b.WriteString(screenName)
	if viewName != "" {
		b.WriteString("/view/")
		b.WriteString(viewName)
		if bcPath != "" {
			b.WriteString("/")
			b.WriteString(bcPath)
		}
	}
	return b.String()
}

// DrillDownType classifies drill-down targets.
type DrillDownType string

const (
	// DrillDownInner navigates within the application by route path.
	DrillDownInner DrillDownType = "inner"
	// DrillDownRelative navigates relative to the current screen.
	DrillDownRelative DrillDownType = "relative"
	// DrillDownExternal opens an external url; outside this engine's scope
	// but classified so the pipeline can ignore it explicitly.
	DrillDownExternal DrillDownType = "external"
)

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
