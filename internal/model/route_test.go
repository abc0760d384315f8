package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		name string
		path string
		want Route
	}{
		{
			name: "root",
			path: "/",
			want: Route{Type: RouteDefault, Path: "/"},
		},
		{
			name: "server side",
			path: "/router/custom/endpoint",
			want: Route{Type: RouteRouter, Path: "/router/custom/endpoint"},
		},
		{
			name: "screen only",
			path: "/screen/docs",
			want: Route{Type: RouteScreen, Path: "/screen/docs", ScreenName: "docs"},
		},
		{
			name: "screen and view",
			path: "/screen/docs/view/list",
			want: Route{Type: RouteScreen, Path: "/screen/docs/view/list", ScreenName: "docs", ViewName: "list"},
		},
		{
			name: "full bc path",
			path: "/screen/docs/view/list/docs/d1/lines/l2",
			want: Route{
				Type:       RouteScreen,
				Path:       "/screen/docs/view/list/docs/d1/lines/l2",
				ScreenName: "docs",
				ViewName:   "list",
				BCPath:     "docs/d1/lines/l2",
			},
		},
		{
			name: "unrecognized prefix falls back to default",
			path: "/settings/profile",
			want: Route{Type: RouteDefault, Path: "/settings/profile"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRoute(tt.path, nil))
		})
	}
}

func TestParseBCPath(t *testing.T) {
	assert.Nil(t, ParseBCPath(""))

	pairs := ParseBCPath("docs/d1/lines/l2")
	assert.Equal(t, []BCCursor{
		{BCName: "docs", Cursor: "d1"},
		{BCName: "lines", Cursor: "l2"},
	}, pairs)

	// Trailing BC without a cursor.
	pairs = ParseBCPath("docs/d1/lines")
	assert.Equal(t, []BCCursor{
		{BCName: "docs", Cursor: "d1"},
		{BCName: "lines", Cursor: ""},
	}, pairs)
}

func TestCursorsFromBCPathSkipsEmptyCursors(t *testing.T) {
	assert.Nil(t, CursorsFromBCPath(""))

	cursors := CursorsFromBCPath("docs/d1/lines")
	assert.Equal(t, map[string]string{"docs": "d1"}, cursors,
		"an unselected BC must not clobber an existing cursor")
}

func TestBuildScreenPath(t *testing.T) {
	assert.Equal(t, "/screen/docs", BuildScreenPath("docs", "", ""))
	assert.Equal(t, "/screen/docs/view/list", BuildScreenPath("docs", "list", ""))
	assert.Equal(t, "/screen/docs/view/list/docs/d1", BuildScreenPath("docs", "list", "docs/d1"))
}

func TestParseRouteRoundTripsBuildScreenPath(t *testing.T) {
	path := BuildScreenPath("docs", "list", "docs/d1")
	route := ParseRoute(path, nil)
	assert.Equal(t, "docs", route.ScreenName)
	assert.Equal(t, "list", route.ViewName)
	assert.Equal(t, "docs/d1", route.BCPath)
}
