package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesler-ui/datasync/internal/action"
	"github.com/tesler-ui/datasync/internal/api"
	"github.com/tesler-ui/datasync/internal/model"
	"github.com/tesler-ui/datasync/internal/testutil"
)

func twoViewScreen() model.ScreenMeta {
	screen := testutil.Screen("docs",
		[]model.BCMeta{
			testutil.BC("docs", "docs"),
			testutil.ChildBC("lines", "docs", "docs/:id/lines"),
		},
		testutil.ListWidget("docList", "docs"),
	)
	screen.Views = append(screen.Views, model.ViewMeta{
		Name: "detail",
		URL:  "/docs/detail",
		Widgets: []model.Widget{
			testutil.ListWidget("docForm", "docs"),
			testutil.ListWidget("lineList", "lines"),
		},
	})
	return screen
}

func TestChangeLocationIgnoredWithoutSession(t *testing.T) {
	f := testutil.NewFixture(t)

	f.DispatchWait(action.ChangeLocation{
		Route: model.ParseRoute("/screen/docs", nil),
	})

	assert.Equal(t, []action.Type{action.TypeChangeLocation}, f.Rec.Types())
	assert.Empty(t, f.Snapshot().ScreenName())
}

func TestLoginReconcilesDefaultScreenAndView(t *testing.T) {
	f := testutil.NewFixture(t)
	f.DispatchWait(action.LoginDone{Screens: []model.ScreenMeta{twoViewScreen()}})

	sn := f.Snapshot()
	assert.Equal(t, "docs", sn.ScreenName())
	assert.Equal(t, "docs-view", sn.ViewName())

	// The fresh view kicked off its root fetch.
	calls := f.Client.CallsFor("FetchBCData")
	require.Len(t, calls, 1)
	assert.Equal(t, "docs", calls[0].BCURL)
}

func TestCursorChangesPrecedeViewChange(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(twoViewScreen())

	f.DispatchWait(action.ChangeLocation{
		Route: model.ParseRoute("/screen/docs/view/detail/docs/r7", nil),
	})

	types := f.Rec.Types()
	cursorIdx, viewIdx := -1, -1
	for i, tp := range types {
		if tp == action.TypeBCChangeCursors && cursorIdx == -1 {
			cursorIdx = i
		}
		if tp == action.TypeSelectView && viewIdx == -1 {
			viewIdx = i
		}
	}
	require.NotEqual(t, -1, cursorIdx)
	require.NotEqual(t, -1, viewIdx)
	assert.Less(t, cursorIdx, viewIdx,
		"widgets of the new view must see post-change cursors on first render")

	cursors := f.Rec.OfType(action.TypeBCChangeCursors)[0].(action.BCChangeCursors)
	assert.Equal(t, map[string]string{"docs": "r7"}, cursors.Cursors)
	assert.Equal(t, "detail", f.Snapshot().ViewName())
}

func TestSameViewUnloadedCursorForcesUpdate(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(twoViewScreen())

	f.Client.SetData("docs", api.BCDataResponse{Data: []model.DataItem{
		testutil.Record("r1", nil),
	}})
	f.DispatchWait(action.BCForceUpdate{BCName: "docs", WidgetName: "docList"})
	f.Rec.Reset()

	// Back/forward navigation to a record the visible view has not loaded.
	f.DispatchWait(action.ChangeLocation{
		Route: model.ParseRoute("/screen/docs/view/docs-view/docs/r9", nil),
	})

	types := f.Rec.Types()
	cursorIdx, forceIdx := -1, -1
	for i, tp := range types {
		if tp == action.TypeBCChangeCursors && cursorIdx == -1 {
			cursorIdx = i
		}
		if tp == action.TypeBCForceUpdate && forceIdx == -1 {
			forceIdx = i
		}
	}
	require.NotEqual(t, -1, cursorIdx)
	require.NotEqual(t, -1, forceIdx)
	assert.Less(t, cursorIdx, forceIdx)
	assert.Zero(t, f.Rec.Count(action.TypeSelectView))
}

func TestSameViewLoadedCursorOnlyChangesCursors(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(twoViewScreen())

	f.Client.SetData("docs", api.BCDataResponse{Data: []model.DataItem{
		testutil.Record("r1", nil),
		testutil.Record("r2", nil),
	}})
	f.DispatchWait(action.BCForceUpdate{BCName: "docs", WidgetName: "docList"})
	f.Rec.Reset()
	f.Client.ResetCalls()

	f.DispatchWait(action.ChangeLocation{
		Route: model.ParseRoute("/screen/docs/view/docs-view/docs/r2", nil),
	})

	assert.Equal(t, 1, f.Rec.Count(action.TypeBCChangeCursors))
	assert.Zero(t, f.Rec.Count(action.TypeBCForceUpdate))
	assert.Equal(t, "r2", f.Snapshot().BC("docs").Cursor)
}

func TestUnknownScreenRaisesNotification(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(twoViewScreen())

	f.DispatchWait(action.ChangeLocation{
		Route: model.ParseRoute("/screen/nope", nil),
	})

	assert.Equal(t, 1, f.Rec.Count(action.TypeSelectScreenFail))
	notes := f.Snapshot().Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, action.NotificationError, notes[0].Kind)
	assert.Contains(t, notes[0].Message, `"nope"`)
}

func TestUnknownViewRaisesNotification(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(twoViewScreen())

	f.DispatchWait(action.ChangeLocation{
		Route: model.ParseRoute("/screen/docs/view/nope", nil),
	})

	assert.Equal(t, 1, f.Rec.Count(action.TypeSelectViewFail))
	notes := f.Snapshot().Notifications()
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, `"nope"`)
	// The previous view stays active.
	assert.Equal(t, "docs-view", f.Snapshot().ViewName())
}

func TestRouterRouteDelegatesToServer(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(twoViewScreen())

	f.DispatchWait(action.ChangeLocation{
		Route: model.ParseRoute("/router/custom/path", nil),
	})

	calls := f.Client.CallsFor("RouterRequest")
	require.Len(t, calls, 1)
	assert.Equal(t, "/router/custom/path", calls[0].BCURL)
	assert.Zero(t, f.Rec.Count(action.TypeSelectScreen))
	assert.Zero(t, f.Rec.Count(action.TypeSelectView))
}

func TestServerSideRoutingDelegatesEverything(t *testing.T) {
	f := testutil.NewFixture(t)
	f.DispatchWait(action.LoginDone{
		Screens:          []model.ScreenMeta{twoViewScreen()},
		RouterServerSide: true,
	})
	f.Rec.Reset()
	f.Client.ResetCalls()

	f.DispatchWait(action.ChangeLocation{
		Route: model.ParseRoute("/screen/docs/view/detail", nil),
	})

	require.Len(t, f.Client.CallsFor("RouterRequest"), 1)
	assert.Zero(t, f.Rec.Count(action.TypeSelectView))
}

func TestDrillDownInner(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(twoViewScreen())

	f.DispatchWait(action.DrillDown{
		URL:           "/screen/docs/view/detail",
		DrillDownType: model.DrillDownInner,
	})

	assert.Equal(t, "detail", f.Snapshot().ViewName())
}

func TestDrillDownRelative(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(twoViewScreen())

	f.DispatchWait(action.DrillDown{
		URL:           "view/detail",
		DrillDownType: model.DrillDownRelative,
	})

	changes := f.Rec.OfType(action.TypeChangeLocation)
	require.NotEmpty(t, changes)
	assert.Equal(t, "/screen/docs/view/detail", changes[0].(action.ChangeLocation).Route.Path)
	assert.Equal(t, "detail", f.Snapshot().ViewName())
}

func TestDrillDownExternalIgnored(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(twoViewScreen())

	f.DispatchWait(action.DrillDown{
		URL:           "https://example.com",
		DrillDownType: model.DrillDownExternal,
	})

	assert.Equal(t, []action.Type{action.TypeDrillDown}, f.Rec.Types())
}
