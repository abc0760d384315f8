package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesler-ui/datasync/internal/action"
	"github.com/tesler-ui/datasync/internal/api"
	"github.com/tesler-ui/datasync/internal/engine"
	"github.com/tesler-ui/datasync/internal/model"
	"github.com/tesler-ui/datasync/internal/testutil"
)

func docsWithLines() model.ScreenMeta {
	return testutil.Screen("docs",
		[]model.BCMeta{
			testutil.BC("docs", "docs"),
			testutil.ChildBC("lines", "docs", "docs/:id/lines"),
		},
		testutil.ListWidget("docList", "docs"),
		testutil.ListWidget("lineList", "lines"),
	)
}

func TestFetchSuccessCascadeOrdering(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(docsWithLines())

	f.Client.SetData("docs", api.BCDataResponse{Data: []model.DataItem{
		testutil.Record("r1", nil),
		testutil.Record("r2", nil),
	}})
	f.Client.SetData("docs/r1/lines", api.BCDataResponse{Data: []model.DataItem{
		testutil.Record("l1", nil),
	}})

	f.DispatchWait(action.BCForceUpdate{BCName: "docs", WidgetName: "docList"})

	types := f.Rec.Types()
	require.GreaterOrEqual(t, len(types), 5)

	// The success batch is atomic: cursor change, then data, then row meta,
	// then the child cascade, with nothing interleaved.
	assert.Equal(t, []action.Type{
		action.TypeBCForceUpdate,
		action.TypeBCChangeCursors,
		action.TypeBCFetchDataSuccess,
		action.TypeBCFetchRowMeta,
		action.TypeBCFetchDataRequest,
	}, types[:5])

	cursors := f.Rec.OfType(action.TypeBCChangeCursors)[0].(action.BCChangeCursors)
	assert.Equal(t, map[string]string{"docs": "r1"}, cursors.Cursors)

	// The child fetch completed too and adopted its own cursor.
	success := f.Rec.OfType(action.TypeBCFetchDataSuccess)
	require.Len(t, success, 2)
	child := success[1].(action.BCFetchDataSuccess)
	assert.Equal(t, "lines", child.BCName)
	assert.Equal(t, "docs/r1/lines", child.BCURL)

	sn := f.Snapshot()
	assert.Equal(t, "r1", sn.BC("docs").Cursor)
	assert.Equal(t, "l1", sn.BC("lines").Cursor)
	assert.False(t, sn.BC("docs").Loading)
}

func TestFetchKeepsExistingCursorWhenStillPresent(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(docsWithLines())

	f.Client.SetData("docs", api.BCDataResponse{Data: []model.DataItem{
		testutil.Record("r1", nil),
		testutil.Record("r2", nil),
	}})

	f.DispatchWait(action.BCSelectRecord{BCName: "docs", Cursor: "r2"})
	f.Rec.Reset()

	f.DispatchWait(action.BCForceUpdate{BCName: "docs", WidgetName: "docList"})

	cursors := f.Rec.OfType(action.TypeBCChangeCursors)[0].(action.BCChangeCursors)
	assert.Equal(t, map[string]string{"docs": "r2"}, cursors.Cursors,
		"a refetch must not steal the selection while the record survives")
}

func TestFetchAdoptsFirstRecordWhenCursorGone(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(docsWithLines())

	f.Client.SetData("docs", api.BCDataResponse{Data: []model.DataItem{
		testutil.Record("r1", nil),
	}})
	f.DispatchWait(action.BCSelectRecord{BCName: "docs", Cursor: "gone"})
	f.Rec.Reset()

	f.DispatchWait(action.BCForceUpdate{BCName: "docs", WidgetName: "docList"})

	cursors := f.Rec.OfType(action.TypeBCChangeCursors)[0].(action.BCChangeCursors)
	assert.Equal(t, map[string]string{"docs": "r1"}, cursors.Cursors)
}

func TestEmptyResultEmitsNoChildCascade(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(docsWithLines())

	f.DispatchWait(action.BCFetchDataRequest{BCName: "docs", WidgetName: "docList"})

	// One request in, nothing for the child BC.
	assert.Equal(t, 1, f.Rec.Count(action.TypeBCFetchDataRequest))
	assert.Equal(t, 1, f.Rec.Count(action.TypeBCFetchDataSuccess))

	cursors := f.Rec.OfType(action.TypeBCChangeCursors)[0].(action.BCChangeCursors)
	assert.Equal(t, map[string]string{"docs": ""}, cursors.Cursors)
}

func TestLazyPopupWidgetSuppressed(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(testutil.Screen("docs",
		[]model.BCMeta{
			testutil.BC("docs", "docs"),
			testutil.BC("dicts", "dicts"),
		},
		testutil.ListWidget("docList", "docs"),
		testutil.AssocPopupWidget("dictPopup", "dicts"),
	))

	f.Client.SetData("dicts", api.BCDataResponse{Data: []model.DataItem{
		testutil.Record("d1", nil),
	}})

	// Popup closed: the fetch result renders nowhere and must be dropped.
	f.DispatchWait(action.BCFetchDataRequest{BCName: "dicts"})

	assert.Zero(t, f.Rec.Count(action.TypeBCFetchDataSuccess))
	assert.Zero(t, f.Rec.Count(action.TypeBCChangeCursors))
	assert.Zero(t, f.Rec.Count(action.TypeBCFetchRowMeta))
	assert.Nil(t, f.Snapshot().Data("dicts"))
}

func TestShowViewPopupFetchesPopupBC(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(testutil.Screen("docs",
		[]model.BCMeta{
			testutil.BC("docs", "docs"),
			testutil.BC("dicts", "dicts"),
		},
		testutil.ListWidget("docList", "docs"),
		testutil.AssocPopupWidget("dictPopup", "dicts"),
	))

	f.Client.SetData("dicts", api.BCDataResponse{Data: []model.DataItem{
		testutil.Record("d1", nil),
	}})

	f.DispatchWait(action.ShowViewPopup{BCName: "dicts", CalleeBCName: "docs"})

	// The reducer opened the popup before the pipeline ran, so the lazy
	// widget is live for this fetch.
	require.Equal(t, 1, f.Rec.Count(action.TypeBCFetchDataSuccess))
	success := f.Rec.OfType(action.TypeBCFetchDataSuccess)[0].(action.BCFetchDataSuccess)
	assert.Equal(t, "dicts", success.BCName)

	calls := f.Client.CallsFor("FetchBCData")
	require.Len(t, calls, 1)
	assert.Equal(t, "0", calls[0].Params["_limit"], "popup fetch ignores the page limit")
}

func TestShowViewPopupForOwnBCShortCircuits(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(docsWithLines())

	f.DispatchWait(action.ShowViewPopup{BCName: "docs", CalleeBCName: "docs"})

	assert.Empty(t, f.Client.CallsFor("FetchBCData"),
		"the popup initiator already owns the fetch of its own BC")
}

func TestFetchParamsIdempotent(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(docsWithLines())

	f.DispatchWait(action.BCFetchDataRequest{BCName: "docs", WidgetName: "docList"})
	f.DispatchWait(action.BCFetchDataRequest{BCName: "docs", WidgetName: "docList"})

	calls := f.Client.CallsFor("FetchBCData")
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0].Params, calls[1].Params,
		"identical triggers against identical state must produce identical parameters")
	assert.Equal(t, map[string]string{"_page": "1", "_limit": "5"}, calls[0].Params)
	assert.Equal(t, calls[0].BCURL, calls[1].BCURL)
}

func TestFetchParamsPageRange(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(docsWithLines())

	f.DispatchWait(action.BCFetchDataPages{BCName: "docs", WidgetName: "docList", From: 2, To: 4})

	calls := f.Client.CallsFor("FetchBCData")
	require.Len(t, calls, 1)
	assert.Equal(t, "2", calls[0].Params["_page"])
	assert.Equal(t, "15", calls[0].Params["_limit"], "three pages of five records")
}

func TestFetchParamsIgnorePageLimit(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(docsWithLines())

	f.DispatchWait(action.BCFetchDataRequest{BCName: "docs", WidgetName: "docList", IgnorePageLimit: true})

	calls := f.Client.CallsFor("FetchBCData")
	require.Len(t, calls, 1)
	assert.Equal(t, "0", calls[0].Params["_limit"])
}

func TestForceUpdateInfinitePaginationReRequestsAllPages(t *testing.T) {
	screen := testutil.Screen("docs",
		[]model.BCMeta{testutil.BC("docs", "docs")},
		model.Widget{
			Name:    "docFeed",
			Type:    model.WidgetList,
			BCName:  "docs",
			Options: model.WidgetOptions{Pagination: model.PaginationInfinite},
		},
	)

	f := testutil.NewFixture(t)
	f.Login(screen)

	f.DispatchWait(action.BCChangePage{BCName: "docs", Page: 3})
	f.Client.ResetCalls()

	f.DispatchWait(action.BCForceUpdate{BCName: "docs", WidgetName: "docFeed"})

	calls := f.Client.CallsFor("FetchBCData")
	require.Len(t, calls, 1)
	assert.Equal(t, "1", calls[0].Params["_page"])
	assert.Equal(t, "15", calls[0].Params["_limit"],
		"a load-more widget re-requests everything seen so far")
}

func TestSelectRecordRefetchesChildrenAndRowMeta(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(docsWithLines())

	f.Client.SetData("docs", api.BCDataResponse{Data: []model.DataItem{
		testutil.Record("r1", nil),
		testutil.Record("r2", nil),
	}})
	f.DispatchWait(action.BCForceUpdate{BCName: "docs", WidgetName: "docList"})
	f.Rec.Reset()
	f.Client.ResetCalls()

	f.DispatchWait(action.BCSelectRecord{BCName: "docs", Cursor: "r2"})

	rowMeta := f.Rec.OfType(action.TypeBCFetchRowMeta)
	require.NotEmpty(t, rowMeta)
	assert.Equal(t, "docs", rowMeta[0].(action.BCFetchRowMeta).BCName)

	childReq := f.Rec.OfType(action.TypeBCFetchDataRequest)
	require.Len(t, childReq, 1)
	assert.Equal(t, "lines", childReq[0].(action.BCFetchDataRequest).BCName)

	// The child url embeds the new parent cursor.
	calls := f.Client.CallsFor("FetchBCData")
	require.NotEmpty(t, calls)
	assert.Equal(t, "docs/r2/lines", calls[len(calls)-1].BCURL)
}

func TestFetchFailureClearsLoading(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(docsWithLines())

	f.Client.SetDataErr("docs", &api.Error{StatusCode: 500, StatusText: "Internal Server Error"})

	f.DispatchWait(action.BCFetchDataRequest{BCName: "docs", WidgetName: "docList"})

	fails := f.Rec.OfType(action.TypeBCFetchDataFail)
	require.Len(t, fails, 1)
	assert.Equal(t, "docs", fails[0].(action.BCFetchDataFail).BCName)
	assert.False(t, f.Snapshot().BC("docs").Loading)
	assert.Zero(t, f.Rec.Count(action.TypeBCFetchDataSuccess))
}

func TestPostInvokeRefreshBC(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(docsWithLines())

	f.DispatchWait(action.ProcessPostInvoke{
		BCName:     "docs",
		WidgetName: "docList",
		PostInvoke: model.PostInvoke{Type: "refreshBC", BC: "lines"},
	})

	force := f.Rec.OfType(action.TypeBCForceUpdate)
	require.Len(t, force, 1)
	assert.Equal(t, "lines", force[0].(action.BCForceUpdate).BCName)
}

func TestPostInvokeShowMessage(t *testing.T) {
	f := testutil.NewFixture(t, engine.WithRequestIDs(engine.NewFixedGenerator("n-1")))
	f.Login(docsWithLines())

	f.DispatchWait(action.ProcessPostInvoke{
		BCName:     "docs",
		PostInvoke: model.PostInvoke{Type: "showMessage", Message: "Saved"},
	})

	notes := f.Snapshot().Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "n-1", notes[0].ID)
	assert.Equal(t, action.NotificationInfo, notes[0].Kind)
	assert.Equal(t, "Saved", notes[0].Message)
}

func TestPostInvokeDrillDown(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(docsWithLines())

	f.DispatchWait(action.ProcessPostInvoke{
		BCName:     "docs",
		PostInvoke: model.PostInvoke{Type: "drillDown", URL: "/screen/docs/view/detail"},
	})

	drills := f.Rec.OfType(action.TypeDrillDown)
	require.Len(t, drills, 1)
	d := drills[0].(action.DrillDown)
	assert.Equal(t, "/screen/docs/view/detail", d.URL)
	assert.Equal(t, model.DrillDownInner, d.DrillDownType)
}
