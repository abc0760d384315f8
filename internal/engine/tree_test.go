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

func TestShowConditionGatesChildCascade(t *testing.T) {
	lineList := testutil.ListWidget("lineList", "lines")
	lineList.ShowCondition = &model.ShowCondition{
		BCName:     "docs",
		FieldKey:   "kind",
		FieldValue: "invoice",
	}
	screen := testutil.Screen("docs",
		[]model.BCMeta{
			testutil.BC("docs", "docs"),
			testutil.ChildBC("lines", "docs", "docs/:id/lines"),
		},
		testutil.ListWidget("docList", "docs"),
		lineList,
	)

	f := testutil.NewFixture(t)
	f.Login(screen)

	f.Client.SetData("docs", api.BCDataResponse{Data: []model.DataItem{
		testutil.Record("r1", map[string]any{"kind": "letter"}),
		testutil.Record("r2", map[string]any{"kind": "invoice"}),
	}})

	// First record does not satisfy the condition: no child fetch.
	f.DispatchWait(action.BCForceUpdate{BCName: "docs", WidgetName: "docList"})
	assert.Zero(t, f.Rec.Count(action.TypeBCFetchDataRequest), "no child cascade")
	f.Rec.Reset()

	// Selecting the satisfying record opens the subtree.
	f.DispatchWait(action.BCSelectRecord{BCName: "docs", Cursor: "r2"})
	reqs := f.Rec.OfType(action.TypeBCFetchDataRequest)
	require.Len(t, reqs, 1)
	assert.Equal(t, "lines", reqs[0].(action.BCFetchDataRequest).BCName)
}

func TestRowMetaCachedPerBCURL(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(docsWithLines())

	f.Client.SetData("docs", api.BCDataResponse{Data: []model.DataItem{
		testutil.Record("r1", nil),
	}})
	meta := model.RowMeta{Actions: []model.Operation{{Type: "save", Text: "Save"}}}
	f.Client.SetRowMeta("docs/r1", meta)

	f.DispatchWait(action.BCForceUpdate{BCName: "docs", WidgetName: "docList"})

	sn := f.Snapshot()
	cached := sn.RowMeta("docs", "docs/r1")
	require.NotNil(t, cached, "row meta is cached under the cursor-bearing url")
	assert.Equal(t, meta, *cached)
	assert.Nil(t, sn.RowMeta("docs", "docs/r2"))

	success := f.Rec.OfType(action.TypeBCFetchRowMetaSuccess)
	require.Len(t, success, 1)
	s := success[0].(action.BCFetchRowMetaSuccess)
	assert.Equal(t, "docs/r1", s.BCURL)
	assert.Equal(t, "r1", s.Cursor)
}

func TestRowMetaFailureEmitsFail(t *testing.T) {
	f := testutil.NewFixture(t)
	f.Login(docsWithLines())

	f.Client.SetRowMetaErr("docs", &api.Error{StatusCode: 500, StatusText: "Internal Server Error"})

	f.DispatchWait(action.BCFetchRowMeta{BCName: "docs", WidgetName: "docList"})

	fails := f.Rec.OfType(action.TypeBCFetchRowMetaFail)
	require.Len(t, fails, 1)
	assert.Equal(t, "docs", fails[0].(action.BCFetchRowMetaFail).BCName)
	assert.Zero(t, f.Rec.Count(action.TypeBCFetchRowMetaSuccess))
}
