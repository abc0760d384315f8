package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesler-ui/datasync/internal/action"
	"github.com/tesler-ui/datasync/internal/model"
	"github.com/tesler-ui/datasync/internal/state"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndReadAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, 1, "bcSelectRecord", action.BCSelectRecord{BCName: "docs", Cursor: "r1"}))
	require.NoError(t, s.Append(ctx, 2, "closeViewPopup", action.ClosePopup{}))

	records, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, int64(1), records[0].Seq)
	assert.Equal(t, "bcSelectRecord", records[0].Type)
	assert.JSONEq(t, `{"BCName":"docs","Cursor":"r1","IgnoreChildrenPageLimit":false,"KeepDelta":false}`, string(records[0].Payload))
	assert.Equal(t, PayloadHash(records[0].Payload), records[0].Hash)

	last, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), last)
}

func TestAppendSameSeqIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, 1, "logout", action.Logout{}))
	require.NoError(t, s.Append(ctx, 1, "logout", action.Logout{}))

	records, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestReadFrom(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for seq := int64(1); seq <= 5; seq++ {
		require.NoError(t, s.Append(ctx, seq, "closeViewPopup", action.ClosePopup{}))
	}

	records, err := s.ReadFrom(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(4), records[0].Seq)
	assert.Equal(t, int64(5), records[1].Seq)
}

func TestReadAllEmptyJournal(t *testing.T) {
	s := openTestStore(t)

	records, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	last, err := s.LastSeq(context.Background())
	require.NoError(t, err)
	assert.Zero(t, last)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Append(context.Background(), 1, "logout", action.Logout{}))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	records, err := second.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestVerifyReportsIntactJournal(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, 1, "logout", action.Logout{}))
	require.NoError(t, s.Append(ctx, 2, "logoutDone", action.LogoutDone{}))

	corrupt, err := s.Verify(ctx)
	require.NoError(t, err)
	assert.Empty(t, corrupt)
}

func TestVerifyDetectsTamperedPayload(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, 1, "bcSelectRecord", action.BCSelectRecord{BCName: "docs", Cursor: "r1"}))
	_, err := s.db.ExecContext(ctx, `UPDATE actions SET payload = '{"BCName":"evil"}' WHERE seq = 1`)
	require.NoError(t, err)

	corrupt, err := s.Verify(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, corrupt)
}

func TestDecodeRoundTrip(t *testing.T) {
	tests := []action.Action{
		action.ChangeLocation{Route: model.ParseRoute("/screen/docs/view/list", nil)},
		action.BCSelectRecord{BCName: "docs", Cursor: "r1", KeepDelta: true},
		action.BCChangeCursors{Cursors: map[string]string{"docs": "r1"}},
		action.AddNotification{ID: "n1", Kind: action.NotificationWarning, Message: "careful"},
		action.ShowViewError{Error: action.ViewError{Class: action.ErrorSystem, Code: 500}},
		action.Logout{},
	}
	for _, orig := range tests {
		t.Run(string(orig.Type()), func(t *testing.T) {
			payload, err := MarshalCanonical(orig)
			require.NoError(t, err)

			decoded, err := Decode(string(orig.Type()), payload)
			require.NoError(t, err)
			assert.Equal(t, orig, decoded)
		})
	}
}

func TestDecodeDropsUnserializableError(t *testing.T) {
	orig := action.HTTPError{
		Status:     418,
		StatusText: "I'm a teapot",
		Popup:      []string{"no"},
		Context:    action.CallContext{WidgetName: "docList"},
	}
	payload, err := MarshalCanonical(orig)
	require.NoError(t, err)

	decoded, err := Decode(string(orig.Type()), payload)
	require.NoError(t, err)
	assert.Equal(t, orig, decoded, "Err is nil on both sides; everything else survives")
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode("madeUpAction", []byte(`{}`))
	assert.Error(t, err)
}

func TestJournalReplayRebuildsState(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	screen := model.ScreenMeta{
		Name: "docs",
		BCs:  []model.BCMeta{{Name: "docs", URL: "docs"}},
		Views: []model.ViewMeta{{
			Name:    "list",
			Widgets: []model.Widget{{Name: "docList", Type: model.WidgetList, BCName: "docs"}},
		}},
	}
	journaled := []action.Action{
		action.SelectScreen{Screen: screen},
		action.SelectView{View: screen.Views[0]},
		action.BCFetchDataSuccess{BCName: "docs", Data: []model.DataItem{{ID: "r1", Vstamp: 1}}},
		action.BCChangeCursors{Cursors: map[string]string{"docs": "r1"}},
	}
	for i, a := range journaled {
		require.NoError(t, s.Append(ctx, int64(i+1), string(a.Type()), a))
	}

	records, err := s.ReadAll(ctx)
	require.NoError(t, err)

	st := state.NewStore()
	for _, r := range records {
		a, err := Decode(r.Type, r.Payload)
		require.NoError(t, err)
		st.Apply(a)
	}

	sn := st.Snapshot()
	assert.Equal(t, "docs", sn.ScreenName())
	assert.Equal(t, "list", sn.ViewName())
	assert.Equal(t, "r1", sn.BC("docs").Cursor)
	assert.True(t, sn.CursorLoaded("docs", "r1"))
}
