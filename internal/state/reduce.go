package state

import (
	"github.com/tesler-ui/datasync/internal/action"
	"github.com/tesler-ui/datasync/internal/model"
)

// Apply applies one action to the store. Called by the bus before pipelines
// run, so every pipeline observes post-reduction state for the action that
// triggered it.
//
// CRITICAL: Called only from the bus loop goroutine - single-writer.
//
// Reducers apply already-decided transitions and never decide anything
// themselves; all decision logic lives in the engine pipelines.
func (s *Store) Apply(act action.Action) {
	switch a := act.(type) {
	case action.LoginDone:
		s.session = Session{
			Active:           true,
			ActiveRole:       a.ActiveRole,
			RouterServerSide: a.RouterServerSide,
			Screens:          a.Screens,
		}

	case action.LogoutDone:
		*s = *NewStore()

	case action.ChangeLocation:
		s.router = a.Route

	case action.SelectScreen:
		s.screen = Screen{Name: a.Screen.Name, BCMap: a.Screen.BuildBCMap()}
		s.view = View{RowMeta: make(map[string]map[string]model.RowMeta)}
		s.data = make(map[string][]model.DataItem)
		s.pending = make(PendingChanges)

	case action.SelectScreenFail:
		s.screen = Screen{Name: a.ScreenName, BCMap: make(model.BCMap)}

	case action.SelectView:
		s.view = View{
			Name:    a.View.Name,
			URL:     a.View.URL,
			Widgets: a.View.Widgets,
			RowMeta: make(map[string]map[string]model.RowMeta),
		}

	case action.BCChangeCursors:
		for bcName, cursor := range a.Cursors {
			if bc := s.screen.BCMap[bcName]; bc != nil {
				bc.Cursor = cursor
			}
			if !a.KeepDelta {
				delete(s.pending, bcName)
			}
		}

	case action.BCSelectRecord:
		if bc := s.screen.BCMap[a.BCName]; bc != nil {
			bc.Cursor = a.Cursor
		}
		if !a.KeepDelta {
			delete(s.pending, a.BCName)
		}

	case action.BCFetchDataRequest:
		s.setLoading(a.BCName, true)

	case action.BCFetchDataPages:
		s.setLoading(a.BCName, true)

	case action.BCForceUpdate:
		s.setLoading(a.BCName, true)

	case action.BCChangePage:
		if bc := s.screen.BCMap[a.BCName]; bc != nil {
			bc.Page = a.Page
			bc.Loading = true
		}

	case action.BCFetchDataSuccess:
		s.data[a.BCName] = a.Data
		if bc := s.screen.BCMap[a.BCName]; bc != nil {
			bc.HasNext = a.HasNext
			bc.Loading = false
		}

	case action.BCFetchDataFail:
		s.setLoading(a.BCName, false)

	case action.BCFetchRowMetaSuccess:
		byURL := s.view.RowMeta[a.BCName]
		if byURL == nil {
			byURL = make(map[string]model.RowMeta)
			s.view.RowMeta[a.BCName] = byURL
		}
		byURL[a.BCURL] = a.RowMeta

	case action.ShowViewPopup:
		s.view.Popup = Popup{
			Active:            true,
			BCName:            a.BCName,
			CalleeBCName:      a.CalleeBCName,
			AssociateFieldKey: a.AssociateFieldKey,
			AssocValueKey:     a.AssocValueKey,
		}

	case action.ClosePopup:
		s.view.Popup = Popup{}

	case action.ChangeDataItem:
		s.mergePending(a.BCName, a.Cursor, a.DataItem)

	case action.ChangeDataItems:
		for i, cursor := range a.Cursors {
			if i < len(a.DataItems) {
				s.mergePending(a.BCName, cursor, a.DataItems[i])
			}
		}

	case action.ShowViewError:
		errCopy := a.Error
		s.view.Error = &errCopy

	case action.AddNotification:
		s.notifications = append(s.notifications, Notification{
			ID:      a.ID,
			Kind:    a.Kind,
			Message: a.Message,
		})

	case action.CloseNotification:
		for i := range s.notifications {
			if s.notifications[i].ID == a.ID {
				s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
				break
			}
		}
	}
}

func (s *Store) setLoading(bcName string, loading bool) {
	if bc := s.screen.BCMap[bcName]; bc != nil {
		bc.Loading = loading
	}
}

func (s *Store) mergePending(bcName, cursor string, delta map[string]any) {
	byCursor := s.pending[bcName]
	if byCursor == nil {
		byCursor = make(map[string]map[string]any)
		s.pending[bcName] = byCursor
	}
	fields := byCursor[cursor]
	if fields == nil {
		fields = make(map[string]any, len(delta))
		byCursor[cursor] = fields
	}
	for k, v := range delta {
		fields[k] = v
	}
}
