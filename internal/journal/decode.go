package journal

import (
	"encoding/json"
	"fmt"

	"github.com/tesler-ui/datasync/internal/action"
	"github.com/tesler-ui/datasync/internal/model"
)

// Decode rebuilds a catalog action from its journaled type tag and payload.
// Replay feeds the result straight back into reducers.
//
// The Err field of apiError/httpError does not survive the round trip:
// error values have no stable JSON form. Reducers never read it, so replay
// is unaffected; only the classification pipelines do, and they ran in the
// original session.
func Decode(typ string, payload []byte) (action.Action, error) {
	decode := func(into action.Action) (action.Action, error) {
		if err := json.Unmarshal(payload, into); err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		return deref(into), nil
	}

	switch action.Type(typ) {
	case action.TypeChangeLocation:
		return decode(&action.ChangeLocation{})
	case action.TypeSelectScreen:
		return decode(&action.SelectScreen{})
	case action.TypeSelectScreenFail:
		return decode(&action.SelectScreenFail{})
	case action.TypeSelectView:
		return decode(&action.SelectView{})
	case action.TypeSelectViewFail:
		return decode(&action.SelectViewFail{})
	case action.TypeDrillDown:
		return decode(&action.DrillDown{})
	case action.TypeLogin:
		return decode(&action.Login{})
	case action.TypeLoginDone:
		return decode(&action.LoginDone{})
	case action.TypeLoginFail:
		return decode(&action.LoginFail{})
	case action.TypeSwitchRole:
		return decode(&action.SwitchRole{})
	case action.TypeLogout:
		return decode(&action.Logout{})
	case action.TypeLogoutDone:
		return decode(&action.LogoutDone{})
	case action.TypeBCFetchDataRequest:
		return decode(&action.BCFetchDataRequest{})
	case action.TypeBCFetchDataPages:
		return decode(&action.BCFetchDataPages{})
	case action.TypeBCForceUpdate:
		return decode(&action.BCForceUpdate{})
	case action.TypeBCChangePage:
		return decode(&action.BCChangePage{})
	case action.TypeBCSelectRecord:
		return decode(&action.BCSelectRecord{})
	case action.TypeBCChangeCursors:
		return decode(&action.BCChangeCursors{})
	case action.TypeBCFetchDataSuccess:
		return decode(&action.BCFetchDataSuccess{})
	case action.TypeBCFetchDataFail:
		return decode(&action.BCFetchDataFail{})
	case action.TypeBCFetchRowMeta:
		return decode(&action.BCFetchRowMeta{})
	case action.TypeBCFetchRowMetaSuccess:
		return decode(&action.BCFetchRowMetaSuccess{})
	case action.TypeBCFetchRowMetaFail:
		return decode(&action.BCFetchRowMetaFail{})
	case action.TypeShowViewPopup:
		return decode(&action.ShowViewPopup{})
	case action.TypeClosePopup:
		return decode(&action.ClosePopup{})
	case action.TypeChangeDataItem:
		return decode(&action.ChangeDataItem{})
	case action.TypeChangeDataItems:
		return decode(&action.ChangeDataItems{})
	case action.TypeRemoveMultivalueTag:
		return decode(&action.RemoveMultivalueTag{})
	case action.TypeProcessPostInvoke:
		return decode(&action.ProcessPostInvoke{})
	case action.TypeAPIError:
		var sh struct{ Context action.CallContext }
		if err := json.Unmarshal(payload, &sh); err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		return action.APIError{Context: sh.Context}, nil
	case action.TypeHTTPError:
		var sh struct {
			Status     int
			StatusText string
			Popup      []string
			PostInvoke *model.PostInvoke
			Body       string
			Context    action.CallContext
		}
		if err := json.Unmarshal(payload, &sh); err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		return action.HTTPError{
			Status:     sh.Status,
			StatusText: sh.StatusText,
			Popup:      sh.Popup,
			PostInvoke: sh.PostInvoke,
			Body:       sh.Body,
			Context:    sh.Context,
		}, nil
	case action.TypeShowViewError:
		return decode(&action.ShowViewError{})
	case action.TypeAddNotification:
		return decode(&action.AddNotification{})
	case action.TypeCloseNotification:
		return decode(&action.CloseNotification{})
	default:
		return nil, fmt.Errorf("decode: unknown action type %q", typ)
	}
}

// deref unwraps the pointer decode targets back into the value form the
// catalog dispatches with.
func deref(a action.Action) action.Action {
	switch v := a.(type) {
	case *action.ChangeLocation:
		return *v
	case *action.SelectScreen:
		return *v
	case *action.SelectScreenFail:
		return *v
	case *action.SelectView:
		return *v
	case *action.SelectViewFail:
		return *v
	case *action.DrillDown:
		return *v
	case *action.Login:
		return *v
	case *action.LoginDone:
		return *v
	case *action.LoginFail:
		return *v
	case *action.SwitchRole:
		return *v
	case *action.Logout:
		return *v
	case *action.LogoutDone:
		return *v
	case *action.BCFetchDataRequest:
		return *v
	case *action.BCFetchDataPages:
		return *v
	case *action.BCForceUpdate:
		return *v
	case *action.BCChangePage:
		return *v
	case *action.BCSelectRecord:
		return *v
	case *action.BCChangeCursors:
		return *v
	case *action.BCFetchDataSuccess:
		return *v
	case *action.BCFetchDataFail:
		return *v
	case *action.BCFetchRowMeta:
		return *v
	case *action.BCFetchRowMetaSuccess:
		return *v
	case *action.BCFetchRowMetaFail:
		return *v
	case *action.ShowViewPopup:
		return *v
	case *action.ClosePopup:
		return *v
	case *action.ChangeDataItem:
		return *v
	case *action.ChangeDataItems:
		return *v
	case *action.RemoveMultivalueTag:
		return *v
	case *action.ProcessPostInvoke:
		return *v
	case *action.ShowViewError:
		return *v
	case *action.AddNotification:
		return *v
	case *action.CloseNotification:
		return *v
	default:
		return a
	}
}
