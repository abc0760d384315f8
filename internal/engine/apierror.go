package engine

import (
	"context"
	"strings"

	"github.com/tesler-ui/datasync/internal/action"
	"github.com/tesler-ui/datasync/internal/api"
	"github.com/tesler-ui/datasync/internal/model"
	"github.com/tesler-ui/datasync/internal/state"
)

// apiErrorPipeline maps transport-layer failures to the typed error
// taxonomy and dispatches the recovery/reporting flows.
//
// Classification of one apiError action:
//   - an HTTP response was obtained: emit a typed httpError carrying the
//     status code; the dedicated status handlers take it from there;
//   - no response and not a cancellation: network application error;
//   - a recognized cancellation: emit nothing - cancellation is not an
//     error.
type apiErrorPipeline struct {
	e *Engine
}

func (p *apiErrorPipeline) Name() string { return "apiError" }

func (p *apiErrorPipeline) Handle(ctx context.Context, act action.Action, sn *state.Snapshot) []action.Action {
	switch a := act.(type) {
	case action.APIError:
		return p.classify(a)
	case action.HTTPError:
		return p.handleHTTP(sn, a)
	}
	return nil
}

func (p *apiErrorPipeline) classify(a action.APIError) []action.Action {
	if api.IsCancellation(a.Err) {
		return nil
	}

	apiErr := api.AsError(a.Err)
	if apiErr == nil || apiErr.StatusCode == 0 {
		p.e.logger.Error("network error", "error", a.Err, "widget", a.Context.WidgetName)
		return []action.Action{action.ShowViewError{
			Error: action.ViewError{
				Class:   action.ErrorNetwork,
				Message: "No response from server",
			},
		}}
	}

	p.e.logger.Error("api error",
		"status", apiErr.StatusCode,
		"widget", a.Context.WidgetName,
		"error", a.Err,
	)

	return []action.Action{action.HTTPError{
		Status:     apiErr.StatusCode,
		StatusText: apiErr.StatusText,
		Popup:      apiErr.Popup,
		PostInvoke: apiErr.PostInvoke,
		Body:       apiErr.Body,
		Err:        a.Err,
		Context:    a.Context,
	}}
}

// handleHTTP runs the dedicated status handlers. 401, 409, 418 and 500 are
// special-cased; any other code falls through to the default handler.
func (p *apiErrorPipeline) handleHTTP(sn *state.Snapshot, a action.HTTPError) []action.Action {
	switch a.Status {
	case 401:
		return p.unauthorized()
	case 409:
		return p.conflict(a)
	case 418:
		return p.businessError(sn, a)
	case 500:
		return p.systemError(a)
	default:
		return p.defaultError(a)
	}
}

// unauthorized: the session is invalidated; tear it down and force-navigate
// to the root.
func (p *apiErrorPipeline) unauthorized() []action.Action {
	return []action.Action{
		action.LogoutDone{},
		action.ChangeLocation{Route: model.ParseRoute("/", nil)},
	}
}

// conflict: edit conflict, recoverable; a dismissible warning built from
// the server's popup message. No store mutation.
func (p *apiErrorPipeline) conflict(a action.HTTPError) []action.Action {
	return []action.Action{action.AddNotification{
		ID:      p.e.reqIDs.Generate(),
		Kind:    action.NotificationWarning,
		Message: firstPopupLine(a.Popup),
	}}
}

// businessError: business-rule violation; inline view error, plus the
// server-attached post-invoke addressed to the originating widget's BC.
func (p *apiErrorPipeline) businessError(sn *state.Snapshot, a action.HTTPError) []action.Action {
	actions := []action.Action{action.ShowViewError{
		Error: action.ViewError{
			Class:   action.ErrorBusiness,
			Code:    a.Status,
			Message: firstPopupLine(a.Popup),
		},
	}}
	if a.PostInvoke != nil {
		bcName := ""
		if w := sn.WidgetByName(a.Context.WidgetName); w != nil {
			bcName = w.BCName
		}
		actions = append(actions, action.ProcessPostInvoke{
			BCName:     bcName,
			WidgetName: a.Context.WidgetName,
			PostInvoke: *a.PostInvoke,
		})
	}
	return actions
}

// systemError: server fault; view error with the status text and the raw
// error for diagnostics.
func (p *apiErrorPipeline) systemError(a action.HTTPError) []action.Action {
	details := ""
	if a.Err != nil {
		details = a.Err.Error()
	}
	return []action.Action{action.ShowViewError{
		Error: action.ViewError{
			Class:   action.ErrorSystem,
			Code:    a.Status,
			Message: a.StatusText,
			Details: details,
		},
	}}
}

// defaultError: unrecognized status code; surfaced generically with the
// exact code and raw body.
func (p *apiErrorPipeline) defaultError(a action.HTTPError) []action.Action {
	return []action.Action{action.ShowViewError{
		Error: action.ViewError{
			Class:   action.ErrorBusiness,
			Code:    a.Status,
			Message: a.StatusText,
			Details: a.Body,
		},
	}}
}

func firstPopupLine(popup []string) string {
	if len(popup) == 0 {
		return ""
	}
	return strings.TrimSpace(popup[0])
}
