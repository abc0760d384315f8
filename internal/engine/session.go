package engine

import (
	"context"

	"github.com/tesler-ui/datasync/internal/action"
	"github.com/tesler-ui/datasync/internal/api"
	"github.com/tesler-ui/datasync/internal/model"
	"github.com/tesler-ui/datasync/internal/state"
)

// sessionPipeline establishes and tears down the authenticated session.
// Login and role switch run on request goroutines; logout is synchronous
// because the engine holds no server-side session state of its own.
type sessionPipeline struct {
	e *Engine
}

func (p *sessionPipeline) Name() string { return "session" }

func (p *sessionPipeline) Handle(ctx context.Context, act action.Action, sn *state.Snapshot) []action.Action {
	switch a := act.(type) {
	case action.Login:
		p.login(ctx, a.Role, false)
	case action.SwitchRole:
		// A role switch invalidates the backend's cached screen metadata
		// before re-authenticating.
		p.login(ctx, a.Role, true)
	case action.Logout:
		return []action.Action{
			action.LogoutDone{},
			action.ChangeLocation{Route: model.ParseRoute("/", nil)},
		}
	case action.LoginDone:
		// A fresh session reconciles the current location from scratch.
		return []action.Action{action.ChangeLocation{Route: sn.Route()}}
	}
	return nil
}

func (p *sessionPipeline) login(ctx context.Context, role string, refreshMeta bool) {
	done := p.e.bus.trackRequest()
	client := p.e.client
	logger := p.e.logger
	bus := p.e.bus

	go func() {
		defer done()

		if refreshMeta {
			if err := client.RefreshMeta(ctx); err != nil {
				logger.Error("meta refresh failed", "error", err)
			}
		}

		resp, err := client.LoginByRole(ctx, role)
		if err != nil {
			if api.IsCancellation(err) {
				return
			}
			logger.Error("login failed", "role", role, "error", err)
			bus.DispatchAll(
				action.LoginFail{Message: loginFailMessage(err)},
				action.APIError{Err: err},
			)
			return
		}

		bus.DispatchAll(action.LoginDone{
			Screens:          resp.Screens,
			ActiveRole:       resp.ActiveRole,
			RouterServerSide: resp.RouterServerSide,
		})
	}()
}

func loginFailMessage(err error) string {
	if apiErr := api.AsError(err); apiErr != nil && len(apiErr.Popup) > 0 {
		return apiErr.Popup[0]
	}
	return "Login failed"
}
