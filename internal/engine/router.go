package engine

import (
	"context"
	"fmt"

	"github.com/tesler-ui/datasync/internal/action"
	"github.com/tesler-ui/datasync/internal/model"
	"github.com/tesler-ui/datasync/internal/state"
)

// routerPipeline reconciles the desired route against store state, emitting
// the minimal set of transition actions.
//
// Ordering invariant: cursor actions are always emitted before view-change
// actions within the same reconciliation pass. A screen change stops the
// pass entirely - the screen's own load triggers a fresh reconciliation.
type routerPipeline struct {
	e *Engine
}

func (p *routerPipeline) Name() string { return "router" }

func (p *routerPipeline) Handle(ctx context.Context, act action.Action, sn *state.Snapshot) []action.Action {
	switch a := act.(type) {
	case action.ChangeLocation:
		return p.changeLocation(ctx, sn)
	case action.SelectScreen:
		// The reducer has applied the screen synchronously; run the next
		// reconciliation pass to resolve view and cursors against it.
		return []action.Action{action.ChangeLocation{Route: sn.Route()}}
	case action.SelectView:
		return p.viewSelected(sn)
	case action.SelectScreenFail:
		return []action.Action{action.AddNotification{
			ID:      p.e.reqIDs.Generate(),
			Kind:    action.NotificationError,
			Message: fmt.Sprintf("Screen %q is missing or unavailable", a.ScreenName),
		}}
	case action.SelectViewFail:
		return []action.Action{action.AddNotification{
			ID:      p.e.reqIDs.Generate(),
			Kind:    action.NotificationError,
			Message: fmt.Sprintf("View %q is missing or unavailable", a.ViewName),
		}}
	case action.DrillDown:
		return p.drillDown(sn, a)
	}
	return nil
}

// changeLocation runs one reconciliation pass: screen resolution first,
// then view/cursor resolution only when the screen is unchanged.
func (p *routerPipeline) changeLocation(ctx context.Context, sn *state.Snapshot) []action.Action {
	session := sn.Session()
	if !session.Active {
		return nil
	}

	route := sn.Route()

	// Server-side routing delegates the whole location to the backend:
	// fire the request, log failures, change no state.
	if session.RouterServerSide || route.Type == model.RouteRouter {
		p.routerPassthrough(ctx, route)
		return nil
	}

	desiredScreen := route.ScreenName
	if desiredScreen == "" {
		if def := model.DefaultScreen(session.Screens); def != nil {
			desiredScreen = def.Name
		}
	}

	if desiredScreen != sn.ScreenName() {
		screen := model.FindScreen(session.Screens, desiredScreen)
		if screen == nil {
			return []action.Action{action.SelectScreenFail{ScreenName: desiredScreen}}
		}
		// Screen change implies a fresh reconciliation cycle after the
		// screen is loaded; do not resolve view or cursors in this pass.
		return []action.Action{action.SelectScreen{Screen: *screen}}
	}

	return p.resolveView(sn, route, session)
}

// resolveView emits cursor changes, then the view transition, or - when the
// view is unchanged - force-updates for BCs whose new cursor is not loaded.
func (p *routerPipeline) resolveView(sn *state.Snapshot, route model.Route, session state.Session) []action.Action {
	screen := model.FindScreen(session.Screens, sn.ScreenName())
	if screen == nil {
		return nil
	}

	desiredView := route.ViewName
	if desiredView == "" {
		if def := screen.DefaultView(); def != nil {
			desiredView = def.Name
		}
	}

	changed := p.changedCursors(sn, route)

	var actions []action.Action
	if len(changed) > 0 {
		actions = append(actions, action.BCChangeCursors{Cursors: changed})
	}

	if desiredView != sn.ViewName() {
		view := screen.FindView(desiredView)
		if view == nil {
			actions = append(actions, action.SelectViewFail{ViewName: desiredView})
			return actions
		}
		actions = append(actions, action.SelectView{View: *view})
		return actions
	}

	// Same view, changed cursors: back/forward navigation to a record the
	// visible view may not have loaded yet.
	for _, bcName := range model.SortedKeys(changed) {
		if !sn.CursorLoaded(bcName, changed[bcName]) {
			actions = append(actions, action.BCForceUpdate{BCName: bcName})
		}
	}
	return actions
}

// changedCursors diffs the route's bc path against the store's cursors.
func (p *routerPipeline) changedCursors(sn *state.Snapshot, route model.Route) map[string]string {
	cursors := model.CursorsFromBCPath(route.BCPath)
	if len(cursors) == 0 {
		return nil
	}
	changed := make(map[string]string)
	for bcName, cursor := range cursors {
		bc := sn.BC(bcName)
		if bc == nil || bc.Cursor != cursor {
			changed[bcName] = cursor
		}
	}
	if len(changed) == 0 {
		return nil
	}
	return changed
}

// viewSelected kicks off the initial data load of a freshly selected view:
// one fetch per root BC with at least one relevant widget. Child BCs load
// through the success cascade.
func (p *routerPipeline) viewSelected(sn *state.Snapshot) []action.Action {
	var actions []action.Action
	seen := make(map[string]bool)
	for _, w := range sn.Widgets() {
		bc := sn.BC(w.BCName)
		if bc == nil || bc.ParentName != "" || seen[w.BCName] {
			continue
		}
		if widgetSuppressed(sn, &w) {
			continue
		}
		seen[w.BCName] = true
		actions = append(actions, action.BCFetchDataRequest{
			BCName:     w.BCName,
			WidgetName: w.Name,
		})
	}
	return actions
}

// routerPassthrough delegates a location to server-side routing on a
// request goroutine. Fire-and-forget: the result is discarded and failures
// are only logged.
func (p *routerPipeline) routerPassthrough(ctx context.Context, route model.Route) {
	done := p.e.bus.trackRequest()
	client := p.e.client
	path := route.Path
	params := route.Params
	logger := p.e.logger
	go func() {
		defer done()
		if err := client.RouterRequest(ctx, path, params); err != nil {
			logger.Error("router request failed", "path", path, "error", err)
		}
	}()
}

// drillDown translates a record-declared navigation target into a location
// change.
func (p *routerPipeline) drillDown(sn *state.Snapshot, a action.DrillDown) []action.Action {
	switch a.DrillDownType {
	case model.DrillDownExternal:
		// External targets are the shell's concern, not the sync engine's.
		p.e.logger.Debug("external drill-down ignored", "url", a.URL)
		return nil

	case model.DrillDownRelative:
		path := model.BuildScreenPath(sn.ScreenName(), "", "") + "/" + a.URL
		return []action.Action{action.ChangeLocation{
			Route: model.ParseRoute(path, nil),
		}}

	default: // inner
		route := model.ParseRoute(a.URL, nil)
		// NOTE: carried over from the previous implementation, where this
		// comparison was flagged as probably never matching in practice.
		// Reproduced as-is pending product clarification; do not "fix" by
		// guessing intent.
		if route.Path == sn.Route().Path {
			return nil
		}
		return []action.Action{action.ChangeLocation{Route: route}}
	}
}
