package engine

import (
	"context"
	"strconv"

	"github.com/tesler-ui/datasync/internal/action"
	"github.com/tesler-ui/datasync/internal/api"
	"github.com/tesler-ui/datasync/internal/model"
	"github.com/tesler-ui/datasync/internal/state"
)

// dataFetchPipeline orchestrates paginated/filtered/sorted fetch of a BC's
// records, cursor adoption, and the cascading fetch of dependent child BCs.
//
// Ordering invariant on success: cursor-change precedes fetch-success,
// which precedes the row-meta request, which precedes any child cascade.
// Consumers (selection highlighting, row-meta cache keying) depend on this
// exact sequence.
type dataFetchPipeline struct {
	e *Engine
}

func (p *dataFetchPipeline) Name() string { return "dataFetch" }

func (p *dataFetchPipeline) Handle(ctx context.Context, act action.Action, sn *state.Snapshot) []action.Action {
	switch a := act.(type) {
	case action.BCFetchDataRequest:
		p.fetch(ctx, sn, fetchSpec{
			bcName:          a.BCName,
			widgetName:      a.WidgetName,
			ignorePageLimit: a.IgnorePageLimit,
			keepDelta:       a.KeepDelta,
		})

	case action.BCFetchDataPages:
		p.fetch(ctx, sn, fetchSpec{
			bcName:     a.BCName,
			widgetName: a.WidgetName,
			pageFrom:   a.From,
			pageTo:     a.To,
			pages:      true,
		})

	case action.BCForceUpdate:
		p.fetch(ctx, sn, fetchSpec{
			bcName:      a.BCName,
			widgetName:  a.WidgetName,
			forceUpdate: true,
		})

	case action.BCChangePage:
		p.fetch(ctx, sn, fetchSpec{bcName: a.BCName})

	case action.ShowViewPopup:
		// The initiator already owns the fetch of its own BC.
		if a.BCName == a.CalleeBCName {
			return nil
		}
		p.fetch(ctx, sn, fetchSpec{bcName: a.BCName, fromPopup: true})

	case action.BCSelectRecord:
		return p.selectRecord(sn, a)

	case action.ProcessPostInvoke:
		return p.postInvoke(a)
	}
	return nil
}

// fetchSpec is the normalized description of one fetch trigger.
type fetchSpec struct {
	bcName          string
	widgetName      string
	ignorePageLimit bool
	keepDelta       bool
	forceUpdate     bool
	fromPopup       bool
	pages           bool
	pageFrom        int
	pageTo          int
}

// fetch arms one cancelable data fetch. Runs on the bus loop: it captures
// everything the success path needs from the trigger-time snapshot, then
// hands the network call to a request goroutine raced against its triggers.
func (p *dataFetchPipeline) fetch(ctx context.Context, sn *state.Snapshot, spec fetchSpec) {
	w := resolveWidget(sn, spec.bcName, spec.widgetName)
	if w == nil {
		// View or screen navigated away mid-flight; stale cascade, no-op.
		p.e.logger.Debug("fetch skipped: widget not found",
			"bc", spec.bcName,
			"widget", spec.widgetName,
		)
		return
	}
	bc := sn.BC(spec.bcName)
	if bc == nil {
		p.e.logger.Debug("fetch skipped: bc not found", "bc", spec.bcName)
		return
	}

	params := p.buildParams(sn, bc, w, spec)
	bcURL := sn.BCMap().BuildBCURL(spec.bcName, false)
	screenName := sn.ScreenName()

	// Captured at trigger time; the request goroutine must not touch the
	// snapshot after Handle returns.
	capture := successCapture{
		bcName:           spec.bcName,
		bcURL:            bcURL,
		widgetName:       w.Name,
		existingCursor:   bc.Cursor,
		keepDelta:        spec.keepDelta || w.IsHierarchy(),
		lazySuppressed:   lazySuppressed(sn, w),
		children:         visibleChildren(sn, spec.bcName),
		childIgnoreLimit: spec.ignorePageLimit || spec.fromPopup,
	}

	global := p.e.bus.Watch(globalCancelTrigger)
	var parent *Watcher
	if bc.ParentName != "" {
		parent = p.e.bus.Watch(parentSelectTrigger(bc.ParentName))
	}
	canceler := p.e.NewCanceler(ctx)

	p.e.logger.Debug("bc data fetch",
		"bc", spec.bcName,
		"widget", w.Name,
		"url", bcURL,
		"request_id", canceler.ID,
	)

	client := p.e.client
	p.e.raceRequest(requestRace{
		name:     "bcFetchData",
		canceler: canceler,
		global:   global,
		context:  parent,
		fallback: []action.Action{action.BCFetchDataFail{BCName: spec.bcName, BCURL: bcURL}},
		call: func(callCtx context.Context) ([]action.Action, error) {
			resp, err := client.FetchBCData(callCtx, screenName, bcURL, params)
			if err != nil {
				return nil, err
			}
			return capture.successActions(resp, p.e), nil
		},
		onError: func(error) []action.Action {
			return []action.Action{action.BCFetchDataFail{BCName: spec.bcName, BCURL: bcURL}}
		},
	})
}

// buildParams assembles the fetch parameters for one trigger.
//
// Base page/limit come from the descriptor, merged with active filters and
// sorters - except when a full-hierarchy widget exists for the BC, which
// manages its own filtering. Overrides, in priority order:
//
//  1. infinite-pagination widgets on force-update request page 1 with
//     limit x currentPage, re-requesting everything seen so far;
//  2. explicit page ranges compute page/limit to cover the range,
//     defaulting to "from page 1 through the current page";
//  3. ignorePageLimit, popup-triggered fetches, and full-hierarchy widgets
//     force limit 0 (unbounded).
func (p *dataFetchPipeline) buildParams(sn *state.Snapshot, bc *model.BCDescriptor, w *model.Widget, spec fetchSpec) map[string]string {
	page := bc.Page
	limit := bc.Limit

	if spec.forceUpdate && w.Options.Pagination == model.PaginationInfinite {
		limit = bc.Limit * bc.Page
		page = 1
	}

	if spec.pages {
		from, to := spec.pageFrom, spec.pageTo
		if from == 0 {
			from = 1
		}
		if to == 0 {
			to = bc.Page
		}
		page = from
		limit = (to - from + 1) * bc.Limit
	}

	if spec.ignorePageLimit || spec.fromPopup || w.IsFullHierarchy() {
		limit = 0
	}

	params := map[string]string{
		"_page":  strconv.Itoa(page),
		"_limit": strconv.Itoa(limit),
	}
	if !fullHierarchyWidgetExists(sn, bc.Name) {
		for k, v := range model.GetFilters(bc.Filters) {
			params[k] = v
		}
	}
	for k, v := range model.GetSorters(bc.Sorters) {
		params[k] = v
	}
	return params
}

// successCapture is the trigger-time state a fetch needs to turn a response
// into its ordered action batch.
type successCapture struct {
	bcName           string
	bcURL            string
	widgetName       string
	existingCursor   string
	keepDelta        bool
	lazySuppressed   bool
	children         []ChildBC
	childIgnoreLimit bool
}

// successActions builds the ordered emission for a successful fetch:
// [cursor-change, fetch-success, row-meta-request, child-fetch-request xN].
func (c successCapture) successActions(resp api.BCDataResponse, e *Engine) []action.Action {
	if c.lazySuppressed {
		// Lazy popup widget whose popup is not open: the data would render
		// nowhere and the cascade would fetch for a closed popup.
		e.logger.Debug("fetch result suppressed: lazy widget closed",
			"bc", c.bcName,
			"widget", c.widgetName,
		)
		return nil
	}

	newCursor := ""
	if len(resp.Data) > 0 {
		newCursor = resp.Data[0].ID
		if c.existingCursor != "" && model.FindRecord(resp.Data, c.existingCursor) != nil {
			newCursor = c.existingCursor
		}
	}

	actions := []action.Action{
		action.BCChangeCursors{
			Cursors:   map[string]string{c.bcName: newCursor},
			KeepDelta: c.keepDelta,
		},
		action.BCFetchDataSuccess{
			BCName:  c.bcName,
			BCURL:   c.bcURL,
			Data:    resp.Data,
			HasNext: resp.HasNext,
		},
		action.BCFetchRowMeta{BCName: c.bcName, WidgetName: c.widgetName},
	}

	if len(resp.Data) > 0 {
		for _, child := range c.children {
			actions = append(actions, action.BCFetchDataRequest{
				BCName:          child.BCName,
				WidgetName:      child.WidgetName,
				IgnorePageLimit: c.childIgnoreLimit,
				KeepDelta:       c.keepDelta,
			})
		}
	}

	return actions
}

// selectRecord propagates a user record selection: refresh the row metadata
// of the selected record and refetch every visible child BC. The in-flight
// fetches of those children were just canceled by the parent-reselection
// watchers; these requests supersede them.
func (p *dataFetchPipeline) selectRecord(sn *state.Snapshot, a action.BCSelectRecord) []action.Action {
	w := sn.FirstWidgetForBC(a.BCName)
	if w == nil {
		return nil
	}

	actions := []action.Action{
		action.BCFetchRowMeta{BCName: a.BCName, WidgetName: w.Name},
	}
	for _, child := range visibleChildren(sn, a.BCName) {
		actions = append(actions, action.BCFetchDataRequest{
			BCName:          child.BCName,
			WidgetName:      child.WidgetName,
			IgnorePageLimit: a.IgnoreChildrenPageLimit,
			KeepDelta:       a.KeepDelta,
		})
	}
	return actions
}

// postInvoke executes a backend-attached follow-up instruction.
func (p *dataFetchPipeline) postInvoke(a action.ProcessPostInvoke) []action.Action {
	switch a.PostInvoke.Type {
	case "refreshBC":
		bcName := a.PostInvoke.BC
		if bcName == "" {
			bcName = a.BCName
		}
		return []action.Action{action.BCForceUpdate{BCName: bcName, WidgetName: a.WidgetName}}
	case "showMessage":
		return []action.Action{action.AddNotification{
			ID:      p.e.reqIDs.Generate(),
			Kind:    action.NotificationInfo,
			Message: a.PostInvoke.Message,
		}}
	case "drillDown":
		return []action.Action{action.DrillDown{
			URL:           a.PostInvoke.URL,
			DrillDownType: model.DrillDownInner,
			WidgetName:    a.WidgetName,
		}}
	default:
		p.e.logger.Debug("unhandled post-invoke", "type", a.PostInvoke.Type, "bc", a.BCName)
		return nil
	}
}
