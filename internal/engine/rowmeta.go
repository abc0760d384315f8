package engine

import (
	"context"

	"github.com/tesler-ui/datasync/internal/action"
	"github.com/tesler-ui/datasync/internal/state"
)

// rowMetaPipeline fetches per-record field/operation metadata for the
// currently selected cursor of a BC. It races the same two cancellation
// branches as the data fetch: the global trigger set and reselection of the
// BC's parent record.
type rowMetaPipeline struct {
	e *Engine
}

func (p *rowMetaPipeline) Name() string { return "rowMeta" }

func (p *rowMetaPipeline) Handle(ctx context.Context, act action.Action, sn *state.Snapshot) []action.Action {
	req, ok := act.(action.BCFetchRowMeta)
	if !ok {
		return nil
	}

	w := resolveWidget(sn, req.BCName, req.WidgetName)
	if w == nil {
		p.e.logger.Debug("row-meta fetch skipped: widget not found",
			"bc", req.BCName,
			"widget", req.WidgetName,
		)
		return nil
	}
	bc := sn.BC(req.BCName)
	if bc == nil {
		return nil
	}

	cursor := bc.Cursor
	bcURL := sn.BCMap().BuildBCURL(req.BCName, true)
	screenName := sn.ScreenName()

	global := p.e.bus.Watch(globalCancelTrigger)
	var parent *Watcher
	if bc.ParentName != "" {
		parent = p.e.bus.Watch(parentSelectTrigger(bc.ParentName))
	}
	canceler := p.e.NewCanceler(ctx)

	p.e.logger.Debug("row-meta fetch",
		"bc", req.BCName,
		"cursor", cursor,
		"url", bcURL,
		"request_id", canceler.ID,
	)

	client := p.e.client
	bcName := req.BCName
	p.e.raceRequest(requestRace{
		name:     "bcFetchRowMeta",
		canceler: canceler,
		global:   global,
		context:  parent,
		fallback: []action.Action{action.BCFetchRowMetaFail{BCName: bcName}},
		call: func(callCtx context.Context) ([]action.Action, error) {
			meta, err := client.FetchRowMeta(callCtx, screenName, bcURL, nil)
			if err != nil {
				return nil, err
			}
			return []action.Action{action.BCFetchRowMetaSuccess{
				BCName:  bcName,
				BCURL:   bcURL,
				Cursor:  cursor,
				RowMeta: meta,
			}}, nil
		},
		onError: func(error) []action.Action {
			return []action.Action{action.BCFetchRowMetaFail{BCName: bcName}}
		},
	})

	return nil
}
