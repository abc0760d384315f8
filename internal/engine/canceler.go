package engine

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/tesler-ui/datasync/internal/action"
	"github.com/tesler-ui/datasync/internal/api"
)

// RequestIDGenerator generates unique request ids for in-flight request
// correlation. Implemented by UUIDv7Generator (production) and
// FixedGenerator (tests).
type RequestIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 request ids.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined request ids for deterministic tests.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
// Panics once all ids are consumed - fail fast on test misconfiguration.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all request ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Canceler is an owned cancellation handle for one network request.
//
// The handle is created by the request that owns it, passed to the network
// call as its context, and revoked exactly once by whichever race branch
// wins. No mutable token is shared across branches: revocation goes through
// the context, and the losing network call observes context.Canceled.
type Canceler struct {
	ID     string
	ctx    context.Context
	cancel context.CancelFunc
}

// NewCanceler creates a fresh cancellation handle parented on ctx.
func (e *Engine) NewCanceler(ctx context.Context) *Canceler {
	reqCtx, cancel := context.WithCancel(ctx)
	return &Canceler{ID: e.reqIDs.Generate(), ctx: reqCtx, cancel: cancel}
}

// Context returns the context to pass to the network call.
func (c *Canceler) Context() context.Context { return c.ctx }

// Cancel revokes the handle. Idempotent.
func (c *Canceler) Cancel() { c.cancel() }

// requestRace describes one cancelable network call raced against its
// triggers. Exactly one branch ever dispatches:
//
//   - a global trigger (view change, logout) fires first: the call is
//     aborted and fallback is dispatched;
//   - the context-specific trigger (ancestor reselection) fires first:
//     same treatment;
//   - the call returns first: its success actions are dispatched, or its
//     error is converted by onError.
//
// Cancellation always resolves to the designated fallback action, never to
// silent loss; losing branches are unsubscribed and the underlying call is
// told to abort through the canceler.
type requestRace struct {
	name     string
	canceler *Canceler
	global   *Watcher
	context  *Watcher // nil when the request has no context-specific trigger
	fallback []action.Action
	call     func(ctx context.Context) ([]action.Action, error)
	onError  func(err error) []action.Action
}

type raceResult struct {
	actions []action.Action
	err     error
}

// raceRequest runs the race on a request goroutine. The surrounding Handle
// call has already registered the watchers, so no trigger can slip between
// the triggering action and the race being armed.
func (e *Engine) raceRequest(r requestRace) {
	done := e.bus.trackRequest()

	go func() {
		defer done()
		defer r.global.Close()
		defer r.context.Close()
		defer r.canceler.Cancel()

		resCh := make(chan raceResult, 1)
		go func() {
			actions, err := r.call(r.canceler.Context())
			resCh <- raceResult{actions: actions, err: err}
		}()

		select {
		case trigger := <-r.global.C():
			e.logger.Debug("request canceled by global trigger",
				"request", r.name,
				"request_id", r.canceler.ID,
				"trigger", trigger.Type(),
			)
			r.canceler.Cancel()
			e.bus.DispatchAll(r.fallback...)

		case trigger := <-r.context.C():
			e.logger.Debug("request canceled by context trigger",
				"request", r.name,
				"request_id", r.canceler.ID,
				"trigger", trigger.Type(),
			)
			r.canceler.Cancel()
			e.bus.DispatchAll(r.fallback...)

		case res := <-resCh:
			// A trigger that became ready in the same instant as the
			// response must still win the race; re-check without blocking
			// before committing the result.
			select {
			case trigger := <-r.global.C():
				e.logger.Debug("request canceled by global trigger",
					"request", r.name,
					"request_id", r.canceler.ID,
					"trigger", trigger.Type(),
				)
				r.canceler.Cancel()
				e.bus.DispatchAll(r.fallback...)
				return
			case trigger := <-r.context.C():
				e.logger.Debug("request canceled by context trigger",
					"request", r.name,
					"request_id", r.canceler.ID,
					"trigger", trigger.Type(),
				)
				r.canceler.Cancel()
				e.bus.DispatchAll(r.fallback...)
				return
			default:
			}
			if res.err != nil {
				if api.IsCancellation(res.err) {
					// Either a trigger branch won the select and already
					// dispatched the fallback, or the engine is shutting
					// down; nothing to emit either way.
					return
				}
				e.logger.Error("request failed",
					"request", r.name,
					"request_id", r.canceler.ID,
					"error", res.err,
				)
				e.bus.DispatchAll(r.onError(res.err)...)
				return
			}
			e.bus.DispatchAll(res.actions...)
		}
	}()
}

// globalCancelTrigger matches the fixed set of actions that abort every
// in-flight request: navigation away from the current view or screen, and
// session teardown.
func globalCancelTrigger(a action.Action) bool {
	switch a.(type) {
	case action.SelectView, action.SelectScreen, action.Logout:
		return true
	default:
		return false
	}
}

// parentSelectTrigger matches a record selection on the given parent BC.
// A child's in-flight fetch is stale the moment its parent's selected
// record changes.
func parentSelectTrigger(parentName string) func(action.Action) bool {
	return func(a action.Action) bool {
		sel, ok := a.(action.BCSelectRecord)
		return ok && sel.BCName == parentName
	}
}
