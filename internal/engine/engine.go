// Package engine implements the epic-driven data-synchronization engine:
// the reactive pipelines that fetch and cache BC data and row metadata,
// propagate cursor changes through parent-child BC hierarchies, reconcile
// router state with store state, and translate backend errors into typed
// error-handling flows.
//
// Architecture: a single-writer action bus drains a FIFO queue; for every
// action it stamps a logical seq, journals it, applies reducers, notifies
// cancellation watchers, then runs the registered pipelines in order.
// Network calls run on request goroutines, raced against their cancellation
// triggers; results re-enter the same queue as atomic action batches.
package engine

import (
	"context"
	"log/slog"

	"github.com/tesler-ui/datasync/internal/api"
	"github.com/tesler-ui/datasync/internal/state"
)

// Engine owns the bus, the store, and the backend client, and registers the
// standard pipeline set.
type Engine struct {
	bus    *Bus
	store  *state.Store
	client api.Client
	reqIDs RequestIDGenerator
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	clock   *Clock
	journal Journal
	logger  *slog.Logger
	reqIDs  RequestIDGenerator
}

// WithJournal attaches an action journal recording every processed action.
func WithJournal(j Journal) Option {
	return func(o *options) { o.journal = j }
}

// WithClock supplies a pre-positioned clock, e.g. when resuming a journal.
func WithClock(c *Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger supplies the engine logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRequestIDs supplies the request-id generator. Tests use
// NewFixedGenerator for deterministic ids.
func WithRequestIDs(g RequestIDGenerator) Option {
	return func(o *options) { o.reqIDs = g }
}

// New creates an engine over a store and a backend client and registers the
// standard pipelines in their canonical order: session, router, data fetch,
// row meta, association, error classification.
func New(store *state.Store, client api.Client, opts ...Option) *Engine {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.clock == nil {
		o.clock = NewClock()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.reqIDs == nil {
		o.reqIDs = UUIDv7Generator{}
	}

	e := &Engine{
		store:  store,
		client: client,
		reqIDs: o.reqIDs,
		logger: o.logger,
	}
	e.bus = NewBus(store, o.clock, o.journal, o.logger)

	e.bus.Register(&sessionPipeline{e: e})
	e.bus.Register(&routerPipeline{e: e})
	e.bus.Register(&dataFetchPipeline{e: e})
	e.bus.Register(&rowMetaPipeline{e: e})
	e.bus.Register(&assocPipeline{e: e})
	e.bus.Register(&apiErrorPipeline{e: e})

	return e
}

// Bus returns the engine's action bus.
func (e *Engine) Bus() *Bus { return e.bus }

// Run starts the bus loop. Blocks until ctx is cancelled or Stop is called.
func (e *Engine) Run(ctx context.Context) error {
	return e.bus.Run(ctx)
}

// Stop gracefully shuts down the engine.
func (e *Engine) Stop() {
	e.bus.Stop()
}
