package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tesler-ui/datasync/internal/action"
	"github.com/tesler-ui/datasync/internal/api"
	"github.com/tesler-ui/datasync/internal/engine"
	"github.com/tesler-ui/datasync/internal/model"
	"github.com/tesler-ui/datasync/internal/state"
)

// waitTimeout bounds every idle wait and shutdown in fixtures. Generous on
// purpose: the engine quiesces in microseconds unless something hangs.
const waitTimeout = 5 * time.Second

// Fixture is a running engine over a fresh store and a scriptable stub
// client, with a recorder registered after the standard pipelines.
type Fixture struct {
	T      *testing.T
	Store  *state.Store
	Client *api.StubClient
	Engine *engine.Engine
	Rec    *Recorder
}

// NewFixture starts an engine for one test. The engine is stopped and
// drained through t.Cleanup.
func NewFixture(t *testing.T, opts ...engine.Option) *Fixture {
	t.Helper()

	store := state.NewStore()
	client := api.NewStubClient()
	rec := NewRecorder()

	base := []engine.Option{
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	eng := engine.New(store, client, append(base, opts...)...)
	eng.Bus().Register(rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = eng.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(waitTimeout):
			t.Error("engine did not stop within timeout")
		}
	})

	return &Fixture{T: t, Store: store, Client: client, Engine: eng, Rec: rec}
}

// Dispatch submits an atomic action batch without waiting.
func (f *Fixture) Dispatch(actions ...action.Action) {
	f.T.Helper()
	require.True(f.T, f.Engine.Bus().DispatchAll(actions...), "bus rejected dispatch")
}

// WaitIdle blocks until the bus has drained and no requests are in flight.
func (f *Fixture) WaitIdle() {
	f.T.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	require.NoError(f.T, f.Engine.Bus().WaitIdle(ctx), "engine did not go idle")
}

// DispatchWait submits a batch and waits for the engine to go idle.
func (f *Fixture) DispatchWait(actions ...action.Action) {
	f.T.Helper()
	f.Dispatch(actions...)
	f.WaitIdle()
}

// Login establishes an authenticated session with the given screens and
// lets the resulting route reconciliation settle, then clears the recorder
// and the stub's call log so assertions see only the scenario under test.
func (f *Fixture) Login(screens ...model.ScreenMeta) {
	f.T.Helper()
	f.DispatchWait(action.LoginDone{Screens: screens})
	f.Rec.Reset()
	f.Client.ResetCalls()
}

// Snapshot returns a read view of the store. Safe only while the engine is
// idle; fixtures call WaitIdle first.
func (f *Fixture) Snapshot() *state.Snapshot {
	return f.Store.Snapshot()
}
