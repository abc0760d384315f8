package api

import (
	"context"
	"sync"

	"github.com/tesler-ui/datasync/internal/model"
)

// StubClient is a scriptable Client for tests and offline demos.
//
// Responses are keyed by bcURL. A request can be held open with Hold so a
// test can inject trigger actions while the call is in flight, then either
// release the response or observe the cancellation. All calls are recorded
// with their parameters for fetch-parameter assertions.
//
// Thread-safety: safe for concurrent use; the engine issues calls from
// request goroutines.
type StubClient struct {
	mu       sync.Mutex
	data     map[string]BCDataResponse
	dataErr  map[string]error
	rowMeta  map[string]model.RowMeta
	rowErr   map[string]error
	holds    map[string]chan struct{}
	login    LoginResponse
	loginErr error
	calls    []Call
}

// Call records one issued request.
type Call struct {
	Method string
	Screen string
	BCURL  string
	Params map[string]string
}

// NewStubClient creates an empty stub. Unset urls respond with an empty
// record set.
func NewStubClient() *StubClient {
	return &StubClient{
		data:    make(map[string]BCDataResponse),
		dataErr: make(map[string]error),
		rowMeta: make(map[string]model.RowMeta),
		rowErr:  make(map[string]error),
		holds:   make(map[string]chan struct{}),
	}
}

// SetData scripts the data response for a bcURL.
func (c *StubClient) SetData(bcURL string, resp BCDataResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[bcURL] = resp
}

// SetDataErr scripts a data fetch failure for a bcURL.
func (c *StubClient) SetDataErr(bcURL string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dataErr[bcURL] = err
}

// SetRowMeta scripts the row-meta response for a bcURL.
func (c *StubClient) SetRowMeta(bcURL string, meta model.RowMeta) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rowMeta[bcURL] = meta
}

// SetRowMetaErr scripts a row-meta failure for a bcURL.
func (c *StubClient) SetRowMetaErr(bcURL string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rowErr[bcURL] = err
}

// SetLogin scripts the login/role-switch response.
func (c *StubClient) SetLogin(resp LoginResponse, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.login, c.loginErr = resp, err
}

// Hold keeps requests for bcURL in flight until the returned release
// function is called. A held request still honors context cancellation and
// returns a cancellation error when the engine aborts it.
func (c *StubClient) Hold(bcURL string) (release func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan struct{})
	c.holds[bcURL] = ch
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// Calls returns a copy of all recorded calls in issue order.
func (c *StubClient) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// ResetCalls discards recorded calls. Fixtures use it to drop bootstrap
// traffic before the scenario under test.
func (c *StubClient) ResetCalls() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}

// CallsFor returns recorded calls of one method.
func (c *StubClient) CallsFor(method string) []Call {
	var out []Call
	for _, call := range c.Calls() {
		if call.Method == method {
			out = append(out, call)
		}
	}
	return out
}

func (c *StubClient) record(method, screen, bcURL string, params map[string]string) {
	copied := make(map[string]string, len(params))
	for k, v := range params {
		copied[k] = v
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Method: method, Screen: screen, BCURL: bcURL, Params: copied})
}

// wait blocks on an installed hold, returning the context error if the
// request is canceled first.
func (c *StubClient) wait(ctx context.Context, bcURL string) error {
	c.mu.Lock()
	hold := c.holds[bcURL]
	c.mu.Unlock()
	if hold == nil {
		return ctx.Err()
	}
	select {
	case <-hold:
		return ctx.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FetchBCData implements Client.
func (c *StubClient) FetchBCData(ctx context.Context, screenName, bcURL string, params map[string]string) (BCDataResponse, error) {
	c.record("FetchBCData", screenName, bcURL, params)
	if err := c.wait(ctx, bcURL); err != nil {
		return BCDataResponse{}, &Error{Err: err}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err, ok := c.dataErr[bcURL]; ok {
		return BCDataResponse{}, err
	}
	return c.data[bcURL], nil
}

// FetchRowMeta implements Client.
func (c *StubClient) FetchRowMeta(ctx context.Context, screenName, bcURL string, params map[string]string) (model.RowMeta, error) {
	c.record("FetchRowMeta", screenName, bcURL, params)
	if err := c.wait(ctx, bcURL); err != nil {
		return model.RowMeta{}, &Error{Err: err}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err, ok := c.rowErr[bcURL]; ok {
		return model.RowMeta{}, err
	}
	return c.rowMeta[bcURL], nil
}

// CustomAction implements Client.
func (c *StubClient) CustomAction(ctx context.Context, screenName, bcURL string, body map[string]any, params map[string]string) (OperationResult, error) {
	c.record("CustomAction", screenName, bcURL, params)
	if err := ctx.Err(); err != nil {
		return OperationResult{}, &Error{Err: err}
	}
	return OperationResult{}, nil
}

// RouterRequest implements Client.
func (c *StubClient) RouterRequest(ctx context.Context, path string, params map[string]string) error {
	c.record("RouterRequest", "", path, params)
	return ctx.Err()
}

// LoginByRole implements Client.
func (c *StubClient) LoginByRole(ctx context.Context, role string) (LoginResponse, error) {
	c.record("LoginByRole", "", role, nil)
	if err := ctx.Err(); err != nil {
		return LoginResponse{}, &Error{Err: err}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loginErr != nil {
		return LoginResponse{}, c.loginErr
	}
	return c.login, nil
}

// RefreshMeta implements Client.
func (c *StubClient) RefreshMeta(ctx context.Context) error {
	c.record("RefreshMeta", "", "", nil)
	return ctx.Err()
}
