// Package api defines the abstract backend client the sync engine drives.
//
// The concrete HTTP transport is an external collaborator; this package only
// fixes the call signatures, the parameter model, and the typed error shape
// the error-classification pipeline depends on. Cancellation is carried by
// the context: the engine cancels an owned context to abort a call, and the
// transport must return an error wrapping context.Canceled in that case.
package api

import (
	"context"

	"github.com/tesler-ui/datasync/internal/model"
)

// BCDataResponse is the payload of a successful data fetch.
type BCDataResponse struct {
	Data    []model.DataItem
	HasNext bool
}

// LoginResponse is the payload of a successful login or role switch.
type LoginResponse struct {
	Screens          []model.ScreenMeta
	ActiveRole       string
	RouterServerSide bool
}

// OperationResult is the payload of a custom backend operation.
type OperationResult struct {
	Record      *model.DataItem
	PostActions []model.PostInvoke
}

// Client is the set of backend calls the sync engine issues.
//
// Params records are flat query-parameter maps: "_page"/"_limit" plus the
// operator-suffixed filter keys and "_sort.N.dir" sorter keys produced by
// model.GetFilters and model.GetSorters.
type Client interface {
	// FetchBCData fetches a page of a BC's records.
	FetchBCData(ctx context.Context, screenName, bcURL string, params map[string]string) (BCDataResponse, error)

	// FetchRowMeta fetches per-record operation and field metadata for the
	// record addressed by bcURL (the url embeds the cursor).
	FetchRowMeta(ctx context.Context, screenName, bcURL string, params map[string]string) (model.RowMeta, error)

	// CustomAction invokes a backend-declared operation on a record.
	CustomAction(ctx context.Context, screenName, bcURL string, body map[string]any, params map[string]string) (OperationResult, error)

	// RouterRequest delegates a location to server-side routing.
	// Fire-and-forget: the result is discarded, errors are only logged.
	RouterRequest(ctx context.Context, path string, params map[string]string) error

	// LoginByRole re-authenticates the session under the given role.
	LoginByRole(ctx context.Context, role string) (LoginResponse, error)

	// RefreshMeta invalidates the backend's cached screen metadata.
	RefreshMeta(ctx context.Context) error
}
