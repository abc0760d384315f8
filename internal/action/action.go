// Package action declares the closed catalog of typed actions the sync
// engine communicates through.
//
// Every action is a concrete payload struct implementing the sealed Action
// interface. The catalog is closed: pipelines dispatch with exhaustive type
// switches, so a typo'd or invented action type cannot compile. The string
// returned by Type() is the stable wire/journal tag for an action and is part
// of the public contract; payload shapes and tags must not change meaning
// between releases.
package action

import "github.com/tesler-ui/datasync/internal/model"

// Type is the stable string tag of an action, used for logging, the journal,
// and trigger matching. Tags never collide: one payload shape per tag.
type Type string

// Catalog of action type tags.
const (
	TypeChangeLocation   Type = "changeLocation"
	TypeSelectScreen     Type = "selectScreen"
	TypeSelectScreenFail Type = "selectScreenFail"
	TypeSelectView       Type = "selectView"
	TypeSelectViewFail   Type = "selectViewFail"
	TypeDrillDown        Type = "drillDown"

	TypeLogin      Type = "login"
	TypeLoginDone  Type = "loginDone"
	TypeLoginFail  Type = "loginFail"
	TypeSwitchRole Type = "switchRole"
	TypeLogout     Type = "logout"
	TypeLogoutDone Type = "logoutDone"

	TypeBCFetchDataRequest    Type = "bcFetchDataRequest"
	TypeBCFetchDataPages      Type = "bcFetchDataPages"
	TypeBCForceUpdate         Type = "bcForceUpdate"
	TypeBCChangePage          Type = "bcChangePage"
	TypeBCSelectRecord        Type = "bcSelectRecord"
	TypeBCChangeCursors       Type = "bcChangeCursors"
	TypeBCFetchDataSuccess    Type = "bcFetchDataSuccess"
	TypeBCFetchDataFail       Type = "bcFetchDataFail"
	TypeBCFetchRowMeta        Type = "bcFetchRowMeta"
	TypeBCFetchRowMetaSuccess Type = "bcFetchRowMetaSuccess"
	TypeBCFetchRowMetaFail    Type = "bcFetchRowMetaFail"

	TypeShowViewPopup Type = "showViewPopup"
	TypeClosePopup    Type = "closeViewPopup"

	TypeChangeDataItem      Type = "changeDataItem"
	TypeChangeDataItems     Type = "changeDataItems"
	TypeRemoveMultivalueTag Type = "removeMultivalueTag"
	TypeProcessPostInvoke   Type = "processPostInvoke"

	TypeAPIError          Type = "apiError"
	TypeHTTPError         Type = "httpError"
	TypeShowViewError     Type = "showViewError"
	TypeAddNotification   Type = "addNotification"
	TypeCloseNotification Type = "closeNotification"
)

// Action is the sealed interface every catalog entry implements.
// Only types in this package satisfy it.
type Action interface {
	Type() Type
	isAction()
}

// CallContext identifies the origin of a network call for error routing.
type CallContext struct {
	WidgetName string
}

// ChangeLocation announces a new desired route parsed from the browser
// location. The reducer stores it; the router pipeline reconciles it against
// screen/view/cursor state.
type ChangeLocation struct {
	Route model.Route
}

// SelectScreen transitions the active screen to the given screen metadata.
type SelectScreen struct {
	Screen model.ScreenMeta
}

// SelectScreenFail reports that a desired screen name could not be resolved.
type SelectScreenFail struct {
	ScreenName string
}

// SelectView transitions the active view within the current screen.
type SelectView struct {
	View model.ViewMeta
}

// SelectViewFail reports that a desired view name could not be resolved.
type SelectViewFail struct {
	ViewName string
}

// DrillDown requests navigation to a record-declared target.
type DrillDown struct {
	URL           string
	DrillDownType model.DrillDownType
	WidgetName    string
}

// Login requests session establishment.
type Login struct {
	Login    string
	Password string
	Role     string
}

// LoginDone announces an established session with its available screens.
type LoginDone struct {
	Screens          []model.ScreenMeta
	ActiveRole       string
	RouterServerSide bool
}

// LoginFail reports a failed login attempt.
type LoginFail struct {
	Message string
}

// SwitchRole re-authenticates the session under another role.
type SwitchRole struct {
	Role string
}

// Logout requests session teardown.
type Logout struct{}

// LogoutDone announces completed session teardown.
type LogoutDone struct{}

// BCFetchDataRequest triggers a (re)fetch of a BC's records.
type BCFetchDataRequest struct {
	BCName          string
	WidgetName      string
	IgnorePageLimit bool
	KeepDelta       bool
}

// BCFetchDataPages triggers a fetch covering an explicit page range.
// Zero From/To default to "from page 1 through the BC's current page".
type BCFetchDataPages struct {
	BCName     string
	WidgetName string
	From       int
	To         int
}

// BCForceUpdate refetches a BC after external invalidation (save, post
// invoke, back/forward navigation to an unloaded cursor).
type BCForceUpdate struct {
	BCName     string
	WidgetName string
}

// BCChangePage moves a BC to another page and refetches it.
type BCChangePage struct {
	BCName string
	Page   int
}

// BCSelectRecord selects a record within a BC. Any in-flight fetch of a
// child BC is abandoned by this action: the child's data is stale the moment
// its parent's selection changes.
type BCSelectRecord struct {
	BCName                  string
	Cursor                  string
	IgnoreChildrenPageLimit bool
	KeepDelta               bool
}

// BCChangeCursors applies a batch of cursor updates. KeepDelta preserves
// pending client-side edits through the cursor change (cascading hierarchy
// fetches must not drop unsaved user input).
type BCChangeCursors struct {
	Cursors   map[string]string
	KeepDelta bool
}

// BCFetchDataSuccess delivers fetched records for a BC.
type BCFetchDataSuccess struct {
	BCName  string
	BCURL   string
	Data    []model.DataItem
	HasNext bool
}

// BCFetchDataFail clears the loading state of a failed fetch.
type BCFetchDataFail struct {
	BCName string
	BCURL  string
}

// BCFetchRowMeta requests row metadata for a BC's selected cursor.
type BCFetchRowMeta struct {
	BCName     string
	WidgetName string
}

// BCFetchRowMetaSuccess delivers row metadata, tagged with the cursor and
// url it was fetched for so stale responses are attributable.
type BCFetchRowMetaSuccess struct {
	BCName  string
	BCURL   string
	Cursor  string
	RowMeta model.RowMeta
}

// BCFetchRowMetaFail clears the loading state of a failed row-meta fetch.
type BCFetchRowMetaFail struct {
	BCName string
}

// ShowViewPopup opens a popup widget's popup. BCName is the popup widget's
// BC; CalleeBCName is the BC initiating the popup (owner of the multi-value
// field being edited).
type ShowViewPopup struct {
	BCName            string
	CalleeBCName      string
	AssociateFieldKey string
	AssocValueKey     string
}

// ClosePopup closes the active popup.
type ClosePopup struct{}

// ChangeDataItem applies a client-side edit to one record.
type ChangeDataItem struct {
	BCName   string
	Cursor   string
	DataItem map[string]any
}

// ChangeDataItems applies client-side edits to several records at once.
type ChangeDataItems struct {
	BCName    string
	Cursors   []string
	DataItems []map[string]any
}

// RemoveMultivalueTag removes one selection from a multi-value association
// field. DataItem is the remaining selection list after the removal as the
// UI sees it; RemovedItem is the removed entry.
type RemoveMultivalueTag struct {
	BCName            string
	PopupBCName       string
	Cursor            string
	AssociateFieldKey string
	DataItem          []model.MultivalueSingleValue
	RemovedItem       model.MultivalueSingleValue
}

// ProcessPostInvoke executes a backend-attached follow-up instruction
// addressed to the originating widget's BC.
type ProcessPostInvoke struct {
	BCName     string
	WidgetName string
	PostInvoke model.PostInvoke
}

// APIError carries a transport-layer failure into the classification
// pipeline together with its call context.
type APIError struct {
	Err     error
	Context CallContext
}

// HTTPError is a classified HTTP failure. Popup, PostInvoke and Body are
// extracted from the error response for the status-specific handlers.
type HTTPError struct {
	Status     int
	StatusText string
	Popup      []string
	PostInvoke *model.PostInvoke
	Body       string
	Err        error
	Context    CallContext
}

// ErrorClass distinguishes user-facing view error banners.
type ErrorClass string

const (
	// ErrorBusiness is a recoverable business-rule violation.
	ErrorBusiness ErrorClass = "business"
	// ErrorSystem is a server-side fault shown with diagnostic detail.
	ErrorSystem ErrorClass = "system"
	// ErrorNetwork means no HTTP response was obtained at all.
	ErrorNetwork ErrorClass = "network"
)

// ViewError is the payload of a view-level error banner.
type ViewError struct {
	Class   ErrorClass
	Code    int
	Message string
	Details string
}

// ShowViewError raises a view-level error banner.
type ShowViewError struct {
	Error ViewError
}

// NotificationKind classifies transient notifications.
type NotificationKind string

const (
	NotificationWarning NotificationKind = "warning"
	NotificationError   NotificationKind = "error"
	NotificationInfo    NotificationKind = "info"
)

// AddNotification shows a dismissible transient notification.
type AddNotification struct {
	ID      string
	Kind    NotificationKind
	Message string
}

// CloseNotification dismisses a notification by id.
type CloseNotification struct {
	ID string
}
