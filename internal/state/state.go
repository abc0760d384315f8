// Package state holds the normalized client store the sync engine operates
// over.
//
// The store is the single shared resource. It is owned by the bus loop:
// reducers mutate it there and pipelines read it there through Snapshot.
// Nothing outside the loop goroutine may touch it, which is what makes the
// engine free of shared-memory races; the remaining hazard is purely logical
// (stale in-flight responses), handled by the cancellation races in the
// engine package.
package state

import (
	"github.com/tesler-ui/datasync/internal/action"
	"github.com/tesler-ui/datasync/internal/model"
)

// Session is the authenticated-session slice of the store.
type Session struct {
	Active           bool
	ActiveRole       string
	RouterServerSide bool
	Screens          []model.ScreenMeta
}

// Screen is the active-screen slice: its name and the live BC descriptors.
type Screen struct {
	Name  string
	BCMap model.BCMap
}

// Popup is the active popup context. Lazy popup widgets only load while
// their BC matches the active popup's BC.
type Popup struct {
	Active            bool
	BCName            string
	CalleeBCName      string
	AssociateFieldKey string
	AssocValueKey     string
}

// View is the active-view slice: widget metadata, popup context, the
// row-meta cache, and the view-level error banner.
type View struct {
	Name    string
	URL     string
	Widgets []model.Widget
	Popup   Popup
	// RowMeta caches fetched row metadata by BC name, then by BC url. The
	// url embeds ancestor cursors, so different ancestor selections land in
	// different cache entries.
	RowMeta map[string]map[string]model.RowMeta
	Error   *action.ViewError
}

// Notification is one transient user-facing notification.
type Notification struct {
	ID      string
	Kind    action.NotificationKind
	Message string
}

// PendingChanges maps BC name -> record id -> unsaved field deltas.
type PendingChanges map[string]map[string]map[string]any

// Store is the normalized client store.
//
// CRITICAL: Mutated only from the bus loop goroutine via Apply. Snapshots
// are views into live state and must not be retained past the pipeline call
// that received them; request goroutines copy what they need up front.
type Store struct {
	session       Session
	screen        Screen
	view          View
	data          map[string][]model.DataItem
	pending       PendingChanges
	router        model.Route
	notifications []Notification
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		view:    View{RowMeta: make(map[string]map[string]model.RowMeta)},
		data:    make(map[string][]model.DataItem),
		pending: make(PendingChanges),
	}
}

// Snapshot returns a read view of the store. Valid only on the bus loop
// goroutine for the duration of one pipeline call.
func (s *Store) Snapshot() *Snapshot {
	return &Snapshot{s: s}
}

// Snapshot is a read-only view of the store at one processing tick.
type Snapshot struct {
	s *Store
}

// Session returns the session slice.
func (sn *Snapshot) Session() Session { return sn.s.session }

// ScreenName returns the active screen name, empty before the first screen
// is selected.
func (sn *Snapshot) ScreenName() string { return sn.s.screen.Name }

// BC returns the live descriptor for a BC, nil for an unknown name.
func (sn *Snapshot) BC(bcName string) *model.BCDescriptor { return sn.s.screen.BCMap[bcName] }

// BCMap returns the active screen's BC descriptors.
func (sn *Snapshot) BCMap() model.BCMap { return sn.s.screen.BCMap }

// ViewName returns the active view name.
func (sn *Snapshot) ViewName() string { return sn.s.view.Name }

// Widgets returns the active view's widget metadata.
func (sn *Snapshot) Widgets() []model.Widget { return sn.s.view.Widgets }

// WidgetByName returns the named widget, nil when the view no longer has it
// (view changed mid-flight; callers treat this as a no-op).
func (sn *Snapshot) WidgetByName(name string) *model.Widget {
	for i := range sn.s.view.Widgets {
		if sn.s.view.Widgets[i].Name == name {
			return &sn.s.view.Widgets[i]
		}
	}
	return nil
}

// FirstWidgetForBC returns the first widget bound to a BC. Kept for
// backward compatibility with triggers that carry no widget name.
func (sn *Snapshot) FirstWidgetForBC(bcName string) *model.Widget {
	for i := range sn.s.view.Widgets {
		if sn.s.view.Widgets[i].BCName == bcName {
			return &sn.s.view.Widgets[i]
		}
	}
	return nil
}

// WidgetsForBC returns all widgets bound to a BC.
func (sn *Snapshot) WidgetsForBC(bcName string) []model.Widget {
	var out []model.Widget
	for _, w := range sn.s.view.Widgets {
		if w.BCName == bcName {
			out = append(out, w)
		}
	}
	return out
}

// Popup returns the active popup context.
func (sn *Snapshot) Popup() Popup { return sn.s.view.Popup }

// Data returns a BC's loaded records.
func (sn *Snapshot) Data(bcName string) []model.DataItem { return sn.s.data[bcName] }

// CursorLoaded reports whether a cursor references a currently loaded
// record of a BC.
func (sn *Snapshot) CursorLoaded(bcName, cursor string) bool {
	return model.FindRecord(sn.s.data[bcName], cursor) != nil
}

// Pending returns a BC's unsaved field deltas by record id.
func (sn *Snapshot) Pending(bcName string) map[string]map[string]any { return sn.s.pending[bcName] }

// RowMeta returns the cached row metadata for a BC url, nil when absent.
func (sn *Snapshot) RowMeta(bcName, bcURL string) *model.RowMeta {
	byURL := sn.s.view.RowMeta[bcName]
	if byURL == nil {
		return nil
	}
	if meta, ok := byURL[bcURL]; ok {
		return &meta
	}
	return nil
}

// Route returns the current desired route.
func (sn *Snapshot) Route() model.Route { return sn.s.router }

// ViewError returns the active view-level error banner, nil when none.
func (sn *Snapshot) ViewError() *action.ViewError { return sn.s.view.Error }

// Notifications returns active notifications in display order.
func (sn *Snapshot) Notifications() []Notification { return sn.s.notifications }
