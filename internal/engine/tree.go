package engine

import (
	"fmt"

	"github.com/tesler-ui/datasync/internal/model"
	"github.com/tesler-ui/datasync/internal/state"
)

// The tree resolver computes which widgets and BCs take part in a fetch
// cascade. A missing widget or BC always yields an empty result, never an
// error: it means the view or screen changed mid-flight and the cascade is
// stale, which callers must treat as a no-op.

// ChildBC is one child BC eligible for a cascading fetch, together with the
// widget that makes it relevant.
type ChildBC struct {
	BCName          string
	WidgetName      string
	IsHierarchy     bool
	IsFullHierarchy bool
}

// resolveWidget finds the widget owning a fetch: by name when the trigger
// carries one, else the first widget bound to the BC (kept for backward
// compatibility with triggers predating widget names). Nil when the view no
// longer contains a match.
func resolveWidget(sn *state.Snapshot, bcName, widgetName string) *model.Widget {
	if widgetName != "" {
		if w := sn.WidgetByName(widgetName); w != nil {
			return w
		}
	}
	return sn.FirstWidgetForBC(bcName)
}

// visibleChildren returns the child BCs of bcName referenced by at least one
// currently relevant widget, in widget declaration order, one entry per BC.
func visibleChildren(sn *state.Snapshot, bcName string) []ChildBC {
	bcMap := sn.BCMap()
	seen := make(map[string]bool)
	var children []ChildBC
	for _, w := range sn.Widgets() {
		bc := bcMap[w.BCName]
		if bc == nil || bc.ParentName != bcName || seen[w.BCName] {
			continue
		}
		if widgetSuppressed(sn, &w) {
			continue
		}
		seen[w.BCName] = true
		children = append(children, ChildBC{
			BCName:          w.BCName,
			WidgetName:      w.Name,
			IsHierarchy:     w.IsHierarchy(),
			IsFullHierarchy: w.IsFullHierarchy(),
		})
	}
	return children
}

// widgetSuppressed reports whether a widget sits out the fetch cascade.
//
// Two independent reasons:
//   - the widget is a lazy popup type, no non-lazy widget shares its BC,
//     and the active popup (if any) is for some other BC - lazy widgets
//     only load when their popup is actually open;
//   - the widget's show-condition, or the show-condition of any widget on
//     an ancestor BC, is unsatisfied - an unsatisfied condition suppresses
//     the whole descendant subtree.
func widgetSuppressed(sn *state.Snapshot, w *model.Widget) bool {
	if lazySuppressed(sn, w) {
		return true
	}
	return hiddenByShowCondition(sn, w)
}

func lazySuppressed(sn *state.Snapshot, w *model.Widget) bool {
	if !w.Type.IsLazy() {
		return false
	}
	for _, other := range sn.WidgetsForBC(w.BCName) {
		if !other.Type.IsLazy() {
			return false
		}
	}
	popup := sn.Popup()
	return !popup.Active || popup.BCName != w.BCName
}

func hiddenByShowCondition(sn *state.Snapshot, w *model.Widget) bool {
	if w.ShowCondition != nil && !showConditionSatisfied(sn, w.ShowCondition) {
		return true
	}
	// Condition evaluated transitively: a widget is hidden if any widget
	// bound to an ancestor BC carries an unsatisfied show-condition.
	for _, ancestor := range sn.BCMap().AncestorChain(w.BCName) {
		for _, aw := range sn.WidgetsForBC(ancestor) {
			if aw.ShowCondition != nil && !showConditionSatisfied(sn, aw.ShowCondition) {
				return true
			}
		}
	}
	return false
}

// showConditionSatisfied evaluates a condition against the referenced BC's
// selected record. A missing BC, cursor, or record counts as unsatisfied.
func showConditionSatisfied(sn *state.Snapshot, sc *model.ShowCondition) bool {
	bc := sn.BC(sc.BCName)
	if bc == nil || bc.Cursor == "" {
		return false
	}
	record := model.FindRecord(sn.Data(sc.BCName), bc.Cursor)
	if record == nil {
		return false
	}
	value := record.Get(sc.FieldKey)
	if value == nil {
		return sc.FieldValue == ""
	}
	return fmt.Sprint(value) == sc.FieldValue
}

// fullHierarchyWidgetExists reports whether any widget of the view renders
// bcName as a full-hierarchy tree. Such a BC manages its own filtering and
// loads unbounded.
func fullHierarchyWidgetExists(sn *state.Snapshot, bcName string) bool {
	for _, w := range sn.WidgetsForBC(bcName) {
		if w.IsFullHierarchy() {
			return true
		}
	}
	return false
}
