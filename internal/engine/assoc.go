package engine

import (
	"context"
	"fmt"

	"github.com/tesler-ui/datasync/internal/action"
	"github.com/tesler-ui/datasync/internal/model"
	"github.com/tesler-ui/datasync/internal/state"
)

// assocPipeline maintains the selection list of tree-shaped multi-value
// association fields. It reacts to removeMultivalueTag in one of three
// modes, picked from the popup widget's hierarchy options:
//
//   - full hierarchy (one BC holds every level): group deselection folds
//     the node's associated subtree into a single field update, and a
//     parent left without associated children is removed too;
//   - separate BC per level: the record's own level BC gets its associate
//     flag cleared, the owning field gets the shortened value list;
//   - flat (no hierarchy): same two updates against the popup BC.
type assocPipeline struct {
	e *Engine
}

func (p *assocPipeline) Name() string { return "assoc" }

func (p *assocPipeline) Handle(ctx context.Context, act action.Action, sn *state.Snapshot) []action.Action {
	a, ok := act.(action.RemoveMultivalueTag)
	if !ok {
		return nil
	}
	w := popupWidget(sn, a.PopupBCName)
	switch {
	case w != nil && w.IsFullHierarchy():
		return p.removeFullHierarchy(sn, w, a)
	case w != nil && len(w.Options.Hierarchy) > 0:
		return p.removeLeveled(sn, w, a)
	default:
		return p.removeFlat(a)
	}
}

// removeFullHierarchy filters the removed node out of the selection list and
// emits one field update. Under group deselection the node's associated
// children go with it (the full descendant subtree in traverse mode), and a
// parent whose last associated child was just removed is removed as well:
// folded into the same list normally, re-dispatched as a fresh removal in
// traverse mode.
func (p *assocPipeline) removeFullHierarchy(sn *state.Snapshot, w *model.Widget, a action.RemoveMultivalueTag) []action.Action {
	records := mergedRecords(sn, a.PopupBCName)
	parentKey := w.ParentIDKey()

	removed := map[string]bool{a.RemovedItem.ID: true}
	if w.Options.HierarchyGroupDeselection {
		collectAssociatedDescendants(records, parentKey, a.RemovedItem.ID, w.Options.HierarchyTraverse, removed)
	}

	var followUps []action.Action
	if w.Options.HierarchyGroupDeselection {
		node := model.FindRecord(records, a.RemovedItem.ID)
		for node != nil {
			parentID := stringField(node, parentKey)
			if parentID == "" || associatedSiblingLeft(records, parentKey, parentID, removed) {
				break
			}
			if w.Options.HierarchyTraverse {
				// The parent is removed through a removal cycle of its own
				// rather than folded in, so its subtree gets the same
				// treatment the triggering node just got.
				withParent := copySet(removed)
				withParent[parentID] = true
				followUps = append(followUps, action.RemoveMultivalueTag{
					BCName:            a.BCName,
					PopupBCName:       a.PopupBCName,
					Cursor:            a.Cursor,
					AssociateFieldKey: a.AssociateFieldKey,
					DataItem:          filterSelection(a.DataItem, withParent),
					RemovedItem:       selectionEntry(sn, records, a.DataItem, parentID),
				})
				break
			}
			removed[parentID] = true
			node = model.FindRecord(records, parentID)
		}
	}

	out := []action.Action{action.ChangeDataItem{
		BCName:   a.BCName,
		Cursor:   a.Cursor,
		DataItem: map[string]any{a.AssociateFieldKey: filterSelection(a.DataItem, removed)},
	}}
	return append(out, followUps...)
}

// removeLeveled handles separate-BC-per-level widgets. The removed record
// lives in one of the configured level BCs; it is located by its id in the
// pending edits of each level in order.
func (p *assocPipeline) removeLeveled(sn *state.Snapshot, w *model.Widget, a action.RemoveMultivalueTag) []action.Action {
	holder := a.PopupBCName
	for _, lvl := range w.Options.Hierarchy {
		if byID := sn.Pending(lvl.BCName); byID != nil {
			if _, ok := byID[a.RemovedItem.ID]; ok {
				holder = lvl.BCName
				break
			}
		}
	}
	return []action.Action{
		action.ChangeDataItem{
			BCName:   holder,
			Cursor:   a.RemovedItem.ID,
			DataItem: map[string]any{model.AssociateFlagKey: false},
		},
		action.ChangeDataItem{
			BCName:   a.BCName,
			Cursor:   a.Cursor,
			DataItem: map[string]any{a.AssociateFieldKey: a.DataItem},
		},
	}
}

func (p *assocPipeline) removeFlat(a action.RemoveMultivalueTag) []action.Action {
	return []action.Action{
		action.ChangeDataItem{
			BCName:   a.PopupBCName,
			Cursor:   a.RemovedItem.ID,
			DataItem: map[string]any{model.AssociateFlagKey: false},
		},
		action.ChangeDataItem{
			BCName:   a.BCName,
			Cursor:   a.Cursor,
			DataItem: map[string]any{a.AssociateFieldKey: a.DataItem},
		},
	}
}

// popupWidget resolves the widget configuring a popup BC: either bound to
// the BC directly, or listing it as one of its hierarchy levels.
func popupWidget(sn *state.Snapshot, bcName string) *model.Widget {
	if w := sn.FirstWidgetForBC(bcName); w != nil {
		return w
	}
	widgets := sn.Widgets()
	for i := range widgets {
		for _, lvl := range widgets[i].Options.Hierarchy {
			if lvl.BCName == bcName {
				return &widgets[i]
			}
		}
	}
	return nil
}

// mergedRecords overlays a BC's pending edits onto its stored records,
// giving the node state as the user currently sees it.
func mergedRecords(sn *state.Snapshot, bcName string) []model.DataItem {
	stored := sn.Data(bcName)
	pending := sn.Pending(bcName)
	out := make([]model.DataItem, 0, len(stored))
	for _, rec := range stored {
		if delta, ok := pending[rec.ID]; ok {
			for k, v := range delta {
				rec = rec.WithField(k, v)
			}
		}
		out = append(out, rec)
	}
	return out
}

// collectAssociatedDescendants adds the associated children of node id to
// the set; with traverse it keeps going down the subtree.
func collectAssociatedDescendants(records []model.DataItem, parentKey, id string, traverse bool, set map[string]bool) {
	for i := range records {
		rec := &records[i]
		if stringField(rec, parentKey) != id || !rec.Associated() || set[rec.ID] {
			continue
		}
		set[rec.ID] = true
		if traverse {
			collectAssociatedDescendants(records, parentKey, rec.ID, traverse, set)
		}
	}
}

// associatedSiblingLeft reports whether any child of parentID is still
// counted as associated once the pending removals are taken out. The check
// runs over merged record state, never over the incoming selection list, so
// the verdict does not depend on that list's ordering.
func associatedSiblingLeft(records []model.DataItem, parentKey, parentID string, removed map[string]bool) bool {
	for i := range records {
		rec := &records[i]
		if stringField(rec, parentKey) == parentID && rec.Associated() && !removed[rec.ID] {
			return true
		}
	}
	return false
}

func filterSelection(list []model.MultivalueSingleValue, removed map[string]bool) []model.MultivalueSingleValue {
	out := make([]model.MultivalueSingleValue, 0, len(list))
	for _, v := range list {
		if !removed[v.ID] {
			out = append(out, v)
		}
	}
	return out
}

// selectionEntry finds the selection entry for a record id, building one
// from the record's display value when the list no longer carries it.
func selectionEntry(sn *state.Snapshot, records []model.DataItem, list []model.MultivalueSingleValue, id string) model.MultivalueSingleValue {
	for _, v := range list {
		if v.ID == id {
			return v
		}
	}
	entry := model.MultivalueSingleValue{ID: id}
	if rec := model.FindRecord(records, id); rec != nil {
		if key := sn.Popup().AssocValueKey; key != "" {
			if v := rec.Get(key); v != nil {
				entry.Value = fmt.Sprint(v)
			}
		}
	}
	return entry
}

func stringField(rec *model.DataItem, key string) string {
	v := rec.Get(key)
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func copySet(set map[string]bool) map[string]bool {
	out := make(map[string]bool, len(set)+1)
	for k := range set {
		out[k] = true
	}
	return out
}
