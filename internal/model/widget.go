package model

// WidgetType identifies the rendering type of a widget. Only the types the
// sync engine cares about are enumerated; rendering-only types pass through
// untouched.
type WidgetType string

const (
	WidgetList       WidgetType = "List"
	WidgetForm       WidgetType = "Form"
	WidgetInfo       WidgetType = "Info"
	WidgetDataGrid   WidgetType = "DataGrid"
	WidgetAssocList  WidgetType = "AssocListPopup"
	WidgetPickList   WidgetType = "PickListPopup"
	WidgetFlatTree   WidgetType = "FlatTree"
	WidgetFlatTreePo WidgetType = "FlatTreePopup"
)

// lazyWidgetTypes are the popup widget types that load data only while their
// popup is actually open.
var lazyWidgetTypes = map[WidgetType]bool{
	WidgetAssocList:  true,
	WidgetPickList:   true,
	WidgetFlatTreePo: true,
}

// IsLazy reports whether a widget type is a popup type that must not take
// part in the fetch cascade while its popup is closed.
func (t WidgetType) IsLazy() bool {
	return lazyWidgetTypes[t]
}

// PaginationMode declares how a widget pages through data.
type PaginationMode string

const (
	// PaginationPage is classic prev/next paging.
	PaginationPage PaginationMode = "page"
	// PaginationInfinite accumulates pages ("load more"); a force-update must
	// re-request everything seen so far, not just the current page.
	PaginationInfinite PaginationMode = "loadMore"
)

// HierarchyLevel configures one level of a separate-BC hierarchy widget.
type HierarchyLevel struct {
	BCName         string `json:"bcName" yaml:"bcName"`
	AssocValueKey  string `json:"assocValueKey,omitempty" yaml:"assocValueKey,omitempty"`
	RadioButton    bool   `json:"radio,omitempty" yaml:"radio,omitempty"`
	SearchDisabled bool   `json:"searchDisabled,omitempty" yaml:"searchDisabled,omitempty"`
}

// WidgetOptions carries per-widget fetch semantics declared by the backend.
type WidgetOptions struct {
	// Hierarchy configures separate-BC-per-level tree widgets.
	Hierarchy []HierarchyLevel `json:"hierarchy,omitempty" yaml:"hierarchy,omitempty"`
	// HierarchyFull marks a widget whose whole tree lives in one BC and is
	// loaded in a single unbounded request (limit 0, filters suppressed).
	HierarchyFull bool `json:"hierarchyFull,omitempty" yaml:"hierarchyFull,omitempty"`
	// HierarchyParentKey names the field holding a node's parent record id
	// in full-hierarchy mode. Defaults to "parentId".
	HierarchyParentKey string `json:"hierarchyParentKey,omitempty" yaml:"hierarchyParentKey,omitempty"`
	// HierarchyGroupDeselection removes a node's associated children together
	// with the node itself.
	HierarchyGroupDeselection bool `json:"hierarchyGroupDeselection,omitempty" yaml:"hierarchyGroupDeselection,omitempty"`
	// HierarchyTraverse extends group deselection from direct children to the
	// full descendant subtree and re-dispatches parent removal instead of
	// folding it into the same update.
	HierarchyTraverse bool `json:"hierarchyTraverse,omitempty" yaml:"hierarchyTraverse,omitempty"`
	// Pagination selects the widget's paging behavior. Empty means page mode.
	Pagination PaginationMode `json:"pagination,omitempty" yaml:"pagination,omitempty"`
}

// ShowCondition suppresses a widget (and its descendant subtree) unless the
// referenced field of the referenced BC's selected record holds the expected
// value.
type ShowCondition struct {
	BCName     string `json:"bcName" yaml:"bcName"`
	FieldKey   string `json:"fieldKey" yaml:"fieldKey"`
	FieldValue string `json:"fieldValue" yaml:"fieldValue"`
}

// WidgetField is one renderable field of a widget. The sync engine only needs
// the key; everything else is rendering concern.
type WidgetField struct {
	Key   string `json:"key" yaml:"key"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Widget associates a renderable widget with a BC and declares its fetch
// semantics. Read-only during a view's lifetime; replaced wholesale on view
// change.
type Widget struct {
	Name          string         `json:"name" yaml:"name"`
	Type          WidgetType     `json:"type" yaml:"type"`
	BCName        string         `json:"bcName" yaml:"bcName"`
	Fields        []WidgetField  `json:"fields,omitempty" yaml:"fields,omitempty"`
	Options       WidgetOptions  `json:"options,omitempty" yaml:"options,omitempty"`
	ShowCondition *ShowCondition `json:"showCondition,omitempty" yaml:"showCondition,omitempty"`
}

// IsHierarchy reports whether the widget renders a tree of associated
// records, in either separate-BC or full mode.
func (w *Widget) IsHierarchy() bool {
	return len(w.Options.Hierarchy) > 0 || w.Options.HierarchyFull
}

// IsFullHierarchy reports whether all hierarchy levels share one BC. Full
// hierarchy widgets disable standard filter/pagination in favor of loading
// the complete tree in one request.
func (w *Widget) IsFullHierarchy() bool {
	return w.Options.HierarchyFull
}

// ParentIDKey returns the field name holding a node's parent id for
// full-hierarchy widgets.
func (w *Widget) ParentIDKey() string {
	if w.Options.HierarchyParentKey != "" {
		return w.Options.HierarchyParentKey
	}
	return "parentId"
}
