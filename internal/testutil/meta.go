package testutil

import "github.com/tesler-ui/datasync/internal/model"

// Screen builds a one-view screen named like its view ("<name>-view") for
// tests that do not care about multi-view navigation.
func Screen(name string, bcs []model.BCMeta, widgets ...model.Widget) model.ScreenMeta {
	return model.ScreenMeta{
		Name:          name,
		DefaultScreen: true,
		Views: []model.ViewMeta{{
			Name:    name + "-view",
			URL:     "/" + name + "/" + name + "-view",
			Widgets: widgets,
		}},
		BCs: bcs,
	}
}

// BC builds a root BC declaration.
func BC(name, url string) model.BCMeta {
	return model.BCMeta{Name: name, URL: url}
}

// ChildBC builds a BC declaration parented on another BC.
func ChildBC(name, parent, url string) model.BCMeta {
	return model.BCMeta{Name: name, ParentName: parent, URL: url}
}

// ListWidget builds a plain list widget bound to a BC.
func ListWidget(name, bcName string) model.Widget {
	return model.Widget{Name: name, Type: model.WidgetList, BCName: bcName}
}

// AssocPopupWidget builds a lazy association popup widget bound to a BC.
func AssocPopupWidget(name, bcName string) model.Widget {
	return model.Widget{Name: name, Type: model.WidgetAssocList, BCName: bcName}
}

// FullHierarchyWidget builds an association popup whose whole tree lives in
// one BC.
func FullHierarchyWidget(name, bcName string, groupDeselection, traverse bool) model.Widget {
	return model.Widget{
		Name:   name,
		Type:   model.WidgetAssocList,
		BCName: bcName,
		Options: model.WidgetOptions{
			HierarchyFull:             true,
			HierarchyGroupDeselection: groupDeselection,
			HierarchyTraverse:         traverse,
		},
	}
}

// Record builds a data item with business fields.
func Record(id string, fields map[string]any) model.DataItem {
	if fields == nil {
		fields = map[string]any{}
	}
	return model.DataItem{ID: id, Vstamp: 1, Fields: fields}
}
