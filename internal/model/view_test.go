package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBCMapDefaults(t *testing.T) {
	screen := ScreenMeta{
		Name: "docs",
		BCs: []BCMeta{
			{Name: "docs", URL: "docs"},
			{Name: "lines", ParentName: "docs", URL: "docs/:id/lines", Page: 3, Limit: 20},
		},
	}

	m := screen.BuildBCMap()
	require.Len(t, m, 2)
	assert.Equal(t, 1, m["docs"].Page)
	assert.Equal(t, 5, m["docs"].Limit)
	assert.Equal(t, 3, m["lines"].Page)
	assert.Equal(t, 20, m["lines"].Limit)
	assert.Equal(t, "docs", m["lines"].ParentName)
}

func TestDefaultView(t *testing.T) {
	screen := ScreenMeta{
		Name:        "docs",
		PrimaryView: "detail",
		Views: []ViewMeta{
			{Name: "list"},
			{Name: "detail"},
		},
	}
	require.NotNil(t, screen.DefaultView())
	assert.Equal(t, "detail", screen.DefaultView().Name)

	// Dangling primaryView falls back to the first view.
	screen.PrimaryView = "missing"
	assert.Equal(t, "list", screen.DefaultView().Name)

	screen.Views = nil
	assert.Nil(t, screen.DefaultView())
}

func TestDefaultScreen(t *testing.T) {
	screens := []ScreenMeta{
		{Name: "first"},
		{Name: "home", DefaultScreen: true},
	}
	require.NotNil(t, DefaultScreen(screens))
	assert.Equal(t, "home", DefaultScreen(screens).Name)

	assert.Equal(t, "first", DefaultScreen(screens[:1]).Name)
	assert.Nil(t, DefaultScreen(nil))
}

func TestWidgetHierarchyHelpers(t *testing.T) {
	flat := Widget{Type: WidgetList}
	assert.False(t, flat.IsHierarchy())
	assert.Equal(t, "parentId", flat.ParentIDKey())

	full := Widget{Options: WidgetOptions{HierarchyFull: true, HierarchyParentKey: "groupId"}}
	assert.True(t, full.IsHierarchy())
	assert.True(t, full.IsFullHierarchy())
	assert.Equal(t, "groupId", full.ParentIDKey())

	leveled := Widget{Options: WidgetOptions{Hierarchy: []HierarchyLevel{{BCName: "regions"}}}}
	assert.True(t, leveled.IsHierarchy())
	assert.False(t, leveled.IsFullHierarchy())
}

func TestLazyWidgetTypes(t *testing.T) {
	assert.True(t, WidgetAssocList.IsLazy())
	assert.True(t, WidgetPickList.IsLazy())
	assert.True(t, WidgetFlatTreePo.IsLazy())
	assert.False(t, WidgetList.IsLazy())
	assert.False(t, WidgetForm.IsLazy())
}

func TestDataItemWithFieldCopies(t *testing.T) {
	orig := DataItem{ID: "r1", Vstamp: 7, Fields: map[string]any{"name": "a"}}
	mod := orig.WithField("name", "b")

	assert.Equal(t, "a", orig.Get("name"))
	assert.Equal(t, "b", mod.Get("name"))
	assert.Equal(t, int64(7), mod.Vstamp)
}

func TestDataItemAssociated(t *testing.T) {
	rec := DataItem{ID: "r1", Fields: map[string]any{AssociateFlagKey: true}}
	assert.True(t, rec.Associated())

	rec.Fields[AssociateFlagKey] = "yes" // non-bool is not truthy
	assert.False(t, rec.Associated())

	var nilRec *DataItem
	assert.Nil(t, nilRec.Get("anything"))
}

func TestFindRecord(t *testing.T) {
	records := []DataItem{{ID: "a"}, {ID: "b"}}
	require.NotNil(t, FindRecord(records, "b"))
	assert.Equal(t, "b", FindRecord(records, "b").ID)
	assert.Nil(t, FindRecord(records, "z"))
	assert.Nil(t, FindRecord(nil, "a"))
}
