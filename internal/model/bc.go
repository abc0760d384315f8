package model

import (
	"fmt"
	"sort"
	"strings"
)

// BCDescriptor is the client-side state of one business component.
//
// One descriptor exists per declared BC for the lifetime of the active view.
// It is mutated only by reducers applying fetch-success/failure and
// cursor-change actions; pipelines read it through snapshots.
type BCDescriptor struct {
	Name       string
	ParentName string // empty for a root BC
	URL        string // url template, e.g. "parent/:id/child"
	Cursor     string // selected record id; empty when nothing is selected
	Page       int
	Limit      int
	HasNext    bool
	Loading    bool
	Filters    []Filter
	Sorters    []Sorter
}

// BCMap indexes descriptors by BC name.
type BCMap map[string]*BCDescriptor

// AncestorChain returns the chain of ancestors for a BC, root-first,
// excluding the BC itself. A broken parent link terminates the walk
// (the dangling name is simply not part of the chain).
func (m BCMap) AncestorChain(bcName string) []string {
	var chain []string
	bc := m[bcName]
	for bc != nil && bc.ParentName != "" {
		parent := m[bc.ParentName]
		if parent == nil {
			break
		}
		chain = append(chain, parent.Name)
		bc = parent
	}
	// Collected child-first; reverse to root-first.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// BuildBCURL builds the request url for a BC: every ancestor contributes
// "name/cursor" root-first, then the BC's own name, then, when includeSelf
// is set, the BC's own cursor.
//
// The resulting url embeds ancestor cursors, so two different ancestor
// selections produce two different urls. Row-meta caching relies on this.
func (m BCMap) BuildBCURL(bcName string, includeSelf bool) string {
	var parts []string
	for _, ancestor := range m.AncestorChain(bcName) {
		parts = append(parts, ancestor)
		if cursor := m[ancestor].Cursor; cursor != "" {
			parts = append(parts, cursor)
		}
	}
	parts = append(parts, bcName)
	if includeSelf {
		if bc := m[bcName]; bc != nil && bc.Cursor != "" {
			parts = append(parts, bc.Cursor)
		}
	}
	return strings.Join(parts, "/")
}

// FilterType enumerates the comparison operators a filter can carry.
// The string value is the operator suffix used on the wire.
type FilterType string

const (
	FilterEquals         FilterType = "equals"
	FilterContains       FilterType = "contains"
	FilterSpecified      FilterType = "specified"
	FilterEqualsOneOf    FilterType = "equalsOneOf"
	FilterContainsOneOf  FilterType = "containsOneOf"
	FilterGreaterOrEqual FilterType = "greaterOrEqualThan"
	FilterLessOrEqual    FilterType = "lessOrEqualThan"
)

// Filter is one active filter on a BC.
type Filter struct {
	Type      FilterType
	FieldName string
	Value     string
}

// SortDirection is the direction of one sorter.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Sorter is one active sorter on a BC.
type Sorter struct {
	FieldName string
	Direction SortDirection
}

// GetFilters serializes active filters to a flat query-parameter record.
// Keys are operator-suffixed field names: "field.specified" -> "true".
// Pure function: same input always yields the same record.
func GetFilters(filters []Filter) map[string]string {
	if len(filters) == 0 {
		return nil
	}
	params := make(map[string]string, len(filters))
	for _, f := range filters {
		params[fmt.Sprintf("%s.%s", f.FieldName, f.Type)] = f.Value
	}
	return params
}

// GetSorters serializes active sorters to a flat query-parameter record.
// Each sorter becomes "_sort.<index>.<direction>" -> field name, preserving
// sorter order so the backend applies them with stable priority.
func GetSorters(sorters []Sorter) map[string]string {
	if len(sorters) == 0 {
		return nil
	}
	params := make(map[string]string, len(sorters))
	for i, s := range sorters {
		params[fmt.Sprintf("_sort.%d.%s", i, s.Direction)] = s.FieldName
	}
	return params
}

// SortedKeys returns the keys of a parameter record in lexicographic order.
// Used for deterministic logging and journal serialization of fetch params.
func SortedKeys(params map[string]string) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
