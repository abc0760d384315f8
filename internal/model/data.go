package model

// DataItem is one record of a BC's data. ID and Vstamp are first-class;
// business fields live in Fields keyed by field name.
//
// Vstamp is the optimistic-concurrency version stamp the backend checks on
// save. A vstamp of -1 marks a record that only exists client-side.
type DataItem struct {
	ID     string
	Vstamp int64
	Fields map[string]any
}

// Get returns a business field value, nil when absent.
func (d *DataItem) Get(key string) any {
	if d == nil || d.Fields == nil {
		return nil
	}
	return d.Fields[key]
}

// Associated reports whether the record carries a truthy _associate flag.
// The flag marks records selected in multi-value association popups.
func (d *DataItem) Associated() bool {
	v, _ := d.Get(AssociateFlagKey).(bool)
	return v
}

// WithField returns a copy of the record with one field replaced. The
// original is never mutated; reducers rely on copy-on-write records.
func (d *DataItem) WithField(key string, value any) DataItem {
	fields := make(map[string]any, len(d.Fields)+1)
	for k, v := range d.Fields {
		fields[k] = v
	}
	fields[key] = value
	return DataItem{ID: d.ID, Vstamp: d.Vstamp, Fields: fields}
}

// AssociateFlagKey is the pseudo-field marking association popup selection.
const AssociateFlagKey = "_associate"

// MultivalueSingleValue is one selected entry of a multi-value field:
// the selected record's id plus its display value.
type MultivalueSingleValue struct {
	ID      string         `json:"id"`
	Value   string         `json:"value"`
	Options map[string]any `json:"options,omitempty"`
}

// OperationType is a backend-declared operation available on a record.
type OperationType string

// Operation describes one row-level operation from row metadata.
type Operation struct {
	Type           OperationType `json:"type"`
	Text           string        `json:"text"`
	Scope          string        `json:"scope,omitempty"`
	AutoSaveBefore bool          `json:"autoSaveBefore,omitempty"`
}

// RowMetaField carries field-level constraints and the current value for
// the record a row-meta response was fetched for.
type RowMetaField struct {
	Key          string   `json:"key"`
	CurrentValue any      `json:"currentValue,omitempty"`
	Disabled     bool     `json:"disabled,omitempty"`
	Required     bool     `json:"required,omitempty"`
	Hidden       bool     `json:"hidden,omitempty"`
	ForceActive  bool     `json:"forceActive,omitempty"`
	Values       []string `json:"values,omitempty"`
	DrillDown    string   `json:"drillDown,omitempty"`
}

// RowMeta describes available operations and field constraints for the
// record at a BC's url+cursor.
type RowMeta struct {
	Actions []Operation    `json:"actions"`
	Fields  []RowMetaField `json:"fields"`
}

// PostInvoke is a follow-up instruction the backend attaches to an operation
// result or a business-rule error (418).
type PostInvoke struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	URL     string `json:"url,omitempty"`
	URLName string `json:"urlName,omitempty"`
	BC      string `json:"bc,omitempty"`
}

// FindRecord returns the record with the given id, nil when absent.
func FindRecord(records []DataItem, id string) *DataItem {
	for i := range records {
		if records[i].ID == id {
			return &records[i]
		}
	}
	return nil
}
