package types

import (
	"fmt"
	"time"
)

// Record is a row within a sheet.
//
// ID is the stable internal identifier; Slug is the stable external
// identifier the UI addresses records by. Both are client-generated before
// any remote round-trip so optimistic inserts have identity from the start.
// Order values are totally ordered and unique within a sheet and determine
// display sequence.
type Record struct {
	ID        string    `json:"id"`
	SheetID   string    `json:"sheetId"`
	Slug      string    `json:"slug"`
	Order     int64     `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
}

// CellValue is the physical three-slot encoding of a cell. Exactly one slot
// is non-nil, or all are nil meaning "empty". Which slot is populated is a
// pure function of the owning field's type (see EncodeCell).
type CellValue struct {
	DataString *string  `json:"dataString,omitempty"`
	DataNumber *float64 `json:"dataNumber,omitempty"`
	DataJSON   any      `json:"dataJson,omitempty"`
}

// IsEmpty reports whether no slot is populated
func (v CellValue) IsEmpty() bool {
	return v.DataString == nil && v.DataNumber == nil && v.DataJSON == nil
}

// Validate checks the one-slot invariant
func (v CellValue) Validate() error {
	populated := 0
	if v.DataString != nil {
		populated++
	}
	if v.DataNumber != nil {
		populated++
	}
	if v.DataJSON != nil {
		populated++
	}
	if populated > 1 {
		return fmt.Errorf("cell value has %d populated slots, want at most one", populated)
	}
	return nil
}

// StringValue builds a CellValue occupying the string slot
func StringValue(s string) CellValue {
	return CellValue{DataString: &s}
}

// NumberValue builds a CellValue occupying the number slot
func NumberValue(n float64) CellValue {
	return CellValue{DataNumber: &n}
}

// JSONValue builds a CellValue occupying the opaque JSON slot
func JSONValue(v any) CellValue {
	return CellValue{DataJSON: v}
}

// Cell attaches a value to one field of one record
type Cell struct {
	FieldID    string    `json:"fieldId"`
	Value      CellValue `json:"value"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// CellList is a record's cells as an association list of (fieldId, value)
// pairs. Lookup is a linear scan, which is fine at typical field counts.
type CellList []Cell

// Get returns the value for a field
func (l CellList) Get(fieldID string) (CellValue, bool) {
	for _, c := range l {
		if c.FieldID == fieldID {
			return c.Value, true
		}
	}
	return CellValue{}, false
}

// Set returns a copy of the list with the field's entry replaced, or
// appended if the field had no cell yet. The receiver is not modified,
// so snapshots taken before a Set stay intact.
func (l CellList) Set(fieldID string, value CellValue, modifiedAt time.Time) CellList {
	out := make(CellList, len(l), len(l)+1)
	copy(out, l)
	for i, c := range out {
		if c.FieldID == fieldID {
			out[i] = Cell{FieldID: fieldID, Value: value, ModifiedAt: modifiedAt}
			return out
		}
	}
	return append(out, Cell{FieldID: fieldID, Value: value, ModifiedAt: modifiedAt})
}

// Remove returns a copy of the list without the field's entry
func (l CellList) Remove(fieldID string) CellList {
	out := make(CellList, 0, len(l))
	for _, c := range l {
		if c.FieldID != fieldID {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns an independent copy of the list
func (l CellList) Clone() CellList {
	if l == nil {
		return nil
	}
	out := make(CellList, len(l))
	copy(out, l)
	return out
}
