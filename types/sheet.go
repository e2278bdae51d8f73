package types

import "time"

// Sheet is a user-defined table: an ordered list of typed fields plus the
// records that belong to it. A sheet exclusively owns its field list.
type Sheet struct {
	ID        string    `json:"id"`
	AppID     string    `json:"appId"`
	Name      string    `json:"name"`
	Fields    []Field   `json:"fields"`
	IsDeleted bool      `json:"isDeleted,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Field returns the field with the given id
func (s Sheet) Field(id string) (Field, bool) {
	for _, f := range s.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// FieldIndex returns the position of the field with the given id, or -1
func (s Sheet) FieldIndex(id string) int {
	for i, f := range s.Fields {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// FieldByName returns the first field with the given display name.
// Names are not guaranteed unique; ids are.
func (s Sheet) FieldByName(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// CloneFields returns a copy of the sheet's field list safe to splice
// without aliasing the original
func (s Sheet) CloneFields() []Field {
	fields := make([]Field, len(s.Fields))
	copy(fields, s.Fields)
	return fields
}
