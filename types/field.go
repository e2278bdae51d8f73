package types

import "fmt"

// FieldType identifies the logical type of a field's cells.
// The set is closed: the codec dispatches on it exhaustively, and
// AllFieldTypes must list every member so tests can verify coverage.
type FieldType int

const (
	// FieldText stores plain text values.
	FieldText FieldType = iota
	// FieldNumber stores numeric values.
	FieldNumber
	// FieldImage stores structured image attachments.
	FieldImage
	// FieldFile stores structured file attachments.
	FieldFile
	// FieldDate stores timestamps as epoch milliseconds.
	FieldDate
	// FieldSelection stores the id of a selected option.
	FieldSelection
	// FieldRelation stores references to records in another sheet.
	FieldRelation
)

// AllFieldTypes lists every supported field type in declaration order.
var AllFieldTypes = []FieldType{
	FieldText,
	FieldNumber,
	FieldImage,
	FieldFile,
	FieldDate,
	FieldSelection,
	FieldRelation,
}

// String returns the string representation of the FieldType
func (ft FieldType) String() string {
	switch ft {
	case FieldText:
		return "text"
	case FieldNumber:
		return "number"
	case FieldImage:
		return "image"
	case FieldFile:
		return "file"
	case FieldDate:
		return "date"
	case FieldSelection:
		return "selection"
	case FieldRelation:
		return "relation"
	default:
		return "unknown"
	}
}

// ParseFieldType converts a string like "text" back to a FieldType
func ParseFieldType(s string) (FieldType, error) {
	for _, ft := range AllFieldTypes {
		if ft.String() == s {
			return ft, nil
		}
	}
	return 0, fmt.Errorf("unknown field type: %q", s)
}

// MarshalText implements encoding.TextMarshaler so field types serialize
// as their names in JSON and YAML
func (ft FieldType) MarshalText() ([]byte, error) {
	if ft.String() == "unknown" {
		return nil, fmt.Errorf("cannot marshal unknown field type %d", int(ft))
	}
	return []byte(ft.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (ft *FieldType) UnmarshalText(text []byte) error {
	parsed, err := ParseFieldType(string(text))
	if err != nil {
		return err
	}
	*ft = parsed
	return nil
}

// OptionType defines which physical slot a selection field's option ids
// occupy: text-backed selections use the string slot, number-backed ones
// the number slot.
type OptionType int

const (
	// OptionText is the default backing type for selection options
	OptionText OptionType = iota
	// OptionNumber backs option values with the numeric slot
	OptionNumber
)

// SelectionOption is one choosable value of a selection field.
// Cells store the option's ID; resolving the display value and color
// is a presentation concern, not a codec one.
type SelectionOption struct {
	ID    string `json:"id" yaml:"id"`
	Value string `json:"value" yaml:"value"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// SelectionMetadata is the type metadata variant for selection fields
type SelectionMetadata struct {
	Options    []SelectionOption `json:"options" yaml:"options"`
	OptionType OptionType        `json:"optionType,omitempty" yaml:"optionType,omitempty"`
}

// Option returns the option with the given id
func (m SelectionMetadata) Option(id string) (SelectionOption, bool) {
	for _, opt := range m.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return SelectionOption{}, false
}

// TableMetadata holds presentation state for a field's column
type TableMetadata struct {
	Width    int  `json:"width,omitempty" yaml:"width,omitempty"`
	IsHidden bool `json:"isHidden,omitempty" yaml:"isHidden,omitempty"`
}

// Field is a typed column definition within a sheet.
//
// A field's ID is unique within its sheet for the field's entire lifetime;
// reordering or editing metadata never changes identity, only position and
// content. Fields are ordered by their position in the sheet's Fields slice,
// not by a separate order key.
type Field struct {
	ID   string    `json:"id" yaml:"id"`
	Name string    `json:"name" yaml:"name"`
	Type FieldType `json:"type" yaml:"type"`

	// Selection is the type metadata variant for FieldSelection fields.
	// Nil for every other type.
	Selection *SelectionMetadata `json:"selection,omitempty" yaml:"selection,omitempty"`

	// Table holds column presentation state (width, visibility)
	Table *TableMetadata `json:"table,omitempty" yaml:"table,omitempty"`
}

// optionBacking reports the physical backing for a selection field,
// defaulting to text when metadata is absent
func (f Field) optionBacking() OptionType {
	if f.Selection == nil {
		return OptionText
	}
	return f.Selection.OptionType
}
