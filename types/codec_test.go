package types

import (
	"reflect"
	"testing"
	"time"
)

func TestEncodeCellSlotChoice(t *testing.T) {
	attachment := map[string]any{"url": "https://example.com/a.png", "name": "a.png"}

	tests := []struct {
		name       string
		field      Field
		value      any
		wantString *string
		wantNumber *float64
		wantJSON   any
	}{
		{
			name:       "text goes to the string slot",
			field:      Field{ID: "f1", Type: FieldText},
			value:      "hello",
			wantString: strPtr("hello"),
		},
		{
			name:       "non-string text input is stringified",
			field:      Field{ID: "f1", Type: FieldText},
			value:      42,
			wantString: strPtr("42"),
		},
		{
			name:       "number goes to the number slot",
			field:      Field{ID: "f2", Type: FieldNumber},
			value:      3.5,
			wantNumber: numPtr(3.5),
		},
		{
			name:       "integer input coerces to the number slot",
			field:      Field{ID: "f2", Type: FieldNumber},
			value:      7,
			wantNumber: numPtr(7),
		},
		{
			name:       "date stores epoch millis in the number slot",
			field:      Field{ID: "f3", Type: FieldDate},
			value:      time.UnixMilli(1700000000000).UTC(),
			wantNumber: numPtr(1700000000000),
		},
		{
			name:       "text-backed selection stores the option id as string",
			field:      Field{ID: "f4", Type: FieldSelection, Selection: &SelectionMetadata{Options: []SelectionOption{{ID: "opt1", Value: "Red"}}}},
			value:      "opt1",
			wantString: strPtr("opt1"),
		},
		{
			name:       "number-backed selection uses the number slot",
			field:      Field{ID: "f5", Type: FieldSelection, Selection: &SelectionMetadata{OptionType: OptionNumber}},
			value:      2,
			wantNumber: numPtr(2),
		},
		{
			name:     "relation stores structured value as JSON",
			field:    Field{ID: "f6", Type: FieldRelation},
			value:    []string{"rec1", "rec2"},
			wantJSON: []string{"rec1", "rec2"},
		},
		{
			name:     "image stores structured value as JSON",
			field:    Field{ID: "f7", Type: FieldImage},
			value:    attachment,
			wantJSON: attachment,
		},
		{
			name:  "nil value encodes as empty",
			field: Field{ID: "f1", Type: FieldText},
			value: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeCell(tt.field, tt.value)
			if err != nil {
				t.Fatalf("EncodeCell failed: %v", err)
			}
			if err := got.Validate(); err != nil {
				t.Fatalf("encoded value violates slot invariant: %v", err)
			}
			if !ptrEq(got.DataString, tt.wantString) {
				t.Errorf("DataString = %v, want %v", deref(got.DataString), deref(tt.wantString))
			}
			if !floatPtrEq(got.DataNumber, tt.wantNumber) {
				t.Errorf("DataNumber = %v, want %v", derefF(got.DataNumber), derefF(tt.wantNumber))
			}
			if !reflect.DeepEqual(got.DataJSON, tt.wantJSON) {
				t.Errorf("DataJSON = %v, want %v", got.DataJSON, tt.wantJSON)
			}
		})
	}
}

func TestEncodeCellRejectsBadCoercion(t *testing.T) {
	if _, err := EncodeCell(Field{ID: "n", Type: FieldNumber}, "not a number"); err == nil {
		t.Error("expected error coercing non-numeric string to number")
	}
	if _, err := EncodeCell(Field{ID: "d", Type: FieldDate}, "tomorrow"); err == nil {
		t.Error("expected error coercing string to date")
	}
	if _, err := EncodeCell(Field{ID: "x", Type: FieldType(99)}, "v"); err == nil {
		t.Error("expected error for unknown field type")
	}
}

// TestCodecRoundTrip verifies decode(encode(v)) == v for a representative
// value of every field type. Date with epoch 0 is the documented exception
// (it decodes as absent), covered separately below.
func TestCodecRoundTrip(t *testing.T) {
	values := map[FieldType]any{
		FieldText:      "some text",
		FieldNumber:    12.25,
		FieldImage:     map[string]any{"url": "https://example.com/i.png"},
		FieldFile:      map[string]any{"url": "https://example.com/f.pdf", "size": 120},
		FieldDate:      time.UnixMilli(1700000000000).UTC(),
		FieldSelection: "opt-a",
		FieldRelation:  []string{"r1", "r2"},
	}

	for _, ft := range AllFieldTypes {
		value, ok := values[ft]
		if !ok {
			t.Fatalf("no representative value for field type %s; codec coverage incomplete", ft)
		}
		field := Field{ID: "f", Type: ft}
		if ft == FieldSelection {
			field.Selection = &SelectionMetadata{Options: []SelectionOption{{ID: "opt-a", Value: "A"}}}
		}

		encoded, err := EncodeCell(field, value)
		if err != nil {
			t.Fatalf("%s: encode failed: %v", ft, err)
		}
		decoded := DecodeCell(field, encoded)
		if !reflect.DeepEqual(decoded, value) {
			t.Errorf("%s: round trip = %#v, want %#v", ft, decoded, value)
		}
	}
}

func TestDecodeDateEpochZeroIsAbsent(t *testing.T) {
	field := Field{ID: "d", Type: FieldDate}

	encoded, err := EncodeCell(field, time.UnixMilli(0).UTC())
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded := DecodeCell(field, encoded)
	got, ok := decoded.(time.Time)
	if !ok {
		t.Fatalf("decoded %T, want time.Time", decoded)
	}
	if !got.IsZero() {
		t.Errorf("epoch 0 decoded to %v, want zero time", got)
	}

	// Empty number slot decodes the same way.
	if got := DecodeCell(field, CellValue{}); !got.(time.Time).IsZero() {
		t.Errorf("empty date cell decoded to %v, want zero time", got)
	}
}

func TestDecodeEmptyCell(t *testing.T) {
	if got := DecodeCell(Field{ID: "t", Type: FieldText}, CellValue{}); got != nil {
		t.Errorf("empty text cell decoded to %v, want nil", got)
	}
}

func TestCellListSetPreservesSnapshot(t *testing.T) {
	now := time.Now()
	list := CellList{}.
		Set("a", StringValue("x"), now).
		Set("b", NumberValue(1), now)

	snapshot := list.Clone()
	updated := list.Set("a", StringValue("y"), now)

	if v, _ := snapshot.Get("a"); *v.DataString != "x" {
		t.Errorf("snapshot mutated: a = %q, want %q", *v.DataString, "x")
	}
	if v, _ := updated.Get("a"); *v.DataString != "y" {
		t.Errorf("updated list: a = %q, want %q", *v.DataString, "y")
	}
	if len(updated) != 2 {
		t.Errorf("expected 2 cells after overwrite, got %d", len(updated))
	}
}

func strPtr(s string) *string   { return &s }
func numPtr(n float64) *float64 { return &n }

func deref(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func derefF(p *float64) float64 {
	if p == nil {
		return -1
	}
	return *p
}

func ptrEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func floatPtrEq(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
