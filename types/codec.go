package types

import (
	"fmt"
	"strconv"
	"time"
)

// EncodeCell maps a logical value to the three-slot physical encoding for
// the given field. A nil value encodes as the empty CellValue.
//
// Slot choice is a pure function of the field type: text and text-backed
// selections use the string slot; numbers, dates (epoch milliseconds) and
// number-backed selections use the number slot; everything structured
// (images, files, relations) goes to the opaque JSON slot.
//
// The switch is exhaustive over AllFieldTypes; an unlisted type is an error
// so a new field type cannot be added without updating the codec.
func EncodeCell(field Field, value any) (CellValue, error) {
	if value == nil {
		return CellValue{}, nil
	}

	switch field.Type {
	case FieldText:
		return StringValue(coerceString(value)), nil

	case FieldNumber:
		n, err := coerceNumber(value)
		if err != nil {
			return CellValue{}, fmt.Errorf("field %q: %w", field.ID, err)
		}
		return NumberValue(n), nil

	case FieldDate:
		millis, err := coerceEpochMillis(value)
		if err != nil {
			return CellValue{}, fmt.Errorf("field %q: %w", field.ID, err)
		}
		return NumberValue(float64(millis)), nil

	case FieldSelection:
		if field.optionBacking() == OptionNumber {
			n, err := coerceNumber(value)
			if err != nil {
				return CellValue{}, fmt.Errorf("field %q: %w", field.ID, err)
			}
			return NumberValue(n), nil
		}
		return StringValue(coerceString(value)), nil

	case FieldImage, FieldFile, FieldRelation:
		return JSONValue(value), nil

	default:
		return CellValue{}, fmt.Errorf("unsupported field type %q", field.Type)
	}
}

// DecodeCell maps a physical cell back to its logical value. It returns nil
// for an empty cell.
//
// Dates are reconstructed from the number slot; a zero number decodes to the
// zero time.Time, which conflates epoch 0 with "absent". That matches the
// observable behavior this codec round-trips against and is the one
// documented exception to decode(encode(v)) == v.
func DecodeCell(field Field, value CellValue) any {
	if field.Type == FieldDate {
		if value.DataNumber == nil || *value.DataNumber == 0 {
			return time.Time{}
		}
		return time.UnixMilli(int64(*value.DataNumber)).UTC()
	}

	switch {
	case value.DataString != nil:
		return *value.DataString
	case value.DataNumber != nil:
		return *value.DataNumber
	case value.DataJSON != nil:
		return value.DataJSON
	default:
		return nil
	}
}

func coerceString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

func coerceNumber(value any) (float64, error) {
	switch n := value.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot coerce %q to number", n)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("cannot coerce %T to number", value)
	}
}

func coerceEpochMillis(value any) (int64, error) {
	switch t := value.(type) {
	case time.Time:
		return t.UnixMilli(), nil
	case int64:
		return t, nil
	case float64:
		return int64(t), nil
	default:
		return 0, fmt.Errorf("cannot coerce %T to a date", value)
	}
}
