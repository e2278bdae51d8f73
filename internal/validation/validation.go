// Package validation checks field lists before they are applied to a sheet.
package validation

import (
	"fmt"

	"github.com/gridbase/gridstore/types"
)

// ValidateFields checks a complete field list: ids present and unique,
// names present, selection metadata well-formed. This is coarse coercion
// territory; per-value validation is not a goal.
func ValidateFields(fields []types.Field) error {
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		if f.ID == "" {
			return fmt.Errorf("field at index %d has no id", i)
		}
		if seen[f.ID] {
			return fmt.Errorf("duplicate field id %q", f.ID)
		}
		seen[f.ID] = true

		if f.Name == "" {
			return fmt.Errorf("field %q has no name", f.ID)
		}

		if f.Type == types.FieldSelection {
			if err := validateSelection(f); err != nil {
				return fmt.Errorf("field %q: %w", f.ID, err)
			}
		} else if f.Selection != nil {
			return fmt.Errorf("field %q carries selection metadata but has type %s", f.ID, f.Type)
		}
	}
	return nil
}

func validateSelection(f types.Field) error {
	if f.Selection == nil {
		return fmt.Errorf("selection field has no options metadata")
	}
	seen := make(map[string]bool, len(f.Selection.Options))
	for _, opt := range f.Selection.Options {
		if opt.ID == "" {
			return fmt.Errorf("selection option %q has no id", opt.Value)
		}
		if seen[opt.ID] {
			return fmt.Errorf("duplicate selection option id %q", opt.ID)
		}
		seen[opt.ID] = true
	}
	return nil
}
