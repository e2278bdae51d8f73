package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridbase/gridstore/types"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Manage a sheet's records",
}

var recordPrepend bool

var recordCreateCmd = &cobra.Command{
	Use:   "create <sheet-id> [Field=value ...]",
	Short: "Create a record with initial cell values",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheetID := args[0]
		if err := loadSheet(cmd, sheetID); err != nil {
			return err
		}
		sheet, _ := env.store.Sheet(sheetID)

		values := make(map[string]any, len(args)-1)
		for _, arg := range args[1:] {
			key, raw, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("bad value %q, want Field=value", arg)
			}
			field, err := resolveField(sheet, key)
			if err != nil {
				return err
			}
			values[field.ID] = raw
		}

		rec, m, err := env.engine.CreateRecord(cmd.Context(), sheetID, values, recordPrepend)
		if err != nil {
			return err
		}
		if err := m.Wait(cmd.Context()); err != nil {
			return err
		}
		fmt.Println(rec.Slug)
		return nil
	},
}

var recordListCmd = &cobra.Command{
	Use:   "list <sheet-id>",
	Short: "List a sheet's records in display order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheetID := args[0]
		if err := loadSheet(cmd, sheetID); err != nil {
			return err
		}
		sheet, _ := env.store.Sheet(sheetID)

		for _, rec := range env.store.Records(sheetID) {
			cells := env.store.Cells(rec.ID)
			parts := []string{rec.Slug}
			for _, field := range sheet.Fields {
				value, ok := cells.Get(field.ID)
				if !ok {
					parts = append(parts, "")
					continue
				}
				parts = append(parts, formatValue(types.DecodeCell(field, value)))
			}
			fmt.Println(strings.Join(parts, "\t"))
		}
		return nil
	},
}

var recordEditCmd = &cobra.Command{
	Use:   "edit <sheet-id> <slug> <field> <value>",
	Short: "Overwrite one cell of a record",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheetID, slug, fieldKey, value := args[0], args[1], args[2], args[3]
		if err := loadSheet(cmd, sheetID); err != nil {
			return err
		}
		sheet, _ := env.store.Sheet(sheetID)
		field, err := resolveField(sheet, fieldKey)
		if err != nil {
			return err
		}

		m, err := env.engine.EditCell(cmd.Context(), slug, field.ID, value)
		if err != nil {
			return err
		}
		return m.Wait(cmd.Context())
	},
}

var recordRmCmd = &cobra.Command{
	Use:   "rm <sheet-id> <slug>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheetID, slug := args[0], args[1]
		if err := loadSheet(cmd, sheetID); err != nil {
			return err
		}

		m, err := env.engine.DeleteRecord(cmd.Context(), slug)
		if err != nil {
			return err
		}
		return m.Wait(cmd.Context())
	},
}

var recordMoveCmd = &cobra.Command{
	Use:   "move <sheet-id> <from-index> <to-index>",
	Short: "Move a record to another position",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheetID := args[0]
		from, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("bad from-index %q", args[1])
		}
		to, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("bad to-index %q", args[2])
		}
		if err := loadSheet(cmd, sheetID); err != nil {
			return err
		}

		m, err := env.engine.ReorderRecord(cmd.Context(), sheetID, from, to)
		if err != nil {
			return err
		}
		return m.Wait(cmd.Context())
	},
}

// resolveField accepts either a field id or a field name
func resolveField(sheet types.Sheet, key string) (types.Field, error) {
	if field, ok := sheet.Field(key); ok {
		return field, nil
	}
	if field, ok := sheet.FieldByName(key); ok {
		return field, nil
	}
	return types.Field{}, fmt.Errorf("sheet %s has no field %q", sheet.ID, key)
}

func formatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case time.Time:
		if value.IsZero() {
			return ""
		}
		return value.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func init() {
	recordCreateCmd.Flags().BoolVar(&recordPrepend, "prepend", false,
		"Insert at the top instead of appending")
	recordCmd.AddCommand(recordCreateCmd)
	recordCmd.AddCommand(recordListCmd)
	recordCmd.AddCommand(recordEditCmd)
	recordCmd.AddCommand(recordRmCmd)
	recordCmd.AddCommand(recordMoveCmd)
}
