package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gridbase/gridstore/types"
)

var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Manage a sheet's fields",
}

var fieldTypeName string

var fieldAddCmd = &cobra.Command{
	Use:   "add <sheet-id> <name>",
	Short: "Add a field to a sheet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheetID, name := args[0], args[1]
		if err := env.loader.LoadSheet(cmd.Context(), sheetID); err != nil {
			return err
		}

		fieldType, err := types.ParseFieldType(fieldTypeName)
		if err != nil {
			return err
		}
		field := types.Field{Name: name, Type: fieldType}
		if fieldType == types.FieldSelection {
			field.Selection = &types.SelectionMetadata{OptionType: types.OptionText}
		}

		added, m, err := env.engine.AddField(cmd.Context(), sheetID, field)
		if err != nil {
			return err
		}
		if err := m.Wait(cmd.Context()); err != nil {
			return err
		}
		fmt.Println(added.ID)
		return nil
	},
}

var fieldRmCmd = &cobra.Command{
	Use:   "rm <sheet-id> <field-id>",
	Short: "Remove a field and its cells",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheetID, fieldID := args[0], args[1]
		if err := loadSheet(cmd, sheetID); err != nil {
			return err
		}

		m, err := env.engine.RemoveField(cmd.Context(), sheetID, fieldID)
		if err != nil {
			return err
		}
		return m.Wait(cmd.Context())
	},
}

var fieldRenameCmd = &cobra.Command{
	Use:   "rename <sheet-id> <field-id> <new-name>",
	Short: "Rename a field",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheetID, fieldID, newName := args[0], args[1], args[2]
		if err := env.loader.LoadSheet(cmd.Context(), sheetID); err != nil {
			return err
		}
		sheet, _ := env.store.Sheet(sheetID)
		field, ok := sheet.Field(fieldID)
		if !ok {
			return fmt.Errorf("unknown field %q", fieldID)
		}
		field.Name = newName

		m, err := env.engine.ChangeField(cmd.Context(), sheetID, field)
		if err != nil {
			return err
		}
		// One-shot command: skip the debounce window and write now.
		env.engine.Flush(cmd.Context(), sheetID)
		return m.Wait(cmd.Context())
	},
}

var fieldMoveCmd = &cobra.Command{
	Use:   "move <sheet-id> <from-index> <to-index>",
	Short: "Move a field to another position",
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
		if err := env.loader.LoadSheet(cmd.Context(), sheetID); err != nil {
			return err
		}

		m, err := env.engine.ReorderField(cmd.Context(), sheetID, from, to)
		if err != nil {
			return err
		}
		return m.Wait(cmd.Context())
	},
}

func init() {
	fieldAddCmd.Flags().StringVarP(&fieldTypeName, "type", "t", "text",
		"Field type: text|number|image|file|date|selection|relation")
	fieldCmd.AddCommand(fieldAddCmd)
	fieldCmd.AddCommand(fieldRmCmd)
	fieldCmd.AddCommand(fieldRenameCmd)
	fieldCmd.AddCommand(fieldMoveCmd)
}
