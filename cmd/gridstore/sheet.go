package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridbase/gridstore/gridstore/ids"
	"github.com/gridbase/gridstore/types"
)

var sheetCmd = &cobra.Command{
	Use:   "sheet",
	Short: "Manage sheets",
}

var schemaPath string

var sheetCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a sheet, empty or from a schema file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gen := ids.New()

		var (
			name   string
			fields []types.Field
			err    error
		)
		switch {
		case schemaPath != "":
			name, fields, err = readSchema(schemaPath, gen)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				name = args[0]
			}
		case len(args) > 0:
			name = args[0]
		default:
			return fmt.Errorf("a sheet name or --from schema file is required")
		}

		sheet := types.Sheet{
			ID:        gen.SheetID(),
			AppID:     appID,
			Name:      name,
			Fields:    fields,
			CreatedAt: time.Now().UTC(),
		}
		if err := env.remote.PutSheet(cmd.Context(), sheet); err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}

		env.logger.Info("sheet created", "sheet", sheet.ID, "fields", len(fields))
		fmt.Println(sheet.ID)
		return nil
	},
}

var sheetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the app's sheets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := env.loader.LoadSheetsForApp(cmd.Context(), appID); err != nil {
			return err
		}
		for _, sheet := range env.store.Sheets(appID) {
			fmt.Printf("%s\t%s\t%d fields\n", sheet.ID, sheet.Name, len(sheet.Fields))
		}
		return nil
	},
}

var sheetShowCmd = &cobra.Command{
	Use:   "show <sheet-id>",
	Short: "Show a sheet's field layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := env.loader.LoadSheet(cmd.Context(), args[0]); err != nil {
			return err
		}
		sheet, _ := env.store.Sheet(args[0])
		fmt.Printf("%s (%s)\n", sheet.Name, sheet.ID)
		for _, field := range sheet.Fields {
			line := fmt.Sprintf("  %s\t%s\t%s", field.ID, field.Name, field.Type)
			if field.Type == types.FieldSelection && field.Selection != nil {
				line += fmt.Sprintf("\t%d options", len(field.Selection.Options))
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	sheetCreateCmd.Flags().StringVar(&schemaPath, "from", "", "YAML schema file describing the fields")
	sheetCmd.AddCommand(sheetCreateCmd)
	sheetCmd.AddCommand(sheetListCmd)
	sheetCmd.AddCommand(sheetShowCmd)
}
