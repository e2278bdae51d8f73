package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gridbase/gridstore/types"
)

// sheetSchema is the YAML document `sheet create --from` consumes
type sheetSchema struct {
	Name   string        `yaml:"name"`
	Fields []fieldSchema `yaml:"fields"`
}

type fieldSchema struct {
	Name    string         `yaml:"name"`
	Type    string         `yaml:"type"`
	Options []optionSchema `yaml:"options,omitempty"`
	Width   int            `yaml:"width,omitempty"`
	Hidden  bool           `yaml:"hidden,omitempty"`
}

type optionSchema struct {
	Value string `yaml:"value"`
	Color string `yaml:"color,omitempty"`
}

// readSchema parses a schema file into a name and field list, minting ids
// for every field and selection option
func readSchema(path string, identity interface {
	FieldID() string
	OptionID() string
}) (string, []types.Field, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read schema: %w", err)
	}

	var schema sheetSchema
	if err := yaml.Unmarshal(raw, &schema); err != nil {
		return "", nil, fmt.Errorf("parse schema: %w", err)
	}
	if schema.Name == "" {
		return "", nil, fmt.Errorf("schema has no sheet name")
	}

	fields := make([]types.Field, 0, len(schema.Fields))
	for _, fs := range schema.Fields {
		fieldType, err := types.ParseFieldType(fs.Type)
		if err != nil {
			return "", nil, fmt.Errorf("field %q: %w", fs.Name, err)
		}

		field := types.Field{
			ID:   identity.FieldID(),
			Name: fs.Name,
			Type: fieldType,
		}
		if fieldType == types.FieldSelection {
			meta := &types.SelectionMetadata{OptionType: types.OptionText}
			for _, opt := range fs.Options {
				meta.Options = append(meta.Options, types.SelectionOption{
					ID:    identity.OptionID(),
					Value: opt.Value,
					Color: opt.Color,
				})
			}
			field.Selection = meta
		}
		if fs.Width > 0 || fs.Hidden {
			field.Table = &types.TableMetadata{Width: fs.Width, IsHidden: fs.Hidden}
		}
		fields = append(fields, field)
	}
	return schema.Name, fields, nil
}
