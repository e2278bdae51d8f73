package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/gridbase/gridstore/types"
)

// ListCells batch-fetches the cells of many records in one query, keyed by
// record id on the way out
func (s *Store) ListCells(ctx context.Context, recordIDs []string) (map[string]types.CellList, error) {
	out := make(map[string]types.CellList, len(recordIDs))
	if len(recordIDs) == 0 {
		return out, nil
	}

	query, args, err := s.sq.Select("record_id", "field_id",
		"data_string", "data_number", "data_json", "modified_at").
		From("cells").
		Where(squirrel.Eq{"record_id": recordIDs}).
		OrderBy("record_id", "field_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build cells query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cells: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			recordID   string
			cell       types.Cell
			dataString sql.NullString
			dataNumber sql.NullFloat64
			dataJSON   sql.NullString
			modifiedAt int64
		)
		if err := rows.Scan(&recordID, &cell.FieldID,
			&dataString, &dataNumber, &dataJSON, &modifiedAt); err != nil {
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		cell.Value, err = cellValueFromSlots(dataString, dataNumber, dataJSON)
		if err != nil {
			return nil, fmt.Errorf("cell %s of record %s: %w", cell.FieldID, recordID, err)
		}
		cell.ModifiedAt = time.UnixMilli(modifiedAt).UTC()
		out[recordID] = append(out[recordID], cell)
	}
	return out, rows.Err()
}

// UpdateCellValue upserts one cell of one record
func (s *Store) UpdateCellValue(ctx context.Context, recordID, fieldID string, value types.CellValue) error {
	cell := types.Cell{FieldID: fieldID, Value: value, ModifiedAt: time.Now()}
	query, args, err := buildCellUpsert(s.sq, recordID, cell)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update cell: %w", err)
	}
	return nil
}

func buildCellUpsert(sq squirrel.StatementBuilderType, recordID string, cell types.Cell) (string, []any, error) {
	var jsonSlot any
	if cell.Value.DataJSON != nil {
		encoded, err := json.Marshal(cell.Value.DataJSON)
		if err != nil {
			return "", nil, fmt.Errorf("marshal json slot of cell %s: %w", cell.FieldID, err)
		}
		jsonSlot = string(encoded)
	}

	query, args, err := sq.Insert("cells").
		Columns("record_id", "field_id", "data_string", "data_number", "data_json", "modified_at").
		Values(recordID, cell.FieldID,
			cell.Value.DataString, cell.Value.DataNumber, jsonSlot,
			cell.ModifiedAt.UnixMilli()).
		Suffix("ON CONFLICT(record_id, field_id) DO UPDATE SET " +
			"data_string=excluded.data_string, data_number=excluded.data_number, " +
			"data_json=excluded.data_json, modified_at=excluded.modified_at").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build cell upsert: %w", err)
	}
	return query, args, nil
}

func cellValueFromSlots(s sql.NullString, n sql.NullFloat64, j sql.NullString) (types.CellValue, error) {
	var value types.CellValue
	switch {
	case s.Valid:
		value = types.StringValue(s.String)
	case n.Valid:
		value = types.NumberValue(n.Float64)
	case j.Valid:
		var decoded any
		if err := json.Unmarshal([]byte(j.String), &decoded); err != nil {
			return types.CellValue{}, fmt.Errorf("unmarshal json slot: %w", err)
		}
		value = types.JSONValue(decoded)
	}
	return value, nil
}
