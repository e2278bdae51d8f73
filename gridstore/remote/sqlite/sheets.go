package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/gridbase/gridstore/gridstore"
	"github.com/gridbase/gridstore/types"
)

var sheetColumns = []string{"id", "app_id", "name", "fields", "is_deleted", "created_at"}

// GetSheet fetches one sheet definition
func (s *Store) GetSheet(ctx context.Context, id string) (types.Sheet, error) {
	query, args, err := s.sq.Select(sheetColumns...).
		From("sheets").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return types.Sheet{}, fmt.Errorf("build sheet query: %w", err)
	}

	sheet, err := scanSheet(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Sheet{}, &gridstore.NotFoundError{Kind: "sheet", ID: id}
	}
	return sheet, err
}

// ListSheets fetches every sheet belonging to an app
func (s *Store) ListSheets(ctx context.Context, appID string) ([]types.Sheet, error) {
	query, args, err := s.sq.Select(sheetColumns...).
		From("sheets").
		Where(squirrel.Eq{"app_id": appID}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sheet list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sheets []types.Sheet
	for rows.Next() {
		sheet, err := scanSheet(rows)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}
	return sheets, rows.Err()
}

// PutSheet inserts or replaces a sheet definition
func (s *Store) PutSheet(ctx context.Context, sheet types.Sheet) error {
	fieldsJSON, err := json.Marshal(sheet.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}

	query, args, err := s.sq.Insert("sheets").
		Columns(sheetColumns...).
		Values(sheet.ID, sheet.AppID, sheet.Name, string(fieldsJSON),
			boolToInt(sheet.IsDeleted), sheet.CreatedAt.UnixMilli()).
		Suffix("ON CONFLICT(id) DO UPDATE SET app_id=excluded.app_id, " +
			"name=excluded.name, fields=excluded.fields, " +
			"is_deleted=excluded.is_deleted, created_at=excluded.created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build sheet upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put sheet: %w", err)
	}
	return nil
}

// UpdateFields replaces a sheet's whole field list
func (s *Store) UpdateFields(ctx context.Context, sheetID string, fields []types.Field) error {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}

	query, args, err := s.sq.Update("sheets").
		Set("fields", string(fieldsJSON)).
		Where(squirrel.Eq{"id": sheetID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build fields update: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update fields: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update fields: %w", err)
	}
	if affected == 0 {
		return &gridstore.NotFoundError{Kind: "sheet", ID: sheetID}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSheet(row rowScanner) (types.Sheet, error) {
	var (
		sheet      types.Sheet
		fieldsJSON string
		isDeleted  int
		createdAt  int64
	)
	if err := row.Scan(&sheet.ID, &sheet.AppID, &sheet.Name,
		&fieldsJSON, &isDeleted, &createdAt); err != nil {
		return types.Sheet{}, err
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &sheet.Fields); err != nil {
		return types.Sheet{}, fmt.Errorf("unmarshal fields of sheet %s: %w", sheet.ID, err)
	}
	sheet.IsDeleted = isDeleted != 0
	sheet.CreatedAt = time.UnixMilli(createdAt).UTC()
	return sheet, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
