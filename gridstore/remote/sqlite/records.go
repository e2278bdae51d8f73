package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/gridbase/gridstore/gridstore"
	"github.com/gridbase/gridstore/types"
)

var recordColumns = []string{"id", "sheet_id", "slug", "sort_order", "created_at"}

// ListRecords fetches one page of a sheet's records in display order
func (s *Store) ListRecords(ctx context.Context, sheetID string, offset, limit int) ([]types.Record, error) {
	query, args, err := s.sq.Select(recordColumns...).
		From("records").
		Where(squirrel.Eq{"sheet_id": sheetID}).
		OrderBy("sort_order", "slug").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build record page query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []types.Record
	for rows.Next() {
		var (
			rec       types.Record
			createdAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.SheetID, &rec.Slug, &rec.Order, &createdAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(createdAt).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CreateRecord inserts a record and its initial cells in one transaction
func (s *Store) CreateRecord(ctx context.Context, rec types.Record, cells types.CellList) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := s.sq.Insert("records").
		Columns(recordColumns...).
		Values(rec.ID, rec.SheetID, rec.Slug, rec.Order, rec.CreatedAt.UnixMilli()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build record insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	for _, cell := range cells {
		query, args, err := buildCellUpsert(s.sq, rec.ID, cell)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert cell %s: %w", cell.FieldID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record create: %w", err)
	}
	return nil
}

// UpdateRecordOrder rewrites one record's order key
func (s *Store) UpdateRecordOrder(ctx context.Context, recordID string, order int64) error {
	query, args, err := s.sq.Update("records").
		Set("sort_order", order).
		Where(squirrel.Eq{"id": recordID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build order update: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update record order: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record order: %w", err)
	}
	if affected == 0 {
		return &gridstore.NotFoundError{Kind: "record", ID: recordID}
	}
	return nil
}

// UpdateRecordOrders rewrites many order keys atomically, used when a
// reorder renumbers the whole sheet
func (s *Store) UpdateRecordOrders(ctx context.Context, orders map[string]int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for recordID, order := range orders {
		query, args, err := s.sq.Update("records").
			Set("sort_order", order).
			Where(squirrel.Eq{"id": recordID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build order update: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update order of %s: %w", recordID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order updates: %w", err)
	}
	return nil
}

// DeleteRecord removes a record; its cells cascade away
func (s *Store) DeleteRecord(ctx context.Context, recordID string) error {
	query, args, err := s.sq.Delete("records").
		Where(squirrel.Eq{"id": recordID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build record delete: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}
