package gridstore

import (
	"context"

	"github.com/gridbase/gridstore/types"
)

// Remote is the persistence boundary the engine and loader reconcile
// against. Implementations must not assume any particular transport; the
// engine only relies on calls being asynchronous-safe, idempotent enough to
// retry manually, and reporting success or failure unambiguously.
//
// Errors should be (or wrap) NotFoundError where the referenced entity does
// not exist remotely; any other failure is treated as a transport error.
type Remote interface {
	// GetSheet fetches a sheet definition (fields inline)
	GetSheet(ctx context.Context, id string) (types.Sheet, error)

	// ListSheets returns all sheets belonging to an app
	ListSheets(ctx context.Context, appID string) ([]types.Sheet, error)

	// PutSheet creates or replaces a sheet definition
	PutSheet(ctx context.Context, sheet types.Sheet) error

	// ListRecords returns records of a sheet ordered by order key ascending,
	// limit at a time, starting at a zero-based offset
	ListRecords(ctx context.Context, sheetID string, offset, limit int) ([]types.Record, error)

	// ListCells fetches the cells of all given records in one batched call,
	// grouped by record id
	ListCells(ctx context.Context, recordIDs []string) (map[string]types.CellList, error)

	// CreateRecord persists a client-built record and its initial cells
	CreateRecord(ctx context.Context, record types.Record, cells types.CellList) error

	// UpdateCellValue overwrites one cell of one record
	UpdateCellValue(ctx context.Context, recordID, fieldID string, value types.CellValue) error

	// UpdateRecordOrder persists a single record's new order key
	UpdateRecordOrder(ctx context.Context, recordID string, order int64) error

	// UpdateRecordOrders persists a renumbering batch in one combined update
	UpdateRecordOrders(ctx context.Context, orders map[string]int64) error

	// UpdateFields replaces a sheet's full field list
	UpdateFields(ctx context.Context, sheetID string, fields []types.Field) error

	// DeleteRecord removes a record and, by cascade, its cells
	DeleteRecord(ctx context.Context, recordID string) error
}
