// Package jsonfile persists sheets, records and cells in a single JSON
// file guarded by a file lock. It implements the gridstore.Remote boundary
// for small local datasets where a database is overkill.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/gridbase/gridstore/gridstore"
	"github.com/gridbase/gridstore/types"
)

const lockTimeout = 3 * time.Second

// Store is a JSON-file-backed gridstore.Remote
type Store struct {
	filePath string
	fileLock *flock.Flock
	mu       sync.Mutex
}

// fileData is the on-disk document layout
type fileData struct {
	Sheets  []types.Sheet             `json:"sheets"`
	Records []types.Record            `json:"records"`
	Cells   map[string]types.CellList `json:"cells"`
}

// New creates a store persisting to filePath. The file is created on the
// first write; a sibling .lock file guards cross-process access.
func New(filePath string) *Store {
	return &Store{
		filePath: filePath,
		fileLock: flock.New(filePath + ".lock"),
	}
}

// GetSheet fetches one sheet definition
func (s *Store) GetSheet(ctx context.Context, id string) (types.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load(ctx)
	if err != nil {
		return types.Sheet{}, err
	}
	for _, sheet := range data.Sheets {
		if sheet.ID == id {
			return sheet, nil
		}
	}
	return types.Sheet{}, &gridstore.NotFoundError{Kind: "sheet", ID: id}
}

// ListSheets fetches every sheet belonging to an app
func (s *Store) ListSheets(ctx context.Context, appID string) ([]types.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	var out []types.Sheet
	for _, sheet := range data.Sheets {
		if sheet.AppID == appID {
			out = append(out, sheet)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// PutSheet inserts or replaces a sheet definition
func (s *Store) PutSheet(ctx context.Context, sheet types.Sheet) error {
	return s.mutate(ctx, func(data *fileData) error {
		for i, existing := range data.Sheets {
			if existing.ID == sheet.ID {
				data.Sheets[i] = sheet
				return nil
			}
		}
		data.Sheets = append(data.Sheets, sheet)
		return nil
	})
}

// UpdateFields replaces a sheet's whole field list
func (s *Store) UpdateFields(ctx context.Context, sheetID string, fields []types.Field) error {
	return s.mutate(ctx, func(data *fileData) error {
		for i, sheet := range data.Sheets {
			if sheet.ID == sheetID {
				data.Sheets[i].Fields = fields
				return nil
			}
		}
		return &gridstore.NotFoundError{Kind: "sheet", ID: sheetID}
	})
}

// ListRecords fetches one page of a sheet's records in display order
func (s *Store) ListRecords(ctx context.Context, sheetID string, offset, limit int) ([]types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	var matching []types.Record
	for _, rec := range data.Records {
		if rec.SheetID == sheetID {
			matching = append(matching, rec)
		}
	}
	sort.Slice(matching, func(i, j int) bool {
		if matching[i].Order != matching[j].Order {
			return matching[i].Order < matching[j].Order
		}
		return matching[i].Slug < matching[j].Slug
	})
	if offset >= len(matching) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matching) {
		end = len(matching)
	}
	return matching[offset:end], nil
}

// ListCells batch-fetches the cells of many records
func (s *Store) ListCells(ctx context.Context, recordIDs []string) (map[string]types.CellList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]types.CellList, len(recordIDs))
	for _, id := range recordIDs {
		if cells, ok := data.Cells[id]; ok {
			out[id] = cells.Clone()
		}
	}
	return out, nil
}

// CreateRecord appends a record and its initial cells
func (s *Store) CreateRecord(ctx context.Context, rec types.Record, cells types.CellList) error {
	return s.mutate(ctx, func(data *fileData) error {
		for _, existing := range data.Records {
			if existing.ID == rec.ID {
				return fmt.Errorf("record %s already exists", rec.ID)
			}
		}
		data.Records = append(data.Records, rec)
		if len(cells) > 0 {
			data.Cells[rec.ID] = cells.Clone()
		}
		return nil
	})
}

// UpdateCellValue upserts one cell of one record
func (s *Store) UpdateCellValue(ctx context.Context, recordID, fieldID string, value types.CellValue) error {
	return s.mutate(ctx, func(data *fileData) error {
		for _, rec := range data.Records {
			if rec.ID == recordID {
				data.Cells[recordID] = data.Cells[recordID].Set(fieldID, value, time.Now().UTC())
				return nil
			}
		}
		return &gridstore.NotFoundError{Kind: "record", ID: recordID}
	})
}

// UpdateRecordOrder rewrites one record's order key
func (s *Store) UpdateRecordOrder(ctx context.Context, recordID string, order int64) error {
	return s.mutate(ctx, func(data *fileData) error {
		for i, rec := range data.Records {
			if rec.ID == recordID {
				data.Records[i].Order = order
				return nil
			}
		}
		return &gridstore.NotFoundError{Kind: "record", ID: recordID}
	})
}

// UpdateRecordOrders rewrites many order keys in one write
func (s *Store) UpdateRecordOrders(ctx context.Context, orders map[string]int64) error {
	return s.mutate(ctx, func(data *fileData) error {
		for i, rec := range data.Records {
			if order, ok := orders[rec.ID]; ok {
				data.Records[i].Order = order
			}
		}
		return nil
	})
}

// DeleteRecord removes a record and its cells
func (s *Store) DeleteRecord(ctx context.Context, recordID string) error {
	return s.mutate(ctx, func(data *fileData) error {
		for i, rec := range data.Records {
			if rec.ID == recordID {
				data.Records = append(data.Records[:i], data.Records[i+1:]...)
				break
			}
		}
		delete(data.Cells, recordID)
		return nil
	})
}

// mutate runs fn against the loaded file contents and writes the result
// back atomically, all under the file lock
func (s *Store) mutate(ctx context.Context, fn func(*fileData) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(data); err != nil {
		return err
	}
	return s.save(ctx, data)
}

func (s *Store) load(ctx context.Context) (*fileData, error) {
	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data := &fileData{Cells: make(map[string]types.CellList)}
	raw, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.filePath, err)
	}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.filePath, err)
	}
	if data.Cells == nil {
		data.Cells = make(map[string]types.CellList)
	}
	return data, nil
}

func (s *Store) save(ctx context.Context, data *fileData) error {
	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store data: %w", err)
	}

	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, raw, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpFile, s.filePath); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func (s *Store) acquireLock(ctx context.Context) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := s.fileLock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("acquire file lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire file lock")
	}
	return func() { _ = s.fileLock.Unlock() }, nil
}
