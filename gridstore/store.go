package gridstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gridbase/gridstore/types"
)

// Store is the normalized in-memory representation of sheets, fields,
// records and cells: the single source of truth UI readers consume. Sheets
// are keyed by id with fields inline; record bodies are keyed by slug and
// each sheet holds an ordered slug list; cells are keyed by record id as an
// association list per record.
//
// All operations are synchronous and guarded by one lock, the Go rendering
// of the source's run-to-completion event-loop model: no mutation is ever
// observed half-applied, and reads never block on network I/O. Reconciling
// with the remote is the engine's job, not the store's.
type Store struct {
	mu sync.RWMutex

	sheets  map[string]types.Sheet    // sheet id -> sheet
	slugs   map[string][]string       // sheet id -> ordered record slugs
	records map[string]types.Record   // record slug -> body
	cells   map[string]types.CellList // record id -> cells

	// timeFunc is used for cell modification stamps, defaults to time.Now.
	// Can be overridden for testing.
	timeFunc func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		sheets:   make(map[string]types.Sheet),
		slugs:    make(map[string][]string),
		records:  make(map[string]types.Record),
		cells:    make(map[string]types.CellList),
		timeFunc: time.Now,
	}
}

// SetTimeFunc sets a custom time function for deterministic tests
func (s *Store) SetTimeFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeFunc = fn
}

// SetSheetsForApp atomically replaces all sheets belonging to an app. Sheets
// previously held for that app (and their records and cells) are purged
// first so a sheet deleted server-side does not linger as a stale orphan.
func (s *Store) SetSheetsForApp(appID string, sheets []types.Sheet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sheet := range s.sheets {
		if sheet.AppID == appID {
			s.purgeSheetLocked(id)
		}
	}
	for _, sheet := range sheets {
		s.sheets[sheet.ID] = sheet
	}
}

// AddSheet inserts or replaces a single sheet
func (s *Store) AddSheet(sheet types.Sheet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[sheet.ID] = sheet
}

// RemoveSheet deletes a sheet together with its records and cells
func (s *Store) RemoveSheet(sheetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeSheetLocked(sheetID)
}

// Sheet returns a sheet by id
func (s *Store) Sheet(sheetID string) (types.Sheet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sheet, ok := s.sheets[sheetID]
	return sheet, ok
}

// Sheets returns all sheets of an app, oldest first
func (s *Store) Sheets(appID string) []types.Sheet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.Sheet
	for _, sheet := range s.sheets {
		if sheet.AppID == appID {
			out = append(out, sheet)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// UpdateFields replaces a sheet's field list wholesale. Callers construct
// the complete desired list; there is no partial merge.
func (s *Store) UpdateFields(sheetID string, fields []types.Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, ok := s.sheets[sheetID]
	if !ok {
		return &NotFoundError{Kind: "sheet", ID: sheetID}
	}
	sheet.Fields = fields
	s.sheets[sheetID] = sheet
	return nil
}

// SetRecordsForSheet replaces the sheet's slug list and record bodies with
// the given records, sorted by order ascending. Only records belonging to
// this sheet are purged; other sheets' records are untouched. Cells are
// managed separately via SetCells.
func (s *Store) SetRecordsForSheet(sheetID string, records []types.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, slug := range s.slugs[sheetID] {
		if rec, ok := s.records[slug]; ok {
			delete(s.cells, rec.ID)
		}
		delete(s.records, slug)
	}

	sorted := make([]types.Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	list := make([]string, 0, len(sorted))
	for _, rec := range sorted {
		list = append(list, rec.Slug)
		s.records[rec.Slug] = rec
	}
	s.slugs[sheetID] = list
}

// MergeRecords upserts a page of records into the sheet, keeping the slug
// list sorted by order. Earlier pages are retained; this is the loader's
// accumulation primitive.
func (s *Store) MergeRecords(sheetID string, records []types.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range records {
		if _, exists := s.records[rec.Slug]; !exists {
			s.slugs[sheetID] = append(s.slugs[sheetID], rec.Slug)
		}
		s.records[rec.Slug] = rec
	}

	list := s.slugs[sheetID]
	sort.SliceStable(list, func(i, j int) bool {
		return s.records[list[i]].Order < s.records[list[j]].Order
	})
	s.slugs[sheetID] = list
}

// CreateRecord inserts a record body and places its slug at index in the
// sheet's list. index is clamped to [0, len].
func (s *Store) CreateRecord(rec types.Record, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.slugs[rec.SheetID]
	if index < 0 {
		index = 0
	}
	if index > len(list) {
		index = len(list)
	}
	list = append(list, "")
	copy(list[index+1:], list[index:])
	list[index] = rec.Slug
	s.slugs[rec.SheetID] = list
	s.records[rec.Slug] = rec
}

// Record returns a record body by slug
func (s *Store) Record(slug string) (types.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[slug]
	return rec, ok
}

// Records returns a sheet's record bodies in display order
func (s *Store) Records(sheetID string) []types.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.slugs[sheetID]
	out := make([]types.Record, 0, len(list))
	for _, slug := range list {
		if rec, ok := s.records[slug]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// Slugs returns the sheet's ordered slug list
func (s *Store) Slugs(sheetID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.slugs[sheetID]))
	copy(out, s.slugs[sheetID])
	return out
}

// SetCells replaces all cells of a record
func (s *Store) SetCells(recordID string, cells types.CellList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells[recordID] = cells.Clone()
}

// Cells returns a copy of a record's cells
func (s *Store) Cells(recordID string) types.CellList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cells[recordID].Clone()
}

// UpdateRecordData replaces the cell entry for one field of the record
// identified by slug, stamping it with the store clock.
func (s *Store) UpdateRecordData(slug, fieldID string, value types.CellValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[slug]
	if !ok {
		return &NotFoundError{Kind: "record", ID: slug}
	}
	s.cells[rec.ID] = s.cells[rec.ID].Set(fieldID, value, s.timeFunc())
	return nil
}

// CellsSnapshot captures a record's full cell list for a later
// RestoreCells. Snapshotting the whole list (not just one field) is what
// makes rollback restore the exact pre-mutation state.
func (s *Store) CellsSnapshot(slug string) (types.CellList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[slug]
	if !ok {
		return nil, &NotFoundError{Kind: "record", ID: slug}
	}
	return s.cells[rec.ID].Clone(), nil
}

// RestoreCells reverts a record's cells to a previously taken snapshot
func (s *Store) RestoreCells(slug string, snapshot types.CellList) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[slug]
	if !ok {
		return &NotFoundError{Kind: "record", ID: slug}
	}
	s.cells[rec.ID] = snapshot.Clone()
	return nil
}

// PurgeFieldCells drops every cell of the given field across a sheet's
// records. Used when a field is deleted (cells cascade with their field).
func (s *Store) PurgeFieldCells(sheetID, fieldID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, slug := range s.slugs[sheetID] {
		rec, ok := s.records[slug]
		if !ok {
			continue
		}
		if _, has := s.cells[rec.ID].Get(fieldID); has {
			s.cells[rec.ID] = s.cells[rec.ID].Remove(fieldID)
		}
	}
}

// ReorderRecord splice-moves a slug within the sheet's list. This is purely
// a local list reorder; order keys are recomputed by the allocator and
// written via SetRecordOrder or ApplyOrders.
func (s *Store) ReorderRecord(sheetID string, sourceIndex, destinationIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slugs[sheetID] = types.SpliceMove(s.slugs[sheetID], sourceIndex, destinationIndex)
}

// SetRecordOrder updates one record's order key
func (s *Store) SetRecordOrder(slug string, order int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[slug]
	if !ok {
		return &NotFoundError{Kind: "record", ID: slug}
	}
	rec.Order = order
	s.records[slug] = rec
	return nil
}

// ApplyOrders writes a renumbering batch: new order keys per slug
func (s *Store) ApplyOrders(orders map[string]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for slug, order := range orders {
		if rec, ok := s.records[slug]; ok {
			rec.Order = order
			s.records[slug] = rec
		}
	}
}

// DeleteRecord removes the record's slug from its sheet and deletes the
// body and cells
func (s *Store) DeleteRecord(rec types.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.slugs[rec.SheetID]
	for i, slug := range list {
		if slug == rec.Slug {
			s.slugs[rec.SheetID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	delete(s.records, rec.Slug)
	delete(s.cells, rec.ID)
}

// Verify checks the slug-list/body-map invariant for a sheet: every slug in
// the list has exactly one body, the list has no duplicates, and every body
// claiming this sheet appears in the list.
func (s *Store) Verify(sheetID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	for _, slug := range s.slugs[sheetID] {
		if seen[slug] {
			return fmt.Errorf("slug %q appears twice in sheet %q", slug, sheetID)
		}
		seen[slug] = true
		if _, ok := s.records[slug]; !ok {
			return fmt.Errorf("slug %q in sheet %q has no record body", slug, sheetID)
		}
	}
	for slug, rec := range s.records {
		if rec.SheetID == sheetID && !seen[slug] {
			return fmt.Errorf("record %q belongs to sheet %q but is missing from its slug list", slug, sheetID)
		}
	}
	return nil
}

// purgeSheetLocked removes a sheet and everything that hangs off it.
// Caller holds the write lock.
func (s *Store) purgeSheetLocked(sheetID string) {
	for _, slug := range s.slugs[sheetID] {
		if rec, ok := s.records[slug]; ok {
			delete(s.cells, rec.ID)
		}
		delete(s.records, slug)
	}
	delete(s.slugs, sheetID)
	delete(s.sheets, sheetID)
}
