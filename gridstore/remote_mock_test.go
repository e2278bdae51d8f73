package gridstore

import (
	"context"
	"sync"
	"time"

	"github.com/gridbase/gridstore/types"
)

// fakeRemote is an in-memory Remote with per-operation failure injection.
// A fresh one per test keeps engine tests hermetic.
type fakeRemote struct {
	mu      sync.Mutex
	sheets  map[string]types.Sheet
	records []types.Record
	cells   map[string]types.CellList

	failCreate     error
	failUpdateCell error
	failOrder      error
	failOrders     error
	failFields     error
	failDelete     error
	failList       error
	failListCells  error

	// When set, the matching call blocks until the channel closes, letting
	// tests observe the optimistic window.
	blockCreate chan struct{}
	blockUpdate chan struct{}

	calls         []string
	fieldsUpdates [][]types.Field
	orderBatches  []map[string]int64
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		sheets: make(map[string]types.Sheet),
		cells:  make(map[string]types.CellList),
	}
}

func (r *fakeRemote) record(op string) {
	r.calls = append(r.calls, op)
}

func (r *fakeRemote) callCount(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (r *fakeRemote) GetSheet(_ context.Context, id string) (types.Sheet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("GetSheet")
	sheet, ok := r.sheets[id]
	if !ok {
		return types.Sheet{}, &NotFoundError{Kind: "sheet", ID: id}
	}
	return sheet, nil
}

func (r *fakeRemote) ListSheets(_ context.Context, appID string) ([]types.Sheet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ListSheets")
	var out []types.Sheet
	for _, sheet := range r.sheets {
		if sheet.AppID == appID {
			out = append(out, sheet)
		}
	}
	return out, nil
}

func (r *fakeRemote) PutSheet(_ context.Context, sheet types.Sheet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("PutSheet")
	r.sheets[sheet.ID] = sheet
	return nil
}

func (r *fakeRemote) ListRecords(_ context.Context, sheetID string, offset, limit int) ([]types.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ListRecords")
	if r.failList != nil {
		return nil, r.failList
	}
	var matching []types.Record
	for _, rec := range r.records {
		if rec.SheetID == sheetID {
			matching = append(matching, rec)
		}
	}
	if offset >= len(matching) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matching) {
		end = len(matching)
	}
	return matching[offset:end], nil
}

func (r *fakeRemote) ListCells(_ context.Context, recordIDs []string) (map[string]types.CellList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ListCells")
	if r.failListCells != nil {
		return nil, r.failListCells
	}
	out := make(map[string]types.CellList)
	for _, id := range recordIDs {
		if cells, ok := r.cells[id]; ok {
			out[id] = cells.Clone()
		}
	}
	return out, nil
}

func (r *fakeRemote) CreateRecord(_ context.Context, rec types.Record, cells types.CellList) error {
	if r.blockCreate != nil {
		<-r.blockCreate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("CreateRecord")
	if r.failCreate != nil {
		return r.failCreate
	}
	r.records = append(r.records, rec)
	r.cells[rec.ID] = cells.Clone()
	return nil
}

func (r *fakeRemote) UpdateCellValue(_ context.Context, recordID, fieldID string, value types.CellValue) error {
	if r.blockUpdate != nil {
		<-r.blockUpdate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("UpdateCellValue")
	if r.failUpdateCell != nil {
		return r.failUpdateCell
	}
	r.cells[recordID] = r.cells[recordID].Set(fieldID, value, time.Time{})
	return nil
}

func (r *fakeRemote) UpdateRecordOrder(_ context.Context, recordID string, order int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("UpdateRecordOrder")
	if r.failOrder != nil {
		return r.failOrder
	}
	for i, rec := range r.records {
		if rec.ID == recordID {
			r.records[i].Order = order
		}
	}
	return nil
}

func (r *fakeRemote) UpdateRecordOrders(_ context.Context, orders map[string]int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("UpdateRecordOrders")
	if r.failOrders != nil {
		return r.failOrders
	}
	r.orderBatches = append(r.orderBatches, orders)
	for i, rec := range r.records {
		if order, ok := orders[rec.ID]; ok {
			r.records[i].Order = order
		}
	}
	return nil
}

func (r *fakeRemote) UpdateFields(_ context.Context, sheetID string, fields []types.Field) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("UpdateFields")
	if r.failFields != nil {
		return r.failFields
	}
	sheet := r.sheets[sheetID]
	sheet.Fields = fields
	r.sheets[sheetID] = sheet
	r.fieldsUpdates = append(r.fieldsUpdates, fields)
	return nil
}

func (r *fakeRemote) DeleteRecord(_ context.Context, recordID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("DeleteRecord")
	if r.failDelete != nil {
		return r.failDelete
	}
	for i, rec := range r.records {
		if rec.ID == recordID {
			r.records = append(r.records[:i], r.records[i+1:]...)
			break
		}
	}
	delete(r.cells, recordID)
	return nil
}

// manualScheduler collects scheduled callbacks and fires them on demand,
// standing in for wall-clock timers in debounce tests.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	mu      sync.Mutex
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (t *manualTimer) fire() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	fn := t.fn
	t.mu.Unlock()
	fn()
}

func (s *manualScheduler) AfterFunc(_ time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// advance fires every pending timer, as if the debounce window elapsed
func (s *manualScheduler) advance() {
	s.mu.Lock()
	timers := s.timers
	s.timers = nil
	s.mu.Unlock()
	for _, t := range timers {
		t.fire()
	}
}

// pending counts timers that are armed and not yet stopped or fired
func (s *manualScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		t.mu.Lock()
		if !t.stopped {
			n++
		}
		t.mu.Unlock()
	}
	return n
}
