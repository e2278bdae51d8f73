package gridstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gridbase/gridstore/gridstore/ids"
	"github.com/gridbase/gridstore/internal/validation"
	"github.com/gridbase/gridstore/types"
)

// DefaultDebounceInterval is the coalescing window for rapid interactive
// field edits (live-typing a name, dragging a column width).
const DefaultDebounceInterval = 500 * time.Millisecond

// Identity produces collision-resistant identifiers for client-created
// entities. It is invoked before any remote round-trip so optimistic
// inserts carry stable identity from the start.
type Identity interface {
	RecordID() string
	RecordSlug() string
	FieldID() string
}

// EngineOptions configures an Engine. Zero values select defaults.
type EngineOptions struct {
	Logger           *slog.Logger
	Identity         Identity
	Scheduler        Scheduler
	DebounceInterval time.Duration
	TimeFunc         func() time.Time
}

// Engine wraps remote writes with immediate local application to the store,
// a pending-operation marker, and rollback on remote failure.
//
// Every mutation follows the same state machine: validate synchronously
// (store untouched on ValidationError), apply to the store, issue the
// remote call, then confirm (a no-op, the store already matches) or roll
// back to the pre-mutation snapshot. Local applies happen in call order;
// remote confirmations may settle out of order. The engine does not queue
// competing mutations against the same entity: two in-flight edits to one
// cell are last-caller-wins locally, and a failure from the earlier call
// can roll back the later call's value. That stale-rollback hazard is a
// property of the design, not detected or reported here.
type Engine struct {
	store     *Store
	remote    Remote
	identity  Identity
	logger    *slog.Logger
	scheduler Scheduler
	debounce  time.Duration
	timeFunc  func() time.Time

	mu             sync.Mutex
	pendingCreates map[string]struct{}    // slugs whose create is unconfirmed
	batches        map[string]*fieldBatch // per-sheet debounced field updates
}

// NewEngine creates an engine bound to a store and a remote boundary
func NewEngine(store *Store, remote Remote, opts EngineOptions) *Engine {
	e := &Engine{
		store:          store,
		remote:         remote,
		identity:       opts.Identity,
		logger:         opts.Logger,
		scheduler:      opts.Scheduler,
		debounce:       opts.DebounceInterval,
		timeFunc:       opts.TimeFunc,
		pendingCreates: make(map[string]struct{}),
		batches:        make(map[string]*fieldBatch),
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.identity == nil {
		e.identity = ids.New()
	}
	if e.scheduler == nil {
		e.scheduler = wallScheduler{}
	}
	if e.debounce == 0 {
		e.debounce = DefaultDebounceInterval
	}
	if e.timeFunc == nil {
		e.timeFunc = time.Now
	}
	return e
}

// CreateRecord builds a fully formed record (client-generated identity,
// order from the allocator) plus candidate cells from the value map, keyed
// by field id. The record appears in the store immediately; on remote
// failure it is removed again by identity and the returned mutation
// rejects.
func (e *Engine) CreateRecord(ctx context.Context, sheetID string, values map[string]any, prepend bool) (types.Record, *Mutation, error) {
	sheet, ok := e.store.Sheet(sheetID)
	if !ok {
		return types.Record{}, nil, validationErr("create record", "unknown sheet %q", sheetID)
	}

	cells := types.CellList{}
	now := e.timeFunc()
	for fieldID, value := range values {
		field, ok := sheet.Field(fieldID)
		if !ok {
			return types.Record{}, nil, validationErr("create record", "unknown field %q", fieldID)
		}
		encoded, err := types.EncodeCell(field, value)
		if err != nil {
			return types.Record{}, nil, validationErr("create record", "%v", err)
		}
		cells = cells.Set(fieldID, encoded, now)
	}

	existing := e.store.Records(sheetID)
	orders := recordOrders(existing)
	var order int64
	var index int
	if prepend {
		order = types.PrependOrder(orders)
		index = 0
	} else {
		order = types.AppendOrder(orders)
		index = len(existing)
	}

	rec := types.Record{
		ID:        e.identity.RecordID(),
		SheetID:   sheetID,
		Slug:      e.identity.RecordSlug(),
		Order:     order,
		CreatedAt: now,
	}

	e.store.CreateRecord(rec, index)
	e.store.SetCells(rec.ID, cells)
	e.markPending(rec.Slug)

	m := newMutation()
	m.markApplied()

	rctx := context.WithoutCancel(ctx)
	go func() {
		err := e.remote.CreateRecord(rctx, rec, cells)
		e.clearPending(rec.Slug)
		if err != nil {
			e.store.DeleteRecord(rec)
			e.logger.Error("record create rejected, rolled back",
				"sheet", sheetID, "slug", rec.Slug, "error", err)
			m.rollback(wrapRemote("create record", err))
			return
		}
		m.confirm()
	}()

	return rec, m, nil
}

// EditCell overwrites one cell of an existing record. The whole cell list
// is snapshotted before the optimistic apply; on remote failure the exact
// snapshot is restored, so concurrent local edits to other fields of the
// same record are not lost by the revert. A newer in-flight edit to the
// same field can still be clobbered by this rollback (see the type doc).
//
// Editing a record whose create has not been acknowledged yet is rejected,
// not queued.
func (e *Engine) EditCell(ctx context.Context, slug, fieldID string, value any) (*Mutation, error) {
	rec, ok := e.store.Record(slug)
	if !ok {
		return nil, validationErr("edit cell", "unknown record %q", slug)
	}
	if e.isPending(slug) {
		return nil, validationErr("edit cell", "record %q is still being created", slug)
	}

	sheet, ok := e.store.Sheet(rec.SheetID)
	if !ok {
		return nil, validationErr("edit cell", "unknown sheet %q", rec.SheetID)
	}
	field, ok := sheet.Field(fieldID)
	if !ok {
		return nil, validationErr("edit cell", "unknown field %q", fieldID)
	}

	encoded, err := types.EncodeCell(field, value)
	if err != nil {
		return nil, validationErr("edit cell", "%v", err)
	}

	snapshot, err := e.store.CellsSnapshot(slug)
	if err != nil {
		return nil, err
	}
	if err := e.store.UpdateRecordData(slug, fieldID, encoded); err != nil {
		return nil, err
	}

	m := newMutation()
	m.markApplied()

	rctx := context.WithoutCancel(ctx)
	go func() {
		if err := e.remote.UpdateCellValue(rctx, rec.ID, fieldID, encoded); err != nil {
			if restoreErr := e.store.RestoreCells(slug, snapshot); restoreErr != nil {
				e.logger.Error("rollback failed", "slug", slug, "error", restoreErr)
			}
			e.logger.Error("cell edit rejected, rolled back",
				"slug", slug, "field", fieldID, "error", err)
			m.rollback(wrapRemote("update cell", err))
			return
		}
		m.confirm()
	}()

	return m, nil
}

// DeleteRecord removes a record optimistically. On remote failure the
// record and its cells are reinserted at their previous position.
func (e *Engine) DeleteRecord(ctx context.Context, slug string) (*Mutation, error) {
	rec, ok := e.store.Record(slug)
	if !ok {
		return nil, validationErr("delete record", "unknown record %q", slug)
	}
	if e.isPending(slug) {
		return nil, validationErr("delete record", "record %q is still being created", slug)
	}

	index := slugIndex(e.store.Slugs(rec.SheetID), slug)
	cells := e.store.Cells(rec.ID)
	e.store.DeleteRecord(rec)

	m := newMutation()
	m.markApplied()

	rctx := context.WithoutCancel(ctx)
	go func() {
		if err := e.remote.DeleteRecord(rctx, rec.ID); err != nil {
			e.store.CreateRecord(rec, index)
			e.store.SetCells(rec.ID, cells)
			e.logger.Error("record delete rejected, restored",
				"slug", slug, "error", err)
			m.rollback(wrapRemote("delete record", err))
			return
		}
		m.confirm()
	}()

	return m, nil
}

// ReorderRecord drops the record at sourceIndex in front of the record at
// destinationIndex (len meaning "after the last") and allocates a fresh
// order key between its new neighbors. The slug-list move and the key are
// applied locally at once. When the allocator reports no room the whole
// sheet is renumbered and written as one combined remote update.
//
// Remote failures here are logged but never rolled back: snapping a row
// back after a drag lands is worse than the transient inconsistency, which
// the user corrects by dragging again. The returned mutation still rejects
// so callers can surface the failure.
func (e *Engine) ReorderRecord(ctx context.Context, sheetID string, sourceIndex, destinationIndex int) (*Mutation, error) {
	records := e.store.Records(sheetID)
	n := len(records)
	if sourceIndex < 0 || sourceIndex >= n {
		return nil, validationErr("reorder record", "source index %d out of range", sourceIndex)
	}
	// destinationIndex names the position the record is dropped before;
	// n means "after the last record".
	if destinationIndex < 0 {
		destinationIndex = 0
	}
	if destinationIndex > n {
		destinationIndex = n
	}
	// Dropping a record onto itself or directly after itself changes nothing.
	if destinationIndex == sourceIndex || destinationIndex == sourceIndex+1 || n < 2 {
		return confirmedMutation(), nil
	}

	moved := records[sourceIndex]
	// Index the record occupies once its old position is vacated.
	finalIndex := destinationIndex
	if destinationIndex > sourceIndex {
		finalIndex = destinationIndex - 1
	}

	var lower, upper *types.Record
	if destinationIndex > 0 {
		lower = &records[destinationIndex-1]
	}
	if destinationIndex < n {
		upper = &records[destinationIndex]
	}

	restOrders := make([]int64, 0, n-1)
	for i, rec := range records {
		if i != sourceIndex {
			restOrders = append(restOrders, rec.Order)
		}
	}

	var order int64
	exhausted := false
	switch {
	case lower == nil:
		order = types.PrependOrder(restOrders)
	case upper == nil:
		order = types.AppendOrder(restOrders)
	default:
		var ok bool
		order, ok = types.OrderBetween(lower.Order, upper.Order)
		exhausted = !ok
	}

	m := newMutation()
	m.markApplied()
	rctx := context.WithoutCancel(ctx)

	if exhausted {
		// No room between the neighbors: renumber the whole sheet with
		// fresh evenly spaced keys and issue one combined update.
		arranged := types.SpliceMove(records, sourceIndex, finalIndex)
		newOrders := types.RenumberOrders(len(arranged))
		bySlug := make(map[string]int64, len(arranged))
		byID := make(map[string]int64, len(arranged))
		for i, rec := range arranged {
			bySlug[rec.Slug] = newOrders[i]
			byID[rec.ID] = newOrders[i]
		}
		e.store.ReorderRecord(sheetID, sourceIndex, finalIndex)
		e.store.ApplyOrders(bySlug)

		go func() {
			if err := e.remote.UpdateRecordOrders(rctx, byID); err != nil {
				e.logger.Warn("order renumber not persisted",
					"sheet", sheetID, "error", err)
				m.rollback(wrapRemote("update record orders", err))
				return
			}
			m.confirm()
		}()
		return m, nil
	}

	e.store.ReorderRecord(sheetID, sourceIndex, finalIndex)
	if err := e.store.SetRecordOrder(moved.Slug, order); err != nil {
		return nil, err
	}

	go func() {
		if err := e.remote.UpdateRecordOrder(rctx, moved.ID, order); err != nil {
			e.logger.Warn("record order not persisted",
				"sheet", sheetID, "slug", moved.Slug, "error", err)
			m.rollback(wrapRemote("update record order", err))
			return
		}
		m.confirm()
	}()
	return m, nil
}

// AddField appends a field to the sheet, assigning an id when the caller
// did not provide one. Discrete field actions flush to the remote
// immediately instead of debouncing.
func (e *Engine) AddField(ctx context.Context, sheetID string, field types.Field) (types.Field, *Mutation, error) {
	sheet, ok := e.store.Sheet(sheetID)
	if !ok {
		return types.Field{}, nil, validationErr("add field", "unknown sheet %q", sheetID)
	}
	if field.ID == "" {
		field.ID = e.identity.FieldID()
	}

	fields := append(sheet.CloneFields(), field)
	if err := validation.ValidateFields(fields); err != nil {
		return types.Field{}, nil, validationErr("add field", "%v", err)
	}

	if err := e.store.UpdateFields(sheetID, fields); err != nil {
		return types.Field{}, nil, err
	}
	return field, e.flushNow(ctx, sheetID, fields), nil
}

// RemoveField deletes a field and cascades its cells away. Flushes
// immediately.
func (e *Engine) RemoveField(ctx context.Context, sheetID, fieldID string) (*Mutation, error) {
	sheet, ok := e.store.Sheet(sheetID)
	if !ok {
		return nil, validationErr("remove field", "unknown sheet %q", sheetID)
	}
	if _, ok := sheet.Field(fieldID); !ok {
		return nil, validationErr("remove field", "unknown field %q", fieldID)
	}

	fields := make([]types.Field, 0, len(sheet.Fields)-1)
	for _, f := range sheet.Fields {
		if f.ID != fieldID {
			fields = append(fields, f)
		}
	}

	if err := e.store.UpdateFields(sheetID, fields); err != nil {
		return nil, err
	}
	e.store.PurgeFieldCells(sheetID, fieldID)
	return e.flushNow(ctx, sheetID, fields), nil
}

// ChangeField replaces one field definition (rename, resize, metadata
// edit). The store updates on every call for UI responsiveness; the remote
// write is debounced, so rapid edits within the window coalesce into a
// single call carrying the latest full field list.
func (e *Engine) ChangeField(ctx context.Context, sheetID string, field types.Field) (*Mutation, error) {
	sheet, ok := e.store.Sheet(sheetID)
	if !ok {
		return nil, validationErr("change field", "unknown sheet %q", sheetID)
	}
	index := sheet.FieldIndex(field.ID)
	if index < 0 {
		return nil, validationErr("change field", "unknown field %q", field.ID)
	}

	fields := sheet.CloneFields()
	fields[index] = field
	if err := validation.ValidateFields(fields); err != nil {
		return nil, validationErr("change field", "%v", err)
	}

	if err := e.store.UpdateFields(sheetID, fields); err != nil {
		return nil, err
	}
	return e.scheduleFlush(ctx, sheetID, fields), nil
}

// ReorderField splice-moves a field to a new position. Field order is
// implicit in array index, so no order keys are involved. Flushes
// immediately.
func (e *Engine) ReorderField(ctx context.Context, sheetID string, sourceIndex, destinationIndex int) (*Mutation, error) {
	sheet, ok := e.store.Sheet(sheetID)
	if !ok {
		return nil, validationErr("reorder field", "unknown sheet %q", sheetID)
	}
	if sourceIndex < 0 || sourceIndex >= len(sheet.Fields) {
		return nil, validationErr("reorder field", "source index %d out of range", sourceIndex)
	}

	fields := types.SpliceMove(sheet.CloneFields(), sourceIndex, destinationIndex)
	if err := e.store.UpdateFields(sheetID, fields); err != nil {
		return nil, err
	}
	return e.flushNow(ctx, sheetID, fields), nil
}

// Flush forces any pending debounced field update for the sheet out to the
// remote now. No-op when nothing is pending.
func (e *Engine) Flush(ctx context.Context, sheetID string) {
	e.mu.Lock()
	b := e.batches[sheetID]
	if b != nil && b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	e.mu.Unlock()
	e.flushFields(context.WithoutCancel(ctx), sheetID)
}

// scheduleFlush registers the latest field list for a sheet and arms (or
// re-arms) the trailing debounce timer.
func (e *Engine) scheduleFlush(ctx context.Context, sheetID string, fields []types.Field) *Mutation {
	m := newMutation()
	m.markApplied()
	rctx := context.WithoutCancel(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	b := e.batches[sheetID]
	if b == nil {
		b = &fieldBatch{}
		e.batches[sheetID] = b
	}
	b.fields = fields
	b.waiters = append(b.waiters, m)
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = e.scheduler.AfterFunc(e.debounce, func() {
		e.flushFields(rctx, sheetID)
	})
	return m
}

// flushNow registers the payload like scheduleFlush but issues the remote
// call right away, coalescing any edits that were still waiting on the
// timer.
func (e *Engine) flushNow(ctx context.Context, sheetID string, fields []types.Field) *Mutation {
	m := newMutation()
	m.markApplied()

	e.mu.Lock()
	b := e.batches[sheetID]
	if b == nil {
		b = &fieldBatch{}
		e.batches[sheetID] = b
	}
	b.fields = fields
	b.waiters = append(b.waiters, m)
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	e.mu.Unlock()

	go e.flushFields(context.WithoutCancel(ctx), sheetID)
	return m
}

// flushFields sends the pending field list for a sheet, settling every
// coalesced waiter with the outcome. Failures are logged and surfaced via
// the waiters, but the store keeps the optimistic field list; the field
// path does not roll back.
func (e *Engine) flushFields(ctx context.Context, sheetID string) {
	e.mu.Lock()
	b := e.batches[sheetID]
	if b == nil || b.fields == nil {
		e.mu.Unlock()
		return
	}
	fields := b.fields
	waiters := b.waiters
	b.fields = nil
	b.waiters = nil
	b.timer = nil
	e.mu.Unlock()

	if err := e.remote.UpdateFields(ctx, sheetID, fields); err != nil {
		e.logger.Error("field update not persisted", "sheet", sheetID, "error", err)
		werr := wrapRemote("update fields", err)
		for _, w := range waiters {
			w.rollback(werr)
		}
		return
	}
	for _, w := range waiters {
		w.confirm()
	}
}

func (e *Engine) markPending(slug string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pendingCreates[slug] = struct{}{}
}

func (e *Engine) clearPending(slug string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pendingCreates, slug)
}

func (e *Engine) isPending(slug string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.pendingCreates[slug]
	return ok
}

// wrapRemote maps a remote failure into the error taxonomy: not-found
// errors pass through, anything else becomes a RemoteError.
func wrapRemote(op string, err error) error {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}

func recordOrders(records []types.Record) []int64 {
	orders := make([]int64, len(records))
	for i, rec := range records {
		orders[i] = rec.Order
	}
	return orders
}

func slugIndex(slugs []string, slug string) int {
	for i, s := range slugs {
		if s == slug {
			return i
		}
	}
	return -1
}
