package gridstore

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultPageSize is the records-per-page default for the loader
const DefaultPageSize = 50

// LoaderOptions configures a Loader. Zero values select defaults.
type LoaderOptions struct {
	Logger   *slog.Logger
	PageSize int
}

// Loader fetches a sheet's records and cells from the remote in fixed-size
// pages and merges them into the store. Pages accumulate; loading page N
// never discards pages 0..N-1. A failed page leaves everything previously
// loaded intact, and retrying is the caller's decision.
//
// The cursor is a zero-based offset, not a record identity, so records
// reordered or inserted between page loads can be duplicated or skipped
// across page boundaries. MergeRecords upserts by slug, which absorbs the
// duplicate case; the skip case is inherent to offset pagination.
type Loader struct {
	store    *Store
	remote   Remote
	logger   *slog.Logger
	pageSize int
}

// NewLoader creates a loader bound to a store and a remote boundary
func NewLoader(store *Store, remote Remote, opts LoaderOptions) *Loader {
	l := &Loader{
		store:    store,
		remote:   remote,
		logger:   opts.Logger,
		pageSize: opts.PageSize,
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.pageSize <= 0 {
		l.pageSize = DefaultPageSize
	}
	return l
}

// LoadSheet fetches a sheet definition into the store
func (l *Loader) LoadSheet(ctx context.Context, sheetID string) error {
	sheet, err := l.remote.GetSheet(ctx, sheetID)
	if err != nil {
		return fmt.Errorf("load sheet %s: %w", sheetID, err)
	}
	l.store.AddSheet(sheet)
	return nil
}

// LoadSheetsForApp fetches all of an app's sheets, replacing the app's
// slice of the store atomically
func (l *Loader) LoadSheetsForApp(ctx context.Context, appID string) error {
	sheets, err := l.remote.ListSheets(ctx, appID)
	if err != nil {
		return fmt.Errorf("load sheets for app %s: %w", appID, err)
	}
	l.store.SetSheetsForApp(appID, sheets)
	return nil
}

// LoadPage fetches one page of records starting at cursor, batch-fetches
// the cells of every record on the page, and merges both into the store.
// It returns the next cursor (always cursor + page size) and whether the
// end was reached: a page shorter than the page size means there is
// nothing further, and callers must stop then rather than trust the
// cursor alone.
func (l *Loader) LoadPage(ctx context.Context, sheetID string, cursor int) (next int, done bool, err error) {
	if cursor < 0 {
		cursor = 0
	}

	records, err := l.remote.ListRecords(ctx, sheetID, cursor, l.pageSize)
	if err != nil {
		return cursor, false, fmt.Errorf("load records page at %d: %w", cursor, err)
	}

	if len(records) > 0 {
		recordIDs := make([]string, len(records))
		for i, rec := range records {
			recordIDs[i] = rec.ID
		}
		cellsByRecord, err := l.remote.ListCells(ctx, recordIDs)
		if err != nil {
			// The store is only touched once both calls succeed, so a cell
			// fetch failure leaves earlier pages intact.
			return cursor, false, fmt.Errorf("load cells for page at %d: %w", cursor, err)
		}

		l.store.MergeRecords(sheetID, records)
		for recordID, cells := range cellsByRecord {
			l.store.SetCells(recordID, cells)
		}
	}

	l.logger.Debug("page loaded",
		"sheet", sheetID, "cursor", cursor, "records", len(records))
	return cursor + l.pageSize, len(records) < l.pageSize, nil
}

// LoadAll pages through the whole sheet until a short page
func (l *Loader) LoadAll(ctx context.Context, sheetID string) error {
	cursor := 0
	for {
		next, done, err := l.LoadPage(ctx, sheetID, cursor)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		cursor = next
	}
}
