// Package testutil provides a shared test fixture and assertion helpers.
// LoadGrid builds a store populated with a small, fully known universe of
// sheets, records and cells so tests can assert against stable data instead
// of constructing their own scaffolding.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/gridbase/gridstore/gridstore"
	"github.com/gridbase/gridstore/types"
)

// GridData provides typed access to the fixture entities
type GridData struct {
	// Sheets
	Tasks     types.Sheet // three fields: title, estimate, status
	Contacts  types.Sheet // two fields: name, email
	OtherApps types.Sheet // belongs to a different app

	// Task records, in list order
	WriteReport  types.Record // order 0
	ReviewBudget types.Record // order 5000
	ShipRelease  types.Record // order 10000

	// Contact records
	Ada types.Record

	// Cells keyed by record id
	Cells map[string]types.CellList
}

// FixtureTime is the creation timestamp every fixture entity carries
var FixtureTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// LoadGrid returns a store populated with the fixture universe
func LoadGrid(t *testing.T) (*gridstore.Store, *GridData) {
	t.Helper()

	data := buildGridData()
	store := gridstore.NewStore()
	store.SetTimeFunc(func() time.Time { return FixtureTime })

	store.AddSheet(data.Tasks)
	store.AddSheet(data.Contacts)
	store.AddSheet(data.OtherApps)
	store.SetRecordsForSheet(data.Tasks.ID, []types.Record{
		data.WriteReport, data.ReviewBudget, data.ShipRelease,
	})
	store.SetRecordsForSheet(data.Contacts.ID, []types.Record{data.Ada})
	for recordID, cells := range data.Cells {
		store.SetCells(recordID, cells)
	}

	return store, data
}

// PopulateRemote writes the fixture universe through a Remote boundary,
// exercising PutSheet and CreateRecord the way the engine would.
func PopulateRemote(t *testing.T, ctx context.Context, remote gridstore.Remote, data *GridData) {
	t.Helper()

	for _, sheet := range []types.Sheet{data.Tasks, data.Contacts, data.OtherApps} {
		if err := remote.PutSheet(ctx, sheet); err != nil {
			t.Fatalf("put sheet %s: %v", sheet.ID, err)
		}
	}
	for _, rec := range []types.Record{
		data.WriteReport, data.ReviewBudget, data.ShipRelease, data.Ada,
	} {
		if err := remote.CreateRecord(ctx, rec, data.Cells[rec.ID]); err != nil {
			t.Fatalf("create record %s: %v", rec.Slug, err)
		}
	}
}

func buildGridData() *GridData {
	statusOptions := &types.SelectionMetadata{
		Options: []types.SelectionOption{
			{ID: "opt-todo", Value: "Todo", Color: "gray"},
			{ID: "opt-doing", Value: "Doing", Color: "blue"},
			{ID: "opt-done", Value: "Done", Color: "green"},
		},
		OptionType: types.OptionText,
	}

	data := &GridData{
		Tasks: types.Sheet{
			ID:    "sheet-tasks",
			AppID: "app-main",
			Name:  "Tasks",
			Fields: []types.Field{
				{ID: "fld-title", Name: "Title", Type: types.FieldText},
				{ID: "fld-estimate", Name: "Estimate", Type: types.FieldNumber},
				{ID: "fld-status", Name: "Status", Type: types.FieldSelection, Selection: statusOptions},
			},
			CreatedAt: FixtureTime,
		},
		Contacts: types.Sheet{
			ID:    "sheet-contacts",
			AppID: "app-main",
			Name:  "Contacts",
			Fields: []types.Field{
				{ID: "fld-name", Name: "Name", Type: types.FieldText},
				{ID: "fld-email", Name: "Email", Type: types.FieldText},
			},
			CreatedAt: FixtureTime.Add(time.Minute),
		},
		OtherApps: types.Sheet{
			ID:        "sheet-other",
			AppID:     "app-other",
			Name:      "Elsewhere",
			Fields:    []types.Field{{ID: "fld-x", Name: "X", Type: types.FieldText}},
			CreatedAt: FixtureTime,
		},

		WriteReport:  fixtureRecord("rwritereport0001", "sheet-tasks", 0),
		ReviewBudget: fixtureRecord("rreviewbudget001", "sheet-tasks", 5000),
		ShipRelease:  fixtureRecord("rshiprelease0001", "sheet-tasks", 10000),
		Ada:          fixtureRecord("rada000000000001", "sheet-contacts", 0),
	}

	data.Cells = map[string]types.CellList{
		data.WriteReport.ID: types.CellList{}.
			Set("fld-title", types.StringValue("Write report"), FixtureTime).
			Set("fld-estimate", types.NumberValue(3), FixtureTime).
			Set("fld-status", types.StringValue("opt-doing"), FixtureTime),
		data.ReviewBudget.ID: types.CellList{}.
			Set("fld-title", types.StringValue("Review budget"), FixtureTime).
			Set("fld-status", types.StringValue("opt-todo"), FixtureTime),
		data.ShipRelease.ID: types.CellList{}.
			Set("fld-title", types.StringValue("Ship release"), FixtureTime).
			Set("fld-estimate", types.NumberValue(8), FixtureTime),
		data.Ada.ID: types.CellList{}.
			Set("fld-name", types.StringValue("Ada Lovelace"), FixtureTime).
			Set("fld-email", types.StringValue("ada@example.com"), FixtureTime),
	}

	return data
}

func fixtureRecord(slug, sheetID string, order int64) types.Record {
	return types.Record{
		ID:        "id-" + slug,
		SheetID:   sheetID,
		Slug:      slug,
		Order:     order,
		CreatedAt: FixtureTime,
	}
}
