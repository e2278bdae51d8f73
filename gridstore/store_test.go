package gridstore

import (
	"testing"
	"time"

	"github.com/gridbase/gridstore/types"
)

func testSheet(id, appID string) types.Sheet {
	return types.Sheet{
		ID:    id,
		AppID: appID,
		Name:  "Sheet " + id,
		Fields: []types.Field{
			{ID: "f1", Name: "Title", Type: types.FieldText},
			{ID: "f2", Name: "Amount", Type: types.FieldNumber},
		},
		CreatedAt: time.Unix(1000, 0),
	}
}

func testRecord(slug, sheetID string, order int64) types.Record {
	return types.Record{
		ID:      "id-" + slug,
		SheetID: sheetID,
		Slug:    slug,
		Order:   order,
	}
}

func TestSetSheetsForAppPurgesStaleSheets(t *testing.T) {
	store := NewStore()
	store.AddSheet(testSheet("s1", "app1"))
	store.AddSheet(testSheet("s2", "app1"))
	store.AddSheet(testSheet("s3", "app2"))
	store.SetRecordsForSheet("s1", []types.Record{testRecord("r1", "s1", 0)})

	// s1 was deleted server-side; only s2 comes back.
	store.SetSheetsForApp("app1", []types.Sheet{testSheet("s2", "app1")})

	if _, ok := store.Sheet("s1"); ok {
		t.Error("sheet s1 should have been purged")
	}
	if _, ok := store.Record("r1"); ok {
		t.Error("records of a purged sheet should be gone")
	}
	if _, ok := store.Sheet("s2"); !ok {
		t.Error("sheet s2 should remain")
	}
	if _, ok := store.Sheet("s3"); !ok {
		t.Error("sheets of other apps must not be touched")
	}
}

func TestSetRecordsForSheetSortsByOrder(t *testing.T) {
	store := NewStore()
	store.AddSheet(testSheet("s1", "app1"))
	store.SetRecordsForSheet("s1", []types.Record{
		testRecord("rb", "s1", 5000),
		testRecord("ra", "s1", 0),
		testRecord("rc", "s1", 10000),
	})

	got := store.Slugs("s1")
	want := []string{"ra", "rb", "rc"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slug list = %v, want %v", got, want)
		}
	}
	if err := store.Verify("s1"); err != nil {
		t.Errorf("store inconsistent: %v", err)
	}
}

func TestSetRecordsForSheetPurgesOnlyThatSheet(t *testing.T) {
	store := NewStore()
	store.AddSheet(testSheet("s1", "app1"))
	store.AddSheet(testSheet("s2", "app1"))
	store.SetRecordsForSheet("s1", []types.Record{testRecord("r1", "s1", 0)})
	store.SetRecordsForSheet("s2", []types.Record{testRecord("r2", "s2", 0)})

	store.SetRecordsForSheet("s1", []types.Record{testRecord("r3", "s1", 0)})

	if _, ok := store.Record("r1"); ok {
		t.Error("r1 should have been replaced")
	}
	if _, ok := store.Record("r2"); !ok {
		t.Error("records of other sheets must survive")
	}
}

func TestMergeRecordsAccumulatesAndSorts(t *testing.T) {
	store := NewStore()
	store.AddSheet(testSheet("s1", "app1"))
	store.MergeRecords("s1", []types.Record{
		testRecord("ra", "s1", 0),
		testRecord("rc", "s1", 10000),
	})
	store.MergeRecords("s1", []types.Record{
		testRecord("rb", "s1", 5000),
		testRecord("ra", "s1", 0), // overlap with page one
	})

	got := store.Slugs("s1")
	want := []string{"ra", "rb", "rc"}
	if len(got) != len(want) {
		t.Fatalf("slug list = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slug list = %v, want %v", got, want)
		}
	}
	if err := store.Verify("s1"); err != nil {
		t.Errorf("store inconsistent: %v", err)
	}
}

func TestCreateRecordInsertsAtIndex(t *testing.T) {
	store := NewStore()
	store.AddSheet(testSheet("s1", "app1"))
	store.CreateRecord(testRecord("ra", "s1", 0), 0)
	store.CreateRecord(testRecord("rb", "s1", 5000), 1)
	store.CreateRecord(testRecord("rc", "s1", -5000), 0)

	got := store.Slugs("s1")
	want := []string{"rc", "ra", "rb"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slug list = %v, want %v", got, want)
		}
	}

	// Out-of-range index clamps to the end.
	store.CreateRecord(testRecord("rd", "s1", 10000), 99)
	if slugs := store.Slugs("s1"); slugs[len(slugs)-1] != "rd" {
		t.Errorf("expected rd appended, got %v", slugs)
	}
}

func TestUpdateRecordDataReplacesSingleCell(t *testing.T) {
	store := NewStore()
	store.SetTimeFunc(func() time.Time { return time.Unix(42, 0) })
	store.AddSheet(testSheet("s1", "app1"))
	rec := testRecord("r1", "s1", 0)
	store.CreateRecord(rec, 0)

	if err := store.UpdateRecordData("r1", "f1", types.StringValue("x")); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := store.UpdateRecordData("r1", "f2", types.NumberValue(1)); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := store.UpdateRecordData("r1", "f1", types.StringValue("y")); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	cells := store.Cells(rec.ID)
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	if v, _ := cells.Get("f1"); *v.DataString != "y" {
		t.Errorf("f1 = %q, want %q", *v.DataString, "y")
	}
	if cells[0].ModifiedAt != time.Unix(42, 0) {
		t.Errorf("cell not stamped with the store clock")
	}

	if err := store.UpdateRecordData("missing", "f1", types.StringValue("x")); err == nil {
		t.Error("expected error for unknown record")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	store := NewStore()
	store.AddSheet(testSheet("s1", "app1"))
	rec := testRecord("r1", "s1", 0)
	store.CreateRecord(rec, 0)
	_ = store.UpdateRecordData("r1", "f1", types.StringValue("x"))
	_ = store.UpdateRecordData("r1", "f2", types.NumberValue(1))

	snapshot, err := store.CellsSnapshot("r1")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	_ = store.UpdateRecordData("r1", "f1", types.StringValue("y"))
	_ = store.UpdateRecordData("r1", "f2", types.NumberValue(2))

	if err := store.RestoreCells("r1", snapshot); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	cells := store.Cells(rec.ID)
	if v, _ := cells.Get("f1"); *v.DataString != "x" {
		t.Errorf("f1 = %q after restore, want %q", *v.DataString, "x")
	}
	if v, _ := cells.Get("f2"); *v.DataNumber != 1 {
		t.Errorf("f2 = %v after restore, want 1", *v.DataNumber)
	}
}

func TestReorderRecordIsPureListMove(t *testing.T) {
	store := NewStore()
	store.AddSheet(testSheet("s1", "app1"))
	store.SetRecordsForSheet("s1", []types.Record{
		testRecord("ra", "s1", 0),
		testRecord("rb", "s1", 5000),
		testRecord("rc", "s1", 10000),
	})

	store.ReorderRecord("s1", 0, 2)

	got := store.Slugs("s1")
	want := []string{"rb", "rc", "ra"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slug list = %v, want %v", got, want)
		}
	}
	// Order keys are untouched; only the allocator rewrites them.
	if rec, _ := store.Record("ra"); rec.Order != 0 {
		t.Errorf("order changed by list move: %d", rec.Order)
	}
}

func TestDeleteRecordKeepsStoreConsistent(t *testing.T) {
	store := NewStore()
	store.AddSheet(testSheet("s1", "app1"))
	ra := testRecord("ra", "s1", 0)
	rb := testRecord("rb", "s1", 5000)
	store.SetRecordsForSheet("s1", []types.Record{ra, rb})
	_ = store.UpdateRecordData("ra", "f1", types.StringValue("x"))

	store.DeleteRecord(ra)

	if _, ok := store.Record("ra"); ok {
		t.Error("ra body should be gone")
	}
	if cells := store.Cells(ra.ID); len(cells) != 0 {
		t.Error("ra cells should cascade away")
	}
	if err := store.Verify("s1"); err != nil {
		t.Errorf("store inconsistent after delete: %v", err)
	}
}

// Store consistency must hold after any interleaving of record operations.
func TestStoreConsistencyUnderMutationSequence(t *testing.T) {
	store := NewStore()
	store.AddSheet(testSheet("s1", "app1"))

	store.SetRecordsForSheet("s1", []types.Record{
		testRecord("ra", "s1", 0),
		testRecord("rb", "s1", 5000),
	})
	store.CreateRecord(testRecord("rc", "s1", 10000), 2)
	store.ReorderRecord("s1", 2, 0)
	rb, _ := store.Record("rb")
	store.DeleteRecord(rb)
	store.CreateRecord(testRecord("rd", "s1", 15000), 1)
	store.ReorderRecord("s1", 0, 2)
	store.SetRecordsForSheet("s1", []types.Record{
		testRecord("re", "s1", 0),
		testRecord("ra", "s1", 5000),
	})

	if err := store.Verify("s1"); err != nil {
		t.Errorf("store inconsistent: %v", err)
	}
	if got := len(store.Records("s1")); got != 2 {
		t.Errorf("expected 2 records, got %d", got)
	}
}

func TestUpdateFieldsReplacesWholeList(t *testing.T) {
	store := NewStore()
	store.AddSheet(testSheet("s1", "app1"))

	fields := []types.Field{{ID: "f9", Name: "Only", Type: types.FieldText}}
	if err := store.UpdateFields("s1", fields); err != nil {
		t.Fatalf("update fields failed: %v", err)
	}

	sheet, _ := store.Sheet("s1")
	if len(sheet.Fields) != 1 || sheet.Fields[0].ID != "f9" {
		t.Errorf("fields = %v, want only f9", sheet.Fields)
	}

	if err := store.UpdateFields("missing", fields); err == nil {
		t.Error("expected error for unknown sheet")
	}
}
