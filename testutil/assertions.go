package testutil

import (
	"testing"

	"github.com/gridbase/gridstore/gridstore"
	"github.com/gridbase/gridstore/types"
)

// AssertRecordCount checks the number of records in a sheet
func AssertRecordCount(t *testing.T, store *gridstore.Store, sheetID string, want int) {
	t.Helper()
	if got := len(store.Records(sheetID)); got != want {
		t.Errorf("sheet %s has %d records, want %d", sheetID, got, want)
	}
}

// AssertSlugOrder checks the exact slug sequence of a sheet
func AssertSlugOrder(t *testing.T, store *gridstore.Store, sheetID string, want []string) {
	t.Helper()
	got := store.Slugs(sheetID)
	if len(got) != len(want) {
		t.Errorf("sheet %s slug list = %v, want %v", sheetID, got, want)
		return
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sheet %s slug list = %v, want %v", sheetID, got, want)
			return
		}
	}
}

// AssertCellString checks that a record's cell holds the given string
func AssertCellString(t *testing.T, store *gridstore.Store, recordID, fieldID, want string) {
	t.Helper()
	v, ok := store.Cells(recordID).Get(fieldID)
	if !ok {
		t.Errorf("record %s has no cell for field %s", recordID, fieldID)
		return
	}
	if v.DataString == nil {
		t.Errorf("record %s field %s has no string value: %+v", recordID, fieldID, v)
		return
	}
	if *v.DataString != want {
		t.Errorf("record %s field %s = %q, want %q", recordID, fieldID, *v.DataString, want)
	}
}

// AssertCellNumber checks that a record's cell holds the given number
func AssertCellNumber(t *testing.T, store *gridstore.Store, recordID, fieldID string, want float64) {
	t.Helper()
	v, ok := store.Cells(recordID).Get(fieldID)
	if !ok {
		t.Errorf("record %s has no cell for field %s", recordID, fieldID)
		return
	}
	if v.DataNumber == nil {
		t.Errorf("record %s field %s has no number value: %+v", recordID, fieldID, v)
		return
	}
	if *v.DataNumber != want {
		t.Errorf("record %s field %s = %v, want %v", recordID, fieldID, *v.DataNumber, want)
	}
}

// AssertCellAbsent checks that a record has no cell for the field
func AssertCellAbsent(t *testing.T, store *gridstore.Store, recordID, fieldID string) {
	t.Helper()
	if v, ok := store.Cells(recordID).Get(fieldID); ok {
		t.Errorf("record %s field %s unexpectedly present: %+v", recordID, fieldID, v)
	}
}

// AssertConsistent checks the slug-list/record-body invariant of a sheet
func AssertConsistent(t *testing.T, store *gridstore.Store, sheetID string) {
	t.Helper()
	if err := store.Verify(sheetID); err != nil {
		t.Errorf("sheet %s inconsistent: %v", sheetID, err)
	}
}

// AssertOrdersStrictlyIncreasing checks that record order keys rise with
// list position
func AssertOrdersStrictlyIncreasing(t *testing.T, records []types.Record) {
	t.Helper()
	for i := 1; i < len(records); i++ {
		if records[i].Order <= records[i-1].Order {
			t.Errorf("order keys not strictly increasing at index %d: %d then %d",
				i, records[i-1].Order, records[i].Order)
			return
		}
	}
}
