package testutil

import "testing"

func TestLoadGridFixture(t *testing.T) {
	store, data := LoadGrid(t)

	AssertRecordCount(t, store, data.Tasks.ID, 3)
	AssertRecordCount(t, store, data.Contacts.ID, 1)
	AssertSlugOrder(t, store, data.Tasks.ID, []string{
		data.WriteReport.Slug, data.ReviewBudget.Slug, data.ShipRelease.Slug,
	})
	AssertConsistent(t, store, data.Tasks.ID)
	AssertConsistent(t, store, data.Contacts.ID)

	AssertCellString(t, store, data.WriteReport.ID, "fld-title", "Write report")
	AssertCellNumber(t, store, data.WriteReport.ID, "fld-estimate", 3)
	AssertCellAbsent(t, store, data.ReviewBudget.ID, "fld-estimate")

	AssertOrdersStrictlyIncreasing(t, store.Records(data.Tasks.ID))

	if got := len(store.Sheets("app-main")); got != 2 {
		t.Errorf("app-main has %d sheets, want 2", got)
	}
	if got := len(store.Sheets("app-other")); got != 1 {
		t.Errorf("app-other has %d sheets, want 1", got)
	}
}
