package generic_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/record-engine/generic"
)

func baseRecord() *generic.Record {
	return &generic.Record{
		ID:        "wid-000001",
		Kind:      widgetKind,
		Status:    widgetOpen,
		Priority:  generic.PriorityHigh,
		Category:  "hardware",
		Tags:      []string{"red", "blue"},
		Subject:   "subject",
		CreatedAt: t0(),
		UpdatedAt: t0(),
		Version:   1,
	}
}

func TestDiff_IdenticalSnapshotsProduceNoChanges(t *testing.T) {
	// GIVEN: Two snapshots with equal field values
	// WHEN: Diffing
	// THEN: The changes map is empty, even across separate clones

	a := baseRecord()
	b := a.Clone()

	if changes := generic.Diff(a, b); len(changes) != 0 {
		t.Errorf("expected empty diff, got %v", changes)
	}
	if changes := generic.Diff(a, a); len(changes) != 0 {
		t.Errorf("expected empty self-diff, got %v", changes)
	}
}

func TestDiff_ReportsFromToPerChangedField(t *testing.T) {
	// GIVEN: A snapshot with three fields changed
	// WHEN: Diffing old against new
	// THEN: Exactly those three fields appear, each with the right pair

	old := baseRecord()
	new := old.Clone()
	new.Status = widgetActive
	new.Priority = generic.PriorityUrgent
	new.Assignee = "agent-7"

	changes := generic.Diff(old, new)
	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %d: %v", len(changes), changes)
	}
	if c := changes["status"]; c.From != "open" || c.To != "active" {
		t.Errorf("status change wrong: %+v", c)
	}
	if c := changes["priority"]; c.From != "high" || c.To != "urgent" {
		t.Errorf("priority change wrong: %+v", c)
	}
	if c := changes["assignee"]; c.From != "" || c.To != "agent-7" {
		t.Errorf("assignee change wrong: %+v", c)
	}
}

func TestDiff_TagsCompareAsSet(t *testing.T) {
	// GIVEN: The same tags in a different order
	// WHEN: Diffing
	// THEN: No change; adding a tag does produce one

	old := baseRecord()
	reordered := old.Clone()
	reordered.Tags = []string{"blue", "red"}

	if changes := generic.Diff(old, reordered); len(changes) != 0 {
		t.Errorf("tag order should not diff: %v", changes)
	}

	grown := old.Clone()
	grown.Tags = append(grown.Tags, "green")
	changes := generic.Diff(old, grown)
	if _, ok := changes["tags"]; !ok || len(changes) != 1 {
		t.Errorf("expected a single tags change, got %v", changes)
	}
}

func TestDiff_IgnoresBookkeepingFields(t *testing.T) {
	// GIVEN: Snapshots differing only in version, updatedAt, slaStatus and
	//        history
	// WHEN: Diffing
	// THEN: Empty

	old := baseRecord()
	new := old.Clone()
	new.Version = 9
	new.UpdatedAt = t0().Add(time.Hour)
	new.SLAStatus = generic.SLABreached
	new.History = append(new.History, generic.HistoryEntry{Action: generic.ActionCommented})

	if changes := generic.Diff(old, new); len(changes) != 0 {
		t.Errorf("bookkeeping fields leaked into diff: %v", changes)
	}
}

func TestDiff_DecimalAndTimeFields(t *testing.T) {
	// GIVEN: Changed amounts and a newly set due date
	// WHEN: Diffing
	// THEN: Amounts serialize as decimal strings, times as RFC3339, and a
	//       nil time reports nil

	old := baseRecord()
	new := old.Clone()
	new.TotalAmount = decimal.RequireFromString("1880")
	due := t0().Add(4 * time.Hour)
	new.DueDate = &due

	changes := generic.Diff(old, new)
	if c := changes["total_amount"]; c.From != "0" || c.To != "1880" {
		t.Errorf("total_amount change wrong: %+v", c)
	}
	c, ok := changes["due_date"]
	if !ok {
		t.Fatalf("expected due_date change, got %v", changes)
	}
	if c.From != nil {
		t.Errorf("expected nil From for unset time, got %v", c.From)
	}
	if c.To != due.Format(time.RFC3339) {
		t.Errorf("expected RFC3339 To, got %v", c.To)
	}
}
