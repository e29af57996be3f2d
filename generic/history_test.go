package generic_test

import (
	"testing"
	"time"

	"github.com/warp/record-engine/generic"
)

func TestTrail_AssignsIdentityAndTimestamp(t *testing.T) {
	// GIVEN: An entry with no ID and no timestamp
	// WHEN: Appending it
	// THEN: Both are assigned and the entry lands at the end of the history

	trail := generic.NewTrail(generic.NewFixedClock(t0()), generic.NewSequenceGenerator())
	rec := &generic.Record{}

	stored := trail.Append(rec, generic.HistoryEntry{
		Action: generic.ActionCreated,
		Actor:  "user-1",
	})

	if stored.ID == "" {
		t.Error("expected an assigned entry ID")
	}
	if !stored.Timestamp.Equal(t0()) {
		t.Errorf("expected clock timestamp, got %v", stored.Timestamp)
	}
	if len(rec.History) != 1 || rec.History[0].ID != stored.ID {
		t.Errorf("entry not appended: %+v", rec.History)
	}
}

func TestTrail_PreservesExistingTimestamp(t *testing.T) {
	trail := generic.NewTrail(generic.NewFixedClock(t0()), generic.NewSequenceGenerator())
	rec := &generic.Record{}

	at := t0().Add(-time.Hour)
	stored := trail.Append(rec, generic.HistoryEntry{
		Action:    generic.ActionCommented,
		Timestamp: at,
	})
	if !stored.Timestamp.Equal(at) {
		t.Errorf("preset timestamp overwritten: %v", stored.Timestamp)
	}
}

func TestTrail_HistoryOnlyGrows(t *testing.T) {
	// GIVEN: A record with existing entries
	// WHEN: Appending more
	// THEN: Earlier entries are untouched and order is insertion order

	trail := generic.NewTrail(generic.NewFixedClock(t0()), generic.NewSequenceGenerator())
	rec := &generic.Record{}

	first := trail.Append(rec, generic.HistoryEntry{Action: generic.ActionCreated})
	second := trail.Append(rec, generic.HistoryEntry{Action: generic.ActionUpdated})
	third := trail.Append(rec, generic.HistoryEntry{Action: generic.ActionCommented})

	if len(rec.History) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(rec.History))
	}
	for i, want := range []generic.EntryID{first.ID, second.ID, third.ID} {
		if rec.History[i].ID != want {
			t.Errorf("entry %d out of order: %s", i, rec.History[i].ID)
		}
	}
}
