/*
history.go - Append-only audit trail

PURPOSE:
  Trail is the ONLY mutator of Record.History. Every committed mutation in
  the store funnels through Append, which assigns the entry's ID and
  timestamp and pushes it to the end of the sequence.

APPEND-ONLY CONTRACT:
  - Entries are never edited, removed, or reordered
  - History length only grows
  - Entries are totally ordered by timestamp, ties broken by insert order

  This invariant is the basis of the audit guarantee the whole engine
  exists to provide, so it lives in its own small, independently tested
  component rather than inline in the store's write path.

SEE ALSO:
  - store.go: Calls Append on every mutation
  - store/sqlite: Archives trails of deleted records
*/
package generic

// Trail appends immutable history entries to records.
type Trail struct {
	clock Clock
	ids   IDGenerator
}

func NewTrail(clock Clock, ids IDGenerator) *Trail {
	return &Trail{clock: clock, ids: ids}
}

// Append assigns the entry's ID and timestamp (when unset) and pushes it to
// the end of rec.History. Returns the entry as stored.
func (t *Trail) Append(rec *Record, entry HistoryEntry) HistoryEntry {
	if entry.ID == "" {
		entry.ID = EntryID(t.ids.NewID("hist"))
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = t.clock.Now()
	}
	rec.History = append(rec.History, entry)
	return entry
}
