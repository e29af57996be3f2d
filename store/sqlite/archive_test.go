package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/record-engine/generic"
	"github.com/warp/record-engine/store/sqlite"
)

func memoryArchive(t *testing.T) *sqlite.Archive {
	t.Helper()
	archive, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { archive.Close() })
	return archive
}

func sampleRecord(id string, entries int) *generic.Record {
	createdAt := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	rec := &generic.Record{
		ID:          generic.RecordID(id),
		Kind:        "ticket",
		Status:      "closed",
		Priority:    generic.PriorityHigh,
		Subject:     "Flaky export job",
		Description: "Nightly export fails every other run.",
		CreatedBy:   "user-1",
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt.Add(time.Hour),
		Version:     int64(entries),
		TotalAmount: decimal.Zero,
	}
	for i := 0; i < entries; i++ {
		action := generic.ActionUpdated
		if i == 0 {
			action = generic.ActionCreated
		}
		entry := generic.HistoryEntry{
			ID:        generic.EntryID(id + "-e" + string(rune('a'+i))),
			Action:    action,
			Actor:     "user-1",
			Timestamp: createdAt.Add(time.Duration(i) * time.Minute),
		}
		if i > 0 {
			entry.Changes = map[string]generic.FieldChange{
				"status": {From: "open", To: "closed"},
			}
		}
		rec.History = append(rec.History, entry)
	}
	return rec
}

func TestArchiveRecord_RoundTripsSnapshotAndHistory(t *testing.T) {
	ctx := context.Background()
	archive := memoryArchive(t)

	rec := sampleRecord("tkt-000001", 3)
	require.NoError(t, archive.ArchiveRecord(ctx, rec))

	tombstones, err := archive.GetArchived(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, tombstones, 1)

	got := tombstones[0].Record
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Status, got.Status)
	assert.Equal(t, rec.Version, got.Version)
	require.Len(t, got.History, 3)
	assert.Equal(t, generic.ActionCreated, got.History[0].Action)
	assert.Equal(t, "closed", got.History[1].Changes["status"].To)
	assert.False(t, tombstones[0].ArchivedAt.IsZero())
}

func TestArchiveRecord_RepeatedDeletesKeepSeparateTombstones(t *testing.T) {
	// Append-only: deleting, re-creating, and deleting the same ID again
	// must never overwrite the first tombstone.
	ctx := context.Background()
	archive := memoryArchive(t)

	first := sampleRecord("tkt-000002", 1)
	require.NoError(t, archive.ArchiveRecord(ctx, first))

	second := sampleRecord("tkt-000002", 2)
	require.NoError(t, archive.ArchiveRecord(ctx, second))

	tombstones, err := archive.GetArchived(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, tombstones, 2)
	assert.Equal(t, int64(1), tombstones[0].Record.Version)
	assert.Equal(t, int64(2), tombstones[1].Record.Version)
}

func TestListArchived_FiltersByKind(t *testing.T) {
	ctx := context.Background()
	archive := memoryArchive(t)

	ticket := sampleRecord("tkt-000003", 1)
	require.NoError(t, archive.ArchiveRecord(ctx, ticket))

	invoice := sampleRecord("inv-000001", 1)
	invoice.Kind = "invoice"
	require.NoError(t, archive.ArchiveRecord(ctx, invoice))

	tickets, err := archive.ListArchived(ctx, "ticket")
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, generic.RecordID("tkt-000003"), tickets[0].Record.ID)

	invoices, err := archive.ListArchived(ctx, "invoice")
	require.NoError(t, err)
	require.Len(t, invoices, 1)
}

func TestStoreDelete_WritesTombstoneThroughArchive(t *testing.T) {
	// End to end: a store wired with the SQLite archive tombstones the
	// record, history included, before dropping it from the live index.
	ctx := context.Background()
	archive := memoryArchive(t)

	store := generic.NewRecordStore(generic.StoreConfig{
		Clock:    generic.NewFixedClock(time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)),
		IDs:      generic.NewSequenceGenerator(),
		Families: []generic.FamilySpec{newArchiveTestFamily()},
		Archive:  archive,
	})

	rec, err := store.Create(ctx, "note", generic.CreateInput{Subject: "keep the trail"}, "user-1")
	require.NoError(t, err)
	_, err = store.AppendComment(ctx, rec.ID, "about to go", "user-1", generic.VisibilityInternal)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, rec.ID))

	tombstones, err := archive.GetArchived(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, tombstones, 1)
	assert.Len(t, tombstones[0].Record.History, 2)
	assert.Equal(t, "about to go", tombstones[0].Record.History[1].Comment)
}

// newArchiveTestFamily is the smallest family spec the end-to-end test needs.
type archiveTestFamily struct{}

func newArchiveTestFamily() *archiveTestFamily { return &archiveTestFamily{} }

func (f *archiveTestFamily) Kind() generic.Kind                    { return "note" }
func (f *archiveTestFamily) IDPrefix() string                      { return "note" }
func (f *archiveTestFamily) InitialStatus() generic.Status         { return "open" }
func (f *archiveTestFamily) ValidStatus(s generic.Status) bool     { return s == "open" || s == "done" }
func (f *archiveTestFamily) Terminal(s generic.Status) bool        { return s == "done" }
func (f *archiveTestFamily) Success(s generic.Status) bool         { return s == "done" }
func (f *archiveTestFamily) Finalize(rec *generic.Record)          {}
func (f *archiveTestFamily) Validate(rec *generic.Record) error    { return nil }
func (f *archiveTestFamily) DueDate(rec *generic.Record) *time.Time { return nil }

func (f *archiveTestFamily) TransitionAction(from, to generic.Status) generic.Action {
	return generic.ActionStatusChanged
}

func (f *archiveTestFamily) ApplyTransition(rec *generic.Record, from, to generic.Status, now time.Time) {
}

func (f *archiveTestFamily) SearchFields(rec *generic.Record) []string { return nil }

func (f *archiveTestFamily) DefaultSort() generic.SortSpec {
	return generic.SortSpec{Key: generic.SortByUpdatedAt, Direction: generic.SortDesc}
}
