/*
store.go - RecordStore, the orchestrating component

PURPOSE:
  Owns the authoritative collection of Records and coordinates the other
  components on every mutation:

    Create/Update ──▶ apply payload ──▶ family Finalize + Validate
                                          │
                                          ▼
                       Diff old vs new snapshot (diff.go)
                                          │
                                          ▼
                       Trail.Append one HistoryEntry (history.go)
                                          │
                                          ▼
                       refresh SLA status (duedate.go) ──▶ commit

CONCURRENCY:
  A single sync.RWMutex guards the index. Mutations hold the write lock
  across the whole read-diff-append-commit sequence, so every committed
  mutation is atomic: exactly one new history entry per field change, no
  partial states. Reads take the read lock and hand out deep copies.

OPTIMISTIC CONCURRENCY:
  Update requires the version the caller last observed. On mismatch it
  fails with ConflictError and has no observable effect; callers re-fetch
  and retry with their own backoff.

DELETION:
  Delete removes the record and its history from the live index. When an
  Archive is configured, the full snapshot (history included) is written
  to it first, so compliance deployments keep a tombstone.

SEE ALSO:
  - family.go: Per-family behavior invoked on the write path
  - store/sqlite/archive.go: SQLite tombstone archive
*/
package generic

import (
	"context"
	"fmt"
	"sync"
)

// =============================================================================
// ARCHIVE - optional tombstone sink for deleted records
// =============================================================================

// Archive receives the final snapshot of a record being deleted. A nil
// archive means deleted histories are discarded with the record.
type Archive interface {
	ArchiveRecord(ctx context.Context, rec *Record) error
}

// =============================================================================
// RECORD STORE
// =============================================================================

// StoreConfig wires the store's collaborators. Clock and IDs default to
// the production implementations; Families is required.
type StoreConfig struct {
	Clock    Clock
	IDs      IDGenerator
	Families []FamilySpec
	Archive  Archive
}

// RecordStore owns all Records. One store per process, passed explicitly
// to whatever needs it.
type RecordStore struct {
	mu      sync.RWMutex
	records map[RecordID]*Record
	order   []RecordID // insertion order; enumeration is newest-first

	clock    Clock
	ids      IDGenerator
	trail    *Trail
	families map[Kind]FamilySpec
	filters  *FilterEngine
	stats    *StatsAggregator
	archive  Archive
}

func NewRecordStore(cfg StoreConfig) *RecordStore {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.IDs == nil {
		cfg.IDs = NewUUIDGenerator()
	}
	families := make(map[Kind]FamilySpec, len(cfg.Families))
	for _, s := range cfg.Families {
		families[s.Kind()] = s
	}
	return &RecordStore{
		records:  make(map[RecordID]*Record),
		clock:    cfg.Clock,
		ids:      cfg.IDs,
		trail:    NewTrail(cfg.Clock, cfg.IDs),
		families: families,
		filters:  NewFilterEngine(cfg.Families...),
		stats:    NewStatsAggregator(cfg.Families...),
		archive:  cfg.Archive,
	}
}

// =============================================================================
// CREATE
// =============================================================================

// Create validates the payload against the family, assigns identity and
// timestamps, derives the due date, and commits the record with a single
// "created" history entry.
func (s *RecordStore) Create(ctx context.Context, kind Kind, input CreateInput, actor string) (*Record, error) {
	spec, ok := s.families[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	rec := &Record{
		ID:        RecordID(s.ids.NewID(spec.IDPrefix())),
		Kind:      kind,
		Status:    spec.InitialStatus(),
		Priority:  input.Priority,
		Category:  input.Category,
		Tags:      append([]string(nil), input.Tags...),
		CreatedBy: actor,
		Assignee:  input.Assignee,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,

		Subject:     input.Subject,
		Description: input.Description,
		Requester:   input.Requester,

		InvoiceNumber:  input.InvoiceNumber,
		CustomerName:   input.CustomerName,
		CustomerEmail:  input.CustomerEmail,
		Notes:          input.Notes,
		LineItems:      append([]LineItem(nil), input.LineItems...),
		TaxAmount:      input.TaxAmount,
		DiscountAmount: input.DiscountAmount,
		NetTermsDays:   input.NetTermsDays,
	}
	if input.IssueDate != nil {
		issued := *input.IssueDate
		rec.IssueDate = &issued
	}

	spec.Finalize(rec)
	if err := spec.Validate(rec); err != nil {
		return nil, err
	}

	rec.DueDate = spec.DueDate(rec)
	if rec.DueDate != nil {
		rec.SLAStatus = ComputeSLAStatus(now, rec.CreatedAt, *rec.DueDate, false, "")
	}

	s.trail.Append(rec, HistoryEntry{Action: ActionCreated, Actor: actor})

	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return rec.Clone(), nil
}

// =============================================================================
// READS
// =============================================================================

// Get returns a deep copy of the record, with the SLA classification
// refreshed against the current clock for non-terminal records.
func (s *RecordStore) Get(ctx context.Context, id RecordID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return s.freshCopy(rec), nil
}

// List evaluates the filter and ordering over a snapshot of the index.
// Zero-value sort uses the family default (newest activity first).
func (s *RecordStore) List(ctx context.Context, f Filter, sortSpec SortSpec) []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filters.Apply(s.snapshotLocked(), f)
	if sortSpec.Key == "" {
		sortSpec = s.filters.DefaultSortFor(f)
	}
	ordered := s.filters.Sort(matched, sortSpec)

	out := make([]*Record, len(ordered))
	for i, rec := range ordered {
		out[i] = s.freshCopy(rec)
	}
	return out
}

// ComputeStats aggregates over the (optionally filtered) record set.
func (s *RecordStore) ComputeStats(ctx context.Context, f *Filter) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.snapshotLocked()
	if f != nil && !f.Empty() {
		records = s.filters.Apply(records, *f)
	}
	return s.stats.Compute(records, s.clock.Now())
}

// snapshotLocked enumerates records newest-first (reverse insertion order),
// which is the tie-preserving base order for filtering and stable sorts.
func (s *RecordStore) snapshotLocked() []*Record {
	out := make([]*Record, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		if rec, ok := s.records[s.order[i]]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// freshCopy clones rec and re-derives the SLA classification on the copy.
// The stored record is not touched; persisted SLA status only moves on
// mutation, but reads always see an up-to-date classification.
func (s *RecordStore) freshCopy(rec *Record) *Record {
	c := rec.Clone()
	spec, ok := s.families[c.Kind]
	if ok && c.DueDate != nil {
		c.SLAStatus = ComputeSLAStatus(s.clock.Now(), c.CreatedAt, *c.DueDate, spec.Terminal(c.Status), c.SLAStatus)
	}
	return c
}

// =============================================================================
// UPDATE
// =============================================================================

// Update applies the patch under optimistic concurrency. On success the
// record gets exactly one new history entry, an incremented version, and a
// refreshed updatedAt; on any failure nothing changes.
func (s *RecordStore) Update(ctx context.Context, id RecordID, expectedVersion int64, patch Patch, actor string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.records[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	if cur.Version != expectedVersion {
		return nil, &ConflictError{ID: id, Expected: expectedVersion, Actual: cur.Version}
	}
	spec := s.families[cur.Kind]

	now := s.clock.Now()
	next := cur.Clone()
	if err := applyPatch(next, patch, spec); err != nil {
		return nil, err
	}

	statusChanged := next.Status != cur.Status
	if statusChanged {
		spec.ApplyTransition(next, cur.Status, next.Status, now)
	}

	spec.Finalize(next)
	if err := spec.Validate(next); err != nil {
		return nil, err
	}

	// Re-derive the due date unless the patch pinned it explicitly.
	if patch.DueDate == nil {
		if derived := spec.DueDate(next); derived != nil {
			next.DueDate = derived
		}
	}

	changes := Diff(cur, next)

	action := ActionUpdated
	if statusChanged && onlyStatusPatch(patch) {
		action = spec.TransitionAction(cur.Status, next.Status)
	}

	next.Version++
	next.UpdatedAt = now

	// SLA freezes at the value it held when the record went terminal.
	if next.DueDate != nil && !spec.Terminal(cur.Status) {
		next.SLAStatus = ComputeSLAStatus(now, next.CreatedAt, *next.DueDate, false, next.SLAStatus)
	}

	s.trail.Append(next, HistoryEntry{
		Action:  action,
		Actor:   actor,
		Changes: changes,
	})

	s.records[id] = next
	return next.Clone(), nil
}

// applyPatch copies the patch's set fields onto the snapshot, validating
// the status transition against the family lifecycle.
func applyPatch(rec *Record, p Patch, spec FamilySpec) error {
	if p.Status != nil {
		if !spec.ValidStatus(*p.Status) {
			return &ValidationError{Field: "status", Reason: fmt.Sprintf("invalid status %q for kind %s", *p.Status, rec.Kind)}
		}
		rec.Status = *p.Status
	}
	if p.Priority != nil {
		rec.Priority = *p.Priority
	}
	if p.Category != nil {
		rec.Category = *p.Category
	}
	if p.Tags != nil {
		rec.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Assignee != nil {
		rec.Assignee = *p.Assignee
	}
	if p.Subject != nil {
		rec.Subject = *p.Subject
	}
	if p.Description != nil {
		rec.Description = *p.Description
	}
	if p.Requester != nil {
		rec.Requester = *p.Requester
	}
	if p.CustomerName != nil {
		rec.CustomerName = *p.CustomerName
	}
	if p.CustomerEmail != nil {
		rec.CustomerEmail = *p.CustomerEmail
	}
	if p.Notes != nil {
		rec.Notes = *p.Notes
	}
	if p.LineItems != nil {
		rec.LineItems = append([]LineItem(nil), (*p.LineItems)...)
	}
	if p.TaxAmount != nil {
		rec.TaxAmount = *p.TaxAmount
	}
	if p.DiscountAmount != nil {
		rec.DiscountAmount = *p.DiscountAmount
	}
	if p.NetTermsDays != nil {
		rec.NetTermsDays = *p.NetTermsDays
	}
	if p.DueDate != nil {
		due := *p.DueDate
		rec.DueDate = &due
	}
	return nil
}

// onlyStatusPatch reports whether the patch changes the status and nothing
// else, which is when the family's transition action (status_changed,
// paid) names the history entry instead of plain "updated".
func onlyStatusPatch(p Patch) bool {
	if p.Status == nil {
		return false
	}
	p.Status = nil
	return p.Empty()
}

// =============================================================================
// COMMENTS
// =============================================================================

// AppendComment records a "commented" history entry without touching any
// record fields. The visibility travels with the entry; enforcing it is
// the presentation layer's job.
func (s *RecordStore) AppendComment(ctx context.Context, id RecordID, content, actor string, visibility Visibility) (*HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.records[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}

	next := cur.Clone()
	entry := s.trail.Append(next, HistoryEntry{
		Action:     ActionCommented,
		Actor:      actor,
		Comment:    content,
		Visibility: visibility,
	})
	next.Version++
	next.UpdatedAt = s.clock.Now()

	s.records[id] = next
	stored := entry.clone()
	return &stored, nil
}

// =============================================================================
// DELETE
// =============================================================================

// Delete removes the record from the live index. With an archive
// configured, the snapshot and its full history are tombstoned first; an
// archive failure aborts the delete so audit data is never silently lost.
func (s *RecordStore) Delete(ctx context.Context, id RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return &NotFoundError{ID: id}
	}

	if s.archive != nil {
		if err := s.archive.ArchiveRecord(ctx, rec.Clone()); err != nil {
			return fmt.Errorf("archiving record %s before delete: %w", id, err)
		}
	}

	delete(s.records, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of live records.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
