/*
family.go - Per-family behavior plugged into the generic engine

PURPOSE:
  The engine is family-parameterized: one RecordStore manages tickets and
  invoices alike, and everything family-specific (required fields, status
  lifecycle, due-date derivation, searchable fields) lives behind the
  FamilySpec interface. Domain packages implement it:

    // In tickets/family.go
    type Spec struct { ... }
    func (s *Spec) Kind() generic.Kind { return "ticket" }

  This replaces two near-identical hand-copied record services with a single
  engine plus two small specification tables.

SEE ALSO:
  - tickets/family.go: Support-ticket family
  - billing/family.go: Invoice family
  - store.go: Calls into FamilySpec on every mutation
*/
package generic

import "time"

// FamilySpec describes one record family. Implementations must be
// stateless and safe for concurrent use.
type FamilySpec interface {
	// Kind is the family tag carried on every Record.
	Kind() Kind

	// IDPrefix is prepended to generated record IDs (e.g. "tkt", "inv").
	IDPrefix() string

	// InitialStatus is assigned on Create.
	InitialStatus() Status

	// ValidStatus reports whether s belongs to this family's lifecycle.
	ValidStatus(s Status) bool

	// Terminal reports whether s is a closing state. SLA status freezes
	// and due dates stop mattering once a record is terminal.
	Terminal(s Status) bool

	// Success reports whether s is the terminal-success state used for
	// rate computations (paid for invoices, resolved for tickets).
	Success(s Status) bool

	// Finalize recomputes derived fields on a snapshot before validation
	// and diffing: invoice totals from line items, priority defaulting.
	Finalize(rec *Record)

	// Validate checks required fields and formats on a fully-applied
	// snapshot. Returns a *ValidationError on failure.
	Validate(rec *Record) error

	// DueDate derives the record's due date (SLA table or net terms).
	// Nil means the family computes no due date for this record.
	DueDate(rec *Record) *time.Time

	// TransitionAction names the history action for a status change,
	// letting families mark significant transitions (e.g. "paid").
	TransitionAction(from, to Status) Action

	// ApplyTransition stamps family-specific side effects of a status
	// change onto the snapshot (e.g. paidDate when an invoice is paid).
	ApplyTransition(rec *Record, from, to Status, now time.Time)

	// SearchFields returns the field values free-text search matches
	// against, already in match order.
	SearchFields(rec *Record) []string

	// DefaultSort is the ordering used when a List call names no sort key.
	DefaultSort() SortSpec
}
