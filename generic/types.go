/*
Package generic provides the core record lifecycle and audit engine.

PURPOSE:
  This package contains domain-agnostic types and algorithms for managing
  business records with full audit trails. Whether tracking support tickets
  or customer invoices, the same engine handles creation, field-level diffs,
  append-only history, SLA computation, filtering, and aggregation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Record: The generic entity (a ticket or invoice is a specialization)
  - HistoryEntry: An immutable audit entry recording one mutation
  - FieldChange: A from/to pair for a single changed field
  - LineItem: A billable line on an invoice-family record
  - Patch: Optional-field update payload applied by RecordStore.Update

DESIGN PRINCIPLES:
  1. Immutability: History entries are never modified or removed
  2. Precision: Uses decimal.Decimal for money, never float64
  3. Type Safety: Strong typing for IDs, kinds, statuses, actions
  4. Auditability: Every mutation appends exactly one history entry

USAGE:
  store := generic.NewRecordStore(generic.StoreConfig{
      Clock:    generic.SystemClock{},
      IDs:      generic.NewUUIDGenerator(),
      Families: []generic.FamilySpec{tickets.NewSpec(), billing.NewSpec()},
  })
  rec, err := store.Create(ctx, tickets.Kind, generic.CreateInput{...}, "user-1")

SEE ALSO:
  - store.go: RecordStore orchestration (the write path)
  - diff.go: Field-level change computation
  - history.go: Append-only audit trail
  - filter.go: Compound query evaluation and ordering
*/
package generic

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type RecordID string
type EntryID string

// Kind identifies which record family an entity belongs to.
// Domain packages define their own constants (e.g. tickets.Kind, billing.Kind).
type Kind string

// =============================================================================
// ENUMS - status, priority, visibility
// =============================================================================

// Status is a family-specific lifecycle state. The generic package has no
// knowledge of which statuses exist; validity is checked via FamilySpec.
type Status string

// Priority drives SLA due-date computation for families that use it.
// Empty priority means the family does not prioritize (e.g. invoices).
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Visibility controls who may see a comment history entry. The engine only
// stores it; enforcement belongs to the presentation layer.
type Visibility string

const (
	VisibilityInternal Visibility = "internal"
	VisibilityExternal Visibility = "external"
)

// =============================================================================
// HISTORY - immutable audit entries
// =============================================================================

type Action string

const (
	ActionCreated       Action = "created"
	ActionUpdated       Action = "updated"
	ActionStatusChanged Action = "status_changed"
	ActionCommented     Action = "commented"
	ActionPaid          Action = "paid"
)

// FieldChange is a from/to pair for one field in a HistoryEntry.
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// HistoryEntry records a single mutation of a Record. Immutable once
// appended: no operation may edit, remove, or reorder entries.
type HistoryEntry struct {
	ID         EntryID                `json:"id"`
	Action     Action                 `json:"action"`
	Actor      string                 `json:"actor"`
	Timestamp  time.Time              `json:"timestamp"`
	Changes    map[string]FieldChange `json:"changes,omitempty"`
	Comment    string                 `json:"comment,omitempty"`
	Visibility Visibility             `json:"visibility,omitempty"`
}

// =============================================================================
// LINE ITEMS - billable lines for amount-bearing families
// =============================================================================

type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Total returns quantity times unit price.
func (li LineItem) Total() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// =============================================================================
// RECORD - the generic entity
// =============================================================================

// Record is the entity managed by the engine. Common fields apply to every
// family; the ticket and invoice sections are populated only for the
// matching Kind. RecordStore exclusively owns all Records and their History;
// every read hands out a deep copy.
type Record struct {
	ID        RecordID  `json:"id"`
	Kind      Kind      `json:"kind"`
	Status    Status    `json:"status"`
	Priority  Priority  `json:"priority,omitempty"`
	Category  string    `json:"category,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedBy string    `json:"createdBy"`
	Assignee  string    `json:"assignee,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// DueDate is derived (SLA table or net terms) and SLAStatus classifies
	// the record against it. SLAStatus freezes once the status is terminal.
	DueDate   *time.Time `json:"dueDate,omitempty"`
	SLAStatus SLAStatus  `json:"slaStatus,omitempty"`

	// Version increments on every committed mutation; Update calls must
	// present the version they last observed (optimistic concurrency).
	Version int64 `json:"version"`

	// Ticket family fields.
	Subject     string `json:"subject,omitempty"`
	Description string `json:"description,omitempty"`
	Requester   string `json:"requester,omitempty"`

	// Invoice family fields.
	InvoiceNumber  string          `json:"invoiceNumber,omitempty"`
	CustomerName   string          `json:"customerName,omitempty"`
	CustomerEmail  string          `json:"customerEmail,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	LineItems      []LineItem      `json:"lineItems,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	NetTermsDays   int             `json:"netTermsDays,omitempty"`
	IssueDate      *time.Time      `json:"issueDate,omitempty"`
	PaidDate       *time.Time      `json:"paidDate,omitempty"`

	History []HistoryEntry `json:"history"`
}

// Clone returns a deep copy. Reads hand out clones so callers can never
// observe or cause mutation of the store's authoritative state.
func (r *Record) Clone() *Record {
	c := *r
	if r.Tags != nil {
		c.Tags = append([]string(nil), r.Tags...)
	}
	if r.LineItems != nil {
		c.LineItems = append([]LineItem(nil), r.LineItems...)
	}
	if r.DueDate != nil {
		due := *r.DueDate
		c.DueDate = &due
	}
	if r.IssueDate != nil {
		issued := *r.IssueDate
		c.IssueDate = &issued
	}
	if r.PaidDate != nil {
		paid := *r.PaidDate
		c.PaidDate = &paid
	}
	if r.History != nil {
		c.History = make([]HistoryEntry, len(r.History))
		for i, e := range r.History {
			c.History[i] = e.clone()
		}
	}
	return &c
}

func (e HistoryEntry) clone() HistoryEntry {
	c := e
	if e.Changes != nil {
		c.Changes = make(map[string]FieldChange, len(e.Changes))
		for k, v := range e.Changes {
			c.Changes[k] = v
		}
	}
	return c
}

// =============================================================================
// PAYLOADS - create input and update patch
// =============================================================================

// CreateInput is the payload for RecordStore.Create. Family validators
// decide which fields are required.
type CreateInput struct {
	Priority Priority
	Category string
	Tags     []string
	Assignee string

	Subject     string
	Description string
	Requester   string

	InvoiceNumber  string
	CustomerName   string
	CustomerEmail  string
	Notes          string
	LineItems      []LineItem
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	NetTermsDays   int
	IssueDate      *time.Time
}

// Patch carries the fields an Update call wants to change. Nil pointers
// mean "leave unchanged". Status transitions are validated against the
// record's family.
type Patch struct {
	Status   *Status
	Priority *Priority
	Category *string
	Tags     *[]string
	Assignee *string

	Subject     *string
	Description *string
	Requester   *string

	CustomerName   *string
	CustomerEmail  *string
	Notes          *string
	LineItems      *[]LineItem
	TaxAmount      *decimal.Decimal
	DiscountAmount *decimal.Decimal
	NetTermsDays   *int
	DueDate        *time.Time
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Status == nil && p.Priority == nil && p.Category == nil &&
		p.Tags == nil && p.Assignee == nil && p.Subject == nil &&
		p.Description == nil && p.Requester == nil && p.CustomerName == nil &&
		p.CustomerEmail == nil && p.Notes == nil && p.LineItems == nil &&
		p.TaxAmount == nil && p.DiscountAmount == nil && p.NetTermsDays == nil &&
		p.DueDate == nil
}
