/*
family.go - Invoice family specification

PURPOSE:
  Implements generic.FamilySpec for customer invoices: required fields
  (customer name, at least one line item), the draft/sent/paid/overdue
  lifecycle, net-terms due dates, and derived money totals.

TOTALS:
  Finalize recomputes the derived amounts on every snapshot:

    subtotal = Σ quantity × unitPrice
    total    = subtotal + tax − discount

  All arithmetic is decimal.Decimal; floats never touch money.

PAID TRANSITION:
  Moving to "paid" is a significant transition: the history entry's action
  is "paid" and the snapshot gets its paidDate stamped.

SEE ALSO:
  - tickets/family.go: The ticket counterpart
  - generic/duedate.go: SLA classification the due dates feed
*/
package billing

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/record-engine/generic"
)

// Spec is the invoice family specification. Stateless after construction;
// safe for concurrent use.
type Spec struct {
	netTerms map[int]bool
}

// Compile-time check that Spec implements generic.FamilySpec.
var _ generic.FamilySpec = (*Spec)(nil)

// NewSpec builds the invoice family with the default net-terms windows.
func NewSpec() *Spec {
	return NewSpecWithTerms(DefaultNetTerms)
}

// NewSpecWithTerms builds the invoice family accepting the given net-terms
// day counts.
func NewSpecWithTerms(terms []int) *Spec {
	allowed := make(map[int]bool, len(terms))
	for _, t := range terms {
		allowed[t] = true
	}
	return &Spec{netTerms: allowed}
}

func (s *Spec) Kind() generic.Kind            { return Kind }
func (s *Spec) IDPrefix() string              { return "inv" }
func (s *Spec) InitialStatus() generic.Status { return StatusDraft }

func (s *Spec) ValidStatus(st generic.Status) bool {
	switch st {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

func (s *Spec) Terminal(st generic.Status) bool {
	return st == StatusPaid || st == StatusCancelled
}

func (s *Spec) Success(st generic.Status) bool {
	return st == StatusPaid
}

// Finalize recomputes derived fields: totals from line items, defaulted
// net terms, and the issue date (invoices are issued when created).
func (s *Spec) Finalize(rec *generic.Record) {
	if rec.NetTermsDays == 0 {
		rec.NetTermsDays = FallbackNetTermsDays
	}
	if rec.IssueDate == nil {
		issued := rec.CreatedAt
		rec.IssueDate = &issued
	}

	subtotal := decimal.Zero
	for _, li := range rec.LineItems {
		subtotal = subtotal.Add(li.Total())
	}
	rec.Subtotal = subtotal
	rec.TotalAmount = subtotal.Add(rec.TaxAmount).Sub(rec.DiscountAmount)
}

func (s *Spec) Validate(rec *generic.Record) error {
	if rec.CustomerName == "" {
		return &generic.ValidationError{Field: "customer_name", Reason: "required"}
	}
	if len(rec.LineItems) == 0 {
		return &generic.ValidationError{Field: "line_items", Reason: "at least one line item required"}
	}
	for i, li := range rec.LineItems {
		if li.Quantity.IsNegative() || li.Quantity.IsZero() {
			return &generic.ValidationError{Field: "line_items", Reason: "quantity must be positive on line " + strconv.Itoa(i)}
		}
		if li.UnitPrice.IsNegative() {
			return &generic.ValidationError{Field: "line_items", Reason: "unit price must not be negative on line " + strconv.Itoa(i)}
		}
	}
	if rec.TaxAmount.IsNegative() {
		return &generic.ValidationError{Field: "tax_amount", Reason: "must not be negative"}
	}
	if rec.DiscountAmount.IsNegative() {
		return &generic.ValidationError{Field: "discount_amount", Reason: "must not be negative"}
	}
	if !s.netTerms[rec.NetTermsDays] {
		return &generic.ValidationError{Field: "net_terms_days", Reason: "unsupported net terms: " + strconv.Itoa(rec.NetTermsDays)}
	}
	if rec.DueDate != nil && rec.IssueDate != nil && !rec.DueDate.After(*rec.IssueDate) {
		return &generic.ValidationError{Field: "due_date", Reason: "must be after issue date"}
	}
	return nil
}

// DueDate is the issue date plus the invoice's net terms.
func (s *Spec) DueDate(rec *generic.Record) *time.Time {
	if rec.IssueDate == nil {
		return nil
	}
	due := rec.IssueDate.AddDate(0, 0, rec.NetTermsDays)
	return &due
}

// TransitionAction marks the move to paid as significant; every other
// status change is a plain status_changed entry.
func (s *Spec) TransitionAction(from, to generic.Status) generic.Action {
	if to == StatusPaid {
		return generic.ActionPaid
	}
	return generic.ActionStatusChanged
}

// ApplyTransition stamps paidDate when an invoice is paid and clears it if
// a payment is reverted (e.g. a bounced check moving paid back to sent).
func (s *Spec) ApplyTransition(rec *generic.Record, from, to generic.Status, now time.Time) {
	switch {
	case to == StatusPaid:
		paid := now
		rec.PaidDate = &paid
	case from == StatusPaid:
		rec.PaidDate = nil
	}
}

func (s *Spec) SearchFields(rec *generic.Record) []string {
	return []string{rec.InvoiceNumber, rec.CustomerName, rec.CustomerEmail, rec.Notes}
}

func (s *Spec) DefaultSort() generic.SortSpec {
	return generic.SortSpec{Key: generic.SortByIssueDate, Direction: generic.SortDesc}
}

