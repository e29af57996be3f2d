// Package billing implements the invoice record family.
// It plugs invoice statuses, line-item totals, and net-terms due dates
// into the generic record engine.
package billing

import "github.com/warp/record-engine/generic"

// =============================================================================
// INVOICE FAMILY
// =============================================================================

// Kind is the family tag carried by every invoice record.
const Kind generic.Kind = "invoice"

// Invoice lifecycle states. Paid and cancelled are terminal.
const (
	StatusDraft     generic.Status = "draft"
	StatusSent      generic.Status = "sent"
	StatusPaid      generic.Status = "paid"
	StatusOverdue   generic.Status = "overdue"
	StatusCancelled generic.Status = "cancelled"
)

// Statuses lists the lifecycle in display order.
var Statuses = []generic.Status{StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled}

// =============================================================================
// NET TERMS - payment windows offered to customers
// =============================================================================

// DefaultNetTerms are the payment windows (in days) an invoice may carry.
// Net 30 is assumed when an invoice names no terms.
var DefaultNetTerms = []int{15, 30, 45, 60}

const FallbackNetTermsDays = 30
