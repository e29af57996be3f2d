// Package tickets implements the support-ticket record family.
// It plugs ticket statuses, priorities, and SLA due dates into the
// generic record engine.
package tickets

import (
	"time"

	"github.com/warp/record-engine/generic"
)

// =============================================================================
// TICKET FAMILY
// =============================================================================

// Kind is the family tag carried by every ticket record.
const Kind generic.Kind = "ticket"

// Ticket lifecycle states. Resolved and closed are terminal.
const (
	StatusOpen       generic.Status = "open"
	StatusInProgress generic.Status = "in_progress"
	StatusResolved   generic.Status = "resolved"
	StatusClosed     generic.Status = "closed"
)

// Statuses lists the lifecycle in display order.
var Statuses = []generic.Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

// =============================================================================
// SLA TABLE - priority to resolution deadline
// =============================================================================

// DefaultSLATable is the stock priority-to-resolution mapping. Deployments
// override it via config (see factory package).
func DefaultSLATable() generic.SLATable {
	return generic.SLATable{
		generic.PriorityUrgent: 4 * time.Hour,
		generic.PriorityHigh:   24 * time.Hour,
		generic.PriorityMedium: 48 * time.Hour,
		generic.PriorityLow:    72 * time.Hour,
	}
}
