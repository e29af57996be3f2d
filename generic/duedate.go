/*
duedate.go - Due-date and SLA status computation

PURPOSE:
  Maps a record's urgency to a deadline and classifies records against it.
  Ticket families map priority to an SLA offset (urgent resolves in hours,
  low in days); invoice families map net terms to days. Both produce a due
  date the same three-way classification runs against:

    on_time  -> comfortably before the due date
    at_risk  -> inside the lead window (last 20% of the total duration)
    breached -> past the due date

FREEZING:
  Once a record reaches a terminal status (resolved, closed, paid), its SLA
  status no longer changes: whatever it was when the record closed is what
  the audit trail keeps.

  Both functions here are pure, making boundary conditions exhaustively
  testable.
*/
package generic

import "time"

// =============================================================================
// SLA STATUS
// =============================================================================

type SLAStatus string

const (
	SLAOnTime   SLAStatus = "on_time"
	SLAAtRisk   SLAStatus = "at_risk"
	SLABreached SLAStatus = "breached"
)

// AtRiskDivisor sets the lead window to total/5 (20% of the SLA duration).
const AtRiskDivisor = 5

// =============================================================================
// SLA TABLE - priority to resolution-time offset
// =============================================================================

// SLATable maps priority to the duration a record of that priority must be
// resolved within. Families without a mapping for a priority produce no
// due date.
type SLATable map[Priority]time.Duration

// DueDate computes createdAt + the priority's SLA offset.
// ok is false when the table has no entry for the priority.
func (t SLATable) DueDate(createdAt time.Time, priority Priority) (time.Time, bool) {
	d, ok := t[priority]
	if !ok {
		return time.Time{}, false
	}
	return createdAt.Add(d), true
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// ComputeSLAStatus classifies now against dueDate. The lead window is
// derived from the total duration between createdAt and dueDate. When
// terminal is true the previous status is returned unchanged (frozen).
func ComputeSLAStatus(now, createdAt, dueDate time.Time, terminal bool, previous SLAStatus) SLAStatus {
	if terminal {
		return previous
	}
	if now.After(dueDate) {
		return SLABreached
	}
	lead := dueDate.Sub(createdAt) / AtRiskDivisor
	if !now.Before(dueDate.Add(-lead)) {
		return SLAAtRisk
	}
	return SLAOnTime
}
