/*
family.go - Ticket family specification

PURPOSE:
  Implements generic.FamilySpec for support tickets: required fields
  (subject, description), the four-state lifecycle, priority-driven SLA
  due dates, and search over subject/description/category/requester.

DEFAULTING:
  Tickets without an explicit priority are medium. Unknown priorities are
  rejected rather than coerced, so a typo never silently downgrades an
  urgent ticket's SLA.

SEE ALSO:
  - generic/family.go: The interface this satisfies
  - billing/family.go: The invoice counterpart
*/
package tickets

import (
	"time"

	"github.com/warp/record-engine/generic"
)

// Spec is the ticket family specification. Stateless after construction;
// safe for concurrent use.
type Spec struct {
	sla generic.SLATable
}

// Compile-time check that Spec implements generic.FamilySpec.
var _ generic.FamilySpec = (*Spec)(nil)

// NewSpec builds the ticket family with the default SLA table.
func NewSpec() *Spec {
	return NewSpecWithSLA(DefaultSLATable())
}

// NewSpecWithSLA builds the ticket family with a custom SLA table.
func NewSpecWithSLA(sla generic.SLATable) *Spec {
	return &Spec{sla: sla}
}

func (s *Spec) Kind() generic.Kind            { return Kind }
func (s *Spec) IDPrefix() string              { return "tkt" }
func (s *Spec) InitialStatus() generic.Status { return StatusOpen }

func (s *Spec) ValidStatus(st generic.Status) bool {
	switch st {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

func (s *Spec) Terminal(st generic.Status) bool {
	return st == StatusResolved || st == StatusClosed
}

func (s *Spec) Success(st generic.Status) bool {
	return st == StatusResolved
}

// Finalize defaults the priority to medium when the payload omits it.
func (s *Spec) Finalize(rec *generic.Record) {
	if rec.Priority == "" {
		rec.Priority = generic.PriorityMedium
	}
}

func (s *Spec) Validate(rec *generic.Record) error {
	if rec.Subject == "" {
		return &generic.ValidationError{Field: "subject", Reason: "required"}
	}
	if rec.Description == "" {
		return &generic.ValidationError{Field: "description", Reason: "required"}
	}
	if _, ok := s.sla[rec.Priority]; !ok {
		return &generic.ValidationError{Field: "priority", Reason: "unknown priority: " + string(rec.Priority)}
	}
	return nil
}

// DueDate maps the ticket's priority through the SLA table.
func (s *Spec) DueDate(rec *generic.Record) *time.Time {
	due, ok := s.sla.DueDate(rec.CreatedAt, rec.Priority)
	if !ok {
		return nil
	}
	return &due
}

func (s *Spec) TransitionAction(from, to generic.Status) generic.Action {
	return generic.ActionStatusChanged
}

// ApplyTransition has no ticket-specific side effects; resolution
// timestamps live in the history entry itself.
func (s *Spec) ApplyTransition(rec *generic.Record, from, to generic.Status, now time.Time) {}

func (s *Spec) SearchFields(rec *generic.Record) []string {
	return []string{rec.Subject, rec.Description, rec.Category, rec.Requester}
}

func (s *Spec) DefaultSort() generic.SortSpec {
	return generic.SortSpec{Key: generic.SortByUpdatedAt, Direction: generic.SortDesc}
}
