/*
Package factory builds record family specifications from configuration.

PURPOSE:
  Converts config-file overrides into generic.FamilySpec instances. This
  enables deployment-specific SLA and net-terms tuning without code
  changes - operations can tighten the urgent-ticket SLA to 2h in YAML,
  and the factory creates the matching family spec.

DEFAULTS:
  Missing overrides fall back to the family packages' stock tables
  (tickets.DefaultSLATable, billing.DefaultNetTerms). Partial SLA
  overrides are rejected rather than merged, so a config that names only
  "urgent" cannot silently strip the SLAs of every other priority.

USAGE:
  families, err := factory.Families(cfg)
  store := generic.NewRecordStore(generic.StoreConfig{Families: families})

SEE ALSO:
  - config/config.go: The YAML schema the overrides come from
  - tickets/types.go, billing/types.go: The stock tables
*/
package factory

import (
	"fmt"
	"time"

	"github.com/warp/record-engine/billing"
	"github.com/warp/record-engine/config"
	"github.com/warp/record-engine/generic"
	"github.com/warp/record-engine/tickets"
)

// Families builds the ticket and invoice family specs, applying any
// config overrides.
func Families(cfg config.Config) ([]generic.FamilySpec, error) {
	ticketSpec, err := ticketFamily(cfg.Tickets)
	if err != nil {
		return nil, err
	}
	invoiceSpec, err := invoiceFamily(cfg.Billing)
	if err != nil {
		return nil, err
	}
	return []generic.FamilySpec{ticketSpec, invoiceSpec}, nil
}

func ticketFamily(cfg config.TicketsConfig) (*tickets.Spec, error) {
	if len(cfg.SLA) == 0 {
		return tickets.NewSpec(), nil
	}

	table := make(generic.SLATable, len(cfg.SLA))
	for name, raw := range cfg.SLA {
		priority := generic.Priority(name)
		switch priority {
		case generic.PriorityLow, generic.PriorityMedium, generic.PriorityHigh, generic.PriorityUrgent:
		default:
			return nil, fmt.Errorf("tickets.sla: unknown priority %q", name)
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("tickets.sla.%s: %w", name, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("tickets.sla.%s: duration must be positive", name)
		}
		table[priority] = d
	}

	// Every priority must have an SLA; partial tables are config mistakes.
	for _, p := range []generic.Priority{generic.PriorityLow, generic.PriorityMedium, generic.PriorityHigh, generic.PriorityUrgent} {
		if _, ok := table[p]; !ok {
			return nil, fmt.Errorf("tickets.sla: missing entry for priority %q", p)
		}
	}
	return tickets.NewSpecWithSLA(table), nil
}

func invoiceFamily(cfg config.BillingConfig) (*billing.Spec, error) {
	if len(cfg.NetTerms) == 0 {
		return billing.NewSpec(), nil
	}

	hasFallback := false
	for _, days := range cfg.NetTerms {
		if days <= 0 {
			return nil, fmt.Errorf("billing.net_terms: %d is not a valid day count", days)
		}
		if days == billing.FallbackNetTermsDays {
			hasFallback = true
		}
	}
	// Invoices without explicit terms default to Net 30; the configured
	// windows must keep accepting it.
	if !hasFallback {
		return nil, fmt.Errorf("billing.net_terms: must include the Net %d fallback", billing.FallbackNetTermsDays)
	}
	return billing.NewSpecWithTerms(cfg.NetTerms), nil
}
