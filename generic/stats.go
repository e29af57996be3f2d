/*
stats.go - Statistical aggregation over the record set

PURPOSE:
  Single-pass, recomputed-on-demand aggregation: per-status counts, amount
  totals and averages, calendar-windowed revenue, and success rates. The
  aggregator reads; it never mutates.

WINDOWED FIGURES:
  MonthlyRevenue and YearlyRevenue sum amounts for records whose activity
  date (issueDate when present, otherwise createdAt) falls within
  [startOfMonth(now), now] / [startOfYear(now), now].

RATES:
  SuccessRate = count(terminal-success status) / count(total), defined as
  0 when the set is empty. Never NaN, never a division by zero.
*/
package generic

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stats is a derived snapshot over a record set. Callers wanting
// family-scoped figures pre-filter the set (e.g. kind=invoice).
type Stats struct {
	Total      int              `json:"total"`
	ByStatus   map[Status]int   `json:"byStatus"`
	ByPriority map[Priority]int `json:"byPriority,omitempty"`

	TotalAmount   decimal.Decimal `json:"totalAmount"`
	AverageAmount decimal.Decimal `json:"averageAmount"`

	MonthlyRevenue decimal.Decimal `json:"monthlyRevenue"`
	YearlyRevenue  decimal.Decimal `json:"yearlyRevenue"`

	// SuccessRate is the fraction of records in the family's
	// terminal-success state (paid invoices, resolved tickets).
	SuccessRate float64 `json:"successRate"`

	// Overdue counts non-terminal records past their due date.
	Overdue int `json:"overdue"`
}

// StatsAggregator computes Stats. It needs the family specs to classify
// terminal and success statuses.
type StatsAggregator struct {
	families map[Kind]FamilySpec
}

func NewStatsAggregator(specs ...FamilySpec) *StatsAggregator {
	families := make(map[Kind]FamilySpec, len(specs))
	for _, s := range specs {
		families[s.Kind()] = s
	}
	return &StatsAggregator{families: families}
}

// Compute aggregates the given records in a single pass.
func (sa *StatsAggregator) Compute(records []*Record, now time.Time) Stats {
	stats := Stats{
		ByStatus:   make(map[Status]int),
		ByPriority: make(map[Priority]int),
	}

	monthStart := StartOfMonth(now)
	yearStart := StartOfYear(now)

	succeeded := 0
	for _, rec := range records {
		stats.Total++
		stats.ByStatus[rec.Status]++
		if rec.Priority != "" {
			stats.ByPriority[rec.Priority]++
		}
		stats.TotalAmount = stats.TotalAmount.Add(rec.TotalAmount)

		at := activityDate(rec)
		if WithinWindow(at, monthStart, now) {
			stats.MonthlyRevenue = stats.MonthlyRevenue.Add(rec.TotalAmount)
		}
		if WithinWindow(at, yearStart, now) {
			stats.YearlyRevenue = stats.YearlyRevenue.Add(rec.TotalAmount)
		}

		spec, ok := sa.families[rec.Kind]
		if !ok {
			continue
		}
		if spec.Success(rec.Status) {
			succeeded++
		}
		if !spec.Terminal(rec.Status) && rec.DueDate != nil && now.After(*rec.DueDate) {
			stats.Overdue++
		}
	}

	if stats.Total > 0 {
		stats.AverageAmount = stats.TotalAmount.Div(decimal.NewFromInt(int64(stats.Total)))
		stats.SuccessRate = float64(succeeded) / float64(stats.Total)
	}
	return stats
}

// activityDate is the timestamp windowed revenue figures key on.
func activityDate(rec *Record) time.Time {
	if rec.IssueDate != nil {
		return *rec.IssueDate
	}
	return rec.CreatedAt
}
