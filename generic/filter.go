/*
filter.go - Compound query evaluation and ordering

PURPOSE:
  Evaluates a multi-dimensional Filter against records and orders results.
  Read-only: the engine never mutates the records it is given.

FILTER SEMANTICS:
  - Dimensions combine with logical AND
  - Within a dimension, membership in the provided set is logical OR
  - An absent dimension means "no constraint", never "match nothing"
  - Date and amount ranges are inclusive on both bounds
  - Free-text search lower-cases query and field values and matches on
    substring containment against the family's searchable fields; a record
    matches if ANY searchable field contains the query

SORT SEMANTICS:
  Stable sort; ties preserve the input's relative order. The default when
  no key is given is newest-first on the family's activity timestamp
  (updatedAt for tickets, issueDate for invoices).
*/
package generic

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FILTER - compound query value object
// =============================================================================

type Filter struct {
	Kinds      []Kind
	Statuses   []Status
	Priorities []Priority
	Categories []string
	Tags       []string

	// Inclusive range over CreatedAt.
	CreatedFrom *time.Time
	CreatedTo   *time.Time

	// Inclusive range over TotalAmount.
	AmountMin *decimal.Decimal
	AmountMax *decimal.Decimal

	// Case-insensitive substring search over the family's search fields.
	Search string
}

// Empty reports whether the filter constrains nothing.
func (f Filter) Empty() bool {
	return len(f.Kinds) == 0 && len(f.Statuses) == 0 && len(f.Priorities) == 0 &&
		len(f.Categories) == 0 && len(f.Tags) == 0 &&
		f.CreatedFrom == nil && f.CreatedTo == nil &&
		f.AmountMin == nil && f.AmountMax == nil && f.Search == ""
}

// =============================================================================
// SORT SPECIFICATION
// =============================================================================

type SortKey string

const (
	SortByCreatedAt   SortKey = "created_at"
	SortByUpdatedAt   SortKey = "updated_at"
	SortByDueDate     SortKey = "due_date"
	SortByIssueDate   SortKey = "issue_date"
	SortByTotalAmount SortKey = "total_amount"
	SortByPriority    SortKey = "priority"
	SortByStatus      SortKey = "status"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type SortSpec struct {
	Key       SortKey
	Direction SortDirection
}

// =============================================================================
// FILTER ENGINE
// =============================================================================

// FilterEngine evaluates filters and orders results. It needs the family
// specs to resolve each record's searchable fields.
type FilterEngine struct {
	families map[Kind]FamilySpec
}

func NewFilterEngine(specs ...FamilySpec) *FilterEngine {
	families := make(map[Kind]FamilySpec, len(specs))
	for _, s := range specs {
		families[s.Kind()] = s
	}
	return &FilterEngine{families: families}
}

// Apply keeps the records matching every dimension of f, preserving input
// order. The input slice is never modified.
func (fe *FilterEngine) Apply(records []*Record, f Filter) []*Record {
	out := make([]*Record, 0, len(records))
	for _, rec := range records {
		if fe.matches(rec, f) {
			out = append(out, rec)
		}
	}
	return out
}

func (fe *FilterEngine) matches(rec *Record, f Filter) bool {
	if len(f.Kinds) > 0 && !containsKind(f.Kinds, rec.Kind) {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, rec.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, rec.Priority) {
		return false
	}
	if len(f.Categories) > 0 && !containsString(f.Categories, rec.Category) {
		return false
	}
	if len(f.Tags) > 0 && !hasAnyTag(rec.Tags, f.Tags) {
		return false
	}
	if f.CreatedFrom != nil && rec.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && rec.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	if f.AmountMin != nil && rec.TotalAmount.LessThan(*f.AmountMin) {
		return false
	}
	if f.AmountMax != nil && rec.TotalAmount.GreaterThan(*f.AmountMax) {
		return false
	}
	if f.Search != "" && !fe.matchesSearch(rec, f.Search) {
		return false
	}
	return true
}

func (fe *FilterEngine) matchesSearch(rec *Record, query string) bool {
	q := strings.ToLower(query)
	spec, ok := fe.families[rec.Kind]
	if !ok {
		return false
	}
	for _, field := range spec.SearchFields(rec) {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Sort returns a new slice ordered by the given spec. The sort is stable:
// ties keep the input's relative order.
func (fe *FilterEngine) Sort(records []*Record, spec SortSpec) []*Record {
	out := append([]*Record(nil), records...)
	if spec.Key == "" {
		return out
	}
	less := lessFunc(spec.Key)
	desc := spec.Direction == SortDesc
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// DefaultSortFor resolves the default ordering for a result set. A single
// constrained kind uses its family default; mixed results fall back to
// newest updatedAt first.
func (fe *FilterEngine) DefaultSortFor(f Filter) SortSpec {
	if len(f.Kinds) == 1 {
		if spec, ok := fe.families[f.Kinds[0]]; ok {
			return spec.DefaultSort()
		}
	}
	return SortSpec{Key: SortByUpdatedAt, Direction: SortDesc}
}

func lessFunc(key SortKey) func(a, b *Record) bool {
	switch key {
	case SortByCreatedAt:
		return func(a, b *Record) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortByDueDate:
		return func(a, b *Record) bool { return timePtrLess(a.DueDate, b.DueDate) }
	case SortByIssueDate:
		return func(a, b *Record) bool { return timePtrLess(a.IssueDate, b.IssueDate) }
	case SortByTotalAmount:
		return func(a, b *Record) bool { return a.TotalAmount.LessThan(b.TotalAmount) }
	case SortByPriority:
		return func(a, b *Record) bool { return priorityRank(a.Priority) < priorityRank(b.Priority) }
	case SortByStatus:
		return func(a, b *Record) bool { return a.Status < b.Status }
	default:
		return func(a, b *Record) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	}
}

// timePtrLess orders nil due dates last regardless of direction.
func timePtrLess(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.Before(*b)
}

func priorityRank(p Priority) int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func containsKind(set []Kind, k Kind) bool {
	for _, v := range set {
		if v == k {
			return true
		}
	}
	return false
}

func containsStatus(set []Status, s Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsPriority(set []Priority, p Priority) bool {
	for _, v := range set {
		if v == p {
			return true
		}
	}
	return false
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func hasAnyTag(tags, wanted []string) bool {
	for _, w := range wanted {
		for _, t := range tags {
			if t == w {
				return true
			}
		}
	}
	return false
}
