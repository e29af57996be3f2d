/*
diff.go - Field-level change computation between record snapshots

PURPOSE:
  Pure comparison of an old and new Record snapshot, producing the changes
  map stored on every "updated" history entry. Value equality, never
  reference equality: two snapshots with equal field values diff to empty.

EXCLUDED FIELDS:
  history, version, updatedAt and the derived slaStatus are bookkeeping,
  not content; they never appear in a changes map.

PROPERTIES:
  - Deterministic and side-effect free
  - Diff(r, r) is always empty
  - Only fields whose values actually differ appear in the result
*/
package generic

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Diff compares every mutable field of old and new and returns a map of
// field name to from/to pair. Only fields whose values actually differ
// appear in the result.
func Diff(old, new *Record) map[string]FieldChange {
	changes := make(map[string]FieldChange)

	diffStr := func(field, from, to string) {
		if from != to {
			changes[field] = FieldChange{From: from, To: to}
		}
	}

	diffStr("status", string(old.Status), string(new.Status))
	diffStr("priority", string(old.Priority), string(new.Priority))
	diffStr("category", old.Category, new.Category)
	diffStr("assignee", old.Assignee, new.Assignee)
	diffStr("subject", old.Subject, new.Subject)
	diffStr("description", old.Description, new.Description)
	diffStr("requester", old.Requester, new.Requester)
	diffStr("invoice_number", old.InvoiceNumber, new.InvoiceNumber)
	diffStr("customer_name", old.CustomerName, new.CustomerName)
	diffStr("customer_email", old.CustomerEmail, new.CustomerEmail)
	diffStr("notes", old.Notes, new.Notes)

	if !tagsEqual(old.Tags, new.Tags) {
		changes["tags"] = FieldChange{From: copyTags(old.Tags), To: copyTags(new.Tags)}
	}
	if !lineItemsEqual(old.LineItems, new.LineItems) {
		changes["line_items"] = FieldChange{
			From: append([]LineItem(nil), old.LineItems...),
			To:   append([]LineItem(nil), new.LineItems...),
		}
	}

	diffDecimal := func(field string, from, to decimal.Decimal) {
		if !from.Equal(to) {
			changes[field] = FieldChange{From: from.String(), To: to.String()}
		}
	}
	diffDecimal("subtotal", old.Subtotal, new.Subtotal)
	diffDecimal("tax_amount", old.TaxAmount, new.TaxAmount)
	diffDecimal("discount_amount", old.DiscountAmount, new.DiscountAmount)
	diffDecimal("total_amount", old.TotalAmount, new.TotalAmount)

	if old.NetTermsDays != new.NetTermsDays {
		changes["net_terms_days"] = FieldChange{From: old.NetTermsDays, To: new.NetTermsDays}
	}

	diffTime := func(field string, from, to *time.Time) {
		if !timesEqual(from, to) {
			changes[field] = FieldChange{From: formatTime(from), To: formatTime(to)}
		}
	}
	diffTime("due_date", old.DueDate, new.DueDate)
	diffTime("issue_date", old.IssueDate, new.IssueDate)
	diffTime("paid_date", old.PaidDate, new.PaidDate)

	return changes
}

// tagsEqual compares tag sets. Tags are a set, so order is irrelevant.
func tagsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func copyTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	return append([]string(nil), tags...)
}

func lineItemsEqual(a, b []LineItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Description != b[i].Description ||
			!a[i].Quantity.Equal(b[i].Quantity) ||
			!a[i].UnitPrice.Equal(b[i].UnitPrice) {
			return false
		}
	}
	return true
}

func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
