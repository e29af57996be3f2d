/*
dto.go - Request/response data structures for the REST API

PURPOSE:
  JSON shapes exchanged with clients, kept separate from the engine's
  domain types. Money travels as strings and is parsed with
  decimal.NewFromString so a malformed amount is a 400, never a silent
  float truncation. Timestamps are RFC3339.

SEE ALSO:
  - handlers.go: Uses these to decode requests and encode responses
*/
package api

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/record-engine/generic"
)

// =============================================================================
// REQUESTS
// =============================================================================

type CreateTicketRequest struct {
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	Priority    string   `json:"priority,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Requester   string   `json:"requester,omitempty"`
	Assignee    string   `json:"assignee,omitempty"`
}

func (r CreateTicketRequest) ToInput() generic.CreateInput {
	return generic.CreateInput{
		Subject:     r.Subject,
		Description: r.Description,
		Priority:    generic.Priority(r.Priority),
		Category:    r.Category,
		Tags:        r.Tags,
		Requester:   r.Requester,
		Assignee:    r.Assignee,
	}
}

type LineItemDTO struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
}

type CreateInvoiceRequest struct {
	InvoiceNumber  string        `json:"invoiceNumber,omitempty"`
	CustomerName   string        `json:"customerName"`
	CustomerEmail  string        `json:"customerEmail,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	Category       string        `json:"category,omitempty"`
	Tags           []string      `json:"tags,omitempty"`
	LineItems      []LineItemDTO `json:"lineItems"`
	TaxAmount      string        `json:"taxAmount,omitempty"`
	DiscountAmount string        `json:"discountAmount,omitempty"`
	NetTermsDays   int           `json:"netTermsDays,omitempty"`
	IssueDate      string        `json:"issueDate,omitempty"`
}

func (r CreateInvoiceRequest) ToInput() (generic.CreateInput, error) {
	input := generic.CreateInput{
		InvoiceNumber: r.InvoiceNumber,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		Notes:         r.Notes,
		Category:      r.Category,
		Tags:          r.Tags,
		NetTermsDays:  r.NetTermsDays,
	}

	for i, li := range r.LineItems {
		qty, err := parseAmount(li.Quantity, fmt.Sprintf("lineItems[%d].quantity", i))
		if err != nil {
			return input, err
		}
		price, err := parseAmount(li.UnitPrice, fmt.Sprintf("lineItems[%d].unitPrice", i))
		if err != nil {
			return input, err
		}
		input.LineItems = append(input.LineItems, generic.LineItem{
			Description: li.Description,
			Quantity:    qty,
			UnitPrice:   price,
		})
	}

	var err error
	if input.TaxAmount, err = parseOptionalAmount(r.TaxAmount, "taxAmount"); err != nil {
		return input, err
	}
	if input.DiscountAmount, err = parseOptionalAmount(r.DiscountAmount, "discountAmount"); err != nil {
		return input, err
	}

	if r.IssueDate != "" {
		issued, err := time.Parse("2006-01-02", r.IssueDate)
		if err != nil {
			return input, &generic.ValidationError{Field: "issueDate", Reason: "expected YYYY-MM-DD"}
		}
		input.IssueDate = &issued
	}
	return input, nil
}

// UpdateRequest is the JSON body of PUT. Version is required (optimistic
// concurrency); absent fields are left unchanged.
type UpdateRequest struct {
	Version int64 `json:"version"`

	Status   *string   `json:"status,omitempty"`
	Priority *string   `json:"priority,omitempty"`
	Category *string   `json:"category,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	Assignee *string   `json:"assignee,omitempty"`

	Subject     *string `json:"subject,omitempty"`
	Description *string `json:"description,omitempty"`
	Requester   *string `json:"requester,omitempty"`

	CustomerName   *string        `json:"customerName,omitempty"`
	CustomerEmail  *string        `json:"customerEmail,omitempty"`
	Notes          *string        `json:"notes,omitempty"`
	LineItems      *[]LineItemDTO `json:"lineItems,omitempty"`
	TaxAmount      *string        `json:"taxAmount,omitempty"`
	DiscountAmount *string        `json:"discountAmount,omitempty"`
	NetTermsDays   *int           `json:"netTermsDays,omitempty"`
}

func (r UpdateRequest) ToPatch() (generic.Patch, error) {
	patch := generic.Patch{
		Category:      r.Category,
		Tags:          r.Tags,
		Assignee:      r.Assignee,
		Subject:       r.Subject,
		Description:   r.Description,
		Requester:     r.Requester,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		Notes:         r.Notes,
		NetTermsDays:  r.NetTermsDays,
	}
	if r.Status != nil {
		status := generic.Status(*r.Status)
		patch.Status = &status
	}
	if r.Priority != nil {
		priority := generic.Priority(*r.Priority)
		patch.Priority = &priority
	}
	if r.LineItems != nil {
		items := make([]generic.LineItem, 0, len(*r.LineItems))
		for i, li := range *r.LineItems {
			qty, err := parseAmount(li.Quantity, fmt.Sprintf("lineItems[%d].quantity", i))
			if err != nil {
				return patch, err
			}
			price, err := parseAmount(li.UnitPrice, fmt.Sprintf("lineItems[%d].unitPrice", i))
			if err != nil {
				return patch, err
			}
			items = append(items, generic.LineItem{Description: li.Description, Quantity: qty, UnitPrice: price})
		}
		patch.LineItems = &items
	}
	if r.TaxAmount != nil {
		tax, err := parseAmount(*r.TaxAmount, "taxAmount")
		if err != nil {
			return patch, err
		}
		patch.TaxAmount = &tax
	}
	if r.DiscountAmount != nil {
		discount, err := parseAmount(*r.DiscountAmount, "discountAmount")
		if err != nil {
			return patch, err
		}
		patch.DiscountAmount = &discount
	}
	return patch, nil
}

type CommentRequest struct {
	Content    string `json:"content"`
	Visibility string `json:"visibility,omitempty"`
}

// =============================================================================
// RESPONSES
// =============================================================================

type RecordDTO struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Status    string   `json:"status"`
	Priority  string   `json:"priority,omitempty"`
	Category  string   `json:"category,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	CreatedBy string   `json:"createdBy"`
	Assignee  string   `json:"assignee,omitempty"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
	DueDate   string   `json:"dueDate,omitempty"`
	SLAStatus string   `json:"slaStatus,omitempty"`
	Version   int64    `json:"version"`

	Subject     string `json:"subject,omitempty"`
	Description string `json:"description,omitempty"`
	Requester   string `json:"requester,omitempty"`

	InvoiceNumber  string        `json:"invoiceNumber,omitempty"`
	CustomerName   string        `json:"customerName,omitempty"`
	CustomerEmail  string        `json:"customerEmail,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	LineItems      []LineItemDTO `json:"lineItems,omitempty"`
	Subtotal       string        `json:"subtotal,omitempty"`
	TaxAmount      string        `json:"taxAmount,omitempty"`
	DiscountAmount string        `json:"discountAmount,omitempty"`
	TotalAmount    string        `json:"totalAmount,omitempty"`
	NetTermsDays   int           `json:"netTermsDays,omitempty"`
	IssueDate      string        `json:"issueDate,omitempty"`
	PaidDate       string        `json:"paidDate,omitempty"`

	History []HistoryEntryDTO `json:"history"`
}

type HistoryEntryDTO struct {
	ID         string                             `json:"id"`
	Action     string                             `json:"action"`
	Actor      string                             `json:"actor"`
	Timestamp  string                             `json:"timestamp"`
	Changes    map[string]generic.FieldChange     `json:"changes,omitempty"`
	Comment    string                             `json:"comment,omitempty"`
	Visibility string                             `json:"visibility,omitempty"`
}

func toRecordDTO(rec *generic.Record) RecordDTO {
	dto := RecordDTO{
		ID:        string(rec.ID),
		Kind:      string(rec.Kind),
		Status:    string(rec.Status),
		Priority:  string(rec.Priority),
		Category:  rec.Category,
		Tags:      rec.Tags,
		CreatedBy: rec.CreatedBy,
		Assignee:  rec.Assignee,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt: rec.UpdatedAt.Format(time.RFC3339),
		SLAStatus: string(rec.SLAStatus),
		Version:   rec.Version,

		Subject:     rec.Subject,
		Description: rec.Description,
		Requester:   rec.Requester,

		InvoiceNumber: rec.InvoiceNumber,
		CustomerName:  rec.CustomerName,
		CustomerEmail: rec.CustomerEmail,
		Notes:         rec.Notes,
		NetTermsDays:  rec.NetTermsDays,
	}
	if rec.DueDate != nil {
		dto.DueDate = rec.DueDate.Format(time.RFC3339)
	}
	if rec.IssueDate != nil {
		dto.IssueDate = rec.IssueDate.Format(time.RFC3339)
	}
	if rec.PaidDate != nil {
		dto.PaidDate = rec.PaidDate.Format(time.RFC3339)
	}
	for _, li := range rec.LineItems {
		dto.LineItems = append(dto.LineItems, LineItemDTO{
			Description: li.Description,
			Quantity:    li.Quantity.String(),
			UnitPrice:   li.UnitPrice.String(),
		})
	}
	if len(rec.LineItems) > 0 {
		dto.Subtotal = rec.Subtotal.String()
		dto.TaxAmount = rec.TaxAmount.String()
		dto.DiscountAmount = rec.DiscountAmount.String()
		dto.TotalAmount = rec.TotalAmount.String()
	}
	for _, e := range rec.History {
		dto.History = append(dto.History, toHistoryEntryDTO(e))
	}
	return dto
}

func toHistoryEntryDTO(e generic.HistoryEntry) HistoryEntryDTO {
	return HistoryEntryDTO{
		ID:         string(e.ID),
		Action:     string(e.Action),
		Actor:      e.Actor,
		Timestamp:  e.Timestamp.Format(time.RFC3339),
		Changes:    e.Changes,
		Comment:    e.Comment,
		Visibility: string(e.Visibility),
	}
}

type StatsDTO struct {
	Total          int            `json:"total"`
	ByStatus       map[string]int `json:"byStatus"`
	ByPriority     map[string]int `json:"byPriority,omitempty"`
	TotalAmount    string         `json:"totalAmount"`
	AverageAmount  string         `json:"averageAmount"`
	MonthlyRevenue string         `json:"monthlyRevenue"`
	YearlyRevenue  string         `json:"yearlyRevenue"`
	SuccessRate    float64        `json:"successRate"`
	Overdue        int            `json:"overdue"`
}

func toStatsDTO(s generic.Stats) StatsDTO {
	dto := StatsDTO{
		Total:          s.Total,
		ByStatus:       make(map[string]int, len(s.ByStatus)),
		TotalAmount:    s.TotalAmount.String(),
		AverageAmount:  s.AverageAmount.String(),
		MonthlyRevenue: s.MonthlyRevenue.String(),
		YearlyRevenue:  s.YearlyRevenue.String(),
		SuccessRate:    s.SuccessRate,
		Overdue:        s.Overdue,
	}
	for k, v := range s.ByStatus {
		dto.ByStatus[string(k)] = v
	}
	if len(s.ByPriority) > 0 {
		dto.ByPriority = make(map[string]int, len(s.ByPriority))
		for k, v := range s.ByPriority {
			dto.ByPriority[string(k)] = v
		}
	}
	return dto
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseAmount(raw, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &generic.ValidationError{Field: field, Reason: "malformed amount: " + raw}
	}
	return d, nil
}

func parseOptionalAmount(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return parseAmount(raw, field)
}
