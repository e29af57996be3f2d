/*
handlers.go - HTTP API handlers for the record engine

PURPOSE:
  Exposes the record lifecycle engine via REST. Handles HTTP
  request/response, JSON serialization, and delegates to the RecordStore.

ENDPOINTS:
  Tickets:
    GET    /api/tickets                List with filters
    POST   /api/tickets                Create
    GET    /api/tickets/{id}           Get one (with history)
    PUT    /api/tickets/{id}           Update (optimistic concurrency)
    DELETE /api/tickets/{id}           Delete
    POST   /api/tickets/{id}/comments  Append a comment entry
    GET    /api/tickets/stats          Family stats

  Invoices: same shape under /api/invoices.

  Global:
    GET  /api/stats      Stats over all records (filterable)
    POST /api/demo/seed  Load demo data (dev only)

FILTER QUERY PARAMETERS:
  status, priority, category, tag: comma-separated OR sets
  search:                          free-text substring
  created_from, created_to:        YYYY-MM-DD, inclusive
  amount_min, amount_max:          decimal strings, inclusive
  sort, dir:                       sort key and asc/desc

ACTOR IDENTITY:
  The X-Actor-ID header names the actor recorded on history entries.
  There is no authentication here; an identity layer in front of this
  API is expected to set the header.

ERROR HANDLING:
  Engine errors map to HTTP status codes:
  - 400: generic.ErrValidation, unknown kind, malformed body
  - 404: generic.ErrNotFound
  - 409: generic.ErrConflict (client should re-fetch and retry)
  - 500: anything else

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/record-engine/billing"
	"github.com/warp/record-engine/generic"
	"github.com/warp/record-engine/tickets"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *generic.RecordStore
	Log   zerolog.Logger
}

// NewHandler creates a new handler around the given store.
func NewHandler(store *generic.RecordStore, log zerolog.Logger) *Handler {
	return &Handler{Store: store, Log: log}
}

func actorID(r *http.Request) string {
	if actor := r.Header.Get("X-Actor-ID"); actor != "" {
		return actor
	}
	return "anonymous"
}

// =============================================================================
// CREATE
// =============================================================================

// CreateTicket creates a ticket record.
func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var req CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := h.Store.Create(r.Context(), tickets.Kind, req.ToInput(), actorID(r))
	if err != nil {
		h.writeEngineError(w, "Failed to create ticket", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordDTO(rec))
}

// CreateInvoice creates an invoice record.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.writeEngineError(w, "Invalid invoice payload", err)
		return
	}

	rec, err := h.Store.Create(r.Context(), billing.Kind, input, actorID(r))
	if err != nil {
		h.writeEngineError(w, "Failed to create invoice", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordDTO(rec))
}

// =============================================================================
// READ
// =============================================================================

// ListRecords returns the filtered, ordered records of one kind.
func (h *Handler) ListRecords(kind generic.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, sortSpec, err := parseQuery(r, kind)
		if err != nil {
			h.writeEngineError(w, "Invalid filter", err)
			return
		}

		records := h.Store.List(r.Context(), filter, sortSpec)
		dtos := make([]RecordDTO, len(records))
		for i, rec := range records {
			dtos[i] = toRecordDTO(rec)
		}
		writeJSON(w, http.StatusOK, dtos)
	}
}

// GetRecord returns a single record with its full history.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := generic.RecordID(chi.URLParam(r, "id"))

	rec, err := h.Store.Get(r.Context(), id)
	if err != nil {
		h.writeEngineError(w, "Failed to get record", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

// =============================================================================
// UPDATE / DELETE / COMMENT
// =============================================================================

// UpdateRecord applies a patch under optimistic concurrency.
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id := generic.RecordID(chi.URLParam(r, "id"))

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		h.writeEngineError(w, "Invalid patch", err)
		return
	}

	rec, err := h.Store.Update(r.Context(), id, req.Version, patch, actorID(r))
	if err != nil {
		h.writeEngineError(w, "Failed to update record", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

// DeleteRecord removes a record (archiving it first when configured).
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := generic.RecordID(chi.URLParam(r, "id"))

	if err := h.Store.Delete(r.Context(), id); err != nil {
		h.writeEngineError(w, "Failed to delete record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddComment appends a "commented" history entry.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id := generic.RecordID(chi.URLParam(r, "id"))

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "Comment content is required", nil)
		return
	}
	visibility := generic.Visibility(req.Visibility)
	if visibility == "" {
		visibility = generic.VisibilityInternal
	}

	entry, err := h.Store.AppendComment(r.Context(), id, req.Content, actorID(r), visibility)
	if err != nil {
		h.writeEngineError(w, "Failed to append comment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHistoryEntryDTO(*entry))
}

// =============================================================================
// STATS
// =============================================================================

// Stats aggregates over all records, respecting filter parameters.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	filter, _, err := parseQuery(r, "")
	if err != nil {
		h.writeEngineError(w, "Invalid filter", err)
		return
	}
	stats := h.Store.ComputeStats(r.Context(), &filter)
	writeJSON(w, http.StatusOK, toStatsDTO(stats))
}

// KindStats aggregates over one family.
func (h *Handler) KindStats(kind generic.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, _, err := parseQuery(r, kind)
		if err != nil {
			h.writeEngineError(w, "Invalid filter", err)
			return
		}
		stats := h.Store.ComputeStats(r.Context(), &filter)
		writeJSON(w, http.StatusOK, toStatsDTO(stats))
	}
}

// =============================================================================
// QUERY PARSING
// =============================================================================

func parseQuery(r *http.Request, kind generic.Kind) (generic.Filter, generic.SortSpec, error) {
	q := r.URL.Query()
	var f generic.Filter
	if kind != "" {
		f.Kinds = []generic.Kind{kind}
	}

	for _, s := range splitParam(q.Get("status")) {
		f.Statuses = append(f.Statuses, generic.Status(s))
	}
	for _, p := range splitParam(q.Get("priority")) {
		f.Priorities = append(f.Priorities, generic.Priority(p))
	}
	f.Categories = splitParam(q.Get("category"))
	f.Tags = splitParam(q.Get("tag"))
	f.Search = q.Get("search")

	if raw := q.Get("created_from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, generic.SortSpec{}, &generic.ValidationError{Field: "created_from", Reason: "expected YYYY-MM-DD"}
		}
		f.CreatedFrom = &t
	}
	if raw := q.Get("created_to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, generic.SortSpec{}, &generic.ValidationError{Field: "created_to", Reason: "expected YYYY-MM-DD"}
		}
		// Inclusive on the whole end day.
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		f.CreatedTo = &end
	}
	if raw := q.Get("amount_min"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return f, generic.SortSpec{}, &generic.ValidationError{Field: "amount_min", Reason: "malformed amount"}
		}
		f.AmountMin = &d
	}
	if raw := q.Get("amount_max"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return f, generic.SortSpec{}, &generic.ValidationError{Field: "amount_max", Reason: "malformed amount"}
		}
		f.AmountMax = &d
	}

	sortSpec := generic.SortSpec{
		Key:       generic.SortKey(q.Get("sort")),
		Direction: generic.SortDirection(q.Get("dir")),
	}
	return f, sortSpec, nil
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) writeEngineError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsValidation(err), errors.Is(err, generic.ErrUnknownKind):
		writeError(w, http.StatusBadRequest, message, err)
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		h.Log.Error().Err(err).Msg(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
