/*
scenarios.go - Demo data seeding

PURPOSE:
  Loads a realistic set of tickets and invoices so the frontends have
  something to render during development. Dev only; the endpoint is not
  meant to exist in production deployments.

SEE ALSO:
  - server.go: POST /api/demo/seed
*/
package api

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/warp/record-engine/billing"
	"github.com/warp/record-engine/generic"
	"github.com/warp/record-engine/tickets"
)

// SeedDemo loads the demo dataset into the store.
func (h *Handler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	created, err := SeedDemoData(r.Context(), h.Store)
	if err != nil {
		h.writeEngineError(w, "Failed to seed demo data", err)
		return
	}
	h.Log.Info().Int("records", created).Msg("demo data seeded")
	writeJSON(w, http.StatusOK, map[string]any{"created": created})
}

// SeedDemoData creates the demo tickets and invoices. Returns the number
// of records created.
func SeedDemoData(ctx context.Context, store *generic.RecordStore) (int, error) {
	created := 0

	demoTickets := []generic.CreateInput{
		{
			Subject:     "Cannot log in after password reset",
			Description: "User reports the reset link loops back to the login page.",
			Priority:    generic.PriorityUrgent,
			Category:    "account",
			Tags:        []string{"login", "password"},
			Requester:   "Dana Whitfield",
		},
		{
			Subject:     "Export to CSV drops the header row",
			Description: "Reports exported from the dashboard are missing column names.",
			Priority:    generic.PriorityMedium,
			Category:    "reports",
			Tags:        []string{"export"},
			Requester:   "Miguel Santos",
		},
		{
			Subject:     "Add dark mode to customer portal",
			Description: "Several customers asked for a dark theme option.",
			Priority:    generic.PriorityLow,
			Category:    "feature-request",
			Requester:   "Priya Nair",
		},
	}
	for _, input := range demoTickets {
		if _, err := store.Create(ctx, tickets.Kind, input, "demo-seed"); err != nil {
			return created, err
		}
		created++
	}

	demoInvoices := []generic.CreateInput{
		{
			InvoiceNumber: "INV-2025-0042",
			CustomerName:  "TechStart Inc",
			CustomerEmail: "billing@techstart.example",
			LineItems: []generic.LineItem{
				{Description: "Platform subscription (annual)", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1500)},
				{Description: "Onboarding support", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(100)},
			},
			TaxAmount:      decimal.NewFromInt(180),
			DiscountAmount: decimal.NewFromInt(100),
			NetTermsDays:   30,
		},
		{
			InvoiceNumber: "INV-2025-0043",
			CustomerName:  "Harbor Analytics",
			CustomerEmail: "accounts@harbor.example",
			LineItems: []generic.LineItem{
				{Description: "Usage overage, July", Quantity: decimal.NewFromInt(240), UnitPrice: decimal.RequireFromString("0.85")},
			},
			TaxAmount:    decimal.RequireFromString("20.40"),
			NetTermsDays: 15,
		},
	}
	for _, input := range demoInvoices {
		if _, err := store.Create(ctx, billing.Kind, input, "demo-seed"); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}
