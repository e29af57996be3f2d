package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/record-engine/api"
	"github.com/warp/record-engine/billing"
	"github.com/warp/record-engine/generic"
	"github.com/warp/record-engine/tickets"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := generic.NewRecordStore(generic.StoreConfig{
		IDs:      generic.NewSequenceGenerator(),
		Families: []generic.FamilySpec{tickets.NewSpec(), billing.NewSpec()},
	})
	handler := api.NewHandler(store, zerolog.Nop())
	server := httptest.NewServer(api.NewRouter(handler, []string{"*"}))
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", "tester")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func createTicket(t *testing.T, server *httptest.Server) api.RecordDTO {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/tickets", map[string]any{
		"subject":     "Cannot log in",
		"description": "Reset link loops back to the login page.",
		"priority":    "urgent",
		"category":    "account",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var dto api.RecordDTO
	require.NoError(t, json.Unmarshal(body, &dto))
	return dto
}

func TestCreateTicket(t *testing.T) {
	server := newTestServer(t)
	dto := createTicket(t, server)

	assert.Equal(t, "ticket", dto.Kind)
	assert.Equal(t, "open", dto.Status)
	assert.Equal(t, int64(1), dto.Version)
	assert.Equal(t, "tester", dto.CreatedBy)
	assert.NotEmpty(t, dto.DueDate)
	assert.Equal(t, "on_time", dto.SLAStatus)
	require.Len(t, dto.History, 1)
	assert.Equal(t, "created", dto.History[0].Action)
}

func TestCreateTicket_ValidationFailure(t *testing.T) {
	server := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/tickets", map[string]any{
		"subject": "no description",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp api.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.NotEmpty(t, errResp.Error)
}

func TestCreateInvoice_DerivesTotals(t *testing.T) {
	server := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/invoices", map[string]any{
		"invoiceNumber": "INV-2025-0042",
		"customerName":  "TechStart Inc",
		"lineItems": []map[string]string{
			{"description": "Platform subscription (annual)", "quantity": "1", "unitPrice": "1500"},
			{"description": "Onboarding support", "quantity": "3", "unitPrice": "100"},
		},
		"taxAmount":      "180",
		"discountAmount": "100",
		"netTermsDays":   30,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var dto api.RecordDTO
	require.NoError(t, json.Unmarshal(body, &dto))
	assert.Equal(t, "draft", dto.Status)
	assert.Equal(t, "1800", dto.Subtotal)
	assert.Equal(t, "1880", dto.TotalAmount)
	assert.NotEmpty(t, dto.IssueDate)
	assert.NotEmpty(t, dto.DueDate)
}

func TestCreateInvoice_MalformedAmount(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/invoices", map[string]any{
		"customerName": "TechStart Inc",
		"lineItems": []map[string]string{
			{"description": "widget", "quantity": "one", "unitPrice": "10"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetRecord(t *testing.T) {
	server := newTestServer(t)
	created := createTicket(t, server)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/api/tickets/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dto api.RecordDTO
	require.NoError(t, json.Unmarshal(body, &dto))
	assert.Equal(t, created.ID, dto.ID)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/tickets/tkt-missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateRecord_OptimisticConcurrency(t *testing.T) {
	server := newTestServer(t)
	created := createTicket(t, server)

	resp, body := doJSON(t, http.MethodPut, server.URL+"/api/tickets/"+created.ID, map[string]any{
		"version": created.Version,
		"status":  "in_progress",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var updated api.RecordDTO
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "in_progress", updated.Status)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "status_changed", updated.History[len(updated.History)-1].Action)

	// Replaying the same version must conflict.
	resp, _ = doJSON(t, http.MethodPut, server.URL+"/api/tickets/"+created.ID, map[string]any{
		"version": created.Version,
		"status":  "resolved",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAddComment(t *testing.T) {
	server := newTestServer(t)
	created := createTicket(t, server)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/tickets/"+created.ID+"/comments", map[string]any{
		"content":    "Reproduced on staging.",
		"visibility": "external",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var entry api.HistoryEntryDTO
	require.NoError(t, json.Unmarshal(body, &entry))
	assert.Equal(t, "commented", entry.Action)
	assert.Equal(t, "external", entry.Visibility)
	assert.Equal(t, "tester", entry.Actor)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/tickets/"+created.ID+"/comments", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteRecord(t *testing.T) {
	server := newTestServer(t)
	created := createTicket(t, server)

	resp, _ := doJSON(t, http.MethodDelete, server.URL+"/api/tickets/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/tickets/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListRecords_FilterByStatusAndSearch(t *testing.T) {
	server := newTestServer(t)
	createTicket(t, server)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/tickets", map[string]any{
		"subject":     "Export drops header row",
		"description": "CSV exports are missing column names.",
		"priority":    "medium",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/tickets?status=open&search=export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []api.RecordDTO
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Export drops header row", list[0].Subject)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/tickets?created_from=not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStats(t *testing.T) {
	server := newTestServer(t)
	createTicket(t, server)
	createTicket(t, server)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/api/tickets/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats api.StatsDTO
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.ByStatus["open"])
	assert.Equal(t, float64(0), stats.SuccessRate)
}

func TestSeedDemo(t *testing.T) {
	server := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/demo/seed", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out map[string]int
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 5, out["created"])

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/invoices?search=techstart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []api.RecordDTO
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "1880", list[0].TotalAmount)
}
