package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizflow/pkg/client"
	"bizflow/pkg/dashboard"
	"bizflow/pkg/invoice"
	"bizflow/pkg/onboarding"
	"bizflow/pkg/proposal"
	"bizflow/pkg/storage/sqlitestore"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := sqlitestore.OpenSeeded(context.Background(), "")
	require.NoError(t, err)

	invoices := invoice.NewService(invoice.NewRepository(db), 0.10, nil)
	clients := client.NewService(client.NewRepository(db), nil)
	proposals := proposal.NewService(proposal.NewRepository(db))
	sessions := onboarding.NewRegistry(onboarding.SessionConfig{SignatureDelay: 10 * time.Millisecond})
	t.Cleanup(func() {
		sessions.Close()
		invoices.Close()
		clients.Close()
		db.Close()
	})

	return New(Services{
		Invoices:   invoices,
		Proposals:  proposals,
		Clients:    clients,
		Dashboard:  dashboard.NewService(invoices, proposals, dashboard.NewRepository(db)),
		Onboarding: sessions,
	}, Timeouts{}, nil)
}

func do(t *testing.T, s *Server, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestInvoiceEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s, http.MethodGet, "/api/invoices?q=acme", nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[[]map[string]any](t, body)
	require.Len(t, list, 1)
	assert.Equal(t, "INV-001", list[0]["id"])
	assert.Equal(t, "$2,450.00", list[0]["formatted_amount"])
	assert.Equal(t, "Paid", list[0]["status_label"])

	code, body = do(t, s, http.MethodGet, "/api/invoices?status=pending", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]map[string]any](t, body), 2)

	code, _ = do(t, s, http.MethodGet, "/api/invoices/INV-404", nil)
	assert.Equal(t, http.StatusNotFound, code)

	draft := map[string]any{
		"client":     "TechStart Inc",
		"issue_date": "2024-02-01",
		"due_date":   "2024-02-15",
		"items": []map[string]any{
			{"description": "Web Design Services", "quantity": 40, "rate": "75"},
			{"description": "Frontend Development", "quantity": "60", "rate": 85},
		},
	}
	code, body = do(t, s, http.MethodPost, "/api/invoices/preview", draft)
	require.Equal(t, http.StatusOK, code)
	preview := decode[map[string]any](t, body)
	assert.Equal(t, map[string]any{"subtotal": "$8,100.00", "tax": "$810.00", "total": "$8,910.00"}, preview["formatted"])

	code, body = do(t, s, http.MethodPost, "/api/invoices", draft)
	require.Equal(t, http.StatusCreated, code, string(body))
	created := decode[map[string]any](t, body)
	assert.Equal(t, "INV-007", created["id"])
	assert.Equal(t, "draft", created["status"])
	assert.Equal(t, "$8,910.00", created["formatted_amount"])

	code, body = do(t, s, http.MethodPost, "/api/invoices/INV-007/send", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pending", decode[map[string]any](t, body)["status"])

	code, _ = do(t, s, http.MethodPost, "/api/invoices", map[string]any{"client": ""})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestProposalAndClientEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s, http.MethodGet, "/api/proposals?q=brand", nil)
	require.Equal(t, http.StatusOK, code)
	proposals := decode[[]map[string]any](t, body)
	require.Len(t, proposals, 1)
	assert.Equal(t, "$8,500.00", proposals[0]["formatted_value"])
	assert.Equal(t, "Draft", proposals[0]["status_label"])

	code, body = do(t, s, http.MethodGet, "/api/clients", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]map[string]any](t, body), 3)
}

func TestDashboardAndNavigation(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, code)
	summary := decode[dashboard.Summary](t, body)
	require.Len(t, summary.Stats, 4)
	assert.Equal(t, "$6,650.00", summary.Stats[0].Value)

	code, body = do(t, s, http.MethodGet, "/api/navigation", nil)
	require.Equal(t, http.StatusOK, code)
	nav := decode[map[string][]dashboard.MenuItem](t, body)
	assert.Len(t, nav["main"], 4)
	assert.Equal(t, "Settings", nav["footer"][0].Title)

	code, _ = do(t, s, http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestOnboardingEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s, http.MethodPost, "/api/onboarding", nil)
	require.Equal(t, http.StatusCreated, code)
	state := decode[onboarding.State](t, body)
	require.NotEmpty(t, state.ID)
	assert.Equal(t, 1, state.StepNumber)
	base := "/api/onboarding/" + state.ID

	code, body = do(t, s, http.MethodPut, base+"/details", onboarding.Details{
		Client: onboarding.ClientDetails{CompanyName: "Acme Corp"},
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Acme Corp", decode[onboarding.State](t, body).Details.Client.CompanyName)

	do(t, s, http.MethodPost, base+"/next", nil)
	code, body = do(t, s, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, decode[onboarding.State](t, body).StepNumber)

	code, body = do(t, s, http.MethodPost, base+"/sign", nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decode[onboarding.State](t, body).Signing)

	require.Eventually(t, func() bool {
		code, body := do(t, s, http.MethodGet, base, nil)
		return code == http.StatusOK && decode[onboarding.State](t, body).Terminal
	}, time.Second, 5*time.Millisecond)

	code, _ = do(t, s, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = do(t, s, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, code)
}
