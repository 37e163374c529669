package update

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"nippo-invoice/internal/middleware/tenant"
	"nippo-invoice/internal/service/invoicing"
	"nippo-invoice/internal/storage"
)

type MockInvoiceUpdater struct {
	mock.Mock
}

func (m *MockInvoiceUpdater) result(args mock.Arguments) (*storage.Invoice, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Invoice), args.Error(1)
}

func (m *MockInvoiceUpdater) UpdateItems(ctx context.Context, tenantID, id int64, items []storage.InvoiceItem, taxRate *decimal.Decimal) (*storage.Invoice, error) {
	return m.result(m.Called(ctx, tenantID, id, items, taxRate))
}

func (m *MockInvoiceUpdater) Regenerate(ctx context.Context, tenantID, id int64, pattern storage.DisplayPattern) (*storage.Invoice, error) {
	return m.result(m.Called(ctx, tenantID, id, pattern))
}

func (m *MockInvoiceUpdater) Issue(ctx context.Context, tenantID, id int64) (*storage.Invoice, error) {
	return m.result(m.Called(ctx, tenantID, id))
}

func (m *MockInvoiceUpdater) Cancel(ctx context.Context, tenantID, id int64) (*storage.Invoice, error) {
	return m.result(m.Called(ctx, tenantID, id))
}

func newRouter(u InvoiceUpdater) *chi.Mux {
	log := slog.Default()
	r := chi.NewRouter()
	r.Use(tenant.Middleware)
	r.Put("/api/invoices/{id}/items", UpdateInvoiceItems(log, u))
	r.Post("/api/invoices/{id}/regenerate", RegenerateInvoice(log, u))
	r.Post("/api/invoices/{id}/issue", IssueInvoice(log, u))
	r.Post("/api/invoices/{id}/cancel", CancelInvoice(log, u))
	return r
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(tenant.Header, "2")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestUpdateInvoiceItems_Success(t *testing.T) {
	u := new(MockInvoiceUpdater)

	itemsMatch := mock.MatchedBy(func(items []storage.InvoiceItem) bool {
		return len(items) == 2 &&
			items[0].ItemType == storage.ItemHeader &&
			items[1].Quantity.Decimal.Equal(decimal.NewFromInt(3))
	})
	rateMatch := mock.MatchedBy(func(rate *decimal.Decimal) bool {
		return rate != nil && rate.Equal(decimal.NewFromInt(8))
	})
	u.On("UpdateItems", mock.Anything, int64(2), int64(5), itemsMatch, rateMatch).
		Return(&storage.Invoice{ID: 5, TotalAmount: decimal.NewFromInt(324)}, nil)

	body := `{
		"items": [
			{"item_type": "header", "name": "03/01 work"},
			{"item_type": "labor", "name": "Install", "quantity": "3", "unit": "h", "unit_price": "100"}
		],
		"tax_rate": 8
	}`
	rr := do(newRouter(u), http.MethodPut, "/api/invoices/5/items", body)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp storage.Invoice
	require.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	assert.Equal(t, "324", resp.TotalAmount.String())
	u.AssertExpectations(t)
}

func TestUpdateInvoiceItems_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{"invalid id", "/api/invoices/x/items", `{"items": []}`},
		{"invalid json", "/api/invoices/5/items", `{"items": [`},
		{"tax rate above range", "/api/invoices/5/items", `{"items": [], "tax_rate": 101}`},
		{"negative tax rate", "/api/invoices/5/items", `{"items": [], "tax_rate": -1}`},
		{"item without name", "/api/invoices/5/items", `{"items": [{"item_type": "other"}]}`},
		{"quantity finer than cents", "/api/invoices/5/items", `{"items": [{"item_type": "other", "name": "x", "quantity": "0.125", "unit_price": "1"}]}`},
		{"unit price finer than cents", "/api/invoices/5/items", `{"items": [{"item_type": "other", "name": "x", "quantity": "1", "unit_price": "0.255"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := new(MockInvoiceUpdater)
			rr := do(newRouter(u), http.MethodPut, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			u.AssertNotCalled(t, "UpdateItems")
		})
	}
}

func TestUpdateInvoiceItems_NotDraft(t *testing.T) {
	u := new(MockInvoiceUpdater)
	u.On("UpdateItems", mock.Anything, int64(2), int64(5), mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("service.invoicing.UpdateItems: %w", invoicing.ErrNotDraft))

	rr := do(newRouter(u), http.MethodPut, "/api/invoices/5/items", `{"items": []}`)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRegenerateInvoice(t *testing.T) {
	u := new(MockInvoiceUpdater)
	u.On("Regenerate", mock.Anything, int64(2), int64(5), storage.PatternAggregated).
		Return(&storage.Invoice{ID: 5, DisplayPattern: storage.PatternAggregated}, nil)
	u.On("Regenerate", mock.Anything, int64(2), int64(6), storage.DisplayPattern("")).
		Return(&storage.Invoice{ID: 6, DisplayPattern: storage.PatternByReport}, nil)

	rr := do(newRouter(u), http.MethodPost, "/api/invoices/5/regenerate", `{"display_pattern": "aggregated"}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(newRouter(u), http.MethodPost, "/api/invoices/6/regenerate", ``)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(newRouter(u), http.MethodPost, "/api/invoices/7/regenerate", `{"display_pattern": "weekly"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	u.AssertExpectations(t)
}

func TestIssueInvoice(t *testing.T) {
	u := new(MockInvoiceUpdater)
	number := "INV-2026-001"
	issuedAt := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	u.On("Issue", mock.Anything, int64(2), int64(5)).Return(&storage.Invoice{
		ID:            5,
		Status:        storage.StatusIssued,
		InvoiceNumber: &number,
		IssuedAt:      &issuedAt,
	}, nil).Once()
	u.On("Issue", mock.Anything, int64(2), int64(5)).
		Return(nil, fmt.Errorf("service.invoicing.Issue: %w", invoicing.ErrNotDraft)).Once()

	rr := do(newRouter(u), http.MethodPost, "/api/invoices/5/issue", ``)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp storage.Invoice
	require.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	require.NotNil(t, resp.InvoiceNumber)
	assert.Equal(t, number, *resp.InvoiceNumber)
	assert.Equal(t, storage.StatusIssued, resp.Status)

	rr = do(newRouter(u), http.MethodPost, "/api/invoices/5/issue", ``)
	assert.Equal(t, http.StatusConflict, rr.Code)

	u.AssertExpectations(t)
}

func TestIssueInvoice_NumberTaken(t *testing.T) {
	u := new(MockInvoiceUpdater)
	u.On("Issue", mock.Anything, int64(2), int64(5)).
		Return(nil, fmt.Errorf("storage.mysql.IssueInvoice: %w", storage.ErrInvoiceNumberTaken))

	rr := do(newRouter(u), http.MethodPost, "/api/invoices/5/issue", ``)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "retry")
}

func TestCancelInvoice(t *testing.T) {
	u := new(MockInvoiceUpdater)
	u.On("Cancel", mock.Anything, int64(2), int64(5)).
		Return(&storage.Invoice{ID: 5, Status: storage.StatusCanceled}, nil)
	u.On("Cancel", mock.Anything, int64(2), int64(6)).
		Return(nil, fmt.Errorf("service.invoicing.Cancel: %w", invoicing.ErrAlreadyCanceled))
	u.On("Cancel", mock.Anything, int64(2), int64(7)).
		Return(nil, fmt.Errorf("service.invoicing.Cancel: %w", storage.ErrInvoiceNotFound))

	rr := do(newRouter(u), http.MethodPost, "/api/invoices/5/cancel", ``)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(newRouter(u), http.MethodPost, "/api/invoices/6/cancel", ``)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(newRouter(u), http.MethodPost, "/api/invoices/7/cancel", ``)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	u.AssertExpectations(t)
}
