package save

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"nippo-invoice/internal/middleware/tenant"
	"nippo-invoice/internal/service/invoicing"
	"nippo-invoice/internal/storage"
)

type MockInvoiceCreator struct {
	mock.Mock
}

func (m *MockInvoiceCreator) Create(ctx context.Context, tenantID int64, req invoicing.CreateRequest) (*storage.Invoice, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Invoice), args.Error(1)
}

func newRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/invoices", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(tenant.WithID(req.Context(), 3))
}

func TestCreateInvoice_Success(t *testing.T) {
	creator := new(MockInvoiceCreator)

	rate := decimal.NewFromInt(8)
	want := invoicing.CreateRequest{
		CustomerID:     5,
		Title:          "3月分",
		PeriodFrom:     time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		PeriodTo:       time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
		DisplayPattern: storage.PatternAggregated,
		TaxRate:        &rate,
	}

	creator.On("Create", mock.Anything, int64(3), mock.MatchedBy(func(req invoicing.CreateRequest) bool {
		return req.CustomerID == want.CustomerID &&
			req.PeriodFrom.Equal(want.PeriodFrom) &&
			req.PeriodTo.Equal(want.PeriodTo) &&
			req.DisplayPattern == want.DisplayPattern &&
			req.TaxRate != nil && req.TaxRate.Equal(rate)
	})).Return(&storage.Invoice{ID: 12, Status: storage.StatusDraft, TotalAmount: decimal.NewFromInt(11000)}, nil)

	handler := CreateInvoice(slog.Default(), creator)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest(`{
		"customer_id": 5,
		"title": "3月分",
		"period_from": "2026-03-01",
		"period_to": "2026-03-31",
		"display_pattern": "aggregated",
		"tax_rate": 8
	}`))

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp storage.Invoice
	require.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	assert.Equal(t, int64(12), resp.ID)
	assert.Equal(t, "11000", resp.TotalAmount.String())

	creator.AssertExpectations(t)
}

func TestCreateInvoice_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing customer", `{"period_from":"2026-03-01","period_to":"2026-03-31"}`},
		{"bad date", `{"customer_id":1,"period_from":"03/01/2026","period_to":"2026-03-31"}`},
		{"bad pattern", `{"customer_id":1,"period_from":"2026-03-01","period_to":"2026-03-31","display_pattern":"weekly"}`},
		{"negative tax", `{"customer_id":1,"period_from":"2026-03-01","period_to":"2026-03-31","tax_rate":-1}`},
		{"tax above 100", `{"customer_id":1,"period_from":"2026-03-01","period_to":"2026-03-31","tax_rate":"150"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := new(MockInvoiceCreator)
			handler := CreateInvoice(slog.Default(), creator)

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, newRequest(tt.body))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			creator.AssertNotCalled(t, "Create")
		})
	}
}

func TestCreateInvoice_CustomerNotFound(t *testing.T) {
	creator := new(MockInvoiceCreator)
	creator.On("Create", mock.Anything, int64(3), mock.Anything).Return(nil, storage.ErrCustomerNotFound)

	handler := CreateInvoice(slog.Default(), creator)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest(`{"customer_id":99,"period_from":"2026-03-01","period_to":"2026-03-31"}`))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Customer not found")
}
