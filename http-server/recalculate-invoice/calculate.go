package recalculate_invoice

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
	"nippo-invoice/internal/service/amount"
	"nippo-invoice/internal/service/invoicing"
	"nippo-invoice/internal/storage"
)

type InvoiceCalculator interface {
	Preview(items []storage.InvoiceItem, taxRate *decimal.Decimal) ([]storage.InvoiceItem, amount.Totals, error)
}

type Request struct {
	Items   []storage.InvoiceItem `json:"items"`
	TaxRate *decimal.Decimal      `json:"tax_rate"`
}

type Resp struct {
	Items []storage.InvoiceItem `json:"items"`
	amount.Totals
}

// CalculateInvoice recomputes item amounts and totals for the edit form
// without persisting anything.
func CalculateInvoice(log *slog.Logger, calc InvoiceCalculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.invoice.CalculateInvoice"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		if req.TaxRate != nil {
			if err := amount.ValidateTaxRate(*req.TaxRate); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		if err := amount.ValidateItems(req.Items); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, totals, err := calc.Preview(req.Items, req.TaxRate)
		if err != nil {
			if errors.Is(err, invoicing.ErrInvalidItemType) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			log.Error("Failed to calculate invoice", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, Resp{
			Items:  items,
			Totals: totals,
		})
	}
}
