package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
	"nippo-invoice/http-server/invoice"
	"nippo-invoice/internal/middleware/tenant"
	"nippo-invoice/internal/service/amount"
	"nippo-invoice/internal/service/invoicing"
	"nippo-invoice/internal/storage"
)

type InvoiceCreator interface {
	Create(ctx context.Context, tenantID int64, req invoicing.CreateRequest) (*storage.Invoice, error)
}

type Request struct {
	CustomerID     int64                  `json:"customer_id"`
	Title          string                 `json:"title"`
	PeriodFrom     string                 `json:"period_from"`
	PeriodTo       string                 `json:"period_to"`
	DisplayPattern storage.DisplayPattern `json:"display_pattern"`
	TaxRate        *decimal.Decimal       `json:"tax_rate"`
	Notes          string                 `json:"notes"`
}

func CreateInvoice(log *slog.Logger, creator InvoiceCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.invoice.save.CreateInvoice"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		if req.CustomerID <= 0 {
			http.Error(w, "customer_id is required", http.StatusBadRequest)
			return
		}

		from, err := time.Parse(invoice.DateLayout, req.PeriodFrom)
		if err != nil {
			http.Error(w, "invalid period_from date", http.StatusBadRequest)
			return
		}
		to, err := time.Parse(invoice.DateLayout, req.PeriodTo)
		if err != nil {
			http.Error(w, "invalid period_to date", http.StatusBadRequest)
			return
		}

		if req.DisplayPattern != "" && !req.DisplayPattern.Valid() {
			http.Error(w, "display_pattern must be by_report or aggregated", http.StatusBadRequest)
			return
		}

		if req.TaxRate != nil {
			if err := amount.ValidateTaxRate(*req.TaxRate); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		inv, err := creator.Create(ctx, tenant.ID(r.Context()), invoicing.CreateRequest{
			CustomerID:     req.CustomerID,
			Title:          req.Title,
			PeriodFrom:     from,
			PeriodTo:       to,
			DisplayPattern: req.DisplayPattern,
			TaxRate:        req.TaxRate,
			Notes:          req.Notes,
		})
		if err != nil {
			status, msg := invoice.Status(err)
			log.Error("Failed to create invoice", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, msg, status)
			return
		}

		log.Info("invoice created",
			slog.Int64("id", inv.ID),
			slog.Int("items", len(inv.Items)),
			slog.String("total", inv.TotalAmount.String()),
		)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, inv)
	}
}
