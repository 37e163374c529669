package update

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
	"nippo-invoice/http-server/invoice"
	"nippo-invoice/internal/middleware/tenant"
	"nippo-invoice/internal/service/amount"
	"nippo-invoice/internal/storage"
)

type InvoiceUpdater interface {
	UpdateItems(ctx context.Context, tenantID, id int64, items []storage.InvoiceItem, taxRate *decimal.Decimal) (*storage.Invoice, error)
	Regenerate(ctx context.Context, tenantID, id int64, pattern storage.DisplayPattern) (*storage.Invoice, error)
	Issue(ctx context.Context, tenantID, id int64) (*storage.Invoice, error)
	Cancel(ctx context.Context, tenantID, id int64) (*storage.Invoice, error)
}

type ItemsRequest struct {
	Items   []storage.InvoiceItem `json:"items"`
	TaxRate *decimal.Decimal      `json:"tax_rate"`
}

type RegenerateRequest struct {
	DisplayPattern storage.DisplayPattern `json:"display_pattern"`
}

func UpdateInvoiceItems(log *slog.Logger, updater InvoiceUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.invoice.update.UpdateInvoiceItems"

		id, err := invoice.ParseID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var req ItemsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}

		if req.TaxRate != nil {
			if err := amount.ValidateTaxRate(*req.TaxRate); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		for _, it := range req.Items {
			if it.ItemType != storage.ItemHeader && it.Name == "" {
				http.Error(w, "item name is required", http.StatusBadRequest)
				return
			}
		}

		if err := amount.ValidateItems(req.Items); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		inv, err := updater.UpdateItems(ctx, tenant.ID(r.Context()), id, req.Items, req.TaxRate)
		if err != nil {
			fail(log, w, op, id, err)
			return
		}

		log.Info("invoice items updated", slog.Int64("id", id), slog.Int("items", len(inv.Items)))

		render.JSON(w, r, inv)
	}
}

// RegenerateInvoice takes an optional body; without one the invoice keeps its
// display pattern.
func RegenerateInvoice(log *slog.Logger, updater InvoiceUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.invoice.update.RegenerateInvoice"

		id, err := invoice.ParseID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var req RegenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			log.Error("Invalid JSON", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Invalid data", http.StatusBadRequest)
			return
		}

		if req.DisplayPattern != "" && !req.DisplayPattern.Valid() {
			http.Error(w, "display_pattern must be by_report or aggregated", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		inv, err := updater.Regenerate(ctx, tenant.ID(r.Context()), id, req.DisplayPattern)
		if err != nil {
			fail(log, w, op, id, err)
			return
		}

		log.Info("invoice regenerated", slog.Int64("id", id), slog.String("pattern", string(inv.DisplayPattern)))

		render.JSON(w, r, inv)
	}
}

func IssueInvoice(log *slog.Logger, updater InvoiceUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.invoice.update.IssueInvoice"

		id, err := invoice.ParseID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		inv, err := updater.Issue(ctx, tenant.ID(r.Context()), id)
		if err != nil {
			fail(log, w, op, id, err)
			return
		}

		if inv.InvoiceNumber != nil {
			log.Info("invoice issued", slog.Int64("id", id), slog.String("number", *inv.InvoiceNumber))
		}

		render.JSON(w, r, inv)
	}
}

func CancelInvoice(log *slog.Logger, updater InvoiceUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.invoice.update.CancelInvoice"

		id, err := invoice.ParseID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		inv, err := updater.Cancel(ctx, tenant.ID(r.Context()), id)
		if err != nil {
			fail(log, w, op, id, err)
			return
		}

		log.Info("invoice canceled", slog.Int64("id", id))

		render.JSON(w, r, inv)
	}
}

func fail(log *slog.Logger, w http.ResponseWriter, op string, id int64, err error) {
	status, msg := invoice.Status(err)
	l := log.With(slog.String("op", op), slog.Int64("id", id), slog.String("error", err.Error()))
	if status >= http.StatusInternalServerError {
		l.Error("invoice operation failed")
	} else {
		l.Warn("invoice operation rejected")
	}
	http.Error(w, msg, status)
}
