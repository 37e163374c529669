package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"
	"nippo-invoice/http-server/invoice"
	"nippo-invoice/internal/middleware/tenant"
	"nippo-invoice/internal/storage"
)

type InvoiceProvider interface {
	Get(ctx context.Context, tenantID, id int64) (*storage.Invoice, error)
	List(ctx context.Context, tenantID int64, year, month int) ([]storage.InvoiceListEntry, error)
}

func GetInvoice(log *slog.Logger, provider InvoiceProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.invoice.get.GetInvoice"

		id, err := invoice.ParseID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		inv, err := provider.Get(ctx, tenant.ID(r.Context()), id)
		if err != nil {
			status, msg := invoice.Status(err)
			if status == http.StatusNotFound {
				log.With(slog.String("op", op), slog.Int64("id", id)).Warn("invoice not found")
			} else {
				log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to fetch invoice")
			}
			http.Error(w, msg, status)
			return
		}

		render.JSON(w, r, inv)
	}
}

// ListInvoices accepts optional year and month query parameters.
func ListInvoices(log *slog.Logger, provider InvoiceProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.invoice.get.ListInvoices"

		year, month := 0, 0
		if s := r.URL.Query().Get("year"); s != "" {
			y, err := strconv.Atoi(s)
			if err != nil || y < 1 {
				http.Error(w, "invalid year", http.StatusBadRequest)
				return
			}
			year = y
		}
		if s := r.URL.Query().Get("month"); s != "" {
			m, err := strconv.Atoi(s)
			if err != nil || m < 1 || m > 12 || year == 0 {
				http.Error(w, "invalid month", http.StatusBadRequest)
				return
			}
			month = m
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := provider.List(ctx, tenant.ID(r.Context()), year, month)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to list invoices")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, list)
	}
}
