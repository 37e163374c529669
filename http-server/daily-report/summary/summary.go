package summary

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"
	"nippo-invoice/internal/middleware/tenant"
	"nippo-invoice/internal/storage"
)

type SummaryProvider interface {
	GetMonthlySummary(ctx context.Context, tenantID int64, year, month int) ([]storage.MonthlySummary, error)
}

func GetMonthlySummary(log *slog.Logger, provider SummaryProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.GetMonthlySummary"

		year, err := strconv.Atoi(r.URL.Query().Get("year"))
		if err != nil || year < 1 {
			http.Error(w, "year is required", http.StatusBadRequest)
			return
		}
		month, err := strconv.Atoi(r.URL.Query().Get("month"))
		if err != nil || month < 1 || month > 12 {
			http.Error(w, "month must be between 1 and 12", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rows, err := provider.GetMonthlySummary(ctx, tenant.ID(r.Context()), year, month)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to build monthly summary")
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, rows)
	}
}
