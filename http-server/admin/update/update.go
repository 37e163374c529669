package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"nippo-invoice/internal/middleware/tenant"
	"nippo-invoice/internal/storage"
)

type PriceListUpdater interface {
	UpsertProductsAdmin(ctx context.Context, tenantID int64, products []storage.Product) error
	UpsertMaterialsAdmin(ctx context.Context, tenantID int64, materials []storage.Material) error
}

// UpdateProductsAdmin replaces prices for the listed products; entries
// without an id are created.
func UpdateProductsAdmin(log *slog.Logger, update PriceListUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.UpdateProductsAdmin"

		var products []storage.Product
		if err := json.NewDecoder(r.Body).Decode(&products); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		for _, p := range products {
			if err := p.Validate(); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := update.UpsertProductsAdmin(ctx, tenant.ID(r.Context()), products); err != nil {
			log.Error("failed to update products", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func UpdateMaterialsAdmin(log *slog.Logger, update PriceListUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.UpdateMaterialsAdmin"

		var materials []storage.Material
		if err := json.NewDecoder(r.Body).Decode(&materials); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		for _, m := range materials {
			if err := m.Validate(); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := update.UpsertMaterialsAdmin(ctx, tenant.ID(r.Context()), materials); err != nil {
			log.Error("failed to update materials", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
