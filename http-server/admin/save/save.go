package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"nippo-invoice/internal/middleware/tenant"
	"nippo-invoice/internal/storage"
)

type ProductCreator interface {
	UpsertProductsAdmin(ctx context.Context, tenantID int64, products []storage.Product) error
	UpsertMaterialsAdmin(ctx context.Context, tenantID int64, materials []storage.Material) error
}

func SaveProductAdmin(log *slog.Logger, creator ProductCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.SaveProductAdmin"

		var product storage.Product
		if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		if err := product.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		product.ID = 0

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := creator.UpsertProductsAdmin(ctx, tenant.ID(r.Context()), []storage.Product{product}); err != nil {
			log.Error("failed to create product", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusCreated)
	}
}

func SaveMaterialAdmin(log *slog.Logger, creator ProductCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.SaveMaterialAdmin"

		var material storage.Material
		if err := json.NewDecoder(r.Body).Decode(&material); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		if err := material.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		material.ID = 0

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := creator.UpsertMaterialsAdmin(ctx, tenant.ID(r.Context()), []storage.Material{material}); err != nil {
			log.Error("failed to create material", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusCreated)
	}
}
