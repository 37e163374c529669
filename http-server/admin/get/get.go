package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"nippo-invoice/internal/middleware/tenant"
	"nippo-invoice/internal/storage"
)

type PriceListProvider interface {
	GetProductsAdmin(ctx context.Context, tenantID int64) ([]storage.Product, error)
	GetMaterialsAdmin(ctx context.Context, tenantID int64) ([]storage.Material, error)
}

func GetProductsAdmin(log *slog.Logger, provider PriceListProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.GetProductsAdmin"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		products, err := provider.GetProductsAdmin(ctx, tenant.ID(r.Context()))
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to fetch products")
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, products)
	}
}

func GetMaterialsAdmin(log *slog.Logger, provider PriceListProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.GetMaterialsAdmin"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		materials, err := provider.GetMaterialsAdmin(ctx, tenant.ID(r.Context()))
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to fetch materials")
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, materials)
	}
}
