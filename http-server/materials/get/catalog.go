package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"
	"nippo-invoice/internal/middleware/tenant"
	"nippo-invoice/internal/storage"
)

type CatalogProvider interface {
	GetProductsAdmin(ctx context.Context, tenantID int64) ([]storage.Product, error)
	GetMaterialsAdmin(ctx context.Context, tenantID int64) ([]storage.Material, error)
}

type Catalog struct {
	Products  []storage.Product  `json:"products"`
	Materials []storage.Material `json:"materials"`
}

// GetCatalog lists the active products and materials a user can pick when
// adding invoice items by hand.
func GetCatalog(log *slog.Logger, provider CatalogProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.materials.GetCatalog"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		tenantID := tenant.ID(r.Context())

		var (
			products  []storage.Product
			materials []storage.Material
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			products, err = provider.GetProductsAdmin(gctx, tenantID)
			return err
		})
		g.Go(func() error {
			var err error
			materials, err = provider.GetMaterialsAdmin(gctx, tenantID)
			return err
		})

		if err := g.Wait(); err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to fetch catalog")
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		catalog := Catalog{
			Products:  []storage.Product{},
			Materials: []storage.Material{},
		}
		for _, p := range products {
			if p.IsActive {
				catalog.Products = append(catalog.Products, p)
			}
		}
		for _, m := range materials {
			if m.IsActive {
				catalog.Materials = append(catalog.Materials, m)
			}
		}

		render.JSON(w, r, catalog)
	}
}
