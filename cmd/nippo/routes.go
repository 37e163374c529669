package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	getadmin "nippo-invoice/http-server/admin/get"
	saveadmin "nippo-invoice/http-server/admin/save"
	upadmin "nippo-invoice/http-server/admin/update"
	"nippo-invoice/http-server/daily-report/summary"
	generate_excel "nippo-invoice/http-server/generate-report/generate-excel"
	getinvoice "nippo-invoice/http-server/invoice/get"
	saveinvoice "nippo-invoice/http-server/invoice/save"
	upinvoice "nippo-invoice/http-server/invoice/update"
	getcatalog "nippo-invoice/http-server/materials/get"
	recalculate_invoice "nippo-invoice/http-server/recalculate-invoice"
	"nippo-invoice/internal/config"
	"nippo-invoice/internal/middleware/auth"
	"nippo-invoice/internal/middleware/tenant"
	excelservice "nippo-invoice/internal/service/generate-excel"
	"nippo-invoice/internal/service/invoicing"
	"nippo-invoice/internal/storage/mysql"
)

func routes(cfg config.Config, log *slog.Logger, storage *mysql.Storage, invoices *invoicing.InvoiceService, genService *excelservice.GenerateExcelService) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", tenant.Header},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Route("/api", func(api chi.Router) {
		api.Use(tenant.Middleware)

		api.Get("/invoices", getinvoice.ListInvoices(log, invoices))
		api.Post("/invoices", saveinvoice.CreateInvoice(log, invoices))
		api.Post("/invoices/calculate", recalculate_invoice.CalculateInvoice(log, invoices))
		api.Get("/invoices/{id}", getinvoice.GetInvoice(log, invoices))
		api.Put("/invoices/{id}/items", upinvoice.UpdateInvoiceItems(log, invoices))
		api.Post("/invoices/{id}/regenerate", upinvoice.RegenerateInvoice(log, invoices))
		api.Post("/invoices/{id}/issue", upinvoice.IssueInvoice(log, invoices))
		api.Post("/invoices/{id}/cancel", upinvoice.CancelInvoice(log, invoices))
		api.Get("/invoices/{id}/excel", generate_excel.GenerateInvoiceExcel(log, genService))

		api.Get("/catalog", getcatalog.GetCatalog(log, storage))

		api.Get("/reports/summary", summary.GetMonthlySummary(log, storage))
		api.Get("/reports/summary/excel", generate_excel.GenerateSummaryExcel(log, genService))

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))

			admin.Get("/products", getadmin.GetProductsAdmin(log, storage))
			admin.Put("/products", upadmin.UpdateProductsAdmin(log, storage))
			admin.Post("/products", saveadmin.SaveProductAdmin(log, storage))
			admin.Get("/materials", getadmin.GetMaterialsAdmin(log, storage))
			admin.Put("/materials", upadmin.UpdateMaterialsAdmin(log, storage))
			admin.Post("/materials", saveadmin.SaveMaterialAdmin(log, storage))
		})
	})

	if cfg.FrontendDir != "" {
		serveFrontend(router, log, cfg.FrontendDir)
	}

	return router
}

// serveFrontend mounts a built SPA: existing files are served as is and
// every other path falls back to index.html.
func serveFrontend(router *chi.Mux, log *slog.Logger, dir string) {
	if _, err := os.Stat(dir); err != nil {
		log.Warn("frontend directory not found, static serving disabled", slog.String("path", dir))
		return
	}

	router.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	})
}
