package generate_excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"nippo-invoice/http-server/invoice"
	"nippo-invoice/internal/middleware/tenant"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type GenerateExcelHandler interface {
	GenerateInvoiceExcel(ctx context.Context, tenantID, invoiceID int64) ([]byte, error)
	GenerateSummaryExcel(ctx context.Context, tenantID int64, year, month int) ([]byte, error)
}

func GenerateInvoiceExcel(log *slog.Logger, gen GenerateExcelHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.report.GenerateInvoiceExcel"

		id, err := invoice.ParseID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		excelBytes, err := gen.GenerateInvoiceExcel(ctx, tenant.ID(r.Context()), id)
		if err != nil {
			status, msg := invoice.Status(err)
			log.Error("failed to generate excel", slog.String("op", op), slog.Int64("id", id), slog.String("error", err.Error()))
			http.Error(w, msg, status)
			return
		}

		writeWorkbook(w, fmt.Sprintf("invoice_%d.xlsx", id), excelBytes)
	}
}

func GenerateSummaryExcel(log *slog.Logger, gen GenerateExcelHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.report.GenerateSummaryExcel"

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

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		excelBytes, err := gen.GenerateSummaryExcel(ctx, tenant.ID(r.Context()), year, month)
		if err != nil {
			log.Error("failed to generate excel", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		writeWorkbook(w, fmt.Sprintf("summary_%d-%02d.xlsx", year, month), excelBytes)
	}
}

func writeWorkbook(w http.ResponseWriter, fileName string, data []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
	w.Write(data)
}
