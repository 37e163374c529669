package mysql

import (
	"context"
	"fmt"
	"time"

	"nippo-invoice/internal/storage"
)

// GetMonthlySummary totals one month of daily reports per customer, valuing
// usages at the current unit prices.
func (s *Storage) GetMonthlySummary(ctx context.Context, tenantID int64, year, month int) ([]storage.MonthlySummary, error) {
	const op = "storage.mysql.GetMonthlySummary"

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	stmt := `
		SELECT c.id, c.name, COUNT(r.id),
		       COALESCE(SUM(pu.amount), 0), COALESCE(SUM(mu.amount), 0)
		FROM daily_reports r
		JOIN customers c ON c.id = r.customer_id
		LEFT JOIN (
			SELECT u.report_id, SUM(u.quantity * p.unit_price) AS amount
			FROM daily_report_products u
			JOIN products p ON p.id = u.product_id AND p.deleted_at IS NULL
			GROUP BY u.report_id
		) pu ON pu.report_id = r.id
		LEFT JOIN (
			SELECT u.report_id, SUM(u.quantity * m.unit_price) AS amount
			FROM daily_report_materials u
			JOIN materials m ON m.id = u.material_id AND m.deleted_at IS NULL
			GROUP BY u.report_id
		) mu ON mu.report_id = r.id
		WHERE r.tenant_id = ? AND r.deleted_at IS NULL
		  AND r.work_date >= ? AND r.work_date < ?
		GROUP BY c.id, c.name
		ORDER BY c.name ASC
	`

	rows, err := s.db.QueryContext(ctx, stmt, tenantID, start.Format(time.DateOnly), end.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	summaries := []storage.MonthlySummary{}
	for rows.Next() {
		var sm storage.MonthlySummary

		err := rows.Scan(&sm.CustomerID, &sm.CustomerName, &sm.ReportCount, &sm.ProductAmount, &sm.MaterialAmount)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}

		sm.TotalAmount = sm.ProductAmount.Add(sm.MaterialAmount)
		summaries = append(summaries, sm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return summaries, nil
}
