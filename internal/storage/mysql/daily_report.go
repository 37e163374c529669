package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"nippo-invoice/internal/storage"
)

func (s *Storage) GetCustomer(ctx context.Context, tenantID, customerID int64) (*storage.Customer, error) {
	const op = "storage.mysql.GetCustomer"

	stmt := `SELECT id, tenant_id, name FROM customers WHERE tenant_id = ? AND id = ? AND deleted_at IS NULL`

	var c storage.Customer
	err := s.db.QueryRowContext(ctx, stmt, tenantID, customerID).Scan(&c.ID, &c.TenantID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: customer id=%d: %w", op, customerID, storage.ErrCustomerNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &c, nil
}

// GetDailyReports returns the customer's reports with work_date in [from, to],
// ordered by date, with product and material usages resolved. Usages whose
// product or material is gone come back with a nil pointer.
func (s *Storage) GetDailyReports(ctx context.Context, tenantID, customerID int64, from, to time.Time) ([]storage.DailyReport, error) {
	const op = "storage.mysql.GetDailyReports"

	stmt := `
		SELECT id, tenant_id, customer_id, site_name, work_date, COALESCE(summary, '')
		FROM daily_reports
		WHERE tenant_id = ? AND customer_id = ? AND deleted_at IS NULL
		  AND work_date >= ? AND work_date <= ?
		ORDER BY work_date ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, stmt, tenantID, customerID, from.Format(time.DateOnly), to.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("%s: query reports: %w", op, err)
	}
	defer rows.Close()

	var reports []storage.DailyReport
	for rows.Next() {
		var r storage.DailyReport
		if err := rows.Scan(&r.ID, &r.TenantID, &r.CustomerID, &r.SiteName, &r.WorkDate, &r.Summary); err != nil {
			return nil, fmt.Errorf("%s: scan report: %w", op, err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(reports) == 0 {
		return reports, nil
	}

	index := make(map[int64]int, len(reports))
	ids := make([]int64, len(reports))
	for i, r := range reports {
		index[r.ID] = i
		ids[i] = r.ID
	}

	if err := s.attachProductUsages(ctx, reports, index, ids); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.attachMaterialUsages(ctx, reports, index, ids); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return reports, nil
}

func (s *Storage) attachProductUsages(ctx context.Context, reports []storage.DailyReport, index map[int64]int, ids []int64) error {
	stmt := `
		SELECT u.id, u.report_id, u.quantity, p.id, p.name, p.model_number, p.unit, p.unit_price
		FROM daily_report_products u
		LEFT JOIN products p ON p.id = u.product_id AND p.deleted_at IS NULL
		WHERE u.report_id IN (` + placeholders(len(ids)) + `)
		ORDER BY u.report_id, u.id
	`

	rows, err := s.db.QueryContext(ctx, stmt, toInterfaceSlice(ids)...)
	if err != nil {
		return fmt.Errorf("product usages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			u         storage.ProductUsage
			reportID  int64
			productID sql.NullInt64
			name      sql.NullString
			model     sql.NullString
			unit      sql.NullString
			price     decimal.NullDecimal
		)

		if err := rows.Scan(&u.ID, &reportID, &u.Quantity, &productID, &name, &model, &unit, &price); err != nil {
			return fmt.Errorf("scan product usage: %w", err)
		}

		if productID.Valid {
			u.Product = &storage.Product{
				ID:          productID.Int64,
				Name:        name.String,
				ModelNumber: nullString(model),
				Unit:        unit.String,
				UnitPrice:   price.Decimal,
				IsActive:    true,
			}
		}

		i := index[reportID]
		reports[i].Products = append(reports[i].Products, u)
	}

	return rows.Err()
}

func (s *Storage) attachMaterialUsages(ctx context.Context, reports []storage.DailyReport, index map[int64]int, ids []int64) error {
	stmt := `
		SELECT u.id, u.report_id, u.quantity, m.id, m.name, m.model_number, m.unit, m.unit_price
		FROM daily_report_materials u
		LEFT JOIN materials m ON m.id = u.material_id AND m.deleted_at IS NULL
		WHERE u.report_id IN (` + placeholders(len(ids)) + `)
		ORDER BY u.report_id, u.id
	`

	rows, err := s.db.QueryContext(ctx, stmt, toInterfaceSlice(ids)...)
	if err != nil {
		return fmt.Errorf("material usages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			u          storage.MaterialUsage
			reportID   int64
			materialID sql.NullInt64
			name       sql.NullString
			model      sql.NullString
			unit       sql.NullString
			price      decimal.NullDecimal
		)

		if err := rows.Scan(&u.ID, &reportID, &u.Quantity, &materialID, &name, &model, &unit, &price); err != nil {
			return fmt.Errorf("scan material usage: %w", err)
		}

		if materialID.Valid {
			u.Material = &storage.Material{
				ID:          materialID.Int64,
				Name:        name.String,
				ModelNumber: nullString(model),
				Unit:        unit.String,
				UnitPrice:   price.Decimal,
				IsActive:    true,
			}
		}

		i := index[reportID]
		reports[i].Materials = append(reports[i].Materials, u)
	}

	return rows.Err()
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
