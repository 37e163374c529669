package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nippo-invoice/internal/service/invoicing"
	"nippo-invoice/internal/storage"
)

const invoiceColumns = `
	i.id, i.tenant_id, i.customer_id, c.name, i.title, i.period_from, i.period_to,
	i.display_pattern, i.status, i.invoice_number, i.issued_at,
	i.subtotal, i.tax_rate, i.tax_amount, i.total_amount, COALESCE(i.notes, ''),
	i.created_at, i.updated_at, i.deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*storage.Invoice, error) {
	var (
		inv      storage.Invoice
		number   sql.NullString
		issuedAt sql.NullTime
		deleted  sql.NullTime
	)

	err := row.Scan(&inv.ID, &inv.TenantID, &inv.CustomerID, &inv.CustomerName, &inv.Title, &inv.PeriodFrom, &inv.PeriodTo,
		&inv.DisplayPattern, &inv.Status, &number, &issuedAt,
		&inv.Subtotal, &inv.TaxRate, &inv.TaxAmount, &inv.TotalAmount, &inv.Notes,
		&inv.CreatedAt, &inv.UpdatedAt, &deleted)
	if err != nil {
		return nil, err
	}

	inv.InvoiceNumber = nullString(number)
	if issuedAt.Valid {
		inv.IssuedAt = &issuedAt.Time
	}
	if deleted.Valid {
		inv.DeletedAt = &deleted.Time
	}

	return &inv, nil
}

// SaveInvoice writes the invoice and its items in one transaction.
func (s *Storage) SaveInvoice(ctx context.Context, inv *storage.Invoice) (int64, error) {
	const op = "storage.mysql.SaveInvoice"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	stmt := `INSERT INTO invoices (tenant_id, customer_id, title, period_from, period_to, display_pattern, status,
            subtotal, tax_rate, tax_amount, total_amount, notes) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := tx.ExecContext(ctx, stmt, inv.TenantID, inv.CustomerID, inv.Title,
		inv.PeriodFrom.Format(time.DateOnly), inv.PeriodTo.Format(time.DateOnly), inv.DisplayPattern, inv.Status,
		inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.TotalAmount, inv.Notes)
	if err != nil {
		return 0, fmt.Errorf("%s: insert invoice: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	if err := insertItems(ctx, tx, id, inv.Items); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return id, nil
}

func insertItems(ctx context.Context, tx *sql.Tx, invoiceID int64, items []storage.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO invoice_items
			(invoice_id, item_type, name, quantity, unit, unit_price, amount, sort_order, product_id, material_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare item insert: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		unit := sql.NullString{String: it.Unit, Valid: it.ItemType != storage.ItemHeader}

		_, err := stmt.ExecContext(ctx, invoiceID, it.ItemType, it.Name, it.Quantity, unit, it.UnitPrice, it.Amount,
			it.SortOrder, it.ProductID, it.MaterialID)
		if err != nil {
			return fmt.Errorf("insert item sort_order=%d: %w", it.SortOrder, err)
		}
	}

	return nil
}

// GetInvoice returns the invoice with its items, canceled ones included.
func (s *Storage) GetInvoice(ctx context.Context, tenantID, id int64) (*storage.Invoice, error) {
	const op = "storage.mysql.GetInvoice"

	stmt := `SELECT ` + invoiceColumns + `
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE i.tenant_id = ? AND i.id = ?`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, stmt, tenantID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: invoice id=%d: %w", op, id, storage.ErrInvoiceNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	inv.Items, err = s.getItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return inv, nil
}

func (s *Storage) getItems(ctx context.Context, invoiceID int64) ([]storage.InvoiceItem, error) {
	stmt := `
		SELECT id, invoice_id, item_type, name, quantity, unit, unit_price, amount, sort_order, product_id, material_id
		FROM invoice_items
		WHERE invoice_id = ?
		ORDER BY sort_order ASC
	`

	rows, err := s.db.QueryContext(ctx, stmt, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []storage.InvoiceItem{}
	for rows.Next() {
		var (
			it         storage.InvoiceItem
			unit       sql.NullString
			productID  sql.NullInt64
			materialID sql.NullInt64
		)

		err := rows.Scan(&it.ID, &it.InvoiceID, &it.ItemType, &it.Name, &it.Quantity, &unit, &it.UnitPrice, &it.Amount,
			&it.SortOrder, &productID, &materialID)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}

		it.Unit = unit.String
		if productID.Valid {
			it.ProductID = &productID.Int64
		}
		if materialID.Valid {
			it.MaterialID = &materialID.Int64
		}

		items = append(items, it)
	}

	return items, rows.Err()
}

// ListInvoices returns non-canceled invoices whose period starts in the given
// month. A zero year lists everything.
func (s *Storage) ListInvoices(ctx context.Context, tenantID int64, year, month int) ([]storage.InvoiceListEntry, error) {
	const op = "storage.mysql.ListInvoices"

	stmt := `
		SELECT i.id, i.customer_id, c.name, i.title, i.status, i.invoice_number, i.issued_at,
		       i.total_amount, i.period_from, i.period_to
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE i.tenant_id = ? AND i.deleted_at IS NULL`
	args := []interface{}{tenantID}

	if year != 0 {
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)
		if month == 0 {
			start = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
			end = start.AddDate(1, 0, 0)
		}
		stmt += ` AND i.period_from >= ? AND i.period_from < ?`
		args = append(args, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	stmt += ` ORDER BY i.period_from DESC, i.id DESC`

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	list := []storage.InvoiceListEntry{}
	for rows.Next() {
		var (
			e        storage.InvoiceListEntry
			number   sql.NullString
			issuedAt sql.NullTime
		)

		err := rows.Scan(&e.ID, &e.CustomerID, &e.CustomerName, &e.Title, &e.Status, &number, &issuedAt,
			&e.TotalAmount, &e.PeriodFrom, &e.PeriodTo)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}

		e.InvoiceNumber = nullString(number)
		if issuedAt.Valid {
			e.IssuedAt = &issuedAt.Time
		}

		list = append(list, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

// UpdateInvoiceItems replaces the items of a draft invoice and writes the
// recalculated totals in the same transaction.
func (s *Storage) UpdateInvoiceItems(ctx context.Context, inv *storage.Invoice) error {
	const op = "storage.mysql.UpdateInvoiceItems"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var status storage.InvoiceStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM invoices WHERE tenant_id = ? AND id = ? FOR UPDATE`,
		inv.TenantID, inv.ID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: invoice id=%d: %w", op, inv.ID, storage.ErrInvoiceNotFound)
		}
		return fmt.Errorf("%s: lock invoice: %w", op, err)
	}
	if status != storage.StatusDraft {
		return fmt.Errorf("%s: invoice id=%d status=%s: %w", op, inv.ID, status, storage.ErrInvoiceNotEditable)
	}

	stmtUpdate := `UPDATE invoices SET display_pattern = ?, subtotal = ?, tax_rate = ?, tax_amount = ?, total_amount = ?
            WHERE tenant_id = ? AND id = ?`

	_, err = tx.ExecContext(ctx, stmtUpdate, inv.DisplayPattern, inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.TotalAmount,
		inv.TenantID, inv.ID)
	if err != nil {
		return fmt.Errorf("%s: update totals: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM invoice_items WHERE invoice_id = ?`, inv.ID); err != nil {
		return fmt.Errorf("%s: delete items: %w", op, err)
	}

	if err := insertItems(ctx, tx, inv.ID, inv.Items); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}

func (s *Storage) CancelInvoice(ctx context.Context, inv *storage.Invoice) error {
	const op = "storage.mysql.CancelInvoice"

	stmt := `UPDATE invoices SET status = ?, deleted_at = ? WHERE tenant_id = ? AND id = ? AND status <> ?`

	res, err := s.db.ExecContext(ctx, stmt, inv.Status, inv.DeletedAt, inv.TenantID, inv.ID, storage.StatusCanceled)
	if err != nil {
		return fmt.Errorf("%s: invoice id=%d: %w", op, inv.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n != 1 {
		return fmt.Errorf("%s: invoice id=%d: %w", op, inv.ID, invoicing.ErrAlreadyCanceled)
	}

	return nil
}
