package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nippo-invoice/internal/storage"
)

// IssueInvoice locks the invoice row, looks up the highest number already
// used under prefix and hands both to issue. The invoice is written back only
// when issue succeeds. Two transactions racing for the same number end with
// storage.ErrInvoiceNumberTaken from the unique key on (tenant_id, invoice_number).
func (s *Storage) IssueInvoice(ctx context.Context, tenantID, id int64, prefix string, issue func(inv *storage.Invoice, highest string) error) error {
	const op = "storage.mysql.IssueInvoice"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	stmtLock := `SELECT ` + invoiceColumns + `
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE i.tenant_id = ? AND i.id = ?
		FOR UPDATE`

	inv, err := scanInvoice(tx.QueryRowContext(ctx, stmtLock, tenantID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: invoice id=%d: %w", op, id, storage.ErrInvoiceNotFound)
		}
		return fmt.Errorf("%s: lock invoice: %w", op, err)
	}

	highest, err := highestNumber(ctx, tx, tenantID, prefix)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := issue(inv, highest); err != nil {
		return err
	}

	stmtUpdate := `UPDATE invoices SET status = ?, invoice_number = ?, issued_at = ? WHERE tenant_id = ? AND id = ?`

	_, err = tx.ExecContext(ctx, stmtUpdate, inv.Status, inv.InvoiceNumber, inv.IssuedAt, tenantID, id)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrInvoiceNumberTaken)
		}
		return fmt.Errorf("%s: update invoice id=%d: %w", op, id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}

// highestNumber orders by length first so INV-2026-1000 sorts above
// INV-2026-999. Canceled invoices keep their numbers and are counted.
func highestNumber(ctx context.Context, tx *sql.Tx, tenantID int64, prefix string) (string, error) {
	stmt := `
		SELECT invoice_number FROM invoices
		WHERE tenant_id = ? AND invoice_number LIKE ?
		ORDER BY CHAR_LENGTH(invoice_number) DESC, invoice_number DESC
		LIMIT 1
	`

	var number string
	err := tx.QueryRowContext(ctx, stmt, tenantID, prefix+"%").Scan(&number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("highest invoice number: %w", err)
	}

	return number, nil
}
