package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"nippo-invoice/internal/storage"
)

func (s *Storage) GetProductsAdmin(ctx context.Context, tenantID int64) ([]storage.Product, error) {
	const op = "storage.mysql.GetProductsAdmin"

	stmt := `SELECT id, name, model_number, unit, unit_price, is_active FROM products
            WHERE tenant_id = ? AND deleted_at IS NULL ORDER BY name`

	rows, err := s.db.QueryContext(ctx, stmt, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	products := []storage.Product{}
	for rows.Next() {
		var (
			p     storage.Product
			model sql.NullString
		)

		if err := rows.Scan(&p.ID, &p.Name, &model, &p.Unit, &p.UnitPrice, &p.IsActive); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		p.ModelNumber = nullString(model)

		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return products, nil
}

// UpsertProductsAdmin updates rows with an id and inserts the rest.
func (s *Storage) UpsertProductsAdmin(ctx context.Context, tenantID int64, products []storage.Product) error {
	const op = "storage.mysql.UpsertProductsAdmin"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	update, err := tx.PrepareContext(ctx, `
		UPDATE products SET name = ?, model_number = ?, unit = ?, unit_price = ?, is_active = ?
		WHERE tenant_id = ? AND id = ?
	`)
	if err != nil {
		return fmt.Errorf("%s: prepare update: %w", op, err)
	}
	defer update.Close()

	insert, err := tx.PrepareContext(ctx, `
		INSERT INTO products (tenant_id, name, model_number, unit, unit_price, is_active) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%s: prepare insert: %w", op, err)
	}
	defer insert.Close()

	for _, p := range products {
		if p.ID != 0 {
			_, err = update.ExecContext(ctx, p.Name, p.ModelNumber, p.Unit, p.UnitPrice, p.IsActive, tenantID, p.ID)
		} else {
			_, err = insert.ExecContext(ctx, tenantID, p.Name, p.ModelNumber, p.Unit, p.UnitPrice, p.IsActive)
		}
		if err != nil {
			return fmt.Errorf("%s: product %q: %w", op, p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}

func (s *Storage) GetMaterialsAdmin(ctx context.Context, tenantID int64) ([]storage.Material, error) {
	const op = "storage.mysql.GetMaterialsAdmin"

	stmt := `SELECT id, name, model_number, unit, unit_price, is_active FROM materials
            WHERE tenant_id = ? AND deleted_at IS NULL ORDER BY name`

	rows, err := s.db.QueryContext(ctx, stmt, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	materials := []storage.Material{}
	for rows.Next() {
		var (
			m     storage.Material
			model sql.NullString
		)

		if err := rows.Scan(&m.ID, &m.Name, &model, &m.Unit, &m.UnitPrice, &m.IsActive); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		m.ModelNumber = nullString(model)

		materials = append(materials, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return materials, nil
}

func (s *Storage) UpsertMaterialsAdmin(ctx context.Context, tenantID int64, materials []storage.Material) error {
	const op = "storage.mysql.UpsertMaterialsAdmin"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	update, err := tx.PrepareContext(ctx, `
		UPDATE materials SET name = ?, model_number = ?, unit = ?, unit_price = ?, is_active = ?
		WHERE tenant_id = ? AND id = ?
	`)
	if err != nil {
		return fmt.Errorf("%s: prepare update: %w", op, err)
	}
	defer update.Close()

	insert, err := tx.PrepareContext(ctx, `
		INSERT INTO materials (tenant_id, name, model_number, unit, unit_price, is_active) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%s: prepare insert: %w", op, err)
	}
	defer insert.Close()

	for _, m := range materials {
		if m.ID != 0 {
			_, err = update.ExecContext(ctx, m.Name, m.ModelNumber, m.Unit, m.UnitPrice, m.IsActive, tenantID, m.ID)
		} else {
			_, err = insert.ExecContext(ctx, tenantID, m.Name, m.ModelNumber, m.Unit, m.UnitPrice, m.IsActive)
		}
		if err != nil {
			return fmt.Errorf("%s: material %q: %w", op, m.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}
