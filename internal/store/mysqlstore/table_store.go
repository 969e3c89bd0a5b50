package mysqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"barista/internal/domain"
	apperrors "barista/internal/errors"
)

func (t *mysqlTx) InsertTable(ctx context.Context, table *domain.Table) error {
	if table.Status == "" {
		table.Status = domain.TableStatusIdle
	}

	query := `
		INSERT INTO CafeTables (number, status, createdAt, updatedAt)
		VALUES (?, ?, NOW(), NOW())
	`
	result, err := t.tx.ExecContext(ctx, query, table.Number, table.Status)
	if err != nil {
		return fmt.Errorf("inserting table: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting table id: %w", err)
	}
	table.ID = uint(id)
	return nil
}

func (t *mysqlTx) GetTable(ctx context.Context, id uint) (*domain.Table, error) {
	query := `
		SELECT id, number, status, createdAt, updatedAt
		FROM CafeTables
		WHERE id = ?
		FOR UPDATE
	`

	var table domain.Table
	err := t.tx.QueryRowContext(ctx, query, id).Scan(
		&table.ID, &table.Number, &table.Status, &table.CreatedAt, &table.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("table with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying table by id: %w", err)
	}
	return &table, nil
}

func (t *mysqlTx) ListTables(ctx context.Context) ([]domain.Table, error) {
	query := `
		SELECT id, number, status, createdAt, updatedAt
		FROM CafeTables
		ORDER BY number
	`
	rows, err := t.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying tables: %w", err)
	}
	defer rows.Close()

	var tables []domain.Table
	for rows.Next() {
		var table domain.Table
		if err := rows.Scan(&table.ID, &table.Number, &table.Status, &table.CreatedAt, &table.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning table: %w", err)
		}
		tables = append(tables, table)
	}
	return tables, rows.Err()
}

func (t *mysqlTx) UpdateTableStatus(ctx context.Context, id uint, status string) error {
	query := `UPDATE CafeTables SET status = ?, updatedAt = NOW() WHERE id = ?`

	result, err := t.tx.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating table status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("table with id %d not found", id))
	}
	return nil
}
