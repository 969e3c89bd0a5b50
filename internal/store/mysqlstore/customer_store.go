package mysqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"barista/internal/domain"
	apperrors "barista/internal/errors"
)

func (t *mysqlTx) InsertCustomer(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO Customers (name, phone, createdAt)
		VALUES (?, ?, NOW())
	`
	result, err := t.tx.ExecContext(ctx, query, customer.Name, customer.Phone)
	if err != nil {
		return fmt.Errorf("inserting customer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting customer id: %w", err)
	}
	customer.ID = uint(id)
	return nil
}

func (t *mysqlTx) GetCustomer(ctx context.Context, id uint) (*domain.Customer, error) {
	query := `SELECT id, name, phone, createdAt FROM Customers WHERE id = ?`

	var customer domain.Customer
	err := t.tx.QueryRowContext(ctx, query, id).Scan(
		&customer.ID, &customer.Name, &customer.Phone, &customer.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("customer with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying customer by id: %w", err)
	}
	return &customer, nil
}

func (t *mysqlTx) FindCustomerByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	query := `SELECT id, name, phone, createdAt FROM Customers WHERE phone = ?`

	var customer domain.Customer
	err := t.tx.QueryRowContext(ctx, query, phone).Scan(
		&customer.ID, &customer.Name, &customer.Phone, &customer.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("customer with phone %s not found", phone))
	}
	if err != nil {
		return nil, fmt.Errorf("querying customer by phone: %w", err)
	}
	return &customer, nil
}
