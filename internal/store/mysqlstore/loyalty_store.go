package mysqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"barista/internal/domain"
	apperrors "barista/internal/errors"
)

func (t *mysqlTx) GetLoyaltyAccount(ctx context.Context, customerID uint) (*domain.LoyaltyAccount, error) {
	query := `
		SELECT id, customerId, balance, totalEarned, totalRedeemed, createdAt, updatedAt
		FROM LoyaltyAccounts
		WHERE customerId = ?
		FOR UPDATE
	`

	var account domain.LoyaltyAccount
	err := t.tx.QueryRowContext(ctx, query, customerID).Scan(
		&account.ID, &account.CustomerID, &account.Balance,
		&account.TotalEarned, &account.TotalRedeemed,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("loyalty account for customer %d not found", customerID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying loyalty account: %w", err)
	}
	return &account, nil
}

func (t *mysqlTx) SaveLoyaltyAccount(ctx context.Context, account *domain.LoyaltyAccount) error {
	if account.ID == 0 {
		query := `
			INSERT INTO LoyaltyAccounts (customerId, balance, totalEarned, totalRedeemed, createdAt, updatedAt)
			VALUES (?, ?, ?, ?, NOW(), NOW())
		`
		result, err := t.tx.ExecContext(ctx, query,
			account.CustomerID, account.Balance, account.TotalEarned, account.TotalRedeemed,
		)
		if err != nil {
			return fmt.Errorf("inserting loyalty account: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting loyalty account id: %w", err)
		}
		account.ID = uint(id)
		return nil
	}

	query := `
		UPDATE LoyaltyAccounts
		SET balance = ?, totalEarned = ?, totalRedeemed = ?, updatedAt = NOW()
		WHERE id = ?
	`
	result, err := t.tx.ExecContext(ctx, query,
		account.Balance, account.TotalEarned, account.TotalRedeemed, account.ID,
	)
	if err != nil {
		return fmt.Errorf("updating loyalty account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("loyalty account with id %d not found", account.ID))
	}
	return nil
}

func (t *mysqlTx) InsertLoyaltyTransaction(ctx context.Context, txn *domain.LoyaltyTransaction) error {
	query := `
		INSERT INTO LoyaltyTransactions (customerId, type, delta, orderId, description, createdAt)
		VALUES (?, ?, ?, ?, ?, NOW())
	`
	result, err := t.tx.ExecContext(ctx, query,
		txn.CustomerID, txn.Type, txn.Delta, txn.OrderID, txn.Description,
	)
	if err != nil {
		return fmt.Errorf("inserting loyalty transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting loyalty transaction id: %w", err)
	}
	txn.ID = uint(id)
	return nil
}

func (t *mysqlTx) ListLoyaltyTransactions(ctx context.Context, customerID uint) ([]domain.LoyaltyTransaction, error) {
	query := `
		SELECT id, customerId, type, delta, orderId, description, createdAt
		FROM LoyaltyTransactions
		WHERE customerId = ?
		ORDER BY id
	`
	rows, err := t.tx.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("querying loyalty transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.LoyaltyTransaction
	for rows.Next() {
		var txn domain.LoyaltyTransaction
		if err := rows.Scan(&txn.ID, &txn.CustomerID, &txn.Type, &txn.Delta, &txn.OrderID, &txn.Description, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning loyalty transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}
