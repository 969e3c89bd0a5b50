package mysqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"barista/internal/domain"
	apperrors "barista/internal/errors"
)

func (t *mysqlTx) GetWallet(ctx context.Context, customerID uint) (*domain.Wallet, error) {
	query := `
		SELECT id, customerId, balance, createdAt, updatedAt
		FROM Wallets
		WHERE customerId = ?
		FOR UPDATE
	`

	var wallet domain.Wallet
	err := t.tx.QueryRowContext(ctx, query, customerID).Scan(
		&wallet.ID, &wallet.CustomerID, &wallet.Balance, &wallet.CreatedAt, &wallet.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("wallet for customer %d not found", customerID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying wallet: %w", err)
	}
	return &wallet, nil
}

func (t *mysqlTx) SaveWallet(ctx context.Context, wallet *domain.Wallet) error {
	if wallet.ID == 0 {
		query := `
			INSERT INTO Wallets (customerId, balance, createdAt, updatedAt)
			VALUES (?, ?, NOW(), NOW())
		`
		result, err := t.tx.ExecContext(ctx, query, wallet.CustomerID, wallet.Balance)
		if err != nil {
			return fmt.Errorf("inserting wallet: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting wallet id: %w", err)
		}
		wallet.ID = uint(id)
		return nil
	}

	query := `UPDATE Wallets SET balance = ?, updatedAt = NOW() WHERE id = ?`
	result, err := t.tx.ExecContext(ctx, query, wallet.Balance, wallet.ID)
	if err != nil {
		return fmt.Errorf("updating wallet: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("wallet with id %d not found", wallet.ID))
	}
	return nil
}

func (t *mysqlTx) InsertWalletTransaction(ctx context.Context, txn *domain.WalletTransaction) error {
	query := `
		INSERT INTO WalletTransactions (customerId, type, status, amount,
		                                balanceBefore, balanceAfter, orderId, description, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW())
	`
	result, err := t.tx.ExecContext(ctx, query,
		txn.CustomerID, txn.Type, txn.Status, txn.Amount,
		txn.BalanceBefore, txn.BalanceAfter, txn.OrderID, txn.Description,
	)
	if err != nil {
		return fmt.Errorf("inserting wallet transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting wallet transaction id: %w", err)
	}
	txn.ID = uint(id)
	return nil
}

func (t *mysqlTx) GetWalletTransaction(ctx context.Context, id uint) (*domain.WalletTransaction, error) {
	query := `
		SELECT id, customerId, type, status, amount, balanceBefore, balanceAfter,
		       orderId, description, createdAt
		FROM WalletTransactions
		WHERE id = ?
		FOR UPDATE
	`

	var txn domain.WalletTransaction
	err := t.tx.QueryRowContext(ctx, query, id).Scan(
		&txn.ID, &txn.CustomerID, &txn.Type, &txn.Status, &txn.Amount,
		&txn.BalanceBefore, &txn.BalanceAfter, &txn.OrderID, &txn.Description, &txn.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("wallet transaction with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying wallet transaction: %w", err)
	}
	return &txn, nil
}

func (t *mysqlTx) UpdateWalletTransactionStatus(ctx context.Context, id uint, status string) error {
	query := `UPDATE WalletTransactions SET status = ? WHERE id = ?`

	result, err := t.tx.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating wallet transaction status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("wallet transaction with id %d not found", id))
	}
	return nil
}
