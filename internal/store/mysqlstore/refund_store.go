package mysqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"barista/internal/domain"
	apperrors "barista/internal/errors"
)

func (t *mysqlTx) InsertRefund(ctx context.Context, refund *domain.Refund) error {
	query := `
		INSERT INTO Refunds (orderId, amount, reason, status, requestedBy, requestedAt)
		VALUES (?, ?, ?, ?, ?, NOW())
	`
	result, err := t.tx.ExecContext(ctx, query,
		refund.OrderID, refund.Amount, refund.Reason, refund.Status, refund.RequestedBy,
	)
	if err != nil {
		return fmt.Errorf("inserting refund: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting refund id: %w", err)
	}
	refund.ID = uint(id)
	return nil
}

func (t *mysqlTx) GetRefund(ctx context.Context, id uint) (*domain.Refund, error) {
	query := `
		SELECT id, orderId, amount, reason, status, requestedBy, decidedBy,
		       requestedAt, decidedAt, completedAt
		FROM Refunds
		WHERE id = ?
		FOR UPDATE
	`

	var refund domain.Refund
	var decidedBy sql.NullString
	var decidedAt, completedAt sql.NullTime
	err := t.tx.QueryRowContext(ctx, query, id).Scan(
		&refund.ID, &refund.OrderID, &refund.Amount, &refund.Reason, &refund.Status,
		&refund.RequestedBy, &decidedBy, &refund.RequestedAt, &decidedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("refund with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying refund: %w", err)
	}

	refund.DecidedBy = decidedBy.String
	if decidedAt.Valid {
		at := decidedAt.Time
		refund.DecidedAt = &at
	}
	if completedAt.Valid {
		at := completedAt.Time
		refund.CompletedAt = &at
	}
	return &refund, nil
}

func (t *mysqlTx) UpdateRefund(ctx context.Context, refund *domain.Refund) error {
	query := `
		UPDATE Refunds
		SET status = ?, reason = ?, decidedBy = ?, decidedAt = ?, completedAt = ?
		WHERE id = ?
	`

	result, err := t.tx.ExecContext(ctx, query,
		refund.Status, refund.Reason, refund.DecidedBy, refund.DecidedAt, refund.CompletedAt, refund.ID,
	)
	if err != nil {
		return fmt.Errorf("updating refund: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("refund with id %d not found", refund.ID))
	}
	return nil
}
