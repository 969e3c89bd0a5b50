package mysqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"barista/internal/domain"
	apperrors "barista/internal/errors"
)

func (t *mysqlTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO Orders (orderNo, tableId, total, status, paymentStatus,
		                    paymentMethod, cashierOrder, customerId, createdAt, updatedAt)
		VALUES ('', ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`

	result, err := t.tx.ExecContext(ctx, query,
		order.TableID, order.Total, order.Status, order.PaymentStatus,
		order.PaymentMethod, order.CashierOrder, order.CustomerID,
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting order id: %w", err)
	}
	order.ID = uint(id)
	order.OrderNo = fmt.Sprintf("ORD-%04d", order.ID)

	if _, err := t.tx.ExecContext(ctx, `UPDATE Orders SET orderNo = ? WHERE id = ?`, order.OrderNo, order.ID); err != nil {
		return fmt.Errorf("setting order number: %w", err)
	}

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		itemID, err := t.insertOrderItem(ctx, &order.Items[i])
		if err != nil {
			return err
		}
		order.Items[i].ID = itemID
	}

	return t.appendTimeline(ctx, order.ID, order.Timeline, 0)
}

func (t *mysqlTx) insertOrderItem(ctx context.Context, item *domain.OrderItem) (uint, error) {
	modifiers, err := json.Marshal(item.Modifiers)
	if err != nil {
		return 0, fmt.Errorf("encoding item modifiers: %w", err)
	}

	query := `
		INSERT INTO OrderItems (orderId, name, quantity, price, modifiers)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := t.tx.ExecContext(ctx, query, item.OrderID, item.Name, item.Quantity, item.Price, modifiers)
	if err != nil {
		return 0, fmt.Errorf("inserting order item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting order item id: %w", err)
	}
	return uint(id), nil
}

// GetOrder locks the order row for the remainder of the transaction so a
// concurrent transition on the same order waits and then sees the new state.
func (t *mysqlTx) GetOrder(ctx context.Context, id uint) (*domain.Order, error) {
	query := `
		SELECT id, orderNo, tableId, total, status, paymentStatus, paymentMethod,
		       cashierOrder, customerId, servedAt, createdAt, updatedAt
		FROM Orders
		WHERE id = ?
		FOR UPDATE
	`

	order, err := t.scanOrder(t.tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	if err := t.loadOrderItems(ctx, order); err != nil {
		return nil, err
	}
	if err := t.loadTimeline(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (t *mysqlTx) scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var paymentMethod sql.NullString
	var servedAt sql.NullTime
	err := row.Scan(
		&order.ID, &order.OrderNo, &order.TableID, &order.Total, &order.Status,
		&order.PaymentStatus, &paymentMethod, &order.CashierOrder, &order.CustomerID,
		&servedAt, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.PaymentMethod = paymentMethod.String
	if servedAt.Valid {
		at := servedAt.Time
		order.ServedAt = &at
	}
	return &order, nil
}

func (t *mysqlTx) loadOrderItems(ctx context.Context, order *domain.Order) error {
	query := `
		SELECT id, orderId, name, quantity, price, modifiers
		FROM OrderItems
		WHERE orderId = ?
		ORDER BY id
	`
	rows, err := t.tx.QueryContext(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		var modifiers []byte
		if err := rows.Scan(&item.ID, &item.OrderID, &item.Name, &item.Quantity, &item.Price, &modifiers); err != nil {
			return fmt.Errorf("scanning order item: %w", err)
		}
		if len(modifiers) > 0 {
			if err := json.Unmarshal(modifiers, &item.Modifiers); err != nil {
				return fmt.Errorf("decoding item modifiers: %w", err)
			}
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (t *mysqlTx) loadTimeline(ctx context.Context, order *domain.Order) error {
	query := `
		SELECT action, actor, note, createdAt
		FROM OrderTimeline
		WHERE orderId = ?
		ORDER BY id
	`
	rows, err := t.tx.QueryContext(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("querying order timeline: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry domain.TimelineEntry
		if err := rows.Scan(&entry.Action, &entry.Actor, &entry.Note, &entry.Timestamp); err != nil {
			return fmt.Errorf("scanning timeline entry: %w", err)
		}
		order.Timeline = append(order.Timeline, entry)
	}
	return rows.Err()
}

func (t *mysqlTx) UpdateOrder(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE Orders
		SET status = ?, paymentStatus = ?, paymentMethod = ?, total = ?,
		    servedAt = ?, updatedAt = NOW()
		WHERE id = ?
	`

	result, err := t.tx.ExecContext(ctx, query,
		order.Status, order.PaymentStatus, order.PaymentMethod, order.Total,
		order.ServedAt, order.ID,
	)
	if err != nil {
		return fmt.Errorf("updating order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", order.ID))
	}

	var persisted int
	if err := t.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM OrderTimeline WHERE orderId = ?`, order.ID).Scan(&persisted); err != nil {
		return fmt.Errorf("counting timeline entries: %w", err)
	}
	return t.appendTimeline(ctx, order.ID, order.Timeline, persisted)
}

// appendTimeline persists the timeline tail past the already stored rows;
// the timeline is append-only so existing rows are never touched.
func (t *mysqlTx) appendTimeline(ctx context.Context, orderID uint, timeline []domain.TimelineEntry, from int) error {
	query := `
		INSERT INTO OrderTimeline (orderId, action, actor, note, createdAt)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, entry := range timeline[min(from, len(timeline)):] {
		if _, err := t.tx.ExecContext(ctx, query, orderID, entry.Action, entry.Actor, entry.Note, entry.Timestamp); err != nil {
			return fmt.Errorf("inserting timeline entry: %w", err)
		}
	}
	return nil
}

func (t *mysqlTx) ListOrdersByTable(ctx context.Context, tableID uint, statuses ...string) ([]domain.Order, error) {
	query := `
		SELECT id, orderNo, tableId, total, status, paymentStatus, paymentMethod,
		       cashierOrder, customerId, servedAt, createdAt, updatedAt
		FROM Orders
		WHERE tableId = ?
	`
	args := []any{tableID}
	if len(statuses) > 0 {
		query += ` AND status IN (?` + strings.Repeat(",?", len(statuses)-1) + `)`
		for _, s := range statuses {
			args = append(args, s)
		}
	}
	query += ` ORDER BY id`

	return t.listOrders(ctx, query, args...)
}

func (t *mysqlTx) ListOrdersByStatus(ctx context.Context, status string) ([]domain.Order, error) {
	query := `
		SELECT id, orderNo, tableId, total, status, paymentStatus, paymentMethod,
		       cashierOrder, customerId, servedAt, createdAt, updatedAt
		FROM Orders
		WHERE status = ?
		ORDER BY id
	`
	return t.listOrders(ctx, query, status)
}

func (t *mysqlTx) listOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := t.scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := t.loadOrderItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}
