// Package service derives what the floor looks like: per-table occupancy
// with the order a viewer should see, and the explicit release action that
// resets a table after service.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"barista/internal/bus"
	"barista/internal/domain"
	"barista/internal/store"
)

type TableService struct {
	store  store.Store
	pub    bus.Publisher
	logger *zap.Logger
}

func NewTableService(st store.Store, pub bus.Publisher, logger *zap.Logger) *TableService {
	return &TableService{
		store:  st,
		pub:    pub,
		logger: logger,
	}
}

type TableWithOrder struct {
	Table       domain.Table
	ActiveOrder *domain.Order
}

// ListTablesWithStatus returns the authoritative occupancy per table. Only
// occupied tables carry an order snapshot; an idle table shows none even if
// a stale order still references it, idle is terminal truth for display.
func (s *TableService) ListTablesWithStatus(ctx context.Context) ([]TableWithOrder, error) {
	var out []TableWithOrder
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		tables, err := tx.ListTables(ctx)
		if err != nil {
			return err
		}

		out = make([]TableWithOrder, 0, len(tables))
		for _, table := range tables {
			entry := TableWithOrder{Table: table}
			if table.Status == domain.TableStatusOccupied {
				orders, err := tx.ListOrdersByTable(ctx, table.ID,
					domain.OrderStatusPending, domain.OrderStatusApproved, domain.OrderStatusServed)
				if err != nil {
					return err
				}
				entry.ActiveOrder = pickActiveOrder(orders)
			}
			out = append(out, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// pickActiveOrder prefers a still-actionable order over a served one:
// pending beats approved beats served, newest first within a status.
func pickActiveOrder(orders []domain.Order) *domain.Order {
	rank := func(status string) int {
		switch status {
		case domain.OrderStatusPending:
			return 0
		case domain.OrderStatusApproved:
			return 1
		default:
			return 2
		}
	}

	var best *domain.Order
	for i := range orders {
		o := &orders[i]
		if best == nil {
			best = o
			continue
		}
		if rank(o.Status) < rank(best.Status) ||
			(rank(o.Status) == rank(best.Status) && o.ID > best.ID) {
			best = o
		}
	}
	if best == nil {
		return nil
	}
	cp := *best
	return &cp
}

// Release is the explicit cashier action that resets a table: it goes idle
// and any order still holding it is force-transitioned to served.
func (s *TableService) Release(ctx context.Context, tableID uint, actor string) (*domain.Table, error) {
	var table *domain.Table
	var forced []domain.Order
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		table, err = tx.GetTable(ctx, tableID)
		if err != nil {
			return err
		}

		orders, err := tx.ListOrdersByTable(ctx, tableID,
			domain.OrderStatusPending, domain.OrderStatusApproved)
		if err != nil {
			return err
		}

		now := time.Now()
		for i := range orders {
			order := &orders[i]
			order.Status = domain.OrderStatusServed
			order.ServedAt = &now
			order.AppendTimeline("Order Served", actor, "table released", now)
			if err := tx.UpdateOrder(ctx, order); err != nil {
				return err
			}
			forced = append(forced, *order)
		}

		if err := tx.UpdateTableStatus(ctx, tableID, domain.TableStatusIdle); err != nil {
			return err
		}
		table.Status = domain.TableStatusIdle
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("table released",
		zap.Uint("tableId", tableID), zap.Int("forcedOrders", len(forced)), zap.String("actor", actor))
	for i := range forced {
		s.pub.Publish(bus.ChannelCashier, bus.Event{Type: bus.EventOrderUpdate, Payload: &forced[i]})
	}
	return table, nil
}
