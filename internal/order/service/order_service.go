// Package service owns the order state machine: creation and every legal
// transition, the financial side effects each transition triggers, and the
// events it fans out. All multi-record writes happen in one store
// transaction; concurrent transitions on the same order serialize at the
// store, and the loser observes a typed InvalidTransition.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"barista/internal/bus"
	"barista/internal/domain"
	apperrors "barista/internal/errors"
	"barista/internal/store"
)

// FinancialLedger is the slice of the ledger operations the state machine
// composes inside its own transactions.
type FinancialLedger interface {
	EarnPointsTx(ctx context.Context, tx store.Tx, customerID uint, points int, orderID *uint, note string) error
	DebitWalletTx(ctx context.Context, tx store.Tx, customerID uint, amount float64, orderID *uint, note string) error
}

// PrintQueue decouples approval from the kitchen printer; Enqueue must not
// block.
type PrintQueue interface {
	Enqueue(order *domain.Order)
}

type OrderService struct {
	store  store.Store
	ledger FinancialLedger
	queue  PrintQueue
	pub    bus.Publisher
	logger *zap.Logger
}

func NewOrderService(st store.Store, ledger FinancialLedger, queue PrintQueue, pub bus.Publisher, logger *zap.Logger) *OrderService {
	return &OrderService{
		store:  st,
		ledger: ledger,
		queue:  queue,
		pub:    pub,
		logger: logger,
	}
}

type CreateOrderInput struct {
	TableID               uint
	Items                 []domain.OrderItem
	PaymentMethod         string
	PaymentStatusOverride string
	CustomerPhone         string
	CashierOrder          bool
	CreatedBy             string
}

// Create submits a new order in pending state and marks its table occupied.
// A new order always reclaims the table, even if an operator manually reset
// it to idle moments before; that is deliberate policy, the freshest order
// wins the table.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, apperrors.NewValidationError("order must have at least one item", apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	var order *domain.Order
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.GetTable(ctx, in.TableID); err != nil {
			return err
		}

		customerID, err := s.resolveCustomer(ctx, tx, in.CustomerPhone)
		if err != nil {
			return err
		}

		order = &domain.Order{
			TableID:       in.TableID,
			Items:         in.Items,
			Status:        domain.OrderStatusPending,
			PaymentStatus: derivePaymentStatus(in),
			PaymentMethod: in.PaymentMethod,
			CashierOrder:  in.CashierOrder,
			CustomerID:    customerID,
		}
		order.Total = order.ComputeTotal()

		actor := in.CreatedBy
		if actor == "" {
			actor = "customer"
		}
		order.AppendTimeline("Order Created", actor, "", time.Now())

		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		return tx.UpdateTableStatus(ctx, in.TableID, domain.TableStatusOccupied)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("orderNo", order.OrderNo), zap.Uint("tableId", order.TableID),
		zap.Float64("total", order.Total), zap.Bool("cashierOrder", order.CashierOrder))
	s.pub.Publish(bus.ChannelCashier, bus.Event{Type: bus.EventOrderNew, Payload: order})
	return order, nil
}

// derivePaymentStatus: an explicit override wins; otherwise a customer
// order carrying a payment method is considered paid at submission, while
// cashier orders start unpaid and must be billed explicitly.
func derivePaymentStatus(in CreateOrderInput) string {
	if in.PaymentStatusOverride != "" {
		return in.PaymentStatusOverride
	}
	if in.PaymentMethod != "" && !in.CashierOrder {
		return domain.PaymentStatusPaid
	}
	return domain.PaymentStatusUnpaid
}

func (s *OrderService) resolveCustomer(ctx context.Context, tx store.Tx, phone string) (*uint, error) {
	if phone == "" {
		return nil, nil
	}

	customer, err := tx.FindCustomerByPhone(ctx, phone)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); !ok {
			return nil, err
		}
		customer = &domain.Customer{Phone: phone}
		if err := tx.InsertCustomer(ctx, customer); err != nil {
			return nil, err
		}
	}
	return &customer.ID, nil
}

// ConfirmPayment settles the bill without changing the order status. The
// wallet method debits the customer wallet atomically with the order write.
func (s *OrderService) ConfirmPayment(ctx context.Context, orderID uint, method, confirmedBy string) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		order, err = tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.PaymentStatus == domain.PaymentStatusPaid {
			return apperrors.NewAlreadyPaidError(fmt.Sprintf("order %s is already paid", order.OrderNo))
		}
		if order.IsTerminal() {
			return apperrors.NewInvalidTransitionError(
				fmt.Sprintf("cannot confirm payment on %s order %s", order.Status, order.OrderNo))
		}

		if method == domain.PaymentMethodWallet {
			if order.CustomerID == nil {
				return apperrors.NewValidationError("wallet payment requires a customer", apperrors.ValidationDetail{
					Field:   "method",
					Message: "order has no customer to charge",
				})
			}
			id := order.ID
			note := fmt.Sprintf("payment for order %s", order.OrderNo)
			if err := s.ledger.DebitWalletTx(ctx, tx, *order.CustomerID, order.Total, &id, note); err != nil {
				return err
			}
		}

		order.PaymentStatus = domain.PaymentStatusPaid
		order.PaymentMethod = method
		order.AppendTimeline("Payment Confirmed", confirmedBy, method, time.Now())
		return tx.UpdateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment confirmed",
		zap.String("orderNo", order.OrderNo), zap.String("method", method), zap.String("confirmedBy", confirmedBy))
	s.pub.Publish(bus.ChannelCashier, bus.Event{Type: bus.EventOrderUpdate, Payload: order})
	return order, nil
}

// Approve moves a pending order to approved, accrues loyalty points for
// paid customer orders and hands the order to the print queue.
func (s *OrderService) Approve(ctx context.Context, orderID uint, actor string) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		order, err = tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderStatusPending {
			return apperrors.NewInvalidTransitionError(
				fmt.Sprintf("order %s is %s, only pending orders can be approved", order.OrderNo, order.Status))
		}
		if order.CashierOrder && order.PaymentStatus != domain.PaymentStatusPaid {
			return apperrors.NewPaymentRequiredError(
				fmt.Sprintf("cashier order %s must be paid before approval", order.OrderNo))
		}

		order.Status = domain.OrderStatusApproved
		order.AppendTimeline("Order Approved", actor, "", time.Now())

		if order.CustomerID != nil && order.PaymentStatus == domain.PaymentStatusPaid {
			id := order.ID
			note := fmt.Sprintf("points for order %s", order.OrderNo)
			if err := s.ledger.EarnPointsTx(ctx, tx, *order.CustomerID, order.LoyaltyPoints(), &id, note); err != nil {
				return err
			}
		}

		return tx.UpdateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order approved", zap.String("orderNo", order.OrderNo), zap.String("actor", actor))
	s.queue.Enqueue(order)
	s.pub.Publish(bus.ChannelCashier, bus.Event{Type: bus.EventOrderUpdate, Payload: order})
	return order, nil
}

// Reject is allowed from any non-terminal status and gives the table back
// to the floor, unless another live order still holds it.
func (s *OrderService) Reject(ctx context.Context, orderID uint, reason, actor string) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		order, err = tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.IsTerminal() {
			return apperrors.NewInvalidTransitionError(
				fmt.Sprintf("order %s is %s and cannot be rejected", order.OrderNo, order.Status))
		}

		order.Status = domain.OrderStatusRejected
		order.AppendTimeline("Order Rejected", actor, reason, time.Now())
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}

		remaining, err := tx.ListOrdersByTable(ctx, order.TableID,
			domain.OrderStatusPending, domain.OrderStatusApproved)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			return tx.UpdateTableStatus(ctx, order.TableID, domain.TableStatusIdle)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order rejected",
		zap.String("orderNo", order.OrderNo), zap.String("reason", reason), zap.String("actor", actor))
	s.pub.Publish(bus.ChannelCashier, bus.Event{Type: bus.EventOrderUpdate, Payload: order})
	return order, nil
}

// MarkServed completes the kitchen side. The table deliberately stays
// occupied until an explicit release so staff can see "served, awaiting
// table reset".
func (s *OrderService) MarkServed(ctx context.Context, orderID uint, actor string) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		order, err = tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderStatusApproved {
			return apperrors.NewInvalidTransitionError(
				fmt.Sprintf("order %s is %s, only approved orders can be served", order.OrderNo, order.Status))
		}

		now := time.Now()
		order.Status = domain.OrderStatusServed
		order.ServedAt = &now
		order.AppendTimeline("Order Served", actor, "", now)
		return tx.UpdateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order served", zap.String("orderNo", order.OrderNo), zap.String("actor", actor))
	s.pub.Publish(bus.ChannelCashier, bus.Event{Type: bus.EventOrderUpdate, Payload: order})
	return order, nil
}

// Get is the full-state fetch viewers use when (re)connecting.
func (s *OrderService) Get(ctx context.Context, orderID uint) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		order, err = tx.GetOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) ListByStatus(ctx context.Context, status string) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		orders, err = tx.ListOrdersByStatus(ctx, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}
