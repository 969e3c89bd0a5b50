// Package service implements the financial ledger operations: loyalty-point
// accrual and redemption, wallet movements with audit snapshots, and the
// refund approval flow. Balance and transaction log are always written in
// the same unit of work so they cannot diverge.
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

type LedgerService struct {
	store  store.Store
	pub    bus.Publisher
	logger *zap.Logger
}

func NewLedgerService(st store.Store, pub bus.Publisher, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		store:  st,
		pub:    pub,
		logger: logger,
	}
}

// EarnPointsTx credits points inside the caller's transaction. Idempotency
// is the caller's responsibility; the order state machine invokes this at
// most once per approval.
func (s *LedgerService) EarnPointsTx(ctx context.Context, tx store.Tx, customerID uint, points int, orderID *uint, note string) error {
	account, err := tx.GetLoyaltyAccount(ctx, customerID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); !ok {
			return err
		}
		account = &domain.LoyaltyAccount{CustomerID: customerID}
	}

	account.Balance += points
	account.TotalEarned += points
	if err := tx.SaveLoyaltyAccount(ctx, account); err != nil {
		return err
	}

	return tx.InsertLoyaltyTransaction(ctx, &domain.LoyaltyTransaction{
		CustomerID:  customerID,
		Type:        domain.LoyaltyTxEarned,
		Delta:       points,
		OrderID:     orderID,
		Description: note,
	})
}

// RedeemPointsTx debits points inside the caller's transaction, failing
// without side effects when the balance is short.
func (s *LedgerService) RedeemPointsTx(ctx context.Context, tx store.Tx, customerID uint, points int, note string) error {
	account, err := tx.GetLoyaltyAccount(ctx, customerID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return apperrors.NewInsufficientPointsError(fmt.Sprintf("customer %d has no points to redeem", customerID))
		}
		return err
	}
	if account.Balance < points {
		return apperrors.NewInsufficientPointsError(
			fmt.Sprintf("balance %d is less than requested %d points", account.Balance, points))
	}

	account.Balance -= points
	account.TotalRedeemed += points
	if err := tx.SaveLoyaltyAccount(ctx, account); err != nil {
		return err
	}

	return tx.InsertLoyaltyTransaction(ctx, &domain.LoyaltyTransaction{
		CustomerID:  customerID,
		Type:        domain.LoyaltyTxRedeemed,
		Delta:       -points,
		Description: note,
	})
}

// DebitWalletTx charges the customer wallet inside the caller's
// transaction. A missing wallet is an empty wallet.
func (s *LedgerService) DebitWalletTx(ctx context.Context, tx store.Tx, customerID uint, amount float64, orderID *uint, note string) error {
	wallet, err := tx.GetWallet(ctx, customerID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return apperrors.NewInsufficientBalanceError(fmt.Sprintf("customer %d has no wallet balance", customerID))
		}
		return err
	}
	if wallet.Balance < amount {
		return apperrors.NewInsufficientBalanceError(
			fmt.Sprintf("wallet balance %.2f is less than %.2f", wallet.Balance, amount))
	}

	before := wallet.Balance
	wallet.Balance -= amount
	if err := tx.SaveWallet(ctx, wallet); err != nil {
		return err
	}

	return tx.InsertWalletTransaction(ctx, &domain.WalletTransaction{
		CustomerID:    customerID,
		Type:          domain.WalletTxPayment,
		Status:        domain.WalletTxStatusApproved,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  wallet.Balance,
		OrderID:       orderID,
		Description:   note,
	})
}

// CreditWalletTx credits the wallet inside the caller's transaction,
// creating it with a zero opening balance if the customer never had one.
func (s *LedgerService) CreditWalletTx(ctx context.Context, tx store.Tx, customerID uint, amount float64, txType, txStatus string, orderID *uint, note string) (*domain.WalletTransaction, error) {
	wallet, err := tx.GetWallet(ctx, customerID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); !ok {
			return nil, err
		}
		wallet = &domain.Wallet{CustomerID: customerID}
	}

	before := wallet.Balance
	wallet.Balance += amount
	if err := tx.SaveWallet(ctx, wallet); err != nil {
		return nil, err
	}

	txn := &domain.WalletTransaction{
		CustomerID:    customerID,
		Type:          txType,
		Status:        txStatus,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  wallet.Balance,
		OrderID:       orderID,
		Description:   note,
	}
	if err := tx.InsertWalletTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *LedgerService) EarnPoints(ctx context.Context, customerID uint, points int, orderID *uint, note string) error {
	return s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return s.EarnPointsTx(ctx, tx, customerID, points, orderID, note)
	})
}

func (s *LedgerService) RedeemPoints(ctx context.Context, customerID uint, points int, note string) error {
	return s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return s.RedeemPointsTx(ctx, tx, customerID, points, note)
	})
}

// TopUpWalletFromPoints converts points to wallet currency at the given
// rate. The wallet transaction lands pending: a manager approval settles
// it, but the balance is applied here, at request time.
func (s *LedgerService) TopUpWalletFromPoints(ctx context.Context, customerID uint, points int, rate float64) (*domain.WalletTransaction, error) {
	var txn *domain.WalletTransaction
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		note := fmt.Sprintf("top-up from %d points", points)
		if err := s.RedeemPointsTx(ctx, tx, customerID, points, note); err != nil {
			return err
		}

		var err error
		txn, err = s.CreditWalletTx(ctx, tx, customerID, float64(points)*rate,
			domain.WalletTxTopup, domain.WalletTxStatusPending, nil, note)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("wallet top-up requested",
		zap.Uint("customerId", customerID), zap.Int("points", points), zap.Uint("walletTxnId", txn.ID))
	return txn, nil
}

// ApproveWalletTopUp is a pure status transition; the balance was applied
// when the top-up was requested.
func (s *LedgerService) ApproveWalletTopUp(ctx context.Context, txnID uint, approvedBy string) error {
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		txn, err := tx.GetWalletTransaction(ctx, txnID)
		if err != nil {
			return err
		}
		if txn.Status != domain.WalletTxStatusPending {
			return apperrors.NewAlreadyProcessedError(fmt.Sprintf("wallet transaction %d is already %s", txnID, txn.Status))
		}
		return tx.UpdateWalletTransactionStatus(ctx, txnID, domain.WalletTxStatusApproved)
	})
	if err != nil {
		return err
	}

	s.logger.Info("wallet top-up approved", zap.Uint("walletTxnId", txnID), zap.String("approvedBy", approvedBy))
	return nil
}

func (s *LedgerService) RequestRefund(ctx context.Context, orderID uint, amount float64, reason, requestedBy string) (*domain.Refund, error) {
	var refund *domain.Refund
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.PaymentStatus != domain.PaymentStatusPaid {
			return apperrors.NewOrderNotPaidError(
				fmt.Sprintf("order %s is %s, refunds require a paid order", order.OrderNo, order.PaymentStatus))
		}

		refund = &domain.Refund{
			OrderID:     orderID,
			Amount:      amount,
			Reason:      reason,
			Status:      domain.RefundStatusPending,
			RequestedBy: requestedBy,
			RequestedAt: time.Now(),
		}
		return tx.InsertRefund(ctx, refund)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("refund requested",
		zap.Uint("orderId", orderID), zap.Float64("amount", amount), zap.String("requestedBy", requestedBy))
	return refund, nil
}

// ApproveRefund marks the order refunded and, for wallet-paid orders,
// credits the amount back to the customer wallet in the same transaction.
func (s *LedgerService) ApproveRefund(ctx context.Context, refundID uint, approvedBy string) (*domain.Refund, error) {
	var refund *domain.Refund
	var order *domain.Order
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		refund, err = tx.GetRefund(ctx, refundID)
		if err != nil {
			return err
		}
		if refund.Status != domain.RefundStatusPending {
			return apperrors.NewAlreadyProcessedError(fmt.Sprintf("refund %d is already %s", refundID, refund.Status))
		}

		order, err = tx.GetOrder(ctx, refund.OrderID)
		if err != nil {
			return err
		}

		order.PaymentStatus = domain.PaymentStatusRefunded
		order.AppendTimeline("Refund Approved", approvedBy, refund.Reason, time.Now())
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}

		if order.PaymentMethod == domain.PaymentMethodWallet && order.CustomerID != nil {
			orderID := order.ID
			note := fmt.Sprintf("refund for order %s", order.OrderNo)
			if _, err := s.CreditWalletTx(ctx, tx, *order.CustomerID, refund.Amount,
				domain.WalletTxRefund, domain.WalletTxStatusApproved, &orderID, note); err != nil {
				return err
			}
		}

		now := time.Now()
		refund.Status = domain.RefundStatusApproved
		refund.DecidedBy = approvedBy
		refund.DecidedAt = &now
		refund.CompletedAt = &now
		return tx.UpdateRefund(ctx, refund)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("refund approved",
		zap.Uint("refundId", refundID), zap.Uint("orderId", refund.OrderID), zap.String("approvedBy", approvedBy))
	s.pub.Publish(bus.ChannelCashier, bus.Event{Type: bus.EventOrderUpdate, Payload: order})
	return refund, nil
}

func (s *LedgerService) RejectRefund(ctx context.Context, refundID uint, reason, decidedBy string) (*domain.Refund, error) {
	if reason == "" {
		return nil, apperrors.NewValidationError("rejection reason is required", apperrors.ValidationDetail{
			Field:   "reason",
			Message: "reason must not be empty",
		})
	}

	var refund *domain.Refund
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		refund, err = tx.GetRefund(ctx, refundID)
		if err != nil {
			return err
		}
		if refund.Status != domain.RefundStatusPending {
			return apperrors.NewAlreadyProcessedError(fmt.Sprintf("refund %d is already %s", refundID, refund.Status))
		}

		now := time.Now()
		refund.Status = domain.RefundStatusRejected
		refund.Reason = reason
		refund.DecidedBy = decidedBy
		refund.DecidedAt = &now
		return tx.UpdateRefund(ctx, refund)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("refund rejected", zap.Uint("refundId", refundID), zap.String("decidedBy", decidedBy))
	return refund, nil
}

// LoyaltySummary returns the account with its full transaction log, for
// viewer full-state fetches.
func (s *LedgerService) LoyaltySummary(ctx context.Context, customerID uint) (*domain.LoyaltyAccount, []domain.LoyaltyTransaction, error) {
	var account *domain.LoyaltyAccount
	var txns []domain.LoyaltyTransaction
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		account, err = tx.GetLoyaltyAccount(ctx, customerID)
		if err != nil {
			return err
		}
		txns, err = tx.ListLoyaltyTransactions(ctx, customerID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return account, txns, nil
}
