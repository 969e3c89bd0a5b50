// Package store defines the Ledger Store port: a transactional record store
// for every entity the order pipeline touches. Implementations must give
// RunInTx rollback-on-error semantics and serialize conflicting writes so
// that concurrent transitions on the same record cannot interleave.
package store

import (
	"context"

	"barista/internal/domain"
)

type Store interface {
	// RunInTx executes fn as one atomic unit of work. If fn returns an
	// error nothing it wrote is observable afterwards.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the record surface available inside a unit of work. Getters used to
// guard a transition must lock the row for the remainder of the transaction.
type Tx interface {
	OrderTx
	TableTx
	CustomerTx
	LoyaltyTx
	WalletTx
	RefundTx
}

type OrderTx interface {
	// InsertOrder assigns the order's ID and order number and persists it
	// together with its items and timeline.
	InsertOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id uint) (*domain.Order, error)
	UpdateOrder(ctx context.Context, order *domain.Order) error
	ListOrdersByTable(ctx context.Context, tableID uint, statuses ...string) ([]domain.Order, error)
	ListOrdersByStatus(ctx context.Context, status string) ([]domain.Order, error)
}

type TableTx interface {
	InsertTable(ctx context.Context, table *domain.Table) error
	GetTable(ctx context.Context, id uint) (*domain.Table, error)
	ListTables(ctx context.Context) ([]domain.Table, error)
	UpdateTableStatus(ctx context.Context, id uint, status string) error
}

type CustomerTx interface {
	InsertCustomer(ctx context.Context, customer *domain.Customer) error
	GetCustomer(ctx context.Context, id uint) (*domain.Customer, error)
	FindCustomerByPhone(ctx context.Context, phone string) (*domain.Customer, error)
}

type LoyaltyTx interface {
	// GetLoyaltyAccount returns a NotFound error for customers that never
	// earned a point; callers decide whether that means "create one".
	GetLoyaltyAccount(ctx context.Context, customerID uint) (*domain.LoyaltyAccount, error)
	SaveLoyaltyAccount(ctx context.Context, account *domain.LoyaltyAccount) error
	InsertLoyaltyTransaction(ctx context.Context, txn *domain.LoyaltyTransaction) error
	ListLoyaltyTransactions(ctx context.Context, customerID uint) ([]domain.LoyaltyTransaction, error)
}

type WalletTx interface {
	GetWallet(ctx context.Context, customerID uint) (*domain.Wallet, error)
	SaveWallet(ctx context.Context, wallet *domain.Wallet) error
	InsertWalletTransaction(ctx context.Context, txn *domain.WalletTransaction) error
	GetWalletTransaction(ctx context.Context, id uint) (*domain.WalletTransaction, error)
	UpdateWalletTransactionStatus(ctx context.Context, id uint, status string) error
}

type RefundTx interface {
	InsertRefund(ctx context.Context, refund *domain.Refund) error
	GetRefund(ctx context.Context, id uint) (*domain.Refund, error)
	UpdateRefund(ctx context.Context, refund *domain.Refund) error
}
