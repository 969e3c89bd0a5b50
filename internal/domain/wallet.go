package domain

import "time"

const (
	WalletTxTopup   = "topup"
	WalletTxPayment = "payment"
	WalletTxRefund  = "refund"
)

const (
	WalletTxStatusPending  = "pending"
	WalletTxStatusApproved = "approved"
)

type Wallet struct {
	ID         uint
	CustomerID uint
	Balance    float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// WalletTransaction records the balance before and after every movement so
// the ledger can be audited without replaying it.
type WalletTransaction struct {
	ID            uint
	CustomerID    uint
	Type          string
	Status        string
	Amount        float64
	BalanceBefore float64
	BalanceAfter  float64
	OrderID       *uint
	Description   string
	CreatedAt     time.Time
}
