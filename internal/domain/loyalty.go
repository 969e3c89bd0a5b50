package domain

import "time"

const (
	LoyaltyTxEarned   = "earned"
	LoyaltyTxRedeemed = "redeemed"
	LoyaltyTxTopup    = "topup"
)

// LoyaltyAccount carries the running balance plus lifetime counters. The
// balance must always equal the sum of the account's transaction deltas.
type LoyaltyAccount struct {
	ID            uint
	CustomerID    uint
	Balance       int
	TotalEarned   int
	TotalRedeemed int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type LoyaltyTransaction struct {
	ID          uint
	CustomerID  uint
	Type        string
	Delta       int
	OrderID     *uint
	Description string
	CreatedAt   time.Time
}
