package dto

import (
	"time"

	"barista/internal/domain"
)

type RedeemPointsRequest struct {
	Points int    `json:"points"`
	Note   string `json:"note,omitempty"`
}

type TopUpRequest struct {
	Points int     `json:"points"`
	Rate   float64 `json:"rate"`
}

type ApproveTopUpRequest struct {
	ApprovedBy string `json:"approvedBy"`
}

type RefundRequest struct {
	OrderID     uint    `json:"orderId"`
	Amount      float64 `json:"amount"`
	Reason      string  `json:"reason"`
	RequestedBy string  `json:"requestedBy"`
}

type RefundDecisionRequest struct {
	Actor  string `json:"actor"`
	Reason string `json:"reason,omitempty"`
}

type RefundResponse struct {
	ID          uint       `json:"id"`
	OrderID     uint       `json:"orderId"`
	Amount      float64    `json:"amount"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	RequestedBy string     `json:"requestedBy"`
	DecidedBy   string     `json:"decidedBy,omitempty"`
	RequestedAt time.Time  `json:"requestedAt"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func FromRefund(refund *domain.Refund) RefundResponse {
	return RefundResponse{
		ID:          refund.ID,
		OrderID:     refund.OrderID,
		Amount:      refund.Amount,
		Reason:      refund.Reason,
		Status:      refund.Status,
		RequestedBy: refund.RequestedBy,
		DecidedBy:   refund.DecidedBy,
		RequestedAt: refund.RequestedAt,
		DecidedAt:   refund.DecidedAt,
		CompletedAt: refund.CompletedAt,
	}
}

type LoyaltyTransactionDTO struct {
	ID          uint      `json:"id"`
	Type        string    `json:"type"`
	Delta       int       `json:"delta"`
	OrderID     *uint     `json:"orderId,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type LoyaltySummaryResponse struct {
	CustomerID    uint                    `json:"customerId"`
	Balance       int                     `json:"balance"`
	TotalEarned   int                     `json:"totalEarned"`
	TotalRedeemed int                     `json:"totalRedeemed"`
	Transactions  []LoyaltyTransactionDTO `json:"transactions"`
}

func FromLoyalty(account *domain.LoyaltyAccount, txns []domain.LoyaltyTransaction) LoyaltySummaryResponse {
	out := LoyaltySummaryResponse{
		CustomerID:    account.CustomerID,
		Balance:       account.Balance,
		TotalEarned:   account.TotalEarned,
		TotalRedeemed: account.TotalRedeemed,
		Transactions:  make([]LoyaltyTransactionDTO, len(txns)),
	}
	for i, txn := range txns {
		out.Transactions[i] = LoyaltyTransactionDTO{
			ID:          txn.ID,
			Type:        txn.Type,
			Delta:       txn.Delta,
			OrderID:     txn.OrderID,
			Description: txn.Description,
			CreatedAt:   txn.CreatedAt,
		}
	}
	return out
}

type WalletTransactionResponse struct {
	ID            uint      `json:"id"`
	CustomerID    uint      `json:"customerId"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	Amount        float64   `json:"amount"`
	BalanceBefore float64   `json:"balanceBefore"`
	BalanceAfter  float64   `json:"balanceAfter"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func FromWalletTransaction(txn *domain.WalletTransaction) WalletTransactionResponse {
	return WalletTransactionResponse{
		ID:            txn.ID,
		CustomerID:    txn.CustomerID,
		Type:          txn.Type,
		Status:        txn.Status,
		Amount:        txn.Amount,
		BalanceBefore: txn.BalanceBefore,
		BalanceAfter:  txn.BalanceAfter,
		Description:   txn.Description,
		CreatedAt:     txn.CreatedAt,
	}
}
