package domain

import "time"

const (
	RefundStatusPending  = "pending"
	RefundStatusApproved = "approved"
	RefundStatusRejected = "rejected"
)

type Refund struct {
	ID          uint
	OrderID     uint
	Amount      float64
	Reason      string
	Status      string
	RequestedBy string
	DecidedBy   string
	RequestedAt time.Time
	DecidedAt   *time.Time
	CompletedAt *time.Time
}
