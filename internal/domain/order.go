package domain

import (
	"math"
	"time"
)

const (
	OrderStatusPending  = "pending"
	OrderStatusApproved = "approved"
	OrderStatusRejected = "rejected"
	OrderStatusServed   = "served"
)

const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

const (
	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodWallet = "wallet"
)

type Order struct {
	ID            uint
	OrderNo       string
	TableID       uint
	Items         []OrderItem
	Total         float64
	Status        string
	PaymentStatus string
	PaymentMethod string
	CashierOrder  bool
	CustomerID    *uint
	ServedAt      *time.Time
	Timeline      []TimelineEntry
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type OrderItem struct {
	ID        uint
	OrderID   uint
	Name      string
	Quantity  int
	Price     float64
	Modifiers []string
}

// TimelineEntry is one row of the append-only audit trail on an order.
type TimelineEntry struct {
	Action    string
	Actor     string
	Note      string
	Timestamp time.Time
}

func (o *Order) ComputeTotal() float64 {
	total := 0.0
	for _, item := range o.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Terminal orders are immutable except for payment-status correction
// through the refund flow.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusRejected || o.Status == OrderStatusServed
}

// Occupies reports whether the order keeps its table occupied.
func (o *Order) Occupies() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusApproved
}

// LoyaltyPoints is the accrual for a paid order: one point per whole
// currency unit of the total.
func (o *Order) LoyaltyPoints() int {
	return int(math.Floor(o.Total))
}

func (o *Order) AppendTimeline(action, actor, note string, at time.Time) {
	o.Timeline = append(o.Timeline, TimelineEntry{
		Action:    action,
		Actor:     actor,
		Note:      note,
		Timestamp: at,
	})
}
