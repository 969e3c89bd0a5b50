package dto

import (
	"time"

	"barista/internal/domain"
)

type CreateOrderRequest struct {
	TableID       uint           `json:"tableId"`
	Items         []OrderItemDTO `json:"items"`
	PaymentMethod string         `json:"paymentMethod,omitempty"`
	PaymentStatus string         `json:"paymentStatus,omitempty"`
	CustomerPhone string         `json:"customerPhone,omitempty"`
	CashierOrder  bool           `json:"cashierOrder"`
	CreatedBy     string         `json:"createdBy,omitempty"`
}

type ConfirmPaymentRequest struct {
	Method      string `json:"method"`
	ConfirmedBy string `json:"confirmedBy"`
}

type ActionRequest struct {
	Actor  string `json:"actor"`
	Reason string `json:"reason,omitempty"`
}

type OrderItemDTO struct {
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	Price     float64  `json:"price"`
	Modifiers []string `json:"modifiers,omitempty"`
}

type TimelineEntryDTO struct {
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Note      string    `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type OrderResponse struct {
	ID            uint               `json:"id"`
	OrderNo       string             `json:"orderNo"`
	TableID       uint               `json:"tableId"`
	Items         []OrderItemDTO     `json:"items"`
	Total         float64            `json:"total"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"paymentStatus"`
	PaymentMethod string             `json:"paymentMethod,omitempty"`
	CashierOrder  bool               `json:"cashierOrder"`
	CustomerID    *uint              `json:"customerId,omitempty"`
	ServedAt      *time.Time         `json:"servedAt,omitempty"`
	Timeline      []TimelineEntryDTO `json:"timeline"`
	CreatedAt     time.Time          `json:"createdAt"`
}

func FromOrder(order *domain.Order) OrderResponse {
	items := make([]OrderItemDTO, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemDTO{
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Modifiers: item.Modifiers,
		}
	}

	timeline := make([]TimelineEntryDTO, len(order.Timeline))
	for i, entry := range order.Timeline {
		timeline[i] = TimelineEntryDTO{
			Action:    entry.Action,
			Actor:     entry.Actor,
			Note:      entry.Note,
			Timestamp: entry.Timestamp,
		}
	}

	return OrderResponse{
		ID:            order.ID,
		OrderNo:       order.OrderNo,
		TableID:       order.TableID,
		Items:         items,
		Total:         order.Total,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		PaymentMethod: order.PaymentMethod,
		CashierOrder:  order.CashierOrder,
		CustomerID:    order.CustomerID,
		ServedAt:      order.ServedAt,
		Timeline:      timeline,
		CreatedAt:     order.CreatedAt,
	}
}

func (i OrderItemDTO) ToDomain() domain.OrderItem {
	return domain.OrderItem{
		Name:      i.Name,
		Quantity:  i.Quantity,
		Price:     i.Price,
		Modifiers: i.Modifiers,
	}
}
