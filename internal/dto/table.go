package dto

import "barista/internal/domain"

type TableResponse struct {
	ID          uint           `json:"id"`
	Number      int            `json:"number"`
	Status      string         `json:"status"`
	ActiveOrder *OrderResponse `json:"activeOrder,omitempty"`
}

func FromTable(table *domain.Table, activeOrder *domain.Order) TableResponse {
	resp := TableResponse{
		ID:     table.ID,
		Number: table.Number,
		Status: table.Status,
	}
	if activeOrder != nil {
		order := FromOrder(activeOrder)
		resp.ActiveOrder = &order
	}
	return resp
}

type ReleaseTableRequest struct {
	Actor string `json:"actor"`
}
