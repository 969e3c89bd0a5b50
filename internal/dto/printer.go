package dto

import (
	"time"

	"barista/internal/domain"
)

type PrinterHealthResponse struct {
	Status      string     `json:"status"`
	QueueDepth  int        `json:"queueDepth"`
	LastSuccess *time.Time `json:"lastSuccess,omitempty"`
	LastError   string     `json:"lastError,omitempty"`
}

func FromPrinterHealth(h domain.PrinterHealth) PrinterHealthResponse {
	return PrinterHealthResponse{
		Status:      h.Status,
		QueueDepth:  h.QueueDepth,
		LastSuccess: h.LastSuccess,
		LastError:   h.LastError,
	}
}

type RetryPrintResponse struct {
	OrderID uint `json:"orderId"`
	Retried bool `json:"retried"`
}
