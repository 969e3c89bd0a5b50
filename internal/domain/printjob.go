package domain

import "time"

const (
	PrintStatusQueued   = "queued"
	PrintStatusPrinting = "printing"
	PrintStatusOffline  = "offline"
	PrintStatusFailed   = "failed"
	PrintStatusSuccess  = "success"
)

const (
	PrinterOnline   = "online"
	PrinterDegraded = "degraded"
	PrinterOffline  = "offline"
)

// PrintJob is process-lifecycle state owned by the dispatcher; there is at
// most one job per order and re-enqueuing replaces it.
type PrintJob struct {
	OrderID   uint
	Status    string
	Message   string
	Attempts  int
	UpdatedAt time.Time
}

// Retryable reports whether an operator retry is allowed.
func (j *PrintJob) Retryable() bool {
	return j.Status == PrintStatusFailed || j.Status == PrintStatusOffline
}

// PrinterHealth is the single source of truth behind the printer icon.
type PrinterHealth struct {
	Status      string
	QueueDepth  int
	LastSuccess *time.Time
	LastError   string
}
