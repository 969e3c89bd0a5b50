package domain

import "time"

const (
	TableStatusIdle     = "idle"
	TableStatusOccupied = "occupied"
)

// Table status is the authoritative occupancy signal for viewers; it is
// derived from order presence but stored explicitly so displays never have
// to trust an individually fetched order over it.
type Table struct {
	ID        uint
	Number    int
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
