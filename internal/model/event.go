package model

import "time"

// Event statuses. Planned and confirmed events count as active.
const (
	EventStatusPlanned   = "planned"
	EventStatusConfirmed = "confirmed"
	EventStatusDone      = "done"
	EventStatusCancelled = "cancelled"
)

// Event is a booked (or prospective) booth rental.
type Event struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Title        string    `db:"title" json:"title"`
	EventType    string    `db:"event_type" json:"event_type"`
	ClientName   string    `db:"client_name" json:"client_name"`
	Location     string    `db:"location" json:"location"`
	StartsAt     time.Time `db:"starts_at" json:"starts_at"`
	Status       string    `db:"status" json:"status"`
	Notes        string    `db:"notes" json:"notes"`
	ContractPath *string   `db:"contract_path" json:"contract_path,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// IsActiveStatus reports whether events in status count against the active-event limit.
func IsActiveStatus(status string) bool {
	return status == EventStatusPlanned || status == EventStatusConfirmed
}

func (e *Event) IsActive() bool {
	return IsActiveStatus(e.Status)
}

// EventPatch carries the fields of a partial event update.
type EventPatch struct {
	Title      *string
	EventType  *string
	ClientName *string
	Location   *string
	StartsAt   *time.Time
	Status     *string
	Notes      *string
}
