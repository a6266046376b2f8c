package model

import "time"

// Lead statuses along the sales funnel.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusProposal  = "proposal"
	LeadStatusWon       = "won"
	LeadStatusLost      = "lost"
)

// Lead is a prospective client.
type Lead struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Name      string     `db:"name" json:"name"`
	Email     string     `db:"email" json:"email"`
	Phone     string     `db:"phone" json:"phone"`
	EventType string     `db:"event_type" json:"event_type"`
	EventDate *time.Time `db:"event_date" json:"event_date,omitempty"`
	Status    string     `db:"status" json:"status"`
	Notes     string     `db:"notes" json:"notes"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

type LeadPatch struct {
	Name      *string
	Email     *string
	Phone     *string
	EventType *string
	EventDate *time.Time
	Status    *string
	Notes     *string
}
