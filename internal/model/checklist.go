package model

import (
	"errors"
	"fmt"
	"time"
)

// Phase partitions an event's checklist into pre-event, during-event and post-event buckets.
type Phase string

const (
	PhasePre    Phase = "pre"
	PhaseDuring Phase = "during"
	PhasePost   Phase = "post"
)

// ErrUnknownPhase is returned by ParsePhase for values outside the closed phase set.
var ErrUnknownPhase = errors.New("unknown checklist phase")

// Phases lists every phase in render order.
var Phases = []Phase{PhasePre, PhaseDuring, PhasePost}

// ParsePhase validates a raw phase string.
func ParsePhase(s string) (Phase, error) {
	switch p := Phase(s); p {
	case PhasePre, PhaseDuring, PhasePost:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPhase, s)
}

// Valid reports whether p is one of the three known phases.
func (p Phase) Valid() bool {
	_, err := ParsePhase(string(p))
	return err == nil
}

// Order returns the render rank of the phase.
func (p Phase) Order() int {
	for i, ph := range Phases {
		if ph == p {
			return i
		}
	}
	return len(Phases)
}

// ChecklistItem is one task of an event checklist. Position orders items within
// an (event, phase) partition; positions are unique there but may have gaps.
type ChecklistItem struct {
	ID        string    `db:"id" json:"id"`
	EventID   string    `db:"event_id" json:"event_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Phase     Phase     `db:"phase" json:"phase"`
	Text      string    `db:"text" json:"text"`
	Completed bool      `db:"completed" json:"completed"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ChecklistPatch is a partial update; nil fields are left untouched.
type ChecklistPatch struct {
	Text      *string
	Completed *bool
}

// ChecklistSeed is the input of bulk inserts from a template or another event.
type ChecklistSeed struct {
	Phase Phase  `json:"phase"`
	Text  string `json:"text"`
}
