package dto

import "time"

type EventCreateDTO struct {
	Title      string    `json:"title" validate:"required,max=200"`
	EventType  string    `json:"event_type" validate:"max=100"`
	ClientName string    `json:"client_name" validate:"max=200"`
	Location   string    `json:"location" validate:"max=300"`
	StartsAt   time.Time `json:"starts_at" validate:"required"`
	Status     string    `json:"status" validate:"omitempty,oneof=planned confirmed done cancelled"`
	Notes      string    `json:"notes" validate:"max=5000"`
}

type EventUpdateDTO struct {
	Title      *string    `json:"title" validate:"omitempty,min=1,max=200"`
	EventType  *string    `json:"event_type" validate:"omitempty,max=100"`
	ClientName *string    `json:"client_name" validate:"omitempty,max=200"`
	Location   *string    `json:"location" validate:"omitempty,max=300"`
	StartsAt   *time.Time `json:"starts_at"`
	Status     *string    `json:"status" validate:"omitempty,oneof=planned confirmed done cancelled"`
	Notes      *string    `json:"notes" validate:"omitempty,max=5000"`
}
