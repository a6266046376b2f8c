package dto

import "time"

type LeadCreateDTO struct {
	Name      string     `json:"name" validate:"required,max=200"`
	Email     string     `json:"email" validate:"omitempty,email"`
	Phone     string     `json:"phone" validate:"max=50"`
	EventType string     `json:"event_type" validate:"max=100"`
	EventDate *time.Time `json:"event_date"`
	Status    string     `json:"status" validate:"omitempty,oneof=new contacted proposal won lost"`
	Notes     string     `json:"notes" validate:"max=5000"`
}

type LeadUpdateDTO struct {
	Name      *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Email     *string    `json:"email" validate:"omitempty,email"`
	Phone     *string    `json:"phone" validate:"omitempty,max=50"`
	EventType *string    `json:"event_type" validate:"omitempty,max=100"`
	EventDate *time.Time `json:"event_date"`
	Status    *string    `json:"status" validate:"omitempty,oneof=new contacted proposal won lost"`
	Notes     *string    `json:"notes" validate:"omitempty,max=5000"`
}
