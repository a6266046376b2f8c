package dto

import "boothdesk/internal/model"

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

type ContentCreateDTO struct {
	ScheduledFor string                  `json:"scheduled_for" validate:"required,datetime=2006-01-02"`
	ContentType  string                  `json:"content_type" validate:"required,max=50"`
	EventType    string                  `json:"event_type" validate:"max=100"`
	Objective    string                  `json:"objective" validate:"max=200"`
	MainIdea     *string                 `json:"main_idea" validate:"omitempty,max=2000"`
	Status       string                  `json:"status" validate:"omitempty,oneof=idea generated scheduled published"`
	Generated    *model.GeneratedContent `json:"generated"`
}

type ContentUpdateDTO struct {
	ScheduledFor *string                 `json:"scheduled_for" validate:"omitempty,datetime=2006-01-02"`
	ContentType  *string                 `json:"content_type" validate:"omitempty,min=1,max=50"`
	EventType    *string                 `json:"event_type" validate:"omitempty,max=100"`
	Objective    *string                 `json:"objective" validate:"omitempty,max=200"`
	MainIdea     *string                 `json:"main_idea" validate:"omitempty,max=2000"`
	Status       *string                 `json:"status" validate:"omitempty,oneof=idea generated scheduled published"`
	Generated    *model.GeneratedContent `json:"generated"`
}

// GenerateRequestDTO is the body of the synchronous AI generation call.
type GenerateRequestDTO struct {
	ContentType string  `json:"contentType" validate:"required,max=50"`
	EventType   string  `json:"eventType" validate:"required,max=100"`
	Objective   string  `json:"objective" validate:"required,max=200"`
	MainIdea    *string `json:"mainIdea" validate:"omitempty,max=2000"`
}
