package model

import "time"

// Content statuses. Pending means a generation job is queued.
const (
	ContentStatusIdea      = "idea"
	ContentStatusPending   = "pending"
	ContentStatusGenerated = "generated"
	ContentStatusScheduled = "scheduled"
	ContentStatusPublished = "published"
	ContentStatusFailed    = "failed"
)

// GenerationRequest is the input accepted by the AI generation endpoint.
type GenerationRequest struct {
	ContentType string  `json:"contentType"`
	EventType   string  `json:"eventType"`
	Objective   string  `json:"objective"`
	MainIdea    *string `json:"mainIdea,omitempty"`
}

// GeneratedContent is the post returned by the AI generation endpoint.
type GeneratedContent struct {
	Titulo   string   `json:"titulo"`
	Ideia    string   `json:"ideia"`
	Roteiro  string   `json:"roteiro"`
	Legenda  string   `json:"legenda"`
	CTA      string   `json:"cta"`
	Hashtags []string `json:"hashtags"`
}

// Content is an entry of the social media content calendar.
type Content struct {
	ID           string            `db:"id" json:"id"`
	UserID       string            `db:"user_id" json:"user_id"`
	ScheduledFor time.Time         `db:"scheduled_for" json:"scheduled_for"`
	ContentType  string            `db:"content_type" json:"content_type"`
	EventType    string            `db:"event_type" json:"event_type"`
	Objective    string            `db:"objective" json:"objective"`
	MainIdea     *string           `db:"main_idea" json:"main_idea,omitempty"`
	Status       string            `db:"status" json:"status"`
	Generated    *GeneratedContent `db:"generated" json:"generated,omitempty"`
	ErrorDetails *string           `db:"error_details" json:"error_details,omitempty"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updated_at"`
}

// GenerationRequest builds the AI request for this calendar entry.
func (c *Content) GenerationRequest() GenerationRequest {
	return GenerationRequest{
		ContentType: c.ContentType,
		EventType:   c.EventType,
		Objective:   c.Objective,
		MainIdea:    c.MainIdea,
	}
}

type ContentPatch struct {
	ScheduledFor *time.Time
	ContentType  *string
	EventType    *string
	Objective    *string
	MainIdea     *string
	Status       *string
	Generated    *GeneratedContent
}

// GenerationJob is the Pub/Sub payload of an asynchronous generation.
type GenerationJob struct {
	ContentID string `json:"content_id"`
	UserID    string `json:"user_id"`
}
