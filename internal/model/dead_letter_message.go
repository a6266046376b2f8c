package model

import "time"

// DeadLetterMessage is a generation job that exhausted its delivery attempts,
// as pushed by the Pub/Sub dead-letter subscription.
type DeadLetterMessage struct {
	ID               string    `db:"id"`
	SubscriptionName string    `db:"subscription_name"`
	MessageID        string    `db:"message_id"`
	ContentID        *string   `db:"content_id"` // nil when the payload could not be decoded
	Payload          string    `db:"payload"`
	Attributes       *string   `db:"attributes"` // JSON object or NULL
	Status           string    `db:"status"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}
