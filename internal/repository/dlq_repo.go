package repository

import (
	"context"
	"database/sql"
	"fmt"

	"boothdesk/internal/model"
)

type DLQRepository interface {
	Create(ctx context.Context, message *model.DeadLetterMessage) error
}

type dlqRepository struct {
	db *sql.DB
}

func NewDLQRepository(db *sql.DB) DLQRepository {
	return &dlqRepository{db: db}
}

func (r *dlqRepository) Create(ctx context.Context, message *model.DeadLetterMessage) error {
	query := `
        INSERT INTO dead_letter_messages (subscription_name, message_id, content_id, payload, attributes, status)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.db.ExecContext(
		ctx,
		query,
		message.SubscriptionName,
		message.MessageID,
		message.ContentID,
		message.Payload,
		message.Attributes,
		message.Status,
	)
	if err != nil {
		return fmt.Errorf("inserting dead letter %s: %w", message.MessageID, err)
	}
	return nil
}
