package pubsub

import (
	"context"
	"fmt"

	"boothdesk/internal/config"

	"cloud.google.com/go/pubsub"
)

// Message is a received Pub/Sub message.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
	// DeliveryAttempt is set only when the subscription has a dead-letter policy.
	DeliveryAttempt *int
}

// Handler processes one message. A nil error acks it, any other error nacks
// it for redelivery.
type Handler func(ctx context.Context, msg *Message) error

// Subscriber pulls messages from a subscription until ctx is done.
type Subscriber interface {
	Receive(ctx context.Context, subscription string, h Handler) error
}

// PubSubSubscriber is an implementation of Subscriber using Google Pub/Sub.
type PubSubSubscriber struct {
	client         *pubsub.Client
	maxOutstanding int
}

// NewSubscriber creates a subscriber that keeps at most maxOutstanding
// messages in flight.
func NewSubscriber(ctx context.Context, cfg *config.Config, maxOutstanding int) (*PubSubSubscriber, error) {
	client, err := pubsub.NewClient(ctx, cfg.GCPProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pub/Sub client: %w", err)
	}
	return &PubSubSubscriber{client: client, maxOutstanding: maxOutstanding}, nil
}

func (s *PubSubSubscriber) Receive(ctx context.Context, subscription string, h Handler) error {
	sub := s.client.Subscription(subscription)
	if s.maxOutstanding > 0 {
		sub.ReceiveSettings.MaxOutstandingMessages = s.maxOutstanding
		sub.ReceiveSettings.NumGoroutines = 1
	}
	err := sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		msg := &Message{
			ID:              m.ID,
			Data:            m.Data,
			Attributes:      m.Attributes,
			DeliveryAttempt: m.DeliveryAttempt,
		}
		if err := h(ctx, msg); err != nil {
			m.Nack()
			return
		}
		m.Ack()
	})
	if err != nil {
		return fmt.Errorf("receiving from subscription %s: %w", subscription, err)
	}
	return nil
}

func (s *PubSubSubscriber) Close() error {
	return s.client.Close()
}
