package service

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"boothdesk/internal/api/v1/dto"
	"boothdesk/internal/model"
	"boothdesk/internal/repository"

	"github.com/rs/zerolog"
)

type DLQService interface {
	ProcessAndSave(ctx context.Context, req *dto.PubSubPushRequest) error
}

type dlqService struct {
	repo   repository.DLQRepository
	logger zerolog.Logger
}

func NewDLQService(repo repository.DLQRepository, logger zerolog.Logger) DLQService {
	return &dlqService{repo: repo, logger: logger.With().Str("service", "DLQService").Logger()}
}

func (s *dlqService) ProcessAndSave(ctx context.Context, req *dto.PubSubPushRequest) error {
	// Decode the base64-encoded payload
	decodedPayload, err := base64.StdEncoding.DecodeString(req.Message.Data)
	if err != nil {
		// If we can't even decode it, save the raw data
		decodedPayload = []byte(req.Message.Data)
	}

	// Marshal attributes to a JSON string, if they exist
	var attributesJSON *string
	if len(req.Message.Attributes) > 0 {
		attrBytes, err := json.Marshal(req.Message.Attributes)
		if err == nil {
			attrStr := string(attrBytes)
			attributesJSON = &attrStr
		}
	}

	// Link the dead letter to its content row when the job is readable
	var contentID *string
	var job model.GenerationJob
	if err := json.Unmarshal(decodedPayload, &job); err == nil && job.ContentID != "" {
		contentID = &job.ContentID
	} else if id := req.Message.Attributes["content_id"]; id != "" {
		contentID = &id
	}

	dbMessage := &model.DeadLetterMessage{
		SubscriptionName: req.Subscription,
		MessageID:        req.Message.MessageID,
		ContentID:        contentID,
		Payload:          string(decodedPayload),
		Attributes:       attributesJSON,
		Status:           "unprocessed",
	}

	if err := s.repo.Create(ctx, dbMessage); err != nil {
		s.logger.Error().Err(err).Str("message_id", req.Message.MessageID).Msg("Failed to save dead letter")
		return err
	}
	s.logger.Warn().Str("message_id", req.Message.MessageID).Str("subscription", req.Subscription).Msg("Dead letter recorded")
	return nil
}
