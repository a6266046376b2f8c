package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"boothdesk/internal/access"
	"boothdesk/internal/generation"
	"boothdesk/internal/model"
	"boothdesk/internal/pubsub"
	"boothdesk/internal/repository"

	"github.com/rs/zerolog"
)

// ContentService manages the social media content calendar and its AI
// generated posts.
type ContentService interface {
	ListMonth(ctx context.Context, userID string, year int, month time.Month) ([]model.Content, error)
	Create(ctx context.Context, c *model.Content) (*model.Content, error)
	Update(ctx context.Context, userID, contentID string, patch model.ContentPatch) (*model.Content, error)
	Delete(ctx context.Context, userID, contentID string) error
	// Generate calls the AI endpoint synchronously. Nothing is stored.
	Generate(ctx context.Context, userID string, req model.GenerationRequest) (*model.GeneratedContent, error)
	// Enqueue marks the entry pending and publishes a generation job.
	Enqueue(ctx context.Context, userID, contentID string) (*model.Content, error)
}

type contentService struct {
	repo      repository.ContentRepository
	access    AccessService
	generator generation.Client
	publisher pubsub.Publisher
	topic     string
	logger    zerolog.Logger
}

// NewContentService creates a ContentService. A nil publisher disables Enqueue.
func NewContentService(
	repo repository.ContentRepository,
	accessSvc AccessService,
	generator generation.Client,
	publisher pubsub.Publisher,
	topic string,
	logger zerolog.Logger,
) ContentService {
	return &contentService{
		repo:      repo,
		access:    accessSvc,
		generator: generator,
		publisher: publisher,
		topic:     topic,
		logger:    logger.With().Str("service", "ContentService").Logger(),
	}
}

// monthRange returns [first day of month, first day of next month) in UTC.
func monthRange(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

func (s *contentService) ListMonth(ctx context.Context, userID string, year int, month time.Month) ([]model.Content, error) {
	from, to := monthRange(year, month)
	contents, err := s.repo.ListMonth(ctx, userID, from, to)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list contents")
		return nil, fmt.Errorf("listing contents: %w", err)
	}
	return contents, nil
}

func (s *contentService) Create(ctx context.Context, c *model.Content) (*model.Content, error) {
	from, to := monthRange(c.ScheduledFor.Year(), c.ScheduledFor.Month())
	n, err := s.repo.CountBetween(ctx, c.UserID, from, to)
	if err != nil {
		return nil, fmt.Errorf("counting contents: %w", err)
	}
	if err := s.access.Require(ctx, c.UserID, func(i access.Info) bool { return i.CanAddContent(n) }); err != nil {
		return nil, err
	}
	if c.Status == "" {
		c.Status = model.ContentStatusIdea
	}
	if c.Generated != nil && c.Status == model.ContentStatusIdea {
		c.Status = model.ContentStatusGenerated
	}
	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error().Err(err).Str("user_id", c.UserID).Msg("Failed to create content")
		return nil, fmt.Errorf("creating content: %w", err)
	}
	return c, nil
}

func (s *contentService) Update(ctx context.Context, userID, contentID string, patch model.ContentPatch) (*model.Content, error) {
	c, err := s.repo.Update(ctx, userID, contentID, patch)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Str("content_id", contentID).Msg("Failed to update content")
		return nil, fmt.Errorf("updating content: %w", err)
	}
	return c, nil
}

func (s *contentService) Delete(ctx context.Context, userID, contentID string) error {
	err := s.repo.Delete(ctx, userID, contentID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrContentNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Str("content_id", contentID).Msg("Failed to delete content")
		return fmt.Errorf("deleting content: %w", err)
	}
	return nil
}

func (s *contentService) Generate(ctx context.Context, userID string, req model.GenerationRequest) (*model.GeneratedContent, error) {
	out, err := s.generator.Generate(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("content_type", req.ContentType).Msg("AI generation failed")
		return nil, fmt.Errorf("generating content: %w", err)
	}
	return out, nil
}

func (s *contentService) Enqueue(ctx context.Context, userID, contentID string) (*model.Content, error) {
	if s.publisher == nil {
		return nil, ErrQueueDisabled
	}
	if err := s.repo.MarkPending(ctx, userID, contentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("marking content pending: %w", err)
	}

	payload, err := json.Marshal(model.GenerationJob{ContentID: contentID, UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("encoding generation job: %w", err)
	}
	msgID, err := s.publisher.Publish(ctx, s.topic, payload, map[string]string{"content_id": contentID})
	if err != nil {
		s.logger.Error().Err(err).Str("content_id", contentID).Msg("Failed to publish generation job")
		if mErr := s.repo.MarkFailed(ctx, contentID, "could not queue generation"); mErr != nil {
			s.logger.Error().Err(mErr).Str("content_id", contentID).Msg("Failed to mark content failed")
		}
		return nil, fmt.Errorf("publishing generation job: %w", err)
	}
	s.logger.Info().Str("content_id", contentID).Str("message_id", msgID).Msg("Generation job queued")

	return s.repo.GetByID(ctx, userID, contentID)
}
