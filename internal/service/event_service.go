package service

import (
	"context"
	"errors"
	"fmt"

	"boothdesk/internal/access"
	"boothdesk/internal/cache"
	"boothdesk/internal/model"
	"boothdesk/internal/repository"

	"github.com/rs/zerolog"
)

// EventService manages booked events. Planned and confirmed events count
// against the active-event cap of the plan.
type EventService interface {
	List(ctx context.Context, userID, status string) ([]model.Event, error)
	Get(ctx context.Context, userID, eventID string) (*model.Event, error)
	Create(ctx context.Context, e *model.Event) (*model.Event, error)
	Update(ctx context.Context, userID, eventID string, patch model.EventPatch) (*model.Event, error)
	Delete(ctx context.Context, userID, eventID string) error
	CountActive(ctx context.Context, userID string) (int, error)
}

type eventService struct {
	repo   repository.EventRepository
	access AccessService
	cache  cache.Cache
	logger zerolog.Logger
}

func NewEventService(repo repository.EventRepository, accessSvc AccessService, c cache.Cache, logger zerolog.Logger) EventService {
	return &eventService{
		repo:   repo,
		access: accessSvc,
		cache:  c,
		logger: logger.With().Str("service", "EventService").Logger(),
	}
}

func mapEventErr(err error) error {
	if errors.Is(err, repository.ErrEventNotFound) {
		return ErrEventNotFound
	}
	return err
}

func (s *eventService) List(ctx context.Context, userID, status string) ([]model.Event, error) {
	events, err := s.repo.List(ctx, userID, status)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list events")
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

func (s *eventService) Get(ctx context.Context, userID, eventID string) (*model.Event, error) {
	e, err := s.repo.GetByID(ctx, userID, eventID)
	if err != nil {
		return nil, mapEventErr(err)
	}
	return e, nil
}

func (s *eventService) requireActiveSlot(ctx context.Context, userID string) error {
	n, err := s.repo.CountActive(ctx, userID)
	if err != nil {
		return fmt.Errorf("counting active events: %w", err)
	}
	return s.access.Require(ctx, userID, func(i access.Info) bool { return i.CanAddEvent(n) })
}

func (s *eventService) Create(ctx context.Context, e *model.Event) (*model.Event, error) {
	if e.Status == "" {
		e.Status = model.EventStatusPlanned
	}
	if e.IsActive() {
		if err := s.requireActiveSlot(ctx, e.UserID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error().Err(err).Str("user_id", e.UserID).Msg("Failed to create event")
		return nil, fmt.Errorf("creating event: %w", err)
	}
	return e, nil
}

func (s *eventService) Update(ctx context.Context, userID, eventID string, patch model.EventPatch) (*model.Event, error) {
	if patch.Status != nil {
		cur, err := s.repo.GetByID(ctx, userID, eventID)
		if err != nil {
			return nil, mapEventErr(err)
		}
		// Reactivating a done or cancelled event takes an active slot.
		if !cur.IsActive() && model.IsActiveStatus(*patch.Status) {
			if err := s.requireActiveSlot(ctx, userID); err != nil {
				return nil, err
			}
		}
	}
	e, err := s.repo.Update(ctx, userID, eventID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		s.logger.Error().Err(err).Str("event_id", eventID).Msg("Failed to update event")
		return nil, fmt.Errorf("updating event: %w", err)
	}
	return e, nil
}

func (s *eventService) Delete(ctx context.Context, userID, eventID string) error {
	if err := s.repo.Delete(ctx, userID, eventID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return ErrEventNotFound
		}
		s.logger.Error().Err(err).Str("event_id", eventID).Msg("Failed to delete event")
		return fmt.Errorf("deleting event: %w", err)
	}
	// checklist rows go with the event (ON DELETE CASCADE)
	if err := invalidateChecklist(ctx, s.cache, userID, eventID); err != nil {
		s.logger.Warn().Err(err).Str("event_id", eventID).Msg("Failed to drop checklist cache of deleted event")
	}
	return nil
}

func (s *eventService) CountActive(ctx context.Context, userID string) (int, error) {
	return s.repo.CountActive(ctx, userID)
}
