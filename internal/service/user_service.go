package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"boothdesk/internal/model"
	"boothdesk/internal/repository"

	"github.com/rs/zerolog"
)

// UserService manages the business profile of the authenticated user.
type UserService interface {
	// Save creates the profile on first call and updates its editable fields afterwards.
	Save(ctx context.Context, p *model.Profile) (*model.Profile, error)
	Get(ctx context.Context, userID string) (*model.Profile, error)
}

type userService struct {
	profiles repository.ProfileRepository
	logger   zerolog.Logger
}

func NewUserService(profiles repository.ProfileRepository, logger zerolog.Logger) UserService {
	return &userService{
		profiles: profiles,
		logger:   logger.With().Str("service", "UserService").Logger(),
	}
}

func (s *userService) Save(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	p.BusinessName = strings.TrimSpace(p.BusinessName)
	p.Email = strings.TrimSpace(p.Email)
	if err := s.profiles.Upsert(ctx, p); err != nil {
		s.logger.Error().Err(err).Str("user_id", p.UserID).Msg("Failed to save profile")
		return nil, fmt.Errorf("saving profile: %w", err)
	}
	return p, nil
}

func (s *userService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return p, nil
}
