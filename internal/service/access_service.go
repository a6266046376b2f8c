package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boothdesk/internal/access"
	"boothdesk/internal/repository"

	"github.com/rs/zerolog"
)

// AccessService evaluates the access phase of the calling account and guards
// plan-limited operations.
type AccessService interface {
	GetAccessInfo(ctx context.Context, userID string) (access.Info, error)
	// Require returns ErrLimitReached unless check passes.
	Require(ctx context.Context, userID string, check func(access.Info) bool) error
	// RequireFeature returns ErrFeatureLocked unless check passes.
	RequireFeature(ctx context.Context, userID string, check func(access.Info) bool) error
}

type accessService struct {
	profiles repository.ProfileRepository
	now      func() time.Time
	logger   zerolog.Logger
}

// NewAccessService creates an AccessService. A nil now uses time.Now.
func NewAccessService(profiles repository.ProfileRepository, now func() time.Time, logger zerolog.Logger) AccessService {
	if now == nil {
		now = time.Now
	}
	return &accessService{
		profiles: profiles,
		now:      now,
		logger:   logger.With().Str("service", "AccessService").Logger(),
	}
}

func (s *accessService) GetAccessInfo(ctx context.Context, userID string) (access.Info, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return access.Evaluate(nil, s.now()), nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to load profile for access evaluation")
		return access.Info{}, fmt.Errorf("loading profile: %w", err)
	}
	return access.Evaluate(&access.Account{
		ID:        p.UserID,
		CreatedAt: p.CreatedAt,
		IsPremium: p.IsPremium,
	}, s.now()), nil
}

func (s *accessService) Require(ctx context.Context, userID string, check func(access.Info) bool) error {
	return s.require(ctx, userID, check, ErrLimitReached)
}

func (s *accessService) RequireFeature(ctx context.Context, userID string, check func(access.Info) bool) error {
	return s.require(ctx, userID, check, ErrFeatureLocked)
}

func (s *accessService) require(ctx context.Context, userID string, check func(access.Info) bool, denied error) error {
	info, err := s.GetAccessInfo(ctx, userID)
	if err != nil {
		return err
	}
	if !check(info) {
		s.logger.Info().Str("user_id", userID).Str("phase", string(info.Phase)).Msg(denied.Error())
		return denied
	}
	return nil
}
