package service

import (
	"context"
	"errors"
	"fmt"

	"boothdesk/internal/repository"

	"github.com/rs/zerolog"
)

// SubscriptionService keeps the premium flag of a profile in sync with its
// Stripe subscription.
type SubscriptionService interface {
	// Activate marks the user premium after a completed checkout.
	Activate(ctx context.Context, userID, customerID string) error
	// SetStatus applies a subscription status to the customer's profile,
	// falling back to userID when no profile carries the customer id.
	SetStatus(ctx context.Context, customerID, userID, status string) error
}

type subscriptionService struct {
	profiles repository.ProfileRepository
	logger   zerolog.Logger
}

// NewSubscriptionService creates a new SubscriptionService with a scoped logger.
func NewSubscriptionService(profiles repository.ProfileRepository, logger zerolog.Logger) SubscriptionService {
	return &subscriptionService{
		profiles: profiles,
		logger:   logger.With().Str("service", "SubscriptionService").Logger(),
	}
}

// PremiumStatus reports whether a Stripe subscription status grants premium.
func PremiumStatus(status string) bool {
	return status == "active" || status == "trialing"
}

func (s *subscriptionService) Activate(ctx context.Context, userID, customerID string) error {
	if customerID != "" {
		if err := s.profiles.SetStripeCustomerID(ctx, userID, customerID); err != nil {
			return fmt.Errorf("storing stripe customer: %w", err)
		}
	}
	if err := s.profiles.SetPremium(ctx, userID, true); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to activate premium")
		return fmt.Errorf("activating premium: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Msg("Premium activated")
	return nil
}

func (s *subscriptionService) SetStatus(ctx context.Context, customerID, userID, status string) error {
	premium := PremiumStatus(status)
	err := s.profiles.SetPremiumByCustomer(ctx, customerID, premium)
	if errors.Is(err, repository.ErrNotFound) && userID != "" {
		s.logger.Warn().Str("stripe_customer_id", customerID).Msg("No profile for customer; using user_id metadata")
		err = s.profiles.SetPremium(ctx, userID, premium)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProfileNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Str("stripe_customer_id", customerID).Msg("Failed to update premium flag")
		return fmt.Errorf("updating premium flag: %w", err)
	}
	s.logger.Info().Str("stripe_customer_id", customerID).Str("status", status).Bool("premium", premium).Msg("Subscription status applied")
	return nil
}
