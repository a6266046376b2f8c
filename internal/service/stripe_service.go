package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"boothdesk/internal/config"
	"boothdesk/internal/model"
	"boothdesk/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	billingsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	customerpkg "github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeService manages Stripe integration
type StripeService struct {
	cfg      *config.Config
	profiles repository.ProfileRepository
	subSvc   SubscriptionService
	logger   zerolog.Logger
}

// NewStripeService initializes Stripe key and returns service with a scoped logger
func NewStripeService(cfg *config.Config, profiles repository.ProfileRepository, subSvc SubscriptionService, logger zerolog.Logger) *StripeService {
	stripe.Key = cfg.StripeSecretKey
	lg := logger.With().Str("service", "StripeService").Logger()
	return &StripeService{cfg: cfg, profiles: profiles, subSvc: subSvc, logger: lg}
}

func (s *StripeService) profile(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return p, nil
}

// GetOrCreateCustomer ensures a Stripe Customer exists for a profile
func (s *StripeService) GetOrCreateCustomer(ctx context.Context, p *model.Profile) (string, error) {
	if p.StripeCustomerID != nil && *p.StripeCustomerID != "" {
		return *p.StripeCustomerID, nil
	}
	params := &stripe.CustomerParams{
		Email:    stripe.String(p.Email),
		Name:     stripe.String(p.BusinessName),
		Metadata: map[string]string{"user_id": p.UserID},
	}
	cust, err := customerpkg.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", p.UserID).Msg("Failed to create Stripe customer")
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	if err := s.profiles.SetStripeCustomerID(ctx, p.UserID, cust.ID); err != nil {
		s.logger.Error().Err(err).Str("user_id", p.UserID).Msg("Failed to store stripe customer id in profiles")
		return "", fmt.Errorf("store stripe customer id: %w", err)
	}
	return cust.ID, nil
}

// CreateCheckoutSession creates a Stripe Checkout session for the Pro plan
func (s *StripeService) CreateCheckoutSession(ctx context.Context, userID string) (string, error) {
	if !s.cfg.BillingEnabled() {
		return "", ErrBillingDisabled
	}
	p, err := s.profile(ctx, userID)
	if err != nil {
		return "", err
	}
	customerID, err := s.GetOrCreateCustomer(ctx, p)
	if err != nil {
		return "", err
	}
	sessParams := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(customerID),
		LineItems:  []*stripe.CheckoutSessionLineItemParams{{Price: stripe.String(s.cfg.StripePricePro), Quantity: stripe.Int64(1)}},
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(s.cfg.StripeReturnURL + "?status=success"),
		CancelURL:  stripe.String(s.cfg.StripeReturnURL + "?status=cancel"),
		Metadata:   map[string]string{"user_id": userID},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"user_id": userID},
		},
	}
	sess, err := checkoutsession.New(sessParams)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create Stripe checkout session")
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CreatePortalSession creates a Stripe Customer Portal session
func (s *StripeService) CreatePortalSession(ctx context.Context, userID string) (string, error) {
	if !s.cfg.BillingEnabled() {
		return "", ErrBillingDisabled
	}
	p, err := s.profile(ctx, userID)
	if err != nil {
		return "", err
	}
	if p.StripeCustomerID == nil || *p.StripeCustomerID == "" {
		return "", ErrNoStripeCustomer
	}
	params := &stripe.BillingPortalSessionParams{Customer: p.StripeCustomerID, ReturnURL: stripe.String(s.cfg.StripeReturnURL)}
	sess, err := billingsession.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create Stripe billing portal session")
		return "", fmt.Errorf("create billing portal session: %w", err)
	}
	return sess.URL, nil
}

// HandleWebhook verifies and processes Stripe webhook events
func (s *StripeService) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read Stripe webhook payload")
		http.Error(w, "failed to read payload", http.StatusBadRequest)
		return
	}
	sig := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEventWithOptions(payload, sig, s.cfg.StripeWebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Signature verification failed for Stripe webhook")
		http.Error(w, "signature verification failed", http.StatusBadRequest)
		return
	}
	s.logger.Info().Str("event_type", string(event.Type)).Msg("Stripe webhook received")

	if err := s.ProcessEvent(r.Context(), event); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			http.Error(w, "invalid event data", http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to process event", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ProcessEvent applies a verified Stripe event to the premium flag.
func (s *StripeService) ProcessEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			s.logger.Error().Err(err).Msg("Invalid checkout.session data")
			return err
		}
		userID := cs.Metadata["user_id"]
		if userID == "" {
			s.logger.Warn().Str("session_id", cs.ID).Msg("Missing user_id in checkout session metadata; ignoring")
			return nil
		}
		customerID := ""
		if cs.Customer != nil {
			customerID = cs.Customer.ID
		}
		return s.subSvc.Activate(ctx, userID, customerID)

	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		var ss stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &ss); err != nil {
			s.logger.Error().Err(err).Str("event_type", string(event.Type)).Msg("Invalid subscription payload")
			return err
		}
		if ss.Customer == nil || ss.Customer.ID == "" {
			s.logger.Warn().Str("subscription_id", ss.ID).Msg("Subscription without customer; ignoring")
			return nil
		}
		status := string(ss.Status)
		if event.Type == "customer.subscription.deleted" {
			status = string(stripe.SubscriptionStatusCanceled)
		}
		err := s.subSvc.SetStatus(ctx, ss.Customer.ID, ss.Metadata["user_id"], status)
		if errors.Is(err, ErrProfileNotFound) {
			s.logger.Warn().Str("stripe_customer_id", ss.Customer.ID).Msg("No profile for subscription event; ignoring")
			return nil
		}
		return err

	default:
		s.logger.Debug().Str("event_type", string(event.Type)).Msg("Unhandled Stripe webhook event")
		return nil
	}
}
