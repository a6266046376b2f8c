package handler

import (
	"context"
	"net/http"

	"boothdesk/internal/api/v1/dto"

	"github.com/rs/zerolog"
)

// BillingService is the part of the Stripe integration used over HTTP.
type BillingService interface {
	CreateCheckoutSession(ctx context.Context, userID string) (string, error)
	CreatePortalSession(ctx context.Context, userID string) (string, error)
	HandleWebhook(w http.ResponseWriter, r *http.Request)
}

// SubscriptionHandler handles subscription-related endpoints.
type SubscriptionHandler struct {
	billing BillingService
	logger  zerolog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(billing BillingService, logger zerolog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{billing: billing, logger: logger}
}

// RegisterRoutes registers the subscription endpoints. The webhook is
// authenticated by its Stripe signature, not by a user token.
func (h *SubscriptionHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	mux.Handle("/subscriptions/checkout", authMiddleware(http.HandlerFunc(h.Checkout)))
	mux.Handle("/subscriptions/portal", authMiddleware(http.HandlerFunc(h.Portal)))
	mux.HandleFunc("/stripe/webhook", h.Webhook)
}

// Checkout godoc
// @Summary Initiate a Stripe Checkout session for the Pro plan
// @Description Creates a Stripe Checkout session and returns its URL.
// @Tags subscriptions
// @Produce json
// @Success 200 {object} dto.SessionURLResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 503 {string} string "billing is not configured"
// @Router /subscriptions/checkout [post]
func (h *SubscriptionHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	url, err := h.billing.CreateCheckoutSession(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err, "failed to create checkout session")
		return
	}
	writeJSON(w, http.StatusOK, dto.SessionURLResponse{URL: url})
}

// Portal godoc
// @Summary Create a Stripe Customer Portal session
// @Description Generates a Stripe Customer Portal session URL for the authenticated user.
// @Tags subscriptions
// @Produce json
// @Success 200 {object} dto.SessionURLResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 409 {string} string "no stripe customer for user"
// @Router /subscriptions/portal [get]
func (h *SubscriptionHandler) Portal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	url, err := h.billing.CreatePortalSession(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err, "failed to create portal session")
		return
	}
	writeJSON(w, http.StatusOK, dto.SessionURLResponse{URL: url})
}

// Webhook godoc
// @Summary Stripe webhook
// @Description Verifies the Stripe signature and keeps the premium flag in sync.
// @Tags subscriptions
// @Success 200
// @Failure 400 {string} string "signature verification failed"
// @Router /stripe/webhook [post]
func (h *SubscriptionHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	h.billing.HandleWebhook(w, r)
}
