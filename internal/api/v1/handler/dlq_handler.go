package handler

import (
	"encoding/json"
	"net/http"

	"boothdesk/internal/api/v1/dto"
	"boothdesk/internal/service"

	"github.com/rs/zerolog"
)

type DLQHandler struct {
	service service.DLQService
	logger  zerolog.Logger
}

func NewDLQHandler(s service.DLQService, l zerolog.Logger) *DLQHandler {
	return &DLQHandler{service: s, logger: l}
}

// RegisterRoutes mounts the Pub/Sub push endpoint of the dead-letter subscription.
func (h *DLQHandler) RegisterRoutes(mux *http.ServeMux, pushAuthMw func(http.Handler) http.Handler) {
	mux.Handle("/dlq", pushAuthMw(http.HandlerFunc(h.RecordDLQ)))
}

// RecordDLQ godoc
// @Summary Record a dead-lettered generation job
// @Tags dlq
// @Accept json
// @Param message body dto.PubSubPushRequest true "Pub/Sub push message"
// @Success 204
// @Failure 400 {string} string "Invalid Pub/Sub message format"
// @Router /dlq [post]
func (h *DLQHandler) RecordDLQ(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.PubSubPushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid Pub/Sub message format", http.StatusBadRequest)
		return
	}
	// Validate message structure
	if req.Message.MessageID == "" {
		http.Error(w, "Invalid Pub/Sub message format: missing message ID", http.StatusBadRequest)
		return
	}

	h.logger.Info().
		Str("messageId", req.Message.MessageID).
		Str("subscription", req.Subscription).
		Msg("Processing dead-letter queue message")

	if err := h.service.ProcessAndSave(r.Context(), &req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to save DLQ message to database")
		// Still return 204 to Pub/Sub to prevent retries of a message that is already in the DLQ.
		// The error is logged for offline analysis.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
