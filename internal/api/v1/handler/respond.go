package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"boothdesk/internal/generation"
	"boothdesk/internal/middleware"
	"boothdesk/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// requireUser returns the authenticated user id or answers 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// decode reads the JSON body into dst and validates it.
func decode(w http.ResponseWriter, r *http.Request, v validatorFunc, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return false
	}
	if err := v(dst); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

type validatorFunc func(any) error

// validID answers 400 unless id is a UUID.
func validID(w http.ResponseWriter, id string) bool {
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return false
	}
	return true
}

// pathParts splits the path below prefix into its segments.
func pathParts(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

// errorStatus maps service errors to HTTP statuses. Unknown errors are 500.
func errorStatus(err error) int {
	var genErr *generation.StatusError
	switch {
	case errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrChecklistItemNotFound),
		errors.Is(err, service.ErrLeadNotFound),
		errors.Is(err, service.ErrContentNotFound),
		errors.Is(err, service.ErrProfileNotFound),
		errors.Is(err, service.ErrContractNotUploaded):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidPhase),
		errors.Is(err, service.ErrEmptyText),
		errors.Is(err, service.ErrUnknownTemplate):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrReorderMismatch),
		errors.Is(err, service.ErrNoStripeCustomer):
		return http.StatusConflict
	case errors.Is(err, service.ErrLimitReached),
		errors.Is(err, service.ErrFeatureLocked):
		return http.StatusForbidden
	case errors.Is(err, service.ErrStorageDisabled),
		errors.Is(err, service.ErrQueueDisabled),
		errors.Is(err, service.ErrBillingDisabled):
		return http.StatusServiceUnavailable
	case errors.As(err, &genErr), errors.Is(err, generation.ErrEmptyResult):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError answers with the status of err. Internal errors are logged and
// their text is not exposed.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error, msg string) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Msg(msg)
		http.Error(w, msg, status)
		return
	}
	if status == http.StatusBadGateway {
		logger.Warn().Err(err).Msg(msg)
		http.Error(w, msg, status)
		return
	}
	http.Error(w, errorMessage(err), status)
}

// errorMessage strips operation prefixes so clients see the sentinel text.
func errorMessage(err error) string {
	var ce *service.ChecklistError
	if errors.As(err, &ce) && ce.Err != nil {
		return ce.Err.Error()
	}
	return err.Error()
}
