package handler

import (
	"errors"
	"net/http"

	"boothdesk/internal/api/v1/dto"
	"boothdesk/internal/model"
	"boothdesk/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	userService   service.UserService
	accessService service.AccessService
	validate      *validator.Validate
	logger        zerolog.Logger
}

func NewUserHandler(userService service.UserService, accessService service.AccessService, v *validator.Validate, logger zerolog.Logger) *UserHandler {
	return &UserHandler{userService: userService, accessService: accessService, validate: v, logger: logger}
}

// RegisterRoutes mounts v1 user routes
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/users/me", authMw(http.HandlerFunc(h.handleUsers)))
	mux.Handle("/users/me/access", authMw(http.HandlerFunc(h.getAccess)))
}

func (h *UserHandler) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.saveUser(w, r)
	case http.MethodGet:
		h.getUser(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// saveUser godoc
// @Summary Create or update the business profile
// @Tags users
// @Accept json
// @Produce json
// @Param profile body dto.ProfileSaveDTO true "Profile"
// @Success 200 {object} model.Profile
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 401 {string} string "Unauthorized"
// @Router /users/me [post]
func (h *UserHandler) saveUser(w http.ResponseWriter, r *http.Request) {
	// 1. Extract UserID from context
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	// 2. Decode and validate DTO
	var req dto.ProfileSaveDTO
	if !decode(w, r, h.validate.Struct, &req) {
		return
	}

	// 3. Call service to upsert the profile
	saved, err := h.userService.Save(r.Context(), &model.Profile{
		UserID:       userID,
		BusinessName: req.BusinessName,
		Email:        req.Email,
	})
	if err != nil {
		writeError(w, h.logger, err, "Failed to save profile")
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// getUser godoc
// @Summary Get the business profile
// @Tags users
// @Produce json
// @Success 200 {object} model.Profile
// @Failure 404 {string} string "profile not found"
// @Router /users/me [get]
func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	p, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeError(w, h.logger, err, "Failed to retrieve profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// getAccess godoc
// @Summary Get the access phase of the account
// @Description Evaluates trial, grace and limited phases from the account age and premium flag.
// @Tags users
// @Produce json
// @Success 200 {object} access.Info
// @Router /users/me/access [get]
func (h *UserHandler) getAccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	info, err := h.accessService.GetAccessInfo(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err, "Failed to evaluate access")
		return
	}
	writeJSON(w, http.StatusOK, info)
}
