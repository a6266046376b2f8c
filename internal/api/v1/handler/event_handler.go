package handler

import (
	"net/http"

	"boothdesk/internal/api/v1/dto"
	"boothdesk/internal/model"
	"boothdesk/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// EventHandler serves /events and dispatches the checklist and contract
// sub-resources of an event.
type EventHandler struct {
	eventService service.EventService
	checklist    *ChecklistHandler
	contract     *ContractHandler
	validate     *validator.Validate
	logger       zerolog.Logger
}

func NewEventHandler(eventService service.EventService, checklist *ChecklistHandler, contract *ContractHandler, v *validator.Validate, logger zerolog.Logger) *EventHandler {
	return &EventHandler{eventService: eventService, checklist: checklist, contract: contract, validate: v, logger: logger}
}

// RegisterRoutes mounts event routes
func (h *EventHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/events", authMw(http.HandlerFunc(h.handleEvents)))
	mux.Handle("/events/", authMw(http.HandlerFunc(h.handleEvent)))
}

func (h *EventHandler) handleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listEvents(w, r)
	case http.MethodPost:
		h.createEvent(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (h *EventHandler) handleEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	parts := pathParts(r.URL.Path, "/events/")
	if len(parts) == 0 {
		http.NotFound(w, r)
		return
	}
	eventID := parts[0]
	if !validID(w, eventID) {
		return
	}

	if len(parts) > 1 {
		switch parts[1] {
		case "checklist":
			h.checklist.serveEvent(w, r, userID, eventID, parts[2:])
		case "contract":
			h.contract.serveEvent(w, r, userID, eventID, parts[2:])
		default:
			http.NotFound(w, r)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getEvent(w, r, userID, eventID)
	case http.MethodPatch:
		h.updateEvent(w, r, userID, eventID)
	case http.MethodDelete:
		h.deleteEvent(w, r, userID, eventID)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// listEvents godoc
// @Summary List events
// @Tags events
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {array} model.Event
// @Router /events [get]
func (h *EventHandler) listEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	status := r.URL.Query().Get("status")
	if err := h.validate.Var(status, "omitempty,oneof=planned confirmed done cancelled"); err != nil {
		http.Error(w, "Invalid status filter", http.StatusBadRequest)
		return
	}
	events, err := h.eventService.List(r.Context(), userID, status)
	if err != nil {
		writeError(w, h.logger, err, "Failed to retrieve events")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// createEvent godoc
// @Summary Create an event
// @Description Planned and confirmed events count against the active-event limit of the plan.
// @Tags events
// @Accept json
// @Produce json
// @Param event body dto.EventCreateDTO true "Event"
// @Success 201 {object} model.Event
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 403 {string} string "plan limit reached"
// @Router /events [post]
func (h *EventHandler) createEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.EventCreateDTO
	if !decode(w, r, h.validate.Struct, &req) {
		return
	}
	created, err := h.eventService.Create(r.Context(), &model.Event{
		UserID:     userID,
		Title:      req.Title,
		EventType:  req.EventType,
		ClientName: req.ClientName,
		Location:   req.Location,
		StartsAt:   req.StartsAt,
		Status:     req.Status,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(w, h.logger, err, "Failed to create event")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// getEvent godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} model.Event
// @Failure 404 {string} string "event not found"
// @Router /events/{eventId} [get]
func (h *EventHandler) getEvent(w http.ResponseWriter, r *http.Request, userID, eventID string) {
	e, err := h.eventService.Get(r.Context(), userID, eventID)
	if err != nil {
		writeError(w, h.logger, err, "Failed to retrieve event")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// updateEvent godoc
// @Summary Update an event
// @Tags events
// @Accept json
// @Produce json
// @Param eventId path string true "Event ID"
// @Param event body dto.EventUpdateDTO true "Fields to change"
// @Success 200 {object} model.Event
// @Failure 403 {string} string "plan limit reached"
// @Failure 404 {string} string "event not found"
// @Router /events/{eventId} [patch]
func (h *EventHandler) updateEvent(w http.ResponseWriter, r *http.Request, userID, eventID string) {
	var req dto.EventUpdateDTO
	if !decode(w, r, h.validate.Struct, &req) {
		return
	}
	updated, err := h.eventService.Update(r.Context(), userID, eventID, model.EventPatch{
		Title:      req.Title,
		EventType:  req.EventType,
		ClientName: req.ClientName,
		Location:   req.Location,
		StartsAt:   req.StartsAt,
		Status:     req.Status,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(w, h.logger, err, "Failed to update event")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// deleteEvent godoc
// @Summary Delete an event and its checklist
// @Tags events
// @Param eventId path string true "Event ID"
// @Success 204
// @Failure 404 {string} string "event not found"
// @Router /events/{eventId} [delete]
func (h *EventHandler) deleteEvent(w http.ResponseWriter, r *http.Request, userID, eventID string) {
	if err := h.eventService.Delete(r.Context(), userID, eventID); err != nil {
		writeError(w, h.logger, err, "Failed to delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
