package handler

import (
	"net/http"

	"boothdesk/internal/api/v1/dto"
	"boothdesk/internal/model"
	"boothdesk/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ChecklistHandler serves /events/{eventId}/checklist/... and the template catalogue.
type ChecklistHandler struct {
	checklistService service.ChecklistService
	validate         *validator.Validate
	logger           zerolog.Logger
}

func NewChecklistHandler(checklistService service.ChecklistService, v *validator.Validate, logger zerolog.Logger) *ChecklistHandler {
	return &ChecklistHandler{checklistService: checklistService, validate: v, logger: logger}
}

// RegisterRoutes mounts the template catalogue. Event checklists are routed
// through EventHandler.
func (h *ChecklistHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/checklist-templates", authMw(http.HandlerFunc(h.listTemplates)))
}

// listTemplates godoc
// @Summary List built-in checklist templates
// @Tags checklist
// @Produce json
// @Success 200 {array} service.ChecklistTemplate
// @Router /checklist-templates [get]
func (h *ChecklistHandler) listTemplates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, service.ChecklistTemplates())
}

func (h *ChecklistHandler) serveEvent(w http.ResponseWriter, r *http.Request, userID, eventID string, rest []string) {
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			h.list(w, r, userID, eventID)
		case http.MethodPost:
			h.add(w, r, userID, eventID)
		case http.MethodDelete:
			h.removeAll(w, r, userID, eventID)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	case len(rest) == 1 && rest[0] == "order":
		h.only(w, r, http.MethodPut, func() { h.reorder(w, r, userID, eventID) })
	case len(rest) == 1 && rest[0] == "copy":
		h.only(w, r, http.MethodPost, func() { h.copyEvent(w, r, userID, eventID) })
	case len(rest) == 1 && rest[0] == "template":
		h.only(w, r, http.MethodPost, func() { h.applyTemplate(w, r, userID, eventID) })
	case len(rest) == 1 && rest[0] == "bulk":
		h.only(w, r, http.MethodPost, func() { h.applyBulk(w, r, userID, eventID) })
	case len(rest) == 1:
		if !validID(w, rest[0]) {
			return
		}
		switch r.Method {
		case http.MethodPatch:
			h.update(w, r, userID, rest[0])
		case http.MethodDelete:
			h.remove(w, r, userID, rest[0])
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	case len(rest) == 2 && rest[1] == "toggle":
		if !validID(w, rest[0]) {
			return
		}
		h.only(w, r, http.MethodPost, func() { h.toggle(w, r, userID, rest[0]) })
	default:
		http.NotFound(w, r)
	}
}

func (h *ChecklistHandler) only(w http.ResponseWriter, r *http.Request, method string, fn func()) {
	if r.Method != method {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	fn()
}

// list godoc
// @Summary List the checklist of an event
// @Description Items are ordered by phase (pre, during, post) then position.
// @Tags checklist
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {array} model.ChecklistItem
// @Failure 404 {string} string "event not found"
// @Router /events/{eventId}/checklist [get]
func (h *ChecklistHandler) list(w http.ResponseWriter, r *http.Request, userID, eventID string) {
	items, err := h.checklistService.List(r.Context(), userID, eventID)
	if err != nil {
		writeError(w, h.logger, err, "Failed to retrieve checklist")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// add godoc
// @Summary Add a checklist item
// @Description Appends the item at the end of its phase.
// @Tags checklist
// @Accept json
// @Produce json
// @Param eventId path string true "Event ID"
// @Param item body dto.ChecklistItemCreateDTO true "Item"
// @Success 201 {object} model.ChecklistItem
// @Failure 400 {string} string "invalid checklist phase"
// @Failure 403 {string} string "plan limit reached"
// @Router /events/{eventId}/checklist [post]
func (h *ChecklistHandler) add(w http.ResponseWriter, r *http.Request, userID, eventID string) {
	var req dto.ChecklistItemCreateDTO
	if !decode(w, r, h.validate.Struct, &req) {
		return
	}
	item, err := h.checklistService.Add(r.Context(), userID, eventID, model.Phase(req.Phase), req.Text)
	if err != nil {
		writeError(w, h.logger, err, "Failed to add checklist item")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// removeAll godoc
// @Summary Clear the checklist of an event
// @Tags checklist
// @Param eventId path string true "Event ID"
// @Success 204
// @Router /events/{eventId}/checklist [delete]
func (h *ChecklistHandler) removeAll(w http.ResponseWriter, r *http.Request, userID, eventID string) {
	if err := h.checklistService.RemoveAll(r.Context(), userID, eventID); err != nil {
		writeError(w, h.logger, err, "Failed to clear checklist")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reorder godoc
// @Summary Reorder one phase of the checklist
// @Description ids must be exactly the ids of the phase; position becomes the index.
// @Tags checklist
// @Accept json
// @Produce json
// @Param eventId path string true "Event ID"
// @Param order body dto.ChecklistReorderDTO true "New order"
// @Success 200 {array} model.ChecklistItem
// @Failure 409 {string} string "ordered ids do not match the phase partition"
// @Router /events/{eventId}/checklist/order [put]
func (h *ChecklistHandler) reorder(w http.ResponseWriter, r *http.Request, userID, eventID string) {
	var req dto.ChecklistReorderDTO
	if !decode(w, r, h.validate.Struct, &req) {
		return
	}
	if err := h.checklistService.Reorder(r.Context(), userID, eventID, model.Phase(req.Phase), req.IDs); err != nil {
		writeError(w, h.logger, err, "Failed to reorder checklist")
		return
	}
	h.list(w, r, userID, eventID)
}

// copyEvent godoc
// @Summary Copy the checklist of another event
// @Tags checklist
// @Accept json
// @Produce json
// @Param eventId path string true "Target event ID"
// @Param copy body dto.ChecklistCopyDTO true "Source event"
// @Success 200 {array} model.ChecklistItem
// @Router /events/{eventId}/checklist/copy [post]
func (h *ChecklistHandler) copyEvent(w http.ResponseWriter, r *http.Request, userID, eventID string) {
	var req dto.ChecklistCopyDTO
	if !decode(w, r, h.validate.Struct, &req) {
		return
	}
	items, err := h.checklistService.CopyEvent(r.Context(), userID, req.SourceEventID, eventID, req.Replace)
	if err != nil {
		writeError(w, h.logger, err, "Failed to copy checklist")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// applyTemplate godoc
// @Summary Apply a built-in checklist template
// @Tags checklist
// @Accept json
// @Produce json
// @Param eventId path string true "Event ID"
// @Param template body dto.ChecklistTemplateDTO true "Template"
// @Success 200 {array} model.ChecklistItem
// @Failure 400 {string} string "unknown checklist template"
// @Router /events/{eventId}/checklist/template [post]
func (h *ChecklistHandler) applyTemplate(w http.ResponseWriter, r *http.Request, userID, eventID string) {
	var req dto.ChecklistTemplateDTO
	if !decode(w, r, h.validate.Struct, &req) {
		return
	}
	items, err := h.checklistService.ApplyTemplate(r.Context(), userID, eventID, req.Template, req.Replace)
	if err != nil {
		writeError(w, h.logger, err, "Failed to apply checklist template")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// applyBulk godoc
// @Summary Add several checklist items at once
// @Tags checklist
// @Accept json
// @Produce json
// @Param eventId path string true "Event ID"
// @Param items body dto.ChecklistBulkDTO true "Items"
// @Success 200 {array} model.ChecklistItem
// @Router /events/{eventId}/checklist/bulk [post]
func (h *ChecklistHandler) applyBulk(w http.ResponseWriter, r *http.Request, userID, eventID string) {
	var req dto.ChecklistBulkDTO
	if !decode(w, r, h.validate.Struct, &req) {
		return
	}
	seeds := make([]model.ChecklistSeed, len(req.Items))
	for i, it := range req.Items {
		seeds[i] = model.ChecklistSeed{Phase: model.Phase(it.Phase), Text: it.Text}
	}
	items, err := h.checklistService.ApplyBulk(r.Context(), userID, eventID, seeds, req.Replace)
	if err != nil {
		writeError(w, h.logger, err, "Failed to add checklist items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// update godoc
// @Summary Edit a checklist item
// @Tags checklist
// @Accept json
// @Produce json
// @Param eventId path string true "Event ID"
// @Param itemId path string true "Item ID"
// @Param item body dto.ChecklistItemUpdateDTO true "Fields to change"
// @Success 200 {object} model.ChecklistItem
// @Failure 404 {string} string "checklist item not found"
// @Router /events/{eventId}/checklist/{itemId} [patch]
func (h *ChecklistHandler) update(w http.ResponseWriter, r *http.Request, userID, itemID string) {
	var req dto.ChecklistItemUpdateDTO
	if !decode(w, r, h.validate.Struct, &req) {
		return
	}
	item, err := h.checklistService.Update(r.Context(), userID, itemID, model.ChecklistPatch{Text: req.Text, Completed: req.Completed})
	if err != nil {
		writeError(w, h.logger, err, "Failed to update checklist item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// toggle godoc
// @Summary Flip the completed flag of a checklist item
// @Tags checklist
// @Produce json
// @Param eventId path string true "Event ID"
// @Param itemId path string true "Item ID"
// @Success 200 {object} model.ChecklistItem
// @Router /events/{eventId}/checklist/{itemId}/toggle [post]
func (h *ChecklistHandler) toggle(w http.ResponseWriter, r *http.Request, userID, itemID string) {
	item, err := h.checklistService.Toggle(r.Context(), userID, itemID)
	if err != nil {
		writeError(w, h.logger, err, "Failed to toggle checklist item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// remove godoc
// @Summary Delete a checklist item
// @Tags checklist
// @Param eventId path string true "Event ID"
// @Param itemId path string true "Item ID"
// @Success 204
// @Router /events/{eventId}/checklist/{itemId} [delete]
func (h *ChecklistHandler) remove(w http.ResponseWriter, r *http.Request, userID, itemID string) {
	if err := h.checklistService.Remove(r.Context(), userID, itemID); err != nil {
		writeError(w, h.logger, err, "Failed to delete checklist item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
