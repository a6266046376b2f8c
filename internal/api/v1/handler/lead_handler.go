package handler

import (
	"bytes"
	"net/http"
	"time"

	"boothdesk/internal/api/v1/dto"
	"boothdesk/internal/model"
	"boothdesk/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type LeadHandler struct {
	leadService service.LeadService
	validate    *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

func NewLeadHandler(leadService service.LeadService, v *validator.Validate, logger zerolog.Logger) *LeadHandler {
	return &LeadHandler{leadService: leadService, validate: v, logger: logger, now: time.Now}
}

// RegisterRoutes mounts lead routes
func (h *LeadHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/leads", authMw(http.HandlerFunc(h.handleLeads)))
	mux.Handle("/leads/", authMw(http.HandlerFunc(h.handleLead)))
}

func (h *LeadHandler) handleLeads(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listLeads(w, r)
	case http.MethodPost:
		h.createLead(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (h *LeadHandler) handleLead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	parts := pathParts(r.URL.Path, "/leads/")
	if len(parts) != 1 {
		http.NotFound(w, r)
		return
	}
	if parts[0] == "export" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h.exportLeads(w, r, userID)
		return
	}
	if !validID(w, parts[0]) {
		return
	}
	switch r.Method {
	case http.MethodPatch:
		h.updateLead(w, r, userID, parts[0])
	case http.MethodDelete:
		h.deleteLead(w, r, userID, parts[0])
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// listLeads godoc
// @Summary List leads
// @Tags leads
// @Produce json
// @Success 200 {array} model.Lead
// @Router /leads [get]
func (h *LeadHandler) listLeads(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	leads, err := h.leadService.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err, "Failed to retrieve leads")
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

// createLead godoc
// @Summary Create a lead
// @Tags leads
// @Accept json
// @Produce json
// @Param lead body dto.LeadCreateDTO true "Lead"
// @Success 201 {object} model.Lead
// @Failure 403 {string} string "plan limit reached"
// @Router /leads [post]
func (h *LeadHandler) createLead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.LeadCreateDTO
	if !decode(w, r, h.validate.Struct, &req) {
		return
	}
	created, err := h.leadService.Create(r.Context(), &model.Lead{
		UserID:    userID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		EventType: req.EventType,
		EventDate: req.EventDate,
		Status:    req.Status,
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(w, h.logger, err, "Failed to create lead")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// updateLead godoc
// @Summary Update a lead
// @Tags leads
// @Accept json
// @Produce json
// @Param leadId path string true "Lead ID"
// @Param lead body dto.LeadUpdateDTO true "Fields to change"
// @Success 200 {object} model.Lead
// @Failure 404 {string} string "lead not found"
// @Router /leads/{leadId} [patch]
func (h *LeadHandler) updateLead(w http.ResponseWriter, r *http.Request, userID, leadID string) {
	var req dto.LeadUpdateDTO
	if !decode(w, r, h.validate.Struct, &req) {
		return
	}
	updated, err := h.leadService.Update(r.Context(), userID, leadID, model.LeadPatch{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		EventType: req.EventType,
		EventDate: req.EventDate,
		Status:    req.Status,
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(w, h.logger, err, "Failed to update lead")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// deleteLead godoc
// @Summary Delete a lead
// @Tags leads
// @Param leadId path string true "Lead ID"
// @Success 204
// @Router /leads/{leadId} [delete]
func (h *LeadHandler) deleteLead(w http.ResponseWriter, r *http.Request, userID, leadID string) {
	if err := h.leadService.Delete(r.Context(), userID, leadID); err != nil {
		writeError(w, h.logger, err, "Failed to delete lead")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// exportLeads godoc
// @Summary Export leads as CSV
// @Tags leads
// @Produce text/csv
// @Success 200 {string} string "CSV file"
// @Failure 403 {string} string "feature not available on current plan"
// @Router /leads/export [get]
func (h *LeadHandler) exportLeads(w http.ResponseWriter, r *http.Request, userID string) {
	// Buffer so a failure can still be answered with a proper status.
	var buf bytes.Buffer
	if err := h.leadService.ExportCSV(r.Context(), userID, &buf); err != nil {
		writeError(w, h.logger, err, "Failed to export leads")
		return
	}
	filename := "leads-" + h.now().Format(dto.DateLayout) + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
