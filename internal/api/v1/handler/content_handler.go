package handler

import (
	"net/http"
	"strconv"
	"time"

	"boothdesk/internal/api/v1/dto"
	"boothdesk/internal/model"
	"boothdesk/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type ContentHandler struct {
	contentService service.ContentService
	validate       *validator.Validate
	logger         zerolog.Logger
	now            func() time.Time
}

func NewContentHandler(contentService service.ContentService, v *validator.Validate, logger zerolog.Logger) *ContentHandler {
	return &ContentHandler{contentService: contentService, validate: v, logger: logger, now: time.Now}
}

// RegisterRoutes mounts content calendar and AI routes
func (h *ContentHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/contents", authMw(http.HandlerFunc(h.handleContents)))
	mux.Handle("/contents/", authMw(http.HandlerFunc(h.handleContent)))
	mux.Handle("/ai/generate", authMw(http.HandlerFunc(h.generate)))
}

func (h *ContentHandler) handleContents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listContents(w, r)
	case http.MethodPost:
		h.createContent(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ContentHandler) handleContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	parts := pathParts(r.URL.Path, "/contents/")
	if len(parts) == 0 || len(parts) > 2 {
		http.NotFound(w, r)
		return
	}
	contentID := parts[0]
	if !validID(w, contentID) {
		return
	}
	switch {
	case len(parts) == 2 && parts[1] == "generate" && r.Method == http.MethodPost:
		h.enqueue(w, r, userID, contentID)
	case len(parts) == 2:
		http.NotFound(w, r)
	case r.Method == http.MethodPatch:
		h.updateContent(w, r, userID, contentID)
	case r.Method == http.MethodDelete:
		h.deleteContent(w, r, userID, contentID)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(dto.DateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// listContents godoc
// @Summary List the content calendar of a month
// @Tags contents
// @Produce json
// @Param year query int false "Year (defaults to current)"
// @Param month query int false "Month 1-12 (defaults to current)"
// @Success 200 {array} model.Content
// @Failure 400 {string} string "Invalid year or month"
// @Router /contents [get]
func (h *ContentHandler) listContents(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	now := h.now()
	year, month := now.Year(), int(now.Month())
	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			http.Error(w, "Invalid year", http.StatusBadRequest)
			return
		}
		year = y
	}
	if v := q.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			http.Error(w, "Invalid month", http.StatusBadRequest)
			return
		}
		month = m
	}

	contents, err := h.contentService.ListMonth(r.Context(), userID, year, time.Month(month))
	if err != nil {
		writeError(w, h.logger, err, "Failed to retrieve contents")
		return
	}
	writeJSON(w, http.StatusOK, contents)
}

// createContent godoc
// @Summary Add an entry to the content calendar
// @Tags contents
// @Accept json
// @Produce json
// @Param content body dto.ContentCreateDTO true "Content"
// @Success 201 {object} model.Content
// @Failure 403 {string} string "plan limit reached"
// @Router /contents [post]
func (h *ContentHandler) createContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.ContentCreateDTO
	if !decode(w, r, h.validate.Struct, &req) {
		return
	}
	scheduled, err := parseDate(&req.ScheduledFor)
	if err != nil {
		http.Error(w, "Invalid scheduled_for", http.StatusBadRequest)
		return
	}
	created, err := h.contentService.Create(r.Context(), &model.Content{
		UserID:       userID,
		ScheduledFor: *scheduled,
		ContentType:  req.ContentType,
		EventType:    req.EventType,
		Objective:    req.Objective,
		MainIdea:     req.MainIdea,
		Status:       req.Status,
		Generated:    req.Generated,
	})
	if err != nil {
		writeError(w, h.logger, err, "Failed to create content")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// updateContent godoc
// @Summary Update a calendar entry
// @Tags contents
// @Accept json
// @Produce json
// @Param contentId path string true "Content ID"
// @Param content body dto.ContentUpdateDTO true "Fields to change"
// @Success 200 {object} model.Content
// @Failure 404 {string} string "content not found"
// @Router /contents/{contentId} [patch]
func (h *ContentHandler) updateContent(w http.ResponseWriter, r *http.Request, userID, contentID string) {
	var req dto.ContentUpdateDTO
	if !decode(w, r, h.validate.Struct, &req) {
		return
	}
	scheduled, err := parseDate(req.ScheduledFor)
	if err != nil {
		http.Error(w, "Invalid scheduled_for", http.StatusBadRequest)
		return
	}
	updated, err := h.contentService.Update(r.Context(), userID, contentID, model.ContentPatch{
		ScheduledFor: scheduled,
		ContentType:  req.ContentType,
		EventType:    req.EventType,
		Objective:    req.Objective,
		MainIdea:     req.MainIdea,
		Status:       req.Status,
		Generated:    req.Generated,
	})
	if err != nil {
		writeError(w, h.logger, err, "Failed to update content")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// deleteContent godoc
// @Summary Delete a calendar entry
// @Tags contents
// @Param contentId path string true "Content ID"
// @Success 204
// @Router /contents/{contentId} [delete]
func (h *ContentHandler) deleteContent(w http.ResponseWriter, r *http.Request, userID, contentID string) {
	if err := h.contentService.Delete(r.Context(), userID, contentID); err != nil {
		writeError(w, h.logger, err, "Failed to delete content")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// enqueue godoc
// @Summary Queue AI generation for a calendar entry
// @Description The entry becomes pending; a worker fills it in or marks it failed.
// @Tags contents
// @Produce json
// @Param contentId path string true "Content ID"
// @Success 202 {object} model.Content
// @Failure 503 {string} string "generation queue is not configured"
// @Router /contents/{contentId}/generate [post]
func (h *ContentHandler) enqueue(w http.ResponseWriter, r *http.Request, userID, contentID string) {
	c, err := h.contentService.Enqueue(r.Context(), userID, contentID)
	if err != nil {
		writeError(w, h.logger, err, "Failed to queue generation")
		return
	}
	writeJSON(w, http.StatusAccepted, c)
}

// generate godoc
// @Summary Generate a social media post
// @Description Calls the AI endpoint synchronously. Nothing is stored.
// @Tags ai
// @Accept json
// @Produce json
// @Param request body dto.GenerateRequestDTO true "Generation request"
// @Success 200 {object} model.GeneratedContent
// @Failure 502 {string} string "Failed to generate content"
// @Router /ai/generate [post]
func (h *ContentHandler) generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.GenerateRequestDTO
	if !decode(w, r, h.validate.Struct, &req) {
		return
	}
	out, err := h.contentService.Generate(r.Context(), userID, model.GenerationRequest{
		ContentType: req.ContentType,
		EventType:   req.EventType,
		Objective:   req.Objective,
		MainIdea:    req.MainIdea,
	})
	if err != nil {
		writeError(w, h.logger, err, "Failed to generate content")
		return
	}
	writeJSON(w, http.StatusOK, out)
}
