package handler

import (
	"net/http"

	"boothdesk/internal/service"

	"github.com/rs/zerolog"
)

// ContractHandler serves /events/{eventId}/contract.
type ContractHandler struct {
	contractService service.ContractService
	logger          zerolog.Logger
}

func NewContractHandler(contractService service.ContractService, logger zerolog.Logger) *ContractHandler {
	return &ContractHandler{contractService: contractService, logger: logger}
}

func (h *ContractHandler) serveEvent(w http.ResponseWriter, r *http.Request, userID, eventID string, rest []string) {
	switch {
	case len(rest) == 0 && r.Method == http.MethodPost:
		h.uploadURL(w, r, userID, eventID)
	case len(rest) == 0 && r.Method == http.MethodGet:
		h.downloadURL(w, r, userID, eventID)
	case len(rest) == 0 && r.Method == http.MethodDelete:
		h.remove(w, r, userID, eventID)
	case len(rest) == 1 && rest[0] == "confirm" && r.Method == http.MethodPost:
		h.confirm(w, r, userID, eventID)
	case len(rest) <= 1:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

// uploadURL godoc
// @Summary Get a presigned URL to upload the contract PDF
// @Description The client PUTs the file to the URL, then calls confirm.
// @Tags contracts
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} service.ContractURL
// @Failure 403 {string} string "feature not available on current plan"
// @Failure 503 {string} string "file storage is not configured"
// @Router /events/{eventId}/contract [post]
func (h *ContractHandler) uploadURL(w http.ResponseWriter, r *http.Request, userID, eventID string) {
	u, err := h.contractService.UploadURL(r.Context(), userID, eventID)
	if err != nil {
		writeError(w, h.logger, err, "Failed to generate upload URL")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// downloadURL godoc
// @Summary Get a presigned URL to download the contract PDF
// @Tags contracts
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} service.ContractURL
// @Failure 404 {string} string "contract not uploaded"
// @Router /events/{eventId}/contract [get]
func (h *ContractHandler) downloadURL(w http.ResponseWriter, r *http.Request, userID, eventID string) {
	u, err := h.contractService.DownloadURL(r.Context(), userID, eventID)
	if err != nil {
		writeError(w, h.logger, err, "Failed to generate download URL")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// confirm godoc
// @Summary Confirm that the contract upload completed
// @Tags contracts
// @Param eventId path string true "Event ID"
// @Success 204
// @Failure 404 {string} string "contract not uploaded"
// @Router /events/{eventId}/contract/confirm [post]
func (h *ContractHandler) confirm(w http.ResponseWriter, r *http.Request, userID, eventID string) {
	if err := h.contractService.Confirm(r.Context(), userID, eventID); err != nil {
		writeError(w, h.logger, err, "Failed to confirm contract upload")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// remove godoc
// @Summary Delete the contract of an event
// @Tags contracts
// @Param eventId path string true "Event ID"
// @Success 204
// @Router /events/{eventId}/contract [delete]
func (h *ContractHandler) remove(w http.ResponseWriter, r *http.Request, userID, eventID string) {
	if err := h.contractService.Remove(r.Context(), userID, eventID); err != nil {
		writeError(w, h.logger, err, "Failed to delete contract")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
