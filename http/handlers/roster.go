package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	resp "counsellor-matching/http/response"
	"counsellor-matching/logger"
)

// maxUploadSize caps roster spreadsheets.
const maxUploadSize = 10 << 20

// ImportCounsellors upserts counsellors from an uploaded .xlsx roster.
// POST /counsellors/import (multipart field "file")
func (h *Handler) ImportCounsellors(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		logger.Warn("Error getting form file: %v", err)
		resp.ErrorResponse(w, http.StatusBadRequest, "Invalid file")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		resp.ErrorResponse(w, http.StatusBadRequest, "Only .xlsx files are supported")
		return
	}
	logger.Info("Processing roster upload: %s", header.Filename)

	summary, err := h.Roster.Import(r.Context(), file)
	if err != nil {
		resp.FromError(w, err)
		return
	}
	resp.SuccessResponse(w, http.StatusOK, "Roster imported", summary)
}
