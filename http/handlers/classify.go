package handlers

import (
	"net/http"
	"strings"

	resp "counsellor-matching/http/response"
	"counsellor-matching/services/classifier"
	"counsellor-matching/utils"
)

// Classify labels free text with the keyword classifier.
// POST /api/classify {"text": "..."} -> {"label": "..."}
//
// The reply is the bare classifier body, not the standard envelope, since
// the ranking engine's classifier client reads it directly.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req classifier.Request
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		resp.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		resp.ErrorResponse(w, http.StatusBadRequest, "text is required")
		return
	}

	resp.SendJSON(w, http.StatusOK, classifier.Response{Label: h.Classifier.Label(req.Text)})
}
