package handlers

import (
	"net/http"

	resp "counsellor-matching/http/response"
	"counsellor-matching/services"
	"counsellor-matching/utils"
)

// SubmitQuestionnaire stores a questionnaire and returns suggestions for it.
// POST /questionnaire
func (h *Handler) SubmitQuestionnaire(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req services.SubmitQuestionnaireRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		resp.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.Questionnaires.Submit(r.Context(), req)
	if err != nil {
		resp.FromError(w, err)
		return
	}
	resp.SuccessResponse(w, http.StatusCreated, "Questionnaire submitted", result)
}
