package handlers

import (
	"net/http"

	resp "counsellor-matching/http/response"
	"counsellor-matching/utils"
)

// SuggestedCounsellors returns the top counsellors for a student.
// GET /counsellors/suggested?student_id=<uuid>&limit=5
func (h *Handler) SuggestedCounsellors(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	studentID, ok := optionalStudentID(w, r)
	if !ok {
		return
	}
	limit, err := utils.ParseIntParam(r, "limit", 0)
	if err != nil {
		resp.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	suggestions, err := h.Suggestions.Suggest(r.Context(), studentID, limit)
	if err != nil {
		resp.FromError(w, err)
		return
	}
	resp.SuccessResponse(w, http.StatusOK, "Suggested counsellors", suggestions)
}

// RankedCounsellors returns the full primary ranking.
// GET /counsellors/ranked?student_id=<uuid>
func (h *Handler) RankedCounsellors(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	studentID, ok := optionalStudentID(w, r)
	if !ok {
		return
	}

	ranked, err := h.Suggestions.Ranked(r.Context(), studentID)
	if err != nil {
		resp.FromError(w, err)
		return
	}
	resp.SuccessResponse(w, http.StatusOK, "Ranked counsellors", map[string]interface{}{
		"count":       len(ranked),
		"counsellors": ranked,
	})
}

// optionalStudentID reads student_id, which may be absent but must be a
// UUID when given.
func optionalStudentID(w http.ResponseWriter, r *http.Request) (string, bool) {
	studentID := utils.QueryParam(r, "student_id")
	if studentID == "" {
		return "", true
	}
	if err := utils.ValidateUUID("student_id", studentID); err != nil {
		resp.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return studentID, true
}
