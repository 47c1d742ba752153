package handlers

import (
	"database/sql"
	"net/http"

	resp "counsellor-matching/http/response"
	"counsellor-matching/services"
	"counsellor-matching/services/classifier"
)

// Handler serves the HTTP API over the application services.
type Handler struct {
	Suggestions    *services.SuggestionService
	Questionnaires *services.QuestionnaireService
	Bookings       *services.BookingService
	Payments       *services.PaymentService
	Roster         *services.RosterService
	Classifier     *classifier.KeywordClassifier
	WebhookSecret  string
	DB             *sql.DB
}

// allowMethod writes 405 and returns false when r does not use method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		resp.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}
