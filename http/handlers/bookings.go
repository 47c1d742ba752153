package handlers

import (
	"net/http"

	resp "counsellor-matching/http/response"
	"counsellor-matching/services"
	"counsellor-matching/utils"
)

// HandleBookings creates (POST) or lists (GET ?student_id=) bookings.
func (h *Handler) HandleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createBooking(w, r)
	case http.MethodGet:
		h.listBookings(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		resp.ErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *Handler) createBooking(w http.ResponseWriter, r *http.Request) {
	var req services.CreateBookingRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		resp.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	booking, err := h.Bookings.Create(r.Context(), req)
	if err != nil {
		resp.FromError(w, err)
		return
	}
	resp.SuccessResponse(w, http.StatusCreated, "Booking created", booking)
}

func (h *Handler) listBookings(w http.ResponseWriter, r *http.Request) {
	studentID := utils.QueryParam(r, "student_id")
	if studentID == "" {
		resp.ErrorResponse(w, http.StatusBadRequest, "student_id is required")
		return
	}

	bookings, err := h.Bookings.ListForStudent(r.Context(), studentID)
	if err != nil {
		resp.FromError(w, err)
		return
	}
	resp.SuccessResponse(w, http.StatusOK, "Bookings retrieved", map[string]interface{}{
		"count":    len(bookings),
		"bookings": bookings,
	})
}

// ConfirmBooking confirms a pending booking and issues its session link.
// POST /bookings/confirm {"booking_id": "..."}
func (h *Handler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		BookingID string `json:"booking_id"`
	}
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		resp.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	booking, err := h.Bookings.Confirm(r.Context(), req.BookingID)
	if err != nil {
		resp.FromError(w, err)
		return
	}
	resp.SuccessResponse(w, http.StatusOK, "Booking confirmed", booking)
}
