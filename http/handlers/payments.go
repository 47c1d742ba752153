package handlers

import (
	"io"
	"net/http"

	resp "counsellor-matching/http/response"
	"counsellor-matching/services"
	"counsellor-matching/utils"
)

// InitiatePayment creates a Razorpay order for a booking's session fee.
// POST /payments/initiate {"booking_id": "..."}
func (h *Handler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		BookingID string `json:"booking_id"`
	}
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		resp.ErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := utils.ValidateUUID("booking_id", req.BookingID); err != nil {
		resp.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.Payments.Initiate(r.Context(), req.BookingID)
	if err != nil {
		resp.FromError(w, err)
		return
	}
	resp.SuccessResponse(w, http.StatusOK, "Payment order created", order)
}

// VerifyPayment checks the checkout signature and marks the payment paid.
// POST /payments/verify
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req services.VerifyPaymentRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		resp.ErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	payment, err := h.Payments.Verify(r.Context(), req)
	if err != nil {
		resp.FromError(w, err)
		return
	}
	resp.SuccessResponse(w, http.StatusOK, "Payment verified successfully", payment)
}

// PaymentWebhook receives Razorpay events.
// POST /payments/webhook (X-Razorpay-Signature header)
func (h *Handler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, utils.MaxRequestBody))
	if err != nil {
		resp.ErrorResponse(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	event, err := h.Payments.HandleWebhook(r.Context(), body, r.Header.Get("X-Razorpay-Signature"), h.WebhookSecret)
	if err != nil {
		resp.FromError(w, err)
		return
	}
	resp.SuccessResponse(w, http.StatusOK, "Webhook processed", map[string]string{"event": event})
}
