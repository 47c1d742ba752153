package services

import (
	"context"
	"crypto/hmac"
	"encoding/json"

	"counsellor-matching/errors"
	"counsellor-matching/logger"
	"counsellor-matching/models"
)

// RazorpayWebhookPayload is the envelope Razorpay posts to webhooks.
type RazorpayWebhookPayload struct {
	ID        string                 `json:"id"`
	Event     string                 `json:"event"`
	CreatedAt int64                  `json:"created_at"`
	Payload   map[string]interface{} `json:"payload"`
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header, an
// HMAC-SHA256 of the raw body keyed by the webhook secret.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(sign(string(body), secret)), []byte(signature))
}

// HandleWebhook marks the payment paid on payment.captured and order.paid.
// Other events are acknowledged and ignored. It returns the event name.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature, secret string) (string, error) {
	const op errors.Op = "services.PaymentService.HandleWebhook"

	if !VerifyWebhookSignature(body, signature, secret) {
		return "", errors.E(op, errors.Unauthorized, "invalid webhook signature")
	}

	var payload RazorpayWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", errors.E(op, errors.Invalid, "invalid payload format")
	}
	logger.Info("[WEBHOOK] Received: %s", payload.Event)

	switch payload.Event {
	case "payment.captured", "order.paid":
	default:
		logger.Debug("[WEBHOOK] Unhandled event type: %s - acknowledging", payload.Event)
		return payload.Event, nil
	}

	orderID, paymentID := paymentEntityIDs(payload.Payload)
	if orderID == "" || paymentID == "" {
		return payload.Event, errors.E(op, errors.Invalid, "payment entity missing order_id or id")
	}

	existing, err := s.payments.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		return payload.Event, errors.E(op, err)
	}
	if existing.Status == models.PaymentPaid {
		return payload.Event, nil
	}
	if err := s.payments.MarkPaymentPaid(ctx, orderID, paymentID, signature); err != nil {
		return payload.Event, errors.E(op, err)
	}

	logger.Info("[WEBHOOK] Payment %s captured for order %s", paymentID, orderID)
	return payload.Event, nil
}

// paymentEntityIDs reads payload.payment.entity.{order_id,id}.
func paymentEntityIDs(payload map[string]interface{}) (orderID, paymentID string) {
	payment, _ := payload["payment"].(map[string]interface{})
	entity, _ := payment["entity"].(map[string]interface{})
	orderID, _ = entity["order_id"].(string)
	paymentID, _ = entity["id"].(string)
	return orderID, paymentID
}
