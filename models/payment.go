package models

import "time"

// Payment status values
const (
	PaymentCreated = "CREATED"
	PaymentPaid    = "PAID"
)

// BookingPayment is the fee payment attached to a booking.
type BookingPayment struct {
	ID           int       `json:"id"`
	BookingID    string    `json:"booking_id"`
	Amount       float64   `json:"amount"`
	Status       string    `json:"status"`
	OrderID      string    `json:"order_id"`
	PaymentID    string    `json:"payment_id,omitempty"`
	RazorpaySign string    `json:"razorpay_signature,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type RazorpayOrder struct {
	OrderID  string  `json:"order_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Receipt  string  `json:"receipt"`
	KeyID    string  `json:"key_id,omitempty"`
}
