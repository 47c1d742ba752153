package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"counsellor-matching/errors"
	"counsellor-matching/logger"
	"counsellor-matching/models"

	"github.com/razorpay/razorpay-go"
)

const PaymentCurrency = "INR"

// PaymentStore persists booking payments.
type PaymentStore interface {
	CreatePayment(ctx context.Context, p *models.BookingPayment) error
	GetPaymentByOrderID(ctx context.Context, orderID string) (*models.BookingPayment, error)
	MarkPaymentPaid(ctx context.Context, orderID, paymentID, signature string) error
}

// BookingReader reads one booking.
type BookingReader interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
}

// OrderCreator creates a payment gateway order and returns its id.
type OrderCreator interface {
	CreateOrder(amountPaise int, currency, receipt string) (string, error)
}

// RazorpayOrders creates orders through the Razorpay API.
type RazorpayOrders struct {
	client *razorpay.Client
}

func NewRazorpayOrders(keyID, keySecret string) *RazorpayOrders {
	return &RazorpayOrders{client: razorpay.NewClient(keyID, keySecret)}
}

func (o *RazorpayOrders) CreateOrder(amountPaise int, currency, receipt string) (string, error) {
	resp, err := o.client.Order.Create(map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("error creating razorpay order: %w", err)
	}
	id, ok := resp["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("razorpay order response has no id")
	}
	return id, nil
}

// VerifyPaymentRequest is the body of POST /payments/verify.
type VerifyPaymentRequest struct {
	OrderID      string `json:"razorpay_order_id"`
	PaymentID    string `json:"razorpay_payment_id"`
	RazorpaySign string `json:"razorpay_signature"`
}

// PaymentService charges the counsellor's session fee for a booking.
type PaymentService struct {
	payments    PaymentStore
	bookings    BookingReader
	counsellors CounsellorLookup
	orders      OrderCreator
	keyID       string
	keySecret   string
}

func NewPaymentService(payments PaymentStore, bookings BookingReader, counsellors CounsellorLookup, orders OrderCreator, keyID, keySecret string) *PaymentService {
	return &PaymentService{
		payments:    payments,
		bookings:    bookings,
		counsellors: counsellors,
		orders:      orders,
		keyID:       keyID,
		keySecret:   keySecret,
	}
}

// ToPaise converts rupees to the gateway's integer minor unit.
func ToPaise(amount float64) int {
	return int(math.Round(amount * 100))
}

// Initiate creates an order for the booking's session fee.
func (s *PaymentService) Initiate(ctx context.Context, bookingID string) (*models.RazorpayOrder, error) {
	const op errors.Op = "services.PaymentService.Initiate"

	if s.orders == nil || s.keySecret == "" {
		return nil, errors.E(op, errors.Internal, "razorpay credentials not configured")
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, errors.E(op, err)
	}
	if b.Status == models.BookingCancelled {
		return nil, errors.E(op, errors.Conflict, "booking is cancelled")
	}

	c, err := s.counsellors.GetByID(ctx, b.CounsellorID)
	if err != nil {
		return nil, errors.E(op, err)
	}
	if c.Fees <= 0 {
		return nil, errors.E(op, errors.Invalid, "counsellor does not charge a fee")
	}

	// Razorpay receipts are limited to 40 characters.
	receipt := "rcpt_" + strings.ReplaceAll(b.ID, "-", "")
	orderID, err := s.orders.CreateOrder(ToPaise(c.Fees), PaymentCurrency, receipt)
	if err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}

	payment := &models.BookingPayment{
		BookingID: b.ID,
		Amount:    c.Fees,
		Status:    models.PaymentCreated,
		OrderID:   orderID,
	}
	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		return nil, errors.E(op, err)
	}

	logger.Info("Payment order %s created for booking %s (%.2f %s)", orderID, b.ID, c.Fees, PaymentCurrency)
	return &models.RazorpayOrder{
		OrderID:  orderID,
		Amount:   c.Fees,
		Currency: PaymentCurrency,
		Receipt:  receipt,
		KeyID:    s.keyID,
	}, nil
}

// Verify checks the checkout signature and marks the payment paid. Verifying
// an already paid order again succeeds.
func (s *PaymentService) Verify(ctx context.Context, req VerifyPaymentRequest) (*models.BookingPayment, error) {
	const op errors.Op = "services.PaymentService.Verify"

	if req.OrderID == "" || req.PaymentID == "" || req.RazorpaySign == "" {
		return nil, errors.E(op, errors.Invalid, "order id, payment id and signature are required")
	}
	if !VerifyPaymentSignature(req.OrderID, req.PaymentID, req.RazorpaySign, s.keySecret) {
		return nil, errors.E(op, errors.Unauthorized, "invalid payment signature")
	}

	payment, err := s.payments.GetPaymentByOrderID(ctx, req.OrderID)
	if err != nil {
		return nil, errors.E(op, err)
	}
	if payment.Status == models.PaymentPaid {
		return payment, nil
	}

	if err := s.payments.MarkPaymentPaid(ctx, req.OrderID, req.PaymentID, req.RazorpaySign); err != nil {
		return nil, errors.E(op, err)
	}
	payment.Status = models.PaymentPaid
	payment.PaymentID = req.PaymentID
	payment.RazorpaySign = req.RazorpaySign

	logger.Info("Payment %s verified for booking %s", req.PaymentID, payment.BookingID)
	return payment, nil
}

// VerifyPaymentSignature checks HMAC-SHA256(order_id|payment_id) against
// signature in constant time.
func VerifyPaymentSignature(orderID, paymentID, signature, secret string) bool {
	if secret == "" {
		return false
	}
	return hmac.Equal([]byte(sign(orderID+"|"+paymentID, secret)), []byte(signature))
}

func sign(payload, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}
