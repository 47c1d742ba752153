package http

import (
	"net/http"

	"counsellor-matching/http/handlers"
	"counsellor-matching/http/middleware"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// SetupRoutes configures all HTTP routes and middleware on mux. limiter
// throttles the student-facing write endpoints; nil disables throttling.
func SetupRoutes(mux *http.ServeMux, h *handlers.Handler, gatherer prometheus.Gatherer, limiter *rate.Limiter) {
	throttled := func(next http.HandlerFunc) http.HandlerFunc {
		if limiter == nil {
			return middleware.EnableCORS(next)
		}
		return middleware.EnableCORS(middleware.RateLimit(limiter, next))
	}

	mux.HandleFunc("/health", h.Health)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Classification
	mux.HandleFunc("/api/classify", middleware.EnableCORS(h.Classify))

	// Questionnaire & suggestions
	mux.HandleFunc("/questionnaire", throttled(h.SubmitQuestionnaire))
	mux.HandleFunc("/counsellors/suggested", middleware.EnableCORS(h.SuggestedCounsellors))
	mux.HandleFunc("/counsellors/ranked", middleware.EnableCORS(h.RankedCounsellors))
	mux.HandleFunc("/counsellors/import", middleware.EnableCORS(h.ImportCounsellors))

	// Bookings
	mux.HandleFunc("/bookings", throttled(h.HandleBookings))
	mux.HandleFunc("/bookings/confirm", middleware.EnableCORS(h.ConfirmBooking))

	// Payment APIs
	mux.HandleFunc("/payments/initiate", throttled(h.InitiatePayment))
	mux.HandleFunc("/payments/verify", middleware.EnableCORS(h.VerifyPayment))
	mux.HandleFunc("/payments/webhook", h.PaymentWebhook)

	// DLQ Management APIs
	mux.HandleFunc("/api/dlq/messages", middleware.EnableCORS(handlers.GetDLQMessages))
	mux.HandleFunc("/api/dlq/messages/retry/", middleware.EnableCORS(handlers.RetryDLQMessage))
	mux.HandleFunc("/api/dlq/messages/resolve/", middleware.EnableCORS(handlers.ResolveDLQMessage))
	mux.HandleFunc("/api/dlq/stats", middleware.EnableCORS(handlers.GetDLQStats))
}
