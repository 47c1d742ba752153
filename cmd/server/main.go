package main

import (
	"context"
	"errors"
	"log"
	netHttp "net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"counsellor-matching/config"
	"counsellor-matching/db"
	"counsellor-matching/http"
	"counsellor-matching/http/handlers"
	"counsellor-matching/logger"
	"counsellor-matching/services"
	"counsellor-matching/services/classifier"
	"counsellor-matching/services/ranking"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
)

// dlqRetryInterval is how often unresolved DLQ messages are retried.
const dlqRetryInterval = 5 * time.Minute

func main() {
	// Determine project root by searching upward for go.mod
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal("Error getting current working directory:", err)
	}

	absProjectRoot := findProjectRoot(cwd)
	if absProjectRoot == "" {
		log.Fatalf("Could not locate project root (go.mod) from %s", cwd)
	}

	if err := os.Chdir(absProjectRoot); err != nil {
		log.Fatal("Error changing to project root:", err)
	}

	// Load configuration
	config.LoadConfig()
	cfg := config.AppConfig

	logger.SetDefault(logger.New(logger.Config{Level: logger.ParseLevel(cfg.LogLevel), Output: os.Stdout}))
	defer logger.Default().Sync()
	logger.Info("Working directory set to project root: %s", absProjectRoot)

	// Initialize database
	if err := db.InitDB(); err != nil {
		logger.Fatal("Error initializing database: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := ranking.NewMetrics()
	if err := metrics.Register(registry); err != nil {
		logger.Fatal("Error registering ranking metrics: %v", err)
	}

	counsellors := db.NewCounsellorRepository(db.DB)
	questionnaires := db.NewQuestionnaireRepository(db.DB)
	bookings := db.NewBookingRepository(db.DB)
	profiles := db.NewProfileRepository(db.DB)

	keywords := classifier.NewKeywordClassifier(nil)
	var textClassifier ranking.Classifier = keywords
	if cfg.ClassifierURL != "local" {
		textClassifier = classifier.NewClient(cfg.ClassifierURL, cfg.ClassifierTimeout)
	}

	opts := ranking.Options{
		RosterLimit: cfg.RosterLimit,
		Logger:      logger.Default().Named("ranking"),
		Metrics:     metrics,
	}
	primary := ranking.NewEngine(counsellors, questionnaires, textClassifier, opts)
	fallback := ranking.NewFallback(counsellors, questionnaires, textClassifier, opts)

	publisher := services.KafkaPublisher{}
	suggestions := services.NewSuggestionService(primary, fallback, cfg.SuggestionLimit, logger.Default().Named("suggestions"))

	var orders services.OrderCreator
	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		orders = services.NewRazorpayOrders(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	} else {
		logger.Warn("Razorpay credentials not configured, payments are disabled")
	}

	h := &handlers.Handler{
		Suggestions:    suggestions,
		Questionnaires: services.NewQuestionnaireService(questionnaires, suggestions, publisher, cfg.KafkaQuestionnaireTopic),
		Bookings: services.NewBookingService(bookings, counsellors,
			services.NewSessionLinkGenerator(cfg.SessionLinkBase), publisher, cfg.KafkaBookingTopic),
		Payments:      services.NewPaymentService(bookings, bookings, counsellors, orders, cfg.RazorpayKeyID, cfg.RazorpayKeySecret),
		Roster:        services.NewRosterService(counsellors),
		Classifier:    keywords,
		WebhookSecret: cfg.RazorpayWebhookSecret,
		DB:            db.DB,
	}

	notifications := services.NewNotificationService(suggestions, profiles,
		services.NewEmailQueue(publisher, cfg.KafkaEmailTopic), services.NewSMTPMailer(cfg),
		cfg.ReportDir, cfg.SuggestionLimit)

	// Kafka is optional; the HTTP API works without it
	if err := services.StartEventPipeline(cfg, notifications.Handlers(), dlqRetryInterval); err != nil {
		logger.Warn("Event pipeline not started: %v", err)
	}

	// Setup routes
	mux := netHttp.NewServeMux()
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	http.SetupRoutes(mux, h, registry, limiter)

	server := &netHttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, netHttp.ErrServerClosed) {
			logger.Fatal("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	logger.Info("Shutdown signal received, draining requests...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Error shutting down HTTP server: %v", err)
	}

	if err := services.StopEventPipeline(); err != nil {
		logger.Error("Error stopping event pipeline: %v", err)
	}
	if err := db.DB.Close(); err != nil {
		logger.Error("Error closing database: %v", err)
	}

	logger.Info("Server shutdown complete")
}

// findProjectRoot walks up from start and returns the first directory containing go.mod
func findProjectRoot(start string) string {
	dir := start
	for {
		// check for go.mod
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		// move up
		parent := filepath.Dir(dir)
		if parent == dir || strings.HasSuffix(dir, ":\\") || parent == "" {
			break
		}
		dir = parent
	}
	return ""
}
