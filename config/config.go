package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr       string
	LogLevel       string
	RateLimitRPS   int
	RateLimitBurst int

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Ranking
	ClassifierURL     string
	ClassifierTimeout time.Duration
	RosterLimit       int
	SuggestionLimit   int

	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string

	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	EmailFrom string

	SessionLinkBase string
	ReportDir       string

	// Kafka
	KafkaBrokers            string
	KafkaQuestionnaireTopic string
	KafkaBookingTopic       string
	KafkaEmailTopic         string
	KafkaDLQTopic           string
	KafkaConsumerGroup      string
}

var AppConfig Config

func LoadConfig() {
	// Try loading .env from different locations
	envLocations := []string{
		".env",
		"config/.env",
		"../config/.env",
		"../../config/.env",
	}

	envLoaded := false
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = FromEnv()
}

// FromEnv builds a Config from the current process environment.
func FromEnv() Config {
	return Config{
		HTTPAddr:       getEnvWithDefault("HTTP_ADDR", ":8080"),
		LogLevel:       getEnvWithDefault("LOG_LEVEL", "info"),
		RateLimitRPS:   getIntWithDefault("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getIntWithDefault("RATE_LIMIT_BURST", 40),

		DBHost:     getEnvWithDefault("DB_HOST", "localhost"),
		DBPort:     getEnvWithDefault("DB_PORT", "5432"),
		DBUser:     getEnvWithDefault("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnvWithDefault("DB_NAME", "postgres"),

		ClassifierURL:     getEnvWithDefault("CLASSIFIER_URL", "http://localhost:8080/api/classify"),
		ClassifierTimeout: getDurationWithDefault("CLASSIFIER_TIMEOUT", 5*time.Second),
		RosterLimit:       getIntWithDefault("ROSTER_LIMIT", 200),
		SuggestionLimit:   getIntWithDefault("SUGGESTION_LIMIT", 5),

		RazorpayKeyID:         os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),

		SMTPHost:  getEnvWithDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:  getIntWithDefault("SMTP_PORT", 587),
		SMTPUser:  os.Getenv("SMTP_USER"),
		SMTPPass:  os.Getenv("SMTP_PASS"),
		EmailFrom: os.Getenv("EMAIL_FROM"),

		SessionLinkBase: getEnvWithDefault("SESSION_LINK_BASE", "https://meet.google.com"),
		ReportDir:       getEnvWithDefault("REPORT_DIR", os.TempDir()),

		// Kafka settings (comma-separated brokers, empty disables Kafka)
		KafkaBrokers:            os.Getenv("KAFKA_BROKERS"),
		KafkaQuestionnaireTopic: getEnvWithDefault("KAFKA_QUESTIONNAIRE_TOPIC", "questionnaires"),
		KafkaBookingTopic:       getEnvWithDefault("KAFKA_BOOKING_TOPIC", "bookings"),
		KafkaEmailTopic:         getEnvWithDefault("KAFKA_EMAIL_TOPIC", "emails"),
		KafkaDLQTopic:           getEnvWithDefault("KAFKA_DLQ_TOPIC", "matching.dlq"),
		KafkaConsumerGroup:      getEnvWithDefault("KAFKA_CONSUMER_GROUP", "counsellor-matching"),
	}
}

// Brokers returns the configured Kafka brokers with blanks removed.
func (c Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b := strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// ConsumedTopics lists the topics the background consumer subscribes to.
func (c Config) ConsumedTopics() []string {
	return []string{c.KafkaQuestionnaireTopic, c.KafkaBookingTopic, c.KafkaEmailTopic}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("Invalid %s=%q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("Invalid %s=%q, using default %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func GetDBConnString() string {
	return "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=disable"
}
