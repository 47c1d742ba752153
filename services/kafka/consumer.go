package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"counsellor-matching/config"
	"counsellor-matching/logger"

	"github.com/segmentio/kafka-go"
)

// Event types routed by the consumer.
const (
	EventQuestionnaireSubmitted = "questionnaire.submitted"
	EventBookingConfirmed       = "booking.confirmed"
	EventEmailSend              = "email.send"
	EventEmailSent              = "email.sent"
)

// EventHandler processes one decoded event. A non-nil error sends the
// message to the DLQ.
type EventHandler func(event map[string]interface{}) error

var (
	consumer        *kafka.Reader
	consumerMutex   sync.Mutex
	consumerRunning bool
	stopConsumer    chan bool
	handlers        = map[string]EventHandler{}

	// closeReader is swapped in tests.
	closeReader = func(r *kafka.Reader) error { return r.Close() }
)

// InitConsumer initializes a consumer group reader over topics.
func InitConsumer(topics []string) error {
	consumerMutex.Lock()
	defer consumerMutex.Unlock()

	validBrokers := config.AppConfig.Brokers()
	if len(validBrokers) == 0 {
		logger.Info("Kafka consumer is disabled (KAFKA_BROKERS is empty)")
		return nil
	}

	var groupTopics []string
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			groupTopics = append(groupTopics, t)
		}
	}
	if len(groupTopics) == 0 {
		return fmt.Errorf("no topics to consume")
	}

	group := config.AppConfig.KafkaConsumerGroup
	consumer = kafka.NewReader(kafka.ReaderConfig{
		Brokers:          validBrokers,
		GroupTopics:      groupTopics,
		GroupID:          group,
		StartOffset:      kafka.LastOffset,
		CommitInterval:   time.Second,
		MaxBytes:         10e6,
		SessionTimeout:   20 * time.Second,
		ReadBackoffMin:   100 * time.Millisecond,
		ReadBackoffMax:   1 * time.Second,
		QueueCapacity:    100,
		RebalanceTimeout: 60 * time.Second,
	})

	stopConsumer = make(chan bool)
	logger.Info("Kafka consumer initialized. Brokers=%v, Topics=%v, ConsumerGroup=%s", validBrokers, groupTopics, group)
	return nil
}

// RegisterHandler routes events of eventType to fn, replacing any previous
// handler.
func RegisterHandler(eventType string, fn EventHandler) {
	consumerMutex.Lock()
	defer consumerMutex.Unlock()
	handlers[eventType] = fn
	logger.Info("Kafka handler registered for %s", eventType)
}

// StartConsumer starts consuming messages in a separate goroutine
// This runs continuously until StopConsumer() is called
func StartConsumer() {
	consumerMutex.Lock()
	if consumer == nil {
		consumerMutex.Unlock()
		logger.Warn("Consumer not initialized, cannot start")
		return
	}
	if consumerRunning {
		consumerMutex.Unlock()
		logger.Warn("Consumer already running")
		return
	}
	if stopConsumer == nil {
		stopConsumer = make(chan bool)
	}
	consumerRunning = true
	reader, stop := consumer, stopConsumer
	consumerMutex.Unlock()

	go consumeMessages(reader, stop)
	logger.Info("Kafka consumer started")
}

func consumeMessages(reader *kafka.Reader, stop <-chan bool) {
	// Allow time for broker to stabilize
	time.Sleep(2 * time.Second)

	for {
		select {
		case <-stop:
			logger.Info("Consumer stop signal received")
			return
		default:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			msg, err := reader.ReadMessage(ctx)
			cancel()

			if err != nil {
				if err == context.DeadlineExceeded || err.Error() == "EOF" {
					continue
				}
				if strings.Contains(err.Error(), "Group Coordinator Not Available") {
					time.Sleep(500 * time.Millisecond)
					continue
				}
				logger.Debug("Kafka read failed, backing off: %v", err)
				time.Sleep(1 * time.Second)
				continue
			}

			_ = HandleKafkaMessageForRetry(msg)
		}
	}
}

// HandleKafkaMessageForRetry routes msg to its registered handler. It
// returns false when the message ended up in the DLQ.
func HandleKafkaMessageForRetry(msg kafka.Message) bool {
	if err := processMessage(msg); err != nil {
		logger.Error("Error processing message from %s: %v", msg.Topic, err)
		_ = SendToDLQ(msg.Topic, string(msg.Key), msg.Value, err.Error())
		return false
	}
	return true
}

// processMessage decodes msg and runs its handler without touching the DLQ.
func processMessage(msg kafka.Message) error {
	var eventData map[string]interface{}
	if err := json.Unmarshal(msg.Value, &eventData); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	eventType, ok := eventData["event"].(string)
	if !ok || eventType == "" {
		return fmt.Errorf("message does not contain valid event type")
	}
	logger.Debug("Event type: %s (topic %s)", eventType, msg.Topic)

	if eventType == EventEmailSent {
		logger.Info("Email tracking - recipient: %v", eventData["recipient"])
		return nil
	}

	consumerMutex.Lock()
	handler := handlers[eventType]
	consumerMutex.Unlock()

	if handler == nil {
		return fmt.Errorf("unknown event type: %s", eventType)
	}
	if err := handler(eventData); err != nil {
		return fmt.Errorf("handler error for %s: %w", eventType, err)
	}
	return nil
}

// StopConsumer stops the consumer gracefully
func StopConsumer() error {
	consumerMutex.Lock()
	defer consumerMutex.Unlock()

	if !consumerRunning || consumer == nil {
		return nil
	}

	// Flip the state before closing so a second call is a no-op.
	consumerRunning = false
	close(stopConsumer)
	stopConsumer = nil

	if err := closeReader(consumer); err != nil {
		logger.Error("Error closing consumer: %v", err)
		return err
	}

	logger.Info("Kafka consumer stopped")
	return nil
}

// IsConsumerRunning returns true if the consumer is actively running
func IsConsumerRunning() bool {
	consumerMutex.Lock()
	defer consumerMutex.Unlock()
	return consumerRunning && consumer != nil
}
