package kafka

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"time"

	"counsellor-matching/config"
	"counsellor-matching/logger"

	"github.com/segmentio/kafka-go"
)

var (
	producer      *kafka.Writer
	producerMutex sync.Mutex
	isConnected   bool
)

// InitProducer initializes a Kafka writer using brokers from the config
func InitProducer() {
	producerMutex.Lock()
	defer producerMutex.Unlock()

	validBrokers := config.AppConfig.Brokers()
	if len(validBrokers) == 0 {
		logger.Info("Kafka is disabled (KAFKA_BROKERS is empty)")
		return
	}

	// Attempt to create required topics
	ensureTopicsExist(validBrokers, requiredTopics(config.AppConfig))

	producer = &kafka.Writer{
		Addr:         kafka.TCP(validBrokers...),
		Balancer:     &kafka.Hash{},
		Async:        false,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireAll,
	}

	logger.Info("Kafka producer initialized. Brokers=%v", validBrokers)
	isConnected = true
}

// requiredTopics lists the consumed topics plus the DLQ, without duplicates
// or blanks.
func requiredTopics(cfg config.Config) []string {
	seen := map[string]bool{}
	var topics []string
	for _, t := range append(cfg.ConsumedTopics(), cfg.KafkaDLQTopic) {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		topics = append(topics, t)
	}
	return topics
}

// ensureTopicsExist creates Kafka topics if they don't already exist.
// It runs in the background so startup is not blocked by a slow broker.
func ensureTopicsExist(brokers, topics []string) {
	go func() {
		const maxRetries = 5
		for attempt := 0; attempt < maxRetries; attempt++ {
			time.Sleep(backoff(attempt))

			conn, err := kafka.Dial("tcp", brokers[0])
			if err != nil {
				if attempt == maxRetries-1 {
					logger.Warn("Could not connect to Kafka broker for topic creation after %d attempts: %v (topics may need manual creation)", maxRetries, err)
				}
				continue
			}

			ready := 0
			for _, topic := range topics {
				err := conn.CreateTopics(kafka.TopicConfig{
					Topic:             topic,
					NumPartitions:     1,
					ReplicationFactor: 1,
				})
				if err == nil || strings.Contains(err.Error(), "already exists") {
					ready++
				}
			}
			conn.Close()

			if ready >= len(topics) {
				logger.Debug("Kafka topics ready: %v", topics)
				return
			}
		}
	}()
}

// backoff is 1s, 2s, 4s, ... by attempt.
func backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

// Publish marshals value to JSON and publishes to the given topic with key.
// It retries three times with exponential backoff and parks the message in
// the DLQ table when every attempt fails. With Kafka disabled it is a no-op.
func Publish(topic, key string, value interface{}) error {
	producerMutex.Lock()
	if producer == nil && len(config.AppConfig.Brokers()) > 0 {
		producerMutex.Unlock()
		InitProducer()
		producerMutex.Lock()
	}
	defer producerMutex.Unlock()

	if producer == nil {
		logger.Debug("Kafka producer not initialized, skipping publish to topic: %s", topic)
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		logger.Error("Error marshaling Kafka message: %v", err)
		return err
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := producer.WriteMessages(ctx, msg)
		cancel()

		if err == nil {
			isConnected = true
			logger.Debug("Published to Kafka topic %s (key=%s, %d bytes)", topic, key, len(payload))
			return nil
		}

		lastErr = err
		isConnected = false
		logger.Warn("Kafka publish attempt %d/3 to %s failed: %v", attempt+1, topic, err)
		if attempt < 2 {
			time.Sleep(backoff(attempt))
		}
	}

	// Database only; publishing to the DLQ topic would likely fail the same way.
	logger.Info("Sending failed message to DLQ. Topic: %s, Key: %s", topic, key)
	if dlqErr := StoreDLQMessage(topic, key, payload, lastErr.Error()); dlqErr != nil {
		logger.Error("Failed to store message in DLQ: %v", dlqErr)
	}

	return lastErr
}

// IsConnected returns true if Kafka producer is connected and ready
func IsConnected() bool {
	producerMutex.Lock()
	defer producerMutex.Unlock()
	return isConnected && producer != nil
}

// Close gracefully closes the Kafka producer
func Close() error {
	producerMutex.Lock()
	defer producerMutex.Unlock()

	if producer != nil {
		err := producer.Close()
		producer = nil
		isConnected = false
		return err
	}
	return nil
}
