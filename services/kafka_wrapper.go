package services

import (
	"time"

	"counsellor-matching/config"
	"counsellor-matching/services/kafka"
)

// KafkaPublisher is the EventPublisher backed by the shared Kafka producer.
type KafkaPublisher struct{}

func (KafkaPublisher) Publish(topic, key string, value interface{}) error {
	return kafka.Publish(topic, key, value)
}

// EventHandlers maps event types to the consumer callbacks that serve them.
type EventHandlers map[string]kafka.EventHandler

// StartEventPipeline initializes the producer, the DLQ and the consumer over
// the configured topics, and registers handlers. It is a no-op beyond logging
// when Kafka is disabled.
func StartEventPipeline(cfg config.Config, handlers EventHandlers, retryEvery time.Duration) error {
	kafka.InitProducer()
	kafka.InitDLQProducer()

	for event, fn := range handlers {
		kafka.RegisterHandler(event, fn)
	}

	if err := kafka.InitConsumer(cfg.ConsumedTopics()); err != nil {
		return err
	}
	kafka.StartConsumer()
	if retryEvery > 0 {
		kafka.StartDLQAutoRetry(retryEvery)
	}
	return nil
}

// StopEventPipeline stops the consumer, the retry loop and the producer.
func StopEventPipeline() error {
	kafka.StopDLQAutoRetry()
	if err := kafka.StopConsumer(); err != nil {
		return err
	}
	return kafka.Close()
}

// EventPipelineStatus reports whether the producer is connected and the
// consumer is running.
func EventPipelineStatus() (producerConnected, consumerRunning bool) {
	return kafka.IsConnected(), kafka.IsConsumerRunning()
}

func GetDLQMessages(limit int) ([]kafka.DLQMessage, error) {
	return kafka.GetDLQMessages(limit)
}

func RetryDLQMessage(messageID string) (bool, error) {
	return kafka.RetryDLQMessage(messageID)
}

func ResolveDLQMessage(messageID string, notes string) error {
	return kafka.ResolveDLQMessage(messageID, notes)
}

func GetDLQStats() (kafka.DLQStats, error) {
	return kafka.GetDLQStats()
}
