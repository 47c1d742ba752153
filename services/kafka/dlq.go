package kafka

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"counsellor-matching/config"
	"counsellor-matching/db"
	"counsellor-matching/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

var (
	dlqProducer    *kafka.Writer
	dlqMutex       sync.Mutex
	dlqRetryTicker *time.Ticker
	stopDLQRetry   chan bool

	// Swapped in tests.
	getDBConnection = func() *sql.DB { return db.DB }
	writeDLQ        = func(ctx context.Context, msg kafka.Message) error { return dlqProducer.WriteMessages(ctx, msg) }
	storeDLQ        = storeDLQMessage
)

// DLQMessage is a stored failed message.
type DLQMessage struct {
	ID           int             `json:"id"`
	MessageID    string          `json:"message_id"`
	Topic        string          `json:"topic"`
	Key          string          `json:"key"`
	Value        json.RawMessage `json:"value"`
	ErrorMessage string          `json:"error_message"`
	RetryCount   int             `json:"retry_count"`
	CreatedAt    time.Time       `json:"created_at"`
}

// DLQStats summarises the dlq_messages table.
type DLQStats struct {
	Total      int `json:"total_dlq_messages"`
	Unresolved int `json:"unresolved_messages"`
	Resolved   int `json:"resolved_messages"`
}

// dlqEnvelope is what goes onto the DLQ topic.
type dlqEnvelope struct {
	MessageID     string `json:"message_id"`
	OriginalTopic string `json:"original_topic"`
	OriginalKey   string `json:"original_key"`
	OriginalValue string `json:"original_value"`
	ErrorMessage  string `json:"error_message"`
	Timestamp     int64  `json:"timestamp"`
}

// InitDLQProducer initializes a Kafka writer for the DLQ topic
func InitDLQProducer() {
	dlqMutex.Lock()
	defer dlqMutex.Unlock()

	validBrokers := config.AppConfig.Brokers()
	if len(validBrokers) == 0 {
		logger.Info("Kafka DLQ is disabled (KAFKA_BROKERS is empty)")
		return
	}

	dlqProducer = &kafka.Writer{
		Addr:         kafka.TCP(validBrokers...),
		Topic:        config.AppConfig.KafkaDLQTopic,
		Balancer:     &kafka.LeastBytes{},
		Async:        false,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireAll,
	}

	logger.Info("Kafka DLQ producer initialized. Brokers=%v, DLQ Topic=%s", validBrokers, config.AppConfig.KafkaDLQTopic)
}

// SendToDLQ publishes a failed message to the DLQ topic and always stores it
// in the database, which is what retries read from.
func SendToDLQ(topic, key string, value []byte, errorMsg string) error {
	dlqMutex.Lock()
	if dlqProducer == nil && len(config.AppConfig.Brokers()) > 0 {
		dlqMutex.Unlock()
		InitDLQProducer()
		dlqMutex.Lock()
	}
	defer dlqMutex.Unlock()

	// The topic envelope and the stored row share one message id.
	messageID := uuid.NewString()

	if dlqProducer != nil && config.AppConfig.KafkaDLQTopic != "" {
		payload, err := json.Marshal(dlqEnvelope{
			MessageID:     messageID,
			OriginalTopic: topic,
			OriginalKey:   key,
			OriginalValue: string(value),
			ErrorMessage:  errorMsg,
			Timestamp:     time.Now().Unix(),
		})
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = writeDLQ(ctx, kafka.Message{Key: []byte(key), Value: payload})
			cancel()
		}
		switch {
		case err == nil:
			logger.Info("Message sent to DLQ topic: %s", config.AppConfig.KafkaDLQTopic)
		case strings.Contains(strings.ToLower(err.Error()), "unknown topic"):
			logger.Warn("DLQ topic missing on broker; disabling DLQ producer: %v", err)
			dlqProducer = nil
		default:
			logger.Warn("DLQ publish failed, storing to DB only: %v", err)
		}
	}

	return storeDLQ(messageID, topic, key, value, errorMsg)
}

// StoreDLQMessage stores a failed message in the database under a new
// message id.
func StoreDLQMessage(topic, key string, value []byte, errorMsg string) error {
	return storeDLQ(uuid.NewString(), topic, key, value, errorMsg)
}

func storeDLQMessage(messageID, topic, key string, value []byte, errorMsg string) error {
	dbConn := getDBConnection()
	if dbConn == nil {
		logger.Warn("Database connection not available for DLQ storage")
		return nil
	}

	// The value column is jsonb; wrap anything that is not valid JSON.
	if !json.Valid(value) {
		quoted, _ := json.Marshal(string(value))
		value = quoted
	}

	_, err := dbConn.Exec(`
		INSERT INTO dlq_messages (message_id, topic, key, value, error_message, created_at)
		VALUES ($1, $2, $3, $4::jsonb, $5, NOW())
		ON CONFLICT (message_id) DO NOTHING`,
		messageID, topic, key, value, errorMsg)
	if err != nil {
		logger.Error("Error storing DLQ message in database: %v", err)
		return err
	}

	logger.Info("DLQ message stored in database. Topic: %s, Key: %s", topic, key)
	return nil
}

// GetDLQMessages retrieves unresolved DLQ messages, newest first.
func GetDLQMessages(limit int) ([]DLQMessage, error) {
	dbConn := getDBConnection()
	if dbConn == nil {
		return []DLQMessage{}, nil
	}

	rows, err := dbConn.Query(`
		SELECT id, message_id, topic, COALESCE(key, ''), value, COALESCE(error_message, ''), retry_count, created_at
		FROM dlq_messages
		WHERE resolved = FALSE
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		logger.Error("Error querying DLQ messages: %v", err)
		return nil, err
	}
	defer rows.Close()

	messages := []DLQMessage{}
	for rows.Next() {
		var m DLQMessage
		var value []byte
		if err := rows.Scan(&m.ID, &m.MessageID, &m.Topic, &m.Key, &value, &m.ErrorMessage, &m.RetryCount, &m.CreatedAt); err != nil {
			logger.Error("Error scanning DLQ message: %v", err)
			continue
		}
		m.Value = json.RawMessage(value)
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

// RetryDLQMessage reprocesses one stored message and marks it resolved when
// the handler succeeds. A failed retry only bumps retry_count; it does not
// store a second copy.
func RetryDLQMessage(messageID string) (bool, error) {
	dbConn := getDBConnection()
	if dbConn == nil {
		return false, nil
	}

	var value []byte
	var topic, key string
	err := dbConn.QueryRow(`SELECT value, topic, COALESCE(key, '') FROM dlq_messages WHERE message_id = $1`, messageID).
		Scan(&value, &topic, &key)
	if err != nil {
		logger.Error("Error retrieving DLQ message for retry: %v", err)
		return false, err
	}

	err = processMessage(kafka.Message{Topic: topic, Key: []byte(key), Value: value})
	if err != nil {
		logger.Warn("Retry of DLQ message %s failed: %v", messageID, err)
	}
	ok := err == nil
	return ok, markRetried(dbConn, messageID, ok, "Manually retried successfully")
}

func markRetried(dbConn *sql.DB, messageID string, resolved bool, note string) error {
	query := `
		UPDATE dlq_messages
		SET retry_count = retry_count + 1, last_retry_at = NOW()
		WHERE message_id = $1`
	args := []interface{}{messageID}
	if resolved {
		query = `
			UPDATE dlq_messages
			SET retry_count = retry_count + 1, last_retry_at = NOW(), resolved = TRUE, resolved_at = NOW(), notes = $2
			WHERE message_id = $1`
		args = append(args, note)
	}
	_, err := dbConn.Exec(query, args...)
	if err != nil {
		logger.Error("Error updating DLQ message %s after retry: %v", messageID, err)
	}
	return err
}

// ResolveDLQMessage marks a DLQ message as resolved
func ResolveDLQMessage(messageID string, notes string) error {
	dbConn := getDBConnection()
	if dbConn == nil {
		return nil
	}

	_, err := dbConn.Exec(`
		UPDATE dlq_messages
		SET resolved = TRUE, resolved_at = NOW(), notes = $2
		WHERE message_id = $1`, messageID, notes)
	if err != nil {
		logger.Error("Error resolving DLQ message: %v", err)
		return err
	}

	logger.Info("DLQ message %s marked as resolved", messageID)
	return nil
}

// GetDLQStats retrieves statistics about DLQ messages
func GetDLQStats() (DLQStats, error) {
	var stats DLQStats
	dbConn := getDBConnection()
	if dbConn == nil {
		return stats, nil
	}

	err := dbConn.QueryRow(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE resolved = FALSE),
		       COUNT(*) FILTER (WHERE resolved = TRUE)
		FROM dlq_messages`).Scan(&stats.Total, &stats.Unresolved, &stats.Resolved)
	if err != nil {
		logger.Error("Error getting DLQ stats: %v", err)
		return stats, err
	}
	return stats, nil
}

// StartDLQAutoRetry retries unresolved messages on every tick of interval.
func StartDLQAutoRetry(interval time.Duration) {
	dlqRetryTicker = time.NewTicker(interval)
	stopDLQRetry = make(chan bool)

	go func() {
		for {
			select {
			case <-dlqRetryTicker.C:
				retryUnresolvedDLQMessages()
			case <-stopDLQRetry:
				return
			}
		}
	}()

	logger.Info("DLQ auto-retry scheduler started (every %s)", interval)
}

func retryUnresolvedDLQMessages() {
	dbConn := getDBConnection()
	if dbConn == nil {
		return
	}

	rows, err := dbConn.Query(`
		SELECT message_id, value, topic, COALESCE(key, ''), retry_count, max_retries
		FROM dlq_messages
		WHERE resolved = FALSE AND retry_count < max_retries
		ORDER BY created_at ASC
		LIMIT 10`)
	if err != nil {
		logger.Error("Error querying unresolved DLQ messages for retry: %v", err)
		return
	}

	type pending struct {
		messageID, topic, key string
		value                 []byte
		attempt, max          int
	}
	var batch []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.messageID, &p.value, &p.topic, &p.key, &p.attempt, &p.max); err != nil {
			logger.Error("Error scanning DLQ message for retry: %v", err)
			continue
		}
		batch = append(batch, p)
	}
	rows.Close()

	resolved := 0
	for _, p := range batch {
		logger.Info("Auto-retrying DLQ message %s (attempt %d/%d)", p.messageID, p.attempt+1, p.max)
		ok := processMessage(kafka.Message{Topic: p.topic, Key: []byte(p.key), Value: p.value}) == nil
		if markRetried(dbConn, p.messageID, ok, "Auto-retried successfully") == nil && ok {
			resolved++
		}
	}

	if len(batch) > 0 {
		logger.Info("DLQ auto-retry completed: processed %d messages, %d resolved", len(batch), resolved)
	}
}

// StopDLQAutoRetry stops the automatic DLQ retry mechanism
func StopDLQAutoRetry() {
	if dlqRetryTicker != nil {
		dlqRetryTicker.Stop()
	}
	if stopDLQRetry != nil {
		close(stopDLQRetry)
		stopDLQRetry = nil
	}
}
