package kafka

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"

	"counsellor-matching/config"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withoutDB(t *testing.T) {
	t.Helper()
	prev := getDBConnection
	getDBConnection = func() *sql.DB { return nil }
	t.Cleanup(func() { getDBConnection = prev })
}

func TestHandleKafkaMessageRoutesByEventType(t *testing.T) {
	withoutDB(t)

	var got map[string]interface{}
	RegisterHandler("test.routed", func(event map[string]interface{}) error {
		got = event
		return nil
	})

	ok := HandleKafkaMessageForRetry(kafka.Message{
		Topic: "questionnaires",
		Value: []byte(`{"event":"test.routed","student_id":"abc"}`),
	})
	require.True(t, ok)
	assert.Equal(t, "abc", got["student_id"])
}

func TestHandleKafkaMessageFailures(t *testing.T) {
	withoutDB(t)
	RegisterHandler("test.failing", func(map[string]interface{}) error {
		return fmt.Errorf("smtp down")
	})

	cases := map[string]string{
		"malformed json":     `{"event":`,
		"missing event type": `{"student_id":"abc"}`,
		"unknown event":      `{"event":"nobody.listens"}`,
		"handler error":      `{"event":"test.failing"}`,
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, HandleKafkaMessageForRetry(kafka.Message{Topic: "emails", Value: []byte(value)}))
		})
	}
}

func TestEmailSentIsTrackedWithoutHandler(t *testing.T) {
	withoutDB(t)
	assert.NoError(t, processMessage(kafka.Message{Value: []byte(`{"event":"email.sent","recipient":"a@b.c"}`)}))
}

func TestProcessMessageWrapsHandlerError(t *testing.T) {
	RegisterHandler("test.wrapped", func(map[string]interface{}) error {
		return fmt.Errorf("boom")
	})
	err := processMessage(kafka.Message{Value: []byte(`{"event":"test.wrapped"}`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test.wrapped")
	assert.Contains(t, err.Error(), "boom")
}

func TestDLQWithoutDatabase(t *testing.T) {
	withoutDB(t)

	assert.NoError(t, StoreDLQMessage("emails", "k", []byte("not json"), "failed"))

	msgs, err := GetDLQMessages(10)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	stats, err := GetDLQStats()
	require.NoError(t, err)
	assert.Equal(t, DLQStats{}, stats)

	ok, err := RetryDLQMessage("missing")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRequiredTopicsDeduplicates(t *testing.T) {
	cfg := config.Config{
		KafkaQuestionnaireTopic: "events",
		KafkaBookingTopic:       "events",
		KafkaEmailTopic:         "emails",
		KafkaDLQTopic:           " ",
	}
	assert.Equal(t, []string{"events", "emails"}, requiredTopics(cfg))
}

func TestPublishIsNoopWhenKafkaDisabled(t *testing.T) {
	prev := config.AppConfig
	config.AppConfig = config.Config{}
	t.Cleanup(func() { config.AppConfig = prev })

	assert.NoError(t, Publish("questionnaires", "k", map[string]string{"event": "x"}))
	assert.False(t, IsConnected())
	assert.NoError(t, InitConsumer([]string{"questionnaires"}))
	assert.False(t, IsConsumerRunning())
}

func TestSendToDLQSharesMessageIDWithStoredRow(t *testing.T) {
	prevProducer, prevTopic := dlqProducer, config.AppConfig.KafkaDLQTopic
	prevWrite, prevStore := writeDLQ, storeDLQ
	t.Cleanup(func() {
		dlqProducer, config.AppConfig.KafkaDLQTopic = prevProducer, prevTopic
		writeDLQ, storeDLQ = prevWrite, prevStore
	})

	dlqProducer = &kafka.Writer{}
	config.AppConfig.KafkaDLQTopic = "matching.dlq"

	var published dlqEnvelope
	writeDLQ = func(_ context.Context, msg kafka.Message) error {
		return json.Unmarshal(msg.Value, &published)
	}
	var storedID, storedTopic string
	storeDLQ = func(messageID, topic, _ string, _ []byte, _ string) error {
		storedID, storedTopic = messageID, topic
		return nil
	}

	require.NoError(t, SendToDLQ("emails", "k", []byte(`{"event":"email.send"}`), "smtp down"))

	require.NotEmpty(t, storedID)
	assert.Equal(t, storedID, published.MessageID)
	assert.Equal(t, "emails", storedTopic)
	assert.Equal(t, "emails", published.OriginalTopic)
	assert.Equal(t, "smtp down", published.ErrorMessage)
}

func TestStopConsumerTwiceIsSafe(t *testing.T) {
	prevReader, prevStop, prevClose := consumer, stopConsumer, closeReader
	t.Cleanup(func() {
		consumer, stopConsumer, closeReader = prevReader, prevStop, prevClose
		consumerRunning = false
	})

	closes := 0
	closeReader = func(*kafka.Reader) error {
		closes++
		return nil
	}
	stop := make(chan bool)
	consumer = &kafka.Reader{}
	stopConsumer = stop
	consumerRunning = true

	require.NoError(t, StopConsumer())
	require.NotPanics(t, func() { require.NoError(t, StopConsumer()) })

	_, open := <-stop
	assert.False(t, open)
	assert.Equal(t, 1, closes)
	assert.False(t, IsConsumerRunning())
}
