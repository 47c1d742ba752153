package services

import (
	"fmt"
	"time"

	"counsellor-matching/logger"
	"counsellor-matching/models"
	"counsellor-matching/services/kafka"

	"github.com/google/uuid"
)

// EventPublisher publishes a JSON-encodable event under key.
type EventPublisher interface {
	Publish(topic, key string, value interface{}) error
}

// QuestionnaireSubmittedEvent is published after a questionnaire is stored.
type QuestionnaireSubmittedEvent struct {
	Event      string                      `json:"event"`
	EventID    string                      `json:"event_id"`
	ResponseID string                      `json:"response_id"`
	StudentID  string                      `json:"student_id"`
	Answers    models.QuestionnaireAnswers `json:"answers"`
	Timestamp  time.Time                   `json:"timestamp"`
}

// BookingConfirmedEvent is published when a counsellor confirms a booking.
type BookingConfirmedEvent struct {
	Event           string    `json:"event"`
	EventID         string    `json:"event_id"`
	BookingID       string    `json:"booking_id"`
	StudentID       string    `json:"student_id"`
	CounsellorID    string    `json:"counsellor_id"`
	CounsellorName  string    `json:"counsellor_name"`
	AppointmentDate string    `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	SessionLink     string    `json:"session_link"`
	Timestamp       time.Time `json:"timestamp"`
}

func NewQuestionnaireSubmittedEvent(resp *models.QuestionnaireResponse) QuestionnaireSubmittedEvent {
	return QuestionnaireSubmittedEvent{
		Event:      kafka.EventQuestionnaireSubmitted,
		EventID:    uuid.NewString(),
		ResponseID: resp.ID,
		StudentID:  resp.StudentID,
		Answers:    resp.Answers,
		Timestamp:  time.Now().UTC(),
	}
}

func NewBookingConfirmedEvent(b *models.Booking, counsellorName string) BookingConfirmedEvent {
	return BookingConfirmedEvent{
		Event:           kafka.EventBookingConfirmed,
		EventID:         uuid.NewString(),
		BookingID:       b.ID,
		StudentID:       b.StudentID,
		CounsellorID:    b.CounsellorID,
		CounsellorName:  counsellorName,
		AppointmentDate: b.AppointmentDate,
		AppointmentTime: b.AppointmentTime,
		SessionLink:     b.SessionLink,
		Timestamp:       time.Now().UTC(),
	}
}

// publishAsync publishes in the background. Failures are logged only; the
// request that triggered the event has already succeeded.
func publishAsync(p EventPublisher, topic, key string, event interface{}) {
	if p == nil {
		return
	}
	go func() {
		if err := p.Publish(topic, key, event); err != nil {
			logger.Warn("Failed to publish event to %s (key=%s): %v", topic, key, err)
		}
	}()
}

func studentKey(studentID string) string {
	return fmt.Sprintf("student-%s", studentID)
}
