package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"counsellor-matching/errors"
	"counsellor-matching/logger"
	"counsellor-matching/models"
	"counsellor-matching/services/kafka"
)

// ProfileLookup resolves a student's profile for mailing.
type ProfileLookup interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}

// NotificationService handles the events the background consumer receives.
type NotificationService struct {
	suggestions *SuggestionService
	profiles    ProfileLookup
	queue       Mailer
	sender      Mailer
	reportDir   string
	limit       int
	timeout     time.Duration
}

// NewNotificationService wires the handlers. queue receives composed mail
// (normally an EmailQueue); sender delivers email.send events (normally an
// SMTPMailer).
func NewNotificationService(suggestions *SuggestionService, profiles ProfileLookup, queue, sender Mailer, reportDir string, limit int) *NotificationService {
	return &NotificationService{
		suggestions: suggestions,
		profiles:    profiles,
		queue:       queue,
		sender:      sender,
		reportDir:   reportDir,
		limit:       limit,
		timeout:     30 * time.Second,
	}
}

// Handlers maps each consumed event type to its handler.
func (n *NotificationService) Handlers() EventHandlers {
	return EventHandlers{
		kafka.EventQuestionnaireSubmitted: n.HandleQuestionnaireSubmitted,
		kafka.EventBookingConfirmed:       n.HandleBookingConfirmed,
		kafka.EventEmailSend:              n.HandleEmailSend,
	}
}

// HandleQuestionnaireSubmitted mails the student their suggestions with a
// PDF report attached.
func (n *NotificationService) HandleQuestionnaireSubmitted(event map[string]interface{}) error {
	var evt QuestionnaireSubmittedEvent
	if err := decodeEvent(event, &evt); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	profile, ok, err := n.recipient(ctx, evt.StudentID)
	if err != nil || !ok {
		return err
	}

	suggestions, err := n.suggestions.SuggestForAnswers(ctx, evt.Answers, n.limit)
	if err != nil {
		return fmt.Errorf("computing suggestions for %s: %w", evt.StudentID, err)
	}

	name := greetingName(profile)
	report, err := RenderSuggestionReport(n.reportDir, name, suggestions, time.Now())
	if err != nil {
		// The mail is still useful without the attachment.
		logger.Warn("Suggestion report for %s not rendered: %v", evt.StudentID, err)
		report = ""
	}

	return n.queue.Send(profile.Email, "Your counsellor suggestions", SuggestionEmailBody(name, suggestions), report)
}

// HandleBookingConfirmed mails the student the session details.
func (n *NotificationService) HandleBookingConfirmed(event map[string]interface{}) error {
	var evt BookingConfirmedEvent
	if err := decodeEvent(event, &evt); err != nil {
		return err
	}
	if evt.SessionLink == "" {
		return fmt.Errorf("booking %s confirmed without a session link", evt.BookingID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	profile, ok, err := n.recipient(ctx, evt.StudentID)
	if err != nil || !ok {
		return err
	}

	subject := fmt.Sprintf("Session confirmed for %s %s", evt.AppointmentDate, evt.AppointmentTime)
	return n.queue.Send(profile.Email, subject, BookingConfirmedEmailBody(greetingName(profile), evt))
}

// HandleEmailSend delivers a queued email.
func (n *NotificationService) HandleEmailSend(event map[string]interface{}) error {
	var evt EmailEvent
	if err := decodeEvent(event, &evt); err != nil {
		return err
	}
	switch {
	case evt.Recipient == "":
		return fmt.Errorf("invalid recipient in email event")
	case evt.Subject == "":
		return fmt.Errorf("invalid subject in email event")
	case evt.Body == "":
		return fmt.Errorf("invalid body in email event")
	}

	logger.Info("Sending email - Recipient: %s, Subject: %s", evt.Recipient, evt.Subject)
	return n.sender.Send(evt.Recipient, evt.Subject, evt.Body, evt.Attachment)
}

// recipient loads the student's profile. ok is false when there is nobody to
// mail, which is not an error worth retrying.
func (n *NotificationService) recipient(ctx context.Context, studentID string) (*models.Profile, bool, error) {
	profile, err := n.profiles.GetByID(ctx, studentID)
	if errors.IsKind(err, errors.NotFound) {
		logger.Warn("No profile for student %s, skipping mail", studentID)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if profile.Email == "" {
		logger.Warn("Student %s has no email, skipping mail", studentID)
		return nil, false, nil
	}
	return profile, true, nil
}

// decodeEvent converts a generic event map into its typed form.
func decodeEvent(event map[string]interface{}, v interface{}) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("re-encoding event: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding event: %w", err)
	}
	return nil
}
