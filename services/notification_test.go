package services

import (
	"fmt"
	"testing"

	"counsellor-matching/models"
	"counsellor-matching/services/kafka"
	"counsellor-matching/services/ranking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotificationFixture(t *testing.T, profiles fakeProfiles) (*NotificationService, *fakeMailer, *fakeMailer) {
	t.Helper()
	primary := &fakeRanker{name: ranking.StrategyPrimary, ranked: ranked("a", "b", "c")}
	queue, sender := &fakeMailer{}, &fakeMailer{}
	n := NewNotificationService(newSuggestionService(primary, nil), profiles, queue, sender, t.TempDir(), 2)
	return n, queue, sender
}

func studentProfile() fakeProfiles {
	return fakeProfiles{testStudentID: {ID: testStudentID, FullName: "Priya", Email: "priya@uni.edu"}}
}

func TestHandlersCoverConsumedEvents(t *testing.T) {
	n, _, _ := newNotificationFixture(t, nil)
	h := n.Handlers()

	for _, event := range []string{kafka.EventQuestionnaireSubmitted, kafka.EventBookingConfirmed, kafka.EventEmailSend} {
		assert.Contains(t, h, event)
	}
}

func TestHandleQuestionnaireSubmittedQueuesMailWithReport(t *testing.T) {
	n, queue, _ := newNotificationFixture(t, studentProfile())

	err := n.HandleQuestionnaireSubmitted(map[string]interface{}{
		"event":      kafka.EventQuestionnaireSubmitted,
		"student_id": testStudentID,
		"answers":    map[string]interface{}{"q1": "Anxiety"},
	})
	require.NoError(t, err)

	require.Len(t, queue.sent, 1)
	mail := queue.sent[0]
	assert.Equal(t, "priya@uni.edu", mail.to)
	assert.Equal(t, "Your counsellor suggestions", mail.subject)
	assert.Contains(t, mail.body, "Priya")
	assert.Contains(t, mail.body, "Dr. a")
	assert.NotContains(t, mail.body, "Dr. c", "limit applies")
	require.Len(t, mail.attachments, 1)
	assert.FileExists(t, mail.attachments[0])
}

func TestHandleQuestionnaireSubmittedSkipsUnknownStudent(t *testing.T) {
	n, queue, _ := newNotificationFixture(t, fakeProfiles{})

	err := n.HandleQuestionnaireSubmitted(map[string]interface{}{"student_id": testStudentID})
	require.NoError(t, err)
	assert.Empty(t, queue.sent)
}

func TestHandleBookingConfirmed(t *testing.T) {
	n, queue, _ := newNotificationFixture(t, studentProfile())
	event := map[string]interface{}{
		"event":            kafka.EventBookingConfirmed,
		"booking_id":       testBookingID,
		"student_id":       testStudentID,
		"counsellor_name":  "Dr. Rao",
		"appointment_date": "2026-11-02",
		"appointment_time": "10:00",
		"session_link":     "https://meet.google.com/abc-defg-hij",
	}

	require.NoError(t, n.HandleBookingConfirmed(event))
	require.Len(t, queue.sent, 1)
	assert.Equal(t, "Session confirmed for 2026-11-02 10:00", queue.sent[0].subject)
	assert.Contains(t, queue.sent[0].body, "https://meet.google.com/abc-defg-hij")

	delete(event, "session_link")
	assert.Error(t, n.HandleBookingConfirmed(event))
}

func TestHandleEmailSend(t *testing.T) {
	n, _, sender := newNotificationFixture(t, nil)

	err := n.HandleEmailSend(map[string]interface{}{
		"event":      kafka.EventEmailSend,
		"recipient":  "priya@uni.edu",
		"subject":    "Hi",
		"body":       "<p>Hello</p>",
		"attachment": "/tmp/report.pdf",
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"/tmp/report.pdf"}, sender.sent[0].attachments)

	assert.EqualError(t, n.HandleEmailSend(map[string]interface{}{"subject": "x", "body": "y"}),
		"invalid recipient in email event")
}

func TestHandleEmailSendReturnsSenderError(t *testing.T) {
	n, _, sender := newNotificationFixture(t, nil)
	sender.err = fmt.Errorf("smtp down")

	err := n.HandleEmailSend(map[string]interface{}{"recipient": "a@b.co", "subject": "s", "body": "b"})
	assert.EqualError(t, err, "smtp down")
}

func TestEmailQueuePublishesEmailSend(t *testing.T) {
	pub := newRecordingPublisher()
	q := NewEmailQueue(pub, "emails")

	require.NoError(t, q.Send("priya@uni.edu", "Subject", "Body", "/tmp/a.pdf"))
	p := <-pub.ch
	assert.Equal(t, "emails", p.topic)
	assert.Equal(t, "email-priya@uni.edu", p.key)
	evt, ok := p.value.(EmailEvent)
	require.True(t, ok)
	assert.Equal(t, kafka.EventEmailSend, evt.Event)
	assert.Equal(t, "/tmp/a.pdf", evt.Attachment)

	pub.err = fmt.Errorf("broker down")
	assert.Error(t, q.Send("priya@uni.edu", "Subject", "Body"))
}

func TestEmailBodiesEscapeUserText(t *testing.T) {
	s := &Suggestions{Counsellors: []models.RankedCounsellor{{Name: "<b>Dr. X</b>", Specialization: "Sleep", Fees: 300}}}
	body := SuggestionEmailBody("Tom & Jerry", s)
	assert.Contains(t, body, "&lt;b&gt;Dr. X&lt;/b&gt;")
	assert.Contains(t, body, "Tom &amp; Jerry")
	assert.Contains(t, body, "300.00")

	empty := SuggestionEmailBody("A", &Suggestions{})
	assert.Contains(t, empty, "No counsellors are listed right now")

	confirmed := BookingConfirmedEmailBody("A", BookingConfirmedEvent{CounsellorName: "Dr. <i>", SessionLink: "https://x/y"})
	assert.Contains(t, confirmed, "Dr. &lt;i&gt;")
	assert.Contains(t, confirmed, `href="https://x/y"`)
}

func TestGreetingName(t *testing.T) {
	assert.Equal(t, "Student", greetingName(nil))
	assert.Equal(t, "Student", greetingName(&models.Profile{}))
	assert.Equal(t, "Priya", greetingName(&models.Profile{FullName: "Priya"}))
}

func TestSMTPMailerMessage(t *testing.T) {
	m := &SMTPMailer{host: "smtp.example.com", port: 587, from: "noreply@uni.edu"}
	msg, err := m.Message("priya@uni.edu", "Hello", "<p>Hi</p>")
	require.NoError(t, err)
	assert.Equal(t, []string{"noreply@uni.edu"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"Hello"}, msg.GetHeader("Subject"))

	_, err = (&SMTPMailer{}).Message("a@b.co", "s", "b")
	assert.Error(t, err)

	assert.Error(t, m.Send("priya@uni.edu", "Hello", "<p>Hi</p>"), "no credentials")
}
