package services

import (
	"fmt"
	"html"
	"strings"
	"time"

	"counsellor-matching/models"
	"counsellor-matching/services/kafka"
)

// EmailEvent is the email.send payload. The consumer hands it to a Mailer.
type EmailEvent struct {
	Event      string `json:"event"`
	Recipient  string `json:"recipient"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	Attachment string `json:"attachment,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// EmailQueue queues mail through Kafka instead of sending inline.
type EmailQueue struct {
	publisher EventPublisher
	topic     string
}

func NewEmailQueue(publisher EventPublisher, topic string) *EmailQueue {
	return &EmailQueue{publisher: publisher, topic: topic}
}

// Send queues an email.send event.
func (q *EmailQueue) Send(to, subject, body string, attachments ...string) error {
	evt := EmailEvent{
		Event:     kafka.EventEmailSend,
		Recipient: to,
		Subject:   subject,
		Body:      body,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if len(attachments) > 0 {
		evt.Attachment = attachments[0]
	}
	if err := q.publisher.Publish(q.topic, "email-"+to, evt); err != nil {
		return fmt.Errorf("failed to queue email: %w", err)
	}
	return nil
}

const emailStyle = `
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #3F7FBF; color: white; padding: 20px; text-align: center; border-radius: 5px; }
        .content { background-color: #f9f9f9; padding: 20px; margin-top: 20px; border-radius: 5px; }
        .info { background-color: #e8f0f8; padding: 15px; margin: 15px 0; border-left: 4px solid #3F7FBF; }
    </style>`

// SuggestionEmailBody lists the suggested counsellors.
func SuggestionEmailBody(studentName string, suggestions *Suggestions) string {
	var rows strings.Builder
	for i, c := range suggestions.Counsellors {
		fmt.Fprintf(&rows, "<li><strong>%d. %s</strong> - %s (fee: %.2f)</li>\n",
			i+1, html.EscapeString(c.Name), html.EscapeString(c.Specialization), c.Fees)
	}
	if rows.Len() == 0 {
		rows.WriteString("<li>No counsellors are listed right now. Please check back soon.</li>\n")
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>%s
</head>
<body>
    <div class="container">
        <div class="header"><h2>Your Counsellor Suggestions</h2></div>
        <div class="content">
            <p>Dear <strong>%s</strong>,</p>
            <p>Thank you for completing the questionnaire. Based on your answers, these counsellors may be a good fit:</p>
            <div class="info"><ul>
%s            </ul></div>
            <p>The attached report has more detail. You can book a session from the counselling portal.</p>
            <p>Take care,<br/>Student Counselling Team</p>
        </div>
    </div>
</body>
</html>
`, emailStyle, html.EscapeString(studentName), rows.String())
}

// BookingConfirmedEmailBody tells the student when and where to join.
func BookingConfirmedEmailBody(studentName string, evt BookingConfirmedEvent) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>%s
</head>
<body>
    <div class="container">
        <div class="header"><h2>Session Confirmed</h2></div>
        <div class="content">
            <p>Dear <strong>%s</strong>,</p>
            <p>Your session with <strong>%s</strong> has been confirmed.</p>
            <div class="info">
                <p><strong>Date:</strong> %s</p>
                <p><strong>Time:</strong> %s</p>
                <p><strong>Session Link:</strong> <a href="%s">%s</a></p>
            </div>
            <p>Please join a few minutes early.</p>
            <p>Take care,<br/>Student Counselling Team</p>
        </div>
    </div>
</body>
</html>
`, emailStyle, html.EscapeString(studentName), html.EscapeString(evt.CounsellorName),
		evt.AppointmentDate, html.EscapeString(evt.AppointmentTime), evt.SessionLink, evt.SessionLink)
}

// greetingName is the profile's name or a neutral fallback.
func greetingName(p *models.Profile) string {
	if p != nil && p.FullName != "" {
		return p.FullName
	}
	return "Student"
}
