package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lststech/agenda-backend/pkg/logging"
)

// Confirmation carries everything needed to notify a customer that their
// appointment is booked.
type Confirmation struct {
	CustomerName  string
	CustomerEmail string
	ServiceName   string
	Start         time.Time
	End           time.Time
	MeetLink      string
	OrganizerName string
	OrganizerMail string
}

// ConfirmationMailer composes and sends booking confirmation emails with
// an ICS invite attached.
type ConfirmationMailer struct {
	sender EmailSender
	logger *logging.Logger
	now    func() time.Time
}

// NewConfirmationMailer builds a mailer on top of any EmailSender.
func NewConfirmationMailer(sender EmailSender, logger *logging.Logger) *ConfirmationMailer {
	if sender == nil {
		sender = NewStubEmailSender(logger)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ConfirmationMailer{sender: sender, logger: logger, now: time.Now}
}

// SendConfirmation sends the booking confirmation. The email carries both
// a plain-text and an HTML body plus the invite attachment.
func (m *ConfirmationMailer) SendConfirmation(ctx context.Context, c Confirmation) error {
	invite := ICalEvent{
		UID:            uuid.NewString() + "@agenda",
		Summary:        c.ServiceName,
		Description:    fmt.Sprintf("Appointment: %s", c.ServiceName),
		Location:       c.MeetLink,
		Start:          c.Start,
		End:            c.End,
		OrganizerName:  c.OrganizerName,
		OrganizerEmail: c.OrganizerMail,
	}

	msg := EmailMessage{
		To:      c.CustomerEmail,
		ToName:  c.CustomerName,
		Subject: fmt.Sprintf("Appointment confirmed: %s", c.ServiceName),
		Body:    m.plainBody(c),
		HTML:    m.htmlBody(c),
		Attachments: []Attachment{{
			Filename:    "invite.ics",
			ContentType: "text/calendar",
			Content:     []byte(invite.Render(m.now())),
		}},
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: confirmation email: %w", err)
	}
	return nil
}

func (m *ConfirmationMailer) plainBody(c Confirmation) string {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour appointment is confirmed.\n\nService: %s\nDate: %s\nTime: %s - %s\n",
		c.CustomerName,
		c.ServiceName,
		c.Start.Format("Monday, January 2, 2006"),
		c.Start.Format("15:04"),
		c.End.Format("15:04"),
	)
	if c.MeetLink != "" {
		body += fmt.Sprintf("Meet link: %s\n", c.MeetLink)
	}
	body += "\nIf you need to make changes, please contact us.\n"
	return body
}

func (m *ConfirmationMailer) htmlBody(c Confirmation) string {
	meetRow := ""
	if c.MeetLink != "" {
		meetRow = fmt.Sprintf(`<p><strong>Meet link:</strong> <a href="%s">%s</a></p>`, c.MeetLink, c.MeetLink)
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1>Appointment Confirmed</h1>
    <p>Hi %s, thank you for scheduling with us! Your appointment has been confirmed.</p>
    <div style="margin: 20px 0; padding: 15px; background: #f9f9f9; border-radius: 5px;">
      <p><strong>Service:</strong> %s</p>
      <p><strong>Date:</strong> %s</p>
      <p><strong>Time:</strong> %s - %s</p>
      %s
    </div>
    <p style="font-size: 12px; color: #777;">This is an automated message, please do not reply to this email.</p>
  </div>
</body>
</html>`,
		c.CustomerName,
		c.ServiceName,
		c.Start.Format("Monday, January 2, 2006"),
		c.Start.Format("15:04"),
		c.End.Format("15:04"),
		meetRow,
	)
}
