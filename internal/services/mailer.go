package services

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type MailerConfig struct {
	APIKey      string
	FromEmail   string
	FromName    string
	FrontendURL string
}

// Mailer sends transactional email through SendGrid. Without an API key it
// degrades to a logged no-op; send failures are logged and reported as
// false, never returned as errors.
type Mailer struct {
	cfg MailerConfig
}

func NewMailer(cfg MailerConfig) *Mailer {
	if cfg.FromEmail == "" {
		cfg.FromEmail = "noreply@trackline.dev"
	}
	if cfg.FromName == "" {
		cfg.FromName = "Trackline"
	}
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = "http://localhost:5173"
	}
	return &Mailer{cfg: cfg}
}

// InvitationLink builds the redemption URL embedded in invitation emails.
func (m *Mailer) InvitationLink(token string) string {
	return fmt.Sprintf("%s?token=%s", m.cfg.FrontendURL, token)
}

func (m *Mailer) send(toEmail, subject, plain, html string) bool {
	if m.cfg.APIKey == "" {
		log.Printf("SendGrid not configured, skipping email to %s (%s)", toEmail, subject)
		return false
	}

	from := mail.NewEmail(m.cfg.FromName, m.cfg.FromEmail)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	client := sendgrid.NewSendClient(m.cfg.APIKey)
	response, err := client.Send(message)

	if err != nil {
		log.Printf("Failed to send email to %s: %v", toEmail, err)
		return false
	}

	if response.StatusCode >= 300 {
		log.Printf("SendGrid returned status %d for email to %s", response.StatusCode, toEmail)
		return false
	}

	log.Printf("Email sent to %s (%s)", toEmail, subject)
	return true
}

// SendInvitation emails the redemption link for a newly issued invitation.
// On failure the token is logged so an operator can hand it over manually.
func (m *Mailer) SendInvitation(toEmail, activityTitle, token, inviterName string) bool {
	link := m.InvitationLink(token)

	plain := fmt.Sprintf(`Hello,

%s invited you to collaborate on:

%s

To accept, open the following link:
%s

This link expires in 7 days.

Trackline
If you don't recognize this invitation you can ignore this message.
`, inviterName, activityTitle, link)

	html := fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif; color: #333;">
<div style="max-width:600px;margin:0 auto;padding:20px;border:1px solid #ddd;border-radius:8px;">
<h2>Invitation to collaborate</h2>
<p><strong>%s</strong> invited you to work on:</p>
<div style="background:#ecf0f1;padding:15px;border-left:4px solid #3498db;"><h3 style="margin:0;">%s</h3></div>
<p style="text-align:center;margin:30px 0;"><a href="%s" style="background:#27ae60;color:#fff;padding:12px 30px;text-decoration:none;border-radius:5px;font-weight:bold;">Accept invitation</a></p>
<p style="color:#7f8c8d;font-size:0.9em;">This link expires in 7 days.</p>
</div></body></html>`, inviterName, activityTitle, link)

	sent := m.send(toEmail, fmt.Sprintf("Invitation to collaborate: %s", activityTitle), plain, html)

	if !sent {
		log.Printf("Fallback invitation token for %s: %s", toEmail, token)
	}

	return sent
}

// SendAssignment notifies a collaborator that an activity was assigned to
// them.
func (m *Mailer) SendAssignment(toEmail, activityTitle, activityDescription, assignerName string) bool {
	plain := fmt.Sprintf(`Hello,

%s assigned you a new activity:

%s
%s

See the details on the platform:
%s

Trackline
`, assignerName, activityTitle, activityDescription, m.cfg.FrontendURL)

	html := fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif; color: #333;">
<div style="max-width:600px;margin:0 auto;padding:20px;border:1px solid #ddd;border-radius:8px;">
<h2>New activity assigned</h2>
<p><strong>%s</strong> assigned you:</p>
<div style="background:#ecf0f1;padding:15px;border-left:4px solid #3498db;"><h3 style="margin:0;">%s</h3><p style="margin:10px 0 0 0;color:#555;">%s</p></div>
<p style="text-align:center;margin:30px 0;"><a href="%s" style="background:#27ae60;color:#fff;padding:12px 30px;text-decoration:none;border-radius:5px;font-weight:bold;">Open Trackline</a></p>
</div></body></html>`, assignerName, activityTitle, activityDescription, m.cfg.FrontendURL)

	return m.send(toEmail, fmt.Sprintf("New activity assigned: %s", activityTitle), plain, html)
}

// SendDeadlineReminder warns an assignee about an approaching due date.
func (m *Mailer) SendDeadlineReminder(toEmail, activityTitle, dueDate, ownerName string) bool {
	plain := fmt.Sprintf(`Hello,

This is a reminder that the activity "%s" assigned by %s is due: %s.

Please update its status on the platform:
%s

Trackline
`, activityTitle, ownerName, dueDate, m.cfg.FrontendURL)

	html := fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif; color: #333;">
<div style="max-width:600px;margin:0 auto;padding:20px;border:1px solid #ddd;border-radius:8px;">
<h3>Reminder: activity due soon</h3>
<p><strong>%s</strong></p>
<p>Assigned by: %s</p>
<p>Due: <strong>%s</strong></p>
<p><a href="%s" style="background:#27ae60;color:#fff;padding:10px 18px;text-decoration:none;border-radius:4px;">Open Trackline</a></p>
</div></body></html>`, activityTitle, ownerName, dueDate, m.cfg.FrontendURL)

	return m.send(toEmail, fmt.Sprintf("Reminder: activity due soon - %s", activityTitle), plain, html)
}
