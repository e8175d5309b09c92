package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeEmailData holds data for the sign-up welcome email.
type WelcomeEmailData struct {
	Email    string
	Username string
}

// InvitationEmailData holds data for the event invitation email. Identifier
// is the event's public identifier.
type InvitationEmailData struct {
	Email      string
	Username   string
	EventName  string
	Identifier int
}

// EmailService defines the contract for sending domain-level emails. All
// sends are best-effort on top of the inbox notifications; callers log and
// continue on failure.
type EmailService interface {
	SendWelcome(ctx context.Context, data *WelcomeEmailData) error
	SendInvitation(ctx context.Context, data *InvitationEmailData) error
}
