// Package mailer dispatches the transactional notification for an accepted
// contact submission to the site administrator over SMTP.
package mailer

import (
	"context"
	"fmt"

	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/config"
	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/validation"
)

// FallbackSubject is used when a submission carries no subject of its own.
const FallbackSubject = "Contact Form Submission"

// Message is the admin notification composed from an accepted submission.
type Message struct {
	To      string
	From    string
	ReplyTo string
	Subject string
	Body    string
}

// Transport sends a composed message.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
}

// Provider hands out the process-wide transport, or the names of the
// configuration keys that prevent one from being built. A transport is never
// constructed while required configuration is incomplete.
type Provider interface {
	Transport() (Transport, []string)
}

// Compose builds the admin notification for a submission. The submitter's
// address becomes the reply-to so the administrator can answer directly.
func Compose(cfg *config.Config, sub *validation.Submission) *Message {
	subject := sub.Subject
	if subject == "" {
		subject = FallbackSubject
	}
	from := cfg.MailFrom
	if from == "" {
		from = cfg.AdminEmail
	}
	return &Message{
		To:      cfg.AdminEmail,
		From:    from,
		ReplyTo: sub.Email,
		Subject: subject,
		Body:    fmt.Sprintf("%s (%s): %s", sub.Name, sub.Email, sub.Message),
	}
}
