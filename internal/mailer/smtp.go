package mailer

import (
	"context"
	"sync"

	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/config"
	"gopkg.in/gomail.v2"
)

// SMTPProvider lazily builds and memoizes a gomail-backed transport. The
// configuration check runs on every call until a transport exists, so a
// deployment fixed in place (env vars added, process restarted) needs no code
// path changes.
type SMTPProvider struct {
	cfg *config.Config

	mu     sync.Mutex
	cached Transport
}

// NewSMTPProvider creates a provider bound to the given configuration.
func NewSMTPProvider(cfg *config.Config) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

// Transport returns the memoized transport, constructing it on first use.
// When required SMTP settings are absent it returns their names instead and
// caches nothing.
func (p *SMTPProvider) Transport() (Transport, []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil {
		return p.cached, nil
	}

	if missing := p.cfg.MissingMailKeys(); len(missing) > 0 {
		return nil, missing
	}

	dialer := gomail.NewDialer(p.cfg.SMTPHost, p.cfg.SMTPPort, p.cfg.SMTPUser, p.cfg.SMTPPass)
	dialer.SSL = p.cfg.SMTPSecure
	p.cached = &smtpTransport{dialer: dialer}
	return p.cached, nil
}

type smtpTransport struct {
	dialer *gomail.Dialer
}

// Send dials the configured SMTP server and delivers one message.
// gomail has no context support, so the dial runs in a goroutine and the
// result is abandoned once the deadline passes; the caller treats a timeout
// as a send failure.
func (t *smtpTransport) Send(ctx context.Context, msg *Message) error {
	m := gomail.NewMessage()
	m.SetHeader("To", msg.To)
	m.SetHeader("From", msg.From)
	m.SetHeader("Reply-To", msg.ReplyTo)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	done := make(chan error, 1)
	go func() {
		done <- t.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
