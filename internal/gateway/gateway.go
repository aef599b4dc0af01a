// Package gateway implements the contact submission pipeline shared by the
// standalone server and the serverless function: origin guard, method check,
// payload validation, spam suppression, per-client rate limiting and
// transactional mail dispatch.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/config"
	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/mailer"
	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/ratelimit"
	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/validation"
	"go.uber.org/zap"
)

// User-facing response messages. The honeypot message is deliberately vague
// so bots are not told which field gave them away.
const (
	msgForbiddenOrigin   = "Forbidden origin."
	msgMethodNotAllowed  = "Method not allowed."
	msgInvalidJSON       = "Invalid JSON."
	msgInvalidSubmission = "Invalid submission."
	msgMissingFields     = "Missing required fields."
	msgInvalidLength     = "Invalid field length."
	msgInvalidEmail      = "Invalid email address."
	msgRateLimited       = "Too many requests. Please try again later."
	msgNotConfigured     = "Email service not configured."
	msgSendFailed        = "Failed to send email."
)

// RateLimiter decides whether a client key may submit at a given instant.
type RateLimiter interface {
	Check(key string, now time.Time) ratelimit.Result
}

// Gateway is the host-neutral contact submission handler. Both deployment
// hosts hold one instance and feed it normalized requests.
type Gateway struct {
	cfg     *config.Config
	origins AllowList
	limiter RateLimiter
	mail    mailer.Provider
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a gateway with its collaborators injected.
func New(cfg *config.Config, limiter RateLimiter, mail mailer.Provider, logger *zap.Logger) *Gateway {
	return &Gateway{
		cfg:     cfg,
		origins: AllowList(cfg.AllowedOrigins),
		limiter: limiter,
		mail:    mail,
		logger:  logger,
		now:     time.Now,
	}
}

// Handle runs one submission through the pipeline. Every check short-circuits
// with its own status and message; no step is retried or revisited.
func (g *Gateway) Handle(ctx context.Context, req *Request) Response {
	origin := req.Origin()
	if !g.origins.Allows(origin) {
		g.logger.Warn("contact_origin_rejected", zap.String("origin", origin))
		return reject(http.StatusForbidden, msgForbiddenOrigin)
	}

	if req.Method != http.MethodPost {
		return reject(http.StatusMethodNotAllowed, msgMethodNotAllowed)
	}

	payload, ok := parsePayload(req.Body)
	if !ok {
		return reject(http.StatusBadRequest, msgInvalidJSON)
	}

	clientIP := req.ClientIP()

	if strings.TrimSpace(payload.field("company")) != "" {
		g.logger.Info("contact_honeypot_tripped", zap.String("client_ip", clientIP))
		return reject(http.StatusBadRequest, msgInvalidSubmission)
	}

	sub := &validation.Submission{
		Name:    validation.SanitizeHeaderValue(payload.field("name")),
		Email:   validation.SanitizeHeaderValue(payload.field("email")),
		Subject: validation.SanitizeHeaderValue(payload.field("subject")),
		Message: strings.TrimSpace(payload.field("message")),
	}
	if err := sub.Validate(); err != nil {
		return reject(http.StatusBadRequest, validationMessage(err))
	}

	if result := g.limiter.Check(clientIP, g.now()); !result.Allowed {
		g.logger.Info("contact_rate_limited",
			zap.String("client_ip", clientIP),
			zap.Int("retry_after_seconds", result.RetryAfterSeconds),
		)
		return respond(http.StatusTooManyRequests,
			envelope{OK: false, Error: msgRateLimited},
			map[string]string{"Retry-After": strconv.Itoa(result.RetryAfterSeconds)},
		)
	}

	transport, missing := g.mail.Transport()
	if len(missing) > 0 {
		// The key names stay server-side; the client only learns the
		// service is unavailable.
		g.logger.Error("smtp_config_missing", zap.Strings("missing_keys", missing))
		return reject(http.StatusInternalServerError, msgNotConfigured)
	}

	sendCtx, cancel := context.WithTimeout(ctx, time.Duration(g.cfg.SendTimeoutSeconds)*time.Second)
	defer cancel()

	if err := transport.Send(sendCtx, mailer.Compose(g.cfg, sub)); err != nil {
		g.logger.Error("contact_send_failed", zap.Error(err))
		return reject(http.StatusInternalServerError, msgSendFailed)
	}

	g.logger.Info("contact_sent", zap.String("client_ip", clientIP))
	return accept()
}

// payload carries the decoded request body. Non-string and absent fields
// read as empty strings.
type payload map[string]any

func (p payload) field(key string) string {
	s, _ := p[key].(string)
	return s
}

// parsePayload decodes the request body. An empty body counts as an empty
// object; a non-object JSON value yields no fields rather than an error.
func parsePayload(body []byte) (payload, bool) {
	if len(bytes.TrimSpace(body)) == 0 {
		return payload{}, true
	}
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, false
	}
	fields, _ := raw.(map[string]any)
	return payload(fields), true
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, validation.ErrMissingFields):
		return msgMissingFields
	case errors.Is(err, validation.ErrFieldLength):
		return msgInvalidLength
	case errors.Is(err, validation.ErrInvalidEmail):
		return msgInvalidEmail
	default:
		return msgInvalidSubmission
	}
}
