package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/config"
	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/mailer"
	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/ratelimit"
	"go.uber.org/zap"
)

type stubTransport struct {
	err  error
	sent []*mailer.Message
}

func (s *stubTransport) Send(ctx context.Context, msg *mailer.Message) error {
	s.sent = append(s.sent, msg)
	return s.err
}

type stubProvider struct {
	transport *stubTransport
	missing   []string
}

func (p *stubProvider) Transport() (mailer.Transport, []string) {
	if len(p.missing) > 0 {
		return nil, p.missing
	}
	return p.transport, nil
}

func testConfig() *config.Config {
	return &config.Config{
		SMTPHost:           "smtp.example.com",
		SMTPPort:           587,
		SMTPUser:           "mailer",
		SMTPPass:           "secret",
		AdminEmail:         "admin@example.com",
		MailFrom:           "admin@example.com",
		SendTimeoutSeconds: 5,
	}
}

func newTestGateway(cfg *config.Config, provider mailer.Provider) *Gateway {
	return New(cfg, ratelimit.New(ratelimit.DefaultWindow, ratelimit.DefaultMax), provider, zap.NewNop())
}

func postRequest(body string) *Request {
	return &Request{
		Method:   http.MethodPost,
		Headers:  map[string]string{"content-type": "application/json"},
		Body:     []byte(body),
		RemoteIP: "203.0.113.7",
	}
}

func validBody() string {
	return `{"name":"Ann","email":"ann@x.com","subject":"Hi","message":"Hello","company":""}`
}

func decodeEnvelope(t *testing.T, resp Response) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	return env
}

func TestHandleSuccess(t *testing.T) {
	t.Parallel()

	transport := &stubTransport{}
	g := newTestGateway(testConfig(), &stubProvider{transport: transport})

	resp := g.Handle(context.Background(), postRequest(validBody()))

	if resp.Status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Status)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("expected body {\"ok\":true}, got %s", resp.Body)
	}
	if len(transport.sent) != 1 {
		t.Fatalf("expected 1 message sent, got %d", len(transport.sent))
	}

	msg := transport.sent[0]
	if msg.ReplyTo != "ann@x.com" {
		t.Errorf("expected reply-to ann@x.com, got %q", msg.ReplyTo)
	}
	if msg.To != "admin@example.com" {
		t.Errorf("expected recipient admin@example.com, got %q", msg.To)
	}
	if msg.Subject != "Hi" {
		t.Errorf("expected subject Hi, got %q", msg.Subject)
	}
	if msg.Body != "Ann (ann@x.com): Hello" {
		t.Errorf("unexpected mail body %q", msg.Body)
	}
}

func TestHandleRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		request    *Request
		wantStatus int
		wantError  string
	}{
		{
			name: "wrong method",
			request: &Request{
				Method:  http.MethodGet,
				Headers: map[string]string{},
			},
			wantStatus: http.StatusMethodNotAllowed,
			wantError:  "Method not allowed.",
		},
		{
			name:       "invalid json",
			request:    postRequest(`{"name":`),
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid JSON.",
		},
		{
			name:       "empty body is missing fields, not invalid json",
			request:    postRequest(""),
			wantStatus: http.StatusBadRequest,
			wantError:  "Missing required fields.",
		},
		{
			name:       "scalar json body is missing fields",
			request:    postRequest(`5`),
			wantStatus: http.StatusBadRequest,
			wantError:  "Missing required fields.",
		},
		{
			name:       "honeypot filled",
			request:    postRequest(`{"name":"Ann","email":"ann@x.com","message":"Hello","company":"Acme"}`),
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid submission.",
		},
		{
			name:       "honeypot filled with otherwise invalid fields",
			request:    postRequest(`{"company":"Acme"}`),
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid submission.",
		},
		{
			name:       "honeypot whitespace only passes",
			request:    postRequest(`{"name":"Ann","email":"ann@x.com","message":"Hello","company":"  "}`),
			wantStatus: http.StatusOK,
		},
		{
			name:       "non-string fields become empty",
			request:    postRequest(`{"name":42,"email":true,"message":["x"]}`),
			wantStatus: http.StatusBadRequest,
			wantError:  "Missing required fields.",
		},
		{
			name:       "whitespace-only name is missing",
			request:    postRequest(`{"name":"  ","email":"ann@x.com","message":"Hello"}`),
			wantStatus: http.StatusBadRequest,
			wantError:  "Missing required fields.",
		},
		{
			name: "oversized message",
			request: postRequest(fmt.Sprintf(`{"name":"Ann","email":"ann@x.com","message":%q}`,
				strings.Repeat("m", 2001))),
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid field length.",
		},
		{
			name:       "malformed email",
			request:    postRequest(`{"name":"Ann","email":"not-an-email","message":"Hello"}`),
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid email address.",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := newTestGateway(testConfig(), &stubProvider{transport: &stubTransport{}})

			resp := g.Handle(context.Background(), tt.request)

			if resp.Status != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, resp.Status)
			}
			env := decodeEnvelope(t, resp)
			if tt.wantError != "" {
				if env.OK {
					t.Error("expected ok=false")
				}
				if env.Error != tt.wantError {
					t.Errorf("expected error %q, got %q", tt.wantError, env.Error)
				}
			} else if !env.OK {
				t.Errorf("expected ok=true, got error %q", env.Error)
			}
		})
	}
}

func TestHandleOriginGuard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		allowed    []string
		origin     string
		wantStatus int
	}{
		{"open policy allows any origin", nil, "https://y.com", http.StatusOK},
		{"open policy allows absent origin", nil, "", http.StatusOK},
		{"listed origin passes", []string{"https://x.com"}, "https://x.com", http.StatusOK},
		{"unlisted origin rejected", []string{"https://x.com"}, "https://y.com", http.StatusForbidden},
		{"absent origin rejected when list set", []string{"https://x.com"}, "", http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			cfg.AllowedOrigins = tt.allowed
			g := newTestGateway(cfg, &stubProvider{transport: &stubTransport{}})

			req := postRequest(validBody())
			if tt.origin != "" {
				req.Headers["origin"] = tt.origin
			}

			resp := g.Handle(context.Background(), req)
			if resp.Status != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, resp.Status)
			}
			if tt.wantStatus == http.StatusForbidden {
				env := decodeEnvelope(t, resp)
				if env.Error != "Forbidden origin." {
					t.Errorf("expected forbidden origin error, got %q", env.Error)
				}
			}
		})
	}
}

func TestHandleRateLimit(t *testing.T) {
	t.Parallel()

	transport := &stubTransport{}
	g := newTestGateway(testConfig(), &stubProvider{transport: transport})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		resp := g.Handle(context.Background(), postRequest(validBody()))
		if resp.Status != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, resp.Status)
		}
	}

	resp := g.Handle(context.Background(), postRequest(validBody()))
	if resp.Status != http.StatusTooManyRequests {
		t.Fatalf("6th request: expected 429, got %d", resp.Status)
	}
	env := decodeEnvelope(t, resp)
	if env.Error != "Too many requests. Please try again later." {
		t.Errorf("unexpected error message %q", env.Error)
	}
	retryAfter := resp.Headers["Retry-After"]
	if retryAfter != "600" {
		t.Errorf("expected Retry-After 600, got %q", retryAfter)
	}
	if len(transport.sent) != 5 {
		t.Errorf("expected 5 sends before the limit, got %d", len(transport.sent))
	}

	// A different client IP is unaffected
	other := postRequest(validBody())
	other.Headers["x-forwarded-for"] = "198.51.100.9"
	if resp := g.Handle(context.Background(), other); resp.Status != http.StatusOK {
		t.Errorf("other client: expected 200, got %d", resp.Status)
	}

	// Past the window the original client starts fresh
	now = now.Add(10*time.Minute + time.Second)
	if resp := g.Handle(context.Background(), postRequest(validBody())); resp.Status != http.StatusOK {
		t.Errorf("after window expiry: expected 200, got %d", resp.Status)
	}
}

func TestHandleMailConfigMissing(t *testing.T) {
	t.Parallel()

	transport := &stubTransport{}
	g := newTestGateway(testConfig(), &stubProvider{
		transport: transport,
		missing:   []string{"SMTP_HOST"},
	})

	resp := g.Handle(context.Background(), postRequest(validBody()))

	if resp.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Status)
	}
	env := decodeEnvelope(t, resp)
	if env.Error != "Email service not configured." {
		t.Errorf("unexpected error %q", env.Error)
	}
	if len(transport.sent) != 0 {
		t.Errorf("expected no send attempt, got %d", len(transport.sent))
	}
}

func TestHandleSendFailure(t *testing.T) {
	t.Parallel()

	transport := &stubTransport{err: fmt.Errorf("connection refused")}
	g := newTestGateway(testConfig(), &stubProvider{transport: transport})

	resp := g.Handle(context.Background(), postRequest(validBody()))

	if resp.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Status)
	}
	env := decodeEnvelope(t, resp)
	if env.Error != "Failed to send email." {
		t.Errorf("unexpected error %q", env.Error)
	}
}

func TestHandleSubjectFallback(t *testing.T) {
	t.Parallel()

	transport := &stubTransport{}
	g := newTestGateway(testConfig(), &stubProvider{transport: transport})

	body := `{"name":"Ann","email":"ann@x.com","message":"Hello"}`
	if resp := g.Handle(context.Background(), postRequest(body)); resp.Status != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	if len(transport.sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(transport.sent))
	}
	if got := transport.sent[0].Subject; got != mailer.FallbackSubject {
		t.Errorf("expected fallback subject, got %q", got)
	}
}

func TestHandleSanitizesHeaderFields(t *testing.T) {
	t.Parallel()

	transport := &stubTransport{}
	g := newTestGateway(testConfig(), &stubProvider{transport: transport})

	body := `{"name":"Ann\r\nBcc: spam@spam.com","email":"ann@x.com","subject":"Hi\nthere","message":"line one\nline two"}`
	if resp := g.Handle(context.Background(), postRequest(body)); resp.Status != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Status)
	}

	msg := transport.sent[0]
	if strings.ContainsAny(msg.Subject, "\r\n") {
		t.Errorf("subject still contains line breaks: %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "Ann Bcc: spam@spam.com") {
		t.Errorf("name was not collapsed: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "line one\nline two") {
		t.Errorf("message newlines should be preserved: %q", msg.Body)
	}
}

func TestHandleResponseHeaders(t *testing.T) {
	t.Parallel()

	g := newTestGateway(testConfig(), &stubProvider{transport: &stubTransport{}})

	requests := map[string]*Request{
		"success":   postRequest(validBody()),
		"rejection": postRequest(`{"name":""}`),
		"method":    {Method: http.MethodDelete, Headers: map[string]string{}},
	}

	want := map[string]string{
		"Content-Type":           "application/json",
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
		"Permissions-Policy":     "geolocation=(), microphone=(), camera=()",
	}

	for name, req := range requests {
		resp := g.Handle(context.Background(), req)
		for header, value := range want {
			if got := resp.Headers[header]; got != value {
				t.Errorf("%s: header %s = %q, want %q", name, header, got, value)
			}
		}
	}
}
