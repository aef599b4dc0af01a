package handlers

import (
	"io"
	"net"
	"net/http"

	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/gateway"
	"go.uber.org/zap"
)

// ContactHandler adapts net/http requests onto the contact gateway.
type ContactHandler struct {
	gw     *gateway.Gateway
	logger *zap.Logger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(gw *gateway.Gateway, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{gw: gw, logger: logger}
}

// Contact handles POST /api/contact. Method enforcement happens inside the
// gateway so the 405 envelope matches the serverless deployment exactly.
func (h *ContactHandler) Contact(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		// MaxBytesReader upstream turns oversized bodies into a read error
		h.logger.Warn("contact_body_read_failed", zap.Error(err))
		http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
		return
	}

	req := &gateway.Request{
		Method:   r.Method,
		Headers:  gateway.NormalizeHeaders(r.Header),
		Body:     body,
		RemoteIP: remoteHost(r.RemoteAddr),
	}

	resp := h.gw.Handle(r.Context(), req)

	for name, value := range resp.Headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(resp.Status)
	if _, err := w.Write(resp.Body); err != nil {
		h.logger.Warn("contact_response_write_failed", zap.Error(err))
	}
}

// remoteHost strips the port from a RemoteAddr, tolerating bare hosts.
func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
