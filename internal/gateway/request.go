package gateway

import "strings"

// Request is a host-neutral view of one incoming HTTP request. Header keys
// are lowercased; RemoteIP is the connection-derived address when the host
// knows one, empty otherwise.
type Request struct {
	Method   string
	Headers  map[string]string
	Body     []byte
	RemoteIP string
}

// Response is the host-neutral reply the adapters translate back into their
// environment's shape.
type Response struct {
	Status  int
	Headers map[string]string
	Body    []byte
}

// NormalizeHeaders lowercases header names, keeping the first value of each.
func NormalizeHeaders(headers map[string][]string) map[string]string {
	normalized := make(map[string]string, len(headers))
	for name, values := range headers {
		if len(values) == 0 {
			continue
		}
		normalized[strings.ToLower(name)] = values[0]
	}
	return normalized
}

// Forwarded-for style headers consulted for the client address, in order.
// The second is set by Netlify's serverless runtime.
var forwardedHeaders = []string{"x-forwarded-for", "x-nf-client-connection-ip"}

// ClientIP resolves the submitting client's address: first hop of a
// forwarded-for header when present, else the connection address, else the
// literal "unknown".
func (r *Request) ClientIP() string {
	for _, name := range forwardedHeaders {
		if value := r.Headers[name]; value != "" {
			first, _, _ := strings.Cut(value, ",")
			return strings.TrimSpace(first)
		}
	}
	if r.RemoteIP != "" {
		return r.RemoteIP
	}
	return "unknown"
}

// Origin returns the request's Origin header, empty when absent.
func (r *Request) Origin() string {
	return r.Headers["origin"]
}
