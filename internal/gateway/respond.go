package gateway

import (
	"encoding/json"
	"net/http"
)

// securityHeaders are attached to every gateway response, success or not.
var securityHeaders = map[string]string{
	"Content-Type":           "application/json",
	"X-Content-Type-Options": "nosniff",
	"X-Frame-Options":        "DENY",
	"Referrer-Policy":        "no-referrer",
	"Permissions-Policy":     "geolocation=(), microphone=(), camera=()",
}

// envelope is the body of every gateway response.
type envelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func respond(status int, body envelope, extra map[string]string) Response {
	headers := make(map[string]string, len(securityHeaders)+len(extra))
	for name, value := range securityHeaders {
		headers[name] = value
	}
	for name, value := range extra {
		headers[name] = value
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		// envelope cannot fail to marshal; keep the contract anyway
		encoded = []byte(`{"ok":false}`)
	}
	return Response{Status: status, Headers: headers, Body: encoded}
}

func reject(status int, message string) Response {
	return respond(status, envelope{OK: false, Error: message}, nil)
}

func accept() Response {
	return respond(http.StatusOK, envelope{OK: true}, nil)
}
