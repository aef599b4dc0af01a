package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// errorBody matches the gateway's response envelope so a recovered panic
// still answers in the shape clients expect.
type errorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// ErrorHandler creates error handling middleware that recovers panics
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					// Log panic details server-side but don't expose to client
					logger.Error("panic_recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					if encodeErr := json.NewEncoder(w).Encode(errorBody{Error: "Internal server error."}); encodeErr != nil {
						logger.Error("failed_to_encode_error_response", zap.Error(encodeErr))
					}
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
