// Package respond writes JSON API responses.
package respond

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pliu/chatsight/internal/apperrors"
	"github.com/pliu/chatsight/internal/logger"
	"go.uber.org/zap"
)

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().Debug("writing response", zap.Error(err))
	}
}

// Error writes the {"error": message} envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Err maps err to a status and a client-safe message. Server-side failures
// are logged with their cause.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.L().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	Error(w, status, apperrors.PublicMessage(err))
}

// MethodNotAllowed answers a known path requested with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}
