// pkg/middleware/validation.go

package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
)

const maxBodySize = 1 << 20 // 1 MB

// ErrorResponse стандартный формат для ошибок запроса
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ValidateRequest проверяет Content-Type и ограничивает размер тела запроса
func ValidateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			contentType := r.Header.Get("Content-Type")
			if contentType != "" && !strings.Contains(contentType, "application/json") {
				writeBadRequest(w, "invalid Content-Type, expected application/json")
				return
			}
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		next.ServeHTTP(w, r)
	})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg, Code: "VALIDATION_ERROR"})
}
