package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"foodshare/internal/apperr"
)

var Validate = validator.New()

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Decode reads a JSON body into v and runs struct validation on it.
func Decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("decode", "invalid request body")
	}
	if err := Validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return apperr.Validation("decode", "%s", strings.Join(fields, "; "))
		}
		return apperr.Validation("decode", "%v", err)
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError maps err onto a status code. Errors outside the taxonomy are
// reported as a generic 500 without leaking their text.
func WriteError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	var ae *apperr.Error
	if errors.As(err, &ae) {
		WriteJSON(w, status, ErrorResponse{Error: ae.Message, Code: string(ae.Kind)})
		return
	}
	WriteJSON(w, status, ErrorResponse{Error: "internal server error", Code: "INTERNAL"})
}

// PathID parses a positive integer route parameter.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("path", "invalid %s %q", name, raw)
	}
	return id, nil
}
