package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iota-uz/people-sync/pkg/serrors"
)

// ErrorEnvelope standardizes JSON error responses for API namespaces.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// WriteServiceError maps a coded service error to a response, hiding storage
// internals behind a generic message for anything uncoded.
func WriteServiceError(w http.ResponseWriter, err error) error {
	var coded *serrors.BaseError
	if errors.As(err, &coded) {
		status := http.StatusInternalServerError
		var meta map[string]string
		switch coded.Code {
		case "PEOPLE_VALIDATION":
			status = http.StatusBadRequest
		case "PEOPLE_NOT_FOUND":
			status = http.StatusNotFound
		}
		// Details explain client mistakes; persistence details stay in the logs.
		if status != http.StatusInternalServerError && coded.Details != "" {
			meta = map[string]string{"details": coded.Details}
		}
		return WriteError(w, status, coded.Code, coded.Message, meta)
	}
	return WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}
