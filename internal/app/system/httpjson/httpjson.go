// Package httpjson holds the small JSON response helpers shared by every
// API feature, so handlers set headers and encode bodies the same way.
package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Write encodes v as the JSON response body with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes the standard error envelope: {"message": "..."}.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, map[string]string{"message": message})
}

// FieldErrors writes a validation failure with per-field details.
func FieldErrors(w http.ResponseWriter, fields map[string]string) {
	Write(w, http.StatusBadRequest, map[string]any{
		"message": "Validation failed",
		"errors":  fields,
	})
}

// Decode reads the request body into v. Unknown fields are ignored;
// clients routinely send extras we do not model.
func Decode(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}
	return json.NewDecoder(r.Body).Decode(v)
}
