// Package httpjson writes the JSON response envelope used by every API
// endpoint: {"success": bool, ...} with a conventional status code.
package httpjson

import (
	"encoding/json"
	"net/http"
)

// Envelope is the base shape of every response body.
type Envelope map[string]any

// OK writes a 200 response with success=true and the given extra fields.
func OK(w http.ResponseWriter, fields Envelope) {
	Write(w, http.StatusOK, fields)
}

// Created writes a 201 response with success=true and the given extra fields.
func Created(w http.ResponseWriter, fields Envelope) {
	Write(w, http.StatusCreated, fields)
}

// Write writes success=true with the given status and extra fields.
func Write(w http.ResponseWriter, status int, fields Envelope) {
	body := Envelope{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// Error writes success=false with the given status and error message.
func Error(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Envelope{"success": false, "error": msg})
}

// BadRequest writes a 400 error.
func BadRequest(w http.ResponseWriter, msg string) {
	Error(w, http.StatusBadRequest, msg)
}

// NotFound writes a 404 error.
func NotFound(w http.ResponseWriter, msg string) {
	Error(w, http.StatusNotFound, msg)
}

// Conflict writes a 409 error.
func Conflict(w http.ResponseWriter, msg string) {
	Error(w, http.StatusConflict, msg)
}

// ServerError writes a 500 error.
func ServerError(w http.ResponseWriter, msg string) {
	Error(w, http.StatusInternalServerError, msg)
}

// Decode reads the request body into dst, rejecting unknown fields.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// Encoding a map of marshalable values cannot fail; ignore the error the
	// same way a broken client connection would surface it anyway.
	_ = json.NewEncoder(w).Encode(body)
}
