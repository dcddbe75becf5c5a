// Package httpx provides HTTP response utilities built around a single result envelope.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Result is the only response shape emitted by the JSON API.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK writes a successful envelope carrying data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Result{Success: true, Data: data})
}

// Created writes a 201 envelope carrying data.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Result{Success: true, Data: data})
}

// Message writes a successful envelope with a human readable message only.
func Message(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, Result{Success: true, Message: message})
}

// Fail writes a failure envelope.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Result{Success: false, Message: message})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", ErrValidation)
		}
		return fmt.Errorf("%w: malformed JSON: %v", ErrValidation, err)
	}
	return nil
}
