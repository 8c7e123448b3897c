// Package server exposes registered API models over HTTP as the
// frontend data-manager endpoint.
package server

import (
	"encoding/json"
	"net/http"
)

// Envelope is the JSON shape of every API response: status is "OK" on
// success and a human-readable message on failure; payload is null on
// failure.
type Envelope struct {
	Status  string `json:"status"`
	Payload any    `json:"payload"`
}

// Success writes a 200 response carrying the payload.
func Success(w http.ResponseWriter, payload any) {
	writeEnvelope(w, http.StatusOK, Envelope{Status: "OK", Payload: payload})
}

// Failure writes an error response. The message becomes the envelope
// status; code defaults to 400 when zero.
func Failure(w http.ResponseWriter, message string, code int) {
	if code == 0 {
		code = http.StatusBadRequest
	}
	writeEnvelope(w, code, Envelope{Status: message, Payload: nil})
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	// Marshal first so an encoding failure cannot corrupt a response
	// whose header was already written.
	data, err := json.Marshal(env)
	if err != nil {
		http.Error(w, `{"status":"Internal serialization error","payload":null}`,
			http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // nothing to do about a dead client
}
