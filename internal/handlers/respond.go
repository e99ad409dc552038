// Package handlers is the HTTP surface of the API. Handlers decode requests,
// call a service, and render its result; every error reaches the client as a
// JSON body through the shared taxonomy mapping.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bzbookit/bzbookit-backend/internal/apperr"
)

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, messageBody{Message: apperr.Message(err)})
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeJSON(w, http.StatusMethodNotAllowed, messageBody{Message: "Method not allowed."})
}
