package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/travio/pkg/logger"
	"github.com/dmitrymomot/travio/pkg/travio"
)

// envelope is the body of every gateway response.
type envelope struct {
	Data  any          `json:"data,omitempty"`
	Error *errorDetail `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: &errorDetail{Code: code, Message: message}})
}

// fail maps a client error to a response. API failures keep their status,
// unreachable upstreams answer 502.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *travio.APIError
	switch {
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		writeError(w, status, "upstream_error", apiErr.Message)
	case errors.Is(err, travio.ErrTransport):
		writeError(w, http.StatusBadGateway, "upstream_unreachable", "booking service unreachable")
	case errors.Is(err, travio.ErrNoCart):
		writeError(w, http.StatusConflict, "no_cart", "no active cart")
	case errors.Is(err, errBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
	default:
		slog.ErrorContext(r.Context(), "gateway request failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", http.StatusText(http.StatusInternalServerError))
	}
}
