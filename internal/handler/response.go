package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/inquirydesk/backend/internal/apperr"
)

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Success  bool   `json:"success"`
	Error    string `json:"error"`
	Message  string `json:"message,omitempty"`
	Attempts *int   `json:"attempts,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// writeError maps an application error to its HTTP status:
// connectivity → 503, validation → 400, everything else → 500.
func writeError(w http.ResponseWriter, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Store("request", err)
	}

	switch e.Kind {
	case apperr.KindConnectivity:
		attempts := e.Attempts
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:    "database_unavailable",
			Message:  "Database is not connected",
			Attempts: &attempts,
		})
	case apperr.KindValidation:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: e.Detail})
	default:
		msg := e.Detail
		if e.Err != nil {
			msg = e.Err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "database_query_failed",
			Message: msg,
		})
	}
}
