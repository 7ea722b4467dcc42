package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"stock-catalog/logger"
	"stock-catalog/models"
)

// Error codes returned in the JSON error body.
const (
	codeBadRequest = "bad_request"
	codeNotFound   = "not_found"
	codeInternal   = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// handleError maps domain sentinels to HTTP statuses. Anything else is
// logged and reported as a bare internal error.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
	default:
		logger.FromContext(r.Context()).Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}
