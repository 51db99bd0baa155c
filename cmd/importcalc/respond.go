package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/importcalc/internal/apperr"
	"github.com/Simplici0/importcalc/internal/logging"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders {error, kind, requestId, ...fields} with the status of the error kind.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	kind := apperr.KindOf(err)

	logger := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("kind", string(kind)), zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.String("kind", string(kind)), zap.Error(err))
	}

	message := err.Error()
	if kind == apperr.KindInternal {
		message = "internal error"
	}
	payload := map[string]any{}
	for k, v := range apperr.FieldsOf(err) {
		payload[k] = v
	}
	payload["error"] = message
	payload["kind"] = string(kind)
	if id := middleware.GetReqID(r.Context()); id != "" {
		payload["requestId"] = id
	}
	writeJSON(w, status, payload)
}

// decodeJSON reads a JSON body. Syntax errors, unknown shapes and oversize bodies are InvalidInput.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Invalid("request body exceeds %d bytes", tooLarge.Limit)
		}
		return apperr.Invalid("invalid JSON body: %v", err)
	}
	return nil
}
