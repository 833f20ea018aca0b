package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ariefcatur/go-stock-alerts/internal/inventory"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, kind, message string, details any) {
	writeJSON(w, code, apiError{Error: kind, Message: message, Details: details})
}

// writeDomainError maps the inventory error taxonomy onto status codes.
func writeDomainError(log *zap.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *inventory.StockError
	switch {
	case errors.As(err, &stockErr):
		writeError(w, http.StatusBadRequest, "insufficient_stock", stockErr.Error(), stockErr)
	case errors.Is(err, inventory.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_status", err.Error(), map[string]any{"allowed": inventory.StatusNames()})
	case errors.Is(err, inventory.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, inventory.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	default:
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error", nil)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json body", map[string]any{"error": err.Error()})
		return false
	}
	if err := dec.Decode(&struct{}{}); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json body", map[string]any{"error": "extra data after json"})
		return false
	}
	return true
}
