package httpx

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TokenRegistry interface {
	Add(ctx context.Context, token string) error
	Remove(ctx context.Context, token string) error
}

type AlertSubscriber interface {
	Subscribe(ctx context.Context) (<-chan []byte, error)
}

// AlertsHandler registers push devices and streams toast alerts to browsers.
type AlertsHandler struct {
	Tokens TokenRegistry
	Feed   AlertSubscriber
	Log    *zap.Logger

	KeepAlive time.Duration
}

type DeviceReq struct {
	Token string `json:"token"`
}

func (h *AlertsHandler) Register(r chi.Router) {
	r.With(withTimeout(5*time.Second)).Post("/devices", h.registerDevice)
	r.With(withTimeout(5*time.Second)).Delete("/devices/{token}", h.removeDevice)
	r.Get("/alerts/stream", h.stream)
}

func (h *AlertsHandler) registerDevice(w http.ResponseWriter, r *http.Request) {
	var req DeviceReq
	if !decodeJSON(w, r, &req) {
		return
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "token is required", nil)
		return
	}
	if err := h.Tokens.Add(r.Context(), token); err != nil {
		writeDomainError(h.Log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func (h *AlertsHandler) removeDevice(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := h.Tokens.Remove(r.Context(), token); err != nil {
		writeDomainError(h.Log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// stream is a server-sent events feed of low-stock alerts.
func (h *AlertsHandler) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal_error", "streaming unsupported", nil)
		return
	}
	ctx := r.Context()
	msgs, err := h.Feed.Subscribe(ctx)
	if err != nil {
		writeDomainError(h.Log, w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := h.KeepAlive
	if keepAlive <= 0 {
		keepAlive = 30 * time.Second
	}
	tick := time.NewTicker(keepAlive)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case m, ok := <-msgs:
			if !ok {
				return
			}
			if _, err := w.Write([]byte("event: low-stock\ndata: " + string(m) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
