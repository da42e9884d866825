// internal/app/features/bot/handler.go
package bot

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/voicedesk/internal/app/system/authz"
	"github.com/dalemusser/voicedesk/internal/app/system/botproxy"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/limits"
	"github.com/dalemusser/voicedesk/internal/app/system/metrics"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Forwarder relays a tenant's message to the bot API.
type Forwarder interface {
	Forward(ctx context.Context, clientID string, payload []byte) (botproxy.Response, error)
}

type Handler struct {
	Bot     Forwarder
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

func NewHandler(bot Forwarder, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{Bot: bot, Metrics: m, Log: logger}
}

// Routes mounts at /api/v1/client/bot behind RequireClient.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/send", h.ServeSend)
	return r
}

// ServeSend forwards the JSON body and relays the downstream status and body
// unchanged.
func (h *Handler) ServeSend(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)

	payload, err := io.ReadAll(io.LimitReader(r.Body, limits.MaxBotPayload+1))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(payload) > limits.MaxBotPayload {
		httpx.Fail(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.External())
	defer cancel()

	resp, err := h.Bot.Forward(ctx, clientID.Hex(), payload)
	switch {
	case errors.Is(err, botproxy.ErrBadPayload):
		httpx.Fail(w, http.StatusBadRequest, "Request body must be a JSON object")
		return
	case errors.Is(err, botproxy.ErrNotConfigured):
		httpx.ServerError(w, h.Log, "Bot service is not configured", err)
		return
	case err != nil:
		h.Metrics.BotProxy(0)
		httpx.ServerError(w, h.Log, "Failed to reach bot service", err, zap.String("client_id", clientID.Hex()))
		return
	}
	h.Metrics.BotProxy(resp.Status)

	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}
