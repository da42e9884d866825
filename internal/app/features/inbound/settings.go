package inbound

import (
	"context"
	"net/http"

	"github.com/dalemusser/voicedesk/internal/app/system/authz"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
)

func (h *Handler) ServeGetSettings(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	s, err := h.Settings.Get(ctx, clientID)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch settings", err)
		return
	}
	httpx.OK(w, s)
}

// ServePutSettings replaces the settings document. The body is either
// {"settings": {...}} or the settings object itself.
func (h *Handler) ServePutSettings(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)

	var body map[string]any
	if err := httpx.Decode(r, &body); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	settings := body
	if inner, ok := body["settings"].(map[string]any); ok && len(body) == 1 {
		settings = inner
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	s, err := h.Settings.Save(ctx, clientID, settings)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to update settings", err)
		return
	}
	httpx.OK(w, s)
}
