package apikeys

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/voicedesk/internal/app/system/authz"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/normalize"
	"github.com/dalemusser/voicedesk/internal/app/system/sealbox"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type keyInput struct {
	Key           string         `json:"key"`
	Configuration map[string]any `json:"configuration"`
}

func provider(w http.ResponseWriter, r *http.Request) (models.Provider, bool) {
	p, ok := models.LookupProvider(normalize.Enum(chi.URLParam(r, "provider")))
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "Unsupported provider")
	}
	return p, ok
}

// ServeProviders lists the supported providers. It needs no token.
func ServeProviders(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, models.Providers)
}

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	keys, err := h.Keys.ListByClient(ctx, clientID)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch API keys", err)
		return
	}
	httpx.OK(w, keys)
}

// ServeSet stores or replaces the sealed key for a provider.
func (h *Handler) ServeSet(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	p, ok := provider(w, r)
	if !ok {
		return
	}

	var in keyInput
	if err := httpx.Decode(r, &in); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.Key = strings.TrimSpace(in.Key)
	if msg := checkKey(p, in.Key); msg != "" {
		httpx.Fail(w, http.StatusBadRequest, msg)
		return
	}

	sealed, err := h.Box.Seal([]byte(in.Key))
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to set API key", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	k, err := h.Keys.Upsert(ctx, clientID, p.ID, sealed, sealbox.Hint(in.Key), in.Configuration)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to set API key", err)
		return
	}
	h.Log.Info("api key saved", zap.String("client_id", clientID.Hex()), zap.String("provider", p.ID))
	httpx.Success(w, httpx.M{"message": "API key saved successfully", "data": k})
}

// ServeTest checks the key in the body, or the stored key when the body
// has none. A stored key's outcome is recorded on it.
func (h *Handler) ServeTest(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	p, ok := provider(w, r)
	if !ok {
		return
	}

	var in keyInput
	if err := httpx.Decode(r, &in); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.Key = strings.TrimSpace(in.Key)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.External())
	defer cancel()

	if in.Key != "" {
		valid, msg := h.probe(ctx, p, in.Key)
		httpx.JSON(w, http.StatusOK, httpx.M{"success": valid, "message": msg})
		return
	}

	stored, err := h.Keys.Get(ctx, clientID, p.ID)
	if err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, "API key not found")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to test API key", err)
		return
	}
	plain, err := h.Box.Open(stored.SealedKey)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to test API key", err, zap.String("provider", p.ID))
		return
	}

	valid, msg := h.probe(ctx, p, string(plain))
	if err := h.Keys.RecordTest(ctx, stored.ID, valid); err != nil {
		h.Log.Warn("record api key test failed", zap.Error(err), zap.String("provider", p.ID))
	}
	httpx.JSON(w, http.StatusOK, httpx.M{"success": valid, "message": msg})
}

func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	p, ok := provider(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Keys.Delete(ctx, clientID, p.ID)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to delete API key", err)
		return
	}
	if n == 0 {
		httpx.Fail(w, http.StatusNotFound, "API key not found")
		return
	}
	h.Log.Info("api key deleted", zap.String("client_id", clientID.Hex()), zap.String("provider", p.ID))
	httpx.Success(w, httpx.M{"message": "API key deleted successfully"})
}
