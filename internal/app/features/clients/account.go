package clients

import (
	"context"
	"errors"
	"net/http"

	clientstore "github.com/dalemusser/voicedesk/internal/app/store/clients"
	"github.com/dalemusser/voicedesk/internal/app/system/authz"
	"github.com/dalemusser/voicedesk/internal/app/system/htmlsanitize"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/inputval"
	"github.com/dalemusser/voicedesk/internal/app/system/normalize"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ServeProfile handles GET /profile for any signed-in caller. Human agents
// see their owning client. The logo URL is presigned on every read.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	clientID, ok := authz.ClientID(r)
	if !ok {
		httpx.Fail(w, http.StatusNotFound, "Client not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.Clients.GetByID(ctx, clientID)
	if err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, "Client not found")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch client profile", err)
		return
	}

	c.BusinessLogoURL = ""
	if c.BusinessLogoKey != "" {
		url, err := h.Storage.PresignGet(ctx, c.BusinessLogoKey)
		if err != nil {
			httpx.ServerError(w, h.Log, "Failed to fetch client profile", err,
				zap.String("client_id", c.ID.Hex()))
			return
		}
		c.BusinessLogoURL = url
	}
	httpx.OK(w, c)
}

// ServeGet handles GET / for the calling client.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Clients.GetByID(ctx, clientID)
	if err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, "Client not found")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch client", err)
		return
	}
	httpx.OK(w, c)
}

type updateInput struct {
	Name     *string        `json:"name" validate:"omitempty,notblank,max=200" label:"Name"`
	Email    *string        `json:"email" validate:"omitempty,email" label:"Email"`
	Settings map[string]any `json:"settings"`
}

// ServeUpdate handles PUT / for the calling client: name, email and the
// free-form settings map.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)

	var in updateInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Name != nil {
		v := htmlsanitize.Clean(*in.Name)
		in.Name = &v
	}
	if in.Email != nil {
		v := normalize.Email(*in.Email)
		in.Email = &v
	}
	if res := inputval.Validate(in); res.HasErrors() {
		httpx.Fail(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Clients.UpdateAccount(ctx, clientID, clientstore.AccountUpdate{
		Name:     in.Name,
		Email:    in.Email,
		Settings: in.Settings,
	})
	switch {
	case errors.Is(err, clientstore.ErrDuplicateEmail):
		httpx.Fail(w, http.StatusBadRequest, "Email already registered")
		return
	case err == mongo.ErrNoDocuments:
		httpx.Fail(w, http.StatusNotFound, "Client not found")
		return
	case err != nil:
		httpx.ServerError(w, h.Log, "Failed to update client", err)
		return
	}
	httpx.OK(w, c)
}
