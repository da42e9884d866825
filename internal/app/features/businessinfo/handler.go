// internal/app/features/businessinfo/handler.go
package businessinfo

import (
	"context"
	"errors"
	"net/http"
	"strings"

	businessinfostore "github.com/dalemusser/voicedesk/internal/app/store/businessinfo"
	"github.com/dalemusser/voicedesk/internal/app/system/authz"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the free-text business description agents are briefed with.
type Handler struct {
	Info *businessinfostore.Store
	Log  *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Info: businessinfostore.New(db), Log: logger}
}

// Routes mounts at /api/v1/client/business-info behind RequireClient.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeCreate)
	r.Get("/{id}", h.ServeGet)
	r.Put("/{id}", h.ServeUpdate)
	return r
}

type textInput struct {
	Text string `json:"text"`
}

// decodeText writes the 400 itself when the text is missing.
func decodeText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var in textInput
	if err := httpx.Decode(r, &in); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return "", false
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		httpx.Fail(w, http.StatusBadRequest, "Text is required")
		return "", false
	}
	return text, true
}

func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	text, ok := decodeText(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.Info.Create(ctx, clientID, text)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to create business info", err)
		return
	}
	httpx.Created(w, "", b)
}

func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	id, ok := httpx.ObjectIDParam(r, "id")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, "Business info not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.Info.GetForClient(ctx, clientID, id)
	if err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, "Business info not found")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch business info", err)
		return
	}
	httpx.OK(w, b)
}

func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	id, ok := httpx.ObjectIDParam(r, "id")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, "Business info not found")
		return
	}
	text, ok := decodeText(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.Info.UpdateText(ctx, clientID, id, text)
	if err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, "Business info not found")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to update business info", err)
		return
	}
	httpx.OK(w, b)
}
