package agents

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	agentstore "github.com/dalemusser/voicedesk/internal/app/store/agents"
	"github.com/dalemusser/voicedesk/internal/app/system/authz"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/inputval"
	"github.com/dalemusser/voicedesk/internal/app/system/normalize"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// decodeAgent reads and checks an agentInput, writing the 400 itself.
func decodeAgent(w http.ResponseWriter, r *http.Request) (agentInput, int, bool) {
	var in agentInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return in, 0, false
	}
	in.normalize()
	idx, msg := in.defaultIndex()
	if msg != "" {
		httpx.Fail(w, http.StatusBadRequest, msg)
		return in, 0, false
	}
	if res := inputval.Validate(in); res.HasErrors() {
		httpx.Fail(w, http.StatusBadRequest, res.First())
		return in, 0, false
	}
	if msg := in.enumError(); msg != "" {
		httpx.Fail(w, http.StatusBadRequest, msg)
		return in, 0, false
	}
	return in, idx, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /agents                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	in, idx, ok := decodeAgent(w, r)
	if !ok {
		return
	}

	a := models.Agent{ClientID: clientID}
	in.apply(&a, idx)
	stampAudio(&a, "")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Agents.Create(ctx, a)
	if errors.Is(err, agentstore.ErrDuplicateName) {
		httpx.Fail(w, http.StatusBadRequest, "An agent with this name already exists")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to create agent", err)
		return
	}
	h.Log.Info("agent created",
		zap.String("client_id", clientID.Hex()),
		zap.String("agent_id", created.ID.Hex()))
	httpx.Created(w, "", created)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /agents/{id}                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	id, ok := httpx.ObjectIDParam(r, "id")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, "Agent not found")
		return
	}
	in, idx, ok := decodeAgent(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Agents.GetFull(ctx, clientID, id)
	if err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, "Agent not found")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to update agent", err)
		return
	}
	prevAudio := a.AudioBytes
	in.apply(&a, idx)
	stampAudio(&a, prevAudio)

	saved, err := h.Agents.Save(ctx, a)
	switch {
	case errors.Is(err, agentstore.ErrDuplicateName):
		httpx.Fail(w, http.StatusBadRequest, "An agent with this name already exists")
		return
	case err == mongo.ErrNoDocuments:
		httpx.Fail(w, http.StatusNotFound, "Agent not found")
		return
	case err != nil:
		httpx.ServerError(w, h.Log, "Failed to update agent", err)
		return
	}
	httpx.OK(w, saved)
}

// stampAudio records when the selected clip last changed.
func stampAudio(a *models.Agent, prev string) {
	if a.AudioBytes == "" || a.AudioBytes == prev {
		return
	}
	if a.AudioMetadata == nil {
		a.AudioMetadata = &models.AudioMetadata{}
	}
	now := time.Now().UTC()
	a.AudioMetadata.GeneratedAt = &now
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /agents/mob/{id}                                                         |
| The mobile app may only change firstMessage and voiceSelection, and append  |
| starting messages. Plain strings become text-only messages.                 |
*─────────────────────────────────────────────────────────────────────────────*/

type mobileInput struct {
	FirstMessage     *string           `json:"firstMessage"`
	VoiceSelection   *string           `json:"voiceSelection"`
	StartingMessages []json.RawMessage `json:"startingMessages"`
}

func (h *Handler) ServeMobileUpdate(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	id, ok := httpx.ObjectIDParam(r, "id")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, "Agent not found")
		return
	}

	var in mobileInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.VoiceSelection != nil {
		v := normalize.Enum(*in.VoiceSelection)
		if !models.Contains(models.Voices, v) {
			httpx.Fail(w, http.StatusBadRequest, "Voice selection is not a supported voice.")
			return
		}
		in.VoiceSelection = &v
	}
	add, err := parseMessages(in.StartingMessages)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Starting messages must be strings or {text, audioBase64} objects.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Agents.AppendMessages(ctx, clientID, id, agentstore.MessageUpdate{
		FirstMessage:   in.FirstMessage,
		VoiceSelection: in.VoiceSelection,
		Append:         add,
	})
	if err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, "Agent not found")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to update agent", err)
		return
	}
	httpx.OK(w, a)
}

func parseMessages(raw []json.RawMessage) ([]models.StartingMessage, error) {
	out := make([]models.StartingMessage, 0, len(raw))
	for _, m := range raw {
		var text string
		if err := json.Unmarshal(m, &text); err == nil {
			out = append(out, models.StartingMessage{Text: text})
			continue
		}
		var sm models.StartingMessage
		if err := json.Unmarshal(m, &sm); err != nil {
			return nil, err
		}
		out = append(out, sm)
	}
	return out, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /agents, DELETE /agents/{id}, GET /agents/{id}/audio                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Agents.ListByClient(ctx, clientID)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch agents", err)
		return
	}
	httpx.OK(w, list)
}

func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	id, ok := httpx.ObjectIDParam(r, "id")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, "Agent not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Agents.Delete(ctx, clientID, id)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to delete agent", err)
		return
	}
	if n == 0 {
		httpx.Fail(w, http.StatusNotFound, "Agent not found")
		return
	}
	h.Log.Info("agent deleted", zap.String("client_id", clientID.Hex()), zap.String("agent_id", id.Hex()))
	httpx.Success(w, httpx.M{"message": "Agent deleted successfully"})
}

func (h *Handler) ServeAudio(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	id, ok := httpx.ObjectIDParam(r, "id")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, "Agent not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	b64, err := h.Agents.GetAudio(ctx, clientID, id)
	if err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, "Agent not found")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch agent audio", err)
		return
	}
	if b64 == "" {
		httpx.Fail(w, http.StatusNotFound, "No audio available for this agent")
		return
	}
	audio, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch agent audio", err, zap.String("agent_id", id.Hex()))
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}
