// internal/app/features/humanagents/handler.go
package humanagents

import (
	"context"
	"errors"
	"net/http"
	"strings"

	agentstore "github.com/dalemusser/voicedesk/internal/app/store/agents"
	clientstore "github.com/dalemusser/voicedesk/internal/app/store/clients"
	humanagentstore "github.com/dalemusser/voicedesk/internal/app/store/humanagents"
	"github.com/dalemusser/voicedesk/internal/app/system/authz"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/inputval"
	"github.com/dalemusser/voicedesk/internal/app/system/normalize"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves a client's human agent sub-accounts.
type Handler struct {
	HumanAgents *humanagentstore.Store
	Clients     *clientstore.Store
	Agents      *agentstore.Store
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		HumanAgents: humanagentstore.New(db),
		Clients:     clientstore.New(db),
		Agents:      agentstore.New(db),
		Log:         logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /human-agents                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.HumanAgents.ListByClient(ctx, clientID)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch human agents", err)
		return
	}
	httpx.OK(w, list)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /human-agents                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

type createInput struct {
	HumanAgentName string `json:"humanAgentName"`
	Email          string `json:"email"`
	MobileNumber   string `json:"mobileNumber"`
	DID            string `json:"did"`
}

func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)

	var in createInput
	_ = httpx.Decode(r, &in)
	if strings.TrimSpace(in.HumanAgentName) == "" || strings.TrimSpace(in.Email) == "" ||
		strings.TrimSpace(in.MobileNumber) == "" || strings.TrimSpace(in.DID) == "" {
		httpx.Fail(w, http.StatusBadRequest, "Human agent name, email, mobile number, and DID are required")
		return
	}
	in.Email = normalize.Email(in.Email)
	if !inputval.IsValidEmail(in.Email) {
		httpx.Fail(w, http.StatusBadRequest, "A valid email address is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Clients.GetByID(ctx, clientID); err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, "Client not found")
		return
	} else if err != nil {
		httpx.ServerError(w, h.Log, "Failed to create human agent", err)
		return
	}

	ha, err := h.HumanAgents.Create(ctx, models.HumanAgent{
		ClientID:           clientID,
		HumanAgentName:     in.HumanAgentName,
		Email:              in.Email,
		MobileNumber:       in.MobileNumber,
		DID:                in.DID,
		IsProfileCompleted: true,
		IsApproved:         true,
	})
	switch {
	case errors.Is(err, humanagentstore.ErrDuplicateName):
		httpx.Fail(w, http.StatusBadRequest, "Human agent with this name already exists for this client")
		return
	case errors.Is(err, humanagentstore.ErrDuplicateEmail):
		httpx.Fail(w, http.StatusBadRequest, "Email already registered")
		return
	case err != nil:
		httpx.ServerError(w, h.Log, "Failed to create human agent", err)
		return
	}
	h.Log.Info("human agent created",
		zap.String("client_id", clientID.Hex()),
		zap.String("human_agent_id", ha.ID.Hex()))
	httpx.Created(w, "Human agent created successfully", ha)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / PUT / DELETE /human-agents/{agentId}                                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	id, ok := httpx.ObjectIDParam(r, "agentId")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, "Human agent not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ha, err := h.HumanAgents.GetView(ctx, clientID, id)
	if err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, "Human agent not found")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch human agent", err)
		return
	}
	httpx.OK(w, ha)
}

type updateInput struct {
	HumanAgentName *string   `json:"humanAgentName" validate:"omitempty,notblank" label:"Human agent name"`
	Email          *string   `json:"email" validate:"omitempty,email" label:"Email"`
	MobileNumber   *string   `json:"mobileNumber"`
	DID            *string   `json:"did"`
	AgentIDs       *[]string `json:"agentIds" validate:"omitempty,dive,objectid" label:"Agent ID"`
}

func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	id, ok := httpx.ObjectIDParam(r, "agentId")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, "Human agent not found")
		return
	}

	var in updateInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		httpx.Fail(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u := humanagentstore.Update{
		HumanAgentName: in.HumanAgentName,
		Email:          in.Email,
		MobileNumber:   in.MobileNumber,
		DID:            in.DID,
	}
	if in.Email != nil {
		v := normalize.Email(*in.Email)
		in.Email = &v
	}
	if in.AgentIDs != nil {
		ids := make([]primitive.ObjectID, 0, len(*in.AgentIDs))
		for _, s := range *in.AgentIDs {
			oid, _ := primitive.ObjectIDFromHex(s)
			ids = append(ids, oid)
		}
		n, err := h.Agents.CountOwned(ctx, clientID, ids)
		if err != nil {
			httpx.ServerError(w, h.Log, "Failed to update human agent", err)
			return
		}
		if n != int64(len(dedupe(ids))) {
			httpx.Fail(w, http.StatusBadRequest, "Some agents not found or don't belong to client")
			return
		}
		u.AgentIDs = dedupe(ids)
	}

	ha, err := h.HumanAgents.Update(ctx, clientID, id, u)
	switch {
	case err == mongo.ErrNoDocuments:
		httpx.Fail(w, http.StatusNotFound, "Human agent not found")
		return
	case errors.Is(err, humanagentstore.ErrDuplicateName):
		httpx.Fail(w, http.StatusBadRequest, "Human agent with this name already exists for this client")
		return
	case errors.Is(err, humanagentstore.ErrDuplicateEmail):
		httpx.Fail(w, http.StatusBadRequest, "Email already registered")
		return
	case err != nil:
		httpx.ServerError(w, h.Log, "Failed to update human agent", err)
		return
	}
	httpx.Success(w, httpx.M{"data": ha, "message": "Human agent updated successfully"})
}

func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	id, ok := httpx.ObjectIDParam(r, "agentId")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, "Human agent not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.HumanAgents.Delete(ctx, clientID, id)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to delete human agent", err)
		return
	}
	if n == 0 {
		httpx.Fail(w, http.StatusNotFound, "Human agent not found")
		return
	}
	h.Log.Info("human agent deleted",
		zap.String("client_id", clientID.Hex()),
		zap.String("human_agent_id", id.Hex()))
	httpx.Success(w, httpx.M{"message": "Human agent deleted successfully"})
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
