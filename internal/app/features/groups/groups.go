// internal/app/features/groups/groups.go
package groups

import (
	"context"
	"net/http"
	"strings"

	groupstore "github.com/dalemusser/voicedesk/internal/app/store/groups"
	"github.com/dalemusser/voicedesk/internal/app/system/authz"
	"github.com/dalemusser/voicedesk/internal/app/system/htmlsanitize"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type groupInput struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AgentIDs    *[]string `json:"agentIds"`
}

func (in *groupInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = htmlsanitize.Clean(in.Description)
}

// agentIDs parses and dedupes the requested agent ids and checks that the
// client owns all of them. The second result is a 400 message.
func (h *Handler) agentIDs(ctx context.Context, clientID primitive.ObjectID, raw []string) ([]primitive.ObjectID, string, error) {
	seen := map[primitive.ObjectID]bool{}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
		if err != nil {
			return nil, "Agent ids must be valid ids", nil
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	n, err := h.Agents.CountOwned(ctx, clientID, ids)
	if err != nil {
		return nil, "", err
	}
	if int(n) != len(ids) {
		return nil, "Some agents not found or don't belong to client", nil
	}
	return ids, "", nil
}

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Groups.ListByClient(ctx, clientID)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch groups", err)
		return
	}
	httpx.OK(w, list)
}

func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)

	var in groupInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.normalize()
	if in.Name == "" {
		httpx.Fail(w, http.StatusBadRequest, "Group name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g := models.Group{ClientID: clientID, Name: in.Name, Description: in.Description}
	if in.AgentIDs != nil {
		ids, msg, err := h.agentIDs(ctx, clientID, *in.AgentIDs)
		if err != nil {
			httpx.ServerError(w, h.Log, "Failed to create group", err)
			return
		}
		if msg != "" {
			httpx.Fail(w, http.StatusBadRequest, msg)
			return
		}
		g.AgentIDs = ids
	}

	created, err := h.Groups.Create(ctx, g)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to create group", err)
		return
	}
	h.Log.Info("group created", zap.String("client_id", clientID.Hex()), zap.String("group_id", created.ID.Hex()))
	httpx.Created(w, "", created)
}

func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	id, ok := httpx.ObjectIDParam(r, "id")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, "Group not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Groups.GetForClient(ctx, clientID, id)
	if err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, "Group not found")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch group", err)
		return
	}
	httpx.OK(w, g)
}

// ServeUpdate renames the group. The description is replaced (an absent
// description clears it) and agentIds is replaced only when sent.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	id, ok := httpx.ObjectIDParam(r, "id")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, "Group not found")
		return
	}

	var in groupInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.normalize()
	if in.Name == "" {
		httpx.Fail(w, http.StatusBadRequest, "Group name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u := groupstore.Update{Name: &in.Name, Description: &in.Description}
	if in.AgentIDs != nil {
		ids, msg, err := h.agentIDs(ctx, clientID, *in.AgentIDs)
		if err != nil {
			httpx.ServerError(w, h.Log, "Failed to update group", err)
			return
		}
		if msg != "" {
			httpx.Fail(w, http.StatusBadRequest, msg)
			return
		}
		u.AgentIDs = ids
	}

	g, err := h.Groups.Update(ctx, clientID, id, u)
	if err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, "Group not found")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to update group", err)
		return
	}
	httpx.OK(w, g)
}

func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	id, ok := httpx.ObjectIDParam(r, "id")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, "Group not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Groups.Delete(ctx, clientID, id)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to delete group", err)
		return
	}
	if n == 0 {
		httpx.Fail(w, http.StatusNotFound, "Group not found")
		return
	}
	h.Log.Info("group deleted", zap.String("client_id", clientID.Hex()), zap.String("group_id", id.Hex()))
	httpx.Success(w, httpx.M{"message": "Group deleted successfully"})
}
