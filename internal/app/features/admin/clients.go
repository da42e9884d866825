package admin

import (
	"context"
	"net/http"

	"github.com/dalemusser/voicedesk/internal/app/system/authz"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"github.com/dalemusser/voicedesk/internal/app/system/txn"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Client management                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeHello handles GET /api/v1/admin.
func (h *Handler) ServeHello(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, httpx.M{"message": "Hello admin"})
}

func (h *Handler) ServeListClients(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Clients.List(ctx, query.Get(r, "search"))
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch clients", err)
		return
	}
	httpx.OK(w, list)
}

func (h *Handler) ServeGetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.ObjectIDParam(r, "id")
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "Invalid client ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Clients.GetByID(ctx, id)
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

// ServeDeleteClient removes the client and its profile together.
func (h *Handler) ServeDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.ObjectIDParam(r, "id")
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "Invalid client ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var deleted int64
	err := txn.Run(ctx, h.Mongo, h.Log, func(ctx context.Context) error {
		n, err := h.Clients.Delete(ctx, id)
		if err != nil {
			return err
		}
		deleted = n
		_, err = h.Profiles.DeleteByClient(ctx, id)
		return err
	})
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to delete client", err, zap.String("client_id", id.Hex()))
		return
	}
	if deleted == 0 {
		httpx.Fail(w, http.StatusNotFound, "Client not found")
		return
	}
	h.Log.Info("client deleted", zap.String("client_id", id.Hex()))
	h.Audit.ClientDeleted(ctx, r, operator(r), id)
	httpx.Success(w, httpx.M{"message": "Client deleted successfully"})
}

// ServeClientToken mints a client token so an operator can act as the client.
func (h *Handler) ServeClientToken(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.ObjectIDParam(r, "clientId")
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "Invalid client ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Clients.GetByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, "Client not found")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to generate client token", err)
		return
	}
	token, err := h.Issuer.IssueClient(c.ID, c.Email)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to generate client token", err)
		return
	}
	h.Log.Info("client token issued to operator",
		zap.String("client_id", c.ID.Hex()),
		zap.String("operator_id", operator(r).Hex()))
	h.Audit.ClientTokenIssued(ctx, r, operator(r), c.ID)
	httpx.Success(w, httpx.M{"token": token, "client": c})
}

func (h *Handler) ServeApproveClient(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.ObjectIDParam(r, "clientId")
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "Invalid client ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Clients.SetApproved(ctx, id)
	if err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, "Client not found")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to approve client", err)
		return
	}
	h.Log.Info("client approved",
		zap.String("client_id", c.ID.Hex()),
		zap.String("operator_id", operator(r).Hex()))
	h.Audit.ClientApproved(ctx, r, operator(r), c.ID)
	httpx.Success(w, httpx.M{"message": "Client approved successfully", "client": c})
}

func operator(r *http.Request) primitive.ObjectID {
	_, id, _ := authz.UserCtx(r)
	return id
}
