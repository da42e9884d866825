package inbound

import (
	"context"
	"net/http"

	"github.com/dalemusser/voicedesk/internal/app/system/authz"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/reporting"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func (h *Handler) ServeReport(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	rg, ok := h.window(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	logs, err := h.CallLogs.Find(ctx, clientID, rg.Start, rg.End)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch report", err, zap.String("client_id", clientID.Hex()))
		return
	}
	httpx.Success(w, httpx.M{
		"data":   reporting.Summarize(clientID.Hex(), logs),
		"filter": rg.Echo(),
	})
}

func (h *Handler) ServeLeads(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	rg, ok := h.window(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	logs, err := h.CallLogs.Find(ctx, clientID, rg.Start, rg.End)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch leads", err, zap.String("client_id", clientID.Hex()))
		return
	}
	httpx.Success(w, httpx.M{
		"data":   reporting.Bucketize(logs),
		"filter": rg.Echo(),
	})
}

type clientName struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
}

// ServeLogs returns raw call logs. The dashboard expects success as the
// string "true" on this route.
func (h *Handler) ServeLogs(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	rg, ok := h.window(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var name *clientName
	c, err := h.Clients.GetByID(ctx, clientID)
	switch {
	case err == nil:
		name = &clientName{ID: c.ID, Name: c.Name}
	case err != mongo.ErrNoDocuments:
		httpx.ServerError(w, h.Log, "Failed to fetch logs", err, zap.String("client_id", clientID.Hex()))
		return
	}

	logs, err := h.CallLogs.Find(ctx, clientID, rg.Start, rg.End)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch logs", err, zap.String("client_id", clientID.Hex()))
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.M{"success": "true", "clientName": name, "data": logs})
}
