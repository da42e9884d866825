// internal/app/features/campaigns/handler.go
package campaigns

import (
	"context"
	"time"

	campaignstore "github.com/dalemusser/voicedesk/internal/app/store/campaigns"
	groupstore "github.com/dalemusser/voicedesk/internal/app/store/groups"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves a client's outbound campaigns.
type Handler struct {
	Campaigns *campaignstore.Store
	Groups    *groupstore.Store
	Log       *zap.Logger

	Now func() time.Time
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Campaigns: campaignstore.New(db),
		Groups:    groupstore.New(db),
		Log:       logger,
		Now:       time.Now,
	}
}

// Routes mounts at /api/v1/client/campaigns behind RequireClient.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.ServeCreate)
	r.Get("/{id}", h.ServeGet)
	r.Put("/{id}", h.ServeUpdate)
	r.Delete("/{id}", h.ServeDelete)
	r.Post("/{id}/groups", h.ServeSetGroups)
	return r
}

// refresh recomputes c's status and writes it back when it was stale. A
// failed write is logged; the response still carries the fresh status.
func (h *Handler) refresh(ctx context.Context, c *models.Campaign) {
	if !c.RefreshStatus(h.Now()) {
		return
	}
	if err := h.Campaigns.SetStatus(ctx, c.ID, c.Status); err != nil {
		h.Log.Warn("campaign status write-back failed", zap.Error(err), zap.String("campaign_id", c.ID.Hex()))
	}
}

// views populates each campaign's groups, keeping the campaign's order and
// dropping groups that no longer exist.
func (h *Handler) views(ctx context.Context, list []models.Campaign, withContacts bool) ([]models.CampaignView, error) {
	var ids []primitive.ObjectID
	for _, c := range list {
		ids = append(ids, c.GroupIDs...)
	}
	byID, err := h.Groups.Summaries(ctx, ids, withContacts)
	if err != nil {
		return nil, err
	}
	out := make([]models.CampaignView, 0, len(list))
	for _, c := range list {
		v := models.CampaignView{Campaign: c, Groups: []models.GroupSummary{}}
		for _, id := range c.GroupIDs {
			if g, ok := byID[id]; ok {
				v.Groups = append(v.Groups, g)
			}
		}
		out = append(out, v)
	}
	return out, nil
}
