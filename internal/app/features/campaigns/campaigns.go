package campaigns

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/dalemusser/voicedesk/internal/app/system/authz"
	"github.com/dalemusser/voicedesk/internal/app/system/htmlsanitize"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgNameRequired   = "Campaign name is required"
	msgDatesRequired  = "Start date and end date are required"
	msgBadDate        = "Invalid date format"
	msgBadStartDate   = "Invalid start date format"
	msgBadEndDate     = "Invalid end date format"
	msgEndBeforeStart = "End date must be after start date"
	msgForeignGroups  = "Some groups not found or don't belong to client"
	msgNotFound       = "Campaign not found"
)

type campaignInput struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	GroupIDs    *[]string `json:"groupIds"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
}

func parseDate(s string) (time.Time, error) {
	return dateparse.ParseIn(strings.TrimSpace(s), time.Local)
}

// groupIDs parses and dedupes ids and checks the client owns every group.
// The string result is a 400 message.
func (h *Handler) groupIDs(ctx context.Context, clientID primitive.ObjectID, raw []string) ([]primitive.ObjectID, string, error) {
	seen := map[primitive.ObjectID]bool{}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
		if err != nil {
			return nil, msgForeignGroups, nil
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	n, err := h.Groups.CountOwned(ctx, clientID, ids)
	if err != nil {
		return nil, "", err
	}
	if int(n) != len(ids) {
		return nil, msgForeignGroups, nil
	}
	return ids, "", nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /campaigns, GET /campaigns/{id}                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Campaigns.ListByClient(ctx, clientID)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch campaigns", err)
		return
	}
	for i := range list {
		h.refresh(ctx, &list[i])
	}
	views, err := h.views(ctx, list, false)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch campaigns", err)
		return
	}
	httpx.OK(w, views)
}

func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	id, ok := httpx.ObjectIDParam(r, "id")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, msgNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.Campaigns.GetForClient(ctx, clientID, id)
	if err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch campaign", err)
		return
	}
	h.refresh(ctx, &c)
	h.reply(ctx, w, c, true)
}

// reply writes c with its groups populated.
func (h *Handler) reply(ctx context.Context, w http.ResponseWriter, c models.Campaign, withContacts bool) {
	views, err := h.views(ctx, []models.Campaign{c}, withContacts)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch campaign", err, zap.String("campaign_id", c.ID.Hex()))
		return
	}
	httpx.OK(w, views[0])
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /campaigns                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)

	var in campaignInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		httpx.Fail(w, http.StatusBadRequest, msgNameRequired)
		return
	}
	if strings.TrimSpace(in.StartDate) == "" || strings.TrimSpace(in.EndDate) == "" {
		httpx.Fail(w, http.StatusBadRequest, msgDatesRequired)
		return
	}
	start, err1 := parseDate(in.StartDate)
	end, err2 := parseDate(in.EndDate)
	if err1 != nil || err2 != nil {
		httpx.Fail(w, http.StatusBadRequest, msgBadDate)
		return
	}
	if !start.Before(end) {
		httpx.Fail(w, http.StatusBadRequest, msgEndBeforeStart)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c := models.Campaign{
		ClientID:    clientID,
		Name:        in.Name,
		Description: htmlsanitize.Clean(in.Description),
		StartDate:   start,
		EndDate:     end,
	}
	if in.GroupIDs != nil {
		ids, msg, err := h.groupIDs(ctx, clientID, *in.GroupIDs)
		if err != nil {
			httpx.ServerError(w, h.Log, "Failed to create campaign", err)
			return
		}
		if msg != "" {
			httpx.Fail(w, http.StatusBadRequest, msg)
			return
		}
		c.GroupIDs = ids
	}

	created, err := h.Campaigns.Create(ctx, c)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to create campaign", err)
		return
	}
	h.Log.Info("campaign created",
		zap.String("client_id", clientID.Hex()),
		zap.String("campaign_id", created.ID.Hex()),
		zap.String("status", created.Status))
	httpx.Created(w, "", created)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /campaigns/{id}                                                          |
| Dates are optional; a single new date is checked against the stored other. |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	id, ok := httpx.ObjectIDParam(r, "id")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, msgNotFound)
		return
	}

	var in campaignInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		httpx.Fail(w, http.StatusBadRequest, msgNameRequired)
		return
	}

	var start, end *time.Time
	if strings.TrimSpace(in.StartDate) != "" {
		t, err := parseDate(in.StartDate)
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, msgBadStartDate)
			return
		}
		start = &t
	}
	if strings.TrimSpace(in.EndDate) != "" {
		t, err := parseDate(in.EndDate)
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, msgBadEndDate)
			return
		}
		end = &t
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.Campaigns.GetForClient(ctx, clientID, id)
	if err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to update campaign", err)
		return
	}

	c.Name = in.Name
	c.Description = htmlsanitize.Clean(in.Description)
	if start != nil {
		c.StartDate = *start
	}
	if end != nil {
		c.EndDate = *end
	}
	if (start != nil || end != nil) && !c.StartDate.Before(c.EndDate) {
		httpx.Fail(w, http.StatusBadRequest, msgEndBeforeStart)
		return
	}
	if in.GroupIDs != nil {
		ids, msg, err := h.groupIDs(ctx, clientID, *in.GroupIDs)
		if err != nil {
			httpx.ServerError(w, h.Log, "Failed to update campaign", err)
			return
		}
		if msg != "" {
			httpx.Fail(w, http.StatusBadRequest, msg)
			return
		}
		c.GroupIDs = ids
	}

	saved, err := h.Campaigns.Save(ctx, c)
	if err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to update campaign", err)
		return
	}
	h.reply(ctx, w, saved, false)
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /campaigns/{id}, POST /campaigns/{id}/groups                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	id, ok := httpx.ObjectIDParam(r, "id")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, msgNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Campaigns.Delete(ctx, clientID, id)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to delete campaign", err)
		return
	}
	if n == 0 {
		httpx.Fail(w, http.StatusNotFound, msgNotFound)
		return
	}
	h.Log.Info("campaign deleted", zap.String("client_id", clientID.Hex()), zap.String("campaign_id", id.Hex()))
	httpx.Success(w, httpx.M{"message": "Campaign deleted successfully"})
}

type groupsInput struct {
	GroupIDs *[]string `json:"groupIds"`
}

// ServeSetGroups replaces the campaign's groups.
func (h *Handler) ServeSetGroups(w http.ResponseWriter, r *http.Request) {
	clientID, _ := authz.ClientID(r)
	id, ok := httpx.ObjectIDParam(r, "id")
	if !ok {
		httpx.Fail(w, http.StatusNotFound, msgNotFound)
		return
	}

	var in groupsInput
	if err := httpx.Decode(r, &in); err != nil || in.GroupIDs == nil {
		httpx.Fail(w, http.StatusBadRequest, "groupIds array is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Campaigns.GetForClient(ctx, clientID, id); err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, msgNotFound)
		return
	} else if err != nil {
		httpx.ServerError(w, h.Log, "Failed to add groups to campaign", err)
		return
	}

	ids, msg, err := h.groupIDs(ctx, clientID, *in.GroupIDs)
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to add groups to campaign", err)
		return
	}
	if msg != "" {
		httpx.Fail(w, http.StatusBadRequest, msg)
		return
	}

	c, err := h.Campaigns.SetGroups(ctx, clientID, id, ids)
	if err == mongo.ErrNoDocuments {
		httpx.Fail(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Failed to add groups to campaign", err)
		return
	}
	h.reply(ctx, w, c, false)
}
