package admin

import (
	"context"
	"net/http"

	"github.com/dalemusser/voicedesk/internal/app/store/audit"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/paging"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// ServeAudit handles GET /api/v1/superadmin/audit?category=&eventType=&clientId=&page=&limit=.
func (h *Handler) ServeAudit(w http.ResponseWriter, r *http.Request) {
	pg := paging.Parse(r)
	filter := audit.QueryFilter{
		Category:  query.Get(r, "category"),
		EventType: query.Get(r, "eventType"),
		Limit:     int64(pg.Limit),
		Offset:    pg.Skip(),
	}
	if raw := query.Get(r, "clientId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "Invalid client ID")
			return
		}
		filter.ClientID = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		events []audit.Event
		total  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		events, err = h.Events.Query(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		total, err = h.Events.CountByFilter(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		httpx.ServerError(w, h.Log, "Failed to fetch audit events", err)
		return
	}

	httpx.Success(w, httpx.M{
		"data":        events,
		"total":       total,
		"currentPage": pg.Page,
		"totalPages":  pg.TotalPages(total),
	})
}
