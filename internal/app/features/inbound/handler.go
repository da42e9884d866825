// internal/app/features/inbound/handler.go
package inbound

import (
	"errors"
	"net/http"
	"time"

	calllogstore "github.com/dalemusser/voicedesk/internal/app/store/calllogs"
	clientstore "github.com/dalemusser/voicedesk/internal/app/store/clients"
	settingsstore "github.com/dalemusser/voicedesk/internal/app/store/settings"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/reporting"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the inbound call dashboard: report totals, raw logs,
// lead buckets and per-client settings.
type Handler struct {
	CallLogs *calllogstore.Store
	Clients  *clientstore.Store
	Settings *settingsstore.Store
	Log      *zap.Logger

	// Now is the report clock. Windows are evaluated in its location.
	Now func() time.Time
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		CallLogs: calllogstore.New(db),
		Clients:  clientstore.New(db),
		Settings: settingsstore.New(db),
		Log:      logger,
		Now:      time.Now,
	}
}

// Routes mounts at /api/v1/client/inbound behind RequireClient.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/report", h.ServeReport)
	r.Get("/logs", h.ServeLogs)
	r.Get("/leads", h.ServeLeads)
	r.Get("/settings", h.ServeGetSettings)
	r.Put("/settings", h.ServePutSettings)
	return r
}

// window resolves the query's report window, writing the 400 on failure.
func (h *Handler) window(w http.ResponseWriter, r *http.Request) (reporting.Range, bool) {
	q := r.URL.Query()
	rg, err := reporting.Resolve(q.Get("filter"), q.Get("startDate"), q.Get("endDate"), h.Now())
	switch {
	case errors.Is(err, reporting.ErrInvalidFilter):
		httpx.JSON(w, http.StatusBadRequest, httpx.M{
			"success":        false,
			"error":          "Invalid filter parameter",
			"message":        reporting.InvalidFilterMessage,
			"allowedFilters": reporting.AllowedFilters,
		})
		return rg, false
	case errors.Is(err, reporting.ErrInvalidDate):
		httpx.Fail(w, http.StatusBadRequest, "Invalid date format")
		return rg, false
	}
	return rg, true
}
