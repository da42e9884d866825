// internal/app/features/admin/handler.go
package admin

import (
	adminstore "github.com/dalemusser/voicedesk/internal/app/store/admins"
	"github.com/dalemusser/voicedesk/internal/app/store/audit"
	clientstore "github.com/dalemusser/voicedesk/internal/app/store/clients"
	profilestore "github.com/dalemusser/voicedesk/internal/app/store/profiles"
	"github.com/dalemusser/voicedesk/internal/app/system/auditlog"
	"github.com/dalemusser/voicedesk/internal/app/system/auth"
	"github.com/dalemusser/voicedesk/internal/app/system/metrics"
	"github.com/dalemusser/voicedesk/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the operator endpoints under /api/v1/admin and
// /api/v1/superadmin.
type Handler struct {
	Mongo    *mongo.Client
	Admins   *adminstore.Store
	Clients  *clientstore.Store
	Profiles *profilestore.Store
	Issuer   *auth.Issuer
	Limiter  *ratelimit.LoginLimiter
	Metrics  *metrics.Metrics
	Events   *audit.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(
	db *mongo.Database,
	issuer *auth.Issuer,
	limiter *ratelimit.LoginLimiter,
	m *metrics.Metrics,
	al *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Mongo:    db.Client(),
		Admins:   adminstore.New(db),
		Clients:  clientstore.New(db),
		Profiles: profilestore.New(db),
		Issuer:   issuer,
		Limiter:  limiter,
		Metrics:  m,
		Events:   audit.New(db),
		Audit:    al,
		Log:      logger,
	}
}
