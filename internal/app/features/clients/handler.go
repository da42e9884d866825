// internal/app/features/clients/handler.go
package clients

import (
	clientstore "github.com/dalemusser/voicedesk/internal/app/store/clients"
	humanagentstore "github.com/dalemusser/voicedesk/internal/app/store/humanagents"
	"github.com/dalemusser/voicedesk/internal/app/system/auditlog"
	"github.com/dalemusser/voicedesk/internal/app/system/auth"
	"github.com/dalemusser/voicedesk/internal/app/system/googleid"
	"github.com/dalemusser/voicedesk/internal/app/system/identity"
	"github.com/dalemusser/voicedesk/internal/app/system/metrics"
	"github.com/dalemusser/voicedesk/internal/app/system/objectstore"
	"github.com/dalemusser/voicedesk/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves client account endpoints: sign-in, registration, the
// logo upload URL and the client's own record.
type Handler struct {
	Clients     *clientstore.Store
	HumanAgents *humanagentstore.Store
	Issuer      *auth.Issuer
	Verifier    googleid.Verifier
	Resolver    *identity.Resolver
	Storage     objectstore.Presigner
	Limiter     *ratelimit.LoginLimiter
	Metrics     *metrics.Metrics
	Audit       *auditlog.Logger
	Log         *zap.Logger
}

// NewHandler constructs a clients Handler.
func NewHandler(
	db *mongo.Database,
	issuer *auth.Issuer,
	verifier googleid.Verifier,
	storage objectstore.Presigner,
	limiter *ratelimit.LoginLimiter,
	m *metrics.Metrics,
	al *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	clients := clientstore.New(db)
	humans := humanagentstore.New(db)
	return &Handler{
		Clients:     clients,
		HumanAgents: humans,
		Issuer:      issuer,
		Verifier:    verifier,
		Resolver:    &identity.Resolver{Clients: clients, HumanAgents: humans, Issuer: issuer, Log: logger},
		Storage:     storage,
		Limiter:     limiter,
		Metrics:     m,
		Audit:       al,
		Log:         logger,
	}
}
