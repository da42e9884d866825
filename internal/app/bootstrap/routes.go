// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	adminfeature "github.com/dalemusser/voicedesk/internal/app/features/admin"
	agentsfeature "github.com/dalemusser/voicedesk/internal/app/features/agents"
	apikeysfeature "github.com/dalemusser/voicedesk/internal/app/features/apikeys"
	authgooglefeature "github.com/dalemusser/voicedesk/internal/app/features/authgoogle"
	botfeature "github.com/dalemusser/voicedesk/internal/app/features/bot"
	businessinfofeature "github.com/dalemusser/voicedesk/internal/app/features/businessinfo"
	campaignsfeature "github.com/dalemusser/voicedesk/internal/app/features/campaigns"
	clientsfeature "github.com/dalemusser/voicedesk/internal/app/features/clients"
	groupsfeature "github.com/dalemusser/voicedesk/internal/app/features/groups"
	healthfeature "github.com/dalemusser/voicedesk/internal/app/features/health"
	homefeature "github.com/dalemusser/voicedesk/internal/app/features/home"
	humanagentsfeature "github.com/dalemusser/voicedesk/internal/app/features/humanagents"
	inboundfeature "github.com/dalemusser/voicedesk/internal/app/features/inbound"
	profilesfeature "github.com/dalemusser/voicedesk/internal/app/features/profiles"
	voicefeature "github.com/dalemusser/voicedesk/internal/app/features/voice"
	"github.com/dalemusser/voicedesk/internal/app/store/audit"
	clientstore "github.com/dalemusser/voicedesk/internal/app/store/clients"
	humanagentstore "github.com/dalemusser/voicedesk/internal/app/store/humanagents"
	"github.com/dalemusser/voicedesk/internal/app/store/oauthstate"
	"github.com/dalemusser/voicedesk/internal/app/system/auditlog"
	"github.com/dalemusser/voicedesk/internal/app/system/auth"
	"github.com/dalemusser/voicedesk/internal/app/system/botproxy"
	"github.com/dalemusser/voicedesk/internal/app/system/googleid"
	"github.com/dalemusser/voicedesk/internal/app/system/identity"
	"github.com/dalemusser/voicedesk/internal/app/system/objectstore"
	"github.com/dalemusser/voicedesk/internal/app/system/ratelimit"
	"github.com/dalemusser/voicedesk/internal/app/system/sealbox"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"github.com/dalemusser/voicedesk/internal/app/system/tts"
	"github.com/dalemusser/voicedesk/internal/app/system/urlcache"
	"github.com/dalemusser/waffle/config"
	wafflemetrics "github.com/dalemusser/waffle/metrics"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/router"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for the API.
//
// The router comes from WAFFLE (request IDs, panic recovery, compression,
// the max_request_body_bytes cap, request metrics and access logging).
// Shared services (token issuer, Google verifier, presigner, rate limiter,
// TTS and bot clients) are built once here and handed to the feature
// handlers. Every feature router is mounted under /api/v1.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase
	m := deps.Metrics

	issuer := auth.NewIssuer(appCfg.JWTSecret, appCfg.JWTExpiry)
	mw := auth.NewMiddleware(issuer, logger)
	limiter := ratelimit.NewLoginLimiter(appCfg.LoginRateLimit, appCfg.LoginRateWindow)
	verifier := googleid.NewVerifier(appCfg.GoogleClientID, appCfg.GoogleAndroidClientID)
	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	storage, err := buildStorage(appCfg, deps, logger)
	if err != nil {
		return nil, err
	}

	box := sealbox.Derive(appCfg.JWTSecret)
	if appCfg.APIKeySecret != "" {
		if box, err = sealbox.New(appCfg.APIKeySecret); err != nil {
			return nil, err
		}
	}

	synth := tts.New(appCfg.SarvamAPIKey, appCfg.SarvamBaseURL, timeouts.External())
	newTTS := func(key string) tts.Synthesizer {
		return tts.New(key, appCfg.SarvamBaseURL, timeouts.External())
	}
	bot := botproxy.New(appCfg.BotAPIURL, appCfg.BotAPIKey, timeouts.External())
	if !bot.Configured() {
		logger.Info("bot_api_url not set; /bot/send will answer 500")
	}

	wafflemetrics.RegisterDefault(logger)
	r := router.New(coreCfg, logger)
	// Browsers and the mobile app call from any origin unless the core
	// CORS settings narrow it.
	if coreCfg.CORS.EnableCORS {
		r.Use(middleware.CORSFromConfig(coreCfg))
	} else {
		r.Use(middleware.CORSPermissive())
	}

	var cache healthfeature.Pinger
	if deps.Redis != nil {
		cache = urlcache.NewRedis(deps.Redis, "")
	}
	healthHandler := healthfeature.NewHandler(deps.MongoClient, cache, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", m.Handler())

	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Operators
	profilesHandler := profilesfeature.NewHandler(db, logger)
	adminHandler := adminfeature.NewHandler(db, issuer, limiter, m, auditLog, logger)
	r.Mount("/api/v1/admin", adminfeature.Routes(adminHandler, profilesHandler.ServeList, mw))
	r.Mount("/api/v1/superadmin", adminfeature.SuperRoutes(adminHandler, mw))

	// Client profiles
	r.Mount("/api/v1/auth/client/profile", profilesfeature.Routes(profilesHandler, mw))

	// Tenant API
	clientsHandler := clientsfeature.NewHandler(db, issuer, verifier, storage, limiter, m, auditLog, logger)
	googleHandler := authgooglefeature.NewHandler(
		googleFlow(appCfg),
		verifier,
		&identity.Resolver{
			Clients:     clientstore.New(db),
			HumanAgents: humanagentstore.New(db),
			Issuer:      issuer,
			Log:         logger,
		},
		oauthstate.New(db),
		coreCfg.CORS.CORSAllowedOrigins,
		m,
		logger,
	)
	if !googleHandler.IsConfigured() {
		logger.Info("google redirect sign-in disabled (google_client_id/google_client_secret not set)")
	}

	client := clientsfeature.Routes(clientsHandler, mw)
	client.Mount("/google", authgooglefeature.Routes(googleHandler))
	client.Get("/providers", apikeysfeature.ServeProviders)
	client.Group(func(pr chi.Router) {
		pr.Use(mw.RequireClient)
		pr.Mount("/human-agents", humanagentsfeature.Routes(humanagentsfeature.NewHandler(db, logger)))
		pr.Mount("/agents", agentsfeature.Routes(agentsfeature.NewHandler(db, logger)))
		pr.Mount("/voice", voicefeature.Routes(voicefeature.NewHandler(synth, m, logger)))
		pr.Mount("/inbound", inboundfeature.Routes(inboundfeature.NewHandler(db, logger)))
		pr.Mount("/groups", groupsfeature.Routes(groupsfeature.NewHandler(db, logger)))
		pr.Mount("/campaigns", campaignsfeature.Routes(campaignsfeature.NewHandler(db, logger)))
		pr.Mount("/business-info", businessinfofeature.Routes(businessinfofeature.NewHandler(db, logger)))
		pr.Mount("/api-keys", apikeysfeature.Routes(apikeysfeature.NewHandler(db, box, newTTS, logger)))
		pr.Mount("/bot", botfeature.Routes(botfeature.NewHandler(bot, m, logger)))
	})
	r.Mount("/api/v1/client", client)

	return r, nil
}

// googleFlow returns nil (an untyped interface) when the redirect flow is not
// configured so the handler can tell.
func googleFlow(appCfg AppConfig) authgooglefeature.Flow {
	f := googleid.NewFlow(appCfg.GoogleClientID, appCfg.GoogleClientSecret,
		appCfg.BaseURL+"/api/v1/client/google/callback")
	if f == nil {
		return nil
	}
	return f
}

// buildStorage returns the logo presigner: S3 with a URL cache (Redis when
// connected) or a disabled stub when no bucket is configured.
func buildStorage(appCfg AppConfig, deps DBDeps, logger *zap.Logger) (objectstore.Presigner, error) {
	if appCfg.S3Bucket == "" {
		logger.Info("s3_bucket not set; logo uploads disabled")
		return objectstore.Disabled{}, nil
	}
	s3, err := objectstore.NewS3(context.Background(), objectstore.Config{
		Region:          appCfg.S3Region,
		Bucket:          appCfg.S3Bucket,
		Endpoint:        appCfg.S3Endpoint,
		AccessKeyID:     appCfg.S3AccessKeyID,
		SecretAccessKey: appCfg.S3SecretAccessKey,
		Expiry:          appCfg.PresignExpiry,
	})
	if err != nil {
		logger.Error("s3 presigner init failed", zap.Error(err))
		return nil, err
	}
	var cache urlcache.Cache = urlcache.NewMemory(appCfg.PresignExpiry)
	if deps.Redis != nil {
		cache = urlcache.NewRedis(deps.Redis, "voicedesk:presign:")
	}
	// Cached URLs must expire before the signature does.
	return objectstore.WithCache(s3, cache, s3.Expiry()/2), nil
}
