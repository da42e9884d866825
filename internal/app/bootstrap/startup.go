// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	adminstore "github.com/dalemusser/voicedesk/internal/app/store/admins"
	campaignstore "github.com/dalemusser/voicedesk/internal/app/store/campaigns"
	"github.com/dalemusser/voicedesk/internal/app/store/oauthstate"
	"github.com/dalemusser/voicedesk/internal/app/system/authutil"
	"github.com/dalemusser/voicedesk/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It seeds
// the superadmin account and starts the background jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.SuperAdminEmail != "" {
		if err := ensureSuperAdmin(ctx, deps, appCfg.SuperAdminEmail, appCfg.SuperAdminPassword, logger); err != nil {
			logger.Error("superadmin bootstrap failed", zap.Error(err))
			return err
		}
	}

	if deps.Scheduler == nil {
		return nil
	}
	deps.Scheduler.Observe(deps.Metrics.Job)
	db := deps.MongoDatabase
	for _, j := range []tasks.Job{
		tasks.OAuthStateCleanupJob(oauthstate.New(db), logger),
		tasks.CampaignStatusSweepJob(campaignstore.New(db), logger, appCfg.StatusSweepInterval),
	} {
		if err := deps.Scheduler.Add(j); err != nil {
			return err
		}
	}
	deps.Scheduler.Start()
	return nil
}

// ensureSuperAdmin creates the superadmin account or promotes an existing
// admin with the same email. The password only applies to a new account.
func ensureSuperAdmin(ctx context.Context, deps DBDeps, email, password string, logger *zap.Logger) error {
	var hash string
	if password != "" {
		h, err := authutil.HashPassword(password)
		if err != nil {
			return fmt.Errorf("hash superadmin password: %w", err)
		}
		hash = h
	}
	created, err := adminstore.New(deps.MongoDatabase).UpsertSuperAdmin(ctx, email, "Super Admin", hash)
	if err != nil {
		return fmt.Errorf("upsert superadmin: %w", err)
	}
	if created {
		logger.Info("created superadmin", zap.String("email", email))
	} else {
		logger.Info("superadmin ensured", zap.String("email", email))
	}
	return nil
}
