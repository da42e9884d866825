// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	campaignstore "github.com/dalemusser/voicedesk/internal/app/store/campaigns"
	"github.com/dalemusser/voicedesk/internal/app/store/oauthstate"
	"go.uber.org/zap"
)

// Job is a named unit of periodic work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// OAuthStateCleanupJob creates a job that removes expired OAuth state tokens.
// This is a backup for when MongoDB's TTL index cleanup is delayed.
func OAuthStateCleanupJob(stateStore *oauthstate.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "oauth-state-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := stateStore.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug("cleaned up expired OAuth states", zap.Int64("count", count))
			}
			return nil
		},
	}
}

// CampaignStatusSweepJob rewrites stale stored campaign statuses so readers
// of the raw collection see the same status the API computes.
func CampaignStatusSweepJob(campaigns *campaignstore.Store, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "campaign-status-sweep",
		Interval: interval,
		Run: func(ctx context.Context) error {
			count, err := campaigns.SweepStatuses(ctx, time.Now())
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("refreshed campaign statuses", zap.Int64("count", count))
			}
			return nil
		},
	}
}
