// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/voicedesk/internal/app/system/indexes"
	"github.com/dalemusser/voicedesk/internal/app/system/metrics"
	"github.com/dalemusser/voicedesk/internal/app/system/tasks"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"github.com/dalemusser/voicedesk/internal/app/system/urlcache"
	"github.com/dalemusser/voicedesk/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client and, when configured, Redis.
// A Redis failure is logged and the app falls back to the in-process cache.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	cctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)
	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize))

	sched, err := tasks.NewScheduler(logger, timeouts.Long())
	if err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, err
	}

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
		Scheduler:     sched,
		Metrics:       metrics.New(),
	}

	if appCfg.RedisURL != "" {
		rdb, err := urlcache.Connect(cctx, appCfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, using in-memory URL cache", zap.Error(err))
		} else {
			deps.Redis = rdb
			logger.Info("connected to Redis")
		}
	}
	return deps, nil
}

// EnsureSchema creates collections with their JSON-schema validators and
// then the indexes.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	sctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	if err := validators.EnsureAll(sctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure validators failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(sctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	return nil
}
