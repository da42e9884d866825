// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/voicedesk/internal/app/system/metrics"
	"github.com/dalemusser/voicedesk/internal/app/system/tasks"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Redis is nil unless redis_url is configured.
	Redis *redis.Client

	// Scheduler is created with the connections, gets its jobs and starts in
	// Startup, and is stopped in Shutdown.
	Scheduler *tasks.Scheduler

	// Metrics is shared by the HTTP middleware and the job observer.
	Metrics *metrics.Metrics
}
