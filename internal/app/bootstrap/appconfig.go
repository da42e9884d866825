// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, log level and the environment name.
// Everything the voice-agent backend needs on top of that lives here and is
// passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens
	JWTSecret string
	JWTExpiry time.Duration

	// Google sign-in. The Android client id is accepted as a second
	// audience when verifying ID tokens from the mobile app.
	GoogleClientID        string
	GoogleAndroidClientID string
	GoogleClientSecret    string

	// BaseURL is the public origin of this API, used for the OAuth callback.
	// CORS and the request body cap come from WAFFLE's CoreConfig.
	BaseURL string

	// Logo storage (S3 or an S3-compatible endpoint)
	S3Region          string
	S3Bucket          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	PresignExpiry     time.Duration

	// Optional shared cache for presigned URLs. Empty means in-process.
	RedisURL string

	// Text-to-speech provider
	SarvamAPIKey  string
	SarvamBaseURL string

	// Downstream bot API
	BotAPIURL string
	BotAPIKey string

	// APIKeySecret seals stored provider keys. Blank derives one from JWTSecret.
	APIKeySecret string

	// SuperAdmin bootstrap
	SuperAdminEmail    string
	SuperAdminPassword string

	// Audit logging: "all" (db+log), "db", "log" or "off" per category.
	AuditLogAuth  string
	AuditLogAdmin string

	LoginRateLimit  int
	LoginRateWindow time.Duration

	// StatusSweepInterval is how often stored campaign statuses are
	// refreshed. Zero disables the job.
	StatusSweepInterval time.Duration
}
