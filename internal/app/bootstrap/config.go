// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/voicedesk/internal/app/system/limits"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for VoiceDesk.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: VOICEDESK_MONGO_URI, VOICEDESK_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "voicedesk", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "jwt_secret", Default: devJWTSecret, Desc: "Bearer token signing secret (must be strong in production)"},
	{Name: "jwt_expiry", Default: "24h", Desc: "Bearer token lifetime"},

	// Google sign-in
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 web client ID"},
	{Name: "google_android_client_id", Default: "", Desc: "Google OAuth2 Android client ID (extra ID token audience)"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret (redirect flow)"},

	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public base URL of this API"},

	// Logo storage
	{Name: "s3_region", Default: "", Desc: "AWS region for logo uploads"},
	{Name: "s3_bucket", Default: "", Desc: "S3 bucket for logo uploads (blank disables uploads)"},
	{Name: "s3_endpoint", Default: "", Desc: "Custom S3-compatible endpoint"},
	{Name: "s3_access_key_id", Default: "", Desc: "S3 access key (blank uses the default AWS chain)"},
	{Name: "s3_secret_access_key", Default: "", Desc: "S3 secret key"},
	{Name: "presign_expiry", Default: "15m", Desc: "Lifetime of presigned URLs"},
	{Name: "redis_url", Default: "", Desc: "Redis URL for the shared presigned URL cache (blank uses memory)"},

	// Text-to-speech
	{Name: "sarvam_api_key", Default: "", Desc: "Sarvam text-to-speech API key"},
	{Name: "sarvam_base_url", Default: "", Desc: "Sarvam API base URL override"},

	// Bot proxy
	{Name: "bot_api_url", Default: "", Desc: "Downstream bot API endpoint"},
	{Name: "bot_api_key", Default: "", Desc: "Downstream bot API key"},

	{Name: "apikey_secret", Default: "", Desc: "32-byte secret for sealing stored provider API keys"},

	// SuperAdmin bootstrap
	{Name: "superadmin_email", Default: "", Desc: "Email of the superadmin (created or promoted on startup)"},
	{Name: "superadmin_password", Default: "", Desc: "Initial superadmin password (only used when creating)"},

	// Audit logging
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts allowed per IP per window"},
	{Name: "login_rate_window", Default: "1m", Desc: "Login rate limit window"},

	{Name: "status_sweep_interval", Default: "15m", Desc: "Campaign status refresh interval (0 disables)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, VOICEDESK_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "VOICEDESK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("operation timeouts overridden from environment", zap.Int("tiers", n))
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTExpiry: appValues.Duration("jwt_expiry", 24*time.Hour),

		GoogleClientID:        appValues.String("google_client_id"),
		GoogleAndroidClientID: appValues.String("google_android_client_id"),
		GoogleClientSecret:    appValues.String("google_client_secret"),

		BaseURL: strings.TrimRight(appValues.String("base_url"), "/"),

		S3Region:          appValues.String("s3_region"),
		S3Bucket:          appValues.String("s3_bucket"),
		S3Endpoint:        appValues.String("s3_endpoint"),
		S3AccessKeyID:     appValues.String("s3_access_key_id"),
		S3SecretAccessKey: appValues.String("s3_secret_access_key"),
		PresignExpiry:     appValues.Duration("presign_expiry", 15*time.Minute),
		RedisURL:          appValues.String("redis_url"),

		SarvamAPIKey:  appValues.String("sarvam_api_key"),
		SarvamBaseURL: appValues.String("sarvam_base_url"),

		BotAPIURL: appValues.String("bot_api_url"),
		BotAPIKey: appValues.String("bot_api_key"),

		APIKeySecret: appValues.String("apikey_secret"),

		SuperAdminEmail:    appValues.String("superadmin_email"),
		SuperAdminPassword: appValues.String("superadmin_password"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", time.Minute),

		StatusSweepInterval: appValues.Duration("status_sweep_interval", 15*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI is checked before connecting. In production the JWT
// secret must not be the development default and must be long enough to
// resist guessing.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if err := validateSecrets(coreCfg.Env, appCfg); err != nil {
		return err
	}
	if appCfg.LoginRateLimit <= 0 {
		return errors.New("login_rate_limit must be positive")
	}
	if bodyLimitTooLow(coreCfg.MaxRequestBodyBytes) {
		logger.Warn("max_request_body_bytes is below what contact uploads and agent audio need",
			zap.Int64("max_request_body_bytes", coreCfg.MaxRequestBodyBytes),
			zap.Int64("recommended", limits.MinRequestBody))
	}
	if appCfg.SuperAdminEmail != "" && appCfg.SuperAdminPassword == "" {
		logger.Warn("superadmin_email set without superadmin_password; a new superadmin cannot log in with a password")
	}
	return nil
}

func validateSecrets(env string, appCfg AppConfig) error {
	if appCfg.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if env == "prod" && (appCfg.JWTSecret == devJWTSecret || len(appCfg.JWTSecret) < 32) {
		return errors.New("jwt_secret must be set to a strong value (32+ characters) in production")
	}
	if appCfg.APIKeySecret != "" && len(appCfg.APIKeySecret) != 32 {
		return fmt.Errorf("apikey_secret must be exactly 32 bytes, got %d", len(appCfg.APIKeySecret))
	}
	return nil
}

// bodyLimitTooLow reports whether WAFFLE's request body cap would cut off
// large uploads. Zero means no cap.
func bodyLimitTooLow(n int64) bool {
	return n != 0 && n < limits.MinRequestBody
}
